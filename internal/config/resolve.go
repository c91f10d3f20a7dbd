package config

import (
	"fmt"
	"maps"
	"path/filepath"
	"strconv"

	"github.com/BurntSushi/toml"
)

// ConfigSource identifies where a configuration value came from.
type ConfigSource string

const (
	// SourceDefault indicates the value came from built-in defaults.
	SourceDefault ConfigSource = "default"
	// SourceFile indicates the value came from the stencil.toml config file.
	SourceFile ConfigSource = "file"
	// SourceEnv indicates the value came from an environment variable.
	SourceEnv ConfigSource = "env"
	// SourceCLI indicates the value came from a CLI flag.
	SourceCLI ConfigSource = "cli"
)

// Environment variables read by Resolve.
const (
	EnvCatalogDir  = "STENCIL_CATALOG_DIR"
	EnvBatch       = "STENCIL_BATCH"
	EnvMaxAttempts = "STENCIL_MAX_ATTEMPTS"
)

// ResolvedConfig holds the fully-resolved configuration with source tracking.
type ResolvedConfig struct {
	Config  *Config
	Sources map[string]ConfigSource // key is dotted path, e.g., "resolve.max_attempts"
	Path    string                  // path to the config file used (empty if none)
}

// CatalogDir returns the catalog directory. A relative directory that came
// from the config file is anchored at the file's directory.
func (rc *ResolvedConfig) CatalogDir() string {
	dir := rc.Config.Catalog.Dir
	if rc.Sources["catalog.dir"] == SourceFile && rc.Path != "" && !filepath.IsAbs(dir) {
		return filepath.Join(filepath.Dir(rc.Path), dir)
	}
	return dir
}

// CLIOverrides captures flag values that can override configuration.
// A nil pointer means "not set".
type CLIOverrides struct {
	CatalogDir    *string
	Batch         *bool
	MaxAttempts   *int
	RetainAnswers *bool
	NoStandard    *bool
	// Properties are -D key=value definitions. They win over [properties].
	Properties map[string]string
}

// EnvFunc is a function that looks up environment variables.
// Default implementation is os.LookupEnv. Injected for testability.
type EnvFunc func(key string) (string, bool)

// Resolve merges configuration from all sources in priority order:
// CLI flags > environment variables > config file > defaults.
//
// fileMeta, when non-nil, decides which file keys were explicitly set, so a
// file can turn a default-true switch off. Without it only non-zero file
// values take effect.
func Resolve(defaults, fileConfig *Config, fileMeta *toml.MetaData, envFn EnvFunc, overrides *CLIOverrides) (*ResolvedConfig, error) {
	rc := &ResolvedConfig{
		Config:  &Config{Properties: map[string]string{}},
		Sources: make(map[string]ConfigSource),
	}

	if defaults == nil {
		defaults = NewDefaults()
	}
	if envFn == nil {
		envFn = func(string) (string, bool) { return "", false }
	}
	if overrides == nil {
		overrides = &CLIOverrides{}
	}

	resolveFromDefaults(rc, defaults)
	if fileConfig != nil {
		resolveFromFile(rc, fileConfig, fileMeta)
	}
	if err := resolveFromEnv(rc, envFn); err != nil {
		return nil, err
	}
	resolveFromCLI(rc, overrides)

	return rc, nil
}

// --- Layer 1: Defaults ---

func resolveFromDefaults(rc *ResolvedConfig, defaults *Config) {
	c := rc.Config
	setValue(&c.Catalog.Dir, defaults.Catalog.Dir, "catalog.dir", SourceDefault, rc.Sources)
	setValue(&c.Resolve.Interactive, defaults.Resolve.Interactive, "resolve.interactive", SourceDefault, rc.Sources)
	setValue(&c.Resolve.MaxAttempts, defaults.Resolve.MaxAttempts, "resolve.max_attempts", SourceDefault, rc.Sources)
	setValue(&c.Resolve.RetainAnswers, defaults.Resolve.RetainAnswers, "resolve.retain_answers", SourceDefault, rc.Sources)
	setValue(&c.Resolve.StandardProperties, defaults.Resolve.StandardProperties, "resolve.standard_properties", SourceDefault, rc.Sources)
	mergeProperties(rc, defaults.Properties, SourceDefault)
}

// --- Layer 2: File ---

func resolveFromFile(rc *ResolvedConfig, file *Config, md *toml.MetaData) {
	c := rc.Config
	defined := func(zero bool, key ...string) bool {
		if md != nil {
			return md.IsDefined(key...)
		}
		return !zero
	}

	if defined(file.Catalog.Dir == "", "catalog", "dir") {
		setValue(&c.Catalog.Dir, file.Catalog.Dir, "catalog.dir", SourceFile, rc.Sources)
	}
	if defined(!file.Resolve.Interactive, "resolve", "interactive") {
		setValue(&c.Resolve.Interactive, file.Resolve.Interactive, "resolve.interactive", SourceFile, rc.Sources)
	}
	if defined(file.Resolve.MaxAttempts == 0, "resolve", "max_attempts") {
		setValue(&c.Resolve.MaxAttempts, file.Resolve.MaxAttempts, "resolve.max_attempts", SourceFile, rc.Sources)
	}
	if defined(!file.Resolve.RetainAnswers, "resolve", "retain_answers") {
		setValue(&c.Resolve.RetainAnswers, file.Resolve.RetainAnswers, "resolve.retain_answers", SourceFile, rc.Sources)
	}
	if defined(!file.Resolve.StandardProperties, "resolve", "standard_properties") {
		setValue(&c.Resolve.StandardProperties, file.Resolve.StandardProperties, "resolve.standard_properties", SourceFile, rc.Sources)
	}
	mergeProperties(rc, file.Properties, SourceFile)
}

// --- Layer 3: Environment ---

// Environment variable mapping:
//
//	STENCIL_CATALOG_DIR   -> catalog.dir
//	STENCIL_BATCH         -> resolve.interactive (inverted)
//	STENCIL_MAX_ATTEMPTS  -> resolve.max_attempts
func resolveFromEnv(rc *ResolvedConfig, envFn EnvFunc) error {
	c := rc.Config

	if val, ok := envFn(EnvCatalogDir); ok && val != "" {
		setValue(&c.Catalog.Dir, val, "catalog.dir", SourceEnv, rc.Sources)
	}
	if val, ok := envFn(EnvBatch); ok && val != "" {
		batch, err := strconv.ParseBool(val)
		if err != nil {
			return fmt.Errorf("%s: invalid boolean %q", EnvBatch, val)
		}
		setValue(&c.Resolve.Interactive, !batch, "resolve.interactive", SourceEnv, rc.Sources)
	}
	if val, ok := envFn(EnvMaxAttempts); ok && val != "" {
		n, err := strconv.Atoi(val)
		if err != nil {
			return fmt.Errorf("%s: invalid integer %q", EnvMaxAttempts, val)
		}
		setValue(&c.Resolve.MaxAttempts, n, "resolve.max_attempts", SourceEnv, rc.Sources)
	}
	return nil
}

// --- Layer 4: CLI overrides ---

func resolveFromCLI(rc *ResolvedConfig, overrides *CLIOverrides) {
	c := rc.Config

	if overrides.CatalogDir != nil {
		setValue(&c.Catalog.Dir, *overrides.CatalogDir, "catalog.dir", SourceCLI, rc.Sources)
	}
	if overrides.Batch != nil {
		setValue(&c.Resolve.Interactive, !*overrides.Batch, "resolve.interactive", SourceCLI, rc.Sources)
	}
	if overrides.MaxAttempts != nil {
		setValue(&c.Resolve.MaxAttempts, *overrides.MaxAttempts, "resolve.max_attempts", SourceCLI, rc.Sources)
	}
	if overrides.RetainAnswers != nil {
		setValue(&c.Resolve.RetainAnswers, *overrides.RetainAnswers, "resolve.retain_answers", SourceCLI, rc.Sources)
	}
	if overrides.NoStandard != nil {
		setValue(&c.Resolve.StandardProperties, !*overrides.NoStandard, "resolve.standard_properties", SourceCLI, rc.Sources)
	}
	mergeProperties(rc, overrides.Properties, SourceCLI)
}

// --- Helpers ---

// setValue unconditionally sets the target to the given value and records the source.
func setValue[T any](target *T, value T, path string, source ConfigSource, sources map[string]ConfigSource) {
	*target = value
	sources[path] = source
}

// mergeProperties layers props over the resolved [properties] table.
func mergeProperties(rc *ResolvedConfig, props map[string]string, source ConfigSource) {
	maps.Copy(rc.Config.Properties, props)
	for k := range props {
		rc.Sources["properties."+k] = source
	}
}
