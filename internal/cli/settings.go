package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/AbdelazizMoustafa10m/stencil/internal/catalog"
	"github.com/AbdelazizMoustafa10m/stencil/internal/config"
	"github.com/AbdelazizMoustafa10m/stencil/internal/descriptor"
	"github.com/AbdelazizMoustafa10m/stencil/internal/logging"
)

// loadAndResolveConfig loads and resolves the configuration from all sources
// (file, env, CLI flags). It returns the resolved config, the TOML metadata
// (nil when no file was found), and any loading error.
//
// The file is picked by config.Locate: --config when set, otherwise the
// nearest stencil.toml at or above the current directory.
func loadAndResolveConfig(overrides *config.CLIOverrides) (*config.ResolvedConfig, *toml.MetaData, error) {
	var (
		fileCfg *config.Config
		meta    *toml.MetaData
	)

	cfgPath, err := config.Locate(flagConfig, ".")
	if err != nil {
		return nil, nil, err
	}
	if cfgPath != "" {
		fc, md, err := config.LoadFromFile(cfgPath)
		if err != nil {
			return nil, nil, err
		}
		fileCfg = fc
		meta = &md
	}

	resolved, err := config.Resolve(config.NewDefaults(), fileCfg, meta, os.LookupEnv, overrides)
	if err != nil {
		return nil, nil, err
	}
	resolved.Path = cfgPath

	return resolved, meta, nil
}

// validateResolved validates the effective configuration. The catalog
// directory is only checked when the user configured one.
func validateResolved(rc *config.ResolvedConfig, meta *toml.MetaData) *config.ValidationResult {
	cfg := *rc.Config
	cfg.Catalog.Dir = rc.CatalogDir()
	if rc.Sources["catalog.dir"] == config.SourceDefault {
		cfg.Catalog.Dir = ""
	}
	return config.Validate(&cfg, meta)
}

// loadSettings resolves and validates the configuration. Validation errors
// abort the command; warnings are logged.
func loadSettings(overrides *config.CLIOverrides) (*config.ResolvedConfig, error) {
	rc, meta, err := loadAndResolveConfig(overrides)
	if err != nil {
		return nil, err
	}

	logger := logging.New("config")
	if rc.Path != "" {
		logger.Debug("using config file", "path", rc.Path)
	}

	vr := validateResolved(rc, meta)
	for _, w := range vr.Warnings() {
		logger.Warn(w.Message, "field", w.Field)
	}
	if vr.HasErrors() {
		first := vr.Errors()[0]
		return nil, fmt.Errorf("invalid configuration: %s: %s (%d error(s), run `stencil config validate`)",
			first.Field, first.Message, len(vr.Errors()))
	}
	return rc, nil
}

// loadDescriptorSet reads the template descriptor either from an explicit
// file or from the catalog by coordinates.
func loadDescriptorSet(ctx context.Context, rc *config.ResolvedConfig, args []string, descriptorPath string) (*descriptor.Set, error) {
	switch {
	case descriptorPath != "" && len(args) > 0:
		return nil, fmt.Errorf("give either template coordinates or --descriptor, not both")
	case descriptorPath != "":
		return descriptor.Load(descriptorPath)
	case len(args) == 0:
		return nil, fmt.Errorf("template coordinates (group:artifact[:version]) or --descriptor is required")
	}

	coords, err := catalog.ParseCoordinates(args[0])
	if err != nil {
		return nil, err
	}
	cat := catalog.New(rc.CatalogDir(), catalog.WithLogger(logging.New("catalog")))
	return cat.Find(ctx, coords)
}

// isStdinTTY reports whether stdin is attached to a terminal.
func isStdinTTY() bool {
	info, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}
