package config

import (
	"testing"

	"github.com/BurntSushi/toml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// validConfig returns a Config that passes all validation checks.
func validConfig(t *testing.T) *Config {
	t.Helper()
	return &Config{
		Catalog:    CatalogConfig{Dir: t.TempDir()},
		Resolve:    ResolveConfig{Interactive: true, StandardProperties: true},
		Properties: map[string]string{"author": "Jane"},
	}
}

func TestValidate_Valid(t *testing.T) {
	t.Parallel()

	vr := Validate(validConfig(t), nil)
	assert.False(t, vr.HasErrors())
	assert.False(t, vr.HasWarnings())
	assert.Empty(t, vr.Issues)
}

func TestValidate_NilConfig(t *testing.T) {
	t.Parallel()

	vr := Validate(nil, nil)
	require.True(t, vr.HasErrors())
	assert.Contains(t, vr.Errors()[0].Message, "nil")
}

func TestValidate_Issues(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		mutate   func(*Config)
		severity ValidationSeverity
		field    string
	}{
		{
			name:     "negative max attempts",
			mutate:   func(c *Config) { c.Resolve.MaxAttempts = -1 },
			severity: SeverityError,
			field:    "resolve.max_attempts",
		},
		{
			name:     "empty property key",
			mutate:   func(c *Config) { c.Properties[""] = "x" },
			severity: SeverityError,
			field:    "properties",
		},
		{
			name:     "blank property key",
			mutate:   func(c *Config) { c.Properties["  "] = "x" },
			severity: SeverityError,
			field:    "properties",
		},
		{
			name:     "padded property key",
			mutate:   func(c *Config) { c.Properties[" author"] = "x" },
			severity: SeverityError,
			field:    "properties. author",
		},
		{
			name:     "expression syntax in key",
			mutate:   func(c *Config) { c.Properties["${a}"] = "x" },
			severity: SeverityError,
			field:    "properties.${a}",
		},
		{
			name:     "missing catalog dir",
			mutate:   func(c *Config) { c.Catalog.Dir = "/definitely/not/here" },
			severity: SeverityWarning,
			field:    "catalog.dir",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := validConfig(t)
			tt.mutate(cfg)

			vr := Validate(cfg, nil)
			require.Len(t, vr.Issues, 1)
			assert.Equal(t, tt.severity, vr.Issues[0].Severity)
			assert.Equal(t, tt.field, vr.Issues[0].Field)
		})
	}
}

func TestValidate_UnknownKeys(t *testing.T) {
	t.Parallel()

	var cfg Config
	md, err := toml.Decode("[catalog]\nmirror = \"x\"\n[resolve]\nbatch = true\n", &cfg)
	require.NoError(t, err)
	cfg.Catalog.Dir = t.TempDir()

	vr := Validate(&cfg, &md)
	assert.False(t, vr.HasErrors())
	require.True(t, vr.HasWarnings())

	fields := make([]string, 0, len(vr.Warnings()))
	for _, w := range vr.Warnings() {
		fields = append(fields, w.Field)
		assert.Equal(t, "unknown configuration key", w.Message)
	}
	assert.ElementsMatch(t, []string{"catalog.mirror", "resolve.batch"}, fields)
}

func TestValidationResult_Filters(t *testing.T) {
	t.Parallel()

	vr := &ValidationResult{}
	addError(vr, "a", "bad")
	addWarning(vr, "b", "meh")
	addWarning(vr, "c", "meh")

	assert.True(t, vr.HasErrors())
	assert.True(t, vr.HasWarnings())
	assert.Len(t, vr.Errors(), 1)
	assert.Len(t, vr.Warnings(), 2)
}
