package config

// Config is the top-level configuration structure mapping to stencil.toml.
type Config struct {
	Catalog    CatalogConfig     `toml:"catalog"`
	Resolve    ResolveConfig     `toml:"resolve"`
	Properties map[string]string `toml:"properties"`
}

// CatalogConfig maps to the [catalog] section in stencil.toml.
type CatalogConfig struct {
	// Dir is the catalog root. A relative path in stencil.toml is taken
	// relative to the directory holding the file.
	Dir string `toml:"dir"`
}

// ResolveConfig maps to the [resolve] section in stencil.toml.
type ResolveConfig struct {
	Interactive        bool `toml:"interactive"`
	MaxAttempts        int  `toml:"max_attempts"`
	RetainAnswers      bool `toml:"retain_answers"`
	StandardProperties bool `toml:"standard_properties"`
}

// DefaultCatalogDir is the catalog directory used when none is configured.
const DefaultCatalogDir = "templates"

// NewDefaults returns a Config populated with all default values.
func NewDefaults() *Config {
	return &Config{
		Catalog: CatalogConfig{Dir: DefaultCatalogDir},
		Resolve: ResolveConfig{
			Interactive:        true,
			StandardProperties: true,
		},
		Properties: map[string]string{},
	}
}
