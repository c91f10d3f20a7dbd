// Package config loads stencil.toml, layers it with environment variables and
// command-line overrides, and validates the result.
//
// Precedence from lowest to highest: built-in defaults, the config file,
// STENCIL_* environment variables, CLI flags. Every resolved field records
// the layer it came from so `stencil config debug` can show it.
package config
