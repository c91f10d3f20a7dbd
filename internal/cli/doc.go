// Package cli implements the stencil command tree. Each command lives in its
// own file and registers itself on rootCmd from init. Commands load settings
// through loadSettings so that stencil.toml, STENCIL_* variables and flags
// are layered the same way everywhere.
package cli
