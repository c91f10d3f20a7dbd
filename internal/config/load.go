package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// ConfigFileName is the name of the stencil configuration file.
const ConfigFileName = "stencil.toml"

// Locate picks the config file for a run. An explicit path (--config) must
// name an existing regular file. Without one, Discover searches from
// startDir. An empty result means stencil runs on defaults, env and flags.
func Locate(explicit, startDir string) (string, error) {
	if explicit == "" {
		return Discover(startDir)
	}
	if err := regularFile(explicit); err != nil {
		return "", fmt.Errorf("config file %s: %w", explicit, err)
	}
	return explicit, nil
}

// Discover returns the nearest stencil.toml at or above startDir, so a
// project nested in a workspace shadows the workspace config. Entries named
// stencil.toml that are not regular files are skipped. The result is
// absolute, which keeps a relative catalog.dir anchored at the file's
// directory however the command was started. It returns "" when no file
// exists up to the filesystem root.
func Discover(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", fmt.Errorf("resolving %s: %w", startDir, err)
	}
	for ; ; dir = filepath.Dir(dir) {
		candidate := filepath.Join(dir, ConfigFileName)
		if regularFile(candidate) == nil {
			return candidate, nil
		}
		if filepath.Dir(dir) == dir {
			return "", nil
		}
	}
}

func regularFile(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if !info.Mode().IsRegular() {
		return &fs.PathError{Op: "open", Path: path, Err: errors.New("not a regular file")}
	}
	return nil
}

// LoadFromFile decodes a stencil.toml. The returned metadata records which
// keys the file set, which Resolve uses to tell an explicit false from an
// absent key and Validate uses to report unknown keys.
func LoadFromFile(path string) (*Config, toml.MetaData, error) {
	var cfg Config
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return nil, md, fmt.Errorf("loading config %s: %w", path, err)
	}
	return &cfg, md, nil
}
