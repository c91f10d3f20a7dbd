package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fullConfigTOML = `
[catalog]
dir = "my-templates"

[resolve]
interactive = false
max_attempts = 3
retain_answers = true
standard_properties = false

[properties]
author = "Jane"
groupId = "com.example"
`

// writeConfig writes content as stencil.toml into a fresh temp dir.
func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), ConfigFileName)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// --- LoadFromFile tests ---

func TestLoadFromFile_ValidFull(t *testing.T) {
	t.Parallel()
	cfg, md, err := LoadFromFile(writeConfig(t, fullConfigTOML))
	require.NoError(t, err)

	assert.Equal(t, "my-templates", cfg.Catalog.Dir)
	assert.False(t, cfg.Resolve.Interactive)
	assert.Equal(t, 3, cfg.Resolve.MaxAttempts)
	assert.True(t, cfg.Resolve.RetainAnswers)
	assert.False(t, cfg.Resolve.StandardProperties)
	assert.Equal(t, map[string]string{"author": "Jane", "groupId": "com.example"}, cfg.Properties)

	assert.True(t, md.IsDefined("resolve", "interactive"))
	assert.Empty(t, md.Undecoded())
}

func TestLoadFromFile_Partial(t *testing.T) {
	t.Parallel()
	cfg, md, err := LoadFromFile(writeConfig(t, "[catalog]\ndir = \"x\"\n"))
	require.NoError(t, err)

	assert.Equal(t, "x", cfg.Catalog.Dir)
	assert.Nil(t, cfg.Properties)
	assert.False(t, md.IsDefined("resolve", "interactive"))
}

func TestLoadFromFile_UnknownKeys(t *testing.T) {
	t.Parallel()
	_, md, err := LoadFromFile(writeConfig(t, "[catalog]\ndir = \"x\"\nmirror = \"y\"\n[extra]\nk = 1\n"))
	require.NoError(t, err)
	assert.NotEmpty(t, md.Undecoded())
}

func TestLoadFromFile_InvalidSyntax(t *testing.T) {
	t.Parallel()
	_, _, err := LoadFromFile(writeConfig(t, "[catalog\ndir = "))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "loading config")
}

func TestLoadFromFile_WrongType(t *testing.T) {
	t.Parallel()
	_, _, err := LoadFromFile(writeConfig(t, "[resolve]\nmax_attempts = \"three\"\n"))
	require.Error(t, err)
}

func TestLoadFromFile_Missing(t *testing.T) {
	t.Parallel()
	_, _, err := LoadFromFile(filepath.Join(t.TempDir(), "nope.toml"))
	require.Error(t, err)
}

// --- Discover and Locate tests ---

func TestDiscover_InCurrentDir(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	configPath := filepath.Join(dir, ConfigFileName)
	require.NoError(t, os.WriteFile(configPath, []byte("# test\n"), 0o644))

	found, err := Discover(dir)
	require.NoError(t, err)
	assert.Equal(t, configPath, found)
}

func TestDiscover_InParentDir(t *testing.T) {
	t.Parallel()
	parent := t.TempDir()
	child := filepath.Join(parent, "sub", "deep")
	require.NoError(t, os.MkdirAll(child, 0o755))

	configPath := filepath.Join(parent, ConfigFileName)
	require.NoError(t, os.WriteFile(configPath, []byte("# test\n"), 0o644))

	found, err := Discover(child)
	require.NoError(t, err)
	assert.Equal(t, configPath, found)
}

func TestDiscover_NotFound(t *testing.T) {
	t.Parallel()
	found, err := Discover(t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, found, "expected empty string when config not found")
}

func TestDiscover_SkipsDirectoryNamedLikeConfig(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, ConfigFileName), 0o755))

	found, err := Discover(dir)
	require.NoError(t, err)
	assert.Empty(t, found)
}

func TestDiscover_AtRoot(t *testing.T) {
	t.Parallel()
	// Must terminate at the filesystem root.
	_, err := Discover("/")
	require.NoError(t, err)
}

func TestDiscover_NearestWins(t *testing.T) {
	t.Parallel()
	workspace := t.TempDir()
	project := filepath.Join(workspace, "project")
	src := filepath.Join(project, "src")
	require.NoError(t, os.MkdirAll(src, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(workspace, ConfigFileName), []byte("# outer\n"), 0o644))
	nearest := filepath.Join(project, ConfigFileName)
	require.NoError(t, os.WriteFile(nearest, []byte("# inner\n"), 0o644))

	found, err := Discover(src)
	require.NoError(t, err)
	assert.Equal(t, nearest, found)
}

func TestDiscover_ReturnsAbsolutePath(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFileName), []byte("# test\n"), 0o644))
	t.Chdir(dir)

	found, err := Discover(".")
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(found), found)
	assert.Equal(t, ConfigFileName, filepath.Base(found))
}

func TestLocate(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	discovered := filepath.Join(dir, ConfigFileName)
	require.NoError(t, os.WriteFile(discovered, []byte("# test\n"), 0o644))
	explicit := filepath.Join(t.TempDir(), "custom.toml")
	require.NoError(t, os.WriteFile(explicit, []byte("# custom\n"), 0o644))

	got, err := Locate("", dir)
	require.NoError(t, err)
	assert.Equal(t, discovered, got)

	got, err = Locate(explicit, dir)
	require.NoError(t, err)
	assert.Equal(t, explicit, got, "an explicit path wins over discovery")

	_, err = Locate(filepath.Join(dir, "missing.toml"), dir)
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = Locate(t.TempDir(), dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a regular file")
}
