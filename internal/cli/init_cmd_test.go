package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/BurntSushi/toml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AbdelazizMoustafa10m/stencil/internal/config"
)

const quickstartPath = "com.example/quickstart/1.0/stencil-template.toml"

func TestInitCmd_CreatesScaffold(t *testing.T) {
	resetRootCmd(t)
	chdirRestore(t)
	dir := t.TempDir()

	stdout, stderr, code := runCLI(t, "--dir", dir, "init")
	require.Equal(t, 0, code, stderr)
	assert.Empty(t, stdout)
	assert.Contains(t, stderr, "Created files:")
	assert.Contains(t, stderr, "stencil.toml")
	assert.Contains(t, stderr, filepath.Join("templates", filepath.FromSlash(quickstartPath)))
	assert.Contains(t, stderr, "Next steps:")

	raw, err := os.ReadFile(filepath.Join(dir, "stencil.toml"))
	require.NoError(t, err)
	var cfg config.Config
	_, err = toml.Decode(string(raw), &cfg)
	require.NoError(t, err, "rendered stencil.toml must be valid TOML")
	assert.Equal(t, "templates", cfg.Catalog.Dir)
	assert.Contains(t, string(raw), filepath.Base(dir))

	assert.FileExists(t, filepath.Join(dir, "templates", filepath.FromSlash(quickstartPath)))
}

func TestInitCmd_CatalogFlag(t *testing.T) {
	resetRootCmd(t)
	chdirRestore(t)
	dir := t.TempDir()

	_, stderr, code := runCLI(t, "--dir", dir, "init", "--catalog", "catalog")
	require.Equal(t, 0, code, stderr)

	assert.FileExists(t, filepath.Join(dir, "catalog", filepath.FromSlash(quickstartPath)))
	assert.NoDirExists(t, filepath.Join(dir, "templates"))

	raw, err := os.ReadFile(filepath.Join(dir, "stencil.toml"))
	require.NoError(t, err)
	assert.Contains(t, string(raw), `dir = "catalog"`)
}

func TestInitCmd_InvalidCatalog(t *testing.T) {
	for _, catalogDir := range []string{"../outside", "/abs/path", ""} {
		t.Run(catalogDir, func(t *testing.T) {
			resetRootCmd(t)
			chdirRestore(t)

			_, stderr, code := runCLI(t, "--dir", t.TempDir(), "init", "--catalog", catalogDir)
			assert.Equal(t, 1, code)
			assert.Contains(t, stderr, "invalid catalog directory")
		})
	}
}

func TestInitCmd_PreservesExistingFiles(t *testing.T) {
	resetRootCmd(t)
	chdirRestore(t)
	dir := t.TempDir()
	existing := writeFixture(t, dir, "stencil.toml", "# mine\n")

	_, stderr, code := runCLI(t, "--dir", dir, "init")
	require.Equal(t, 0, code, stderr)
	assert.NotContains(t, stderr, "  stencil.toml\n")

	raw, err := os.ReadFile(existing)
	require.NoError(t, err)
	assert.Equal(t, "# mine\n", string(raw))

	resetRootCmd(t)
	_, stderr, code = runCLI(t, "--dir", dir, "init")
	require.Equal(t, 0, code, stderr)
	assert.Contains(t, stderr, "Nothing to do")
}

func TestInitCmd_Force(t *testing.T) {
	resetRootCmd(t)
	chdirRestore(t)
	dir := t.TempDir()
	existing := writeFixture(t, dir, "stencil.toml", "# mine\n")

	_, stderr, code := runCLI(t, "--dir", dir, "init", "--force")
	require.Equal(t, 0, code, stderr)

	raw, err := os.ReadFile(existing)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "[catalog]")
}

func TestInitCmd_ThenConfigure(t *testing.T) {
	resetRootCmd(t)
	chdirRestore(t)
	dir := t.TempDir()

	_, stderr, code := runCLI(t, "--dir", dir, "init")
	require.Equal(t, 0, code, stderr)

	resetRootCmd(t)
	stdout, stderr, code := runCLI(t, "--dir", dir, "configure", "com.example:quickstart", "--batch",
		"-DserviceName=order service", "-DgroupName=shop", "--format", "json")
	require.Equal(t, 0, code, stderr)

	assert.Equal(t, map[string]string{
		"groupId":     "com.example.shop",
		"artifactId":  "order-service",
		"version":     "1.0-SNAPSHOT",
		"package":     "com.example.shop",
		"serviceName": "order service",
		"groupName":   "shop",
		"mainClass":   "OrderServiceApplication",
	}, decodeJSON(t, stdout))
}
