package config

import (
	"bytes"
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/charmbracelet/log"
)

//go:embed all:scaffold
var scaffoldFS embed.FS

const scaffoldRoot = "scaffold"

// ScaffoldVars holds the values substituted into .tmpl scaffold files.
type ScaffoldVars struct {
	// ProjectName names the workspace in the generated stencil.toml header.
	ProjectName string
	// CatalogDir is written as [catalog] dir.
	CatalogDir string
}

// RenderScaffold writes a starter stencil.toml and an example catalog
// template into destDir. Files ending in ".tmpl" are rendered with
// text/template and lose the extension; other files are copied as-is.
// Existing files are skipped unless force is set.
//
// Returns the paths written.
func RenderScaffold(destDir string, vars ScaffoldVars, force bool) ([]string, error) {
	if vars.CatalogDir == "" {
		vars.CatalogDir = DefaultCatalogDir
	}

	var created []string
	walkErr := fs.WalkDir(scaffoldFS, scaffoldRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("walking scaffold %s: %w", path, err)
		}
		if d.IsDir() {
			return nil
		}

		rel := strings.TrimPrefix(path, scaffoldRoot+"/")
		// The example catalog follows the configured directory name.
		if after, ok := strings.CutPrefix(rel, DefaultCatalogDir+"/"); ok {
			rel = vars.CatalogDir + "/" + after
		}
		isTmpl := strings.HasSuffix(rel, ".tmpl")
		rel = strings.TrimSuffix(rel, ".tmpl")
		destFile := filepath.Join(destDir, filepath.FromSlash(rel))

		if _, statErr := os.Stat(destFile); statErr == nil {
			if !force {
				log.Debug("skipping existing file", "path", destFile)
				return nil
			}
			log.Debug("overwriting existing file", "path", destFile)
		}

		content, err := scaffoldFS.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading embedded file %s: %w", path, err)
		}
		if isTmpl {
			tmpl, err := template.New(d.Name()).Option("missingkey=error").Parse(string(content))
			if err != nil {
				return fmt.Errorf("parsing template %s: %w", path, err)
			}
			var buf bytes.Buffer
			if err := tmpl.Execute(&buf, vars); err != nil {
				return fmt.Errorf("executing template %s: %w", path, err)
			}
			content = buf.Bytes()
		}

		if err := os.MkdirAll(filepath.Dir(destFile), 0o755); err != nil {
			return fmt.Errorf("creating directory for %s: %w", destFile, err)
		}
		if err := os.WriteFile(destFile, content, 0o644); err != nil {
			return fmt.Errorf("writing file %s: %w", destFile, err)
		}

		log.Debug("created scaffold file", "path", destFile)
		created = append(created, destFile)
		return nil
	})
	if walkErr != nil {
		return nil, walkErr
	}
	return created, nil
}
