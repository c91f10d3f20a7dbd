package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/AbdelazizMoustafa10m/stencil/internal/config"
)

var (
	initFlagCatalog string
	initFlagForce   bool
)

// initCmd implements "stencil init". It never reads an existing
// stencil.toml, so it is safe to run in a fresh directory.
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a stencil.toml and an example template catalog",
	Long: `Write a starter stencil.toml and an example template into the current
directory. Existing files are preserved unless --force is supplied.

Examples:
  stencil init
  stencil init --catalog catalog
  stencil init --force`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

func init() {
	initCmd.Flags().StringVar(&initFlagCatalog, "catalog", config.DefaultCatalogDir, "Catalog directory to create, relative to the current directory")
	initCmd.Flags().BoolVar(&initFlagForce, "force", false, "Overwrite existing files")
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	destDir, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting current directory: %w", err)
	}

	if filepath.IsAbs(initFlagCatalog) || !filepath.IsLocal(initFlagCatalog) {
		return fmt.Errorf("invalid catalog directory %q: must be a relative path inside the current directory", initFlagCatalog)
	}

	created, err := config.RenderScaffold(destDir, config.ScaffoldVars{
		ProjectName: filepath.Base(destDir),
		CatalogDir:  filepath.ToSlash(initFlagCatalog),
	}, initFlagForce)
	if err != nil {
		return fmt.Errorf("writing scaffold: %w", err)
	}

	// Progress goes to stderr; stdout stays empty.
	stderr := cmd.ErrOrStderr()
	if len(created) == 0 {
		fmt.Fprintln(stderr, "Nothing to do: all files already exist (use --force to overwrite)")
		return nil
	}

	fmt.Fprintln(stderr, "Created files:")
	for _, f := range created {
		rel, relErr := filepath.Rel(destDir, f)
		if relErr != nil {
			rel = f
		}
		fmt.Fprintf(stderr, "  %s\n", rel)
	}
	fmt.Fprintln(stderr)
	fmt.Fprintln(stderr, "Next steps:")
	fmt.Fprintln(stderr, "  stencil list")
	fmt.Fprintln(stderr, "  stencil describe com.example:quickstart")
	fmt.Fprintln(stderr, "  stencil configure com.example:quickstart")

	return nil
}
