package cli

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/AbdelazizMoustafa10m/stencil/internal/catalog"
	"github.com/AbdelazizMoustafa10m/stencil/internal/config"
	"github.com/AbdelazizMoustafa10m/stencil/internal/logging"
)

var (
	listCatalogDir string
	listJSON       bool
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the templates in the catalog",
	Long: `List every template found in the catalog directory. The catalog is laid
out as <dir>/<group>/<artifact>/<version>/stencil-template.{toml,yaml,json}.`,
	Args: cobra.NoArgs,
	RunE: runList,
}

func init() {
	listCmd.Flags().StringVar(&listCatalogDir, "catalog", "", "Catalog directory (env: STENCIL_CATALOG_DIR)")
	listCmd.Flags().BoolVar(&listJSON, "json", false, "Output as JSON")
	_ = listCmd.MarkFlagDirname("catalog")
	rootCmd.AddCommand(listCmd)
}

// listEntry is the JSON shape of one catalog entry.
type listEntry struct {
	Coordinates string `json:"coordinates"`
	Name        string `json:"name,omitempty"`
	Description string `json:"description,omitempty"`
	Properties  int    `json:"properties"`
	Path        string `json:"path"`
}

func runList(cmd *cobra.Command, args []string) error {
	overrides := &config.CLIOverrides{}
	if cmd.Flags().Changed("catalog") {
		overrides.CatalogDir = &listCatalogDir
	}
	rc, err := loadSettings(overrides)
	if err != nil {
		return err
	}

	cat := catalog.New(rc.CatalogDir(), catalog.WithLogger(logging.New("catalog")))
	entries, err := cat.List(cmd.Context())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if listJSON {
		items := make([]listEntry, len(entries))
		for i, e := range entries {
			items[i] = listEntry{
				Coordinates: e.Coordinates.String(),
				Name:        e.Descriptor.Name(),
				Description: e.Descriptor.Description(),
				Properties:  e.Descriptor.Len(),
				Path:        e.Path,
			}
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(items)
	}

	if len(entries) == 0 {
		fmt.Fprintf(out, "No templates found in %s\n", cat.Root())
		return nil
	}
	fmt.Fprintln(out, catalogTable(entries))
	return nil
}

// catalogTable renders the catalog entries in listing order.
func catalogTable(entries []catalog.Entry) string {
	rows := make([][]string, len(entries))
	for i, e := range entries {
		rows[i] = []string{
			e.Coordinates.Group,
			e.Coordinates.Artifact,
			e.Coordinates.Version,
			e.Descriptor.Name(),
			strconv.Itoa(e.Descriptor.Len()),
		}
	}

	return table.New().
		Border(lipgloss.NormalBorder()).
		Headers("GROUP", "ARTIFACT", "VERSION", "NAME", "PROPERTIES").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return tableHeaderStyle
			}
			return tableCellStyle
		}).
		String()
}
