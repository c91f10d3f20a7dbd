package cli

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/AbdelazizMoustafa10m/stencil/internal/config"
	"github.com/AbdelazizMoustafa10m/stencil/internal/descriptor"
)

var (
	describeDescriptor string
	describeNoStandard bool
)

var describeCmd = &cobra.Command{
	Use:   "describe [group:artifact[:version]]",
	Short: "Show the properties a template declares",
	Long: `Print each property of a template with its default expression, pattern
and description. Properties without a default must be supplied with -D or
answered interactively.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runDescribe,
}

func init() {
	describeCmd.Flags().StringVar(&describeDescriptor, "descriptor", "", "Read the template descriptor from this file instead of the catalog")
	describeCmd.Flags().BoolVar(&describeNoStandard, "no-standard", false, "Do not add groupId, artifactId, version and package")
	_ = describeCmd.MarkFlagFilename("descriptor", "toml", "yaml", "yml", "json", "jsonc")
	rootCmd.AddCommand(describeCmd)
}

func runDescribe(cmd *cobra.Command, args []string) error {
	overrides := &config.CLIOverrides{}
	if cmd.Flags().Changed("no-standard") {
		overrides.NoStandard = &describeNoStandard
	}
	rc, err := loadSettings(overrides)
	if err != nil {
		return err
	}

	set, err := loadDescriptorSet(cmd.Context(), rc, args, describeDescriptor)
	if err != nil {
		return err
	}
	if rc.Config.Resolve.StandardProperties {
		set = set.WithStandard()
	}

	out := cmd.OutOrStdout()
	if set.Name() != "" {
		fmt.Fprintln(out, styleHeader.Render(set.Name()))
	}
	if set.Description() != "" {
		fmt.Fprintln(out, set.Description())
	}
	if set.Name() != "" || set.Description() != "" {
		fmt.Fprintln(out)
	}
	fmt.Fprintln(out, propertyTable(set))
	return nil
}

var (
	tableHeaderStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	tableCellStyle   = lipgloss.NewStyle().Padding(0, 1)
	requiredStyle    = lipgloss.NewStyle().Padding(0, 1).Foreground(lipgloss.Color("11"))
)

// propertyTable renders the properties of set in declaration order.
func propertyTable(set *descriptor.Set) string {
	props := set.Properties()
	rows := make([][]string, 0, len(props))
	for _, p := range props {
		def := "(required)"
		if p.HasDefault() {
			def = p.Default()
		}
		rows = append(rows, []string{p.Key, def, p.Pattern, p.Description})
	}

	return table.New().
		Border(lipgloss.NormalBorder()).
		Headers("KEY", "DEFAULT", "PATTERN", "DESCRIPTION").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return tableHeaderStyle
			case col == 1 && !props[row].HasDefault():
				return requiredStyle
			default:
				return tableCellStyle
			}
		}).
		String()
}
