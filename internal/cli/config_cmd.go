package cli

import (
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/AbdelazizMoustafa10m/stencil/internal/config"
)

// configCmd groups the configuration subcommands. Run on its own it prints
// help.
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect and validate stencil.toml",
	Long:  "Inspect and validate stencil.toml and the settings derived from it.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

var configDebugCmd = &cobra.Command{
	Use:   "debug",
	Short: "Show every effective setting and where it came from",
	Long: `Print the effective settings after layering built-in defaults, stencil.toml,
STENCIL_* environment variables and flags. The SOURCE column names the layer
that won.`,
	Args: cobra.NoArgs,
	RunE: runConfigDebug,
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check stencil.toml for errors and warnings",
	Long: `Check the effective settings. Errors make every other command refuse to
run; warnings (unknown keys, a missing catalog directory) are only reported.`,
	Args: cobra.NoArgs,
	RunE: runConfigValidate,
}

func init() {
	configCmd.AddCommand(configDebugCmd, configValidateCmd)
	rootCmd.AddCommand(configCmd)
}

var (
	styleHeader  = lipgloss.NewStyle().Bold(true)
	styleError   = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	styleWarning = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
	styleSuccess = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
)

// sourceColors tints the SOURCE column by layer.
var sourceColors = map[config.ConfigSource]lipgloss.Color{
	config.SourceDefault: lipgloss.Color("10"),
	config.SourceFile:    lipgloss.Color("12"),
	config.SourceEnv:     lipgloss.Color("11"),
	config.SourceCLI:     lipgloss.Color("9"),
}

func runConfigDebug(cmd *cobra.Command, args []string) error {
	rc, _, err := loadAndResolveConfig(nil)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	path := rc.Path
	if path == "" {
		path = "none found"
	}
	fmt.Fprintf(out, "%s %s\n\n", styleHeader.Render("Config file:"), path)
	fmt.Fprintln(out, settingsTable(settingRows(rc)))
	return nil
}

// setting is one row of `config debug`.
type setting struct {
	name   string
	value  string
	source config.ConfigSource
}

// settingRows lists the effective settings in file order. Shared properties
// follow, sorted by key.
func settingRows(rc *config.ResolvedConfig) []setting {
	r := rc.Config.Resolve
	rows := []setting{
		{"catalog.dir", strconv.Quote(rc.CatalogDir()), rc.Sources["catalog.dir"]},
		{"resolve.interactive", strconv.FormatBool(r.Interactive), rc.Sources["resolve.interactive"]},
		{"resolve.max_attempts", strconv.Itoa(r.MaxAttempts), rc.Sources["resolve.max_attempts"]},
		{"resolve.retain_answers", strconv.FormatBool(r.RetainAnswers), rc.Sources["resolve.retain_answers"]},
		{"resolve.standard_properties", strconv.FormatBool(r.StandardProperties), rc.Sources["resolve.standard_properties"]},
	}

	keys := make([]string, 0, len(rc.Config.Properties))
	for k := range rc.Config.Properties {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		name := "properties." + k
		rows = append(rows, setting{name, strconv.Quote(rc.Config.Properties[k]), rc.Sources[name]})
	}
	return rows
}

func settingsTable(rows []setting) string {
	cells := make([][]string, len(rows))
	for i, s := range rows {
		cells[i] = []string{s.name, s.value, string(s.source)}
	}

	return table.New().
		Border(lipgloss.NormalBorder()).
		Headers("SETTING", "VALUE", "SOURCE").
		Rows(cells...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return tableHeaderStyle
			case col == 2:
				return tableCellStyle.Foreground(sourceColors[rows[row].source])
			default:
				return tableCellStyle
			}
		}).
		String()
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	rc, meta, err := loadAndResolveConfig(nil)
	if err != nil {
		return err
	}

	result := validateResolved(rc, meta)
	writeValidation(cmd.OutOrStdout(), result)
	if result.HasErrors() {
		return fmt.Errorf("configuration has %d error(s)", len(result.Errors()))
	}
	return nil
}

// writeValidation prints errors before warnings, one issue per line.
func writeValidation(out io.Writer, result *config.ValidationResult) {
	errs, warns := result.Errors(), result.Warnings()
	if len(errs) == 0 && len(warns) == 0 {
		fmt.Fprintln(out, styleSuccess.Render("No issues found."))
		return
	}

	writeIssues(out, styleError.Render("Errors:"), errs)
	writeIssues(out, styleWarning.Render("Warnings:"), warns)
	fmt.Fprintf(out, "%d error(s), %d warning(s)\n", len(errs), len(warns))
}

func writeIssues(out io.Writer, label string, issues []config.ValidationIssue) {
	if len(issues) == 0 {
		return
	}
	fmt.Fprintln(out, label)
	for _, issue := range issues {
		fmt.Fprintf(out, "  [%s] %s\n", issue.Field, issue.Message)
	}
	fmt.Fprintln(out)
}
