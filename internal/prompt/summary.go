package prompt

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/AbdelazizMoustafa10m/stencil/internal/resolve"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	sourceStyle = lipgloss.NewStyle().Padding(0, 1).Faint(true)
)

// Summary renders the resolved properties as a table of key, value and
// source, in declaration order.
func Summary(result *resolve.Result) string {
	rows := make([][]string, 0, result.Len())
	for _, k := range result.Keys() {
		rows = append(rows, []string{k, result.Value(k), string(result.Source(k))})
	}

	return table.New().
		Border(lipgloss.NormalBorder()).
		Headers("PROPERTY", "VALUE", "SOURCE").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case col == 2:
				return sourceStyle
			default:
				return cellStyle
			}
		}).
		String()
}
