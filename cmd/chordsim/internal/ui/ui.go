// Package ui holds the small set of lipgloss-styled rendering helpers
// cmd/chordsim uses to print scenario summaries — adapted from
// getployz-ployz's cmd/ployz/ui package (Table/KeyValues), trimmed to
// the static, non-interactive subset a batch CLI needs.
package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

var (
	purple = lipgloss.Color("99")
	green  = lipgloss.Color("76")
	red    = lipgloss.Color("204")
	dim    = lipgloss.Color("243")
	faint  = lipgloss.Color("238")
)

var (
	AccentStyle  = lipgloss.NewStyle().Foreground(purple)
	SuccessStyle = lipgloss.NewStyle().Foreground(green)
	ErrorStyle   = lipgloss.NewStyle().Foreground(red)
	MutedStyle   = lipgloss.NewStyle().Foreground(dim)
	LabelStyle   = lipgloss.NewStyle().Foreground(dim)
	BoldStyle    = lipgloss.NewStyle().Bold(true)
)

func Accent(s string) string { return AccentStyle.Render(s) }
func Bold(s string) string   { return BoldStyle.Render(s) }

// Pass renders a boolean invariant result as a colored PASS/FAIL token.
func Pass(ok bool) string {
	if ok {
		return SuccessStyle.Render("PASS")
	}
	return ErrorStyle.Render("FAIL")
}

// Pair is one row of a KeyValues block.
type Pair struct {
	Key, Value string
}

func KV(key, value string) Pair { return Pair{Key: key, Value: value} }

// KeyValues renders aligned "key:  value" lines.
func KeyValues(pairs ...Pair) string {
	maxLen := 0
	for _, p := range pairs {
		if len(p.Key) > maxLen {
			maxLen = len(p.Key)
		}
	}
	var sb strings.Builder
	for _, p := range pairs {
		label := fmt.Sprintf("%-*s", maxLen+1, p.Key+":")
		sb.WriteString(LabelStyle.Render(label) + " " + p.Value + "\n")
	}
	return sb.String()
}

// Table renders a styled table with rounded borders, matching the
// ployz summary-table idiom (header row accented, body rows alternately
// muted for readability in a wide terminal).
func Table(headers []string, rows [][]string) string {
	headerStyle := lipgloss.NewStyle().Foreground(purple).Bold(true).Padding(0, 1)
	cellStyle := lipgloss.NewStyle().Padding(0, 1)
	oddStyle := cellStyle.Foreground(dim)
	evenStyle := cellStyle

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(faint)).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case row%2 == 0:
				return evenStyle
			default:
				return oddStyle
			}
		}).
		Headers(headers...).
		Rows(rows...)

	return t.String()
}
