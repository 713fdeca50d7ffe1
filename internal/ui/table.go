package ui

import (
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
)

// TableColumn defines a table column with name and width.
type TableColumn struct {
	Title string
	Width int
}

// NewTable creates a non-focused Bubbles table with the CLI styling.
func NewTable(columns []TableColumn, rows []table.Row) table.Model {
	cols := make([]table.Column, len(columns))
	for i, c := range columns {
		cols[i] = table.Column{Title: c.Title, Width: c.Width}
	}

	t := table.New(
		table.WithColumns(cols),
		table.WithRows(rows),
		table.WithFocused(false),
		table.WithHeight(len(rows)+1), // +1 for header
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(ColorMuted).
		BorderBottom(true).
		Bold(true).
		Foreground(ColorPrimary)
	s.Cell = s.Cell.Foreground(ColorPrimary)
	// Nothing is selectable in CLI output.
	s.Selected = lipgloss.NewStyle()

	t.SetStyles(s)
	return t
}

// RenderSimpleTable renders a non-interactive table string.
func RenderSimpleTable(columns []TableColumn, rows [][]string) string {
	if len(rows) == 0 {
		return ""
	}
	tableRows := make([]table.Row, len(rows))
	for i, row := range rows {
		tableRows[i] = table.Row(row)
	}
	return NewTable(columns, tableRows).View()
}

// PortRow is one line of the ports listing.
type PortRow struct {
	Port string
	// Holder describes the process holding the port lock, empty when free.
	Holder string
	// Configured marks the port named in the loaded config.
	Configured bool
}

// RenderPortTable renders serial ports with their lock status.
func RenderPortTable(rows []PortRow) string {
	if len(rows) == 0 {
		return "No serial ports found"
	}

	var out string
	out += lipgloss.NewStyle().
		Bold(true).
		Foreground(ColorPrimary).
		BorderStyle(lipgloss.NormalBorder()).
		BorderBottom(true).
		BorderForeground(ColorMuted).
		Render("  STATUS   PORT                           LOCK") + "\n"

	for _, row := range rows {
		icon := SuccessStyle().Render(SymbolComplete)
		lock := MutedStyle().Render("free")
		if row.Holder != "" {
			icon = WarningStyle().Render(SymbolLocked)
			lock = WarningStyle().Render(row.Holder)
		}
		port := row.Port
		if row.Configured {
			port = lipgloss.NewStyle().Bold(true).Render(row.Port + " *")
		}
		out += "  " + icon + "        " + padRight(port, 31) + lock + "\n"
	}
	return out
}

// padRight pads a string to the specified width.
func padRight(s string, width int) string {
	// Account for ANSI codes when calculating visible length
	visibleLen := lipgloss.Width(s)
	if visibleLen >= width {
		return s
	}
	for i := 0; i < width-visibleLen; i++ {
		s += " "
	}
	return s
}
