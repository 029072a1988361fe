// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/rigtags/internal/util"
)

// init picks the lipgloss color profile from TTY, NO_COLOR and FORCE_COLOR.
func init() {
	lipgloss.SetColorProfile(GetColorProfile())
}

// =============================================================================
// SHARED STYLES
// =============================================================================

var (
	// SectionStyle is used for language headings in listings.
	SectionStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39")) // Cyan

	// HeaderStyle is used for table column headers.
	HeaderStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")) // Light gray

	// SuccessStyle is used for the run summary.
	SuccessStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")). // Green
			Bold(true)

	// ErrorStyle is used for error messages.
	ErrorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")). // Red
			Bold(true)

	// WarningStyle is used for rejection warnings.
	WarningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")) // Yellow/Orange

	// DimStyle is used for disabled rows and secondary values.
	DimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("242")) // Dim gray
)

// =============================================================================
// TABLES
// =============================================================================

// table is a column-aligned listing. Widths are measured in terminal
// columns so wide symbol names do not break alignment.
type table struct {
	header []string
	rows   [][]string
	dim    []bool
}

func newTable(header ...string) *table {
	return &table{header: header}
}

func (t *table) add(cells ...string) {
	t.rows = append(t.rows, cells)
	t.dim = append(t.dim, false)
}

// addDim adds a row rendered with DimStyle.
func (t *table) addDim(cells ...string) {
	t.rows = append(t.rows, cells)
	t.dim = append(t.dim, true)
}

func (t *table) render(w io.Writer) error {
	all := append([][]string{t.header}, t.rows...)
	widths := util.ColumnWidths(all)

	line := func(cells []string) string {
		var b strings.Builder
		for i, cell := range cells {
			if i == len(cells)-1 {
				b.WriteString(cell)
				break
			}
			b.WriteString(util.PadRight(cell, widths[i]))
			b.WriteString("  ")
		}
		return b.String()
	}

	if _, err := io.WriteString(w, HeaderStyle.Render(line(t.header))+"\n"); err != nil {
		return err
	}
	for i, row := range t.rows {
		text := line(row)
		if t.dim[i] {
			text = DimStyle.Render(text)
		}
		if _, err := io.WriteString(w, text+"\n"); err != nil {
			return err
		}
	}
	return nil
}
