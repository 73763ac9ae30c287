// Package ui renders the board for the terminal.
package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/kylerisse/dadboard/pkg/board"
	"github.com/kylerisse/dadboard/pkg/trigger"
)

var (
	purple = lipgloss.Color("99")
	green  = lipgloss.Color("76")
	red    = lipgloss.Color("204")
	yellow = lipgloss.Color("214")
	dim    = lipgloss.Color("243")
	faint  = lipgloss.Color("238")
)

var (
	SuccessStyle = lipgloss.NewStyle().Foreground(green)
	ErrorStyle   = lipgloss.NewStyle().Foreground(red)
	WarnStyle    = lipgloss.NewStyle().Foreground(yellow)
	MutedStyle   = lipgloss.NewStyle().Foreground(dim)
	BoldStyle    = lipgloss.NewStyle().Bold(true)
)

func Muted(s string) string { return MutedStyle.Render(s) }

func SuccessMsg(format string, a ...any) string {
	return SuccessStyle.Render("✓") + " " + fmt.Sprintf(format, a...)
}

func ErrorMsg(format string, a ...any) string {
	return ErrorStyle.Render("✗") + " " + fmt.Sprintf(format, a...)
}

// Headline renders the "All PCs Ready" line in green or red.
func Headline(allReady bool) string {
	style := ErrorStyle
	if allReady {
		style = SuccessStyle
	}
	return style.Bold(true).Render(board.Headline(allReady))
}

// Report renders the outcome of a launch or invite action.
func Report(r trigger.Report) string {
	if r.OK {
		return SuccessMsg("%s", r.Message)
	}
	return ErrorMsg("%s", r.Message)
}

// Board renders the headline, the per-PC table and the last action message.
func Board(snap board.Snapshot) string {
	var sb strings.Builder
	sb.WriteString(Headline(snap.AllReady))
	sb.WriteString("\n")

	rows := make([][]string, len(snap.Rows))
	for i, r := range snap.Rows {
		rows[i] = r.Cells()
	}
	sb.WriteString(Table(board.Headers, rows))
	sb.WriteString("\n")

	if len(snap.Addresses) > 0 {
		for _, r := range snap.Rows {
			if addr, ok := snap.Addresses[r.PC]; ok {
				sb.WriteString(Muted(fmt.Sprintf("%s → %s", r.PC, addr)))
				sb.WriteString("\n")
			}
		}
	}
	if snap.Message != "" {
		sb.WriteString(snap.Message)
		sb.WriteString("\n")
	}
	if !snap.UpdatedAt.IsZero() {
		sb.WriteString(Muted("updated " + snap.UpdatedAt.Local().Format("15:04:05")))
		sb.WriteString("\n")
	}
	return sb.String()
}

// Table renders a styled table with rounded borders. Cells reading YES,
// NO, OFFLINE or STALE are colored.
func Table(headers []string, rows [][]string) string {
	headerStyle := lipgloss.NewStyle().
		Foreground(purple).
		Bold(true).
		Padding(0, 1)

	cellStyle := lipgloss.NewStyle().Padding(0, 1)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(faint)).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			if row < 0 || row >= len(rows) || col >= len(rows[row]) {
				return cellStyle
			}
			return cellStyle.Inherit(valueStyle(rows[row][col]))
		}).
		Headers(headers...).
		Rows(rows...)

	return t.String()
}

func valueStyle(cell string) lipgloss.Style {
	switch {
	case cell == "YES" || strings.HasPrefix(cell, "YES "):
		return SuccessStyle
	case cell == "NO" || cell == "OFFLINE":
		return ErrorStyle
	case strings.HasPrefix(cell, "STALE"):
		return WarnStyle
	}
	return lipgloss.NewStyle()
}
