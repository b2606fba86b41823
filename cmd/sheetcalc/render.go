package main

import (
	"strconv"
	"strings"

	"charm.land/lipgloss/v2"
	"charm.land/lipgloss/v2/table"
	"github.com/midbel/sheetcalc/grid"
	"github.com/midbel/sheetcalc/layout"
	"github.com/midbel/sheetcalc/value"
)

var (
	failure = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF5F5F")).Bold(true)
	muted   = lipgloss.NewStyle().Foreground(lipgloss.Color("#8A8A8A"))
	title   = lipgloss.NewStyle().Foreground(lipgloss.Color("#5FAFFF")).Bold(true).Underline(true)
	header  = lipgloss.NewStyle().Foreground(lipgloss.Color("#8A8A8A")).Bold(true).Padding(0, 1)
	cell    = lipgloss.NewStyle().Padding(0, 1)
)

func render(v value.Value) string {
	if value.IsError(v) {
		return failure.Render(v.String())
	}
	return v.String()
}

func isErrorText(str string) bool {
	_, ok := value.ErrorFromCode(str)
	return ok
}

func renderSheet(rows [][]string) string {
	var (
		size    = width(rows)
		headers = []string{""}
	)
	for col := 1; col <= size; col++ {
		headers = append(headers, layout.IndexToString(int64(col)))
	}
	tab := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(muted).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow || col == 0 {
				return header
			}
			if row < len(rows) && col-1 < len(rows[row]) && isErrorText(rows[row][col-1]) {
				return failure.Padding(0, 1)
			}
			return cell
		})
	for i, r := range rows {
		line := []string{strconv.Itoa(i + 1)}
		line = append(line, r[:size]...)
		tab.Row(line...)
	}
	return tab.String()
}

func renderContents(sh *grid.Sheet) string {
	var list []string
	for c := range sh.Cells() {
		if c.Raw == "" {
			continue
		}
		str := c.Position.Local().Addr() + " " + c.Raw
		if c.Format != "" {
			str += " " + muted.Render("["+c.Format+"]")
		}
		list = append(list, str)
	}
	return strings.Join(list, "\n")
}

// width returns the number of columns actually used in rows.
func width(rows [][]string) int {
	var n int
	for _, r := range rows {
		for i := len(r) - 1; i >= n; i-- {
			if r[i] != "" {
				n = i + 1
				break
			}
		}
	}
	return n
}
