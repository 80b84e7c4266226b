package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/mattn/go-runewidth"

	"boqview/internal/export"
	"boqview/internal/model"
)

type column struct {
	title   string
	width   int
	numeric bool
}

// tableColumns is the grid layout. Description has width 0 and takes whatever is left.
var tableColumns = []column{
	{title: " ", width: 1},
	{title: "WBS-1", width: 12},
	{title: "WBS-2", width: 12},
	{title: "WBS-3", width: 12},
	{title: "WBS-4", width: 10},
	{title: "Description", width: 0},
	{title: "Unit", width: 6},
	{title: "Qty", width: 10, numeric: true},
	{title: "Material", width: 12, numeric: true},
	{title: "Labor", width: 12, numeric: true},
	{title: "Amount", width: 14, numeric: true},
}

const (
	minDescWidth = 16
	pendingMark  = "x"
)

func (m *Model) applyColumns() {
	widths := computeWidths(m.termWidth)
	cs := make([]table.Column, len(tableColumns))
	for i, c := range tableColumns {
		cs[i] = table.Column{Title: c.title, Width: widths[i]}
	}
	m.tbl.SetColumns(cs)
}

// computeWidths fits the grid into the terminal width, growing or shrinking
// the description column only.
func computeWidths(termWidth int) []int {
	if termWidth <= 0 {
		termWidth = 160
	}
	widths := make([]int, len(tableColumns))
	used := 0
	desc := 0
	for i, c := range tableColumns {
		widths[i] = c.width
		// one cell of right padding per column
		used += c.width + 1
		if c.width == 0 {
			desc = i
		}
	}
	w := termWidth - used
	if w < minDescWidth {
		w = minDescWidth
	}
	widths[desc] = w
	return widths
}

func (m *Model) refreshTable() {
	page := m.session.View().Page
	widths := computeWidths(m.termWidth)
	rows := make([]table.Row, len(page))
	for i, r := range page {
		rows[i] = tableRow(r, m.session.IsPending(r.ID), widths)
	}
	m.tbl.SetRows(rows)
	if n := len(rows); n == 0 {
		m.tbl.SetCursor(0)
	} else if m.tbl.Cursor() >= n {
		m.tbl.SetCursor(n - 1)
	}
}

func tableRow(r model.WorkingRow, pending bool, widths []int) table.Row {
	mark := " "
	if pending {
		mark = pendingMark
	}
	cells := []string{
		mark,
		r.WBS1,
		r.WBS2,
		r.WBS3,
		r.WBS4,
		oneLine(r.Description),
		r.Unit,
		export.FormatNumber(r.Qty),
		export.FormatNumber(r.Material),
		export.FormatNumber(r.Labor),
		export.FormatNumber(r.Amount),
	}
	for i, c := range tableColumns {
		if c.numeric {
			cells[i] = padLeft(cells[i], widths[i])
		} else {
			cells[i] = runewidth.Truncate(cells[i], widths[i], "…")
		}
	}
	return table.Row(cells)
}

// currentRow is the row under the cursor, if any.
func (m *Model) currentRow() (model.WorkingRow, bool) {
	page := m.session.View().Page
	idx := m.tbl.Cursor()
	if idx < 0 || idx >= len(page) {
		return model.WorkingRow{}, false
	}
	return page[idx], true
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func padLeft(s string, w int) string {
	n := runewidth.StringWidth(s)
	if n >= w {
		return s
	}
	return strings.Repeat(" ", w-n) + s
}

func padRight(s string, w int) string {
	n := runewidth.StringWidth(s)
	if n >= w {
		return s
	}
	return s + strings.Repeat(" ", w-n)
}
