package ui

import (
	"context"
	"fmt"
	"os"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"boqview/internal/config"
	"boqview/internal/engine"
	"boqview/internal/export"
	"boqview/internal/model"
)

func boqRows(n int) []model.Row {
	rows := make([]model.Row, n)
	for i := range rows {
		if i%2 == 0 {
			rows[i] = model.Row{WBS1: "Architecture", WBS2: "Walls", Description: fmt.Sprintf("Brick wall %d", i), Unit: "m2", Qty: 2, Amount: float64(100 + i)}
		} else {
			rows[i] = model.Row{WBS1: "Structure", WBS2: "Slabs", Description: fmt.Sprintf("Concrete slab %d", i), Unit: "m3", Qty: 1, Amount: float64(200 + i)}
		}
	}
	return rows
}

func testModel(t *testing.T, rows []model.Row) *Model {
	t.Helper()
	cfg := &config.Config{
		DefaultLimit: 200,
		PageSize:     5,
		MaxPDFRows:   2000,
		Theme:        config.ThemeDark,
		Mode:         "all",
		Offline:      true,
	}
	m := initialModel(context.Background(), cfg, Source{Rows: rows, Label: "test"})
	m.Update(tea.WindowSizeMsg{Width: 160, Height: 8})
	return m
}

func press(m *Model, keys ...string) tea.Cmd {
	var last tea.Cmd
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		case "esc":
			msg = tea.KeyMsg{Type: tea.KeyEsc}
		case "tab":
			msg = tea.KeyMsg{Type: tea.KeyTab}
		case "left":
			msg = tea.KeyMsg{Type: tea.KeyLeft}
		case "right":
			msg = tea.KeyMsg{Type: tea.KeyRight}
		case "down":
			msg = tea.KeyMsg{Type: tea.KeyDown}
		case "space":
			msg = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		_, last = m.Update(msg)
	}
	return last
}

// run executes cmd, expanding batches, and returns every message produced.
func run(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, run(c)...)
		}
		return out
	}
	return []tea.Msg{msg}
}

func TestSearchSubmit(t *testing.T) {
	m := testModel(t, boqRows(20))
	press(m, "/", "wall", "enter")

	st := m.session.State()
	assert.Equal(t, "wall", st.Query.Text)
	assert.Equal(t, inlineNone, m.inlineMode)
	v := m.session.View()
	require.Len(t, v.Working, 10)
	for _, r := range v.Working {
		assert.Contains(t, r.Description, "wall")
	}
	assert.Equal(t, "10 rows match", m.lastMsg)
	assert.Len(t, m.tbl.Rows(), 5)
}

func TestSearchEscapeKeepsCommittedQuery(t *testing.T) {
	m := testModel(t, boqRows(20))
	press(m, "/", "wall", "enter")
	press(m, "/", " slab", "esc")

	st := m.session.State()
	assert.Equal(t, "wall", st.Query.Text)
	assert.Equal(t, "wall", st.Draft.Text)
	assert.Len(t, m.session.View().Working, 10)
}

func TestModeToggleInSearch(t *testing.T) {
	m := testModel(t, boqRows(20))
	press(m, "/", "wall slab", "tab", "enter")
	assert.Equal(t, model.MatchAny, m.session.State().Query.Mode)
	assert.Len(t, m.session.View().Working, 20)
}

func TestInvalidWhere(t *testing.T) {
	m := testModel(t, boqRows(20))
	press(m, "w", "amount >", "enter")
	assert.Empty(t, m.session.View().Working)
	assert.Contains(t, m.lastMsg, "Invalid where expression")

	press(m, "w")
	m.input.SetValue("")
	press(m, "enter")
	assert.Len(t, m.session.View().Working, 20)
}

func TestMarkApplyUndo(t *testing.T) {
	m := testModel(t, boqRows(20))
	first := m.session.View().Page[0]

	press(m, "x")
	assert.True(t, m.session.IsPending(first.ID))
	assert.Equal(t, pendingMark, m.tbl.Rows()[0][0])
	assert.Equal(t, 1, m.tbl.Cursor())

	press(m, "z")
	assert.Empty(t, m.session.State().Pending)

	m.tbl.SetCursor(0)
	press(m, "space", "a")
	assert.Equal(t, "removed 1 rows", m.lastMsg)
	assert.Equal(t, 1, m.session.State().Committed)
	assert.Len(t, m.session.View().Working, 19)
	assert.NotEqual(t, first.ID, m.session.View().Page[0].ID)

	press(m, "a")
	assert.Equal(t, "nothing marked in this view", m.lastMsg)
}

func TestFacetPicker(t *testing.T) {
	m := testModel(t, boqRows(20))
	press(m, "1")
	require.True(t, m.modalActive)
	require.Equal(t, modalFacet, m.modalKind)
	require.Len(t, m.facetItems, 2)
	assert.Equal(t, "Architecture", m.facetItems[0].value)

	press(m, "down", "space", "enter")
	assert.False(t, m.modalActive)
	assert.Equal(t, []string{"Structure"}, m.session.State().Filters[model.DimWBS1])
	assert.Len(t, m.session.View().Filtered, 10)
	assert.Contains(t, m.renderQueryLine(m.session.State()), "WBS-1=Structure")

	// reopening shows the current selection
	press(m, "1")
	assert.True(t, m.facetItems[1].selected)
	press(m, "esc", "F")
	assert.False(t, m.session.State().Filters.Active())
	assert.Len(t, m.session.View().Filtered, 20)
}

func TestPaging(t *testing.T) {
	m := testModel(t, boqRows(20))
	press(m, "right")
	assert.Equal(t, 2, m.session.View().PageNum)
	press(m, "G")
	assert.Equal(t, 4, m.session.View().PageNum)
	press(m, "right")
	assert.Equal(t, 4, m.session.View().PageNum)
	press(m, "g")
	assert.Equal(t, 1, m.session.View().PageNum)
	press(m, ":", "3", "enter")
	assert.Equal(t, 3, m.session.View().PageNum)
	press(m, ":", "x", "enter")
	assert.Equal(t, "invalid page number", m.lastMsg)
}

func TestDetailModal(t *testing.T) {
	m := testModel(t, boqRows(20))
	press(m, "/", "brick", "enter", "enter")
	require.True(t, m.modalActive)
	assert.Equal(t, modalDetail, m.modalKind)
	assert.Contains(t, stripANSI(m.modalBody), "Brick wall 0")

	press(m, "x")
	assert.Equal(t, "Row (marked for removal)", m.modalTitle)
	press(m, "esc")
	assert.False(t, m.modalActive)
	assert.Len(t, m.session.State().Pending, 1)
}

func TestStatsModal(t *testing.T) {
	m := testModel(t, boqRows(4))
	press(m, "s")
	require.Equal(t, modalStats, m.modalKind)
	body := stripANSI(m.modalBody)
	assert.Contains(t, body, "Amount by WBS-1")
	assert.Contains(t, body, "Structure")
	assert.Contains(t, body, "404 (2)")

	press(m, "left")
	assert.Equal(t, model.DimUnit, m.statsDim)
	assert.Contains(t, stripANSI(m.modalBody), "m3")
}

func TestExportCSV(t *testing.T) {
	t.Chdir(t.TempDir())
	m := testModel(t, boqRows(6))
	cmd := press(m, "e")
	require.NotNil(t, cmd)
	assert.True(t, m.exporting)
	assert.Nil(t, press(m, "e"))
	assert.Equal(t, "export already running", m.lastMsg)

	var done *exportDoneMsg
	for _, msg := range run(cmd) {
		if d, ok := msg.(exportDoneMsg); ok {
			done = &d
		}
	}
	require.NotNil(t, done)
	m.Update(*done)
	assert.False(t, m.exporting)
	assert.Equal(t, "exported 6 rows to boq_query_result.csv", m.lastMsg)

	data, err := os.ReadFile("boq_query_result.csv")
	require.NoError(t, err)
	assert.Equal(t, 7, len(strings.Split(string(data), "\n")))
}

func TestExportPDFRefused(t *testing.T) {
	t.Chdir(t.TempDir())
	m := testModel(t, boqRows(6))
	m.cfg.MaxPDFRows = 3
	assert.Nil(t, press(m, "p"))
	assert.False(t, m.exporting)
	assert.Contains(t, m.lastMsg, "PDF export refused")
	_, err := os.Stat("boq_query_result.pdf")
	assert.True(t, os.IsNotExist(err))
}

func TestExportPathUsesOut(t *testing.T) {
	m := testModel(t, boqRows(2))
	m.cfg.ExportOut = "out/result.xlsx"
	assert.Equal(t, "out/result.xlsx", m.exportPath(export.FormatXLSX))
	assert.Equal(t, "boq_query_result.csv", m.exportPath(export.FormatCSV))
}

func TestSummaryOffline(t *testing.T) {
	m := testModel(t, boqRows(2))
	assert.Nil(t, press(m, "i"))
	assert.Contains(t, m.lastMsg, "AI summary unavailable")
}

func TestFollowTick(t *testing.T) {
	m := testModel(t, boqRows(4))
	ch := make(chan model.Row, 4)
	m.rows = ch
	ch <- model.Row{WBS1: "MEP", Description: "Cable tray", Unit: "m", Qty: 3, Amount: 50}
	ch <- model.Row{WBS1: "MEP", Description: "Free item", Unit: "m", Qty: 1}

	_, cmd := m.Update(tickMsg{})
	assert.NotNil(t, cmd)
	assert.Equal(t, 6, m.store.Len())
	assert.Equal(t, 2, m.appended)
	assert.Len(t, m.session.View().Working, 5, "zero amount rows stay out")

	close(ch)
	_, cmd = m.Update(tickMsg{})
	assert.Nil(t, cmd)
	assert.Nil(t, m.rows)
}

func TestHelpRunsAction(t *testing.T) {
	m := testModel(t, boqRows(20))
	press(m, "?")
	require.Equal(t, modalHelp, m.modalKind)
	for i, it := range m.helpItems {
		if it.key.Type == m.keymap.NextPage.Type && it.text == "Next page" {
			m.helpSel = i
		}
	}
	cmd := press(m, "enter")
	require.NotNil(t, cmd)
	m.Update(cmd())
	assert.Equal(t, 2, m.session.View().PageNum)
}

func TestComputeWidths(t *testing.T) {
	w := computeWidths(160)
	sum := 0
	for _, x := range w {
		sum += x + 1
	}
	assert.Equal(t, 160, sum)
	assert.Equal(t, minDescWidth, computeWidths(40)[5])
}

func TestRenderHelpers(t *testing.T) {
	totals := engine.Totals{Count: 2, Amount: 10, QtyByUnit: []engine.UnitQty{{Unit: "m2", Qty: 8}, {Unit: "m3", Qty: 1200.5}}}
	assert.Equal(t, "8 m2 | 1,200.5 m3", qtyLine(totals))
	assert.Equal(t, "-", qtyLine(engine.Totals{}))
	assert.Equal(t, "WBS-1=A,B  Unit=m2", facetSummary(model.FacetFilters{model.DimUnit: {"m2"}, model.DimWBS1: {"A", "B"}}))
	assert.Equal(t, `"A","","","","x ""y""","m2","1","0","0","5"`,
		rowCSV(model.WorkingRow{Row: model.Row{WBS1: "A", Description: `x "y"`, Unit: "m2", Qty: 1, Amount: 5}, ID: "id"}))
	assert.Equal(t, "   12", padLeft("12", 5))
	assert.Equal(t, "a\nb", overlay("a\nx", "  \nb"))
}
