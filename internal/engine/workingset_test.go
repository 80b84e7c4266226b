package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"boqview/internal/model"
	"boqview/internal/query"
)

func row(wbs1, wbs2, desc, unit string, qty, amount float64) model.Row {
	return model.Row{WBS1: wbs1, WBS2: wbs2, Description: desc, Unit: unit, Qty: qty, Amount: amount}
}

func TestRowIDDeterministic(t *testing.T) {
	r := row("A", "A1", "Brick wall", "m2", 5, 100)
	assert.Equal(t, RowID(r, 3), RowID(r, 3))
	assert.NotEqual(t, RowID(r, 3), RowID(r, 4))

	changed := []model.Row{
		{WBS1: "B", WBS2: "A1", Description: "Brick wall", Unit: "m2", Qty: 5, Amount: 100},
		{WBS1: "A", WBS2: "A2", Description: "Brick wall", Unit: "m2", Qty: 5, Amount: 100},
		{WBS1: "A", WBS2: "A1", WBS3: "x", Description: "Brick wall", Unit: "m2", Qty: 5, Amount: 100},
		{WBS1: "A", WBS2: "A1", WBS4: "x", Description: "Brick wall", Unit: "m2", Qty: 5, Amount: 100},
		{WBS1: "A", WBS2: "A1", Description: "Brick walls", Unit: "m2", Qty: 5, Amount: 100},
		{WBS1: "A", WBS2: "A1", Description: "Brick wall", Unit: "m3", Qty: 5, Amount: 100},
		{WBS1: "A", WBS2: "A1", Description: "Brick wall", Unit: "m2", Qty: 6, Amount: 100},
		{WBS1: "A", WBS2: "A1", Description: "Brick wall", Unit: "m2", Qty: 5, Amount: 101},
	}
	for _, c := range changed {
		assert.NotEqual(t, RowID(r, 3), RowID(c, 3), "%+v", c)
	}
}

func TestRowIDFieldBoundaries(t *testing.T) {
	a := model.Row{WBS1: "ab", WBS2: "c", Amount: 1}
	b := model.Row{WBS1: "a", WBS2: "bc", Amount: 1}
	assert.NotEqual(t, RowID(a, 0), RowID(b, 0))
}

func TestBuildWorkingSetDefaultView(t *testing.T) {
	rows := []model.Row{
		row("A", "", "zero", "m2", 1, 0),
		row("A", "", "negative", "m2", 1, -5),
		row("A", "", "one", "m2", 1, 10),
		row("A", "", "two", "m2", 1, 20),
		row("A", "", "three", "m2", 1, 30),
	}
	ws := BuildWorkingSet(rows, nil, 2, nil)
	require.Len(t, ws, 2)
	assert.Equal(t, "one", ws[0].Description)
	assert.Equal(t, "two", ws[1].Description)
	assert.Equal(t, RowID(rows[2], 0), ws[0].ID)
	assert.Equal(t, RowID(rows[3], 1), ws[1].ID)
}

func TestBuildWorkingSetQueryIsUnbounded(t *testing.T) {
	var rows []model.Row
	for i := 0; i < 10; i++ {
		rows = append(rows, row("A", "", "wall", "m2", 1, 1))
	}
	rows = append(rows, row("A", "", "door", "ea", 1, 1))
	m, err := query.CompileQuery(model.Query{Text: "wall", Mode: model.MatchAll})
	require.NoError(t, err)

	ws := BuildWorkingSet(rows, m, 3, nil)
	assert.Len(t, ws, 10)
	seen := map[string]bool{}
	for _, r := range ws {
		assert.False(t, seen[r.ID], "duplicate id")
		seen[r.ID] = true
	}
}

func TestBuildWorkingSetDropsCommitted(t *testing.T) {
	rows := []model.Row{
		row("A", "", "one", "m2", 1, 10),
		row("A", "", "one", "m2", 1, 10),
		row("A", "", "three", "m2", 1, 30),
	}
	first := BuildWorkingSet(rows, nil, 0, nil)
	require.Len(t, first, 3)
	assert.NotEqual(t, first[0].ID, first[1].ID, "identical rows get distinct ids")

	gone := first[1].ID
	second := BuildWorkingSet(rows, nil, 0, func(id string) bool { return id == gone })
	require.Len(t, second, 2)
	assert.Equal(t, first[0].ID, second[0].ID)
	assert.Equal(t, first[2].ID, second[1].ID)
}

func TestBuildWorkingSetAmountFilterNaN(t *testing.T) {
	nan := 0.0
	nan = nan / nan
	rows := []model.Row{row("A", "", "nan", "m2", 1, nan), row("A", "", "ok", "m2", 1, 1)}
	ws := BuildWorkingSet(rows, nil, 0, nil)
	require.Len(t, ws, 1)
	assert.Equal(t, "ok", ws[0].Description)
}
