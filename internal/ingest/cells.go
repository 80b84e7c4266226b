package ingest

import (
	"math"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"

	"boqview/internal/model"
)

// HeaderIndex maps each non-blank header cell to its column index. Later
// duplicates win.
func HeaderIndex(header []string) map[string]int {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		if k := toText(h); k != "" {
			idx[k] = i
		}
	}
	return idx
}

// MissingColumns lists the required columns absent from header, in column order.
func MissingColumns(header []string) []string {
	idx := HeaderIndex(header)
	var missing []string
	for _, c := range model.Columns {
		if _, ok := idx[c]; !ok {
			missing = append(missing, c)
		}
	}
	return missing
}

func checkHeader(header []string) (map[string]int, error) {
	if missing := MissingColumns(header); len(missing) > 0 {
		return nil, eris.Wrapf(ErrMissingColumns, "missing %s", strings.Join(missing, ", "))
	}
	return HeaderIndex(header), nil
}

// rowFromCells builds a Row from one record. ok is false for rows whose
// classification and description cells are all blank.
func rowFromCells(cells []string, idx map[string]int) (model.Row, bool) {
	cell := func(name string) string {
		i, found := idx[name]
		if !found || i >= len(cells) {
			return ""
		}
		return cells[i]
	}
	r := model.Row{
		WBS1:        toText(cell("WBS-1")),
		WBS2:        toText(cell("WBS-2")),
		WBS3:        toText(cell("WBS-3")),
		WBS4:        toText(cell("WBS-4")),
		Description: toText(cell("Description")),
		Unit:        toText(cell("Unit")),
		Qty:         toNumber(cell("Qty")),
		Material:    toNumber(cell("Material")),
		Labor:       toNumber(cell("Labor")),
		Amount:      toNumber(cell("Amount")),
	}
	if r.WBS1 == "" && r.WBS2 == "" && r.WBS3 == "" && r.WBS4 == "" && r.Description == "" {
		return model.Row{}, false
	}
	return r, true
}

func toText(s string) string { return strings.TrimSpace(s) }

// toNumber parses a cell with optional thousands separators. Anything that is
// not a finite number reads as zero.
func toNumber(s string) float64 {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
