package engine

import "boqview/internal/model"

// DefaultLimit is the size of the unsearched preview.
const DefaultLimit = 200

// Predicate selects rows for a committed query.
type Predicate interface {
	Match(model.Row) bool
}

// BuildWorkingSet materializes the rows eligible for display. Rows without a
// strictly positive amount never enter. With no predicate the first limit rows
// are taken; with one, every matching row is. Ids are assigned by position in
// that list, then committed ids are dropped.
func BuildWorkingSet(rows []model.Row, pred Predicate, limit int, committed func(id string) bool) []model.WorkingRow {
	if limit <= 0 {
		limit = DefaultLimit
	}
	picked := make([]model.Row, 0, min(len(rows), limit))
	for _, r := range rows {
		if !(r.Amount > 0) {
			continue
		}
		if pred == nil {
			if len(picked) >= limit {
				break
			}
			picked = append(picked, r)
			continue
		}
		if pred.Match(r) {
			picked = append(picked, r)
		}
	}
	out := make([]model.WorkingRow, 0, len(picked))
	for i, r := range picked {
		id := RowID(r, i)
		if committed != nil && committed(id) {
			continue
		}
		out = append(out, model.WorkingRow{Row: r, ID: id})
	}
	return out
}
