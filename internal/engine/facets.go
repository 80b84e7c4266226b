package engine

import (
	"sort"

	"boqview/internal/model"
)

var hierarchy = []model.Dimension{model.DimWBS1, model.DimWBS2, model.DimWBS3, model.DimWBS4}

// ApplyFacets keeps the rows accepted by every dimension that has a selection.
func ApplyFacets(rows []model.WorkingRow, filters model.FacetFilters) []model.WorkingRow {
	sets := selectionSets(filters, model.Dimensions)
	if len(sets) == 0 {
		out := make([]model.WorkingRow, len(rows))
		copy(out, rows)
		return out
	}
	out := make([]model.WorkingRow, 0, len(rows))
	for _, r := range rows {
		if accepted(r.Row, sets) {
			out = append(out, r)
		}
	}
	return out
}

// WithSelection returns a copy of filters with dim set to values. Changing a
// hierarchy level clears every deeper level; unit is independent.
func WithSelection(filters model.FacetFilters, dim model.Dimension, values []string) model.FacetFilters {
	out := filters.Clone()
	vals := dedupe(values)
	if len(vals) == 0 {
		delete(out, dim)
	} else {
		out[dim] = vals
	}
	if depth := dim.Depth(); depth > 0 {
		for _, d := range hierarchy {
			if d.Depth() > depth {
				delete(out, d)
			}
		}
	}
	return out
}

// FacetOptions lists the distinct non-empty values of dim, sorted. Hierarchy
// options only consider rows passing the selections of shallower levels; unit
// options come from every row.
func FacetOptions(rows []model.WorkingRow, filters model.FacetFilters, dim model.Dimension) []string {
	var sets map[model.Dimension]map[string]struct{}
	if depth := dim.Depth(); depth > 1 {
		sets = selectionSets(filters, hierarchy[:depth-1])
	}
	seen := map[string]struct{}{}
	for _, r := range rows {
		if len(sets) > 0 && !accepted(r.Row, sets) {
			continue
		}
		v := dim.Value(r.Row)
		if v == "" {
			continue
		}
		seen[v] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for v := range seen {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// Reconcile drops selected values that are no longer offered as options.
// Levels are pruned top-down so each level sees its reconciled ancestors.
func Reconcile(rows []model.WorkingRow, filters model.FacetFilters) model.FacetFilters {
	out := filters.Clone()
	for _, d := range model.Dimensions {
		sel := out[d]
		if len(sel) == 0 {
			continue
		}
		opts := FacetOptions(rows, out, d)
		offered := make(map[string]struct{}, len(opts))
		for _, o := range opts {
			offered[o] = struct{}{}
		}
		kept := sel[:0:0]
		for _, v := range sel {
			if _, ok := offered[v]; ok {
				kept = append(kept, v)
			}
		}
		if len(kept) == 0 {
			delete(out, d)
		} else {
			out[d] = kept
		}
	}
	return out
}

func selectionSets(filters model.FacetFilters, dims []model.Dimension) map[model.Dimension]map[string]struct{} {
	sets := map[model.Dimension]map[string]struct{}{}
	for _, d := range dims {
		vals := filters[d]
		if len(vals) == 0 {
			continue
		}
		set := make(map[string]struct{}, len(vals))
		for _, v := range vals {
			set[v] = struct{}{}
		}
		sets[d] = set
	}
	return sets
}

func accepted(r model.Row, sets map[model.Dimension]map[string]struct{}) bool {
	for d, set := range sets {
		if _, ok := set[d.Value(r)]; !ok {
			return false
		}
	}
	return true
}

func dedupe(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
