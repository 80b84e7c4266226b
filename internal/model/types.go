package model

import (
	"strings"
)

// Row is one BOQ line as delivered by a source. Rows are never mutated in place.
type Row struct {
	WBS1        string  `json:"wbs1"`
	WBS2        string  `json:"wbs2"`
	WBS3        string  `json:"wbs3"`
	WBS4        string  `json:"wbs4"`
	Description string  `json:"description"`
	Unit        string  `json:"unit"`
	Qty         float64 `json:"qty"`
	Material    float64 `json:"material"`
	Labor       float64 `json:"labor"`
	Amount      float64 `json:"amount"`
}

// WorkingRow is a Row that entered the working set, tagged with its stable id.
type WorkingRow struct {
	Row
	ID string `json:"-"`
}

// Columns is the fixed column order used by sources and exports.
var Columns = []string{
	"WBS-1",
	"WBS-2",
	"WBS-3",
	"WBS-4",
	"Description",
	"Unit",
	"Qty",
	"Material",
	"Labor",
	"Amount",
}

// UnspecifiedUnit stands in for a blank unit label.
const UnspecifiedUnit = "-"

// NormalizeUnit trims u and maps blank units to UnspecifiedUnit.
func NormalizeUnit(u string) string {
	u = strings.TrimSpace(u)
	if u == "" {
		return UnspecifiedUnit
	}
	return u
}

type MatchMode string

const (
	MatchAll MatchMode = "all"
	MatchAny MatchMode = "any"
)

// ParseMatchMode accepts "all" or "any" (case-insensitive); blank means all.
func ParseMatchMode(s string) (MatchMode, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "all":
		return MatchAll, true
	case "any":
		return MatchAny, true
	}
	return MatchAll, false
}

func (m MatchMode) String() string {
	if m == MatchAny {
		return "ANY"
	}
	return "ALL"
}

// Query is the committed search state. Draft input lives elsewhere until submitted.
type Query struct {
	Text  string    `json:"text"`
	Mode  MatchMode `json:"mode"`
	Where string    `json:"where,omitempty"`
}

// Empty reports whether the query selects the default top-N view.
func (q Query) Empty() bool {
	return strings.TrimSpace(q.Text) == "" && strings.TrimSpace(q.Where) == ""
}

// Dimension is one of the five facet dimensions.
type Dimension int

const (
	DimWBS1 Dimension = iota
	DimWBS2
	DimWBS3
	DimWBS4
	DimUnit
)

// Dimensions lists every facet dimension, hierarchy first.
var Dimensions = []Dimension{DimWBS1, DimWBS2, DimWBS3, DimWBS4, DimUnit}

// Depth is the hierarchy level (1..4); unit has depth 0 and never cascades.
func (d Dimension) Depth() int {
	switch d {
	case DimWBS1:
		return 1
	case DimWBS2:
		return 2
	case DimWBS3:
		return 3
	case DimWBS4:
		return 4
	}
	return 0
}

func (d Dimension) String() string {
	switch d {
	case DimWBS1:
		return "WBS-1"
	case DimWBS2:
		return "WBS-2"
	case DimWBS3:
		return "WBS-3"
	case DimWBS4:
		return "WBS-4"
	case DimUnit:
		return "Unit"
	}
	return "?"
}

// Value returns the row's value for d. Units come back normalized.
func (d Dimension) Value(r Row) string {
	switch d {
	case DimWBS1:
		return r.WBS1
	case DimWBS2:
		return r.WBS2
	case DimWBS3:
		return r.WBS3
	case DimWBS4:
		return r.WBS4
	case DimUnit:
		return NormalizeUnit(r.Unit)
	}
	return ""
}

// FacetFilters maps each dimension to its accepted values. A missing or empty
// entry accepts every value.
type FacetFilters map[Dimension][]string

// Clone returns a deep copy so callers can derive new filter states.
func (f FacetFilters) Clone() FacetFilters {
	out := make(FacetFilters, len(f))
	for d, vals := range f {
		if len(vals) == 0 {
			continue
		}
		cp := make([]string, len(vals))
		copy(cp, vals)
		out[d] = cp
	}
	return out
}

// Active reports whether any dimension has a selection.
func (f FacetFilters) Active() bool {
	for _, vals := range f {
		if len(vals) > 0 {
			return true
		}
	}
	return false
}

// Accepts reports whether v is accepted for dimension d.
func (f FacetFilters) Accepts(d Dimension, v string) bool {
	vals := f[d]
	if len(vals) == 0 {
		return true
	}
	for _, s := range vals {
		if s == v {
			return true
		}
	}
	return false
}
