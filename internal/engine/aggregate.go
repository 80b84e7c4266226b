package engine

import (
	"math"
	"sort"
	"strings"

	"boqview/internal/model"
)

// UnitQty is the quantity total for one normalized unit.
type UnitQty struct {
	Unit string  `json:"unit"`
	Qty  float64 `json:"qty"`
}

// Totals are the running aggregates of a filtered view.
type Totals struct {
	Count     int       `json:"count"`
	Amount    float64   `json:"amount"`
	QtyByUnit []UnitQty `json:"qtyByUnit"`
}

// Aggregate sums amount and groups quantity by normalized unit. Pending rows
// still count; NaN and infinite values count as zero.
func Aggregate(rows []model.WorkingRow) Totals {
	t := Totals{Count: len(rows)}
	byUnit := map[string]float64{}
	for _, r := range rows {
		t.Amount += safeNum(r.Amount)
		byUnit[model.NormalizeUnit(r.Unit)] += safeNum(r.Qty)
	}
	t.QtyByUnit = make([]UnitQty, 0, len(byUnit))
	for u, q := range byUnit {
		t.QtyByUnit = append(t.QtyByUnit, UnitQty{Unit: u, Qty: q})
	}
	sort.Slice(t.QtyByUnit, func(i, j int) bool { return t.QtyByUnit[i].Unit < t.QtyByUnit[j].Unit })
	return t
}

// Bucket is the amount attributed to one value of a dimension.
type Bucket struct {
	Label  string  `json:"label"`
	Amount float64 `json:"amount"`
	Count  int     `json:"count"`
}

// AmountBy sums amount per distinct value of dim, largest first. Blank values
// and buckets summing to zero are left out.
func AmountBy(rows []model.WorkingRow, dim model.Dimension) []Bucket {
	idx := map[string]int{}
	var out []Bucket
	for _, r := range rows {
		label := strings.TrimSpace(dim.Value(r.Row))
		if label == "" {
			continue
		}
		i, ok := idx[label]
		if !ok {
			i = len(out)
			idx[label] = i
			out = append(out, Bucket{Label: label})
		}
		out[i].Amount += safeNum(r.Amount)
		out[i].Count++
	}
	kept := out[:0]
	for _, b := range out {
		if b.Amount != 0 {
			kept = append(kept, b)
		}
	}
	sort.SliceStable(kept, func(i, j int) bool {
		if kept[i].Amount == kept[j].Amount {
			return kept[i].Label < kept[j].Label
		}
		return kept[i].Amount > kept[j].Amount
	})
	return kept
}

func safeNum(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
