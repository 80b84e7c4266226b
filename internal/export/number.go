package export

import (
	"math"

	"github.com/dustin/go-humanize"
)

// FormatNumber groups thousands and keeps at most two decimals: 1234.5 -> "1,234.5".
func FormatNumber(v float64) string {
	return humanize.CommafWithDigits(safeNum(v), 2)
}

func safeNum(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
