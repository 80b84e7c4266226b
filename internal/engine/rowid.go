package engine

import (
	"strconv"
	"strings"

	"github.com/google/uuid"

	"boqview/internal/model"
)

var rowNamespace = uuid.MustParse("3c6f0b7e-2a41-5d0c-9e8b-61d4f2a7c915")

// RowID derives a row's id from its content and its ordinal in the current
// materialization pass. Fields are length-prefixed before hashing so that
// shifting text between adjacent fields changes the id.
func RowID(r model.Row, ordinal int) string {
	fields := [...]string{
		r.WBS1,
		r.WBS2,
		r.WBS3,
		r.WBS4,
		r.Description,
		r.Unit,
		formatNum(r.Qty),
		formatNum(r.Amount),
		strconv.Itoa(ordinal),
	}
	var b strings.Builder
	for _, f := range fields {
		b.WriteString(strconv.Itoa(len(f)))
		b.WriteByte(':')
		b.WriteString(f)
	}
	return uuid.NewSHA1(rowNamespace, []byte(b.String())).String()
}

func formatNum(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
