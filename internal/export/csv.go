package export

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"boqview/internal/model"
)

// WriteCSV writes the header and one line per row. Every field is quoted and
// embedded quotes are doubled; lines are joined by "\n" with no trailing newline.
func WriteCSV(w io.Writer, rows []model.WorkingRow) error {
	bw := bufio.NewWriter(w)
	writeCSVLine(bw, model.Columns)
	for _, r := range rows {
		bw.WriteByte('\n')
		writeCSVLine(bw, csvFields(r.Row))
	}
	return bw.Flush()
}

// AppendCSV writes rows as newline-terminated data lines, without a header,
// for appending to a file a follower is tailing.
func AppendCSV(w io.Writer, rows []model.Row) error {
	bw := bufio.NewWriter(w)
	for _, r := range rows {
		writeCSVLine(bw, csvFields(r))
		bw.WriteByte('\n')
	}
	return bw.Flush()
}

func csvFields(r model.Row) []string {
	return []string{
		r.WBS1, r.WBS2, r.WBS3, r.WBS4,
		r.Description, r.Unit,
		plainNumber(r.Qty), plainNumber(r.Material), plainNumber(r.Labor), plainNumber(r.Amount),
	}
}

func writeCSVLine(bw *bufio.Writer, fields []string) {
	for i, f := range fields {
		if i > 0 {
			bw.WriteByte(',')
		}
		bw.WriteByte('"')
		bw.WriteString(strings.ReplaceAll(f, `"`, `""`))
		bw.WriteByte('"')
	}
}

// plainNumber is the shortest decimal form, without exponent.
func plainNumber(v float64) string {
	return strconv.FormatFloat(safeNum(v), 'f', -1, 64)
}
