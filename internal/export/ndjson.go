package export

import (
	"bufio"
	"encoding/json"
	"io"

	"boqview/internal/model"
)

func WriteNDJSON(w io.Writer, rows []model.WorkingRow) error {
	bw := bufio.NewWriter(w)
	enc := json.NewEncoder(bw)
	enc.SetEscapeHTML(false)
	for _, r := range rows {
		row := r.Row
		row.Qty, row.Material, row.Labor, row.Amount = safeNum(row.Qty), safeNum(row.Material), safeNum(row.Labor), safeNum(row.Amount)
		if err := enc.Encode(row); err != nil {
			return err
		}
	}
	return bw.Flush()
}
