package ingest

import (
	"context"
	"encoding/csv"
	"io"
	"os"
	"strings"

	"github.com/jszwec/csvutil"
	"github.com/rotisserie/eris"

	"boqview/internal/model"
)

// record is one CSV line keyed by header name. Numbers stay text so thousands
// separators can be stripped before parsing.
type record struct {
	WBS1        string `csv:"WBS-1"`
	WBS2        string `csv:"WBS-2"`
	WBS3        string `csv:"WBS-3"`
	WBS4        string `csv:"WBS-4"`
	Description string `csv:"Description"`
	Unit        string `csv:"Unit"`
	Qty         string `csv:"Qty"`
	Material    string `csv:"Material"`
	Labor       string `csv:"Labor"`
	Amount      string `csv:"Amount"`
}

var columnIndex = HeaderIndex(model.Columns)

func (r record) row() (model.Row, bool) {
	return rowFromCells([]string{
		r.WBS1, r.WBS2, r.WBS3, r.WBS4, r.Description,
		r.Unit, r.Qty, r.Material, r.Labor, r.Amount,
	}, columnIndex)
}

func LoadCSV(ctx context.Context, path string) (Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return Result{}, eris.Wrapf(err, "open %s", path)
	}
	defer f.Close()
	return ReadCSV(ctx, f)
}

// ReadCSV decodes a CSV stream whose first record is the header. Extra
// columns are ignored.
func ReadCSV(ctx context.Context, r io.Reader) (Result, error) {
	cr := csv.NewReader(r)
	cr.ReuseRecord = true
	header, err := cr.Read()
	if err == io.EOF {
		return Result{}, eris.Wrap(ErrMissingColumns, "empty csv")
	}
	if err != nil {
		return Result{}, eris.Wrap(err, "read csv header")
	}
	header = cleanHeader(header)
	if _, err := checkHeader(header); err != nil {
		return Result{}, err
	}

	dec, err := csvutil.NewDecoder(cr, header...)
	if err != nil {
		return Result{}, eris.Wrap(err, "csv decoder")
	}
	res := Result{Header: header}
	for n := 0; ; n++ {
		if n%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return Result{}, err
			}
		}
		var rec record
		if err := dec.Decode(&rec); err == io.EOF {
			break
		} else if err != nil {
			return Result{}, eris.Wrapf(err, "decode csv record %d", n+1)
		}
		row, ok := rec.row()
		if !ok {
			res.Skipped++
			continue
		}
		res.Rows = append(res.Rows, row)
	}
	return res, nil
}

// DecodeLine decodes one CSV line against a header captured at load.
func DecodeLine(header []string, line string) (model.Row, bool, error) {
	if strings.TrimSpace(line) == "" {
		return model.Row{}, false, nil
	}
	dec, err := csvutil.NewDecoder(csv.NewReader(strings.NewReader(line)), header...)
	if err != nil {
		return model.Row{}, false, eris.Wrap(err, "csv decoder")
	}
	var rec record
	if err := dec.Decode(&rec); err != nil {
		if err == io.EOF {
			return model.Row{}, false, nil
		}
		return model.Row{}, false, eris.Wrapf(err, "decode line %q", line)
	}
	row, ok := rec.row()
	return row, ok, nil
}

func cleanHeader(header []string) []string {
	out := make([]string, len(header))
	for i, h := range header {
		if i == 0 {
			h = strings.TrimPrefix(h, "\ufeff")
		}
		out[i] = toText(h)
	}
	return out
}
