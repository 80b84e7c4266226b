package ingest

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/xuri/excelize/v2"
)

// LoadXLSX reads the named worksheet. The first non-blank row is the header;
// it must carry every required column.
func LoadXLSX(ctx context.Context, path, sheet string) (Result, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return Result{}, eris.Wrapf(err, "open workbook %s", path)
	}
	defer f.Close()

	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	if idx, err := f.GetSheetIndex(sheet); err != nil || idx < 0 {
		return Result{}, eris.Wrapf(ErrNoValidSheet, "sheet %q not found in %s", sheet, path)
	}

	it, err := f.Rows(sheet)
	if err != nil {
		return Result{}, eris.Wrapf(err, "read sheet %s", sheet)
	}
	defer it.Close()

	res := Result{Sheet: sheet}
	var idx map[string]int
	for n := 0; it.Next(); n++ {
		if n%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return Result{}, err
			}
		}
		cells, err := it.Columns()
		if err != nil {
			return Result{}, eris.Wrapf(err, "read row %d of %s", n+1, sheet)
		}
		if blank(cells) {
			continue
		}
		if idx == nil {
			idx, err = checkHeader(cells)
			if err != nil {
				return Result{}, eris.Wrapf(err, "sheet %s", sheet)
			}
			res.Header = trimAll(cells)
			continue
		}
		r, ok := rowFromCells(cells, idx)
		if !ok {
			res.Skipped++
			continue
		}
		res.Rows = append(res.Rows, r)
	}
	if err := it.Error(); err != nil {
		return Result{}, eris.Wrapf(err, "read sheet %s", sheet)
	}
	if idx == nil {
		return Result{}, eris.Wrapf(ErrMissingColumns, "sheet %s is empty", sheet)
	}
	return res, nil
}

// FirstRow returns the first non-blank row of every worksheet, in workbook order.
func FirstRow(path string) ([]string, map[string][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, nil, eris.Wrapf(err, "open workbook %s", path)
	}
	defer f.Close()

	names := f.GetSheetList()
	heads := make(map[string][]string, len(names))
	for _, name := range names {
		it, err := f.Rows(name)
		if err != nil {
			return nil, nil, eris.Wrapf(err, "read sheet %s", name)
		}
		for it.Next() {
			cells, err := it.Columns()
			if err != nil {
				break
			}
			if !blank(cells) {
				heads[name] = trimAll(cells)
				break
			}
		}
		_ = it.Close()
	}
	return names, heads, nil
}

func blank(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func trimAll(cells []string) []string {
	out := make([]string, len(cells))
	for i, c := range cells {
		out[i] = toText(c)
	}
	return out
}
