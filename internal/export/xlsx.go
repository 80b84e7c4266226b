package export

import (
	"fmt"
	"io"

	"github.com/rotisserie/eris"
	"github.com/xuri/excelize/v2"

	"boqview/internal/engine"
	"boqview/internal/model"
)

const (
	xlsxSheet   = "BOQ"
	xlsxSummary = "Summary"
)

// WriteXLSX streams the rows to a "BOQ" sheet (styled header, typed cells).
// Totals go to a separate "Summary" sheet so the data sheet reloads as-is.
func WriteXLSX(w io.Writer, rows []model.WorkingRow) error {
	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetSheetName("Sheet1", xlsxSheet); err != nil {
		return eris.Wrap(err, "rename sheet")
	}
	head, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"E6E6E6"}},
	})
	if err != nil {
		return eris.Wrap(err, "header style")
	}
	num, err := f.NewStyle(&excelize.Style{NumFmt: 4})
	if err != nil {
		return eris.Wrap(err, "number style")
	}

	sw, err := f.NewStreamWriter(xlsxSheet)
	if err != nil {
		return eris.Wrap(err, "stream writer")
	}
	if err := sw.SetColWidth(5, 5, 60); err != nil {
		return eris.Wrap(err, "column width")
	}
	header := make([]any, len(model.Columns))
	for i, c := range model.Columns {
		header[i] = excelize.Cell{StyleID: head, Value: c}
	}
	if err := sw.SetRow("A1", header); err != nil {
		return eris.Wrap(err, "write header")
	}
	for i, r := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := sw.SetRow(cell, []any{
			r.WBS1, r.WBS2, r.WBS3, r.WBS4, r.Description, r.Unit,
			excelize.Cell{StyleID: num, Value: safeNum(r.Qty)},
			excelize.Cell{StyleID: num, Value: safeNum(r.Material)},
			excelize.Cell{StyleID: num, Value: safeNum(r.Labor)},
			excelize.Cell{StyleID: num, Value: safeNum(r.Amount)},
		}); err != nil {
			return eris.Wrapf(err, "write row %d", i+1)
		}
	}
	if err := sw.Flush(); err != nil {
		return eris.Wrap(err, "flush sheet")
	}
	if err := writeXLSXSummary(f, engine.Aggregate(rows), num, head); err != nil {
		return err
	}
	return f.Write(w)
}

func writeXLSXSummary(f *excelize.File, t engine.Totals, num, head int) error {
	if _, err := f.NewSheet(xlsxSummary); err != nil {
		return eris.Wrap(err, "summary sheet")
	}
	lines := [][]any{
		{"Rows", t.Count},
		{"Sum Amount", t.Amount},
	}
	for _, u := range t.QtyByUnit {
		lines = append(lines, []any{"Qty (" + u.Unit + ")", u.Qty})
	}
	for i, line := range lines {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(xlsxSummary, cell, &line); err != nil {
			return eris.Wrap(err, "write summary")
		}
	}
	last := len(lines)
	if err := f.SetCellStyle(xlsxSummary, "A1", fmt.Sprintf("A%d", last), head); err != nil {
		return eris.Wrap(err, "summary style")
	}
	if err := f.SetCellStyle(xlsxSummary, "B2", fmt.Sprintf("B%d", last), num); err != nil {
		return eris.Wrap(err, "summary style")
	}
	return nil
}
