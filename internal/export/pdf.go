package export

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/go-pdf/fpdf"
	"github.com/rotisserie/eris"

	"boqview/internal/engine"
	"boqview/internal/model"
)

// Page geometry in points (A4 landscape).
const (
	pdfMargin   = 40.0
	pdfWBSW     = 42.0
	pdfUnitW    = 40.0
	pdfQtyW     = 48.0
	pdfMoneyW   = 62.0
	pdfMinDescW = 180.0
	pdfFontSize = 8.0
	pdfPad      = 3.0
	pdfTableY   = 52.0
	pdfFooterY  = 18.0
)

// pdfColumns returns the ten column widths for a page of the given width.
// Description takes whatever the fixed columns leave, but never less than pdfMinDescW.
func pdfColumns(pageW float64) []float64 {
	available := pageW - 2*pdfMargin
	fixed := pdfWBSW*4 + pdfUnitW + pdfQtyW + pdfMoneyW*3
	desc := math.Max(pdfMinDescW, available-fixed)
	return []float64{pdfWBSW, pdfWBSW, pdfWBSW, pdfWBSW, desc, pdfUnitW, pdfQtyW, pdfMoneyW, pdfMoneyW, pdfMoneyW}
}

var pdfAlign = []string{"L", "L", "L", "L", "L", "L", "R", "R", "R", "R"}

// WritePDF renders rows as a landscape table with a title, a repeated header,
// page numbers and a closing summary of amount and quantity per unit.
func WritePDF(w io.Writer, rows []model.WorkingRow, opt Options) error {
	if n, limit := len(rows), opt.maxPDFRows(); n > limit {
		return eris.Wrapf(ErrTooLarge, "%d rows, limit %d", n, limit)
	}

	pdf := fpdf.New("L", "pt", "A4", "")
	pdf.SetCreationDate(opt.now())
	pdf.SetMargins(pdfMargin, pdfMargin, pdfMargin)
	pdf.SetAutoPageBreak(false, pdfMargin)

	family := "Helvetica"
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	if opt.FontPath != "" {
		family = "boq"
		pdf.AddUTF8Font(family, "", opt.FontPath)
		pdf.AddUTF8Font(family, "B", opt.FontPath)
		tr = func(s string) string { return s }
	}
	if err := pdf.Error(); err != nil {
		return eris.Wrapf(err, "load font %s", opt.FontPath)
	}

	pageW, pageH := pdf.GetPageSize()
	widths := pdfColumns(pageW)
	rowH := pdfFontSize + 2*pdfPad
	bottom := pageH - pdfMargin

	pdf.SetFooterFunc(func() {
		pdf.SetFont(family, "", 9)
		pdf.SetTextColor(0, 0, 0)
		label := fmt.Sprintf("Page %d", pdf.PageNo())
		pdf.Text(pageW-pdfMargin-pdf.GetStringWidth(label), pageH-pdfFooterY, label)
	})

	header := func() {
		pdf.SetFont(family, "B", pdfFontSize)
		pdf.SetFillColor(230, 230, 230)
		pdf.SetTextColor(30, 30, 30)
		for i, c := range model.Columns {
			pdf.CellFormat(widths[i], rowH, tr(c), "1", 0, pdfAlign[i], true, 0, "")
		}
		pdf.Ln(rowH)
		pdf.SetFont(family, "", pdfFontSize)
		pdf.SetTextColor(0, 0, 0)
	}

	pdf.AddPage()
	pdf.SetFont(family, "", 14)
	pdf.Text(pdfMargin, 32, tr(fmt.Sprintf("BOQ Query Result (%s rows)", FormatNumber(float64(len(rows))))))
	pdf.SetFont(family, "", 9)
	pdf.Text(pdfMargin, 46, tr("Generated: "+opt.now().Format("2006-01-02 15:04:05")))
	pdf.SetXY(pdfMargin, pdfTableY)
	header()

	for _, r := range rows {
		if pdf.GetY()+rowH > bottom {
			pdf.AddPage()
			pdf.SetXY(pdfMargin, pdfMargin)
			header()
		}
		cells := []string{
			r.WBS1, r.WBS2, r.WBS3, r.WBS4, r.Description, model.NormalizeUnit(r.Unit),
			FormatNumber(r.Qty), FormatNumber(r.Material), FormatNumber(r.Labor), FormatNumber(r.Amount),
		}
		for i, c := range cells {
			text := ellipsize(pdf, c, widths[i]-2*pdfPad, tr)
			pdf.CellFormat(widths[i], rowH, text, "1", 0, pdfAlign[i], false, 0, "")
		}
		pdf.Ln(rowH)
	}

	y := pdf.GetY() + 18
	if y+14 > bottom {
		pdf.AddPage()
		y = pdfMargin + 18
	}
	tot := engine.Aggregate(rows)
	pdf.SetFont(family, "", 10)
	pdf.Text(pdfMargin, y, tr("Sum Amount: "+FormatNumber(tot.Amount)))
	pdf.Text(pdfMargin, y+14, tr("Sum Qty (by Unit): "+qtySummary(tot.QtyByUnit)))

	if err := pdf.Output(w); err != nil {
		return eris.Wrap(err, "render pdf")
	}
	return nil
}

// qtySummary renders "8 m2 | 1 m3", or "-" when there is nothing to show.
func qtySummary(units []engine.UnitQty) string {
	if len(units) == 0 {
		return "-"
	}
	parts := make([]string, len(units))
	for i, u := range units {
		parts[i] = FormatNumber(u.Qty) + " " + u.Unit
	}
	return strings.Join(parts, " | ")
}

// ellipsize shortens s with "..." until it fits width. The result is already
// passed through tr.
func ellipsize(pdf *fpdf.Fpdf, s string, width float64, tr func(string) string) string {
	if t := tr(s); width <= 0 || pdf.GetStringWidth(t) <= width {
		return t
	}
	rs := []rune(s)
	for len(rs) > 0 {
		rs = rs[:len(rs)-1]
		if t := tr(string(rs) + "..."); pdf.GetStringWidth(t) <= width {
			return t
		}
	}
	return ""
}
