package ui

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"math"
	"os"
	"regexp"
	"strings"

	"github.com/mattn/go-runewidth"

	"boqview/internal/engine"
	"boqview/internal/export"
	"boqview/internal/model"
	"boqview/internal/query"
)

func overlay(base, overlay string) string {
	// Draw overlay on top of base by replacing lines where overlay has content.
	bLines := strings.Split(base, "\n")
	oLines := strings.Split(overlay, "\n")
	maxLen := len(bLines)
	if len(oLines) > maxLen {
		maxLen = len(oLines)
	}
	for len(bLines) < maxLen {
		bLines = append(bLines, "")
	}
	for len(oLines) < maxLen {
		oLines = append(oLines, "")
	}
	out := make([]string, maxLen)
	for i := 0; i < maxLen; i++ {
		// whitespace-only overlay lines are transparent
		if strings.TrimSpace(oLines[i]) != "" {
			out[i] = oLines[i]
		} else {
			out[i] = bLines[i]
		}
	}
	return strings.Join(out, "\n")
}

// copyToClipboard tries to copy text using OSC52 (works in many terminals).
func copyToClipboard(s string) {
	s = stripANSI(s)
	enc := base64.StdEncoding.EncodeToString([]byte(s))
	payload := fmt.Sprintf("\x1b]52;c;%s\x07", enc)
	// write to /dev/tty to avoid clobbering the app's stdout buffer
	if f, err := os.OpenFile("/dev/tty", os.O_WRONLY, 0); err == nil {
		defer f.Close()
		_, _ = f.WriteString(payload)
		return
	}
	fmt.Fprint(os.Stdout, payload)
}

var ansiRE = regexp.MustCompile(`\x1b\[[0-9;?]*[ -/]*[@-~]`)

func stripANSI(s string) string {
	return ansiRE.ReplaceAllString(s, "")
}

// rowCSV renders one row as the CSV export would, without the header.
func rowCSV(r model.WorkingRow) string {
	var buf bytes.Buffer
	if err := export.WriteCSV(&buf, []model.WorkingRow{r}); err != nil {
		return ""
	}
	lines := strings.Split(buf.String(), "\n")
	return lines[len(lines)-1]
}

// renderDetail lists every field of r; description keywords are highlighted.
func renderDetail(r model.WorkingRow, keywords []string, st Styles) string {
	label := func(s string) string { return st.Label.Render(padRight(s, 12)) }
	lines := []string{
		label("WBS-1") + r.WBS1,
		label("WBS-2") + r.WBS2,
		label("WBS-3") + r.WBS3,
		label("WBS-4") + r.WBS4,
		"",
		label("Description"),
		query.Highlight(r.Description, keywords, func(s string) string { return st.Match.Render(s) }),
		"",
		label("Unit") + model.NormalizeUnit(r.Unit),
		label("Qty") + export.FormatNumber(r.Qty),
		label("Material") + export.FormatNumber(r.Material),
		label("Labor") + export.FormatNumber(r.Labor),
		label("Amount") + export.FormatNumber(r.Amount),
		"",
		label("Row id") + r.ID,
	}
	return strings.Join(lines, "\n")
}

// qtyLine joins per-unit quantities: "8 m2 | 1 m3".
func qtyLine(t engine.Totals) string {
	if len(t.QtyByUnit) == 0 {
		return "-"
	}
	parts := make([]string, len(t.QtyByUnit))
	for i, u := range t.QtyByUnit {
		parts[i] = export.FormatNumber(u.Qty) + " " + u.Unit
	}
	return strings.Join(parts, " | ")
}

// renderBuckets paints amount per dimension value as a bar list.
func renderBuckets(dim model.Dimension, buckets []engine.Bucket, t engine.Totals, width int) string {
	if width < 40 {
		width = 40
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Amount by %s   rows:%d  total:%s\n", dim, t.Count, export.FormatNumber(t.Amount))
	fmt.Fprintf(&b, "Qty: %s\n\n", qtyLine(t))
	if len(buckets) == 0 {
		b.WriteString("No data")
		return b.String()
	}
	labelW := width * 2 / 5
	amounts := make([]string, len(buckets))
	amountW := 0
	for i, bk := range buckets {
		amounts[i] = fmt.Sprintf("%s (%d)", export.FormatNumber(bk.Amount), bk.Count)
		if w := runewidth.StringWidth(amounts[i]); w > amountW {
			amountW = w
		}
	}
	barW := width - labelW - amountW - 2
	if barW < 0 {
		barW = 0
	}
	maxAmt := buckets[0].Amount
	for i, bk := range buckets {
		label := padRight(runewidth.Truncate(bk.Label, labelW, "…"), labelW)
		scaled := 0
		if maxAmt > 0 {
			scaled = int(math.Round(float64(barW) * bk.Amount / maxAmt))
		}
		bar := colorBar(scaled, bk.Amount, maxAmt) + strings.Repeat(" ", barW-scaled)
		fmt.Fprintf(&b, "%s %s %s\n", label, bar, padLeft(amounts[i], amountW))
	}
	return strings.TrimRight(b.String(), "\n")
}

// colorBar returns a bar with simple red intensity for larger ratios.
func colorBar(width int, val, max float64) string {
	if width <= 0 {
		return ""
	}
	r := 0.0
	if max > 0 {
		r = val / max
	}
	color := 226 - int(r*30) // yellow->red
	if color < 196 {
		color = 196
	}
	return fmt.Sprintf("\x1b[38;5;%dm%s\x1b[0m", color, strings.Repeat("▇", width))
}

// renderFacetList shows the picker items with a cursor and check marks.
func renderFacetList(items []facetItem, sel int) string {
	if len(items) == 0 {
		return "No values in the current view"
	}
	var b strings.Builder
	for i, it := range items {
		prefix := "  "
		if i == sel {
			prefix = "> "
		}
		check := "[ ]"
		if it.selected {
			check = "[x]"
		}
		fmt.Fprintf(&b, "%s%s %s\n", prefix, check, it.value)
	}
	return strings.TrimRight(b.String(), "\n")
}

// facetSummary describes active selections: "WBS-1=Arch,MEP  Unit=m2".
func facetSummary(f model.FacetFilters) string {
	var parts []string
	for _, d := range model.Dimensions {
		if vals := f[d]; len(vals) > 0 {
			parts = append(parts, d.String()+"="+strings.Join(vals, ","))
		}
	}
	return strings.Join(parts, "  ")
}
