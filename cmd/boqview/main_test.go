package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"boqview/internal/export"
	"boqview/internal/ingest"
	"boqview/internal/model"
)

func writeBOQ(t *testing.T, dir string) string {
	t.Helper()
	rows := []model.WorkingRow{
		{Row: model.Row{WBS1: "Architecture", WBS2: "Walls", Description: "Brick wall 10cm", Unit: "m2", Qty: 12, Amount: 4200}},
		{Row: model.Row{WBS1: "Architecture", WBS2: "Walls", Description: "Brick wall 20cm", Unit: "m2", Qty: 3, Amount: 1800}},
		{Row: model.Row{WBS1: "Structure", WBS2: "Slabs", Description: "Concrete slab", Unit: "m3", Qty: 5, Amount: 9000}},
		{Row: model.Row{WBS1: "Structure", WBS2: "Slabs", Description: "Brick rubble fill", Unit: "m3", Qty: 1, Amount: 0}},
	}
	path := filepath.Join(dir, "boq.csv")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, export.WriteCSV(f, rows))
	require.NoError(t, f.Close())
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestHeadlessExport(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	src := writeBOQ(t, dir)
	out := filepath.Join(dir, "walls.csv")

	stdout, err := execute(t, "--file", src, "--export", "csv", "--out", out, "--query", "brick wall")
	require.NoError(t, err)
	assert.Contains(t, stdout, "exported 2 rows to "+out)
	assert.Contains(t, stdout, "amount 6,000")

	b, err := os.ReadFile(out)
	require.NoError(t, err)
	lines := strings.Split(string(b), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[1], `"Brick wall 10cm"`)
	assert.Contains(t, lines[2], `"Brick wall 20cm"`)
}

func TestHeadlessExportWhere(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	src := writeBOQ(t, dir)
	out := filepath.Join(dir, "big.ndjson")

	stdout, err := execute(t, src, "--export", "ndjson", "--out", out, "--where", "amount > 2000")
	require.NoError(t, err)
	assert.Contains(t, stdout, "exported 2 rows")
}

func TestHeadlessExportInvalidWhere(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	src := writeBOQ(t, dir)

	_, err := execute(t, "--file", src, "--export", "csv", "--out", filepath.Join(dir, "x.csv"), "--where", "amount >")
	require.Error(t, err)
	assert.NoFileExists(t, filepath.Join(dir, "x.csv"))
}

func TestExportRequiresOut(t *testing.T) {
	t.Chdir(t.TempDir())
	_, err := execute(t, "--export", "csv")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--out")
}

func TestConflictingFileArgument(t *testing.T) {
	t.Chdir(t.TempDir())
	_, err := execute(t, "--file", "a.csv", "b.csv", "--export", "csv", "--out", "x.csv")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "both --file")
}

func TestSourceLabel(t *testing.T) {
	assert.Equal(t, "demo", sourceLabel(ingest.SourceDemo, "", ""))
	assert.Equal(t, "boq.xlsx:Summary", sourceLabel(ingest.SourceXLSX, "/tmp/x/boq.xlsx", "Summary"))
	assert.Equal(t, "boq.csv", sourceLabel(ingest.SourceCSV, "/tmp/x/boq.csv", ""))
}

func TestSheetsCommand(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	path := filepath.Join(dir, "book.xlsx")

	f := excelize.NewFile()
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]any{"Notes"}))
	_, err := f.NewSheet("BOQ")
	require.NoError(t, err)
	header := make([]any, len(model.Columns))
	for i, c := range model.Columns {
		header[i] = c
	}
	require.NoError(t, f.SetSheetRow("BOQ", "A1", &header))
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	stdout, err := execute(t, "sheets", path)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Sheet1\tmissing WBS-1")
	assert.Contains(t, stdout, "BOQ\tok")
}
