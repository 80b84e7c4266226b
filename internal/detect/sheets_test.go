package detect

import (
	"path/filepath"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"boqview/internal/ingest"
	"boqview/internal/model"
)

func workbook(t *testing.T, sheets []string, valid map[string]bool) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	full := make([]any, len(model.Columns))
	for i, c := range model.Columns {
		full[i] = c
	}
	partial := []any{"WBS-1", "Description"}
	for i, name := range sheets {
		if i == 0 {
			require.NoError(t, f.SetSheetName("Sheet1", name))
		} else {
			_, err := f.NewSheet(name)
			require.NoError(t, err)
		}
		head := partial
		if valid[name] {
			head = full
		}
		require.NoError(t, f.SetSheetRow(name, "A1", &head))
	}
	path := filepath.Join(t.TempDir(), "book.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func TestSheets(t *testing.T) {
	path := workbook(t, []string{"Cover", "BOQ", "BOQ-2"}, map[string]bool{"BOQ": true, "BOQ-2": true})
	cands, err := Sheets(path)
	require.NoError(t, err)
	require.Len(t, cands, 3)
	assert.False(t, cands[0].Valid)
	assert.Contains(t, cands[0].Missing, "Amount")
	assert.Equal(t, []string{"BOQ", "BOQ-2"}, Valid(cands))
}

func TestChooseFirstValidAndCache(t *testing.T) {
	path := workbook(t, []string{"Cover", "BOQ", "BOQ-2"}, map[string]bool{"BOQ": true, "BOQ-2": true})
	cache := Cache{Dir: t.TempDir()}

	got, err := Choose(path, ChooseOptions{Cache: cache})
	require.NoError(t, err)
	assert.Equal(t, "BOQ", got)

	got, err = Choose(path, ChooseOptions{Requested: "BOQ-2", Cache: cache})
	require.NoError(t, err)
	assert.Equal(t, "BOQ-2", got)

	cached, ok := cache.Load(path)
	require.True(t, ok)
	assert.Equal(t, "BOQ-2", cached)

	got, err = Choose(path, ChooseOptions{Cache: cache})
	require.NoError(t, err)
	assert.Equal(t, "BOQ-2", got, "cached choice wins over first valid")

	got, err = Choose(path, ChooseOptions{Cache: cache, NoCache: true})
	require.NoError(t, err)
	assert.Equal(t, "BOQ", got)
}

func TestChooseErrors(t *testing.T) {
	path := workbook(t, []string{"Cover", "BOQ"}, map[string]bool{"BOQ": true})
	cache := Cache{Dir: t.TempDir()}

	_, err := Choose(path, ChooseOptions{Requested: "Cover", Cache: cache})
	assert.True(t, eris.Is(err, ingest.ErrMissingColumns))

	_, err = Choose(path, ChooseOptions{Requested: "Nope", Cache: cache})
	assert.True(t, eris.Is(err, ingest.ErrNoValidSheet))

	none := workbook(t, []string{"Cover"}, nil)
	_, err = Choose(none, ChooseOptions{Cache: cache})
	assert.True(t, eris.Is(err, ingest.ErrNoValidSheet))
}

func TestCacheMiss(t *testing.T) {
	c := Cache{Dir: t.TempDir()}
	_, ok := c.Load(filepath.Join(t.TempDir(), "unknown.xlsx"))
	assert.False(t, ok)
	_, ok = c.Load("  ")
	assert.False(t, ok)
}
