package detect

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rotisserie/eris"

	"boqview/internal/util/logx"
)

// Cache remembers the sheet chosen for a workbook, keyed by its absolute path.
type Cache struct {
	Dir string
}

// choice is the on-disk record.
type choice struct {
	Path  string    `json:"path"`
	Sheet string    `json:"sheet"`
	Saved time.Time `json:"saved"`
}

// DefaultCache stores choices under the OS temp dir.
func DefaultCache() Cache {
	return Cache{Dir: filepath.Join(os.TempDir(), "boqview-sheet-cache")}
}

// cacheKey derives a stable key from the absolute file path.
func cacheKey(filePath string) (string, error) {
	if strings.TrimSpace(filePath) == "" {
		return "", eris.New("empty path")
	}
	abs, err := filepath.Abs(filePath)
	if err != nil {
		return "", err
	}
	h := sha1.Sum([]byte(abs))
	return hex.EncodeToString(h[:]), nil
}

func (c Cache) file(key string) string {
	return filepath.Join(c.Dir, fmt.Sprintf("sheet_%s.json", key))
}

// Load returns the cached sheet for a workbook, if any.
func (c Cache) Load(filePath string) (string, bool) {
	key, err := cacheKey(filePath)
	if err != nil {
		return "", false
	}
	f, err := os.Open(c.file(key))
	if err != nil {
		return "", false
	}
	defer f.Close()
	var ch choice
	if err := json.NewDecoder(f).Decode(&ch); err != nil || ch.Sheet == "" {
		return "", false
	}
	return ch.Sheet, true
}

// Save writes the choice atomically (temp file then rename).
func (c Cache) Save(filePath, sheet string) error {
	key, err := cacheKey(filePath)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(c.Dir, 0o755); err != nil {
		return eris.Wrap(err, "create cache dir")
	}
	abs, _ := filepath.Abs(filePath)
	p := c.file(key)
	tmp := p + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return eris.Wrap(err, "create cache file")
	}
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(choice{Path: abs, Sheet: sheet, Saved: time.Now().UTC()}); err != nil {
		f.Close()
		_ = os.Remove(tmp)
		return eris.Wrap(err, "encode cache file")
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return eris.Wrap(err, "close cache file")
	}
	if err := os.Rename(tmp, p); err != nil {
		return eris.Wrap(err, "rename cache file")
	}
	logx.Infof("detect: sheet choice %q saved to %s", sheet, p)
	return nil
}
