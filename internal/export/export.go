package export

import (
	"bufio"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"golang.org/x/sync/errgroup"

	"boqview/internal/model"
	"boqview/internal/util/logx"
)

var (
	ErrTooLarge      = eris.New("too many rows to export")
	ErrNoRows        = eris.New("no rows to export")
	ErrUnknownFormat = eris.New("unknown export format")
)

// DefaultMaxPDFRows caps the PDF export.
const DefaultMaxPDFRows = 2000

// DefaultBase is the file name (without extension) used when none is given.
const DefaultBase = "boq_query_result"

type Format string

const (
	FormatCSV    Format = "csv"
	FormatNDJSON Format = "ndjson"
	FormatXLSX   Format = "xlsx"
	FormatPDF    Format = "pdf"
)

var Formats = []Format{FormatCSV, FormatNDJSON, FormatXLSX, FormatPDF}

func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	switch f {
	case FormatCSV, FormatNDJSON, FormatXLSX, FormatPDF:
		return f, nil
	case "json", "jsonl":
		return FormatNDJSON, nil
	}
	return "", eris.Wrapf(ErrUnknownFormat, "%q", s)
}

func (f Format) Ext() string { return "." + string(f) }

type Options struct {
	MaxPDFRows int
	// FontPath is an optional UTF-8 TrueType font for the PDF (needed for Thai text).
	FontPath string
	// Now stamps the PDF "Generated:" line; zero means time.Now.
	Now time.Time
}

func (o Options) maxPDFRows() int {
	if o.MaxPDFRows <= 0 {
		return DefaultMaxPDFRows
	}
	return o.MaxPDFRows
}

func (o Options) now() time.Time {
	if o.Now.IsZero() {
		return time.Now()
	}
	return o.Now
}

// Check reports whether rows can be exported in format f without writing anything.
func Check(f Format, rows []model.WorkingRow, opt Options) error {
	if len(rows) == 0 {
		return ErrNoRows
	}
	if f == FormatPDF && len(rows) > opt.maxPDFRows() {
		return eris.Wrapf(ErrTooLarge, "%d rows, limit %d", len(rows), opt.maxPDFRows())
	}
	return nil
}

// Write encodes rows in format f. Row ids are never written.
func Write(w io.Writer, f Format, rows []model.WorkingRow, opt Options) error {
	if err := Check(f, rows, opt); err != nil {
		return err
	}
	switch f {
	case FormatCSV:
		return WriteCSV(w, rows)
	case FormatNDJSON:
		return WriteNDJSON(w, rows)
	case FormatXLSX:
		return WriteXLSX(w, rows)
	case FormatPDF:
		return WritePDF(w, rows, opt)
	}
	return eris.Wrapf(ErrUnknownFormat, "%q", f)
}

// ToFile writes rows to path. Nothing is created when the export is refused.
func ToFile(path string, f Format, rows []model.WorkingRow, opt Options) error {
	if err := Check(f, rows, opt); err != nil {
		return err
	}
	file, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "create %s", path)
	}
	bw := bufio.NewWriter(file)
	if err := Write(bw, f, rows, opt); err != nil {
		file.Close()
		_ = os.Remove(path)
		return err
	}
	if err := bw.Flush(); err != nil {
		file.Close()
		return eris.Wrapf(err, "flush %s", path)
	}
	return file.Close()
}

// Job is one export written by WriteAll.
type Job struct {
	ID     string
	Format Format
	Path   string
	Rows   int
	Err    error
}

// WriteAll writes each format to dir/base.<ext> concurrently. Jobs are
// returned in the order of formats; the first failure is also returned.
func WriteAll(ctx context.Context, dir, base string, rows []model.WorkingRow, opt Options, formats ...Format) ([]Job, error) {
	if base == "" {
		base = DefaultBase
	}
	if len(formats) == 0 {
		formats = Formats
	}
	snapshot := make([]model.WorkingRow, len(rows))
	copy(snapshot, rows)

	jobs := make([]Job, len(formats))
	g, gctx := errgroup.WithContext(ctx)
	for i, f := range formats {
		jobs[i] = Job{
			ID:     uuid.NewString(),
			Format: f,
			Path:   filepath.Join(dir, base+f.Ext()),
			Rows:   len(snapshot),
		}
		g.Go(func() error {
			job := &jobs[i]
			if err := gctx.Err(); err != nil {
				job.Err = err
				return err
			}
			start := time.Now()
			if err := ToFile(job.Path, job.Format, snapshot, opt); err != nil {
				job.Err = err
				logx.Warnf("export %s: %s failed: %v", job.ID, job.Format, err)
				return err
			}
			logx.Infof("export %s: wrote %d rows to %s in %s", job.ID, job.Rows, job.Path, time.Since(start).Round(time.Millisecond))
			return nil
		})
	}
	err := g.Wait()
	return jobs, err
}
