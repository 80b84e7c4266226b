package ingest

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"

	"boqview/internal/model"
	"boqview/internal/util/logx"
)

var (
	ErrMissingColumns = eris.New("required columns missing")
	ErrNoValidSheet   = eris.New("no sheet has the required columns")
	ErrUnknownSource  = eris.New("unknown source kind")
)

type SourceKind string

const (
	SourceXLSX SourceKind = "xlsx"
	SourceCSV  SourceKind = "csv"
	SourceDemo SourceKind = "demo"
)

// KindOf picks the source kind from a path's extension. A blank path is the demo source.
func KindOf(path string) SourceKind {
	if strings.TrimSpace(path) == "" {
		return SourceDemo
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm", ".xltx", ".xltm":
		return SourceXLSX
	}
	return SourceCSV
}

type Options struct {
	Source SourceKind
	Path   string
	// Sheet is the worksheet to read for xlsx sources; resolved by the caller.
	Sheet string
	// DemoRows is the size of the synthetic demo set.
	DemoRows int
}

// Result is one full load of a source.
type Result struct {
	Rows []model.Row
	// Header is the header row as read, used to decode followed CSV lines.
	Header []string
	Sheet  string
	// Skipped counts rows dropped because every classification and description cell was blank.
	Skipped int
}

func Load(ctx context.Context, opt Options) (Result, error) {
	var (
		res Result
		err error
	)
	switch opt.Source {
	case SourceXLSX:
		res, err = LoadXLSX(ctx, opt.Path, opt.Sheet)
	case SourceCSV:
		res, err = LoadCSV(ctx, opt.Path)
	case SourceDemo:
		n := opt.DemoRows
		if n <= 0 {
			n = DefaultDemoRows
		}
		res = Result{Rows: Demo(n, 1), Header: append([]string(nil), model.Columns...)}
	default:
		return Result{}, eris.Wrapf(ErrUnknownSource, "source %q", opt.Source)
	}
	if err != nil {
		return Result{}, err
	}
	logx.Infof("ingest: loaded %d rows from %s (skipped %d)", len(res.Rows), describe(opt), res.Skipped)
	return res, nil
}

func describe(opt Options) string {
	switch opt.Source {
	case SourceDemo:
		return "demo"
	case SourceXLSX:
		return opt.Path + "#" + opt.Sheet
	}
	return opt.Path
}
