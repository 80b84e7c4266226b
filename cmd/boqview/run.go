package main

import (
	"context"
	"fmt"
	"io"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"boqview/internal/config"
	"boqview/internal/detect"
	"boqview/internal/engine"
	"boqview/internal/export"
	"boqview/internal/ingest"
	"boqview/internal/ui"
	"boqview/internal/util/logx"
	"boqview/internal/version"
)

func run(cmd *cobra.Command, cfg *config.Config, args []string) error {
	if len(args) == 1 {
		if cfg.FilePath != "" && cfg.FilePath != args[0] {
			return eris.Errorf("got both --file %q and argument %q", cfg.FilePath, args[0])
		}
		cfg.FilePath = args[0]
		if err := cfg.Validate(); err != nil {
			return err
		}
	}

	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	logx.Infof("starting boqview %s: %s", version.String(), cfg)
	src, err := loadSource(ctx, cfg)
	if err != nil {
		return err
	}
	if cfg.ExportFormat != "" {
		return runExport(cmd.OutOrStdout(), cfg, src)
	}
	if err := ui.Run(ctx, cfg, src); err != nil {
		logx.Errorf("boqview exited with error: %v", err)
		return err
	}
	return nil
}

// loadSource resolves the sheet for workbooks and loads every row.
func loadSource(ctx context.Context, cfg *config.Config) (ui.Source, error) {
	kind := ingest.KindOf(cfg.FilePath)
	opt := ingest.Options{Source: kind, Path: cfg.FilePath}
	if kind == ingest.SourceXLSX {
		sheet, err := detect.Choose(cfg.FilePath, detect.ChooseOptions{
			Requested: cfg.Sheet,
			NoCache:   cfg.NoCache,
			Cache:     detect.DefaultCache(),
		})
		if err != nil {
			return ui.Source{}, eris.Wrapf(err, "choose sheet in %s", cfg.FilePath)
		}
		opt.Sheet = sheet
	}
	res, err := ingest.Load(ctx, opt)
	if err != nil {
		return ui.Source{}, eris.Wrapf(err, "load %s", sourceLabel(kind, cfg.FilePath, opt.Sheet))
	}
	return ui.Source{
		Rows:   res.Rows,
		Header: res.Header,
		Label:  sourceLabel(kind, cfg.FilePath, res.Sheet),
		Path:   cfg.FilePath,
		Kind:   string(kind),
		Follow: cfg.Follow,
	}, nil
}

func sourceLabel(kind ingest.SourceKind, path, sheet string) string {
	switch kind {
	case ingest.SourceDemo:
		return "demo"
	case ingest.SourceXLSX:
		return filepath.Base(path) + ":" + sheet
	}
	return filepath.Base(path)
}

// runExport applies --query/--mode/--where to the loaded rows and writes the
// matching rows to --out.
func runExport(w io.Writer, cfg *config.Config, src ui.Source) error {
	f, err := export.ParseFormat(cfg.ExportFormat)
	if err != nil {
		return err
	}
	s := engine.NewSession(src.Rows, engine.Options{DefaultLimit: cfg.DefaultLimit, PageSize: cfg.PageSize})
	s.SetDraft(cfg.Query)
	s.SetMode(cfg.MatchMode())
	s.SetWhere(cfg.Where)
	if err := s.Submit(); err != nil {
		return eris.Wrap(err, s.Message())
	}
	rows := s.View().Filtered
	opt := export.Options{MaxPDFRows: cfg.MaxPDFRows, FontPath: cfg.PDFFont}
	if err := export.ToFile(cfg.ExportOut, f, rows, opt); err != nil {
		return eris.Wrapf(err, "export %s", cfg.ExportOut)
	}
	t := engine.Aggregate(rows)
	logx.Infof("export: wrote %d rows to %s (%s)", len(rows), cfg.ExportOut, f)
	fmt.Fprintf(w, "exported %d rows to %s (amount %s)\n", len(rows), cfg.ExportOut, export.FormatNumber(t.Amount))
	return nil
}
