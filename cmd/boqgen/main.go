// Command boqgen writes synthetic BOQ data sets, optionally appending rows at
// a fixed rate so `boqview --follow` has something to tail.
package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"boqview/internal/export"
	"boqview/internal/ingest"
	"boqview/internal/model"
)

type genOptions struct {
	rows     int
	seed     int64
	out      string
	rate     float64
	duration time.Duration
}

func newRootCmd() *cobra.Command {
	var opt genOptions
	cmd := &cobra.Command{
		Use:   "boqgen",
		Short: "Generate a synthetic bill of quantities",
		Example: `  boqgen --rows 5000 --out demo.xlsx
  boqgen --out live.csv --rate 2 --duration 1m`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()
			if opt.duration > 0 {
				ctx, cancel = context.WithTimeout(ctx, opt.duration)
				defer cancel()
			}
			return generate(ctx, cmd.OutOrStdout(), cmd.ErrOrStderr(), opt)
		},
	}
	fs := cmd.Flags()
	fs.IntVar(&opt.rows, "rows", ingest.DefaultDemoRows, "rows in the initial data set")
	fs.Int64Var(&opt.seed, "seed", 1, "random seed; equal seeds give equal data")
	fs.StringVarP(&opt.out, "out", "o", "-", "output .csv or .xlsx path; - writes CSV to stdout")
	fs.Float64Var(&opt.rate, "rate", 0, "after the initial set, append this many rows per second (CSV files only)")
	fs.DurationVar(&opt.duration, "duration", 0, "stop appending after this long (e.g. 30s, 2m); 0 runs until interrupted")
	return cmd
}

func generate(ctx context.Context, stdout, stderr io.Writer, opt genOptions) error {
	rows := wrap(ingest.Demo(opt.rows, opt.seed))
	xlsx := strings.EqualFold(filepath.Ext(opt.out), ".xlsx")
	if opt.rate > 0 && (opt.out == "-" || xlsx) {
		return eris.New("--rate needs a .csv output file")
	}

	if opt.out == "-" {
		if err := export.WriteCSV(stdout, rows); err != nil {
			return err
		}
		_, err := io.WriteString(stdout, "\n")
		return err
	}
	if xlsx {
		if err := export.ToFile(opt.out, export.FormatXLSX, rows, export.Options{}); err != nil {
			return err
		}
		fmt.Fprintf(stderr, "wrote %d rows -> %s\n", len(rows), opt.out)
		return nil
	}

	f, err := os.OpenFile(opt.out, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return eris.Wrapf(err, "create %s", opt.out)
	}
	defer f.Close()
	w := bufio.NewWriter(f)
	if err := export.WriteCSV(w, rows); err != nil {
		return err
	}
	// Appended lines are newline-terminated; the initial set is not.
	w.WriteByte('\n')
	if err := w.Flush(); err != nil {
		return eris.Wrapf(err, "write %s", opt.out)
	}
	fmt.Fprintf(stderr, "wrote %d rows -> %s\n", len(rows), opt.out)
	if opt.rate <= 0 {
		return nil
	}

	fmt.Fprintf(stderr, "appending to %s at %.2f rows/s\n", opt.out, opt.rate)
	n, err := appendRows(ctx, f, ingest.DemoStream(opt.seed+1), opt.rate)
	fmt.Fprintf(stderr, "appended %d rows\n", n)
	return err
}

// appendRows writes one row per tick until ctx is done.
func appendRows(ctx context.Context, w io.Writer, next func() model.Row, rate float64) (int, error) {
	interval := time.Duration(float64(time.Second) / rate)
	if interval <= 0 {
		interval = time.Millisecond
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	n := 0
	for {
		select {
		case <-ctx.Done():
			return n, nil
		case <-ticker.C:
			if err := export.AppendCSV(w, []model.Row{next()}); err != nil {
				return n, eris.Wrap(err, "append row")
			}
			n++
		}
	}
}

func wrap(rows []model.Row) []model.WorkingRow {
	out := make([]model.WorkingRow, len(rows))
	for i, r := range rows {
		out[i] = model.WorkingRow{Row: r}
	}
	return out
}

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
