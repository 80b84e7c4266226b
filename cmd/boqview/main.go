package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"boqview/internal/config"
	"boqview/internal/util/logx"
	"boqview/internal/version"
)

func newRootCmd() *cobra.Command {
	var cfg *config.Config
	root := &cobra.Command{
		Use:   "boqview [file]",
		Short: "Search, filter and trim bill-of-quantities tables",
		Long: `boqview loads a bill of quantities (xlsx, CSV, or built-in demo data) and
opens an interactive table: search descriptions, add where expressions, drill
down the WBS hierarchy, mark rows for removal and export the result.

With --export the query runs headless and the result is written to --out.`,
		Version:      version.String(),
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			c, err := config.Load(cmd.Flags())
			if err != nil {
				return err
			}
			logx.Configure(logx.Config{
				Level:  logx.ParseLevel(c.LogLevel),
				Format: c.LogFormat,
				Stderr: c.LogStderr,
			})
			cfg = c
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, cfg, args)
		},
	}
	config.RegisterFlags(root.PersistentFlags())
	root.AddCommand(newSheetsCmd())
	return root
}

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
