package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"boqview/internal/detect"
	"boqview/internal/ingest"
)

func newSheetsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sheets <workbook.xlsx>",
		Short: "List worksheets and whether each has the required BOQ columns",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			cands, err := detect.Sheets(path)
			if err != nil {
				return err
			}
			last, _ := detect.DefaultCache().Load(path)
			w := cmd.OutOrStdout()
			for _, c := range cands {
				status := "ok"
				if !c.Valid {
					status = "missing " + strings.Join(c.Missing, ", ")
				}
				if c.Name == last {
					status += " (last used)"
				}
				fmt.Fprintf(w, "%s\t%s\n", c.Name, status)
			}
			if len(detect.Valid(cands)) == 0 {
				return ingest.ErrNoValidSheet
			}
			return nil
		},
	}
}
