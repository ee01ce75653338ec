package main

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

func newPreviewCmd() *cobra.Command {
	var mediaType string
	cmd := &cobra.Command{
		Use:   "preview <file>",
		Short: "Print the columns, sample rows and row count of a dataset file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := loadFile(args[0], mediaType)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "file:    %s (%s, %s)\n", f.Name, f.humanSize(), f.MediaType)
			if len(f.Preview.Columns) == 0 {
				fmt.Fprintln(out, "columns: (none)")
			} else {
				fmt.Fprintf(out, "columns: %s\n", strings.Join(f.Preview.Columns, ", "))
			}
			fmt.Fprintf(out, "rows:    %s\n", humanize.Comma(int64(f.Preview.RowCount)))
			if len(f.Preview.SampleRows) == 0 {
				fmt.Fprintln(out, "sample:  (none)")
				return nil
			}
			fmt.Fprintln(out, "sample:")
			return writeJSON(out, f.Preview.SampleRows)
		},
	}
	cmd.Flags().StringVar(&mediaType, "type", "", "media type of the file (text/csv, application/json, text/plain); detected when empty")
	return cmd
}
