package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"gopherai-insight/internal/pkg/chart"
)

func newChartCmd() *cobra.Command {
	var (
		mediaType string
		chartType string
		xKey      string
		yKey      string
	)
	cmd := &cobra.Command{
		Use:   "chart <file>",
		Short: "Print the chart points of a dataset file's sample rows",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			typ, err := chart.ParseType(chartType)
			if err != nil {
				return fmt.Errorf("%w: %s", err, chartType)
			}
			f, err := loadFile(args[0], mediaType)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), map[string]any{
				"type":   typ,
				"x_key":  xKey,
				"y_key":  yKey,
				"points": chart.Map(f.Preview.SampleRows, xKey, yKey),
			})
		},
	}
	cmd.Flags().StringVar(&mediaType, "type", "", "media type of the file; detected when empty")
	cmd.Flags().StringVar(&chartType, "chart", "bar", "chart type: bar, line or pie")
	cmd.Flags().StringVar(&xKey, "x", "", "column used for point names; rows without it are named Unknown")
	cmd.Flags().StringVar(&yKey, "y", "", "column used for point values")
	return cmd
}
