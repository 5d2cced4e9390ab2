package cmd

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/tabview-cli/internal/chart"
	"github.com/KaramelBytes/tabview-cli/internal/export"
	"github.com/KaramelBytes/tabview-cli/internal/logging"
	"github.com/KaramelBytes/tabview-cli/internal/pipeline"
	"github.com/KaramelBytes/tabview-cli/internal/utils"
)

var (
	viewExport   string
	viewFormat   string
	viewChartOut string
)

var viewCmd = &cobra.Command{
	Use:   "view [file]",
	Short: "Show the selected, cleaned, grouped and sliced view of a dataset",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, err := flagSession()
		if err != nil {
			return err
		}
		tbl, err := loadTable(args, sess)
		if err != nil {
			return err
		}
		var base *chart.Request
		if sess != nil {
			base = sess.Chart
		}
		req, err := chartRequest(cmd, base)
		if err != nil {
			return err
		}
		if viewChartOut == "" {
			req = nil
		}

		v, err := newPipeline().Compose(tbl, viewOptions(cmd, tbl, sess), req)
		if errors.Is(err, pipeline.ErrEmptySelection) {
			fmt.Fprintf(cmd.ErrOrStderr(), "⚠ Warning: %v; pick at least one column\n", err)
			return nil
		}
		if err != nil {
			return err
		}
		printWarnings(cmd, v.Warnings)

		if err := writeView(cmd, v.Result); err != nil {
			return err
		}
		if viewChartOut != "" {
			// the table is already out; a chart failure is only reported
			if err := writeChart(cmd, v, viewChartOut); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "⚠ Chart skipped: %v\n", err)
			}
		}
		return nil
	},
}

// writeView exports to --export, or prints in --format to stdout.
func writeView(cmd *cobra.Command, res *pipeline.Result) error {
	if viewExport != "" {
		f := export.ForPath(viewExport)
		if cmd.Flags().Changed("format") {
			var err error
			if f, err = export.Lookup(viewFormat); err != nil {
				return err
			}
		}
		var buf bytes.Buffer
		if err := f.Format(res.Table, &buf); err != nil {
			return fmt.Errorf("export %s: %w", f.Name(), err)
		}
		if err := utils.SafeWriteFile(viewExport, buf.Bytes()); err != nil {
			return fmt.Errorf("write export: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote %d rows to %s\n", res.Table.Rows(), viewExport)
		return nil
	}
	f, err := export.Lookup(viewFormat)
	if err != nil {
		return err
	}
	if err := f.Format(res.Table, cmd.OutOrStdout()); err != nil {
		return err
	}
	if f.Name() == "table" {
		fmt.Fprintln(cmd.OutOrStdout(), summaryLine(res))
	}
	return nil
}

func summaryLine(res *pipeline.Result) string {
	if res.Grouped {
		return fmt.Sprintf("%d groups from %d rows", res.Table.Rows(), res.SourceRows)
	}
	return fmt.Sprintf("%d of %d rows, %d columns", res.Table.Rows(), res.SourceRows, res.Table.NumCols())
}

// writeChart renders v's chart (or its inline error) to path.
func writeChart(cmd *cobra.Command, v *pipeline.View, path string) error {
	if v.ChartErr != nil {
		return v.ChartErr
	}
	if v.Chart == nil {
		return errors.New("no chart requested: pass --kind")
	}
	format, err := imageFormat(path)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := chart.Render(v.Chart, &buf, format, cfg.ChartWidth, cfg.ChartHeight); err != nil {
		return fmt.Errorf("render %s chart: %w", v.Chart.Kind, err)
	}
	if err := utils.SafeWriteFile(path, buf.Bytes()); err != nil {
		return fmt.Errorf("write chart: %w", err)
	}
	logging.Debugf("chart %s: %d bytes", v.Chart.Kind, buf.Len())
	fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote %s chart to %s\n", v.Chart.Kind, path)
	return nil
}

func init() {
	rootCmd.AddCommand(viewCmd)
	addViewFlags(viewCmd)
	addChartFlags(viewCmd)
	viewCmd.Flags().StringVarP(&viewExport, "export", "e", "", "write the view to this file (format from extension)")
	viewCmd.Flags().StringVarP(&viewFormat, "format", "f", "table", "output format: csv|tsv|json|parquet|table")
	viewCmd.Flags().StringVar(&viewChartOut, "chart-out", "", "also render the chart to this image file")
}
