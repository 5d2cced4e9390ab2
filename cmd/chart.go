package cmd

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/tabview-cli/internal/chart"
	"github.com/KaramelBytes/tabview-cli/internal/pipeline"
	"github.com/KaramelBytes/tabview-cli/internal/utils"
)

var (
	chartOutput      string
	chartImageFormat string
	chartPrintSpec   bool
)

var chartCmd = &cobra.Command{
	Use:   "chart [file]",
	Short: "Render a chart of the current view",
	Long: `Render a chart of the current view. Column bindings are checked against the
derived view, so a grouped view only offers its group keys and the aggregate.
Without --kind (and no session chart) every numeric column is plotted.`,
	Args: cobra.MaximumNArgs(1),
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
		if req == nil {
			req = &chart.Request{Kind: chart.Overview}
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
		if v.ChartErr != nil {
			return v.ChartErr
		}

		if chartPrintSpec {
			b, err := utils.PrettyJSON(v.Chart)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(b))
			return nil
		}
		out := chartOutput
		if out == "" {
			format, err := imageFormat("")
			if err != nil {
				return err
			}
			out = "chart." + string(format)
		}
		return writeChart(cmd, v, out)
	},
}

// imageFormat resolves --image-format, then the output extension, then config.
func imageFormat(path string) (chart.Format, error) {
	if chartImageFormat != "" {
		return chart.ParseFormat(chartImageFormat)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".svg":
		return chart.SVG, nil
	case ".png":
		return chart.PNG, nil
	}
	return chart.ParseFormat(cfg.ChartFormat)
}

func init() {
	rootCmd.AddCommand(chartCmd)
	addViewFlags(chartCmd)
	addChartFlags(chartCmd)
	chartCmd.Flags().StringVarP(&chartOutput, "output", "o", "", "image path (default chart.<format>)")
	chartCmd.Flags().StringVar(&chartImageFormat, "image-format", "", "png|svg (default from extension or config)")
	chartCmd.Flags().BoolVar(&chartPrintSpec, "spec", false, "print the chart data as JSON instead of rendering")
}
