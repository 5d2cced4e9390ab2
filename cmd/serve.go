package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/tabview-cli/internal/chart"
	"github.com/KaramelBytes/tabview-cli/internal/logging"
	"github.com/KaramelBytes/tabview-cli/internal/server"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve [file]",
	Short: "Serve the dataset over HTTP, one set of controls per session",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		tbl, err := loadTable(args, nil)
		if err != nil {
			return err
		}
		format, err := chart.ParseFormat(cfg.ChartFormat)
		if err != nil {
			return err
		}
		addr := cfg.ListenAddr
		if cmd.Flags().Changed("addr") {
			addr = serveAddr
		}
		srv := server.New(tbl, server.Options{
			Settings:      cfg.Settings(),
			ExportName:    cfg.ExportName,
			HistogramBins: cfg.HistogramBins,
			ChartWidth:    cfg.ChartWidth,
			ChartHeight:   cfg.ChartHeight,
			ChartFormat:   format,
		})

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Serving %s (%d rows, %d columns) on http://%s\n", tbl.Name(), tbl.Rows(), tbl.NumCols(), addr)
		if err := srv.ListenAndServe(ctx, addr); err != nil {
			return err
		}
		logging.Infof("server stopped")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from config listen_addr)")
}
