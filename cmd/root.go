package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	cfgpkg "github.com/KaramelBytes/tabview-cli/internal/config"
	"github.com/KaramelBytes/tabview-cli/internal/logging"
)

var (
	// Global flags
	cfgFile  string
	debug    bool
	logLevel string

	// Input flags (override config if set)
	flagDataPath   string
	flagDelimiter  string
	flagDecimal    string
	flagSheetName  string
	flagSheetIndex int

	// Loaded configuration
	cfg *cfgpkg.Global
)

var rootCmd = &cobra.Command{
	Use:   "tabview",
	Short: "tabview: explore a tabular dataset from the terminal or the browser",
	Long: `tabview loads a CSV/TSV/XLSX file and lets you pick columns, drop duplicate
or incomplete rows, group and average, keep the first rows, chart the result
and export it.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: loadConfig,
}

// Execute is the entry point called by main.main()
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default is ~/.tabview/config.yaml)")
	pf.BoolVar(&debug, "debug", false, "enable debug output")
	pf.StringVar(&logLevel, "log-level", "", "log level: debug|info|warn|error (overrides config)")
	pf.StringVar(&flagDataPath, "data", "", "data file (overrides config data_path)")
	pf.StringVar(&flagDelimiter, "delimiter", "", "delimiter: ',' | ';' | 'tab' | 'pipe' (sniffed if omitted)")
	pf.StringVar(&flagDecimal, "decimal", "", "decimal separator: '.' | ','")
	pf.StringVar(&flagSheetName, "sheet-name", "", "XLSX: sheet name")
	pf.IntVar(&flagSheetIndex, "sheet-index", 1, "XLSX: 1-based sheet index (used if --sheet-name not provided)")
}

// loadConfig runs before every command. A broken config file is reported and
// the stock settings are used, so `config set` can still repair it.
func loadConfig(cmd *cobra.Command, _ []string) error {
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "⚠ Warning: failed to load config: %v\n", err)
		c = cfgpkg.Defaults()
	}
	cfg = c

	f := cmd.Flags()
	if f.Changed("data") {
		cfg.DataPath = flagDataPath
	}
	if f.Changed("delimiter") {
		if _, err := cfgpkg.ParseDelimiter(flagDelimiter); err != nil {
			return err
		}
		cfg.Delimiter = flagDelimiter
	}
	if f.Changed("decimal") {
		if _, err := cfgpkg.ParseDecimal(flagDecimal); err != nil {
			return err
		}
		cfg.Decimal = flagDecimal
	}
	if f.Changed("log-level") {
		cfg.LogLevel = logLevel
	}
	logging.SetLogLevel(cfg.LogLevel)
	if debug {
		logging.SetLevel(logging.LevelDebug)
	}
	logging.Debugf("config loaded: sessions_dir=%s clean_scope=%s", cfg.SessionsDir, cfg.CleanScope)
	return nil
}
