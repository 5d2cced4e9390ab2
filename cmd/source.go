package cmd

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/tabview-cli/internal/chart"
	cfgpkg "github.com/KaramelBytes/tabview-cli/internal/config"
	"github.com/KaramelBytes/tabview-cli/internal/dataset"
	"github.com/KaramelBytes/tabview-cli/internal/parser"
	"github.com/KaramelBytes/tabview-cli/internal/pipeline"
	"github.com/KaramelBytes/tabview-cli/internal/session"
	"github.com/KaramelBytes/tabview-cli/internal/utils"
)

// view flags, shared by view and chart
var (
	viewColumns   []string
	viewAll       bool
	viewDedup     bool
	viewDropNA    bool
	viewGroupBy   []string
	viewAggregate string
	viewLimit     int
	viewSession   string
)

// chart flags, shared by chart, view and session chart
var (
	chartKind   string
	chartTitle  string
	chartX      string
	chartY      string
	chartColor  string
	chartNames  string
	chartValues string
	chartBins   int
)

func addViewFlags(c *cobra.Command) {
	f := c.Flags()
	f.StringSliceVarP(&viewColumns, "columns", "c", nil, "columns to show, in order (comma-separated)")
	f.BoolVar(&viewAll, "all", false, "show every column")
	f.BoolVar(&viewDedup, "dedup", false, "drop duplicate rows")
	f.BoolVar(&viewDropNA, "dropna", false, "drop rows with missing values")
	f.StringSliceVar(&viewGroupBy, "group-by", nil, "group by these columns (at most max_group_columns)")
	f.StringVar(&viewAggregate, "agg", "", "numeric column averaged per group")
	f.IntVar(&viewLimit, "limit", 0, "keep the first n rows (0 = all)")
	f.StringVarP(&viewSession, "session", "s", "", "start from a saved session's controls")
}

func addChartFlags(c *cobra.Command) {
	f := c.Flags()
	f.StringVar(&chartKind, "kind", "", "chart kind: bar|histogram|box|scatter|line|pie|overview")
	f.StringVar(&chartTitle, "title", "", "chart title")
	f.StringVar(&chartX, "x", "", "x column")
	f.StringVar(&chartY, "y", "", "y column")
	f.StringVar(&chartColor, "color", "", "scatter: column that colors the points")
	f.StringVar(&chartNames, "names", "", "pie: slice label column")
	f.StringVar(&chartValues, "values", "", "pie: slice value column")
	f.IntVar(&chartBins, "bins", 0, "histogram bins (default from config)")
}

// loadSession resolves a saved session by name from the configured sessions dir.
func loadSession(name string) (*session.Session, error) {
	root, err := sessionsDir()
	if err != nil {
		return nil, err
	}
	dir, err := session.Dir(root, name)
	if err != nil {
		return nil, err
	}
	return session.Load(dir)
}

func sessionsDir() (string, error) {
	dir := cfg.SessionsDir
	if dir == "" {
		base, err := cfgpkg.Dir()
		if err != nil {
			return "", err
		}
		return filepath.Join(base, "sessions"), nil
	}
	return utils.ExpandHome(dir)
}

// dataPath picks the file to load: argument, then --data/config, then the
// session's remembered file.
func dataPath(args []string, sess *session.Session) (string, error) {
	path := ""
	switch {
	case len(args) > 0:
		path = args[0]
	case flagDataPath != "":
		path = flagDataPath
	case sess != nil && sess.DataPath != "":
		path = sess.DataPath
	default:
		path = cfg.DataPath
	}
	if path == "" {
		return "", errors.New("no data file: pass a path, use --data or set data_path")
	}
	return utils.ExpandHome(path)
}

func parserOptions() (parser.Options, error) {
	delim, err := cfgpkg.ParseDelimiter(cfg.Delimiter)
	if err != nil {
		return parser.Options{}, err
	}
	dec, err := cfgpkg.ParseDecimal(cfg.Decimal)
	if err != nil {
		return parser.Options{}, err
	}
	return parser.Options{
		Delimiter:  delim,
		Infer:      dataset.InferOptions{DecimalSeparator: dec},
		SheetName:  flagSheetName,
		SheetIndex: flagSheetIndex,
	}, nil
}

// loadTable loads the source table once for this invocation.
func loadTable(args []string, sess *session.Session) (*dataset.Table, error) {
	path, err := dataPath(args, sess)
	if err != nil {
		return nil, err
	}
	opt, err := parserOptions()
	if err != nil {
		return nil, err
	}
	tbl, err := parser.Load(path, opt)
	if err != nil {
		return nil, err
	}
	return tbl, nil
}

// flagSession returns the --session session, or nil when unset.
func flagSession() (*session.Session, error) {
	if viewSession == "" {
		return nil, nil
	}
	s, err := loadSession(viewSession)
	if err != nil {
		return nil, fmt.Errorf("load session %q: %w", viewSession, err)
	}
	return s, nil
}

// viewOptions layers the view flags over the session (or over "all columns").
func viewOptions(cmd *cobra.Command, tbl *dataset.Table, sess *session.Session) pipeline.ViewOptions {
	opt := pipeline.ViewOptions{Columns: tbl.Columns()}
	if sess != nil {
		opt = sess.ViewOptions(tbl.Columns())
	}
	f := cmd.Flags()
	if f.Changed("columns") {
		opt.Columns = append([]string(nil), viewColumns...)
	}
	if viewAll {
		opt.Columns = tbl.Columns()
	}
	if f.Changed("dedup") {
		opt.DropDuplicates = viewDedup
	}
	if f.Changed("dropna") {
		opt.DropNulls = viewDropNA
	}
	if f.Changed("group-by") {
		opt.GroupBy = append([]string(nil), viewGroupBy...)
	}
	if f.Changed("agg") {
		opt.Aggregate = viewAggregate
	}
	if f.Changed("limit") {
		opt.RowLimit = viewLimit
	}
	return opt
}

// chartRequest layers the chart flags over base. It returns nil when neither
// the flags nor base ask for a chart.
func chartRequest(cmd *cobra.Command, base *chart.Request) (*chart.Request, error) {
	var req chart.Request
	if base != nil {
		req = *base
	}
	f := cmd.Flags()
	if f.Changed("kind") {
		kind, err := chart.ParseKind(chartKind)
		if err != nil {
			return nil, err
		}
		req.Kind = kind
	}
	if f.Changed("title") {
		req.Title = chartTitle
	}
	if f.Changed("x") {
		req.X = chartX
	}
	if f.Changed("y") {
		req.Y = chartY
	}
	if f.Changed("color") {
		req.Color = chartColor
	}
	if f.Changed("names") {
		req.Names = chartNames
	}
	if f.Changed("values") {
		req.Values = chartValues
	}
	if f.Changed("bins") {
		if chartBins <= 0 {
			return nil, fmt.Errorf("--bins: %w", chart.ErrInvalidBins)
		}
		req.Bins = chartBins
	}
	if req.Kind == "" {
		return nil, nil
	}
	req = req.WithDefaultBins(cfg.HistogramBins)
	return &req, nil
}

// newPipeline builds the pipeline from the loaded configuration.
func newPipeline() *pipeline.Pipeline {
	return pipeline.New(cfg.Settings())
}

// printWarnings reports non-fatal conditions on stderr.
func printWarnings(cmd *cobra.Command, warnings []error) {
	for _, w := range warnings {
		fmt.Fprintf(cmd.ErrOrStderr(), "⚠ Warning: %v\n", w)
	}
}
