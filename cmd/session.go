package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/tabview-cli/internal/session"
	"github.com/KaramelBytes/tabview-cli/internal/utils"
)

var (
	sessData      string
	sessAll       bool
	sessDedup     bool
	sessDropNA    bool
	sessGroupBy   []string
	sessAggregate string
	sessLimit     int
	sessClear     bool
	sessYAML      bool
)

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Manage saved view controls",
}

var sessionNewCmd = &cobra.Command{
	Use:   "new <name>",
	Short: "Create a session that shows every column",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		root, err := sessionsDir()
		if err != nil {
			return err
		}
		dir, err := session.Dir(root, name)
		if err != nil {
			return err
		}
		// Refuse to overwrite an existing session.
		if _, err := session.Load(dir); err == nil {
			return fmt.Errorf("session already exists at %s", dir)
		}
		data := sessData
		if data != "" {
			if data, err = utils.ExpandHome(data); err != nil {
				return err
			}
			if abs, err := filepath.Abs(data); err == nil {
				data = abs
			}
			if _, err := os.Stat(data); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "⚠ Warning: data file not readable yet: %v\n", err)
			}
		}
		s := session.New(name, data, dir)
		if err := s.Save(); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Session created: %s\n", dir)
		return nil
	},
}

var sessionSelectCmd = &cobra.Command{
	Use:   "select <name> [columns...]",
	Short: "Set the columns a session shows, in order",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := loadSession(args[0])
		if err != nil {
			return err
		}
		if sessAll {
			s.UseAllColumns()
		} else {
			s.Select(utils.SplitList(strings.Join(args[1:], ","))...)
			if len(s.Columns) == 0 {
				fmt.Fprintln(cmd.ErrOrStderr(), "⚠ Warning: no columns selected; views of this session will be empty")
			}
		}
		if err := s.Save(); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Updated columns of session '%s'\n", s.Name)
		return nil
	},
}

var sessionSetCmd = &cobra.Command{
	Use:   "set <name>",
	Short: "Set cleaning, grouping and row limit of a session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := loadSession(args[0])
		if err != nil {
			return err
		}
		f := cmd.Flags()
		if f.Changed("dedup") || f.Changed("dropna") {
			dedup, dropna := s.DropDuplicates, s.DropNulls
			if f.Changed("dedup") {
				dedup = sessDedup
			}
			if f.Changed("dropna") {
				dropna = sessDropNA
			}
			s.SetCleaning(dedup, dropna)
		}
		if f.Changed("group-by") || f.Changed("agg") {
			keys, agg := s.GroupBy, s.Aggregate
			if f.Changed("group-by") {
				keys = sessGroupBy
			}
			if f.Changed("agg") {
				agg = sessAggregate
			}
			s.SetGrouping(keys, agg)
		}
		if f.Changed("limit") {
			if err := s.SetRowLimit(sessLimit); err != nil {
				return err
			}
		}
		if err := s.Save(); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Updated session '%s'\n", s.Name)
		return nil
	},
}

var sessionChartCmd = &cobra.Command{
	Use:   "chart <name>",
	Short: "Set or clear the chart of a session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := loadSession(args[0])
		if err != nil {
			return err
		}
		if sessClear {
			if err := s.SetChart(nil); err != nil {
				return err
			}
		} else {
			req, err := chartRequest(cmd, s.Chart)
			if err != nil {
				return err
			}
			if req == nil {
				return errors.New("--kind is required (or --clear)")
			}
			// keep 0 so the configured default applies at render time
			if !cmd.Flags().Changed("bins") && (s.Chart == nil || s.Chart.Bins == 0) {
				req.Bins = 0
			}
			if err := s.SetChart(req); err != nil {
				return err
			}
		}
		if err := s.Save(); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Updated chart of session '%s'\n", s.Name)
		return nil
	},
}

var sessionShowCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "Print a session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := loadSession(args[0])
		if err != nil {
			return err
		}
		var b []byte
		if sessYAML {
			b, err = s.YAML()
		} else {
			b, err = utils.PrettyJSON(s)
		}
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(b))
		return nil
	},
}

var sessionListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved sessions",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		root, err := sessionsDir()
		if err != nil {
			return err
		}
		list, err := session.List(root)
		if err != nil {
			return err
		}
		if len(list) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "(no sessions)")
			return nil
		}
		for _, s := range list {
			fmt.Fprintf(cmd.OutOrStdout(), "- %s: %s\n", s.Name, describeSession(s))
		}
		return nil
	},
}

func describeSession(s *session.Session) string {
	cols := "all columns"
	if !s.SelectAll {
		cols = fmt.Sprintf("%d columns", len(s.Columns))
	}
	out := cols
	if len(s.GroupBy) > 0 {
		out += fmt.Sprintf(", mean of %s by %v", s.Aggregate, s.GroupBy)
	}
	if s.RowLimit > 0 {
		out += fmt.Sprintf(", first %d rows", s.RowLimit)
	}
	if s.Chart != nil {
		out += fmt.Sprintf(", %s chart", s.Chart.Kind)
	}
	return out
}

func init() {
	rootCmd.AddCommand(sessionCmd)
	sessionCmd.AddCommand(sessionNewCmd, sessionSelectCmd, sessionSetCmd, sessionChartCmd, sessionShowCmd, sessionListCmd)

	sessionNewCmd.Flags().StringVar(&sessData, "file", "", "data file remembered by the session")
	sessionSelectCmd.Flags().BoolVar(&sessAll, "all", false, "show every column")

	sf := sessionSetCmd.Flags()
	sf.BoolVar(&sessDedup, "dedup", false, "drop duplicate rows")
	sf.BoolVar(&sessDropNA, "dropna", false, "drop rows with missing values")
	sf.StringSliceVar(&sessGroupBy, "group-by", nil, "group keys (empty to turn grouping off)")
	sf.StringVar(&sessAggregate, "agg", "", "numeric column averaged per group")
	sf.IntVar(&sessLimit, "limit", 0, "keep the first n rows (0 = all)")

	addChartFlags(sessionChartCmd)
	sessionChartCmd.Flags().BoolVar(&sessClear, "clear", false, "remove the chart")

	sessionShowCmd.Flags().BoolVar(&sessYAML, "yaml", false, "print YAML instead of JSON")
}
