package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/KaramelBytes/tabview-cli/internal/chart"
	"github.com/KaramelBytes/tabview-cli/internal/dataset"
	"github.com/KaramelBytes/tabview-cli/internal/logging"
	"github.com/KaramelBytes/tabview-cli/internal/pipeline"
	"github.com/KaramelBytes/tabview-cli/internal/utils"
)

// Global configuration structure.
type Global struct {
	// Input
	DataPath  string `mapstructure:"data_path" yaml:"data_path"`
	Delimiter string `mapstructure:"delimiter" yaml:"delimiter"`
	Decimal   string `mapstructure:"decimal" yaml:"decimal"`

	SessionsDir string `mapstructure:"sessions_dir" yaml:"sessions_dir"`
	ExportName  string `mapstructure:"export_name" yaml:"export_name"`

	// Pipeline
	MaxGroupColumns      int    `mapstructure:"max_group_columns" yaml:"max_group_columns"`
	GroupableMaxDistinct int    `mapstructure:"groupable_max_distinct" yaml:"groupable_max_distinct"`
	CleanScope           string `mapstructure:"clean_scope" yaml:"clean_scope"`

	// Charts
	HistogramBins int    `mapstructure:"histogram_bins" yaml:"histogram_bins"`
	ChartWidth    int    `mapstructure:"chart_width" yaml:"chart_width"`
	ChartHeight   int    `mapstructure:"chart_height" yaml:"chart_height"`
	ChartFormat   string `mapstructure:"chart_format" yaml:"chart_format"`

	ListenAddr string `mapstructure:"listen_addr" yaml:"listen_addr"`
	LogLevel   string `mapstructure:"log_level" yaml:"log_level"`
}

// Keys lists the settable keys in sorted order.
func Keys() []string {
	keys := make([]string, 0, len(defaults))
	for k := range defaults {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

var defaults = map[string]any{
	"data_path":              "",
	"delimiter":              "",
	"decimal":                ".",
	"sessions_dir":           "",
	"export_name":            "filtered_data.csv",
	"max_group_columns":      2,
	"groupable_max_distinct": dataset.DefaultGroupableMaxDistinct,
	"clean_scope":            string(pipeline.CleanProjected),
	"histogram_bins":         chart.DefaultBins,
	"chart_width":            1024,
	"chart_height":           640,
	"chart_format":           string(chart.PNG),
	"listen_addr":            "127.0.0.1:8080",
	"log_level":              "info",
}

// Dir is the default configuration directory, ~/.tabview.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".tabview"), nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.tabview/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	path := cfgFile
	if path == "" {
		dir, err := Dir()
		if err != nil {
			return err
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir config dir: %w", err)
		}
		path = filepath.Join(dir, "config.yaml")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := utils.SafeWriteFile(path, b); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: env > config file > defaults. Command flags are applied by the caller.
func Load(cfgFile string) (*Global, error) {
	v := viper.New()
	v.SetEnvPrefix("TABVIEW")
	v.AutomaticEnv()
	for k, d := range defaults {
		v.SetDefault(k, d)
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		dir, err := Dir()
		if err != nil {
			return nil, err
		}
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	if err := v.ReadInConfig(); err != nil {
		// a missing file is fine; a broken one is not
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if c.SessionsDir == "" {
		dir, err := Dir()
		if err != nil {
			return nil, err
		}
		c.SessionsDir = filepath.Join(dir, "sessions")
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Defaults returns the stock configuration without reading files or env.
func Defaults() *Global {
	c := &Global{
		Decimal:              ".",
		ExportName:           "filtered_data.csv",
		MaxGroupColumns:      2,
		GroupableMaxDistinct: dataset.DefaultGroupableMaxDistinct,
		CleanScope:           string(pipeline.CleanProjected),
		HistogramBins:        chart.DefaultBins,
		ChartWidth:           1024,
		ChartHeight:          640,
		ChartFormat:          string(chart.PNG),
		ListenAddr:           "127.0.0.1:8080",
		LogLevel:             "info",
	}
	if dir, err := Dir(); err == nil {
		c.SessionsDir = filepath.Join(dir, "sessions")
	}
	return c
}

// Validate checks enumerated and ranged values.
func (c *Global) Validate() error {
	if _, err := pipeline.ParseCleanScope(c.CleanScope); err != nil {
		return err
	}
	if _, err := chart.ParseFormat(c.ChartFormat); err != nil {
		return err
	}
	if _, err := ParseDelimiter(c.Delimiter); err != nil {
		return err
	}
	if _, err := ParseDecimal(c.Decimal); err != nil {
		return err
	}
	if c.LogLevel != "" {
		if _, err := logging.ParseLevel(c.LogLevel); err != nil {
			return err
		}
	}
	if c.MaxGroupColumns < 0 {
		return fmt.Errorf("max_group_columns must be >= 0")
	}
	if c.HistogramBins < 0 {
		return fmt.Errorf("histogram_bins must be >= 0")
	}
	return nil
}

// Set assigns a value by key after validating it.
func (c *Global) Set(key, val string) error {
	atoi := func() (int, error) {
		i, err := strconv.Atoi(strings.TrimSpace(val))
		if err != nil || i < 0 {
			return 0, fmt.Errorf("invalid non-negative int for %s: %v", key, val)
		}
		return i, nil
	}
	positive := func() (int, error) {
		i, err := atoi()
		if err == nil && i == 0 {
			err = fmt.Errorf("%s must be positive", key)
		}
		return i, err
	}
	var err error
	switch key {
	case "data_path":
		c.DataPath = val
	case "delimiter":
		if _, err = ParseDelimiter(val); err == nil {
			c.Delimiter = val
		}
	case "decimal":
		if _, err = ParseDecimal(val); err == nil {
			c.Decimal = val
		}
	case "sessions_dir":
		c.SessionsDir = val
	case "export_name":
		if strings.TrimSpace(val) == "" {
			return fmt.Errorf("export_name must not be empty")
		}
		c.ExportName = val
	case "max_group_columns":
		c.MaxGroupColumns, err = atoi()
	case "groupable_max_distinct":
		c.GroupableMaxDistinct, err = positive()
	case "clean_scope":
		var s pipeline.CleanScope
		if s, err = pipeline.ParseCleanScope(val); err == nil {
			c.CleanScope = string(s)
		}
	case "histogram_bins":
		c.HistogramBins, err = positive()
	case "chart_width":
		c.ChartWidth, err = positive()
	case "chart_height":
		c.ChartHeight, err = positive()
	case "chart_format":
		var f chart.Format
		if f, err = chart.ParseFormat(val); err == nil {
			c.ChartFormat = string(f)
		}
	case "listen_addr":
		c.ListenAddr = val
	case "log_level":
		if _, err = logging.ParseLevel(val); err == nil {
			c.LogLevel = strings.ToLower(val)
		}
	default:
		return fmt.Errorf("unknown key: %s", key)
	}
	return err
}

// Settings returns the pipeline settings this configuration selects.
func (c *Global) Settings() pipeline.Settings {
	scope, _ := pipeline.ParseCleanScope(c.CleanScope)
	return pipeline.Settings{
		Scope:                scope,
		MaxGroupColumns:      c.MaxGroupColumns,
		GroupableMaxDistinct: c.GroupableMaxDistinct,
	}
}

// ParseDelimiter accepts a single character, or the names "tab", "comma",
// "semicolon" and "pipe". Empty means detect from the file extension.
func ParseDelimiter(s string) (rune, error) {
	switch strings.ToLower(s) {
	case "":
		return 0, nil
	case "tab", `\t`:
		return '\t', nil
	case "comma":
		return ',', nil
	case "semicolon":
		return ';', nil
	case "pipe":
		return '|', nil
	}
	r := []rune(s)
	if len(r) != 1 || r[0] == '"' || r[0] == '\r' || r[0] == '\n' {
		return 0, fmt.Errorf("invalid delimiter %q", s)
	}
	return r[0], nil
}

// ParseDecimal accepts "." or ",".
func ParseDecimal(s string) (rune, error) {
	switch s {
	case "", ".":
		return '.', nil
	case ",":
		return ',', nil
	}
	return 0, fmt.Errorf("invalid decimal separator %q (use . or ,)", s)
}
