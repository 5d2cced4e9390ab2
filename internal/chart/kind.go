package chart

import (
	"errors"
	"fmt"
	"strings"
)

// Kind names a chart type.
type Kind string

const (
	Bar       Kind = "bar"
	Histogram Kind = "histogram"
	Box       Kind = "box"
	Scatter   Kind = "scatter"
	Line      Kind = "line"
	Pie       Kind = "pie"
	// Overview plots every numeric column against the row index.
	Overview Kind = "overview"
)

// Kinds lists the supported chart kinds in menu order.
func Kinds() []Kind {
	return []Kind{Bar, Histogram, Box, Scatter, Line, Pie, Overview}
}

// ParseKind resolves a user-supplied chart name.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "bar":
		return Bar, nil
	case "histogram", "hist":
		return Histogram, nil
	case "box", "boxplot", "box_plot", "box-plot":
		return Box, nil
	case "scatter":
		return Scatter, nil
	case "line":
		return Line, nil
	case "pie":
		return Pie, nil
	case "overview":
		return Overview, nil
	}
	return "", &Error{Reason: UnsupportedKind, Kind: Kind(s)}
}

const (
	// DefaultBins is used when a histogram request leaves Bins at 0.
	DefaultBins = 20
	// MinBins and MaxBins bound the bin slider offered to users.
	MinBins = 5
	MaxBins = 100
)

// Bindings map chart fields to column names.
type Bindings struct {
	X      string `json:"x,omitempty" yaml:"x,omitempty"`
	Y      string `json:"y,omitempty" yaml:"y,omitempty"`
	Color  string `json:"color,omitempty" yaml:"color,omitempty"`
	Names  string `json:"names,omitempty" yaml:"names,omitempty"`
	Values string `json:"values,omitempty" yaml:"values,omitempty"`
	Bins   int    `json:"bins,omitempty" yaml:"bins,omitempty"`
}

// Request asks for one chart over the current view.
type Request struct {
	Kind     Kind   `json:"kind" yaml:"kind"`
	Title    string `json:"title,omitempty" yaml:"title,omitempty"`
	Bindings `yaml:",inline"`
}

// WithDefaultBins fills an unset histogram bin count with n.
func (r Request) WithDefaultBins(n int) Request {
	if r.Bins == 0 && n > 0 {
		r.Bins = n
	}
	return r
}

// Reason classifies a chart failure.
type Reason int

const (
	UnknownColumn Reason = iota + 1
	MissingBinding
	NotNumeric
	InvalidBins
	UnsupportedKind
	NoNumericColumns
)

var (
	ErrUnknownColumn    = errors.New("unknown column")
	ErrMissingBinding   = errors.New("missing field binding")
	ErrNotNumeric       = errors.New("column is not numeric")
	ErrInvalidBins      = errors.New("bin count must be positive")
	ErrUnsupportedKind  = errors.New("unsupported chart kind")
	ErrNoNumericColumns = errors.New("no numeric columns to plot")
)

var reasonErr = map[Reason]error{
	UnknownColumn:    ErrUnknownColumn,
	MissingBinding:   ErrMissingBinding,
	NotNumeric:       ErrNotNumeric,
	InvalidBins:      ErrInvalidBins,
	UnsupportedKind:  ErrUnsupportedKind,
	NoNumericColumns: ErrNoNumericColumns,
}

// Error reports why a chart could not be built. Nothing is rendered for it;
// the rest of the view is unaffected.
type Error struct {
	Reason  Reason
	Kind    Kind
	Columns []string
}

func (e *Error) Error() string {
	base := "chart failed"
	if err, ok := reasonErr[e.Reason]; ok {
		base = err.Error()
	}
	if e.Reason == UnsupportedKind {
		return fmt.Sprintf("%s: %q", base, string(e.Kind))
	}
	if len(e.Columns) > 0 {
		return fmt.Sprintf("%s chart: %s: %s", e.Kind, base, strings.Join(e.Columns, ", "))
	}
	return fmt.Sprintf("%s chart: %s", e.Kind, base)
}

// Is matches the sentinel for the error's reason.
func (e *Error) Is(target error) bool {
	return reasonErr[e.Reason] == target
}
