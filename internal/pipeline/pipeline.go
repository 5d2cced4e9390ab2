package pipeline

import (
	"errors"
	"fmt"

	"github.com/KaramelBytes/tabview-cli/internal/chart"
	"github.com/KaramelBytes/tabview-cli/internal/dataset"
)

// ErrAggregateInGroupBy is a warning: the aggregate column was also listed as
// a group key and has been dropped from the keys.
var ErrAggregateInGroupBy = errors.New("aggregate column removed from group keys")

// Result is one derived view. It is rebuilt in full on every call.
type Result struct {
	Table *dataset.Table
	// Grouped is true when Table holds group means rather than source rows.
	Grouped bool
	// SourceRows is the row count of the loaded table.
	SourceRows int
	// Warnings are non-fatal conditions worth showing next to the view.
	Warnings []error
}

// View is a Result plus the chart drawn from it. A chart failure lands in
// ChartErr and leaves the rest of the view intact.
type View struct {
	*Result
	Chart    *chart.Spec
	ChartErr error
}

// Pipeline derives views from an immutable source table.
type Pipeline struct {
	settings Settings
}

// New returns a pipeline with s applied; zero fields fall back to defaults.
func New(s Settings) *Pipeline {
	d := DefaultSettings()
	if s.Scope == "" {
		s.Scope = d.Scope
	}
	if s.GroupableMaxDistinct <= 0 {
		s.GroupableMaxDistinct = d.GroupableMaxDistinct
	}
	if s.MaxGroupColumns < 0 {
		s.MaxGroupColumns = 0
	}
	return &Pipeline{settings: s}
}

// Settings returns the effective settings.
func (p *Pipeline) Settings() Settings { return p.settings }

// Derive runs projection, cleaning, optional grouping and slicing over src.
// src is never modified.
func (p *Pipeline) Derive(src *dataset.Table, opt ViewOptions) (*Result, error) {
	if len(opt.Columns) == 0 {
		return nil, ErrEmptySelection
	}
	if missing := src.Missing(opt.Columns...); len(missing) > 0 {
		return nil, &UnknownColumnError{Columns: missing}
	}
	res := &Result{SourceRows: src.Rows()}

	if opt.Grouping() {
		grouped, warnings, err := p.group(src, opt)
		if err != nil {
			return nil, err
		}
		res.Warnings = append(res.Warnings, warnings...)
		if grouped != nil {
			res.Table, res.Grouped = grouped, true
		}
	}

	if res.Table == nil {
		t, err := p.clean(src, opt)
		if err != nil {
			return nil, err
		}
		res.Table = t
	}

	if opt.RowLimit > 0 {
		t, err := SliceHead(res.Table, opt.RowLimit)
		if err != nil {
			return nil, err
		}
		res.Table = t
	}
	return res, nil
}

func (p *Pipeline) clean(src *dataset.Table, opt ViewOptions) (*dataset.Table, error) {
	if p.settings.Scope == CleanSource {
		return Project(Clean(src, opt.DropDuplicates, opt.DropNulls), opt.Columns)
	}
	t, err := Project(src, opt.Columns)
	if err != nil {
		return nil, err
	}
	return Clean(t, opt.DropDuplicates, opt.DropNulls), nil
}

// group validates the grouping request and aggregates the full source table.
// A nil table with no error means grouping is inert for this table.
func (p *Pipeline) group(src *dataset.Table, opt ViewOptions) (*dataset.Table, []error, error) {
	limit := p.settings.GroupableMaxDistinct
	if len(src.GroupableColumns(limit)) == 0 {
		return nil, []error{ErrNoEligibleColumns}, nil
	}
	if p.settings.MaxGroupColumns > 0 && len(opt.GroupBy) > p.settings.MaxGroupColumns {
		return nil, nil, fmt.Errorf("%w: %d selected, at most %d allowed", ErrTooManyGroupColumns, len(opt.GroupBy), p.settings.MaxGroupColumns)
	}
	if missing := src.Missing(opt.GroupBy...); len(missing) > 0 {
		return nil, nil, &UnknownColumnError{Columns: missing}
	}
	if opt.Aggregate == "" {
		return nil, nil, ErrAggregateRequired
	}
	var warnings []error
	keys := make([]string, 0, len(opt.GroupBy))
	for _, name := range opt.GroupBy {
		if name == opt.Aggregate {
			warnings = append(warnings, fmt.Errorf("%w: %q", ErrAggregateInGroupBy, name))
			continue
		}
		c, _ := src.Column(name)
		if !c.Groupable(limit) {
			return nil, nil, fmt.Errorf("%w: %q has %d distinct values", ErrNotGroupable, name, c.Distinct())
		}
		keys = append(keys, name)
	}
	t, err := GroupAndAggregate(src, keys, opt.Aggregate)
	if err != nil {
		return nil, nil, err
	}
	return t, warnings, nil
}

// Compose derives the view and, when req is non-nil, builds its chart
// against the derived table.
func (p *Pipeline) Compose(src *dataset.Table, opt ViewOptions, req *chart.Request) (*View, error) {
	res, err := p.Derive(src, opt)
	if err != nil {
		return nil, err
	}
	v := &View{Result: res}
	if req != nil && req.Kind != "" {
		v.Chart, v.ChartErr = chart.Build(res.Table, *req)
	}
	return v, nil
}
