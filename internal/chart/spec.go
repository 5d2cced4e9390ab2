package chart

import (
	"github.com/KaramelBytes/tabview-cli/internal/dataset"
)

// Spec is a resolved chart: the data to draw and its labels, detached from
// the table it came from. It serializes to JSON for external renderers and
// is drawn locally by Render.
type Spec struct {
	Kind   Kind   `json:"kind"`
	Title  string `json:"title,omitempty"`
	XLabel string `json:"x_label,omitempty"`
	YLabel string `json:"y_label,omitempty"`

	// Bar and pie: one value per category, in first-appearance order.
	Categories []string  `json:"categories,omitempty"`
	Values     []float64 `json:"values,omitempty"`

	Bins   []Bin      `json:"bins,omitempty"`
	Boxes  []BoxStats `json:"boxes,omitempty"`
	Series []Series   `json:"series,omitempty"`
	// XTicks label positions when a line chart runs over a categorical axis.
	XTicks []Tick `json:"x_ticks,omitempty"`
}

// Bin is one histogram bucket covering [Lo, Hi); the last bucket includes Hi.
type Bin struct {
	Lo    float64 `json:"lo"`
	Hi    float64 `json:"hi"`
	Count int     `json:"count"`
}

// BoxStats summarizes one box. Whiskers end at the most extreme values
// within 1.5 IQR of the quartiles; values beyond are outliers.
type BoxStats struct {
	Label    string    `json:"label"`
	N        int       `json:"n"`
	Low      float64   `json:"low"`
	Q1       float64   `json:"q1"`
	Median   float64   `json:"median"`
	Q3       float64   `json:"q3"`
	High     float64   `json:"high"`
	Outliers []float64 `json:"outliers,omitempty"`
}

// Series is a named set of points.
type Series struct {
	Name string    `json:"name"`
	X    []float64 `json:"x"`
	Y    []float64 `json:"y"`
}

// Tick is an axis label at a position.
type Tick struct {
	Value float64 `json:"value"`
	Label string  `json:"label"`
}

// Build validates req against t and resolves the chart data.
func Build(t *dataset.Table, req Request) (*Spec, error) {
	kind, err := ParseKind(string(req.Kind))
	if err != nil {
		return nil, err
	}
	b := req.Bindings
	fields := required(kind, b)
	var unbound []string
	for _, f := range fields {
		if f.column == "" {
			unbound = append(unbound, f.field)
		}
	}
	if len(unbound) > 0 {
		return nil, &Error{Reason: MissingBinding, Kind: kind, Columns: unbound}
	}
	names := make([]string, 0, len(fields)+1)
	for _, f := range fields {
		names = append(names, f.column)
	}
	if b.Color != "" && kind == Scatter {
		names = append(names, b.Color)
	}
	if missing := t.Missing(names...); len(missing) > 0 {
		return nil, &Error{Reason: UnknownColumn, Kind: kind, Columns: missing}
	}
	var notNumeric []string
	for _, f := range fields {
		if !f.numeric {
			continue
		}
		if c, _ := t.Column(f.column); c.Kind() != dataset.Numeric {
			notNumeric = append(notNumeric, f.column)
		}
	}
	if len(notNumeric) > 0 {
		return nil, &Error{Reason: NotNumeric, Kind: kind, Columns: notNumeric}
	}

	spec := &Spec{Kind: kind, Title: req.Title, XLabel: b.X, YLabel: b.Y}
	switch kind {
	case Bar:
		x, _ := t.Column(b.X)
		y, _ := t.Column(b.Y)
		spec.Categories, spec.Values = sumByLabel(x, y)
	case Pie:
		n, _ := t.Column(b.Names)
		v, _ := t.Column(b.Values)
		spec.XLabel, spec.YLabel = b.Names, b.Values
		spec.Categories, spec.Values = sumByLabel(n, v)
	case Histogram:
		bins := b.Bins
		if bins == 0 {
			bins = DefaultBins
		}
		if bins < 0 {
			return nil, &Error{Reason: InvalidBins, Kind: kind}
		}
		x, _ := t.Column(b.X)
		spec.YLabel = "count"
		spec.Bins = histogram(x.Floats(), bins)
	case Box:
		x, _ := t.Column(b.X)
		y, _ := t.Column(b.Y)
		spec.Boxes = boxes(x, y)
	case Scatter:
		x, _ := t.Column(b.X)
		y, _ := t.Column(b.Y)
		var color *dataset.Column
		if b.Color != "" {
			color, _ = t.Column(b.Color)
		}
		spec.Series = scatterSeries(x, y, color)
	case Line:
		x, _ := t.Column(b.X)
		y, _ := t.Column(b.Y)
		spec.Series, spec.XTicks = lineSeries(x, y)
	case Overview:
		nums := t.NumericColumns()
		if len(nums) == 0 {
			return nil, &Error{Reason: NoNumericColumns, Kind: kind}
		}
		spec.XLabel, spec.YLabel = "row", ""
		for _, name := range nums {
			c, _ := t.Column(name)
			spec.Series = append(spec.Series, indexSeries(c))
		}
	}
	return spec, nil
}

type field struct {
	field   string
	column  string
	numeric bool
}

func required(kind Kind, b Bindings) []field {
	switch kind {
	case Bar, Box, Line:
		return []field{{"x", b.X, false}, {"y", b.Y, true}}
	case Histogram:
		return []field{{"x", b.X, true}}
	case Scatter:
		return []field{{"x", b.X, true}, {"y", b.Y, true}}
	case Pie:
		return []field{{"names", b.Names, false}, {"values", b.Values, true}}
	}
	return nil
}

// sumByLabel totals values per label, skipping rows where either is missing.
func sumByLabel(labels, values *dataset.Column) ([]string, []float64) {
	var cats []string
	var sums []float64
	pos := map[string]int{}
	for i := 0; i < labels.Len(); i++ {
		l, v := labels.Value(i), values.Value(i)
		if !l.Valid || !v.Valid {
			continue
		}
		j, ok := pos[l.Text]
		if !ok {
			j = len(cats)
			pos[l.Text] = j
			cats = append(cats, l.Text)
			sums = append(sums, 0)
		}
		sums[j] += v.Num
	}
	return cats, sums
}

func scatterSeries(x, y, color *dataset.Column) []Series {
	var out []Series
	pos := map[string]int{}
	for i := 0; i < x.Len(); i++ {
		xv, yv := x.Value(i), y.Value(i)
		if !xv.Valid || !yv.Valid {
			continue
		}
		name := y.Name()
		if color != nil {
			name = "(missing)"
			if cv := color.Value(i); cv.Valid {
				name = cv.Text
			}
		}
		j, ok := pos[name]
		if !ok {
			j = len(out)
			pos[name] = j
			out = append(out, Series{Name: name})
		}
		out[j].X = append(out[j].X, xv.Num)
		out[j].Y = append(out[j].Y, yv.Num)
	}
	return out
}

// lineSeries keeps row order. A categorical x axis is laid out by position
// with the category text as tick labels.
func lineSeries(x, y *dataset.Column) ([]Series, []Tick) {
	s := Series{Name: y.Name()}
	var ticks []Tick
	for i := 0; i < x.Len(); i++ {
		xv, yv := x.Value(i), y.Value(i)
		if !yv.Valid {
			continue
		}
		if x.Kind() == dataset.Numeric {
			if !xv.Valid {
				continue
			}
			s.X = append(s.X, xv.Num)
		} else {
			p := float64(len(s.X))
			s.X = append(s.X, p)
			ticks = append(ticks, Tick{Value: p, Label: xv.String()})
		}
		s.Y = append(s.Y, yv.Num)
	}
	return []Series{s}, ticks
}

func indexSeries(c *dataset.Column) Series {
	s := Series{Name: c.Name()}
	for i := 0; i < c.Len(); i++ {
		if v := c.Value(i); v.Valid {
			s.X = append(s.X, float64(i))
			s.Y = append(s.Y, v.Num)
		}
	}
	return s
}
