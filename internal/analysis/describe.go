package analysis

import (
	"math"
	"regexp"
	"sort"
	"strings"

	"github.com/KaramelBytes/tabview-cli/internal/dataset"
)

// Options controls what Describe computes.
type Options struct {
	// SampleRows is the number of leading rows shown in the report.
	SampleRows int
	// TopValues caps the most frequent values listed per categorical column.
	TopValues int
	// Correlations computes pairwise Pearson r across numeric columns.
	Correlations bool
	// Outliers counts values with a robust z-score (MAD based) above OutlierThreshold.
	Outliers         bool
	OutlierThreshold float64
	// GroupableMaxDistinct decides which numeric columns are flagged groupable.
	GroupableMaxDistinct int
}

// DefaultOptions returns reasonable defaults for dataset description.
func DefaultOptions() Options {
	return Options{
		SampleRows:           5,
		TopValues:            5,
		Correlations:         true,
		Outliers:             true,
		OutlierThreshold:     3.5,
		GroupableMaxDistinct: dataset.DefaultGroupableMaxDistinct,
	}
}

// Report is a markdown-friendly description of a table.
type Report struct {
	Name     string
	Rows     int
	Cols     []ColumnSummary
	Samples  [][]string
	Warnings []string
	Corr     *CorrMatrix
}

// ColumnSummary captures kind and statistics per column.
type ColumnSummary struct {
	Name      string
	Unit      string
	Kind      dataset.Kind
	Groupable bool
	NonNull   int
	Missing   int
	Unique    int
	// Numeric stats
	Min  float64
	Max  float64
	Mean float64
	Std  float64
	// Outliers (robust Z via MAD)
	OutliersCount   int
	OutliersMaxAbsZ float64
	// Categorical top values
	TopValues []CategoryCount
}

type CategoryCount struct {
	Value string
	Count int
}

// CorrMatrix holds a symmetric Pearson correlation matrix across numeric columns.
type CorrMatrix struct {
	Columns []string
	Values  [][]float64 // row-major, Values[i][j]
}

// Describe summarizes t column by column.
func Describe(t *dataset.Table, opt Options) *Report {
	if opt.SampleRows < 0 {
		opt.SampleRows = 0
	}
	if opt.TopValues <= 0 {
		opt.TopValues = 5
	}
	if opt.GroupableMaxDistinct <= 0 {
		opt.GroupableMaxDistinct = dataset.DefaultGroupableMaxDistinct
	}
	rep := &Report{Name: t.Name(), Rows: t.Rows()}
	var numeric []*dataset.Column
	for j := 0; j < t.NumCols(); j++ {
		c := t.ColumnAt(j)
		cs := summarize(c, opt)
		rep.Cols = append(rep.Cols, cs)
		if c.Kind() == dataset.Numeric {
			numeric = append(numeric, c)
		}
		switch {
		case t.Rows() > 0 && cs.NonNull == 0:
			rep.Warnings = append(rep.Warnings, "column "+safeName(c.Name())+" is entirely missing")
		case cs.NonNull > 1 && cs.Unique == 1:
			rep.Warnings = append(rep.Warnings, "column "+safeName(c.Name())+" is constant")
		}
	}
	if len(t.GroupableColumns(opt.GroupableMaxDistinct)) == 0 && t.NumCols() > 0 {
		rep.Warnings = append(rep.Warnings, "no categorical or low-cardinality columns available for grouping")
	}
	n := opt.SampleRows
	if n > t.Rows() {
		n = t.Rows()
	}
	for i := 0; i < n; i++ {
		row := t.Row(i)
		cells := make([]string, len(row))
		for j, v := range row {
			cells[j] = v.String()
		}
		rep.Samples = append(rep.Samples, cells)
	}
	if opt.Correlations && len(numeric) >= 2 {
		rep.Corr = correlations(numeric)
	}
	return rep
}

func summarize(c *dataset.Column, opt Options) ColumnSummary {
	name, unit := splitUnits(c.Name())
	cs := ColumnSummary{
		Name:      name,
		Unit:      unit,
		Kind:      c.Kind(),
		Groupable: c.Groupable(opt.GroupableMaxDistinct),
		Missing:   c.Missing(),
		Unique:    c.Distinct(),
	}
	cs.NonNull = c.Len() - cs.Missing
	if c.Kind() == dataset.Numeric {
		vals := c.Floats()
		// Welford
		var mean, m2 float64
		cs.Min, cs.Max = math.Inf(1), math.Inf(-1)
		for i, x := range vals {
			d := x - mean
			mean += d / float64(i+1)
			m2 += d * (x - mean)
			cs.Min = math.Min(cs.Min, x)
			cs.Max = math.Max(cs.Max, x)
		}
		if len(vals) == 0 {
			cs.Min, cs.Max = 0, 0
		}
		cs.Mean = mean
		if len(vals) > 1 {
			cs.Std = math.Sqrt(m2 / float64(len(vals)-1))
		}
		if opt.Outliers && opt.OutlierThreshold > 0 && len(vals) >= 3 {
			med, mad := medianMAD(vals)
			if mad > 0 {
				for _, x := range vals {
					z := 0.6745 * (x - med) / mad
					if math.Abs(z) > opt.OutlierThreshold {
						cs.OutliersCount++
					}
					cs.OutliersMaxAbsZ = math.Max(cs.OutliersMaxAbsZ, math.Abs(z))
				}
			}
		}
		return cs
	}
	counts := map[string]int{}
	for i := 0; i < c.Len(); i++ {
		if v := c.Value(i); v.Valid {
			counts[v.Text]++
		}
	}
	for v, n := range counts {
		cs.TopValues = append(cs.TopValues, CategoryCount{Value: v, Count: n})
	}
	sort.Slice(cs.TopValues, func(i, j int) bool {
		if cs.TopValues[i].Count == cs.TopValues[j].Count {
			return cs.TopValues[i].Value < cs.TopValues[j].Value
		}
		return cs.TopValues[i].Count > cs.TopValues[j].Count
	})
	if len(cs.TopValues) > opt.TopValues {
		cs.TopValues = cs.TopValues[:opt.TopValues]
	}
	return cs
}

// correlations uses pairwise-complete rows for every column pair.
func correlations(cols []*dataset.Column) *CorrMatrix {
	n := len(cols)
	m := &CorrMatrix{Columns: make([]string, n), Values: make([][]float64, n)}
	for i, c := range cols {
		m.Columns[i] = c.Name()
		m.Values[i] = make([]float64, n)
		m.Values[i][i] = 1
	}
	for a := 0; a < n; a++ {
		for b := a + 1; b < n; b++ {
			r := pearson(cols[a], cols[b])
			m.Values[a][b], m.Values[b][a] = r, r
		}
	}
	return m
}

func pearson(x, y *dataset.Column) float64 {
	var n, sx, sy, sxx, syy, sxy float64
	for i := 0; i < x.Len(); i++ {
		xv, yv := x.Value(i), y.Value(i)
		if !xv.Valid || !yv.Valid {
			continue
		}
		n++
		sx += xv.Num
		sy += yv.Num
		sxx += xv.Num * xv.Num
		syy += yv.Num * yv.Num
		sxy += xv.Num * yv.Num
	}
	if n < 2 {
		return 0
	}
	denom := math.Sqrt((n*sxx - sx*sx) * (n*syy - sy*sy))
	if denom == 0 || math.IsNaN(denom) {
		return 0
	}
	r := (n*sxy - sx*sy) / denom
	return math.Max(-1, math.Min(1, r))
}

var unitPatterns = []struct {
	re   *regexp.Regexp
	pick int
}{
	{regexp.MustCompile(`^(.*)\s*\(([^)]+)\)\s*$`), 2},  // e.g., Alpha (%)
	{regexp.MustCompile(`^(.*)\s*\[([^\]]+)\]\s*$`), 2}, // e.g., Mass [mg/L]
	{regexp.MustCompile(`^(.*?)[_\s-]+(mg/L|g/L|ug/L|°[CF]|%|ppm|ppb)$`), 2},
}

func splitUnits(name string) (clean string, unit string) {
	s := strings.TrimSpace(name)
	for _, p := range unitPatterns {
		if m := p.re.FindStringSubmatch(s); len(m) >= 3 {
			base := strings.TrimSpace(m[1])
			u := strings.TrimSpace(m[p.pick])
			if base != "" && u != "" {
				return base, u
			}
		}
	}
	return s, ""
}

// medianMAD computes median and MAD (median absolute deviation) of values.
func medianMAD(vals []float64) (median, mad float64) {
	if len(vals) == 0 {
		return 0, 0
	}
	cp := make([]float64, len(vals))
	copy(cp, vals)
	sort.Float64s(cp)
	median = quantile(cp, 0.5)
	dev := make([]float64, len(cp))
	for i, v := range cp {
		dev[i] = math.Abs(v - median)
	}
	sort.Float64s(dev)
	mad = quantile(dev, 0.5)
	return
}

func quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	w := pos - float64(lo)
	return sorted[lo]*(1-w) + sorted[hi]*w
}
