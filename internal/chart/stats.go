package chart

import (
	"math"
	"sort"

	"github.com/KaramelBytes/tabview-cli/internal/dataset"
)

// histogram splits the finite values of vals into n equal-width bins between
// min and max. If every value is equal, a single unit-wide bin is returned.
func histogram(vals []float64, n int) []Bin {
	finite := make([]float64, 0, len(vals))
	for _, v := range vals {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			finite = append(finite, v)
		}
	}
	if len(finite) == 0 {
		return nil
	}
	if n < 1 {
		n = 1
	}
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range finite {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if lo == hi {
		return []Bin{{Lo: lo - 0.5, Hi: hi + 0.5, Count: len(finite)}}
	}
	// hi-lo can overflow; every term below stays within [lo, hi].
	width := hi/float64(n) - lo/float64(n)
	edge := func(i int) float64 {
		t := float64(i) / float64(n)
		return lo*(1-t) + hi*t
	}
	bins := make([]Bin, n)
	for i := range bins {
		bins[i].Lo = edge(i)
		bins[i].Hi = edge(i + 1)
	}
	bins[0].Lo, bins[n-1].Hi = lo, hi
	for _, v := range finite {
		f := v/width - lo/width
		i := n - 1
		switch {
		case math.IsNaN(f) || f < 0:
			i = 0
		case f < float64(n):
			i = int(f)
		}
		bins[i].Count++
	}
	return bins
}

// boxes groups y by the text of x (first-appearance order) and summarizes each group.
func boxes(x, y *dataset.Column) []BoxStats {
	var labels []string
	groups := map[string][]float64{}
	for i := 0; i < x.Len(); i++ {
		xv, yv := x.Value(i), y.Value(i)
		if !yv.Valid {
			continue
		}
		label := xv.String()
		if !xv.Valid {
			label = "(missing)"
		}
		if _, ok := groups[label]; !ok {
			labels = append(labels, label)
		}
		groups[label] = append(groups[label], yv.Num)
	}
	out := make([]BoxStats, 0, len(labels))
	for _, l := range labels {
		out = append(out, boxStats(l, groups[l]))
	}
	return out
}

func boxStats(label string, vals []float64) BoxStats {
	sorted := make([]float64, len(vals))
	copy(sorted, vals)
	sort.Float64s(sorted)
	b := BoxStats{
		Label:  label,
		N:      len(sorted),
		Q1:     quantile(sorted, 0.25),
		Median: quantile(sorted, 0.5),
		Q3:     quantile(sorted, 0.75),
	}
	iqr := b.Q3 - b.Q1
	lowFence, highFence := b.Q1-1.5*iqr, b.Q3+1.5*iqr
	b.Low, b.High = b.Q1, b.Q3
	first := true
	for _, v := range sorted {
		if v < lowFence || v > highFence {
			b.Outliers = append(b.Outliers, v)
			continue
		}
		if first {
			b.Low = v
			first = false
		}
		b.High = v
	}
	return b
}

// quantile interpolates linearly between closest ranks of sorted values.
func quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[len(sorted)-1]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	w := pos - float64(lo)
	return sorted[lo]*(1-w) + sorted[hi]*w
}
