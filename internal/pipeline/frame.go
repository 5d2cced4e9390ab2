package pipeline

import (
	"fmt"

	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/paveg/gorilla"
)

const (
	rowColumn   = "row"
	keyColumn   = "key"
	valueColumn = "value"
	meanColumn  = "mean"
)

var alloc = memory.NewGoAllocator()

// selectOrder checks want against a frame over all and returns it in the
// requested order.
func selectOrder(all, want []string) ([]string, error) {
	series := make([]gorilla.ISeries, len(all))
	for i, name := range all {
		series[i] = gorilla.NewSeries(name, []string{}, alloc)
	}
	df := gorilla.NewDataFrame(series...)
	defer df.Release()
	for _, s := range series {
		defer s.Release()
	}

	sel := df.Select(want...)
	defer sel.Release()
	got := make(map[string]bool, sel.Width())
	for _, name := range sel.Columns() {
		got[name] = true
	}
	for _, name := range want {
		if !got[name] {
			return nil, fmt.Errorf("select %v: frame returned %v", want, sel.Columns())
		}
	}
	return want, nil
}

// headRows returns the row positions the first n rows of a frame of the given
// length cover.
func headRows(rows, n int) ([]int, error) {
	pos := make([]int64, rows)
	for i := range pos {
		pos[i] = int64(i)
	}
	s := gorilla.NewSeries(rowColumn, pos, alloc)
	defer s.Release()
	df := gorilla.NewDataFrame(s)
	defer df.Release()

	head := df.Slice(0, n)
	defer head.Release()
	col, ok := head.Column(rowColumn)
	if !ok {
		return nil, fmt.Errorf("slice: column %q missing", rowColumn)
	}
	arr, ok := col.Array().(*array.Int64)
	if !ok {
		return nil, fmt.Errorf("slice: column %q is %s", rowColumn, col.DataType())
	}
	idx := make([]int, arr.Len())
	for i := range idx {
		idx[i] = int(arr.Value(i))
	}
	return idx, nil
}

// groupMeans averages vals per distinct key. keys and vals are parallel.
func groupMeans(keys []string, vals []float64) (map[string]float64, error) {
	out := make(map[string]float64)
	if len(keys) == 0 {
		return out, nil
	}
	ks := gorilla.NewSeries(keyColumn, keys, alloc)
	defer ks.Release()
	vs := gorilla.NewSeries(valueColumn, vals, alloc)
	defer vs.Release()
	df := gorilla.NewDataFrame(ks, vs)
	defer df.Release()

	res := df.GroupBy(keyColumn).Agg(gorilla.Mean(gorilla.Col(valueColumn)).As(meanColumn))
	defer res.Release()

	kc, ok := res.Column(keyColumn)
	if !ok {
		return nil, fmt.Errorf("group by: column %q missing", keyColumn)
	}
	mc, ok := res.Column(meanColumn)
	if !ok {
		return nil, fmt.Errorf("group by: column %q missing", meanColumn)
	}
	karr, ok := kc.Array().(*array.String)
	if !ok {
		return nil, fmt.Errorf("group by: column %q is %s", keyColumn, kc.DataType())
	}
	var mean func(int) float64
	switch arr := mc.Array().(type) {
	case *array.Float64:
		mean = func(i int) float64 { return arr.Value(i) }
	case *array.Int64:
		mean = func(i int) float64 { return float64(arr.Value(i)) }
	default:
		return nil, fmt.Errorf("group by: column %q is %s", meanColumn, mc.DataType())
	}
	for i := 0; i < karr.Len(); i++ {
		if karr.IsNull(i) || mc.IsNull(i) {
			continue
		}
		out[karr.Value(i)] = mean(i)
	}
	return out, nil
}
