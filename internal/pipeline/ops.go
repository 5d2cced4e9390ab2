package pipeline

import (
	"fmt"
	"sort"
	"strings"

	"github.com/KaramelBytes/tabview-cli/internal/dataset"
)

// Project returns a table with exactly the named columns, in the given order.
// Row count and order are preserved.
func Project(t *dataset.Table, columns []string) (*dataset.Table, error) {
	if len(columns) == 0 {
		return nil, ErrEmptySelection
	}
	if missing := t.Missing(columns...); len(missing) > 0 {
		return nil, &UnknownColumnError{Columns: missing}
	}
	order, err := selectOrder(t.Columns(), columns)
	if err != nil {
		return nil, err
	}
	return t.Select(order...)
}

// Clean drops duplicate rows (keeping the first occurrence) and then rows
// holding a missing value in any column. Missing values compare equal to each
// other when looking for duplicates. Relative order of kept rows is preserved.
func Clean(t *dataset.Table, dropDuplicates, dropNulls bool) *dataset.Table {
	if !dropDuplicates && !dropNulls {
		return t
	}
	keep := make([]int, 0, t.Rows())
	seen := make(map[string]struct{}, t.Rows())
	var key strings.Builder
	for i := 0; i < t.Rows(); i++ {
		row := t.Row(i)
		if dropDuplicates {
			key.Reset()
			for _, v := range row {
				v.AppendKey(&key)
			}
			k := key.String()
			if _, dup := seen[k]; dup {
				continue
			}
			seen[k] = struct{}{}
		}
		if dropNulls && hasMissing(row) {
			continue
		}
		keep = append(keep, i)
	}
	if len(keep) == t.Rows() {
		return t
	}
	return t.Take(keep)
}

func hasMissing(row []dataset.Value) bool {
	for _, v := range row {
		if !v.Valid {
			return true
		}
	}
	return false
}

type group struct {
	first int
	key   string
}

// GroupAndAggregate returns one row per distinct combination of groupBy values
// with the mean of aggregate over that group. Rows with a missing key are not
// assigned to any group. Missing aggregate values are ignored; a group with no
// aggregate values gets a missing mean. Output is sorted by the key columns
// and holds the key columns in order followed by the aggregate column.
func GroupAndAggregate(t *dataset.Table, groupBy []string, aggregate string) (*dataset.Table, error) {
	agg, ok := t.Column(aggregate)
	if !ok {
		return nil, &UnknownColumnError{Columns: []string{aggregate}}
	}
	if agg.Kind() != dataset.Numeric {
		return nil, fmt.Errorf("%w: %q is %s", ErrAggregateNotNumeric, aggregate, agg.Kind())
	}
	var keys []*dataset.Column
	for _, name := range groupBy {
		if name == aggregate {
			continue
		}
		c, ok := t.Column(name)
		if !ok {
			return nil, &UnknownColumnError{Columns: []string{name}}
		}
		keys = append(keys, c)
	}
	if len(keys) == 0 {
		return nil, ErrNoGroupColumns
	}

	index := make(map[string]*group)
	var order []*group
	var groupKeys []string
	var vals []float64
	var kb strings.Builder
rows:
	for i := 0; i < t.Rows(); i++ {
		kb.Reset()
		for _, c := range keys {
			v := c.Value(i)
			if !v.Valid {
				continue rows
			}
			v.AppendKey(&kb)
		}
		k := kb.String()
		if _, ok := index[k]; !ok {
			g := &group{first: i, key: k}
			index[k] = g
			order = append(order, g)
		}
		if v := agg.Value(i); v.Valid {
			groupKeys = append(groupKeys, k)
			vals = append(vals, v.Num)
		}
	}
	avg, err := groupMeans(groupKeys, vals)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(order, func(a, b int) bool {
		ra, rb := order[a].first, order[b].first
		for _, c := range keys {
			if cmp := compareValues(c.Kind(), c.Value(ra), c.Value(rb)); cmp != 0 {
				return cmp < 0
			}
		}
		return false
	})

	firsts := make([]int, len(order))
	means := make([]dataset.Value, len(order))
	for i, g := range order {
		firsts[i] = g.first
		if m, ok := avg[g.key]; ok {
			means[i] = dataset.Number(m)
			continue
		}
		means[i] = dataset.Null()
	}
	cols := make([]*dataset.Column, 0, len(keys)+1)
	for _, c := range keys {
		cols = append(cols, c.Take(firsts))
	}
	cols = append(cols, dataset.NewColumn(aggregate, dataset.Numeric, means))
	return dataset.New(t.Name(), cols...)
}

func compareValues(kind dataset.Kind, a, b dataset.Value) int {
	if kind == dataset.Numeric {
		switch {
		case a.Num < b.Num:
			return -1
		case a.Num > b.Num:
			return 1
		}
		return 0
	}
	return strings.Compare(a.Text, b.Text)
}

// SliceHead returns the first n rows, with n clamped to [1, rows].
// An empty table is returned unchanged.
func SliceHead(t *dataset.Table, n int) (*dataset.Table, error) {
	rows := t.Rows()
	if rows == 0 {
		return t, nil
	}
	n = ClampRowLimit(n, rows)
	if n == rows {
		return t, nil
	}
	idx, err := headRows(rows, n)
	if err != nil {
		return nil, err
	}
	return t.Take(idx), nil
}

// ClampRowLimit bounds n to [1, rows]. With rows == 0 it returns 0.
func ClampRowLimit(n, rows int) int {
	if rows <= 0 {
		return 0
	}
	if n < 1 {
		return 1
	}
	if n > rows {
		return rows
	}
	return n
}
