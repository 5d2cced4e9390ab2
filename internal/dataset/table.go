package dataset

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// DefaultGroupableMaxDistinct is the largest number of distinct non-null
// values a numeric column may have and still be offered as a grouping key.
const DefaultGroupableMaxDistinct = 20

// Kind is the declared kind of a column.
type Kind int

const (
	Categorical Kind = iota
	Numeric
)

func (k Kind) String() string {
	switch k {
	case Numeric:
		return "numeric"
	default:
		return "categorical"
	}
}

// Value is a single cell. Valid is false for a missing value.
type Value struct {
	Text  string
	Num   float64
	Valid bool
}

// Null returns a missing value.
func Null() Value { return Value{} }

// Text returns a categorical value.
func Text(s string) Value { return Value{Text: s, Valid: true} }

// Number returns a numeric value. NaN is stored as missing and -0 as 0.
func Number(f float64) Value {
	if math.IsNaN(f) {
		return Value{}
	}
	if f == 0 {
		f = 0
	}
	return Value{Text: FormatNumber(f), Num: f, Valid: true}
}

// String renders the value as it appears in delimited output; missing values are empty.
func (v Value) String() string {
	if !v.Valid {
		return ""
	}
	return v.Text
}

// Key identifies the value for equality checks. Missing values share one key
// that no present value can produce.
func (v Value) Key() string {
	if !v.Valid {
		return "-"
	}
	return "+" + v.Text
}

// AppendKey writes v's key to b, length-prefixed so that concatenated keys
// of different rows never collide.
func (v Value) AppendKey(b *strings.Builder) {
	k := v.Key()
	b.WriteString(strconv.Itoa(len(k)))
	b.WriteByte(':')
	b.WriteString(k)
}

// FormatNumber renders f with the shortest representation that parses back to f.
func FormatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// Column is a named, typed, immutable sequence of values.
type Column struct {
	name   string
	kind   Kind
	values []Value
}

// NewColumn copies values into a new column.
func NewColumn(name string, kind Kind, values []Value) *Column {
	cp := make([]Value, len(values))
	copy(cp, values)
	return &Column{name: name, kind: kind, values: cp}
}

func (c *Column) Name() string      { return c.name }
func (c *Column) Kind() Kind        { return c.kind }
func (c *Column) Len() int          { return len(c.values) }
func (c *Column) Value(i int) Value { return c.values[i] }

// Values returns a copy of the column's values.
func (c *Column) Values() []Value {
	cp := make([]Value, len(c.values))
	copy(cp, c.values)
	return cp
}

// Floats returns the non-missing numeric values in row order.
func (c *Column) Floats() []float64 {
	out := make([]float64, 0, len(c.values))
	for _, v := range c.values {
		if v.Valid && c.kind == Numeric {
			out = append(out, v.Num)
		}
	}
	return out
}

// Missing counts missing values.
func (c *Column) Missing() int {
	n := 0
	for _, v := range c.values {
		if !v.Valid {
			n++
		}
	}
	return n
}

// Distinct counts distinct non-missing values.
func (c *Column) Distinct() int {
	seen := make(map[string]struct{})
	for _, v := range c.values {
		if v.Valid {
			seen[v.Text] = struct{}{}
		}
	}
	return len(seen)
}

// Groupable reports whether the column may be used as a grouping key:
// categorical columns always, numeric columns with at most maxDistinct
// distinct non-null values.
func (c *Column) Groupable(maxDistinct int) bool {
	if c.kind == Categorical {
		return true
	}
	if maxDistinct <= 0 {
		maxDistinct = DefaultGroupableMaxDistinct
	}
	return c.Distinct() <= maxDistinct
}

// Take returns a new column holding the rows at idx, in that order.
func (c *Column) Take(idx []int) *Column {
	vals := make([]Value, len(idx))
	for i, r := range idx {
		vals[i] = c.values[r]
	}
	return &Column{name: c.name, kind: c.kind, values: vals}
}

// Rename returns a copy of the column under a new name.
func (c *Column) Rename(name string) *Column {
	return &Column{name: name, kind: c.kind, values: c.values}
}

var (
	ErrDuplicateColumn = errors.New("duplicate column name")
	ErrRaggedColumns   = errors.New("columns have different lengths")
)

// Table is an ordered set of equally long, uniquely named columns.
// A Table is never modified after New returns it; every transformation
// builds a new Table.
type Table struct {
	name  string
	cols  []*Column
	index map[string]int
	rows  int
}

// New builds a table from columns.
func New(name string, cols ...*Column) (*Table, error) {
	t := &Table{name: name, cols: make([]*Column, 0, len(cols)), index: make(map[string]int, len(cols))}
	for i, c := range cols {
		if _, dup := t.index[c.name]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateColumn, c.name)
		}
		if i == 0 {
			t.rows = c.Len()
		} else if c.Len() != t.rows {
			return nil, fmt.Errorf("%w: %q has %d rows, want %d", ErrRaggedColumns, c.name, c.Len(), t.rows)
		}
		t.index[c.name] = i
		t.cols = append(t.cols, c)
	}
	return t, nil
}

// Name is the source name of the table, usually the file base name.
func (t *Table) Name() string { return t.name }
func (t *Table) Rows() int    { return t.rows }
func (t *Table) NumCols() int { return len(t.cols) }

// Columns returns the column names in table order.
func (t *Table) Columns() []string {
	out := make([]string, len(t.cols))
	for i, c := range t.cols {
		out[i] = c.name
	}
	return out
}

// Has reports whether the table has a column with the given name.
func (t *Table) Has(name string) bool {
	_, ok := t.index[name]
	return ok
}

// Column looks a column up by name.
func (t *Table) Column(name string) (*Column, bool) {
	i, ok := t.index[name]
	if !ok {
		return nil, false
	}
	return t.cols[i], true
}

// ColumnAt returns the i-th column.
func (t *Table) ColumnAt(i int) *Column { return t.cols[i] }

// Row returns the values of row i in column order.
func (t *Table) Row(i int) []Value {
	out := make([]Value, len(t.cols))
	for j, c := range t.cols {
		out[j] = c.values[i]
	}
	return out
}

// Missing returns the names of the given columns that the table lacks.
func (t *Table) Missing(names ...string) []string {
	var out []string
	for _, n := range names {
		if !t.Has(n) {
			out = append(out, n)
		}
	}
	return out
}

// NumericColumns lists numeric columns in table order.
func (t *Table) NumericColumns() []string {
	var out []string
	for _, c := range t.cols {
		if c.kind == Numeric {
			out = append(out, c.name)
		}
	}
	return out
}

// GroupableColumns lists columns eligible as grouping keys in table order.
func (t *Table) GroupableColumns(maxDistinct int) []string {
	var out []string
	for _, c := range t.cols {
		if c.Groupable(maxDistinct) {
			out = append(out, c.name)
		}
	}
	return out
}

// Select returns a table with the named columns in the given order.
func (t *Table) Select(names ...string) (*Table, error) {
	cols := make([]*Column, 0, len(names))
	for _, n := range names {
		c, ok := t.Column(n)
		if !ok {
			return nil, fmt.Errorf("unknown column %q", n)
		}
		cols = append(cols, c)
	}
	out, err := New(t.name, cols...)
	if err != nil {
		return nil, err
	}
	// a projection keeps the row count even when no column is left
	if len(cols) == 0 {
		out.rows = t.rows
	}
	return out, nil
}

// Take returns a table holding the rows at idx, in that order.
func (t *Table) Take(idx []int) *Table {
	cols := make([]*Column, len(t.cols))
	for i, c := range t.cols {
		cols[i] = c.Take(idx)
	}
	out := &Table{name: t.name, cols: cols, index: t.index, rows: len(idx)}
	return out
}
