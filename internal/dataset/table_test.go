package dataset

import (
	"errors"
	"math"
	"reflect"
	"strings"
	"testing"
)

func TestInferColumnKinds(t *testing.T) {
	cases := []struct {
		name string
		raw  []string
		want Kind
	}{
		{"ints", []string{"1", "2", " 3"}, Numeric},
		{"floats with missing", []string{"1.5", "", "NA", "2"}, Numeric},
		{"mixed", []string{"1", "two", "3"}, Categorical},
		{"all missing", []string{"", "NaN"}, Categorical},
		{"text", []string{"F", "M", "F"}, Categorical},
		{"infinity", []string{"1", "2", "inf"}, Categorical},
		{"overflow", []string{"1", "1e400"}, Categorical},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := InferColumn("c", tc.raw, InferOptions{})
			if c.Kind() != tc.want {
				t.Fatalf("kind = %s, want %s", c.Kind(), tc.want)
			}
			if c.Len() != len(tc.raw) {
				t.Fatalf("len = %d, want %d", c.Len(), len(tc.raw))
			}
		})
	}
}

func TestInferColumnDecimalComma(t *testing.T) {
	c := InferColumn("x", []string{"0,5", "1.000,25"}, InferOptions{DecimalSeparator: ','})
	if c.Kind() != Numeric {
		t.Fatalf("kind = %s", c.Kind())
	}
	if got := c.Floats(); !reflect.DeepEqual(got, []float64{0.5, 1000.25}) {
		t.Fatalf("floats = %v", got)
	}
}

func TestMissingValuesAreNotValid(t *testing.T) {
	c := InferColumn("x", []string{"1", "", "null", "4"}, InferOptions{})
	if c.Missing() != 2 {
		t.Fatalf("missing = %d, want 2", c.Missing())
	}
	if c.Value(1).Valid || c.Value(1).String() != "" {
		t.Fatalf("value 1 = %#v", c.Value(1))
	}
	if c.Value(3).Num != 4 || c.Value(3).String() != "4" {
		t.Fatalf("value 3 = %#v", c.Value(3))
	}
}

func TestGroupable(t *testing.T) {
	few := make([]string, 50)
	many := make([]string, 50)
	for i := range few {
		few[i] = []string{"0", "1", "2"}[i%3]
		many[i] = FormatNumber(float64(i))
	}
	tbl, err := New("t",
		InferColumn("few", few, InferOptions{}),
		InferColumn("many", many, InferOptions{}),
		InferColumn("label", make([]string, 50), InferOptions{}),
	)
	if err != nil {
		t.Fatal(err)
	}
	got := tbl.GroupableColumns(DefaultGroupableMaxDistinct)
	if !reflect.DeepEqual(got, []string{"few", "label"}) {
		t.Fatalf("groupable = %v", got)
	}
	if !reflect.DeepEqual(tbl.NumericColumns(), []string{"few", "many"}) {
		t.Fatalf("numeric = %v", tbl.NumericColumns())
	}
}

func TestNewRejectsDuplicatesAndRaggedColumns(t *testing.T) {
	a := NewColumn("a", Numeric, []Value{Number(1)})
	b := NewColumn("a", Numeric, []Value{Number(2)})
	if _, err := New("t", a, b); !errors.Is(err, ErrDuplicateColumn) {
		t.Fatalf("err = %v, want ErrDuplicateColumn", err)
	}
	c := NewColumn("c", Numeric, []Value{Number(1), Number(2)})
	if _, err := New("t", a, c); !errors.Is(err, ErrRaggedColumns) {
		t.Fatalf("err = %v, want ErrRaggedColumns", err)
	}
}

func TestHeaderNames(t *testing.T) {
	got := HeaderNames([]string{"\ufeffid", "a", "", "a", "a.1", "a"})
	want := []string{"id", "a", "Unnamed: 2", "a.1", "a.1.1", "a.2"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("names = %v, want %v", got, want)
	}
}

func TestTakeDoesNotTouchSource(t *testing.T) {
	tbl, err := FromRecords("t", []string{"id", "g"}, [][]string{{"1", "A"}, {"2", "B"}, {"3", "C"}}, InferOptions{})
	if err != nil {
		t.Fatal(err)
	}
	sub := tbl.Take([]int{2, 0})
	if sub.Rows() != 2 || sub.Row(0)[1].Text != "C" {
		t.Fatalf("take = %v", sub.Row(0))
	}
	if tbl.Rows() != 3 || tbl.Row(0)[1].Text != "A" {
		t.Fatalf("source changed: %v", tbl.Row(0))
	}
}

func TestNegativeZeroIsZero(t *testing.T) {
	neg := Number(math.Copysign(0, -1))
	if neg.Text != "0" || math.Signbit(neg.Num) {
		t.Fatalf("-0 = %#v", neg)
	}
	if neg.Key() != Number(0).Key() {
		t.Fatalf("keys differ: %q vs %q", neg.Key(), Number(0).Key())
	}
}

func TestKeysDoNotCollide(t *testing.T) {
	row := func(vals ...Value) string {
		var b strings.Builder
		for _, v := range vals {
			v.AppendKey(&b)
		}
		return b.String()
	}
	pairs := [][2]string{
		{row(Text("a\x1fb"), Text("c")), row(Text("a"), Text("b\x1fc"))},
		{row(Null()), row(Text("\x00"))},
		{row(Null()), row(Text(""))},
		{row(Text("1:+a")), row(Text("1"), Text("a"))},
	}
	for i, p := range pairs {
		if p[0] == p[1] {
			t.Fatalf("pair %d collides: %q", i, p[0])
		}
	}
}
