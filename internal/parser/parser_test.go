package parser_test

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/KaramelBytes/tabview-cli/internal/dataset"
	"github.com/KaramelBytes/tabview-cli/internal/parser"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	return p
}

func TestLoadCSVInfersKinds(t *testing.T) {
	p := writeFile(t, "alzheimer.csv", "id,age,group,mmse\n"+
		"1,70,A,27.5\n"+
		"2,80,A,\n"+
		"3,65,B,NA\n")
	tbl, err := parser.Load(p, parser.Options{})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if tbl.Name() != "alzheimer.csv" {
		t.Fatalf("name = %q", tbl.Name())
	}
	if tbl.Rows() != 3 {
		t.Fatalf("rows = %d, want 3", tbl.Rows())
	}
	if !reflect.DeepEqual(tbl.Columns(), []string{"id", "age", "group", "mmse"}) {
		t.Fatalf("columns = %v", tbl.Columns())
	}
	kinds := map[string]dataset.Kind{"id": dataset.Numeric, "age": dataset.Numeric, "group": dataset.Categorical, "mmse": dataset.Numeric}
	for name, want := range kinds {
		c, _ := tbl.Column(name)
		if c.Kind() != want {
			t.Fatalf("%s kind = %s, want %s", name, c.Kind(), want)
		}
	}
	mmse, _ := tbl.Column("mmse")
	if mmse.Missing() != 2 {
		t.Fatalf("mmse missing = %d, want 2", mmse.Missing())
	}
}

func TestLoadMissingFileIsFileNotFound(t *testing.T) {
	_, err := parser.Load(filepath.Join(t.TempDir(), "nope.csv"), parser.Options{})
	if !errors.Is(err, parser.ErrFileNotFound) {
		t.Fatalf("err = %v, want ErrFileNotFound", err)
	}
	var le *parser.LoadError
	if !errors.As(err, &le) || le.Reason != parser.FileNotFound {
		t.Fatalf("err = %#v, want *LoadError(FileNotFound)", err)
	}
}

func TestLoadMalformedCSV(t *testing.T) {
	p := writeFile(t, "bad.csv", "a,b\n\"unterminated,1\n")
	_, err := parser.Load(p, parser.Options{})
	if !errors.Is(err, parser.ErrMalformed) {
		t.Fatalf("err = %v, want ErrMalformed", err)
	}
}

func TestLoadEmptyFile(t *testing.T) {
	p := writeFile(t, "empty.csv", "")
	tbl, err := parser.Load(p, parser.Options{})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if tbl.Rows() != 0 || tbl.NumCols() != 0 {
		t.Fatalf("got %dx%d, want empty", tbl.Rows(), tbl.NumCols())
	}
}

func TestLoadTSVAndShortRows(t *testing.T) {
	p := writeFile(t, "data.tsv", "a\tb\tc\n1\tx\n2\ty\t3\n")
	tbl, err := parser.Load(p, parser.Options{})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	c, _ := tbl.Column("c")
	if c.Value(0).Valid {
		t.Fatalf("padded cell should be missing: %#v", c.Value(0))
	}
	if c.Value(1).Num != 3 {
		t.Fatalf("c[1] = %#v", c.Value(1))
	}
}

func TestReadDelimitedSemicolon(t *testing.T) {
	in := "Group;Score\nA;10,5\nB;9,0\n"
	tbl, err := parser.ReadDelimited(strings.NewReader(in), "s.csv", parser.Options{
		Delimiter: ';',
		Infer:     dataset.InferOptions{DecimalSeparator: ','},
	})
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	score, _ := tbl.Column("Score")
	if score.Kind() != dataset.Numeric || score.Value(0).Num != 10.5 {
		t.Fatalf("score = %s %#v", score.Kind(), score.Value(0))
	}
}

func TestLoadXLSXSheetSelection(t *testing.T) {
	path := filepath.Join("testdata", "analysis_dataset.xlsx")
	opt := parser.Options{SheetName: "Data", Infer: dataset.InferOptions{DecimalSeparator: ','}}
	byName, err := parser.Load(path, opt)
	if err != nil {
		t.Fatalf("load by name: %v", err)
	}
	opt.SheetName = ""
	opt.SheetIndex = 2
	byIndex, err := parser.Load(path, opt)
	if err != nil {
		t.Fatalf("load by index: %v", err)
	}
	for _, tbl := range []*dataset.Table{byName, byIndex} {
		if tbl.Rows() != 10 {
			t.Fatalf("rows = %d, want 10", tbl.Rows())
		}
		want := []string{"Group", "Concentration (g/L)", "Temp (°F)", "Score", "LocaleNumber", "Category", "Note"}
		if !reflect.DeepEqual(tbl.Columns(), want) {
			t.Fatalf("columns = %v", tbl.Columns())
		}
		g, _ := tbl.Column("Group")
		if g.Kind() != dataset.Categorical || g.Value(0).Text != "A" {
			t.Fatalf("group = %s %#v", g.Kind(), g.Value(0))
		}
		conc, _ := tbl.Column("Concentration (g/L)")
		if conc.Kind() != dataset.Numeric || conc.Value(0).Num != 0.5 {
			t.Fatalf("concentration = %s %#v", conc.Kind(), conc.Value(0))
		}
		loc, _ := tbl.Column("LocaleNumber")
		if loc.Value(0).Num != 1000 {
			t.Fatalf("locale number = %#v", loc.Value(0))
		}
	}

	first, err := parser.Load(path, parser.Options{})
	if err != nil {
		t.Fatalf("load first sheet: %v", err)
	}
	if !reflect.DeepEqual(first.Columns(), []string{"placeholder"}) || first.Rows() != 0 {
		t.Fatalf("first sheet = %v rows=%d", first.Columns(), first.Rows())
	}

	if _, err := parser.Load(path, parser.Options{SheetName: "Missing"}); !errors.Is(err, parser.ErrMalformed) {
		t.Fatalf("err = %v, want ErrMalformed for unknown sheet", err)
	}
}
