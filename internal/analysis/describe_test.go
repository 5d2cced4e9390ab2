package analysis

import (
	"math"
	"strings"
	"testing"

	"github.com/KaramelBytes/tabview-cli/internal/dataset"
)

func sampleTable(t *testing.T) *dataset.Table {
	t.Helper()
	tbl, err := dataset.FromRecords("alzheimer.csv",
		[]string{"Group", "Concentration (g/L)", "Score", "Note", "Empty"},
		[][]string{
			{"A", "0.5", "10", "first", ""},
			{"A", "0.7", "12", "", ""},
			{"B", "1.2", "20", "third", ""},
			{"B", "", "22", "fourth", ""},
			{"C", "2.0", "30", "fifth", ""},
		}, dataset.InferOptions{})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	return tbl
}

func TestDescribeColumns(t *testing.T) {
	rep := Describe(sampleTable(t), DefaultOptions())
	if rep.Rows != 5 || len(rep.Cols) != 5 {
		t.Fatalf("rows=%d cols=%d", rep.Rows, len(rep.Cols))
	}
	conc := rep.Cols[1]
	if conc.Name != "Concentration" || conc.Unit != "g/L" {
		t.Fatalf("unit split: %q %q", conc.Name, conc.Unit)
	}
	if conc.Kind != dataset.Numeric || conc.NonNull != 4 || conc.Missing != 1 {
		t.Fatalf("conc summary: %+v", conc)
	}
	if math.Abs(conc.Mean-1.1) > 1e-9 || conc.Min != 0.5 || conc.Max != 2.0 {
		t.Fatalf("conc stats: mean=%v min=%v max=%v", conc.Mean, conc.Min, conc.Max)
	}
	group := rep.Cols[0]
	if group.Kind != dataset.Categorical || !group.Groupable || group.Unique != 3 {
		t.Fatalf("group summary: %+v", group)
	}
	if group.TopValues[0].Value != "A" || group.TopValues[0].Count != 2 {
		t.Fatalf("top values: %+v", group.TopValues)
	}
	if len(rep.Samples) != 5 {
		t.Fatalf("samples = %d", len(rep.Samples))
	}
}

func TestDescribeCorrelationAndNotes(t *testing.T) {
	rep := Describe(sampleTable(t), DefaultOptions())
	if rep.Corr == nil || len(rep.Corr.Columns) != 2 {
		t.Fatalf("corr = %+v", rep.Corr)
	}
	if r := rep.Corr.Values[0][1]; r < 0.9 {
		t.Fatalf("concentration~score r = %v, want strong positive", r)
	}
	joined := strings.Join(rep.Warnings, "\n")
	if !strings.Contains(joined, "Empty is entirely missing") {
		t.Fatalf("warnings = %v", rep.Warnings)
	}
}

func TestMarkdownSections(t *testing.T) {
	opt := DefaultOptions()
	opt.SampleRows = 2
	md := Describe(sampleTable(t), opt).Markdown()
	for _, want := range []string{
		"[DATASET SUMMARY]", "File: alzheimer.csv", "Rows: 5", "Columns: 5",
		"[SCHEMA]", "- Concentration [g/L]: numeric", "- Group: categorical, groupable",
		"top: A(2), B(2), C(1)",
		"[CORRELATIONS]",
		"[HEAD AND SAMPLE ROWS]", "| Group | Concentration | Score | Note | Empty |",
		"[NOTES]",
	} {
		if !strings.Contains(md, want) {
			t.Fatalf("markdown missing %q:\n%s", want, md)
		}
	}
	if strings.Count(md, "\n| A |") != 2 {
		t.Fatalf("expected 2 sample rows:\n%s", md)
	}
}

func TestOutliers(t *testing.T) {
	vals := []float64{10, 11, 10, 12, 11, 10, 500}
	med, mad := medianMAD(vals)
	if med != 11 || mad != 1 {
		t.Fatalf("median=%v mad=%v", med, mad)
	}
	var records [][]string
	for _, v := range vals {
		records = append(records, []string{dataset.FormatNumber(v)})
	}
	tbl, err := dataset.FromRecords("o", []string{"v"}, records, dataset.InferOptions{})
	if err != nil {
		t.Fatal(err)
	}
	rep := Describe(tbl, DefaultOptions())
	if rep.Cols[0].OutliersCount != 1 {
		t.Fatalf("outliers = %d", rep.Cols[0].OutliersCount)
	}
}

func TestSplitUnits(t *testing.T) {
	cases := map[string][2]string{
		"Temp (°F)":   {"Temp", "°F"},
		"Mass [mg/L]": {"Mass", "mg/L"},
		"alpha_%":     {"alpha", "%"},
		"Score":       {"Score", ""},
	}
	for in, want := range cases {
		name, unit := splitUnits(in)
		if name != want[0] || unit != want[1] {
			t.Fatalf("splitUnits(%q) = %q,%q", in, name, unit)
		}
	}
}
