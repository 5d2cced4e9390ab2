package export_test

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/tabview-cli/internal/dataset"
	"github.com/KaramelBytes/tabview-cli/internal/export"
	"github.com/KaramelBytes/tabview-cli/internal/parser"
)

func sample(t *testing.T) *dataset.Table {
	t.Helper()
	tbl, err := dataset.FromRecords("alzheimer.csv",
		[]string{"id", "group", "mmse", "note"},
		[][]string{
			{"1", "A", "27.5", "ok"},
			{"2", "B", "", "has, comma"},
			{"3", "A", "30", ""},
		}, dataset.InferOptions{})
	require.NoError(t, err)
	return tbl
}

func TestDelimitedText(t *testing.T) {
	out, err := export.DelimitedText(sample(t), ',')
	require.NoError(t, err)
	want := "id,group,mmse,note\n1,A,27.5,ok\n2,B,,\"has, comma\"\n3,A,30,\n"
	assert.Equal(t, want, string(out))

	again, err := export.DelimitedText(sample(t), ',')
	require.NoError(t, err)
	assert.Equal(t, out, again, "output must be deterministic")
}

func TestDelimitedRoundTrip(t *testing.T) {
	src := sample(t)
	out, err := export.DelimitedText(src, ',')
	require.NoError(t, err)
	back, err := parser.ReadDelimited(bytes.NewReader(out), src.Name(), parser.Options{})
	require.NoError(t, err)
	require.Equal(t, src.Columns(), back.Columns())
	require.Equal(t, src.Rows(), back.Rows())
	for i := 0; i < src.Rows(); i++ {
		assert.Equal(t, src.Row(i), back.Row(i), "row %d", i)
	}

	single, err := dataset.FromRecords("mmse.csv", []string{"mmse"}, [][]string{{"27"}, {""}, {"30"}}, dataset.InferOptions{})
	require.NoError(t, err)
	out, err = export.DelimitedText(single, ',')
	require.NoError(t, err)
	assert.Equal(t, "mmse\n27\n\"\"\n30\n", string(out))
	back, err = parser.ReadDelimited(bytes.NewReader(out), single.Name(), parser.Options{})
	require.NoError(t, err)
	require.Equal(t, 3, back.Rows())
	assert.Equal(t, single.Row(1), back.Row(1))
	assert.False(t, back.Row(1)[0].Valid)
}

func TestLookup(t *testing.T) {
	f, err := export.Lookup("CSV")
	require.NoError(t, err)
	assert.Equal(t, "text/csv", f.ContentType())
	assert.Equal(t, []string{"csv", "json", "parquet", "table", "tsv"}, export.Names())

	_, err = export.Lookup("xml")
	assert.ErrorContains(t, err, "unknown export format")

	assert.Equal(t, "tsv", export.ForPath("out.TSV").Name())
	assert.Equal(t, "parquet", export.ForPath("/tmp/x.parquet").Name())
	assert.Equal(t, "csv", export.ForPath("noext").Name())
}

func TestTSV(t *testing.T) {
	f, err := export.Lookup("tsv")
	require.NoError(t, err)
	var buf bytes.Buffer
	require.NoError(t, f.Format(sample(t), &buf))
	assert.True(t, strings.HasPrefix(buf.String(), "id\tgroup\tmmse\tnote\n"))
}

func TestJSON(t *testing.T) {
	f, err := export.Lookup("json")
	require.NoError(t, err)
	var buf bytes.Buffer
	require.NoError(t, f.Format(sample(t), &buf))
	assert.True(t, strings.HasPrefix(buf.String(), `[`+"\n"+`  {"id": 1, "group": "A"`))

	var rows []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rows))
	require.Len(t, rows, 3)
	assert.Equal(t, 27.5, rows[0]["mmse"])
	assert.Nil(t, rows[1]["mmse"])
	assert.Equal(t, "has, comma", rows[1]["note"])

	empty, err := dataset.New("e")
	require.NoError(t, err)
	buf.Reset()
	require.NoError(t, f.Format(empty, &buf))
	assert.Equal(t, "[]\n", buf.String())
}

func TestParquet(t *testing.T) {
	f, err := export.Lookup("parquet")
	require.NoError(t, err)
	var buf bytes.Buffer
	require.NoError(t, f.Format(sample(t), &buf))
	b := buf.Bytes()
	require.Greater(t, len(b), 8)
	assert.Equal(t, "PAR1", string(b[:4]))
	assert.Equal(t, "PAR1", string(b[len(b)-4:]))
}

func TestArrowSchema(t *testing.T) {
	s := export.ArrowSchema(sample(t))
	require.Equal(t, 4, s.NumFields())
	assert.Equal(t, "float64", s.Field(0).Type.Name())
	assert.Equal(t, "utf8", s.Field(1).Type.Name())
	assert.True(t, s.Field(2).Nullable)
}

func TestPrettyTable(t *testing.T) {
	f, err := export.Lookup("table")
	require.NoError(t, err)
	var buf bytes.Buffer
	require.NoError(t, f.Format(sample(t), &buf))
	out := buf.String()
	assert.Contains(t, out, "mmse")
	assert.Contains(t, out, "has, comma")
	assert.Len(t, strings.Split(strings.TrimSpace(out), "\n"), 5, out)
}
