package export

import (
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/KaramelBytes/tabview-cli/internal/dataset"
)

// Pretty renders a borderless terminal table.
type Pretty struct{}

func (Pretty) Name() string        { return "table" }
func (Pretty) Extension() string   { return ".txt" }
func (Pretty) ContentType() string { return "text/plain; charset=utf-8" }

func (Pretty) Format(t *dataset.Table, w io.Writer) error {
	header := make(table.Row, 0, t.NumCols())
	for _, n := range t.Columns() {
		header = append(header, n)
	}
	rows := make([]table.Row, 0, t.Rows())
	for i := 0; i < t.Rows(); i++ {
		vals := t.Row(i)
		row := make(table.Row, len(vals))
		for j, v := range vals {
			row[j] = v.String()
		}
		rows = append(rows, row)
	}

	tw := table.NewWriter()
	tw.AppendHeader(header)
	tw.AppendRows(rows)
	tw.SetStyle(table.StyleLight)
	tw.Style().Format = table.FormatOptions{
		Footer: text.FormatDefault,
		Header: text.FormatDefault,
		Row:    text.FormatDefault,
	}
	tw.Style().Options.DrawBorder = false
	right := make([]table.ColumnConfig, 0, t.NumCols())
	for j := 0; j < t.NumCols(); j++ {
		if t.ColumnAt(j).Kind() == dataset.Numeric {
			right = append(right, table.ColumnConfig{Number: j + 1, Align: text.AlignRight})
		}
	}
	tw.SetColumnConfigs(right)
	_, err := io.WriteString(w, tw.Render()+"\n")
	return err
}
