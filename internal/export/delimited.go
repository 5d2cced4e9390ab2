package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"

	"github.com/KaramelBytes/tabview-cli/internal/dataset"
)

// Delimited writes a header row followed by one record per row. No index
// column is emitted and missing values are empty fields.
type Delimited struct {
	name  string
	delim rune
	ext   string
	mime  string
}

func (d Delimited) Name() string        { return d.name }
func (d Delimited) Extension() string   { return d.ext }
func (d Delimited) ContentType() string { return d.mime }

func (d Delimited) Format(t *dataset.Table, w io.Writer) error {
	cw := csv.NewWriter(w)
	cw.Comma = d.delim
	if err := writeRecord(cw, w, t.Columns()); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	rec := make([]string, t.NumCols())
	for i := 0; i < t.Rows(); i++ {
		for j, v := range t.Row(i) {
			rec[j] = v.String()
		}
		if err := writeRecord(cw, w, rec); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// writeRecord writes rec through cw. A record of one empty field is written
// as "" so readers that skip blank lines still see the row.
func writeRecord(cw *csv.Writer, w io.Writer, rec []string) error {
	if len(rec) != 1 || rec[0] != "" {
		return cw.Write(rec)
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return err
	}
	eol := "\n"
	if cw.UseCRLF {
		eol = "\r\n"
	}
	_, err := io.WriteString(w, `""`+eol)
	return err
}

// DelimitedText serializes t with the given field delimiter.
func DelimitedText(t *dataset.Table, delim rune) ([]byte, error) {
	var buf bytes.Buffer
	if err := (Delimited{delim: delim}).Format(t, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
