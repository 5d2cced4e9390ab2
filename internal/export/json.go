package export

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/KaramelBytes/tabview-cli/internal/dataset"
)

// JSON writes an array of row objects with keys in column order.
type JSON struct{}

func (JSON) Name() string        { return "json" }
func (JSON) Extension() string   { return ".json" }
func (JSON) ContentType() string { return "application/json" }

func (JSON) Format(t *dataset.Table, w io.Writer) error {
	names := t.Columns()
	keys := make([][]byte, len(names))
	for j, n := range names {
		k, err := json.Marshal(n)
		if err != nil {
			return err
		}
		keys[j] = k
	}
	if _, err := io.WriteString(w, "["); err != nil {
		return err
	}
	for i := 0; i < t.Rows(); i++ {
		sep := ",\n  {"
		if i == 0 {
			sep = "\n  {"
		}
		if _, err := io.WriteString(w, sep); err != nil {
			return err
		}
		for j, v := range t.Row(i) {
			if j > 0 {
				if _, err := io.WriteString(w, ", "); err != nil {
					return err
				}
			}
			val, err := jsonValue(t.ColumnAt(j).Kind(), v)
			if err != nil {
				return fmt.Errorf("row %d: %w", i+1, err)
			}
			if _, err := fmt.Fprintf(w, "%s: %s", keys[j], val); err != nil {
				return err
			}
		}
		if _, err := io.WriteString(w, "}"); err != nil {
			return err
		}
	}
	if t.Rows() > 0 {
		_, err := io.WriteString(w, "\n]\n")
		return err
	}
	_, err := io.WriteString(w, "]\n")
	return err
}

func jsonValue(kind dataset.Kind, v dataset.Value) ([]byte, error) {
	if !v.Valid {
		return []byte("null"), nil
	}
	if kind == dataset.Numeric {
		return json.Marshal(v.Num)
	}
	return json.Marshal(v.Text)
}
