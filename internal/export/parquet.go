package export

import (
	"fmt"
	"io"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/apache/arrow-go/v18/parquet"
	"github.com/apache/arrow-go/v18/parquet/compress"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"

	"github.com/KaramelBytes/tabview-cli/internal/dataset"
)

// Parquet writes a snappy-compressed parquet file. Numeric columns become
// nullable float64, categorical columns nullable utf8.
type Parquet struct{}

func (Parquet) Name() string        { return "parquet" }
func (Parquet) Extension() string   { return ".parquet" }
func (Parquet) ContentType() string { return "application/vnd.apache.parquet" }

func (Parquet) Format(t *dataset.Table, w io.Writer) error {
	tbl := ArrowTable(t, memory.NewGoAllocator())
	defer tbl.Release()

	props := parquet.NewWriterProperties(parquet.WithCompression(compress.Codecs.Snappy))
	arrowProps := pqarrow.NewArrowWriterProperties(pqarrow.WithStoreSchema())
	writer, err := pqarrow.NewFileWriter(tbl.Schema(), w, props, arrowProps)
	if err != nil {
		return fmt.Errorf("failed to create parquet writer: %w", err)
	}
	if err := writer.WriteTable(tbl, tbl.NumRows()); err != nil {
		writer.Close()
		return fmt.Errorf("failed to write table to parquet: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to close parquet writer: %w", err)
	}
	return nil
}

// ArrowSchema maps column kinds to arrow types.
func ArrowSchema(t *dataset.Table) *arrow.Schema {
	fields := make([]arrow.Field, t.NumCols())
	for j := range fields {
		c := t.ColumnAt(j)
		typ := arrow.DataType(arrow.BinaryTypes.String)
		if c.Kind() == dataset.Numeric {
			typ = arrow.PrimitiveTypes.Float64
		}
		fields[j] = arrow.Field{Name: c.Name(), Type: typ, Nullable: true}
	}
	return arrow.NewSchema(fields, nil)
}

// ArrowTable copies t into an arrow table. The caller releases it.
func ArrowTable(t *dataset.Table, mem memory.Allocator) arrow.Table {
	schema := ArrowSchema(t)
	b := array.NewRecordBuilder(mem, schema)
	defer b.Release()
	for j := 0; j < t.NumCols(); j++ {
		c := t.ColumnAt(j)
		switch fb := b.Field(j).(type) {
		case *array.Float64Builder:
			for i := 0; i < c.Len(); i++ {
				if v := c.Value(i); v.Valid {
					fb.Append(v.Num)
				} else {
					fb.AppendNull()
				}
			}
		case *array.StringBuilder:
			for i := 0; i < c.Len(); i++ {
				if v := c.Value(i); v.Valid {
					fb.Append(v.Text)
				} else {
					fb.AppendNull()
				}
			}
		}
	}
	rec := b.NewRecord()
	defer rec.Release()
	return array.NewTableFromRecords(schema, []arrow.Record{rec})
}
