package catalog

import (
	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"

	"github.com/hugr-lab/memquery/record"
)

// RowRecord exposes one row of an Arrow record batch as a record.Record.
//
// Integer, unsigned and floating point columns read as numbers, string
// columns as strings, boolean columns as booleans, and timestamp and date
// columns as timestamps. Columns of any other type read as null.
//
// Numbers are float64, so 64-bit integers beyond 2^53 lose precision: two
// such ids may compare equal in a MemoryTable scan while a DuckDBTable,
// which filters and sorts in SQL, keeps them distinct. Use a string column
// for identifiers that need the full 64-bit range.
type RowRecord struct {
	batch  arrow.RecordBatch
	fields map[string]int
	row    int
}

// Get implements record.Record.
func (r RowRecord) Get(field string) (record.Value, bool) {
	idx, ok := r.fields[field]
	if !ok {
		return record.NullValue(), false
	}
	return columnValue(r.batch.Column(idx), r.row), true
}

// Batch returns the batch holding the row and the row position in it.
func (r RowRecord) Batch() (arrow.RecordBatch, int) {
	return r.batch, r.row
}

// Rows returns one RowRecord per row of batch. The records reference the
// batch without retaining it.
func Rows(batch arrow.RecordBatch) []RowRecord {
	return appendRows(nil, batch, fieldIndex(batch.Schema()))
}

func appendRows(dst []RowRecord, batch arrow.RecordBatch, fields map[string]int) []RowRecord {
	n := int(batch.NumRows())
	for i := 0; i < n; i++ {
		dst = append(dst, RowRecord{batch: batch, fields: fields, row: i})
	}
	return dst
}

func fieldIndex(schema *arrow.Schema) map[string]int {
	fields := make(map[string]int, schema.NumFields())
	for i, f := range schema.Fields() {
		if _, dup := fields[f.Name]; !dup {
			fields[f.Name] = i
		}
	}
	return fields
}

// columnValue converts the value at row i of col.
func columnValue(col arrow.Array, i int) record.Value {
	if col.IsNull(i) {
		return record.NullValue()
	}

	switch a := col.(type) {
	case *array.Int8:
		return record.NumberValue(float64(a.Value(i)))
	case *array.Int16:
		return record.NumberValue(float64(a.Value(i)))
	case *array.Int32:
		return record.NumberValue(float64(a.Value(i)))
	case *array.Int64:
		return record.NumberValue(float64(a.Value(i)))
	case *array.Uint8:
		return record.NumberValue(float64(a.Value(i)))
	case *array.Uint16:
		return record.NumberValue(float64(a.Value(i)))
	case *array.Uint32:
		return record.NumberValue(float64(a.Value(i)))
	case *array.Uint64:
		return record.NumberValue(float64(a.Value(i)))
	case *array.Float32:
		return record.NumberValue(float64(a.Value(i)))
	case *array.Float64:
		return record.NumberValue(a.Value(i))
	case *array.String:
		return record.StringValue(a.Value(i))
	case *array.LargeString:
		return record.StringValue(a.Value(i))
	case *array.StringView:
		return record.StringValue(a.Value(i))
	case *array.Boolean:
		return record.BoolValue(a.Value(i))
	case *array.Timestamp:
		unit := a.DataType().(*arrow.TimestampType).Unit
		return record.TimestampValue(a.Value(i).ToTime(unit))
	case *array.Date32:
		return record.TimestampValue(a.Value(i).ToTime())
	case *array.Date64:
		return record.TimestampValue(a.Value(i).ToTime())
	default:
		return record.NullValue()
	}
}
