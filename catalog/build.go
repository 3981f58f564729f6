package catalog

import (
	"fmt"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/hugr-lab/memquery/record"
)

// BuildRecordBatch builds a batch from row maps. Go integers are stored
// exactly in 64-bit integer columns; every other value is read through
// record.ValueOf. A missing or null field appends a null. Supported column
// types are the integer and floating point types, string, boolean and
// timestamp.
//
// Error conditions:
//   - A column type outside the supported set
//   - A value whose kind does not fit its column
func BuildRecordBatch(mem memory.Allocator, schema *arrow.Schema, rows []map[string]any) (arrow.RecordBatch, error) {
	if mem == nil {
		mem = memory.DefaultAllocator
	}
	builder := array.NewRecordBuilder(mem, schema)
	defer builder.Release()

	for r, row := range rows {
		for i, field := range schema.Fields() {
			if err := appendRaw(builder.Field(i), row[field.Name]); err != nil {
				return nil, fmt.Errorf("row %d, column %s: %w", r, field.Name, err)
			}
		}
	}
	return builder.NewRecordBatch(), nil
}

func appendValue(b array.Builder, v record.Value) error {
	if v.IsNull() {
		b.AppendNull()
		return nil
	}

	switch b := b.(type) {
	case *array.Int8Builder:
		return appendNumber(v, func(f float64) { b.Append(int8(f)) })
	case *array.Int16Builder:
		return appendNumber(v, func(f float64) { b.Append(int16(f)) })
	case *array.Int32Builder:
		return appendNumber(v, func(f float64) { b.Append(int32(f)) })
	case *array.Int64Builder:
		return appendNumber(v, func(f float64) { b.Append(int64(f)) })
	case *array.Uint8Builder:
		return appendNumber(v, func(f float64) { b.Append(uint8(f)) })
	case *array.Uint16Builder:
		return appendNumber(v, func(f float64) { b.Append(uint16(f)) })
	case *array.Uint32Builder:
		return appendNumber(v, func(f float64) { b.Append(uint32(f)) })
	case *array.Uint64Builder:
		return appendNumber(v, func(f float64) { b.Append(uint64(f)) })
	case *array.Float32Builder:
		return appendNumber(v, func(f float64) { b.Append(float32(f)) })
	case *array.Float64Builder:
		return appendNumber(v, b.Append)
	case *array.StringBuilder:
		if v.Kind() != record.String {
			return kindError(v, record.String)
		}
		b.Append(v.AsString())
	case *array.BooleanBuilder:
		if v.Kind() != record.Bool {
			return kindError(v, record.Bool)
		}
		b.Append(v.AsBool())
	case *array.TimestampBuilder:
		if v.Kind() != record.Timestamp {
			return kindError(v, record.Timestamp)
		}
		unit := b.Type().(*arrow.TimestampType).Unit
		ts, err := arrow.TimestampFromTime(v.AsTime(), unit)
		if err != nil {
			return err
		}
		b.Append(ts)
	default:
		return fmt.Errorf("unsupported column type %s", b.Type())
	}
	return nil
}

func appendNumber(v record.Value, add func(float64)) error {
	if v.Kind() != record.Number {
		return kindError(v, record.Number)
	}
	add(v.AsNumber())
	return nil
}

func kindError(v record.Value, want record.Kind) error {
	return fmt.Errorf("expected %s value, got %s", want, v.Kind())
}
