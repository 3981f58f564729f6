package catalog

import (
	"fmt"

	"github.com/apache/arrow-go/v18/arrow"
)

// ProjectSchema returns a schema containing only the given columns, in the
// order listed. A nil or empty list returns the schema unchanged. Schema
// metadata is preserved.
//
// Error conditions:
//   - A column that is not part of the schema
func ProjectSchema(schema *arrow.Schema, columns []string) (*arrow.Schema, error) {
	if len(columns) == 0 {
		return schema, nil
	}
	indices, err := columnIndices(schema, columns)
	if err != nil {
		return nil, err
	}

	fields := make([]arrow.Field, len(indices))
	for i, idx := range indices {
		fields[i] = schema.Field(idx)
	}
	meta := schema.Metadata()
	return arrow.NewSchema(fields, &meta), nil
}

// columnIndices resolves column names to field positions. A nil or empty
// list selects every field.
func columnIndices(schema *arrow.Schema, columns []string) ([]int, error) {
	if len(columns) == 0 {
		indices := make([]int, schema.NumFields())
		for i := range indices {
			indices[i] = i
		}
		return indices, nil
	}

	indices := make([]int, len(columns))
	for i, col := range columns {
		found := schema.FieldIndices(col)
		if len(found) == 0 {
			return nil, fmt.Errorf("unknown column %q", col)
		}
		indices[i] = found[0]
	}
	return indices, nil
}

// FindRowIDColumn returns the index of the rowid column in the schema, or -1.
//
// Rowid column is identified by:
//   - Column name "rowid" (case-sensitive), or
//   - Metadata key "is_rowid" with non-empty value
func FindRowIDColumn(schema *arrow.Schema) int {
	if schema == nil {
		return -1
	}

	for i, field := range schema.Fields() {
		if field.Name == "rowid" {
			return i
		}
		if idx := field.Metadata.FindKey("is_rowid"); idx >= 0 && field.Metadata.Values()[idx] != "" {
			return i
		}
	}
	return -1
}
