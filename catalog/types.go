package catalog

import (
	"context"

	"github.com/apache/arrow-go/v18/arrow/array"

	"github.com/hugr-lab/memquery/filter"
	"github.com/hugr-lab/memquery/query"
)

// ScanOptions provides options for table scans.
type ScanOptions struct {
	// Columns to return. If nil/empty, return all columns.
	// Filters and sorting may reference columns outside this list.
	Columns []string

	// Query selects, orders and pages the rows.
	// If nil, every row is returned in storage order.
	Query *query.Query

	// FieldMap translates the field names used by Query into table column
	// names. Fields without an entry are used as is.
	FieldMap filter.FieldMap

	// BatchSize is a hint for the maximum rows per output batch.
	// If 0, implementation chooses default.
	// Implementations MAY ignore this hint.
	BatchSize int
}

// resolvedQuery returns the query to run against table columns: the
// requested query with FieldMap applied, or an empty query.
func (o *ScanOptions) resolvedQuery() query.Query {
	if o == nil || o.Query == nil {
		return query.Query{}
	}
	if len(o.FieldMap) == 0 {
		return *o.Query
	}
	return query.TransformQuery(*o.Query, o.FieldMap)
}

func (o *ScanOptions) columns() []string {
	if o == nil {
		return nil
	}
	return o.Columns
}

// ScanFunc is a function type for table data retrieval.
// User implements this to connect to their data source.
type ScanFunc func(ctx context.Context, opts *ScanOptions) (array.RecordReader, error)
