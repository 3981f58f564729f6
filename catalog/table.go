package catalog

import (
	"context"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
)

// Table is a queryable table or view with a fixed schema.
// Implementations MUST be goroutine-safe.
type Table interface {
	// Name returns the table name (e.g., "users").
	Name() string

	// Comment returns optional table documentation.
	Comment() string

	// ArrowSchema returns the schema of the table projected to columns.
	// A nil or empty columns list returns the full schema.
	ArrowSchema(columns []string) *arrow.Schema

	// Scan returns the rows selected by opts.
	// Context allows cancellation; implementation MUST respect ctx.Done().
	// Caller MUST call reader.Release() to free memory.
	// The reader schema MUST equal ArrowSchema(opts.Columns).
	Scan(ctx context.Context, opts *ScanOptions) (array.RecordReader, error)
}
