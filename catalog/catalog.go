// Package catalog exposes queryable tables grouped into named schemas.
//
// Tables answer a scan with the rows selected by a query.Query. Two
// implementations are provided:
//   - MemoryTable: Arrow record batches held in memory, queried by the
//     in-memory engine (package query)
//   - DuckDBTable: a DuckDB table or view, queried by translating the same
//     query to SQL
//
// Both follow the same filter, sort and paging semantics, so callers can move
// a table between the two without changing results. All interfaces are
// goroutine-safe and support context-based cancellation.
package catalog

import (
	"context"
)

// Catalog is the top-level metadata container.
// All methods MUST be goroutine-safe.
type Catalog interface {
	// Schemas returns all schemas visible in this catalog, sorted by name.
	// Returns empty slice (not nil) if no schemas available.
	Schemas(ctx context.Context) ([]Schema, error)

	// Schema returns a specific schema by name.
	// Returns (nil, nil) if schema doesn't exist (not an error).
	// Returns (nil, err) if lookup fails for other reasons.
	Schema(ctx context.Context, name string) (Schema, error)
}

// Schema groups tables under a name.
// Implementations MUST be goroutine-safe.
type Schema interface {
	// Name returns the schema name (e.g., "main").
	Name() string

	// Comment returns optional schema documentation.
	Comment() string

	// Tables returns all tables in this schema, sorted by name.
	// Returns empty slice (not nil) if no tables available.
	Tables(ctx context.Context) ([]Table, error)

	// Table returns a specific table by name.
	// Returns (nil, nil) if table doesn't exist (not an error).
	Table(ctx context.Context, name string) (Table, error)
}
