package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	_ "github.com/duckdb/duckdb-go/v2"

	"github.com/hugr-lab/memquery/filter"
	"github.com/hugr-lab/memquery/query"
	"github.com/hugr-lab/memquery/record"
)

// OpenDuckDB opens a DuckDB database. An empty path opens an in-memory
// database.
func OpenDuckDB(path string) (*sql.DB, error) {
	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open duckdb: %w", err)
	}
	return db, nil
}

// DuckDBTableOptions configures a DuckDBTable.
type DuckDBTableOptions struct {
	// Comment is the table documentation.
	// OPTIONAL.
	Comment string

	// Allocator is used for result batches.
	// OPTIONAL: Defaults to memory.DefaultAllocator.
	Allocator memory.Allocator

	// Logger for scan diagnostics.
	// OPTIONAL: Defaults to slog.Default().
	Logger *slog.Logger

	// BatchSize is the maximum number of rows per output batch.
	// OPTIONAL: Defaults to DefaultBatchSize.
	BatchSize int

	// ColumnExpressions maps field names to SQL expressions used in place of
	// the column in filters and sorting.
	// OPTIONAL.
	ColumnExpressions map[string]string

	// Tiebreaker orders rows tied on every sort criterion.
	// OPTIONAL: Defaults to the schema's rowid column when it has one (see
	// FindRowIDColumn), else DuckDB's rowid pseudo-column. Views have no
	// rowid and need an explicit key column here.
	Tiebreaker string
}

// DuckDBTable is a Table stored in DuckDB. Scans translate the query into a
// single SELECT, so DuckDB evaluates filter, sort and paging natively with
// the same null placement and tie order as MemoryTable.
type DuckDBTable struct {
	db         *sql.DB
	name       string
	comment    string
	schema     *arrow.Schema
	allocator  memory.Allocator
	logger     *slog.Logger
	batchSize  int
	exprs      map[string]string
	tiebreaker string
}

// NewDuckDBTable creates a table reading the DuckDB table or view name.
// schema describes the columns returned to clients and must name existing
// columns of the relation.
//
// Error conditions:
//   - Nil db
//   - Empty name (ErrEmptyTableName)
//   - Nil schema (ErrNilSchema)
func NewDuckDBTable(db *sql.DB, name string, schema *arrow.Schema, opts *DuckDBTableOptions) (*DuckDBTable, error) {
	if db == nil {
		return nil, fmt.Errorf("table %s: database cannot be nil", name)
	}
	if name == "" {
		return nil, ErrEmptyTableName
	}
	if schema == nil {
		return nil, ErrNilSchema
	}
	if opts == nil {
		opts = &DuckDBTableOptions{}
	}

	t := &DuckDBTable{
		db:         db,
		name:       name,
		comment:    opts.Comment,
		schema:     schema,
		allocator:  opts.Allocator,
		logger:     opts.Logger,
		batchSize:  opts.BatchSize,
		exprs:      opts.ColumnExpressions,
		tiebreaker: opts.Tiebreaker,
	}
	if t.allocator == nil {
		t.allocator = memory.DefaultAllocator
	}
	if t.logger == nil {
		t.logger = slog.Default()
	}
	if t.batchSize <= 0 {
		t.batchSize = DefaultBatchSize
	}
	if t.tiebreaker == "" {
		if idx := FindRowIDColumn(schema); idx >= 0 {
			t.tiebreaker = filter.QuoteIdentifier(schema.Field(idx).Name)
		} else {
			t.tiebreaker = "rowid"
		}
	}
	return t, nil
}

// Name implements Table interface.
func (t *DuckDBTable) Name() string { return t.name }

// Comment implements Table interface.
func (t *DuckDBTable) Comment() string { return t.comment }

// ArrowSchema implements Table interface.
func (t *DuckDBTable) ArrowSchema(columns []string) *arrow.Schema {
	projected, err := ProjectSchema(t.schema, columns)
	if err != nil {
		return t.schema
	}
	return projected
}

// SQL returns the statement a scan with opts would run.
func (t *DuckDBTable) SQL(opts *ScanOptions) (string, *arrow.Schema, error) {
	outSchema, err := ProjectSchema(t.schema, opts.columns())
	if err != nil {
		return "", nil, fmt.Errorf("table %s: %w", t.name, err)
	}

	columns := make([]string, outSchema.NumFields())
	for i, f := range outSchema.Fields() {
		columns[i] = f.Name
	}

	stmt, err := query.SelectDuckDB(t.name, columns, opts.resolvedQuery(), &query.DuckDBOptions{
		EncoderOptions: filter.EncoderOptions{ColumnExpressions: t.exprs},
		Tiebreaker:     t.tiebreaker,
	})
	if err != nil {
		return "", nil, err
	}
	return stmt, outSchema, nil
}

// Scan implements Table interface.
func (t *DuckDBTable) Scan(ctx context.Context, opts *ScanOptions) (array.RecordReader, error) {
	stmt, outSchema, err := t.SQL(opts)
	if err != nil {
		return nil, err
	}

	t.logger.Debug("DuckDB table scan", "table", t.name, "sql", stmt)

	rows, err := t.db.QueryContext(ctx, stmt)
	if err != nil {
		return nil, fmt.Errorf("table %s: query failed: %w", t.name, err)
	}
	defer rows.Close()

	batchSize := t.batchSize
	if opts != nil && opts.BatchSize > 0 {
		batchSize = opts.BatchSize
	}

	builder := array.NewRecordBuilder(t.allocator, outSchema)
	defer builder.Release()

	var out []arrow.RecordBatch
	defer func() {
		for _, b := range out {
			b.Release()
		}
	}()

	raw := make([]any, outSchema.NumFields())
	dest := make([]any, len(raw))
	for i := range raw {
		dest[i] = &raw[i]
	}

	pending, total := 0, 0
	for rows.Next() {
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("table %s: scan failed: %w", t.name, err)
		}
		for i, v := range raw {
			if err := appendRaw(builder.Field(i), v); err != nil {
				return nil, fmt.Errorf("table %s, column %s: %w", t.name, outSchema.Field(i).Name, err)
			}
		}
		pending++
		total++
		if pending == batchSize {
			out = append(out, builder.NewRecordBatch())
			pending = 0
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("table %s: %w", t.name, err)
	}
	if pending > 0 {
		out = append(out, builder.NewRecordBatch())
	}

	t.logger.Debug("DuckDB table scan completed",
		"table", t.name,
		"rows_selected", total,
		"batches", len(out),
	)

	return array.NewRecordReader(outSchema, out)
}

// appendRaw appends a value returned by the database driver or passed to
// BuildRecordBatch. Integers are appended exactly when the column is a 64-bit
// integer; everything else goes through record.ValueOf.
func appendRaw(b array.Builder, v any) error {
	switch b := b.(type) {
	case *array.Int64Builder:
		switch n := v.(type) {
		case int64:
			b.Append(n)
			return nil
		case int32:
			b.Append(int64(n))
			return nil
		case int:
			b.Append(int64(n))
			return nil
		}
	case *array.Uint64Builder:
		if n, ok := v.(uint64); ok {
			b.Append(n)
			return nil
		}
	}
	return appendValue(b, record.ValueOf(v))
}
