package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/hugr-lab/memquery/query"
)

// DefaultBatchSize is the number of rows per output batch when neither the
// table nor the scan sets one.
const DefaultBatchSize = 1024

var (
	// ErrEmptyTableName is returned when a table is created without a name.
	ErrEmptyTableName = errors.New("table name cannot be empty")
	// ErrNilSchema is returned when a table is created without a schema.
	ErrNilSchema = errors.New("table schema cannot be nil")
)

// MemoryTableOptions configures a MemoryTable.
type MemoryTableOptions struct {
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
	// OPTIONAL: Defaults to DefaultBatchSize. ScanOptions.BatchSize overrides it.
	BatchSize int
}

// MemoryTable is a Table over Arrow record batches held in memory. Scans run
// the query with the in-memory engine; the table never changes after
// construction and is safe for concurrent scans.
type MemoryTable struct {
	name      string
	comment   string
	schema    *arrow.Schema
	batches   []arrow.RecordBatch
	rows      []RowRecord
	allocator memory.Allocator
	logger    *slog.Logger
	batchSize int
}

// NewMemoryTable creates a table holding batches. Every batch must have
// exactly schema. The table retains the batches; call Release to drop them.
//
// Error conditions:
//   - Empty name (ErrEmptyTableName)
//   - Nil schema (ErrNilSchema)
//   - A batch whose schema differs from schema
func NewMemoryTable(name string, schema *arrow.Schema, batches []arrow.RecordBatch, opts *MemoryTableOptions) (*MemoryTable, error) {
	if name == "" {
		return nil, ErrEmptyTableName
	}
	if schema == nil {
		return nil, ErrNilSchema
	}
	if opts == nil {
		opts = &MemoryTableOptions{}
	}

	t := &MemoryTable{
		name:      name,
		comment:   opts.Comment,
		schema:    schema,
		allocator: opts.Allocator,
		logger:    opts.Logger,
		batchSize: opts.BatchSize,
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

	fields := fieldIndex(schema)
	for i, batch := range batches {
		if !batch.Schema().Equal(schema) {
			return nil, fmt.Errorf("table %s: batch %d schema does not match table schema", name, i)
		}
	}
	for _, batch := range batches {
		batch.Retain()
		t.batches = append(t.batches, batch)
		t.rows = appendRows(t.rows, batch, fields)
	}
	return t, nil
}

// Name implements Table interface.
func (t *MemoryTable) Name() string { return t.name }

// Comment implements Table interface.
func (t *MemoryTable) Comment() string { return t.comment }

// NumRows returns the number of rows held by the table.
func (t *MemoryTable) NumRows() int { return len(t.rows) }

// ArrowSchema implements Table interface.
func (t *MemoryTable) ArrowSchema(columns []string) *arrow.Schema {
	projected, err := ProjectSchema(t.schema, columns)
	if err != nil {
		return t.schema
	}
	return projected
}

// Release drops the table's references to its batches.
func (t *MemoryTable) Release() {
	for _, batch := range t.batches {
		batch.Release()
	}
	t.batches = nil
	t.rows = nil
}

// Scan implements Table interface. The query is applied with filter, sort
// and paging semantics of package query, after renaming its fields through
// opts.FieldMap.
func (t *MemoryTable) Scan(ctx context.Context, opts *ScanOptions) (array.RecordReader, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	indices, err := columnIndices(t.schema, opts.columns())
	if err != nil {
		return nil, fmt.Errorf("table %s: %w", t.name, err)
	}
	outSchema, err := ProjectSchema(t.schema, opts.columns())
	if err != nil {
		return nil, fmt.Errorf("table %s: %w", t.name, err)
	}

	q := opts.resolvedQuery()
	rows, err := query.Apply(t.rows, q)
	if err != nil {
		return nil, err
	}

	batchSize := t.batchSize
	if opts != nil && opts.BatchSize > 0 {
		batchSize = opts.BatchSize
	}

	var out []arrow.RecordBatch
	defer func() {
		for _, b := range out {
			b.Release()
		}
	}()
	for start := 0; start < len(rows); start += batchSize {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		end := min(start+batchSize, len(rows))
		batch, err := t.gather(outSchema, indices, rows[start:end])
		if err != nil {
			return nil, fmt.Errorf("table %s: %w", t.name, err)
		}
		out = append(out, batch)
	}

	t.logger.Debug("Memory table scan",
		"table", t.name,
		"rows_total", len(t.rows),
		"rows_selected", len(rows),
		"batches", len(out),
		"columns", len(indices),
	)

	return array.NewRecordReader(outSchema, out)
}

// gather copies rows into one batch. Runs of consecutive rows from the same
// source batch are sliced together before concatenation.
func (t *MemoryTable) gather(schema *arrow.Schema, indices []int, rows []RowRecord) (arrow.RecordBatch, error) {
	type run struct {
		batch      arrow.RecordBatch
		start, end int
	}
	var runs []run
	for _, r := range rows {
		if n := len(runs); n > 0 && runs[n-1].batch == r.batch && runs[n-1].end == r.row {
			runs[n-1].end++
			continue
		}
		runs = append(runs, run{batch: r.batch, start: r.row, end: r.row + 1})
	}

	cols := make([]arrow.Array, 0, len(indices))
	defer func() {
		for _, c := range cols {
			c.Release()
		}
	}()
	for _, idx := range indices {
		parts := make([]arrow.Array, len(runs))
		for i, r := range runs {
			parts[i] = array.NewSlice(r.batch.Column(idx), int64(r.start), int64(r.end))
		}
		col, err := array.Concatenate(parts, t.allocator)
		for _, p := range parts {
			p.Release()
		}
		if err != nil {
			return nil, err
		}
		cols = append(cols, col)
	}
	return array.NewRecordBatch(schema, cols, int64(len(rows))), nil
}
