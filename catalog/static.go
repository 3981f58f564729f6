package catalog

import (
	"context"
	"slices"
	"strings"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
)

// StaticCatalog is an immutable catalog built once and then only read.
type StaticCatalog struct {
	schemas map[string]*staticSchema
}

// NewStaticCatalog creates an empty static catalog.
// It is exported for use by the memquery package builder.
func NewStaticCatalog() *StaticCatalog {
	return &StaticCatalog{
		schemas: make(map[string]*staticSchema),
	}
}

// AddSchema adds a schema to the catalog, replacing any schema of the same
// name. It must not be called once the catalog is in use.
func (c *StaticCatalog) AddSchema(name, comment string, tables map[string]Table) {
	c.schemas[name] = &staticSchema{
		name:    name,
		comment: comment,
		tables:  tables,
	}
}

// Schemas implements Catalog interface.
func (c *StaticCatalog) Schemas(ctx context.Context) ([]Schema, error) {
	names := sortedKeys(c.schemas)
	result := make([]Schema, 0, len(names))
	for _, name := range names {
		result = append(result, c.schemas[name])
	}
	return result, nil
}

// Schema implements Catalog interface.
func (c *StaticCatalog) Schema(ctx context.Context, name string) (Schema, error) {
	schema, ok := c.schemas[name]
	if !ok {
		return nil, nil // Not found, not an error
	}
	return schema, nil
}

// staticSchema is an immutable schema implementation.
type staticSchema struct {
	name    string
	comment string
	tables  map[string]Table
}

// Name implements Schema interface.
func (s *staticSchema) Name() string {
	return s.name
}

// Comment implements Schema interface.
func (s *staticSchema) Comment() string {
	return s.comment
}

// Tables implements Schema interface.
func (s *staticSchema) Tables(ctx context.Context) ([]Table, error) {
	names := sortedKeys(s.tables)
	result := make([]Table, 0, len(names))
	for _, name := range names {
		result = append(result, s.tables[name])
	}
	return result, nil
}

// Table implements Schema interface.
func (s *staticSchema) Table(ctx context.Context, name string) (Table, error) {
	table, ok := s.tables[name]
	if !ok {
		return nil, nil // Not found, not an error
	}
	return table, nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, strings.Compare)
	return keys
}

// StaticTable delegates scans to a user-provided ScanFunc.
type StaticTable struct {
	name     string
	comment  string
	schema   *arrow.Schema
	scanFunc ScanFunc
}

// NewStaticTable creates a table backed by scanFunc. The function receives
// the ScanOptions unchanged and must honor their query itself.
func NewStaticTable(name, comment string, schema *arrow.Schema, scanFunc ScanFunc) *StaticTable {
	return &StaticTable{
		name:     name,
		comment:  comment,
		schema:   schema,
		scanFunc: scanFunc,
	}
}

// Name implements Table interface.
func (t *StaticTable) Name() string {
	return t.name
}

// Comment implements Table interface.
func (t *StaticTable) Comment() string {
	return t.comment
}

// ArrowSchema implements Table interface.
func (t *StaticTable) ArrowSchema(columns []string) *arrow.Schema {
	projected, err := ProjectSchema(t.schema, columns)
	if err != nil {
		return t.schema
	}
	return projected
}

// Scan implements Table interface.
func (t *StaticTable) Scan(ctx context.Context, opts *ScanOptions) (array.RecordReader, error) {
	return t.scanFunc(ctx, opts)
}
