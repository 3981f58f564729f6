package memquery

import (
	"fmt"

	"github.com/apache/arrow-go/v18/arrow"

	"github.com/hugr-lab/memquery/catalog"
)

// SimpleTableDef defines a table backed by a scan function.
// Used with SchemaBuilder.SimpleTable().
type SimpleTableDef struct {
	// Name is the table name (e.g., "users", "orders").
	// REQUIRED: MUST be non-empty and unique within schema.
	Name string

	// Comment is optional table documentation.
	// OPTIONAL: Empty string if no comment.
	Comment string

	// Schema is the Arrow schema describing table columns.
	// REQUIRED: MUST NOT be nil.
	Schema *arrow.Schema

	// ScanFunc provides table data as RecordReader. It receives the query in
	// ScanOptions and is responsible for honoring it.
	// REQUIRED: MUST NOT be nil.
	ScanFunc catalog.ScanFunc
}

// CatalogBuilder builds static catalogs using fluent API.
// Not thread-safe - use only during initialization.
type CatalogBuilder struct {
	schemas []*schemaBuilder
	built   bool
}

// NewCatalogBuilder creates a new fluent catalog builder.
//
// Example:
//
//	people, _ := catalog.NewMemoryTable("people", schema, batches, nil)
//	cat, err := memquery.NewCatalogBuilder().
//	    Schema("main").
//	        Table(people).
//	    Build()
func NewCatalogBuilder() *CatalogBuilder {
	return &CatalogBuilder{}
}

// Schema starts defining a new schema.
// Schema name MUST be non-empty and unique within catalog.
func (cb *CatalogBuilder) Schema(name string) *SchemaBuilder {
	sb := &schemaBuilder{
		name:           name,
		catalogBuilder: cb,
	}
	cb.schemas = append(cb.schemas, sb)
	return &SchemaBuilder{builder: sb}
}

// Build finalizes the catalog. It can only be called once.
// Returns error on empty or duplicate schema and table names.
func (cb *CatalogBuilder) Build() (catalog.Catalog, error) {
	if cb.built {
		return nil, fmt.Errorf("catalog already built")
	}

	seenSchemas := make(map[string]bool)
	for _, sb := range cb.schemas {
		if sb.name == "" {
			return nil, fmt.Errorf("schema name cannot be empty")
		}
		if seenSchemas[sb.name] {
			return nil, fmt.Errorf("duplicate schema name: %s", sb.name)
		}
		seenSchemas[sb.name] = true

		seenTables := make(map[string]bool)
		for _, table := range sb.tables {
			if table == nil {
				return nil, fmt.Errorf("nil table in schema %s", sb.name)
			}
			if table.Name() == "" {
				return nil, fmt.Errorf("table name cannot be empty in schema %s", sb.name)
			}
			if seenTables[table.Name()] {
				return nil, fmt.Errorf("duplicate table name %s in schema %s", table.Name(), sb.name)
			}
			seenTables[table.Name()] = true
		}
		if sb.err != nil {
			return nil, fmt.Errorf("schema %s: %w", sb.name, sb.err)
		}
	}

	cb.built = true

	cat := catalog.NewStaticCatalog()
	for _, sb := range cb.schemas {
		tables := make(map[string]catalog.Table, len(sb.tables))
		for _, table := range sb.tables {
			tables[table.Name()] = table
		}
		cat.AddSchema(sb.name, sb.comment, tables)
	}
	return cat, nil
}

// SchemaBuilder builds a schema within a catalog.
// Not thread-safe - use only during initialization.
type SchemaBuilder struct {
	builder *schemaBuilder
}

type schemaBuilder struct {
	name           string
	comment        string
	tables         []catalog.Table
	err            error
	catalogBuilder *CatalogBuilder
}

// Comment sets optional schema documentation.
func (sb *SchemaBuilder) Comment(comment string) *SchemaBuilder {
	sb.builder.comment = comment
	return sb
}

// Table adds a table, typically a *catalog.MemoryTable or *catalog.DuckDBTable.
func (sb *SchemaBuilder) Table(table catalog.Table) *SchemaBuilder {
	sb.builder.tables = append(sb.builder.tables, table)
	return sb
}

// SimpleTable adds a table backed by a scan function.
//
// Example:
//
//	schema.SimpleTable(memquery.SimpleTableDef{
//	    Name:     "users",
//	    Comment:  "User accounts",
//	    Schema:   userSchema,
//	    ScanFunc: scanUsers,
//	})
func (sb *SchemaBuilder) SimpleTable(def SimpleTableDef) *SchemaBuilder {
	switch {
	case def.Schema == nil:
		sb.setErr(fmt.Errorf("table %s has nil schema", def.Name))
	case def.ScanFunc == nil:
		sb.setErr(fmt.Errorf("table %s has nil scan function", def.Name))
	default:
		sb.builder.tables = append(sb.builder.tables,
			catalog.NewStaticTable(def.Name, def.Comment, def.Schema, def.ScanFunc))
	}
	return sb
}

func (sb *SchemaBuilder) setErr(err error) {
	if sb.builder.err == nil {
		sb.builder.err = err
	}
}

// Schema starts a new schema definition.
// Allows chaining: Schema("a").Table(...).Schema("b").Table(...)
func (sb *SchemaBuilder) Schema(name string) *SchemaBuilder {
	return sb.builder.catalogBuilder.Schema(name)
}

// Build finalizes the catalog. Same as calling CatalogBuilder.Build().
func (sb *SchemaBuilder) Build() (catalog.Catalog, error) {
	return sb.builder.catalogBuilder.Build()
}
