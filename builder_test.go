package memquery

import (
	"context"
	"strings"
	"testing"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/hugr-lab/memquery/catalog"
)

var idSchema = arrow.NewSchema([]arrow.Field{
	{Name: "id", Type: arrow.PrimitiveTypes.Int64},
}, nil)

// Test helper: creates a scan function returning one empty batch.
func testScanFunc(schema *arrow.Schema) catalog.ScanFunc {
	return func(ctx context.Context, opts *catalog.ScanOptions) (array.RecordReader, error) {
		builder := array.NewRecordBuilder(memory.DefaultAllocator, schema)
		defer builder.Release()
		record := builder.NewRecordBatch()
		defer record.Release()
		return array.NewRecordReader(schema, []arrow.RecordBatch{record})
	}
}

func simpleTable(name string) SimpleTableDef {
	return SimpleTableDef{Name: name, Schema: idSchema, ScanFunc: testScanFunc(idSchema)}
}

func TestCatalogBuilderBasic(t *testing.T) {
	cat, err := NewCatalogBuilder().
		Schema("test").
		Comment("Test schema").
		SimpleTable(simpleTable("table1")).
		Build()
	if err != nil {
		t.Fatalf("Expected successful build, got error: %v", err)
	}

	ctx := context.Background()
	schema, err := cat.Schema(ctx, "test")
	if err != nil || schema == nil {
		t.Fatalf("Expected schema test, got %v, %v", schema, err)
	}
	if schema.Comment() != "Test schema" {
		t.Errorf("Expected comment 'Test schema', got '%s'", schema.Comment())
	}
	table, err := schema.Table(ctx, "table1")
	if err != nil || table == nil {
		t.Fatalf("Expected table1, got %v, %v", table, err)
	}
}

func TestCatalogBuilderMultipleSchemas(t *testing.T) {
	cat, err := NewCatalogBuilder().
		Schema("schema1").
		SimpleTable(simpleTable("table1")).
		Schema("schema2").
		SimpleTable(simpleTable("table2")).
		Build()
	if err != nil {
		t.Fatalf("Expected successful build, got error: %v", err)
	}

	schemas, err := cat.Schemas(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(schemas) != 2 {
		t.Errorf("Expected 2 schemas, got %d", len(schemas))
	}
}

func TestCatalogBuilderMemoryTable(t *testing.T) {
	batch, err := catalog.BuildRecordBatch(nil, idSchema, []map[string]any{{"id": 1}, {"id": 2}})
	if err != nil {
		t.Fatal(err)
	}
	defer batch.Release()

	people, err := catalog.NewMemoryTable("ids", idSchema, []arrow.RecordBatch{batch}, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer people.Release()

	cat, err := NewCatalogBuilder().Schema("main").Table(people).Build()
	if err != nil {
		t.Fatalf("Expected successful build, got error: %v", err)
	}

	schema, _ := cat.Schema(context.Background(), "main")
	table, _ := schema.Table(context.Background(), "ids")
	if table != people {
		t.Errorf("Expected memory table to be registered as is, got %v", table)
	}
}

func TestCatalogBuilderErrors(t *testing.T) {
	tests := []struct {
		name    string
		build   func() (catalog.Catalog, error)
		wantErr string
	}{
		{
			name: "empty schema name",
			build: func() (catalog.Catalog, error) {
				return NewCatalogBuilder().Schema("").Build()
			},
			wantErr: "schema name cannot be empty",
		},
		{
			name: "duplicate schema names",
			build: func() (catalog.Catalog, error) {
				return NewCatalogBuilder().Schema("main").Schema("main").Build()
			},
			wantErr: "duplicate schema name",
		},
		{
			name: "duplicate table names",
			build: func() (catalog.Catalog, error) {
				return NewCatalogBuilder().Schema("main").
					SimpleTable(simpleTable("t")).
					SimpleTable(simpleTable("t")).
					Build()
			},
			wantErr: "duplicate table name",
		},
		{
			name: "empty table name",
			build: func() (catalog.Catalog, error) {
				return NewCatalogBuilder().Schema("main").SimpleTable(simpleTable("")).Build()
			},
			wantErr: "table name cannot be empty",
		},
		{
			name: "nil arrow schema",
			build: func() (catalog.Catalog, error) {
				return NewCatalogBuilder().Schema("main").
					SimpleTable(SimpleTableDef{Name: "t", ScanFunc: testScanFunc(idSchema)}).
					Build()
			},
			wantErr: "nil schema",
		},
		{
			name: "nil scan function",
			build: func() (catalog.Catalog, error) {
				return NewCatalogBuilder().Schema("main").
					SimpleTable(SimpleTableDef{Name: "t", Schema: idSchema}).
					Build()
			},
			wantErr: "nil scan function",
		},
		{
			name: "nil table",
			build: func() (catalog.Catalog, error) {
				return NewCatalogBuilder().Schema("main").Table(nil).Build()
			},
			wantErr: "nil table",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.build()
			if err == nil {
				t.Fatal("Expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestCatalogBuilderCannotBuildTwice(t *testing.T) {
	builder := NewCatalogBuilder()
	builder.Schema("main").SimpleTable(simpleTable("t"))

	if _, err := builder.Build(); err != nil {
		t.Fatalf("First build failed: %v", err)
	}
	if _, err := builder.Build(); err == nil {
		t.Error("Expected error on second build")
	}
}
