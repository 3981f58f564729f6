package memquery

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"sync"
	"testing"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/flight"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	"github.com/hugr-lab/memquery/catalog"
)

var usersSchema = arrow.NewSchema([]arrow.Field{
	{Name: "id", Type: arrow.PrimitiveTypes.Int64},
	{Name: "first_name", Type: arrow.BinaryTypes.String, Nullable: true},
	{Name: "last_name", Type: arrow.BinaryTypes.String, Nullable: true},
}, nil)

func usersRows(n int) []map[string]any {
	rows := make([]map[string]any, n)
	for i := range rows {
		rows[i] = map[string]any{
			"id":         i + 1,
			"first_name": fmt.Sprintf("user%03d", i+1),
			"last_name":  []string{"bar", "baz"}[i%2],
		}
	}
	return rows
}

type testEnv struct {
	client   flight.Client
	registry *prometheus.Registry
}

// startServer serves main.users (100 rows) over an in-process listener with
// the given config. The allocator is checked for leaks on cleanup.
func startServer(t *testing.T, config ServerConfig) *testEnv {
	t.Helper()

	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	t.Cleanup(func() { mem.AssertSize(t, 0) })

	batch, err := catalog.BuildRecordBatch(mem, usersSchema, usersRows(100))
	if err != nil {
		t.Fatalf("BuildRecordBatch failed: %v", err)
	}
	users, err := catalog.NewMemoryTable("users", usersSchema, []arrow.RecordBatch{batch}, &catalog.MemoryTableOptions{
		Comment:   "User accounts",
		Allocator: mem,
		BatchSize: 16,
	})
	batch.Release()
	if err != nil {
		t.Fatalf("NewMemoryTable failed: %v", err)
	}
	t.Cleanup(users.Release)

	cat, err := NewCatalogBuilder().Schema("main").Table(users).Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	registry := prometheus.NewRegistry()
	config.Catalog = cat
	config.Allocator = mem
	config.Registerer = registry
	if config.Logger == nil {
		config.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	grpcServer := grpc.NewServer(ServerOptions(config)...)
	srv, err := NewServer(grpcServer, config)
	if err != nil {
		t.Fatalf("NewServer failed: %v", err)
	}

	lis := bufconn.Listen(1 << 20)
	go grpcServer.Serve(lis)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		t.Fatalf("grpc.NewClient failed: %v", err)
	}

	t.Cleanup(srv.Close)
	t.Cleanup(grpcServer.Stop)
	t.Cleanup(func() { conn.Close() })

	return &testEnv{client: flight.NewClientFromConn(conn, nil), registry: registry}
}

// countRows plans cmd and counts the rows DoGet streams.
func countRows(ctx context.Context, client flight.Client, cmd string) (int64, error) {
	info, err := client.GetFlightInfo(ctx, &flight.FlightDescriptor{Type: flight.DescriptorCMD, Cmd: []byte(cmd)})
	if err != nil {
		return 0, err
	}
	stream, err := client.DoGet(ctx, info.Endpoint[0].Ticket)
	if err != nil {
		return 0, err
	}
	reader, err := flight.NewRecordReader(stream)
	if err != nil {
		return 0, err
	}
	defer reader.Release()

	var n int64
	for reader.Next() {
		n += reader.RecordBatch().NumRows()
	}
	if err := reader.Err(); err != nil && !errors.Is(err, io.EOF) {
		return n, err
	}
	return n, nil
}

const lastNameBar = `{
	"schema": "main",
	"table": "users",
	"columns": ["id"],
	"query": {"filter": {"lastName": {"eq": "bar"}}, "paging": {"offset": 5, "limit": 40}},
	"field_map": {"lastName": "last_name"}
}`

func TestServerEndToEnd(t *testing.T) {
	env := startServer(t, ServerConfig{})

	n, err := countRows(context.Background(), env.client, lastNameBar)
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if n != 40 {
		t.Errorf("expected 40 rows, got %d", n)
	}

	n, err = countRows(context.Background(), env.client, `{"schema": "main", "table": "users"}`)
	if err != nil || n != 100 {
		t.Errorf("expected 100 rows, got %d, %v", n, err)
	}

	if count, err := testutil.GatherAndCount(env.registry, "memquery_scans_total"); err != nil || count != 1 {
		t.Errorf("expected one scans_total series, got %d, %v", count, err)
	}
}

func TestServerConcurrentScans(t *testing.T) {
	env := startServer(t, ServerConfig{})

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if n, err := countRows(context.Background(), env.client, lastNameBar); err != nil || n != 40 {
				t.Errorf("concurrent query returned %d rows, %v", n, err)
			}
		}()
	}
	wg.Wait()
}

func TestServerAuth(t *testing.T) {
	env := startServer(t, ServerConfig{
		Auth: BearerAuth(func(token string) (string, error) {
			if token == "secret" {
				return "tester", nil
			}
			return "", errors.New("unknown token")
		}),
	})

	_, err := countRows(context.Background(), env.client, lastNameBar)
	if status.Code(err) != codes.Unauthenticated {
		t.Errorf("expected Unauthenticated without token, got %v", err)
	}

	ctx := metadata.AppendToOutgoingContext(context.Background(), "authorization", "Bearer secret")
	n, err := countRows(ctx, env.client, lastNameBar)
	if err != nil || n != 40 {
		t.Errorf("expected 40 rows with token, got %d, %v", n, err)
	}
}

func TestNewServerInvalidConfig(t *testing.T) {
	tests := []struct {
		name   string
		config ServerConfig
	}{
		{"nil catalog", ServerConfig{}},
		{"negative message size", ServerConfig{Catalog: catalog.NewStaticCatalog(), MaxMessageSize: -1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewServer(grpc.NewServer(), tt.config)
			if !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}

func TestServerOptions(t *testing.T) {
	if got := len(ServerOptions(ServerConfig{})); got != 0 {
		t.Errorf("expected no options, got %d", got)
	}
	if got := len(ServerOptions(ServerConfig{Auth: NoAuth(), MaxMessageSize: 16 << 20})); got != 4 {
		t.Errorf("expected 4 options, got %d", got)
	}
}
