// Package memquery serves in-memory Arrow tables over Arrow Flight and
// evaluates declarative queries against them with the same semantics a SQL
// store gives natively.
//
// A query is a JSON document with three optional parts, applied in a fixed
// order: filter, then sort, then page.
//
//	{
//	  "filter":  {"and": [{"isVerified": {"is": true}}, {"first": {"like": "B%"}}]},
//	  "sorting": [{"field": "first", "direction": "DESC", "nulls": "NULLS_LAST"}],
//	  "paging":  {"offset": 0, "limit": 20}
//	}
//
// The engine lives in subpackages:
//   - record: the value model (null, number, string, boolean, timestamp)
//   - filter: filter trees, their evaluation, JSON form and DuckDB SQL form
//   - query: sorting, paging and the filter-sort-page executor
//   - catalog: Arrow-backed tables (MemoryTable, DuckDBTable) that honor queries
//   - flight: the Arrow Flight service
//
// # Quick Start
//
//	people, _ := catalog.NewMemoryTable("people", schema, batches, nil)
//	cat, _ := memquery.NewCatalogBuilder().
//	    Schema("main").
//	        Table(people).
//	    Build()
//
//	config := memquery.ServerConfig{Catalog: cat}
//	grpcServer := grpc.NewServer(memquery.ServerOptions(config)...)
//	srv, _ := memquery.NewServer(grpcServer, config)
//	defer srv.Close()
//	lis, _ := net.Listen("tcp", ":50051")
//	grpcServer.Serve(lis)
//
// Clients plan a query with GetFlightInfo using a CMD descriptor,
//
//	{"schema": "main", "table": "people", "query": {...}, "field_map": {"first": "first_name"}}
//
// and redeem the returned ticket with DoGet.
//
// # Server Lifecycle
//
// The package registers Flight service handlers on a user-provided grpc.Server
// but does NOT manage server lifecycle (start/stop/listen). This gives users
// full control over:
//   - TLS configuration via grpc.Creds()
//   - Server options and interceptors
//   - Graceful shutdown via grpcServer.GracefulStop()
//
// # Authentication
//
// Bearer token authentication is applied by the interceptors from
// ServerOptions when ServerConfig.Auth is set:
//
//	config := memquery.ServerConfig{
//	    Catalog: cat,
//	    Auth: memquery.BearerAuth(func(token string) (string, error) {
//	        if token == "secret-api-key" {
//	            return "user1", nil
//	        }
//	        return "", errors.New("unknown token")
//	    }),
//	}
//
// # Memory Management
//
// Arrow uses manual reference counting. Callers MUST call Release() on
// RecordReaders returned by scans and on MemoryTables they no longer serve.
package memquery
