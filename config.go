package memquery

import (
	"errors"
	"log/slog"

	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/hugr-lab/memquery/auth"
	"github.com/hugr-lab/memquery/catalog"
)

// ServerConfig contains configuration for the memquery Flight server.
type ServerConfig struct {
	// Catalog provides schemas and tables.
	// REQUIRED: MUST NOT be nil.
	Catalog catalog.Catalog

	// Auth validates bearer tokens. It is applied by the interceptors
	// returned from ServerOptions.
	// OPTIONAL: If nil, no authentication (all requests allowed).
	Auth auth.Authenticator

	// Allocator for Arrow memory management.
	// OPTIONAL: Uses memory.DefaultAllocator if nil.
	Allocator memory.Allocator

	// Logger for internal logging.
	// OPTIONAL: Uses slog.Default() if nil.
	// If Logger is provided, LogLevel is ignored.
	Logger *slog.Logger

	// LogLevel sets the level of the logger created when Logger is nil.
	// OPTIONAL: If nil, slog.Default() is used as is.
	LogLevel *slog.Level

	// MaxMessageSize sets maximum gRPC message size in bytes.
	// OPTIONAL: If 0, uses gRPC default (4MB).
	// Recommended: 16MB for large Arrow batches.
	MaxMessageSize int

	// Address is the server's public address (e.g., "localhost:50051").
	// OPTIONAL: If empty, FlightEndpoint locations will not include URI.
	Address string

	// Registerer receives the scan metrics.
	// OPTIONAL: If nil, metrics are not registered.
	Registerer prometheus.Registerer
}

// ErrInvalidConfig indicates ServerConfig validation failed.
var ErrInvalidConfig = errors.New("invalid server config")
