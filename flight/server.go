// Package flight serves catalog tables over Arrow Flight. Clients discover
// tables with ListFlights, plan a query with GetFlightInfo and stream the
// result with DoGet.
package flight

import (
	"errors"
	"log/slog"

	"github.com/apache/arrow-go/v18/arrow/flight"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"google.golang.org/grpc"

	"github.com/hugr-lab/memquery/catalog"
)

// Options configures a Server.
type Options struct {
	// Allocator for Arrow memory management.
	// OPTIONAL: Uses memory.DefaultAllocator if nil.
	Allocator memory.Allocator

	// Logger for internal logging.
	// OPTIONAL: Uses slog.Default() if nil.
	Logger *slog.Logger

	// Address is the server's public address (e.g., "localhost:50051").
	// OPTIONAL: If empty, FlightEndpoint locations are omitted and clients
	// reuse the connection they planned on.
	Address string

	// Metrics records scans.
	// OPTIONAL: If nil, metrics are collected but not registered.
	Metrics *Metrics
}

// Server implements the Flight service handlers.
// Embeds BaseFlightServer for forward compatibility with protocol changes.
type Server struct {
	flight.BaseFlightServer

	catalog   catalog.Catalog
	allocator memory.Allocator
	logger    *slog.Logger
	address   string
	metrics   *Metrics
	tickets   *TicketCodec
}

// NewServer creates a Flight server over cat.
// Caller must call Close() when the server is no longer used.
func NewServer(cat catalog.Catalog, opts *Options) (*Server, error) {
	if cat == nil {
		return nil, errors.New("catalog cannot be nil")
	}
	if opts == nil {
		opts = &Options{}
	}

	tickets, err := NewTicketCodec()
	if err != nil {
		return nil, err
	}

	s := &Server{
		catalog:   cat,
		allocator: opts.Allocator,
		logger:    opts.Logger,
		address:   opts.Address,
		metrics:   opts.Metrics,
		tickets:   tickets,
	}
	if s.allocator == nil {
		s.allocator = memory.DefaultAllocator
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.metrics == nil {
		s.metrics = NewMetrics(nil)
	}
	return s, nil
}

// Tickets returns the codec used for the server's tickets.
func (s *Server) Tickets() *TicketCodec { return s.tickets }

// Close releases server resources.
func (s *Server) Close() {
	s.tickets.Close()
}

// RegisterFlightServer registers the Flight service on the provided gRPC server.
func RegisterFlightServer(grpcServer *grpc.Server, flightServer *Server) {
	flight.RegisterFlightServiceServer(grpcServer, flightServer)
}
