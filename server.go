package memquery

import (
	"fmt"
	"log/slog"
	"os"

	"google.golang.org/grpc"

	"github.com/hugr-lab/memquery/auth"
	"github.com/hugr-lab/memquery/flight"
)

// NewServer registers the Flight service handlers on grpcServer.
//
// The function:
//  1. Validates the ServerConfig
//  2. Creates the Flight service implementation and its scan metrics
//  3. Registers it on grpcServer
//
// It does not start grpcServer; the caller controls its lifecycle and calls
// Close on the returned server after grpcServer stops.
//
// Example:
//
//	config := memquery.ServerConfig{Catalog: cat}
//	grpcServer := grpc.NewServer(memquery.ServerOptions(config)...)
//	srv, err := memquery.NewServer(grpcServer, config)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer srv.Close()
//	lis, _ := net.Listen("tcp", ":50051")
//	grpcServer.Serve(lis)
func NewServer(grpcServer *grpc.Server, config ServerConfig) (*flight.Server, error) {
	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	logger := newLogger(config)

	flightServer, err := flight.NewServer(config.Catalog, &flight.Options{
		Allocator: config.Allocator,
		Logger:    logger,
		Address:   config.Address,
		Metrics:   flight.NewMetrics(config.Registerer),
	})
	if err != nil {
		return nil, err
	}

	flight.RegisterFlightServer(grpcServer, flightServer)

	logger.Info("memquery Flight server registered",
		"has_auth", config.Auth != nil,
		"max_message_size", config.MaxMessageSize,
		"address", config.Address,
	)
	return flightServer, nil
}

func newLogger(config ServerConfig) *slog.Logger {
	if config.Logger != nil {
		return config.Logger
	}
	if config.LogLevel != nil {
		return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: *config.LogLevel}))
	}
	return slog.Default()
}

// validateConfig checks that required ServerConfig fields are valid.
func validateConfig(config ServerConfig) error {
	if config.Catalog == nil {
		return fmt.Errorf("catalog is required")
	}
	if config.MaxMessageSize < 0 {
		return fmt.Errorf("max message size must be non-negative, got %d", config.MaxMessageSize)
	}
	return nil
}

// ServerOptions returns gRPC server options for config: authentication
// interceptors when Auth is set and message size limits when
// MaxMessageSize is set.
func ServerOptions(config ServerConfig) []grpc.ServerOption {
	var opts []grpc.ServerOption

	if config.Auth != nil {
		opts = append(opts,
			grpc.UnaryInterceptor(auth.UnaryServerInterceptor(config.Auth)),
			grpc.StreamInterceptor(auth.StreamServerInterceptor(config.Auth)),
		)
	}

	if config.MaxMessageSize > 0 {
		opts = append(opts,
			grpc.MaxRecvMsgSize(config.MaxMessageSize),
			grpc.MaxSendMsgSize(config.MaxMessageSize),
		)
	}

	return opts
}
