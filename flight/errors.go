package flight

import (
	"context"
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/hugr-lab/memquery/filter"
	"github.com/hugr-lab/memquery/query"
)

var (
	// ErrInvalidTicket is returned for tickets that cannot be decoded.
	ErrInvalidTicket = errors.New("invalid ticket")

	// ErrInvalidCommand is returned for CMD descriptors that cannot be decoded.
	ErrInvalidCommand = errors.New("invalid command")
)

// codeOf picks the gRPC code for err. Malformed requests and query
// arguments are the client's fault; anything else is internal.
func codeOf(err error) codes.Code {
	if s, ok := status.FromError(err); ok {
		return s.Code()
	}

	var mapErr *filter.MappingError
	switch {
	case errors.Is(err, context.Canceled):
		return codes.Canceled
	case errors.Is(err, context.DeadlineExceeded):
		return codes.DeadlineExceeded
	case errors.Is(err, ErrInvalidTicket),
		errors.Is(err, ErrInvalidCommand),
		errors.Is(err, filter.ErrInvalidFilter),
		errors.Is(err, filter.ErrUnsupportedOperator),
		errors.Is(err, query.ErrInvalidArgument),
		errors.As(err, &mapErr):
		return codes.InvalidArgument
	}
	return codes.Internal
}

// statusError converts err into a gRPC status error prefixed with msg.
// Status errors pass through unchanged.
func statusError(err error, msg string) error {
	if _, ok := status.FromError(err); ok {
		return err
	}
	return status.Errorf(codeOf(err), "%s: %v", msg, err)
}
