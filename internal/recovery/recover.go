// Package recovery turns panics in user-provided tables into errors so a
// misbehaving scan cannot take down the Flight server.
package recovery

import (
	"fmt"
	"log/slog"
	"runtime/debug"
)

// PanicError reports a recovered panic.
type PanicError struct {
	Operation string
	Value     any
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("%s panicked: %v", e.Operation, e.Value)
}

// Do runs fn and converts a panic into a *PanicError.
//
// Example:
//
//	err := recovery.Do(logger, "Write", func() error {
//	    return writer.Write(batch)
//	})
func Do(logger *slog.Logger, operation string, fn func() error) error {
	_, err := Value(logger, operation, func() (struct{}, error) {
		return struct{}{}, fn()
	})
	return err
}

// Value runs fn and converts a panic into a zero result and a *PanicError.
//
// Example:
//
//	reader, err := recovery.Value(logger, "Scan", func() (array.RecordReader, error) {
//	    return table.Scan(ctx, opts)
//	})
func Value[T any](logger *slog.Logger, operation string, fn func() (T, error)) (result T, err error) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Panic recovered",
				"operation", operation,
				"panic", r,
				"stack", string(debug.Stack()),
			)
			var zero T
			result = zero
			err = &PanicError{Operation: operation, Value: r}
		}
	}()
	return fn()
}
