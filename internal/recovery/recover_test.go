package recovery

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func TestValue(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	got, err := Value(logger, "Scan", func() (int, error) { return 7, nil })
	if err != nil || got != 7 {
		t.Errorf("Value() = %d, %v; want 7, nil", got, err)
	}

	sentinel := errors.New("boom")
	if _, err := Value(logger, "Scan", func() (int, error) { return 0, sentinel }); !errors.Is(err, sentinel) {
		t.Errorf("expected error to pass through, got %v", err)
	}
	if buf.Len() != 0 {
		t.Errorf("unexpected log output: %s", buf.String())
	}
}

func TestValuePanic(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	got, err := Value(logger, "Scan", func() (*int, error) {
		var m map[string]int
		m["x"] = 1
		return nil, nil
	})
	if got != nil {
		t.Errorf("expected zero result, got %v", got)
	}

	var panicErr *PanicError
	if !errors.As(err, &panicErr) {
		t.Fatalf("expected *PanicError, got %T: %v", err, err)
	}
	if panicErr.Operation != "Scan" {
		t.Errorf("Operation = %q, want Scan", panicErr.Operation)
	}
	if !strings.Contains(err.Error(), "Scan panicked") {
		t.Errorf("unexpected message %q", err.Error())
	}
	if !strings.Contains(buf.String(), "Panic recovered") {
		t.Errorf("expected panic to be logged, got %q", buf.String())
	}
}

func TestDo(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))

	if err := Do(logger, "Write", func() error { return nil }); err != nil {
		t.Errorf("expected nil, got %v", err)
	}

	err := Do(logger, "Write", func() error { panic("closed") })
	var panicErr *PanicError
	if !errors.As(err, &panicErr) || panicErr.Value != "closed" {
		t.Errorf("expected PanicError{Value: closed}, got %v", err)
	}
}
