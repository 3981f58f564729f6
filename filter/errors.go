package filter

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupportedOperator matches every *UnsupportedOperatorError via errors.Is.
	ErrUnsupportedOperator = errors.New("unsupported operator")

	// ErrInvalidFilter matches every *ParseError via errors.Is.
	ErrInvalidFilter = errors.New("invalid filter")
)

// UnsupportedOperatorError indicates a Comparison names an operator outside
// the recognized set.
type UnsupportedOperatorError struct {
	Field    string
	Operator string
}

func (e *UnsupportedOperatorError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("unsupported operator %q", e.Operator)
	}
	return fmt.Sprintf("unsupported operator %q on field %q", e.Operator, e.Field)
}

// Is makes errors.Is(err, ErrUnsupportedOperator) succeed.
func (e *UnsupportedOperatorError) Is(target error) bool {
	return target == ErrUnsupportedOperator
}

// ParseError describes a filter or query document with a malformed shape.
// Path is a dotted location inside the document, e.g. "and[1].age.between".
type ParseError struct {
	Path string
	Msg  string
	Err  error
}

func (e *ParseError) Error() string {
	msg := e.Msg
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	if e.Path == "" {
		return "malformed document: " + msg
	}
	return "malformed document: " + e.Path + ": " + msg
}

func (e *ParseError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrInvalidFilter) succeed.
func (e *ParseError) Is(target error) bool {
	return target == ErrInvalidFilter
}

// MappingError indicates a FieldMap cannot be inverted because two source
// fields map onto the same target.
type MappingError struct {
	Target  string
	Sources [2]string
}

func (e *MappingError) Error() string {
	return fmt.Sprintf("field map is not invertible: %q and %q both map to %q", e.Sources[0], e.Sources[1], e.Target)
}
