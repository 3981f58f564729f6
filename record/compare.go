package record

import (
	"cmp"
	"strings"
	"time"
)

// Equal reports strict equality: both values must have the same kind and the
// same payload. Two nulls are equal; values of different kinds never are.
func Equal(a, b Value) bool {
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case Null:
		return true
	case Number:
		return a.num == b.num
	case String:
		return a.str == b.str
	case Bool:
		return a.b == b.b
	case Timestamp:
		return a.ts.Equal(b.ts)
	}
	return false
}

// Compare orders two values of the same ordered kind and returns -1, 0 or 1.
// ok is false when either value is null, the kinds differ, or the kind is not
// ordered.
func Compare(a, b Value) (n int, ok bool) {
	if a.kind != b.kind || !a.kind.Ordered() {
		return 0, false
	}
	return compareSameKind(a, b), true
}

// Order is a total order over all values used for sorting. Values of
// different kinds are ordered by kind precedence (null first, then number,
// string, boolean, timestamp); booleans order false before true.
func Order(a, b Value) int {
	if a.kind != b.kind {
		return cmp.Compare(a.kind, b.kind)
	}
	return compareSameKind(a, b)
}

func compareSameKind(a, b Value) int {
	switch a.kind {
	case Number:
		return cmp.Compare(a.num, b.num)
	case String:
		return strings.Compare(a.str, b.str)
	case Bool:
		switch {
		case a.b == b.b:
			return 0
		case !a.b:
			return -1
		default:
			return 1
		}
	case Timestamp:
		return a.ts.Compare(b.ts)
	}
	return 0
}

// ParseTimestamp reads an RFC 3339 timestamp, the form timestamps take on the
// JSON wire.
func ParseTimestamp(s string) (time.Time, bool) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
