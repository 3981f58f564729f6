package filter

import (
	"fmt"

	"github.com/hugr-lab/memquery/record"
)

// Predicate reports whether a record satisfies a compiled filter.
// Predicates are pure and safe for concurrent use.
type Predicate func(r record.Record) bool

func matchAll(record.Record) bool { return true }

// Compile turns a filter tree into a Predicate. A nil node compiles to a
// predicate that accepts every record.
//
// Compilation validates every operator up front, so a tree containing an
// unknown operator fails with *UnsupportedOperatorError before any record is
// evaluated.
func Compile(n Node) (Predicate, error) {
	switch n := n.(type) {
	case nil:
		return matchAll, nil
	case *Comparison:
		if n == nil {
			return matchAll, nil
		}
		return compileComparison(n)
	case *Group:
		if n == nil {
			return matchAll, nil
		}
		return compileGroup(n)
	default:
		return nil, fmt.Errorf("filter: unsupported node type %T", n)
	}
}

// Evaluate returns the records matching n, in their original relative order.
// The input slice is never modified.
func Evaluate[R record.Record](records []R, n Node) ([]R, error) {
	match, err := Compile(n)
	if err != nil {
		return nil, err
	}
	out := make([]R, 0, len(records))
	for _, r := range records {
		if match(r) {
			out = append(out, r)
		}
	}
	return out, nil
}

func compileGroup(g *Group) (Predicate, error) {
	preds := make([]Predicate, len(g.Children))
	for i, child := range g.Children {
		p, err := Compile(child)
		if err != nil {
			return nil, err
		}
		preds[i] = p
	}

	switch g.Connective {
	case And, "":
		return func(r record.Record) bool {
			for _, p := range preds {
				if !p(r) {
					return false
				}
			}
			return true
		}, nil
	case Or:
		return func(r record.Record) bool {
			for _, p := range preds {
				if p(r) {
					return true
				}
			}
			return false
		}, nil
	default:
		return nil, &UnsupportedOperatorError{Operator: string(g.Connective)}
	}
}

func compileComparison(c *Comparison) (Predicate, error) {
	test, err := compileTest(c)
	if err != nil {
		return nil, err
	}
	field := c.Field
	return func(r record.Record) bool {
		return test(record.Lookup(r, field))
	}, nil
}

// compileTest builds the test applied to the field value of one record.
func compileTest(c *Comparison) (func(v record.Value) bool, error) {
	switch c.Op {
	case OpEq, OpIs:
		x := newOperand(c.Value)
		return x.equal, nil
	case OpNeq, OpIsNot:
		x := newOperand(c.Value)
		return not(x.equal), nil
	case OpGt:
		return ordered(c.Value, func(n int) bool { return n > 0 }), nil
	case OpGte:
		return ordered(c.Value, func(n int) bool { return n >= 0 }), nil
	case OpLt:
		return ordered(c.Value, func(n int) bool { return n < 0 }), nil
	case OpLte:
		return ordered(c.Value, func(n int) bool { return n <= 0 }), nil
	case OpIn:
		return member(c.Values), nil
	case OpNotIn:
		return not(member(c.Values)), nil
	case OpLike, OpILike:
		m := compileLike(c.Value, c.Op == OpILike)
		return func(v record.Value) bool {
			return v.Kind() == record.String && m(v.AsString())
		}, nil
	case OpNotLike, OpNotILike:
		m := compileLike(c.Value, c.Op == OpNotILike)
		return func(v record.Value) bool {
			return v.Kind() == record.String && !m(v.AsString())
		}, nil
	case OpBetween:
		in := inRange(c.Lower, c.Upper)
		return func(v record.Value) bool {
			inside, ok := in(v)
			return ok && inside
		}, nil
	case OpNotBetween:
		in := inRange(c.Lower, c.Upper)
		return func(v record.Value) bool {
			inside, ok := in(v)
			return ok && !inside
		}, nil
	default:
		return nil, &UnsupportedOperatorError{Field: c.Field, Operator: string(c.Op)}
	}
}

func not(test func(record.Value) bool) func(record.Value) bool {
	return func(v record.Value) bool { return !test(v) }
}

// operand is a comparison operand with its timestamp reading precomputed.
// A string operand compared against a timestamp field is read as RFC 3339.
type operand struct {
	v     record.Value
	ts    record.Value
	hasTS bool
}

func newOperand(v record.Value) operand {
	x := operand{v: v}
	if v.Kind() == record.String {
		if t, ok := record.ParseTimestamp(v.AsString()); ok {
			x.ts, x.hasTS = record.TimestampValue(t), true
		}
	}
	return x
}

// against returns the operand as it should be compared with field value v.
func (x operand) against(v record.Value) record.Value {
	if x.hasTS && v.Kind() == record.Timestamp {
		return x.ts
	}
	return x.v
}

func (x operand) equal(v record.Value) bool {
	return record.Equal(v, x.against(v))
}

func (x operand) compare(v record.Value) (int, bool) {
	return record.Compare(v, x.against(v))
}

func ordered(operandValue record.Value, accept func(n int) bool) func(record.Value) bool {
	x := newOperand(operandValue)
	return func(v record.Value) bool {
		n, ok := x.compare(v)
		return ok && accept(n)
	}
}

func member(values []record.Value) func(record.Value) bool {
	set := make([]operand, len(values))
	for i, v := range values {
		set[i] = newOperand(v)
	}
	return func(v record.Value) bool {
		for _, x := range set {
			if x.equal(v) {
				return true
			}
		}
		return false
	}
}

// inRange reports whether v lies within [lower, upper]. ok is false when v is
// null or not comparable with both bounds.
func inRange(lower, upper record.Value) func(record.Value) (inside, ok bool) {
	lo, hi := newOperand(lower), newOperand(upper)
	return func(v record.Value) (bool, bool) {
		nl, ok := lo.compare(v)
		if !ok {
			return false, false
		}
		nh, ok := hi.compare(v)
		if !ok {
			return false, false
		}
		return nl >= 0 && nh <= 0, true
	}
}
