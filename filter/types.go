package filter

import (
	"github.com/hugr-lab/memquery/record"
)

// Operator names a comparison applied to a single field.
type Operator string

const (
	OpEq         Operator = "eq"
	OpNeq        Operator = "neq"
	OpGt         Operator = "gt"
	OpGte        Operator = "gte"
	OpLt         Operator = "lt"
	OpLte        Operator = "lte"
	OpIn         Operator = "in"
	OpNotIn      Operator = "notIn"
	OpLike       Operator = "like"
	OpNotLike    Operator = "notLike"
	OpILike      Operator = "iLike"
	OpNotILike   Operator = "notILike"
	OpIs         Operator = "is"
	OpIsNot      Operator = "isNot"
	OpBetween    Operator = "between"
	OpNotBetween Operator = "notBetween"
)

// OperandShape describes which operand fields of a Comparison an operator reads.
type OperandShape int

const (
	// ShapeInvalid is returned for unknown operators.
	ShapeInvalid OperandShape = iota
	// ShapeScalar operators read Comparison.Value.
	ShapeScalar
	// ShapeSet operators read Comparison.Values.
	ShapeSet
	// ShapeRange operators read Comparison.Lower and Comparison.Upper.
	ShapeRange
)

// Shape returns the operand shape of the operator.
func (op Operator) Shape() OperandShape {
	switch op {
	case OpEq, OpNeq, OpGt, OpGte, OpLt, OpLte,
		OpLike, OpNotLike, OpILike, OpNotILike, OpIs, OpIsNot:
		return ShapeScalar
	case OpIn, OpNotIn:
		return ShapeSet
	case OpBetween, OpNotBetween:
		return ShapeRange
	default:
		return ShapeInvalid
	}
}

// Valid reports whether op is a recognized operator.
func (op Operator) Valid() bool {
	return op.Shape() != ShapeInvalid
}

// Connective joins the children of a Group.
type Connective string

const (
	And Connective = "and"
	Or  Connective = "or"
)

// Node is a filter expression tree node: either a *Comparison or a *Group.
// A nil Node matches every record.
type Node interface {
	// String returns the JSON wire form of the node.
	String() string

	nodeMarker()
}

// Comparison tests one field against an operand.
type Comparison struct {
	Field string
	Op    Operator

	// Value is the operand of scalar operators.
	Value record.Value
	// Values is the operand of in / notIn.
	Values []record.Value
	// Lower and Upper are the inclusive bounds of between / notBetween.
	Lower record.Value
	Upper record.Value
}

func (*Comparison) nodeMarker() {}

// String implements Node.
func (c *Comparison) String() string { return nodeString(c) }

// Group combines its children with a connective. Children are evaluated in
// order. An empty AND matches everything; an empty OR matches nothing.
type Group struct {
	Connective Connective
	Children   []Node
}

func (*Group) nodeMarker() {}

// String implements Node.
func (g *Group) String() string { return nodeString(g) }

// Compare builds a scalar comparison, converting operand with record.ValueOf.
func Compare(field string, op Operator, operand any) *Comparison {
	return &Comparison{Field: field, Op: op, Value: record.ValueOf(operand)}
}

// Eq builds field = operand.
func Eq(field string, operand any) *Comparison { return Compare(field, OpEq, operand) }

// Neq builds field != operand.
func Neq(field string, operand any) *Comparison { return Compare(field, OpNeq, operand) }

// Is builds field IS operand; operand is a bool or nil.
func Is(field string, operand any) *Comparison { return Compare(field, OpIs, operand) }

// In builds a set membership test.
func In(field string, operands ...any) *Comparison {
	return &Comparison{Field: field, Op: OpIn, Values: valuesOf(operands)}
}

// NotIn builds a negated set membership test.
func NotIn(field string, operands ...any) *Comparison {
	return &Comparison{Field: field, Op: OpNotIn, Values: valuesOf(operands)}
}

// Between builds an inclusive range test.
func Between(field string, lower, upper any) *Comparison {
	return &Comparison{Field: field, Op: OpBetween, Lower: record.ValueOf(lower), Upper: record.ValueOf(upper)}
}

// AllOf joins nodes with AND.
func AllOf(children ...Node) *Group { return &Group{Connective: And, Children: children} }

// AnyOf joins nodes with OR.
func AnyOf(children ...Node) *Group { return &Group{Connective: Or, Children: children} }

func valuesOf(operands []any) []record.Value {
	values := make([]record.Value, len(operands))
	for i, o := range operands {
		values[i] = record.ValueOf(o)
	}
	return values
}
