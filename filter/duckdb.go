package filter

import (
	"strconv"
	"strings"

	"github.com/hugr-lab/memquery/record"
)

// DuckDBEncoder encodes filter trees to DuckDB SQL boolean expressions.
//
// The generated SQL follows the in-memory semantics wherever SQL allows it:
// neq/notIn/isNot match NULL columns, between/notBetween/like/notLike never
// do. Comparisons between values of different kinds cannot be reproduced and
// are left to DuckDB.
type DuckDBEncoder struct {
	opts *EncoderOptions
}

// NewDuckDBEncoder creates a new DuckDB SQL encoder.
// If opts is nil, default options are used.
func NewDuckDBEncoder(opts *EncoderOptions) *DuckDBEncoder {
	if opts == nil {
		opts = &EncoderOptions{}
	}
	return &DuckDBEncoder{opts: opts}
}

// Encode converts a filter tree to a WHERE clause body, without the WHERE
// keyword. A nil node encodes to "TRUE".
func (e *DuckDBEncoder) Encode(n Node) (string, error) {
	switch n := n.(type) {
	case nil:
		return "TRUE", nil
	case *Comparison:
		if n == nil {
			return "TRUE", nil
		}
		return e.encodeComparison(n)
	case *Group:
		if n == nil {
			return "TRUE", nil
		}
		return e.encodeGroup(n)
	default:
		return "", &UnsupportedOperatorError{Operator: n.String()}
	}
}

// Column returns the SQL for a field reference after mapping.
func (e *DuckDBEncoder) Column(field string) string {
	// Check for expression mapping first (takes precedence)
	if expr, ok := e.opts.ColumnExpressions[field]; ok {
		return expr
	}
	return quoteIdentifier(e.opts.ColumnMapping.Field(field))
}

func (e *DuckDBEncoder) encodeGroup(g *Group) (string, error) {
	op, empty := " AND ", "TRUE"
	switch g.Connective {
	case And, "":
	case Or:
		op, empty = " OR ", "FALSE"
	default:
		return "", &UnsupportedOperatorError{Operator: string(g.Connective)}
	}

	if len(g.Children) == 0 {
		return empty, nil
	}

	parts := make([]string, 0, len(g.Children))
	for _, child := range g.Children {
		encoded, err := e.Encode(child)
		if err != nil {
			return "", err
		}
		parts = append(parts, encoded)
	}
	if len(parts) == 1 {
		return parts[0], nil
	}
	return "(" + strings.Join(parts, op) + ")", nil
}

func (e *DuckDBEncoder) encodeComparison(c *Comparison) (string, error) {
	col := e.Column(c.Field)

	switch c.Op {
	case OpEq, OpIs:
		if c.Value.IsNull() {
			return col + " IS NULL", nil
		}
		return col + " = " + FormatValue(c.Value), nil
	case OpNeq, OpIsNot:
		if c.Value.IsNull() {
			return col + " IS NOT NULL", nil
		}
		return col + " IS DISTINCT FROM " + FormatValue(c.Value), nil
	case OpGt:
		return col + " > " + FormatValue(c.Value), nil
	case OpGte:
		return col + " >= " + FormatValue(c.Value), nil
	case OpLt:
		return col + " < " + FormatValue(c.Value), nil
	case OpLte:
		return col + " <= " + FormatValue(c.Value), nil
	case OpIn:
		return encodeIn(col, c.Values, false), nil
	case OpNotIn:
		return encodeIn(col, c.Values, true), nil
	case OpLike, OpNotLike, OpILike, OpNotILike:
		return encodeLike(col, c.Op, c.Value), nil
	case OpBetween:
		return col + " BETWEEN " + FormatValue(c.Lower) + " AND " + FormatValue(c.Upper), nil
	case OpNotBetween:
		return col + " NOT BETWEEN " + FormatValue(c.Lower) + " AND " + FormatValue(c.Upper), nil
	default:
		return "", &UnsupportedOperatorError{Field: c.Field, Operator: string(c.Op)}
	}
}

// encodeIn encodes IN/NOT IN. NULL members are handled with IS NULL because
// SQL IN never matches NULL.
func encodeIn(col string, values []record.Value, notIn bool) string {
	var (
		members []string
		hasNull bool
	)
	for _, v := range values {
		if v.IsNull() {
			hasNull = true
			continue
		}
		members = append(members, FormatValue(v))
	}

	if !notIn {
		var parts []string
		if len(members) > 0 {
			parts = append(parts, col+" IN ("+strings.Join(members, ", ")+")")
		}
		if hasNull {
			parts = append(parts, col+" IS NULL")
		}
		switch len(parts) {
		case 0:
			return "FALSE"
		case 1:
			return parts[0]
		default:
			return "(" + strings.Join(parts, " OR ") + ")"
		}
	}

	if len(members) == 0 {
		if hasNull {
			return col + " IS NOT NULL"
		}
		return "TRUE"
	}
	notInList := col + " NOT IN (" + strings.Join(members, ", ") + ")"
	if hasNull {
		return "(" + col + " IS NOT NULL AND " + notInList + ")"
	}
	return "(" + col + " IS NULL OR " + notInList + ")"
}

// encodeLike encodes like operators. Only % is a wildcard in filter
// patterns, so SQL's _ and the escape character are escaped.
func encodeLike(col string, op Operator, pattern record.Value) string {
	if pattern.Kind() != record.String {
		return "FALSE"
	}
	escaped := strings.NewReplacer(`\`, `\\`, `_`, `\_`).Replace(pattern.AsString())
	literal := quoteLiteral(escaped) + ` ESCAPE '\'`

	switch op {
	case OpNotLike:
		return col + " NOT LIKE " + literal
	case OpILike:
		return col + " ILIKE " + literal
	case OpNotILike:
		return col + " NOT ILIKE " + literal
	default:
		return col + " LIKE " + literal
	}
}

// FormatValue formats a value as a DuckDB SQL literal.
func FormatValue(v record.Value) string {
	switch v.Kind() {
	case record.Number:
		return strconv.FormatFloat(v.AsNumber(), 'g', -1, 64)
	case record.String:
		return quoteLiteral(v.AsString())
	case record.Bool:
		if v.AsBool() {
			return "TRUE"
		}
		return "FALSE"
	case record.Timestamp:
		return "TIMESTAMPTZ '" + v.AsTime().UTC().Format("2006-01-02 15:04:05.999999") + "+00'"
	default:
		return "NULL"
	}
}
