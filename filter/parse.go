package filter

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/buger/jsonparser"

	"github.com/hugr-lab/memquery/record"
)

// Parse parses a filter document.
//
// The document is a JSON object whose keys are either field names mapping to
// an operator object ({"age": {"gt": 18}}) or the logical keys "and"/"or"
// mapping to a list of filter documents. Keys are read in document order and
// multiple keys at one level are joined with AND, as are multiple operators on
// one field.
//
// Empty input, "null" and "{}" parse to a nil Node (match everything).
//
// Error conditions:
//   - Malformed JSON or a document of the wrong shape (*ParseError)
//   - An operator outside the recognized set (*UnsupportedOperatorError)
func Parse(data []byte) (Node, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil, nil
	}

	// jsonparser reads lazily and stops at the end of the first value.
	if !json.Valid(data) {
		return nil, &ParseError{Msg: "invalid JSON"}
	}

	value, dataType, _, err := jsonparser.Get(data)
	if err != nil {
		return nil, &ParseError{Msg: "invalid JSON", Err: err}
	}
	if dataType != jsonparser.Object {
		return nil, &ParseError{Msg: fmt.Sprintf("filter must be an object, got %s", dataType)}
	}

	n, err := parseObject(value, "")
	if err != nil {
		return nil, err
	}
	if g, ok := n.(*Group); ok && g.Connective == And && len(g.Children) == 0 {
		return nil, nil
	}
	return n, nil
}

// parseObject parses one filter object. A single entry yields its node
// directly; several entries yield an AND group in document order.
func parseObject(data []byte, path string) (Node, error) {
	var nodes []Node
	err := jsonparser.ObjectEach(data, func(key, value []byte, dataType jsonparser.ValueType, _ int) error {
		name := string(key)
		keyPath := joinPath(path, name)

		switch Connective(name) {
		case And, Or:
			g, err := parseGroup(Connective(name), value, dataType, keyPath)
			if err != nil {
				return err
			}
			nodes = append(nodes, g)
			return nil
		}

		n, err := parseField(name, value, dataType, keyPath)
		if err != nil {
			return err
		}
		nodes = append(nodes, n)
		return nil
	})
	if err != nil {
		return nil, wrapParse(err, path, "invalid filter object")
	}

	if len(nodes) == 1 {
		return nodes[0], nil
	}
	return &Group{Connective: And, Children: nodes}, nil
}

func parseGroup(conn Connective, data []byte, dataType jsonparser.ValueType, path string) (*Group, error) {
	if dataType != jsonparser.Array {
		return nil, &ParseError{Path: path, Msg: fmt.Sprintf("value for %s must be a list", conn)}
	}

	g := &Group{Connective: conn}
	var (
		i       int
		itemErr error
	)
	_, err := jsonparser.ArrayEach(data, func(value []byte, dataType jsonparser.ValueType, _ int, _ error) {
		if itemErr != nil {
			return
		}
		itemPath := fmt.Sprintf("%s[%d]", path, i)
		i++
		if dataType != jsonparser.Object {
			itemErr = &ParseError{Path: itemPath, Msg: fmt.Sprintf("element of %s must be an object", conn)}
			return
		}
		child, err := parseObject(value, itemPath)
		if err != nil {
			itemErr = err
			return
		}
		g.Children = append(g.Children, child)
	})
	if itemErr != nil {
		return nil, itemErr
	}
	if err != nil {
		return nil, &ParseError{Path: path, Msg: "invalid list", Err: err}
	}
	return g, nil
}

func parseField(field string, data []byte, dataType jsonparser.ValueType, path string) (Node, error) {
	if dataType != jsonparser.Object {
		return nil, &ParseError{Path: path, Msg: "field filter must be an object of operators"}
	}

	var nodes []Node
	err := jsonparser.ObjectEach(data, func(key, value []byte, dataType jsonparser.ValueType, _ int) error {
		op := Operator(key)
		c, err := parseComparison(field, op, value, dataType, joinPath(path, string(key)))
		if err != nil {
			return err
		}
		nodes = append(nodes, c)
		return nil
	})
	if err != nil {
		return nil, wrapParse(err, path, "invalid operator object")
	}

	switch len(nodes) {
	case 0:
		return nil, &ParseError{Path: path, Msg: "no operator given"}
	case 1:
		return nodes[0], nil
	default:
		return &Group{Connective: And, Children: nodes}, nil
	}
}

func parseComparison(field string, op Operator, data []byte, dataType jsonparser.ValueType, path string) (*Comparison, error) {
	c := &Comparison{Field: field, Op: op}

	switch op.Shape() {
	case ShapeScalar:
		v, err := parseValue(data, dataType, path)
		if err != nil {
			return nil, err
		}
		if (op == OpIs || op == OpIsNot) && v.Kind() != record.Bool && !v.IsNull() {
			return nil, &ParseError{Path: path, Msg: "operand must be a boolean or null"}
		}
		c.Value = v
	case ShapeSet:
		values, err := parseValues(data, dataType, path)
		if err != nil {
			return nil, err
		}
		c.Values = values
	case ShapeRange:
		lower, upper, err := parseRange(data, dataType, path)
		if err != nil {
			return nil, err
		}
		c.Lower, c.Upper = lower, upper
	default:
		return nil, &UnsupportedOperatorError{Field: field, Operator: string(op)}
	}
	return c, nil
}

// parseValue converts one JSON scalar into a Value.
func parseValue(data []byte, dataType jsonparser.ValueType, path string) (record.Value, error) {
	switch dataType {
	case jsonparser.Null:
		return record.NullValue(), nil
	case jsonparser.String:
		s, err := jsonparser.ParseString(data)
		if err != nil {
			return record.Value{}, &ParseError{Path: path, Msg: "invalid string", Err: err}
		}
		return record.StringValue(s), nil
	case jsonparser.Number:
		f, err := jsonparser.ParseFloat(data)
		if err != nil {
			return record.Value{}, &ParseError{Path: path, Msg: "invalid number", Err: err}
		}
		return record.NumberValue(f), nil
	case jsonparser.Boolean:
		b, err := jsonparser.ParseBoolean(data)
		if err != nil {
			return record.Value{}, &ParseError{Path: path, Msg: "invalid boolean", Err: err}
		}
		return record.BoolValue(b), nil
	default:
		return record.Value{}, &ParseError{Path: path, Msg: fmt.Sprintf("operand must be a scalar, got %s", dataType)}
	}
}

func parseValues(data []byte, dataType jsonparser.ValueType, path string) ([]record.Value, error) {
	if dataType != jsonparser.Array {
		return nil, &ParseError{Path: path, Msg: "operand must be a list"}
	}
	values := []record.Value{}
	var (
		i       int
		itemErr error
	)
	_, err := jsonparser.ArrayEach(data, func(value []byte, dataType jsonparser.ValueType, _ int, _ error) {
		if itemErr != nil {
			return
		}
		v, err := parseValue(value, dataType, fmt.Sprintf("%s[%d]", path, i))
		i++
		if err != nil {
			itemErr = err
			return
		}
		values = append(values, v)
	})
	if itemErr != nil {
		return nil, itemErr
	}
	if err != nil {
		return nil, &ParseError{Path: path, Msg: "invalid list", Err: err}
	}
	return values, nil
}

// parseRange accepts {"lower": x, "upper": y} or [x, y].
func parseRange(data []byte, dataType jsonparser.ValueType, path string) (lower, upper record.Value, err error) {
	switch dataType {
	case jsonparser.Array:
		values, err := parseValues(data, dataType, path)
		if err != nil {
			return lower, upper, err
		}
		if len(values) != 2 {
			return lower, upper, &ParseError{Path: path, Msg: fmt.Sprintf("range must have 2 elements, got %d", len(values))}
		}
		return values[0], values[1], nil
	case jsonparser.Object:
		var seen int
		err := jsonparser.ObjectEach(data, func(key, value []byte, dataType jsonparser.ValueType, _ int) error {
			var target *record.Value
			switch string(key) {
			case "lower":
				target = &lower
			case "upper":
				target = &upper
			default:
				return &ParseError{Path: joinPath(path, string(key)), Msg: "unknown range bound"}
			}
			v, err := parseValue(value, dataType, joinPath(path, string(key)))
			if err != nil {
				return err
			}
			*target = v
			seen++
			return nil
		})
		if err != nil {
			return lower, upper, wrapParse(err, path, "invalid range")
		}
		if seen != 2 {
			return lower, upper, &ParseError{Path: path, Msg: "range requires lower and upper"}
		}
		return lower, upper, nil
	default:
		return lower, upper, &ParseError{Path: path, Msg: "range must be an object or a list"}
	}
}

// ParseFieldMap parses a flat JSON object of source field name to target
// field name.
func ParseFieldMap(data []byte) (FieldMap, error) {
	var m map[string]string
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, &ParseError{Msg: "invalid field map", Err: err}
	}
	return FieldMap(m), nil
}

// wrapParse passes typed errors raised inside callbacks through unchanged and
// wraps errors reported by the JSON scanner itself.
func wrapParse(err error, path, msg string) error {
	switch err.(type) {
	case *ParseError, *UnsupportedOperatorError:
		return err
	}
	return &ParseError{Path: path, Msg: msg, Err: err}
}

func joinPath(path, key string) string {
	if path == "" {
		return key
	}
	return path + "." + key
}
