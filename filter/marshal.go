package filter

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/hugr-lab/memquery/record"
)

// Marshal encodes a filter tree in the document form accepted by Parse.
// A nil node encodes as {}. Comparisons encode as {"field": {"op": operand}}
// and groups as {"and": [...]} / {"or": [...]}.
func Marshal(n Node) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeNode(&buf, n); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func nodeString(n Node) string {
	b, err := Marshal(n)
	if err != nil {
		return fmt.Sprintf("<invalid filter: %v>", err)
	}
	return string(b)
}

func writeNode(buf *bytes.Buffer, n Node) error {
	switch n := n.(type) {
	case nil:
		buf.WriteString("{}")
	case *Comparison:
		if n == nil {
			buf.WriteString("{}")
			return nil
		}
		return writeComparison(buf, n)
	case *Group:
		if n == nil {
			buf.WriteString("{}")
			return nil
		}
		conn := n.Connective
		if conn == "" {
			conn = And
		}
		buf.WriteByte('{')
		writeString(buf, string(conn))
		buf.WriteString(":[")
		for i, child := range n.Children {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeNode(buf, child); err != nil {
				return err
			}
		}
		buf.WriteString("]}")
	default:
		return fmt.Errorf("filter: unsupported node type %T", n)
	}
	return nil
}

func writeComparison(buf *bytes.Buffer, c *Comparison) error {
	buf.WriteByte('{')
	writeString(buf, c.Field)
	buf.WriteString(":{")
	writeString(buf, string(c.Op))
	buf.WriteByte(':')

	switch c.Op.Shape() {
	case ShapeScalar:
		if err := writeValue(buf, c.Value); err != nil {
			return err
		}
	case ShapeSet:
		buf.WriteByte('[')
		for i, v := range c.Values {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeValue(buf, v); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case ShapeRange:
		buf.WriteString(`{"lower":`)
		if err := writeValue(buf, c.Lower); err != nil {
			return err
		}
		buf.WriteString(`,"upper":`)
		if err := writeValue(buf, c.Upper); err != nil {
			return err
		}
		buf.WriteByte('}')
	default:
		return &UnsupportedOperatorError{Field: c.Field, Operator: string(c.Op)}
	}

	buf.WriteString("}}")
	return nil
}

func writeValue(buf *bytes.Buffer, v record.Value) error {
	b, err := v.MarshalJSON()
	if err != nil {
		return err
	}
	buf.Write(b)
	return nil
}

func writeString(buf *bytes.Buffer, s string) {
	b, _ := json.Marshal(s)
	buf.Write(b)
}
