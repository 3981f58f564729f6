package query

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/buger/jsonparser"

	"github.com/hugr-lab/memquery/filter"
)

// Parse parses a query document:
//
//	{
//	    "filter":  {"isVerified": {"is": true}},
//	    "sorting": [{"field": "first", "direction": "DESC", "nulls": "NULLS_LAST"}],
//	    "paging":  {"offset": 1, "limit": 2}
//	}
//
// Every key is optional. Direction and nulls are case-insensitive. Empty input
// and "null" parse to an empty query.
//
// Error conditions:
//   - Malformed JSON or unknown keys (*filter.ParseError)
//   - Unknown filter operator (*filter.UnsupportedOperatorError)
//   - Negative paging bounds, unknown direction (*InvalidArgumentError)
func Parse(data []byte) (*Query, error) {
	q := &Query{}
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return q, nil
	}

	// jsonparser reads lazily and stops at the end of the first value.
	if !json.Valid(data) {
		return nil, &filter.ParseError{Msg: "invalid JSON"}
	}

	value, dataType, _, err := jsonparser.Get(data)
	if err != nil {
		return nil, &filter.ParseError{Msg: "invalid JSON", Err: err}
	}
	if dataType != jsonparser.Object {
		return nil, &filter.ParseError{Msg: fmt.Sprintf("query must be an object, got %s", dataType)}
	}

	err = jsonparser.ObjectEach(value, func(key, value []byte, dataType jsonparser.ValueType, _ int) error {
		switch k := string(key); k {
		case "filter":
			if dataType == jsonparser.Null {
				return nil
			}
			n, err := filter.Parse(value)
			if err != nil {
				return prefixPath(err, k)
			}
			q.Filter = n
		case "sorting":
			spec, err := parseSorting(value, dataType)
			if err != nil {
				return err
			}
			q.Sorting = spec
		case "paging":
			p, err := parsePaging(value, dataType)
			if err != nil {
				return err
			}
			q.Paging = p
		default:
			return &filter.ParseError{Path: k, Msg: "unknown query key"}
		}
		return nil
	})
	if err != nil {
		return nil, passParse(err, "", "invalid query object")
	}

	if err := q.Validate(); err != nil {
		return nil, err
	}
	return q, nil
}

func parseSorting(data []byte, dataType jsonparser.ValueType) (SortSpec, error) {
	switch dataType {
	case jsonparser.Null:
		return nil, nil
	case jsonparser.Array:
	default:
		return nil, &filter.ParseError{Path: "sorting", Msg: "sorting must be a list"}
	}

	spec := SortSpec{}
	var (
		i       int
		itemErr error
	)
	_, err := jsonparser.ArrayEach(data, func(value []byte, dataType jsonparser.ValueType, _ int, _ error) {
		if itemErr != nil {
			return
		}
		path := fmt.Sprintf("sorting[%d]", i)
		i++
		c, err := parseCriterion(value, dataType, path)
		if err != nil {
			itemErr = err
			return
		}
		spec = append(spec, c)
	})
	if itemErr != nil {
		return nil, itemErr
	}
	if err != nil {
		return nil, &filter.ParseError{Path: "sorting", Msg: "invalid list", Err: err}
	}
	return spec, nil
}

func parseCriterion(data []byte, dataType jsonparser.ValueType, path string) (SortCriterion, error) {
	var c SortCriterion
	if dataType != jsonparser.Object {
		return c, &filter.ParseError{Path: path, Msg: "sort criterion must be an object"}
	}

	err := jsonparser.ObjectEach(data, func(key, value []byte, dataType jsonparser.ValueType, _ int) error {
		keyPath := path + "." + string(key)
		if dataType != jsonparser.String {
			return &filter.ParseError{Path: keyPath, Msg: "must be a string"}
		}
		s, err := jsonparser.ParseString(value)
		if err != nil {
			return &filter.ParseError{Path: keyPath, Msg: "invalid string", Err: err}
		}

		switch string(key) {
		case "field":
			c.Field = s
		case "direction":
			c.Direction = Direction(strings.ToUpper(s))
		case "nulls":
			c.Nulls = NullsPlacement(strings.ToUpper(s))
		default:
			return &filter.ParseError{Path: keyPath, Msg: "unknown sort key"}
		}
		return nil
	})
	if err != nil {
		return c, passParse(err, path, "invalid sort criterion")
	}
	if c.Field == "" {
		return c, &filter.ParseError{Path: path, Msg: "field is required"}
	}
	return c, nil
}

func parsePaging(data []byte, dataType jsonparser.ValueType) (*Paging, error) {
	switch dataType {
	case jsonparser.Null:
		return nil, nil
	case jsonparser.Object:
	default:
		return nil, &filter.ParseError{Path: "paging", Msg: "paging must be an object"}
	}

	p := &Paging{}
	err := jsonparser.ObjectEach(data, func(key, value []byte, dataType jsonparser.ValueType, _ int) error {
		keyPath := "paging." + string(key)
		if dataType == jsonparser.Null {
			return nil
		}
		if dataType != jsonparser.Number {
			return &filter.ParseError{Path: keyPath, Msg: "must be an integer"}
		}
		n, err := jsonparser.ParseInt(value)
		if err != nil {
			return &filter.ParseError{Path: keyPath, Msg: "must be an integer", Err: err}
		}

		switch string(key) {
		case "offset":
			p.Offset = int(n)
		case "limit":
			limit := int(n)
			p.Limit = &limit
		default:
			return &filter.ParseError{Path: keyPath, Msg: "unknown paging key"}
		}
		return nil
	})
	if err != nil {
		return nil, passParse(err, "paging", "invalid paging object")
	}
	return p, nil
}

// prefixPath re-roots a filter parse error below the given query key.
func prefixPath(err error, key string) error {
	var pe *filter.ParseError
	if !errors.As(err, &pe) {
		return err
	}
	out := *pe
	if out.Path == "" {
		out.Path = key
	} else {
		out.Path = key + "." + out.Path
	}
	return &out
}

func passParse(err error, path, msg string) error {
	var (
		pe *filter.ParseError
		ue *filter.UnsupportedOperatorError
	)
	if errors.As(err, &pe) || errors.As(err, &ue) {
		return err
	}
	return &filter.ParseError{Path: path, Msg: msg, Err: err}
}

// MarshalJSON encodes q in the form accepted by Parse. Absent components are
// omitted; sort criteria are written with explicit direction and nulls.
func (q Query) MarshalJSON() ([]byte, error) {
	var (
		buf   bytes.Buffer
		comma bool
	)
	field := func(name string) {
		if comma {
			buf.WriteByte(',')
		}
		comma = true
		buf.WriteString(`"` + name + `":`)
	}

	buf.WriteByte('{')
	if q.Filter != nil {
		b, err := filter.Marshal(q.Filter)
		if err != nil {
			return nil, err
		}
		field("filter")
		buf.Write(b)
	}
	if q.Sorting != nil {
		spec := make(SortSpec, len(q.Sorting))
		for i, c := range q.Sorting {
			spec[i] = c.normalized()
		}
		b, err := json.Marshal(spec)
		if err != nil {
			return nil, err
		}
		field("sorting")
		buf.Write(b)
	}
	if q.Paging != nil {
		b, err := json.Marshal(q.Paging)
		if err != nil {
			return nil, err
		}
		field("paging")
		buf.Write(b)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON implements json.Unmarshaler using Parse.
func (q *Query) UnmarshalJSON(data []byte) error {
	parsed, err := Parse(data)
	if err != nil {
		return err
	}
	*q = *parsed
	return nil
}

func (c SortCriterion) normalized() SortCriterion {
	if c.Direction == "" {
		c.Direction = Asc
	}
	if c.Nulls == "" {
		c.Nulls = NullsLast
	}
	return c
}
