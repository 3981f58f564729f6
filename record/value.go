// Package record defines the value model shared by the filter and query packages.
//
// A record is anything that can answer "what is the value of field X". Values
// belong to one of five kinds (null, number, string, boolean, timestamp); the
// engine never looks at Go types directly, so any storage representation can
// be queried once it exposes a Record.
package record

import (
	"encoding/json"
	"math"
	"reflect"
	"strconv"
	"time"
)

// Kind identifies the category of a Value.
//
// The declaration order is significant: it is the precedence used to order
// values of different kinds (number < string < boolean < timestamp).
type Kind uint8

const (
	Null Kind = iota
	Number
	String
	Bool
	Timestamp
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case Null:
		return "null"
	case Number:
		return "number"
	case String:
		return "string"
	case Bool:
		return "boolean"
	case Timestamp:
		return "timestamp"
	default:
		return "kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Ordered reports whether values of the kind support <, <=, >, >=.
func (k Kind) Ordered() bool {
	return k == Number || k == String || k == Timestamp
}

// Value is an immutable tagged value. The zero Value is null.
type Value struct {
	kind Kind
	num  float64
	str  string
	b    bool
	ts   time.Time
}

// NullValue returns the null value.
func NullValue() Value { return Value{} }

// NumberValue returns a number value.
func NumberValue(f float64) Value { return Value{kind: Number, num: f} }

// StringValue returns a string value.
func StringValue(s string) Value { return Value{kind: String, str: s} }

// BoolValue returns a boolean value.
func BoolValue(b bool) Value { return Value{kind: Bool, b: b} }

// TimestampValue returns a timestamp value.
func TimestampValue(t time.Time) Value { return Value{kind: Timestamp, ts: t} }

// Kind returns the value kind.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether v is null.
func (v Value) IsNull() bool { return v.kind == Null }

// AsNumber returns the number payload (0 for other kinds).
func (v Value) AsNumber() float64 { return v.num }

// AsString returns the string payload ("" for other kinds).
func (v Value) AsString() string { return v.str }

// AsBool returns the boolean payload (false for other kinds).
func (v Value) AsBool() bool { return v.b }

// AsTime returns the timestamp payload (zero time for other kinds).
func (v Value) AsTime() time.Time { return v.ts }

// Interface returns the payload as a plain Go value:
// nil, float64, string, bool or time.Time.
func (v Value) Interface() any {
	switch v.kind {
	case Number:
		return v.num
	case String:
		return v.str
	case Bool:
		return v.b
	case Timestamp:
		return v.ts
	default:
		return nil
	}
}

// String formats the value for logs and error messages.
func (v Value) String() string {
	switch v.kind {
	case Number:
		return strconv.FormatFloat(v.num, 'g', -1, 64)
	case String:
		return strconv.Quote(v.str)
	case Bool:
		return strconv.FormatBool(v.b)
	case Timestamp:
		return v.ts.Format(time.RFC3339Nano)
	default:
		return "null"
	}
}

// MarshalJSON encodes the value in its wire form. Timestamps are written as
// RFC 3339 strings; non-finite numbers have no JSON form and become null.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case Number:
		if math.IsNaN(v.num) || math.IsInf(v.num, 0) {
			return []byte("null"), nil
		}
		return []byte(strconv.FormatFloat(v.num, 'g', -1, 64)), nil
	case String:
		return json.Marshal(v.str)
	case Bool:
		return []byte(strconv.FormatBool(v.b)), nil
	case Timestamp:
		return json.Marshal(v.ts.Format(time.RFC3339Nano))
	default:
		return []byte("null"), nil
	}
}

// ValueOf converts a Go value into a Value.
//
// Integers, unsigned integers and floats become numbers, time.Time becomes a
// timestamp, pointers are dereferenced (nil pointers are null) and named types
// are resolved through their underlying kind. Anything else is null.
func ValueOf(x any) Value {
	switch t := x.(type) {
	case nil:
		return Value{}
	case Value:
		return t
	case *Value:
		if t == nil {
			return Value{}
		}
		return *t
	case string:
		return StringValue(t)
	case bool:
		return BoolValue(t)
	case float64:
		return NumberValue(t)
	case float32:
		return NumberValue(float64(t))
	case int:
		return NumberValue(float64(t))
	case int8:
		return NumberValue(float64(t))
	case int16:
		return NumberValue(float64(t))
	case int32:
		return NumberValue(float64(t))
	case int64:
		return NumberValue(float64(t))
	case uint:
		return NumberValue(float64(t))
	case uint8:
		return NumberValue(float64(t))
	case uint16:
		return NumberValue(float64(t))
	case uint32:
		return NumberValue(float64(t))
	case uint64:
		return NumberValue(float64(t))
	case time.Time:
		return TimestampValue(t)
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return StringValue(t.String())
		}
		return NumberValue(f)
	}
	return valueOfReflect(reflect.ValueOf(x))
}

func valueOfReflect(rv reflect.Value) Value {
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return Value{}
		}
		return ValueOf(rv.Elem().Interface())
	case reflect.String:
		return StringValue(rv.String())
	case reflect.Bool:
		return BoolValue(rv.Bool())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return NumberValue(float64(rv.Int()))
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return NumberValue(float64(rv.Uint()))
	case reflect.Float32, reflect.Float64:
		return NumberValue(rv.Float())
	case reflect.Struct:
		if rv.Type().ConvertibleTo(reflect.TypeOf(time.Time{})) {
			return TimestampValue(rv.Convert(reflect.TypeOf(time.Time{})).Interface().(time.Time))
		}
	}
	return Value{}
}
