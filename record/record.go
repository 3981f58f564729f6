package record

// Record is a single structurally typed data item.
//
// Get returns the value stored under field and whether the field exists.
// A missing field and a present null are treated identically by every
// operation of the engine.
type Record interface {
	Get(field string) (Value, bool)
}

// Lookup returns the value of field, or null when the field is absent.
func Lookup(r Record, field string) Value {
	v, ok := r.Get(field)
	if !ok {
		return Value{}
	}
	return v
}

// Map is a Record backed by a plain Go map. Values are converted with ValueOf
// on every access, so any Go type ValueOf understands may be stored.
type Map map[string]any

// Get implements Record.
func (m Map) Get(field string) (Value, bool) {
	raw, ok := m[field]
	if !ok {
		return Value{}, false
	}
	return ValueOf(raw), true
}

// Values is a Record backed by already converted values.
type Values map[string]Value

// Get implements Record.
func (m Values) Get(field string) (Value, bool) {
	v, ok := m[field]
	return v, ok
}
