package behavior

import "reflect"

// Record is one handle's slice of mutable agent state. Records are plain
// JSON-shaped maps so they round-trip through persistence unchanged; numeric
// values are canonically float64 for the same reason.
type Record map[string]any

func NewRecord() Record {
	return Record{}
}

func (r Record) IsEmpty() bool {
	return len(r) == 0
}

func (r Record) Clone() Record {
	if r == nil {
		return nil
	}
	out := make(Record, len(r))
	for k, v := range r {
		if nested, ok := v.(Record); ok {
			out[k] = nested.Clone()
			continue
		}
		if nested, ok := v.(map[string]any); ok {
			out[k] = Record(nested).Clone()
			continue
		}
		out[k] = v
	}
	return out
}

// Equal compares by value. An empty record and a nil record are equal.
func (r Record) Equal(other Record) bool {
	if len(r) == 0 && len(other) == 0 {
		return true
	}
	return reflect.DeepEqual(map[string]any(r), map[string]any(other))
}

func (r Record) Float(key string, fallback float64) float64 {
	v, ok := r[key]
	if !ok {
		return fallback
	}
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int64:
		return float64(n)
	default:
		return fallback
	}
}

func (r Record) SetFloat(key string, value float64) {
	r[key] = value
}

func (r Record) Int(key string, fallback int64) int64 {
	v, ok := r[key]
	if !ok {
		return fallback
	}
	switch n := v.(type) {
	case float64:
		return int64(n)
	case int:
		return int64(n)
	case int64:
		return n
	default:
		return fallback
	}
}

// SetInt stores the value as float64 so records compare equal after a
// JSON round-trip.
func (r Record) SetInt(key string, value int64) {
	r[key] = float64(value)
}

func (r Record) Bool(key string, fallback bool) bool {
	if v, ok := r[key].(bool); ok {
		return v
	}
	return fallback
}

func (r Record) SetBool(key string, value bool) {
	r[key] = value
}

func (r Record) String(key string, fallback string) string {
	if v, ok := r[key].(string); ok {
		return v
	}
	return fallback
}

func (r Record) SetString(key string, value string) {
	r[key] = value
}
