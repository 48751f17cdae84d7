package parser

import (
	"encoding/json"
	"strconv"
)

// Helpers for reading loosely-typed values out of decoded log messages. The
// Arena client is not consistent about numeric types or nesting, so every
// accessor reports presence alongside the value.

// ValueAt walks a key path through nested objects.
func ValueAt(obj map[string]interface{}, path ...string) (interface{}, bool) {
	var current interface{} = obj
	for _, key := range path {
		m, ok := current.(map[string]interface{})
		if !ok {
			return nil, false
		}
		current, ok = m[key]
		if !ok {
			return nil, false
		}
	}
	return current, true
}

// ValueMatches reports whether the value nested at path exists and equals
// expectation.
func ValueMatches(obj map[string]interface{}, expectation interface{}, path ...string) bool {
	value, ok := ValueAt(obj, path...)
	return ok && value == expectation
}

func StringAt(obj map[string]interface{}, path ...string) (string, bool) {
	value, ok := ValueAt(obj, path...)
	if !ok {
		return "", false
	}
	s, ok := value.(string)
	return s, ok
}

// IntAt reads an integer regardless of whether the decoder produced a float64
// or the log carried the number as a string.
func IntAt(obj map[string]interface{}, path ...string) (int, bool) {
	value, ok := ValueAt(obj, path...)
	if !ok {
		return 0, false
	}
	return AsInt(value)
}

func MapAt(obj map[string]interface{}, path ...string) (map[string]interface{}, bool) {
	value, ok := ValueAt(obj, path...)
	if !ok {
		return nil, false
	}
	m, ok := value.(map[string]interface{})
	return m, ok
}

func SliceAt(obj map[string]interface{}, path ...string) ([]interface{}, bool) {
	value, ok := ValueAt(obj, path...)
	if !ok {
		return nil, false
	}
	s, ok := value.([]interface{})
	return s, ok
}

// AsInt converts a decoded JSON value to an int. Payloads are decoded with
// UseNumber, and draft messages additionally carry numbers as strings.
func AsInt(value interface{}) (int, bool) {
	switch v := value.(type) {
	case json.Number:
		if n, err := strconv.Atoi(v.String()); err == nil {
			return n, true
		}
		if f, err := v.Float64(); err == nil {
			return int(f), true
		}
		return 0, false
	case float64:
		return int(v), true
	case int:
		return v, true
	case string:
		n, err := strconv.Atoi(v)
		if err != nil {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}

// IntsAt reads a list of integers at path, skipping elements that are not
// numeric.
func IntsAt(obj map[string]interface{}, path ...string) ([]int, bool) {
	raw, ok := SliceAt(obj, path...)
	if !ok {
		return nil, false
	}
	ints := make([]int, 0, len(raw))
	for _, v := range raw {
		if n, ok := AsInt(v); ok {
			ints = append(ints, n)
		}
	}
	return ints, true
}
