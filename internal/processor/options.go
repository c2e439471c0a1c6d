package processor

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Options carries processor-specific settings. Values usually come from
// decoded JSON or YAML, so numbers may arrive as float64, ints or strings.
type Options map[string]any

// Has reports whether key is set.
func (o Options) Has(key string) bool {
	_, ok := o[key]
	return ok
}

// String returns the option as a string, or def when unset or empty.
func (o Options) String(key, def string) string {
	v, ok := o[key]
	if !ok || v == nil {
		return def
	}
	s := strings.TrimSpace(fmt.Sprint(v))
	if s == "" {
		return def
	}
	return s
}

// Int returns the option as an int, or def when unset. Non-integral values
// are an error.
func (o Options) Int(key string, def int) (int, error) {
	v, ok := o[key]
	if !ok || v == nil {
		return def, nil
	}
	n, err := toInt(v)
	if err != nil {
		return 0, fmt.Errorf("option %q: %w", key, err)
	}
	return n, nil
}

// Float returns the option as a float64, or def when unset.
func (o Options) Float(key string, def float64) (float64, error) {
	v, ok := o[key]
	if !ok || v == nil {
		return def, nil
	}
	f, err := toFloat(v)
	if err != nil {
		return 0, fmt.Errorf("option %q: %w", key, err)
	}
	return f, nil
}

// Bool returns the option as a bool, or def when unset.
func (o Options) Bool(key string, def bool) (bool, error) {
	v, ok := o[key]
	if !ok || v == nil {
		return def, nil
	}
	switch b := v.(type) {
	case bool:
		return b, nil
	case string:
		parsed, err := strconv.ParseBool(b)
		if err != nil {
			return false, fmt.Errorf("option %q: %w", key, err)
		}
		return parsed, nil
	}
	return false, fmt.Errorf("option %q: unsupported type %T", key, v)
}

// IntSlice returns the option as a list of ints. A comma separated string is
// accepted too.
func (o Options) IntSlice(key string) ([]int, error) {
	v, ok := o[key]
	if !ok || v == nil {
		return nil, nil
	}
	var items []any
	switch s := v.(type) {
	case []int:
		return s, nil
	case []any:
		items = s
	case string:
		for _, part := range strings.Split(s, ",") {
			if part = strings.TrimSpace(part); part != "" {
				items = append(items, part)
			}
		}
	default:
		items = []any{v}
	}
	out := make([]int, 0, len(items))
	for _, item := range items {
		n, err := toInt(item)
		if err != nil {
			return nil, fmt.Errorf("option %q: %w", key, err)
		}
		out = append(out, n)
	}
	return out, nil
}

// Decode round-trips the option through JSON into dst, which lets callers
// describe structured options with tagged structs.
func (o Options) Decode(key string, dst any) error {
	v, ok := o[key]
	if !ok || v == nil {
		return nil
	}
	if s, isString := v.(string); isString {
		if err := json.Unmarshal([]byte(s), dst); err != nil {
			return fmt.Errorf("option %q: %w", key, err)
		}
		return nil
	}
	raw, err := json.Marshal(normalize(v))
	if err != nil {
		return fmt.Errorf("option %q: %w", key, err)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("option %q: %w", key, err)
	}
	return nil
}

// normalize turns map[any]any, as produced by some YAML decoders, into
// map[string]any so it can be marshalled as JSON.
func normalize(v any) any {
	switch t := v.(type) {
	case map[any]any:
		m := make(map[string]any, len(t))
		for k, val := range t {
			m[fmt.Sprint(k)] = normalize(val)
		}
		return m
	case map[string]any:
		m := make(map[string]any, len(t))
		for k, val := range t {
			m[k] = normalize(val)
		}
		return m
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = normalize(val)
		}
		return out
	}
	return v
}

func toInt(v any) (int, error) {
	switch n := v.(type) {
	case int:
		return n, nil
	case int32:
		return int(n), nil
	case int64:
		return int(n), nil
	case float64:
		if n != float64(int(n)) {
			return 0, fmt.Errorf("%v is not an integer", n)
		}
		return int(n), nil
	case json.Number:
		i, err := n.Int64()
		return int(i), err
	case string:
		return strconv.Atoi(strings.TrimSpace(n))
	}
	return 0, fmt.Errorf("unsupported type %T", v)
}

func toFloat(v any) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case json.Number:
		return n.Float64()
	case string:
		return strconv.ParseFloat(strings.TrimSpace(n), 64)
	}
	return 0, fmt.Errorf("unsupported type %T", v)
}
