package ordered

import (
	"encoding/json"
	"sort"
)

// FromPlain converts values produced by encoding/json (or hand-built
// map[string]any trees) into ordered values. Go maps carry no order, so keys
// are sorted.
func FromPlain(value any) any {
	switch typed := value.(type) {
	case *Map:
		out := NewMap(typed.Len())
		typed.Range(func(key string, v any) bool {
			out.Set(key, FromPlain(v))
			return true
		})
		return out
	case map[string]any:
		keys := make([]string, 0, len(typed))
		for key := range typed {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		out := NewMap(len(keys))
		for _, key := range keys {
			out.Set(key, FromPlain(typed[key]))
		}
		return out
	case []any:
		out := make([]any, len(typed))
		for idx, v := range typed {
			out[idx] = FromPlain(v)
		}
		return out
	case []string:
		out := make([]any, len(typed))
		for idx, v := range typed {
			out[idx] = v
		}
		return out
	case json.Number:
		if f, err := typed.Float64(); err == nil {
			return f
		}
		return typed.String()
	case int:
		return float64(typed)
	case int32:
		return float64(typed)
	case int64:
		return float64(typed)
	case float32:
		return float64(typed)
	default:
		return typed
	}
}

// ToPlain converts ordered values back into map[string]any trees, the shape
// most validation libraries expect.
func ToPlain(value any) any {
	switch typed := value.(type) {
	case *Map:
		out := make(map[string]any, typed.Len())
		typed.Range(func(key string, v any) bool {
			out[key] = ToPlain(v)
			return true
		})
		return out
	case []any:
		out := make([]any, len(typed))
		for idx, v := range typed {
			out[idx] = ToPlain(v)
		}
		return out
	case int64:
		return float64(typed)
	case int:
		return float64(typed)
	default:
		return typed
	}
}
