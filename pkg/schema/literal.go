package schema

import (
	"math"
	"strconv"
	"strings"

	"github.com/goliatone/go-configform/pkg/ordered"
)

// LiteralString renders a decoded JSON literal the way form inputs carry it:
// strings verbatim, numbers in shortest round-trip form, booleans and null as
// their keywords. Enum matching compares raw input against this rendering.
func LiteralString(value any) string {
	switch typed := value.(type) {
	case nil:
		return "null"
	case string:
		return typed
	case bool:
		if typed {
			return "true"
		}
		return "false"
	case float64:
		return formatNumber(typed)
	case float32:
		return formatNumber(float64(typed))
	case int:
		return strconv.Itoa(typed)
	case int64:
		return strconv.FormatInt(typed, 10)
	case int32:
		return strconv.FormatInt(int64(typed), 10)
	case []any:
		parts := make([]string, len(typed))
		for idx, entry := range typed {
			if entry == nil {
				continue
			}
			parts[idx] = LiteralString(entry)
		}
		return strings.Join(parts, ",")
	case *ordered.Map, map[string]any:
		return "[object Object]"
	default:
		return ""
	}
}

// formatNumber switches to exponent form below 1e-6 and from 1e21, with the
// exponent written without padding ("1e-7", "1e+21").
func formatNumber(value float64) string {
	switch {
	case math.IsNaN(value):
		return "NaN"
	case math.IsInf(value, 1):
		return "Infinity"
	case math.IsInf(value, -1):
		return "-Infinity"
	case value == 0:
		return "0"
	}

	abs := math.Abs(value)
	if abs >= 1e21 || abs < 1e-6 {
		text := strconv.FormatFloat(value, 'e', -1, 64)
		mantissa, exponent, _ := strings.Cut(text, "e")
		sign := exponent[:1]
		digits := strings.TrimLeft(exponent[1:], "0")
		if digits == "" {
			digits = "0"
		}
		return mantissa + "e" + sign + digits
	}
	return strconv.FormatFloat(value, 'f', -1, 64)
}
