package resolve

import (
	"math"
	"math/big"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/goliatone/go-configform/pkg/schema"
)

var decimalPattern = regexp.MustCompile(`^[+-]?(?:[0-9]+\.?[0-9]*|\.[0-9]+)(?:[eE][+-]?[0-9]+)?$`)

// Coerce converts the raw input of a leaf into its typed value. ok is false
// when the field carries no value and must be omitted.
func Coerce(leaf *schema.LeafNode, in Input, path schema.Path, required bool) (any, bool, error) {
	raw, present := in.Value()
	if !present {
		if required {
			return nil, false, NewError(CodeRequiredFieldMissing, path)
		}
		return nil, false, nil
	}

	if leaf.HasEnum() {
		for _, entry := range leaf.Enum {
			if schema.LiteralString(entry) == raw {
				return entry, true, nil
			}
		}
		return nil, false, NewError(CodeInvalidEnumValue, path)
	}

	switch leaf.Type {
	case schema.LeafInteger:
		value, ok := ParseNumber(raw)
		if !ok || value != math.Trunc(value) {
			return nil, false, NewError(CodeExpectedInteger, path)
		}
		return integerValue(value), true, nil
	case schema.LeafNumber:
		value, ok := ParseNumber(raw)
		if !ok {
			return nil, false, NewError(CodeExpectedNumber, path)
		}
		if value == 0 {
			value = 0
		}
		return value, true, nil
	case schema.LeafBoolean:
		switch raw {
		case "true":
			return true, true, nil
		case "false":
			return false, true, nil
		default:
			return nil, false, NewError(CodeExpectedBoolean, path)
		}
	default:
		return raw, true, nil
	}
}

// ParseNumber converts user text to a finite number. Surrounding whitespace
// is ignored. Decimal and exponent notation with an optional sign, and
// unsigned 0x, 0o and 0b integer literals are accepted.
func ParseNumber(text string) (float64, bool) {
	trimmed := strings.TrimFunc(text, func(r rune) bool {
		return unicode.IsSpace(r) || r == '\ufeff'
	})
	if trimmed == "" {
		return 0, false
	}

	if len(trimmed) > 2 && trimmed[0] == '0' {
		if base := radixFor(trimmed[1]); base != 0 {
			return parseRadix(trimmed[2:], base)
		}
	}

	if !decimalPattern.MatchString(trimmed) {
		return 0, false
	}
	value, err := strconv.ParseFloat(trimmed, 64)
	if err != nil || math.IsInf(value, 0) || math.IsNaN(value) {
		return 0, false
	}
	return value, true
}

func radixFor(marker byte) int {
	switch marker {
	case 'x', 'X':
		return 16
	case 'o', 'O':
		return 8
	case 'b', 'B':
		return 2
	default:
		return 0
	}
}

func parseRadix(digits string, base int) (float64, bool) {
	if strings.ContainsAny(digits, "+-_") {
		return 0, false
	}
	parsed, ok := new(big.Int).SetString(digits, base)
	if !ok {
		return 0, false
	}
	value, _ := new(big.Float).SetInt(parsed).Float64()
	if math.IsInf(value, 0) {
		return 0, false
	}
	return value, true
}

// integerValue narrows whole numbers to int64 when they fit.
func integerValue(value float64) any {
	if value >= math.MinInt64 && value < math.MaxInt64 {
		return int64(value)
	}
	return value
}
