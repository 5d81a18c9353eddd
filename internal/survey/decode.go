package survey

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Decoder maps an arbitrary decoded JSON value onto T. Decoders are total:
// malformed input yields the zero or default value, never an error.
type Decoder[T any] func(v interface{}) T

// Field applies d to obj[key]. A nil obj behaves like an empty object.
func Field[T any](obj map[string]interface{}, key string, d Decoder[T]) T {
	if obj == nil {
		return d(nil)
	}
	return d(obj[key])
}

// Object returns v as a JSON object, or nil.
func Object(v interface{}) map[string]interface{} {
	m, _ := v.(map[string]interface{})
	return m
}

// scalarString renders strings, numbers and booleans. Objects, arrays and
// null have no textual form.
func scalarString(v interface{}) string {
	switch x := v.(type) {
	case string:
		return x
	case json.Number:
		return x.String()
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return ""
		}
		return strconv.FormatFloat(x, 'f', -1, 64)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case bool:
		return strconv.FormatBool(x)
	default:
		return ""
	}
}

// Text trims a scalar and substitutes def when the result is empty.
func Text(def string) Decoder[string] {
	return func(v interface{}) string {
		if s := strings.TrimSpace(scalarString(v)); s != "" {
			return s
		}
		return def
	}
}

// CollapsedText is Text with internal whitespace runs collapsed.
func CollapsedText(def string) Decoder[string] {
	return func(v interface{}) string {
		if s := NormalizeWhitespace(scalarString(v)); s != "" {
			return s
		}
		return def
	}
}

// toNumber follows JavaScript's Number(x) for the JSON value space;
// anything non-finite becomes 0.
func toNumber(v interface{}) float64 {
	var f float64
	switch x := v.(type) {
	case float64:
		f = x
	case int:
		f = float64(x)
	case int64:
		f = float64(x)
	case json.Number:
		parsed, err := x.Float64()
		if err != nil {
			return 0
		}
		f = parsed
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			return 0
		}
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0
		}
		f = parsed
	case bool:
		if x {
			return 1
		}
		return 0
	default:
		return 0
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

// Number coerces to a finite float64.
func Number() Decoder[float64] {
	return toNumber
}

// NonNegative coerces to a finite float64 no lower than zero.
func NonNegative() Decoder[float64] {
	return func(v interface{}) float64 {
		return math.Max(0, toNumber(v))
	}
}

// ClampedInt rounds and clamps to [lo, hi].
func ClampedInt(lo, hi int) Decoder[int] {
	return func(v interface{}) int {
		return roundClamp(toNumber(v), lo, hi)
	}
}

// roundClamp clamps before converting, so values beyond the int range
// still land on the nearest bound.
func roundClamp(f float64, lo, hi int) int {
	return int(math.Max(float64(lo), math.Min(float64(hi), math.Round(f))))
}

// ListOf decodes an array entry by entry. item reports false to drop an
// entry. Non-arrays decode to an empty, non-nil slice.
func ListOf[T any](item func(v interface{}, index int) (T, bool)) Decoder[[]T] {
	return func(v interface{}) []T {
		arr, _ := v.([]interface{})
		out := make([]T, 0, len(arr))
		for i, entry := range arr {
			if decoded, ok := item(entry, i); ok {
				out = append(out, decoded)
			}
		}
		return out
	}
}

// Strings decodes an array of scalars, dropping entries that decode empty.
func Strings(item Decoder[string]) Decoder[[]string] {
	return ListOf(func(v interface{}, _ int) (string, bool) {
		s := item(v)
		return s, s != ""
	})
}

// toGeneric turns typed Go values into the map/slice form decoders read.
func toGeneric(input interface{}) interface{} {
	switch input.(type) {
	case nil, map[string]interface{}, []interface{}, string, float64, bool:
		return input
	}
	raw, err := json.Marshal(input)
	if err != nil {
		return nil
	}
	var out interface{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil
	}
	return out
}
