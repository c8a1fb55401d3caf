package wire

import (
	"fmt"
	"math"
	"reflect"
	"sort"
	"strconv"
	"strings"
)

// ToFloat64 converts the Go numeric kinds to float64.
func ToFloat64(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	default:
		return 0, false
	}
}

// IsFunc reports whether v is a non-nil Go func value.
func IsFunc(v any) bool {
	if v == nil {
		return false
	}
	rv := reflect.ValueOf(v)
	return rv.Kind() == reflect.Func && !rv.IsNil()
}

// IsSequence reports whether v is a slice or array.
func IsSequence(v any) bool {
	if v == nil {
		return false
	}
	k := reflect.TypeOf(v).Kind()
	return k == reflect.Slice || k == reflect.Array
}

// ToSlice returns v as []any. The second result is false for non-sequences.
// A []any is returned as is, without copying.
func ToSlice(v any) ([]any, bool) {
	if s, ok := v.([]any); ok {
		return s, true
	}
	if !IsSequence(v) {
		return nil, false
	}
	rv := reflect.ValueOf(v)
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}

// Typeof returns the name a dynamic language would report for v.
func Typeof(v any) string {
	switch v.(type) {
	case undefined:
		return "undefined"
	case nil:
		return "object"
	case bool:
		return "boolean"
	case string:
		return "string"
	}
	if _, ok := ToFloat64(v); ok {
		return "number"
	}
	if IsFunc(v) {
		return "function"
	}
	return "object"
}

// FormatNumber renders f the way the dynamic runtime prints numbers.
func FormatNumber(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	case f == 0:
		return "0"
	}
	abs := math.Abs(f)
	if abs >= 1e21 || abs < 1e-6 {
		s := strconv.FormatFloat(f, 'e', -1, 64)
		mant, exp, _ := strings.Cut(s, "e")
		sign := exp[:1]
		exp = strings.TrimLeft(exp[1:], "0")
		return mant + "e" + sign + exp
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// String converts v to text with the coercion rules of the dynamic runtime:
// nil is "null", maps are "[object Object]" and sequences join their items
// with commas.
func String(v any) string {
	switch t := v.(type) {
	case nil:
		return "null"
	case undefined:
		return "undefined"
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case fmt.Stringer:
		return t.String()
	case error:
		return t.Error()
	}
	if f, ok := ToFloat64(v); ok {
		return FormatNumber(f)
	}
	if IsFunc(v) {
		return "function"
	}
	if items, ok := ToSlice(v); ok {
		parts := make([]string, len(items))
		for i, item := range items {
			if item == nil || IsUndefined(item) {
				continue
			}
			parts[i] = String(item)
		}
		return strings.Join(parts, ",")
	}
	return "[object Object]"
}

// Format renders v for error messages: strings are single-quoted, maps and
// sequences are printed structurally.
func Format(v any) string {
	return format(v, 0)
}

func format(v any, depth int) string {
	if depth > 3 {
		return "..."
	}
	switch t := v.(type) {
	case string:
		return "'" + t + "'"
	case map[string]any:
		if len(t) == 0 {
			return "{}"
		}
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, len(keys))
		for i, k := range keys {
			parts[i] = k + ": " + format(t[k], depth+1)
		}
		return "{" + strings.Join(parts, ", ") + "}"
	}
	if _, isStringer := v.(fmt.Stringer); !isStringer && IsSequence(v) {
		items, _ := ToSlice(v)
		if len(items) == 0 {
			return "[]"
		}
		parts := make([]string, len(items))
		for i, item := range items {
			parts[i] = format(item, depth+1)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	}
	return String(v)
}
