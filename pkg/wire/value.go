// Package wire defines the value domain that crosses the native bridge and
// the message codecs used to serialize outgoing batches.
//
// A WireValue is one of nil, bool, a finite number, string, []any of
// WireValues, or map[string]any of WireValues. Codecs in package types
// produce WireValues; Normalize converts the richer Go values they may
// return (typed slices, Marshaler implementations) into that domain.
package wire

import (
	"errors"
	"fmt"
	"math"
	"reflect"
)

type undefined struct{}

func (undefined) String() string { return "undefined" }

// Undefined marks an absent value. Codecs return it to mean "use the
// platform default"; it is dropped from creation payloads and sent as null
// by property sets.
var Undefined any = undefined{}

// IsUndefined reports whether v is the Undefined marker.
func IsUndefined(v any) bool {
	_, ok := v.(undefined)
	return ok
}

// Marshaler is implemented by values that carry a structured wire form,
// such as gradient shaders.
type Marshaler interface {
	WireValue() any
}

// maxDepth bounds nesting so cyclic structures fail instead of recursing forever.
const maxDepth = 64

// ErrTooDeep is returned for values nested deeper than the wire allows.
var ErrTooDeep = errors.New("wire: value nested too deeply")

// Normalize converts v into a WireValue. Numbers are kept in their Go kind,
// typed slices and maps are copied into []any and map[string]any.
// Undefined is returned unchanged so callers can decide how to drop it.
func Normalize(v any) (any, error) {
	return normalize(v, 0)
}

// Check reports whether v is representable on the wire.
func Check(v any) error {
	_, err := normalize(v, 0)
	return err
}

func normalize(v any, depth int) (any, error) {
	if depth > maxDepth {
		return nil, ErrTooDeep
	}
	switch t := v.(type) {
	case nil, bool, string, undefined:
		return v, nil
	case float64:
		return t, checkFinite(t)
	case float32:
		return t, checkFinite(float64(t))
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return v, nil
	case Marshaler:
		return normalize(t.WireValue(), depth+1)
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			n, err := normalize(item, depth+1)
			if err != nil {
				return nil, err
			}
			out[i] = dropUndefined(n)
		}
		return out, nil
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, item := range t {
			n, err := normalize(item, depth+1)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", k, err)
			}
			if IsUndefined(n) {
				continue
			}
			out[k] = n
		}
		return out, nil
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice && rv.IsNil() {
			return []any{}, nil
		}
		out := make([]any, rv.Len())
		for i := range out {
			n, err := normalize(rv.Index(i).Interface(), depth+1)
			if err != nil {
				return nil, err
			}
			out[i] = dropUndefined(n)
		}
		return out, nil
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return nil, fmt.Errorf("wire: map keys must be strings, got %s", rv.Type().Key())
		}
		out := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			n, err := normalize(iter.Value().Interface(), depth+1)
			if err != nil {
				return nil, err
			}
			if !IsUndefined(n) {
				out[iter.Key().String()] = n
			}
		}
		return out, nil
	case reflect.Pointer:
		if rv.IsNil() {
			return nil, nil
		}
	}
	return nil, fmt.Errorf("wire: unsupported value of type %T", v)
}

func dropUndefined(v any) any {
	if IsUndefined(v) {
		return nil
	}
	return v
}

func checkFinite(f float64) error {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return fmt.Errorf("wire: %s is not representable", FormatNumber(f))
	}
	return nil
}
