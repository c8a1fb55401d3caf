package types

import (
	"math"
	"strings"

	"github.com/go-drift/nativebridge/pkg/errors"
	"github.com/go-drift/nativebridge/pkg/wire"
)

func encodeString(v any, _ ...any) (any, error) {
	if v == nil || wire.IsUndefined(v) {
		return "", nil
	}
	return wire.String(v), nil
}

// truthy follows dynamic-language truthiness: nil, undefined, false, 0,
// NaN and "" are false; everything else, including "false", is true.
func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != ""
	}
	if wire.IsUndefined(v) {
		return false
	}
	if f, ok := wire.ToFloat64(v); ok {
		return f != 0 && !math.IsNaN(f)
	}
	return true
}

func encodeBoolean(v any, _ ...any) (any, error) {
	return truthy(v), nil
}

// choiceArgs accepts the allowed values as []string or []any of strings.
func choiceArgs(args []any) []string {
	if len(args) == 0 {
		return nil
	}
	switch t := args[0].(type) {
	case []string:
		return t
	case []any:
		out := make([]string, 0, len(t))
		for _, item := range t {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

func encodeChoice(v any, args ...any) (any, error) {
	accepted := choiceArgs(args)
	if s, ok := v.(string); ok {
		for _, a := range accepted {
			if a == s {
				return s, nil
			}
		}
	}
	quoted := make([]string, len(accepted))
	for i, a := range accepted {
		quoted[i] = `"` + a + `"`
	}
	return nil, errors.Invalid(`Accepting %s, given was: "%s"`, strings.Join(quoted, ", "), wire.String(v))
}

func (r *Registry) encodeNullable(v any, args ...any) (any, error) {
	if v == nil {
		return nil, nil
	}
	inner := stringArg(args, 0)
	if inner == "" {
		return v, nil
	}
	return r.Encode(TypeRef{Name: inner, Args: args[1:]}, v)
}

func (r *Registry) decodeNullable(v any) (any, error) {
	return v, nil
}

func encodeFunction(v any, _ ...any) (any, error) {
	if !wire.IsFunc(v) {
		return nil, errors.Invalid("%s is not a function: %s", wire.Typeof(v), wire.String(v))
	}
	return v, nil
}

func encodeObject(v any, _ ...any) (any, error) {
	if v == nil {
		return nil, nil
	}
	if m, ok := v.(map[string]any); ok {
		return m, nil
	}
	return nil, errors.Invalid("Not an object: %s", wire.Format(v))
}

// encodeArray passes sequences through. With an item type argument every
// element is encoded and a new slice is returned.
func (r *Registry) encodeArray(v any, args ...any) (any, error) {
	if v == nil || wire.IsUndefined(v) {
		return []any{}, nil
	}
	items, ok := wire.ToSlice(v)
	if !ok {
		return nil, errors.Invalid("%s is not an array: %s", wire.Typeof(v), wire.String(v))
	}
	itemType := stringArg(args, 0)
	if itemType == "" {
		return items, nil
	}
	out := make([]any, len(items))
	for i, item := range items {
		encoded, err := r.Encode(TypeRef{Name: itemType, Args: args[1:]}, item)
		if err != nil {
			return nil, err
		}
		out[i] = encoded
	}
	return out, nil
}
