package types

import (
	"sort"

	"github.com/go-drift/nativebridge/pkg/errors"
	"github.com/go-drift/nativebridge/pkg/wire"
)

var boxEdges = []string{"left", "right", "top", "bottom"}

func encodeBoxDimensions(v any, _ ...any) (any, error) {
	if v == nil {
		return map[string]any{"left": 0.0, "right": 0.0, "top": 0.0, "bottom": 0.0}, nil
	}
	if f, ok := wire.ToFloat64(v); ok {
		return map[string]any{"left": f, "right": f, "top": f, "bottom": f}, nil
	}
	if m, ok := v.(map[string]any); ok && len(m) == len(boxEdges) {
		complete := true
		for _, edge := range boxEdges {
			if _, isNumber := wire.ToFloat64(m[edge]); !isNumber {
				complete = false
				break
			}
		}
		if complete {
			return m, nil
		}
	}
	return nil, errors.Invalid("Invalid type: %s", wire.String(v))
}

// IdentityTransform holds the defaults filled in for missing transform keys.
var IdentityTransform = map[string]float64{
	"rotation":     0,
	"scaleX":       1,
	"scaleY":       1,
	"translationX": 0,
	"translationY": 0,
	"translationZ": 0,
}

func encodeTransform(v any, _ ...any) (any, error) {
	out := make(map[string]any, len(IdentityTransform))
	for key, def := range IdentityTransform {
		out[key] = def
	}
	if v == nil || wire.IsUndefined(v) {
		return out, nil
	}
	m, ok := v.(map[string]any)
	if !ok {
		return nil, errors.Invalid("Not a valid transformation: %s", wire.Format(v))
	}
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		if _, known := IdentityTransform[key]; !known {
			return nil, errors.Invalid(`Not a valid transformation containing "%s"`, key)
		}
		f, err := toNumber(m[key])
		if err != nil {
			return nil, err
		}
		out[key] = f
	}
	return out, nil
}
