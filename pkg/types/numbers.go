package types

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-drift/nativebridge/pkg/errors"
	"github.com/go-drift/nativebridge/pkg/wire"
)

var numericString = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?$`)

// toNumber accepts Go numeric kinds and numeric strings. Booleans, empty
// strings and containers are rejected.
func toNumber(v any) (float64, error) {
	f, ok := wire.ToFloat64(v)
	if !ok {
		s, isString := v.(string)
		if !isString {
			return 0, errors.Invalid("Not a number: %s", wire.Format(v))
		}
		parsed, err := parseNumericString(s)
		if err != nil {
			return 0, err
		}
		f = parsed
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, errors.Invalid("Invalid number: %s", wire.FormatNumber(f))
	}
	return f, nil
}

func parseNumericString(s string) (float64, error) {
	trimmed := strings.TrimSpace(s)
	switch trimmed {
	case "Infinity", "+Infinity":
		return math.Inf(1), nil
	case "-Infinity":
		return math.Inf(-1), nil
	}
	if !numericString.MatchString(trimmed) {
		return 0, errors.Invalid("Not a number: %s", wire.Format(s))
	}
	f, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return 0, errors.Invalid("Not a number: %s", wire.Format(s))
	}
	return f, nil
}

// jsRound rounds half-way cases toward positive infinity. Adding 0.5
// before flooring would round 0.49999999999999994 up and odd values
// beyond 2^52 to even ones.
func jsRound(f float64) float64 {
	r := math.Floor(f)
	if f-r >= 0.5 {
		r++
	}
	if r == 0 {
		return 0
	}
	return r
}

func encodeNumber(v any, _ ...any) (any, error) {
	return toNumber(v)
}

func encodeInteger(v any, _ ...any) (any, error) {
	f, err := toNumber(v)
	if err != nil {
		return nil, err
	}
	return jsRound(f), nil
}

func encodeNatural(v any, _ ...any) (any, error) {
	f, err := toNumber(v)
	if err != nil {
		return nil, err
	}
	return math.Max(0, jsRound(f)), nil
}

func encodeOpacity(v any, _ ...any) (any, error) {
	f, err := toNumber(v)
	if err != nil {
		return nil, err
	}
	return math.Max(0, math.Min(1, f)), nil
}

func encodeDimension(v any, _ ...any) (any, error) {
	f, err := toNumber(v)
	if err != nil {
		return nil, err
	}
	if f < 0 {
		return nil, errors.Invalid("Invalid dimension: %s", wire.FormatNumber(f))
	}
	return f, nil
}
