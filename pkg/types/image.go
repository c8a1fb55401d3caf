package types

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-drift/nativebridge/pkg/errors"
	"github.com/go-drift/nativebridge/pkg/wire"
)

// scaleSuffix matches "name@<factor>x.ext" in the final path segment.
var scaleSuffix = regexp.MustCompile(`@(\d+(?:\.\d+)?)x\.[^./]+$`)

// encodeImage produces the tuple [src, width, height, scale]; absent
// entries are nil.
func encodeImage(v any, _ ...any) (any, error) {
	if v == nil || wire.IsUndefined(v) {
		return nil, nil
	}
	var image map[string]any
	switch t := v.(type) {
	case string:
		image = map[string]any{"src": t}
	case map[string]any:
		image = t
	default:
		return nil, errors.Invalid("Not a valid ImageValue: %s", wire.Format(v))
	}

	rawSrc, ok := image["src"]
	if !ok || rawSrc == nil || wire.IsUndefined(rawSrc) {
		return nil, errors.Invalid(`"src" missing`)
	}
	src, ok := rawSrc.(string)
	if !ok {
		return nil, errors.Invalid(`"src" must be a string`)
	}
	if src == "" {
		return nil, errors.Invalid(`"src" must not be empty`)
	}
	if hasParentSegment(src) {
		return nil, errors.Invalid(`Invalid image "src": must not contain '..'`)
	}

	width, err := imageDimension(image, "width")
	if err != nil {
		return nil, err
	}
	height, err := imageDimension(image, "height")
	if err != nil {
		return nil, err
	}
	scale, err := imageDimension(image, "scale")
	if err != nil {
		return nil, err
	}

	sized := width != nil || height != nil
	if sized && scale != nil {
		errors.Warn("", `Image "scale" ignored when "width" and/or "height" are set to a number`)
		scale = nil
	}
	if !sized && scale == nil {
		scale = scaleFromPath(src)
	}
	return []any{src, width, height, scale}, nil
}

func hasParentSegment(src string) bool {
	for _, segment := range strings.Split(src, "/") {
		if segment == ".." {
			return true
		}
	}
	return false
}

// imageDimension returns nil when the key is absent or null.
func imageDimension(image map[string]any, key string) (any, error) {
	raw, ok := image[key]
	if !ok || raw == nil || wire.IsUndefined(raw) {
		return nil, nil
	}
	f, isNumber := wire.ToFloat64(raw)
	if !isNumber || math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		return nil, errors.Invalid(`"%s" is not a dimension`, key)
	}
	return f, nil
}

func scaleFromPath(src string) any {
	last := src
	if i := strings.LastIndex(src, "/"); i >= 0 {
		last = src[i+1:]
	}
	m := scaleSuffix.FindStringSubmatch(last)
	if m == nil {
		return nil
	}
	f, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return nil
	}
	return f
}
