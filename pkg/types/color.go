package types

import (
	"fmt"
	"image/color"
	"math"
	"strconv"
	"strings"

	"golang.org/x/image/colornames"

	"github.com/go-drift/nativebridge/pkg/errors"
	"github.com/go-drift/nativebridge/pkg/wire"
)

// RGBA is the wire form of a color: red, green, blue and alpha bytes.
type RGBA [4]uint8

// WireValue implements wire.Marshaler.
func (c RGBA) WireValue() any {
	return []any{int(c[0]), int(c[1]), int(c[2]), int(c[3])}
}

// String renders the color as rgb(...) when opaque and rgba(...) otherwise.
func (c RGBA) String() string {
	if c[3] == 255 {
		return fmt.Sprintf("rgb(%d, %d, %d)", c[0], c[1], c[2])
	}
	return c.RGBAString()
}

// RGBAString always renders the rgba(...) form.
func (c RGBA) RGBAString() string {
	alpha := math.Round(float64(c[3])/255*1000) / 1000
	return fmt.Sprintf("rgba(%d, %d, %d, %s)", c[0], c[1], c[2], wire.FormatNumber(alpha))
}

// ParseColor parses CSS color syntax: hex notation, rgb()/rgba(),
// "transparent" and the CSS named colors.
func ParseColor(s string) (RGBA, error) {
	text := strings.ToLower(strings.TrimSpace(s))
	switch {
	case text == "transparent":
		return RGBA{0, 0, 0, 0}, nil
	case strings.HasPrefix(text, "#"):
		if c, ok := parseHexColor(text[1:]); ok {
			return c, nil
		}
	case strings.HasPrefix(text, "rgba(") || strings.HasPrefix(text, "rgb("):
		if c, ok := parseRGBFunction(text); ok {
			return c, nil
		}
	default:
		if named, ok := colornames.Map[text]; ok {
			return RGBA{named.R, named.G, named.B, named.A}, nil
		}
	}
	return RGBA{}, errors.Invalid("Invalid color value: %s", s)
}

func parseHexColor(hex string) (RGBA, bool) {
	var expanded string
	switch len(hex) {
	case 3, 4:
		var sb strings.Builder
		for _, r := range hex {
			sb.WriteRune(r)
			sb.WriteRune(r)
		}
		expanded = sb.String()
	case 6, 8:
		expanded = hex
	default:
		return RGBA{}, false
	}
	if len(expanded) == 6 {
		expanded += "ff"
	}
	n, err := strconv.ParseUint(expanded, 16, 32)
	if err != nil {
		return RGBA{}, false
	}
	return RGBA{uint8(n >> 24), uint8(n >> 16), uint8(n >> 8), uint8(n)}, true
}

func parseRGBFunction(text string) (RGBA, bool) {
	open := strings.IndexByte(text, '(')
	if !strings.HasSuffix(text, ")") {
		return RGBA{}, false
	}
	name := text[:open]
	parts := strings.Split(text[open+1:len(text)-1], ",")
	if (name == "rgb" && len(parts) != 3) || (name == "rgba" && len(parts) != 4) {
		return RGBA{}, false
	}
	var c RGBA
	for i := 0; i < 3; i++ {
		f, err := strconv.ParseFloat(strings.TrimSpace(parts[i]), 64)
		if err != nil {
			return RGBA{}, false
		}
		c[i] = uint8(math.Round(math.Max(0, math.Min(255, f))))
	}
	c[3] = 255
	if len(parts) == 4 {
		a, err := strconv.ParseFloat(strings.TrimSpace(parts[3]), 64)
		if err != nil {
			return RGBA{}, false
		}
		c[3] = uint8(math.Round(math.Max(0, math.Min(1, a)) * 255))
	}
	return c, true
}

// toColor accepts color strings, image/color values and [r, g, b(, a)]
// byte sequences.
func toColor(v any) (RGBA, error) {
	switch t := v.(type) {
	case string:
		return ParseColor(t)
	case RGBA:
		return t, nil
	case color.Color:
		n := color.NRGBAModel.Convert(t).(color.NRGBA)
		return RGBA{n.R, n.G, n.B, n.A}, nil
	}
	if items, ok := wire.ToSlice(v); ok && (len(items) == 3 || len(items) == 4) {
		c := RGBA{0, 0, 0, 255}
		for i, item := range items {
			f, isNumber := wire.ToFloat64(item)
			if !isNumber || f < 0 || f > 255 {
				return RGBA{}, errors.Invalid("Invalid color value: %s", wire.Format(v))
			}
			c[i] = uint8(math.Round(f))
		}
		return c, nil
	}
	return RGBA{}, errors.Invalid("Invalid color value: %s", wire.Format(v))
}

// isInitial reports whether v asks for the platform default.
func isInitial(v any) bool {
	return v == nil || wire.IsUndefined(v) || v == "initial"
}

func encodeColorValue(v any, _ ...any) (any, error) {
	if isInitial(v) {
		return wire.Undefined, nil
	}
	c, err := toColor(v)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func decodeColorValue(v any) (any, error) {
	if v == nil || wire.IsUndefined(v) {
		return "initial", nil
	}
	if s, ok := v.(string); ok {
		return s, nil
	}
	c, err := toColor(v)
	if err != nil {
		return v, nil
	}
	return c.String(), nil
}
