package types

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-drift/nativebridge/pkg/errors"
	"github.com/go-drift/nativebridge/pkg/wire"
)

// ColorStop is one color of a gradient with an optional offset in [0,1].
type ColorStop struct {
	Text   string
	Color  RGBA
	Offset *float64
}

// LinearGradient is the structured form of a linear-gradient() shader.
type LinearGradient struct {
	// Direction is the direction token as written, empty when omitted.
	Direction string
	// Angle in degrees, 180 (top to bottom) by default.
	Angle float64
	Stops []ColorStop
}

var (
	angleToken = regexp.MustCompile(`^(-?\d*\.?\d+)(deg|rad|turn|grad)$`)
	stopOffset = regexp.MustCompile(`^(-?\d*\.?\d+)%$`)
)

var sideAngles = map[string]float64{
	"to top":          0,
	"to top right":    45,
	"to right top":    45,
	"to right":        90,
	"to bottom right": 135,
	"to right bottom": 135,
	"to bottom":       180,
	"to bottom left":  225,
	"to left bottom":  225,
	"to left":         270,
	"to top left":     315,
	"to left top":     315,
}

// isLinearGradient reports whether s uses linear-gradient() syntax.
func isLinearGradient(s string) bool {
	return strings.HasPrefix(strings.TrimSpace(s), "linear-gradient(")
}

// ParseLinearGradient parses "linear-gradient([direction,] stop, stop...)".
func ParseLinearGradient(s string) (*LinearGradient, error) {
	text := strings.TrimSpace(s)
	if !isLinearGradient(text) || !strings.HasSuffix(text, ")") {
		return nil, errors.Invalid("Invalid linear gradient: %s", s)
	}
	args := splitTopLevel(text[len("linear-gradient(") : len(text)-1])
	g := &LinearGradient{Angle: 180}

	if len(args) > 0 {
		first := strings.ToLower(args[0])
		if m := angleToken.FindStringSubmatch(first); m != nil {
			g.Direction = args[0]
			g.Angle = toDegrees(m[1], m[2])
			args = args[1:]
		} else if strings.HasPrefix(first, "to ") {
			angle, ok := sideAngles[strings.Join(strings.Fields(first), " ")]
			if !ok {
				return nil, errors.Invalid("Invalid linear gradient direction: %s", args[0])
			}
			g.Direction = args[0]
			g.Angle = angle
			args = args[1:]
		}
	}
	if len(args) < 2 {
		return nil, errors.Invalid("Invalid linear gradient: %s", s)
	}

	for _, arg := range args {
		stop := ColorStop{Text: arg}
		colorText := arg
		if i := strings.LastIndex(arg, " "); i >= 0 {
			if m := stopOffset.FindStringSubmatch(arg[i+1:]); m != nil {
				offset, _ := strconv.ParseFloat(m[1], 64)
				offset /= 100
				stop.Offset = &offset
				colorText = strings.TrimSpace(arg[:i])
			}
		}
		c, err := ParseColor(colorText)
		if err != nil {
			return nil, errors.Invalid("Invalid linear gradient color: %s", colorText)
		}
		stop.Color = c
		g.Stops = append(g.Stops, stop)
	}
	return g, nil
}

func toDegrees(value, unit string) float64 {
	f, _ := strconv.ParseFloat(value, 64)
	switch unit {
	case "rad":
		return f * 180 / math.Pi
	case "turn":
		return f * 360
	case "grad":
		return f * 0.9
	default:
		return f
	}
}

// splitTopLevel splits on commas that are not nested in parentheses.
func splitTopLevel(s string) []string {
	var parts []string
	depth, start := 0, 0
	for i, r := range s {
		switch r {
		case '(':
			depth++
		case ')':
			depth--
		case ',':
			if depth == 0 {
				parts = append(parts, strings.TrimSpace(s[start:i]))
				start = i + 1
			}
		}
	}
	if rest := strings.TrimSpace(s[start:]); rest != "" || len(parts) > 0 {
		parts = append(parts, rest)
	}
	return parts
}

// WireValue implements wire.Marshaler.
func (g *LinearGradient) WireValue() any {
	colors := make([]any, len(g.Stops))
	stops := make([]any, len(g.Stops))
	for i, stop := range g.Stops {
		colors[i] = stop.Color.WireValue()
		if stop.Offset != nil {
			stops[i] = *stop.Offset
		}
	}
	return map[string]any{
		"type":   "linearGradient",
		"angle":  g.Angle,
		"colors": colors,
		"stops":  stops,
	}
}

// String renders the gradient literal.
func (g *LinearGradient) String() string {
	parts := make([]string, 0, len(g.Stops)+1)
	if g.Direction != "" {
		parts = append(parts, g.Direction)
	}
	for _, stop := range g.Stops {
		parts = append(parts, stop.Text)
	}
	return "linear-gradient(" + strings.Join(parts, ", ") + ")"
}

// gradientFromWire rebuilds a literal from the structured wire form.
func gradientFromWire(m map[string]any) string {
	angle, _ := wire.ToFloat64(m["angle"])
	colors, _ := wire.ToSlice(m["colors"])
	stops, _ := wire.ToSlice(m["stops"])
	parts := []string{wire.FormatNumber(angle) + "deg"}
	for i, raw := range colors {
		c, err := toColor(raw)
		if err != nil {
			continue
		}
		part := c.String()
		if i < len(stops) {
			if offset, ok := wire.ToFloat64(stops[i]); ok {
				part += " " + wire.FormatNumber(offset*100) + "%"
			}
		}
		parts = append(parts, part)
	}
	return "linear-gradient(" + strings.Join(parts, ", ") + ")"
}

func encodeShader(v any, _ ...any) (any, error) {
	if isInitial(v) {
		return wire.Undefined, nil
	}
	switch t := v.(type) {
	case *LinearGradient:
		return t, nil
	case string:
		if isLinearGradient(t) {
			return ParseLinearGradient(t)
		}
	}
	c, err := toColor(v)
	if err != nil {
		return nil, err
	}
	return map[string]any{"type": "color", "color": c.WireValue()}, nil
}

func decodeShader(v any) (any, error) {
	if !truthy(v) {
		return RGBA{0, 0, 0, 0}.RGBAString(), nil
	}
	switch t := v.(type) {
	case string:
		return t, nil
	case *LinearGradient:
		return t.String(), nil
	case map[string]any:
		switch t["type"] {
		case "color":
			c, err := toColor(t["color"])
			if err != nil {
				return v, nil
			}
			return c.String(), nil
		case "linearGradient":
			return gradientFromWire(t), nil
		}
		return v, nil
	}
	if c, err := toColor(v); err == nil {
		return c.RGBAString(), nil
	}
	return v, nil
}
