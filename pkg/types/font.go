package types

import (
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/image/font"

	"github.com/go-drift/nativebridge/pkg/errors"
	"github.com/go-drift/nativebridge/pkg/wire"
)

// Font is the structured form of a FontValue.
type Font struct {
	Family []string
	Size   float64
	Weight font.Weight
	Style  font.Style
}

var weightNames = map[font.Weight]string{
	font.WeightThin:       "thin",
	font.WeightExtraLight: "extralight",
	font.WeightLight:      "light",
	font.WeightNormal:     "normal",
	font.WeightMedium:     "medium",
	font.WeightSemiBold:   "semibold",
	font.WeightBold:       "bold",
	font.WeightExtraBold:  "extrabold",
	font.WeightBlack:      "black",
}

var styleNames = map[font.Style]string{
	font.StyleNormal:  "normal",
	font.StyleItalic:  "italic",
	font.StyleOblique: "oblique",
}

var fontSize = regexp.MustCompile(`^(\d+(?:\.\d+)?)px$`)

func parseWeight(s string) (font.Weight, bool) {
	for w, name := range weightNames {
		if name == s {
			return w, true
		}
	}
	// CSS numeric weights 100..900 map onto thin..black.
	if n, err := strconv.Atoi(s); err == nil && n >= 100 && n <= 900 && n%100 == 0 {
		return font.Weight(n/100 - 4), true
	}
	return 0, false
}

func parseStyle(s string) (font.Style, bool) {
	for st, name := range styleNames {
		if name == s {
			return st, true
		}
	}
	return 0, false
}

// ParseFont parses the CSS font shorthand "[style] [weight] <size>px [family, ...]".
func ParseFont(s string) (Font, error) {
	fields := strings.Fields(s)
	sizeAt := -1
	for i, field := range fields {
		if fontSize.MatchString(field) {
			sizeAt = i
			break
		}
	}
	if sizeAt < 0 || sizeAt > 2 {
		return Font{}, errors.Invalid("Invalid font syntax: %s", s)
	}

	f := Font{Weight: font.WeightNormal, Style: font.StyleNormal}
	var styleSet, weightSet bool
	for _, token := range fields[:sizeAt] {
		token = strings.ToLower(token)
		if token == "normal" {
			continue
		}
		if st, ok := parseStyle(token); ok && !styleSet {
			f.Style, styleSet = st, true
			continue
		}
		if w, ok := parseWeight(token); ok && !weightSet {
			f.Weight, weightSet = w, true
			continue
		}
		return Font{}, errors.Invalid("Invalid font variant %s", token)
	}

	size, _ := strconv.ParseFloat(fontSize.FindStringSubmatch(fields[sizeAt])[1], 64)
	f.Size = size

	rest := strings.Join(fields[sizeAt+1:], " ")
	for _, family := range strings.Split(rest, ",") {
		family = strings.Trim(strings.TrimSpace(family), `"'`)
		if family != "" {
			f.Family = append(f.Family, family)
		}
	}
	return f, nil
}

// WireValue implements wire.Marshaler.
func (f Font) WireValue() any {
	family := make([]any, len(f.Family))
	for i, name := range f.Family {
		family[i] = name
	}
	return map[string]any{
		"family": family,
		"size":   f.Size,
		"weight": weightNames[f.Weight],
		"style":  styleNames[f.Style],
	}
}

// String renders the CSS shorthand, omitting normal style and weight.
func (f Font) String() string {
	var parts []string
	if f.Style != font.StyleNormal {
		parts = append(parts, styleNames[f.Style])
	}
	if f.Weight != font.WeightNormal {
		parts = append(parts, weightNames[f.Weight])
	}
	parts = append(parts, wire.FormatNumber(f.Size)+"px")
	text := strings.Join(parts, " ")
	if len(f.Family) > 0 {
		text += " " + strings.Join(f.Family, ", ")
	}
	return text
}

// fontFromMap reads the wire form back into a Font.
func fontFromMap(m map[string]any) (Font, error) {
	f := Font{Weight: font.WeightNormal, Style: font.StyleNormal}
	size, err := toNumber(m["size"])
	if err != nil {
		return Font{}, err
	}
	f.Size = size
	if families, ok := wire.ToSlice(m["family"]); ok {
		for _, family := range families {
			f.Family = append(f.Family, wire.String(family))
		}
	}
	if w, ok := m["weight"].(string); ok {
		if f.Weight, ok = parseWeight(w); !ok {
			return Font{}, errors.Invalid("Invalid font weight %s", w)
		}
	}
	if st, ok := m["style"].(string); ok {
		if f.Style, ok = parseStyle(st); !ok {
			return Font{}, errors.Invalid("Invalid font style %s", st)
		}
	}
	return f, nil
}

func encodeFontValue(v any, _ ...any) (any, error) {
	if isInitial(v) {
		return wire.Undefined, nil
	}
	switch t := v.(type) {
	case string:
		return ParseFont(t)
	case Font:
		return t, nil
	case map[string]any:
		return fontFromMap(t)
	}
	return nil, errors.Invalid("Invalid font value: %s", wire.Format(v))
}

func decodeFontValue(v any) (any, error) {
	switch t := v.(type) {
	case nil:
		return "initial", nil
	case Font:
		return t.String(), nil
	case map[string]any:
		f, err := fontFromMap(t)
		if err != nil {
			return v, nil
		}
		return f.String(), nil
	}
	if wire.IsUndefined(v) {
		return "initial", nil
	}
	return v, nil
}
