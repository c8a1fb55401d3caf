package types

import (
	"image/color"
	"math"
	"reflect"
	"testing"

	"golang.org/x/image/font"

	"github.com/go-drift/nativebridge/pkg/errors"
	"github.com/go-drift/nativebridge/pkg/wire"
)

func TestImageValue(t *testing.T) {
	captured := errors.CaptureForTest(t.Cleanup)

	tests := []struct {
		name  string
		input any
		want  []any
	}{
		{"minimal", map[string]any{"src": "foo.png"}, []any{"foo.png", nil, nil, nil}},
		{"dimensions", map[string]any{"src": "foo.png", "width": 10, "height": 10}, []any{"foo.png", 10.0, 10.0, nil}},
		{"scale", map[string]any{"src": "foo.png", "scale": 1.4}, []any{"foo.png", nil, nil, 1.4}},
		{"string", "foo.jpg", []any{"foo.jpg", nil, nil, nil}},
		{"string scale", "foo@2x.jpg", []any{"foo@2x.jpg", nil, nil, 2.0}},
		{"fractional scale", "foo@1.4x.jpg", []any{"foo@1.4x.jpg", nil, nil, 1.4}},
		{"no x suffix", "foo@2.jpg", []any{"foo@2.jpg", nil, nil, nil}},
		{"no at sign", "foo2x.jpg", []any{"foo2x.jpg", nil, nil, nil}},
		{"object scale", map[string]any{"src": "foo@2x.jpg"}, []any{"foo@2x.jpg", nil, nil, 2.0}},
		{"explicit scale wins", map[string]any{"src": "foo@2x.jpg", "scale": 1}, []any{"foo@2x.jpg", nil, nil, 1.0}},
		{"width suppresses inference", map[string]any{"src": "foo@1.4x.jpg", "width": 10}, []any{"foo@1.4x.jpg", 10.0, nil, nil}},
		{"height suppresses inference", map[string]any{"src": "foo@1.4x.jpg", "height": 10}, []any{"foo@1.4x.jpg", nil, 10.0, nil}},
		{"pattern in directory", "foo@2x/bar.jpg", []any{"foo@2x/bar.jpg", nil, nil, nil}},
		{"pattern in both", "foo@3x/bar@2x.jpg", []any{"foo@3x/bar@2x.jpg", nil, nil, 2.0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := encode(t, "ImageValue", tt.input)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ImageValue.Encode(%#v) = %#v, want %#v", tt.input, got, tt.want)
			}
		})
	}
	if len(captured.Hints) != 0 {
		t.Errorf("unexpected hints: %v", captured.HintMessages())
	}
	if got := encode(t, "ImageValue", nil); got != nil {
		t.Errorf("ImageValue.Encode(nil) = %v", got)
	}
}

func TestImageValueErrors(t *testing.T) {
	tests := []struct {
		input any
		want  string
	}{
		{23, "Not a valid ImageValue: 23"},
		{map[string]any{}, `"src" missing`},
		{map[string]any{"src": ""}, `"src" must not be empty`},
		{"", `"src" must not be empty`},
		{map[string]any{"src": "../test.png"}, `Invalid image "src": must not contain '..'`},
		{"images/../../secret.png", `Invalid image "src": must not contain '..'`},
	}
	for _, tt := range tests {
		if got := encodeErr(t, "ImageValue", tt.input); got != tt.want {
			t.Errorf("ImageValue.Encode(%#v) error = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestImageValueDimensions(t *testing.T) {
	good := []any{0, 1, 1.0 / 3, 0.5, math.Pi}
	bad := []any{-1, math.NaN(), math.Inf(1), math.Inf(-1), "1", true, false, map[string]any{}}
	for _, prop := range []string{"width", "height", "scale"} {
		for _, v := range good {
			encode(t, "ImageValue", map[string]any{"src": "foo", prop: v})
		}
		for _, v := range bad {
			want := `"` + prop + `" is not a dimension`
			if got := encodeErr(t, "ImageValue", map[string]any{"src": "foo", prop: v}); got != want {
				t.Errorf("%s=%#v error = %q, want %q", prop, v, got, want)
			}
		}
	}
}

func TestImageValueScaleWarning(t *testing.T) {
	for _, dim := range []string{"width", "height"} {
		t.Run(dim, func(t *testing.T) {
			captured := errors.CaptureForTest(t.Cleanup)

			got := encode(t, "ImageValue", map[string]any{"src": "foo.png", dim: 23, "scale": 2})

			msgs := captured.HintMessages()
			want := `Image "scale" ignored when "width" and/or "height" are set to a number`
			if len(msgs) != 1 || msgs[0] != want {
				t.Errorf("hints = %v, want [%q]", msgs, want)
			}
			if got.([]any)[3] != nil {
				t.Errorf("scale = %v, want nil", got.([]any)[3])
			}
		})
	}
}

func TestColorValue(t *testing.T) {
	for _, v := range []any{"initial", nil} {
		if got := encode(t, "ColorValue", v); !wire.IsUndefined(got) {
			t.Errorf("ColorValue.Encode(%v) = %v, want Undefined", v, got)
		}
	}
	tests := []struct {
		input any
		want  RGBA
	}{
		{"red", RGBA{255, 0, 0, 255}},
		{"#00f", RGBA{0, 0, 255, 255}},
		{"#0000ff80", RGBA{0, 0, 255, 128}},
		{"rgb(1, 2, 3)", RGBA{1, 2, 3, 255}},
		{"rgba(1, 2, 3, 0.5)", RGBA{1, 2, 3, 128}},
		{"transparent", RGBA{0, 0, 0, 0}},
		{[]any{10, 20, 30}, RGBA{10, 20, 30, 255}},
		{color.RGBA{R: 1, G: 2, B: 3, A: 255}, RGBA{1, 2, 3, 255}},
	}
	for _, tt := range tests {
		if got := encode(t, "ColorValue", tt.input); got != tt.want {
			t.Errorf("ColorValue.Encode(%#v) = %v, want %v", tt.input, got, tt.want)
		}
	}
	encodeErr(t, "ColorValue", "notacolor")
	encodeErr(t, "ColorValue", 12)

	r := NewRegistry(nil)
	for wireValue, want := range map[string]string{
		"opaque":      "rgb(0, 0, 255)",
		"translucent": "rgba(0, 0, 255, 0.502)",
	} {
		input := []any{0.0, 0.0, 255.0, 255.0}
		if wireValue == "translucent" {
			input[3] = 128.0
		}
		got, _ := r.Decode(T("ColorValue"), input)
		if got != want {
			t.Errorf("ColorValue.Decode(%v) = %v, want %v", input, got, want)
		}
	}
}

func TestFontValue(t *testing.T) {
	for _, v := range []any{"initial", nil} {
		if got := encode(t, "FontValue", v); !wire.IsUndefined(got) {
			t.Errorf("FontValue.Encode(%v) = %v, want Undefined", v, got)
		}
	}
	got := encode(t, "FontValue", `italic bold 24px "Open Sans", sans-serif`).(Font)
	want := Font{Family: []string{"Open Sans", "sans-serif"}, Size: 24, Weight: font.WeightBold, Style: font.StyleItalic}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("FontValue.Encode = %#v, want %#v", got, want)
	}
	if got.String() != "italic bold 24px Open Sans, sans-serif" {
		t.Errorf("Font.String() = %q", got.String())
	}
	wireForm, err := wire.Normalize(got)
	if err != nil {
		t.Fatal(err)
	}
	decoded, _ := NewRegistry(nil).Decode(T("FontValue"), wireForm)
	if decoded != "italic bold 24px Open Sans, sans-serif" {
		t.Errorf("FontValue.Decode = %v", decoded)
	}
	if got := encode(t, "FontValue", "700 12px").(Font); got.Weight != font.WeightBold || len(got.Family) != 0 {
		t.Errorf("numeric weight = %#v", got)
	}
	encodeErr(t, "FontValue", "bold")
	encodeErr(t, "FontValue", "fancy 12px Arial")
}

func TestShader(t *testing.T) {
	for _, v := range []any{"initial", nil} {
		if got := encode(t, "shader", v); !wire.IsUndefined(got) {
			t.Errorf("shader.Encode(%v) = %v, want Undefined", v, got)
		}
	}
	if _, ok := encode(t, "shader", "linear-gradient(red, blue)").(*LinearGradient); !ok {
		t.Error("shader.Encode should return *LinearGradient for gradient literals")
	}
	g := encode(t, "shader", "linear-gradient(90deg, red 10%, blue)").(*LinearGradient)
	if g.Angle != 90 || len(g.Stops) != 2 || *g.Stops[0].Offset != 0.1 || g.Stops[1].Offset != nil {
		t.Errorf("gradient = %#v", g)
	}
	if g := encode(t, "shader", "linear-gradient(to left, red, blue)").(*LinearGradient); g.Angle != 270 {
		t.Errorf("to left angle = %v", g.Angle)
	}
	encodeErr(t, "shader", "linear-gradient(red)")

	r := NewRegistry(nil)
	decodeTests := []struct {
		name  string
		input any
		want  string
	}{
		{"falsy", nil, "rgba(0, 0, 0, 0)"},
		{"gradient", mustGradient(t, "linear-gradient(red, blue)"), "linear-gradient(red, blue)"},
		{"color shader", map[string]any{"color": []any{0, 0, 255, 255}, "type": "color"}, "rgb(0, 0, 255)"},
		{"array", []any{0, 0, 255, 255}, "rgba(0, 0, 255, 1)"},
		{"wire gradient", map[string]any{"type": "linearGradient", "angle": 90.0,
			"colors": []any{[]any{255, 0, 0, 255}, []any{0, 0, 255, 255}}, "stops": []any{0.0, nil}},
			"linear-gradient(90deg, rgb(255, 0, 0) 0%, rgb(0, 0, 255))"},
	}
	for _, tt := range decodeTests {
		got, err := r.Decode(T("shader"), tt.input)
		if err != nil || got != tt.want {
			t.Errorf("%s: shader.Decode = %v (%v), want %q", tt.name, got, err, tt.want)
		}
	}
}

func mustGradient(t *testing.T, s string) *LinearGradient {
	t.Helper()
	g, err := ParseLinearGradient(s)
	if err != nil {
		t.Fatal(err)
	}
	return g
}

type fakeObject struct{ id string }

func (o *fakeObject) Cid() string { return o.id }

func TestNativeObject(t *testing.T) {
	obj := &fakeObject{id: "$7"}
	r := NewRegistry(ResolverFunc(func(id string) any {
		if id == obj.id {
			return obj
		}
		return nil
	}))

	if got, _ := r.Encode(T("NativeObject"), obj); got != "$7" {
		t.Errorf("Encode(object) = %v", got)
	}
	if got, _ := r.Encode(T("NativeObject"), []*fakeObject{obj, {id: "$8"}}); got != "$7" {
		t.Errorf("Encode(collection) = %v", got)
	}
	plain := map[string]any{"id": "23", "name": "bar"}
	if got, _ := r.Encode(T("NativeObject"), plain); !reflect.DeepEqual(got, plain) {
		t.Errorf("Encode(plain) = %v", got)
	}
	if got, _ := r.Decode(T("NativeObject"), "$7"); got != obj {
		t.Errorf("Decode($7) = %v", got)
	}
	if got, _ := r.Decode(T("NativeObject"), "$99"); got != nil {
		t.Errorf("Decode($99) = %v, want nil", got)
	}
	if _, err := r.Encode(T("NativeObject"), 5); err == nil {
		t.Error("Encode(5) should fail")
	}
}
