package widgets

import (
	"github.com/go-drift/nativebridge/pkg/core"
	"github.com/go-drift/nativebridge/pkg/types"
)

// WidgetSchema declares the properties and events common to all widgets.
var WidgetSchema = core.Define(core.SchemaDef{
	Properties: []core.Property{
		{Name: "enabled", Type: types.T("boolean"), Default: true},
		{Name: "visible", Type: types.T("boolean"), Default: true},
		{Name: "background", Type: types.T("shader")},
		{Name: "opacity", Type: types.T("opacity"), Default: 1.0},
		{Name: "transform", Type: types.T("transform")},
		{Name: "cornerRadius", Type: types.T("natural"), Default: 0.0},
		{Name: "padding", Type: types.T("boxDimensions")},
		{Name: "elevation", Type: types.T("number"), Default: 0.0},
		{Name: "id", Type: types.T("string"), Local: true},
		{Name: "class", Type: types.T("string"), Local: true},
	},
	Events: []core.EventType{
		{Name: "tap", Native: true, Params: map[string]types.TypeRef{
			"touches": types.T("array"),
		}},
		{Name: "longPress", Native: true},
		{Name: "resize", Native: true, Params: map[string]types.TypeRef{
			"width":  types.T("number"),
			"height": types.T("number"),
		}},
	},
})

// Widget is the common base of native widget proxies.
type Widget struct {
	*core.Object
}

// Enabled reports whether the widget accepts input.
func (w *Widget) Enabled() bool {
	b, _ := w.Get("enabled").(bool)
	return b
}

// SetEnabled enables or disables the widget.
func (w *Widget) SetEnabled(enabled bool) error {
	return w.Set("enabled", enabled)
}

// SetBackground sets a color or linear gradient.
func (w *Widget) SetBackground(background any) error {
	return w.Set("background", background)
}

// OnTap registers a tap listener.
func (w *Widget) OnTap(fn core.Listener) *core.Subscription {
	return w.On("tap", fn)
}
