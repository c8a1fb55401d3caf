package widgets

import (
	"github.com/go-drift/nativebridge/pkg/core"
	"github.com/go-drift/nativebridge/pkg/types"
	"github.com/go-drift/nativebridge/pkg/wire"
)

// ButtonStyles lists the accepted values of the const "style" property.
var ButtonStyles = []string{"default", "elevate", "flat", "outline", "text"}

// ButtonSchema declares the properties of tabris.Button.
var ButtonSchema = core.Define(core.SchemaDef{
	Type: "tabris.Button",
	Base: WidgetSchema,
	Properties: []core.Property{
		{Name: "style", Type: types.T("choice", ButtonStyles), Const: true, Default: "default"},
		{Name: "strokeColor", Type: types.T("ColorValue"), Set: outlineOnly},
		{Name: "strokeWidth", Type: types.T("number"), NoCache: true, Set: outlineOnly},
		{Name: "alignment", Type: types.T("choice", []string{"left", "right", "center"}), Default: "center"},
		{Name: "image", Type: types.T("ImageValue")},
		{Name: "text", Type: types.T("string"), Default: ""},
		{Name: "textColor", Type: types.T("ColorValue")},
		{Name: "font", Type: types.T("FontValue"), Set: setFont},
	},
	Events: []core.EventType{
		{Name: "select", Native: true},
	},
})

// outlineOnly forwards stroke properties of outline buttons and drops
// them with a hint for every other style.
func outlineOnly(o *core.Object, name string, encoded any) {
	style := o.Get("style")
	if style != "outline" {
		o.Hint("The %s can only be set on buttons with style \"outline\" but it has style %v.", name, style)
		return
	}
	if err := o.NativeSet(name, encoded); err != nil {
		o.Hint("%v", err)
		return
	}
	o.StoreProperty(name, encoded)
}

// setFont sends an explicit null when the font is reset so the create
// payload carries it.
func setFont(o *core.Object, name string, encoded any) {
	value := encoded
	if wire.IsUndefined(value) {
		value = nil
	}
	if err := o.NativeSet(name, value); err != nil {
		o.Hint("%v", err)
		return
	}
	o.StoreProperty(name, encoded)
}

// Button is a push button.
type Button struct {
	Widget
}

// NewButton creates a button. Const properties such as "style" can only be
// passed here.
func NewButton(rt *core.Runtime, props map[string]any, opts ...core.ObjectOption) (*Button, error) {
	b := &Button{}
	opts = append([]core.ObjectOption{core.WithProps(props), core.WithOwner(b)}, opts...)
	obj, err := rt.New(ButtonSchema, opts...)
	if err != nil {
		return nil, err
	}
	b.Object = obj
	return b, nil
}

// Style returns the const button style.
func (b *Button) Style() string {
	s, _ := b.Get("style").(string)
	return s
}

// Text returns the label.
func (b *Button) Text() string {
	s, _ := b.Get("text").(string)
	return s
}

// SetText sets the label.
func (b *Button) SetText(text string) error {
	return b.Set("text", text)
}

// OnSelect registers a listener for button presses.
func (b *Button) OnSelect(fn core.Listener) *core.Subscription {
	return b.On("select", fn)
}
