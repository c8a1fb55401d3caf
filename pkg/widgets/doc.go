// Package widgets provides native widget proxies built on the core object
// model.
//
// Each widget declares its property table once with core.Define and wraps
// the resulting *core.Object:
//
//	btn, err := widgets.NewButton(rt, map[string]any{
//	    "style": "outline",
//	    "text":  "Submit",
//	})
//	btn.OnSelect(func(e *core.Event) error {
//	    return btn.SetText("Submitted")
//	})
//
// Properties shared by all widgets are declared in WidgetSchema.
package widgets
