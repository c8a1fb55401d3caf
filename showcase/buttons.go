package main

import (
	"fmt"

	"github.com/go-drift/nativebridge/pkg/core"
	"github.com/go-drift/nativebridge/pkg/widgets"
)

// page keeps the demo widgets reachable; the registry does not.
var page []*widgets.Button

// buildButtonsPage demonstrates button styles and select handling.
func buildButtonsPage(native *echoNative) func(*core.Runtime) error {
	return func(rt *core.Runtime) error {
		return buttons(rt, native)
	}
}

func buttons(rt *core.Runtime, native *echoNative) error {
	submit, err := widgets.NewButton(rt, map[string]any{
		"style":       "outline",
		"strokeColor": "#6200ee",
		"strokeWidth": 2,
		"text":        "Submit",
		"font":        "bold 16px sans-serif",
	})
	if err != nil {
		return err
	}
	cancel, err := widgets.NewButton(rt, map[string]any{
		"style":     "flat",
		"text":      "Cancel",
		"textColor": "gray",
		// Hinted and dropped: stroke properties need the outline style.
		"strokeColor": "red",
	})
	if err != nil {
		return err
	}

	count := 0
	submit.OnSelect(func(e *core.Event) error {
		count++
		e.ReturnValue = count
		fmt.Printf("go     <- select #%d\n", count)
		if err := submit.SetText(fmt.Sprintf("Submitted %d", count)); err != nil {
			return err
		}
		return cancel.SetEnabled(count < 2)
	})

	page = append(page, submit, cancel)
	native.ids["submit"] = submit.Cid()
	native.ids["cancel"] = cancel.Cid()
	return rt.Flush()
}
