// Package core provides bridged objects and the runtime that connects them
// to the native side.
//
// A Runtime owns three collaborators: the identity registry that maps
// native identifiers to local objects, the type registry that validates and
// encodes every property value, and the bridge that queues outgoing
// operations until they are flushed.
//
// # Objects
//
// Object types are described by a Schema:
//
//	var labelSchema = core.Define(core.SchemaDef{
//	    Type: "tabris.TextView",
//	    Properties: []core.Property{
//	        {Name: "text", Type: types.T("string"), Default: ""},
//	        {Name: "textColor", Type: types.T("ColorValue")},
//	    },
//	})
//
//	label, err := rt.New(labelSchema, core.WithProps(map[string]any{"text": "Hello"}))
//
// Initial properties are folded into the create operation. Later writes
// through Set queue set operations; values equal to the cached value are
// not sent again.
//
// # Notifications
//
// Native callbacks enter through Runtime.Notify, one at a time. Listeners
// run in registration order and are isolated from each other. After every
// notification the flush signal fires, so observers can coalesce the
// changes of one native round trip.
//
// A Runtime is not safe for concurrent use. Wrap it in a Loop when native
// callbacks arrive on other goroutines.
package core
