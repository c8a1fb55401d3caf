// Package testing provides a test harness for code built on the bridge.
//
// # Quick Start
//
// Create a tester, create objects and assert on the recorded operations:
//
//	func TestMyWidget(t *testing.T) {
//	    tester := bridgetest.NewTesterWithT(t)
//	    btn, _ := widgets.NewButton(tester.Runtime(), map[string]any{"text": "Submit"})
//
//	    ops := tester.Flush()
//	    if !tester.Find(bridgetest.ByKind(bridge.OpCreate)).Exists() {
//	        t.Error("expected a create operation")
//	    }
//
//	    tester.Notify(btn.Cid(), "select", nil)
//	}
//
// # Snapshot Testing
//
// Compare the flushed operations against a golden transcript:
//
//	snapshot := tester.CaptureSnapshot()
//	snapshot.MatchesFile(t, "testdata/button.snapshot.json")
//
// Update snapshots with:
//
//	NATIVEBRIDGE_UPDATE_SNAPSHOTS=1 go test ./...
//
// # Error Capture
//
// The tester installs an error handler that records reported errors,
// panics and hints. Inspect them with Errors, Panics and Hints.
package testing
