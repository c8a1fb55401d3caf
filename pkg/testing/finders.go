package testing

import (
	"fmt"
	"strings"

	"github.com/go-drift/nativebridge/pkg/bridge"
)

// Finder selects operations from a transcript.
type Finder interface {
	// Evaluate returns all matching operations in delivery order.
	Evaluate(ops []bridge.Operation) []bridge.Operation
	// Description returns a human-readable description for error messages.
	Description() string
}

// FinderResult wraps finder results with convenient accessors.
type FinderResult struct {
	ops    []bridge.Operation
	finder Finder
}

// First returns the first match. Panics if no matches.
func (r FinderResult) First() bridge.Operation {
	if len(r.ops) == 0 {
		panic(fmt.Sprintf("Finder found no operations: %s", r.describe()))
	}
	return r.ops[0]
}

// At returns the match at index. Panics if out of range.
func (r FinderResult) At(index int) bridge.Operation {
	if index < 0 || index >= len(r.ops) {
		panic(fmt.Sprintf("Finder index %d out of range (found %d): %s", index, len(r.ops), r.describe()))
	}
	return r.ops[index]
}

// All returns all matches in delivery order.
func (r FinderResult) All() []bridge.Operation {
	return r.ops
}

// Count returns the number of matches.
func (r FinderResult) Count() int {
	return len(r.ops)
}

// Exists reports whether at least one operation matched.
func (r FinderResult) Exists() bool {
	return len(r.ops) > 0
}

func (r FinderResult) describe() string {
	if r.finder == nil {
		return "unknown"
	}
	return r.finder.Description()
}

type predicateFinder struct {
	match func(bridge.Operation) bool
	desc  string
}

func (f predicateFinder) Evaluate(ops []bridge.Operation) []bridge.Operation {
	var out []bridge.Operation
	for _, op := range ops {
		if f.match(op) {
			out = append(out, op)
		}
	}
	return out
}

func (f predicateFinder) Description() string {
	return f.desc
}

// ByKind matches operations of the given kind.
func ByKind(kind bridge.OpKind) Finder {
	return predicateFinder{
		match: func(op bridge.Operation) bool { return op.Op == kind },
		desc:  fmt.Sprintf("ByKind(%s)", kind),
	}
}

// ByID matches operations addressed to the given object.
func ByID(id string) Finder {
	return predicateFinder{
		match: func(op bridge.Operation) bool { return op.ID == id },
		desc:  fmt.Sprintf("ByID(%q)", id),
	}
}

// ByName matches set, call and listen operations for the given property,
// method or event name.
func ByName(name string) Finder {
	return predicateFinder{
		match: func(op bridge.Operation) bool { return op.Name == name },
		desc:  fmt.Sprintf("ByName(%q)", name),
	}
}

// ByType matches create operations of the given native type.
func ByType(nativeType string) Finder {
	return predicateFinder{
		match: func(op bridge.Operation) bool { return op.Op == bridge.OpCreate && op.Type == nativeType },
		desc:  fmt.Sprintf("ByType(%q)", nativeType),
	}
}

// And matches operations accepted by every finder.
func And(finders ...Finder) Finder {
	descs := make([]string, len(finders))
	for i, f := range finders {
		descs[i] = f.Description()
	}
	return predicateFinder{
		match: func(op bridge.Operation) bool {
			for _, f := range finders {
				if len(f.Evaluate([]bridge.Operation{op})) == 0 {
					return false
				}
			}
			return true
		},
		desc: strings.Join(descs, " && "),
	}
}
