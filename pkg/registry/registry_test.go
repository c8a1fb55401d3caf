package registry

import (
	"errors"
	"runtime"
	"testing"
)

type entry struct{ name string }

func TestRegisterAssignsFreshIDs(t *testing.T) {
	r := New[entry]()
	a, b := &entry{"a"}, &entry{"b"}

	idA := r.Register(a)
	idB := r.Register(b)

	if idA == idB {
		t.Fatalf("identifiers collide: %s", idA)
	}
	if idA != "$1" || idB != "$2" {
		t.Errorf("ids = %s, %s; want $1, $2", idA, idB)
	}
	if r.Find(idA) != a || r.Find(idB) != b {
		t.Error("Find did not resolve registered objects")
	}
	runtime.KeepAlive(a)
	runtime.KeepAlive(b)
}

func TestRemovedIDsAreNeverReissued(t *testing.T) {
	r := New[entry]()
	first := &entry{"first"}
	id := r.Register(first)
	r.Remove(id)

	if r.Find(id) != nil {
		t.Errorf("Find(%s) after Remove should be nil", id)
	}
	second := &entry{"second"}
	if got := r.Register(second); got == id {
		t.Errorf("identifier %s reissued", got)
	}
	if err := r.RegisterID(id, second); !errors.Is(err, ErrDuplicateID) {
		t.Errorf("RegisterID(%s) error = %v, want ErrDuplicateID", id, err)
	}
	runtime.KeepAlive(second)
}

func TestRemoveIsIdempotent(t *testing.T) {
	r := New[entry]()
	r.Remove("$404")
	obj := &entry{}
	id := r.Register(obj)
	r.Remove(id)
	r.Remove(id)
	if r.Len() != 0 {
		t.Errorf("Len() = %d, want 0", r.Len())
	}
}

func TestRegisterIDSkippedByCounter(t *testing.T) {
	r := New[entry]()
	explicit := &entry{"explicit"}
	if err := r.RegisterID("$1", explicit); err != nil {
		t.Fatal(err)
	}
	generated := &entry{"generated"}
	if id := r.Register(generated); id != "$2" {
		t.Errorf("Register() = %s, want $2", id)
	}
	if err := r.RegisterID("", generated); err == nil {
		t.Error("RegisterID with empty id should fail")
	}
	if err := r.RegisterID("o1", generated); err != nil {
		t.Errorf("RegisterID(o1) error = %v", err)
	}
	if r.Find("o1") != generated {
		t.Error("Find(o1) did not resolve")
	}
	if got := len(r.IDs()); got != 3 {
		t.Errorf("len(IDs()) = %d, want 3", got)
	}
	runtime.KeepAlive(explicit)
	runtime.KeepAlive(generated)
}

func TestRegistryDoesNotRetainObjects(t *testing.T) {
	r := New[entry]()
	id := r.Register(&entry{"temporary"})

	for i := 0; i < 10 && r.Find(id) != nil; i++ {
		runtime.GC()
	}
	if r.Find(id) != nil {
		t.Skip("object not collected yet")
	}
	if r.Len() != 0 {
		t.Errorf("collected entry not pruned, Len() = %d", r.Len())
	}
}
