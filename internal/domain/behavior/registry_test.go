package behavior

import "testing"

type stubHandle struct {
	BaseHandle
	id       string
	supports bool
}

func (h stubHandle) ID() string             { return h.id }
func (h stubHandle) Supports(*Profile) bool { return h.supports }

func handleIDs(handles []Handle) []string {
	out := make([]string, 0, len(handles))
	for _, h := range handles {
		out = append(out, h.ID())
	}
	return out
}

func TestRegistryResolvePreservesRegistrationOrder(t *testing.T) {
	r := NewRegistry()
	r.Register(stubHandle{id: "a", supports: true})
	r.Register(stubHandle{id: "b", supports: false})
	r.Register(stubHandle{id: "c", supports: true})

	got := handleIDs(r.Resolve(&Profile{Key: "k"}))
	want := []string{"a", "c"}
	if len(got) != len(want) {
		t.Fatalf("Resolve()=%v want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Resolve()=%v want %v", got, want)
		}
	}
}

func TestRegistryResolveNilProfile(t *testing.T) {
	r := NewRegistry()
	r.Register(stubHandle{id: "a", supports: true})
	if got := r.Resolve(nil); got != nil {
		t.Fatalf("Resolve(nil)=%v want nil", got)
	}
}

func TestRegistryKeepsDuplicateIDs(t *testing.T) {
	r := NewRegistry()
	r.Register(stubHandle{id: "a", supports: true})
	r.Register(stubHandle{id: "a", supports: true})

	got := r.Resolve(&Profile{Key: "k"})
	if len(got) != 2 {
		t.Fatalf("expected duplicate registrations to resolve twice, got %d", len(got))
	}
}

func TestRegistrySealStopsRegistration(t *testing.T) {
	r := NewRegistry()
	r.Register(stubHandle{id: "a", supports: true})
	r.Seal()
	r.Register(stubHandle{id: "b", supports: true})

	if len(r.Handles()) != 1 {
		t.Fatalf("expected 1 handle after sealed register, got %d", len(r.Handles()))
	}
	if !r.Sealed() {
		t.Fatalf("expected Sealed()=true")
	}
}

func TestRegistrySlotIndexFirstEight(t *testing.T) {
	r := NewRegistry()
	ids := []string{"h0", "h1", "h2", "h3", "h4", "h5", "h6", "h7", "h8", "h9"}
	for _, id := range ids {
		r.Register(stubHandle{id: id, supports: true})
	}

	for i := 0; i < FastSlots; i++ {
		if got := r.SlotIndex(ids[i]); got != i {
			t.Fatalf("SlotIndex(%q)=%d want %d", ids[i], got, i)
		}
	}
	for _, id := range ids[FastSlots:] {
		if got := r.SlotIndex(id); got != -1 {
			t.Fatalf("SlotIndex(%q)=%d want -1", id, got)
		}
	}
	if got := r.SlotIndex("missing"); got != -1 {
		t.Fatalf("SlotIndex(missing)=%d want -1", got)
	}
}

func TestMergeHandlesOverrideReplacesInPlace(t *testing.T) {
	profileHandles := []Handle{
		stubHandle{id: "a"},
		stubHandle{id: "b"},
		stubHandle{id: "c"},
	}
	override := stubHandle{id: "b", supports: true}

	got := MergeHandles(profileHandles, []Handle{override})
	want := []string{"a", "b", "c"}
	gotIDs := handleIDs(got)
	for i := range want {
		if gotIDs[i] != want[i] {
			t.Fatalf("merged order=%v want %v", gotIDs, want)
		}
	}
	if got[1].(stubHandle).supports != true {
		t.Fatalf("expected override instance at position 1")
	}
}

func TestMergeHandlesNewOverridesAppendInOrder(t *testing.T) {
	profileHandles := []Handle{stubHandle{id: "a"}}
	overrides := []Handle{
		stubHandle{id: "x"},
		stubHandle{id: "a"},
		stubHandle{id: "y"},
	}

	got := handleIDs(MergeHandles(profileHandles, overrides))
	want := []string{"a", "x", "y"}
	if len(got) != len(want) {
		t.Fatalf("merged=%v want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("merged=%v want %v", got, want)
		}
	}
}

func TestMergeHandlesEmptySides(t *testing.T) {
	only := []Handle{stubHandle{id: "a"}}
	if got := MergeHandles(only, nil); len(got) != 1 || got[0].ID() != "a" {
		t.Fatalf("MergeHandles(p, nil) lost the profile handles")
	}
	if got := MergeHandles(nil, only); len(got) != 1 || got[0].ID() != "a" {
		t.Fatalf("MergeHandles(nil, o) lost the overrides")
	}
}
