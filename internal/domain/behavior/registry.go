package behavior

// FastSlots is the size of the container's fixed fast-path record cache.
// The first FastSlots distinct handle ids registered get an array slot;
// everything else goes through the per-step map cache.
const FastSlots = 8

// Registry is the process-wide ordered list of available handles.
// Registration happens once at startup, before any stepping; after Seal the
// registry is read-only and safe to share without synchronization.
//
// Duplicate ids are not rejected: resolution preserves registration order,
// duplicates included. Tick invocation order is registration order.
type Registry struct {
	handles []Handle
	slots   map[string]int
	sealed  bool
}

func NewRegistry() *Registry {
	return &Registry{slots: make(map[string]int, FastSlots)}
}

func (r *Registry) Register(h Handle) {
	if h == nil || r.sealed {
		return
	}
	r.handles = append(r.handles, h)
	if _, seen := r.slots[h.ID()]; !seen && len(r.slots) < FastSlots {
		r.slots[h.ID()] = len(r.slots)
	}
}

// Seal marks the registration phase complete.
func (r *Registry) Seal() {
	r.sealed = true
}

func (r *Registry) Sealed() bool {
	return r.sealed
}

// Reset reopens the registry and drops everything registered so far.
func (r *Registry) Reset() {
	r.handles = nil
	r.slots = make(map[string]int, FastSlots)
	r.sealed = false
}

func (r *Registry) Handles() []Handle {
	return r.handles
}

// SlotIndex returns the fast-path slot for a handle id, or -1.
func (r *Registry) SlotIndex(id string) int {
	if idx, ok := r.slots[id]; ok {
		return idx
	}
	return -1
}

// Resolve filters the registered handles by Supports, preserving
// registration order. A nil profile resolves to nothing.
func (r *Registry) Resolve(p *Profile) []Handle {
	if p == nil {
		return nil
	}
	out := make([]Handle, 0, len(r.handles))
	for _, h := range r.handles {
		if h.Supports(p) {
			out = append(out, h)
		}
	}
	return out
}

// MergeHandles combines profile-resolved handles with an explicit per-agent
// override list. An override replaces a profile handle sharing its id in
// place; overrides with new ids append after the profile handles in override
// order.
func MergeHandles(profileHandles, overrides []Handle) []Handle {
	if len(overrides) == 0 {
		return profileHandles
	}
	if len(profileHandles) == 0 {
		return overrides
	}

	byID := make(map[string]Handle, len(overrides))
	for _, h := range overrides {
		if _, dup := byID[h.ID()]; !dup {
			byID[h.ID()] = h
		}
	}

	merged := make([]Handle, 0, len(profileHandles)+len(overrides))
	used := make(map[string]bool, len(byID))
	for _, h := range profileHandles {
		if o, ok := byID[h.ID()]; ok {
			if !used[h.ID()] {
				merged = append(merged, o)
				used[h.ID()] = true
			}
			continue
		}
		merged = append(merged, h)
	}
	for _, h := range overrides {
		if !used[h.ID()] {
			merged = append(merged, h)
			used[h.ID()] = true
		}
	}
	return merged
}
