package ports

import "wildcore/internal/domain/behavior"

// ProfileSource supplies resolved behavior profiles per agent-type key,
// versioned by a monotonic generation counter. Containers compare their
// stored generation against Generation() to know when to re-resolve.
type ProfileSource interface {
	Generation() uint64
	ProfileFor(key string) (*behavior.Profile, bool)
}
