package memory

import (
	"sync"

	"wildcore/internal/app/ports"
)

// Store is the shared backing map for the in-memory repos. mu guards the
// maps for every repo operation; txMu additionally serializes whole RunInTx
// bodies so a checkpoint's state write and event append land together.
type Store struct {
	mu     sync.RWMutex
	txMu   sync.Mutex
	state  map[string]ports.BehaviorSnapshot
	events map[string][]ports.StateChangeEvent
}

func NewStore() *Store {
	return &Store{
		state:  make(map[string]ports.BehaviorSnapshot),
		events: make(map[string][]ports.StateChangeEvent),
	}
}

func (s *Store) SeedSnapshot(snapshot ports.BehaviorSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state[snapshot.AgentID] = cloneSnapshot(snapshot)
}
