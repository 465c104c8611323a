package memory

import (
	"context"

	"wildcore/internal/app/ports"
	"wildcore/internal/domain/behavior"
)

type BehaviorStateRepo struct {
	store *Store
}

func NewBehaviorStateRepo(store *Store) BehaviorStateRepo {
	return BehaviorStateRepo{store: store}
}

func (r BehaviorStateRepo) GetByAgentID(_ context.Context, agentID string) (ports.BehaviorSnapshot, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	snapshot, ok := r.store.state[agentID]
	if !ok {
		return ports.BehaviorSnapshot{}, ports.ErrNotFound
	}
	return cloneSnapshot(snapshot), nil
}

func (r BehaviorStateRepo) SaveWithVersion(_ context.Context, snapshot ports.BehaviorSnapshot, expectedVersion int64) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	current, ok := r.store.state[snapshot.AgentID]
	if !ok {
		if expectedVersion != 0 {
			return ports.ErrConflict
		}
		r.store.state[snapshot.AgentID] = cloneSnapshot(snapshot)
		return nil
	}
	if current.Version != expectedVersion {
		return ports.ErrConflict
	}
	r.store.state[snapshot.AgentID] = cloneSnapshot(snapshot)
	return nil
}

func cloneSnapshot(snapshot ports.BehaviorSnapshot) ports.BehaviorSnapshot {
	out := snapshot
	out.Records = make(map[string]behavior.Record, len(snapshot.Records))
	for id, rec := range snapshot.Records {
		out.Records[id] = rec.Clone()
	}
	return out
}
