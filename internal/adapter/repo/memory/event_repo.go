package memory

import (
	"context"

	"wildcore/internal/app/ports"
)

type EventRepo struct {
	store *Store
}

func NewEventRepo(store *Store) EventRepo {
	return EventRepo{store: store}
}

// Append copies the events into the log. Records are cloned so later
// in-place mutation by the producer cannot edit what was logged.
func (r EventRepo) Append(_ context.Context, agentID string, events []ports.StateChangeEvent) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, event := range events {
		event.Old = event.Old.Clone()
		event.New = event.New.Clone()
		r.store.events[agentID] = append(r.store.events[agentID], event)
	}
	return nil
}

// ListByAgentID returns events newest-first, matching the SQL repo ordering.
func (r EventRepo) ListByAgentID(_ context.Context, agentID string, limit int) ([]ports.StateChangeEvent, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	stored := r.store.events[agentID]
	out := make([]ports.StateChangeEvent, 0, len(stored))
	for i := len(stored) - 1; i >= 0; i-- {
		out = append(out, stored[i])
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}
