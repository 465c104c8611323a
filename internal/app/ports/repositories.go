package ports

import (
	"context"
	"time"

	"wildcore/internal/domain/behavior"
)

// BehaviorSnapshot is the persisted form of one agent's behavior state:
// every handle's written record plus the scheduling watermark.
type BehaviorSnapshot struct {
	AgentID        string
	Records        map[string]behavior.Record
	LastUpdateStep int64
	Version        int64
}

type BehaviorStateRepository interface {
	GetByAgentID(ctx context.Context, agentID string) (BehaviorSnapshot, error)
	// SaveWithVersion persists the snapshot iff the stored version still
	// equals expectedVersion (0 means "must not exist yet"); otherwise
	// ErrConflict.
	SaveWithVersion(ctx context.Context, snapshot BehaviorSnapshot, expectedVersion int64) error
}

// StateChangeEvent records one accepted SetRecord that changed a handle's
// value. Emitted by the container's change listeners.
type StateChangeEvent struct {
	AgentID    string          `json:"agent_id"`
	HandleID   string          `json:"handle_id"`
	Step       uint64          `json:"step"`
	OccurredAt time.Time       `json:"occurred_at"`
	Old        behavior.Record `json:"old,omitempty"`
	New        behavior.Record `json:"new,omitempty"`
}

type EventRepository interface {
	Append(ctx context.Context, agentID string, events []StateChangeEvent) error
	ListByAgentID(ctx context.Context, agentID string, limit int) ([]StateChangeEvent, error)
}
