package observe

import "wildcore/internal/domain/behavior"

type Request struct {
	AgentID string
}

type Response struct {
	AgentID        string                     `json:"agent_id"`
	Records        map[string]behavior.Record `json:"records"`
	LastUpdateStep int64                      `json:"last_update_step"`
	Version        int64                      `json:"version"`
}

type EventsRequest struct {
	AgentID string
	Limit   int
}

type EventsResponse struct {
	AgentID string       `json:"agent_id"`
	Events  []EventEntry `json:"events"`
}

type EventEntry struct {
	HandleID   string          `json:"handle_id"`
	Step       uint64          `json:"step"`
	OccurredAt int64           `json:"occurred_at"`
	Old        behavior.Record `json:"old,omitempty"`
	New        behavior.Record `json:"new,omitempty"`
}
