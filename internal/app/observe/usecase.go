// Package observe reads persisted agent behavior state for inspection.
package observe

import (
	"context"
	"errors"

	"wildcore/internal/app/ports"
)

var ErrInvalidRequest = errors.New("invalid request")

const defaultEventLimit = 100

type UseCase struct {
	StateRepo ports.BehaviorStateRepository
	EventRepo ports.EventRepository
}

func (u UseCase) Execute(ctx context.Context, req Request) (Response, error) {
	if req.AgentID == "" {
		return Response{}, ErrInvalidRequest
	}

	snapshot, err := u.StateRepo.GetByAgentID(ctx, req.AgentID)
	if err != nil {
		return Response{}, err
	}
	return Response{
		AgentID:        snapshot.AgentID,
		Records:        snapshot.Records,
		LastUpdateStep: snapshot.LastUpdateStep,
		Version:        snapshot.Version,
	}, nil
}

func (u UseCase) Events(ctx context.Context, req EventsRequest) (EventsResponse, error) {
	if req.AgentID == "" {
		return EventsResponse{}, ErrInvalidRequest
	}
	limit := req.Limit
	if limit <= 0 {
		limit = defaultEventLimit
	}

	events, err := u.EventRepo.ListByAgentID(ctx, req.AgentID, limit)
	if err != nil {
		return EventsResponse{}, err
	}

	out := EventsResponse{AgentID: req.AgentID, Events: make([]EventEntry, 0, len(events))}
	for _, e := range events {
		out.Events = append(out.Events, EventEntry{
			HandleID:   e.HandleID,
			Step:       e.Step,
			OccurredAt: e.OccurredAt.Unix(),
			Old:        e.Old,
			New:        e.New,
		})
	}
	return out, nil
}
