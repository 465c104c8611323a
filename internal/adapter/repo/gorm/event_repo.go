package gormrepo

import (
	"context"
	"encoding/json"

	"wildcore/internal/app/ports"
	"wildcore/internal/domain/behavior"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type EventRepo struct {
	db *gorm.DB
}

func NewEventRepo(db *gorm.DB) EventRepo {
	return EventRepo{db: db}
}

func (r EventRepo) Append(ctx context.Context, agentID string, events []ports.StateChangeEvent) error {
	if len(events) == 0 {
		return nil
	}
	rows := make([]stateChangeEvent, 0, len(events))
	for _, e := range events {
		oldB, _ := json.Marshal(e.Old)
		newB, _ := json.Marshal(e.New)
		rows = append(rows, stateChangeEvent{
			AgentID:    agentID,
			HandleID:   e.HandleID,
			Step:       int64(e.Step),
			OccurredAt: e.OccurredAt,
			OldRecord:  oldB,
			NewRecord:  newB,
		})
	}
	return getDBFromCtx(ctx, r.db).Create(&rows).Error
}

func (r EventRepo) ListByAgentID(ctx context.Context, agentID string, limit int) ([]ports.StateChangeEvent, error) {
	rows := []stateChangeEvent{}
	query := getDBFromCtx(ctx, r.db).
		Where(&stateChangeEvent{AgentID: agentID}).
		Clauses(clause.OrderBy{
			Columns: []clause.OrderByColumn{{Column: clause.Column{Name: "occurred_at"}, Desc: true}},
		})
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}

	out := make([]ports.StateChangeEvent, 0, len(rows))
	for _, row := range rows {
		var oldRec, newRec behavior.Record
		if len(row.OldRecord) > 0 {
			_ = json.Unmarshal(row.OldRecord, &oldRec)
		}
		if len(row.NewRecord) > 0 {
			_ = json.Unmarshal(row.NewRecord, &newRec)
		}
		out = append(out, ports.StateChangeEvent{
			AgentID:    row.AgentID,
			HandleID:   row.HandleID,
			Step:       uint64(row.Step),
			OccurredAt: row.OccurredAt,
			Old:        oldRec,
			New:        newRec,
		})
	}
	return out, nil
}
