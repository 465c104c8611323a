package gormrepo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"wildcore/internal/app/ports"
	"wildcore/internal/domain/behavior"

	"gorm.io/gorm"
)

type BehaviorStateRepo struct {
	db *gorm.DB
}

func NewBehaviorStateRepo(db *gorm.DB) BehaviorStateRepo {
	return BehaviorStateRepo{db: db}
}

func (r BehaviorStateRepo) GetByAgentID(ctx context.Context, agentID string) (ports.BehaviorSnapshot, error) {
	var m agentBehavior
	if err := getDBFromCtx(ctx, r.db).Where("agent_id = ?", agentID).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.BehaviorSnapshot{}, ports.ErrNotFound
		}
		return ports.BehaviorSnapshot{}, err
	}

	records := map[string]behavior.Record{}
	if len(m.Records) > 0 {
		if err := json.Unmarshal(m.Records, &records); err != nil {
			return ports.BehaviorSnapshot{}, fmt.Errorf("decode records for %s: %w", agentID, err)
		}
	}
	return ports.BehaviorSnapshot{
		AgentID:        m.AgentID,
		Records:        records,
		LastUpdateStep: m.LastUpdateStep,
		Version:        m.Version,
	}, nil
}

func (r BehaviorStateRepo) SaveWithVersion(ctx context.Context, snapshot ports.BehaviorSnapshot, expectedVersion int64) error {
	db := getDBFromCtx(ctx, r.db)

	encoded, err := json.Marshal(snapshot.Records)
	if err != nil {
		return fmt.Errorf("encode records for %s: %w", snapshot.AgentID, err)
	}

	if expectedVersion == 0 {
		m := agentBehavior{
			AgentID:        snapshot.AgentID,
			Records:        encoded,
			LastUpdateStep: snapshot.LastUpdateStep,
			Version:        snapshot.Version,
		}
		return db.Create(&m).Error
	}

	res := db.Model(&agentBehavior{}).
		Where("agent_id = ? AND version = ?", snapshot.AgentID, expectedVersion).
		Updates(map[string]any{
			"records":          encoded,
			"last_update_step": snapshot.LastUpdateStep,
			"version":          snapshot.Version,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ports.ErrConflict
	}
	return nil
}
