package gormrepo

import "time"

// agentBehavior is the persisted behavior snapshot row: one row per agent,
// handle records as a JSON document, optimistic version column.
type agentBehavior struct {
	AgentID        string `gorm:"primaryKey;column:agent_id"`
	Records        []byte `gorm:"column:records;type:jsonb"`
	LastUpdateStep int64  `gorm:"column:last_update_step"`
	Version        int64  `gorm:"column:version"`
	UpdatedAt      time.Time
}

func (agentBehavior) TableName() string { return "agent_behavior" }

type stateChangeEvent struct {
	ID         int64     `gorm:"primaryKey;autoIncrement"`
	AgentID    string    `gorm:"column:agent_id;index"`
	HandleID   string    `gorm:"column:handle_id"`
	Step       int64     `gorm:"column:step"`
	OccurredAt time.Time `gorm:"column:occurred_at;index"`
	OldRecord  []byte    `gorm:"column:old_record;type:jsonb"`
	NewRecord  []byte    `gorm:"column:new_record;type:jsonb"`
}

func (stateChangeEvent) TableName() string { return "state_change_events" }
