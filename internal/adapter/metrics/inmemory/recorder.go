package inmemory

import (
	"sync"

	"wildcore/internal/domain/behavior"
)

type Snapshot struct {
	StepTotal         uint64            `json:"step_total"`
	StepActive        uint64            `json:"step_active"`
	StepCatchUp       uint64            `json:"step_catch_up"`
	StepSkip          uint64            `json:"step_skip"`
	HandleFaults      map[string]uint64 `json:"handle_faults"`
	ValidationRejects map[string]uint64 `json:"validation_rejects"`
	Refreshes         uint64            `json:"refreshes"`
}

type Recorder struct {
	mu        sync.Mutex
	active    uint64
	catchUp   uint64
	skip      uint64
	faults    map[string]uint64
	rejects   map[string]uint64
	refreshes uint64
}

func NewRecorder() *Recorder {
	return &Recorder{
		faults:  map[string]uint64{},
		rejects: map[string]uint64{},
	}
}

func (r *Recorder) RecordMode(mode behavior.UpdateMode) {
	r.mu.Lock()
	defer r.mu.Unlock()
	switch mode {
	case behavior.ModeActive:
		r.active++
	case behavior.ModeCatchUp:
		r.catchUp++
	default:
		r.skip++
	}
}

func (r *Recorder) RecordHandleFault(handleID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.faults[handleID]++
}

func (r *Recorder) RecordValidationReject(handleID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rejects[handleID]++
}

func (r *Recorder) RecordRefresh() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.refreshes++
}

func (r *Recorder) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := Snapshot{
		StepActive:        r.active,
		StepCatchUp:       r.catchUp,
		StepSkip:          r.skip,
		StepTotal:         r.active + r.catchUp + r.skip,
		HandleFaults:      make(map[string]uint64, len(r.faults)),
		ValidationRejects: make(map[string]uint64, len(r.rejects)),
		Refreshes:         r.refreshes,
	}
	for k, v := range r.faults {
		out.HandleFaults[k] = v
	}
	for k, v := range r.rejects {
		out.ValidationRejects[k] = v
	}
	return out
}

func (r *Recorder) SnapshotAny() any {
	return r.Snapshot()
}
