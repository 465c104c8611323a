package journal

import (
	"context"
	"testing"

	"wildcore/internal/adapter/repo/memory"
	"wildcore/internal/app/component"
	"wildcore/internal/app/dispatch"
	"wildcore/internal/app/ports"
	"wildcore/internal/domain/behavior"
)

type fakeAgent struct {
	id         string
	stepCount  uint64
	profileKey string
}

func (a *fakeAgent) ID() string         { return a.id }
func (a *fakeAgent) StableID() uint64   { return 1 }
func (a *fakeAgent) StepCount() uint64  { return a.stepCount }
func (a *fakeAgent) ProfileKey() string { return a.profileKey }
func (a *fakeAgent) Interactive() bool  { return true }

type fakeProfiles struct {
	profiles map[string]*behavior.Profile
}

func (f *fakeProfiles) Generation() uint64 { return 1 }
func (f *fakeProfiles) ProfileFor(key string) (*behavior.Profile, bool) {
	p, ok := f.profiles[key]
	return p, ok
}

type counterHandle struct {
	behavior.BaseHandle
}

func (counterHandle) ID() string                        { return "counter" }
func (counterHandle) Supports(p *behavior.Profile) bool { return p.HasHandle("counter") }

func (counterHandle) Tick(a behavior.Agent, c behavior.Container, p *behavior.Profile) {
	rec := c.Record("counter")
	out := rec.Clone()
	out.SetInt("ticks", rec.Int("ticks", 0)+1)
	c.SetRecord("counter", out)
}

func fixture(t *testing.T) (*UseCase, *component.Component, *fakeAgent, *memory.Store, dispatch.Dispatcher) {
	t.Helper()
	registry := behavior.NewRegistry()
	registry.Register(counterHandle{})
	registry.Seal()

	agent := &fakeAgent{id: "agent-1", profileKey: "wolf"}
	profiles := &fakeProfiles{profiles: map[string]*behavior.Profile{
		"wolf": {Key: "wolf", Handles: []string{"counter"}},
	}}
	c := component.New(agent, registry, profiles, nil)

	store := memory.NewStore()
	d := dispatch.Dispatcher{}
	u := New(
		memory.NewBehaviorStateRepo(store),
		memory.NewEventRepo(store),
		memory.NewTxManager(store),
		d,
		nil,
	)
	return u, c, agent, store, d
}

func TestCheckpointPersistsSnapshotAndEvents(t *testing.T) {
	u, c, agent, _, d := fixture(t)
	ctx := context.Background()

	detach := u.Attach(agent, c)
	defer detach()

	agent.stepCount = 1
	d.Step(c)

	if err := u.Checkpoint(ctx, c); err != nil {
		t.Fatalf("Checkpoint: %v", err)
	}

	snapshot, err := u.StateRepo.GetByAgentID(ctx, "agent-1")
	if err != nil {
		t.Fatalf("GetByAgentID: %v", err)
	}
	if snapshot.Version != 1 {
		t.Fatalf("snapshot version=%d want 1", snapshot.Version)
	}
	if snapshot.LastUpdateStep != 1 {
		t.Fatalf("snapshot watermark=%d want 1", snapshot.LastUpdateStep)
	}
	if snapshot.Records["counter"].Int("ticks", 0) != 1 {
		t.Fatalf("snapshot records=%v", snapshot.Records)
	}

	events, err := u.EventRepo.ListByAgentID(ctx, "agent-1", 0)
	if err != nil {
		t.Fatalf("ListByAgentID: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("events=%d want 1", len(events))
	}
	if events[0].HandleID != "counter" || events[0].Step != 1 {
		t.Fatalf("event=%+v", events[0])
	}
}

func TestCheckpointVersionsIncrementAndBufferDrains(t *testing.T) {
	u, c, agent, _, d := fixture(t)
	ctx := context.Background()

	detach := u.Attach(agent, c)
	defer detach()

	agent.stepCount = 1
	d.Step(c)
	if err := u.Checkpoint(ctx, c); err != nil {
		t.Fatalf("first checkpoint: %v", err)
	}

	// No new changes: second checkpoint writes version 2 with no new events.
	if err := u.Checkpoint(ctx, c); err != nil {
		t.Fatalf("second checkpoint: %v", err)
	}

	snapshot, _ := u.StateRepo.GetByAgentID(ctx, "agent-1")
	if snapshot.Version != 2 {
		t.Fatalf("version=%d want 2", snapshot.Version)
	}
	events, _ := u.EventRepo.ListByAgentID(ctx, "agent-1", 0)
	if len(events) != 1 {
		t.Fatalf("event buffer replayed: %d events want 1", len(events))
	}
}

func TestCheckpointRetriesOnVersionConflict(t *testing.T) {
	u, c, agent, store, d := fixture(t)
	ctx := context.Background()

	agent.stepCount = 1
	d.Step(c)

	// Another writer bumped the stored version behind the journal's back.
	store.SeedSnapshot(ports.BehaviorSnapshot{AgentID: "agent-1", Version: 5})

	if err := u.Checkpoint(ctx, c); err != nil {
		t.Fatalf("Checkpoint with stale version: %v", err)
	}
	snapshot, _ := u.StateRepo.GetByAgentID(ctx, "agent-1")
	if snapshot.Version != 6 {
		t.Fatalf("version after retry=%d want 6", snapshot.Version)
	}
}

func TestRestoreLoadsSnapshotAndVersion(t *testing.T) {
	u, c, agent, store, _ := fixture(t)
	ctx := context.Background()

	rec := behavior.NewRecord()
	rec.SetInt("ticks", 9)
	store.SeedSnapshot(ports.BehaviorSnapshot{
		AgentID:        "agent-1",
		Records:        map[string]behavior.Record{"counter": rec},
		LastUpdateStep: 40,
		Version:        3,
	})
	agent.stepCount = 50

	if err := u.Restore(ctx, c); err != nil {
		t.Fatalf("Restore: %v", err)
	}
	if got := c.Record("counter").Int("ticks", 0); got != 9 {
		t.Fatalf("restored ticks=%d want 9", got)
	}
	if c.LastUpdateStep() != 50 {
		t.Fatalf("restored watermark=%d want current step 50", c.LastUpdateStep())
	}

	// Next checkpoint must save against the restored version.
	if err := u.Checkpoint(ctx, c); err != nil {
		t.Fatalf("Checkpoint after restore: %v", err)
	}
	snapshot, _ := u.StateRepo.GetByAgentID(ctx, "agent-1")
	if snapshot.Version != 4 {
		t.Fatalf("version=%d want 4", snapshot.Version)
	}
}

func TestRestoreMissingSnapshotIsFreshAgent(t *testing.T) {
	u, c, _, _, _ := fixture(t)
	if err := u.Restore(context.Background(), c); err != nil {
		t.Fatalf("Restore on empty store: %v", err)
	}
	if c.LastUpdateStep() != -1 {
		t.Fatalf("fresh agent watermark=%d want -1", c.LastUpdateStep())
	}
}
