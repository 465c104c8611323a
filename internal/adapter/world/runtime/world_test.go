package runtime

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"wildcore/internal/adapter/profile/yamlfs"
	"wildcore/internal/adapter/repo/memory"
	"wildcore/internal/app/dispatch"
	"wildcore/internal/app/handles"
	"wildcore/internal/app/journal"
	"wildcore/internal/domain/behavior"
)

func testProfiles(t *testing.T) *yamlfs.Source {
	t.Helper()
	dir := t.TempDir()
	content := "key: wolf\nhandles: [hunger, energy]\nparams:\n  hunger:\n    initial: 100\n    decay_per_step: 0.25\n"
	if err := os.WriteFile(filepath.Join(dir, "wolf.yaml"), []byte(content), 0o644); err != nil {
		t.Fatalf("write profile: %v", err)
	}
	s := yamlfs.NewSource(dir)
	if err := s.Load(); err != nil {
		t.Fatalf("load profiles: %v", err)
	}
	return s
}

func testWorld(t *testing.T) (*World, *memory.Store, *journal.UseCase) {
	t.Helper()
	registry := behavior.NewRegistry()
	handles.RegisterBuiltin(registry)
	registry.Seal()

	store := memory.NewStore()
	jnl := journal.New(
		memory.NewBehaviorStateRepo(store),
		memory.NewEventRepo(store),
		memory.NewTxManager(store),
		dispatch.Dispatcher{},
		nil,
	)

	w := NewWorld(registry, testProfiles(t), jnl, nil, nil, Config{CheckpointEvery: 4})
	return w, store, jnl
}

func TestSpawnAndStep(t *testing.T) {
	w, _, _ := testWorld(t)
	ctx := context.Background()

	id, err := w.Spawn(ctx, "wolf", 0, 0, true)
	if err != nil {
		t.Fatalf("Spawn: %v", err)
	}
	if w.AgentCount() != 1 {
		t.Fatalf("AgentCount()=%d want 1", w.AgentCount())
	}

	w.StepOnce(ctx)
	if w.CurrentStep() != 1 {
		t.Fatalf("CurrentStep()=%d want 1", w.CurrentStep())
	}

	c, ok := w.Container(id)
	if !ok {
		t.Fatalf("Container(%q) missing", id)
	}
	if c.LastUpdateStep() != 1 {
		t.Fatalf("interactive agent not processed: watermark=%d", c.LastUpdateStep())
	}
	if got := c.Record("hunger").Float("value", 0); got != 99.75 {
		t.Fatalf("hunger after one step=%v want 99.75", got)
	}
}

func TestNearestObserverDistance(t *testing.T) {
	w, _, _ := testWorld(t)
	ctx := context.Background()

	id, err := w.Spawn(ctx, "wolf", 10, 0, false)
	if err != nil {
		t.Fatalf("Spawn: %v", err)
	}
	agent, _ := w.Container(id)

	if _, present := w.NearestObserverDistance(agent.Agent()); present {
		t.Fatalf("no observers yet, got present=true")
	}

	w.AddObserver("far", 100, 0)
	w.AddObserver("near", 13, 4)
	dist, present := w.NearestObserverDistance(agent.Agent())
	if !present || dist != 5 {
		t.Fatalf("distance=(%v,%v) want (5,true)", dist, present)
	}

	w.RemoveObserver("near")
	dist, _ = w.NearestObserverDistance(agent.Agent())
	if dist != 90 {
		t.Fatalf("distance after removal=%v want 90", dist)
	}
}

func TestCheckpointCadencePersistsState(t *testing.T) {
	w, _, jnl := testWorld(t)
	ctx := context.Background()

	id, err := w.Spawn(ctx, "wolf", 0, 0, true)
	if err != nil {
		t.Fatalf("Spawn: %v", err)
	}

	for i := 0; i < 4; i++ {
		w.StepOnce(ctx)
	}

	snapshot, err := jnl.StateRepo.GetByAgentID(ctx, id)
	if err != nil {
		t.Fatalf("state not persisted at checkpoint cadence: %v", err)
	}
	if snapshot.Version != 1 {
		t.Fatalf("version=%d want 1", snapshot.Version)
	}
	if snapshot.LastUpdateStep != 4 {
		t.Fatalf("watermark=%d want 4", snapshot.LastUpdateStep)
	}
}

func TestDespawnCheckpointsAndRemoves(t *testing.T) {
	w, _, jnl := testWorld(t)
	ctx := context.Background()

	id, _ := w.Spawn(ctx, "wolf", 0, 0, true)
	w.StepOnce(ctx)

	if err := w.Despawn(ctx, id); err != nil {
		t.Fatalf("Despawn: %v", err)
	}
	if w.AgentCount() != 0 {
		t.Fatalf("AgentCount()=%d want 0", w.AgentCount())
	}
	if _, err := jnl.StateRepo.GetByAgentID(ctx, id); err != nil {
		t.Fatalf("despawn did not checkpoint: %v", err)
	}
	if err := w.Despawn(ctx, id); err == nil {
		t.Fatalf("double despawn should fail")
	}
}

func TestDespawnPersistsHandleRecords(t *testing.T) {
	w, store, _ := testWorld(t)
	ctx := context.Background()

	id, _ := w.Spawn(ctx, "wolf", 0, 0, true)
	for i := 0; i < 4; i++ {
		w.StepOnce(ctx)
	}
	if err := w.Despawn(ctx, id); err != nil {
		t.Fatalf("Despawn: %v", err)
	}

	snapshot, err := memory.NewBehaviorStateRepo(store).GetByAgentID(ctx, id)
	if err != nil {
		t.Fatalf("read persisted snapshot: %v", err)
	}
	if snapshot.Records["hunger"] == nil {
		t.Fatalf("snapshot missing hunger record: %+v", snapshot.Records)
	}
	if got := snapshot.Records["hunger"].Float("value", 0); got != 99 {
		t.Fatalf("persisted hunger=%v want 99 after 4 steps", got)
	}
}

func TestStableIDDeterministicPerAgent(t *testing.T) {
	if stableIDFor("agent-1") != stableIDFor("agent-1") {
		t.Fatalf("stable id not deterministic")
	}
	if stableIDFor("agent-1") == stableIDFor("agent-2") {
		t.Fatalf("distinct agents share a stable id")
	}
}

func TestControlPlaneQueriesDuringStepLoop(t *testing.T) {
	w, _, _ := testWorld(t)
	ctx := context.Background()

	id, err := w.Spawn(ctx, "wolf", 0, 0, true)
	if err != nil {
		t.Fatalf("Spawn: %v", err)
	}

	const steps = 200
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		for i := 0; i < steps; i++ {
			w.StepOnce(ctx)
		}
	}()

	go func() {
		defer wg.Done()
		for i := 0; i < steps; i++ {
			w.IsFood(id, "meat", false)
			w.MoveAgent(id, float64(i), 0)
			w.SetInteractive(id, i%2 == 0)
		}
	}()

	wg.Wait()
	if w.CurrentStep() != steps {
		t.Fatalf("CurrentStep()=%d want %d", w.CurrentStep(), steps)
	}

	c, ok := w.Container(id)
	if !ok {
		t.Fatalf("Container(%q) missing", id)
	}
	if got := c.Record("hunger").Float("value", 100); got >= 100 {
		t.Fatalf("hunger=%v, agent was never processed across %d steps", got, steps)
	}
}

func TestIsFoodFallsBackForUnknownAgent(t *testing.T) {
	w, _, _ := testWorld(t)
	if got := w.IsFood("missing", "meat", true); got != true {
		t.Fatalf("IsFood for unknown agent=%v want original", got)
	}
}
