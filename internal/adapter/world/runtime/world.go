// Package runtime hosts simulated agents and drives their behavior
// containers through the step dispatcher on a fixed cadence.
package runtime

import (
	"context"
	"math"
	"sync"
	"time"

	"wildcore/internal/app/component"
	"wildcore/internal/app/dispatch"
	"wildcore/internal/app/journal"
	"wildcore/internal/app/ports"
	"wildcore/internal/domain/behavior"

	"go.uber.org/zap"
)

type Config struct {
	StepInterval    time.Duration
	CheckpointEvery uint64
	Dispatch        dispatch.Config
}

func DefaultConfig() Config {
	return Config{
		StepInterval:    50 * time.Millisecond,
		CheckpointEvery: 200,
	}
}

func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if c.StepInterval <= 0 {
		c.StepInterval = def.StepInterval
	}
	if c.CheckpointEvery == 0 {
		c.CheckpointEvery = def.CheckpointEvery
	}
	return c
}

type observer struct {
	id   string
	x, y float64
}

// hostedAgent pairs an agent with its container. The container is not safe
// for concurrent use, so the step loop and the control-plane queries
// (food checks, checkpoints) both hold mu while touching it.
type hostedAgent struct {
	agent     *SimAgent
	container *component.Component
	detach    func()

	mu sync.Mutex
}

type World struct {
	log        *zap.Logger
	registry   *behavior.Registry
	profiles   ports.ProfileSource
	journal    *journal.UseCase
	metrics    ports.StepMetrics
	dispatcher dispatch.Dispatcher
	cfg        Config

	mu        sync.RWMutex
	agents    map[string]*hostedAgent
	order     []string
	observers map[string]observer
	step      uint64
}

func NewWorld(registry *behavior.Registry, profiles ports.ProfileSource, jnl *journal.UseCase, metrics ports.StepMetrics, log *zap.Logger, cfg Config) *World {
	if log == nil {
		log = zap.NewNop()
	}
	cfg = cfg.withDefaults()
	w := &World{
		log:       log,
		registry:  registry,
		profiles:  profiles,
		journal:   jnl,
		metrics:   metrics,
		cfg:       cfg,
		agents:    map[string]*hostedAgent{},
		observers: map[string]observer{},
	}
	w.dispatcher = dispatch.Dispatcher{
		Observers: w,
		Metrics:   metrics,
		Log:       log,
		Config:    cfg.Dispatch,
	}
	return w
}

// Spawn creates an agent, restores any persisted state, and adds it to the
// step loop. Returns the new agent id.
func (w *World) Spawn(ctx context.Context, profileKey string, x, y float64, interactive bool) (string, error) {
	agent := newSimAgent(profileKey, x, y, interactive)
	c := component.New(agent, w.registry, w.profiles, w.log)
	if w.metrics != nil {
		c.SetMetrics(w.metrics)
	}

	hosted := &hostedAgent{agent: agent, container: c}
	if w.journal != nil {
		hosted.detach = w.journal.Attach(agent, c)
		if err := w.journal.Restore(ctx, c); err != nil {
			hosted.detach()
			return "", err
		}
	}

	w.mu.Lock()
	agent.setStepCount(w.step)
	w.agents[agent.id] = hosted
	w.order = append(w.order, agent.id)
	w.mu.Unlock()

	w.log.Info("agent spawned",
		zap.String("agent_id", agent.id),
		zap.String("profile", profileKey),
		zap.Bool("interactive", interactive))
	return agent.id, nil
}

// Despawn checkpoints the agent and removes it from the loop.
func (w *World) Despawn(ctx context.Context, agentID string) error {
	w.mu.Lock()
	hosted, ok := w.agents[agentID]
	if ok {
		delete(w.agents, agentID)
		for i, id := range w.order {
			if id == agentID {
				w.order = append(w.order[:i], w.order[i+1:]...)
				break
			}
		}
	}
	w.mu.Unlock()
	if !ok {
		return ports.ErrNotFound
	}

	if hosted.detach != nil {
		hosted.detach()
	}
	if w.journal != nil {
		hosted.mu.Lock()
		defer hosted.mu.Unlock()
		return w.journal.Checkpoint(ctx, hosted.container)
	}
	return nil
}

func (w *World) AddObserver(id string, x, y float64) {
	w.mu.Lock()
	w.observers[id] = observer{id: id, x: x, y: y}
	w.mu.Unlock()
}

func (w *World) RemoveObserver(id string) {
	w.mu.Lock()
	delete(w.observers, id)
	w.mu.Unlock()
}

func (w *World) MoveAgent(agentID string, x, y float64) {
	w.mu.RLock()
	hosted, ok := w.agents[agentID]
	w.mu.RUnlock()
	if ok {
		hosted.agent.setPosition(x, y)
	}
}

func (w *World) SetInteractive(agentID string, interactive bool) {
	w.mu.RLock()
	hosted, ok := w.agents[agentID]
	w.mu.RUnlock()
	if ok {
		hosted.agent.setInteractive(interactive)
	}
}

// NearestObserverDistance implements ports.ObserverLocator.
func (w *World) NearestObserverDistance(a behavior.Agent) (float64, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	hosted, ok := w.agents[a.ID()]
	if !ok || len(w.observers) == 0 {
		return 0, false
	}

	x, y := hosted.agent.Position()
	best := math.MaxFloat64
	for _, obs := range w.observers {
		dx := obs.x - x
		dy := obs.y - y
		if d := math.Sqrt(dx*dx + dy*dy); d < best {
			best = d
		}
	}
	return best, true
}

// StepOnce advances the world one step and dispatches every hosted agent.
// The world lock is released during dispatch so observer queries from the
// scheduler can take the read lock.
func (w *World) StepOnce(ctx context.Context) {
	w.mu.Lock()
	w.step++
	step := w.step
	batch := make([]*hostedAgent, 0, len(w.order))
	for _, id := range w.order {
		hosted := w.agents[id]
		hosted.agent.setStepCount(step)
		batch = append(batch, hosted)
	}
	w.mu.Unlock()

	for _, hosted := range batch {
		hosted.mu.Lock()
		w.dispatcher.Step(hosted.container)
		hosted.mu.Unlock()
	}

	if w.journal != nil && step%w.cfg.CheckpointEvery == 0 {
		w.checkpointBatch(ctx, batch)
	}
}

func (w *World) checkpointBatch(ctx context.Context, batch []*hostedAgent) {
	for _, hosted := range batch {
		hosted.mu.Lock()
		err := w.journal.Checkpoint(ctx, hosted.container)
		hosted.mu.Unlock()
		if err != nil {
			w.log.Error("checkpoint failed",
				zap.String("agent_id", hosted.agent.id),
				zap.Error(err))
		}
	}
}

// Run drives the step loop until the context is cancelled, then takes a
// final checkpoint of every agent.
func (w *World) Run(ctx context.Context) {
	ticker := time.NewTicker(w.cfg.StepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.shutdown()
			return
		case <-ticker.C:
			w.StepOnce(ctx)
		}
	}
}

func (w *World) shutdown() {
	if w.journal == nil {
		return
	}
	w.mu.RLock()
	batch := make([]*hostedAgent, 0, len(w.order))
	for _, id := range w.order {
		batch = append(batch, w.agents[id])
	}
	w.mu.RUnlock()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	w.checkpointBatch(ctx, batch)
	w.log.Info("world stopped", zap.Uint64("step", w.CurrentStep()))
}

func (w *World) AgentCount() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.agents)
}

func (w *World) CurrentStep() uint64 {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.step
}

// Container exposes a hosted agent's container for test inspection. The
// container is single-owner; callers must not touch it while the step loop
// is running.
func (w *World) Container(agentID string) (*component.Component, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	hosted, ok := w.agents[agentID]
	if !ok {
		return nil, false
	}
	return hosted.container, true
}

// IsFood answers a feeding query for one agent by fanning out through its
// handles' food-check overrides. The fanout touches the container, so it
// takes the agent lock and serializes with the step loop.
func (w *World) IsFood(agentID, item string, original bool) bool {
	w.mu.RLock()
	hosted, ok := w.agents[agentID]
	w.mu.RUnlock()
	if !ok {
		return original
	}
	hosted.mu.Lock()
	defer hosted.mu.Unlock()
	return w.dispatcher.OverrideFoodCheck(hosted.container, item, original)
}
