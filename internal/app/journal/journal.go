// Package journal persists agent behavior state. It buffers change events
// emitted by container listeners and flushes them together with the
// snapshot inside one transaction, so a checkpoint and its event trail
// never diverge.
package journal

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"wildcore/internal/app/component"
	"wildcore/internal/app/dispatch"
	"wildcore/internal/app/ports"
	"wildcore/internal/domain/behavior"

	"go.uber.org/zap"
)

type UseCase struct {
	StateRepo  ports.BehaviorStateRepository
	EventRepo  ports.EventRepository
	Tx         ports.TxManager
	Dispatcher dispatch.Dispatcher
	Log        *zap.Logger
	Now        func() time.Time

	mu       sync.Mutex
	buffers  map[string][]ports.StateChangeEvent
	versions map[string]int64
}

func New(state ports.BehaviorStateRepository, events ports.EventRepository, tx ports.TxManager, d dispatch.Dispatcher, log *zap.Logger) *UseCase {
	if log == nil {
		log = zap.NewNop()
	}
	return &UseCase{
		StateRepo:  state,
		EventRepo:  events,
		Tx:         tx,
		Dispatcher: d,
		Log:        log,
		Now:        time.Now,
		buffers:    map[string][]ports.StateChangeEvent{},
		versions:   map[string]int64{},
	}
}

// Attach subscribes to the container's change stream. Returns the
// unsubscribe func; callers detach before dropping the agent.
func (u *UseCase) Attach(a behavior.Agent, c *component.Component) func() {
	agentID := a.ID()
	return c.AddListener(func(handleID string, old, new behavior.Record) {
		event := ports.StateChangeEvent{
			AgentID:    agentID,
			HandleID:   handleID,
			Step:       a.StepCount(),
			OccurredAt: u.Now(),
			Old:        old,
			New:        new,
		}
		u.mu.Lock()
		u.buffers[agentID] = append(u.buffers[agentID], event)
		u.mu.Unlock()
	})
}

// Restore loads the persisted snapshot into the container and remembers
// its version for later conditional saves. A missing snapshot is a fresh
// agent, not an error.
func (u *UseCase) Restore(ctx context.Context, c *component.Component) error {
	agentID := c.Agent().ID()
	snapshot, err := u.StateRepo.GetByAgentID(ctx, agentID)
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("restore %s: %w", agentID, err)
	}

	u.mu.Lock()
	u.versions[agentID] = snapshot.Version
	u.mu.Unlock()

	u.Dispatcher.OnLoad(c, snapshot)
	return nil
}

// Checkpoint writes the container's current snapshot plus the buffered
// events atomically. On a version conflict it re-reads the stored version
// and retries once; a second conflict surfaces to the caller.
func (u *UseCase) Checkpoint(ctx context.Context, c *component.Component) error {
	agentID := c.Agent().ID()
	snapshot := u.Dispatcher.OnSave(c)
	snapshot.AgentID = agentID

	u.mu.Lock()
	events := u.buffers[agentID]
	delete(u.buffers, agentID)
	expected := u.versions[agentID]
	u.mu.Unlock()

	err := u.save(ctx, snapshot, events, expected)
	if errors.Is(err, ports.ErrConflict) {
		stored, getErr := u.StateRepo.GetByAgentID(ctx, agentID)
		if getErr != nil {
			return fmt.Errorf("checkpoint %s: %w", agentID, err)
		}
		u.Log.Warn("checkpoint version conflict, retrying",
			zap.String("agent_id", agentID),
			zap.Int64("expected", expected),
			zap.Int64("stored", stored.Version))
		expected = stored.Version
		err = u.save(ctx, snapshot, events, expected)
	}
	if err != nil {
		// Put the events back so the next checkpoint carries them.
		u.mu.Lock()
		u.buffers[agentID] = append(events, u.buffers[agentID]...)
		u.mu.Unlock()
		return fmt.Errorf("checkpoint %s: %w", agentID, err)
	}

	u.mu.Lock()
	u.versions[agentID] = expected + 1
	u.mu.Unlock()
	return nil
}

func (u *UseCase) save(ctx context.Context, snapshot ports.BehaviorSnapshot, events []ports.StateChangeEvent, expected int64) error {
	snapshot.Version = expected + 1
	return u.Tx.RunInTx(ctx, func(txCtx context.Context) error {
		if err := u.StateRepo.SaveWithVersion(txCtx, snapshot, expected); err != nil {
			return err
		}
		return u.EventRepo.Append(txCtx, snapshot.AgentID, events)
	})
}
