package yamlfs

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watcher reloads the Source when profile files change on disk. Edits are
// debounced so an editor's save burst triggers one reload, not five.
type Watcher struct {
	source  *Source
	log     *zap.Logger
	watcher *fsnotify.Watcher

	mu          sync.Mutex
	pendingAt   time.Time
	pending     bool
	debounceDur time.Duration

	stopCh  chan struct{}
	doneCh  chan struct{}
	running bool
}

func NewWatcher(source *Source, log *zap.Logger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Watcher{
		source:      source,
		log:         log,
		watcher:     fsw,
		debounceDur: 500 * time.Millisecond,
		stopCh:      make(chan struct{}),
		doneCh:      make(chan struct{}),
	}, nil
}

func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.mu.Unlock()

	if err := w.watcher.Add(w.source.dir); err != nil {
		return err
	}
	w.log.Info("watching profile directory", zap.String("dir", w.source.dir))

	go w.run(ctx)
	return nil
}

func (w *Watcher) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	w.mu.Unlock()

	close(w.stopCh)
	<-w.doneCh
	_ = w.watcher.Close()
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.doneCh)

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.log.Error("profile watcher error", zap.Error(err))
		case <-ticker.C:
			w.reloadIfSettled()
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if ext := filepath.Ext(event.Name); ext != ".yaml" && ext != ".yml" {
		return
	}
	if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
		return
	}
	w.mu.Lock()
	w.pending = true
	w.pendingAt = time.Now()
	w.mu.Unlock()
}

func (w *Watcher) reloadIfSettled() {
	w.mu.Lock()
	due := w.pending && time.Since(w.pendingAt) >= w.debounceDur
	if due {
		w.pending = false
	}
	w.mu.Unlock()
	if !due {
		return
	}

	if err := w.source.Load(); err != nil {
		w.log.Error("profile reload failed, keeping previous set", zap.Error(err))
		return
	}
	w.log.Info("profiles reloaded", zap.Uint64("generation", w.source.Generation()))
}
