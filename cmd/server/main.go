package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	httpadapter "wildcore/internal/adapter/http"
	metricsinmem "wildcore/internal/adapter/metrics/inmemory"
	"wildcore/internal/adapter/profile/yamlfs"
	gormrepo "wildcore/internal/adapter/repo/gorm"
	"wildcore/internal/adapter/repo/memory"
	worldruntime "wildcore/internal/adapter/world/runtime"
	"wildcore/internal/app/dispatch"
	"wildcore/internal/app/handles"
	"wildcore/internal/app/journal"
	"wildcore/internal/app/observe"
	"wildcore/internal/app/ports"
	"wildcore/internal/app/status"
	"wildcore/internal/domain/behavior"

	"github.com/cloudwego/hertz/pkg/app/server"
	"go.uber.org/zap"
)

func main() {
	logger, err := buildLogger()
	if err != nil {
		log.Fatalf("build logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	registry := behavior.NewRegistry()
	handles.RegisterBuiltin(registry)
	registry.Seal()

	profiles := mustLoadProfiles(logger)
	stateRepo, eventRepo, txManager := mustBuildRepos(logger)
	recorder := metricsinmem.NewRecorder()

	dispatchCfg := dispatch.Config{
		ActiveDistance:  floatEnv("WILDCORE_ACTIVE_DISTANCE", 0),
		StaggerInterval: uint64(intEnv("WILDCORE_STAGGER_INTERVAL", 0)),
		MaxSleepSteps:   uint64(intEnv("WILDCORE_MAX_SLEEP_STEPS", 0)),
	}
	dispatcher := dispatch.Dispatcher{
		Metrics: recorder,
		Log:     logger,
		Config:  dispatchCfg,
	}
	jnl := journal.New(stateRepo, eventRepo, txManager, dispatcher, logger)

	worldCfg := worldruntime.DefaultConfig()
	worldCfg.Dispatch = dispatchCfg
	worldCfg.StepInterval = time.Duration(intEnv("WILDCORE_STEP_MS", 50)) * time.Millisecond
	worldCfg.CheckpointEvery = uint64(intEnv("WILDCORE_CHECKPOINT_EVERY", 200))
	world := worldruntime.NewWorld(registry, profiles, jnl, recorder, logger, worldCfg)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	watcher, err := yamlfs.NewWatcher(profiles, logger)
	if err != nil {
		logger.Fatal("build profile watcher", zap.Error(err))
	}
	if err := watcher.Start(ctx); err != nil {
		logger.Fatal("start profile watcher", zap.Error(err))
	}
	defer watcher.Stop()

	seedAgents(ctx, world, profiles, logger)
	go world.Run(ctx)

	h := httpadapter.Handler{
		ObserveUC: observe.UseCase{StateRepo: stateRepo, EventRepo: eventRepo},
		StatusUC:  status.UseCase{Profiles: profiles, Population: world},
		World:     world,
		KPI:       recorder,
	}

	addr := strings.TrimSpace(os.Getenv("WILDCORE_LISTEN"))
	if addr == "" {
		addr = ":8080"
	}
	s := server.Default(server.WithHostPorts(addr))
	h.RegisterRoutes(s)

	logger.Info("wildcore server listening", zap.String("addr", addr))
	s.Spin()
}

func buildLogger() (*zap.Logger, error) {
	if strings.EqualFold(os.Getenv("WILDCORE_ENV"), "production") {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

func mustLoadProfiles(logger *zap.Logger) *yamlfs.Source {
	dir := strings.TrimSpace(os.Getenv("WILDCORE_PROFILE_DIR"))
	if dir == "" {
		dir = "./profiles"
	}
	source := yamlfs.NewSource(dir)
	if err := source.Load(); err != nil {
		logger.Fatal("load profiles", zap.String("dir", dir), zap.Error(err))
	}
	logger.Info("profiles loaded",
		zap.Strings("keys", source.Keys()),
		zap.Uint64("generation", source.Generation()))
	return source
}

func mustBuildRepos(logger *zap.Logger) (ports.BehaviorStateRepository, ports.EventRepository, ports.TxManager) {
	dsn := strings.TrimSpace(os.Getenv("WILDCORE_DB_DSN"))
	if dsn == "" {
		logger.Info("WILDCORE_DB_DSN empty, using in-memory store")
		store := memory.NewStore()
		return memory.NewBehaviorStateRepo(store), memory.NewEventRepo(store), memory.NewTxManager(store)
	}

	db, err := gormrepo.OpenPostgres(dsn)
	if err != nil {
		logger.Fatal("open postgres", zap.Error(err))
	}
	if err := gormrepo.ApplyMigrations(context.Background(), db, "./migrations", logger); err != nil {
		logger.Fatal("run migrations", zap.Error(err))
	}
	return gormrepo.NewBehaviorStateRepo(db), gormrepo.NewEventRepo(db), gormrepo.NewTxManager(db)
}

// seedAgents spawns one demo agent per loaded profile so a fresh install
// has something to observe.
func seedAgents(ctx context.Context, world *worldruntime.World, profiles *yamlfs.Source, logger *zap.Logger) {
	if intEnv("WILDCORE_SEED_AGENTS", 1) == 0 {
		return
	}
	for i, key := range profiles.Keys() {
		id, err := world.Spawn(ctx, key, float64(i*16), 0, false)
		if err != nil {
			logger.Error("seed agent", zap.String("profile", key), zap.Error(err))
			continue
		}
		logger.Info("seeded agent", zap.String("agent_id", id), zap.String("profile", key))
	}
	world.AddObserver("seed-observer", 0, 0)
}

func intEnv(key string, fallback int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func floatEnv(key string, fallback float64) float64 {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}
