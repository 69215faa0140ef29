// Package app is the composition root: it builds the Baseline Store,
// Children Index, Scenario Manager, Event Bus, Overlay Engine, and
// Constraint Engine in dependency order and wires an HTTP surface over
// them.
package app

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"scenarioplan.dev/engine/internal/api"
	"scenarioplan.dev/engine/internal/config"
	"scenarioplan.dev/engine/internal/domain"
	"scenarioplan.dev/engine/internal/engine"
	"scenarioplan.dev/engine/internal/eventbus"
	"scenarioplan.dev/engine/internal/overlay"
	"scenarioplan.dev/engine/internal/pkg/logger"
	"scenarioplan.dev/engine/internal/pkg/worker"
	"scenarioplan.dev/engine/internal/scenario"
	"scenarioplan.dev/engine/internal/store"
)

// Application holds composed application dependencies.
type Application struct {
	Config    *config.Config
	Router    *gin.Engine
	Bus       *eventbus.Bus
	Baseline  *store.BaselineStore
	Scenarios *scenario.Manager
	Overlay   *overlay.Engine
	Engine    *engine.Engine
	pool      *worker.Pool
}

// Bootstrap initializes every core collaborator and wires the HTTP router
// over them. fixturePath, if non-empty, is loaded into the Baseline Store
// before the server starts serving.
func Bootstrap(ctx context.Context, cfg *config.Config, fixturePath string) (*Application, error) {
	bus := eventbus.New()
	if cfg.Engine.LogEventHistory {
		bus.EnableHistoryLogging(256)
	}

	baseline := store.NewBaselineStore()
	children := store.NewChildrenIndex()

	if fixturePath != "" {
		features, err := LoadBaselineFixture(fixturePath)
		if err != nil {
			return nil, fmt.Errorf("load baseline fixture: %w", err)
		}
		baseline.SetFeatures(features)
		children.SetChildrenByEpic(store.BuildChildrenIndex(features))
		logger.Info("loaded baseline fixture", zap.String("path", fixturePath), zap.Int("features", len(features)))
	}

	scenarios := scenario.NewManager(bus)
	ov := overlay.New(baseline, scenarios)

	pool, err := worker.New(ctx, "engine-deferred-pass", worker.DefaultConfig())
	if err != nil {
		return nil, fmt.Errorf("init engine worker pool: %w", err)
	}

	engineCfg := engine.Config{
		ServiceInstrumentation: cfg.Engine.ServiceInstrumentation,
		IdleTimeout:            cfg.Engine.IdleTimeout,
		FallbackDelay:          cfg.Engine.FallbackDelay,
	}
	eng := engine.New(baseline, children, scenarios, bus, pool, engineCfg)

	server := api.NewServer(api.ServerDeps{Overlay: ov, Engine: eng, Scenarios: scenarios})

	bus.Emit(domain.EventAppReady, "", "", struct{}{})

	return &Application{
		Config:    cfg,
		Router:    newRouter(cfg, server),
		Bus:       bus,
		Baseline:  baseline,
		Scenarios: scenarios,
		Overlay:   ov,
		Engine:    eng,
		pool:      pool,
	}, nil
}

// Shutdown releases the engine's worker pool. Call after the HTTP server
// has stopped accepting new requests.
func (a *Application) Shutdown() {
	if a.pool != nil {
		a.pool.Shutdown(a.Config.Server.ShutdownTimeout)
	}
}
