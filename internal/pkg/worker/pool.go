// Package worker provides goroutine pool management.
//
// Coding standard: naked goroutines are forbidden outside lifecycle loops.
// All concurrency that runs application work goes through a Pool with
// context propagation, so panics are recovered in one place and shutdown
// can wait for in-flight tasks.
package worker

import (
	"context"
	"errors"
	"time"

	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"

	"scenarioplan.dev/engine/internal/pkg/logger"
)

// ErrPoolClosed is returned when submitting to a closed pool.
var ErrPoolClosed = errors.New("worker pool is closed")

// Task is a context-aware task function.
type Task func(ctx context.Context)

// Pool wraps ants.Pool with context-aware submission.
type Pool struct {
	pool *ants.Pool
	name string

	serviceCtx    context.Context
	serviceCancel context.CancelFunc
}

// Config contains Pool configuration.
type Config struct {
	Size       int
	ExpireIdle time.Duration
}

// DefaultConfig returns the scenario engine's dedicated pool configuration.
// The deferred pass must never overlap itself, so the pool is sized to 1 —
// ordering comes from schedule()'s own coalescing, not from pool parallelism.
func DefaultConfig() Config {
	return Config{
		Size:       1,
		ExpireIdle: 10 * time.Second,
	}
}

// New creates a named Pool.
func New(ctx context.Context, name string, cfg Config) (*Pool, error) {
	serviceCtx, serviceCancel := context.WithCancel(ctx)

	panicHandler := func(p interface{}) {
		logger.Error("worker panic recovered",
			zap.String("pool", name),
			zap.Any("panic", p),
			zap.Stack("stack"),
		)
	}

	antsPool, err := ants.NewPool(cfg.Size,
		ants.WithPanicHandler(panicHandler),
		ants.WithNonblocking(false),
		ants.WithExpiryDuration(cfg.ExpireIdle),
	)
	if err != nil {
		serviceCancel()
		return nil, err
	}

	return &Pool{
		pool:          antsPool,
		name:          name,
		serviceCtx:    serviceCtx,
		serviceCancel: serviceCancel,
	}, nil
}

// Submit submits a context-aware task bound to the caller's context.
// If the context is already cancelled, returns ctx.Err() immediately
// without submitting.
func (p *Pool) Submit(ctx context.Context, task Task) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	return p.pool.Submit(func() {
		select {
		case <-ctx.Done():
			logger.Debug("task skipped: context cancelled",
				zap.String("pool", p.name),
				zap.Error(ctx.Err()),
			)
			return
		default:
		}
		task(ctx)
	})
}

// SubmitDetached submits a task bound to the pool's own lifecycle context
// instead of a request context — used for the engine's deferred reconciliation
// pass and async callback dispatch, which must outlive the goroutine that
// enqueued them but still respect Shutdown.
func (p *Pool) SubmitDetached(task Task) error {
	select {
	case <-p.serviceCtx.Done():
		return ErrPoolClosed
	default:
	}

	return p.pool.Submit(func() {
		select {
		case <-p.serviceCtx.Done():
			logger.Debug("detached task skipped: pool shutting down", zap.String("pool", p.name))
			return
		default:
		}
		task(p.serviceCtx)
	})
}

// Shutdown gracefully shuts down the pool with a timeout.
func (p *Pool) Shutdown(timeout time.Duration) {
	p.serviceCancel()
	if err := p.pool.ReleaseTimeout(timeout); err != nil {
		logger.Warn("pool shutdown timeout", zap.String("pool", p.name), zap.Error(err))
	}
}

// Metrics returns pool metrics for observability.
func (p *Pool) Metrics() map[string]int {
	return map[string]int{
		"running": p.pool.Running(),
		"free":    p.pool.Free(),
		"cap":     p.pool.Cap(),
	}
}
