// Package engine implements the constraint and update engine: the write
// path that applies batched date updates under epic/child containment,
// the single-field mutator, and revert.
//
// The scheduling model spec.md §5 describes is single-threaded cooperative
// — one logical scheduler, no locking. This port runs on real goroutines
// (HTTP handlers, the deferred-pass worker), so a mutex stands in for that
// single logical scheduler: the update queue, callbacks, and priorEpicStart
// live under Engine.mu. Scenario.Overrides is also reachable from
// scenario.Manager (CloneScenario), so its own embedded mutex is taken
// alongside Engine.mu whenever this package touches it, rather than
// relying on Engine.mu alone to protect a map another package can read.
package engine

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"scenarioplan.dev/engine/internal/domain"
	"scenarioplan.dev/engine/internal/eventbus"
	"scenarioplan.dev/engine/internal/pkg/logger"
	"scenarioplan.dev/engine/internal/pkg/worker"
	"scenarioplan.dev/engine/internal/scenario"
	"scenarioplan.dev/engine/internal/store"
)

// Update is one requested date change. FromEpicMove marks a derived child
// shift computed by the caller from an epic drag, rather than a direct
// user edit of that child.
type Update struct {
	ID           string
	Start        string
	End          string
	FromEpicMove bool
}

// Config controls the deferred pass scheduler and diagnostic logging.
type Config struct {
	// ServiceInstrumentation enables Debug-level logging of skipped or
	// overridden optimistic writes.
	ServiceInstrumentation bool

	// IdleTimeout bounds how long the engine would wait for a cooperative
	// idle slot before forcing the deferred pass, in an environment with
	// one to integrate against. This Go port has no such idle signal to
	// observe, so it is carried only as a configured upper bound and is
	// not itself the timer driving the pass — see FallbackDelay.
	IdleTimeout time.Duration

	// FallbackDelay is the timer delay used to schedule the deferred
	// pass. There is no browser idle callback to integrate against in a
	// server process, so the fallback timer is the pass's sole driver
	// here rather than a fallback for an unavailable idle mechanism.
	FallbackDelay time.Duration
}

// DefaultConfig returns the suggested deferred-pass timings.
func DefaultConfig() Config {
	return Config{
		IdleTimeout:   200 * time.Millisecond,
		FallbackDelay: 50 * time.Millisecond,
	}
}

// Engine is the Constraint & Update Engine, Single-field Mutator, and
// Revert operations bundled together — they share the same scenario
// overrides map and scheduling state.
type Engine struct {
	baseline  *store.BaselineStore
	children  *store.ChildrenIndex
	scenarios *scenario.Manager
	bus       *eventbus.Bus
	pool      *worker.Pool
	cfg       Config

	mu             sync.Mutex
	queue          []Update
	callbacks      []func()
	priorEpicStart map[string]string
	scheduled      bool
}

// New wires an Engine over the given collaborators.
func New(baseline *store.BaselineStore, children *store.ChildrenIndex, scenarios *scenario.Manager, bus *eventbus.Bus, pool *worker.Pool, cfg Config) *Engine {
	return &Engine{
		baseline:       baseline,
		children:       children,
		scenarios:      scenarios,
		bus:            bus,
		pool:           pool,
		cfg:            cfg,
		priorEpicStart: make(map[string]string),
	}
}

// UpdateFeatureDates applies updates optimistically (Phase A, synchronous)
// and enqueues them for deferred constraint reconciliation (Phase B). It
// returns the count of input updates that were not skipped for an unknown
// id or an explicit-child-preservation rule. callback, if non-nil, runs
// once Phase B for this batch has completed.
func (e *Engine) UpdateFeatureDates(updates []Update, callback func()) int {
	sc := e.scenarios.GetActiveScenario()
	if sc == nil || sc.ID == scenario.BaselineScenarioID {
		return 0
	}

	e.mu.Lock()
	sc.Lock()
	appliedIDs, count := e.applyOptimistic(sc, updates)
	if len(appliedIDs) > 0 {
		sc.IsChanged = true
	}
	sc.Unlock()
	e.queue = append(e.queue, updates...)
	if callback != nil {
		e.callbacks = append(e.callbacks, callback)
	}
	e.mu.Unlock()

	if len(appliedIDs) > 0 {
		e.bus.Emit(domain.EventFeatureUpdated, "feature", "", domain.FeatureUpdatedPayload{IDs: appliedIDs})
	}

	e.schedule()

	return count
}

// applyOptimistic runs Phase A. Caller must hold e.mu.
func (e *Engine) applyOptimistic(sc *scenario.Scenario, updates []Update) ([]string, int) {
	baselineByID := e.baseline.GetFeatureById()

	var appliedIDs []string
	seen := make(map[string]bool)
	record := func(id string) {
		if !seen[id] {
			seen[id] = true
			appliedIDs = append(appliedIDs, id)
		}
	}

	count := 0
	for _, u := range updates {
		base, ok := baselineByID[u.ID]
		if !ok {
			continue
		}

		existingOv, hasOv := sc.Overrides[u.ID]
		if u.FromEpicMove && hasOv && existingOv.IsExplicit(base) {
			if e.cfg.ServiceInstrumentation {
				logger.Debug("optimistic write skipped: explicit child override", zap.String("featureId", u.ID))
			}
			continue
		}

		count++

		if base.Type == domain.FeatureTypeEpic {
			e.applyOptimisticEpic(sc, baselineByID, base, u, record)
		} else {
			e.applyOptimisticFeature(sc, baselineByID, base, u, record)
		}
	}

	return appliedIDs, count
}

func (e *Engine) applyOptimisticEpic(sc *scenario.Scenario, baselineByID map[string]domain.Feature, base domain.Feature, u Update, record func(string)) {
	if _, exists := e.priorEpicStart[base.ID]; !exists {
		existingOv := sc.Overrides[base.ID]
		e.priorEpicStart[base.ID] = existingOv.EffectiveStart(base)
	}
	delta := dateDelta(e.priorEpicStart[base.ID], u.Start)

	kids := e.children.ChildrenOf(base.ID)
	var minStart, maxEnd string
	boundsSet := false
	for _, childID := range kids {
		childBase, ok := baselineByID[childID]
		if !ok {
			continue
		}
		childOv, childHasOv := sc.Overrides[childID]
		if childHasOv && childOv.IsExplicit(childBase) {
			s, en := childOv.EffectiveStart(childBase), childOv.EffectiveEnd(childBase)
			minStart, maxEnd, boundsSet = extendBounds(minStart, maxEnd, boundsSet, s, en)
			continue
		}

		newStart := shiftDate(childBase.Start, delta)
		newEnd := shiftDate(childBase.End, delta)
		sc.Overrides[childID] = domain.Override{Start: &newStart, End: &newEnd}
		record(childID)
		minStart, maxEnd, boundsSet = extendBounds(minStart, maxEnd, boundsSet, newStart, newEnd)
	}

	start, end := u.Start, u.End
	if boundsSet {
		start = minDate(start, minStart)
		end = maxDate(end, maxEnd)
	}
	sc.Overrides[base.ID] = domain.Override{Start: &start, End: &end}
	record(base.ID)
}

func (e *Engine) applyOptimisticFeature(sc *scenario.Scenario, baselineByID map[string]domain.Feature, base domain.Feature, u Update, record func(string)) {
	start, end := u.Start, u.End
	sc.Overrides[base.ID] = domain.Override{Start: &start, End: &end}
	record(base.ID)

	if base.ParentEpic == "" {
		return
	}
	if e.growParentEpic(sc, baselineByID, base.ParentEpic, u.Start, u.End) {
		record(base.ParentEpic)
	}
}

// growParentEpic extends (never shrinks) the parent epic's override to
// cover a child candidate range. Caller must hold e.mu.
func (e *Engine) growParentEpic(sc *scenario.Scenario, baselineByID map[string]domain.Feature, epicID, childStart, childEnd string) bool {
	epicBase, ok := baselineByID[epicID]
	if !ok {
		return false
	}
	ov := sc.Overrides[epicID]
	curStart, curEnd := ov.EffectiveStart(epicBase), ov.EffectiveEnd(epicBase)

	newStart, newEnd := curStart, curEnd
	changed := false
	if parseDate(childStart).Before(parseDate(curStart)) {
		newStart = childStart
		changed = true
	}
	if parseDate(childEnd).After(parseDate(curEnd)) {
		newEnd = childEnd
		changed = true
	}
	if !changed {
		return false
	}
	sc.Overrides[epicID] = domain.Override{Start: &newStart, End: &newEnd}
	return true
}

// schedule guarantees exactly one deferred pass runs after the current
// call, coalescing any schedule() calls that arrive before it fires.
func (e *Engine) schedule() {
	e.mu.Lock()
	if e.scheduled {
		e.mu.Unlock()
		return
	}
	e.scheduled = true
	delay := e.cfg.FallbackDelay
	e.mu.Unlock()

	time.AfterFunc(delay, func() {
		if err := e.pool.SubmitDetached(func(ctx context.Context) {
			e.runDeferredPass()
		}); err != nil {
			logger.Warn("deferred pass submit failed", zap.Error(err))
		}
	})
}
