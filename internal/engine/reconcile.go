package engine

import (
	"time"

	"go.uber.org/zap"

	"scenarioplan.dev/engine/internal/domain"
	"scenarioplan.dev/engine/internal/pkg/logger"
	"scenarioplan.dev/engine/internal/scenario"
)

// runDeferredPass is Phase B: it drains the queue and callback list, runs
// containment reconciliation, emits one UPDATED event for the whole pass,
// and invokes pending callbacks. Runs on the engine's dedicated worker.
func (e *Engine) runDeferredPass() {
	e.mu.Lock()
	e.scheduled = false
	queued := e.queue
	e.queue = nil
	callbacks := e.callbacks
	e.callbacks = nil
	e.mu.Unlock()

	defer e.runCallbacks(callbacks)

	if len(queued) == 0 {
		return
	}

	sc := e.scenarios.GetActiveScenario()
	if sc == nil || sc.ID == scenario.BaselineScenarioID {
		return
	}

	e.mu.Lock()
	sc.Lock()
	appliedIDs := e.reconcile(sc, queued)
	if len(appliedIDs) > 0 {
		sc.IsChanged = true
	}
	sc.Unlock()
	e.mu.Unlock()

	if len(appliedIDs) > 0 {
		e.bus.Emit(domain.EventFeatureUpdated, "feature", "", domain.FeatureUpdatedPayload{IDs: appliedIDs})
	}
}

func (e *Engine) runCallbacks(callbacks []func()) {
	for _, cb := range callbacks {
		e.invokeCallback(cb)
	}
}

func (e *Engine) invokeCallback(cb func()) {
	defer func() {
		if r := recover(); r != nil {
			logger.Warn("deferred-pass callback panicked", zap.Any("recovered", r))
		}
	}()
	cb()
}

// reconcile runs Phase B's containment pass. Caller must hold e.mu.
func (e *Engine) reconcile(sc *scenario.Scenario, queued []Update) []string {
	baselineByID := e.baseline.GetFeatureById()

	lastByID := make(map[string]Update)
	var order []string
	for _, u := range queued {
		if _, ok := lastByID[u.ID]; !ok {
			order = append(order, u.ID)
		}
		lastByID[u.ID] = u
	}

	var featureIDs []string
	epicQueued := make(map[string]bool)
	var epicIDs []string
	for _, id := range order {
		base, ok := baselineByID[id]
		if !ok {
			continue
		}
		if base.Type == domain.FeatureTypeEpic {
			if !epicQueued[id] {
				epicQueued[id] = true
				epicIDs = append(epicIDs, id)
			}
		} else {
			featureIDs = append(featureIDs, id)
		}
	}

	// Parent epics of queued features are reconciled too, even when not
	// themselves queued, so feature growth is visible to the containment
	// pass in the same batch — spec.md §4.6 Phase B step 3.
	for _, id := range featureIDs {
		parent := baselineByID[id].ParentEpic
		if parent == "" || epicQueued[parent] {
			continue
		}
		if _, ok := baselineByID[parent]; !ok {
			continue
		}
		epicQueued[parent] = true
		epicIDs = append(epicIDs, parent)
	}

	var appliedIDs []string
	seen := make(map[string]bool)
	record := func(id string) {
		if !seen[id] {
			seen[id] = true
			appliedIDs = append(appliedIDs, id)
		}
	}

	for _, id := range featureIDs {
		e.reconcileFeature(sc, baselineByID, baselineByID[id], lastByID[id], record)
	}
	for _, id := range epicIDs {
		u, wasQueued := lastByID[id]
		e.reconcileEpic(sc, baselineByID, baselineByID[id], u, wasQueued, record)
	}

	return appliedIDs
}

func (e *Engine) reconcileFeature(sc *scenario.Scenario, baselineByID map[string]domain.Feature, base domain.Feature, u Update, record func(string)) {
	existingOv, hasOv := sc.Overrides[base.ID]
	if u.FromEpicMove && hasOv && existingOv.IsExplicit(base) {
		return
	}

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

func (e *Engine) reconcileEpic(sc *scenario.Scenario, baselineByID map[string]domain.Feature, base domain.Feature, u Update, wasQueued bool, record func(string)) {
	deltaNonZero := false
	var delta time.Duration
	if wasQueued {
		if prior, ok := e.priorEpicStart[base.ID]; ok {
			delta = dateDelta(prior, u.Start)
			delete(e.priorEpicStart, base.ID)
			deltaNonZero = delta != 0
		}
	}

	kids := e.children.ChildrenOf(base.ID)
	var minStart, maxEnd string
	boundsSet := false
	for _, childID := range kids {
		childBase, ok := baselineByID[childID]
		if !ok {
			continue
		}
		childOv, childHasOv := sc.Overrides[childID]

		switch {
		case childHasOv && childOv.IsExplicit(childBase):
			s, en := childOv.EffectiveStart(childBase), childOv.EffectiveEnd(childBase)
			minStart, maxEnd, boundsSet = extendBounds(minStart, maxEnd, boundsSet, s, en)
		case deltaNonZero:
			newStart := shiftDate(childBase.Start, delta)
			newEnd := shiftDate(childBase.End, delta)
			sc.Overrides[childID] = domain.Override{Start: &newStart, End: &newEnd}
			record(childID)
			minStart, maxEnd, boundsSet = extendBounds(minStart, maxEnd, boundsSet, newStart, newEnd)
		default:
			s, en := childOv.EffectiveStart(childBase), childOv.EffectiveEnd(childBase)
			minStart, maxEnd, boundsSet = extendBounds(minStart, maxEnd, boundsSet, s, en)
		}
	}

	var start, end string
	if wasQueued {
		start, end = u.Start, u.End
	} else {
		start, end = base.Start, base.End
	}
	if boundsSet {
		start = minDate(start, minStart)
		end = maxDate(end, maxEnd)
	}

	if existing, ok := sc.Overrides[base.ID]; ok && existing.Start != nil && existing.End != nil &&
		*existing.Start == start && *existing.End == end {
		return
	}
	sc.Overrides[base.ID] = domain.Override{Start: &start, End: &end}
	record(base.ID)
}
