package engine

import (
	"scenarioplan.dev/engine/internal/domain"
	"scenarioplan.dev/engine/internal/scenario"
)

// UpdateFeatureField applies a direct, non-queued override to a single
// field of a single feature — no parent-epic propagation, no child
// shifting. field must be one of "start", "end", "capacity"; value must be
// a string for start/end or a []domain.CapacityEntry for capacity.
//
// Returns false (no write) when there is no active non-baseline scenario,
// the feature id is unknown, the field is not updatable, or value is the
// wrong type for field — the caller maps these to FEATURE_NOT_FOUND,
// SCENARIO_INACTIVE, and INVALID_FIELD at the HTTP boundary.
func (e *Engine) UpdateFeatureField(id, field string, value any) bool {
	sc := e.scenarios.GetActiveScenario()
	if sc == nil || sc.ID == scenario.BaselineScenarioID {
		return false
	}

	if _, ok := e.baseline.Lookup(id); !ok {
		return false
	}

	e.mu.Lock()
	sc.Lock()
	ov := sc.Overrides[id]

	switch field {
	case "start":
		s, ok := value.(string)
		if !ok {
			sc.Unlock()
			e.mu.Unlock()
			return false
		}
		ov.Start = &s
	case "end":
		s, ok := value.(string)
		if !ok {
			sc.Unlock()
			e.mu.Unlock()
			return false
		}
		ov.End = &s
	case "capacity":
		entries, ok := value.([]domain.CapacityEntry)
		if !ok {
			sc.Unlock()
			e.mu.Unlock()
			return false
		}
		ov.Capacity = domain.CloneCapacity(entries)
		ov.HasCap = true
	default:
		sc.Unlock()
		e.mu.Unlock()
		return false
	}

	sc.Overrides[id] = ov
	sc.IsChanged = true
	sc.Unlock()
	e.mu.Unlock()

	e.bus.Emit(domain.EventFeatureUpdated, "feature", id, domain.FeatureUpdatedPayload{IDs: []string{id}})
	if field == "capacity" {
		e.bus.Emit(domain.EventFeatureCapacityUpdated, "feature", id, domain.FeatureCapacityUpdatedPayload{
			FeatureID: id,
			Capacity:  ov.Capacity,
		})
	}

	return true
}

// RevertFeature removes a feature's override from the active scenario, if
// one exists. Returns false if there is no active scenario or no override
// to remove.
func (e *Engine) RevertFeature(id string) bool {
	sc := e.scenarios.GetActiveScenario()
	if sc == nil || sc.ID == scenario.BaselineScenarioID {
		return false
	}

	e.mu.Lock()
	sc.Lock()
	if _, ok := sc.Overrides[id]; !ok {
		sc.Unlock()
		e.mu.Unlock()
		return false
	}
	delete(sc.Overrides, id)
	sc.IsChanged = true
	sc.Unlock()
	e.mu.Unlock()

	e.bus.Emit(domain.EventFeatureUpdated, "feature", id, domain.FeatureUpdatedPayload{IDs: []string{id}})
	return true
}
