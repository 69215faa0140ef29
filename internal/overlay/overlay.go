// Package overlay computes the effective view of a feature: the
// value-level merge of the baseline and the active scenario's override.
// It is a pure read path — it never mutates baseline or overrides and
// emits no events.
package overlay

import (
	"scenarioplan.dev/engine/internal/domain"
	"scenarioplan.dev/engine/internal/scenario"
	"scenarioplan.dev/engine/internal/store"
)

// ActiveScenarioProvider supplies the scenario the overlay should merge
// against. Satisfied directly by *scenario.Manager.
type ActiveScenarioProvider interface {
	GetActiveScenario() *scenario.Scenario
}

// Engine is the read path of the scenario overlay. It holds no state of
// its own beyond references to the baseline store and the active-scenario
// provider — every call re-reads both, per the "no caching of scenario
// identity" requirement.
type Engine struct {
	baseline *store.BaselineStore
	active   ActiveScenarioProvider
}

// New returns an Engine reading from baseline and resolving the active
// scenario through active on every call.
func New(baseline *store.BaselineStore, active ActiveScenarioProvider) *Engine {
	return &Engine{baseline: baseline, active: active}
}

// GetEffectiveFeatures merges every baseline feature with the active
// scenario's override, in baseline order.
func (e *Engine) GetEffectiveFeatures() []domain.EffectiveFeature {
	features := e.baseline.GetFeatures()
	sc := e.active.GetActiveScenario()

	out := make([]domain.EffectiveFeature, len(features))
	for i, f := range features {
		out[i] = merge(f, sc)
	}
	return out
}

// GetEffectiveFeatureById looks up a single feature by id and merges it
// against the active scenario's override. The second return is false if
// no baseline feature with that id exists.
func (e *Engine) GetEffectiveFeatureById(id string) (domain.EffectiveFeature, bool) {
	f, ok := e.baseline.Lookup(id)
	if !ok {
		return domain.EffectiveFeature{}, false
	}
	sc := e.active.GetActiveScenario()
	return merge(f, sc), true
}

func merge(base domain.Feature, sc *scenario.Scenario) domain.EffectiveFeature {
	eff := domain.EffectiveFeature{Feature: base}
	eff.Feature.Capacity = domain.CloneCapacity(base.Capacity)

	if sc == nil {
		return eff
	}

	sc.Lock()
	ov, hasOverride := sc.Overrides[base.ID]
	sc.Unlock()
	if !hasOverride {
		return eff
	}
	eff.ScenarioOverride = true

	var changed []string
	if ov.Start != nil && *ov.Start != base.Start {
		eff.Feature.Start = *ov.Start
		changed = append(changed, "start")
	}
	if ov.End != nil && *ov.End != base.End {
		eff.Feature.End = *ov.End
		changed = append(changed, "end")
	}
	if ov.HasCap && !domain.EqualCapacity(ov.Capacity, base.Capacity) {
		eff.Feature.Capacity = domain.CloneCapacity(ov.Capacity)
		changed = append(changed, "capacity")
	}

	eff.ChangedFields = changed
	eff.Dirty = len(changed) > 0
	return eff
}
