// Package scenario holds the set of scenarios and the active-scenario
// pointer. A Scenario owns a featureId -> Override map; the Manager is the
// only thing that creates, activates, renames, or deletes scenarios.
package scenario

import (
	"sync"

	"github.com/google/uuid"

	"scenarioplan.dev/engine/internal/domain"
	"scenarioplan.dev/engine/internal/eventbus"
)

// BaselineScenarioID is the sentinel scenario id. It always exists, always
// has empty overrides, and can never be renamed, deleted, or written to.
const BaselineScenarioID = "baseline"

// Scenario is a named container of feature overrides. The embedded mutex
// guards Overrides and IsChanged: the engine package writes them from its
// own goroutines (optimistic apply, deferred reconciliation, the
// single-field mutator) while Manager reads them here (CloneScenario), so
// both sides lock the same Scenario rather than two independent mutexes
// racing on one map.
type Scenario struct {
	sync.Mutex
	ID        string
	Name      string
	Overrides map[string]domain.Override
	IsChanged bool
}

func newBaselineScenario() *Scenario {
	return &Scenario{
		ID:        BaselineScenarioID,
		Name:      "Baseline",
		Overrides: make(map[string]domain.Override),
	}
}

// Manager holds all scenarios for a session plus the active pointer.
type Manager struct {
	mu        sync.RWMutex
	scenarios map[string]*Scenario
	order     []string
	activeID  string
	bus       *eventbus.Bus
}

// NewManager returns a Manager seeded with the baseline sentinel, inactive
// until ActivateScenario is called.
func NewManager(bus *eventbus.Bus) *Manager {
	base := newBaselineScenario()
	return &Manager{
		scenarios: map[string]*Scenario{base.ID: base},
		order:     []string{base.ID},
		activeID:  "",
		bus:       bus,
	}
}

// GetActiveScenario returns the active scenario, or nil if none is active.
// Callers must treat the returned pointer's Overrides map as mutable only
// through the engine's write paths, never directly.
func (m *Manager) GetActiveScenario() *Scenario {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.activeID == "" {
		return nil
	}
	return m.scenarios[m.activeID]
}

// CloneScenario deep-copies a source scenario's overrides into a freshly
// minted scenario. isChanged starts false even if the source was changed.
func (m *Manager) CloneScenario(sourceID, name string) (*Scenario, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	src, ok := m.scenarios[sourceID]
	if !ok {
		return nil, false
	}

	src.Lock()
	clone := &Scenario{
		ID:        uuid.NewString(),
		Name:      name,
		Overrides: make(map[string]domain.Override, len(src.Overrides)),
		IsChanged: false,
	}
	for id, ov := range src.Overrides {
		clone.Overrides[id] = ov.Clone()
	}
	src.Unlock()

	m.scenarios[clone.ID] = clone
	m.order = append(m.order, clone.ID)
	return clone, true
}

// ActivateScenario sets the active pointer and emits ScenarioEvents.ACTIVATED.
func (m *Manager) ActivateScenario(id string) (*Scenario, bool) {
	m.mu.Lock()
	sc, ok := m.scenarios[id]
	if !ok {
		m.mu.Unlock()
		return nil, false
	}
	m.activeID = id
	m.mu.Unlock()

	if m.bus != nil {
		m.bus.Emit(domain.EventScenarioActivated, "scenario", id, domain.ScenarioActivatedPayload{ScenarioID: id})
	}
	return sc, true
}

// RenameScenario renames a scenario. Fails on the baseline sentinel or an
// unknown id.
func (m *Manager) RenameScenario(id, name string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if id == BaselineScenarioID {
		return false
	}
	sc, ok := m.scenarios[id]
	if !ok {
		return false
	}
	sc.Name = name
	return true
}

// DeleteScenario removes a scenario. Fails on the baseline sentinel, an
// unknown id, or the currently active scenario.
func (m *Manager) DeleteScenario(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if id == BaselineScenarioID {
		return false
	}
	if _, ok := m.scenarios[id]; !ok {
		return false
	}
	if id == m.activeID {
		return false
	}

	delete(m.scenarios, id)
	for i, oid := range m.order {
		if oid == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return true
}

// ScenarioNames returns an id->name map for diagnostics. Being a map, it
// carries no order.
func (m *Manager) ScenarioNames() map[string]string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make(map[string]string, len(m.scenarios))
	for id, sc := range m.scenarios {
		out[id] = sc.Name
	}
	return out
}
