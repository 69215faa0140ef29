package domain

import "time"

// EventType identifies an event kind on the bus. The string before the
// first "." is its namespace — onNamespace subscribers match on that
// prefix (see the eventbus package).
type EventType string

// Feature events — emitted by the Constraint & Update Engine, the
// single-field mutator, and revert.
const (
	EventFeatureUpdated         EventType = "feature.updated"
	EventFeatureCapacityUpdated EventType = "feature.capacity_updated"
	EventFeatureSelected        EventType = "feature.selected"
)

// Scenario events — emitted by the Scenario Manager.
const (
	EventScenarioActivated EventType = "scenario.activated"
)

// App events — emitted once by the composition root.
const (
	EventAppReady EventType = "app.ready"
)

// FeatureUpdatedPayload is the payload of EventFeatureUpdated. Every id
// present had its override in the active scenario written by the emitting
// operation (or just removed, for revert). A written override can equal
// the baseline: an epic move with a zero-day delta still writes and lists
// its plain children.
type FeatureUpdatedPayload struct {
	IDs []string `json:"ids"`
}

// FeatureCapacityUpdatedPayload is the payload of EventFeatureCapacityUpdated.
type FeatureCapacityUpdatedPayload struct {
	FeatureID string          `json:"featureId"`
	Capacity  []CapacityEntry `json:"capacity"`
}

// ScenarioActivatedPayload is the payload of EventScenarioActivated.
type ScenarioActivatedPayload struct {
	ScenarioID string `json:"scenarioId"`
}

// DomainEvent is the immutable envelope every emission on the bus is
// wrapped in before dispatch. AggregateType/AggregateID identify the
// record the event is about ("feature"/feature id, "scenario"/scenario
// id); both are left empty for events about a batch or about the process
// itself rather than one addressable record. Unlike a persisted event
// store, there is no processing Status or archival to track here — the
// bus holds, at most, a bounded in-memory history — so Payload stays the
// original typed value rather than serialized bytes, letting History and
// handlers alike inspect it without a marshal round trip.
type DomainEvent struct {
	EventID       string    `json:"eventId"`
	EventType     EventType `json:"eventType"`
	AggregateType string    `json:"aggregateType,omitempty"`
	AggregateID   string    `json:"aggregateId,omitempty"`
	Payload       any       `json:"payload,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
}
