package eventbus

import (
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scenarioplan.dev/engine/internal/domain"
)

func TestOn_ReceivesEnvelope(t *testing.T) {
	bus := New()

	var got domain.DomainEvent
	bus.On(domain.EventFeatureUpdated, func(event domain.DomainEvent) { got = event })

	bus.Emit(domain.EventFeatureUpdated, "feature", "f1", domain.FeatureUpdatedPayload{IDs: []string{"f1"}})

	assert.Equal(t, domain.EventFeatureUpdated, got.EventType)
	assert.Equal(t, "feature", got.AggregateType)
	assert.Equal(t, "f1", got.AggregateID)
	assert.NotEmpty(t, got.EventID)
	assert.False(t, got.CreatedAt.IsZero())
	assert.Equal(t, domain.FeatureUpdatedPayload{IDs: []string{"f1"}}, got.Payload)
}

func TestOn_MultipleHandlersAllFire(t *testing.T) {
	bus := New()

	var a, b int32
	bus.On(domain.EventFeatureUpdated, func(domain.DomainEvent) { atomic.AddInt32(&a, 1) })
	bus.On(domain.EventFeatureUpdated, func(domain.DomainEvent) { atomic.AddInt32(&b, 1) })

	bus.Emit(domain.EventFeatureUpdated, "", "", nil)

	assert.Equal(t, int32(1), a)
	assert.Equal(t, int32(1), b)
}

func TestOn_Unsubscribe(t *testing.T) {
	bus := New()

	var fired int32
	unsub := bus.On(domain.EventFeatureUpdated, func(domain.DomainEvent) { atomic.AddInt32(&fired, 1) })
	unsub()

	bus.Emit(domain.EventFeatureUpdated, "", "", nil)

	assert.Equal(t, int32(0), fired)
}

func TestOnce_FiresExactlyOnce(t *testing.T) {
	bus := New()

	var fired int32
	bus.Once(domain.EventFeatureUpdated, func(domain.DomainEvent) { atomic.AddInt32(&fired, 1) })

	bus.Emit(domain.EventFeatureUpdated, "", "", nil)
	bus.Emit(domain.EventFeatureUpdated, "", "", nil)
	bus.Emit(domain.EventFeatureUpdated, "", "", nil)

	assert.Equal(t, int32(1), fired)
}

func TestOnce_DoesNotAffectSiblingOnHandler(t *testing.T) {
	bus := New()

	var onceFired, onFired int32
	bus.Once(domain.EventFeatureUpdated, func(domain.DomainEvent) { atomic.AddInt32(&onceFired, 1) })
	bus.On(domain.EventFeatureUpdated, func(domain.DomainEvent) { atomic.AddInt32(&onFired, 1) })

	bus.Emit(domain.EventFeatureUpdated, "", "", nil)
	bus.Emit(domain.EventFeatureUpdated, "", "", nil)

	assert.Equal(t, int32(1), onceFired)
	assert.Equal(t, int32(2), onFired)
}

func TestOnNamespace_MatchesEveryEventInNamespace(t *testing.T) {
	bus := New()

	var got []domain.EventType
	bus.OnNamespace("feature", func(event domain.DomainEvent) {
		got = append(got, event.EventType)
	})

	bus.Emit(domain.EventFeatureUpdated, "", "", nil)
	bus.Emit(domain.EventFeatureCapacityUpdated, "", "", nil)
	bus.Emit(domain.EventScenarioActivated, "", "", nil)

	assert.Equal(t, []domain.EventType{domain.EventFeatureUpdated, domain.EventFeatureCapacityUpdated}, got)
}

func TestOnNamespace_Unsubscribe(t *testing.T) {
	bus := New()

	var fired int32
	unsub := bus.OnNamespace("feature", func(domain.DomainEvent) { atomic.AddInt32(&fired, 1) })
	unsub()

	bus.Emit(domain.EventFeatureUpdated, "", "", nil)

	assert.Equal(t, int32(0), fired)
}

func TestOff_RemovesSubscription(t *testing.T) {
	bus := New()

	var fired int32
	unsub := bus.On(domain.EventFeatureUpdated, func(domain.DomainEvent) { atomic.AddInt32(&fired, 1) })
	bus.Off(domain.EventFeatureUpdated, unsub)

	bus.Emit(domain.EventFeatureUpdated, "", "", nil)

	assert.Equal(t, int32(0), fired)
}

func TestEmit_PanickingHandlerIsRecoveredAndSiblingsStillRun(t *testing.T) {
	bus := New()

	var fired int32
	bus.On(domain.EventFeatureUpdated, func(domain.DomainEvent) { panic("boom") })
	bus.On(domain.EventFeatureUpdated, func(domain.DomainEvent) { atomic.AddInt32(&fired, 1) })

	assert.NotPanics(t, func() {
		bus.Emit(domain.EventFeatureUpdated, "", "", nil)
	})
	assert.Equal(t, int32(1), fired)
}

func TestHistory_DisabledByDefault(t *testing.T) {
	bus := New()

	bus.Emit(domain.EventFeatureUpdated, "", "", nil)

	assert.Empty(t, bus.GetEventHistory())
}

func TestHistory_RecordsEnabledEmissions(t *testing.T) {
	bus := New()
	bus.EnableHistoryLogging(10)

	bus.Emit(domain.EventFeatureUpdated, "feature", "f1", domain.FeatureUpdatedPayload{IDs: []string{"f1"}})
	bus.Emit(domain.EventScenarioActivated, "scenario", "s1", domain.ScenarioActivatedPayload{ScenarioID: "s1"})

	history := bus.GetEventHistory()
	require.Len(t, history, 2)
	assert.Equal(t, domain.EventFeatureUpdated, history[0].EventType)
	assert.Equal(t, domain.EventScenarioActivated, history[1].EventType)
}

func TestHistory_EvictsOldestBeyondLimit(t *testing.T) {
	bus := New()
	bus.EnableHistoryLogging(2)

	bus.Emit(domain.EventFeatureUpdated, "feature", "f1", nil)
	bus.Emit(domain.EventFeatureUpdated, "feature", "f2", nil)
	bus.Emit(domain.EventFeatureUpdated, "feature", "f3", nil)

	history := bus.GetEventHistory()
	require.Len(t, history, 2)
	assert.Equal(t, "f2", history[0].AggregateID, "oldest entry evicted")
	assert.Equal(t, "f3", history[1].AggregateID)
}

func TestHistory_DisableDropsBuffer(t *testing.T) {
	bus := New()
	bus.EnableHistoryLogging(10)
	bus.Emit(domain.EventFeatureUpdated, "feature", "f1", nil)
	require.Len(t, bus.GetEventHistory(), 1)

	bus.DisableHistoryLogging()
	assert.Empty(t, bus.GetEventHistory())

	bus.Emit(domain.EventFeatureUpdated, "feature", "f2", nil)
	assert.Empty(t, bus.GetEventHistory(), "no recording once disabled")
}

func TestDefault_ReturnsSameSingleton(t *testing.T) {
	assert.Same(t, Default(), Default())
}
