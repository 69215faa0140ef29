// Package eventbus provides a typed publish/subscribe bus for domain
// events. It generalizes an exact-match-only dispatcher into namespace
// subscriptions, once-handlers, and bounded history for the scenario
// engine's fine-grained change notifications. Every emission is wrapped
// in a domain.DomainEvent envelope before it reaches a handler.
package eventbus

import (
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"scenarioplan.dev/engine/internal/domain"
	"scenarioplan.dev/engine/internal/pkg/logger"
)

// Handler processes an emitted event envelope. A panicking handler is
// recovered and logged; it never prevents sibling handlers from running.
type Handler func(event domain.DomainEvent)

// Unsubscribe removes the handler that produced it.
type Unsubscribe func()

type subscription struct {
	id      uint64
	handler Handler
	once    bool
}

// Bus is the process-wide event bus. The zero value is not usable; use New.
// A package-level default instance is exposed via Default() so that test
// code spanning multiple packages can observe the same bus, matching the
// teacher's permitted process-wide-singleton pattern for its dispatcher.
type Bus struct {
	mu        sync.Mutex
	exact     map[domain.EventType][]subscription
	namespace map[string][]subscription
	nextID    uint64

	historyEnabled bool
	historyLimit   int
	history        []domain.DomainEvent
}

// New creates an empty Bus.
func New() *Bus {
	return &Bus{
		exact:     make(map[domain.EventType][]subscription),
		namespace: make(map[string][]subscription),
	}
}

var (
	defaultOnce sync.Once
	defaultBus  *Bus
)

// Default returns the process-wide singleton Bus, creating it on first use.
func Default() *Bus {
	defaultOnce.Do(func() { defaultBus = New() })
	return defaultBus
}

// On subscribes handler to an exact event identifier.
func (b *Bus) On(event domain.EventType, handler Handler) Unsubscribe {
	return b.subscribe(event, handler, false)
}

// Once subscribes handler to fire at most once for an exact event identifier.
func (b *Bus) Once(event domain.EventType, handler Handler) Unsubscribe {
	return b.subscribe(event, handler, true)
}

// OnNamespace subscribes handler to every event whose identifier shares the
// namespace ns — the prefix of an EventType before its first ".".
func (b *Bus) OnNamespace(ns string, handler Handler) Unsubscribe {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	sub := subscription{id: b.nextID, handler: handler}
	b.namespace[ns] = append(b.namespace[ns], sub)

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		b.namespace[ns] = removeByID(b.namespace[ns], sub.id)
	}
}

func (b *Bus) subscribe(event domain.EventType, handler Handler, once bool) Unsubscribe {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	sub := subscription{id: b.nextID, handler: handler, once: once}
	b.exact[event] = append(b.exact[event], sub)

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		b.exact[event] = removeByID(b.exact[event], sub.id)
	}
}

// Off removes every subscription previously created by the returned
// Unsubscribe for that handler's registration. Kept for API parity with
// spec §4.1; prefer calling the Unsubscribe returned by On/Once.
func (b *Bus) Off(event domain.EventType, unsub Unsubscribe) {
	if unsub != nil {
		unsub()
	}
}

func removeByID(subs []subscription, id uint64) []subscription {
	out := subs[:0:0]
	for _, s := range subs {
		if s.id != id {
			out = append(out, s)
		}
	}
	return out
}

func namespaceOf(event domain.EventType) string {
	s := string(event)
	if i := strings.IndexByte(s, '.'); i >= 0 {
		return s[:i]
	}
	return s
}

// Emit wraps payload in a domain.DomainEvent envelope and invokes every
// exact-match handler, then every namespace handler, for event.
// aggregateType/aggregateID identify the record the event is about and may
// both be empty for a batch or process-wide event. Each handler is wrapped
// so a panic is recovered, logged, and does not prevent others from
// running — spec §4.1's isolation requirement.
func (b *Bus) Emit(event domain.EventType, aggregateType, aggregateID string, payload any) {
	envelope := domain.DomainEvent{
		EventID:       uuid.NewString(),
		EventType:     event,
		AggregateType: aggregateType,
		AggregateID:   aggregateID,
		Payload:       payload,
		CreatedAt:     time.Now(),
	}

	b.mu.Lock()
	exactSubs := append([]subscription(nil), b.exact[event]...)
	nsSubs := append([]subscription(nil), b.namespace[namespaceOf(event)]...)
	if b.historyEnabled {
		b.history = append(b.history, envelope)
		if len(b.history) > b.historyLimit {
			b.history = b.history[len(b.history)-b.historyLimit:]
		}
	}
	b.mu.Unlock()

	var onceIDs []uint64
	for _, s := range exactSubs {
		b.invoke(s, envelope)
		if s.once {
			onceIDs = append(onceIDs, s.id)
		}
	}
	for _, s := range nsSubs {
		b.invoke(s, envelope)
		if s.once {
			onceIDs = append(onceIDs, s.id)
		}
	}

	if len(onceIDs) > 0 {
		b.mu.Lock()
		for _, id := range onceIDs {
			b.exact[event] = removeByID(b.exact[event], id)
			b.namespace[namespaceOf(event)] = removeByID(b.namespace[namespaceOf(event)], id)
		}
		b.mu.Unlock()
	}
}

func (b *Bus) invoke(s subscription, event domain.DomainEvent) {
	defer func() {
		if r := recover(); r != nil {
			logger.Warn("event handler panicked",
				zap.String("event", string(event.EventType)),
				zap.Any("recovered", r),
			)
		}
	}()
	s.handler(event)
}

// EnableHistoryLogging turns on the bounded ring buffer of emitted events,
// capped at limit entries (oldest dropped first).
func (b *Bus) EnableHistoryLogging(limit int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.historyEnabled = true
	b.historyLimit = limit
	if len(b.history) > limit {
		b.history = b.history[len(b.history)-limit:]
	}
}

// DisableHistoryLogging turns off history recording and drops the buffer.
func (b *Bus) DisableHistoryLogging() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.historyEnabled = false
	b.history = nil
}

// GetEventHistory returns a snapshot of the recorded history, oldest first.
func (b *Bus) GetEventHistory() []domain.DomainEvent {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]domain.DomainEvent, len(b.history))
	copy(out, b.history)
	return out
}
