package events

import (
	"sync"

	"github.com/mcpdesk/mcpdesk/internal/api"
	"github.com/mcpdesk/mcpdesk/pkg/logging"
)

// DefaultBufferSize is the per-subscriber channel capacity used when none is configured.
const DefaultBufferSize = 256

// Publisher is the producer side of the bus.
type Publisher interface {
	Publish(event api.Event)
}

type subscriber struct {
	ch    chan api.Event
	types map[api.EventType]struct{}
}

func (s *subscriber) wants(t api.EventType) bool {
	if len(s.types) == 0 {
		return true
	}
	_, ok := s.types[t]
	return ok
}

// Bus fans events out to subscribers. Each subscriber has its own bounded
// channel; a subscriber that falls behind loses events rather than stalling
// producers. Events from a single producer goroutine reach every subscriber
// in publish order.
type Bus struct {
	mu         sync.RWMutex
	subs       map[uint64]*subscriber
	nextID     uint64
	bufferSize int
	closed     bool
}

// NewBus creates a bus whose subscriber channels hold bufferSize events.
func NewBus(bufferSize int) *Bus {
	if bufferSize <= 0 {
		bufferSize = DefaultBufferSize
	}
	return &Bus{
		subs:       make(map[uint64]*subscriber),
		bufferSize: bufferSize,
	}
}

// Subscribe registers a consumer. With no types given every event is delivered.
// The returned cancel func unregisters the consumer and closes its channel; it
// is safe to call more than once.
func (b *Bus) Subscribe(types ...api.EventType) (<-chan api.Event, func()) {
	sub := &subscriber{
		ch:    make(chan api.Event, b.bufferSize),
		types: make(map[api.EventType]struct{}, len(types)),
	}
	for _, t := range types {
		sub.types[t] = struct{}{}
	}

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		close(sub.ch)
		return sub.ch, func() {}
	}
	id := b.nextID
	b.nextID++
	b.subs[id] = sub
	b.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			if s, ok := b.subs[id]; ok {
				delete(b.subs, id)
				close(s.ch)
			}
		})
	}
	return sub.ch, cancel
}

// Publish delivers the event to every interested subscriber without blocking.
func (b *Bus) Publish(event api.Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return
	}

	for _, sub := range b.subs {
		if !sub.wants(event.Type) {
			continue
		}
		select {
		case sub.ch <- event:
		default:
			logging.Warn("Events", "Subscriber buffer full, dropping %s event for %s", event.Type, event.ID)
		}
	}
}

// Close unregisters all subscribers and closes their channels. Later
// publishes are ignored.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.closed = true
	for id, sub := range b.subs {
		delete(b.subs, id)
		close(sub.ch)
	}
}

// Discard is a Publisher that drops everything.
var Discard Publisher = discard{}

type discard struct{}

func (discard) Publish(api.Event) {}
