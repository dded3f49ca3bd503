package events

import (
	"sync"
)

// Handler receives lifecycle events.
type Handler func(SandboxEvent)

type subscriber struct {
	id      uint64
	handler Handler
}

// Bus fans lifecycle events out to subscribers.
//
// Emit delivers synchronously, in registration order, to the subscribers
// registered when Emit was called. A handler may unsubscribe itself (or
// others) during delivery; the change applies from the next Emit. Panics in
// handlers are not recovered.
//
// Bus is safe for concurrent use.
type Bus struct {
	mu     sync.RWMutex
	subs   []subscriber
	nextID uint64
}

// NewBus creates an empty event bus.
func NewBus() *Bus {
	return &Bus{}
}

// Subscribe registers handler and returns a function that removes it.
// The returned function is idempotent.
func (b *Bus) Subscribe(handler Handler) (unsubscribe func()) {
	b.mu.Lock()
	b.nextID++
	id := b.nextID
	b.subs = append(b.subs, subscriber{id: id, handler: handler})
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { b.remove(id) })
	}
}

func (b *Bus) remove(id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i, s := range b.subs {
		if s.id == id {
			// Snapshots held by an in-flight Emit must not change.
			subs := make([]subscriber, 0, len(b.subs)-1)
			subs = append(subs, b.subs[:i]...)
			b.subs = append(subs, b.subs[i+1:]...)
			return
		}
	}
}

// Emit delivers event to every current subscriber.
func (b *Bus) Emit(event SandboxEvent) {
	b.mu.RLock()
	snapshot := b.subs
	b.mu.RUnlock()

	for _, s := range snapshot {
		s.handler(event)
	}
}

// Len returns the number of registered subscribers.
func (b *Bus) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}
