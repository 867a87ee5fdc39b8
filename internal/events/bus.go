package events

import (
	"sync"

	"go.uber.org/atomic"
)

// Event names shared between the API and the web client. The client keys its
// refresh logic on these exact strings.
const (
	BalanceUpdated       = "wallet:balance-updated"
	SubscriptionCreated  = "wallet:subscription-created"
	SubscriptionUpdated  = "wallet:subscription-updated"
	TransactionCompleted = "wallet:transaction-completed"
)

// Handler receives the payload exactly as it was published. Payloads may be
// nil; handlers must not assume one is present.
type Handler func(payload interface{})

// UnsubscribeFunc removes the handler it was returned for. Calling it more
// than once is safe.
type UnsubscribeFunc func()

type subscriber struct {
	id      uint64
	handler Handler
}

// Bus is an in-process publish/subscribe dispatcher. It holds no domain data,
// only the current handler set per event name, and is meant to live for the
// whole server session and be passed to components explicitly rather than
// accessed as a package global.
type Bus struct {
	mutex     sync.Mutex
	nextID    uint64
	handlers  map[string][]subscriber
	published atomic.Int64
	delivered atomic.Int64
}

func NewBus() *Bus {
	return &Bus{
		handlers: make(map[string][]subscriber),
	}
}

// Subscribe registers handler for name and returns its unsubscribe func.
// Subscriptions to the same event are independent.
func (b *Bus) Subscribe(name string, handler Handler) UnsubscribeFunc {
	b.mutex.Lock()
	b.nextID++
	id := b.nextID
	b.handlers[name] = append(b.handlers[name], subscriber{id: id, handler: handler})
	b.mutex.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.remove(name, id)
		})
	}
}

func (b *Bus) remove(name string, id uint64) {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	subs := b.handlers[name]
	for i, sub := range subs {
		if sub.id == id {
			b.handlers[name] = append(subs[:i:i], subs[i+1:]...)
			break
		}
	}
	if len(b.handlers[name]) == 0 {
		delete(b.handlers, name)
	}
}

// Publish synchronously invokes every handler currently registered for name,
// in registration order, passing payload unchanged. Events with no
// subscribers are dropped; there is no queue and no replay, so a handler
// registered after Publish returns never sees that occurrence.
func (b *Bus) Publish(name string, payload interface{}) {
	b.mutex.Lock()
	subs := make([]subscriber, len(b.handlers[name]))
	copy(subs, b.handlers[name])
	b.mutex.Unlock()

	b.published.Inc()

	// handlers run outside the lock so they can subscribe or unsubscribe
	for _, sub := range subs {
		sub.handler(payload)
		b.delivered.Inc()
	}
}

// Stats returns the total published events and handler deliveries so far.
func (b *Bus) Stats() (published, delivered int64) {
	return b.published.Load(), b.delivered.Load()
}

// SubscriberCount returns how many handlers are registered for name.
func (b *Bus) SubscriberCount(name string) int {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	return len(b.handlers[name])
}
