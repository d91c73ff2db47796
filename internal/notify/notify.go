// Package notify provides a small typed observer used by the document model,
// the selection and the history to announce changes.
//
// Observers are called synchronously, in subscription order, on the
// goroutine that calls Notify.
package notify

import (
	"sync"
)

// Observer is called when a value is published.
type Observer[T any] func(value T)

// Subscription represents an active observer subscription.
type Subscription[T any] struct {
	id       uint64
	notifier *Notifier[T]
}

// Unsubscribe removes this subscription. It is safe to call more than once
// and on a nil subscription.
func (s *Subscription[T]) Unsubscribe() {
	if s != nil && s.notifier != nil {
		s.notifier.unsubscribe(s.id)
		s.notifier = nil
	}
}

type entry[T any] struct {
	id       uint64
	observer Observer[T]
}

// Notifier manages subscriptions for values of type T.
// The zero value is ready to use.
type Notifier[T any] struct {
	mu        sync.RWMutex
	observers []entry[T]
	nextID    uint64
	closed    bool
}

// New creates a new Notifier.
func New[T any]() *Notifier[T] {
	return &Notifier[T]{}
}

// Subscribe registers an observer for all published values.
// Subscribing to a closed notifier returns an inert subscription.
func (n *Notifier[T]) Subscribe(observer Observer[T]) *Subscription[T] {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.closed || observer == nil {
		return &Subscription[T]{}
	}

	id := n.nextID
	n.nextID++
	n.observers = append(n.observers, entry[T]{id: id, observer: observer})

	return &Subscription[T]{id: id, notifier: n}
}

// Notify delivers value to every observer.
// Observers run outside the lock and may unsubscribe themselves.
func (n *Notifier[T]) Notify(value T) {
	n.mu.RLock()
	if n.closed || len(n.observers) == 0 {
		n.mu.RUnlock()
		return
	}
	observers := make([]Observer[T], len(n.observers))
	for i, e := range n.observers {
		observers[i] = e.observer
	}
	n.mu.RUnlock()

	for _, obs := range observers {
		obs(value)
	}
}

// Len returns the number of active subscriptions.
func (n *Notifier[T]) Len() int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return len(n.observers)
}

// Close drops every subscription; later Notify calls are no-ops.
// It is safe to call Close multiple times.
func (n *Notifier[T]) Close() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.closed = true
	n.observers = nil
}

func (n *Notifier[T]) unsubscribe(id uint64) {
	n.mu.Lock()
	defer n.mu.Unlock()

	for i, e := range n.observers {
		if e.id == id {
			n.observers = append(n.observers[:i:i], n.observers[i+1:]...)
			return
		}
	}
}
