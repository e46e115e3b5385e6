// Package widget provides observable single-value controls used for the
// selection menus and the chart container.
package widget

import (
	"sort"
	"sync"

	"github.com/secmon-lab/suistat/pkg/domain/types"
)

// Value is an observable value. Subscribers are called synchronously after each change,
// in subscription order, outside of the internal lock.
type Value[T comparable] struct {
	mu      sync.RWMutex
	current T
	seq     int
	subs    map[types.SubscriptionID]subscription[T]
}

type subscription[T comparable] struct {
	seq int
	fn  func(T)
}

// New creates a Value with an initial value
func New[T comparable](initial T) *Value[T] {
	return &Value[T]{
		current: initial,
		subs:    make(map[types.SubscriptionID]subscription[T]),
	}
}

// Current returns the current value
func (v *Value[T]) Current() T {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.current
}

// Set replaces the current value. Subscribers are notified only when the value changed.
func (v *Value[T]) Set(value T) {
	v.mu.Lock()
	if v.current == value {
		v.mu.Unlock()
		return
	}
	v.current = value
	fns := v.snapshot()
	v.mu.Unlock()

	for _, fn := range fns {
		fn(value)
	}
}

// Subscribe registers fn and returns a function removing the subscription
func (v *Value[T]) Subscribe(fn func(T)) func() {
	id := types.NewSubscriptionID()

	v.mu.Lock()
	v.seq++
	v.subs[id] = subscription[T]{seq: v.seq, fn: fn}
	v.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			v.mu.Lock()
			delete(v.subs, id)
			v.mu.Unlock()
		})
	}
}

// Subscribers returns the number of active subscriptions
func (v *Value[T]) Subscribers() int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return len(v.subs)
}

// snapshot must be called with the lock held
func (v *Value[T]) snapshot() []func(T) {
	subs := make([]subscription[T], 0, len(v.subs))
	for _, s := range v.subs {
		subs = append(subs, s)
	}
	sort.Slice(subs, func(i, j int) bool { return subs[i].seq < subs[j].seq })

	fns := make([]func(T), len(subs))
	for i, s := range subs {
		fns[i] = s.fn
	}
	return fns
}
