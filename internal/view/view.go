// Package view maintains scoped, live-updating in-memory lists of remote
// rows. A View fetches all rows for a scope, replaces its state wholesale,
// then applies change events from a live source until the scope changes or
// the view is deactivated.
package view

import (
	"context"
	"fmt"
	"sync"
)

// EventType is the kind of change applied to a view.
type EventType string

const (
	Insert EventType = "insert"
	Update EventType = "update"
	Delete EventType = "delete"
)

// Event is one row change delivered by a live source.
type Event[T any] struct {
	Type EventType
	Row  T
}

// FetchFunc loads all rows for a scope.
type FetchFunc[T any] func(ctx context.Context, scope string) ([]T, error)

// SubscribeFunc opens a live event source for a scope. It returns the event
// channel and a function that closes the source. The channel may be closed
// by the source after the close function runs.
type SubscribeFunc[T any] func(scope string) (<-chan Event[T], func(), error)

// View is a scoped live list of T. All methods are safe for concurrent use.
//
// Every activation is stamped with a generation. Fetch results and live
// events carry the generation they belong to; anything stamped with a stale
// generation is discarded, so a late fetch response or an event from a
// previous scope can never leak into the current state.
type View[T any] struct {
	fetch     FetchFunc[T]
	subscribe SubscribeFunc[T]

	mu      sync.Mutex
	gen     uint64
	scope   string
	items   []T
	loading bool
	unsub   func()
	onEvent func(Event[T])
}

// New creates a view. subscribe may be nil for fetch-only resources.
func New[T any](fetch FetchFunc[T], subscribe SubscribeFunc[T]) *View[T] {
	return &View[T]{fetch: fetch, subscribe: subscribe}
}

// OnEvent registers a callback invoked after each live event is applied to
// the view's state. Must be called before Activate.
func (v *View[T]) OnEvent(fn func(Event[T])) {
	v.mu.Lock()
	v.onEvent = fn
	v.mu.Unlock()
}

// Activate points the view at a scope. An empty scope synchronously clears
// state and issues no fetch. Otherwise the current state is replaced by a
// full fetch and, when the view has a live source, a subscription for the
// scope is opened. Any previous subscription is closed first; at most one
// subscription is open per view.
//
// A fetch error leaves the view empty with loading cleared and is returned
// to the caller.
func (v *View[T]) Activate(ctx context.Context, scope string) error {
	v.mu.Lock()
	v.gen++
	gen := v.gen
	v.scope = scope
	v.closeSubscriptionLocked()

	if scope == "" {
		v.items = nil
		v.loading = false
		v.mu.Unlock()
		return nil
	}
	v.loading = true
	v.mu.Unlock()

	rows, err := v.fetch(ctx, scope)

	v.mu.Lock()
	if gen != v.gen {
		// Superseded by a later Activate/Deactivate; discard.
		v.mu.Unlock()
		return nil
	}
	v.loading = false
	if err != nil {
		v.items = nil
		v.mu.Unlock()
		return fmt.Errorf("fetch scope %q: %w", scope, err)
	}
	v.items = rows

	if v.subscribe == nil {
		v.mu.Unlock()
		return nil
	}

	ch, unsub, err := v.subscribe(scope)
	if err != nil {
		v.mu.Unlock()
		return fmt.Errorf("subscribe scope %q: %w", scope, err)
	}
	v.unsub = unsub
	v.mu.Unlock()

	go v.consume(ctx, gen, scope, ch)
	return nil
}

// Deactivate closes the subscription and clears state.
func (v *View[T]) Deactivate() {
	v.mu.Lock()
	v.gen++
	v.scope = ""
	v.items = nil
	v.loading = false
	v.closeSubscriptionLocked()
	v.mu.Unlock()
}

// Snapshot returns a copy of the current list.
func (v *View[T]) Snapshot() []T {
	v.mu.Lock()
	defer v.mu.Unlock()
	out := make([]T, len(v.items))
	copy(out, v.items)
	return out
}

// Loading reports whether a fetch is in flight.
func (v *View[T]) Loading() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.loading
}

// Scope returns the currently active scope.
func (v *View[T]) Scope() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.scope
}

func (v *View[T]) closeSubscriptionLocked() {
	if v.unsub != nil {
		v.unsub()
		v.unsub = nil
	}
}

func (v *View[T]) consume(ctx context.Context, gen uint64, scope string, ch <-chan Event[T]) {
	for {
		select {
		case <-ctx.Done():
			return
		case evt, ok := <-ch:
			if !ok {
				return
			}
			if !v.apply(ctx, gen, scope, evt) {
				return
			}
		}
	}
}

// apply folds one live event into the state. Inserts append in arrival
// order; updates and deletes trigger a full refetch of the scope (coarse
// invalidation). Returns false when the event belongs to a stale generation
// and the consumer should stop.
func (v *View[T]) apply(ctx context.Context, gen uint64, scope string, evt Event[T]) bool {
	v.mu.Lock()
	if gen != v.gen {
		v.mu.Unlock()
		return false
	}
	if evt.Type == Insert {
		v.items = append(v.items, evt.Row)
		fn := v.onEvent
		v.mu.Unlock()
		if fn != nil {
			fn(evt)
		}
		return true
	}
	v.mu.Unlock()

	rows, err := v.fetch(ctx, scope)

	v.mu.Lock()
	if gen != v.gen {
		v.mu.Unlock()
		return false
	}
	if err != nil {
		v.items = nil
	} else {
		v.items = rows
	}
	fn := v.onEvent
	v.mu.Unlock()
	if fn != nil {
		fn(evt)
	}
	return true
}
