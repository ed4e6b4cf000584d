// Package views holds the UI state of the FeastFox screens independent of how
// they are drawn.
package views

import (
	"context"
	"sync"
)

type QueryState[T any] struct {
	Data    T
	Fetched bool
	Loading bool
	// Stale is set by Invalidate and cleared when a fresh result lands.
	Stale bool
	Err   error
	// Generation counts fetches started; only the newest one may write state.
	Generation uint64
}

// Query runs a fetch function in the background and keeps the last result.
// It is not a cache: after Invalidate the data is only trusted again once the
// next fetch resolves.
type Query[T any] struct {
	mu     sync.Mutex
	fetch  func(context.Context) (T, error)
	state  QueryState[T]
	notify func()
	wg     sync.WaitGroup
}

func NewQuery[T any](fetch func(context.Context) (T, error), notify func()) *Query[T] {
	if notify == nil {
		notify = func() {}
	}
	return &Query[T]{fetch: fetch, notify: notify}
}

func (q *Query[T]) State() QueryState[T] {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.state
}

// Fetch starts a new fetch and returns its generation. A result that arrives
// after a newer fetch has started is dropped.
func (q *Query[T]) Fetch(ctx context.Context) uint64 {
	q.mu.Lock()
	gen := q.startLocked()
	q.mu.Unlock()
	q.notify()
	q.run(ctx, gen)
	return gen
}

// FetchIfIdle starts a fetch only when none is in flight. The check and the
// start happen under one lock, so concurrent callers start at most one fetch.
func (q *Query[T]) FetchIfIdle(ctx context.Context) (uint64, bool) {
	q.mu.Lock()
	if q.state.Loading {
		gen := q.state.Generation
		q.mu.Unlock()
		return gen, false
	}
	gen := q.startLocked()
	q.mu.Unlock()
	q.notify()
	q.run(ctx, gen)
	return gen, true
}

// startLocked opens a new generation. Callers hold q.mu.
func (q *Query[T]) startLocked() uint64 {
	q.state.Generation++
	q.state.Loading = true
	q.state.Err = nil
	q.wg.Add(1)
	return q.state.Generation
}

func (q *Query[T]) run(ctx context.Context, gen uint64) {
	go func() {
		defer q.wg.Done()
		data, err := q.fetch(ctx)

		q.mu.Lock()
		if gen != q.state.Generation {
			q.mu.Unlock()
			return
		}
		q.state.Loading = false
		if err != nil {
			q.state.Err = err
		} else {
			q.state.Data = data
			q.state.Fetched = true
			q.state.Stale = false
		}
		q.mu.Unlock()
		q.notify()
	}()
}

// Invalidate marks the current data stale and re-fetches it.
func (q *Query[T]) Invalidate(ctx context.Context) uint64 {
	q.mu.Lock()
	q.state.Stale = true
	q.mu.Unlock()
	return q.Fetch(ctx)
}

// Wait blocks until every fetch started so far has resolved.
func (q *Query[T]) Wait() {
	q.wg.Wait()
}
