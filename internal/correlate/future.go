package correlate

import (
	"context"
	"sync"
)

// Future is the awaitable result of a single request/reply exchange. It is
// completed exactly once by the correlator; duplicate completions are ignored.
type Future struct {
	id   uint64
	done chan struct{}

	once  sync.Once
	mu    sync.Mutex
	value any
	err   error
}

func newFuture(id uint64) *Future {
	return &Future{id: id, done: make(chan struct{})}
}

// ID returns the request id this future is correlated under.
func (f *Future) ID() uint64 {
	return f.id
}

// Done returns a channel closed once the future has settled.
func (f *Future) Done() <-chan struct{} {
	return f.done
}

// Wait blocks until the future settles or the context is cancelled.
func (f *Future) Wait(ctx context.Context) (any, error) {
	select {
	case <-f.done:
		f.mu.Lock()
		defer f.mu.Unlock()
		return f.value, f.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Result returns the settled value without blocking. The bool reports
// whether the future has settled yet.
func (f *Future) Result() (any, error, bool) {
	select {
	case <-f.done:
		f.mu.Lock()
		defer f.mu.Unlock()
		return f.value, f.err, true
	default:
		return nil, nil, false
	}
}

func (f *Future) resolve(value any) {
	f.once.Do(func() {
		f.mu.Lock()
		f.value = value
		f.mu.Unlock()
		close(f.done)
	})
}

func (f *Future) reject(err error) {
	f.once.Do(func() {
		f.mu.Lock()
		f.err = err
		f.mu.Unlock()
		close(f.done)
	})
}
