// Package correlate matches outbound requests to inbound replies across an
// asynchronous channel that has no correlation support of its own.
package correlate

import (
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/jmylchreest/shade/internal/wire"
)

// TeardownError is the rejection delivered to every request still pending
// when the correlator is torn down. It is distinguishable from a
// host-reported failure so callers can tell cancellation apart from errors.
type TeardownError struct {
	Reason error
}

func (e *TeardownError) Error() string {
	if e.Reason == nil {
		return "correlator torn down"
	}
	return fmt.Sprintf("correlator torn down: %v", e.Reason)
}

func (e *TeardownError) Unwrap() error {
	return e.Reason
}

// Correlator allocates request ids, tracks pending requests and settles
// their futures when matching replies arrive. The pending table is owned
// exclusively by the instance; tearing an instance down rejects everything
// still outstanding so no caller is left waiting.
//
// Replies may arrive in any order relative to issuance. A reply for an id
// that is no longer tracked is an orphan: it is logged and dropped.
type Correlator struct {
	ch     wire.Channel
	logger *slog.Logger

	nextID atomic.Uint64

	mu      sync.Mutex
	pending map[uint64]*Future
}

// New creates a correlator sending on ch.
func New(ch wire.Channel, logger *slog.Logger) *Correlator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Correlator{
		ch:      ch,
		logger:  logger,
		pending: make(map[uint64]*Future),
	}
}

// Issue allocates a fresh request id, records a pending entry and sends
// (op, id, payload...) on the channel. Ids are strictly increasing and never
// reused for the lifetime of the correlator.
//
// Issue never fails synchronously: a transport send error is delivered as a
// rejection of the returned future.
func (c *Correlator) Issue(op string, payload ...any) *Future {
	id := c.nextID.Add(1)
	f := newFuture(id)

	c.mu.Lock()
	c.pending[id] = f
	c.mu.Unlock()

	args := append([]any{id}, payload...)
	if err := c.ch.Send(op, args...); err != nil {
		c.Reject(id, fmt.Errorf("send %s: %w", op, err))
	}
	return f
}

// Resolve fulfils the pending request for id. An id with no pending entry
// (already settled, cancelled, or never issued here) is reported as an
// orphan reply and otherwise ignored.
func (c *Correlator) Resolve(id uint64, value any) {
	f := c.take(id)
	if f == nil {
		c.logger.Warn("orphan reply", "id", id)
		return
	}
	f.resolve(value)
}

// Reject fails the pending request for id. Unknown ids are reported as
// orphan errors and otherwise ignored.
func (c *Correlator) Reject(id uint64, err error) {
	f := c.take(id)
	if f == nil {
		c.logger.Warn("orphan error", "id", id, "error", err)
		return
	}
	f.reject(err)
}

// CancelAll rejects every pending request with a TeardownError wrapping
// reason and clears the table. Replies arriving afterwards are orphans.
func (c *Correlator) CancelAll(reason error) {
	c.mu.Lock()
	pending := c.pending
	c.pending = make(map[uint64]*Future)
	c.mu.Unlock()

	if len(pending) > 0 {
		c.logger.Debug("cancelling pending requests", "count", len(pending))
	}
	for _, f := range pending {
		f.reject(&TeardownError{Reason: reason})
	}
}

// Pending returns the number of requests still awaiting a reply.
func (c *Correlator) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pending)
}

// take removes and returns the pending future for id, or nil.
func (c *Correlator) take(id uint64) *Future {
	c.mu.Lock()
	defer c.mu.Unlock()
	f, ok := c.pending[id]
	if !ok {
		return nil
	}
	delete(c.pending, id)
	return f
}
