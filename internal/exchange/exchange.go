package exchange

import (
	"sync/atomic"

	"github.com/google/uuid"
)

// Well-known property keys. Properties under the "drover." prefix are
// owned by the engine and the error handling machinery; user processors
// should treat them as opaque.
const (
	// PropScopeStack holds the active exception scope stack
	// (innermost scope last). Managed by the errorhandler package.
	PropScopeStack = "drover.onexception.scopes"

	// PropUnwindDepth holds the depth of the exception scope a handled
	// failure unwinds to. While present, structural processors stop
	// advancing; the owning scope removes it on exit.
	PropUnwindDepth = "drover.onexception.unwind"

	// PropRedeliveryCounter holds the attempt counter of the step
	// currently being redelivered.
	PropRedeliveryCounter = "drover.redelivery.counter"

	// PropFailureCaught holds the failure a clause handler is
	// compensating for, after the exception slot has been cleared.
	PropFailureCaught = "drover.failure.caught"

	// PropFilterMatched is set to false by the filter processor when it
	// drops an exchange, so callers can tell a drop from a pass.
	PropFilterMatched = "drover.filter.matched"

	// PropDuplicate is set by the idempotent consumer when it skips an
	// exchange whose key was already processed.
	PropDuplicate = "drover.idempotent.duplicate"
)

// Exchange is the unit of work moving through a processor graph. It is
// owned by exactly one logical thread of control at a time: processors
// mutate it in place and hand it on, and only multicast forks ever see
// concurrently live copies, each independently owned. The cancellation
// flag is the one field read across suspension points and is therefore
// atomic.
type Exchange struct {
	id         string
	in         *Message
	out        *Message
	properties map[string]interface{}
	err        error
	cancelled  atomic.Bool
}

func New() *Exchange {
	e := &Exchange{
		id:         uuid.NewString(),
		properties: make(map[string]interface{}),
	}
	e.SetIn(NewMessage())
	return e
}

func (e *Exchange) ID() string { return e.id }

// In returns the current message. There is always exactly one.
func (e *Exchange) In() *Message { return e.in }

// SetIn replaces the current message. Subsequent processors observe the
// replacement; the previous message is detached.
func (e *Exchange) SetIn(m *Message) {
	if e.in != nil {
		e.in.exchange = nil
	}
	m.exchange = e
	e.in = m
}

// Out returns the out message slot, creating it on first access. Structural
// processors that produce a response distinct from the in-flight message
// (enrich, request/reply sends) populate it.
func (e *Exchange) Out() *Message {
	if e.out == nil {
		m := NewMessage()
		m.exchange = e
		e.out = m
	}
	return e.out
}

func (e *Exchange) HasOut() bool { return e.out != nil }

func (e *Exchange) SetOut(m *Message) {
	if e.out != nil {
		e.out.exchange = nil
	}
	if m != nil {
		m.exchange = e
	}
	e.out = m
}

func (e *Exchange) Property(key string) (interface{}, bool) {
	v, ok := e.properties[key]
	return v, ok
}

func (e *Exchange) SetProperty(key string, value interface{}) {
	e.properties[key] = value
}

func (e *Exchange) RemoveProperty(key string) {
	delete(e.properties, key)
}

// Properties returns a copy of the property map.
func (e *Exchange) Properties() map[string]interface{} {
	out := make(map[string]interface{}, len(e.properties))
	for k, v := range e.properties {
		out[k] = v
	}
	return out
}

// Err returns the exception slot: the first unrecovered failure, or nil.
func (e *Exchange) Err() error { return e.err }

// SetErr records a failure. Processors signal failure through the
// exception slot rather than the call stack because control may resume on
// a different execution context.
func (e *Exchange) SetErr(err error) { e.err = err }

// ClearErr empties the exception slot after a clause recovered the
// failure.
func (e *Exchange) ClearErr() { e.err = nil }

func (e *Exchange) Failed() bool { return e.err != nil }

// Cancel marks the exchange cancelled. Cancellation is cooperative:
// structural processors check it at composition boundaries and stop
// scheduling further steps, but an in-flight leaf runs to its own
// completion.
func (e *Exchange) Cancel() { e.cancelled.Store(true) }

func (e *Exchange) IsCancelled() bool { return e.cancelled.Load() }

// Copy returns an independently owned copy for a multicast or enrich fork:
// fresh id, copied current message and properties, empty exception slot.
// The cancellation state carries over so forks of a cancelled exchange stop
// at their first boundary.
func (e *Exchange) Copy() *Exchange {
	c := &Exchange{
		id:         uuid.NewString(),
		properties: make(map[string]interface{}, len(e.properties)),
	}
	for k, v := range e.properties {
		c.properties[k] = v
	}
	c.SetIn(e.in.Copy())
	if e.out != nil {
		c.SetOut(e.out.Copy())
	}
	if e.IsCancelled() {
		c.Cancel()
	}
	return c
}
