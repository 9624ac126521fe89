// Package events defines the structured event log the core emits, grounded
// on the teacher's core/events package: a minimal Event interface, an
// Emitter sink, and a NoopEmitter default so engines never need a nil check
// before emitting.
package events

import "github.com/GabinFay/uncle-credit-p2p-lending/core/types"

// Event is a structured state change emitted by one of the native engines.
type Event interface {
	// EventType returns the canonical dotted event name (e.g.
	// "lending.loanAgreementCreated").
	EventType() string
	// ToLogEvent renders the typed event into the wire-level types.Event
	// shape consumed by off-chain indexers.
	ToLogEvent() *types.Event
}

// Emitter broadcasts events to downstream subscribers.
type Emitter interface {
	Emit(Event)
}

// NoopEmitter discards every event. It is the default emitter for every
// engine until SetEmitter is called.
type NoopEmitter struct{}

// Emit implements Emitter.
func (NoopEmitter) Emit(Event) {}

// Recorder is a simple in-memory Emitter used by tests to assert on exact
// emission order (§8 "Event-ordering contract").
type Recorder struct {
	Events []Event
}

// Emit implements Emitter.
func (r *Recorder) Emit(e Event) {
	r.Events = append(r.Events, e)
}

// Types returns the EventType() of every recorded event, in order.
func (r *Recorder) Types() []string {
	out := make([]string, len(r.Events))
	for i, e := range r.Events {
		out[i] = e.EventType()
	}
	return out
}
