package events

// Event is a structured state change emitted by the ledger. Attributes hold
// the canonical string rendering of the payload so downstream consumers
// (indexers, metric recorders) never need the originating package's types.
type Event struct {
	Type       string
	Attributes map[string]string
}

// EventType returns the event's type tag.
func (e *Event) EventType() string {
	if e == nil {
		return ""
	}
	return e.Type
}

// Emitter broadcasts events to downstream subscribers.
type Emitter interface {
	Emit(*Event)
}

// NoopEmitter satisfies the Emitter interface while discarding all events. It
// is the default for engines whose caller does not care about event streams.
type NoopEmitter struct{}

// Emit implements the Emitter interface.
func (NoopEmitter) Emit(*Event) {}
