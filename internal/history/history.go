package history

import (
	"context"
	"time"
)

// EventType defines the kind of lifecycle event.
type EventType string

const (
	EventStart EventType = "start"
	EventStop  EventType = "stop"
	EventKill  EventType = "kill"
)

// Event is a single lifecycle record for the supervised job.
type Event struct {
	Type       EventType `json:"type"`
	OccurredAt time.Time `json:"occurred_at"`
	PID        int       `json:"pid"`
	Detail     string    `json:"detail,omitempty"`
}

// Sink is a destination for lifecycle events. Recording failures must never
// change the outcome of the operation that produced the event.
type Sink interface {
	Record(ctx context.Context, e Event) error
	Close() error
}

// NopSink discards all events; used when no history DSN is configured.
type NopSink struct{}

func (NopSink) Record(context.Context, Event) error { return nil }
func (NopSink) Close() error                        { return nil }

// Open returns a sink for the given DSN. Empty DSN yields a NopSink.
func Open(dsn string) (Sink, error) {
	if dsn == "" {
		return NopSink{}, nil
	}
	return NewSQLiteSink(dsn)
}
