package tui

import (
	"sync"

	"github.com/hay-kot/shellmark/internal/runner"
)

// EventKind tells which sink produced an Event.
type EventKind int

const (
	EventOutput EventKind = iota
	EventDebug
)

// Event is one message written to a controller sink.
type Event struct {
	Kind EventKind
	Text string
}

// Bridge forwards controller sink calls, which happen on controller
// goroutines, into the Bubble Tea event loop.
type Bridge struct {
	events chan Event
	done   chan struct{}
	once   sync.Once
}

// NewBridge creates a Bridge buffering up to size events.
func NewBridge(size int) *Bridge {
	return &Bridge{
		events: make(chan Event, size),
		done:   make(chan struct{}),
	}
}

// Sinks returns controller sinks that publish to the bridge.
func (b *Bridge) Sinks() runner.Sinks {
	return runner.Sinks{
		OnOutput: func(s string) { b.publish(Event{Kind: EventOutput, Text: s}) },
		OnDebug:  func(s string) { b.publish(Event{Kind: EventDebug, Text: s}) },
	}
}

// Events is drained by the model.
func (b *Bridge) Events() <-chan Event {
	return b.events
}

// Close stops publishing. Sink calls after Close are dropped.
func (b *Bridge) Close() {
	b.once.Do(func() { close(b.done) })
}

func (b *Bridge) publish(e Event) {
	select {
	case b.events <- e:
	case <-b.done:
	}
}
