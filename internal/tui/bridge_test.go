package tui

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBridge_ForwardsSinks(t *testing.T) {
	b := NewBridge(2)
	sinks := b.Sinks()

	sinks.OnOutput("out")
	sinks.OnDebug("dbg")

	assert.Equal(t, Event{Kind: EventOutput, Text: "out"}, <-b.Events())
	assert.Equal(t, Event{Kind: EventDebug, Text: "dbg"}, <-b.Events())
}

func TestBridge_CloseUnblocksPublishers(t *testing.T) {
	b := NewBridge(0)

	done := make(chan struct{})
	go func() {
		b.Sinks().OnOutput("dropped")
		close(done)
	}()

	b.Close()
	b.Close()

	select {
	case <-done:
	case <-time.After(time.Second):
		require.FailNow(t, "publisher still blocked after Close")
	}
}
