// Package termtest provides a scripted in-memory terminal host for tests.
package termtest

import (
	"context"
	"fmt"
	"sync"

	"github.com/hay-kot/shellmark/internal/integration/terminal"
)

// Host is a terminal.Host whose terminals "run" commands by replaying the
// chunks returned from Script.
type Host struct {
	// Script returns the raw output chunks for a command. A nil Script
	// produces no execution events at all.
	Script func(command string) []string
	// ReadErr, when set, is delivered at the end of every execution stream.
	ReadErr error
	// Integrated controls whether new terminals start with shell integration.
	Integrated bool
	// Hold, when non-nil, delays every execution until it is closed.
	Hold chan struct{}

	mu        sync.Mutex
	nextID    int
	terminals []*Terminal
	starts    map[int]func(terminal.StartEvent)
	ends      map[int]func(terminal.EndEvent)
	wg        sync.WaitGroup
}

// CreateTerminal implements terminal.Host.
func (h *Host) CreateTerminal(_ context.Context, opts terminal.CreateOptions) (terminal.Terminal, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.nextID++
	t := &Terminal{
		host:       h,
		id:         fmt.Sprintf("term-%d", h.nextID),
		name:       opts.Name,
		env:        opts.Env,
		integrated: h.Integrated,
	}
	h.terminals = append(h.terminals, t)
	return t, nil
}

// OnDidStartExecution implements terminal.Host.
func (h *Host) OnDidStartExecution(fn func(terminal.StartEvent)) terminal.Subscription {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.starts == nil {
		h.starts = make(map[int]func(terminal.StartEvent))
	}
	h.nextID++
	id := h.nextID
	h.starts[id] = fn
	return subscription(func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		delete(h.starts, id)
	})
}

// OnDidEndExecution implements terminal.Host.
func (h *Host) OnDidEndExecution(fn func(terminal.EndEvent)) terminal.Subscription {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.ends == nil {
		h.ends = make(map[int]func(terminal.EndEvent))
	}
	h.nextID++
	id := h.nextID
	h.ends[id] = fn
	return subscription(func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		delete(h.ends, id)
	})
}

// Terminals returns every terminal created so far.
func (h *Host) Terminals() []*Terminal {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]*Terminal, len(h.terminals))
	copy(out, h.terminals)
	return out
}

// Subscribers returns the number of live start and end handlers.
func (h *Host) Subscribers() (starts, ends int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.starts), len(h.ends)
}

// Wait blocks until every dispatched execution has delivered its events.
func (h *Host) Wait() {
	h.wg.Wait()
}

func (h *Host) dispatch(t *Terminal, command string) {
	if h.Script == nil {
		return
	}
	chunks := h.Script(command)

	h.wg.Add(1)
	go func() {
		defer h.wg.Done()
		if h.Hold != nil {
			<-h.Hold
		}

		stream := terminal.NewStream(command)

		h.mu.Lock()
		starts := make([]func(terminal.StartEvent), 0, len(h.starts))
		for _, fn := range h.starts {
			starts = append(starts, fn)
		}
		h.mu.Unlock()

		for _, fn := range starts {
			fn(terminal.StartEvent{Terminal: t, Execution: stream})
		}

		for _, c := range chunks {
			stream.Push(c)
		}
		stream.Close(h.ReadErr)

		h.mu.Lock()
		ends := make([]func(terminal.EndEvent), 0, len(h.ends))
		for _, fn := range h.ends {
			ends = append(ends, fn)
		}
		h.mu.Unlock()

		for _, fn := range ends {
			fn(terminal.EndEvent{Terminal: t, Execution: stream})
		}
	}()
}

type subscription func()

func (s subscription) Dispose() { s() }

var _ terminal.Host = (*Host)(nil)
