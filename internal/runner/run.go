package runner

import (
	"sync"

	"github.com/hay-kot/shellmark/internal/integration/terminal"
)

// run is the state of one ExecuteCommand call, from subscription to cleanup.
type run struct {
	command string
	opts    Options
	term    terminal.Terminal
	subs    []terminal.Subscription

	// done is closed once the start handler finished with the stream.
	done chan struct{}

	mu       sync.Mutex
	started  bool
	disposed bool
}

// claim marks the run as started. Only the first execution in the terminal
// belongs to the run.
func (r *run) claim() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.started || r.disposed {
		return false
	}
	r.started = true
	return true
}

func (r *run) claimed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.started
}

// dispose removes both event handlers exactly once.
func (r *run) dispose() {
	r.mu.Lock()
	if r.disposed {
		r.mu.Unlock()
		return
	}
	r.disposed = true
	subs := r.subs
	r.mu.Unlock()

	for _, s := range subs {
		s.Dispose()
	}
}
