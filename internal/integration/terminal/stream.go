package terminal

import (
	"context"
	"iter"
	"sync"
)

// Stream is an append-only chunk buffer implementing Execution. Producers
// Push chunks and Close it once; any number of readers see every chunk from
// the beginning. Push never blocks on slow readers.
type Stream struct {
	command string

	mu      sync.Mutex
	chunks  []string
	closed  bool
	err     error
	changed chan struct{} // closed and replaced on every state change
	done    chan struct{}
}

// NewStream creates an open stream for the given command line.
func NewStream(command string) *Stream {
	return &Stream{
		command: command,
		changed: make(chan struct{}),
		done:    make(chan struct{}),
	}
}

// CommandLine returns the command that produced this stream.
func (s *Stream) CommandLine() string {
	return s.command
}

// Push appends a chunk. Pushing to a closed stream is a no-op.
func (s *Stream) Push(chunk string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.chunks = append(s.chunks, chunk)
	s.wake()
}

// Close ends the stream. A non-nil err is delivered to readers after the
// buffered chunks. Only the first call has an effect.
func (s *Stream) Close(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	s.err = err
	s.wake()
	close(s.done)
}

// Done is closed once the stream is closed.
func (s *Stream) Done() <-chan struct{} {
	return s.done
}

func (s *Stream) wake() {
	close(s.changed)
	s.changed = make(chan struct{})
}

// Read implements Execution.
func (s *Stream) Read(ctx context.Context) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		next := 0
		for {
			s.mu.Lock()
			if next < len(s.chunks) {
				chunk := s.chunks[next]
				next++
				s.mu.Unlock()
				if !yield(chunk, nil) {
					return
				}
				continue
			}
			closed, err, changed := s.closed, s.err, s.changed
			s.mu.Unlock()

			if closed {
				if err != nil {
					yield("", err)
				}
				return
			}

			select {
			case <-ctx.Done():
				yield("", ctx.Err())
				return
			case <-changed:
			}
		}
	}
}

var _ Execution = (*Stream)(nil)
