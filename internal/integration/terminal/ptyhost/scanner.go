package ptyhost

import (
	"bytes"

	"github.com/hay-kot/shellmark/internal/core/marker"
)

// Sequences written by the integration script.
var (
	readyMarker  = []byte("\x1b]633;P;HasExecuteCommand=True\x07")
	startMarker  = []byte(marker.CommandStart)
	finishMarker = []byte(marker.CommandFinished)
)

// Scanner watches raw PTY output for the integration markers. Everything from
// a CommandStart marker through the BEL closing the next CommandFinished
// marker is passed to OnData, markers included. Markers split across writes
// are handled by holding back a short tail until more data arrives.
//
// Scanner is not safe for concurrent use; feed it from a single reader.
type Scanner struct {
	OnReady func()
	OnStart func()
	OnData  func(chunk string)
	OnEnd   func()

	buf    []byte
	inExec bool
}

// Write implements io.Writer. It never fails.
func (s *Scanner) Write(p []byte) (int, error) {
	s.buf = append(s.buf, p...)
	for s.step() {
	}
	return len(p), nil
}

// InExecution reports whether a command's output is currently being captured.
func (s *Scanner) InExecution() bool {
	return s.inExec
}

func (s *Scanner) step() bool {
	if s.inExec {
		return s.stepExecution()
	}
	return s.stepIdle()
}

func (s *Scanner) stepIdle() bool {
	ri := bytes.Index(s.buf, readyMarker)
	si := bytes.Index(s.buf, startMarker)

	switch {
	case ri >= 0 && (si < 0 || ri < si):
		s.buf = s.buf[ri+len(readyMarker):]
		call(s.OnReady)
		return true
	case si >= 0:
		s.buf = s.buf[si:]
		s.inExec = true
		call(s.OnStart)
		return true
	}

	s.buf = keepTail(s.buf, len(readyMarker)-1)
	return false
}

func (s *Scanner) stepExecution() bool {
	fi := bytes.Index(s.buf, finishMarker)
	if fi < 0 {
		hold := len(finishMarker) - 1
		if len(s.buf) > hold {
			s.emit(s.buf[:len(s.buf)-hold])
			s.buf = keepTail(s.buf, hold)
		}
		return false
	}

	// The exit code runs up to the BEL terminating the sequence.
	bel := bytes.IndexByte(s.buf[fi:], '\a')
	if bel < 0 {
		if fi > 0 {
			s.emit(s.buf[:fi])
			s.buf = keepTail(s.buf, len(s.buf)-fi)
		}
		return false
	}

	end := fi + bel + 1
	s.emit(s.buf[:end])
	s.buf = keepTail(s.buf, len(s.buf)-end)
	s.inExec = false
	call(s.OnEnd)
	return true
}

func (s *Scanner) emit(b []byte) {
	if len(b) == 0 || s.OnData == nil {
		return
	}
	s.OnData(string(b))
}

// keepTail returns a fresh copy of the last n bytes of b.
func keepTail(b []byte, n int) []byte {
	if n > len(b) {
		n = len(b)
	}
	return append([]byte(nil), b[len(b)-n:]...)
}

func call(fn func()) {
	if fn != nil {
		fn()
	}
}
