// Package utils contains small helpers shared by the CLI entrypoint.
package utils

import (
	"bufio"
	"bytes"
	"io"
	"sync"
)

// DeferredWriter buffers log lines while the terminal is owned by the TUI and
// replays them once it is released.
type DeferredWriter struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

// Write implements io.Writer.
func (d *DeferredWriter) Write(p []byte) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.buf.Write(p)
}

// Flush replays every buffered line into w, one Write per line, and clears
// the buffer. zerolog writers such as ConsoleWriter expect one event per Write.
func (d *DeferredWriter) Flush(w io.Writer) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	sc := bufio.NewScanner(&d.buf)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := sc.Bytes()
		if len(line) == 0 {
			continue
		}
		if _, err := w.Write(append(line, '\n')); err != nil {
			return err
		}
	}
	d.buf.Reset()
	return sc.Err()
}

// Len reports the number of buffered bytes.
func (d *DeferredWriter) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.buf.Len()
}
