package terminal_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hay-kot/shellmark/internal/integration/terminal"
	"github.com/hay-kot/shellmark/internal/integration/terminal/termtest"
)

func newTerminal(t *testing.T, integrated bool) *termtest.Terminal {
	t.Helper()
	h := &termtest.Host{Integrated: integrated}
	term, err := h.CreateTerminal(context.Background(), terminal.CreateOptions{Name: "test"})
	require.NoError(t, err)
	return term.(*termtest.Terminal)
}

func TestWaitForIntegration(t *testing.T) {
	t.Run("ready immediately", func(t *testing.T) {
		term := newTerminal(t, true)
		err := terminal.WaitForIntegration(context.Background(), term, time.Second, 10*time.Millisecond)
		assert.NoError(t, err)
	})

	t.Run("becomes ready while polling", func(t *testing.T) {
		term := newTerminal(t, false)
		go func() {
			time.Sleep(30 * time.Millisecond)
			term.SetIntegrated(true)
		}()

		start := time.Now()
		err := terminal.WaitForIntegration(context.Background(), term, 2*time.Second, 5*time.Millisecond)
		require.NoError(t, err)
		assert.Less(t, time.Since(start), time.Second)
	})

	t.Run("times out", func(t *testing.T) {
		term := newTerminal(t, false)
		err := terminal.WaitForIntegration(context.Background(), term, 40*time.Millisecond, 5*time.Millisecond)
		assert.ErrorIs(t, err, terminal.ErrIntegrationTimeout)
	})

	t.Run("context cancelled", func(t *testing.T) {
		term := newTerminal(t, false)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		err := terminal.WaitForIntegration(ctx, term, time.Second, 5*time.Millisecond)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestStream(t *testing.T) {
	t.Run("reads all chunks then stops", func(t *testing.T) {
		s := terminal.NewStream("echo a")
		go func() {
			s.Push("a")
			s.Push("b")
			s.Close(nil)
		}()

		var got string
		for chunk, err := range s.Read(context.Background()) {
			require.NoError(t, err)
			got += chunk
		}
		assert.Equal(t, "ab", got)
		assert.Equal(t, "echo a", s.CommandLine())
	})

	t.Run("error is delivered last", func(t *testing.T) {
		boom := errors.New("boom")
		s := terminal.NewStream("x")
		s.Push("partial")
		s.Close(boom)
		s.Push("ignored")

		var chunks []string
		var lastErr error
		for chunk, err := range s.Read(context.Background()) {
			if err != nil {
				lastErr = err
				break
			}
			chunks = append(chunks, chunk)
		}
		assert.Equal(t, []string{"partial"}, chunks)
		assert.ErrorIs(t, lastErr, boom)
	})

	t.Run("multiple readers see every chunk", func(t *testing.T) {
		s := terminal.NewStream("x")
		s.Push("1")

		results := make(chan string, 2)
		for range 2 {
			go func() {
				var got string
				for chunk, err := range s.Read(context.Background()) {
					if err != nil {
						break
					}
					got += chunk
				}
				results <- got
			}()
		}

		s.Push("2")
		s.Close(nil)

		assert.Equal(t, "12", <-results)
		assert.Equal(t, "12", <-results)
		<-s.Done()
	})

	t.Run("context cancellation stops reader", func(t *testing.T) {
		s := terminal.NewStream("x")
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		var lastErr error
		for _, err := range s.Read(ctx) {
			lastErr = err
		}
		assert.ErrorIs(t, lastErr, context.Canceled)
	})
}
