package doctor

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hay-kot/shellmark/internal/core/config"
	"github.com/hay-kot/shellmark/internal/core/history"
	"github.com/hay-kot/shellmark/pkg/executil"
)

type mockStore struct {
	entries []history.Entry
	err     error
}

func (m *mockStore) List(_ context.Context) ([]history.Entry, error) {
	return m.entries, m.err
}

func (m *mockStore) Get(_ context.Context, _ string) (history.Entry, error) {
	return history.Entry{}, history.ErrNotFound
}

func (m *mockStore) Save(_ context.Context, _ history.Entry) error {
	return nil
}

func (m *mockStore) Clear(_ context.Context) error {
	return nil
}

func (m *mockStore) LastUnmatched(_ context.Context) (history.Entry, error) {
	for _, e := range m.entries {
		if !e.Matched {
			return e, nil
		}
	}
	return history.Entry{}, history.ErrNotFound
}

func statuses(r Result) []Status {
	out := make([]Status, len(r.Items))
	for i, item := range r.Items {
		out[i] = item.Status
	}
	return out
}

func TestShellCheck(t *testing.T) {
	t.Run("bash found", func(t *testing.T) {
		exec := &executil.RecordingExecutor{
			Paths:   map[string]string{"bash": "/usr/bin/bash"},
			Outputs: map[string][]byte{"/usr/bin/bash": []byte("GNU bash, version 5.2.21\n")},
		}

		result := NewShellCheck("bash", exec).Run(context.Background())

		assert.Equal(t, "Shell", result.Name)
		assert.Equal(t, []Status{StatusPass, StatusPass, StatusPass}, statuses(result))
		assert.Equal(t, "GNU bash, version 5.2.21", result.Items[1].Detail)
		assert.Equal(t, []executil.RecordedCommand{{Cmd: "/usr/bin/bash", Args: []string{"--version"}}}, exec.Recorded())
	})

	t.Run("missing", func(t *testing.T) {
		exec := &executil.RecordingExecutor{Paths: map[string]string{}}

		result := NewShellCheck("bash", exec).Run(context.Background())

		assert.Equal(t, []Status{StatusFail}, statuses(result))
		assert.Empty(t, exec.Recorded())
	})

	t.Run("not bash", func(t *testing.T) {
		exec := &executil.RecordingExecutor{
			Paths:   map[string]string{"zsh": "/bin/zsh"},
			Outputs: map[string][]byte{"/bin/zsh": []byte("zsh 5.9")},
		}

		result := NewShellCheck("zsh", exec).Run(context.Background())

		assert.Equal(t, []Status{StatusPass, StatusPass, StatusWarn}, statuses(result))
	})

	t.Run("version probe fails", func(t *testing.T) {
		exec := &executil.RecordingExecutor{
			Paths:  map[string]string{"bash": "/bin/bash"},
			Errors: map[string]error{"/bin/bash": errors.New("exit status 2")},
		}

		result := NewShellCheck("bash", exec).Run(context.Background())

		assert.Equal(t, []Status{StatusPass, StatusWarn, StatusPass}, statuses(result))
	})
}

func TestHistoryCheck(t *testing.T) {
	ctx := context.Background()

	t.Run("empty", func(t *testing.T) {
		result := NewHistoryCheck(&mockStore{}).Run(ctx)
		require.Len(t, result.Items, 1)
		assert.Equal(t, StatusPass, result.Items[0].Status)
		assert.Equal(t, "No runs recorded", result.Items[0].Label)
	})

	t.Run("all matched", func(t *testing.T) {
		store := &mockStore{entries: []history.Entry{{Matched: true}, {Matched: true}}}
		result := NewHistoryCheck(store).Run(ctx)
		require.Len(t, result.Items, 1)
		assert.Equal(t, StatusPass, result.Items[0].Status)
		assert.Equal(t, "2 run(s)", result.Items[0].Detail)
	})

	t.Run("unmatched runs", func(t *testing.T) {
		store := &mockStore{entries: []history.Entry{
			{Command: "echo b", Matched: true},
			{Command: "printf x", Matched: false},
			{Command: "echo a", Matched: true},
		}}
		result := NewHistoryCheck(store).Run(ctx)
		require.Len(t, result.Items, 1)
		assert.Equal(t, StatusWarn, result.Items[0].Status)
		assert.Equal(t, `1 of 3, most recent "printf x"`, result.Items[0].Detail)
	})

	t.Run("unreadable", func(t *testing.T) {
		result := NewHistoryCheck(&mockStore{err: errors.New("corrupt")}).Run(ctx)
		assert.Equal(t, []Status{StatusFail}, statuses(result))
	})
}

func TestConfigCheck(t *testing.T) {
	t.Run("not loaded", func(t *testing.T) {
		result := NewConfigCheck(nil, "").Run(context.Background())
		assert.Equal(t, []Status{StatusFail}, statuses(result))
	})

	t.Run("invalid and warnings", func(t *testing.T) {
		cfg := config.DefaultConfig()
		cfg.DataDir = t.TempDir()
		cfg.Shell = "/definitely/not/a/zsh"
		cfg.BenchIterations = 0

		result := NewConfigCheck(&cfg, "").Run(context.Background())

		var labels []string
		for _, item := range result.Items {
			labels = append(labels, item.Label)
		}
		assert.Contains(t, labels, "bench_iterations")
		assert.Contains(t, labels, "shell")
		assert.Contains(t, labels, "Shell (shell)")
	})
}

func TestSummary(t *testing.T) {
	results := RunAll(context.Background(), []Check{
		NewHistoryCheck(&mockStore{}),
		NewHistoryCheck(&mockStore{err: errors.New("x")}),
	})

	passed, warned, failed := Summary(results)
	assert.Equal(t, 1, passed)
	assert.Equal(t, 0, warned)
	assert.Equal(t, 1, failed)
	assert.Equal(t, "fail", results[1].Items[0].StatusStr)
}
