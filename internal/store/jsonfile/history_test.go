package jsonfile

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"

	"github.com/hay-kot/shellmark/internal/core/history"
	"github.com/hay-kot/shellmark/internal/core/marker"
)

func entry(id string, tier marker.TierID) history.Entry {
	return history.Entry{
		ID:        id,
		Command:   "echo " + id,
		Tier:      tier,
		Matched:   tier != marker.TierNone,
		Timestamp: time.Now(),
	}
}

func TestHistoryStore(t *testing.T) {
	ctx := context.Background()

	t.Run("empty when missing", func(t *testing.T) {
		store := NewHistoryStore(filepath.Join(t.TempDir(), "history.json"), 0)

		entries, err := store.List(ctx)
		if err != nil {
			t.Fatalf("List: %v", err)
		}
		if len(entries) != 0 {
			t.Errorf("got %d entries, want 0", len(entries))
		}
	})

	t.Run("newest first", func(t *testing.T) {
		store := NewHistoryStore(filepath.Join(t.TempDir(), "history.json"), 0)

		for _, id := range []string{"a", "b", "c"} {
			if err := store.Save(ctx, entry(id, marker.TierVSCE)); err != nil {
				t.Fatalf("Save: %v", err)
			}
		}

		entries, err := store.List(ctx)
		if err != nil {
			t.Fatalf("List: %v", err)
		}
		var ids []string
		for _, e := range entries {
			ids = append(ids, e.ID)
		}
		if got, want := ids, []string{"c", "b", "a"}; !slices.Equal(got, want) {
			t.Errorf("got %v, want %v", got, want)
		}
	})

	t.Run("prunes beyond max", func(t *testing.T) {
		store := NewHistoryStore(filepath.Join(t.TempDir(), "history.json"), 2)

		for _, id := range []string{"a", "b", "c"} {
			if err := store.Save(ctx, entry(id, marker.TierVSCE)); err != nil {
				t.Fatalf("Save: %v", err)
			}
		}

		entries, _ := store.List(ctx)
		if len(entries) != 2 {
			t.Fatalf("got %d entries, want 2", len(entries))
		}
		if entries[1].ID != "b" {
			t.Errorf("oldest kept = %q, want b", entries[1].ID)
		}
	})

	t.Run("get", func(t *testing.T) {
		store := NewHistoryStore(filepath.Join(t.TempDir(), "history.json"), 0)
		_ = store.Save(ctx, entry("a", marker.TierFallback))

		got, err := store.Get(ctx, "a")
		if err != nil {
			t.Fatalf("Get: %v", err)
		}
		if got.Tier != marker.TierFallback {
			t.Errorf("tier = %v, want Fallback", got.Tier)
		}

		_, err = store.Get(ctx, "missing")
		if !errors.Is(err, history.ErrNotFound) {
			t.Errorf("got %v, want ErrNotFound", err)
		}
	})

	t.Run("last unmatched", func(t *testing.T) {
		store := NewHistoryStore(filepath.Join(t.TempDir(), "history.json"), 0)

		_, err := store.LastUnmatched(ctx)
		if !errors.Is(err, history.ErrNotFound) {
			t.Fatalf("got %v, want ErrNotFound", err)
		}

		_ = store.Save(ctx, entry("old", marker.TierNone))
		_ = store.Save(ctx, entry("new", marker.TierNone))
		_ = store.Save(ctx, entry("hit", marker.TierVSCE))

		got, err := store.LastUnmatched(ctx)
		if err != nil {
			t.Fatalf("LastUnmatched: %v", err)
		}
		if got.ID != "new" {
			t.Errorf("got %q, want new", got.ID)
		}
	})

	t.Run("clear", func(t *testing.T) {
		store := NewHistoryStore(filepath.Join(t.TempDir(), "history.json"), 0)
		_ = store.Save(ctx, entry("a", marker.TierVSCE))

		if err := store.Clear(ctx); err != nil {
			t.Fatalf("Clear: %v", err)
		}
		entries, _ := store.List(ctx)
		if len(entries) != 0 {
			t.Errorf("got %d entries after clear, want 0", len(entries))
		}
	})

	t.Run("corrupt file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "history.json")
		if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
			t.Fatal(err)
		}

		_, err := NewHistoryStore(path, 0).List(ctx)
		if err == nil {
			t.Fatal("expected error for corrupt file")
		}
	})

	t.Run("leaves no temp file", func(t *testing.T) {
		dir := t.TempDir()
		store := NewHistoryStore(filepath.Join(dir, "history.json"), 0)
		_ = store.Save(ctx, entry("a", marker.TierVSCE))

		if _, err := os.Stat(filepath.Join(dir, "history.json.tmp")); !os.IsNotExist(err) {
			t.Errorf("temp file still present: %v", err)
		}
	})
}
