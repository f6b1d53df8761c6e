package jsonfile

import (
	"context"
	"fmt"
	"sync"

	"github.com/hay-kot/shellmark/internal/core/history"
)

type historyFile struct {
	Entries []history.Entry `json:"entries"`
}

// HistoryStore implements history.Store using a JSON file for persistence.
type HistoryStore struct {
	path       string
	maxEntries int
	mu         sync.RWMutex
}

// NewHistoryStore creates a history store at path. maxEntries limits stored
// entries (0 means unlimited).
func NewHistoryStore(path string, maxEntries int) *HistoryStore {
	return &HistoryStore{path: path, maxEntries: maxEntries}
}

// List returns all history entries, newest first.
func (s *HistoryStore) List(ctx context.Context) ([]history.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	f, err := s.load()
	if err != nil {
		return nil, err
	}
	return f.Entries, nil
}

// Get returns a history entry by ID.
func (s *HistoryStore) Get(ctx context.Context, id string) (history.Entry, error) {
	return s.find(func(e history.Entry) bool { return e.ID == id })
}

// Save prepends entry and prunes the oldest entries beyond maxEntries.
func (s *HistoryStore) Save(ctx context.Context, entry history.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := s.load()
	if err != nil {
		return err
	}

	f.Entries = append([]history.Entry{entry}, f.Entries...)
	if s.maxEntries > 0 && len(f.Entries) > s.maxEntries {
		f.Entries = f.Entries[:s.maxEntries]
	}

	return s.save(f)
}

// Clear removes all history entries.
func (s *HistoryStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.save(historyFile{Entries: []history.Entry{}})
}

// LastUnmatched returns the most recent run that no tier matched.
func (s *HistoryStore) LastUnmatched(ctx context.Context) (history.Entry, error) {
	return s.find(func(e history.Entry) bool { return !e.Matched })
}

func (s *HistoryStore) find(fn func(history.Entry) bool) (history.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	f, err := s.load()
	if err != nil {
		return history.Entry{}, err
	}

	for _, entry := range f.Entries {
		if fn(entry) {
			return entry, nil
		}
	}
	return history.Entry{}, history.ErrNotFound
}

func (s *HistoryStore) load() (historyFile, error) {
	var f historyFile
	if err := readJSON(s.path, &f); err != nil {
		return historyFile{}, fmt.Errorf("history file corrupted (run 'shellmark history --clear' to reset): %w", err)
	}
	return f, nil
}

func (s *HistoryStore) save(f historyFile) error {
	if err := writeJSON(s.path, f); err != nil {
		return fmt.Errorf("save history: %w", err)
	}
	return nil
}

var _ history.Store = (*HistoryStore)(nil)
