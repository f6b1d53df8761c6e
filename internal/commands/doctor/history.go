package doctor

import (
	"context"
	"errors"
	"fmt"

	"github.com/hay-kot/shellmark/internal/core/history"
)

// HistoryCheck reads the run history and reports how often extraction failed.
type HistoryCheck struct {
	store history.Store
}

// NewHistoryCheck creates a new history check.
func NewHistoryCheck(store history.Store) *HistoryCheck {
	return &HistoryCheck{store: store}
}

func (c *HistoryCheck) Name() string {
	return "Run History"
}

func (c *HistoryCheck) Run(ctx context.Context) Result {
	result := Result{Name: c.Name()}

	entries, err := c.store.List(ctx)
	if err != nil {
		result.Items = append(result.Items, CheckItem{
			Label:  "History readable",
			Status: StatusFail,
			Detail: err.Error(),
		})
		return result
	}

	if len(entries) == 0 {
		result.Items = append(result.Items, CheckItem{
			Label:  "No runs recorded",
			Status: StatusPass,
		})
		return result
	}

	unmatched := 0
	for _, e := range entries {
		if !e.Matched {
			unmatched++
		}
	}

	if unmatched == 0 {
		result.Items = append(result.Items, CheckItem{
			Label:  "All runs matched",
			Status: StatusPass,
			Detail: fmt.Sprintf("%d run(s)", len(entries)),
		})
		return result
	}

	item := CheckItem{
		Label:  "Unmatched runs",
		Status: StatusWarn,
		Detail: fmt.Sprintf("%d of %d", unmatched, len(entries)),
	}
	last, err := c.store.LastUnmatched(ctx)
	if err == nil {
		item.Detail += fmt.Sprintf(", most recent %q", last.Command)
	} else if !errors.Is(err, history.ErrNotFound) {
		item.Detail += ": " + err.Error()
	}
	result.Items = append(result.Items, item)

	return result
}
