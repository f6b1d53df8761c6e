// Package history defines the run history domain types and interfaces.
package history

import (
	"time"

	"github.com/google/uuid"

	"github.com/hay-kot/shellmark/internal/core/marker"
)

// Entry summarizes one completed command run.
type Entry struct {
	ID          string        `json:"id"`
	Command     string        `json:"command"`
	Tier        marker.TierID `json:"tier"`
	Match       string        `json:"match,omitempty"`
	Matched     bool          `json:"matched"`
	Mismatches  int           `json:"mismatches,omitempty"`
	RegexMicros float64       `json:"regex_micros,omitempty"`
	IndexMicros float64       `json:"index_micros,omitempty"`
	Timestamp   time.Time     `json:"timestamp"`
}

// NewEntry builds an Entry for command from an extraction result.
func NewEntry(command string, res marker.Result, at time.Time) Entry {
	text, ok := res.Match()
	return Entry{
		ID:          uuid.NewString(),
		Command:     command,
		Tier:        res.Tier,
		Match:       text,
		Matched:     ok,
		Mismatches:  len(res.Mismatches),
		RegexMicros: res.RegexMicros,
		IndexMicros: res.IndexMicros,
		Timestamp:   at,
	}
}

// TierName returns the matched tier name, or "none".
func (e *Entry) TierName() string {
	return e.Tier.String()
}
