// Package stats accumulates pattern-matching statistics across command runs
// and renders them as a report.
package stats

import (
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/hay-kot/shellmark/internal/core/marker"
)

// matchTiers are the tiers reported in order. TierNone is the no-match bucket.
var matchTiers = []marker.TierID{marker.TierVTE, marker.TierVSCE, marker.TierFallback}

// Example is a matched text together with the raw output it came from.
type Example struct {
	Text   string
	Source string
}

// Snapshot is a point-in-time copy of the statistics.
type Snapshot struct {
	Counts            map[marker.TierID]int // TierNone counts runs without a match
	LastMatches       map[marker.TierID]Example
	NoMatchExamples   []string
	CompletionMarkers int
	FallbackWarnings  int
	Mismatches        []string

	TimedRuns   int
	RegexMicros float64 // running sum
	IndexMicros float64 // running sum
}

// AvgRegexMicros is the mean regex scan latency over all timed runs.
func (s Snapshot) AvgRegexMicros() float64 {
	if s.TimedRuns == 0 {
		return 0
	}
	return s.RegexMicros / float64(s.TimedRuns)
}

// AvgIndexMicros is the mean index scan latency over all timed runs.
func (s Snapshot) AvgIndexMicros() float64 {
	if s.TimedRuns == 0 {
		return 0
	}
	return s.IndexMicros / float64(s.TimedRuns)
}

// Store is safe for concurrent use.
type Store struct {
	mu   sync.Mutex
	snap Snapshot
}

// New returns an empty Store.
func New() *Store {
	s := &Store{}
	s.snap = emptySnapshot()
	return s
}

func emptySnapshot() Snapshot {
	return Snapshot{
		Counts:      make(map[marker.TierID]int),
		LastMatches: make(map[marker.TierID]Example),
	}
}

// Record counts the result of one run. source is the raw output the result was
// extracted from. Matched runs also contribute their scan timings.
func (s *Store) Record(res marker.Result, source string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	text, ok := res.Match()
	if !ok {
		s.snap.Counts[marker.TierNone]++
		s.snap.NoMatchExamples = append(s.snap.NoMatchExamples, source)
		return
	}

	s.snap.Counts[res.Tier]++
	s.snap.LastMatches[res.Tier] = Example{Text: text, Source: source}
	s.snap.TimedRuns++
	s.snap.RegexMicros += res.RegexMicros
	s.snap.IndexMicros += res.IndexMicros
}

// RecordMismatch appends a diagnostic for a tier whose scans disagreed.
func (s *Store) RecordMismatch(m marker.Mismatch) {
	line := fmt.Sprintf("Pattern %d mismatch:\n  Regex: %s\n  Index: %s", int(m.Tier), m.Regex, m.Index)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap.Mismatches = append(s.snap.Mismatches, line)
}

// RecordFallbackWarning counts a run that wanted shell integration but had to
// fall back to sending raw text.
func (s *Store) RecordFallbackWarning() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap.FallbackWarnings++
}

// RecordCompletionMarkerCount adds n raw 633;D occurrences to the total.
func (s *Store) RecordCompletionMarkerCount(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap.CompletionMarkers += n
}

// Reset clears all statistics.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap = emptySnapshot()
}

// Snapshot returns a deep copy of the current statistics.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := s.snap
	cp.Counts = maps.Clone(s.snap.Counts)
	cp.LastMatches = maps.Clone(s.snap.LastMatches)
	cp.NoMatchExamples = slices.Clone(s.snap.NoMatchExamples)
	cp.Mismatches = slices.Clone(s.snap.Mismatches)
	return cp
}

// Render formats the statistics as a human readable report.
func (s *Store) Render() string {
	return Render(s.Snapshot())
}

// Render formats a snapshot. The output depends only on the snapshot.
func Render(snap Snapshot) string {
	var b strings.Builder

	b.WriteString("Pattern Match Statistics:\n")
	if len(snap.Mismatches) > 0 {
		b.WriteString("Match Validation Issues:\n")
		for _, m := range snap.Mismatches {
			b.WriteString(indent(m, "  "))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	for _, tier := range matchTiers {
		row(&b, tier.Label()+":", strconv.Itoa(snap.Counts[tier]))
	}
	row(&b, "No matches:", strconv.Itoa(snap.Counts[marker.TierNone]))
	row(&b, "Total 633;D count:", strconv.Itoa(snap.CompletionMarkers))
	row(&b, "shIntegration warnings:", strconv.Itoa(snap.FallbackWarnings))

	avgRegex, avgIndex := snap.AvgRegexMicros(), snap.AvgIndexMicros()
	ratio := "n/a"
	if avgIndex > 0 {
		ratio = fmt.Sprintf("%.1fx faster", avgRegex/avgIndex)
	}
	row(&b, "Avg Regex Time:", fmt.Sprintf("%.3fµs", avgRegex))
	row(&b, "Avg String Index Time:", fmt.Sprintf("%.3fµs (%s)", avgIndex, ratio))

	b.WriteString("\nExample matches:\n")
	for _, tier := range matchTiers {
		ex, ok := snap.LastMatches[tier]
		if !ok {
			continue
		}
		fmt.Fprintf(&b, "%s:\n", tier.Label())
		fmt.Fprintf(&b, "  Match:\n    %s\n", strconv.Quote(ex.Text))
		fmt.Fprintf(&b, "  From:\n    %s\n\n", strconv.Quote(ex.Source))
	}

	if len(snap.NoMatchExamples) > 0 {
		b.WriteString("No match examples:\n")
		for i, ex := range snap.NoMatchExamples {
			fmt.Fprintf(&b, "  %d. %s\n", i+1, strconv.Quote(ex))
		}
	}

	return b.String()
}

func row(b *strings.Builder, label, value string) {
	fmt.Fprintf(b, "    %-24s%s\n", label, value)
}

func indent(s, prefix string) string {
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = prefix + l
	}
	return strings.Join(lines, "\n")
}
