package marker

import (
	"strconv"
	"strings"
)

// Candidate is the text one scan strategy produced for a tier. OK is false
// when the strategy found nothing; an empty Text with OK set is a real match.
type Candidate struct {
	Text string
	OK   bool
}

func (c Candidate) String() string {
	if !c.OK {
		return "<none>"
	}
	return strconv.Quote(c.Text)
}

// Mismatch records a tier where the regex and index scans disagreed.
type Mismatch struct {
	Tier  TierID
	Regex Candidate
	Index Candidate
}

// Result is the outcome of an extraction. Text is only meaningful when Tier is
// not TierNone; use Match to read it.
type Result struct {
	Tier TierID
	Text string

	// Mismatches lists every tier rejected because the two scans disagreed.
	Mismatches []Mismatch

	// Mean per-call latency of both scans for the accepted tier.
	RegexMicros float64
	IndexMicros float64
}

// Match returns the extracted text and whether any tier matched.
func (r Result) Match() (string, bool) {
	if r.Tier == TierNone {
		return "", false
	}
	return r.Text, true
}

// Extractor applies tiers in precedence order, accepting a tier only when the
// regex scan and the index scan agree on its output.
type Extractor struct {
	tiers      []Tier
	iterations int
}

// New creates an Extractor over the built-in tiers. iterations controls how
// often each scan is repeated for timing; 1 disables repetition.
func New(iterations int) *Extractor {
	return NewWithTiers(iterations, DefaultTiers())
}

// NewWithTiers creates an Extractor over custom tiers, tried in slice order.
func NewWithTiers(iterations int, tiers []Tier) *Extractor {
	return &Extractor{tiers: tiers, iterations: iterations}
}

// Extract finds the command output in raw terminal text. The VTE tier is only
// attempted when enableVTE is set. Extract does not modify the Extractor.
func (e *Extractor) Extract(output string, enableVTE bool) Result {
	var res Result

	for _, tier := range e.tiers {
		if tier.ID == TierVTE && !enableVTE {
			continue
		}

		rx := Time(func() Candidate { return regexScan(output, tier) }, e.iterations)
		ix := Time(func() Candidate { return indexScan(output, tier) }, e.iterations)

		if rx.Result.OK && ix.Result.OK && rx.Result.Text == ix.Result.Text {
			res.Tier = tier.ID
			res.Text = ix.Result.Text
			res.RegexMicros = rx.Micros
			res.IndexMicros = ix.Micros
			return res
		}

		if rx.Result.OK || ix.Result.OK {
			res.Mismatches = append(res.Mismatches, Mismatch{
				Tier:  tier.ID,
				Regex: rx.Result,
				Index: ix.Result,
			})
		}
	}

	return res
}

// indexScan takes the text after the first prefix up to the first suffix that
// follows it, or to the end of output when the tier has no suffix.
func indexScan(output string, tier Tier) Candidate {
	start := strings.Index(output, tier.Prefix)
	if start == -1 {
		return Candidate{}
	}

	contentStart := start + len(tier.Prefix)
	if tier.Suffix == "" {
		return Candidate{Text: output[contentStart:], OK: true}
	}

	end := strings.Index(output[contentStart:], tier.Suffix)
	if end == -1 {
		return Candidate{}
	}
	return Candidate{Text: output[contentStart : contentStart+end], OK: true}
}

func regexScan(output string, tier Tier) Candidate {
	if tier.Pattern == nil {
		return Candidate{}
	}
	m := tier.Pattern.FindStringSubmatch(output)
	if len(m) < 2 {
		return Candidate{}
	}
	return Candidate{Text: m[1], OK: true}
}
