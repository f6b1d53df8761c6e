// Package marker extracts command output from raw terminal streams using the
// shell-integration escape sequences that bracket each command.
package marker

import (
	"fmt"
	"regexp"
	"strings"
)

// Escape sequences emitted around a command's output.
const (
	// CommandStart is OSC 633;C, written right before the command output begins.
	CommandStart = "\x1b]633;C\x07"
	// CommandFinished is OSC 633;D. It may be followed by ";<exit code>" and a BEL.
	CommandFinished = "\x1b]633;D"
	// VTENotify is the OSC 777 completion notification written by VTE based terminals.
	VTENotify = "\x1b]777;notify;Command completed"
)

// TierID identifies a marker convention. Lower values take precedence.
type TierID int

const (
	TierNone TierID = iota
	TierVTE
	TierVSCE
	TierFallback
)

func (t TierID) String() string {
	switch t {
	case TierVTE:
		return "VTE"
	case TierVSCE:
		return "VSCE"
	case TierFallback:
		return "Fallback"
	default:
		return "none"
	}
}

// Label returns the name used in reports, e.g. "Pattern 2 (VSCE)".
func (t TierID) Label() string {
	return fmt.Sprintf("Pattern %d (%s)", int(t), t)
}

// Tier describes how one marker convention delimits command output. An empty
// Suffix means the output runs to the end of the text.
type Tier struct {
	ID      TierID
	Prefix  string
	Suffix  string
	Pattern *regexp.Regexp
}

var (
	vtePattern      = regexp.MustCompile(`(?s)\x1b\]633;C\x07(.*?)\x1b\]777;notify;Command completed`)
	vscePattern     = regexp.MustCompile(`(?s)\x1b\]633;C\x07(.*?)\x1b\]633;D`)
	fallbackPattern = regexp.MustCompile(`(?s)\x1b\]633;C\x07(.*)$`)
)

// DefaultTiers returns the built-in tiers in precedence order.
func DefaultTiers() []Tier {
	return []Tier{
		{ID: TierVTE, Prefix: CommandStart, Suffix: VTENotify, Pattern: vtePattern},
		{ID: TierVSCE, Prefix: CommandStart, Suffix: CommandFinished, Pattern: vscePattern},
		{ID: TierFallback, Prefix: CommandStart, Pattern: fallbackPattern},
	}
}

// CountCompletionMarkers returns how many OSC 633;D sequences appear in output.
func CountCompletionMarkers(output string) int {
	return strings.Count(output, CommandFinished)
}
