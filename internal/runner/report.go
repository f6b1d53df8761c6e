package runner

import (
	"fmt"
	"strconv"

	"github.com/hay-kot/shellmark/internal/core/marker"
)

// FormatMatch renders the output report for one run.
func FormatMatch(res marker.Result, source string) string {
	text, ok := res.Match()
	if !ok {
		return fmt.Sprintf("No match found in:\n%s", strconv.Quote(source))
	}
	return fmt.Sprintf("Match found (Pattern %d): %s\n\nFrom:\n%s", int(res.Tier), strconv.Quote(text), strconv.Quote(source))
}
