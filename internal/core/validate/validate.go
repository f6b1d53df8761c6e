// Package validate checks user supplied text before it is typed into a
// managed shell.
package validate

import (
	"fmt"
	"strings"
	"unicode"
)

// Command validates a command line. It must be non-empty after trimming and
// fit on one line: a newline would start a second execution in the shell.
func Command(cmd string) error {
	if strings.TrimSpace(cmd) == "" {
		return fmt.Errorf("command is required")
	}
	return singleLine(cmd)
}

// PromptCommand validates a PROMPT_COMMAND value. Empty is allowed.
func PromptCommand(cmd string) error {
	return singleLine(cmd)
}

func singleLine(s string) error {
	for i, r := range s {
		if r == '\n' || r == '\r' {
			return fmt.Errorf("must be a single line (newline at offset %d)", i)
		}
		if r != '\t' && unicode.IsControl(r) {
			return fmt.Errorf("contains control character %U at offset %d", r, i)
		}
	}
	return nil
}
