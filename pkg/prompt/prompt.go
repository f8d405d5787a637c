// Package prompt ships the fixed system prompt sent as the first message of
// every conversation.
package prompt

import (
	_ "embed"
	"strings"
)

//go:embed system_prompt.txt
var systemPrompt string

// System returns the system prompt exactly as embedded.
func System() string {
	return systemPrompt
}

// Check reports whether a prompt carries any instructions at all.
func Check(p string) bool {
	return strings.TrimSpace(p) != ""
}
