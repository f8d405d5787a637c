// Tests for the embedded system prompt.
package prompt

import (
	"strings"
	"testing"
)

// TestSystemPromptContent validates the instructions the model relies on.
func TestSystemPromptContent(t *testing.T) {
	p := System()
	if !Check(p) {
		t.Fatal("expected non-empty system prompt")
	}
	if !containsAll(p, []string{
		"Use the supplied tools",
		"Symbol: Price (Change%) | Market: Status",
		"rap sentence",
		"English or Vietnamese",
	}) {
		t.Fatalf("prompt missing expected content:\n%s", p)
	}
}

// TestSystemPromptVerbatim ensures the embedded text is not trimmed.
func TestSystemPromptVerbatim(t *testing.T) {
	p := System()
	if !strings.HasPrefix(p, "\nYou are a helpful customer support assistant.") {
		t.Fatalf("unexpected prompt prefix: %q", p[:40])
	}
	if !strings.HasSuffix(p, "language.\n") {
		t.Fatal("expected trailing newline to be preserved")
	}
}

func TestCheck(t *testing.T) {
	if Check(" \n\t") {
		t.Fatal("whitespace prompt should be rejected")
	}
}

// containsAll reports whether all substrings exist in text.
func containsAll(text string, needles []string) bool {
	for _, needle := range needles {
		if !strings.Contains(text, needle) {
			return false
		}
	}
	return true
}
