// ABOUTME: Text helpers shared by parsers, prompt builders, and context assembly
// ABOUTME: Truncation and the rough token estimate used for budgets
package util

import "strings"

// Truncate shortens s to at most max runes, appending a marker when cut.
func Truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "... [truncated]"
}

// EstimateTokens gives a rough token count for budgeting purposes.
// Roughly 4 characters per token for English prose and code.
func EstimateTokens(s string) int {
	n := len(s) / 4
	if n == 0 && strings.TrimSpace(s) != "" {
		return 1
	}
	return n
}
