// ABOUTME: Rune-safe text helpers shared by log snippets and CLI output
// ABOUTME: Snippet and Truncate keep multi-byte characters intact
package util

// Snippet returns at most maxLen runes of s without adding an ellipsis
func Snippet(s string, maxLen int) string {
	if maxLen <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen])
}

// Truncate shortens s to maxLen runes, adding "..." if truncated
func Truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}
