package action

import (
	"strings"
	"unicode"
)

const ellipsis = "..."

// TruncateToCompleteSentence shortens text to at most maxLength runes.
// It prefers the longest prefix ending in '.', '!' or '?', then the last
// word boundary followed by "...", then a hard cut followed by "...".
func TruncateToCompleteSentence(text string, maxLength int) string {
	r := []rune(text)
	if len(r) <= maxLength {
		return text
	}
	if maxLength <= 0 {
		return ""
	}

	window := r[:maxLength]
	for i := len(window) - 1; i >= 0; i-- {
		if strings.ContainsRune(".!?", window[i]) {
			if s := strings.TrimSpace(string(window[:i+1])); s != "" {
				return s
			}
			break
		}
	}

	if maxLength <= len(ellipsis) {
		return strings.TrimSpace(string(window))
	}

	cut := maxLength - len(ellipsis)
	for i := cut; i > 0; i-- {
		if unicode.IsSpace(r[i]) {
			if s := strings.TrimSpace(string(r[:i])); s != "" {
				return s + ellipsis
			}
			break
		}
	}

	return strings.TrimSpace(string(r[:cut])) + ellipsis
}
