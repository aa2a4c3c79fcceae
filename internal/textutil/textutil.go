// Package textutil prepares email text for prompt construction.
package textutil

import (
	"strings"
	"unicode/utf8"
)

const truncationMarker = "\n[... Content truncated due to size limits ...]"

// Truncate limits text to maxSize bytes, keeping the result valid UTF-8.
// A maxSize of zero or less means no limit.
func Truncate(text string, maxSize int) string {
	if maxSize <= 0 || len(text) <= maxSize {
		return text
	}

	truncated := text[:maxSize]
	for !utf8.ValidString(truncated) && len(truncated) > 0 {
		truncated = truncated[:len(truncated)-1]
	}
	return truncated + truncationMarker
}

// SanitizeUTF8 strips invalid UTF-8 sequences from text
func SanitizeUTF8(text string) string {
	if utf8.ValidString(text) {
		return text
	}
	return strings.ToValidUTF8(text, "")
}

// Prepare truncates and sanitizes text in one pass
func Prepare(text string, maxSize int) string {
	return SanitizeUTF8(Truncate(text, maxSize))
}
