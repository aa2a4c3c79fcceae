package textutil

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestTruncate(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		maxSize  int
		wantSame bool
	}{
		{"under limit", "short", 100, true},
		{"exactly at limit", "12345", 5, true},
		{"no limit", strings.Repeat("a", 1000), 0, true},
		{"over limit", strings.Repeat("a", 1000), 10, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Truncate(tt.text, tt.maxSize)
			if tt.wantSame {
				if got != tt.text {
					t.Errorf("Truncate() modified text under the limit")
				}
				return
			}
			if !strings.HasSuffix(got, truncationMarker) {
				t.Errorf("truncated text missing marker: %q", got)
			}
			if !strings.HasPrefix(got, tt.text[:tt.maxSize]) {
				t.Errorf("truncated text lost its prefix")
			}
		})
	}
}

func TestTruncateKeepsValidUTF8(t *testing.T) {
	// Cut point lands in the middle of a multi-byte rune
	text := "abc" + "日本語"
	got := Truncate(text, 4)
	if !utf8.ValidString(got) {
		t.Errorf("Truncate produced invalid UTF-8: %q", got)
	}
}

func TestSanitizeUTF8(t *testing.T) {
	valid := "hello 世界"
	if got := SanitizeUTF8(valid); got != valid {
		t.Errorf("SanitizeUTF8 modified valid text")
	}

	invalid := "hello\xff\xfeworld"
	got := SanitizeUTF8(invalid)
	if !utf8.ValidString(got) {
		t.Errorf("SanitizeUTF8 left invalid UTF-8: %q", got)
	}
	if !strings.Contains(got, "hello") || !strings.Contains(got, "world") {
		t.Errorf("SanitizeUTF8 dropped valid content: %q", got)
	}
}
