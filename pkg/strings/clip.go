// Package strings holds text helpers for terminal output.
package strings

import (
	"strings"
	"unicode/utf8"
)

// Ellipsis marks clipped text.
const Ellipsis = "…"

// Clip flattens s onto one line, collapsing runs of whitespace, and cuts it
// to at most width runes including the trailing Ellipsis. A width below 2
// is treated as 2.
func Clip(s string, width int) string {
	if width < 2 {
		width = 2
	}
	s = strings.Join(strings.Fields(s), " ")
	if utf8.RuneCountInString(s) <= width {
		return s
	}
	runes := []rune(s)
	return strings.TrimRight(string(runes[:width-1]), " ") + Ellipsis
}
