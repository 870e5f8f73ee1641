package services

import "unicode/utf8"

// tooLong reports whether s exceeds a column of size characters.
func tooLong(s string, size int) bool {
	return utf8.RuneCountInString(s) > size
}

// clip shortens generated text to size characters, marking the cut with an
// ellipsis. Client input is rejected instead of clipped.
func clip(s string, size int) string {
	if !tooLong(s, size) {
		return s
	}
	runes := []rune(s)
	return string(runes[:size-1]) + "…"
}
