package pdf

import (
	"strings"
	"unicode"
)

// looksGarbled flags text that is probably a bad extraction: too short,
// dominated by non-text runes, or mostly fragment lines.
func looksGarbled(text string) bool {
	if len(text) < 100 {
		return true
	}
	trimmed := strings.TrimSpace(text)
	if len(trimmed) < 50 {
		return true
	}

	special := 0
	total := 0
	for _, r := range trimmed {
		total++
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && !unicode.IsSpace(r) && !isCommonPunct(r) {
			special++
		}
	}
	if total > 0 && float64(special)/float64(total) > 0.3 {
		return true
	}

	lines := strings.Split(trimmed, "\n")
	short := 0
	for _, line := range lines {
		if len(strings.TrimSpace(line)) < 3 {
			short++
		}
	}
	return len(lines) > 1 && float64(short)/float64(len(lines)) > 0.5
}

func isCommonPunct(r rune) bool {
	switch r {
	case '.', ',', ':', ';', '-', '/', '(', ')', '$', '#', '%', '&', '\'', '"', '+', '*', '@':
		return true
	default:
		return false
	}
}
