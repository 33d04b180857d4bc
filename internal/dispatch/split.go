package dispatch

import (
	"strings"
	"unicode/utf8"
)

// SplitTextWithLink splits text into pieces of at most maxLen characters
// without ever cutting a link: everything from the last "http" occurrence
// on is kept as its own final piece, and only the body before it is
// chunked. Text without a link is chunked uniformly. Text that already
// fits is returned as a single piece.
func SplitTextWithLink(text string, maxLen int) []string {
	if text == "" {
		return nil
	}

	linkStart := strings.LastIndex(text, "http")
	if linkStart == -1 {
		return chunk(text, maxLen)
	}

	if utf8.RuneCountInString(text) <= maxLen {
		return []string{text}
	}

	main := strings.TrimSpace(text[:linkStart])
	link := strings.TrimSpace(text[linkStart:])

	parts := chunk(main, maxLen)
	return append(parts, link)
}

func chunk(s string, n int) []string {
	runes := []rune(s)
	var out []string
	for i := 0; i < len(runes); i += n {
		end := i + n
		if end > len(runes) {
			end = len(runes)
		}
		out = append(out, string(runes[i:end]))
	}
	return out
}
