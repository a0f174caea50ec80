package choicescript

import "strings"

// findLineEnd returns the offset one past the end of the line containing
// start, including any "\r\n". The last line ends at the end of text.
// It reports false when start is at or past the end of text.
func findLineEnd(text string, start int) (int, bool) {
	if start < 0 || start >= len(text) {
		return 0, false
	}
	if i := strings.IndexByte(text[start:], '\n'); i >= 0 {
		return start + i + 1, true
	}
	return len(text), true
}

// findLineBegin returns the offset of the first byte of the line
// containing index.
func findLineBegin(text string, index int) int {
	index = max(0, min(index, len(text)))
	return strings.LastIndexByte(text[:index], '\n') + 1
}

// extractToMatchingDelimiter scans section from start, the first byte after
// an opening delimiter, and returns the text before the matching close.
// Nested open/close pairs are skipped over. If open and close are the same
// byte, the first close ends the span.
func extractToMatchingDelimiter(section string, open, close byte, start int) (string, bool) {
	if start < 0 || start > len(section) {
		return "", false
	}
	depth := 0
	for i := start; i < len(section); i++ {
		switch c := section[i]; {
		case c == close:
			if depth == 0 {
				return section[start:i], true
			}
			depth--
		case c == open:
			depth++
		}
	}
	return "", false
}

// extractTokenAtIndex returns the token starting at index. If text[index]
// is open, the token is the whole balanced group, delimiters included.
// Otherwise it is the run of word bytes and bytes from extra.
func extractTokenAtIndex(text string, index int, open, close byte, extra string) (string, bool) {
	if index < 0 || index >= len(text) {
		return "", false
	}
	if text[index] == open {
		inner, ok := extractToMatchingDelimiter(text, open, close, index+1)
		if !ok {
			return "", false
		}
		return text[index : index+len(inner)+2], true
	}
	end := index
	for end < len(text) && (isWordByte(text[end]) || strings.IndexByte(extra, text[end]) >= 0) {
		end++
	}
	if end == index {
		return "", false
	}
	return text[index:end], true
}

// isWordByte reports whether b matches the regexp class \w.
func isWordByte(b byte) bool {
	return b == '_' || ('0' <= b && b <= '9') || ('a' <= b && b <= 'z') || ('A' <= b && b <= 'Z')
}

func isDigit(b byte) bool { return '0' <= b && b <= '9' }

// leadingSpace returns the run of spaces and tabs that begins s.
func leadingSpace(s string) string {
	return s[:len(s)-len(strings.TrimLeft(s, " \t"))]
}
