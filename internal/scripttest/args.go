package scripttest

import "strings"

// Args are the whitespace-separated arguments of a directive line.
type Args []string

// ParseArgs splits s into at most n arguments. The last one keeps any
// remaining text, inner spaces included. A negative n means no limit.
func ParseArgs(s string, n int) Args {
	s = strings.TrimSpace(s)
	var args Args
	for s != "" && n != 0 {
		if n == 1 {
			return append(args, s)
		}
		i := strings.IndexAny(s, " \t")
		if i < 0 {
			return append(args, s)
		}
		args = append(args, s[:i])
		s = strings.TrimLeft(s[i:], " \t")
		n--
	}
	return args
}

// At returns the i-th argument, or "" if there is none.
func (a Args) At(i int) string {
	if i < 0 || i >= len(a) {
		return ""
	}
	return a[i]
}

// Args3 returns the first three arguments of s. The third keeps the rest
// of the text.
func Args3(s string) (a, b, c string) {
	args := ParseArgs(s, 3)
	return args.At(0), args.At(1), args.At(2)
}
