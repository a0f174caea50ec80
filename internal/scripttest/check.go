package scripttest

import (
	"bytes"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/ericchiang/css"
	"golang.org/x/net/html"
)

// Text compares got with want using op and returns a failure message, or
// "" if the comparison holds.
//
// Operators:
//   - "==", "!=": equality
//   - "~", "!~": regular expression match
//   - "contains", "!contains": substring
//
// valid is false when the check itself is malformed.
func Text(what, op, got, want string) (msg string, valid bool) {
	var re *regexp.Regexp
	switch op {
	case "~", "!~":
		var err error
		if re, err = regexp.Compile(want); err != nil {
			return fmt.Sprintf("bad regexp %#q: %v", want, err), false
		}
	case "==", "!=", "contains", "!contains":
		if want == "" {
			return fmt.Sprintf("%s %s needs a value to compare with", what, op), false
		}
	default:
		return fmt.Sprintf("unknown operator %q", op), false
	}

	switch op {
	case "==":
		if got != want {
			return fmt.Sprintf("%s = %#q, want %#q", what, got, want), true
		}
	case "!=":
		if got == want {
			return fmt.Sprintf("%s = %#q (but should not)", what, want), true
		}
	case "~":
		if !re.MatchString(got) {
			return fmt.Sprintf("%s does not match %#q\t%s", what, want, quoteBlock(got)), true
		}
	case "!~":
		if re.MatchString(got) {
			return fmt.Sprintf("%s matches %#q (but should not)\t%s", what, want, quoteBlock(got)), true
		}
	case "contains":
		if !strings.Contains(got, want) {
			return fmt.Sprintf("%s does not contain %#q\t%s", what, want, quoteBlock(got)), true
		}
	case "!contains":
		if strings.Contains(got, want) {
			return fmt.Sprintf("%s contains %#q (but should not)\t%s", what, want, quoteBlock(got)), true
		}
	}
	return "", true
}

// Count compares the number of items with want, a decimal count.
func Count(what string, got int, want string) string {
	n, err := strconv.Atoi(want)
	if err != nil {
		return fmt.Sprintf("count %q is not a number", want)
	}
	if got != n {
		return fmt.Sprintf("%s: got %d, want %d", what, got, n)
	}
	return ""
}

// HTML checks the elements of body matched by a CSS selector. check is
// "selector op want". With the "count" operator want is the number of
// matches; otherwise the inner HTML of the first match is compared using
// Text.
//
// Selectors can't contain spaces; use ">" to select children.
func HTML(check, body string) string {
	selector, op, want := Args3(check)
	if op != "count" {
		if msg, ok := Text(selector, op, "", want); !ok {
			return msg
		}
	}

	sel, err := css.Parse(selector)
	if err != nil {
		return fmt.Sprintf("bad selector %q: %v", selector, err)
	}
	doc, err := html.Parse(strings.NewReader(body))
	if err != nil {
		return fmt.Sprintf("parsing HTML: %v", err)
	}
	matches := sel.Select(doc)

	if op == "count" {
		return Count(selector, len(matches), want)
	}
	if len(matches) == 0 {
		return fmt.Sprintf("nothing matches %q", selector)
	}
	msg, _ := Text(selector, op, innerHTML(matches[0]), want)
	return msg
}

func innerHTML(n *html.Node) string {
	var buf bytes.Buffer
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		html.Render(&buf, c)
	}
	return buf.String()
}

// quoteBlock indents text for a failure message.
func quoteBlock(text string) string {
	trimmed := strings.TrimRight(text, "\n")
	switch {
	case text == "":
		return "(empty)"
	case trimmed == "":
		return "(blank)"
	}
	return strings.ReplaceAll(trimmed, "\n", "\n\t")
}
