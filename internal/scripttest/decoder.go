// Package scripttest reads the golden test scripts used by this module's
// tests and provides the checks they run.
//
// A test script is a sequence of directives. Each directive is a name, the
// rest of its line and any continuation lines, which start with a tab:
//
//	# A scene that uses a variable nobody creates.
//	file intro.txt
//		You feel ${mood}.
//	diagnostics intro.txt
//		intro.txt:1:12: error: Variable "mood" not defined in this file or startup.txt
//
// The tab is stripped from each continuation line, so a script line that
// is itself indented starts with two tabs. Lines starting with "#" are
// comments and attach to the directive that follows.
package scripttest

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

// SyntaxError reports a malformed script line.
type SyntaxError struct {
	File    string
	Line    int
	Message string
	Err     error
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%s:%d: %s", e.File, e.Line, e.Message)
}

func (e *SyntaxError) Unwrap() error { return e.Err }

// Directive is one step of a test script.
type Directive struct {
	// File and Line locate the directive's first line.
	File string
	Line int

	// Comment holds the "#" lines before the directive, newlines included.
	Comment string

	// Name is the directive's first word.
	Name string

	// Body is everything after Name: the rest of the first line and the
	// continuation lines without their leading tab.
	Body string
}

// Where returns the directive's position as "file:line".
func (d Directive) Where() string {
	return fmt.Sprintf("%s:%d", d.File, d.Line)
}

// Head returns the first line of the body, trimmed.
func (d Directive) Head() string {
	head, _, _ := strings.Cut(d.Body, "\n")
	return strings.TrimSpace(head)
}

// Content returns the body after its first line.
func (d Directive) Content() string {
	_, content, _ := strings.Cut(d.Body, "\n")
	return content
}

// Decoder reads directives from a script.
type Decoder struct {
	file string
	r    *bufio.Reader
	line int
}

// NewDecoder returns a decoder reading the script named file from r.
func NewDecoder(file string, r io.Reader) *Decoder {
	return &Decoder{file: file, r: bufio.NewReader(r)}
}

// Decode returns the next directive. Blank lines are skipped. It returns
// io.EOF at the end of the script.
func (d *Decoder) Decode() (Directive, error) {
	var comment strings.Builder
	for {
		line, err := d.readLine()
		if line == "" && err != nil {
			return Directive{}, err
		}
		switch line[0] {
		case '\n', '\r':
			comment.Reset()
			continue
		case '#':
			comment.WriteString(line)
			continue
		case ' ', '\t':
			return Directive{}, &SyntaxError{
				File:    d.file,
				Line:    d.line,
				Message: "continuation line without a directive",
			}
		}

		dir := Directive{File: d.file, Line: d.line, Comment: comment.String()}
		var body strings.Builder
		body.WriteString(line)
		for err == nil {
			b, perr := d.r.Peek(1)
			if perr != nil || b[0] != '\t' {
				break
			}
			line, err = d.readLine()
			if err != nil && !errors.Is(err, io.EOF) {
				return Directive{}, err
			}
			body.WriteString(line[1:])
		}
		if err != nil && !errors.Is(err, io.EOF) {
			return Directive{}, err
		}

		text := body.String()
		if !strings.HasSuffix(text, "\n") {
			text += "\n"
		}
		name, rest, _ := strings.Cut(text, "\n")
		name, head, _ := strings.Cut(name, " ")
		dir.Name = strings.TrimSpace(name)
		dir.Body = strings.TrimLeft(head, " \t") + "\n" + rest
		return dir, nil
	}
}

func (d *Decoder) readLine() (string, error) {
	d.line++
	return d.r.ReadString('\n')
}
