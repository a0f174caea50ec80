// Package report renders diagnostics for people: as compiler-style text
// lines or as a standalone HTML page.
package report

import (
	"fmt"
	"io"
	"strings"

	"blake.io/choicescript"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// File is the diagnostics for one file.
type File struct {
	Name        string
	Diagnostics []choicescript.Diagnostic
}

// ANSI colours for severities.
var colors = map[choicescript.Severity]string{
	choicescript.Error:       "\x1b[31m",
	choicescript.Warning:     "\x1b[33m",
	choicescript.Information: "\x1b[36m",
	choicescript.Hint:        "\x1b[2m",
}

const reset = "\x1b[0m"

// Text writes one line per diagnostic:
//
//	name:line:column: severity: message
//
// Lines and columns start at 1. If color is set, severities are
// coloured for a terminal.
func Text(w io.Writer, files []File, color bool) error {
	for _, f := range files {
		for _, d := range f.Diagnostics {
			sev := d.Severity.String()
			if c, ok := colors[d.Severity]; ok && color {
				sev = c + sev + reset
			}
			_, err := fmt.Fprintf(w, "%s:%d:%d: %s: %s\n", f.Name,
				d.Range.Start.Line+1, d.Range.Start.Character+1, sev, d.Message)
			if err != nil {
				return err
			}
		}
	}
	return nil
}

// Counts tallies diagnostics by severity.
type Counts map[choicescript.Severity]int

// Count tallies the diagnostics in files.
func Count(files []File) Counts {
	c := make(Counts)
	for _, f := range files {
		for _, d := range f.Diagnostics {
			c[d.Severity]++
		}
	}
	return c
}

func (c Counts) String() string {
	plural := func(n int, word string) string {
		if n == 1 || word == "information" {
			return fmt.Sprintf("%d %s", n, word)
		}
		return fmt.Sprintf("%d %ss", n, word)
	}
	parts := []string{
		plural(c[choicescript.Error], "error"),
		plural(c[choicescript.Warning], "warning"),
		plural(c[choicescript.Information], "information"),
	}
	if n := c[choicescript.Hint]; n > 0 {
		parts = append(parts, plural(n, "hint"))
	}
	return strings.Join(parts, ", ")
}

// HTML writes a page listing the diagnostics of each file that has any.
func HTML(w io.Writer, title string, files []File) error {
	body := element(atom.Body, "")
	body.AppendChild(element(atom.H1, "title", text(title)))

	for _, f := range files {
		if len(f.Diagnostics) == 0 {
			continue
		}
		section := element(atom.Section, "file")
		section.Attr = append(section.Attr, html.Attribute{Key: "data-file", Val: f.Name})
		section.AppendChild(element(atom.H2, "", text(f.Name)))
		list := element(atom.Ul, "")
		for _, d := range f.Diagnostics {
			sev := d.Severity.String()
			pos := fmt.Sprintf("%d:%d", d.Range.Start.Line+1, d.Range.Start.Character+1)
			list.AppendChild(element(atom.Li, "diagnostic "+sev,
				element(atom.Span, "position", text(pos)),
				element(atom.Span, "severity", text(sev)),
				element(atom.Span, "message", text(d.Message)),
			))
		}
		section.AppendChild(list)
		body.AppendChild(section)
	}
	body.AppendChild(element(atom.P, "summary", text(Count(files).String())))

	head := element(atom.Head, "",
		&html.Node{Type: html.ElementNode, DataAtom: atom.Meta, Data: "meta",
			Attr: []html.Attribute{{Key: "charset", Val: "utf-8"}}},
		element(atom.Title, "", text(title)),
		element(atom.Style, "", text(stylesheet)),
	)

	doc := &html.Node{Type: html.DocumentNode}
	doc.AppendChild(&html.Node{Type: html.DoctypeNode, Data: "html"})
	doc.AppendChild(element(atom.Html, "", head, body))
	return html.Render(w, doc)
}

const stylesheet = `
body { font-family: sans-serif; margin: 2em; }
.position { font-family: monospace; margin-right: 1em; }
.severity { font-weight: bold; margin-right: 1em; }
.error .severity { color: #b00; }
.warning .severity { color: #a60; }
.information .severity, .hint .severity { color: #06a; }
`

func element(a atom.Atom, class string, children ...*html.Node) *html.Node {
	n := &html.Node{Type: html.ElementNode, DataAtom: a, Data: a.String()}
	if class != "" {
		n.Attr = append(n.Attr, html.Attribute{Key: "class", Val: class})
	}
	for _, c := range children {
		n.AppendChild(c)
	}
	return n
}

func text(s string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: s}
}
