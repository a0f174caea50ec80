package choicescript

import "sort"

// Position is a zero-based line and character offset.
// Character counts UTF-16 code units.
type Position struct {
	Line      int `json:"line"`
	Character int `json:"character"`
}

// Compare returns -1, 0 or +1 depending on whether p is before, equal to
// or after q.
func (p Position) Compare(q Position) int {
	switch {
	case p.Line < q.Line:
		return -1
	case p.Line > q.Line:
		return 1
	case p.Character < q.Character:
		return -1
	case p.Character > q.Character:
		return 1
	}
	return 0
}

// Range is a half-open span between two positions.
type Range struct {
	Start Position `json:"start"`
	End   Position `json:"end"`
}

// Contains reports whether o lies entirely inside r.
func (r Range) Contains(o Range) bool {
	return o.Start.Compare(r.Start) >= 0 && o.End.Compare(r.End) <= 0
}

// Location is a range inside a particular document.
type Location struct {
	URI   string `json:"uri"`
	Range Range  `json:"range"`
}

// Document is an immutable snapshot of a script's text.
type Document struct {
	URI  string
	text string

	// lineStarts holds the byte offset of each line's first byte.
	lineStarts []int
}

// NewDocument returns a snapshot of text identified by uri.
func NewDocument(uri, text string) *Document {
	d := &Document{URI: uri, text: text, lineStarts: []int{0}}
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			d.lineStarts = append(d.lineStarts, i+1)
		}
	}
	return d
}

// Text returns the document's full text.
func (d *Document) Text() string { return d.text }

// LineCount returns the number of lines in the document.
func (d *Document) LineCount() int { return len(d.lineStarts) }

// PositionAt converts a byte offset to a position.
// Offsets outside the text are clamped to it.
func (d *Document) PositionAt(offset int) Position {
	offset = max(0, min(offset, len(d.text)))
	line := sort.Search(len(d.lineStarts), func(i int) bool {
		return d.lineStarts[i] > offset
	}) - 1
	return Position{
		Line:      line,
		Character: utf16Len(d.text[d.lineStarts[line]:offset]),
	}
}

// OffsetAt converts a position to a byte offset.
// Positions past the end of a line resolve to the line's end.
func (d *Document) OffsetAt(p Position) int {
	if p.Line < 0 {
		return 0
	}
	if p.Line >= len(d.lineStarts) {
		return len(d.text)
	}
	start := d.lineStarts[p.Line]
	end := len(d.text)
	if p.Line+1 < len(d.lineStarts) {
		end = d.lineStarts[p.Line+1] - 1 // exclude the newline
	}
	n := 0
	for i, r := range d.text[start:end] {
		if n >= p.Character {
			return start + i
		}
		n += utf16Width(r)
	}
	return end
}

// Range returns the range between two byte offsets.
func (d *Document) Range(start, end int) Range {
	return Range{Start: d.PositionAt(start), End: d.PositionAt(end)}
}

// Location returns the location of the span between two byte offsets.
func (d *Document) Location(start, end int) Location {
	return Location{URI: d.URI, Range: d.Range(start, end)}
}

// End returns the position just past the last character.
func (d *Document) End() Position {
	return d.PositionAt(len(d.text))
}

func utf16Len(s string) int {
	n := 0
	for _, r := range s {
		n += utf16Width(r)
	}
	return n
}

func utf16Width(r rune) int {
	if r > 0xFFFF {
		return 2
	}
	return 1
}
