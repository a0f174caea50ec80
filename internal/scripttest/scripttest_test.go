package scripttest

import (
	"errors"
	"io"
	"strings"
	"testing"

	"kr.dev/diff"
)

func decodeAll(t *testing.T, script string) []Directive {
	t.Helper()
	dec := NewDecoder("test.cstest", strings.NewReader(script))
	var dirs []Directive
	for {
		d, err := dec.Decode()
		if err == io.EOF {
			return dirs
		}
		if err != nil {
			t.Fatalf("Decode: %v", err)
		}
		dirs = append(dirs, d)
	}
}

func TestDecode(t *testing.T) {
	script := "" +
		"# the startup file\n" +
		"file startup.txt\n" +
		"\t*scene_list\n" +
		"\t\tintro\n" +
		"\n" +
		"diagnostics intro.txt\n" +
		"check intro.txt contains not defined"

	got := decodeAll(t, script)
	want := []Directive{
		{
			File:    "test.cstest",
			Line:    2,
			Comment: "# the startup file\n",
			Name:    "file",
			Body:    "startup.txt\n*scene_list\n\tintro\n",
		},
		{
			File: "test.cstest",
			Line: 6,
			Name: "diagnostics",
			Body: "intro.txt\n",
		},
		{
			File: "test.cstest",
			Line: 7,
			Name: "check",
			Body: "intro.txt contains not defined\n",
		},
	}
	diff.Test(t, t.Errorf, got, want)

	if h := got[0].Head(); h != "startup.txt" {
		t.Errorf("Head = %q, want %q", h, "startup.txt")
	}
	if c := got[0].Content(); c != "*scene_list\n\tintro\n" {
		t.Errorf("Content = %q", c)
	}
	if w := got[2].Where(); w != "test.cstest:7" {
		t.Errorf("Where = %q", w)
	}
}

func TestDecodeBlankLineDropsComment(t *testing.T) {
	got := decodeAll(t, "# stray\n\nmissing\n")
	if len(got) != 1 {
		t.Fatalf("got %d directives, want 1", len(got))
	}
	if got[0].Comment != "" {
		t.Errorf("Comment = %q, want none", got[0].Comment)
	}
	if got[0].Body != "\n" {
		t.Errorf("Body = %q, want %q", got[0].Body, "\n")
	}
}

func TestDecodeSyntaxError(t *testing.T) {
	dec := NewDecoder("bad.cstest", strings.NewReader("\torphan\n"))
	_, err := dec.Decode()
	var se *SyntaxError
	if !errors.As(err, &se) {
		t.Fatalf("err = %v, want *SyntaxError", err)
	}
	if se.Line != 1 {
		t.Errorf("Line = %d, want 1", se.Line)
	}
	if want := "bad.cstest:1: continuation line without a directive"; err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestParseArgs(t *testing.T) {
	tests := []struct {
		in   string
		n    int
		want Args
	}{
		{"a b c", 3, Args{"a", "b", "c"}},
		{"a  b c d", 3, Args{"a", "b", "c d"}},
		{"a\tb", 2, Args{"a", "b"}},
		{"  a", 2, Args{"a"}},
		{"a b c", -1, Args{"a", "b", "c"}},
		{"a b", 0, nil},
		{"", 3, nil},
	}
	for _, tt := range tests {
		got := ParseArgs(tt.in, tt.n)
		diff.Test(t, t.Errorf, got, tt.want)
	}

	a, b, c := Args3("intro.txt contains Variable \"x\" not")
	if a != "intro.txt" || b != "contains" || c != `Variable "x" not` {
		t.Errorf("Args3 = %q, %q, %q", a, b, c)
	}
}

func TestText(t *testing.T) {
	tests := []struct {
		op, got, want string
		fail, invalid bool
	}{
		{op: "==", got: "a", want: "a"},
		{op: "==", got: "a", want: "b", fail: true},
		{op: "!=", got: "a", want: "b"},
		{op: "!=", got: "a", want: "a", fail: true},
		{op: "~", got: "abc", want: "^a"},
		{op: "~", got: "abc", want: "^b", fail: true},
		{op: "!~", got: "abc", want: "^b"},
		{op: "contains", got: "abc", want: "b"},
		{op: "!contains", got: "abc", want: "b", fail: true},
		{op: "==", got: "a", want: "", invalid: true},
		{op: "~", got: "a", want: "(", invalid: true},
		{op: "<>", got: "a", want: "a", invalid: true},
	}
	for _, tt := range tests {
		msg, valid := Text("x", tt.op, tt.got, tt.want)
		if valid == tt.invalid {
			t.Errorf("Text(%q, %q, %q): valid = %v", tt.op, tt.got, tt.want, valid)
		}
		if !tt.invalid && (msg != "") != tt.fail {
			t.Errorf("Text(%q, %q, %q) = %q, want failure %v", tt.op, tt.got, tt.want, msg, tt.fail)
		}
	}
}

func TestHTML(t *testing.T) {
	body := `<!DOCTYPE html>
<html>
<head><title>Report</title></head>
<body>
	<h1 class="title">Report</h1>
	<ul>
		<li class="diagnostic error">one</li>
		<li class="diagnostic error">two</li>
		<li class="diagnostic information">three</li>
	</ul>
	<p class="summary">2 errors</p>
</body>
</html>`

	tests := []struct {
		check string
		fail  bool
	}{
		{`h1.title == Report`, false},
		{`h1.title == Wrong`, true},
		{`h1.title != Wrong`, false},
		{`li.error ~ ^o`, false},
		{`li.error !~ ^o`, true},
		{`p.summary contains errors`, false},
		{`p.summary !contains errors`, true},
		{`li count 3`, false},
		{`li.error count 2`, false},
		{`li.warning count 0`, false},
		{`li.warning count 1`, true},
		{`ul>li.information == three`, false},
		{`.missing == anything`, true},
		{`[broken == x`, true},
		{`li count many`, true},
	}
	for _, tt := range tests {
		msg := HTML(tt.check, body)
		if tt.fail && msg == "" {
			t.Errorf("HTML(%q): passed, want failure", tt.check)
		}
		if !tt.fail && msg != "" {
			t.Errorf("HTML(%q): %s", tt.check, msg)
		}
	}
}

func TestHTMLMessages(t *testing.T) {
	body := `<ul><li>1</li><li>2</li></ul>`
	if got, want := HTML(`li count 5`, body), "li: got 2, want 5"; got != want {
		t.Errorf("count failure = %q, want %q", got, want)
	}
	if got, want := HTML(`.missing == x`, body), `nothing matches ".missing"`; got != want {
		t.Errorf("no match = %q, want %q", got, want)
	}
}
