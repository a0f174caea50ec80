package report

import (
	"bytes"
	"strings"
	"testing"

	"blake.io/choicescript"
	"blake.io/choicescript/internal/scripttest"
	"kr.dev/diff"
)

func diag(line, char int, sev choicescript.Severity, msg string) choicescript.Diagnostic {
	p := choicescript.Position{Line: line, Character: char}
	return choicescript.Diagnostic{
		Range:    choicescript.Range{Start: p, End: p},
		Severity: sev,
		Message:  msg,
	}
}

var files = []File{
	{
		Name: "intro.txt",
		Diagnostics: []choicescript.Diagnostic{
			diag(0, 11, choicescript.Error, `Variable "mood" not defined in this file or startup.txt`),
			diag(2, 4, choicescript.Information, "Choice of Games style requires a Unicode ellipsis (…)"),
		},
	},
	{Name: "clean.txt"},
	{
		Name: "startup.txt",
		Diagnostics: []choicescript.Diagnostic{
			diag(4, 1, choicescript.Error, `Scene "ending" wasn't found in startup.txt`),
		},
	},
}

func TestText(t *testing.T) {
	var buf bytes.Buffer
	if err := Text(&buf, files, false); err != nil {
		t.Fatal(err)
	}
	want := "" +
		"intro.txt:1:12: error: Variable \"mood\" not defined in this file or startup.txt\n" +
		"intro.txt:3:5: information: Choice of Games style requires a Unicode ellipsis (…)\n" +
		"startup.txt:5:2: error: Scene \"ending\" wasn't found in startup.txt\n"
	diff.Test(t, t.Errorf, buf.String(), want)
}

func TestTextColor(t *testing.T) {
	var buf bytes.Buffer
	if err := Text(&buf, files[:1], true); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "\x1b[31merror\x1b[0m") {
		t.Errorf("no coloured severity in %q", buf.String())
	}
}

func TestCount(t *testing.T) {
	tests := []struct {
		files []File
		want  string
	}{
		{nil, "0 errors, 0 warnings, 0 information"},
		{files, "2 errors, 0 warnings, 1 information"},
		{files[2:], "1 error, 0 warnings, 0 information"},
		{[]File{{Diagnostics: []choicescript.Diagnostic{diag(0, 0, choicescript.Hint, "h")}}},
			"0 errors, 0 warnings, 0 information, 1 hint"},
	}
	for _, tt := range tests {
		if got := Count(tt.files).String(); got != tt.want {
			t.Errorf("Count = %q, want %q", got, tt.want)
		}
	}
}

func TestHTML(t *testing.T) {
	var buf bytes.Buffer
	if err := HTML(&buf, "My Game", files); err != nil {
		t.Fatal(err)
	}
	page := buf.String()

	checks := []string{
		`title == My Game`,
		`h1.title == My Game`,
		`section.file count 2`,
		`section.file>h2 == intro.txt`,
		`li.diagnostic count 3`,
		`li.error count 2`,
		`li.information count 1`,
		`li.information>span.message contains ellipsis`,
		`li.error>span.position == 1:12`,
		`li.error>span.message == Variable &#34;mood&#34; not defined in this file or startup.txt`,
		`p.summary == 2 errors, 0 warnings, 1 information`,
		`section[data-file="clean.txt"] count 0`,
	}
	for _, c := range checks {
		if msg := scripttest.HTML(c, page); msg != "" {
			t.Errorf("%s", msg)
		}
	}
}
