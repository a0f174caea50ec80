package choicescript_test

import (
	"bytes"
	"context"
	"embed"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"testing/fstest"

	"blake.io/choicescript"
	"blake.io/choicescript/internal/scripttest"
	"blake.io/choicescript/report"
	"kr.dev/diff"
)

var useAbsPaths = sync.OnceValue(func() bool {
	f := flag.Lookup("test.fullpath")
	return f != nil && f.Value.String() == "true"
})

//go:embed testdata/*.cstest
var scripts embed.FS

const baseURI = "file:///game/"

// scriptState is a project described by a test script. The project is
// loaded the first time a directive needs diagnostics; later file and
// config directives update it in place.
type scriptState struct {
	fsys    fstest.MapFS
	config  choicescript.Config
	project *choicescript.Project
}

func (s *scriptState) load() error {
	if s.project != nil {
		return nil
	}
	s.project = choicescript.NewProject(s.fsys, baseURI, s.config)
	return s.project.Load(context.Background())
}

func (s *scriptState) diagnostics(name string) ([]choicescript.Diagnostic, error) {
	if err := s.load(); err != nil {
		return nil, err
	}
	if _, ok := s.project.Document(s.project.URI(name)); !ok {
		return nil, fmt.Errorf("%s is not part of the project", name)
	}
	return s.project.Validate(s.project.URI(name)), nil
}

func (s *scriptState) report(name string) (string, error) {
	diags, err := s.diagnostics(name)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	err = report.Text(&buf, []report.File{{Name: name, Diagnostics: diags}}, false)
	return buf.String(), err
}

func (s *scriptState) html() (string, error) {
	if err := s.load(); err != nil {
		return "", err
	}
	var files []report.File
	for _, doc := range s.project.Documents() {
		files = append(files, report.File{
			Name:        strings.TrimPrefix(doc.URI, baseURI),
			Diagnostics: s.project.Validate(doc.URI),
		})
	}
	var buf bytes.Buffer
	err := report.HTML(&buf, "Test", files)
	return buf.String(), err
}

func TestScripts(t *testing.T) {
	files, err := fs.Glob(scripts, "testdata/*.cstest")
	if err != nil {
		t.Fatalf("glob testdata/*.cstest: %v", err)
	}
	if len(files) == 0 {
		t.Fatalf("no testdata files found")
	}

	for _, file := range files {
		t.Run(strings.TrimSuffix(filepath.Base(file), ".cstest"), func(t *testing.T) {
			data, err := fs.ReadFile(scripts, file)
			if err != nil {
				t.Fatal(err)
			}
			runScript(t, file, data)
		})
	}
}

func runScript(t *testing.T, file string, data []byte) {
	s := &scriptState{
		fsys:   make(fstest.MapFS),
		config: choicescript.DefaultConfig(),
	}

	dec := scripttest.NewDecoder(file, bytes.NewReader(data))
	var checks int
	for {
		d, err := dec.Decode()
		if err == io.EOF {
			break
		}
		if err != nil {
			fmt.Fprint(t.Output(), err)
			t.FailNow()
		}

		var wroteHeader bool
		errorf := func(format string, args ...any) {
			if !wroteHeader {
				if useAbsPaths() {
					d.File, _ = filepath.Abs(file)
				}
				format = fmt.Sprintf("\n%s:\n%s", d.Where(), format)
				wroteHeader = true
			}
			fmt.Fprintf(t.Output(), format, args...)
			t.Fail()
		}
		fail := func(err error) {
			errorf("%v\n", err)
		}

		switch d.Name {
		case "file":
			name := d.Head()
			s.fsys[name] = &fstest.MapFile{Data: []byte(d.Content())}
			if s.project != nil {
				s.project.Update(choicescript.NewDocument(s.project.URI(name), d.Content()))
			}

		case "config":
			c, err := choicescript.ParseConfig([]byte(d.Content()))
			if err != nil {
				fail(err)
				continue
			}
			s.config = c
			if s.project != nil {
				s.project.Validator.Config = c
			}

		case "diagnostics":
			checks++
			got, err := s.report(d.Head())
			if err != nil {
				fail(err)
				continue
			}
			diff.Test(t, errorf, got, d.Content())

		case "check":
			checks++
			name, op, want := scripttest.Args3(d.Head())
			got, err := s.report(name)
			if err != nil {
				fail(err)
				continue
			}
			if msg, _ := scripttest.Text(name, op, got, want); msg != "" {
				errorf("%s\n", msg)
			}

		case "count":
			checks++
			args := scripttest.ParseArgs(d.Head(), 2)
			diags, err := s.diagnostics(args.At(0))
			if err != nil {
				fail(err)
				continue
			}
			if msg := scripttest.Count(args.At(0), len(diags), args.At(1)); msg != "" {
				errorf("%s\n", msg)
			}

		case "missing":
			checks++
			if err := s.load(); err != nil {
				fail(err)
				continue
			}
			got := strings.Join(s.project.Missing(), " ")
			if got != d.Head() {
				errorf("missing = %q, want %q\n", got, d.Head())
			}

		case "html":
			checks++
			page, err := s.html()
			if err != nil {
				fail(err)
				continue
			}
			if msg := scripttest.HTML(d.Head(), page); msg != "" {
				errorf("%s\n", msg)
			}

		default:
			t.Fatalf("\n%s: unknown directive %q", d.Where(), d.Name)
		}
	}

	if checks == 0 {
		t.Fatalf("no checks found in %s", file)
	}
}
