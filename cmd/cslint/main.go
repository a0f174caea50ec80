/*
Command cslint checks a ChoiceScript game for mistakes.

# Usage

	cslint [-config file] [-format text|html] [-title title] [dir]

cslint reads startup.txt in dir (default "."), then choicescript_stats.txt
and every scene named by *scene_list, and reports what it finds:

	intro.txt:12:7: error: Variable "mood" not defined in this file or startup.txt
	intro.txt:30:15: information: Choice of Games style requires a Unicode ellipsis (…)

With -format html it writes a standalone HTML page instead.

The exit status is 1 if there are errors or missing scenes, 2 for bad
usage and 0 otherwise.

# Configuration

If dir contains .cslint.yaml, or a file is named with -config, it tunes
the checks:

	style:
	  ellipsis: true       # "..." should be "…"
	  em_dash: true        # "--" should be "—"
	  severity: information
	command_placement: true  # commands in the middle of a line
	extra_variables: [implicit_control_flow]

Severities are error, warning, information and hint. Names listed in
extra_variables are treated as built in.

Severities are coloured when standard output is a terminal, unless the
NO_COLOR environment variable is set.
*/
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"blake.io/choicescript"
	"blake.io/choicescript/report"
	"golang.org/x/term"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	flags := flag.NewFlagSet("cslint", flag.ContinueOnError)
	flags.SetOutput(stderr)
	flags.Usage = func() {
		fmt.Fprintf(stderr, "usage: cslint [-config file] [-format text|html] [-title title] [dir]\n")
		flags.PrintDefaults()
	}
	configFile := flags.String("config", "", "configuration `file` (default dir/"+choicescript.ConfigFile+")")
	format := flags.String("format", "text", "report `format`: text or html")
	title := flags.String("title", "", "`title` of the HTML report (default the directory name)")
	if err := flags.Parse(args); err != nil {
		return 2
	}
	if flags.NArg() > 1 || (*format != "text" && *format != "html") {
		flags.Usage()
		return 2
	}
	dir := "."
	if flags.NArg() == 1 {
		dir = flags.Arg(0)
	}

	if err := lint(dir, *configFile, *format, *title, stdout, stderr); err != nil {
		if !errors.Is(err, errProblems) {
			fmt.Fprintf(stderr, "cslint: %v\n", err)
		}
		return 1
	}
	return 0
}

// errProblems reports that the game has errors. They have been printed.
var errProblems = errors.New("problems found")

func lint(dir, configFile, format, title string, stdout, stderr io.Writer) error {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return err
	}
	fsys := os.DirFS(abs)

	config, err := loadConfig(fsys, configFile)
	if err != nil {
		return err
	}

	base := (&url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}).String()
	p := choicescript.NewProject(fsys, base, config)
	if err := p.Load(context.Background()); err != nil {
		return err
	}

	prefix := p.URI("")
	var files []report.File
	for _, doc := range p.Documents() {
		files = append(files, report.File{
			Name:        strings.TrimPrefix(doc.URI, prefix),
			Diagnostics: p.Validate(doc.URI),
		})
	}

	switch format {
	case "html":
		if title == "" {
			title = filepath.Base(abs)
		}
		err = report.HTML(stdout, title, files)
	default:
		err = report.Text(stdout, files, useColor(stdout))
	}
	if err != nil {
		return err
	}

	missing := p.Missing()
	for _, name := range missing {
		fmt.Fprintf(stderr, "cslint: %s is in the scene list but does not exist\n", name)
	}
	counts := report.Count(files)
	fmt.Fprintf(stderr, "cslint: %v\n", counts)
	if counts[choicescript.Error] > 0 || len(missing) > 0 {
		return errProblems
	}
	return nil
}

// loadConfig reads the configuration named by -config, or the project's
// own configuration file if there is one.
func loadConfig(project fs.FS, name string) (choicescript.Config, error) {
	if name == "" {
		return choicescript.LoadConfig(project, choicescript.ConfigFile)
	}
	data, err := os.ReadFile(name)
	if err != nil {
		return choicescript.Config{}, err
	}
	c, err := choicescript.ParseConfig(data)
	if err != nil {
		return choicescript.Config{}, &choicescript.ConfigError{File: name, Err: err}
	}
	return c, nil
}

func useColor(w io.Writer) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
