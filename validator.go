package choicescript

import (
	"fmt"
	"slices"
	"sort"
	"strings"
)

// Validator checks documents against a project index.
type Validator struct {
	Config Config
}

// GenerateDiagnostics validates doc with the default configuration.
func GenerateDiagnostics(doc *Document, index ProjectIndex) []Diagnostic {
	v := &Validator{Config: DefaultConfig()}
	return v.Validate(doc, index)
}

// Validate returns doc's parse errors followed by the problems found by
// checking its symbols against index and scanning its text. doc must
// already be indexed. The result is the same every time for the same
// document and index.
func (v *Validator) Validate(doc *Document, index ProjectIndex) []Diagnostic {
	s := &validation{
		Validator: v,
		doc:       doc,
		text:      doc.Text(),
		index:     index,
	}
	diags := slices.Clone(index.ParseErrors(doc.URI))
	diags = append(diags, s.references()...)
	diags = append(diags, s.flowControl()...)
	diags = append(diags, s.scanText()...)
	return diags
}

type validation struct {
	*Validator
	doc   *Document
	text  string
	index ProjectIndex

	// effective holds where *temp variables created in a subroutine are
	// considered created: at the *gosub that calls it.
	effective IdentifierIndex
}

// findEffectiveCreations fills s.effective. A subroutine runs from its
// label to the first *return on a later line.
func (s *validation) findEffectiveCreations() {
	uri := s.doc.URI
	events := s.index.FlowControlEvents(uri)
	labels := s.index.Labels(uri)
	locals := s.index.LocalVariables(uri)

	var returns []FlowControlEvent
	for _, e := range events {
		if e.Command == "return" {
			returns = append(returns, e)
		}
	}

	s.effective = make(IdentifierIndex)
	for _, e := range events {
		if e.Command != "gosub" {
			continue
		}
		label, ok := labels[e.Label]
		if !ok {
			continue
		}
		i := slices.IndexFunc(returns, func(r FlowControlEvent) bool {
			return r.CommandLocation.Range.Start.Line > label.Range.Start.Line
		})
		if i < 0 {
			continue
		}
		ret := returns[i].CommandLocation.Range.Start
		for name, loc := range locals {
			start := loc.Range.Start
			if start.Compare(label.Range.End) >= 0 && start.Compare(ret) <= 0 {
				if _, ok := s.effective[name]; !ok {
					s.effective[name] = e.CommandLocation
				}
			}
		}
	}
}

// creation returns where name was created. A subroutine's effective
// creation wins over the document's own, which wins over a global.
func (s *validation) creation(name string) (Location, bool) {
	if loc, ok := s.effective[name]; ok {
		return loc, true
	}
	if loc, ok := s.index.LocalVariables(s.doc.URI)[name]; ok {
		return loc, true
	}
	loc, ok := s.index.GlobalVariables()[name]
	return loc, ok
}

func (s *validation) isBuiltin(name string) bool {
	return builtinVariables[name] || slices.Contains(s.Config.ExtraVariables, name)
}

func (s *validation) references() []Diagnostic {
	s.findEffectiveCreations()

	whereDefined := "in this file"
	if !IsStartupFile(s.doc.URI) {
		whereDefined += " or startup.txt"
	}

	refs := s.index.VariableReferences(s.doc.URI)
	names := make([]string, 0, len(refs))
	for name := range refs {
		names = append(names, name)
	}
	sort.Strings(names)

	var diags []Diagnostic
	for _, name := range names {
		locs := refs[name]
		if created, ok := s.creation(name); ok {
			for _, loc := range locs {
				if loc.URI == created.URI && loc.Range.End.Compare(created.Range.Start) < 0 {
					diags = append(diags, diagnosticAt(Error, loc,
						fmt.Sprintf("Variable %q used before it was created", name)))
				}
			}
			continue
		}
		if s.isBuiltin(name) {
			continue
		}

		scopes := s.index.VariableScopes(s.doc.URI)
		if variableIsAchievement(name, s.index.Achievements()) {
			locs = outsideScopes(locs, scopes.AchievementVarScopes)
		}
		if variableIsPossibleParameter(name) {
			locs = outsideScopes(locs, scopes.ParamScopes)
		}
		for _, loc := range locs {
			diags = append(diags, diagnosticAt(Error, loc,
				fmt.Sprintf("Variable %q not defined %s", name, whereDefined)))
		}
	}
	return diags
}

// outsideScopes returns the locations not inside any of scopes.
func outsideScopes(locs []Location, scopes []Range) []Location {
	if len(scopes) == 0 {
		return locs
	}
	var out []Location
	for _, loc := range locs {
		inside := slices.ContainsFunc(scopes, func(r Range) bool {
			return r.Contains(loc.Range)
		})
		if !inside {
			out = append(out, loc)
		}
	}
	return out
}

// isDynamic reports whether a jump target is computed at run time.
func isDynamic(target string) bool {
	return strings.HasPrefix(target, "{")
}

func (s *validation) flowControl() []Diagnostic {
	var diags []Diagnostic
	checkLabel := func(label, uri string, loc Location) {
		if _, ok := s.index.Labels(uri)[label]; !ok {
			diags = append(diags, diagnosticAt(Error, loc,
				fmt.Sprintf("Label %q wasn't found in %s", label, filename(uri))))
		}
	}

	scenes := s.index.SceneList()
	for _, e := range s.index.FlowControlEvents(s.doc.URI) {
		switch {
		case e.Scene != "" && e.SceneLocation != nil:
			if isDynamic(e.Scene) {
				continue
			}
			if !slices.Contains(scenes, e.Scene) {
				diags = append(diags, diagnosticAt(Error, *e.SceneLocation,
					fmt.Sprintf("Scene %q wasn't found in startup.txt", e.Scene)))
				continue
			}
			if e.Label == "" || e.LabelLocation == nil || isDynamic(e.Label) {
				continue
			}
			if uri, ok := s.index.SceneURI(e.Scene); ok {
				checkLabel(e.Label, uri, *e.LabelLocation)
			}
		case e.Label != "" && e.LabelLocation != nil:
			if !isDynamic(e.Label) {
				checkLabel(e.Label, s.doc.URI, *e.LabelLocation)
			}
		}
	}
	return diags
}

// lineCommand returns the command that starts the line holding offset i,
// or "".
func (s *validation) lineCommand(i int) string {
	begin := findLineBegin(s.text, i)
	if m := lineCommandPattern.FindStringSubmatch(s.text[begin:i]); m != nil {
		return m[1]
	}
	return ""
}

// scanText reports style problems and misplaced commands.
func (s *validation) scanText() []Diagnostic {
	var diags []Diagnostic
	for _, m := range stylePattern.FindAllStringSubmatchIndex(s.text, -1) {
		start, end := m[0], m[1]
		var d Diagnostic
		var ok bool
		switch s.text[start] {
		case '.':
			d, ok = s.style(start, end, 3, s.Config.Style.Ellipsis, "ellipsis (…)")
		case '-':
			d, ok = s.style(start, end, 2, s.Config.Style.EmDash, "em-dash (—)")
		case '*':
			d, ok = s.commandInLine(s.text[m[2]:m[3]], start)
		}
		if ok {
			diags = append(diags, d)
		}
	}
	return diags
}

// style checks a run of dots or hyphens. Only runs exactly n long are
// reported.
func (s *validation) style(start, end, n int, enabled bool, description string) (Diagnostic, bool) {
	if !enabled || end-start != n || s.lineCommand(start) == "comment" {
		return Diagnostic{}, false
	}
	return newDiagnostic(s.Config.Style.Severity, s.doc, start, end,
		"Choice of Games style requires a Unicode "+description), true
}

// commandInLine checks a *command found at offset i.
func (s *validation) commandInLine(command string, i int) (Diagnostic, bool) {
	if !s.Config.CommandPlacement || !validCommands[command] {
		return Diagnostic{}, false
	}
	begin := findLineBegin(s.text, i)
	if strings.TrimSpace(s.text[begin:i]) == "" {
		return Diagnostic{}, false // starts its line
	}
	actual := s.lineCommand(i)
	if actual == "comment" {
		return Diagnostic{}, false
	}
	if (command == "if" || command == "selectable_if") && reuseCommands[actual] {
		return Diagnostic{}, false
	}
	return newDiagnostic(Information, s.doc, i, i+len(command)+1,
		fmt.Sprintf("*%s should be on a line by itself", command)), true
}
