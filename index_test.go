package choicescript

import (
	"sync"
	"testing"

	"kr.dev/diff"
)

func TestIndexDocument(t *testing.T) {
	doc := NewDocument(startupURI, ""+
		"*create strength 10\n"+
		"*create strength 20\n"+
		"*temp mood 1\n"+
		"*scene_list\n"+
		"  intro\n"+
		"*achievement brave visible 10 Brave\n"+
		"*label top\n"+
		"*check_achievements\n"+
		"*params\n"+
		"*achieve brave\n"+
		"*goto top\n"+
		"${strength} ${strength}\n")

	got := IndexDocument(doc, true)

	loc := func(line, start, end int) Location {
		return Location{URI: startupURI, Range: Range{Position{line, start}, Position{line, end}}}
	}
	diff.Test(t, t.Errorf, got.GlobalVariables, IdentifierIndex{"strength": loc(0, 8, 16)})
	diff.Test(t, t.Errorf, got.LocalVariables, IdentifierIndex{"mood": loc(2, 6, 10)})
	diff.Test(t, t.Errorf, got.Labels, IdentifierIndex{"top": loc(6, 7, 10)})
	diff.Test(t, t.Errorf, got.SceneList, []string{"intro"})
	diff.Test(t, t.Errorf, got.Achievements, IdentifierIndex{"brave": loc(5, 13, 18)})
	diff.Test(t, t.Errorf, got.AchievementReferences, VariableReferenceIndex{"brave": {loc(9, 9, 14)}})
	diff.Test(t, t.Errorf, got.VariableReferences, VariableReferenceIndex{
		"strength": {loc(11, 2, 10), loc(11, 14, 22)},
	})
	if n := len(got.FlowControlEvents); n != 1 {
		t.Errorf("got %d flow control events, want 1", n)
	}

	end := doc.End()
	diff.Test(t, t.Errorf, got.Scopes, VariableScopes{
		AchievementVarScopes: []Range{{Position{7, 1}, end}},
		ParamScopes:          []Range{{Position{8, 1}, end}},
	})
}

func TestIndexDocumentNotStartup(t *testing.T) {
	doc := NewDocument(introURI, "*create strength 10\n*scene_list\n  a\n*achievement x visible 1 X\n")
	got := IndexDocument(doc, false)
	if got.GlobalVariables != nil || got.SceneList != nil || got.Achievements != nil {
		t.Errorf("startup symbols recorded for a scene: %+v", got)
	}
	if len(got.ParseErrors) != 3 {
		t.Errorf("got %d parse errors, want 3", len(got.ParseErrors))
	}
}

func TestIndexReplaceDocument(t *testing.T) {
	idx := NewIndex()
	if _, ok := idx.SceneURI("intro"); ok {
		t.Error("SceneURI resolved without a startup file")
	}

	UpdateProjectIndex(NewDocument(startupURI, "*create a 1\n*scene_list\n  intro\n"), true, idx)
	UpdateProjectIndex(NewDocument(introURI, "*temp b 1\n${a}\n"), false, idx)

	if got := idx.StartupFileURI(); got != startupURI {
		t.Errorf("StartupFileURI = %q", got)
	}
	if !idx.IsStartupFileURI(startupURI) || idx.IsStartupFileURI(introURI) {
		t.Error("IsStartupFileURI is wrong")
	}
	if uri, _ := idx.SceneURI("chapter2"); uri != "file:///game/chapter2.txt" {
		t.Errorf("SceneURI = %q", uri)
	}
	diff.Test(t, t.Errorf, idx.SceneList(), []string{"intro"})
	diff.Test(t, t.Errorf, idx.Documents(), []string{introURI, startupURI})
	if _, ok := idx.GlobalVariables()["a"]; !ok {
		t.Error("global a missing")
	}

	// Replacing a document drops what it used to have.
	UpdateProjectIndex(NewDocument(introURI, "*temp c 1\n"), false, idx)
	if _, ok := idx.LocalVariables(introURI)["b"]; ok {
		t.Error("b survived replacing intro.txt")
	}
	if refs := idx.VariableReferences(introURI); len(refs) != 0 {
		t.Errorf("references survived: %v", refs)
	}

	// As does the startup file, for project-wide symbols.
	UpdateProjectIndex(NewDocument(startupURI, "*create z 1\n"), true, idx)
	if _, ok := idx.GlobalVariables()["a"]; ok {
		t.Error("global a survived replacing startup.txt")
	}
	if idx.SceneList() != nil {
		t.Errorf("SceneList = %v, want none", idx.SceneList())
	}

	idx.RemoveDocument(startupURI)
	if idx.StartupFileURI() != "" || idx.GlobalVariables() != nil {
		t.Error("startup symbols survived RemoveDocument")
	}
	diff.Test(t, t.Errorf, idx.Documents(), []string{introURI})
}

func TestIndexUnknownDocument(t *testing.T) {
	idx := NewIndex()
	const uri = "file:///game/none.txt"
	if idx.LocalVariables(uri) != nil || idx.Labels(uri) != nil || idx.ParseErrors(uri) != nil {
		t.Error("unknown document has symbols")
	}
	if len(idx.FlowControlEvents(uri)) != 0 {
		t.Error("unknown document has flow control events")
	}
}

func TestIndexUpdates(t *testing.T) {
	idx := NewIndex()
	labels := IdentifierIndex{"top": {URI: introURI}}
	idx.UpdateLabels(introURI, labels)
	idx.UpdateLocalVariables(introURI, IdentifierIndex{"x": {URI: introURI}})
	idx.UpdateVariableReferences(introURI, VariableReferenceIndex{"x": {{URI: introURI}}})
	idx.UpdateAchievementReferences(introURI, VariableReferenceIndex{"brave": {{URI: introURI}}})
	idx.UpdateFlowControlEvents(introURI, []FlowControlEvent{{Command: "return"}})
	idx.UpdateParseErrors(introURI, []Diagnostic{{Message: "bad"}})
	idx.UpdateVariableScopes(introURI, VariableScopes{ParamScopes: []Range{{}}})
	idx.UpdateGlobalVariables(startupURI, IdentifierIndex{"g": {URI: startupURI}})
	idx.UpdateSceneList([]string{"intro"})
	idx.UpdateAchievements(IdentifierIndex{"brave": {URI: startupURI}})

	diff.Test(t, t.Errorf, idx.Labels(introURI), labels)
	if _, ok := idx.LocalVariables(introURI)["x"]; !ok {
		t.Error("UpdateLocalVariables lost an earlier update")
	}
	if len(idx.VariableReferences(introURI)["x"]) != 1 {
		t.Error("references not updated")
	}
	if len(idx.AchievementReferences(introURI)["brave"]) != 1 {
		t.Error("achievement references not updated")
	}
	if len(idx.FlowControlEvents(introURI)) != 1 || len(idx.ParseErrors(introURI)) != 1 {
		t.Error("events or errors not updated")
	}
	if len(idx.VariableScopes(introURI).ParamScopes) != 1 {
		t.Error("scopes not updated")
	}
	if idx.StartupFileURI() != startupURI {
		t.Error("UpdateGlobalVariables did not set the startup file")
	}
	diff.Test(t, t.Errorf, idx.SceneList(), []string{"intro"})
	if _, ok := idx.Achievements()["brave"]; !ok {
		t.Error("achievements not updated")
	}
}

func TestIndexReferences(t *testing.T) {
	idx := NewIndex()
	UpdateProjectIndex(NewDocument(startupURI, "*create a 1\n${a}\n*achieve x\n"), true, idx)
	UpdateProjectIndex(NewDocument(introURI, "${a} ${a}\n*achieve x\n"), false, idx)

	var uris []string
	for _, loc := range idx.References("a") {
		uris = append(uris, loc.URI)
	}
	diff.Test(t, t.Errorf, uris, []string{introURI, introURI, startupURI})

	if n := len(idx.AchievementReferencesTo("x")); n != 2 {
		t.Errorf("got %d references to x, want 2", n)
	}
}

func TestSiblingURI(t *testing.T) {
	tests := []struct {
		uri, name, want string
	}{
		{"file:///game/startup.txt", "intro.txt", "file:///game/intro.txt"},
		{"file:///game/startup.txt", "../other.txt", "file:///game/../other.txt"},
		{"startup.txt", "intro.txt", "intro.txt"},
	}
	for _, tt := range tests {
		if got := SiblingURI(tt.uri, tt.name); got != tt.want {
			t.Errorf("SiblingURI(%q, %q) = %q, want %q", tt.uri, tt.name, got, tt.want)
		}
	}
}

func TestIndexConcurrentUse(t *testing.T) {
	idx := NewIndex()
	docs := []*Document{
		NewDocument(startupURI, "*create a 1\n*scene_list\n  intro\n"),
		NewDocument(introURI, "${a}\n*goto top\n*label top\n"),
	}
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			doc := docs[i%len(docs)]
			UpdateProjectIndex(doc, IsStartupFile(doc.URI), idx)
			GenerateDiagnostics(doc, idx)
			idx.References("a")
		}()
	}
	wg.Wait()
	diff.Test(t, t.Errorf, idx.Documents(), []string{introURI, startupURI})
}
