package choicescript

import (
	"path"
	"sort"
	"strings"
	"sync"
)

// IdentifierIndex maps a symbol to the location that created it.
type IdentifierIndex map[string]Location

// VariableReferenceIndex maps a symbol to every place it is referenced, in
// document order.
type VariableReferenceIndex map[string][]Location

// VariableScopes holds the parts of a document where synthetic variables
// exist: choice_achieved_* after *check_achievements, and param_N after
// *params.
type VariableScopes struct {
	AchievementVarScopes []Range
	ParamScopes          []Range
}

// DocumentIndex is everything parsing one document produces. The fields
// under "Startup" are published only for the startup document.
type DocumentIndex struct {
	LocalVariables        IdentifierIndex
	Labels                IdentifierIndex
	VariableReferences    VariableReferenceIndex
	AchievementReferences VariableReferenceIndex
	FlowControlEvents     []FlowControlEvent
	ParseErrors           []Diagnostic
	Scopes                VariableScopes

	// Startup
	GlobalVariables IdentifierIndex
	SceneList       []string
	Achievements    IdentifierIndex
}

// ProjectIndex is the read side of a project's symbol index.
type ProjectIndex interface {
	StartupFileURI() string
	IsStartupFileURI(uri string) bool

	// SceneURI returns the URI of the document holding scene. It reports
	// false until the startup file is known.
	SceneURI(scene string) (string, bool)

	GlobalVariables() IdentifierIndex
	SceneList() []string
	Achievements() IdentifierIndex

	LocalVariables(uri string) IdentifierIndex
	Labels(uri string) IdentifierIndex
	VariableReferences(uri string) VariableReferenceIndex
	AchievementReferences(uri string) VariableReferenceIndex
	FlowControlEvents(uri string) []FlowControlEvent
	ParseErrors(uri string) []Diagnostic
	VariableScopes(uri string) VariableScopes
}

// Index is a ProjectIndex safe for concurrent use. Maps and slices it
// returns must not be modified; updates replace them.
type Index struct {
	mu sync.RWMutex

	startupURI      string
	globalVariables IdentifierIndex
	sceneList       []string
	achievements    IdentifierIndex

	docs map[string]*DocumentIndex
}

// NewIndex returns an empty index.
func NewIndex() *Index {
	return &Index{docs: make(map[string]*DocumentIndex)}
}

var _ ProjectIndex = (*Index)(nil)

// ReplaceDocument replaces everything known about uri with d. If startup
// is set, uri becomes the startup file and d's startup fields replace the
// project-wide ones.
func (x *Index) ReplaceDocument(uri string, d *DocumentIndex, startup bool) {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.docs[uri] = d
	if startup {
		x.startupURI = uri
		x.globalVariables = d.GlobalVariables
		x.sceneList = d.SceneList
		x.achievements = d.Achievements
	}
}

// RemoveDocument forgets uri. Removing the startup file clears the
// project-wide symbols.
func (x *Index) RemoveDocument(uri string) {
	x.mu.Lock()
	defer x.mu.Unlock()
	delete(x.docs, uri)
	if uri == x.startupURI {
		x.startupURI = ""
		x.globalVariables = nil
		x.sceneList = nil
		x.achievements = nil
	}
}

// Documents returns the URIs of all indexed documents, sorted.
func (x *Index) Documents() []string {
	x.mu.RLock()
	defer x.mu.RUnlock()
	uris := make([]string, 0, len(x.docs))
	for uri := range x.docs {
		uris = append(uris, uri)
	}
	sort.Strings(uris)
	return uris
}

// update copies uri's slice, lets f change the copy and publishes it.
func (x *Index) update(uri string, f func(d *DocumentIndex)) {
	x.mu.Lock()
	defer x.mu.Unlock()
	var d DocumentIndex
	if old := x.docs[uri]; old != nil {
		d = *old
	}
	f(&d)
	x.docs[uri] = &d
}

func (x *Index) UpdateLocalVariables(uri string, v IdentifierIndex) {
	x.update(uri, func(d *DocumentIndex) { d.LocalVariables = v })
}

func (x *Index) UpdateLabels(uri string, v IdentifierIndex) {
	x.update(uri, func(d *DocumentIndex) { d.Labels = v })
}

func (x *Index) UpdateVariableReferences(uri string, v VariableReferenceIndex) {
	x.update(uri, func(d *DocumentIndex) { d.VariableReferences = v })
}

func (x *Index) UpdateAchievementReferences(uri string, v VariableReferenceIndex) {
	x.update(uri, func(d *DocumentIndex) { d.AchievementReferences = v })
}

func (x *Index) UpdateFlowControlEvents(uri string, v []FlowControlEvent) {
	x.update(uri, func(d *DocumentIndex) { d.FlowControlEvents = v })
}

func (x *Index) UpdateParseErrors(uri string, v []Diagnostic) {
	x.update(uri, func(d *DocumentIndex) { d.ParseErrors = v })
}

func (x *Index) UpdateVariableScopes(uri string, v VariableScopes) {
	x.update(uri, func(d *DocumentIndex) { d.Scopes = v })
}

// UpdateGlobalVariables replaces the project's global variables, which
// were created by the startup file at uri.
func (x *Index) UpdateGlobalVariables(uri string, v IdentifierIndex) {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.startupURI = uri
	x.globalVariables = v
}

func (x *Index) UpdateSceneList(scenes []string) {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.sceneList = scenes
}

func (x *Index) UpdateAchievements(v IdentifierIndex) {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.achievements = v
}

func (x *Index) StartupFileURI() string {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return x.startupURI
}

func (x *Index) IsStartupFileURI(uri string) bool {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return x.startupURI != "" && uri == x.startupURI
}

// SceneURI resolves a scene name to the URI of its file, which lives
// next to the startup file.
func (x *Index) SceneURI(scene string) (string, bool) {
	x.mu.RLock()
	defer x.mu.RUnlock()
	if x.startupURI == "" {
		return "", false
	}
	return SiblingURI(x.startupURI, scene+".txt"), true
}

// SiblingURI returns the URI of the file name in the same directory as
// uri.
func SiblingURI(uri, name string) string {
	i := strings.LastIndexByte(uri, '/')
	if i < 0 {
		return name
	}
	return uri[:i+1] + path.Clean(name)
}

func (x *Index) GlobalVariables() IdentifierIndex {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return x.globalVariables
}

func (x *Index) SceneList() []string {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return x.sceneList
}

func (x *Index) Achievements() IdentifierIndex {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return x.achievements
}

// doc returns uri's slice, or an empty one.
func (x *Index) doc(uri string) *DocumentIndex {
	x.mu.RLock()
	defer x.mu.RUnlock()
	if d := x.docs[uri]; d != nil {
		return d
	}
	return &DocumentIndex{}
}

func (x *Index) LocalVariables(uri string) IdentifierIndex { return x.doc(uri).LocalVariables }
func (x *Index) Labels(uri string) IdentifierIndex         { return x.doc(uri).Labels }

func (x *Index) VariableReferences(uri string) VariableReferenceIndex {
	return x.doc(uri).VariableReferences
}

func (x *Index) AchievementReferences(uri string) VariableReferenceIndex {
	return x.doc(uri).AchievementReferences
}

func (x *Index) FlowControlEvents(uri string) []FlowControlEvent { return x.doc(uri).FlowControlEvents }
func (x *Index) ParseErrors(uri string) []Diagnostic            { return x.doc(uri).ParseErrors }
func (x *Index) VariableScopes(uri string) VariableScopes       { return x.doc(uri).Scopes }

// References returns every reference to the variable name across the
// project, ordered by URI and then by document order.
func (x *Index) References(name string) []Location {
	return x.collect(func(d *DocumentIndex) []Location { return d.VariableReferences[name] })
}

// AchievementReferencesTo returns every *achieve of codename across the
// project.
func (x *Index) AchievementReferencesTo(codename string) []Location {
	return x.collect(func(d *DocumentIndex) []Location { return d.AchievementReferences[codename] })
}

func (x *Index) collect(f func(*DocumentIndex) []Location) []Location {
	x.mu.RLock()
	defer x.mu.RUnlock()
	uris := make([]string, 0, len(x.docs))
	for uri := range x.docs {
		uris = append(uris, uri)
	}
	sort.Strings(uris)
	var locs []Location
	for _, uri := range uris {
		locs = append(locs, f(x.docs[uri])...)
	}
	return locs
}
