package choicescript

// Indexer collects the symbols of one document as it is parsed.
// It implements ParserCallbacks.
type Indexer struct {
	doc     *Document
	startup bool
	index   DocumentIndex
}

// NewIndexer returns an indexer for doc. Global variables, the scene list
// and achievements are recorded only if startup is set.
func NewIndexer(doc *Document, startup bool) *Indexer {
	return &Indexer{
		doc:     doc,
		startup: startup,
		index: DocumentIndex{
			LocalVariables:        make(IdentifierIndex),
			Labels:                make(IdentifierIndex),
			VariableReferences:    make(VariableReferenceIndex),
			AchievementReferences: make(VariableReferenceIndex),
			GlobalVariables:       make(IdentifierIndex),
			Achievements:          make(IdentifierIndex),
		},
	}
}

// Result returns what the indexer has collected.
func (ix *Indexer) Result() *DocumentIndex {
	d := ix.index
	if !ix.startup {
		d.GlobalVariables = nil
		d.SceneList = nil
		d.Achievements = nil
	}
	return &d
}

// scopeFrom returns the range from loc's start to the end of the document.
func (ix *Indexer) scopeFrom(loc Location) Range {
	return Range{Start: loc.Range.Start, End: ix.doc.End()}
}

func (ix *Indexer) OnCommand(prefix, command, spacing, line string, loc Location, state *ParsingState) {
	switch command {
	case "check_achievements":
		ix.index.Scopes.AchievementVarScopes = append(ix.index.Scopes.AchievementVarScopes, ix.scopeFrom(loc))
	case "params":
		ix.index.Scopes.ParamScopes = append(ix.index.Scopes.ParamScopes, ix.scopeFrom(loc))
	}
}

func addFirst(m IdentifierIndex, symbol string, loc Location) {
	if _, ok := m[symbol]; !ok {
		m[symbol] = loc
	}
}

func (ix *Indexer) OnGlobalVariableCreate(symbol string, loc Location, state *ParsingState) {
	addFirst(ix.index.GlobalVariables, symbol, loc)
}

func (ix *Indexer) OnLocalVariableCreate(symbol string, loc Location, state *ParsingState) {
	addFirst(ix.index.LocalVariables, symbol, loc)
}

func (ix *Indexer) OnLabelCreate(symbol string, loc Location, state *ParsingState) {
	addFirst(ix.index.Labels, symbol, loc)
}

func (ix *Indexer) OnVariableReference(symbol string, loc Location, state *ParsingState) {
	ix.index.VariableReferences[symbol] = append(ix.index.VariableReferences[symbol], loc)
}

func (ix *Indexer) OnFlowControlEvent(event FlowControlEvent, state *ParsingState) {
	ix.index.FlowControlEvents = append(ix.index.FlowControlEvents, event)
}

func (ix *Indexer) OnSceneDefinition(scenes []string, loc Location, state *ParsingState) {
	ix.index.SceneList = append(ix.index.SceneList, scenes...)
}

func (ix *Indexer) OnAchievementCreate(codename string, loc Location, state *ParsingState) {
	addFirst(ix.index.Achievements, codename, loc)
}

func (ix *Indexer) OnAchievementReference(codename string, loc Location, state *ParsingState) {
	ix.index.AchievementReferences[codename] = append(ix.index.AchievementReferences[codename], loc)
}

func (ix *Indexer) OnParseError(d Diagnostic) {
	ix.index.ParseErrors = append(ix.index.ParseErrors, d)
}

// IndexDocument parses doc and returns its symbols.
func IndexDocument(doc *Document, startup bool) *DocumentIndex {
	ix := NewIndexer(doc, startup)
	Parse(doc, ix)
	return ix.Result()
}

// UpdateProjectIndex parses doc and replaces its entries in index.
func UpdateProjectIndex(doc *Document, isStartup bool, index *Index) {
	index.ReplaceDocument(doc.URI, IndexDocument(doc, isStartup), isStartup)
}
