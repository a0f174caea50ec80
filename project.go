package choicescript

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"runtime"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Well-known files of a ChoiceScript project.
const (
	StartupFile = "startup.txt"
	StatsFile   = "choicescript_stats.txt"
)

// Project is a set of indexed documents that share an Index.
// It is safe for concurrent use.
type Project struct {
	// Index holds the symbols of every loaded document.
	Index *Index

	// Validator checks documents. Its Config may be changed between
	// calls to Validate.
	Validator *Validator

	fsys    fs.FS
	baseURI string

	mu      sync.Mutex
	docs    map[string]*Document
	missing []string
}

// NewProject returns an empty project whose files are read from fsys.
// A file's URI is baseURI followed by its name in fsys.
func NewProject(fsys fs.FS, baseURI string, config Config) *Project {
	if baseURI != "" && !strings.HasSuffix(baseURI, "/") {
		baseURI += "/"
	}
	return &Project{
		Index:     NewIndex(),
		Validator: &Validator{Config: config},
		fsys:      fsys,
		baseURI:   baseURI,
		docs:      make(map[string]*Document),
	}
}

// URI returns the URI of the project file name.
func (p *Project) URI(name string) string {
	return p.baseURI + name
}

// Load indexes the startup file, then the stats screen and every scene
// in the scene list, in parallel. Scenes that don't exist are recorded
// in Missing and are not an error.
func (p *Project) Load(ctx context.Context) error {
	data, err := fs.ReadFile(p.fsys, StartupFile)
	if err != nil {
		return fmt.Errorf("loading project: %w", err)
	}
	p.Update(NewDocument(p.URI(StartupFile), string(data)))

	names := []string{StatsFile}
	seen := map[string]bool{StartupFile: true, StatsFile: true}
	for _, scene := range p.Index.SceneList() {
		name := scene + ".txt"
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for _, name := range names {
		name := name
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			data, err := fs.ReadFile(p.fsys, name)
			if errors.Is(err, fs.ErrNotExist) {
				if name != StatsFile {
					p.mu.Lock()
					p.missing = append(p.missing, name)
					p.mu.Unlock()
				}
				return nil
			}
			if err != nil {
				return fmt.Errorf("loading %s: %w", name, err)
			}
			p.Update(NewDocument(p.URI(name), string(data)))
			return nil
		})
	}
	return g.Wait()
}

// Missing returns the names of scenes in the scene list that Load could
// not find, sorted.
func (p *Project) Missing() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	missing := append([]string(nil), p.missing...)
	sort.Strings(missing)
	return missing
}

// Update indexes doc, replacing any earlier version, and returns the
// documents that must be validated again as a result. That is doc
// alone, or every document when doc is the startup file.
func (p *Project) Update(doc *Document) []*Document {
	startup := IsStartupFile(doc.URI)
	UpdateProjectIndex(doc, startup, p.Index)

	p.mu.Lock()
	p.docs[doc.URI] = doc
	p.mu.Unlock()

	if startup {
		return p.Documents()
	}
	return []*Document{doc}
}

// Remove forgets the document at uri.
func (p *Project) Remove(uri string) {
	p.mu.Lock()
	delete(p.docs, uri)
	p.mu.Unlock()
	p.Index.RemoveDocument(uri)
}

// Document returns the current version of the document at uri.
func (p *Project) Document(uri string) (*Document, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	doc, ok := p.docs[uri]
	return doc, ok
}

// Documents returns every document, ordered by URI.
func (p *Project) Documents() []*Document {
	p.mu.Lock()
	defer p.mu.Unlock()
	docs := make([]*Document, 0, len(p.docs))
	for _, doc := range p.docs {
		docs = append(docs, doc)
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].URI < docs[j].URI })
	return docs
}

// Validate returns the diagnostics for the document at uri.
func (p *Project) Validate(uri string) []Diagnostic {
	doc, ok := p.Document(uri)
	if !ok {
		return nil
	}
	return p.Validator.Validate(doc, p.Index)
}
