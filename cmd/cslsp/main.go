/*
Command cslsp is a Language Server Protocol (LSP) server for ChoiceScript.

# Installation

	go install blake.io/choicescript/cmd/cslsp@latest

# Supported Features

  - Diagnostics: parse errors, undefined variables and labels, missing
    scenes, style and command placement, published for every file in the
    game and refreshed as files change. A change to startup.txt refreshes
    every file.
  - Go to Definition: from a variable, label, scene or achievement to
    where it is created.
  - Find References: every use of a variable, label, scene or achievement
    across the game.
  - Document Symbols: the labels and variables a file creates.
  - Hover: where a variable was created.

The game is the directory holding startup.txt: the shallowest one under
the client's rootUri, such as rootUri/scenes, or else the directory of the
first file opened. Closing startup.txt without saving it refreshes every
file.
A .cslint.yaml file there configures the checks, as for cslint.

# Editor Setup

cslsp communicates over stdin/stdout. Configure your editor to run cslsp
as the language server for ChoiceScript .txt files. For example, with
Neovim:

	vim.api.nvim_create_autocmd({'BufRead', 'BufNewFile'}, {
		pattern = {'startup.txt', 'choicescript_stats.txt', 'scenes/?*.txt'},
		callback = function()
			vim.lsp.start({
				name = 'cslsp',
				cmd = {'cslsp'},
				root_dir = vim.fs.dirname(vim.fs.find('startup.txt', {upward = true})[1]),
			})
		end,
	})

Log messages are written to standard error.
*/
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"blake.io/choicescript"
)

// JSON-RPC error codes
const (
	codeParseError     = -32700
	codeMethodNotFound = -32601
	codeInvalidParams  = -32602
)

// LSP symbol kinds
const (
	kindNamespace = 3
	kindVariable  = 13
	kindEvent     = 24
)

func main() {
	s := newServer(os.Stdin, os.Stdout, log.New(os.Stderr, "cslsp: ", log.LstdFlags))
	if err := s.run(); err != nil {
		var e exitError
		if errors.As(err, &e) {
			os.Exit(e.code)
		}
		s.log.Fatal(err)
	}
}

// Server

type server struct {
	r   *bufio.Reader
	w   *bufio.Writer
	log *log.Logger

	// openFS returns the file system of a game directory.
	openFS func(dir string) fs.FS

	fsys     fs.FS
	project  *choicescript.Project
	shutdown bool
}

func newServer(r io.Reader, w io.Writer, logger *log.Logger) *server {
	return &server{
		r:      bufio.NewReader(r),
		w:      bufio.NewWriter(w),
		log:    logger,
		openFS: os.DirFS,
	}
}

type exitError struct{ code int }

func (e exitError) Error() string { return fmt.Sprintf("exit %d", e.code) }

func (s *server) run() error {
	for {
		data, err := s.readMessage()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		var msg request
		if err := json.Unmarshal(data, &msg); err != nil {
			s.sendError(nil, codeParseError, err.Error())
			continue
		}
		if err := s.dispatch(&msg); err != nil {
			return err
		}
	}
}

func (s *server) dispatch(msg *request) error {
	switch msg.Method {
	case "initialize":
		return s.handleInitialize(msg)
	case "initialized":
		return nil
	case "shutdown":
		return s.handleShutdown(msg)
	case "exit":
		return s.handleExit()
	case "textDocument/didOpen":
		return s.handleDidOpen(msg)
	case "textDocument/didChange":
		return s.handleDidChange(msg)
	case "textDocument/didClose":
		return s.handleDidClose(msg)
	case "textDocument/hover":
		return s.handleHover(msg)
	case "textDocument/definition":
		return s.handleDefinition(msg)
	case "textDocument/references":
		return s.handleReferences(msg)
	case "textDocument/documentSymbol":
		return s.handleDocumentSymbol(msg)
	case "$/cancelRequest", "workspace/didChangeConfiguration":
		return nil
	default:
		if msg.ID != nil {
			return s.sendError(msg.ID, codeMethodNotFound, fmt.Sprintf("unsupported method %q", msg.Method))
		}
		return nil
	}
}

// openProject loads the game under base. startup.txt may be in base or
// in a directory below it, and the game's URIs start with that directory.
// It reports whether startup.txt was found.
func (s *server) openProject(base string) bool {
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	var fsys fs.FS
	if u, err := url.Parse(base); err == nil && u.Scheme == "file" {
		fsys = s.openFS(filepath.FromSlash(u.Path))
	}

	found := false
	if fsys != nil {
		dir, err := findStartup(fsys)
		switch {
		case err != nil:
			s.log.Printf("%s: %v", base, err)
		case dir == ".":
			found = true
		default:
			sub, err := fs.Sub(fsys, dir)
			if err != nil {
				s.log.Print(err)
				break
			}
			fsys, base, found = sub, base+dir+"/", true
		}
	}

	config := choicescript.DefaultConfig()
	if fsys != nil {
		c, err := choicescript.LoadConfig(fsys, choicescript.ConfigFile)
		if err != nil {
			s.log.Print(err)
		} else {
			config = c
		}
	}

	s.fsys = fsys
	s.project = choicescript.NewProject(fsys, base, config)
	if !found {
		return false
	}
	if err := s.project.Load(context.Background()); err != nil {
		s.log.Print(err)
		return true
	}
	for _, name := range s.project.Missing() {
		s.log.Printf("scene list names %s, which does not exist", name)
	}
	return true
}

// findStartup returns the directory of the shallowest startup.txt in
// fsys. Hidden directories are skipped.
func findStartup(fsys fs.FS) (string, error) {
	best, depth := "", -1
	err := fs.WalkDir(fsys, ".", func(name string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if name != "." && strings.HasPrefix(d.Name(), ".") {
				return fs.SkipDir
			}
			return nil
		}
		if d.Name() != choicescript.StartupFile {
			return nil
		}
		dir := path.Dir(name)
		if n := strings.Count(name, "/"); depth < 0 || n < depth {
			best, depth = dir, n
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	if depth < 0 {
		return "", fmt.Errorf("no %s found: %w", choicescript.StartupFile, fs.ErrNotExist)
	}
	return best, nil
}

// Handlers

func (s *server) handleInitialize(msg *request) error {
	var p struct {
		RootURI string `json:"rootUri"`
	}
	if err := json.Unmarshal(msg.Params, &p); err != nil {
		return s.sendError(msg.ID, codeInvalidParams, err.Error())
	}

	const result = `{
		"capabilities": {
			"textDocumentSync": {"openClose": true, "change": 1},
			"hoverProvider": true,
			"referencesProvider": true,
			"definitionProvider": true,
			"documentSymbolProvider": true
		},
		"serverInfo": {"name": "cslsp"}
	}`
	if err := s.replyRaw(msg.ID, json.RawMessage(result)); err != nil {
		return err
	}

	if p.RootURI == "" {
		return nil
	}
	if !s.openProject(p.RootURI) {
		// Try again from the first file opened.
		s.project, s.fsys = nil, nil
		return nil
	}
	return s.publishAll(s.project.Documents())
}

func (s *server) handleShutdown(msg *request) error {
	s.shutdown = true
	return s.reply(msg.ID, nil)
}

func (s *server) handleExit() error {
	if s.shutdown {
		return exitError{0}
	}
	return exitError{1}
}

func (s *server) handleDidOpen(msg *request) error {
	var p struct {
		TextDocument struct {
			URI  string `json:"uri"`
			Text string `json:"text"`
		} `json:"textDocument"`
	}
	if err := json.Unmarshal(msg.Params, &p); err != nil {
		return nil
	}
	uri := p.TextDocument.URI
	if s.project == nil {
		s.openProject(uri[:strings.LastIndexByte(uri, '/')+1])
		if err := s.publishAll(s.project.Documents()); err != nil {
			return err
		}
	}
	return s.update(choicescript.NewDocument(uri, p.TextDocument.Text))
}

func (s *server) handleDidChange(msg *request) error {
	var p struct {
		TextDocument   textDocumentIdentifier `json:"textDocument"`
		ContentChanges []struct {
			Text string `json:"text"`
		} `json:"contentChanges"`
	}
	if err := json.Unmarshal(msg.Params, &p); err != nil {
		return nil
	}
	if s.project == nil || len(p.ContentChanges) == 0 {
		return nil
	}
	text := p.ContentChanges[len(p.ContentChanges)-1].Text
	return s.update(choicescript.NewDocument(p.TextDocument.URI, text))
}

// handleDidClose goes back to the saved copy of the file, if there is one.
func (s *server) handleDidClose(msg *request) error {
	var p struct {
		TextDocument textDocumentIdentifier `json:"textDocument"`
	}
	if err := json.Unmarshal(msg.Params, &p); err != nil {
		return nil
	}
	if s.project == nil {
		return nil
	}
	uri := p.TextDocument.URI
	name, inGame := strings.CutPrefix(uri, s.project.URI(""))
	if inGame && s.fsys != nil {
		if data, err := fs.ReadFile(s.fsys, name); err == nil {
			return s.update(choicescript.NewDocument(uri, string(data)))
		}
	}
	startup := s.project.Index.IsStartupFileURI(uri)
	s.project.Remove(uri)
	err := s.notify("textDocument/publishDiagnostics", publishParams{
		URI:         uri,
		Diagnostics: []choicescript.Diagnostic{},
	})
	if err != nil || !startup {
		return err
	}
	return s.publishAll(s.project.Documents())
}

func (s *server) handleHover(msg *request) error {
	if msg.ID == nil {
		return nil
	}
	sym, ok, err := s.symbolParams(msg)
	if err != nil || !ok {
		return err
	}
	if sym.kind != variableSymbol {
		return s.reply(msg.ID, nil)
	}
	def, ok := s.definition(sym)
	if !ok {
		return s.reply(msg.ID, nil)
	}
	command := "*temp"
	if s.project.Index.IsStartupFileURI(def.URI) {
		command = "*create"
	}
	text := fmt.Sprintf("```\n%s %s\n```\nCreated in %s on line %d.",
		command, sym.name, fileName(def.URI), def.Range.Start.Line+1)
	return s.reply(msg.ID, struct {
		Contents markupContent      `json:"contents"`
		Range    choicescript.Range `json:"range"`
	}{
		Contents: markupContent{Kind: "markdown", Value: text},
		Range:    sym.rng,
	})
}

func (s *server) handleDefinition(msg *request) error {
	if msg.ID == nil {
		return nil
	}
	sym, ok, err := s.symbolParams(msg)
	if err != nil || !ok {
		return err
	}
	def, ok := s.definition(sym)
	if !ok {
		return s.reply(msg.ID, nil)
	}
	return s.reply(msg.ID, def)
}

func (s *server) handleReferences(msg *request) error {
	if msg.ID == nil {
		return nil
	}
	var p struct {
		Context struct {
			IncludeDeclaration bool `json:"includeDeclaration"`
		} `json:"context"`
	}
	if err := json.Unmarshal(msg.Params, &p); err != nil {
		return s.sendError(msg.ID, codeInvalidParams, err.Error())
	}
	sym, ok, err := s.symbolParams(msg)
	if err != nil || !ok {
		return err
	}
	locs := []choicescript.Location{}
	if p.Context.IncludeDeclaration {
		if def, ok := s.definition(sym); ok {
			locs = append(locs, def)
		}
	}
	locs = append(locs, s.references(sym)...)
	return s.reply(msg.ID, locs)
}

func (s *server) handleDocumentSymbol(msg *request) error {
	if msg.ID == nil {
		return nil
	}
	var p struct {
		TextDocument textDocumentIdentifier `json:"textDocument"`
	}
	if err := json.Unmarshal(msg.Params, &p); err != nil {
		return s.sendError(msg.ID, codeInvalidParams, err.Error())
	}
	syms := []symbolInformation{}
	if s.project != nil {
		syms = documentSymbols(s.project.Index, p.TextDocument.URI)
	}
	return s.reply(msg.ID, syms)
}

// update indexes doc and publishes the diagnostics that change as a
// result.
func (s *server) update(doc *choicescript.Document) error {
	return s.publishAll(s.project.Update(doc))
}

func (s *server) publishAll(docs []*choicescript.Document) error {
	for _, doc := range docs {
		diags := s.project.Validate(doc.URI)
		if diags == nil {
			diags = []choicescript.Diagnostic{}
		}
		err := s.notify("textDocument/publishDiagnostics", publishParams{
			URI:         doc.URI,
			Diagnostics: diags,
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// symbolParams decodes the position of a request and finds the symbol
// there. If there is none it replies with null and reports false.
func (s *server) symbolParams(msg *request) (symbol, bool, error) {
	var p struct {
		TextDocument textDocumentIdentifier `json:"textDocument"`
		Position     choicescript.Position  `json:"position"`
	}
	if err := json.Unmarshal(msg.Params, &p); err != nil {
		return symbol{}, false, s.sendError(msg.ID, codeInvalidParams, err.Error())
	}
	if s.project != nil {
		if sym, ok := symbolAt(s.project.Index, p.TextDocument.URI, p.Position); ok {
			return sym, true, nil
		}
	}
	return symbol{}, false, s.reply(msg.ID, nil)
}

// fileName returns the last element of uri.
func fileName(uri string) string {
	return uri[strings.LastIndexByte(uri, '/')+1:]
}

// Symbols

type symbolKind int

const (
	variableSymbol symbolKind = iota
	labelSymbol
	sceneSymbol
	achievementSymbol
)

// symbol is a name under the cursor.
type symbol struct {
	kind symbolKind
	name string

	// uri is the document a label belongs to, or the document the
	// symbol was found in.
	uri string
	rng choicescript.Range
}

func contains(r choicescript.Range, p choicescript.Position) bool {
	return r.Contains(choicescript.Range{Start: p, End: p})
}

// symbolAt finds the variable, label, scene or achievement at p.
func symbolAt(idx *choicescript.Index, uri string, p choicescript.Position) (symbol, bool) {
	for name, locs := range idx.VariableReferences(uri) {
		for _, loc := range locs {
			if contains(loc.Range, p) {
				return symbol{variableSymbol, name, uri, loc.Range}, true
			}
		}
	}
	type created struct {
		kind symbolKind
		ids  choicescript.IdentifierIndex
	}
	all := []created{
		{variableSymbol, idx.LocalVariables(uri)},
		{labelSymbol, idx.Labels(uri)},
	}
	if idx.IsStartupFileURI(uri) {
		all = append(all,
			created{variableSymbol, idx.GlobalVariables()},
			created{achievementSymbol, idx.Achievements()},
		)
	}
	for _, c := range all {
		for name, loc := range c.ids {
			if loc.URI == uri && contains(loc.Range, p) {
				return symbol{c.kind, name, uri, loc.Range}, true
			}
		}
	}
	for _, e := range idx.FlowControlEvents(uri) {
		if e.SceneLocation != nil && contains(e.SceneLocation.Range, p) && !dynamic(e.Scene) {
			return symbol{sceneSymbol, e.Scene, uri, e.SceneLocation.Range}, true
		}
		if e.LabelLocation != nil && contains(e.LabelLocation.Range, p) && !dynamic(e.Label) {
			target := uri
			if e.Scene != "" {
				var ok bool
				if target, ok = idx.SceneURI(e.Scene); !ok {
					return symbol{}, false
				}
			}
			return symbol{labelSymbol, e.Label, target, e.LabelLocation.Range}, true
		}
	}
	for name, locs := range idx.AchievementReferences(uri) {
		for _, loc := range locs {
			if contains(loc.Range, p) {
				return symbol{achievementSymbol, name, uri, loc.Range}, true
			}
		}
	}
	return symbol{}, false
}

func dynamic(target string) bool {
	return strings.HasPrefix(target, "{")
}

// definition returns where sym is created.
func (s *server) definition(sym symbol) (choicescript.Location, bool) {
	idx := s.project.Index
	var loc choicescript.Location
	var ok bool
	switch sym.kind {
	case variableSymbol:
		if loc, ok = idx.LocalVariables(sym.uri)[sym.name]; !ok {
			loc, ok = idx.GlobalVariables()[sym.name]
		}
	case labelSymbol:
		loc, ok = idx.Labels(sym.uri)[sym.name]
	case sceneSymbol:
		var uri string
		if uri, ok = idx.SceneURI(sym.name); ok {
			_, ok = s.project.Document(uri)
			loc = choicescript.Location{URI: uri}
		}
	case achievementSymbol:
		loc, ok = idx.Achievements()[sym.name]
	}
	return loc, ok
}

// references returns every use of sym in the game.
func (s *server) references(sym symbol) []choicescript.Location {
	idx := s.project.Index
	switch sym.kind {
	case variableSymbol:
		return idx.References(sym.name)
	case achievementSymbol:
		return idx.AchievementReferencesTo(sym.name)
	}

	var locs []choicescript.Location
	for _, uri := range idx.Documents() {
		for _, e := range idx.FlowControlEvents(uri) {
			switch sym.kind {
			case sceneSymbol:
				if e.Scene == sym.name && e.SceneLocation != nil {
					locs = append(locs, *e.SceneLocation)
				}
			case labelSymbol:
				if e.Label != sym.name || e.LabelLocation == nil {
					continue
				}
				target := uri
				if e.Scene != "" {
					target, _ = idx.SceneURI(e.Scene)
				}
				if target == sym.uri {
					locs = append(locs, *e.LabelLocation)
				}
			}
		}
	}
	return locs
}

// documentSymbols lists the labels and variables created in uri, and the
// achievements too if it is the startup file.
func documentSymbols(idx *choicescript.Index, uri string) []symbolInformation {
	syms := []symbolInformation{}
	add := func(ids choicescript.IdentifierIndex, kind int) {
		for name, loc := range ids {
			if loc.URI == uri {
				syms = append(syms, symbolInformation{Name: name, Kind: kind, Location: loc})
			}
		}
	}
	add(idx.Labels(uri), kindNamespace)
	add(idx.LocalVariables(uri), kindVariable)
	if idx.IsStartupFileURI(uri) {
		add(idx.GlobalVariables(), kindVariable)
		add(idx.Achievements(), kindEvent)
	}
	sort.Slice(syms, func(i, j int) bool {
		return syms[i].Location.Range.Start.Compare(syms[j].Location.Range.Start) < 0
	})
	return syms
}

// Protocol I/O

func (s *server) readMessage() ([]byte, error) {
	var contentLen int
	for {
		line, err := s.r.ReadString('\n')
		if err != nil {
			return nil, err
		}
		line = strings.TrimRight(line, "\r\n")
		if line == "" {
			break
		}
		if k, v, ok := strings.Cut(line, ":"); ok && strings.ToLower(strings.TrimSpace(k)) == "content-length" {
			contentLen, _ = strconv.Atoi(strings.TrimSpace(v))
		}
	}
	if contentLen == 0 {
		return nil, fmt.Errorf("missing Content-Length")
	}
	data := make([]byte, contentLen)
	_, err := io.ReadFull(s.r, data)
	return data, err
}

func (s *server) writeMessage(data []byte) error {
	fmt.Fprintf(s.w, "Content-Length: %d\r\n\r\n", len(data))
	s.w.Write(data)
	return s.w.Flush()
}

func (s *server) reply(id json.RawMessage, result any) error {
	data, err := json.Marshal(struct {
		JSONRPC string          `json:"jsonrpc"`
		ID      json.RawMessage `json:"id"`
		Result  any             `json:"result"`
	}{JSONRPC: "2.0", ID: id, Result: result})
	if err != nil {
		return err
	}
	return s.writeMessage(data)
}

func (s *server) replyRaw(id json.RawMessage, result json.RawMessage) error {
	return s.reply(id, result)
}

func (s *server) sendError(id json.RawMessage, code int, message string) error {
	data, err := json.Marshal(struct {
		JSONRPC string          `json:"jsonrpc"`
		ID      json.RawMessage `json:"id"`
		Error   responseError   `json:"error"`
	}{
		JSONRPC: "2.0",
		ID:      id,
		Error:   responseError{Code: code, Message: message},
	})
	if err != nil {
		return err
	}
	return s.writeMessage(data)
}

func (s *server) notify(method string, params any) error {
	data, err := json.Marshal(struct {
		JSONRPC string `json:"jsonrpc"`
		Method  string `json:"method"`
		Params  any    `json:"params,omitempty"`
	}{JSONRPC: "2.0", Method: method, Params: params})
	if err != nil {
		return err
	}
	return s.writeMessage(data)
}

// LSP Protocol Types

type request struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

type responseError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type textDocumentIdentifier struct {
	URI string `json:"uri"`
}

type markupContent struct {
	Kind  string `json:"kind"`
	Value string `json:"value"`
}

type publishParams struct {
	URI         string                    `json:"uri"`
	Diagnostics []choicescript.Diagnostic `json:"diagnostics"`
}

type symbolInformation struct {
	Name     string                `json:"name"`
	Kind     int                   `json:"kind"`
	Location choicescript.Location `json:"location"`
}
