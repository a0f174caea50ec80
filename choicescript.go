// Package choicescript scans, indexes and validates ChoiceScript projects.
//
// ChoiceScript is a scripting language for interactive fiction. A game is a
// set of scene files: plain prose interleaved with commands that start a line
// with an asterisk.
//
//	*temp gold 10
//	*label market
//	You have ${gold} coins.
//	*if gold > 5
//		*goto buy
//
// Prose may embed replacements and multireplaces:
//
//	${name}                  replacement
//	$!{name}, $!!{name}      capitalized replacement
//	@{strong mighty|puny}    multireplace: picks an option by the test value
//
// The startup file, startup.txt, is special. It creates the global variables
// (*create), lists the scenes that make up the game (*scene_list) and
// declares achievements (*achievement).
//
// # Parsing
//
// [Parse] walks a [Document] once, left to right, and reports what it finds
// to a [ParserCallbacks] implementation: commands, variable and label
// creations, variable references, flow-control jumps, scene lists,
// achievements and syntax problems. No tree is built. Syntax problems are
// reported through [ParserCallbacks.OnParseError] and parsing continues.
//
// Expressions inside commands and replacements are split into typed tokens
// by [NewExpression]. Multireplaces are split by [TokenizeMultireplace].
//
// # Indexing
//
// An [Indexer] is the usual [ParserCallbacks]. It collects one document's
// symbols into a [DocumentIndex], which [Index.ReplaceDocument] publishes
// into the project-wide [Index]. A document's entries are always replaced
// wholesale, never merged:
//
//	index := choicescript.NewIndex()
//	doc := choicescript.NewDocument("file:///game/startup.txt", text)
//	choicescript.UpdateProjectIndex(doc, true, index)
//
// Global variables, the scene list and achievements belong to the startup
// document and change only when it is reindexed. When that happens every
// other document has to be validated again; [Project.Update] reports which.
//
// # Validation
//
// [Validator.Validate] combines a document's parse errors with semantic
// checks against the index:
//
//   - variables referenced before they are created, or never created
//   - *goto, *gosub, *goto_scene and *gosub_scene targets that don't exist
//   - "..." and "--" where the Choice of Games style guide wants "…" and "—"
//   - commands that appear in the middle of a line
//
// Variables created by *temp inside a subroutine count as created at the
// *gosub that calls it, so a caller may use them after the call.
//
// # Positions
//
// All scanning works in byte offsets into the document text. A [Document]
// converts offsets to zero-based line and character positions exactly once,
// when a [Location] or [Diagnostic] is built. Characters are counted in
// UTF-16 code units, as language servers expect.
package choicescript
