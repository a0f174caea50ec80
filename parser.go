package choicescript

import (
	"fmt"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// ParserCallbacks receives what Parse finds, in document order.
type ParserCallbacks interface {
	// OnCommand is called for anything that looks like a *command, valid
	// or not.
	OnCommand(prefix, command, spacing, line string, commandLocation Location, state *ParsingState)
	OnGlobalVariableCreate(symbol string, location Location, state *ParsingState)
	OnLocalVariableCreate(symbol string, location Location, state *ParsingState)
	OnLabelCreate(symbol string, location Location, state *ParsingState)
	OnVariableReference(symbol string, location Location, state *ParsingState)
	OnFlowControlEvent(event FlowControlEvent, state *ParsingState)
	OnSceneDefinition(scenes []string, location Location, state *ParsingState)
	OnAchievementCreate(codename string, location Location, state *ParsingState)
	OnAchievementReference(codename string, location Location, state *ParsingState)
	OnParseError(d Diagnostic)
}

// FlowControlEvent is one *goto, *gosub, *goto_scene, *gosub_scene or
// *return.
type FlowControlEvent struct {
	Command         string
	CommandLocation Location
	Label           string
	Scene           string
	LabelLocation   *Location
	SceneLocation   *Location
}

// ParseElement names a construct that may enclose others.
type ParseElement int

const (
	CommandElement ParseElement = iota
	VariableReferenceElement    // replacements parse as references
	ParenthesesElement
	MultireplacementElement
)

// ParsingState is the state of one Parse call.
type ParsingState struct {
	Document  *Document
	Callbacks ParserCallbacks

	// CurrentCommand is the command being parsed, or "".
	CurrentCommand string

	stack []ParseElement

	// nested holds the document offsets of multireplaces already
	// reported as nested inside another.
	nested map[int]bool
}

// Within reports whether e encloses the construct being parsed.
func (s *ParsingState) Within(e ParseElement) bool {
	for _, x := range s.stack {
		if x == e {
			return true
		}
	}
	return false
}

func (s *ParsingState) push(e ParseElement) { s.stack = append(s.stack, e) }
func (s *ParsingState) pop()                { s.stack = s.stack[:len(s.stack)-1] }

func (s *ParsingState) location(start, end int) Location {
	return s.Document.Location(start, end)
}

// report sends an error spanning two document offsets.
func (s *ParsingState) report(start, end int, message string) {
	s.Callbacks.OnParseError(newDiagnostic(Error, s.Document, start, end, message))
}

// Parse scans doc and reports what it finds to callbacks.
func Parse(doc *Document, callbacks ParserCallbacks) {
	state := &ParsingState{Document: doc, Callbacks: callbacks}
	text := doc.Text()

	pos := 0
	for pos < len(text) {
		m := topLevelPattern.FindStringSubmatchIndex(text[pos:])
		if m == nil {
			break
		}
		for i := range m {
			if m[i] >= 0 {
				m[i] += pos
			}
		}
		group := func(n int) string {
			if m[2*n] < 0 {
				return ""
			}
			return text[m[2*n]:m[2*n+1]]
		}

		switch {
		case m[6] >= 0:
			// A "^" match only counts at a real line start.
			if m[0] > 0 && group(1) == "" && text[m[0]-1] != '\n' {
				pos = m[0] + 1
				continue
			}
			prefix := group(2)
			command := group(3)
			commandIndex := m[6]
			parseCommand(text, prefix, command, group(4), group(5), commandIndex, state)
			pos = m[1]
		case m[12] >= 0:
			pos = parseReplacement(text, m[13]-m[12], 0, m[13], state)
		case m[14] >= 0:
			pos = parseMultireplacement(text, m[15]-m[14], 0, m[15], state)
		}
		if pos <= m[0] {
			pos = m[0] + 1
		}
	}
}

// parseCommand parses a command line. commandIndex is the offset of the
// command name, just past the asterisk.
func parseCommand(text, prefix, command, spacing, line string, commandIndex int, state *ParsingState) {
	state.CurrentCommand = command
	state.push(CommandElement)
	defer func() {
		state.pop()
		state.CurrentCommand = ""
	}()

	commandEnd := commandIndex + len(command)
	state.Callbacks.OnCommand(prefix, command, spacing, line, state.location(commandIndex, commandEnd), state)

	if !validCommands[command] {
		msg := fmt.Sprintf("Command *%s isn't a valid ChoiceScript command.", command)
		if s := suggestCommand(command); s != "" {
			msg += fmt.Sprintf(" Did you mean *%s?", s)
		}
		state.report(commandIndex, commandEnd, msg)
		return
	}
	if argumentRequiringCommands[command] && strings.TrimSpace(line) == "" {
		state.report(commandIndex, commandEnd, fmt.Sprintf("Command *%s is missing its arguments.", command))
		return
	}
	if startupCommands[command] && !IsStartupFile(state.Document.URI) {
		state.report(commandIndex, commandEnd, fmt.Sprintf("Command *%s can only be used in startup.txt.", command))
	}

	lineIndex := commandEnd + len(spacing)

	switch {
	case symbolManipulationCommands[command]:
		parseSymbolManipulationCommand(command, line, lineIndex, state)
	case variableReferenceCommands[command]:
		parseVariableReferenceCommand(command, line, lineIndex, state)
	case flowControlCommands[command]:
		parseFlowControlCommand(command, commandIndex, line, lineIndex, state)
	case command == "scene_list":
		if next, ok := findLineEnd(text, commandIndex); ok {
			parseScenes(text, next, state)
		}
	case command == "stat_chart":
		if next, ok := findLineEnd(text, commandIndex); ok {
			parseStatChart(text, commandIndex, next, state)
		}
	case command == "achievement":
		if name := codenamePattern.FindString(line); name != "" {
			state.Callbacks.OnAchievementCreate(name, state.location(lineIndex, lineIndex+len(name)), state)
		}
	case command == "achieve":
		if name := codenamePattern.FindString(line); name != "" {
			state.Callbacks.OnAchievementReference(name, state.location(lineIndex, lineIndex+len(name)), state)
		}
	}
}

// suggestCommand returns the valid command closest to a misspelled one,
// or "" if none is close.
func suggestCommand(command string) string {
	const maxDistance = 2
	if len(command) <= maxDistance {
		return ""
	}
	best, bestDistance := "", maxDistance+1
	for _, c := range ValidCommands {
		if d := fuzzy.LevenshteinDistance(strings.ToLower(command), c); d < bestDistance {
			best, bestDistance = c, d
		}
	}
	return best
}

// parseExpression tokenizes and parses text found at globalIndex.
func parseExpression(text string, globalIndex int, state *ParsingState) *Expression {
	e := NewExpression(text, globalIndex, state.Document)
	parseTokenizedExpression(e, state)
	return e
}

// parseTokenizedExpression walks the tokens of e, descending into nested
// constructs and reporting variable references.
func parseTokenizedExpression(e *Expression, state *ParsingState) {
	for _, tok := range e.Tokens {
		global := e.GlobalIndex + tok.Index
		switch tok.Type {
		case VariableReferenceToken:
			open := strings.IndexByte(tok.Text, '{') + 1
			parseReference(tok.Text, open, global, open, state)
		case StringToken:
			parseString(tok.Text, global, 1, state)
		case ParenthesesToken:
			parseParentheses(tok.Text, global, 1, state)
		case MultireplaceToken:
			if state.nested[global] {
				continue
			}
			open := strings.IndexByte(tok.Text, '{') + 1
			parseMultireplacement(tok.Text, open, global, open, state)
		case VariableToken:
			state.Callbacks.OnVariableReference(tok.Text, state.location(global, global+len(tok.Text)), state)
		case UnknownOperatorToken:
			state.report(global, global+len(tok.Text), "Unknown operator")
		}
	}
	for _, d := range e.ParseErrors {
		state.Callbacks.OnParseError(d)
	}
}

// The parse functions below work on a section of the document: either the
// whole text, or a token's text. delta is the section's offset in the
// document and local is where the construct's contents begin in the
// section. Each returns the local offset at which scanning should resume.

// parseReference parses {expr}, ${expr}, $!{expr} or $!!{expr}.
// openLength is the length of the opener.
func parseReference(section string, openLength, delta, local int, state *ParsingState) int {
	state.push(VariableReferenceElement)
	defer state.pop()

	reference, ok := extractToMatchingDelimiter(section, '{', '}', local)
	switch {
	case !ok:
		end := lineEndOrLen(section, local)
		state.report(local-openLength+delta, end+delta, "Replacement is missing its }")
		return local
	case strings.TrimSpace(reference) == "":
		state.report(local-openLength+delta, local+len(reference)+1+delta, "Replacement is empty")
		return local
	}
	parseExpression(reference, local+delta, state)
	return local + len(reference) + 1
}

// parseReplacement parses a replacement in prose. It behaves exactly like
// a reference.
func parseReplacement(section string, openLength, delta, local int, state *ParsingState) int {
	return parseReference(section, openLength, delta, local, state)
}

// parseParentheses parses (expr).
func parseParentheses(section string, delta, local int, state *ParsingState) int {
	state.push(ParenthesesElement)
	defer state.pop()

	inner, ok := extractToMatchingDelimiter(section, '(', ')', local)
	if !ok {
		end := lineEndOrLen(section, local)
		state.report(local-1+delta, end+delta, "Missing close parentheses")
		return local
	}
	parseExpression(inner, local+delta, state)
	return local + len(inner) + 1
}

// parseString parses a quoted string whose contents begin at local, and
// any replacements or multireplaces inside it.
func parseString(section string, delta, local int, state *ParsingState) int {
	for local < len(section) {
		m := stringDelimiterPattern.FindStringIndex(section[local:])
		if m == nil {
			return len(section)
		}
		start, contents := local+m[0], local+m[1]
		switch section[start] {
		case '"':
			if start > 0 && section[start-1] == '\\' {
				local = contents
				continue
			}
			return contents
		case '$':
			local = parseReplacement(section, contents-start, delta, contents, state)
		case '@':
			local = parseMultireplacement(section, contents-start, delta, contents, state)
		}
	}
	return local
}

// parseBareString treats section[start:end] as a string without quotes:
// it parses the replacements and multireplaces inside it.
func parseBareString(section string, delta, start, end int, state *ParsingState) {
	sub := section[:end]
	local := start
	for local < len(sub) {
		m := bareStringPattern.FindStringIndex(sub[local:])
		if m == nil {
			return
		}
		opener, contents := local+m[0], local+m[1]
		if sub[opener] == '$' {
			local = parseReplacement(sub, contents-opener, delta, contents, state)
		} else {
			local = parseMultireplacement(sub, contents-opener, delta, contents, state)
		}
	}
}

// parseMultireplacement parses @{test option|option...} and its @! and
// @!! forms.
func parseMultireplacement(section string, openLength, delta, local int, state *ParsingState) int {
	state.push(MultireplacementElement)
	defer state.pop()

	m, ok := TokenizeMultireplace(section, local)
	if !ok {
		end := lineEndOrLen(section, local)
		state.report(local-openLength+delta, end+delta, "Multireplace is missing its }")
		return local
	}

	if locs := multiStartPattern.FindAllStringIndex(m.Text, -1); locs != nil {
		loc := locs[0]
		start := local + loc[0]
		end := start + len(m.Text) - loc[0]
		if contents, ok := extractToMatchingDelimiter(section, '{', '}', local+loc[1]); ok {
			end = local + loc[1] + len(contents) + 1
		}
		state.report(start+delta, end+delta, "Multireplaces cannot be nested")
		if state.nested == nil {
			state.nested = make(map[int]bool)
		}
		for _, l := range locs {
			state.nested[local+l[0]+delta] = true
		}
	}

	switch {
	case strings.TrimSpace(m.Test.Text) == "":
		state.report(local-openLength+delta, m.EndIndex+delta, "Multireplace is empty")
		return local
	case len(m.Body) == 0 || (len(m.Body) == 1 && m.Body[0].Text == ""):
		state.report(m.Test.Index+len(m.Test.Text)+delta, m.EndIndex+delta, "Multireplace has no options")
		return local
	case len(m.Body) == 1:
		option := m.Body[0]
		state.report(option.Index+len(option.Text)+delta, m.EndIndex+delta,
			"Multireplace must have at least two options separated by |")
		return local
	}

	parseExpression(m.Test.Text, m.Test.Index+delta, state)
	for _, option := range m.Body {
		// Nesting is already reported; blank out nested openers so the
		// options parse as plain prose.
		text := multiStartPattern.ReplaceAllStringFunc(option.Text, func(s string) string {
			return strings.Repeat(" ", len(s))
		})
		parseBareString(text, option.Index+delta, 0, len(text), state)
	}
	return m.EndIndex
}

func lineEndOrLen(section string, start int) int {
	if end, ok := findLineEnd(section, start); ok {
		return end
	}
	return len(section)
}

// parseSymbolManipulationCommand parses a command that creates or
// manipulates a symbol. line holds the rest of the command's line and is
// not blank.
func parseSymbolManipulationCommand(command, line string, lineIndex int, state *ParsingState) {
	switch command {
	case "params":
		parseParams(line, lineIndex, state)
		return
	case "set":
		parseSet(line, lineIndex, state)
		return
	}

	m := symbolPattern.FindStringSubmatchIndex(line)
	if m == nil {
		return
	}
	symbol := line[m[2]:m[3]]
	symbolStart := lineIndex + m[2]
	symbolLocation := state.location(symbolStart, symbolStart+len(symbol))
	var (
		expression      string
		expressionIndex int
		hasExpression   = m[6] >= 0
	)
	if hasExpression {
		expression = line[m[6]:m[7]]
		expressionIndex = lineIndex + m[6]
	}

	switch command {
	case "create":
		state.Callbacks.OnGlobalVariableCreate(symbol, symbolLocation, state)
		if !hasExpression {
			end := symbolStart + len(symbol)
			state.report(end, end, "Missing value to set the variable to")
			return
		}
		e := parseExpression(expression, expressionIndex, state)
		validateValueSettingExpression(e, state)
	case "temp":
		state.Callbacks.OnLocalVariableCreate(symbol, symbolLocation, state)
		if hasExpression {
			e := parseExpression(expression, expressionIndex, state)
			validateValueSettingExpression(e, state)
		}
	case "label":
		state.Callbacks.OnLabelCreate(symbol, symbolLocation, state)
	case "delete", "rand", "input_text", "input_number":
		state.Callbacks.OnVariableReference(symbol, symbolLocation, state)
	default:
		panic(fmt.Sprintf("internal error: unexpected command %q in parseSymbolManipulationCommand", command))
	}
}

// parseParams creates a local variable for each word after *params.
func parseParams(line string, lineIndex int, state *ParsingState) {
	for _, m := range wordPattern.FindAllStringIndex(line, -1) {
		start := lineIndex + m[0]
		state.Callbacks.OnLocalVariableCreate(line[m[0]:m[1]], state.location(start, lineIndex+m[1]), state)
	}
}

// parseSet parses "*set variable value".
func parseSet(line string, lineIndex int, state *ParsingState) {
	e := NewExpression(line, lineIndex, state.Document)
	if len(e.Tokens) == 0 {
		state.report(lineIndex, lineIndex, "Missing variable name")
		return
	}

	first := e.Tokens[0]
	if first.Type != VariableToken && first.Type != VariableReferenceToken {
		state.report(lineIndex+first.Index, lineIndex+first.end(), "Not a variable or variable reference")
	} else {
		parseTokenizedExpression(e.Slice(0, 1), state)
	}

	value := e.Slice(1, len(e.Tokens))
	if len(value.Tokens) == 0 {
		end := lineIndex + first.end()
		state.report(end, end, "Missing value to set the variable to")
		return
	}
	parseTokenizedExpression(value, state)
	validateValueSettingExpression(value, state)
}

// parseVariableReferenceCommand parses the condition of *if and its kin.
func parseVariableReferenceCommand(command, line string, lineIndex int, state *ParsingState) {
	if command == "if" || command == "selectable_if" {
		// Drop the #option text of an inline choice.
		line, _, _ = strings.Cut(line, "#")
	}
	e := parseExpression(line, lineIndex, state)
	validateConditionExpression(e, state)
}

// parseFlowControlCommand parses the targets of a jump.
func parseFlowControlCommand(command string, commandIndex int, line string, lineIndex int, state *ParsingState) {
	event := FlowControlEvent{
		Command:         command,
		CommandLocation: state.location(commandIndex, commandIndex+len(command)),
	}

	if command != "return" {
		first, _ := extractTokenAtIndex(line, 0, '{', '}', "-")
		var second, spacing string
		if first != "" {
			spacing = leadingSpace(line[len(first):])
			if spacing != "" {
				second, _ = extractTokenAtIndex(line, len(first)+len(spacing), '{', '}', "")
			}
		}

		if strings.HasPrefix(first, "{") {
			parseExpression(first[1:len(first)-1], lineIndex+1, state)
		}
		if strings.HasPrefix(second, "{") {
			parseExpression(second[1:len(second)-1], lineIndex+len(first)+len(spacing)+1, state)
		}

		if strings.HasSuffix(command, "_scene") {
			event.Scene = first
			loc := state.location(lineIndex, lineIndex+len(first))
			event.SceneLocation = &loc
			if second != "" {
				event.Label = second
				start := lineIndex + len(first) + len(spacing)
				loc := state.location(start, start+len(second))
				event.LabelLocation = &loc
			}
		} else {
			event.Label = first
			loc := state.location(lineIndex, lineIndex+len(first))
			event.LabelLocation = &loc
		}
	}

	state.Callbacks.OnFlowControlEvent(event, state)
}

// parseScenes parses the indented list after *scene_list, which starts at
// start. The list ends at the first line indented differently from the
// first entry.
func parseScenes(text string, start int, state *ParsingState) {
	var (
		scenes  []string
		padding string
	)
	lineStart := start
	for lineStart < len(text) {
		lineEnd := lineEndOrLen(text, lineStart)
		m := scenePattern.FindStringSubmatch(text[lineStart:lineEnd])
		if m == nil || (scenes != nil && m[1] != padding) {
			break
		}
		padding = m[1]
		scenes = append(scenes, m[3])
		lineStart = lineEnd
	}
	if scenes == nil {
		return
	}

	startPos := state.Document.PositionAt(start)
	loc := Location{
		URI: state.Document.URI,
		Range: Range{
			Start: startPos,
			End:   Position{Line: startPos.Line + len(scenes)},
		},
	}
	state.Callbacks.OnSceneDefinition(scenes, loc, state)
}

// parseStatChart parses the indented block after *stat_chart.
// commandIndex is the offset of "stat_chart" and contentStart the offset
// of the next line.
func parseStatChart(text string, commandIndex, contentStart int, state *ParsingState) {
	padding := ""
	lineStart := contentStart
	for lineStart < len(text) {
		lineEnd := lineEndOrLen(text, lineStart)
		m := statPattern.FindStringSubmatch(text[lineStart:lineEnd])
		if m == nil {
			break
		}
		switch {
		case padding == "":
			padding = m[1]
		case len(m[1]) < len(padding):
			// The chart is over.
		case m[1] != padding:
			state.report(lineStart, lineEnd, "Line is indented too far.")
		}
		if padding != m[1] {
			break
		}

		command, spacing, remainder := m[2], m[3], m[4]
		commandStart := lineStart + len(padding)
		next := lineEnd

		if !contains(statChartCommands, command) {
			state.report(commandStart, commandStart+len(command),
				"Must be one of "+strings.Join(statChartCommands, ", "))
			lineStart = next
			continue
		}

		if strings.TrimSpace(remainder) == "" {
			state.report(commandStart, commandStart+len(command), "Missing variable after "+command)
		} else {
			remainderStart := commandStart + len(command) + len(spacing)
			variable, ok := extractTokenAtIndex(text, remainderStart, '{', '}', "")
			switch {
			case !ok:
				state.report(remainderStart, remainderStart, "Not a valid variable.")
			case variable[0] == '{':
				parseExpression(variable[1:len(variable)-1], remainderStart+1, state)
			default:
				state.Callbacks.OnVariableReference(variable,
					state.location(remainderStart, remainderStart+len(variable)), state)
			}
		}

		if statChartBlockCommands[command] {
			// Consume the sub-indented lines that label the pair.
			for next < len(text) {
				end := lineEndOrLen(text, next)
				if len(leadingSpace(text[next:end])) <= len(padding) {
					break
				}
				next = end
			}
		}
		lineStart = next
	}

	if lineStart == contentStart {
		state.report(commandIndex-1, commandIndex+len("stat_chart"), "*stat_chart must have at least one stat")
	}
}

func contains(list []string, s string) bool {
	for _, x := range list {
		if x == s {
			return true
		}
	}
	return false
}

func isNumberCompatible(t ExpressionToken) bool {
	switch t.Type {
	case FunctionToken, FunctionAndContentsToken:
		return numberFunctions[functionName(t)]
	case NumberToken, VariableReferenceToken, VariableToken, ParenthesesToken:
		return true
	}
	return false
}

func isBooleanCompatible(t ExpressionToken) bool {
	switch t.Type {
	case FunctionToken, FunctionAndContentsToken:
		return booleanFunctions[functionName(t)]
	case BooleanNamedValueToken, VariableReferenceToken, VariableToken, ParenthesesToken:
		return true
	}
	return false
}

func isStringCompatible(t ExpressionToken) bool {
	switch t.Type {
	case StringToken, VariableReferenceToken, VariableToken, ParenthesesToken:
		return true
	}
	return false
}

func isAnyOperator(t ExpressionToken) bool {
	switch t.Type {
	case OperatorToken, BooleanNamedOperatorToken, NumericNamedOperatorToken:
		return true
	}
	return false
}

// validateValueSettingExpression checks the value given to *set, *create
// or *temp. A value is a literal, a parenthesized expression, one
// operation on two operands, or an operator and operand that modify the
// variable's current value ("*set strength +3").
func validateValueSettingExpression(e *Expression, state *ParsingState) {
	tokens := e.CombinedTokens
	if len(tokens) == 0 {
		return
	}
	g := e.GlobalIndex
	last := tokens[len(tokens)-1]
	reportToken := func(t ExpressionToken, msg string) {
		state.report(g+t.Index, g+t.end(), msg)
	}
	reportAfter := func(t ExpressionToken, msg string) {
		state.report(g+t.end(), g+t.end(), msg)
	}

	switch tokens[0].Type {
	case OperatorToken:
		switch {
		case len(tokens) > 2:
			state.report(g+tokens[2].Index, g+last.end(), "Too many elements - are you missing parentheses?")
		case len(tokens) == 1:
			reportAfter(tokens[0], "Missing number after the operator")
		case !isNumberCompatible(tokens[1]):
			reportToken(tokens[1], "Not a number, variable, or variable reference")
		}

	case NumberToken, BooleanNamedValueToken, VariableToken, VariableReferenceToken,
		ParenthesesToken, StringToken, FunctionAndContentsToken, FunctionToken:
		if len(tokens) == 1 {
			return
		}
		if len(tokens) > 3 {
			state.report(g+tokens[3].Index, g+last.end(), "Too many elements - are you missing parentheses?")
		}
		switch {
		case !isAnyOperator(tokens[1]):
			reportToken(tokens[1], "Missing operator like + or -")
		case len(tokens) < 3:
			reportAfter(tokens[1], "Missing number after the operator")
		case tokens[0].Type == NumberToken:
			if !numberSetOperators[tokens[1].Text] {
				reportToken(tokens[1], "Operator isn't allowed for numbers")
			} else if !isNumberCompatible(tokens[2]) {
				reportToken(tokens[2], "Must be a number, variable, function, or parentheses")
			}
		case tokens[0].Type == StringToken:
			if !stringSetOperators[tokens[1].Text] {
				reportToken(tokens[1], "Operator isn't allowed for strings")
			} else if !isStringCompatible(tokens[2]) {
				reportToken(tokens[2], "Must be a string, variable, function, or parentheses")
			}
		}

	case UnknownOperatorToken:
		// Reported while parsing.

	default:
		reportToken(tokens[0], "Must be a string, variable, or parentheses")
	}
}

// validateConditionExpression checks the condition of *if and its kin. A
// condition is a boolean value, not(), a parenthesized expression or two
// of those joined by "and" or "or".
func validateConditionExpression(e *Expression, state *ParsingState) {
	tokens := e.CombinedTokens
	if len(tokens) == 0 {
		return
	}
	g := e.GlobalIndex
	last := tokens[len(tokens)-1]
	reportToken := func(t ExpressionToken, msg string) {
		state.report(g+t.Index, g+t.end(), msg)
	}

	switch tokens[0].Type {
	case FunctionAndContentsToken:
		if !strings.HasPrefix(tokens[0].Text, "not") {
			reportToken(tokens[0], "Only boolean functions like not() are allowed")
		}
		fallthrough
	case BooleanNamedValueToken, VariableReferenceToken, VariableToken, ParenthesesToken:
		if len(tokens) == 1 {
			return
		}
		if len(tokens) > 3 {
			state.report(g+tokens[3].Index, g+last.end(), "Too many elements - are you missing parentheses?")
		}
		switch {
		case tokens[1].Type != BooleanNamedOperatorToken:
			reportToken(tokens[1], "Missing boolean comparison like 'and' or 'or'")
		case len(tokens) < 3:
			state.report(g+tokens[1].end(), g+tokens[1].end(), "Missing value after the boolean comparison")
		case tokens[2].Type == FunctionAndContentsToken:
			if !strings.HasPrefix(tokens[2].Text, "not") {
				reportToken(tokens[2], "Only boolean functions like not() are allowed")
			}
		case !isBooleanCompatible(tokens[2]):
			reportToken(tokens[2], "Must be true, false, variable, not(), reference, or parentheses")
		}

	case FunctionToken:
		// A function missing its arguments; reported elsewhere.

	default:
		reportToken(tokens[0], "Must be true, false, variable, not(), reference, or parentheses")
	}
}
