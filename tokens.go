package choicescript

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Token is a piece of text and the offset where it starts.
type Token struct {
	Text  string
	Index int
}

// TokenType classifies an expression token.
type TokenType int

const (
	NumberToken TokenType = iota
	StringToken
	BooleanNamedValueToken
	VariableToken
	VariableReferenceToken
	ParenthesesToken
	FunctionToken
	FunctionAndContentsToken
	OperatorToken
	NumericNamedOperatorToken
	BooleanNamedOperatorToken
	UnknownOperatorToken
	MultireplaceToken
)

var tokenTypeNames = [...]string{
	NumberToken:               "Number",
	StringToken:               "String",
	BooleanNamedValueToken:    "BooleanNamedValue",
	VariableToken:             "Variable",
	VariableReferenceToken:    "VariableReference",
	ParenthesesToken:          "Parentheses",
	FunctionToken:             "Function",
	FunctionAndContentsToken:  "FunctionAndContents",
	OperatorToken:             "Operator",
	NumericNamedOperatorToken: "NumericNamedOperator",
	BooleanNamedOperatorToken: "BooleanNamedOperator",
	UnknownOperatorToken:      "UnknownOperator",
	MultireplaceToken:         "Multireplace",
}

func (t TokenType) String() string {
	if t >= 0 && int(t) < len(tokenTypeNames) {
		return tokenTypeNames[t]
	}
	return fmt.Sprintf("TokenType(%d)", int(t))
}

// ExpressionToken is a classified token. Index is relative to the start of
// the expression's text.
type ExpressionToken struct {
	Text  string
	Index int
	Type  TokenType
}

func (t ExpressionToken) String() string {
	return fmt.Sprintf("%s(%q@%d)", t.Type, t.Text, t.Index)
}

// end returns the offset just past the token.
func (t ExpressionToken) end() int { return t.Index + len(t.Text) }

// Expression is a tokenized expression. It is not modified after
// construction.
type Expression struct {
	// Text is the expression's source.
	Text string

	// GlobalIndex is the offset of Text in the document.
	GlobalIndex int

	// Tokens lists the tokens in source order.
	Tokens []ExpressionToken

	// CombinedTokens is Tokens with each function name and the
	// parentheses that follow it merged into one FunctionAndContents
	// token.
	CombinedTokens []ExpressionToken

	// ParseErrors holds problems found while tokenizing.
	ParseErrors []Diagnostic

	doc *Document
}

// NewExpression tokenizes text, which starts at globalIndex in doc.
func NewExpression(text string, globalIndex int, doc *Document) *Expression {
	e := &Expression{Text: text, GlobalIndex: globalIndex, doc: doc}
	var errs []tokenError
	e.Tokens, errs = tokenize(text)
	e.CombinedTokens = combineTokens(e.Tokens)
	for _, err := range errs {
		e.ParseErrors = append(e.ParseErrors, newDiagnostic(Error, doc,
			globalIndex+err.start, globalIndex+err.end, err.message))
	}
	return e
}

// Slice returns a new expression made from the source text spanned by
// Tokens[start:end]. The text is tokenized again, so the result carries
// only the parse errors that belong to that span.
func (e *Expression) Slice(start, end int) *Expression {
	end = min(end, len(e.Tokens))
	if start >= end {
		return NewExpression("", e.GlobalIndex+len(e.Text), e.doc)
	}
	from := e.Tokens[start].Index
	to := e.Tokens[end-1].end()
	return NewExpression(e.Text[from:to], e.GlobalIndex+from, e.doc)
}

type tokenError struct {
	start, end int
	message    string
}

// tokenize splits text into classified tokens. It always consumes all of
// text; anything it can't classify becomes an UnknownOperator token.
func tokenize(text string) ([]ExpressionToken, []tokenError) {
	var (
		tokens []ExpressionToken
		errs   []tokenError
	)
	emit := func(start, end int, typ TokenType) int {
		tokens = append(tokens, ExpressionToken{Text: text[start:end], Index: start, Type: typ})
		return end
	}

	i := 0
	for i < len(text) {
		c := text[i]
		switch {
		case c == ' ' || c == '\t' || c == '\r' || c == '\n':
			i++

		case c == '"':
			end := closingQuote(text, i+1)
			if end < 0 {
				errs = append(errs, tokenError{i, len(text), "Missing close quote"})
				end = len(text)
			}
			i = emit(i, end, StringToken)

		case c == '(':
			i = emit(i, groupEnd(text, i, '(', ')'), ParenthesesToken)

		case c == '{':
			i = emit(i, groupEnd(text, i, '{', '}'), VariableReferenceToken)

		case c == '$' || c == '@':
			n := openerLength(text[i:], c)
			if n == 0 {
				i = emit(i, i+1, UnknownOperatorToken)
				break
			}
			typ := VariableReferenceToken
			if c == '@' {
				typ = MultireplaceToken
			}
			i = emit(i, groupEnd(text, i+n-1, '{', '}'), typ)

		case isDigit(c):
			end := i
			for end < len(text) && isDigit(text[end]) {
				end++
			}
			if end+1 < len(text) && text[end] == '.' && isDigit(text[end+1]) {
				end++
				for end < len(text) && isDigit(text[end]) {
					end++
				}
			}
			i = emit(i, end, NumberToken)

		case isWordByte(c):
			end := i
			for end < len(text) && isWordByte(text[end]) {
				end++
			}
			i = emit(i, end, wordType(text[i:end], strings.HasPrefix(text[end:], "(")))

		default:
			if op := operatorAt(text[i:]); op != "" {
				i = emit(i, i+len(op), OperatorToken)
				break
			}
			_, size := utf8.DecodeRuneInString(text[i:])
			i = emit(i, i+size, UnknownOperatorToken)
		}
	}
	return tokens, errs
}

// closingQuote returns the offset just past the first unescaped quote at
// or after start, or -1.
func closingQuote(text string, start int) int {
	for i := start; i < len(text); i++ {
		switch text[i] {
		case '\\':
			i++
		case '"':
			return i + 1
		}
	}
	return -1
}

// groupEnd returns the offset just past the delimiter that closes the group
// opened at text[open], or the end of text if the group is unterminated.
func groupEnd(text string, open int, openDelim, closeDelim byte) int {
	inner, ok := extractToMatchingDelimiter(text, openDelim, closeDelim, open+1)
	if !ok {
		return len(text)
	}
	return open + 1 + len(inner) + 1
}

// openerLength returns the length of a "${", "$!{", "$!!{" opener (or the
// "@" forms) at the start of s, or 0.
func openerLength(s string, sigil byte) int {
	if s == "" || s[0] != sigil {
		return 0
	}
	n := 1
	for n < len(s) && n < 3 && s[n] == '!' {
		n++
	}
	if n < len(s) && s[n] == '{' {
		return n + 1
	}
	return 0
}

func wordType(word string, beforeParen bool) TokenType {
	switch {
	case booleanNamedWords[word]:
		return BooleanNamedOperatorToken
	case numericNamedWords[word]:
		return NumericNamedOperatorToken
	case namedValues[word]:
		return BooleanNamedValueToken
	case beforeParen && functions[word]:
		return FunctionToken
	}
	return VariableToken
}

func operatorAt(s string) string {
	for _, op := range symbolicOperators {
		if strings.HasPrefix(s, op) {
			return op
		}
	}
	return ""
}

// combineTokens merges each function name with the parentheses that follow
// it.
func combineTokens(tokens []ExpressionToken) []ExpressionToken {
	combined := make([]ExpressionToken, 0, len(tokens))
	for i := 0; i < len(tokens); i++ {
		t := tokens[i]
		if t.Type == FunctionToken && i+1 < len(tokens) && tokens[i+1].Type == ParenthesesToken && tokens[i+1].Index == t.end() {
			t = ExpressionToken{Text: t.Text + tokens[i+1].Text, Index: t.Index, Type: FunctionAndContentsToken}
			i++
		}
		combined = append(combined, t)
	}
	return combined
}

// functionName returns the name of a Function or FunctionAndContents token.
func functionName(t ExpressionToken) string {
	name, _, _ := strings.Cut(t.Text, "(")
	return name
}

// Multireplace is a parsed @{test option|option...}.
type Multireplace struct {
	// Text is everything between the opener and the closing brace.
	Text string

	// Test is the value that selects an option. A parenthesized test
	// excludes the parentheses.
	Test Token

	// Body lists the options, trimmed of surrounding space.
	Body []Token

	// EndIndex is the offset just past the closing brace.
	EndIndex int
}

// TokenizeMultireplace splits the multireplace whose contents begin at
// start, just past its opener. Offsets in the result are relative to
// section. It reports false if the closing brace is missing.
func TokenizeMultireplace(section string, start int) (*Multireplace, bool) {
	if start < 0 || start > len(section) {
		return nil, false
	}
	var (
		test  Token
		after int
	)
	if strings.HasPrefix(section[start:], "(") {
		inner, ok := extractToMatchingDelimiter(section, '(', ')', start+1)
		if !ok {
			return nil, false
		}
		test = Token{Text: inner, Index: start + 1}
		after = start + 1 + len(inner) + 1
	} else {
		after = start
		for after < len(section) && isWordByte(section[after]) {
			after++
		}
		test = Token{Text: section[start:after], Index: start}
	}

	rest, ok := extractToMatchingDelimiter(section, '{', '}', after)
	if !ok {
		return nil, false
	}
	m := &Multireplace{
		Text:     section[start : after+len(rest)],
		Test:     test,
		EndIndex: after + len(rest) + 1,
	}
	offset := after
	for _, option := range strings.Split(rest, "|") {
		trimmed := strings.TrimLeft(option, " \t\r\n")
		m.Body = append(m.Body, Token{
			Text:  strings.TrimRight(trimmed, " \t\r\n"),
			Index: offset + len(option) - len(trimmed),
		})
		offset += len(option) + 1
	}
	return m, true
}
