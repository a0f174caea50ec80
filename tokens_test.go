package choicescript

import (
	"strings"
	"testing"

	"kr.dev/diff"
)

func tok(text string, index int, typ TokenType) ExpressionToken {
	return ExpressionToken{Text: text, Index: index, Type: typ}
}

func TestTokenize(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []ExpressionToken
	}{
		{
			name: "arithmetic",
			text: "strength + 3.5",
			want: []ExpressionToken{
				tok("strength", 0, VariableToken),
				tok("+", 9, OperatorToken),
				tok("3.5", 11, NumberToken),
			},
		},
		{
			name: "longest operator wins",
			text: "a>=b %+ 10",
			want: []ExpressionToken{
				tok("a", 0, VariableToken),
				tok(">=", 1, OperatorToken),
				tok("b", 3, VariableToken),
				tok("%+", 5, OperatorToken),
				tok("10", 8, NumberToken),
			},
		},
		{
			name: "named operators and values",
			text: "true and not(b) or x modulo 2",
			want: []ExpressionToken{
				tok("true", 0, BooleanNamedValueToken),
				tok("and", 5, BooleanNamedOperatorToken),
				tok("not", 9, FunctionToken),
				tok("(b)", 12, ParenthesesToken),
				tok("or", 16, BooleanNamedOperatorToken),
				tok("x", 19, VariableToken),
				tok("modulo", 21, NumericNamedOperatorToken),
				tok("2", 28, NumberToken),
			},
		},
		{
			name: "function name without parentheses is a variable",
			text: "round + 1",
			want: []ExpressionToken{
				tok("round", 0, VariableToken),
				tok("+", 6, OperatorToken),
				tok("1", 8, NumberToken),
			},
		},
		{
			name: "strings with escaped quotes",
			text: `"say \"hi\"" & name`,
			want: []ExpressionToken{
				tok(`"say \"hi\""`, 0, StringToken),
				tok("&", 13, OperatorToken),
				tok("name", 15, VariableToken),
			},
		},
		{
			name: "nested parentheses",
			text: "((a + b) * c)",
			want: []ExpressionToken{
				tok("((a + b) * c)", 0, ParenthesesToken),
			},
		},
		{
			name: "references",
			text: "{a} ${b} $!{c} $!!{d}",
			want: []ExpressionToken{
				tok("{a}", 0, VariableReferenceToken),
				tok("${b}", 4, VariableReferenceToken),
				tok("$!{c}", 9, VariableReferenceToken),
				tok("$!!{d}", 15, VariableReferenceToken),
			},
		},
		{
			name: "multireplace",
			text: "@{x a|b} & @!{y c|d}",
			want: []ExpressionToken{
				tok("@{x a|b}", 0, MultireplaceToken),
				tok("&", 9, OperatorToken),
				tok("@!{y c|d}", 11, MultireplaceToken),
			},
		},
		{
			name: "unknown operators",
			text: "a ^ $ b",
			want: []ExpressionToken{
				tok("a", 0, VariableToken),
				tok("^", 2, UnknownOperatorToken),
				tok("$", 4, UnknownOperatorToken),
				tok("b", 6, VariableToken),
			},
		},
		{
			name: "unterminated group runs to the end",
			text: "(a + b",
			want: []ExpressionToken{
				tok("(a + b", 0, ParenthesesToken),
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, errs := tokenize(tt.text)
			if len(errs) > 0 {
				t.Errorf("unexpected errors: %v", errs)
			}
			diff.Test(t, t.Errorf, got, tt.want)
		})
	}
}

func TestExpressionMissingCloseQuote(t *testing.T) {
	doc := NewDocument("file:///game/intro.txt", `*set name "Bob`)
	e := NewExpression(`"Bob`, 10, doc)
	if len(e.Tokens) != 1 || e.Tokens[0].Type != StringToken {
		t.Fatalf("Tokens = %v, want one string", e.Tokens)
	}
	if len(e.ParseErrors) != 1 {
		t.Fatalf("ParseErrors = %v, want one", e.ParseErrors)
	}
	d := e.ParseErrors[0]
	if d.Message != "Missing close quote" {
		t.Errorf("Message = %q", d.Message)
	}
	want := Range{Start: Position{0, 10}, End: Position{0, 14}}
	if d.Range != want {
		t.Errorf("Range = %+v, want %+v", d.Range, want)
	}
}

func TestCombinedTokens(t *testing.T) {
	e := NewExpression("not(a) and round(b) or not (c)", 0, NewDocument("x.txt", ""))
	var got []string
	for _, tk := range e.CombinedTokens {
		got = append(got, tk.Type.String()+":"+tk.Text)
	}
	want := []string{
		"FunctionAndContents:not(a)",
		"BooleanNamedOperator:and",
		"FunctionAndContents:round(b)",
		"BooleanNamedOperator:or",
		"Variable:not",
		"Parentheses:(c)",
	}
	diff.Test(t, t.Errorf, got, want)

	if n := functionName(e.CombinedTokens[2]); n != "round" {
		t.Errorf("functionName = %q, want round", n)
	}
}

func TestExpressionSlice(t *testing.T) {
	doc := NewDocument("x.txt", "*set gold + 10")
	e := NewExpression("gold + 10", 5, doc)

	s := e.Slice(1, len(e.Tokens))
	if s.Text != "+ 10" || s.GlobalIndex != 10 {
		t.Errorf("Slice(1, n) = %q at %d, want %q at 10", s.Text, s.GlobalIndex, "+ 10")
	}
	diff.Test(t, t.Errorf, s.Tokens, []ExpressionToken{
		tok("+", 0, OperatorToken),
		tok("10", 2, NumberToken),
	})

	first := e.Slice(0, 1)
	if first.Text != "gold" || first.GlobalIndex != 5 {
		t.Errorf("Slice(0, 1) = %q at %d", first.Text, first.GlobalIndex)
	}

	empty := NewExpression("gold", 5, doc).Slice(1, 1)
	if len(empty.Tokens) != 0 || empty.GlobalIndex != 9 {
		t.Errorf("empty slice = %v at %d, want no tokens at 9", empty.Tokens, empty.GlobalIndex)
	}
}

func TestTokenizeMultireplace(t *testing.T) {
	tests := []struct {
		name    string
		section string
		want    *Multireplace
	}{
		{
			name:    "bare test",
			section: "variable yes | no} extra content",
			want: &Multireplace{
				Text:     "variable yes | no",
				Test:     Token{Text: "variable", Index: 0},
				Body:     []Token{{"yes", 9}, {"no", 15}},
				EndIndex: 18,
			},
		},
		{
			name:    "parenthesized test",
			section: "(var1 + var2) yes | no} extra content",
			want: &Multireplace{
				Text:     "(var1 + var2) yes | no",
				Test:     Token{Text: "var1 + var2", Index: 1},
				Body:     []Token{{"yes", 14}, {"no", 20}},
				EndIndex: 23,
			},
		},
		{
			name:    "three options",
			section: "variable yes | no | maybe } extra content",
			want: &Multireplace{
				Text:     "variable yes | no | maybe ",
				Test:     Token{Text: "variable", Index: 0},
				Body:     []Token{{"yes", 9}, {"no", 15}, {"maybe", 20}},
				EndIndex: 27,
			},
		},
		{
			name:    "nested braces in an option",
			section: "x a ${b}|c}",
			want: &Multireplace{
				Text:     "x a ${b}|c",
				Test:     Token{Text: "x", Index: 0},
				Body:     []Token{{"a ${b}", 2}, {"c", 9}},
				EndIndex: 11,
			},
		},
		{
			name:    "empty",
			section: "}",
			want: &Multireplace{
				Text:     "",
				Test:     Token{Text: "", Index: 0},
				Body:     []Token{{"", 0}},
				EndIndex: 1,
			},
		},
		{
			name:    "missing close brace",
			section: "variable yes | no",
		},
		{
			name:    "missing close parenthesis",
			section: "(a yes | no}",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := TokenizeMultireplace(tt.section, 0)
			if ok != (tt.want != nil) {
				t.Fatalf("ok = %v", ok)
			}
			diff.Test(t, t.Errorf, got, tt.want)
		})
	}
}

func TestTokenizeMultireplaceOffset(t *testing.T) {
	text := "You are @{strong mighty|puny}."
	start := strings.Index(text, "{") + 1
	m, ok := TokenizeMultireplace(text, start)
	if !ok {
		t.Fatal("not ok")
	}
	if m.Test.Text != "strong" || m.Test.Index != start {
		t.Errorf("Test = %+v", m.Test)
	}
	if got := text[m.EndIndex:]; got != "." {
		t.Errorf("text after EndIndex = %q, want %q", got, ".")
	}
	if got := text[m.Body[1].Index:][:len("puny")]; got != "puny" {
		t.Errorf("second option at %d is %q", m.Body[1].Index, got)
	}
}

func FuzzTokenize(f *testing.F) {
	f.Add("strength + 3")
	f.Add(`"unterminated`)
	f.Add("(a + (b * c)")
	f.Add("${x} @{y a|b} $!!{")
	f.Add("not(a) and {b}")
	f.Fuzz(func(t *testing.T, text string) {
		tokens, errs := tokenize(text)
		last := -1
		for _, tk := range tokens {
			if tk.Index <= last {
				t.Fatalf("token %v does not advance past %d", tk, last)
			}
			if tk.Text == "" {
				t.Fatalf("empty token at %d", tk.Index)
			}
			if text[tk.Index:tk.end()] != tk.Text {
				t.Fatalf("token %v does not match its text", tk)
			}
			last = tk.end() - 1
		}
		for _, e := range errs {
			if e.start < 0 || e.end > len(text) || e.start > e.end {
				t.Fatalf("error span %d..%d outside %d bytes", e.start, e.end, len(text))
			}
		}
		TokenizeMultireplace(text, 0)
	})
}
