package lex

import (
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
)

func TestTokenizeCounts(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "cstparse.lex")
	defer teardown()

	lx, err := New()
	if err != nil {
		t.Fatal(err)
	}
	cases := []struct {
		input string
		want  int // not counting the trailing EOF token
	}{
		{`permit(principal, action, resource);`, 9},
		{`// a comment
permit(principal, action, resource);`, 9},
		{`1 + 2 * 3`, 5},
		{`"a string" 42`, 2},
	}
	for _, c := range cases {
		toks, err := lx.Tokenize(c.input)
		if err != nil {
			t.Fatalf("Tokenize(%q): %v", c.input, err)
		}
		got := len(toks) - 1 // drop EOF
		if got != c.want {
			t.Errorf("Tokenize(%q) produced %d tokens, want %d: %v", c.input, got, c.want, toks)
		}
		if toks[len(toks)-1].Type != EOF {
			t.Errorf("Tokenize(%q) did not end in EOF", c.input)
		}
	}
}

func TestReservedWordsClassifyAsKeywords(t *testing.T) {
	lx, err := New()
	if err != nil {
		t.Fatal(err)
	}
	toks, err := lx.Tokenize("principal has action")
	if err != nil {
		t.Fatal(err)
	}
	want := []Type{PRINCIPAL, HAS, ACTION, EOF}
	if len(toks) != len(want) {
		t.Fatalf("got %d tokens, want %d: %v", len(toks), len(want), toks)
	}
	for i, w := range want {
		if toks[i].Type != w {
			t.Errorf("token %d: got %s, want %s", i, toks[i].Type, w)
		}
	}
}

func TestSlotForms(t *testing.T) {
	lx, err := New()
	if err != nil {
		t.Fatal(err)
	}
	toks, err := lx.Tokenize("?principal ?resource ?foo")
	if err != nil {
		t.Fatal(err)
	}
	want := []Type{SLOT_PRINCIPAL, SLOT_RESOURCE, SLOT_OTHER, EOF}
	for i, w := range want {
		if toks[i].Type != w {
			t.Errorf("token %d: got %s, want %s", i, toks[i].Type, w)
		}
	}
	if toks[2].Lexeme != "?foo" {
		t.Errorf("SLOT_OTHER lexeme = %q, want ?foo", toks[2].Lexeme)
	}
}

func TestNumberOverflowIsFlaggedNotFatal(t *testing.T) {
	lx, err := New()
	if err != nil {
		t.Fatal(err)
	}
	toks, err := lx.Tokenize("99999999999999999999")
	if err != nil {
		t.Fatalf("Tokenize should not abort on numeric overflow: %v", err)
	}
	if toks[0].Type != NUMBER {
		t.Fatalf("expected a NUMBER token, got %s", toks[0].Type)
	}
	if toks[0].Err == nil {
		t.Error("expected Err to be set on an overflowing NUMBER token")
	}
}

func TestUnrecognizedByteIsALexicalError(t *testing.T) {
	lx, err := New()
	if err != nil {
		t.Fatal(err)
	}
	_, err = lx.Tokenize("principal $ action")
	if err == nil {
		t.Fatal("expected a lexical error for an unrecognized byte")
	}
	lerr, ok := err.(*Error)
	if !ok {
		t.Fatalf("expected *Error, got %T", err)
	}
	if lerr.Offset != 10 {
		t.Errorf("Offset = %d, want 10", lerr.Offset)
	}
}

func TestStringLiteralWithEscapedQuote(t *testing.T) {
	lx, err := New()
	if err != nil {
		t.Fatal(err)
	}
	toks, err := lx.Tokenize(`"a\"b"`)
	if err != nil {
		t.Fatal(err)
	}
	if toks[0].Type != STRING {
		t.Fatalf("expected STRING, got %s", toks[0].Type)
	}
	if toks[0].Lexeme != `"a\"b"` {
		t.Errorf("Lexeme = %q, want %q", toks[0].Lexeme, `"a\"b"`)
	}
}
