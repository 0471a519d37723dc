package lex

import (
	"fmt"
	"strconv"

	"github.com/npillmayer/schuko/tracing"
	"github.com/timtadh/lexmachine"
	"github.com/timtadh/lexmachine/machines"
)

// tracer traces with key 'cstparse.lex', the same package-scoped-tracer
// idiom gorgo's own scanner packages use.
func tracer() tracing.Trace {
	return tracing.Select("cstparse.lex")
}

// Error is a lexical error: an unrecognized byte, or an unterminated
// string literal. It carries a single-byte (or single-token) span.
type Error struct {
	Offset  uint64
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("lex error at byte %d: %s", e.Offset, e.Message)
}

// buildLexer compiles the DFA once. Rule order matters only for the
// punctuation literals below, since keyword-vs-identifier classification
// happens inside the IDENT action rather than through competing rules —
// that sidesteps any longest-match/priority ambiguity between a keyword
// literal rule and the generic identifier rule.
func buildLexer() (*lexmachine.Lexer, error) {
	l := lexmachine.NewLexer()

	l.Add([]byte(`//[^\n]*`), skip)
	l.Add([]byte(`( |\t|\n|\r)+`), skip)

	l.Add([]byte(`"(\\.|[^"\\])*"`), stringAction)
	l.Add([]byte(`[0-9]+`), numberAction)
	l.Add([]byte(`\?principal`), fixedAction(SLOT_PRINCIPAL))
	l.Add([]byte(`\?resource`), fixedAction(SLOT_RESOURCE))
	l.Add([]byte(`\?[_A-Za-z][_A-Za-z0-9]*`), slotOtherAction)
	l.Add([]byte(`[_A-Za-z][_A-Za-z0-9]*`), identAction)

	for lit, typ := range punctuation {
		l.Add([]byte(escapeLiteral(lit)), fixedAction(typ))
	}

	if err := l.Compile(); err != nil {
		return nil, err
	}
	return l, nil
}

// punctuation maps every operator/punctuation literal to its token Type.
// The map has no order and needs none: lexmachine takes the longest match,
// so '==' wins over '=' and '::' over ':' without manual priority juggling.
var punctuation = map[string]Type{
	"::": COLONCOLON, "==": EQEQ, "!=": NEQ, "<=": LE, ">=": GE,
	"||": OROR, "&&": ANDAND,
	"@": AT, ".": DOT, ",": COMMA, ";": SEMI, ":": COLON,
	"(": LPAREN, ")": RPAREN, "{": LBRACE, "}": RBRACE, "[": LBRACKET, "]": RBRACKET,
	"<": LT, ">": GT, "+": PLUS, "-": MINUS, "*": STAR, "/": SLASH,
	"%": PERCENT, "!": BANG, "=": EQ,
}

func escapeLiteral(lit string) string {
	out := make([]byte, 0, len(lit)*2)
	for i := 0; i < len(lit); i++ {
		out = append(out, '\\', lit[i])
	}
	return string(out)
}

func skip(*lexmachine.Scanner, *machines.Match) (interface{}, error) {
	return nil, nil
}

func fixedAction(typ Type) lexmachine.Action {
	return func(s *lexmachine.Scanner, m *machines.Match) (interface{}, error) {
		return Token{Type: typ, Lexeme: string(m.Bytes), Start: uint64(m.TC), End: uint64(m.TC + len(m.Bytes))}, nil
	}
}

func identAction(s *lexmachine.Scanner, m *machines.Match) (interface{}, error) {
	lexeme := string(m.Bytes)
	typ := IDENT
	if kw, ok := keywords[lexeme]; ok {
		typ = kw
	}
	return Token{Type: typ, Lexeme: lexeme, Start: uint64(m.TC), End: uint64(m.TC + len(m.Bytes))}, nil
}

func numberAction(s *lexmachine.Scanner, m *machines.Match) (interface{}, error) {
	lexeme := string(m.Bytes)
	start, end := uint64(m.TC), uint64(m.TC+len(m.Bytes))
	tok := Token{Type: NUMBER, Lexeme: lexeme, Start: start, End: end}
	if _, err := strconv.ParseUint(lexeme, 10, 64); err != nil {
		tok.Err = fmt.Errorf("integer parse error: %s", err)
	}
	return tok, nil
}

func stringAction(s *lexmachine.Scanner, m *machines.Match) (interface{}, error) {
	return Token{Type: STRING, Lexeme: string(m.Bytes), Start: uint64(m.TC), End: uint64(m.TC + len(m.Bytes))}, nil
}

func slotOtherAction(s *lexmachine.Scanner, m *machines.Match) (interface{}, error) {
	return Token{Type: SLOT_OTHER, Lexeme: string(m.Bytes), Start: uint64(m.TC), End: uint64(m.TC + len(m.Bytes))}, nil
}

// Lexer wraps a compiled lexmachine DFA for repeated use across parses.
type Lexer struct {
	dfa *lexmachine.Lexer
}

// New compiles the Cedar lexer. Compilation happens once per Lexer value;
// callers typically build one Lexer and reuse it across many Tokenize
// calls, the same way terexlang.Lexer() is meant to be built once.
func New() (*Lexer, error) {
	dfa, err := buildLexer()
	if err != nil {
		return nil, err
	}
	return &Lexer{dfa: dfa}, nil
}

// Tokenize scans input completely, returning every non-skipped token in
// order (EOF-terminated), or the first lexical error encountered. A
// lexical error aborts the scan: the grammar engine has no way to
// resynchronize below the token level, so lexical failures are not subject
// to the two declared recovery points.
func (lx *Lexer) Tokenize(input string) ([]Token, error) {
	scan, err := lx.dfa.Scanner([]byte(input))
	if err != nil {
		return nil, err
	}
	var toks []Token
	for {
		tok, err, eof := scan.Next()
		if err != nil {
			if ui, ok := err.(*machines.UnconsumedInput); ok {
				lerr := &Error{Offset: uint64(ui.StartTC), Message: fmt.Sprintf("unrecognized character %q", input[ui.StartTC])}
				tracer().Errorf(lerr.Error())
				return nil, lerr
			}
			tracer().Errorf("lex error: %s", err)
			return nil, err
		}
		if eof {
			break
		}
		t := tok.(Token)
		tracer().Debugf("token %s", t)
		toks = append(toks, t)
	}
	toks = append(toks, Token{Type: EOF, Start: uint64(len(input)), End: uint64(len(input))})
	return toks, nil
}
