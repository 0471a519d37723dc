package parse

import (
	"sync"

	"github.com/cedarcst/cstparse/cst"
	"github.com/cedarcst/cstparse/internal/lex"
)

var (
	sharedLexer     *lex.Lexer
	sharedLexerOnce sync.Once
	sharedLexerErr  error
)

// getLexer compiles the DFA once and reuses it across every parse call in
// the process, the same lazy-build-once shape terexlang's scanner
// construction follows.
func getLexer() (*lex.Lexer, error) {
	sharedLexerOnce.Do(func() {
		sharedLexer, sharedLexerErr = lex.New()
	})
	return sharedLexer, sharedLexerErr
}

func tokenize(cfg *config, input string) ([]lex.Token, bool) {
	lx, err := getLexer()
	if err != nil {
		cfg.sink.Record(Error{Kind: Lexical, Message: err.Error()})
		return nil, false
	}
	toks, err := lx.Tokenize(input)
	if err != nil {
		offset := uint64(0)
		msg := err.Error()
		if lerr, ok := err.(*lex.Error); ok {
			offset = lerr.Offset
			msg = lerr.Message
		}
		cfg.sink.Record(Error{
			Kind:    Lexical,
			Span:    cfg.source.Span(offset, offset+1),
			Message: msg,
		})
		return nil, false
	}
	return toks, true
}

func newParser(input string, opts []Option) (*Parser, *config, bool) {
	cfg := newConfig(input, opts)
	toks, ok := tokenize(cfg, input)
	if !ok {
		return nil, cfg, false
	}
	p := newParserFromTokens(toks, cfg.source, cfg.sink, cfg.tolerant)
	return p, cfg, true
}

// failureEnd picks the end byte offset to attribute to a standalone
// entry-point failure: the end of whatever was consumed, or start itself
// if nothing was.
func (p *Parser) failureEnd(start uint64) uint64 {
	if p.prevEnd > start {
		return p.prevEnd
	}
	return start
}

// Policies parses a full policy-set document: zero or more policies up to
// EOF. Recovery is per-policy: a malformed policy is skipped up to its
// terminating ';' without aborting the rest of the document.
func Policies(input string, opts ...Option) (cst.Node[cst.Policies], []Error) {
	p, cfg, ok := newParser(input, opts)
	if !ok {
		return cst.BuildNone[cst.Policies](0, 0, cfg.source), collect(cfg)
	}
	return p.parsePolicies(), collect(cfg)
}

// Policy parses a single policy statement, applying the same policy-level
// recovery Policies does for each of its elements.
func Policy(input string, opts ...Option) (cst.Node[cst.Policy], []Error) {
	p, cfg, ok := newParser(input, opts)
	if !ok {
		return cst.BuildNone[cst.Policy](0, 0, cfg.source), collect(cfg)
	}
	return p.parsePolicy(), collect(cfg)
}

// Expr parses a single expression, applying expression-level recovery.
func Expr(input string, opts ...Option) (cst.Node[cst.Expr], []Error) {
	p, cfg, ok := newParser(input, opts)
	if !ok {
		return cst.BuildNone[cst.Expr](0, 0, cfg.source), collect(cfg)
	}
	return p.parseExpr(), collect(cfg)
}

// Primary parses a single Primary production. Primary has no recovery
// point of its own: a syntactic failure here is recorded once and
// short-circuits with a None node.
func Primary(input string, opts ...Option) (cst.Node[cst.Primary], []Error) {
	p, cfg, ok := newParser(input, opts)
	if !ok {
		return cst.BuildNone[cst.Primary](0, 0, cfg.source), collect(cfg)
	}
	start := p.peek().Start
	node, ok := p.parsePrimary()
	if !ok {
		end := p.failureEnd(start)
		p.recordSyntactic("invalid primary expression", nil)
		return cst.BuildNone[cst.Primary](start, end, p.source), collect(cfg)
	}
	return node, collect(cfg)
}

// Name parses a single Name production (a '::'-separated path of
// identifiers with no trailing Ref tail).
func Name(input string, opts ...Option) (cst.Node[cst.Name], []Error) {
	p, cfg, ok := newParser(input, opts)
	if !ok {
		return cst.BuildNone[cst.Name](0, 0, cfg.source), collect(cfg)
	}
	start := p.peek().Start
	node, ok := p.parseName()
	if !ok {
		end := p.failureEnd(start)
		p.recordSyntactic("invalid name", nil)
		return cst.BuildNone[cst.Name](start, end, p.source), collect(cfg)
	}
	return node, collect(cfg)
}

// Ref parses a single entity reference: `Name::"eid"` or
// `Name::{ k: v, ... }`.
func Ref(input string, opts ...Option) (cst.Node[cst.Ref], []Error) {
	p, cfg, ok := newParser(input, opts)
	if !ok {
		return cst.BuildNone[cst.Ref](0, 0, cfg.source), collect(cfg)
	}
	start := p.peek().Start
	node, ok := p.parseRef()
	if !ok {
		end := p.failureEnd(start)
		p.recordSyntactic("invalid entity reference", nil)
		return cst.BuildNone[cst.Ref](start, end, p.source), collect(cfg)
	}
	return node, collect(cfg)
}

// Ident parses a single identifier position, returning its reserved-word
// variant if the lexeme is a reserved word.
func Ident(input string, opts ...Option) (cst.Node[cst.Ident], []Error) {
	p, cfg, ok := newParser(input, opts)
	if !ok {
		return cst.BuildNone[cst.Ident](0, 0, cfg.source), collect(cfg)
	}
	start := p.peek().Start
	tok, ok := p.acceptAnyIdent()
	if !ok {
		end := p.failureEnd(start)
		p.recordSyntactic("invalid identifier", nil)
		return cst.BuildNone[cst.Ident](start, end, p.source), collect(cfg)
	}
	return buildNode(p, start, identFromToken(tok)), collect(cfg)
}
