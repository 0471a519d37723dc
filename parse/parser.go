// Package parse implements the Cedar grammar engine: the LALR(1) grammar
// of the base specification realized as a set of mutually recursive
// descent functions, one per nonterminal layer, driving the lexer and
// building cst values. Two designated sync points — the Policy production
// and the Expr production — perform tolerant error recovery so a single
// call can report several syntax errors instead of aborting on the first
// one.
package parse

import (
	"github.com/npillmayer/schuko/tracing"

	cstparse "github.com/cedarcst/cstparse"
	"github.com/cedarcst/cstparse/cst"
	"github.com/cedarcst/cstparse/internal/lex"
)

// tracer traces with key 'cstparse.parse'.
func tracer() tracing.Trace {
	return tracing.Select("cstparse.parse")
}

// Parser holds one parse call's state: the full token stream, the current
// position, and the recovery policy in effect.
type Parser struct {
	toks     []lex.Token
	pos      int
	prevEnd  uint64
	source   *cstparse.Source
	sink     Sink
	tolerant bool
}

func newParserFromTokens(toks []lex.Token, source *cstparse.Source, sink Sink, tolerant bool) *Parser {
	return &Parser{toks: toks, source: source, sink: sink, tolerant: tolerant}
}

func (p *Parser) peek() lex.Token {
	return p.toks[p.pos]
}

func (p *Parser) peekAt(n int) lex.Token {
	idx := p.pos + n
	if idx >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}
	return p.toks[idx]
}

func (p *Parser) advance() lex.Token {
	tok := p.toks[p.pos]
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	p.prevEnd = tok.End
	return tok
}

func (p *Parser) at(t lex.Type) bool {
	return p.peek().Type == t
}

func (p *Parser) accept(t lex.Type) (lex.Token, bool) {
	if p.at(t) {
		return p.advance(), true
	}
	return lex.Token{}, false
}

// buildNode is the Node Builder: it wraps v in a span from start to the end
// of the most recently consumed token, honoring the source's keep_spans
// flag.
func buildNode[T any](p *Parser, start uint64, v T) cst.Node[T] {
	return cst.Build(start, p.prevEnd, p.source, v)
}

var reservedLexTypes = map[lex.Type]cst.IdentKind{
	lex.TRUE: cst.IdentTrue, lex.FALSE: cst.IdentFalse, lex.IF: cst.IdentIf,
	lex.PERMIT: cst.IdentPermit, lex.FORBID: cst.IdentForbid,
	lex.WHEN: cst.IdentWhen, lex.UNLESS: cst.IdentUnless, lex.IN: cst.IdentIn,
	lex.HAS: cst.IdentHas, lex.LIKE: cst.IdentLike, lex.IS: cst.IdentIs,
	lex.THEN: cst.IdentThen, lex.ELSE: cst.IdentElse,
	lex.PRINCIPAL: cst.IdentPrincipal, lex.ACTION: cst.IdentAction,
	lex.RESOURCE: cst.IdentResource, lex.CONTEXT: cst.IdentContext,
}

// isIdentLike reports whether t can occupy an "AnyIdent" position: a plain
// identifier, or any reserved word (which keeps its reserved-word Ident
// variant rather than being reclassified).
func isIdentLike(t lex.Type) bool {
	if t == lex.IDENT {
		return true
	}
	_, ok := reservedLexTypes[t]
	return ok
}

func identFromToken(tok lex.Token) cst.Ident {
	if tok.Type == lex.IDENT {
		return cst.Ident{Kind: cst.IdentUser, Name: tok.Lexeme}
	}
	return cst.Ident{Kind: reservedLexTypes[tok.Type]}
}

func (p *Parser) acceptAnyIdent() (lex.Token, bool) {
	if isIdentLike(p.peek().Type) {
		return p.advance(), true
	}
	return lex.Token{}, false
}

// stringLiteralValue strips the surrounding quotes from a STRING token's
// raw lexeme without decoding escape sequences.
func stringLiteralValue(lexeme string) string {
	if len(lexeme) < 2 {
		return ""
	}
	return lexeme[1 : len(lexeme)-1]
}

// --- Policies / Policy ------------------------------------------------

func (p *Parser) parsePolicies() cst.Node[cst.Policies] {
	start := p.peek().Start
	var items []cst.Node[cst.Policy]
	for !p.at(lex.EOF) {
		items = append(items, p.parsePolicy())
	}
	end := p.peek().Start
	return cst.Build(start, end, p.source, cst.Policies{Items: items})
}

// parsePolicy always returns a usable node: on a structural failure
// anywhere in the policy, it performs the declared policy-level recovery
// (skip to the next ';', emit PolicyError or None) and records exactly one
// Recovered error.
func (p *Parser) parsePolicy() cst.Node[cst.Policy] {
	start := p.peek().Start
	body, ok := p.parsePolicyBody()
	if ok {
		return buildNode(p, start, cst.Policy{Kind: cst.PolicyOK, Body: body})
	}
	tracer().Debugf("policy recovery at byte %d", p.peek().Start)
	skipStart, skipEnd := p.skipToSync(policySync)
	if _, ok := p.accept(lex.SEMI); ok {
		skipEnd = p.prevEnd
	}
	end := skipEnd
	if end < start {
		end = start
	}
	p.recordRecovered(skipStart, end, "invalid policy syntax", nil)
	if p.tolerant {
		return cst.Build(start, end, p.source, cst.Policy{Kind: cst.PolicyError})
	}
	return cst.BuildNone[cst.Policy](start, end, p.source)
}

func (p *Parser) parsePolicyBody() (cst.PolicyBody, bool) {
	var annotations []cst.Node[cst.Annotation]
	for p.at(lex.AT) {
		ann, ok := p.parseAnnotation()
		if !ok {
			return cst.PolicyBody{}, false
		}
		annotations = append(annotations, ann)
	}
	effectTok, ok := p.acceptAnyIdent()
	if !ok {
		return cst.PolicyBody{}, false
	}
	effect := identFromToken(effectTok)
	if _, ok := p.accept(lex.LPAREN); !ok {
		return cst.PolicyBody{}, false
	}
	vars, ok := p.parseVariableDefList()
	if !ok {
		return cst.PolicyBody{}, false
	}
	if _, ok := p.accept(lex.RPAREN); !ok {
		return cst.PolicyBody{}, false
	}
	conds, ok := p.parseCondList()
	if !ok {
		return cst.PolicyBody{}, false
	}
	if _, ok := p.accept(lex.SEMI); !ok {
		return cst.PolicyBody{}, false
	}
	return cst.PolicyBody{Annotations: annotations, Effect: effect, Variables: vars, Conds: conds}, true
}

func (p *Parser) parseAnnotation() (cst.Node[cst.Annotation], bool) {
	start := p.peek().Start
	if _, ok := p.accept(lex.AT); !ok {
		return cst.Node[cst.Annotation]{}, false
	}
	keyTok, ok := p.acceptAnyIdent()
	if !ok {
		return cst.Node[cst.Annotation]{}, false
	}
	key := identFromToken(keyTok)
	var value *cst.Str
	if _, ok := p.accept(lex.LPAREN); ok {
		strTok, ok := p.accept(lex.STRING)
		if !ok {
			return cst.Node[cst.Annotation]{}, false
		}
		v := cst.Str{Value: stringLiteralValue(strTok.Lexeme)}
		value = &v
		if _, ok := p.accept(lex.RPAREN); !ok {
			return cst.Node[cst.Annotation]{}, false
		}
	}
	return buildNode(p, start, cst.Annotation{Key: key, Value: value}), true
}

func (p *Parser) parseVariableDefList() ([]cst.Node[cst.VariableDef], bool) {
	var items []cst.Node[cst.VariableDef]
	if p.at(lex.RPAREN) {
		return items, true
	}
	for {
		vd, ok := p.parseVariableDef()
		if !ok {
			return nil, false
		}
		items = append(items, vd)
		if _, ok := p.accept(lex.COMMA); !ok {
			break
		}
		if p.at(lex.RPAREN) {
			break
		}
	}
	return items, true
}

func (p *Parser) parseVariableDef() (cst.Node[cst.VariableDef], bool) {
	start := p.peek().Start
	varTok, ok := p.acceptAnyIdent()
	if !ok {
		return cst.Node[cst.VariableDef]{}, false
	}
	variable := identFromToken(varTok)

	var typeName *cst.Node[cst.Name]
	if _, ok := p.accept(lex.COLON); ok {
		n, ok := p.parseName()
		if !ok {
			return cst.Node[cst.VariableDef]{}, false
		}
		typeName = &n
	}

	var entityType *cst.Node[cst.Add]
	var ineq *cst.Ineq
	if _, ok := p.accept(lex.IS); ok {
		add, ok := p.parseAdd()
		if !ok {
			return cst.Node[cst.VariableDef]{}, false
		}
		entityType = &add
		if _, ok := p.accept(lex.IN); ok {
			inStart := p.peek().Start
			inAdd, ok := p.parseAdd()
			if !ok {
				return cst.Node[cst.VariableDef]{}, false
			}
			ineq = &cst.Ineq{Op: cst.RelIn, Expr: p.exprFromAdd(inStart, inAdd)}
		}
	} else if op, ok := p.tryRelOp(); ok {
		// Open question resolved: a lone '=' is accepted here too (as
		// RelInvalidSingleEq), for consistency with Relation's tail —
		// see DESIGN.md.
		e := p.parseExpr()
		ineq = &cst.Ineq{Op: op, Expr: e}
	}

	return buildNode(p, start, cst.VariableDef{
		Variable:       variable,
		UnusedTypeName: typeName,
		EntityType:     entityType,
		Ineq:           ineq,
	}), true
}

func (p *Parser) parseCondList() ([]cst.Node[cst.Cond], bool) {
	var conds []cst.Node[cst.Cond]
	for p.at(lex.WHEN) || p.at(lex.UNLESS) {
		c, ok := p.parseCond()
		if !ok {
			return nil, false
		}
		conds = append(conds, c)
	}
	return conds, true
}

func (p *Parser) parseCond() (cst.Node[cst.Cond], bool) {
	start := p.peek().Start
	kwTok := p.advance() // WHEN or UNLESS, guarded by parseCondList
	keyword := identFromToken(kwTok)
	if _, ok := p.accept(lex.LBRACE); !ok {
		return cst.Node[cst.Cond]{}, false
	}
	var exprNode *cst.Node[cst.Expr]
	if !p.at(lex.RBRACE) {
		e := p.parseExpr()
		exprNode = &e
	}
	if _, ok := p.accept(lex.RBRACE); !ok {
		return cst.Node[cst.Cond]{}, false
	}
	return buildNode(p, start, cst.Cond{Keyword: keyword, Expr: exprNode}), true
}
