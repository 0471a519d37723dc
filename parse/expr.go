package parse

import (
	"strconv"

	"github.com/cedarcst/cstparse/cst"
	"github.com/cedarcst/cstparse/internal/lex"
)

// parseExpr always returns a usable node: on a structural failure anywhere
// in the expression, it performs the declared expression-level recovery
// (skip to a sync token, emit ErrorExpr or None) and records exactly one
// Recovered error. Every "Expr" occurrence in the grammar — the public
// entry point, a Cond body, a paren, a call argument, an index, a
// record/list element, an if-branch — goes through this one function, so
// each such occurrence recovers independently instead of cascading a single
// failure up to the whole policy.
func (p *Parser) parseExpr() cst.Node[cst.Expr] {
	start := p.peek().Start
	v, ok := p.parseExprInner()
	if ok {
		return buildNode(p, start, v)
	}
	tracer().Debugf("expr recovery at byte %d", p.peek().Start)
	_, skipEnd := p.skipToSync(exprSync)
	end := skipEnd
	if end < start {
		end = start
	}
	p.recordRecovered(start, end, "invalid expression syntax", nil)
	if p.tolerant {
		return cst.Build(start, end, p.source, cst.Expr{Kind: cst.ExprError})
	}
	return cst.BuildNone[cst.Expr](start, end, p.source)
}

func (p *Parser) parseExprInner() (cst.Expr, bool) {
	if p.at(lex.IF) {
		p.advance()
		cond := p.parseExpr()
		if _, ok := p.accept(lex.THEN); !ok {
			return cst.Expr{}, false
		}
		then := p.parseExpr()
		if _, ok := p.accept(lex.ELSE); !ok {
			return cst.Expr{}, false
		}
		els := p.parseExpr()
		return cst.Expr{Kind: cst.ExprIf, If: cst.IfExpr{Cond: cond, Then: then, Else: els}}, true
	}
	orNode, ok := p.parseOr()
	if !ok {
		return cst.Expr{}, false
	}
	return cst.Expr{Kind: cst.ExprOr, Or: orNode}, true
}

// parseExprCommaList parses Comma<Expr> up to (not including) closeTok:
// zero or more Expr separated by ',', trailing comma permitted. Since
// parseExpr never itself fails, this never fails either.
func (p *Parser) parseExprCommaList(closeTok lex.Type) []cst.Node[cst.Expr] {
	var items []cst.Node[cst.Expr]
	if p.at(closeTok) {
		return items
	}
	for {
		items = append(items, p.parseExpr())
		if _, ok := p.accept(lex.COMMA); !ok {
			break
		}
		if p.at(closeTok) {
			break
		}
	}
	return items
}

func (p *Parser) parseOr() (cst.Node[cst.Or], bool) {
	start := p.peek().Start
	initial, ok := p.parseAnd()
	if !ok {
		return cst.Node[cst.Or]{}, false
	}
	var extended []cst.Node[cst.And]
	for p.at(lex.OROR) {
		p.advance()
		nxt, ok := p.parseAnd()
		if !ok {
			return cst.Node[cst.Or]{}, false
		}
		extended = append(extended, nxt)
	}
	return buildNode(p, start, cst.Or{Initial: initial, Extended: extended}), true
}

func (p *Parser) parseAnd() (cst.Node[cst.And], bool) {
	start := p.peek().Start
	initial, ok := p.parseRelation()
	if !ok {
		return cst.Node[cst.And]{}, false
	}
	var extended []cst.Node[cst.Relation]
	for p.at(lex.ANDAND) {
		p.advance()
		nxt, ok := p.parseRelation()
		if !ok {
			return cst.Node[cst.And]{}, false
		}
		extended = append(extended, nxt)
	}
	return buildNode(p, start, cst.And{Initial: initial, Extended: extended}), true
}

// tryRelOp consumes and classifies a relational operator if the current
// token is one, without consuming anything otherwise.
func (p *Parser) tryRelOp() (cst.RelOp, bool) {
	switch p.peek().Type {
	case lex.LT:
		p.advance()
		return cst.RelLess, true
	case lex.LE:
		p.advance()
		return cst.RelLessEq, true
	case lex.GT:
		p.advance()
		return cst.RelGreater, true
	case lex.GE:
		p.advance()
		return cst.RelGreaterEq, true
	case lex.EQEQ:
		p.advance()
		return cst.RelEq, true
	case lex.NEQ:
		p.advance()
		return cst.RelNotEq, true
	case lex.IN:
		p.advance()
		return cst.RelIn, true
	case lex.EQ:
		p.advance()
		return cst.RelInvalidSingleEq, true
	}
	return 0, false
}

func (p *Parser) parseRelation() (cst.Node[cst.Relation], bool) {
	start := p.peek().Start
	target, ok := p.parseAdd()
	if !ok {
		return cst.Node[cst.Relation]{}, false
	}
	switch {
	case p.at(lex.HAS):
		p.advance()
		field, ok := p.parseHasField()
		if !ok {
			return cst.Node[cst.Relation]{}, false
		}
		return buildNode(p, start, cst.Relation{Kind: cst.RelationHas, Target: target, Field: field}), true

	case p.at(lex.LIKE):
		p.advance()
		pattern, ok := p.parseAdd()
		if !ok {
			return cst.Node[cst.Relation]{}, false
		}
		return buildNode(p, start, cst.Relation{Kind: cst.RelationLike, Target: target, Pattern: pattern}), true

	case p.at(lex.IS):
		p.advance()
		entityType, ok := p.parseAdd()
		if !ok {
			return cst.Node[cst.Relation]{}, false
		}
		var inEntity *cst.Node[cst.Add]
		if _, ok := p.accept(lex.IN); ok {
			inAdd, ok := p.parseAdd()
			if !ok {
				return cst.Node[cst.Relation]{}, false
			}
			inEntity = &inAdd
		}
		return buildNode(p, start, cst.Relation{Kind: cst.RelationIsIn, Target: target, EntityType: entityType, InEntity: inEntity}), true

	default:
		var extended []cst.RelOpAdd
		for {
			op, ok := p.tryRelOp()
			if !ok {
				break
			}
			operand, ok := p.parseAdd()
			if !ok {
				return cst.Node[cst.Relation]{}, false
			}
			extended = append(extended, cst.RelOpAdd{Op: op, Operand: operand})
		}
		return buildNode(p, start, cst.Relation{Kind: cst.RelationCommon, CommonInitial: target, CommonExtended: extended}), true
	}
}

// parseHasField parses the RHS of `has`. The extended-has rule (RFC 62)
// lets the reserved word `if` stand for a field name there, optionally
// followed by further member accesses (`has if.then.else`); every other
// field name is an ordinary Add.
func (p *Parser) parseHasField() (cst.Node[cst.Add], bool) {
	if p.at(lex.IF) {
		start := p.peek().Start
		p.advance()
		access, ok := p.parseMemAccessList()
		if !ok {
			return cst.Node[cst.Add]{}, false
		}
		return p.identToAdd(start, cst.Ident{Kind: cst.IdentIf}, access), true
	}
	return p.parseAdd()
}

func (p *Parser) tryArithOp(mult bool) (cst.ArithOp, bool) {
	if mult {
		switch p.peek().Type {
		case lex.STAR:
			p.advance()
			return cst.OpMul, true
		case lex.SLASH:
			p.advance()
			return cst.OpDiv, true
		case lex.PERCENT:
			p.advance()
			return cst.OpMod, true
		}
		return 0, false
	}
	switch p.peek().Type {
	case lex.PLUS:
		p.advance()
		return cst.OpAdd, true
	case lex.MINUS:
		p.advance()
		return cst.OpSub, true
	}
	return 0, false
}

func (p *Parser) parseAdd() (cst.Node[cst.Add], bool) {
	start := p.peek().Start
	initial, ok := p.parseMult()
	if !ok {
		return cst.Node[cst.Add]{}, false
	}
	var extended []cst.AddExt
	for {
		op, ok := p.tryArithOp(false)
		if !ok {
			break
		}
		operand, ok := p.parseMult()
		if !ok {
			return cst.Node[cst.Add]{}, false
		}
		extended = append(extended, cst.AddExt{Op: op, Operand: operand})
	}
	return buildNode(p, start, cst.Add{Initial: initial, Extended: extended}), true
}

func (p *Parser) parseMult() (cst.Node[cst.Mult], bool) {
	start := p.peek().Start
	initial, ok := p.parseUnary()
	if !ok {
		return cst.Node[cst.Mult]{}, false
	}
	var extended []cst.MultExt
	for {
		op, ok := p.tryArithOp(true)
		if !ok {
			break
		}
		operand, ok := p.parseUnary()
		if !ok {
			return cst.Node[cst.Mult]{}, false
		}
		extended = append(extended, cst.MultExt{Op: op, Operand: operand})
	}
	return buildNode(p, start, cst.Mult{Initial: initial, Extended: extended}), true
}

// parseUnary consumes a homogeneous run of leading '!' or '-' (mixing the
// two is not part of the grammar: a run is scoped to one operator, and a
// differing operator immediately after simply ends the run, leaving Member
// parsing to reject the leftover token).
func (p *Parser) parseUnary() (cst.Node[cst.Unary], bool) {
	start := p.peek().Start
	var neg cst.NegOp
	if p.at(lex.BANG) || p.at(lex.MINUS) {
		bang := p.at(lex.BANG)
		n := 0
		for (bang && p.at(lex.BANG)) || (!bang && p.at(lex.MINUS)) {
			p.advance()
			n++
		}
		neg = cst.CountNeg(bang, n)
	}
	member, ok := p.parseMember()
	if !ok {
		return cst.Node[cst.Unary]{}, false
	}
	return buildNode(p, start, cst.Unary{Op: neg, Item: member}), true
}

func (p *Parser) parseMember() (cst.Node[cst.Member], bool) {
	start := p.peek().Start
	primary, ok := p.parsePrimary()
	if !ok {
		return cst.Node[cst.Member]{}, false
	}
	access, ok := p.parseMemAccessList()
	if !ok {
		return cst.Node[cst.Member]{}, false
	}
	return buildNode(p, start, cst.Member{Item: primary, Access: access}), true
}

func (p *Parser) parseMemAccessList() ([]cst.MemAccess, bool) {
	var access []cst.MemAccess
	for {
		switch p.peek().Type {
		case lex.DOT:
			p.advance()
			fieldTok, ok := p.acceptAnyIdent()
			if !ok {
				return nil, false
			}
			access = append(access, cst.MemAccess{Kind: cst.AccessField, Field: identFromToken(fieldTok)})
		case lex.LPAREN:
			p.advance()
			args := p.parseExprCommaList(lex.RPAREN)
			if _, ok := p.accept(lex.RPAREN); !ok {
				return nil, false
			}
			access = append(access, cst.MemAccess{Kind: cst.AccessCall, Args: args})
		case lex.LBRACKET:
			p.advance()
			idx := p.parseExpr()
			if _, ok := p.accept(lex.RBRACKET); !ok {
				return nil, false
			}
			access = append(access, cst.MemAccess{Kind: cst.AccessIndex, Index: idx})
		default:
			return access, true
		}
	}
}

func (p *Parser) parseLiteral() (cst.Literal, bool) {
	switch p.peek().Type {
	case lex.TRUE:
		p.advance()
		return cst.Literal{Kind: cst.LitTrue}, true
	case lex.FALSE:
		p.advance()
		return cst.Literal{Kind: cst.LitFalse}, true
	case lex.NUMBER:
		tok := p.advance()
		if tok.Err != nil {
			p.recordUser(tok.Start, tok.End, tok.Err.Error())
			return cst.Literal{}, false
		}
		n, _ := strconv.ParseUint(tok.Lexeme, 10, 64)
		return cst.Literal{Kind: cst.LitNum, Num: n}, true
	case lex.STRING:
		tok := p.advance()
		return cst.Literal{Kind: cst.LitStr, Str: cst.Str{Value: stringLiteralValue(tok.Lexeme)}}, true
	}
	return cst.Literal{}, false
}

// parseIdentPath parses Ident ('::' Ident)*, stopping the chain before a
// trailing '::' that is followed by a STRING or '{' (the Name/Ref
// disambiguation point) rather than another identifier.
func (p *Parser) parseIdentPath() ([]cst.Ident, cst.Ident, bool) {
	firstTok, ok := p.acceptAnyIdent()
	if !ok {
		return nil, cst.Ident{}, false
	}
	idents := []cst.Ident{identFromToken(firstTok)}
	for p.at(lex.COLONCOLON) && isIdentLike(p.peekAt(1).Type) {
		p.advance()
		nextTok, _ := p.acceptAnyIdent()
		idents = append(idents, identFromToken(nextTok))
	}
	last := idents[len(idents)-1]
	return idents[:len(idents)-1], last, true
}

func (p *Parser) parseName() (cst.Node[cst.Name], bool) {
	start := p.peek().Start
	path, last, ok := p.parseIdentPath()
	if !ok {
		return cst.Node[cst.Name]{}, false
	}
	return buildNode(p, start, cst.Name{Path: path, Name: last}), true
}

// parseRefTail parses the `'{' Comma<RefInit> '}'` or `STRING` tail after a
// Name and a '::' have already been consumed.
func (p *Parser) parseRefTail(start uint64, name cst.Name) (cst.Node[cst.Ref], bool) {
	if strTok, ok := p.accept(lex.STRING); ok {
		eid := cst.Str{Value: stringLiteralValue(strTok.Lexeme)}
		return buildNode(p, start, cst.Ref{Kind: cst.RefUID, Path: name, Eid: eid}), true
	}
	if _, ok := p.accept(lex.LBRACE); ok {
		rinits, ok := p.parseRefInitList()
		if !ok {
			return cst.Node[cst.Ref]{}, false
		}
		if _, ok := p.accept(lex.RBRACE); !ok {
			return cst.Node[cst.Ref]{}, false
		}
		return buildNode(p, start, cst.Ref{Kind: cst.RefRecord, Path: name, RInits: rinits}), true
	}
	return cst.Node[cst.Ref]{}, false
}

func (p *Parser) parseRef() (cst.Node[cst.Ref], bool) {
	start := p.peek().Start
	path, last, ok := p.parseIdentPath()
	if !ok {
		return cst.Node[cst.Ref]{}, false
	}
	if _, ok := p.accept(lex.COLONCOLON); !ok {
		return cst.Node[cst.Ref]{}, false
	}
	return p.parseRefTail(start, cst.Name{Path: path, Name: last})
}

func (p *Parser) parseRefInitList() ([]cst.RefInit, bool) {
	var items []cst.RefInit
	if p.at(lex.RBRACE) {
		return items, true
	}
	for {
		keyTok, ok := p.acceptAnyIdent()
		if !ok {
			return nil, false
		}
		if _, ok := p.accept(lex.COLON); !ok {
			return nil, false
		}
		lit, ok := p.parseLiteral()
		if !ok {
			return nil, false
		}
		items = append(items, cst.RefInit{Key: identFromToken(keyTok), Value: lit})
		if _, ok := p.accept(lex.COMMA); !ok {
			break
		}
		if p.at(lex.RBRACE) {
			break
		}
	}
	return items, true
}

func (p *Parser) parseRecInitList() ([]cst.RecInit, bool) {
	var items []cst.RecInit
	if p.at(lex.RBRACE) {
		return items, true
	}
	for {
		ri, ok := p.parseRecInit()
		if !ok {
			return nil, false
		}
		items = append(items, ri)
		if _, ok := p.accept(lex.COMMA); !ok {
			break
		}
		if p.at(lex.RBRACE) {
			break
		}
	}
	return items, true
}

// parseRecInit handles the `if : Expr` special case (the reserved word
// `if` used as a bare record key, recognized by a single token of
// lookahead past it) alongside the general `Expr : Expr` form. A
// generated LALR(1) table would need a dedicated grammar rule to avoid a
// shift/reduce conflict here; recursive descent resolves it with a plain
// one-token peek instead.
func (p *Parser) parseRecInit() (cst.RecInit, bool) {
	var key cst.Node[cst.Expr]
	if p.at(lex.IF) && p.peekAt(1).Type == lex.COLON {
		start := p.peek().Start
		p.advance()
		key = p.identToExpr(start, cst.Ident{Kind: cst.IdentIf})
	} else {
		key = p.parseExpr()
	}
	if _, ok := p.accept(lex.COLON); !ok {
		return cst.RecInit{}, false
	}
	value := p.parseExpr()
	return cst.RecInit{Key: key, Value: value}, true
}

func (p *Parser) parsePrimary() (cst.Node[cst.Primary], bool) {
	start := p.peek().Start
	switch p.peek().Type {
	case lex.TRUE, lex.FALSE, lex.NUMBER, lex.STRING:
		lit, ok := p.parseLiteral()
		if !ok {
			return cst.Node[cst.Primary]{}, false
		}
		return buildNode(p, start, cst.Primary{Kind: cst.PrimaryLiteral, Literal: lit}), true

	case lex.SLOT_PRINCIPAL:
		p.advance()
		return buildNode(p, start, cst.Primary{Kind: cst.PrimarySlot, Slot: cst.Slot{Kind: cst.SlotPrincipal}}), true

	case lex.SLOT_RESOURCE:
		p.advance()
		return buildNode(p, start, cst.Primary{Kind: cst.PrimarySlot, Slot: cst.Slot{Kind: cst.SlotResource}}), true

	case lex.SLOT_OTHER:
		tok := p.advance()
		return buildNode(p, start, cst.Primary{Kind: cst.PrimarySlot, Slot: cst.Slot{Kind: cst.SlotOther, Other: tok.Lexeme[1:]}}), true

	case lex.LPAREN:
		p.advance()
		inner := p.parseExpr()
		if _, ok := p.accept(lex.RPAREN); !ok {
			return cst.Node[cst.Primary]{}, false
		}
		return buildNode(p, start, cst.Primary{Kind: cst.PrimaryExpr, Paren: inner}), true

	case lex.LBRACKET:
		p.advance()
		items := p.parseExprCommaList(lex.RBRACKET)
		if _, ok := p.accept(lex.RBRACKET); !ok {
			return cst.Node[cst.Primary]{}, false
		}
		return buildNode(p, start, cst.Primary{Kind: cst.PrimaryEList, EList: items}), true

	case lex.LBRACE:
		p.advance()
		items, ok := p.parseRecInitList()
		if !ok {
			return cst.Node[cst.Primary]{}, false
		}
		if _, ok := p.accept(lex.RBRACE); !ok {
			return cst.Node[cst.Primary]{}, false
		}
		return buildNode(p, start, cst.Primary{Kind: cst.PrimaryRInits, RInits: items}), true

	default:
		if !isIdentLike(p.peek().Type) {
			return cst.Node[cst.Primary]{}, false
		}
		path, last, ok := p.parseIdentPath()
		if !ok {
			return cst.Node[cst.Primary]{}, false
		}
		name := cst.Name{Path: path, Name: last}
		if _, ok := p.accept(lex.COLONCOLON); ok {
			refNode, ok := p.parseRefTail(start, name)
			if !ok {
				return cst.Node[cst.Primary]{}, false
			}
			ref, _ := refNode.Get()
			return buildNode(p, start, cst.Primary{Kind: cst.PrimaryRef, Ref: ref}), true
		}
		return buildNode(p, start, cst.Primary{Kind: cst.PrimaryName, Name: name}), true
	}
}
