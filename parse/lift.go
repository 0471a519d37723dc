package parse

import "github.com/cedarcst/cstparse/cst"

// This file synthesizes Expr/Add nodes from a bare Ident that was consumed
// outside the normal Primary grammar position — the two extended-grammar
// cases (RFC 62) where a reserved word is allowed to stand in for an
// identifier: `has if[.then.else]` and the `if : Expr` record key. Each
// synthesized node spans exactly the tokens already consumed (start..the
// parser's current prevEnd), never advancing the parser itself.

func (p *Parser) identToPrimary(start uint64, ident cst.Ident) cst.Node[cst.Primary] {
	return buildNode(p, start, cst.Primary{Kind: cst.PrimaryName, Name: cst.Name{Name: ident}})
}

func (p *Parser) memberFromPrimary(start uint64, primary cst.Node[cst.Primary], access []cst.MemAccess) cst.Node[cst.Member] {
	return buildNode(p, start, cst.Member{Item: primary, Access: access})
}

func (p *Parser) addFromMember(start uint64, member cst.Node[cst.Member]) cst.Node[cst.Add] {
	unary := buildNode(p, start, cst.Unary{Item: member})
	mult := buildNode(p, start, cst.Mult{Initial: unary})
	return buildNode(p, start, cst.Add{Initial: mult})
}

func (p *Parser) exprFromAdd(start uint64, add cst.Node[cst.Add]) cst.Node[cst.Expr] {
	relation := buildNode(p, start, cst.Relation{Kind: cst.RelationCommon, CommonInitial: add})
	and := buildNode(p, start, cst.And{Initial: relation})
	or := buildNode(p, start, cst.Or{Initial: and})
	return buildNode(p, start, cst.Expr{Kind: cst.ExprOr, Or: or})
}

// identToAdd synthesizes the Add rooted at a bare reserved-word identifier,
// with optional trailing member accesses. Grounds the extended-has rule:
// `has if.then.else` parses `if.then.else` as though `if` were an ordinary
// field name.
func (p *Parser) identToAdd(start uint64, ident cst.Ident, access []cst.MemAccess) cst.Node[cst.Add] {
	primary := p.identToPrimary(start, ident)
	member := p.memberFromPrimary(start, primary, access)
	return p.addFromMember(start, member)
}

// identToExpr synthesizes the Expr rooted at a bare reserved-word
// identifier, with no member access. Grounds the `{if: ...}` record-key
// rule.
func (p *Parser) identToExpr(start uint64, ident cst.Ident) cst.Node[cst.Expr] {
	add := p.identToAdd(start, ident, nil)
	return p.exprFromAdd(start, add)
}
