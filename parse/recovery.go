package parse

import (
	"github.com/emirpasic/gods/lists/arraylist"
	"github.com/emirpasic/gods/sets/treeset"
	"github.com/emirpasic/gods/utils"

	"github.com/cedarcst/cstparse/internal/lex"
)

// syncSet is an ordered set of token types the parser resynchronizes on.
// It is backed by gods' treeset the same way lr/tables.go uses a treeset
// to represent sets of grammar symbols during closure computation.
type syncSet struct {
	types *treeset.Set
}

func newSyncSet(types ...lex.Type) *syncSet {
	s := &syncSet{types: treeset.NewWith(utils.IntComparator)}
	for _, t := range types {
		s.types.Add(int(t))
	}
	return s
}

func (s *syncSet) has(t lex.Type) bool {
	return s.types.Contains(int(t))
}

// policySync is the first declared recovery point's sync set: a failed
// Policy production skips tokens until the next ';' (or EOF).
var policySync = newSyncSet(lex.SEMI, lex.EOF)

// exprSync is the second declared recovery point's sync set: a failed Expr
// production skips tokens until one that could legally follow an
// expression in any of its call sites (closing delimiters, the policy
// terminator, or the keywords that end an if-branch).
var exprSync = newSyncSet(
	lex.RPAREN, lex.RBRACE, lex.RBRACKET, lex.COMMA, lex.SEMI,
	lex.THEN, lex.ELSE, lex.EOF,
)

// skipToSync advances the parser past tokens until it reaches one in set
// (without consuming that token), buffering the skipped tokens in an
// arraylist the way a caller might buffer intermediate items before
// folding them into a single recovery record. It returns the span of the
// skipped region.
func (p *Parser) skipToSync(set *syncSet) (start, end uint64) {
	skipped := arraylist.New()
	start = p.peek().Start
	end = start
	for !set.has(p.peek().Type) {
		tok := p.advance()
		skipped.Add(tok)
		end = tok.End
	}
	return start, end
}

func (p *Parser) recordRecovered(start, end uint64, message string, expected []string) {
	p.sink.Record(Error{
		Kind:     Recovered,
		Span:     p.source.Span(start, end),
		Message:  message,
		Expected: expected,
	})
}

func (p *Parser) recordSyntactic(message string, expected []string) {
	tok := p.peek()
	p.sink.Record(Error{
		Kind:     Syntactic,
		Span:     p.source.Span(tok.Start, tok.End),
		Message:  message,
		Expected: expected,
	})
}

func (p *Parser) recordUser(start, end uint64, message string) {
	p.sink.Record(Error{
		Kind:    User,
		Span:    p.source.Span(start, end),
		Message: message,
	})
}
