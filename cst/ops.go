package cst

// RelOp is the set of relational operators accepted in a Relation tail.
// InvalidSingleEq is produced by a lone '=' — it is accepted syntactically
// so a downstream stage can raise a "did you mean ==" diagnostic; this core
// never rejects it.
type RelOp int

const (
	RelLess RelOp = iota
	RelLessEq
	RelGreater
	RelGreaterEq
	RelEq
	RelNotEq
	RelIn
	RelInvalidSingleEq
)

// ArithOp is the operator of an Add or Mult extension.
type ArithOp int

const (
	OpAdd ArithOp = iota
	OpSub
	OpMul
	OpDiv
	OpMod
)

// NegKind distinguishes a counted run of unary operators from the
// collapsed "more than four" variant.
type NegKind int

const (
	NegNone NegKind = iota
	NegBang
	NegOverBang
	NegDash
	NegOverDash
)

// NegOp is a run of leading '!' or '-' unary operators. Count is only
// meaningful for NegBang/NegDash and is always in [1,4]; five or more
// consecutive operators collapse to NegOverBang/NegOverDash with Count
// left at 0, per the grammar's unary-counting rule.
type NegOp struct {
	Kind  NegKind
	Count int
}

// CountNeg builds the NegOp for n consecutive occurrences of a unary
// operator (n >= 1). It is the single place the 4-vs-5-or-more collapse
// rule is implemented, so Unary parsing and any future caller agree.
func CountNeg(bang bool, n int) NegOp {
	switch {
	case n <= 0:
		return NegOp{}
	case bang && n <= 4:
		return NegOp{Kind: NegBang, Count: n}
	case bang:
		return NegOp{Kind: NegOverBang}
	case n <= 4:
		return NegOp{Kind: NegDash, Count: n}
	default:
		return NegOp{Kind: NegOverDash}
	}
}
