package cst

// Annotation is an `@key("value")` decoration preceding a policy. Value is
// nil for a bare `@key` annotation; a malformed value fails the whole Policy
// production instead of leaving Value nil. The original-source grammar
// treats annotation values as plain string literals, never richer
// expressions.
type Annotation struct {
	Key   Ident
	Value *Str
}

// Ineq is a VariableDef's optional "(RelOp Expr)" tail, e.g.
// `principal == User::"alice"` or `principal in Group::"g"`.
type Ineq struct {
	Op   RelOp
	Expr Node[Expr]
}

// VariableDef is one of a policy's three head variables (principal, action,
// resource), with its optional declared type, entity-type test and
// inequality tail.
type VariableDef struct {
	Variable       Ident
	UnusedTypeName *Node[Name]
	EntityType     *Node[Add]
	Ineq           *Ineq
}

// Cond is a `when { ... }` or `unless { ... }` clause. Expr is nil for an
// empty body (`when {}`), which the grammar accepts syntactically and
// leaves for a downstream stage to flag. For a present-but-unparsable
// expression it is non-nil and holds a None node (strict mode) or an
// ExprError placeholder (tolerant mode).
type Cond struct {
	Keyword Ident
	Expr    *Node[Expr]
}

// PolicyKind selects a Policy's variant.
type PolicyKind int

const (
	PolicyOK PolicyKind = iota
	PolicyError            // tolerant-recovery placeholder
)

// PolicyBody holds a successfully-parsed policy's parts.
type PolicyBody struct {
	Annotations []Node[Annotation]
	Effect      Ident
	Variables   []Node[VariableDef]
	Conds       []Node[Cond]
}

// Policy is a single policy statement, or (in tolerant mode) a PolicyError
// recovery placeholder covering the span that was skipped to resynchronize.
type Policy struct {
	Kind PolicyKind
	Body PolicyBody
}

// Policies is the ordered sequence of policies in a source file, in
// textual order.
type Policies struct {
	Items []Node[Policy]
}
