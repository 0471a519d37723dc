package cst

// Str is a string literal's raw content: the text between the surrounding
// quotes, verbatim. Escape sequences are not decoded by this core.
type Str struct {
	Value string
}

// LiteralKind selects a Literal's variant.
type LiteralKind int

const (
	LitTrue LiteralKind = iota
	LitFalse
	LitNum
	LitStr
)

// Literal is a boolean, unsigned-integer or string literal.
type Literal struct {
	Kind LiteralKind
	Num  uint64
	Str  Str
}

// Name is a '::'-separated entity type or function name: zero or more path
// segments followed by a final identifier.
type Name struct {
	Path []Ident
	Name Ident
}

// RefKind selects a Ref's variant: a UID reference (Type::"id") or a record
// initializer reference (Type::{k: v, ...}).
type RefKind int

const (
	RefUID RefKind = iota
	RefRecord
)

// RefInit is one "key: literal" pair inside a Ref's record-initializer
// variant.
type RefInit struct {
	Key   Ident
	Value Literal
}

// Ref is an entity reference, either `Name::"eid"` or `Name::{ k: v, ... }`.
type Ref struct {
	Kind   RefKind
	Path   Name
	Eid    Str
	RInits []RefInit
}

// SlotKind distinguishes the two well-known slots from a general named one.
type SlotKind int

const (
	SlotPrincipal SlotKind = iota
	SlotResource
	SlotOther
)

// Slot is a named template placeholder: ?principal, ?resource or ?name.
type Slot struct {
	Kind  SlotKind
	Other string
}
