package cst

// IdentKind distinguishes a reserved word used in identifier position from
// a user-chosen identifier. There is exactly one IdentKind per reserved
// word in the grammar, plus IdentUser for everything else; tokens are never
// reclassified after lexing, so a reserved word keeps its reserved-word
// variant even when it appears in a field-name or annotation-key position.
type IdentKind int

const (
	IdentUser IdentKind = iota
	IdentPrincipal
	IdentAction
	IdentResource
	IdentContext
	IdentPermit
	IdentForbid
	IdentWhen
	IdentUnless
	IdentIn
	IdentHas
	IdentLike
	IdentIs
	IdentThen
	IdentElse
	IdentIf
	IdentTrue
	IdentFalse
)

// Ident is the reserved-word/free-identifier sum type described by the
// grammar: Kind selects the variant, and Name carries the source text only
// for IdentUser (reserved-word variants have a fixed spelling).
type Ident struct {
	Kind IdentKind
	Name string
}

// Text returns the identifier's source spelling regardless of variant.
func (id Ident) Text() string {
	if id.Kind == IdentUser {
		return id.Name
	}
	return reservedSpelling[id.Kind]
}

var reservedSpelling = map[IdentKind]string{
	IdentPrincipal: "principal",
	IdentAction:    "action",
	IdentResource:  "resource",
	IdentContext:   "context",
	IdentPermit:    "permit",
	IdentForbid:    "forbid",
	IdentWhen:      "when",
	IdentUnless:    "unless",
	IdentIn:        "in",
	IdentHas:       "has",
	IdentLike:      "like",
	IdentIs:        "is",
	IdentThen:      "then",
	IdentElse:      "else",
	IdentIf:        "if",
	IdentTrue:      "true",
	IdentFalse:     "false",
}

// ReservedIdentKind maps a reserved-word spelling to its Ident variant, or
// (0, false) if word is not reserved.
func ReservedIdentKind(word string) (IdentKind, bool) {
	for k, spelling := range reservedSpelling {
		if spelling == word {
			return k, true
		}
	}
	return IdentUser, false
}
