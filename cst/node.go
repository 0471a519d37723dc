// Package cst defines the Cedar Concrete Syntax Tree: every production
// result the grammar engine builds, plus the Node wrapper that attaches an
// optional source span to it.
package cst

import "github.com/cedarcst/cstparse"

// Node wraps a production result together with its optional source span.
// A nil Value means an unrecoverable local failure at this point in the
// tree; the shape one level up stays intact so a caller can still walk
// past it. Span is the zero Span when the source's keep_spans flag is off.
type Node[T any] struct {
	Value *T
	Span  cstparse.Span
}

// Some builds a successful node.
func Some[T any](v T, span cstparse.Span) Node[T] {
	return Node[T]{Value: &v, Span: span}
}

// None builds a node representing an unrecoverable local failure, still
// carrying whatever span the recovery logic could attribute to it.
func None[T any](span cstparse.Span) Node[T] {
	return Node[T]{Value: nil, Span: span}
}

// IsSome reports whether the node carries a value.
func (n Node[T]) IsSome() bool {
	return n.Value != nil
}

// Get returns the wrapped value and whether it was present, mirroring the
// comma-ok idiom used for map lookups elsewhere in this codebase.
func (n Node[T]) Get() (T, bool) {
	if n.Value == nil {
		var zero T
		return zero, false
	}
	return *n.Value, true
}

// Build is the Node Builder: given a byte range, a value and the source
// that produced it, it returns a Node whose span is populated only when the
// source's keep_spans flag is set.
func Build[T any](start, end uint64, source *cstparse.Source, value T) Node[T] {
	if source.KeepSpans() {
		return Some(value, source.Span(start, end))
	}
	return Some(value, cstparse.Span{})
}

// BuildNone is Build's counterpart for unrecoverable local failures.
func BuildNone[T any](start, end uint64, source *cstparse.Source) Node[T] {
	if source.KeepSpans() {
		return None[T](source.Span(start, end))
	}
	return None[T](cstparse.Span{})
}
