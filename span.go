package cstparse

import "fmt"

// Span is a byte-offset range (start…end) into a Source, following the same
// half-open, start/end pair gorgo.Span uses for token and node extents.
type Span struct {
	Start  uint64
	End    uint64
	Source *Source
}

// Len returns the number of bytes covered by the span.
func (s Span) Len() uint64 {
	return s.End - s.Start
}

// IsZero reports whether the span was never set.
func (s Span) IsZero() bool {
	return s.Start == 0 && s.End == 0 && s.Source == nil
}

// Text returns the slice of the source text covered by s, or "" if the span
// has no source.
func (s Span) Text() string {
	if s.Source == nil {
		return ""
	}
	return s.Source.Slice(s.Start, s.End)
}

func (s Span) String() string {
	return fmt.Sprintf("(%d…%d)", s.Start, s.End)
}
