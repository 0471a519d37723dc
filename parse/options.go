package parse

import cstparse "github.com/cedarcst/cstparse"

// config gathers the per-call parse policy: which Source to attribute
// spans to, whether to keep spans at all, whether recovery produces
// tolerant placeholders or bare None nodes, and where diagnostics go.
// It is assembled from Options the same way lr/scanner.Option configures
// a DefaultTokenizer.
type config struct {
	source    *cstparse.Source
	keepSpans bool
	tolerant  bool
	sink      Sink
}

// Option configures a parse call.
type Option func(*config)

// WithSource attributes the parse to an existing Source handle, e.g. one
// shared across several entry-point calls against the same input.
func WithSource(s *cstparse.Source) Option {
	return func(c *config) { c.source = s }
}

// WithSpans toggles span retention (the source's keep_spans flag). Default
// true.
func WithSpans(keep bool) Option {
	return func(c *config) { c.keepSpans = keep }
}

// WithTolerant selects tolerant recovery (PolicyError/ErrorExpr
// placeholders) versus strict recovery (bare None nodes) at the two
// declared sync points. Default true (tolerant).
func WithTolerant(tolerant bool) Option {
	return func(c *config) { c.tolerant = tolerant }
}

// WithSink supplies a caller-owned error sink. If omitted, a SliceSink is
// created and its contents are returned alongside the parsed node.
func WithSink(sink Sink) Option {
	return func(c *config) { c.sink = sink }
}

func newConfig(input string, opts []Option) *config {
	c := &config{keepSpans: true, tolerant: true}
	for _, opt := range opts {
		opt(c)
	}
	if c.source == nil {
		c.source = cstparse.NewSource("", input)
	}
	c.source.SetKeepSpans(c.keepSpans)
	if c.sink == nil {
		c.sink = NewSliceSink()
	}
	return c
}

func collect(c *config) []Error {
	if s, ok := c.sink.(*SliceSink); ok {
		return s.Errors()
	}
	return nil
}
