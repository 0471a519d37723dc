package cst

import (
	"testing"

	cstparse "github.com/cedarcst/cstparse"
)

func TestBuildHonorsKeepSpans(t *testing.T) {
	src := cstparse.NewSource("", "hello world")
	n := Build(0, 5, src, 42)
	if !n.IsSome() {
		t.Fatal("Build should produce a Some node")
	}
	if v, _ := n.Get(); v != 42 {
		t.Errorf("Get() = %d, want 42", v)
	}
	if n.Span.Text() != "hello" {
		t.Errorf("Span.Text() = %q, want %q", n.Span.Text(), "hello")
	}

	src.SetKeepSpans(false)
	n2 := Build(0, 5, src, 42)
	if n2.Span != (cstparse.Span{}) {
		t.Errorf("Span should be zero when keep_spans is off, got %+v", n2.Span)
	}
}

func TestBuildNoneIsAlwaysNone(t *testing.T) {
	src := cstparse.NewSource("", "abc")
	n := BuildNone[int](0, 3, src)
	if n.IsSome() {
		t.Fatal("BuildNone should never produce a Some node")
	}
	if _, ok := n.Get(); ok {
		t.Error("Get() on a None node should report false")
	}
}
