package parse

import (
	"testing"

	cstparse "github.com/cedarcst/cstparse"
	"github.com/cedarcst/cstparse/cst"
)

func mustGet[T any](t *testing.T, n cst.Node[T], what string) T {
	t.Helper()
	v, ok := n.Get()
	if !ok {
		t.Fatalf("%s: expected Some, got None", what)
	}
	return v
}

func TestPermitMinimal(t *testing.T) {
	node, errs := Policies(`permit(principal, action, resource);`)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	policies := mustGet(t, node, "Policies")
	if len(policies.Items) != 1 {
		t.Fatalf("got %d policies, want 1", len(policies.Items))
	}
	policy := mustGet(t, policies.Items[0], "Policy")
	if policy.Kind != cst.PolicyOK {
		t.Fatalf("policy Kind = %v, want PolicyOK", policy.Kind)
	}
	if policy.Body.Effect.Kind != cst.IdentPermit {
		t.Errorf("effect = %v, want IdentPermit", policy.Body.Effect.Kind)
	}
	if len(policy.Body.Variables) != 3 {
		t.Fatalf("got %d variables, want 3", len(policy.Body.Variables))
	}
	wantVars := []cst.IdentKind{cst.IdentPrincipal, cst.IdentAction, cst.IdentResource}
	for i, w := range wantVars {
		vd := mustGet(t, policy.Body.Variables[i], "VariableDef")
		if vd.Variable.Kind != w {
			t.Errorf("variable %d = %v, want %v", i, vd.Variable.Kind, w)
		}
		if vd.EntityType != nil || vd.Ineq != nil || vd.UnusedTypeName != nil {
			t.Errorf("variable %d should have no optional parts", i)
		}
	}
	if len(policy.Body.Conds) != 0 {
		t.Errorf("got %d conds, want 0", len(policy.Body.Conds))
	}
}

func TestPrincipalEqualityConstraint(t *testing.T) {
	node, errs := Policies(`permit(principal == User::"alice", action, resource);`)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	policies := mustGet(t, node, "Policies")
	policy := mustGet(t, mustGet(t, node, "Policies").Items[0], "Policy")
	_ = policies
	vd := mustGet(t, policy.Body.Variables[0], "VariableDef")
	if vd.Ineq == nil {
		t.Fatal("expected an ineq constraint")
	}
	if vd.Ineq.Op != cst.RelEq {
		t.Errorf("ineq op = %v, want RelEq", vd.Ineq.Op)
	}
	ref := drillToRef(t, vd.Ineq.Expr)
	if ref.Kind != cst.RefUID || ref.Eid.Value != "alice" {
		t.Errorf("ref = %+v, want UID alice", ref)
	}
	if len(ref.Path.Path) != 0 || ref.Path.Name.Name != "User" {
		t.Errorf("ref path = %+v, want plain User", ref.Path)
	}
}

func TestIsIn(t *testing.T) {
	node, errs := Policies(`permit(principal is User in Group::"admins", action, resource);`)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	policies := mustGet(t, node, "Policies")
	policy := mustGet(t, policies.Items[0], "Policy")
	vd := mustGet(t, policy.Body.Variables[0], "VariableDef")
	if vd.EntityType == nil {
		t.Fatal("expected an entity_type constraint")
	}
	entityAdd := mustGet(t, *vd.EntityType, "EntityType")
	name := drillToName(t, cst.Node[cst.Add]{Value: &entityAdd})
	if name.Name.Name != "User" {
		t.Errorf("entity type = %+v, want User", name)
	}
	if vd.Ineq == nil || vd.Ineq.Op != cst.RelIn {
		t.Fatalf("expected ineq In, got %+v", vd.Ineq)
	}
	ref := drillToRef(t, vd.Ineq.Expr)
	if ref.Kind != cst.RefUID || ref.Eid.Value != "admins" || ref.Path.Name.Name != "Group" {
		t.Errorf("ref = %+v, want Group::\"admins\"", ref)
	}
}

func TestExtendedHasIfKeyword(t *testing.T) {
	node, errs := Policies(`permit(principal, action, resource) when { principal has if.then.else };`)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	policies := mustGet(t, node, "Policies")
	policy := mustGet(t, policies.Items[0], "Policy")
	if len(policy.Body.Conds) != 1 {
		t.Fatalf("got %d conds, want 1", len(policy.Body.Conds))
	}
	cond := mustGet(t, policy.Body.Conds[0], "Cond")
	if cond.Expr == nil {
		t.Fatal("expected a non-empty when body")
	}
	expr := mustGet(t, *cond.Expr, "Expr")
	relation := drillExprToRelation(t, expr)
	if relation.Kind != cst.RelationHas {
		t.Fatalf("relation kind = %v, want RelationHas", relation.Kind)
	}
	member := drillAddToMember(t, relation.Field)
	primary := mustGet(t, member.Item, "Primary")
	if primary.Kind != cst.PrimaryName || primary.Name.Name.Kind != cst.IdentIf {
		t.Fatalf("expected synthesized If primary, got %+v", primary)
	}
	if len(member.Access) != 2 {
		t.Fatalf("got %d member accesses, want 2 (then, else)", len(member.Access))
	}
	if member.Access[0].Field.Kind != cst.IdentThen || member.Access[1].Field.Kind != cst.IdentElse {
		t.Errorf("access chain = %+v, want then, else", member.Access)
	}
}

func TestEmptyWhenBody(t *testing.T) {
	node, errs := Policies(`permit(principal, action, resource) when {};`)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	policy := mustGet(t, mustGet(t, node, "Policies").Items[0], "Policy")
	cond := mustGet(t, policy.Body.Conds[0], "Cond")
	if cond.Expr != nil {
		t.Errorf("expected nil Expr for an empty when body, got %+v", cond.Expr)
	}
}

func TestBareAnnotation(t *testing.T) {
	node, errs := Policies("@deprecated\npermit(principal, action, resource);")
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	policy := mustGet(t, mustGet(t, node, "Policies").Items[0], "Policy")
	if len(policy.Body.Annotations) != 1 {
		t.Fatalf("got %d annotations, want 1", len(policy.Body.Annotations))
	}
	ann := mustGet(t, policy.Body.Annotations[0], "Annotation")
	if ann.Key.Kind != cst.IdentUser || ann.Key.Name != "deprecated" {
		t.Errorf("annotation key = %+v, want user ident 'deprecated'", ann.Key)
	}
	if ann.Value != nil {
		t.Errorf("expected nil Value for a bare annotation, got %+v", ann.Value)
	}
}

func TestAnnotationWithValue(t *testing.T) {
	node, errs := Policies(`@id("policy-1") permit(principal, action, resource);`)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	policy := mustGet(t, mustGet(t, node, "Policies").Items[0], "Policy")
	ann := mustGet(t, policy.Body.Annotations[0], "Annotation")
	if ann.Value == nil || ann.Value.Value != "policy-1" {
		t.Errorf("annotation value = %+v, want policy-1", ann.Value)
	}
}

func TestMultiPolicyRecoveryReportsOneErrorPerBadPolicy(t *testing.T) {
	input := "foo;\npermit(principal, action, resource);"
	node, errs := Policies(input)
	if len(errs) != 1 {
		t.Fatalf("got %d errors, want 1: %v", len(errs), errs)
	}
	if errs[0].Kind != Recovered {
		t.Errorf("error kind = %v, want Recovered", errs[0].Kind)
	}
	policies := mustGet(t, node, "Policies")
	if len(policies.Items) != 2 {
		t.Fatalf("got %d policies, want 2", len(policies.Items))
	}
	if v, ok := policies.Items[0].Get(); !ok || v.Kind != cst.PolicyError {
		t.Errorf("first policy should be a tolerant PolicyError placeholder, got %+v, ok=%v", v, ok)
	}
	if v, ok := policies.Items[1].Get(); !ok || v.Kind != cst.PolicyOK {
		t.Errorf("second policy should parse cleanly, got %+v, ok=%v", v, ok)
	}
}

func TestStrictModeProducesNoneOnFailure(t *testing.T) {
	node, errs := Policies("foo;", WithTolerant(false))
	if len(errs) != 1 {
		t.Fatalf("got %d errors, want 1", len(errs))
	}
	policies := mustGet(t, node, "Policies")
	if policies.Items[0].IsSome() {
		t.Error("expected a None node in strict mode")
	}
}

func TestLoneEqualsIsAcceptedAsInvalidSingleEq(t *testing.T) {
	node, errs := Expr(`1 = 2`)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	relation := drillExprToRelation(t, mustGet(t, node, "Expr"))
	if relation.Kind != cst.RelationCommon || len(relation.CommonExtended) != 1 {
		t.Fatalf("relation = %+v, want a Common relation with one tail", relation)
	}
	if relation.CommonExtended[0].Op != cst.RelInvalidSingleEq {
		t.Errorf("op = %v, want RelInvalidSingleEq", relation.CommonExtended[0].Op)
	}
}

func TestSlotOnlyValidAsPrimary(t *testing.T) {
	node, errs := Policies(`permit(principal, action, resource) when { x.?principal };`)
	if len(errs) != 1 {
		t.Fatalf("got %d errors, want 1: %v", len(errs), errs)
	}
	if errs[0].Kind != Recovered {
		t.Errorf("error kind = %v, want Recovered", errs[0].Kind)
	}
	policy := mustGet(t, mustGet(t, node, "Policies").Items[0], "Policy")
	cond := mustGet(t, policy.Body.Conds[0], "Cond")
	expr := mustGet(t, *cond.Expr, "Expr")
	if expr.Kind != cst.ExprError {
		t.Errorf("expr kind = %v, want ExprError", expr.Kind)
	}
}

func TestTrailingCommaIsTolerated(t *testing.T) {
	node, errs := Policies(`permit(principal, action, resource,);`)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	policy := mustGet(t, mustGet(t, node, "Policies").Items[0], "Policy")
	if len(policy.Body.Variables) != 3 {
		t.Fatalf("got %d variables, want 3", len(policy.Body.Variables))
	}
}

func TestSpanEnclosesWholeInput(t *testing.T) {
	input := `permit(principal, action, resource);`
	node, _ := Policies(input)
	policies := mustGet(t, node, "Policies")
	if got := policies.Items[0].Span.Text(); got != input {
		t.Errorf("Span.Text() = %q, want %q", got, input)
	}
}

func TestWithSpansFalseYieldsZeroSpans(t *testing.T) {
	src := cstparse.NewSource("", `permit(principal, action, resource);`)
	node, _ := Policies(src.Text(), WithSource(src), WithSpans(false))
	policies := mustGet(t, node, "Policies")
	if policies.Items[0].Span != (cstparse.Span{}) {
		t.Errorf("expected zero span with WithSpans(false), got %+v", policies.Items[0].Span)
	}
}

func TestPrecedenceMultBindsTighterThanAdd(t *testing.T) {
	node, errs := Expr(`1 + 2 * 3`)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	add := drillExprToAdd(t, mustGet(t, node, "Expr"))
	if len(add.Extended) != 1 || add.Extended[0].Op != cst.OpAdd {
		t.Fatalf("add = %+v, want a single '+' extension", add)
	}
	mult := mustGet(t, add.Extended[0].Operand, "Mult")
	if len(mult.Extended) != 1 || mult.Extended[0].Op != cst.OpMul {
		t.Fatalf("expected 2*3 folded into the add extension's operand, got %+v", mult)
	}
}

func TestAddIsLeftAssociativeFlatChain(t *testing.T) {
	node, errs := Expr(`1 - 2 - 3`)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	add := drillExprToAdd(t, mustGet(t, node, "Expr"))
	if len(add.Extended) != 2 {
		t.Fatalf("got %d extensions, want 2 (a flat left-associative chain)", len(add.Extended))
	}
	for _, ext := range add.Extended {
		if ext.Op != cst.OpSub {
			t.Errorf("extension op = %v, want OpSub", ext.Op)
		}
	}
}

// --- helpers ------------------------------------------------------------

func drillExprToRelation(t *testing.T, e cst.Expr) cst.Relation {
	t.Helper()
	if e.Kind != cst.ExprOr {
		t.Fatalf("expr kind = %v, want ExprOr", e.Kind)
	}
	or := mustGet(t, e.Or, "Or")
	and := mustGet(t, or.Initial, "And")
	return mustGet(t, and.Initial, "Relation")
}

func drillExprToAdd(t *testing.T, e cst.Expr) cst.Add {
	t.Helper()
	relation := drillExprToRelation(t, e)
	if relation.Kind != cst.RelationCommon {
		t.Fatalf("relation kind = %v, want RelationCommon", relation.Kind)
	}
	return mustGet(t, relation.CommonInitial, "Add")
}

func drillAddToMember(t *testing.T, add cst.Node[cst.Add]) cst.Member {
	t.Helper()
	a := mustGet(t, add, "Add")
	mult := mustGet(t, a.Initial, "Mult")
	unary := mustGet(t, mult.Initial, "Unary")
	return mustGet(t, unary.Item, "Member")
}

func drillToName(t *testing.T, add cst.Node[cst.Add]) cst.Name {
	t.Helper()
	member := drillAddToMember(t, add)
	primary := mustGet(t, member.Item, "Primary")
	if primary.Kind != cst.PrimaryName {
		t.Fatalf("primary kind = %v, want PrimaryName", primary.Kind)
	}
	return primary.Name
}

func drillToRef(t *testing.T, e cst.Node[cst.Expr]) cst.Ref {
	t.Helper()
	relation := drillExprToRelation(t, mustGet(t, e, "Expr"))
	member := drillAddToMember(t, relation.CommonInitial)
	primary := mustGet(t, member.Item, "Primary")
	if primary.Kind != cst.PrimaryRef {
		t.Fatalf("primary kind = %v, want PrimaryRef", primary.Kind)
	}
	return primary.Ref
}
