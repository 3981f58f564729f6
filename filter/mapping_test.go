package filter

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/hugr-lab/memquery/record"
)

func TestTransform(t *testing.T) {
	n := AllOf(
		In("first", "Bob", "Sally"),
		AnyOf(Eq("last", "Smith"), Compare("age", OpGt, 21)),
	)
	m := FieldMap{"first": "firstName", "last": "lastName"}

	got := Transform(n, m)

	want := AllOf(
		In("firstName", "Bob", "Sally"),
		AnyOf(Eq("lastName", "Smith"), Compare("age", OpGt, 21)),
	)
	if diff := cmp.Diff(Node(want), got, valueComparer); diff != "" {
		t.Errorf("Transform mismatch (-want +got):\n%s", diff)
	}

	// The input tree is untouched.
	if diff := cmp.Diff(Node(AllOf(
		In("first", "Bob", "Sally"),
		AnyOf(Eq("last", "Smith"), Compare("age", OpGt, 21)),
	)), Node(n), valueComparer); diff != "" {
		t.Errorf("input modified (-want +got):\n%s", diff)
	}
}

func TestTransformSharesNoState(t *testing.T) {
	in := In("a", 1, 2)
	out := Transform(in, FieldMap{"a": "b"}).(*Comparison)

	out.Values[0] = record.NumberValue(99)
	if in.Values[0].AsNumber() != 1 {
		t.Error("operand list shared between input and output")
	}
}

func TestTransformNil(t *testing.T) {
	if got := Transform(nil, FieldMap{"a": "b"}); got != nil {
		t.Errorf("expected nil, got %s", got)
	}
}

// wrappedComparison satisfies Node through embedding but is not one of the
// node types Transform knows.
type wrappedComparison struct {
	*Comparison
}

func TestTransformUnknownNodeFailsClosed(t *testing.T) {
	n := wrappedComparison{Eq("a", 1)}

	got := Transform(n, FieldMap{"a": "b"})
	if got == nil {
		t.Fatal("unknown node must not be dropped")
	}
	if _, err := Compile(got); err == nil {
		t.Error("expected Compile to reject the unknown node type")
	}
	if _, err := Compile(Transform(AllOf(n), FieldMap{"a": "b"})); err == nil {
		t.Error("expected Compile to reject the unknown node inside a group")
	}
}

func TestTransformRoundTrip(t *testing.T) {
	m := FieldMap{"first": "firstName", "last": "lastName", "age": ""}
	inv, err := m.Inverse()
	if err != nil {
		t.Fatalf("Inverse failed: %v", err)
	}

	n := AllOf(Eq("first", "Bob"), Between("age", 1, 5), Is("other", nil))
	back := Transform(Transform(n, m), inv)
	if diff := cmp.Diff(Node(n), back, valueComparer); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestTransformPreservesMatches(t *testing.T) {
	m := FieldMap{"first": "firstName"}
	source := []record.Map{{"first": "Bob"}, {"first": "Alice"}}
	target := []record.Map{{"firstName": "Bob"}, {"firstName": "Alice"}}

	n := Compare("first", OpLike, "B%")
	a, err := Evaluate(source, n)
	if err != nil {
		t.Fatal(err)
	}
	b, err := Evaluate(target, Transform(n, m))
	if err != nil {
		t.Fatal(err)
	}
	if len(a) != 1 || len(b) != 1 {
		t.Errorf("expected one match on both sides, got %d and %d", len(a), len(b))
	}
}

func TestInverseConflict(t *testing.T) {
	_, err := FieldMap{"a": "x", "b": "x"}.Inverse()

	var mapErr *MappingError
	if !errors.As(err, &mapErr) {
		t.Fatalf("expected *MappingError, got %v", err)
	}
	if mapErr.Target != "x" || mapErr.Sources != [2]string{"a", "b"} {
		t.Errorf("unexpected error details: %+v", mapErr)
	}

	// An entry mapping onto an existing source name through identity collides too.
	if _, err := (FieldMap{"a": "b", "b": ""}).Inverse(); err == nil {
		t.Error("expected conflict for a->b and identity b")
	}
}

func TestFields(t *testing.T) {
	n := AllOf(Eq("a", 1), AnyOf(Eq("b", 1), Eq("a", 2)), Is("c", nil))
	if diff := cmp.Diff([]string{"a", "b", "c"}, Fields(n)); diff != "" {
		t.Errorf("Fields mismatch (-want +got):\n%s", diff)
	}
	if got := Fields(nil); len(got) != 0 {
		t.Errorf("expected no fields, got %v", got)
	}
}
