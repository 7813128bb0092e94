package types

import (
	"testing"

	"github.com/sable-lang/sable/internal/reader"
)

func TestStructEqualityIsNominal(t *testing.T) {
	a := NewStruct("Meters", Field{Name: "v", Type: Float})
	b := NewStruct("Feet", Field{Name: "v", Type: Float})

	if Equal(a, b) {
		t.Fatalf("structs with different names must differ")
	}
	if !Equal(a, NewStruct("Meters", Field{Name: "v", Type: Float})) {
		t.Fatalf("same-named structs should be equal")
	}
}

func TestRecordEqualityIgnoresFieldOrder(t *testing.T) {
	a := NewRecord(Field{Name: "x", Type: Integer}, Field{Name: "y", Type: String})
	b := NewRecord(Field{Name: "y", Type: String}, Field{Name: "x", Type: Integer})
	if !Equal(a, b) {
		t.Fatalf("expected %s == %s", a, b)
	}
}

func TestCompatible(t *testing.T) {
	tests := []struct {
		name string
		a, b *Type
		want bool
	}{
		{"same", Integer, Integer, true},
		{"different", Integer, Float, false},
		{"unknown matches anything", Unknown, String, true},
		{"empty list element", NewList(Unknown), NewList(Integer), true},
		{"list elements differ", NewList(String), NewList(Integer), false},
		{"list vs tuple", NewList(Unknown), NewTuple(Integer), false},
		{"tuple with hole", NewTuple(Integer, Unknown), NewTuple(Integer, Bool), true},
		{"record field", NewRecord(Field{Name: "xs", Type: NewList(Unknown)}), NewRecord(Field{Name: "xs", Type: NewList(Float)}), true},
		{"struct stays nominal", NewStruct("A"), NewStruct("B"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Compatible(tt.a, tt.b); got != tt.want {
				t.Errorf("Compatible(%s, %s) = %t, want %t", tt.a, tt.b, got, tt.want)
			}
			if got := Compatible(tt.b, tt.a); got != tt.want {
				t.Errorf("Compatible(%s, %s) = %t, want %t", tt.b, tt.a, got, tt.want)
			}
		})
	}
}

func TestTypeString(t *testing.T) {
	tests := []struct {
		typ  *Type
		want string
	}{
		{Integer, "Integer"},
		{NewList(Float), "List<Float>"},
		{NewTuple(Integer, Bool), "(Integer, Bool)"},
		{NewRecord(Field{Name: "x", Type: Integer}), "{x: Integer}"},
		{NewFunction([]*Type{Integer}, Bool), "fn(Integer) -> Bool"},
		{NewQuantity("length"), "Quantity<length>"},
	}

	for _, tt := range tests {
		if got := tt.typ.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestUnifyOccursCheck(t *testing.T) {
	ie := NewInferenceEngine()
	v := ie.FreshVar()
	if err := ie.Unify(v, NewList(v)); err == nil {
		t.Fatalf("expected occurs check failure")
	}
}

func TestUnifyUnknownIsWildcard(t *testing.T) {
	ie := NewInferenceEngine()
	if err := ie.Unify(Unknown, Integer); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := ie.Unify(Integer, Float); err == nil {
		t.Fatalf("expected mismatch")
	}
}

func infer(t *testing.T, src string, env *Env) (*Type, error) {
	t.Helper()
	expr, err := reader.ParseExpr(src)
	if err != nil {
		t.Fatalf("parse %q: %v", src, err)
	}
	return NewInferenceEngine().InferExpr(expr, env)
}

func TestInferExpressions(t *testing.T) {
	tests := []struct {
		src  string
		want *Type
	}{
		{"(+ 1 2)", Integer},
		{"(/ 1.0 2.0)", Float},
		{"(== 1 2)", Bool},
		{"(&& true false)", Bool},
		{"[1 2 3]", NewList(Integer)},
		{"(__index__ [1 2] 0)", Integer},
		{"(__block__ (= (let x) 1) (+ x 2))", Integer},
		{"(match true (-> true 1) (-> false 2))", Integer},
		{`{(= name "a") (= n 1)}`, NewRecord(Field{Name: "name", Type: String}, Field{Name: "n", Type: Integer})},
		{`(. {(= n 1)} n)`, Integer},
		{"(__block__ (fn inc x (+ x 1)) (inc 4))", Integer},
		{"(|> 10 (- 2))", Integer},
	}

	for _, tt := range tests {
		env := NewEnv(nil)
		env.Define("true", Bool)
		env.Define("false", Bool)

		got, err := infer(t, tt.src, env)
		if err != nil {
			t.Errorf("%s: unexpected error: %v", tt.src, err)
			continue
		}
		if !Equal(got, tt.want) {
			t.Errorf("%s: got %s, want %s", tt.src, got, tt.want)
		}
	}
}

func TestInferErrors(t *testing.T) {
	for _, src := range []string{"(+ 1 2.0)", "(== 1 \"a\")", "missing", "(&& 1 true)"} {
		env := NewEnv(nil)
		env.Define("true", Bool)
		if _, err := infer(t, src, env); err == nil {
			t.Errorf("%s: expected error", src)
		}
	}
}

func TestIdentityFunctionLeavesVariables(t *testing.T) {
	got, err := infer(t, "(fn id x x)", NewEnv(nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Kind != KindFunction || !got.HasVars() {
		t.Fatalf("expected polymorphic function type, got %s", got)
	}
}
