package value

import (
	"math/big"
	"testing"

	"github.com/sable-lang/sable/internal/types"
)

func TestEnvironmentScoping(t *testing.T) {
	env := NewEnvironment()
	env.Define("x", NewInt(1))

	depth := env.Depth()
	env.PushScope()
	env.Define("x", NewInt(2))
	if v, _ := env.Get("x"); !Equal(v, NewInt(2)) {
		t.Fatalf("inner x = %v, want 2", v)
	}
	env.PopScope()

	if env.Depth() != depth {
		t.Fatalf("depth after pop = %d, want %d", env.Depth(), depth)
	}
	if v, _ := env.Get("x"); !Equal(v, NewInt(1)) {
		t.Fatalf("outer x = %v, want 1", v)
	}
}

func TestEnvironmentSetFindsOuterBinding(t *testing.T) {
	env := NewEnvironment()
	env.Define("x", NewInt(1))
	env.PushScope()
	if !env.Set("x", NewInt(5)) {
		t.Fatalf("Set should find outer binding")
	}
	env.PopScope()
	if v, _ := env.Get("x"); !Equal(v, NewInt(5)) {
		t.Fatalf("x = %v, want 5", v)
	}
	if env.Set("missing", Nil{}) {
		t.Fatalf("Set on an unbound name must fail")
	}
}

func TestCloneIsASnapshot(t *testing.T) {
	env := NewEnvironment()
	env.Define("x", NewInt(1))
	env.PushScope()
	env.Define("y", NewInt(10))

	snap := env.Clone()

	env.Set("x", NewInt(2))
	env.Define("y", NewInt(20))
	env.Define("z", NewInt(30))

	if v, _ := snap.Get("x"); !Equal(v, NewInt(1)) {
		t.Errorf("snapshot x = %v, want 1", v)
	}
	if v, _ := snap.Get("y"); !Equal(v, NewInt(10)) {
		t.Errorf("snapshot y = %v, want 10", v)
	}
	if _, ok := snap.Get("z"); ok {
		t.Errorf("snapshot should not see z")
	}

	snap.Define("w", NewInt(0))
	if _, ok := env.Get("w"); ok {
		t.Errorf("original should not see writes to the snapshot")
	}
}

func TestEquality(t *testing.T) {
	fn := &UserFunction{Name: "f"}
	tests := []struct {
		a, b Value
		want bool
	}{
		{NewInt(3), NewInt(3), true},
		{NewInt(3), Float(3), false},
		{String("a"), String("a"), true},
		{NewSymbol("k"), NewSymbol("k"), true},
		{List{Elems: []Value{NewInt(1)}}, List{Elems: []Value{NewInt(1)}}, true},
		{
			Record{Fields: []RecordField{{"x", NewInt(1)}, {"y", NewInt(2)}}},
			Record{Fields: []RecordField{{"y", NewInt(2)}, {"x", NewInt(1)}}},
			true,
		},
		{
			Record{TypeName: "A", Fields: []RecordField{{"v", NewInt(1)}}},
			Record{TypeName: "B", Fields: []RecordField{{"v", NewInt(1)}}},
			false,
		},
		{fn, fn, false},
	}

	for _, tt := range tests {
		if got := Equal(tt.a, tt.b); got != tt.want {
			t.Errorf("Equal(%s, %s) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestIntegerRange(t *testing.T) {
	if _, err := IntegerFromBig(MaxInteger); err != nil {
		t.Fatalf("max should fit: %v", err)
	}
	over := new(big.Int).Add(MaxInteger, big.NewInt(1))
	if _, err := IntegerFromBig(over); err != ErrOverflow {
		t.Fatalf("expected overflow, got %v", err)
	}

	max, _ := IntegerFromBig(MaxInteger)
	if _, err := max.Arith("+", NewInt(1)); err != ErrOverflow {
		t.Fatalf("expected overflow on add")
	}
	q, err := NewInt(-7).Arith("/", NewInt(2))
	if err != nil || q.String() != "-3" {
		t.Fatalf("-7 / 2 = %v (%v), want -3", q, err)
	}
}

func TestTypeOfStructRecord(t *testing.T) {
	r := Record{TypeName: "Point", Fields: []RecordField{{"x", NewInt(1)}}}
	typ := TypeOf(r)
	if typ.Kind != types.KindStruct || typ.Name != "Point" {
		t.Fatalf("TypeOf = %s, want Point", typ)
	}
	if TypeOf(Float(1)).String() != "Float" {
		t.Fatalf("unexpected float type")
	}
}

func TestFormatting(t *testing.T) {
	tests := []struct {
		v    Value
		want string
	}{
		{Float(2), "2.0"},
		{Float(2.5), "2.5"},
		{String("hi"), `"hi"`},
		{List{Elems: []Value{NewInt(1), NewInt(2)}}, "[1, 2]"},
		{Record{TypeName: "P", Fields: []RecordField{{"x", NewInt(1)}}}, "P {x = 1}"},
		{Quantity{Value: 2, Unit: "km", Dimension: "m"}, "2 km"},
	}
	for _, tt := range tests {
		if got := tt.v.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
	if Display(String("hi")) != "hi" {
		t.Errorf("Display should not quote strings")
	}
}
