package ir

import (
	"strings"
	"testing"

	"github.com/sable-lang/sable/internal/types"
)

// buildDiamond builds
//
//	bb0: br %0, bb1, bb2
//	bb1: %1 = 1; jmp bb3
//	bb2: %2 = 2; jmp bb3
//	bb3: %3 = phi [bb1, %1], [bb2, %2]; ret %3
func buildDiamond(t *testing.T) *Function {
	t.Helper()
	b := NewBuilder("test")
	fb := b.Function("choose", []Param{{Name: "c", Type: types.Bool}}, types.Integer)

	entry := fb.NewBlock()
	thenID, elseID, mergeID := fb.NewBlockID(), fb.NewBlockID(), fb.NewBlockID()
	fb.AddBlock(entry.Branch(fb.Param(0), thenID, elseID))

	then := fb.StartBlock(thenID)
	one := then.Const(types.Integer, IntConst(1))
	fb.AddBlock(then.Jump(mergeID))

	els := fb.StartBlock(elseID)
	two := els.Const(types.Integer, IntConst(2))
	fb.AddBlock(els.Jump(mergeID))

	merge := fb.StartBlock(mergeID)
	phi := merge.Phi(types.Integer, PhiIncoming{thenID, one}, PhiIncoming{elseID, two})
	fb.AddBlock(merge.Ret(phi))

	fn := fb.Finish()
	b.Add(fn)
	return fn
}

func TestBuilderNumbering(t *testing.T) {
	fn := buildDiamond(t)

	var ids []ValueID
	for _, b := range fn.Blocks {
		for _, in := range b.Instrs {
			if id, ok := in.Result(); ok {
				ids = append(ids, id)
			}
		}
	}
	want := []ValueID{1, 2, 3}
	if len(ids) != len(want) {
		t.Fatalf("ids = %v, want %v", ids, want)
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Fatalf("ids = %v, want %v", ids, want)
		}
	}
	if err := Verify(fn); err != nil {
		t.Fatalf("Verify: %v", err)
	}
}

func TestVoidCallAllocatesNoID(t *testing.T) {
	fb := NewBuilder("m").Function("f", nil, types.Nil)
	bb := fb.NewBlock()
	bb.CallVoid("print")
	v := bb.Const(types.Integer, IntConst(1))
	if v != 0 {
		t.Fatalf("const after void call got %s, want %%0", v)
	}
}

func TestVerifyRejectsMalformed(t *testing.T) {
	tests := []struct {
		name string
		fn   *Function
	}{
		{
			name: "unterminated",
			fn:   &Function{Name: "f", Blocks: []*Block{{ID: 0}}},
		},
		{
			name: "double definition",
			fn: &Function{Name: "f", Blocks: []*Block{{
				ID: 0,
				Instrs: []Instr{
					Const{Dst: 0, Type: types.Integer, Value: IntConst(1)},
					Const{Dst: 0, Type: types.Integer, Value: IntConst(2)},
				},
				Term: Return{Value: 0, HasValue: true},
			}}},
		},
		{
			name: "undefined operand",
			fn: &Function{Name: "f", Blocks: []*Block{{
				ID:   0,
				Term: Return{Value: 7, HasValue: true},
			}}},
		},
		{
			name: "phi from non-predecessor",
			fn: &Function{Name: "f", Blocks: []*Block{
				{ID: 0, Instrs: []Instr{Const{Dst: 0, Type: types.Integer, Value: IntConst(1)}}, Term: Jump{Target: 1}},
				{ID: 1, Instrs: []Instr{Phi{Dst: 1, Type: types.Integer, Incoming: []PhiIncoming{{Block: 5, Value: 0}}}}, Term: Return{Value: 1, HasValue: true}},
			}},
		},
	}

	for _, tt := range tests {
		if err := Verify(tt.fn); err == nil {
			t.Errorf("%s: expected verification failure", tt.name)
		}
	}
}

func TestDominators(t *testing.T) {
	fn := buildDiamond(t)
	dt := Dominators(fn)

	if idom, _ := dt.Idom(3); idom != 0 {
		t.Fatalf("idom(bb3) = %s, want bb0", idom)
	}
	if !dt.Dominates(0, 3) {
		t.Fatalf("entry must dominate merge")
	}
	if dt.Dominates(1, 3) || dt.Dominates(2, 3) {
		t.Fatalf("arms must not dominate merge")
	}
	if !dt.Dominates(1, 1) {
		t.Fatalf("a block dominates itself")
	}
}

func TestPrinter(t *testing.T) {
	b := NewBuilder("demo")
	fb := b.Function("main", nil, types.Integer)
	fb.Export()
	bb := fb.NewBlock()
	x := bb.Const(types.Integer, IntConst(2))
	y := bb.BinOp(OpAdd, types.Integer, x, x)
	fb.AddBlock(bb.Ret(y))
	b.Add(fb.Finish())

	out := b.Module().String()
	for _, want := range []string{
		"module demo",
		"exports main",
		"export fn main() -> Integer {",
		"%0: Integer = const 2",
		"%1: Integer = add %0, %0",
		"ret %1",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestMapOperands(t *testing.T) {
	in := Call{Dst: 3, HasResult: true, Callee: "f", Args: []ValueID{1, 2}}
	out := MapOperands(in, func(v ValueID) ValueID { return v + 10 }).(Call)
	if out.Args[0] != 11 || out.Args[1] != 12 {
		t.Fatalf("args = %v", out.Args)
	}
	if in.Args[0] != 1 {
		t.Fatalf("MapOperands must not modify its input")
	}
}
