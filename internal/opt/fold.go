package opt

import (
	"math"

	"github.com/sable-lang/sable/internal/ir"
)

// ConstantFolding evaluates BinOp and UnOp instructions whose operands are
// all constants and replaces them with a Const of the declared type.
// Integer arithmetic wraps; division and remainder by zero and shifts
// outside [0,64) are left alone.
type ConstantFolding struct{}

func (*ConstantFolding) Name() string { return "constant-folding" }

func (cf *ConstantFolding) Run(m *ir.Module) bool {
	changed := false
	for _, fn := range m.Functions {
		if cf.runFunction(fn) {
			changed = true
		}
	}
	return changed
}

func (cf *ConstantFolding) runFunction(fn *ir.Function) bool {
	known := make(map[ir.ValueID]ir.Constant)
	changed := false

	for _, b := range fn.Blocks {
		for i, in := range b.Instrs {
			switch x := in.(type) {
			case ir.Const:
				known[x.Dst] = x.Value
			case ir.BinOp:
				l, lok := known[x.LHS]
				r, rok := known[x.RHS]
				if !lok || !rok {
					continue
				}
				if c, ok := foldBinary(x.Op, l, r); ok {
					b.Instrs[i] = ir.Const{Dst: x.Dst, Type: x.Type, Value: c}
					known[x.Dst] = c
					changed = true
				}
			case ir.UnOp:
				v, ok := known[x.Operand]
				if !ok {
					continue
				}
				if c, ok := foldUnary(x.Op, v); ok {
					b.Instrs[i] = ir.Const{Dst: x.Dst, Type: x.Type, Value: c}
					known[x.Dst] = c
					changed = true
				}
			}
		}
	}
	return changed
}

func foldBinary(op ir.BinOpKind, l, r ir.Constant) (ir.Constant, bool) {
	if l.Kind != r.Kind {
		return ir.Constant{}, false
	}
	switch l.Kind {
	case ir.ConstInt:
		return foldInt(op, l.Int, r.Int)
	case ir.ConstFloat:
		return foldFloat(op, l.Float, r.Float)
	case ir.ConstBool:
		return foldBool(op, l.Bool, r.Bool)
	case ir.ConstString:
		return foldString(op, l.Str, r.Str)
	}
	return ir.Constant{}, false
}

func foldInt(op ir.BinOpKind, a, b int64) (ir.Constant, bool) {
	switch op {
	case ir.OpAdd:
		return ir.IntConst(a + b), true
	case ir.OpSub:
		return ir.IntConst(a - b), true
	case ir.OpMul:
		return ir.IntConst(a * b), true
	case ir.OpDiv:
		if b == 0 {
			return ir.Constant{}, false
		}
		return ir.IntConst(a / b), true
	case ir.OpRem:
		if b == 0 {
			return ir.Constant{}, false
		}
		return ir.IntConst(a % b), true
	case ir.OpAnd:
		return ir.IntConst(a & b), true
	case ir.OpOr:
		return ir.IntConst(a | b), true
	case ir.OpXor:
		return ir.IntConst(a ^ b), true
	case ir.OpShl:
		if b < 0 || b >= 64 {
			return ir.Constant{}, false
		}
		return ir.IntConst(a << uint(b)), true
	case ir.OpShr:
		if b < 0 || b >= 64 {
			return ir.Constant{}, false
		}
		return ir.IntConst(a >> uint(b)), true
	case ir.OpEq:
		return ir.BoolConst(a == b), true
	case ir.OpNe:
		return ir.BoolConst(a != b), true
	case ir.OpLt:
		return ir.BoolConst(a < b), true
	case ir.OpGt:
		return ir.BoolConst(a > b), true
	case ir.OpLe:
		return ir.BoolConst(a <= b), true
	case ir.OpGe:
		return ir.BoolConst(a >= b), true
	}
	return ir.Constant{}, false
}

func foldFloat(op ir.BinOpKind, a, b float64) (ir.Constant, bool) {
	switch op {
	case ir.OpAdd:
		return ir.FloatConst(a + b), true
	case ir.OpSub:
		return ir.FloatConst(a - b), true
	case ir.OpMul:
		return ir.FloatConst(a * b), true
	case ir.OpDiv:
		if b == 0 {
			return ir.Constant{}, false
		}
		return ir.FloatConst(a / b), true
	case ir.OpRem:
		if b == 0 {
			return ir.Constant{}, false
		}
		return ir.FloatConst(math.Mod(a, b)), true
	case ir.OpEq:
		return ir.BoolConst(a == b), true
	case ir.OpNe:
		return ir.BoolConst(a != b), true
	case ir.OpLt:
		return ir.BoolConst(a < b), true
	case ir.OpGt:
		return ir.BoolConst(a > b), true
	case ir.OpLe:
		return ir.BoolConst(a <= b), true
	case ir.OpGe:
		return ir.BoolConst(a >= b), true
	}
	return ir.Constant{}, false
}

func foldBool(op ir.BinOpKind, a, b bool) (ir.Constant, bool) {
	switch op {
	case ir.OpAnd:
		return ir.BoolConst(a && b), true
	case ir.OpOr:
		return ir.BoolConst(a || b), true
	case ir.OpXor, ir.OpNe:
		return ir.BoolConst(a != b), true
	case ir.OpEq:
		return ir.BoolConst(a == b), true
	}
	return ir.Constant{}, false
}

func foldString(op ir.BinOpKind, a, b string) (ir.Constant, bool) {
	switch op {
	case ir.OpEq:
		return ir.BoolConst(a == b), true
	case ir.OpNe:
		return ir.BoolConst(a != b), true
	case ir.OpLt:
		return ir.BoolConst(a < b), true
	case ir.OpGt:
		return ir.BoolConst(a > b), true
	case ir.OpLe:
		return ir.BoolConst(a <= b), true
	case ir.OpGe:
		return ir.BoolConst(a >= b), true
	}
	return ir.Constant{}, false
}

func foldUnary(op ir.UnOpKind, v ir.Constant) (ir.Constant, bool) {
	switch {
	case op == ir.OpNeg && v.Kind == ir.ConstInt:
		return ir.IntConst(-v.Int), true
	case op == ir.OpNeg && v.Kind == ir.ConstFloat:
		return ir.FloatConst(-v.Float), true
	case op == ir.OpNot && v.Kind == ir.ConstBool:
		return ir.BoolConst(!v.Bool), true
	case op == ir.OpNot && v.Kind == ir.ConstInt:
		return ir.IntConst(^v.Int), true
	}
	return ir.Constant{}, false
}
