package eval

import (
	"math/big"

	serrors "github.com/sable-lang/sable/internal/errors"
	"github.com/sable-lang/sable/internal/ir"
	"github.com/sable-lang/sable/internal/position"
	"github.com/sable-lang/sable/internal/syntax"
	"github.com/sable-lang/sable/internal/types"
	"github.com/sable-lang/sable/internal/units"
	"github.com/sable-lang/sable/internal/value"
)

var arithmeticOps = map[string]ir.BinOpKind{
	"+": ir.OpAdd,
	"-": ir.OpSub,
	"*": ir.OpMul,
	"/": ir.OpDiv,
}

var comparisonOps = map[string]ir.BinOpKind{
	"==": ir.OpEq,
	"!=": ir.OpNe,
	"<":  ir.OpLt,
	">":  ir.OpGt,
	"<=": ir.OpLe,
	">=": ir.OpGe,
}

func arithmeticForms() []*Form {
	var forms []*Form
	for _, op := range []string{"+", "-", "*", "/"} {
		op := op
		forms = append(forms, &Form{
			Name: op, MinArgs: 2, MaxArgs: 2, Support: Supported,
			apply: func(c *Context, args []value.Value, span position.Span) (value.Value, error) {
				return arithmetic(c.State.Units, op, args[0], args[1], span)
			},
			lower: func(lc *LowerContext, args []syntax.Expr, span position.Span) (ir.ValueID, error) {
				return lowerArithmetic(lc, op, args)
			},
		})
	}
	return forms
}

// arithmetic applies op with no implicit numeric coercion. Only + accepts
// quantities.
func arithmetic(reg *units.Registry, op string, l, r value.Value, span position.Span) (value.Value, error) {
	switch a := l.(type) {
	case value.Integer:
		b, ok := r.(value.Integer)
		if !ok {
			return nil, serrors.TypeMismatch("Integer", value.TypeName(r), span)
		}
		if op == "/" && b.IsZero() {
			return nil, serrors.Syntax(span, "division by zero")
		}
		res, err := a.Arith(op, b)
		if err != nil {
			return nil, serrors.Syntax(span, "integer overflow in %s %s %s", a, op, b)
		}
		return res, nil
	case value.Float:
		b, ok := r.(value.Float)
		if !ok {
			return nil, serrors.TypeMismatch("Float", value.TypeName(r), span)
		}
		switch op {
		case "+":
			return a + b, nil
		case "-":
			return a - b, nil
		case "*":
			return a * b, nil
		default:
			if b == 0 {
				return nil, serrors.Syntax(span, "division by zero")
			}
			return a / b, nil
		}
	case value.Quantity:
		if op != "+" {
			return nil, serrors.TypeMismatch("Integer or Float", value.TypeName(l), span)
		}
		return addToQuantity(reg, a, r, span)
	default:
		return nil, serrors.TypeMismatch("Integer or Float", value.TypeName(l), span)
	}
}

func addToQuantity(reg *units.Registry, q value.Quantity, r value.Value, span position.Span) (value.Value, error) {
	switch b := r.(type) {
	case value.Quantity:
		if b.Dimension != q.Dimension {
			return nil, serrors.TypeMismatch(value.TypeName(q), value.TypeName(b), span)
		}
		amount := b.Value
		if b.Unit != q.Unit {
			from, fok := reg.Lookup(b.Unit)
			to, tok := reg.Lookup(q.Unit)
			if !fok || !tok {
				return nil, serrors.Syntax(span, "cannot convert %s to %s", b.Unit, q.Unit)
			}
			converted, err := units.ConvertUnits(b.Value, from, to)
			if err != nil {
				return nil, serrors.Syntax(span, "%v", err)
			}
			amount = converted
		}
		q.Value += amount
		return q, nil
	case value.Float:
		q.Value += float64(b)
		return q, nil
	case value.Integer:
		f, _ := new(big.Float).SetInt(b.V).Float64()
		q.Value += f
		return q, nil
	default:
		return nil, serrors.TypeMismatch("Quantity or number", value.TypeName(r), span)
	}
}

func lowerArithmetic(lc *LowerContext, op string, args []syntax.Expr) (ir.ValueID, error) {
	l, err := lc.Gen(args[0])
	if err != nil {
		return 0, err
	}
	r, err := lc.Gen(args[1])
	if err != nil {
		return 0, err
	}

	lt, rt := lc.TypeOf(l), lc.TypeOf(r)
	result := types.Unknown
	switch {
	case op == "/":
		result = types.Float
	case lt.Kind == types.KindInteger && rt.Kind == types.KindInteger:
		result = types.Integer
	case lt.Kind == types.KindFloat && rt.Kind == types.KindFloat:
		result = types.Float
	}
	return lc.BinOp(arithmeticOps[op], result, l, r), nil
}

func logicForms() []*Form {
	lower := func(op ir.BinOpKind) lowerFunc {
		return func(lc *LowerContext, args []syntax.Expr, span position.Span) (ir.ValueID, error) {
			l, err := lc.Gen(args[0])
			if err != nil {
				return 0, err
			}
			r, err := lc.Gen(args[1])
			if err != nil {
				return 0, err
			}
			return lc.BinOp(op, types.Bool, l, r), nil
		}
	}
	return []*Form{
		{Name: "&&", MinArgs: 2, MaxArgs: 2, Support: Supported, eval: shortCircuit(false), lower: lower(ir.OpAnd)},
		{Name: "||", MinArgs: 2, MaxArgs: 2, Support: Supported, eval: shortCircuit(true), lower: lower(ir.OpOr)},
	}
}

// shortCircuit evaluates the right operand only when the left one does not
// already decide the result. stopOn is the deciding value.
func shortCircuit(stopOn bool) evalFunc {
	return func(c *Context, args []syntax.Expr, span position.Span) (value.Value, error) {
		l, err := evalBool(c, args[0])
		if err != nil {
			return nil, err
		}
		if l == stopOn {
			return value.Bool(l), nil
		}
		r, err := evalBool(c, args[1])
		if err != nil {
			return nil, err
		}
		return value.Bool(r), nil
	}
}

func evalBool(c *Context, e syntax.Expr) (bool, error) {
	v, err := c.Eval(e)
	if err != nil {
		return false, err
	}
	b, ok := value.Truthy(v)
	if !ok {
		return false, serrors.TypeMismatch("Bool", value.TypeName(v), e.GetSpan())
	}
	return b, nil
}

func comparisonForms() []*Form {
	var forms []*Form
	for _, op := range []string{"==", "!=", "<", ">", "<=", ">="} {
		op := op
		forms = append(forms, &Form{
			Name: op, MinArgs: 2, MaxArgs: 2, Support: Supported,
			apply: func(c *Context, args []value.Value, span position.Span) (value.Value, error) {
				return compare(op, args[0], args[1], span)
			},
			lower: func(lc *LowerContext, args []syntax.Expr, span position.Span) (ir.ValueID, error) {
				l, err := lc.Gen(args[0])
				if err != nil {
					return 0, err
				}
				r, err := lc.Gen(args[1])
				if err != nil {
					return 0, err
				}
				return lc.BinOp(comparisonOps[op], types.Bool, l, r), nil
			},
		})
	}
	return forms
}

// compare requires both operands to have the same runtime type.
func compare(op string, l, r value.Value, span position.Span) (value.Value, error) {
	if !value.SameType(l, r) {
		return nil, serrors.TypeMismatch(value.TypeName(l), value.TypeName(r), span)
	}
	switch op {
	case "==":
		return value.Bool(value.Equal(l, r)), nil
	case "!=":
		return value.Bool(!value.Equal(l, r)), nil
	}

	var cmp int
	switch a := l.(type) {
	case value.Integer:
		cmp = a.Cmp(r.(value.Integer))
	case value.Float:
		b := r.(value.Float)
		switch {
		case a < b:
			cmp = -1
		case a > b:
			cmp = 1
		case a != b:
			return value.Bool(false), nil // NaN
		}
	case value.String:
		b := r.(value.String)
		switch {
		case a < b:
			cmp = -1
		case a > b:
			cmp = 1
		}
	default:
		return nil, serrors.TypeMismatch("Integer, Float or String", value.TypeName(l), span)
	}

	switch op {
	case "<":
		return value.Bool(cmp < 0), nil
	case ">":
		return value.Bool(cmp > 0), nil
	case "<=":
		return value.Bool(cmp <= 0), nil
	default:
		return value.Bool(cmp >= 0), nil
	}
}
