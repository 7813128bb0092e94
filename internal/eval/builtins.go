package eval

import (
	"fmt"
	"math"
	"math/big"
	"strings"
	"unicode/utf8"

	serrors "github.com/sable-lang/sable/internal/errors"
	"github.com/sable-lang/sable/internal/position"
	"github.com/sable-lang/sable/internal/syntax"
	"github.com/sable-lang/sable/internal/types"
	"github.com/sable-lang/sable/internal/units"
	"github.com/sable-lang/sable/internal/value"
)

// NewGlobalEnvironment returns an environment holding the prelude: the
// constants true, false and nil, the built-in type names and the builtin
// functions.
func NewGlobalEnvironment() *value.Environment {
	env := value.NewEnvironment()
	Prelude(env)
	return env
}

// Prelude defines the built-in bindings in env's current scope.
func Prelude(env *value.Environment) {
	env.Define("true", value.Bool(true))
	env.Define("false", value.Bool(false))
	env.Define("nil", value.Nil{})
	for _, name := range []string{"Integer", "Float", "Bool", "String", "Nil", "Symbol", "Type"} {
		t, _ := types.Named(name)
		env.Define(name, value.Type{T: t})
	}
	for _, fn := range builtinFunctions() {
		env.Define(fn.Name, fn)
	}
}

func lookupBuiltin(name string) (*value.BuiltinFn, bool) {
	for _, fn := range builtinFunctions() {
		if fn.Name == name {
			return fn, true
		}
	}
	return nil, false
}

func builtinFunctions() []*value.BuiltinFn {
	return []*value.BuiltinFn{
		{Name: "add", Arity: 2, Fn: builtinAdd},
		{Name: "print", Arity: -1, Fn: builtinPrint},
		{Name: "len", Arity: 1, Fn: builtinLen},
		{Name: "str", Arity: 1, Fn: builtinStr},
		{Name: "head", Arity: 1, Fn: builtinHead},
		{Name: "tail", Arity: 1, Fn: builtinTail},
		{Name: "push", Arity: 2, Fn: builtinPush},
		{Name: "abs", Arity: 1, Fn: builtinAbs},
		{Name: "sqrt", Arity: 1, Fn: builtinSqrt},
		{Name: "float", Arity: 1, Fn: builtinFloat},
		{Name: "int", Arity: 1, Fn: builtinInt},
		{Name: "symbol", Arity: 1, Fn: builtinSymbol},
		{Name: "magnitude", Arity: 1, Fn: builtinMagnitude},
		{Name: "convert", Arity: 2, Fn: builtinConvert},
	}
}

func builtinAdd(host value.Host, args []value.Value, span position.Span) (value.Value, error) {
	return arithmetic(host.UnitRegistry(), "+", args[0], args[1], span)
}

func builtinPrint(host value.Host, args []value.Value, span position.Span) (value.Value, error) {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = value.Display(a)
	}
	if _, err := fmt.Fprintln(host.Output(), strings.Join(parts, " ")); err != nil {
		return nil, fmt.Errorf("print: %w", err)
	}
	return value.Nil{}, nil
}

func builtinLen(host value.Host, args []value.Value, span position.Span) (value.Value, error) {
	switch v := args[0].(type) {
	case value.List:
		return value.NewInt(int64(len(v.Elems))), nil
	case value.Tuple:
		return value.NewInt(int64(len(v.Elems))), nil
	case value.Record:
		return value.NewInt(int64(len(v.Fields))), nil
	case value.String:
		return value.NewInt(int64(utf8.RuneCountInString(string(v)))), nil
	}
	return nil, serrors.TypeMismatch("list", value.TypeName(args[0]), span)
}

func builtinStr(host value.Host, args []value.Value, span position.Span) (value.Value, error) {
	return value.String(value.Display(args[0])), nil
}

func listArg(v value.Value, span position.Span) (value.List, error) {
	l, ok := v.(value.List)
	if !ok {
		return value.List{}, serrors.TypeMismatch("list", value.TypeName(v), span)
	}
	return l, nil
}

func builtinHead(host value.Host, args []value.Value, span position.Span) (value.Value, error) {
	l, err := listArg(args[0], span)
	if err != nil {
		return nil, err
	}
	if len(l.Elems) == 0 {
		return nil, serrors.Syntax(span, "head of empty list")
	}
	return l.Elems[0], nil
}

func builtinTail(host value.Host, args []value.Value, span position.Span) (value.Value, error) {
	l, err := listArg(args[0], span)
	if err != nil {
		return nil, err
	}
	if len(l.Elems) == 0 {
		return value.List{}, nil
	}
	return value.List{Elems: append([]value.Value(nil), l.Elems[1:]...)}, nil
}

func builtinPush(host value.Host, args []value.Value, span position.Span) (value.Value, error) {
	l, err := listArg(args[0], span)
	if err != nil {
		return nil, err
	}
	elems := make([]value.Value, len(l.Elems), len(l.Elems)+1)
	copy(elems, l.Elems)
	return value.List{Elems: append(elems, args[1])}, nil
}

func builtinAbs(host value.Host, args []value.Value, span position.Span) (value.Value, error) {
	switch v := args[0].(type) {
	case value.Integer:
		if v.V.Sign() >= 0 {
			return v, nil
		}
		res, err := value.NewInt(0).Arith("-", v)
		if err != nil {
			return nil, serrors.Syntax(span, "integer overflow in abs %s", v)
		}
		return res, nil
	case value.Float:
		return value.Float(math.Abs(float64(v))), nil
	case value.Quantity:
		v.Value = math.Abs(v.Value)
		return v, nil
	}
	return nil, serrors.TypeMismatch("number", value.TypeName(args[0]), span)
}

func builtinSqrt(host value.Host, args []value.Value, span position.Span) (value.Value, error) {
	f, ok := toFloat(args[0])
	if !ok {
		return nil, serrors.TypeMismatch("number", value.TypeName(args[0]), span)
	}
	if f < 0 {
		return nil, serrors.Syntax(span, "square root of negative number %g", f)
	}
	return value.Float(math.Sqrt(f)), nil
}

func builtinFloat(host value.Host, args []value.Value, span position.Span) (value.Value, error) {
	f, ok := toFloat(args[0])
	if !ok {
		return nil, serrors.TypeMismatch("number", value.TypeName(args[0]), span)
	}
	return value.Float(f), nil
}

// builtinInt truncates a float toward zero.
func builtinInt(host value.Host, args []value.Value, span position.Span) (value.Value, error) {
	switch v := args[0].(type) {
	case value.Integer:
		return v, nil
	case value.Float:
		f := float64(v)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, serrors.Syntax(span, "cannot convert %s to Integer", v)
		}
		n, _ := big.NewFloat(math.Trunc(f)).Int(nil)
		i, err := value.IntegerFromBig(n)
		if err != nil {
			return nil, serrors.Syntax(span, "%s does not fit in an Integer", v)
		}
		return i, nil
	}
	return nil, serrors.TypeMismatch("number", value.TypeName(args[0]), span)
}

func builtinSymbol(host value.Host, args []value.Value, span position.Span) (value.Value, error) {
	switch v := args[0].(type) {
	case value.String:
		return value.NewSymbol(string(v)), nil
	case value.Symbol:
		return v, nil
	}
	return nil, serrors.TypeMismatch("String", value.TypeName(args[0]), span)
}

func builtinMagnitude(host value.Host, args []value.Value, span position.Span) (value.Value, error) {
	q, ok := args[0].(value.Quantity)
	if !ok {
		return nil, serrors.TypeMismatch("quantity", value.TypeName(args[0]), span)
	}
	return value.Float(q.Value), nil
}

// builtinConvert expresses a quantity in another unit of the same
// dimension. The unit is given by its constructor or by name.
func builtinConvert(host value.Host, args []value.Value, span position.Span) (value.Value, error) {
	q, ok := args[0].(value.Quantity)
	if !ok {
		return nil, serrors.TypeMismatch("quantity", value.TypeName(args[0]), span)
	}
	reg := host.UnitRegistry()

	var to units.Unit
	switch target := args[1].(type) {
	case value.UnitConstructor:
		to = target.Unit
	case value.String:
		u, ok := reg.Lookup(string(target))
		if !ok {
			return nil, serrors.Syntax(span, "unknown unit '%s'", string(target))
		}
		to = u
	default:
		return nil, serrors.TypeMismatch("unit", value.TypeName(args[1]), span)
	}
	return makeQuantity(reg, value.UnitConstructor{Unit: to}, []value.Value{q}, span)
}

func toFloat(v value.Value) (float64, bool) {
	switch n := v.(type) {
	case value.Integer:
		f, _ := new(big.Float).SetInt(n.V).Float64()
		return f, true
	case value.Float:
		return float64(n), true
	}
	return 0, false
}

func builtinMacros() []*value.BuiltinMacro {
	return []*value.BuiltinMacro{
		{Name: "when", Expand: conditional(true)},
		{Name: "unless", Expand: conditional(false)},
	}
}

// conditional expands `(when c body)` to a match that runs body when c is
// on and yields nil otherwise.
func conditional(on bool) func(args []syntax.Expr, span position.Span) (syntax.Expr, error) {
	return func(args []syntax.Expr, span position.Span) (syntax.Expr, error) {
		name := "when"
		if !on {
			name = "unless"
		}
		if len(args) < 2 {
			return nil, serrors.Arity(name, "at least 2", len(args), span)
		}
		body := args[1]
		if len(args) > 2 {
			body = &syntax.Apply{Span: span, Head: syntax.NewIdent("__block__"), Args: args[1:]}
		}
		arm := func(pattern bool, result syntax.Expr) syntax.Expr {
			return &syntax.Apply{
				Span: span,
				Head: syntax.NewOperator("->"),
				Args: []syntax.Expr{syntax.NewIdent(fmt.Sprint(pattern)), result},
			}
		}
		return &syntax.Apply{
			Span: span,
			Head: syntax.NewIdent("match"),
			Args: []syntax.Expr{args[0], arm(on, body), arm(!on, syntax.Nil())},
		}, nil
	}
}
