package types

import (
	serrors "github.com/sable-lang/sable/internal/errors"
	"github.com/sable-lang/sable/internal/syntax"
)

// Named resolves the built-in type names.
func Named(name string) (*Type, bool) {
	switch name {
	case "Integer":
		return Integer, true
	case "Float":
		return Float, true
	case "Bool":
		return Bool, true
	case "String":
		return String, true
	case "Nil":
		return Nil, true
	case "Symbol":
		return Symbol, true
	case "Type":
		return TypeType, true
	case "Unit":
		return Unit, true
	case "Unknown":
		return Unknown, true
	}
	return nil, false
}

// InferExpr infers the type of expr in env and resolves the result through
// the substitution. Unresolved variables are left in place; callers that
// need a concrete answer check HasVars.
func (ie *InferenceEngine) InferExpr(expr syntax.Expr, env *Env) (*Type, error) {
	t, err := ie.Infer(expr, env)
	if err != nil {
		return nil, err
	}
	return ie.Apply(t), nil
}

// Infer computes the type of expr, extending the substitution as needed.
func (ie *InferenceEngine) Infer(expr syntax.Expr, env *Env) (*Type, error) {
	t, err := ie.infer(expr, env)
	if err != nil {
		return nil, serrors.AttachSpan(err, expr.GetSpan())
	}
	return t, nil
}

func (ie *InferenceEngine) infer(expr syntax.Expr, env *Env) (*Type, error) {
	switch e := expr.(type) {
	case *syntax.Literal:
		return literalType(e), nil
	case *syntax.Ident:
		if t, ok := env.Lookup(e.Name); ok {
			return t, nil
		}
		return nil, serrors.UndefinedVariable(e.Name, e.Span)
	case *syntax.Operator:
		if t, ok := env.Lookup(e.Op); ok {
			return t, nil
		}
		return Unknown, nil
	case *syntax.Attribute:
		return Nil, nil
	case *syntax.Error:
		return nil, serrors.Syntax(e.Span, "%s", e.Message)
	case *syntax.Apply:
		return ie.inferApply(e, env)
	}
	return Unknown, nil
}

func literalType(l *syntax.Literal) *Type {
	switch l.LitKind {
	case syntax.LiteralBool:
		return Bool
	case syntax.LiteralInteger:
		return Integer
	case syntax.LiteralFloat:
		return Float
	case syntax.LiteralString:
		return String
	default:
		return Nil
	}
}

func (ie *InferenceEngine) inferApply(app *syntax.Apply, env *Env) (*Type, error) {
	name, named := syntax.NameOf(app.Head)
	if named {
		if _, shadowed := env.Lookup(name); !shadowed {
			if t, handled, err := ie.inferForm(name, app, env); handled {
				return t, err
			}
		}
	}

	callee, err := ie.Infer(app.Head, env)
	if err != nil {
		return nil, err
	}
	args := make([]*Type, len(app.Args))
	for i, arg := range app.Args {
		if args[i], err = ie.Infer(arg, env); err != nil {
			return nil, err
		}
	}
	return ie.applyCallee(callee, args)
}

func (ie *InferenceEngine) applyCallee(callee *Type, args []*Type) (*Type, error) {
	callee = ie.Apply(callee)
	switch callee.Kind {
	case KindFunction:
		if len(callee.Elems) != len(args) {
			return Unknown, nil
		}
		if err := ie.unifyAll(callee.Elems, args); err != nil {
			return nil, err
		}
		return callee.Result, nil
	case KindVar:
		result := ie.FreshVar()
		if err := ie.Unify(callee, NewFunction(args, result)); err != nil {
			return nil, err
		}
		return result, nil
	default:
		return Unknown, nil
	}
}

// inferForm handles the special forms. handled is false when name is not a
// form, in which case the application is treated as a call.
func (ie *InferenceEngine) inferForm(name string, app *syntax.Apply, env *Env) (t *Type, handled bool, err error) {
	args := app.Args
	switch name {
	case "+", "-", "*", "/":
		t, err = ie.inferArithmetic(args, env)
	case "&&", "||":
		t, err = ie.inferAll(args, env, Bool, Bool)
	case "==", "!=", "<", ">", "<=", ">=":
		t, err = ie.inferComparison(args, env)
	case "let":
		t, err = ie.inferLet(args, env)
	case "fn":
		t, err = ie.inferFn(args, env)
	case "=":
		t, err = ie.inferAssign(args, env)
	case "__block__":
		t, err = ie.inferBlock(args, env)
	case "__list__":
		t, err = ie.inferList(args, env)
	case "__tuple__":
		elems := make([]*Type, len(args))
		for i, arg := range args {
			if elems[i], err = ie.Infer(arg, env); err != nil {
				return nil, true, err
			}
		}
		t = NewTuple(elems...)
	case "__record__":
		t, err = ie.inferRecord(args, env)
	case ".":
		t, err = ie.inferField(args, env)
	case "__index__":
		t, err = ie.inferIndex(args, env)
	case "match":
		t, err = ie.inferMatch(args, env)
	case "when", "unless":
		t, err = ie.inferAll(args, env, Bool, Unknown)
		if err == nil {
			t = Unknown
		}
	case "|>":
		t, err = ie.inferPipeline(args, env)
	case "struct", "typeof":
		t = TypeType
	case "measure":
		t = Unit
	case "assert", "@":
		t = Nil
	default:
		return nil, false, nil
	}
	return t, true, err
}

func (ie *InferenceEngine) inferArithmetic(args []syntax.Expr, env *Env) (*Type, error) {
	if len(args) != 2 {
		return Unknown, nil
	}
	left, err := ie.Infer(args[0], env)
	if err != nil {
		return nil, err
	}
	right, err := ie.Infer(args[1], env)
	if err != nil {
		return nil, err
	}
	if l := ie.Apply(left); l.Kind == KindQuantity {
		return l, nil
	}
	if err := ie.Unify(left, right); err != nil {
		return nil, err
	}
	return left, nil
}

// inferAll infers each argument, requiring it to unify with want, and
// returns result.
func (ie *InferenceEngine) inferAll(args []syntax.Expr, env *Env, want, result *Type) (*Type, error) {
	for _, arg := range args {
		t, err := ie.Infer(arg, env)
		if err != nil {
			return nil, err
		}
		if err := ie.Unify(want, t); err != nil {
			return nil, serrors.AttachSpan(err, arg.GetSpan())
		}
	}
	return result, nil
}

func (ie *InferenceEngine) inferComparison(args []syntax.Expr, env *Env) (*Type, error) {
	if len(args) != 2 {
		return Bool, nil
	}
	left, err := ie.Infer(args[0], env)
	if err != nil {
		return nil, err
	}
	right, err := ie.Infer(args[1], env)
	if err != nil {
		return nil, err
	}
	if err := ie.Unify(left, right); err != nil {
		return nil, err
	}
	return Bool, nil
}

func (ie *InferenceEngine) inferLet(args []syntax.Expr, env *Env) (*Type, error) {
	if len(args) != 2 {
		return Nil, nil
	}
	name, ok := args[0].(*syntax.Ident)
	if !ok {
		return Unknown, nil
	}
	t, err := ie.Infer(args[1], env)
	if err != nil {
		return nil, err
	}
	env.Define(name.Name, t)
	return t, nil
}

// inferFn types `(fn name params... body)`. The name is bound before the
// body is inferred so recursive calls unify with the function itself.
func (ie *InferenceEngine) inferFn(args []syntax.Expr, env *Env) (*Type, error) {
	if len(args) < 2 {
		return Unknown, nil
	}
	name, ok := args[0].(*syntax.Ident)
	if !ok {
		return Unknown, nil
	}

	inner := NewEnv(env)
	params := make([]*Type, 0, len(args)-2)
	for _, p := range args[1 : len(args)-1] {
		id, ok := p.(*syntax.Ident)
		if !ok {
			return Unknown, nil
		}
		v := ie.FreshVar()
		inner.Define(id.Name, v)
		params = append(params, v)
	}
	result := ie.FreshVar()
	fnType := NewFunction(params, result)
	env.Define(name.Name, fnType)
	inner.Define(name.Name, fnType)

	body, err := ie.Infer(args[len(args)-1], inner)
	if err != nil {
		return nil, err
	}
	if err := ie.Unify(result, body); err != nil {
		return nil, err
	}
	return ie.Apply(fnType), nil
}

func (ie *InferenceEngine) inferAssign(args []syntax.Expr, env *Env) (*Type, error) {
	if len(args) != 2 {
		return Unknown, nil
	}
	switch lhs := args[0].(type) {
	case *syntax.Apply:
		head, _ := syntax.NameOf(lhs.Head)
		switch head {
		case "let", "fn":
			delegated := append(append([]syntax.Expr{}, lhs.Args...), args[1])
			t, _, err := ie.inferForm(head, &syntax.Apply{Span: lhs.Span, Head: lhs.Head, Args: delegated}, env)
			return t, err
		case ".":
			field, err := ie.inferField(lhs.Args, env)
			if err != nil {
				return nil, err
			}
			value, err := ie.Infer(args[1], env)
			if err != nil {
				return nil, err
			}
			return value, ie.Unify(field, value)
		}
		return Unknown, nil
	case *syntax.Ident:
		value, err := ie.Infer(args[1], env)
		if err != nil {
			return nil, err
		}
		if prev, ok := env.Lookup(lhs.Name); ok {
			if err := ie.Unify(prev, value); err != nil {
				return nil, err
			}
		}
		return value, nil
	}
	return Unknown, nil
}

func (ie *InferenceEngine) inferBlock(args []syntax.Expr, env *Env) (*Type, error) {
	inner := NewEnv(env)
	last := Nil
	for _, arg := range args {
		if _, isAttr := arg.(*syntax.Attribute); isAttr {
			continue
		}
		t, err := ie.Infer(arg, inner)
		if err != nil {
			return nil, err
		}
		last = t
	}
	return last, nil
}

func (ie *InferenceEngine) inferList(args []syntax.Expr, env *Env) (*Type, error) {
	elem := ie.FreshVar()
	for _, arg := range args {
		t, err := ie.Infer(arg, env)
		if err != nil {
			return nil, err
		}
		if err := ie.Unify(elem, t); err != nil {
			return nil, serrors.AttachSpan(err, arg.GetSpan())
		}
	}
	return NewList(elem), nil
}

func (ie *InferenceEngine) inferRecord(args []syntax.Expr, env *Env) (*Type, error) {
	fields := make([]Field, 0, len(args))
	for _, arg := range args {
		var name string
		var value syntax.Expr
		switch f := arg.(type) {
		case *syntax.Ident:
			name, value = f.Name, f
		case *syntax.Apply:
			head, _ := syntax.NameOf(f.Head)
			id, ok := firstIdent(f.Args)
			if (head != "=" && head != ":") || !ok || len(f.Args) != 2 {
				return Unknown, nil
			}
			name, value = id, f.Args[1]
		default:
			return Unknown, nil
		}
		t, err := ie.Infer(value, env)
		if err != nil {
			return nil, err
		}
		fields = append(fields, Field{Name: name, Type: t})
	}
	return NewRecord(fields...), nil
}

func firstIdent(args []syntax.Expr) (string, bool) {
	if len(args) == 0 {
		return "", false
	}
	id, ok := args[0].(*syntax.Ident)
	if !ok {
		return "", false
	}
	return id.Name, true
}

func (ie *InferenceEngine) inferField(args []syntax.Expr, env *Env) (*Type, error) {
	if len(args) != 2 {
		return Unknown, nil
	}
	rec, err := ie.Infer(args[0], env)
	if err != nil {
		return nil, err
	}
	field, ok := args[1].(*syntax.Ident)
	if !ok {
		return Unknown, nil
	}
	rec = ie.Apply(rec)
	if rec.Kind != KindRecord && rec.Kind != KindStruct {
		return Unknown, nil
	}
	if t, ok := rec.Field(field.Name); ok {
		return t, nil
	}
	return nil, serrors.Syntax(field.Span, "%s has no field '%s'", rec, field.Name)
}

func (ie *InferenceEngine) inferIndex(args []syntax.Expr, env *Env) (*Type, error) {
	if len(args) != 2 {
		return Unknown, nil
	}
	list, err := ie.Infer(args[0], env)
	if err != nil {
		return nil, err
	}
	index, err := ie.Infer(args[1], env)
	if err != nil {
		return nil, err
	}
	if err := ie.Unify(Integer, index); err != nil {
		return nil, err
	}
	elem := ie.FreshVar()
	if err := ie.Unify(NewList(elem), list); err != nil {
		return nil, err
	}
	return elem, nil
}

func (ie *InferenceEngine) inferMatch(args []syntax.Expr, env *Env) (*Type, error) {
	if len(args) < 2 {
		return Unknown, nil
	}
	if _, err := ie.inferAll(args[:1], env, Bool, Bool); err != nil {
		return nil, err
	}
	result := ie.FreshVar()
	for _, arm := range args[1:] {
		a, ok := arm.(*syntax.Apply)
		if !ok || len(a.Args) != 2 {
			return Unknown, nil
		}
		if head, _ := syntax.NameOf(a.Head); head != "->" {
			return Unknown, nil
		}
		t, err := ie.Infer(a.Args[1], env)
		if err != nil {
			return nil, err
		}
		if err := ie.Unify(result, t); err != nil {
			return nil, serrors.AttachSpan(err, a.Args[1].GetSpan())
		}
	}
	return result, nil
}

func (ie *InferenceEngine) inferPipeline(args []syntax.Expr, env *Env) (*Type, error) {
	if len(args) != 2 {
		return Unknown, nil
	}
	lhs, err := ie.Infer(args[0], env)
	if err != nil {
		return nil, err
	}

	var calleeExpr syntax.Expr
	rest := []*Type{lhs}
	switch rhs := args[1].(type) {
	case *syntax.Apply:
		calleeExpr = rhs.Head
		for _, arg := range rhs.Args {
			t, err := ie.Infer(arg, env)
			if err != nil {
				return nil, err
			}
			rest = append(rest, t)
		}
	default:
		calleeExpr = rhs
	}

	if name, ok := syntax.NameOf(calleeExpr); ok && len(rest) == 2 {
		switch name {
		case "+", "-", "*", "/":
			return lhs, ie.Unify(lhs, rest[1])
		case "==", "!=", "<", ">", "<=", ">=":
			return Bool, ie.Unify(lhs, rest[1])
		}
	}
	callee, err := ie.Infer(calleeExpr, env)
	if err != nil {
		return nil, err
	}
	return ie.applyCallee(callee, rest)
}
