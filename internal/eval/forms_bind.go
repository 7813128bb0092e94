package eval

import (
	serrors "github.com/sable-lang/sable/internal/errors"
	"github.com/sable-lang/sable/internal/ir"
	"github.com/sable-lang/sable/internal/position"
	"github.com/sable-lang/sable/internal/syntax"
	"github.com/sable-lang/sable/internal/types"
	"github.com/sable-lang/sable/internal/value"
)

func bindingForms() []*Form {
	return []*Form{
		{Name: "let", MinArgs: 1, MaxArgs: 2, Support: Supported, eval: evalLet, lower: lowerLet},
		{Name: "fn", MinArgs: 2, MaxArgs: -1, Support: Unsupported, eval: evalFn},
		{Name: "=", MinArgs: 2, MaxArgs: 2, Support: Partial, eval: evalAssign, lower: lowerAssign},
	}
}

func identArg(form string, e syntax.Expr) (string, error) {
	id, ok := e.(*syntax.Ident)
	if !ok {
		return "", serrors.Syntax(e.GetSpan(), "%s expects an identifier, found %s", form, e)
	}
	return id.Name, nil
}

// evalLet binds a name in the current scope. The one-argument form is a
// declaration waiting for `=` to supply the value and evaluates to nil.
func evalLet(c *Context, args []syntax.Expr, span position.Span) (value.Value, error) {
	name, err := identArg("let", args[0])
	if err != nil {
		return nil, err
	}
	if len(args) == 1 {
		return value.Nil{}, nil
	}
	v, err := c.Eval(args[1])
	if err != nil {
		return nil, err
	}
	c.Env.Define(name, v)
	return v, nil
}

func lowerLet(lc *LowerContext, args []syntax.Expr, span position.Span) (ir.ValueID, error) {
	name, err := identArg("let", args[0])
	if err != nil {
		return 0, err
	}
	if len(args) == 1 {
		return lc.Const(types.Nil, ir.NilConst()), nil
	}
	id, err := lc.Gen(args[1])
	if err != nil {
		return 0, err
	}
	lc.Bind(name, id)
	return id, nil
}

// evalFn builds a closure over a snapshot of the current environment and
// registers it both in scope and as a module-level definition, so it can be
// referenced before its defining statement runs.
func evalFn(c *Context, args []syntax.Expr, span position.Span) (value.Value, error) {
	name, err := identArg("fn", args[0])
	if err != nil {
		return nil, err
	}
	params := make([]string, 0, len(args)-2)
	for _, p := range args[1 : len(args)-1] {
		pname, err := identArg("fn parameter list", p)
		if err != nil {
			return nil, err
		}
		params = append(params, pname)
	}

	fn := &value.UserFunction{
		Name:       name,
		Params:     params,
		Body:       args[len(args)-1],
		Env:        c.Env.Clone(),
		Attributes: c.TakeAttributes(),
		Span:       span,
	}
	c.Env.Define(name, fn)
	c.State.Define(name, fn)

	for _, attr := range fn.Attributes {
		if syntax.IsIdent(attr, "test") {
			c.State.registerTest(fn)
		}
	}

	if gen := c.State.IR; gen != nil {
		if err := gen.Schedule(fn); err != nil {
			c.State.Warn(err)
		}
	}
	return fn, nil
}

// evalAssign implements `=`. A declaring left-hand side such as `(let x)`
// or `(fn f p)` is completed by calling that form with the right-hand side
// appended. A field access assigns into a record binding. Otherwise the
// target must be an existing binding.
func evalAssign(c *Context, args []syntax.Expr, span position.Span) (value.Value, error) {
	lhs, rhs := args[0], args[1]

	switch target := lhs.(type) {
	case *syntax.Apply:
		if head, ok := syntax.NameOf(target.Head); ok && head == "." {
			return assignField(c, target, rhs, span)
		}
		callee, err := c.callee(target.Head)
		if err != nil {
			return nil, err
		}
		delegated := append(append([]syntax.Expr{}, target.Args...), rhs)
		switch form := callee.(type) {
		case value.SpecialForm:
			return form.Form.(*Form).Eval(c, delegated, span)
		case *value.BuiltinMacro:
			expanded, err := form.Expand(delegated, span)
			if err != nil {
				return nil, err
			}
			return c.Eval(expanded)
		}
		return nil, serrors.Syntax(lhs.GetSpan(), "cannot assign to %s", lhs)

	case *syntax.Ident:
		v, err := c.Eval(rhs)
		if err != nil {
			return nil, err
		}
		if c.Env.Set(target.Name, v) {
			return v, nil
		}
		if _, ok := c.State.Defs[target.Name]; ok {
			c.State.Define(target.Name, v)
			return v, nil
		}
		return nil, serrors.UndefinedVariable(target.Name, target.Span)
	}
	return nil, serrors.Syntax(lhs.GetSpan(), "cannot assign to %s", lhs)
}

// assignField replaces one field of a record held in a variable. The new
// value must have the same type as the old one.
func assignField(c *Context, target *syntax.Apply, rhs syntax.Expr, span position.Span) (value.Value, error) {
	if len(target.Args) != 2 {
		return nil, serrors.Arity(".", "2", len(target.Args), target.Span)
	}
	binding, err := identArg("field assignment", target.Args[0])
	if err != nil {
		return nil, err
	}
	field, err := identArg("field assignment", target.Args[1])
	if err != nil {
		return nil, err
	}

	current, err := c.resolveOrFail(binding, target.Args[0].GetSpan())
	if err != nil {
		return nil, err
	}
	rec, ok := current.(value.Record)
	if !ok {
		return nil, serrors.TypeMismatch("record", value.TypeName(current), target.Args[0].GetSpan())
	}
	old, ok := rec.Field(field)
	if !ok {
		return nil, missingField(rec, field, target.Args[1].GetSpan())
	}

	v, err := c.Eval(rhs)
	if err != nil {
		return nil, err
	}
	if want, got := value.TypeOf(old), value.TypeOf(v); !types.Compatible(want, got) {
		return nil, serrors.TypeMismatch(want.String(), got.String(), rhs.GetSpan())
	}

	updated := rec.With(field, v)
	if !c.Env.Set(binding, updated) {
		c.State.Define(binding, updated)
	}
	return v, nil
}

// lowerAssign only supports delegation to declaring forms.
func lowerAssign(lc *LowerContext, args []syntax.Expr, span position.Span) (ir.ValueID, error) {
	target, ok := args[0].(*syntax.Apply)
	if !ok {
		return 0, serrors.NotImplemented("reassignment", span)
	}
	head, ok := syntax.NameOf(target.Head)
	if !ok || head == "." {
		return 0, serrors.NotImplemented("field assignment", span)
	}
	form, ok := LookupForm(head)
	if !ok {
		return 0, serrors.NotImplemented("assignment through "+head, span)
	}
	delegated := append(append([]syntax.Expr{}, target.Args...), args[1])
	return form.BuildIR(lc, delegated, span)
}
