package eval

import (
	serrors "github.com/sable-lang/sable/internal/errors"
	"github.com/sable-lang/sable/internal/ir"
	"github.com/sable-lang/sable/internal/position"
	"github.com/sable-lang/sable/internal/syntax"
	"github.com/sable-lang/sable/internal/types"
	"github.com/sable-lang/sable/internal/value"
)

func controlForms() []*Form {
	return []*Form{
		{Name: "match", MinArgs: 2, MaxArgs: -1, Support: Supported, eval: evalMatch, lower: lowerMatch},
		{Name: "measure", MinArgs: 1, MaxArgs: 2, Support: Unsupported, eval: evalMeasure},
		{Name: "assert", MinArgs: 1, MaxArgs: 2, Support: Unsupported, eval: evalAssert},
		{Name: "@", MinArgs: 1, MaxArgs: 1, Support: Unsupported, eval: evalAttribute},
		{Name: "typeof", MinArgs: 1, MaxArgs: 1, Support: Unsupported, eval: evalTypeof},
		{Name: "|>", MinArgs: 2, MaxArgs: 2, Support: Unsupported, eval: evalPipeline},
	}
}

// matchArm is one `(-> pattern result)` arm. Patterns are the identifiers
// true and false.
type matchArm struct {
	pattern bool
	result  syntax.Expr
}

func parseArms(exprs []syntax.Expr) ([]matchArm, error) {
	arms := make([]matchArm, len(exprs))
	for i, e := range exprs {
		arm, err := parseArm(e)
		if err != nil {
			return nil, err
		}
		arms[i] = arm
	}
	return arms, nil
}

func parseArm(e syntax.Expr) (matchArm, error) {
	app, ok := e.(*syntax.Apply)
	if head, _ := syntax.HeadName(e); !ok || head != "->" || len(app.Args) != 2 {
		return matchArm{}, serrors.Syntax(e.GetSpan(), "match arm must have the form pattern -> result, found %s", e)
	}
	arm := matchArm{result: app.Args[1]}
	switch {
	case syntax.IsIdent(app.Args[0], "true"):
		arm.pattern = true
	case syntax.IsIdent(app.Args[0], "false"):
		arm.pattern = false
	default:
		return matchArm{}, serrors.Syntax(app.Args[0].GetSpan(), "unsupported match pattern %s: expected true or false", app.Args[0])
	}
	return arm, nil
}

// evalMatch evaluates the scrutinee first and then tries the arms in
// order. Arms after the selected one are never inspected.
func evalMatch(c *Context, args []syntax.Expr, span position.Span) (value.Value, error) {
	cond, err := evalBool(c, args[0])
	if err != nil {
		return nil, err
	}
	for _, e := range args[1:] {
		arm, err := parseArm(e)
		if err != nil {
			return nil, err
		}
		if arm.pattern == cond {
			return c.Eval(arm.result)
		}
	}
	return nil, serrors.Syntax(span, "no match arm for %t", cond)
}

// lowerMatch emits a diamond: the condition branches to one block per arm,
// each arm jumps to a merge block and a phi selects the result. An arm may
// itself leave several blocks behind, so the phi names the blocks the arms
// ended in.
func lowerMatch(lc *LowerContext, args []syntax.Expr, span position.Span) (ir.ValueID, error) {
	arms, err := parseArms(args[1:])
	if err != nil {
		return 0, err
	}
	var onTrue, onFalse syntax.Expr
	for _, arm := range arms {
		switch {
		case arm.pattern && onTrue == nil:
			onTrue = arm.result
		case !arm.pattern && onFalse == nil:
			onFalse = arm.result
		}
	}
	if onTrue == nil || onFalse == nil {
		return 0, serrors.NotImplemented("non-exhaustive match", span)
	}

	cond, err := lc.Gen(args[0])
	if err != nil {
		return 0, err
	}
	thenID, elseID, mergeID := lc.NewBlockID(), lc.NewBlockID(), lc.NewBlockID()
	lc.Branch(cond, thenID, elseID)

	thenVal, thenEnd, err := lc.genArm(thenID, mergeID, onTrue)
	if err != nil {
		return 0, err
	}
	elseVal, elseEnd, err := lc.genArm(elseID, mergeID, onFalse)
	if err != nil {
		return 0, err
	}

	lc.StartBlock(mergeID)
	t := lc.TypeOf(thenVal)
	if !types.Equal(t, lc.TypeOf(elseVal)) {
		t = types.Unknown
	}
	return lc.Phi(t,
		ir.PhiIncoming{Block: thenEnd, Value: thenVal},
		ir.PhiIncoming{Block: elseEnd, Value: elseVal},
	), nil
}

// genArm lowers one arm into block id and jumps to merge. Bindings made in
// the arm are not visible after it.
func (lc *LowerContext) genArm(id, merge ir.BlockID, expr syntax.Expr) (ir.ValueID, ir.BlockID, error) {
	saved := make(map[string]ir.ValueID, len(lc.st.locals))
	for k, v := range lc.st.locals {
		saved[k] = v
	}
	defer func() { lc.st.locals = saved }()

	lc.StartBlock(id)
	v, err := lc.Gen(expr)
	if err != nil {
		return 0, 0, err
	}
	return v, lc.Jump(merge), nil
}

// evalMeasure declares a unit. `(measure m)` creates the base unit of a
// new dimension; `(measure km (m 1000))` derives km from m.
func evalMeasure(c *Context, args []syntax.Expr, span position.Span) (value.Value, error) {
	name, err := identArg("measure", args[0])
	if err != nil {
		return nil, err
	}
	reg := c.State.Units

	if len(args) == 1 {
		u := reg.DefineBase(name)
		uc := value.UnitConstructor{Unit: u}
		c.Env.Define(name, uc)
		return uc, nil
	}

	def, ok := args[1].(*syntax.Apply)
	if !ok || len(def.Args) != 1 {
		return nil, serrors.Syntax(args[1].GetSpan(), "derived unit %s must be defined as (base scale), found %s", name, args[1])
	}
	base, err := identArg("measure", def.Head)
	if err != nil {
		return nil, err
	}
	sv, err := c.Eval(def.Args[0])
	if err != nil {
		return nil, err
	}
	scale, ok := toFloat(sv)
	if !ok {
		return nil, serrors.TypeMismatch("number", value.TypeName(sv), def.Args[0].GetSpan())
	}
	u, err := reg.DefineDerived(name, base, scale)
	if err != nil {
		return nil, serrors.Syntax(args[1].GetSpan(), "%v", err)
	}
	uc := value.UnitConstructor{Unit: u}
	c.Env.Define(name, uc)
	return uc, nil
}

func evalAssert(c *Context, args []syntax.Expr, span position.Span) (value.Value, error) {
	ok, err := evalBool(c, args[0])
	if err != nil {
		return nil, err
	}
	if ok {
		return value.Nil{}, nil
	}

	var message string
	if len(args) == 2 {
		mv, err := c.Eval(args[1])
		if err != nil {
			return nil, err
		}
		s, isString := mv.(value.String)
		if !isString {
			return nil, serrors.TypeMismatch("String", value.TypeName(mv), args[1].GetSpan())
		}
		message = string(s)
	}

	source := c.Source.Text(args[0].GetSpan())
	if source == "" {
		source = args[0].String()
	}
	return nil, serrors.AssertionFailed(source, message, span)
}

func evalAttribute(c *Context, args []syntax.Expr, span position.Span) (value.Value, error) {
	c.PushAttribute(args[0])
	return value.Nil{}, nil
}

// evalTypeof infers the static type of its argument without evaluating it.
// Inference failures are reported as warnings and yield Unknown.
func evalTypeof(c *Context, args []syntax.Expr, span position.Span) (value.Value, error) {
	ie := c.State.Inferencer
	if ie == nil {
		ie = types.NewInferenceEngine()
	}
	ie.Reset()

	t, err := ie.InferExpr(args[0], typeEnv(c.State, c.Env))
	if err != nil {
		c.State.Warn(serrors.AttachSpan(err, args[0].GetSpan()))
		return value.Type{T: types.Unknown}, nil
	}
	if t.HasVars() {
		return value.Type{T: types.Unknown}, nil
	}
	return value.Type{T: t}, nil
}

// typeEnv derives a type environment from runtime bindings. Module-level
// definitions sit in the outer scope and env's bindings shadow them.
func typeEnv(s *CompilerState, env *value.Environment) *types.Env {
	globals := types.NewEnv(nil)
	for name, v := range s.Defs {
		globals.Define(name, value.TypeOf(v))
	}
	locals := types.NewEnv(globals)
	if env != nil {
		for name, v := range env.Bindings() {
			locals.Define(name, value.TypeOf(v))
		}
	}
	return locals
}

// evalPipeline implements `x |> f` and `x |> (f a b)`, which call f with x
// prepended to the arguments. Only values that take evaluated arguments can
// be piped into.
func evalPipeline(c *Context, args []syntax.Expr, span position.Span) (value.Value, error) {
	lhs, err := c.Eval(args[0])
	if err != nil {
		return nil, err
	}

	target := args[1]
	var rest []syntax.Expr
	if app, ok := target.(*syntax.Apply); ok {
		target, rest = app.Head, app.Args
	}

	callee, err := c.callee(target)
	if err != nil {
		return nil, err
	}
	switch fn := callee.(type) {
	case value.SpecialForm:
		if !fn.Form.(*Form).Strict() {
			return nil, serrors.Syntax(target.GetSpan(), "cannot pipe into special form %s", fn.Form.FormName())
		}
	case *value.BuiltinMacro:
		return nil, serrors.Syntax(target.GetSpan(), "cannot pipe into macro %s", fn.Name)
	}

	vals, err := c.evalArgs(rest)
	if err != nil {
		return nil, err
	}
	return c.Call(callee, append([]value.Value{lhs}, vals...), span)
}
