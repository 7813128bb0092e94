package eval

import (
	"math/big"
	"strconv"

	serrors "github.com/sable-lang/sable/internal/errors"
	"github.com/sable-lang/sable/internal/position"
	"github.com/sable-lang/sable/internal/syntax"
	"github.com/sable-lang/sable/internal/value"
)

// AttrQueue holds attributes waiting for the next evaluated expression.
// One queue is shared by a context and every context reborrowed from it.
type AttrQueue struct {
	items []syntax.Expr
}

// Context is the state threaded through one top-level evaluation: the
// current environment, the compiler state and the shared attribute queue.
type Context struct {
	Env    *value.Environment
	State  *CompilerState
	Source *position.SourceFile

	attrs *AttrQueue
}

// NewContext creates a context with an empty attribute queue.
func NewContext(env *value.Environment, state *CompilerState, source *position.SourceFile) *Context {
	return &Context{Env: env, State: state, Source: source, attrs: &AttrQueue{}}
}

// Reborrow returns a context evaluating in env that shares this context's
// compiler state and attribute queue. A nil env keeps the current one.
func (c *Context) Reborrow(env *value.Environment) *Context {
	if env == nil {
		env = c.Env
	}
	return &Context{Env: env, State: c.State, Source: c.Source, attrs: c.attrs}
}

// TakeAttributes empties the attribute queue and returns its contents.
func (c *Context) TakeAttributes() []syntax.Expr {
	items := c.attrs.items
	c.attrs.items = nil
	return items
}

// ReplaceAttributes installs attrs as the queue and returns the previous
// contents.
func (c *Context) ReplaceAttributes(attrs []syntax.Expr) []syntax.Expr {
	prev := c.attrs.items
	c.attrs.items = attrs
	return prev
}

// PushAttribute appends attr to the queue.
func (c *Context) PushAttribute(attr syntax.Expr) {
	c.attrs.items = append(c.attrs.items, attr)
}

// PendingAttributes reports how many attributes are queued.
func (c *Context) PendingAttributes() int { return len(c.attrs.items) }

// Resolve looks name up in the environment, then among module-level
// definitions, then among macros and special forms.
func (c *Context) Resolve(name string) (value.Value, bool) {
	if v, ok := c.Env.Get(name); ok {
		return v, true
	}
	return c.State.Lookup(name)
}

// Eval evaluates expr.
func (c *Context) Eval(expr syntax.Expr) (value.Value, error) {
	switch e := expr.(type) {
	case *syntax.Literal:
		return literalValue(e)
	case *syntax.Ident:
		return c.resolveOrFail(e.Name, e.Span)
	case *syntax.Operator:
		return c.resolveOrFail(e.Op, e.Span)
	case *syntax.Attribute:
		c.PushAttribute(e.Body)
		return value.Nil{}, nil
	case *syntax.Apply:
		return c.apply(e)
	case *syntax.Error:
		return nil, serrors.Syntax(e.Span, "%s", e.Message)
	default:
		return nil, serrors.Internal("unexpected expression %T", expr)
	}
}

func (c *Context) resolveOrFail(name string, span position.Span) (value.Value, error) {
	if v, ok := c.Resolve(name); ok {
		return v, nil
	}
	return nil, serrors.UndefinedVariable(name, span)
}

func literalValue(l *syntax.Literal) (value.Value, error) {
	switch l.LitKind {
	case syntax.LiteralNil:
		return value.Nil{}, nil
	case syntax.LiteralBool:
		return value.Bool(l.Value.(bool)), nil
	case syntax.LiteralInteger:
		i, err := value.IntegerFromBig(l.Value.(*big.Int))
		if err != nil {
			return nil, serrors.Syntax(l.Span, "integer literal %s does not fit in 128 bits", l.Raw)
		}
		return i, nil
	case syntax.LiteralFloat:
		return value.Float(l.Value.(float64)), nil
	case syntax.LiteralString:
		return value.String(l.Value.(string)), nil
	default:
		return nil, serrors.Internal("unknown literal kind %s", l.LitKind)
	}
}

// callee resolves the head of an application without evaluating it when it
// is a bare name, so special forms and macros are found as themselves.
func (c *Context) callee(head syntax.Expr) (value.Value, error) {
	if name, ok := syntax.NameOf(head); ok {
		return c.resolveOrFail(name, head.GetSpan())
	}
	return c.Eval(head)
}

func (c *Context) apply(app *syntax.Apply) (value.Value, error) {
	callee, err := c.callee(app.Head)
	if err != nil {
		return nil, err
	}

	switch fn := callee.(type) {
	case value.SpecialForm:
		return fn.Form.(*Form).Eval(c, app.Args, app.Span)
	case *value.BuiltinMacro:
		expanded, err := fn.Expand(app.Args, app.Span)
		if err != nil {
			return nil, serrors.AttachSpan(err, app.Span)
		}
		return c.Eval(expanded)
	}

	args, err := c.evalArgs(app.Args)
	if err != nil {
		return nil, err
	}
	return c.Call(callee, args, app.Span)
}

func (c *Context) evalArgs(exprs []syntax.Expr) ([]value.Value, error) {
	args := make([]value.Value, len(exprs))
	for i, e := range exprs {
		v, err := c.Eval(e)
		if err != nil {
			return nil, err
		}
		args[i] = v
	}
	return args, nil
}

// Call applies callee to evaluated arguments.
func (c *Context) Call(callee value.Value, args []value.Value, span position.Span) (value.Value, error) {
	switch fn := callee.(type) {
	case *value.UserFunction:
		return c.callUser(fn, args, span)
	case *value.BuiltinFn:
		if fn.Arity >= 0 && len(args) != fn.Arity {
			return nil, serrors.Arity(fn.Name, strconv.Itoa(fn.Arity), len(args), span)
		}
		v, err := fn.Fn(c.State, args, span)
		if err != nil {
			return nil, serrors.WithFrame(serrors.AttachSpan(err, span), fn.Name, span)
		}
		return v, nil
	case value.StructConstructor:
		return construct(fn, args, span)
	case value.UnitConstructor:
		return makeQuantity(c.State.Units, fn, args, span)
	case value.SpecialForm:
		return fn.Form.(*Form).ApplyValues(c, args, span)
	case *value.BuiltinMacro:
		return nil, serrors.NotCallable("macro "+fn.Name+" applied to values", span)
	default:
		return nil, serrors.NotCallable(value.TypeName(callee)+" value "+callee.String(), span)
	}
}

func (c *Context) callUser(fn *value.UserFunction, args []value.Value, span position.Span) (value.Value, error) {
	if len(args) != len(fn.Params) {
		return nil, serrors.Arity(fn.Name, strconv.Itoa(len(fn.Params)), len(args), span)
	}

	env := fn.Env.Clone()
	env.PushScope()
	for i, p := range fn.Params {
		env.Define(p, args[i])
	}

	v, err := c.Reborrow(env).Eval(fn.Body)
	if err != nil {
		return nil, serrors.WithFrame(err, fn.Name, span)
	}
	return v, nil
}
