package eval

import (
	"fmt"

	serrors "github.com/sable-lang/sable/internal/errors"
	"github.com/sable-lang/sable/internal/ir"
	"github.com/sable-lang/sable/internal/position"
	"github.com/sable-lang/sable/internal/syntax"
	"github.com/sable-lang/sable/internal/value"
)

// Support records how far a form's IR lowering is implemented.
type Support int

const (
	Unsupported Support = iota
	Partial
	Supported
)

func (s Support) String() string {
	switch s {
	case Supported:
		return "supported"
	case Partial:
		return "partial"
	default:
		return "unsupported"
	}
}

type (
	evalFunc  func(c *Context, args []syntax.Expr, span position.Span) (value.Value, error)
	applyFunc func(c *Context, args []value.Value, span position.Span) (value.Value, error)
	lowerFunc func(lc *LowerContext, args []syntax.Expr, span position.Span) (ir.ValueID, error)
)

// Form is a special form: a construct that receives its arguments
// unevaluated and decides itself whether and when to evaluate them. The
// same form also knows how to lower those arguments to IR.
//
// Forms hold no mutable state; the table is shared by every context.
type Form struct {
	Name    string
	MinArgs int
	MaxArgs int // -1 for no upper bound
	Support Support

	eval  evalFunc
	apply applyFunc // set for strict forms that evaluate all arguments
	lower lowerFunc
}

// FormName implements value.Form.
func (f *Form) FormName() string { return f.Name }

// Strict reports whether the form evaluates every argument exactly once,
// left to right, and can therefore be applied to values. Only strict forms
// may be used as pipeline targets.
func (f *Form) Strict() bool { return f.apply != nil }

func (f *Form) checkArity(n int, span position.Span) error {
	if n >= f.MinArgs && (f.MaxArgs < 0 || n <= f.MaxArgs) {
		return nil
	}
	var expected string
	switch {
	case f.MaxArgs < 0:
		expected = fmt.Sprintf("at least %d", f.MinArgs)
	case f.MinArgs == f.MaxArgs:
		expected = fmt.Sprint(f.MinArgs)
	default:
		expected = fmt.Sprintf("%d or %d", f.MinArgs, f.MaxArgs)
	}
	return serrors.Arity(f.Name, expected, n, span)
}

// Eval evaluates the form on unevaluated arguments.
func (f *Form) Eval(c *Context, args []syntax.Expr, span position.Span) (value.Value, error) {
	if err := f.checkArity(len(args), span); err != nil {
		return nil, err
	}
	v, err := f.eval(c, args, span)
	if err != nil {
		return nil, serrors.AttachSpan(err, span)
	}
	return v, nil
}

// ApplyValues applies a strict form to already evaluated arguments.
func (f *Form) ApplyValues(c *Context, args []value.Value, span position.Span) (value.Value, error) {
	if f.apply == nil {
		return nil, serrors.NotCallable("special form "+f.Name, span)
	}
	if err := f.checkArity(len(args), span); err != nil {
		return nil, err
	}
	v, err := f.apply(c, args, span)
	if err != nil {
		return nil, serrors.AttachSpan(err, span)
	}
	return v, nil
}

// BuildIR lowers the form into the block currently open in lc. Forms
// without lowering report a not-implemented error.
func (f *Form) BuildIR(lc *LowerContext, args []syntax.Expr, span position.Span) (ir.ValueID, error) {
	if f.lower == nil {
		return 0, serrors.NotImplemented("'"+f.Name+"'", span)
	}
	if err := f.checkArity(len(args), span); err != nil {
		return 0, err
	}
	return f.lower(lc, args, span)
}

// strictEval adapts an applyFunc into an evalFunc that evaluates every
// argument first.
func strictEval(apply applyFunc) evalFunc {
	return func(c *Context, args []syntax.Expr, span position.Span) (value.Value, error) {
		vals, err := c.evalArgs(args)
		if err != nil {
			return nil, err
		}
		return apply(c, vals, span)
	}
}

// formTable maps names to the built-in special forms. It is filled once by
// init and read-only afterwards.
var formTable = make(map[string]*Form)

func registerForms(forms ...*Form) {
	for _, f := range forms {
		if f.eval == nil && f.apply != nil {
			f.eval = strictEval(f.apply)
		}
		formTable[f.Name] = f
	}
}

// LookupForm returns the built-in special form called name.
func LookupForm(name string) (*Form, bool) {
	f, ok := formTable[name]
	return f, ok
}

// FormNames lists the registered special forms with their IR support.
func FormNames() map[string]Support {
	out := make(map[string]Support, len(formTable))
	for name, f := range formTable {
		out[name] = f.Support
	}
	return out
}

func init() {
	registerForms(arithmeticForms()...)
	registerForms(logicForms()...)
	registerForms(comparisonForms()...)
	registerForms(bindingForms()...)
	registerForms(dataForms()...)
	registerForms(controlForms()...)
}
