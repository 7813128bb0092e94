package eval

import (
	"time"

	serrors "github.com/sable-lang/sable/internal/errors"
	"github.com/sable-lang/sable/internal/position"
	"github.com/sable-lang/sable/internal/syntax"
	"github.com/sable-lang/sable/internal/value"
)

// EvalModule evaluates the items of mod in order and returns one value per
// item. Function definitions are hoisted first so items may call functions
// defined further down. An item that fails is reported as a diagnostic and
// yields nil; evaluation continues with the next item.
//
// When an IR generator is attached, the functions defined by the module and
// then its non-declaration items are lowered afterwards.
func (s *CompilerState) EvalModule(env *value.Environment, mod *syntax.Module) []value.Value {
	c := NewContext(env, s, mod.Source)
	if s.IR != nil {
		s.IR.beginModule(env)
	}
	s.hoist(c, mod.Items)

	results := make([]value.Value, len(mod.Items))
	var last position.Span
	for i, item := range mod.Items {
		last = item.GetSpan()
		if attr, ok := item.(*syntax.Attribute); ok {
			c.PushAttribute(attr.Body)
			results[i] = value.Nil{}
			continue
		}
		v, err := c.evalAttributed(item)
		if err != nil {
			s.Report(err)
			v = value.Nil{}
		}
		results[i] = v
	}
	if dangling := c.TakeAttributes(); len(dangling) > 0 {
		s.warnDangling(dangling, last)
	}

	if s.IR != nil {
		s.IR.flush()
		if err := s.IR.LowerMain(mod.Items); err != nil {
			s.Warn(err)
		}
	}
	return results
}

// hoist defines every top-level function before the module runs. Errors
// are left for the main pass to report when it reaches the definition.
func (s *CompilerState) hoist(c *Context, items []syntax.Expr) {
	var attrs []syntax.Expr
	hoisted := 0
	for _, item := range items {
		if attr, ok := item.(*syntax.Attribute); ok {
			attrs = append(attrs, attr.Body)
			continue
		}
		if isFnDefinition(item) {
			c.ReplaceAttributes(attrs)
			if _, err := c.Eval(item); err == nil {
				hoisted++
			}
		}
		attrs = nil
		c.TakeAttributes()
	}
	s.Logger.Debug("hoisted %d functions", hoisted)
}

func isFnDefinition(item syntax.Expr) bool {
	head, ok := syntax.HeadName(item)
	if !ok {
		return false
	}
	if head == "fn" {
		return true
	}
	if head != "=" {
		return false
	}
	app := item.(*syntax.Apply)
	if len(app.Args) != 2 {
		return false
	}
	inner, _ := syntax.HeadName(app.Args[0])
	return inner == "fn"
}

// registerTest records fn as a test, replacing an earlier registration of
// the same name.
func (s *CompilerState) registerTest(fn *value.UserFunction) {
	for i, t := range s.Tests {
		if t.Name == fn.Name {
			s.Tests[i] = fn
			return
		}
	}
	s.Tests = append(s.Tests, fn)
}

// TestResult is the outcome of one @test function.
type TestResult struct {
	Name     string
	Passed   bool
	Err      error
	Duration time.Duration
}

// RunTests calls every registered test function. A test fails when it
// takes parameters, raises an error or returns false.
func (s *CompilerState) RunTests(source *position.SourceFile) []TestResult {
	results := make([]TestResult, 0, len(s.Tests))
	for _, fn := range s.Tests {
		start := time.Now()
		res := TestResult{Name: fn.Name}

		if len(fn.Params) != 0 {
			res.Err = serrors.Arity("test "+fn.Name, "0", len(fn.Params), fn.Span)
		} else {
			c := NewContext(fn.Env, s, source)
			v, err := c.Call(fn, nil, fn.Span)
			switch {
			case err != nil:
				res.Err = err
			case value.Equal(v, value.Bool(false)):
				res.Err = serrors.AssertionFailed(fn.Name+"()", "test returned false", fn.Span)
			default:
				res.Passed = true
			}
		}

		res.Duration = time.Since(start)
		s.Logger.Debug("test %s: passed=%t in %s", fn.Name, res.Passed, res.Duration)
		results = append(results, res)
	}
	return results
}
