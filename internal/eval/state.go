// Package eval is the Sable evaluator. It evaluates expression trees
// directly and, through the same special-form table, lowers them into the
// SSA IR defined by package ir.
package eval

import (
	"io"

	"github.com/sable-lang/sable/internal/cli"
	"github.com/sable-lang/sable/internal/diagnostic"
	"github.com/sable-lang/sable/internal/position"
	"github.com/sable-lang/sable/internal/syntax"
	"github.com/sable-lang/sable/internal/types"
	"github.com/sable-lang/sable/internal/units"
	"github.com/sable-lang/sable/internal/value"
)

// StateConfig configures a CompilerState.
type StateConfig struct {
	Out         io.Writer // destination of print; io.Discard when nil
	Logger      *cli.Logger
	Diagnostics diagnostic.DiagnosticConfig
}

// CompilerState accumulates everything that outlives a single top-level
// evaluation: module-level definitions, diagnostics, units, registered
// tests and the optional IR generator and type inferencer.
type CompilerState struct {
	Defs        map[string]value.Value
	Macros      map[string]value.Value
	Diagnostics *diagnostic.DiagnosticEngine
	Units       *units.Registry
	IR          *IRGenerator
	Inferencer  *types.InferenceEngine
	Logger      *cli.Logger
	Tests       []*value.UserFunction

	out io.Writer
}

// NewCompilerState creates a state with every special form and builtin
// macro registered.
func NewCompilerState(cfg StateConfig) *CompilerState {
	out := cfg.Out
	if out == nil {
		out = io.Discard
	}
	s := &CompilerState{
		Defs:        make(map[string]value.Value),
		Macros:      make(map[string]value.Value),
		Diagnostics: diagnostic.NewDiagnosticEngine(cfg.Diagnostics),
		Units:       units.NewRegistry(),
		Logger:      cfg.Logger,
		out:         out,
	}
	for name, f := range formTable {
		s.Macros[name] = value.SpecialForm{Form: f}
	}
	for _, m := range builtinMacros() {
		s.Macros[m.Name] = m
	}
	return s
}

// EnableIR attaches an IR generator building a module called moduleName.
func (s *CompilerState) EnableIR(moduleName string) *IRGenerator {
	s.IR = NewIRGenerator(moduleName, s)
	return s.IR
}

// EnableInference attaches a type inferencer used for IR type annotation.
func (s *CompilerState) EnableInference() {
	s.Inferencer = types.NewInferenceEngine()
}

func (s *CompilerState) Define(name string, v value.Value) {
	s.Defs[name] = v
}

func (s *CompilerState) DefineMacro(name string, v value.Value) {
	s.Macros[name] = v
}

// Lookup resolves a module-level name, definitions before macros.
func (s *CompilerState) Lookup(name string) (value.Value, bool) {
	if v, ok := s.Defs[name]; ok {
		return v, true
	}
	v, ok := s.Macros[name]
	return v, ok
}

// Report records err as an error diagnostic.
func (s *CompilerState) Report(err error) {
	s.Diagnostics.AddError(err)
}

// Warn records err as a warning diagnostic.
func (s *CompilerState) Warn(err error) {
	if err == nil {
		return
	}
	d := diagnostic.FromError(err)
	d.Level = diagnostic.DiagnosticWarning
	s.Diagnostics.AddDiagnostic(d)
}

func (s *CompilerState) warnDangling(attrs []syntax.Expr, span position.Span) {
	for _, a := range attrs {
		s.Diagnostics.AddDiagnostic(diagnostic.NewDiagnostic().
			Warning().
			Category(diagnostic.DiagnosticSemantic).
			Code("W2001").
			Title("dangling attribute").
			Message("attribute @" + a.String() + " is not followed by an expression").
			Span(spanOr(a.GetSpan(), span)).
			Build())
	}
}

// Drain returns the collected diagnostics and clears them.
func (s *CompilerState) Drain() []diagnostic.Diagnostic {
	return s.Diagnostics.Drain()
}

// Output implements value.Host.
func (s *CompilerState) Output() io.Writer { return s.out }

// UnitRegistry implements value.Host.
func (s *CompilerState) UnitRegistry() *units.Registry { return s.Units }

func spanOr(span, fallback position.Span) position.Span {
	if span.IsValid() {
		return span
	}
	return fallback
}
