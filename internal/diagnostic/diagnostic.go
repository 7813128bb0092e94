// Diagnostic reporting for the Sable evaluator.
// Errors raised while evaluating or lowering a module are collected here,
// together with warnings such as dangling attributes or IR capability gaps.

package diagnostic

import (
	"fmt"
	"sort"
	"strings"

	serrors "github.com/sable-lang/sable/internal/errors"
	"github.com/sable-lang/sable/internal/position"
)

// DiagnosticLevel represents the severity level of a diagnostic message.
type DiagnosticLevel int

const (
	DiagnosticError DiagnosticLevel = iota
	DiagnosticWarning
	DiagnosticInfo
	DiagnosticHint
)

func (dl DiagnosticLevel) String() string {
	switch dl {
	case DiagnosticError:
		return "error"
	case DiagnosticWarning:
		return "warning"
	case DiagnosticInfo:
		return "info"
	case DiagnosticHint:
		return "hint"
	default:
		return "unknown"
	}
}

// DiagnosticCategory represents the category of diagnostic.
type DiagnosticCategory int

const (
	DiagnosticSyntax DiagnosticCategory = iota
	DiagnosticType
	DiagnosticSemantic
	DiagnosticRuntime
	DiagnosticCodegen
)

func (dc DiagnosticCategory) String() string {
	switch dc {
	case DiagnosticSyntax:
		return "syntax"
	case DiagnosticType:
		return "type"
	case DiagnosticSemantic:
		return "semantic"
	case DiagnosticRuntime:
		return "runtime"
	case DiagnosticCodegen:
		return "codegen"
	default:
		return "unknown"
	}
}

// Diagnostic represents a single diagnostic message.
type Diagnostic struct {
	Code     string
	Title    string
	Message  string
	Source   string // echoed source text, e.g. a failed assertion condition
	Trace    []serrors.Frame
	Span     position.Span
	Level    DiagnosticLevel
	Category DiagnosticCategory
}

func (d Diagnostic) String() string {
	var b strings.Builder
	if d.Span.IsValid() {
		fmt.Fprintf(&b, "%s: ", d.Span)
	}
	fmt.Fprintf(&b, "%s[%s]: %s", d.Level, d.Code, d.Title)
	if d.Message != "" {
		fmt.Fprintf(&b, ": %s", d.Message)
	}
	return b.String()
}

// DiagnosticBuilder helps construct diagnostic messages with fluent API.
type DiagnosticBuilder struct {
	diagnostic *Diagnostic
}

// NewDiagnostic creates a new diagnostic builder.
func NewDiagnostic() *DiagnosticBuilder {
	return &DiagnosticBuilder{diagnostic: &Diagnostic{}}
}

func (db *DiagnosticBuilder) Error() *DiagnosticBuilder {
	db.diagnostic.Level = DiagnosticError

	return db
}

func (db *DiagnosticBuilder) Warning() *DiagnosticBuilder {
	db.diagnostic.Level = DiagnosticWarning

	return db
}

func (db *DiagnosticBuilder) Category(category DiagnosticCategory) *DiagnosticBuilder {
	db.diagnostic.Category = category

	return db
}

func (db *DiagnosticBuilder) Code(code string) *DiagnosticBuilder {
	db.diagnostic.Code = code

	return db
}

func (db *DiagnosticBuilder) Title(title string) *DiagnosticBuilder {
	db.diagnostic.Title = title

	return db
}

func (db *DiagnosticBuilder) Message(message string) *DiagnosticBuilder {
	db.diagnostic.Message = message

	return db
}

func (db *DiagnosticBuilder) Span(span position.Span) *DiagnosticBuilder {
	db.diagnostic.Span = span

	return db
}

func (db *DiagnosticBuilder) Source(source string) *DiagnosticBuilder {
	db.diagnostic.Source = source

	return db
}

func (db *DiagnosticBuilder) Trace(trace []serrors.Frame) *DiagnosticBuilder {
	db.diagnostic.Trace = append([]serrors.Frame(nil), trace...)

	return db
}

func (db *DiagnosticBuilder) Build() *Diagnostic {
	return db.diagnostic
}

// FromError converts an evaluation error into an error-level diagnostic.
// Errors that are not *serrors.Error become internal diagnostics.
func FromError(err error) *Diagnostic {
	e, ok := serrors.As(err)
	if !ok {
		return NewDiagnostic().
			Error().
			Category(DiagnosticRuntime).
			Code(serrors.KindInternal.Code()).
			Title(serrors.KindInternal.String()).
			Message(err.Error()).
			Build()
	}

	level := DiagnosticError
	if e.Kind == serrors.KindNotImplemented {
		level = DiagnosticWarning
	}

	return &Diagnostic{
		Code:     e.Code(),
		Title:    e.Kind.String(),
		Message:  e.Message,
		Source:   e.Source,
		Trace:    append([]serrors.Frame(nil), e.Trace...),
		Span:     e.Span,
		Level:    level,
		Category: categoryOf(e.Kind),
	}
}

func categoryOf(kind serrors.Kind) DiagnosticCategory {
	switch kind {
	case serrors.KindSyntax:
		return DiagnosticSyntax
	case serrors.KindTypeMismatch, serrors.KindArity, serrors.KindNotCallable:
		return DiagnosticType
	case serrors.KindUndefinedVariable:
		return DiagnosticSemantic
	case serrors.KindNotImplemented:
		return DiagnosticCodegen
	default:
		return DiagnosticRuntime
	}
}

// DiagnosticEngine manages the collection and processing of diagnostics.
type DiagnosticEngine struct {
	diagnostics []Diagnostic
	config      DiagnosticConfig
	truncated   bool
}

// DiagnosticConfig controls diagnostic behavior.
type DiagnosticConfig struct {
	IgnoreCodes      []string
	MaxErrors        int // 0 means unlimited
	WarningsAsErrors bool
	ShowTrace        bool
}

// DefaultConfig returns the configuration used when none is supplied.
func DefaultConfig() DiagnosticConfig {
	return DiagnosticConfig{ShowTrace: true}
}

// NewDiagnosticEngine creates a new diagnostic engine.
func NewDiagnosticEngine(config DiagnosticConfig) *DiagnosticEngine {
	return &DiagnosticEngine{
		diagnostics: make([]Diagnostic, 0),
		config:      config,
	}
}

// AddDiagnostic adds a diagnostic to the engine.
func (de *DiagnosticEngine) AddDiagnostic(diagnostic *Diagnostic) {
	if de.shouldIgnore(diagnostic) || de.truncated {
		return
	}

	if de.config.WarningsAsErrors && diagnostic.Level == DiagnosticWarning {
		diagnostic.Level = DiagnosticError
	}

	de.diagnostics = append(de.diagnostics, *diagnostic)

	if de.config.MaxErrors > 0 && len(de.GetErrors()) >= de.config.MaxErrors {
		de.truncated = true
		truncationDiag := NewDiagnostic().
			Error().
			Code("E0001").
			Title("Too many errors").
			Message(fmt.Sprintf("Stopping after %d errors", de.config.MaxErrors)).
			Build()
		de.diagnostics = append(de.diagnostics, *truncationDiag)
	}
}

// AddError records err as a diagnostic.
func (de *DiagnosticEngine) AddError(err error) {
	if err == nil {
		return
	}
	de.AddDiagnostic(FromError(err))
}

// shouldIgnore checks if a diagnostic should be ignored based on config.
func (de *DiagnosticEngine) shouldIgnore(diagnostic *Diagnostic) bool {
	for _, code := range de.config.IgnoreCodes {
		if diagnostic.Code == code {
			return true
		}
	}

	return false
}

// GetDiagnostics returns all diagnostics.
func (de *DiagnosticEngine) GetDiagnostics() []Diagnostic {
	return de.diagnostics
}

// Drain returns all collected diagnostics and empties the engine.
func (de *DiagnosticEngine) Drain() []Diagnostic {
	out := de.diagnostics
	de.diagnostics = make([]Diagnostic, 0)
	de.truncated = false
	return out
}

// GetErrors returns only error-level diagnostics.
func (de *DiagnosticEngine) GetErrors() []Diagnostic {
	return de.filter(DiagnosticError)
}

// GetWarnings returns only warning-level diagnostics.
func (de *DiagnosticEngine) GetWarnings() []Diagnostic {
	return de.filter(DiagnosticWarning)
}

func (de *DiagnosticEngine) filter(level DiagnosticLevel) []Diagnostic {
	out := make([]Diagnostic, 0)

	for _, diag := range de.diagnostics {
		if diag.Level == level {
			out = append(out, diag)
		}
	}

	return out
}

// HasErrors returns true if there are any errors.
func (de *DiagnosticEngine) HasErrors() bool {
	return len(de.GetErrors()) > 0
}

// Sort orders diagnostics by file, position and severity.
func Sort(diagnostics []Diagnostic) {
	sort.SliceStable(diagnostics, func(i, j int) bool {
		a, b := diagnostics[i], diagnostics[j]

		if a.Span.Start.Filename != b.Span.Start.Filename {
			return a.Span.Start.Filename < b.Span.Start.Filename
		}

		if a.Span.Start.Line != b.Span.Start.Line {
			return a.Span.Start.Line < b.Span.Start.Line
		}

		if a.Span.Start.Column != b.Span.Start.Column {
			return a.Span.Start.Column < b.Span.Start.Column
		}

		return a.Level < b.Level
	})
}
