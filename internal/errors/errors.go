// Package errors provides the evaluation error taxonomy for Sable. Every
// error carries a kind, a stable code, an optional source span and a partial
// stack trace that grows as the error propagates out of nested calls.
package errors

import (
	"errors"
	"fmt"
	"strings"

	"github.com/sable-lang/sable/internal/position"
)

// Kind classifies an evaluation error.
type Kind int

const (
	KindUndefinedVariable Kind = iota
	KindTypeMismatch
	KindArity
	KindNotCallable
	KindSyntax
	KindAssertion
	KindInternal
	KindNotImplemented
)

func (k Kind) String() string {
	switch k {
	case KindUndefinedVariable:
		return "undefined variable"
	case KindTypeMismatch:
		return "type mismatch"
	case KindArity:
		return "arity mismatch"
	case KindNotCallable:
		return "not callable"
	case KindSyntax:
		return "syntax error"
	case KindAssertion:
		return "assertion failed"
	case KindInternal:
		return "internal error"
	case KindNotImplemented:
		return "not implemented"
	default:
		return "unknown"
	}
}

// Code returns the stable diagnostic code for the kind.
func (k Kind) Code() string {
	switch k {
	case KindUndefinedVariable:
		return "E2001"
	case KindTypeMismatch:
		return "E3001"
	case KindArity:
		return "E3002"
	case KindNotCallable:
		return "E3003"
	case KindSyntax:
		return "E1001"
	case KindAssertion:
		return "E4001"
	case KindInternal:
		return "E9001"
	case KindNotImplemented:
		return "W7001"
	default:
		return "E0000"
	}
}

// Frame is one entry of an evaluation stack trace.
type Frame struct {
	Name string        // function name, empty for anonymous frames
	Span position.Span // call site, zero when unknown
}

func (f Frame) String() string {
	name := f.Name
	if name == "" {
		name = "<anonymous>"
	}
	if f.Span.IsValid() {
		return fmt.Sprintf("%s at %s", name, f.Span)
	}
	return name
}

// Error is a structured evaluation error.
type Error struct {
	Kind     Kind
	Message  string
	Span     position.Span
	Expected string // type or arity expectation, when relevant
	Actual   string
	Source   string // source text of an asserted condition
	Trace    []Frame
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder
	if e.Span.IsValid() {
		fmt.Fprintf(&b, "%s: ", e.Span)
	}
	fmt.Fprintf(&b, "%s: %s", e.Kind, e.Message)
	return b.String()
}

// Code returns the diagnostic code for the error kind.
func (e *Error) Code() string { return e.Kind.Code() }

// WithSpan sets the span if the error does not have one yet.
func (e *Error) WithSpan(span position.Span) *Error {
	if !e.Span.IsValid() {
		e.Span = span
	}
	return e
}

func newError(kind Kind, span position.Span, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Span: span, Message: fmt.Sprintf(format, args...)}
}

// ===== Constructors =====

func UndefinedVariable(name string, span position.Span) *Error {
	e := newError(KindUndefinedVariable, span, "'%s' is not defined", name)
	e.Actual = name
	return e
}

func TypeMismatch(expected, actual string, span position.Span) *Error {
	e := newError(KindTypeMismatch, span, "expected %s, found %s", expected, actual)
	e.Expected = expected
	e.Actual = actual
	return e
}

func Arity(what, expected string, actual int, span position.Span) *Error {
	e := newError(KindArity, span, "%s expects %s argument(s), got %d", what, expected, actual)
	e.Expected = expected
	e.Actual = fmt.Sprint(actual)
	return e
}

func NotCallable(what string, span position.Span) *Error {
	return newError(KindNotCallable, span, "%s is not callable", what)
}

func Syntax(span position.Span, format string, args ...interface{}) *Error {
	return newError(KindSyntax, span, format, args...)
}

// AssertionFailed records the failing condition's source text and the
// optional user message.
func AssertionFailed(source, message string, span position.Span) *Error {
	msg := fmt.Sprintf("assertion `%s` failed", source)
	if message != "" {
		msg += ": " + message
	}
	e := newError(KindAssertion, span, "%s", msg)
	e.Source = source
	return e
}

func Internal(format string, args ...interface{}) *Error {
	return newError(KindInternal, position.Span{}, format, args...)
}

func NotImplemented(what string, span position.Span) *Error {
	return newError(KindNotImplemented, span, "IR generation for %s is not yet implemented", what)
}

// ===== Propagation helpers =====

// As extracts a *Error from err.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// Is reports whether err is a *Error of the given kind.
func Is(err error, kind Kind) bool {
	e, ok := As(err)
	return ok && e.Kind == kind
}

// WithFrame appends a stack frame to err as it leaves a call. Errors that
// are not *Error are wrapped as internal errors so the trace is not lost.
func WithFrame(err error, name string, span position.Span) error {
	if err == nil {
		return nil
	}
	e, ok := As(err)
	if !ok {
		e = Internal("%v", err)
	}
	e.Trace = append(e.Trace, Frame{Name: name, Span: span})
	return e
}

// AttachSpan fills in the span of err when it has none.
func AttachSpan(err error, span position.Span) error {
	if e, ok := As(err); ok {
		e.WithSpan(span)
		return e
	}
	return err
}
