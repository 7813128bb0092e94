// Package syntax defines the expression tree consumed by the Sable evaluator
// and IR generator. Any front end (the s-expression reader, or an external
// parser) that produces these nodes can be evaluated identically.
//
// Every node carries a source span; the kinds mirror the syntactic categories
// the evaluator dispatches on: application, identifier, operator, literal,
// attribute and error.
package syntax

import (
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"github.com/sable-lang/sable/internal/position"
)

// Kind is the syntactic category of an expression node.
type Kind int

const (
	KindApply Kind = iota
	KindIdent
	KindOperator
	KindLiteral
	KindAttribute
	KindError
)

func (k Kind) String() string {
	switch k {
	case KindApply:
		return "application"
	case KindIdent:
		return "identifier"
	case KindOperator:
		return "operator"
	case KindLiteral:
		return "literal"
	case KindAttribute:
		return "attribute"
	case KindError:
		return "error"
	default:
		return "unknown"
	}
}

// Expr is implemented by every expression node.
type Expr interface {
	// GetSpan returns the source span covered by this node
	GetSpan() position.Span
	// Kind returns the syntactic category used for dispatch
	Kind() Kind
	// String renders the node as an s-expression
	String() string
}

// Module is an ordered list of top-level expressions.
type Module struct {
	Name   string
	Items  []Expr
	Source *position.SourceFile
}

// Apply is an application `(head args...)`. Whether the arguments are
// evaluated before the call is decided by what head resolves to.
type Apply struct {
	Span position.Span
	Head Expr
	Args []Expr
}

func (a *Apply) GetSpan() position.Span { return a.Span }
func (a *Apply) Kind() Kind             { return KindApply }
func (a *Apply) String() string {
	parts := make([]string, 0, len(a.Args)+1)
	parts = append(parts, a.Head.String())
	for _, arg := range a.Args {
		parts = append(parts, arg.String())
	}
	return "(" + strings.Join(parts, " ") + ")"
}

// Ident is a plain identifier such as `x` or `Point`.
type Ident struct {
	Span position.Span
	Name string
}

func (i *Ident) GetSpan() position.Span { return i.Span }
func (i *Ident) Kind() Kind             { return KindIdent }
func (i *Ident) String() string         { return i.Name }

// Operator is a symbolic name such as `+`, `|>` or `==`.
type Operator struct {
	Span position.Span
	Op   string
}

func (o *Operator) GetSpan() position.Span { return o.Span }
func (o *Operator) Kind() Kind             { return KindOperator }
func (o *Operator) String() string         { return o.Op }

// LiteralKind classifies literal values.
type LiteralKind int

const (
	LiteralNil LiteralKind = iota
	LiteralBool
	LiteralInteger
	LiteralFloat
	LiteralString
)

func (lk LiteralKind) String() string {
	switch lk {
	case LiteralNil:
		return "nil"
	case LiteralBool:
		return "bool"
	case LiteralInteger:
		return "integer"
	case LiteralFloat:
		return "float"
	case LiteralString:
		return "string"
	default:
		return "unknown"
	}
}

// Literal is a constant. Value holds nil, bool, *big.Int, float64 or string
// according to LitKind.
type Literal struct {
	Span    position.Span
	LitKind LiteralKind
	Value   interface{}
	Raw     string
}

func (l *Literal) GetSpan() position.Span { return l.Span }
func (l *Literal) Kind() Kind             { return KindLiteral }
func (l *Literal) String() string {
	if l.Raw != "" {
		return l.Raw
	}
	switch l.LitKind {
	case LiteralNil:
		return "nil"
	case LiteralString:
		return strconv.Quote(fmt.Sprint(l.Value))
	default:
		return fmt.Sprint(l.Value)
	}
}

// Attribute is `@body`; it annotates the next sibling expression.
type Attribute struct {
	Span position.Span
	Body Expr
}

func (a *Attribute) GetSpan() position.Span { return a.Span }
func (a *Attribute) Kind() Kind             { return KindAttribute }
func (a *Attribute) String() string         { return "@" + a.Body.String() }

// Error marks a region the front end could not parse.
type Error struct {
	Span    position.Span
	Message string
}

func (e *Error) GetSpan() position.Span { return e.Span }
func (e *Error) Kind() Kind             { return KindError }
func (e *Error) String() string         { return fmt.Sprintf("<error: %s>", e.Message) }

// NameOf returns the name of an identifier or operator node.
func NameOf(e Expr) (string, bool) {
	switch n := e.(type) {
	case *Ident:
		return n.Name, true
	case *Operator:
		return n.Op, true
	default:
		return "", false
	}
}

// IsIdent reports whether e is the identifier name.
func IsIdent(e Expr, name string) bool {
	id, ok := e.(*Ident)
	return ok && id.Name == name
}

// ===== Constructors =====

func NewIdent(name string) *Ident { return &Ident{Name: name} }

func NewOperator(op string) *Operator { return &Operator{Op: op} }

func NewApply(head Expr, args ...Expr) *Apply { return &Apply{Head: head, Args: args} }

// Call builds an application whose head is the identifier or operator name.
func Call(name string, args ...Expr) *Apply {
	var head Expr
	if isOperatorName(name) {
		head = NewOperator(name)
	} else {
		head = NewIdent(name)
	}
	return NewApply(head, args...)
}

func NewAttribute(body Expr) *Attribute { return &Attribute{Body: body} }

func Nil() *Literal { return &Literal{LitKind: LiteralNil, Raw: "nil"} }

func Bool(b bool) *Literal {
	return &Literal{LitKind: LiteralBool, Value: b, Raw: strconv.FormatBool(b)}
}

func Int(i int64) *Literal {
	return &Literal{LitKind: LiteralInteger, Value: big.NewInt(i), Raw: strconv.FormatInt(i, 10)}
}

func Float(f float64) *Literal {
	return &Literal{LitKind: LiteralFloat, Value: f, Raw: strconv.FormatFloat(f, 'g', -1, 64)}
}

func String(s string) *Literal {
	return &Literal{LitKind: LiteralString, Value: s, Raw: strconv.Quote(s)}
}

func isOperatorName(name string) bool {
	if name == "" {
		return false
	}
	c := name[0]
	return !(c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z'))
}

// IsOperatorName reports whether name is spelled like an operator rather
// than an identifier.
func IsOperatorName(name string) bool { return isOperatorName(name) }
