// Package value defines Sable's runtime values and the lexical environment
// they are bound in.
//
// Data values are immutable by convention: operations that "modify" a
// list or record build a new one. Callables compare unequal to everything,
// themselves included.
package value

import (
	"fmt"
	"io"
	"math/big"
	"strconv"
	"strings"
	"unique"

	"github.com/sable-lang/sable/internal/position"
	"github.com/sable-lang/sable/internal/syntax"
	"github.com/sable-lang/sable/internal/types"
	"github.com/sable-lang/sable/internal/units"
)

// Kind tags the variant of a Value.
type Kind int

const (
	KindNil Kind = iota
	KindBool
	KindInteger
	KindFloat
	KindString
	KindSymbol
	KindList
	KindTuple
	KindRecord
	KindQuantity
	KindUserFunction
	KindBuiltinFn
	KindBuiltinMacro
	KindSpecialForm
	KindStructConstructor
	KindType
	KindUnitConstructor
)

var kindNames = [...]string{
	KindNil:               "nil",
	KindBool:              "bool",
	KindInteger:           "integer",
	KindFloat:             "float",
	KindString:            "string",
	KindSymbol:            "symbol",
	KindList:              "list",
	KindTuple:             "tuple",
	KindRecord:            "record",
	KindQuantity:          "quantity",
	KindUserFunction:      "function",
	KindBuiltinFn:         "builtin function",
	KindBuiltinMacro:      "macro",
	KindSpecialForm:       "special form",
	KindStructConstructor: "struct constructor",
	KindType:              "type",
	KindUnitConstructor:   "unit constructor",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// Value is a runtime value.
type Value interface {
	Kind() Kind
	String() string
}

// IsCallable reports whether v can appear in head position of a call.
func IsCallable(v Value) bool {
	switch v.Kind() {
	case KindUserFunction, KindBuiltinFn, KindBuiltinMacro, KindSpecialForm,
		KindStructConstructor, KindUnitConstructor:
		return true
	}
	return false
}

// ===== Data =====

type Nil struct{}

func (Nil) Kind() Kind     { return KindNil }
func (Nil) String() string { return "nil" }

type Bool bool

func (Bool) Kind() Kind       { return KindBool }
func (b Bool) String() string { return strconv.FormatBool(bool(b)) }

// Integer is a signed 128-bit integer. V is never mutated after construction.
type Integer struct {
	V *big.Int
}

func (Integer) Kind() Kind       { return KindInteger }
func (i Integer) String() string { return i.V.String() }

type Float float64

func (Float) Kind() Kind { return KindFloat }
func (f Float) String() string {
	s := strconv.FormatFloat(float64(f), 'g', -1, 64)
	if !strings.ContainsAny(s, ".eInN") {
		s += ".0"
	}
	return s
}

type String string

func (String) Kind() Kind       { return KindString }
func (s String) String() string { return strconv.Quote(string(s)) }

// Symbol is an interned name.
type Symbol struct {
	h unique.Handle[string]
}

// NewSymbol interns name.
func NewSymbol(name string) Symbol { return Symbol{h: unique.Make(name)} }

func (Symbol) Kind() Kind       { return KindSymbol }
func (s Symbol) Name() string   { return s.h.Value() }
func (s Symbol) String() string { return ":" + s.h.Value() }

type List struct {
	Elems []Value
}

func (List) Kind() Kind { return KindList }
func (l List) String() string {
	return "[" + joinValues(l.Elems) + "]"
}

// Tuple is a fixed-size sequence. TypeName is set for nominal tuples.
type Tuple struct {
	TypeName string
	Elems    []Value
}

func (Tuple) Kind() Kind { return KindTuple }
func (t Tuple) String() string {
	return t.TypeName + "(" + joinValues(t.Elems) + ")"
}

// RecordField is one named member of a record.
type RecordField struct {
	Name  string
	Value Value
}

// Record keeps its fields in construction order. TypeName is non-empty iff
// the record was built by a struct constructor.
type Record struct {
	TypeName string
	Fields   []RecordField
}

func (Record) Kind() Kind { return KindRecord }
func (r Record) String() string {
	parts := make([]string, len(r.Fields))
	for i, f := range r.Fields {
		parts[i] = fmt.Sprintf("%s = %s", f.Name, f.Value)
	}
	body := "{" + strings.Join(parts, ", ") + "}"
	if r.TypeName != "" {
		return r.TypeName + " " + body
	}
	return body
}

// Field returns the value of the named field.
func (r Record) Field(name string) (Value, bool) {
	for _, f := range r.Fields {
		if f.Name == name {
			return f.Value, true
		}
	}
	return nil, false
}

// With returns a copy of r with the named field replaced.
func (r Record) With(name string, v Value) Record {
	fields := make([]RecordField, len(r.Fields))
	copy(fields, r.Fields)
	for i := range fields {
		if fields[i].Name == name {
			fields[i].Value = v
		}
	}
	return Record{TypeName: r.TypeName, Fields: fields}
}

// Quantity is a magnitude in a unit of measure.
type Quantity struct {
	Value     float64
	Unit      string
	Dimension string
}

func (Quantity) Kind() Kind { return KindQuantity }
func (q Quantity) String() string {
	return fmt.Sprintf("%s %s", strconv.FormatFloat(q.Value, 'g', -1, 64), q.Unit)
}

// ===== Callables =====

// UserFunction is a closure. Env is a snapshot of the defining
// environment; later changes to that environment are not observed.
type UserFunction struct {
	Name       string
	Params     []string
	Body       syntax.Expr
	Env        *Environment
	Attributes []syntax.Expr
	Span       position.Span
}

func (*UserFunction) Kind() Kind       { return KindUserFunction }
func (f *UserFunction) String() string { return fmt.Sprintf("<fn %s/%d>", f.Name, len(f.Params)) }

// Host gives builtin functions access to the interpreter hosting them.
type Host interface {
	Output() io.Writer
	UnitRegistry() *units.Registry
}

// BuiltinFn is a function implemented in Go. Arity is the exact argument
// count, or -1 for variadic builtins.
type BuiltinFn struct {
	Name  string
	Arity int
	Fn    func(host Host, args []Value, span position.Span) (Value, error)
}

func (*BuiltinFn) Kind() Kind       { return KindBuiltinFn }
func (b *BuiltinFn) String() string { return fmt.Sprintf("<builtin %s>", b.Name) }

// BuiltinMacro rewrites its unevaluated arguments into a new expression,
// which is then evaluated in the caller's context.
type BuiltinMacro struct {
	Name   string
	Expand func(args []syntax.Expr, span position.Span) (syntax.Expr, error)
}

func (*BuiltinMacro) Kind() Kind       { return KindBuiltinMacro }
func (m *BuiltinMacro) String() string { return fmt.Sprintf("<macro %s>", m.Name) }

// Form is the dispatch handle of a special form. The evaluator owns the
// concrete implementation.
type Form interface {
	FormName() string
}

type SpecialForm struct {
	Form Form
}

func (SpecialForm) Kind() Kind       { return KindSpecialForm }
func (s SpecialForm) String() string { return fmt.Sprintf("<special form %s>", s.Form.FormName()) }

// StructConstructor builds nominal records of Type.
type StructConstructor struct {
	Type *types.Type
}

func (StructConstructor) Kind() Kind       { return KindStructConstructor }
func (s StructConstructor) String() string { return fmt.Sprintf("<struct %s>", s.Type.Name) }
func (s StructConstructor) Name() string   { return s.Type.Name }

// Type is a type used as a value.
type Type struct {
	T *types.Type
}

func (Type) Kind() Kind       { return KindType }
func (t Type) String() string { return t.T.String() }

// UnitConstructor turns a number into a Quantity of Unit.
type UnitConstructor struct {
	Unit units.Unit
}

func (UnitConstructor) Kind() Kind       { return KindUnitConstructor }
func (u UnitConstructor) String() string { return fmt.Sprintf("<unit %s>", u.Unit.Name) }

// ===== Helpers =====

func joinValues(vs []Value) string {
	parts := make([]string, len(vs))
	for i, v := range vs {
		parts[i] = v.String()
	}
	return strings.Join(parts, ", ")
}

// Display renders v for output: strings print without quotes.
func Display(v Value) string {
	if s, ok := v.(String); ok {
		return string(s)
	}
	return v.String()
}

// Truthy converts a Bool value. ok is false for every other kind.
func Truthy(v Value) (b, ok bool) {
	bv, ok := v.(Bool)
	return bool(bv), ok
}
