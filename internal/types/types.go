// Package types defines Sable's first-class type values and a best-effort
// Hindley-Milner style inference engine used by `typeof` and by IR type
// annotation.
package types

import (
	"fmt"
	"strings"
)

// Kind classifies a type.
type Kind int

const (
	KindUnknown Kind = iota
	KindNil
	KindBool
	KindInteger
	KindFloat
	KindString
	KindSymbol
	KindList
	KindTuple
	KindRecord
	KindStruct
	KindFunction
	KindQuantity
	KindType
	KindUnit
	KindVar
)

// Field is a named record or struct member.
type Field struct {
	Name string
	Type *Type
}

// Type is a type value. Which members are meaningful depends on Kind.
type Type struct {
	Kind   Kind
	Name   string  // struct name, quantity dimension, type variable name
	ID     int     // type variable id
	Elem   *Type   // list element
	Elems  []*Type // tuple elements, function parameters
	Fields []Field // record and struct fields in declaration order
	Result *Type   // function result
}

// Primitive types
var (
	Unknown  = &Type{Kind: KindUnknown}
	Nil      = &Type{Kind: KindNil}
	Bool     = &Type{Kind: KindBool}
	Integer  = &Type{Kind: KindInteger}
	Float    = &Type{Kind: KindFloat}
	String   = &Type{Kind: KindString}
	Symbol   = &Type{Kind: KindSymbol}
	TypeType = &Type{Kind: KindType}
	Unit     = &Type{Kind: KindUnit}
)

func NewList(elem *Type) *Type { return &Type{Kind: KindList, Elem: elem} }

func NewTuple(elems ...*Type) *Type { return &Type{Kind: KindTuple, Elems: elems} }

func NewRecord(fields ...Field) *Type { return &Type{Kind: KindRecord, Fields: fields} }

// NewStruct declares a nominal record type.
func NewStruct(name string, fields ...Field) *Type {
	return &Type{Kind: KindStruct, Name: name, Fields: fields}
}

func NewFunction(params []*Type, result *Type) *Type {
	return &Type{Kind: KindFunction, Elems: params, Result: result}
}

func NewQuantity(dimension string) *Type { return &Type{Kind: KindQuantity, Name: dimension} }

func NewVar(id int) *Type {
	return &Type{Kind: KindVar, ID: id, Name: fmt.Sprintf("'t%d", id)}
}

// Field returns the type of the named field of a record or struct.
func (t *Type) Field(name string) (*Type, bool) {
	if t == nil {
		return nil, false
	}
	for _, f := range t.Fields {
		if f.Name == name {
			return f.Type, true
		}
	}
	return nil, false
}

// IsNumeric reports whether t is Integer or Float.
func (t *Type) IsNumeric() bool {
	return t != nil && (t.Kind == KindInteger || t.Kind == KindFloat)
}

// Equal compares types structurally, except that struct types compare by
// name only: two structs with the same fields but different names differ.
func Equal(a, b *Type) bool {
	if a == b {
		return true
	}
	if a == nil || b == nil || a.Kind != b.Kind {
		return false
	}

	switch a.Kind {
	case KindStruct:
		return a.Name == b.Name
	case KindQuantity:
		return a.Name == b.Name
	case KindVar:
		return a.ID == b.ID
	case KindList:
		return Equal(a.Elem, b.Elem)
	case KindTuple:
		return equalList(a.Elems, b.Elems)
	case KindFunction:
		return equalList(a.Elems, b.Elems) && Equal(a.Result, b.Result)
	case KindRecord:
		if len(a.Fields) != len(b.Fields) {
			return false
		}
		for _, f := range a.Fields {
			other, ok := b.Field(f.Name)
			if !ok || !Equal(f.Type, other) {
				return false
			}
		}
		return true
	default:
		return true
	}
}

// Compatible is Equal except that Unknown, at any depth, matches every
// type. A value built from an empty list has element type Unknown and can
// stand in for a list of anything.
func Compatible(a, b *Type) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Kind == KindUnknown || b.Kind == KindUnknown {
		return true
	}
	if a.Kind != b.Kind {
		return false
	}

	switch a.Kind {
	case KindList:
		return Compatible(a.Elem, b.Elem)
	case KindTuple:
		return compatibleList(a.Elems, b.Elems)
	case KindFunction:
		return compatibleList(a.Elems, b.Elems) && Compatible(a.Result, b.Result)
	case KindRecord:
		if len(a.Fields) != len(b.Fields) {
			return false
		}
		for _, f := range a.Fields {
			other, ok := b.Field(f.Name)
			if !ok || !Compatible(f.Type, other) {
				return false
			}
		}
		return true
	}
	return Equal(a, b)
}

func compatibleList(a, b []*Type) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !Compatible(a[i], b[i]) {
			return false
		}
	}
	return true
}

func equalList(a, b []*Type) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !Equal(a[i], b[i]) {
			return false
		}
	}
	return true
}

// HasVars reports whether t still mentions unresolved type variables.
func (t *Type) HasVars() bool {
	if t == nil {
		return false
	}
	switch t.Kind {
	case KindVar:
		return true
	case KindList:
		return t.Elem.HasVars()
	case KindTuple:
		for _, e := range t.Elems {
			if e.HasVars() {
				return true
			}
		}
	case KindFunction:
		for _, e := range t.Elems {
			if e.HasVars() {
				return true
			}
		}
		return t.Result.HasVars()
	case KindRecord, KindStruct:
		for _, f := range t.Fields {
			if f.Type.HasVars() {
				return true
			}
		}
	}
	return false
}

func (t *Type) String() string {
	if t == nil {
		return "<nil-type>"
	}
	switch t.Kind {
	case KindUnknown:
		return "Unknown"
	case KindNil:
		return "Nil"
	case KindBool:
		return "Bool"
	case KindInteger:
		return "Integer"
	case KindFloat:
		return "Float"
	case KindString:
		return "String"
	case KindSymbol:
		return "Symbol"
	case KindType:
		return "Type"
	case KindUnit:
		return "Unit"
	case KindVar:
		return t.Name
	case KindStruct:
		return t.Name
	case KindQuantity:
		return fmt.Sprintf("Quantity<%s>", t.Name)
	case KindList:
		return fmt.Sprintf("List<%s>", t.Elem)
	case KindTuple:
		parts := make([]string, len(t.Elems))
		for i, e := range t.Elems {
			parts[i] = e.String()
		}
		return "(" + strings.Join(parts, ", ") + ")"
	case KindRecord:
		parts := make([]string, len(t.Fields))
		for i, f := range t.Fields {
			parts[i] = fmt.Sprintf("%s: %s", f.Name, f.Type)
		}
		return "{" + strings.Join(parts, ", ") + "}"
	case KindFunction:
		parts := make([]string, len(t.Elems))
		for i, e := range t.Elems {
			parts[i] = e.String()
		}
		return fmt.Sprintf("fn(%s) -> %s", strings.Join(parts, ", "), t.Result)
	default:
		return "?"
	}
}
