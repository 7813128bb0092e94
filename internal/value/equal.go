package value

import (
	"github.com/sable-lang/sable/internal/types"
)

// Equal compares data values structurally. Callables are never equal, not
// even to themselves. Record comparison ignores field order but nominal
// records only equal records of the same struct.
func Equal(a, b Value) bool {
	if a == nil || b == nil || a.Kind() != b.Kind() {
		return false
	}

	switch x := a.(type) {
	case Nil:
		return true
	case Bool:
		return x == b.(Bool)
	case Integer:
		return x.Cmp(b.(Integer)) == 0
	case Float:
		return x == b.(Float)
	case String:
		return x == b.(String)
	case Symbol:
		return x == b.(Symbol)
	case List:
		return equalValues(x.Elems, b.(List).Elems)
	case Tuple:
		y := b.(Tuple)
		return x.TypeName == y.TypeName && equalValues(x.Elems, y.Elems)
	case Record:
		y := b.(Record)
		if x.TypeName != y.TypeName || len(x.Fields) != len(y.Fields) {
			return false
		}
		for _, f := range x.Fields {
			other, ok := y.Field(f.Name)
			if !ok || !Equal(f.Value, other) {
				return false
			}
		}
		return true
	case Quantity:
		y := b.(Quantity)
		return x.Value == y.Value && x.Unit == y.Unit && x.Dimension == y.Dimension
	case Type:
		return types.Equal(x.T, b.(Type).T)
	default:
		return false
	}
}

func equalValues(a, b []Value) bool {
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

// TypeOf returns the runtime type of v.
func TypeOf(v Value) *types.Type {
	switch x := v.(type) {
	case Nil:
		return types.Nil
	case Bool:
		return types.Bool
	case Integer:
		return types.Integer
	case Float:
		return types.Float
	case String:
		return types.String
	case Symbol:
		return types.Symbol
	case List:
		if len(x.Elems) == 0 {
			return types.NewList(types.Unknown)
		}
		return types.NewList(TypeOf(x.Elems[0]))
	case Tuple:
		elems := make([]*types.Type, len(x.Elems))
		for i, e := range x.Elems {
			elems[i] = TypeOf(e)
		}
		return types.NewTuple(elems...)
	case Record:
		fields := make([]types.Field, len(x.Fields))
		for i, f := range x.Fields {
			fields[i] = types.Field{Name: f.Name, Type: TypeOf(f.Value)}
		}
		if x.TypeName != "" {
			return types.NewStruct(x.TypeName, fields...)
		}
		return types.NewRecord(fields...)
	case Quantity:
		return types.NewQuantity(x.Dimension)
	case *UserFunction:
		params := make([]*types.Type, len(x.Params))
		for i := range params {
			params[i] = types.Unknown
		}
		return types.NewFunction(params, types.Unknown)
	case StructConstructor:
		params := make([]*types.Type, len(x.Type.Fields))
		for i, f := range x.Type.Fields {
			params[i] = f.Type
		}
		return types.NewFunction(params, x.Type)
	case UnitConstructor:
		return types.NewFunction([]*types.Type{types.Unknown}, types.NewQuantity(x.Unit.Dimension))
	case Type:
		return types.TypeType
	default:
		return types.Unknown
	}
}

// TypeName is the name of v's runtime type, as used in error messages.
func TypeName(v Value) string {
	return TypeOf(v).String()
}

// SameType reports whether a and b have the same runtime type for the
// purpose of comparison: same kind, and for nominal values the same struct.
func SameType(a, b Value) bool {
	if a.Kind() != b.Kind() {
		return false
	}
	switch x := a.(type) {
	case Record:
		return x.TypeName == b.(Record).TypeName
	case Tuple:
		return x.TypeName == b.(Tuple).TypeName
	case Quantity:
		return x.Dimension == b.(Quantity).Dimension
	}
	return true
}
