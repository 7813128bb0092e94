package eval

import (
	"math/big"
	"strconv"

	serrors "github.com/sable-lang/sable/internal/errors"
	"github.com/sable-lang/sable/internal/ir"
	"github.com/sable-lang/sable/internal/position"
	"github.com/sable-lang/sable/internal/syntax"
	"github.com/sable-lang/sable/internal/types"
	"github.com/sable-lang/sable/internal/units"
	"github.com/sable-lang/sable/internal/value"
)

func dataForms() []*Form {
	return []*Form{
		{Name: ".", MinArgs: 2, MaxArgs: 2, Support: Unsupported, eval: evalField},
		{Name: "__index__", MinArgs: 2, MaxArgs: 2, Support: Unsupported, apply: applyIndex},
		{Name: "__block__", MinArgs: 0, MaxArgs: -1, Support: Supported, eval: evalBlock, lower: lowerBlock},
		{Name: "__list__", MinArgs: 0, MaxArgs: -1, Support: Unsupported, apply: applyList},
		{Name: "__tuple__", MinArgs: 0, MaxArgs: -1, Support: Unsupported, apply: applyTuple},
		{Name: "__record__", MinArgs: 0, MaxArgs: -1, Support: Unsupported, eval: evalRecord},
		{Name: "struct", MinArgs: 2, MaxArgs: 2, Support: Unsupported, eval: evalStruct},
	}
}

func missingField(rec value.Record, field string, span position.Span) error {
	if rec.TypeName != "" {
		return serrors.Syntax(span, "struct %s has no field '%s'", rec.TypeName, field)
	}
	return serrors.Syntax(span, "record has no field '%s'", field)
}

func evalField(c *Context, args []syntax.Expr, span position.Span) (value.Value, error) {
	v, err := c.Eval(args[0])
	if err != nil {
		return nil, err
	}
	field, err := identArg("field access", args[1])
	if err != nil {
		return nil, err
	}
	rec, ok := v.(value.Record)
	if !ok {
		return nil, serrors.TypeMismatch("record", value.TypeName(v), args[0].GetSpan())
	}
	fv, ok := rec.Field(field)
	if !ok {
		return nil, missingField(rec, field, args[1].GetSpan())
	}
	return fv, nil
}

// applyIndex indexes a list or tuple. Negative indices count from the end.
func applyIndex(c *Context, args []value.Value, span position.Span) (value.Value, error) {
	var elems []value.Value
	switch seq := args[0].(type) {
	case value.List:
		elems = seq.Elems
	case value.Tuple:
		elems = seq.Elems
	default:
		return nil, serrors.TypeMismatch("list", value.TypeName(args[0]), span)
	}
	idx, ok := args[1].(value.Integer)
	if !ok {
		return nil, serrors.TypeMismatch("Integer", value.TypeName(args[1]), span)
	}

	i, fits := idx.Int64()
	n := int64(len(elems))
	if fits && i < 0 {
		i += n
	}
	if !fits || i < 0 || i >= n {
		return nil, serrors.Syntax(span, "index %s out of range for length %d", idx, n)
	}
	return elems[i], nil
}

// evalBlock evaluates its children in a new scope. Attribute children are
// queued for the next non-attribute child instead of being evaluated.
func evalBlock(c *Context, args []syntax.Expr, span position.Span) (value.Value, error) {
	c.Env.PushScope()
	defer c.Env.PopScope()

	outer := c.ReplaceAttributes(nil)
	defer c.ReplaceAttributes(outer)

	var last value.Value = value.Nil{}
	for _, item := range args {
		if attr, ok := item.(*syntax.Attribute); ok {
			c.PushAttribute(attr.Body)
			continue
		}
		v, err := c.evalAttributed(item)
		if err != nil {
			return nil, err
		}
		last = v
	}
	if dangling := c.TakeAttributes(); len(dangling) > 0 {
		c.State.warnDangling(dangling, span)
	}
	return last, nil
}

// evalAttributed evaluates item with the queued attributes available to
// it. Attributes it does not consume are dropped, unless item is itself an
// `@` form stashing an attribute for the following sibling.
func (c *Context) evalAttributed(item syntax.Expr) (value.Value, error) {
	v, err := c.Eval(item)
	if head, ok := syntax.HeadName(item); !ok || head != "@" {
		c.TakeAttributes()
	}
	return v, err
}

func lowerBlock(lc *LowerContext, args []syntax.Expr, span position.Span) (ir.ValueID, error) {
	var last ir.ValueID
	lowered := false
	for _, item := range args {
		if _, ok := item.(*syntax.Attribute); ok {
			continue
		}
		id, err := lc.Gen(item)
		if err != nil {
			return 0, err
		}
		last, lowered = id, true
	}
	if !lowered {
		return lc.Const(types.Nil, ir.NilConst()), nil
	}
	return last, nil
}

func applyList(c *Context, args []value.Value, span position.Span) (value.Value, error) {
	return value.List{Elems: args}, nil
}

func applyTuple(c *Context, args []value.Value, span position.Span) (value.Value, error) {
	return value.Tuple{Elems: args}, nil
}

// evalRecord builds a record from `(= name expr)` fields and identifier
// shorthand, where `{x}` means `{x = x}`.
func evalRecord(c *Context, args []syntax.Expr, span position.Span) (value.Value, error) {
	fields := make([]value.RecordField, 0, len(args))
	seen := make(map[string]bool, len(args))
	for _, arg := range args {
		name, valueExpr, err := recordField(arg)
		if err != nil {
			return nil, err
		}
		if seen[name] {
			return nil, serrors.Syntax(arg.GetSpan(), "duplicate field '%s'", name)
		}
		seen[name] = true

		v, err := c.Eval(valueExpr)
		if err != nil {
			return nil, err
		}
		fields = append(fields, value.RecordField{Name: name, Value: v})
	}
	return value.Record{Fields: fields}, nil
}

func recordField(e syntax.Expr) (string, syntax.Expr, error) {
	switch f := e.(type) {
	case *syntax.Ident:
		return f.Name, f, nil
	case *syntax.Apply:
		if head, ok := syntax.NameOf(f.Head); ok && head == "=" && len(f.Args) == 2 {
			if name, ok := f.Args[0].(*syntax.Ident); ok {
				return name.Name, f.Args[1], nil
			}
		}
	}
	return "", nil, serrors.Syntax(e.GetSpan(), "record fields take the form name = value, found %s", e)
}

// evalStruct declares a nominal record type from a record of field types
// and binds its constructor in the current scope.
func evalStruct(c *Context, args []syntax.Expr, span position.Span) (value.Value, error) {
	name, err := identArg("struct", args[0])
	if err != nil {
		return nil, err
	}
	shape, err := c.Eval(args[1])
	if err != nil {
		return nil, err
	}
	rec, ok := shape.(value.Record)
	if !ok {
		return nil, serrors.Syntax(args[1].GetSpan(), "struct %s expects a record of field types, found %s", name, value.TypeName(shape))
	}

	fields := make([]types.Field, len(rec.Fields))
	for i, f := range rec.Fields {
		var ft *types.Type
		switch t := f.Value.(type) {
		case value.Type:
			ft = t.T
		case value.StructConstructor:
			ft = t.Type
		default:
			return nil, serrors.Syntax(args[1].GetSpan(), "field '%s' of struct %s is not a type: %s", f.Name, name, f.Value)
		}
		fields[i] = types.Field{Name: f.Name, Type: ft}
	}

	st := types.NewStruct(name, fields...)
	c.Env.Define(name, value.StructConstructor{Type: st})
	return value.Type{T: st}, nil
}

// construct builds a struct value from positional arguments or from a
// single record naming every field.
func construct(sc value.StructConstructor, args []value.Value, span position.Span) (value.Value, error) {
	st := sc.Type
	given := args

	if rec, ok := namedFields(args, st); ok {
		if len(rec.Fields) != len(st.Fields) {
			return nil, serrors.Arity(st.Name, strconv.Itoa(len(st.Fields))+" fields", len(rec.Fields), span)
		}
		given = make([]value.Value, len(st.Fields))
		for i, f := range st.Fields {
			v, ok := rec.Field(f.Name)
			if !ok {
				return nil, serrors.Syntax(span, "missing field '%s' for struct %s", f.Name, st.Name)
			}
			given[i] = v
		}
	} else if len(args) != len(st.Fields) {
		return nil, serrors.Arity(st.Name, strconv.Itoa(len(st.Fields)), len(args), span)
	}

	fields := make([]value.RecordField, len(st.Fields))
	for i, f := range st.Fields {
		got := value.TypeOf(given[i])
		if !types.Compatible(f.Type, got) {
			return nil, serrors.TypeMismatch(f.Type.String(), got.String(), span)
		}
		fields[i] = value.RecordField{Name: f.Name, Value: given[i]}
	}
	return value.Record{TypeName: st.Name, Fields: fields}, nil
}

// namedFields reports whether args is a single plain record to be read by
// field name. A one-field struct given a record without that field takes
// the record positionally.
func namedFields(args []value.Value, st *types.Type) (value.Record, bool) {
	if len(args) != 1 {
		return value.Record{}, false
	}
	rec, ok := args[0].(value.Record)
	if !ok || rec.TypeName != "" {
		return value.Record{}, false
	}
	if len(st.Fields) == 1 {
		_, named := rec.Field(st.Fields[0].Name)
		return rec, named && len(rec.Fields) == 1
	}
	return rec, true
}

// makeQuantity applies a unit constructor: `(km 3)` is three kilometres.
func makeQuantity(reg *units.Registry, uc value.UnitConstructor, args []value.Value, span position.Span) (value.Value, error) {
	if len(args) != 1 {
		return nil, serrors.Arity(uc.Unit.Name, "1", len(args), span)
	}
	var magnitude float64
	switch n := args[0].(type) {
	case value.Integer:
		magnitude, _ = new(big.Float).SetInt(n.V).Float64()
	case value.Float:
		magnitude = float64(n)
	case value.Quantity:
		from, ok := reg.Lookup(n.Unit)
		if !ok {
			return nil, serrors.Syntax(span, "unknown unit '%s'", n.Unit)
		}
		converted, err := units.ConvertUnits(n.Value, from, uc.Unit)
		if err != nil {
			return nil, serrors.TypeMismatch(uc.Unit.Dimension, n.Dimension, span)
		}
		magnitude = converted
	default:
		return nil, serrors.TypeMismatch("number", value.TypeName(args[0]), span)
	}
	return value.Quantity{Value: magnitude, Unit: uc.Unit.Name, Dimension: uc.Unit.Dimension}, nil
}
