// Package ir defines Sable's typed SSA intermediate representation.
//
// Every value is assigned exactly once, either as a function parameter or
// by one instruction. Value ids are dense per function and follow block
// layout order; parameters own ids 0..len(Params).
package ir

import (
	"github.com/sable-lang/sable/internal/types"
)

// ValueID names an SSA value within a function.
type ValueID int

// BlockID names a basic block within a function.
type BlockID int

// FunctionID names a function within a module.
type FunctionID int

// Module is the unit handed to the optimizer and to backends.
type Module struct {
	Name      string
	Functions []*Function
	Exports   []string
}

// Function returns the function with the given name.
func (m *Module) Function(name string) (*Function, bool) {
	for _, f := range m.Functions {
		if f.Name == name {
			return f, true
		}
	}
	return nil, false
}

// Param is a function parameter.
type Param struct {
	Name string
	Type *types.Type
}

// Function is a list of basic blocks; Blocks[0] is the entry.
type Function struct {
	ID       FunctionID
	Name     string
	Params   []Param
	Return   *types.Type
	Blocks   []*Block
	Exported bool
}

// Block returns the block with the given id.
func (f *Function) Block(id BlockID) (*Block, bool) {
	for _, b := range f.Blocks {
		if b.ID == id {
			return b, true
		}
	}
	return nil, false
}

// Block is a straight-line instruction sequence ended by one terminator.
type Block struct {
	ID     BlockID
	Instrs []Instr
	Term   Terminator
}

// ===== Instructions =====

// Instr is implemented by all IR instructions.
type Instr interface {
	// Result returns the defined value, if any
	Result() (ValueID, bool)
	String() string
	isInstr()
}

// ConstKind classifies constants.
type ConstKind int

const (
	ConstNil ConstKind = iota
	ConstBool
	ConstInt
	ConstFloat
	ConstString
)

// Constant is a compile-time value.
type Constant struct {
	Kind  ConstKind
	Int   int64
	Float float64
	Bool  bool
	Str   string
}

func IntConst(i int64) Constant     { return Constant{Kind: ConstInt, Int: i} }
func FloatConst(f float64) Constant { return Constant{Kind: ConstFloat, Float: f} }
func BoolConst(b bool) Constant     { return Constant{Kind: ConstBool, Bool: b} }
func StringConst(s string) Constant { return Constant{Kind: ConstString, Str: s} }
func NilConst() Constant            { return Constant{Kind: ConstNil} }

// BinOpKind enumerates binary operations.
type BinOpKind int

const (
	OpAdd BinOpKind = iota
	OpSub
	OpMul
	OpDiv
	OpRem
	OpAnd
	OpOr
	OpXor
	OpShl
	OpShr
	OpEq
	OpNe
	OpLt
	OpGt
	OpLe
	OpGe
)

var binOpNames = [...]string{
	OpAdd: "add", OpSub: "sub", OpMul: "mul", OpDiv: "div", OpRem: "rem",
	OpAnd: "and", OpOr: "or", OpXor: "xor", OpShl: "shl", OpShr: "shr",
	OpEq: "eq", OpNe: "ne", OpLt: "lt", OpGt: "gt", OpLe: "le", OpGe: "ge",
}

func (op BinOpKind) String() string { return binOpNames[op] }

// IsComparison reports whether op produces a Bool.
func (op BinOpKind) IsComparison() bool { return op >= OpEq }

// UnOpKind enumerates unary operations.
type UnOpKind int

const (
	OpNeg UnOpKind = iota
	OpNot
)

func (op UnOpKind) String() string {
	if op == OpNot {
		return "not"
	}
	return "neg"
}

type Const struct {
	Dst   ValueID
	Type  *types.Type
	Value Constant
}

type BinOp struct {
	Dst  ValueID
	Type *types.Type
	Op   BinOpKind
	LHS  ValueID
	RHS  ValueID
}

type UnOp struct {
	Dst     ValueID
	Type    *types.Type
	Op      UnOpKind
	Operand ValueID
}

// Call invokes a named function. Calls without a result are kept for
// their side effects.
type Call struct {
	Dst       ValueID
	HasResult bool
	Type      *types.Type
	Callee    string
	Args      []ValueID
}

type Field struct {
	Dst  ValueID
	Type *types.Type
	Base ValueID
	Name string
}

// RecordField is one named operand of a Record instruction.
type RecordField struct {
	Name  string
	Value ValueID
}

type Record struct {
	Dst    ValueID
	Type   *types.Type
	Fields []RecordField
}

type Tuple struct {
	Dst   ValueID
	Type  *types.Type
	Elems []ValueID
}

// PhiIncoming is the value flowing in from one predecessor block.
type PhiIncoming struct {
	Block BlockID
	Value ValueID
}

type Phi struct {
	Dst      ValueID
	Type     *types.Type
	Incoming []PhiIncoming
}

func (c Const) Result() (ValueID, bool)  { return c.Dst, true }
func (b BinOp) Result() (ValueID, bool)  { return b.Dst, true }
func (u UnOp) Result() (ValueID, bool)   { return u.Dst, true }
func (c Call) Result() (ValueID, bool)   { return c.Dst, c.HasResult }
func (f Field) Result() (ValueID, bool)  { return f.Dst, true }
func (r Record) Result() (ValueID, bool) { return r.Dst, true }
func (t Tuple) Result() (ValueID, bool)  { return t.Dst, true }
func (p Phi) Result() (ValueID, bool)    { return p.Dst, true }

func (Const) isInstr()  {}
func (BinOp) isInstr()  {}
func (UnOp) isInstr()   {}
func (Call) isInstr()   {}
func (Field) isInstr()  {}
func (Record) isInstr() {}
func (Tuple) isInstr()  {}
func (Phi) isInstr()    {}

// ===== Terminators =====

// Terminator ends a block.
type Terminator interface {
	String() string
	isTerminator()
}

// Return leaves the function, with a value when HasValue is set.
type Return struct {
	Value    ValueID
	HasValue bool
}

type Branch struct {
	Cond ValueID
	Then BlockID
	Else BlockID
}

type Jump struct {
	Target BlockID
}

func (Return) isTerminator() {}
func (Branch) isTerminator() {}
func (Jump) isTerminator()   {}

// Successors returns the blocks control may flow to from t.
func Successors(t Terminator) []BlockID {
	switch term := t.(type) {
	case Branch:
		return []BlockID{term.Then, term.Else}
	case Jump:
		return []BlockID{term.Target}
	default:
		return nil
	}
}

// ===== Operand helpers =====

// Operands lists the values read by in.
func Operands(in Instr) []ValueID {
	switch x := in.(type) {
	case BinOp:
		return []ValueID{x.LHS, x.RHS}
	case UnOp:
		return []ValueID{x.Operand}
	case Call:
		return append([]ValueID(nil), x.Args...)
	case Field:
		return []ValueID{x.Base}
	case Record:
		out := make([]ValueID, len(x.Fields))
		for i, f := range x.Fields {
			out[i] = f.Value
		}
		return out
	case Tuple:
		return append([]ValueID(nil), x.Elems...)
	case Phi:
		out := make([]ValueID, len(x.Incoming))
		for i, inc := range x.Incoming {
			out[i] = inc.Value
		}
		return out
	default:
		return nil
	}
}

// MapOperands returns a copy of in with every operand passed through f.
func MapOperands(in Instr, f func(ValueID) ValueID) Instr {
	switch x := in.(type) {
	case BinOp:
		x.LHS, x.RHS = f(x.LHS), f(x.RHS)
		return x
	case UnOp:
		x.Operand = f(x.Operand)
		return x
	case Call:
		x.Args = mapIDs(x.Args, f)
		return x
	case Field:
		x.Base = f(x.Base)
		return x
	case Record:
		fields := make([]RecordField, len(x.Fields))
		for i, fld := range x.Fields {
			fields[i] = RecordField{Name: fld.Name, Value: f(fld.Value)}
		}
		x.Fields = fields
		return x
	case Tuple:
		x.Elems = mapIDs(x.Elems, f)
		return x
	case Phi:
		incoming := make([]PhiIncoming, len(x.Incoming))
		for i, inc := range x.Incoming {
			incoming[i] = PhiIncoming{Block: inc.Block, Value: f(inc.Value)}
		}
		x.Incoming = incoming
		return x
	default:
		return in
	}
}

func mapIDs(ids []ValueID, f func(ValueID) ValueID) []ValueID {
	out := make([]ValueID, len(ids))
	for i, id := range ids {
		out[i] = f(id)
	}
	return out
}

// TermOperands lists the values read by a terminator.
func TermOperands(t Terminator) []ValueID {
	switch term := t.(type) {
	case Return:
		if term.HasValue {
			return []ValueID{term.Value}
		}
	case Branch:
		return []ValueID{term.Cond}
	}
	return nil
}

// MapTermOperands returns a copy of t with every operand passed through f.
func MapTermOperands(t Terminator, f func(ValueID) ValueID) Terminator {
	switch term := t.(type) {
	case Return:
		if term.HasValue {
			term.Value = f(term.Value)
		}
		return term
	case Branch:
		term.Cond = f(term.Cond)
		return term
	default:
		return t
	}
}
