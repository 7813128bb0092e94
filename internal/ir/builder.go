package ir

import (
	"github.com/sable-lang/sable/internal/types"
)

// Builder assembles a Module, numbering functions in creation order.
type Builder struct {
	module   *Module
	nextFunc FunctionID
}

func NewBuilder(moduleName string) *Builder {
	return &Builder{module: &Module{Name: moduleName}}
}

// Module returns the module built so far.
func (b *Builder) Module() *Module { return b.module }

// HasFunction reports whether a function called name was already added.
func (b *Builder) HasFunction(name string) bool {
	_, ok := b.module.Function(name)
	return ok
}

// Function starts a new function. It becomes part of the module only once
// passed to Add.
func (b *Builder) Function(name string, params []Param, ret *types.Type) *FunctionBuilder {
	if ret == nil {
		ret = types.Unknown
	}
	fn := &Function{ID: b.nextFunc, Name: name, Params: params, Return: ret}
	b.nextFunc++
	return &FunctionBuilder{fn: fn, nextValue: ValueID(len(params))}
}

// Add appends a finished function to the module, exporting it if marked.
func (b *Builder) Add(fn *Function) {
	b.module.Functions = append(b.module.Functions, fn)
	if fn.Exported {
		b.module.Exports = append(b.module.Exports, fn.Name)
	}
}

// FunctionBuilder hands out block ids and tracks the next free value id
// across sealed blocks.
type FunctionBuilder struct {
	fn        *Function
	nextBlock BlockID
	nextValue ValueID
}

// NewBlockID reserves an id for a block that will be started later.
func (fb *FunctionBuilder) NewBlockID() BlockID {
	id := fb.nextBlock
	fb.nextBlock++
	return id
}

// NewBlock reserves an id and starts a block with it.
func (fb *FunctionBuilder) NewBlock() *BlockBuilder {
	return fb.StartBlock(fb.NewBlockID())
}

// StartBlock opens block id. Its values are numbered from the function's
// next free id, so blocks must be sealed and added in the order started.
func (fb *FunctionBuilder) StartBlock(id BlockID) *BlockBuilder {
	return &BlockBuilder{block: &Block{ID: id}, start: fb.nextValue}
}

// AddBlock appends a sealed block and continues numbering at next.
func (fb *FunctionBuilder) AddBlock(block *Block, next ValueID) {
	fb.fn.Blocks = append(fb.fn.Blocks, block)
	fb.nextValue = next
}

// Param returns the value id of parameter i.
func (fb *FunctionBuilder) Param(i int) ValueID { return ValueID(i) }

// NextValue is the first value id not yet assigned.
func (fb *FunctionBuilder) NextValue() ValueID { return fb.nextValue }

// Export marks the function as exported from the module.
func (fb *FunctionBuilder) Export() { fb.fn.Exported = true }

// SetReturn overrides the declared return type.
func (fb *FunctionBuilder) SetReturn(t *types.Type) { fb.fn.Return = t }

// Finish returns the function with all blocks added so far.
func (fb *FunctionBuilder) Finish() *Function { return fb.fn }

// BlockBuilder emits instructions into one open block. A result id is the
// block's start offset plus the number of results emitted before it.
type BlockBuilder struct {
	block *Block
	start ValueID
	count int
}

func (bb *BlockBuilder) ID() BlockID { return bb.block.ID }

// Next is the id the next result-producing instruction will receive.
func (bb *BlockBuilder) Next() ValueID { return bb.start + ValueID(bb.count) }

func (bb *BlockBuilder) alloc() ValueID {
	id := bb.Next()
	bb.count++
	return id
}

func (bb *BlockBuilder) Const(t *types.Type, c Constant) ValueID {
	dst := bb.alloc()
	bb.block.Instrs = append(bb.block.Instrs, Const{Dst: dst, Type: t, Value: c})
	return dst
}

func (bb *BlockBuilder) BinOp(op BinOpKind, t *types.Type, lhs, rhs ValueID) ValueID {
	dst := bb.alloc()
	bb.block.Instrs = append(bb.block.Instrs, BinOp{Dst: dst, Type: t, Op: op, LHS: lhs, RHS: rhs})
	return dst
}

func (bb *BlockBuilder) UnOp(op UnOpKind, t *types.Type, operand ValueID) ValueID {
	dst := bb.alloc()
	bb.block.Instrs = append(bb.block.Instrs, UnOp{Dst: dst, Type: t, Op: op, Operand: operand})
	return dst
}

// Call emits a call whose result is used.
func (bb *BlockBuilder) Call(callee string, t *types.Type, args ...ValueID) ValueID {
	dst := bb.alloc()
	bb.block.Instrs = append(bb.block.Instrs, Call{Dst: dst, HasResult: true, Type: t, Callee: callee, Args: args})
	return dst
}

// CallVoid emits a call kept only for its side effects. It allocates no id.
func (bb *BlockBuilder) CallVoid(callee string, args ...ValueID) {
	bb.block.Instrs = append(bb.block.Instrs, Call{Type: types.Nil, Callee: callee, Args: args})
}

func (bb *BlockBuilder) Field(t *types.Type, base ValueID, name string) ValueID {
	dst := bb.alloc()
	bb.block.Instrs = append(bb.block.Instrs, Field{Dst: dst, Type: t, Base: base, Name: name})
	return dst
}

func (bb *BlockBuilder) Record(t *types.Type, fields ...RecordField) ValueID {
	dst := bb.alloc()
	bb.block.Instrs = append(bb.block.Instrs, Record{Dst: dst, Type: t, Fields: fields})
	return dst
}

func (bb *BlockBuilder) Tuple(t *types.Type, elems ...ValueID) ValueID {
	dst := bb.alloc()
	bb.block.Instrs = append(bb.block.Instrs, Tuple{Dst: dst, Type: t, Elems: elems})
	return dst
}

func (bb *BlockBuilder) Phi(t *types.Type, incoming ...PhiIncoming) ValueID {
	dst := bb.alloc()
	bb.block.Instrs = append(bb.block.Instrs, Phi{Dst: dst, Type: t, Incoming: incoming})
	return dst
}

// Ret seals the block with a return of v.
func (bb *BlockBuilder) Ret(v ValueID) (*Block, ValueID) {
	return bb.seal(Return{Value: v, HasValue: true})
}

// RetVoid seals the block with a bare return.
func (bb *BlockBuilder) RetVoid() (*Block, ValueID) {
	return bb.seal(Return{})
}

func (bb *BlockBuilder) Branch(cond ValueID, then, els BlockID) (*Block, ValueID) {
	return bb.seal(Branch{Cond: cond, Then: then, Else: els})
}

func (bb *BlockBuilder) Jump(target BlockID) (*Block, ValueID) {
	return bb.seal(Jump{Target: target})
}

func (bb *BlockBuilder) seal(t Terminator) (*Block, ValueID) {
	bb.block.Term = t
	return bb.block, bb.Next()
}
