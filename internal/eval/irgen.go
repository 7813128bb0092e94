package eval

import (
	"fmt"

	serrors "github.com/sable-lang/sable/internal/errors"
	"github.com/sable-lang/sable/internal/ir"
	"github.com/sable-lang/sable/internal/position"
	"github.com/sable-lang/sable/internal/syntax"
	"github.com/sable-lang/sable/internal/types"
	"github.com/sable-lang/sable/internal/value"
)

// voidBuiltins return nil and are lowered as calls without a result.
var voidBuiltins = map[string]bool{"print": true}

// IRGenerator lowers function definitions and top-level expressions into
// one IR module. Lowering is best-effort: a construct without IR support
// fails the enclosing function, which is then left out of the module.
//
// While a module is being evaluated, definitions are only queued. They are
// lowered once every top-level name is bound, so bodies may refer to
// functions defined further down.
type IRGenerator struct {
	builder   *ir.Builder
	state     *CompilerState
	attempted map[string]bool
	lowering  map[string]bool

	deferring bool
	pending   []*value.UserFunction
	globals   *value.Environment
}

func NewIRGenerator(moduleName string, state *CompilerState) *IRGenerator {
	return &IRGenerator{
		builder:   ir.NewBuilder(moduleName),
		state:     state,
		attempted: make(map[string]bool),
		lowering:  make(map[string]bool),
	}
}

// Schedule lowers fn, or queues it while a module is being evaluated. A
// later definition of a queued name replaces the earlier one.
func (g *IRGenerator) Schedule(fn *value.UserFunction) error {
	if g.HasFunction(fn.Name) {
		return nil
	}
	if !g.deferring {
		return g.LowerFunction(fn)
	}
	for i, p := range g.pending {
		if p.Name == fn.Name {
			g.pending[i] = fn
			return nil
		}
	}
	g.pending = append(g.pending, fn)
	return nil
}

func (g *IRGenerator) beginModule(globals *value.Environment) {
	g.deferring = true
	g.globals = globals
}

// flush lowers the queued definitions in definition order. Failures are
// reported as warnings.
func (g *IRGenerator) flush() {
	pending := g.pending
	g.pending = nil
	g.deferring = false
	for _, fn := range pending {
		if g.attempted[fn.Name] {
			continue
		}
		if err := g.LowerFunction(fn); err != nil {
			g.state.Warn(err)
		}
	}
}

// require makes sure a call to fn can be emitted, lowering fn first when
// it has not been tried yet. Recursive calls are allowed while fn is being
// lowered.
func (g *IRGenerator) require(fn *value.UserFunction, span position.Span) error {
	if !g.attempted[fn.Name] {
		if err := g.LowerFunction(fn); err != nil {
			g.state.Warn(err)
		}
	}
	if g.builder.HasFunction(fn.Name) || g.lowering[fn.Name] {
		return nil
	}
	return serrors.NotImplemented("call to '"+fn.Name+"', which has no IR", span)
}

// Module returns the module generated so far.
func (g *IRGenerator) Module() *ir.Module { return g.builder.Module() }

// HasFunction reports whether lowering of name was already attempted,
// whether or not it succeeded.
func (g *IRGenerator) HasFunction(name string) bool {
	return g.attempted[name] || g.builder.HasFunction(name)
}

// GenState is the function-level generation state: the function being
// built, the block currently open and the SSA names of local bindings.
// Lowering a match seals the open block and leaves a different one open,
// so every lowering step reads the current block from here.
type GenState struct {
	fb     *ir.FunctionBuilder
	block  *ir.BlockBuilder
	locals map[string]ir.ValueID
	types  map[ir.ValueID]*types.Type
	env    *value.Environment // bindings visible at run time, may be nil
}

func newGenState(fb *ir.FunctionBuilder, params []ir.Param, env *value.Environment) *GenState {
	st := &GenState{
		fb:     fb,
		locals: make(map[string]ir.ValueID, len(params)),
		types:  make(map[ir.ValueID]*types.Type),
		env:    env,
	}
	for i, p := range params {
		id := fb.Param(i)
		st.locals[p.Name] = id
		st.types[id] = p.Type
	}
	st.block = fb.NewBlock()
	return st
}

// ret seals the open block with a return of v and adds it to the function.
func (st *GenState) ret(v ir.ValueID) {
	block, next := st.block.Ret(v)
	st.fb.AddBlock(block, next)
	st.block = nil
}

// LowerContext is handed to each form's lowering function.
type LowerContext struct {
	gen *IRGenerator
	st  *GenState
}

// Block returns the block instructions are currently emitted into.
func (lc *LowerContext) Block() *ir.BlockBuilder { return lc.st.block }

// TypeOf returns the IR type recorded for id.
func (lc *LowerContext) TypeOf(id ir.ValueID) *types.Type {
	if t, ok := lc.st.types[id]; ok && t != nil {
		return t
	}
	return types.Unknown
}

func (lc *LowerContext) record(id ir.ValueID, t *types.Type) ir.ValueID {
	lc.st.types[id] = t
	return id
}

// Bind names id for later references in the same function.
func (lc *LowerContext) Bind(name string, id ir.ValueID) {
	lc.st.locals[name] = id
}

// Lookup returns the value bound to name.
func (lc *LowerContext) Lookup(name string) (ir.ValueID, bool) {
	id, ok := lc.st.locals[name]
	return id, ok
}

func (lc *LowerContext) Const(t *types.Type, c ir.Constant) ir.ValueID {
	return lc.record(lc.st.block.Const(t, c), t)
}

func (lc *LowerContext) BinOp(op ir.BinOpKind, t *types.Type, l, r ir.ValueID) ir.ValueID {
	return lc.record(lc.st.block.BinOp(op, t, l, r), t)
}

func (lc *LowerContext) Call(callee string, t *types.Type, args ...ir.ValueID) ir.ValueID {
	return lc.record(lc.st.block.Call(callee, t, args...), t)
}

func (lc *LowerContext) Phi(t *types.Type, incoming ...ir.PhiIncoming) ir.ValueID {
	return lc.record(lc.st.block.Phi(t, incoming...), t)
}

// Branch seals the open block with a conditional branch.
func (lc *LowerContext) Branch(cond ir.ValueID, then, els ir.BlockID) {
	block, next := lc.st.block.Branch(cond, then, els)
	lc.st.fb.AddBlock(block, next)
	lc.st.block = nil
}

// Jump seals the open block with a jump and returns the sealed block's id.
func (lc *LowerContext) Jump(target ir.BlockID) ir.BlockID {
	id := lc.st.block.ID()
	block, next := lc.st.block.Jump(target)
	lc.st.fb.AddBlock(block, next)
	lc.st.block = nil
	return id
}

// NewBlockID reserves a block id in the current function.
func (lc *LowerContext) NewBlockID() ir.BlockID { return lc.st.fb.NewBlockID() }

// StartBlock opens a previously reserved block.
func (lc *LowerContext) StartBlock(id ir.BlockID) { lc.st.block = lc.st.fb.StartBlock(id) }

// Gen lowers expr into the open block and returns the value holding its
// result.
func (lc *LowerContext) Gen(expr syntax.Expr) (ir.ValueID, error) {
	switch e := expr.(type) {
	case *syntax.Literal:
		return lc.literal(e)
	case *syntax.Ident:
		return lc.name(e.Name, e.Span)
	case *syntax.Operator:
		return lc.name(e.Op, e.Span)
	case *syntax.Apply:
		return lc.apply(e)
	case *syntax.Attribute:
		return 0, serrors.NotImplemented("attributes", e.Span)
	case *syntax.Error:
		return 0, serrors.Syntax(e.Span, "%s", e.Message)
	}
	return 0, serrors.Internal("unexpected expression %T", expr)
}

func (lc *LowerContext) literal(l *syntax.Literal) (ir.ValueID, error) {
	v, err := literalValue(l)
	if err != nil {
		return 0, err
	}
	return lc.constant(v, l.Span)
}

func (lc *LowerContext) constant(v value.Value, span position.Span) (ir.ValueID, error) {
	switch x := v.(type) {
	case value.Nil:
		return lc.Const(types.Nil, ir.NilConst()), nil
	case value.Bool:
		return lc.Const(types.Bool, ir.BoolConst(bool(x))), nil
	case value.Integer:
		i, ok := x.Int64()
		if !ok {
			return 0, serrors.NotImplemented(fmt.Sprintf("integer constant %s beyond 64 bits", x), span)
		}
		return lc.Const(types.Integer, ir.IntConst(i)), nil
	case value.Float:
		return lc.Const(types.Float, ir.FloatConst(float64(x))), nil
	case value.String:
		return lc.Const(types.String, ir.StringConst(string(x))), nil
	}
	return 0, serrors.NotImplemented(value.TypeName(v)+" constants", span)
}

// name lowers a reference. Locals come first; the prelude constants
// true, false and nil lower to constants; anything else has no IR value.
func (lc *LowerContext) name(n string, span position.Span) (ir.ValueID, error) {
	if id, ok := lc.Lookup(n); ok {
		return id, nil
	}
	switch n {
	case "true":
		return lc.Const(types.Bool, ir.BoolConst(true)), nil
	case "false":
		return lc.Const(types.Bool, ir.BoolConst(false)), nil
	case "nil":
		return lc.Const(types.Nil, ir.NilConst()), nil
	}
	if _, ok := lc.gen.state.Lookup(n); ok {
		return 0, serrors.NotImplemented("reference to '"+n+"' as a value", span)
	}
	if lc.gen.isGlobal(lc.st, n) {
		return 0, serrors.NotImplemented("reference to global '"+n+"'", span)
	}
	return 0, serrors.UndefinedVariable(n, span)
}

func (lc *LowerContext) apply(app *syntax.Apply) (ir.ValueID, error) {
	name, ok := syntax.NameOf(app.Head)
	if !ok {
		return 0, serrors.NotImplemented("calls through computed callees", app.Span)
	}
	if _, local := lc.Lookup(name); local {
		return 0, serrors.NotImplemented("calls through local '"+name+"'", app.Span)
	}

	callee, ok := lc.gen.state.Lookup(name)
	if !ok {
		fn, builtin := lookupBuiltin(name)
		if !builtin {
			return 0, serrors.UndefinedVariable(name, app.Head.GetSpan())
		}
		callee = fn
	}
	switch fn := callee.(type) {
	case value.SpecialForm:
		return fn.Form.(*Form).BuildIR(lc, app.Args, app.Span)
	case *value.BuiltinMacro:
		expanded, err := fn.Expand(app.Args, app.Span)
		if err != nil {
			return 0, err
		}
		return lc.Gen(expanded)
	case *value.UserFunction:
		if err := lc.gen.require(fn, app.Span); err != nil {
			return 0, err
		}
		return lc.call(name, lc.gen.returnType(name), app)
	case *value.BuiltinFn:
		if voidBuiltins[name] {
			args, err := lc.genArgs(app.Args)
			if err != nil {
				return 0, err
			}
			lc.st.block.CallVoid(name, args...)
			return lc.Const(types.Nil, ir.NilConst()), nil
		}
		return lc.call(name, types.Unknown, app)
	}
	return 0, serrors.NotImplemented("calls to "+value.TypeName(callee)+" '"+name+"'", app.Span)
}

func (lc *LowerContext) call(name string, t *types.Type, app *syntax.Apply) (ir.ValueID, error) {
	args, err := lc.genArgs(app.Args)
	if err != nil {
		return 0, err
	}
	return lc.Call(name, t, args...), nil
}

func (lc *LowerContext) genArgs(exprs []syntax.Expr) ([]ir.ValueID, error) {
	args := make([]ir.ValueID, len(exprs))
	for i, e := range exprs {
		id, err := lc.Gen(e)
		if err != nil {
			return nil, err
		}
		args[i] = id
	}
	return args, nil
}

// isGlobal reports whether n is bound outside the function being lowered,
// in its captured environment or in the module environment.
func (g *IRGenerator) isGlobal(st *GenState, n string) bool {
	for _, env := range []*value.Environment{st.env, g.globals} {
		if env == nil {
			continue
		}
		if _, ok := env.Get(n); ok {
			return true
		}
	}
	return false
}

func (g *IRGenerator) returnType(name string) *types.Type {
	if fn, ok := g.builder.Module().Function(name); ok {
		return fn.Return
	}
	return types.Unknown
}

// LowerFunction lowers fn into an exported IR function. It is attempted at
// most once per name.
func (g *IRGenerator) LowerFunction(fn *value.UserFunction) error {
	g.attempted[fn.Name] = true
	g.lowering[fn.Name] = true
	defer delete(g.lowering, fn.Name)
	paramTypes, ret := g.signature(fn)

	params := make([]ir.Param, len(fn.Params))
	for i, p := range fn.Params {
		params[i] = ir.Param{Name: p, Type: paramTypes[i]}
	}

	fb := g.builder.Function(fn.Name, params, ret)
	st := newGenState(fb, params, fn.Env)
	lc := &LowerContext{gen: g, st: st}
	result, err := lc.Gen(fn.Body)
	if err != nil {
		return serrors.WithFrame(err, fn.Name, fn.Span)
	}
	if ret.Kind == types.KindUnknown {
		fb.SetReturn(lc.TypeOf(result))
	}
	st.ret(result)
	fb.Export()
	g.builder.Add(fb.Finish())
	g.state.Logger.Debug("lowered function %s (%d blocks)", fn.Name, len(fb.Finish().Blocks))
	return nil
}

// signature asks the inferencer for fn's parameter and return types. Types
// it cannot pin down are Unknown.
func (g *IRGenerator) signature(fn *value.UserFunction) ([]*types.Type, *types.Type) {
	params := make([]*types.Type, len(fn.Params))
	for i := range params {
		params[i] = types.Unknown
	}
	ret := types.Unknown

	ie := g.state.Inferencer
	if ie == nil {
		return params, ret
	}
	ie.Reset()

	args := make([]syntax.Expr, 0, len(fn.Params)+2)
	args = append(args, syntax.NewIdent(fn.Name))
	for _, p := range fn.Params {
		args = append(args, syntax.NewIdent(p))
	}
	args = append(args, fn.Body)

	t, err := ie.InferExpr(syntax.Call("fn", args...), typeEnv(g.state, fn.Env))
	if err != nil || t.Kind != types.KindFunction {
		g.state.Logger.Debug("no signature for %s: %v", fn.Name, err)
		return params, ret
	}
	for i, pt := range t.Elems {
		if i < len(params) && !pt.HasVars() {
			params[i] = pt
		}
	}
	if !t.Result.HasVars() {
		ret = t.Result
	}
	return params, ret
}

// LowerMain lowers the top-level expressions that are not declarations
// into an exported function returning the last one. It is called main
// unless the program defines its own main.
func (g *IRGenerator) LowerMain(items []syntax.Expr) error {
	name := "main"
	if _, ok := g.state.Defs["main"].(*value.UserFunction); ok {
		name = "__toplevel__"
	}
	if g.builder.HasFunction(name) {
		return nil
	}

	fb := g.builder.Function(name, nil, types.Unknown)
	st := newGenState(fb, nil, nil)
	lc := &LowerContext{gen: g, st: st}

	var result ir.ValueID
	lowered := false
	for _, item := range items {
		if isDeclaration(item) {
			continue
		}
		id, err := lc.Gen(item)
		if err != nil {
			return serrors.WithFrame(err, name, item.GetSpan())
		}
		result, lowered = id, true
	}
	if !lowered {
		result = lc.Const(types.Nil, ir.NilConst())
	}
	fb.SetReturn(lc.TypeOf(result))
	st.ret(result)
	fb.Export()
	g.builder.Add(fb.Finish())
	return nil
}

// isDeclaration reports whether a top-level item only declares something
// and has no value to compute at run time.
func isDeclaration(item syntax.Expr) bool {
	if _, ok := item.(*syntax.Attribute); ok {
		return true
	}
	head, ok := syntax.HeadName(item)
	if !ok {
		return false
	}
	switch head {
	case "fn", "struct", "measure", "@":
		return true
	case "=":
		app := item.(*syntax.Apply)
		if len(app.Args) == 0 {
			return false
		}
		inner, _ := syntax.HeadName(app.Args[0])
		return inner == "fn" || inner == "measure"
	}
	return false
}
