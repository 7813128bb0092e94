package opt

import (
	"fmt"

	"github.com/sable-lang/sable/internal/ir"
)

// CSE removes BinOp, UnOp and Field instructions that recompute a value
// already available at that point. A duplicate is only forwarded to an
// original whose block dominates it, so the original is defined on every
// path reaching the use.
type CSE struct{}

func (*CSE) Name() string { return "cse" }

func (c *CSE) Run(m *ir.Module) bool {
	changed := false
	for _, fn := range m.Functions {
		if c.runFunction(fn) {
			changed = true
		}
	}
	return changed
}

type available struct {
	block ir.BlockID
	value ir.ValueID
}

func (c *CSE) runFunction(fn *ir.Function) bool {
	dom := ir.Dominators(fn)
	seen := make(map[string][]available)
	forward := make(map[ir.ValueID]ir.ValueID)

	resolve := func(id ir.ValueID) ir.ValueID {
		for {
			next, ok := forward[id]
			if !ok {
				return id
			}
			id = next
		}
	}

	for _, b := range fn.Blocks {
		kept := b.Instrs[:0]
		for _, in := range b.Instrs {
			in = ir.MapOperands(in, resolve)
			key, ok := cseKey(in)
			if !ok {
				kept = append(kept, in)
				continue
			}
			dst, _ := in.Result()
			if orig, found := findDominating(dom, seen[key], b.ID); found {
				forward[dst] = orig
				continue
			}
			seen[key] = append(seen[key], available{block: b.ID, value: dst})
			kept = append(kept, in)
		}
		b.Instrs = kept
	}

	if len(forward) == 0 {
		return false
	}
	for _, b := range fn.Blocks {
		for i, in := range b.Instrs {
			b.Instrs[i] = ir.MapOperands(in, resolve)
		}
		if b.Term != nil {
			b.Term = ir.MapTermOperands(b.Term, resolve)
		}
	}
	return true
}

func findDominating(dom *ir.DomTree, candidates []available, block ir.BlockID) (ir.ValueID, bool) {
	for _, c := range candidates {
		if c.block == block || dom.Dominates(c.block, block) {
			return c.value, true
		}
	}
	return 0, false
}

// cseKey builds the structural key of a pure instruction from its operator
// and already-forwarded operands.
func cseKey(in ir.Instr) (string, bool) {
	switch x := in.(type) {
	case ir.BinOp:
		l, r := x.LHS, x.RHS
		if commutative(x.Op) && l > r {
			l, r = r, l
		}
		return fmt.Sprintf("bin %s %d %d", x.Op, l, r), true
	case ir.UnOp:
		return fmt.Sprintf("un %s %d", x.Op, x.Operand), true
	case ir.Field:
		return fmt.Sprintf("field %d %s", x.Base, x.Name), true
	}
	return "", false
}

func commutative(op ir.BinOpKind) bool {
	switch op {
	case ir.OpAdd, ir.OpMul, ir.OpAnd, ir.OpOr, ir.OpXor, ir.OpEq, ir.OpNe:
		return true
	}
	return false
}
