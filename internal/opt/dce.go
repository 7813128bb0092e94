package opt

import (
	"github.com/sable-lang/sable/internal/ir"
)

// DCE drops instructions whose results cannot reach a terminator or a call.
// Calls themselves are always kept since they may have side effects.
type DCE struct{}

func (*DCE) Name() string { return "dce" }

func (d *DCE) Run(m *ir.Module) bool {
	changed := false
	for _, fn := range m.Functions {
		if d.runFunction(fn) {
			changed = true
		}
	}
	return changed
}

func (d *DCE) runFunction(fn *ir.Function) bool {
	defs := make(map[ir.ValueID]ir.Instr)
	var work []ir.ValueID

	for _, b := range fn.Blocks {
		for _, in := range b.Instrs {
			if dst, ok := in.Result(); ok {
				defs[dst] = in
			}
			if _, isCall := in.(ir.Call); isCall {
				work = append(work, ir.Operands(in)...)
			}
		}
		if b.Term != nil {
			work = append(work, ir.TermOperands(b.Term)...)
		}
	}

	live := make(map[ir.ValueID]bool)
	for len(work) > 0 {
		id := work[len(work)-1]
		work = work[:len(work)-1]
		if live[id] {
			continue
		}
		live[id] = true
		if in, ok := defs[id]; ok {
			work = append(work, ir.Operands(in)...)
		}
	}

	changed := false
	for _, b := range fn.Blocks {
		kept := b.Instrs[:0]
		for _, in := range b.Instrs {
			dst, hasResult := in.Result()
			_, isCall := in.(ir.Call)
			if isCall || (hasResult && live[dst]) {
				kept = append(kept, in)
				continue
			}
			changed = true
		}
		b.Instrs = kept
	}
	return changed
}
