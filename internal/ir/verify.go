package ir

import (
	"fmt"
)

// Verify checks the structural invariants of fn: every block is
// terminated, every value is defined once, operands and branch targets
// exist, and phi nodes only name predecessor blocks.
func Verify(fn *Function) error {
	if len(fn.Blocks) == 0 {
		return fmt.Errorf("%s: function has no blocks", fn.Name)
	}

	blocks := make(map[BlockID]bool, len(fn.Blocks))
	for _, b := range fn.Blocks {
		if blocks[b.ID] {
			return fmt.Errorf("%s: duplicate block %s", fn.Name, b.ID)
		}
		blocks[b.ID] = true
	}

	defined := make(map[ValueID]bool)
	for i := range fn.Params {
		defined[ValueID(i)] = true
	}
	for _, b := range fn.Blocks {
		if b.Term == nil {
			return fmt.Errorf("%s: block %s has no terminator", fn.Name, b.ID)
		}
		for _, succ := range Successors(b.Term) {
			if !blocks[succ] {
				return fmt.Errorf("%s: block %s jumps to unknown block %s", fn.Name, b.ID, succ)
			}
		}
		for _, in := range b.Instrs {
			dst, ok := in.Result()
			if !ok {
				continue
			}
			if defined[dst] {
				return fmt.Errorf("%s: value %s defined more than once", fn.Name, dst)
			}
			defined[dst] = true
		}
	}

	preds := Predecessors(fn)
	for _, b := range fn.Blocks {
		for _, in := range b.Instrs {
			for _, op := range Operands(in) {
				if !defined[op] {
					return fmt.Errorf("%s: %s uses undefined value %s", fn.Name, in, op)
				}
			}
			phi, ok := in.(Phi)
			if !ok {
				continue
			}
			for _, inc := range phi.Incoming {
				if !containsBlock(preds[b.ID], inc.Block) {
					return fmt.Errorf("%s: %s names %s, which is not a predecessor of %s", fn.Name, phi, inc.Block, b.ID)
				}
			}
		}
		for _, op := range TermOperands(b.Term) {
			if !defined[op] {
				return fmt.Errorf("%s: %s uses undefined value %s", fn.Name, b.Term, op)
			}
		}
	}
	return nil
}

// VerifyModule verifies every function in m.
func VerifyModule(m *Module) error {
	for _, fn := range m.Functions {
		if err := Verify(fn); err != nil {
			return err
		}
	}
	return nil
}

// Predecessors maps each block to the blocks that branch or jump to it.
func Predecessors(fn *Function) map[BlockID][]BlockID {
	preds := make(map[BlockID][]BlockID, len(fn.Blocks))
	for _, b := range fn.Blocks {
		if b.Term == nil {
			continue
		}
		for _, succ := range Successors(b.Term) {
			if !containsBlock(preds[succ], b.ID) {
				preds[succ] = append(preds[succ], b.ID)
			}
		}
	}
	return preds
}

func containsBlock(ids []BlockID, id BlockID) bool {
	for _, x := range ids {
		if x == id {
			return true
		}
	}
	return false
}
