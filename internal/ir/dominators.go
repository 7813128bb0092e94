package ir

// DomTree holds the immediate dominator of every block reachable from the
// entry block. The entry block is its own immediate dominator.
type DomTree struct {
	idom  map[BlockID]BlockID
	order map[BlockID]int // reverse postorder index
}

// Dominators computes the dominator tree of fn with the iterative
// Cooper-Harvey-Kennedy algorithm.
func Dominators(fn *Function) *DomTree {
	dt := &DomTree{idom: make(map[BlockID]BlockID), order: make(map[BlockID]int)}
	if len(fn.Blocks) == 0 {
		return dt
	}

	rpo := reversePostorder(fn)
	for i, id := range rpo {
		dt.order[id] = i
	}
	preds := Predecessors(fn)
	entry := rpo[0]
	dt.idom[entry] = entry

	for changed := true; changed; {
		changed = false
		for _, id := range rpo[1:] {
			var newIdom BlockID
			found := false
			for _, p := range preds[id] {
				if _, ok := dt.idom[p]; !ok {
					continue
				}
				if !found {
					newIdom, found = p, true
					continue
				}
				newIdom = dt.intersect(p, newIdom)
			}
			if !found {
				continue
			}
			if cur, ok := dt.idom[id]; !ok || cur != newIdom {
				dt.idom[id] = newIdom
				changed = true
			}
		}
	}
	return dt
}

func (dt *DomTree) intersect(a, b BlockID) BlockID {
	for a != b {
		for dt.order[a] > dt.order[b] {
			a = dt.idom[a]
		}
		for dt.order[b] > dt.order[a] {
			b = dt.idom[b]
		}
	}
	return a
}

// Idom returns the immediate dominator of b.
func (dt *DomTree) Idom(b BlockID) (BlockID, bool) {
	id, ok := dt.idom[b]
	return id, ok
}

// Dominates reports whether every path from the entry to b passes a.
// Every block dominates itself; unreachable blocks dominate nothing.
func (dt *DomTree) Dominates(a, b BlockID) bool {
	if _, ok := dt.idom[a]; !ok {
		return false
	}
	for {
		if a == b {
			return true
		}
		parent, ok := dt.idom[b]
		if !ok || parent == b {
			return false
		}
		b = parent
	}
}

func reversePostorder(fn *Function) []BlockID {
	succs := make(map[BlockID][]BlockID, len(fn.Blocks))
	for _, b := range fn.Blocks {
		if b.Term != nil {
			succs[b.ID] = Successors(b.Term)
		}
	}

	visited := make(map[BlockID]bool)
	var post []BlockID
	var visit func(BlockID)
	visit = func(id BlockID) {
		visited[id] = true
		for _, s := range succs[id] {
			if !visited[s] {
				visit(s)
			}
		}
		post = append(post, id)
	}
	visit(fn.Blocks[0].ID)

	for i, j := 0, len(post)-1; i < j; i, j = i+1, j-1 {
		post[i], post[j] = post[j], post[i]
	}
	return post
}
