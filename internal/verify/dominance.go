// Package verify implements the dominance analysis and well-formedness
// verifier of spec §4.5: one dominator tree per function/process, plus
// the invariant checks of spec §3 applied across a whole Module.
package verify

import "llhd/internal/ir"

// DominatorTree is the per-unit result of running the dominance analysis
// of spec §4.5 on a Function or Process's block CFG (entry = first
// block). It is computed once per unit and queried repeatedly by the
// verifier's dominance check.
type DominatorTree struct {
	entry *ir.Block
	idom  map[*ir.Block]*ir.Block
	rpoNo map[*ir.Block]int
}

// BuildDominatorTree runs the iterative reverse-post-order data-flow
// algorithm (Cooper, Harvey & Kennedy) on u's block CFG. u must be a
// Function or Process with at least one block; the first block is the
// entry, matching spec §4.5.
func BuildDominatorTree(u *ir.Unit) *DominatorTree {
	entry := u.EntryBlock()
	if entry == nil {
		return &DominatorTree{idom: map[*ir.Block]*ir.Block{}, rpoNo: map[*ir.Block]int{}}
	}

	rpo := reversePostOrder(entry)
	rpoNo := make(map[*ir.Block]int, len(rpo))
	for i, b := range rpo {
		rpoNo[b] = i
	}

	idom := make(map[*ir.Block]*ir.Block, len(rpo))
	idom[entry] = entry

	changed := true
	for changed {
		changed = false
		for _, b := range rpo[1:] {
			var newIdom *ir.Block
			for _, p := range b.Predecessors() {
				if _, ok := rpoNo[p]; !ok {
					continue // predecessor unreachable from entry
				}
				if idom[p] == nil {
					continue // not yet processed this round
				}
				if newIdom == nil {
					newIdom = p
					continue
				}
				newIdom = intersect(newIdom, p, idom, rpoNo)
			}
			if newIdom != nil && idom[b] != newIdom {
				idom[b] = newIdom
				changed = true
			}
		}
	}

	return &DominatorTree{entry: entry, idom: idom, rpoNo: rpoNo}
}

func intersect(a, b *ir.Block, idom map[*ir.Block]*ir.Block, rpoNo map[*ir.Block]int) *ir.Block {
	for a != b {
		for rpoNo[a] > rpoNo[b] {
			a = idom[a]
		}
		for rpoNo[b] > rpoNo[a] {
			b = idom[b]
		}
	}
	return a
}

func reversePostOrder(entry *ir.Block) []*ir.Block {
	visited := map[*ir.Block]bool{}
	var post []*ir.Block
	var visit func(b *ir.Block)
	visit = func(b *ir.Block) {
		if visited[b] {
			return
		}
		visited[b] = true
		for _, s := range b.Successors() {
			if s != nil {
				visit(s)
			}
		}
		post = append(post, b)
	}
	visit(entry)

	rpo := make([]*ir.Block, len(post))
	for i, b := range post {
		rpo[len(post)-1-i] = b
	}
	return rpo
}

// Reachable reports whether b was reached by the traversal from entry;
// unreachable blocks have no dominance relationship and are reported by
// the verifier separately.
func (t *DominatorTree) Reachable(b *ir.Block) bool {
	_, ok := t.rpoNo[b]
	return ok
}

// Dominates reports whether d dominates u at the block level: every
// control-flow path from the entry to u passes through d. A block
// dominates itself.
func (t *DominatorTree) Dominates(d, u *ir.Block) bool {
	if !t.Reachable(d) || !t.Reachable(u) {
		return false
	}
	for b := u; ; {
		if b == d {
			return true
		}
		if b == t.entry {
			return b == d
		}
		parent := t.idom[b]
		if parent == nil || parent == b {
			return false
		}
		b = parent
	}
}

// StrictlyDominates reports Dominates(d, u) && d != u.
func (t *DominatorTree) StrictlyDominates(d, u *ir.Block) bool {
	return d != u && t.Dominates(d, u)
}

// DominatesInstruction implements spec §4.5's instruction-level extension
// of block dominance: d dominates use u iff they share a block and d
// precedes u, or d's block strictly dominates u's block.
func (t *DominatorTree) DominatesInstruction(def, use ir.Instruction) bool {
	db, ub := def.Block(), use.Block()
	if db == nil || ub == nil {
		return false
	}
	if db == ub {
		return instructionPrecedes(db, def, use)
	}
	return t.StrictlyDominates(db, ub)
}

func instructionPrecedes(b *ir.Block, def, use ir.Instruction) bool {
	for _, inst := range b.Instructions() {
		if inst == def {
			return true
		}
		if inst == use {
			return false
		}
	}
	return false
}
