package ir

import "llhd/internal/types"

// Block is a basic block inside a Function or Process: a straight-line
// list of instructions ending in exactly one terminator (spec §3 "Block",
// §4.4). Entities have no blocks; their instructions hang directly off
// the Unit in a flat, order-insensitive list.
//
// Block is itself a Value so it can appear as a branch/wait target
// operand (spec §3: "Concrete variants ... *Block").
type Block struct {
	valueBase
	parent *Unit
	insts  []Instruction
}

func newBlock(name string) *Block {
	b := &Block{}
	b.typ = types.Label{}
	b.name = name
	return b
}

func (b *Block) Kind() ValueKind { return ValueBlock }

// Parent returns the Function or Process this block belongs to, or nil if
// the block has not yet been appended to one.
func (b *Block) Parent() *Unit { return b.parent }

// Instructions returns a snapshot of the block's ordered instruction list.
func (b *Block) Instructions() []Instruction {
	out := make([]Instruction, len(b.insts))
	copy(out, b.insts)
	return out
}

// Terminator returns the block's terminator instruction, or nil if the
// block is not yet well-formed (spec §4.5 invariant 2 requires exactly
// one, as the last instruction; construction allows a transient
// not-yet-terminated state while a builder is still appending).
func (b *Block) Terminator() Instruction {
	if len(b.insts) == 0 {
		return nil
	}
	last := b.insts[len(b.insts)-1]
	if last.IsTerminator() {
		return last
	}
	return nil
}

// Append adds inst to the end of the block. Appending after a terminator
// is rejected, matching spec §4.5 invariant 2 ("exactly one terminator,
// and it is the last instruction").
func (b *Block) Append(inst Instruction) error {
	if t := b.Terminator(); t != nil {
		return constructionErrorf(inst.Opcode(), "cannot append after block %q's terminator", b.name)
	}
	if inst.Block() != nil || inst.Entity() != nil {
		return constructionErrorf(inst.Opcode(), "instruction already has a parent")
	}
	inst.setParentBlock(b)
	b.insts = append(b.insts, inst)
	return nil
}

// Remove unlinks inst from the block without touching the use-graph of
// its operands; instructions that still use inst's result are left
// dangling until the caller calls ReplaceAllUsesWith or fixes them up,
// matching spec §4.2's ownership-vs-use distinction.
func (b *Block) Remove(inst Instruction) {
	for i, existing := range b.insts {
		if existing == inst {
			b.insts = append(b.insts[:i], b.insts[i+1:]...)
			inst.setParentBlock(nil)
			return
		}
	}
}

// InsertBefore splices inst into the block immediately before mark.
func (b *Block) InsertBefore(mark, inst Instruction) error {
	for i, existing := range b.insts {
		if existing == mark {
			inst.setParentBlock(b)
			b.insts = append(b.insts[:i], append([]Instruction{inst}, b.insts[i:]...)...)
			return nil
		}
	}
	return constructionErrorf(inst.Opcode(), "mark instruction not found in block %q", b.name)
}

// Predecessors scans every block in the same unit for a terminator that
// targets b. Computed on demand rather than cached, since the CFG
// changes as passes rewrite terminators.
func (b *Block) Predecessors() []*Block {
	if b.parent == nil {
		return nil
	}
	var preds []*Block
	for _, other := range b.parent.Blocks {
		term := other.Terminator()
		if term == nil {
			continue
		}
		t, ok := term.(Terminator)
		if !ok {
			continue
		}
		for _, succ := range t.GetSuccessors() {
			if succ == b {
				preds = append(preds, other)
				break
			}
		}
	}
	return preds
}

// Successors returns the block's terminator's targets, or nil if the
// block has no terminator yet.
func (b *Block) Successors() []*Block {
	term := b.Terminator()
	if term == nil {
		return nil
	}
	t, ok := term.(Terminator)
	if !ok {
		return nil
	}
	return t.GetSuccessors()
}
