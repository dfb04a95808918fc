package verify

import (
	"fmt"

	"llhd/internal/ir"
	"llhd/internal/types"
)

// Diagnostic is a single verifier finding (spec §4.5, §7 kind 2): a
// non-fatal report against an otherwise well-formed IR. Diagnostics are
// accumulated, never returned as a Go error, and never stop verification
// early.
type Diagnostic struct {
	Code     string
	UnitKind ir.UnitKind
	UnitName string
	Def      string
	Message  string
}

// String renders the stable prose form spec §4.5 specifies for
// dominance/type failures, generalized to every diagnostic category:
// "<unit-kind> @<name>: <definition>: <message>".
func (d Diagnostic) String() string {
	return fmt.Sprintf("%s @%s: %s: %s", d.UnitKind, d.UnitName, d.Def, d.Message)
}

// Line renders the stable one-line CLI form required by spec §5/§6:
// "- <unit-kind> @<name>: <definition>: <message>".
func (d Diagnostic) Line() string {
	return "- " + d.String()
}

// Module verifies every unit in m, accumulating diagnostics across all of
// them rather than stopping at the first failing unit.
func Module(m *ir.Module) []Diagnostic {
	var out []Diagnostic
	for _, u := range m.Units() {
		out = append(out, Unit(u)...)
	}
	return out
}

// Unit runs every invariant check of spec §3 applicable to u's kind.
func Unit(u *ir.Unit) []Diagnostic {
	switch u.UnitKind() {
	case ir.UnitFunction, ir.UnitProcess:
		return verifyControlFlowUnit(u)
	case ir.UnitEntity:
		return verifyEntity(u)
	default: // Declaration: signature only, nothing to verify
		return nil
	}
}

func verifyControlFlowUnit(u *ir.Unit) []Diagnostic {
	var out []Diagnostic
	out = append(out, checkTerminators(u)...)
	out = append(out, checkBranchTargetsSameUnit(u)...)
	out = append(out, checkOperandContracts(u)...)
	out = append(out, checkSignalUseRestriction(u)...)

	dom := BuildDominatorTree(u)
	out = append(out, checkDominance(u, dom)...)
	return out
}

// checkTerminators enforces invariant 3: every block is terminated, only
// terminators appear last, and no terminator appears mid-block.
func checkTerminators(u *ir.Unit) []Diagnostic {
	var out []Diagnostic
	for _, b := range u.Blocks {
		insts := b.Instructions()
		if len(insts) == 0 {
			out = append(out, Diagnostic{
				Code: "V0010", UnitKind: u.UnitKind(), UnitName: u.Name(),
				Def: "^" + b.Name(), Message: "block has no terminator",
			})
			continue
		}
		for i, inst := range insts {
			last := i == len(insts)-1
			if inst.IsTerminator() && !last {
				out = append(out, Diagnostic{
					Code: "V0011", UnitKind: u.UnitKind(), UnitName: u.Name(),
					Def: "^" + b.Name(), Message: fmt.Sprintf("terminator %q appears before the end of the block", inst.Opcode()),
				})
			}
			if last && !inst.IsTerminator() {
				out = append(out, Diagnostic{
					Code: "V0010", UnitKind: u.UnitKind(), UnitName: u.Name(),
					Def: "^" + b.Name(), Message: "block does not end in a terminator",
				})
			}
		}
	}
	return out
}

// checkBranchTargetsSameUnit enforces invariant 4.
func checkBranchTargetsSameUnit(u *ir.Unit) []Diagnostic {
	var out []Diagnostic
	own := map[*ir.Block]bool{}
	for _, b := range u.Blocks {
		own[b] = true
	}
	for _, b := range u.Blocks {
		term, ok := b.Terminator().(ir.Terminator)
		if !ok {
			continue
		}
		for _, t := range term.GetSuccessors() {
			if t != nil && !own[t] {
				out = append(out, Diagnostic{
					Code: "V0040", UnitKind: u.UnitKind(), UnitName: u.Name(),
					Def: printRef(term), Message: "branch target does not belong to this unit",
				})
			}
		}
	}
	return out
}

// checkSignalUseRestriction enforces invariant 5: Signal operands only
// ever appear on prb/drv/sig/wait, and on inst, whose ports are signals.
func checkSignalUseRestriction(u *ir.Unit) []Diagnostic {
	var out []Diagnostic
	for _, inst := range u.AllInstructions() {
		switch inst.Opcode() {
		case ir.OpPrb, ir.OpDrv, ir.OpSig, ir.OpWait, ir.OpInstance:
			continue
		}
		for _, use := range inst.Operands() {
			if types.IsSignal(use.Value().Type()) {
				out = append(out, Diagnostic{
					Code: "V0050", UnitKind: u.UnitKind(), UnitName: u.Name(),
					Def: printRef(inst), Message: fmt.Sprintf("operand %d is a Signal but %s is not signal-aware", use.Pos(), inst.Opcode()),
				})
			}
		}
	}
	return out
}

// checkDominance enforces invariant 2 for functions and processes.
func checkDominance(u *ir.Unit, dom *DominatorTree) []Diagnostic {
	var out []Diagnostic
	for _, b := range u.Blocks {
		if !dom.Reachable(b) {
			out = append(out, Diagnostic{
				Code: "V0020", UnitKind: u.UnitKind(), UnitName: u.Name(),
				Def: "^" + b.Name(), Message: "block is unreachable from the entry",
			})
			continue
		}
		for _, inst := range b.Instructions() {
			for _, use := range inst.Operands() {
				def, ok := use.Value().(ir.Instruction)
				if !ok {
					continue // Param/Block/Unit operands have no definition site to dominate
				}
				if !dom.DominatesInstruction(def, inst) {
					out = append(out, Diagnostic{
						Code: "V0021", UnitKind: u.UnitKind(), UnitName: u.Name(),
						Def: def.String(), Message: fmt.Sprintf("does not dominate use in `%s`", inst.String()),
					})
				}
			}
		}
	}
	return out
}

// verifyEntity enforces invariant 2's entity form: the use graph
// restricted to the entity must be acyclic, except through reg, sig, and
// inst, which legitimately close a loop through state.
func verifyEntity(u *ir.Unit) []Diagnostic {
	var out []Diagnostic
	out = append(out, checkOperandContracts(u)...)
	out = append(out, checkSignalUseRestriction(u)...)

	const (
		white = 0
		gray  = 1
		black = 2
	)
	color := map[ir.Instruction]int{}
	var cyclic []ir.Instruction

	var visit func(inst ir.Instruction)
	visit = func(inst ir.Instruction) {
		if color[inst] == black {
			return
		}
		if color[inst] == gray {
			cyclic = append(cyclic, inst)
			return
		}
		color[inst] = gray
		if !isStateBoundary(inst.Opcode()) {
			for _, use := range inst.Operands() {
				if dep, ok := use.Value().(ir.Instruction); ok && dep.Entity() == u {
					visit(dep)
				}
			}
		}
		color[inst] = black
	}

	for _, inst := range u.Instructions() {
		if color[inst] == white {
			visit(inst)
		}
	}

	for _, inst := range cyclic {
		out = append(out, Diagnostic{
			Code: "V0022", UnitKind: u.UnitKind(), UnitName: u.Name(),
			Def: printRef(inst), Message: "participates in a combinational cycle through the use graph",
		})
	}
	return out
}

func isStateBoundary(op ir.Opcode) bool {
	switch op {
	case ir.OpReg, ir.OpSig, ir.OpInstance:
		return true
	}
	return false
}

func printRef(inst ir.Instruction) string {
	if inst.Name() != "" {
		return "%" + inst.Name()
	}
	return inst.String()
}
