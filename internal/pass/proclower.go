package pass

import (
	"fmt"

	"llhd/internal/ir"
	"llhd/internal/types"
)

// ProcLower is the process-lowering pass named "proclower" (spec §4.7):
// it rewrites a behaviorally-complete Process into a structurally
// equivalent Entity with the same name and port signature.
//
// This implementation scopes the structural pattern to the common
// single-block "combinational always-block" shape: one block that probes
// its input signals, computes, drives its outputs, and ends in a `wait`
// back to itself. That shape trivially satisfies all three conditions of
// spec §4.7: condition 1 holds because the only terminator is the wait
// (there is no second block to reach via `br`); condition 3 holds
// because nothing in the block executes after its own terminator, so no
// value can be "consumed past the wait boundary" within one invocation.
// Multi-block processes (explicit branches before the final wait) are
// declined rather than guessed at, consistent with spec §4.7's framing
// of success as conditional on a specific structural match.
type ProcLower struct{}

func (*ProcLower) Name() string { return "proclower" }
func (*ProcLower) Properties() Properties {
	return Properties{InvalidatesDominance: true, WritesModuleTable: true}
}

func (*ProcLower) Run(m *ir.Module) Result {
	lowered := 0
	for _, u := range m.Processes() {
		entity, reason, err := lowerProcess(u)
		if err != nil {
			return internal(fmt.Errorf("proclower %s: %w", u.Name(), err))
		}
		if entity == nil {
			continue // declined for this unit; reason is informational only
		}
		_ = reason
		if err := m.ReplaceUnit(u, entity); err != nil {
			return internal(err)
		}
		lowered++
	}
	if lowered == 0 {
		return declined("no process matched the lowerable always-block shape")
	}
	return applied(lowered)
}

// lowerProcess attempts the transformation on one process. A nil entity
// with no error means the structural preconditions were not met.
func lowerProcess(p *ir.Unit) (*ir.Unit, string, error) {
	if len(p.Blocks) != 1 {
		return nil, "process has more than one block", nil
	}
	body := p.Blocks[0]

	term := body.Terminator()
	if term == nil {
		return nil, "block has no terminator", nil
	}
	wait, ok := term.(*ir.WaitInst)
	if !ok {
		return nil, "terminator is not wait", nil
	}
	if wait.Target() != body {
		return nil, "wait does not resume at its own block", nil
	}
	if wait.Timeout() != nil {
		return nil, "wait has a timeout, which has no structural equivalent in an entity", nil
	}

	declared := map[ir.Value]bool{}
	for _, s := range wait.Signals() {
		declared[s] = true
	}
	for _, inst := range body.Instructions() {
		prb, ok := inst.(*ir.PrbInst)
		if !ok {
			continue
		}
		if !declared[prb.Signal()] {
			return nil, fmt.Sprintf("prb of %s is not in wait's sensitivity list", prb.Signal().Name()), nil
		}
	}

	params := clonePorts(p.Params)
	outputs := clonePorts(p.Outputs)
	entity := ir.NewUnit(ir.UnitEntity, p.Name(), params, outputs)

	valueMap := map[ir.Value]ir.Value{}
	for i, old := range p.Params {
		valueMap[old] = params[i]
	}
	for i, old := range p.Outputs {
		valueMap[old] = outputs[i]
	}

	for _, inst := range body.Instructions() {
		if inst == wait {
			continue
		}
		cloned, err := cloneInstruction(inst, valueMap)
		if err != nil {
			return nil, "", err
		}
		if cloned == nil {
			return nil, fmt.Sprintf("instruction %s has no structural entity equivalent", inst.Opcode()), nil
		}
		if err := entity.AppendInstruction(cloned); err != nil {
			return nil, "", err
		}
		valueMap[inst] = cloned
	}

	return entity, "", nil
}

func clonePorts(params []*ir.Param) []*ir.Param {
	out := make([]*ir.Param, len(params))
	for i, p := range params {
		out[i] = ir.NewParam(p.Name(), p.Type())
	}
	return out
}

// cloneInstruction reconstructs inst against the new entity's operands
// (remapped through valueMap), dispatching to the same constructors a
// programmatic front-end would use. It returns (nil, nil) for an
// instruction kind with no legal entity equivalent.
func cloneInstruction(inst ir.Instruction, valueMap map[ir.Value]ir.Value) (ir.Instruction, error) {
	rm := func(v ir.Value) ir.Value {
		if v == nil {
			return nil
		}
		if mapped, ok := valueMap[v]; ok {
			return mapped
		}
		return v
	}

	switch in := inst.(type) {
	case *ir.ConstInst:
		switch in.Opcode() {
		case ir.OpConstInt:
			return ir.NewConstInt(widthOfConst(in), in.Payload.Int)
		case ir.OpConstLogic:
			return ir.NewConstLogic(in.Payload.Logic)
		case ir.OpConstTime:
			return ir.NewConstTime(in.Payload.TimePS, in.Payload.TimeDlt)
		}
	case *ir.BinaryInst:
		return ir.NewBinary(in.Opcode(), rm(in.LHS()), rm(in.RHS()))
	case *ir.NotInst:
		return ir.NewNot(rm(in.Operand()))
	case *ir.MuxInst:
		return ir.NewMux(rm(in.Sel()), rm(in.Array()))
	case *ir.ExtractInst:
		return ir.NewExtract(rm(in.Target()), remapIndex(in.Index, rm))
	case *ir.InsertInst:
		return ir.NewInsert(rm(in.Target()), remapIndex(in.Index, rm), rm(in.Elem()))
	case *ir.RegInst:
		return ir.NewReg(rm(in.Data()), rm(in.Strobe()))
	case *ir.SigInst:
		elem, _ := types.ElemOf(in.Type())
		return ir.NewSig(elem)
	case *ir.PrbInst:
		return ir.NewPrb(rm(in.Signal()))
	case *ir.DrvInst:
		if in.Gated {
			return ir.NewDrvGated(rm(in.Signal()), rm(in.Val()), rm(in.Delay()), rm(in.Gate()))
		}
		return ir.NewDrv(rm(in.Signal()), rm(in.Val()), rm(in.Delay()))
	case *ir.CallInst:
		args := in.Args()
		mapped := make([]ir.Value, len(args))
		for i, a := range args {
			mapped[i] = rm(a)
		}
		return ir.NewCall(in.Callee, mapped)
	}
	return nil, nil
}

func remapIndex(ix ir.ExtractIndex, rm func(ir.Value) ir.Value) ir.ExtractIndex {
	if ix.Const != nil {
		return ix
	}
	return ir.ExtractIndex{Value: rm(ix.Value)}
}

func widthOfConst(c *ir.ConstInst) int {
	w, _ := types.WidthOf(c.Type())
	return w
}
