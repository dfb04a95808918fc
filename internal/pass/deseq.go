package pass

import (
	"fmt"

	"llhd/internal/ir"
)

// Deseq is the sequential-recognition pass named "deseq" (spec §4.8). It
// looks for the canonical event-driven flip-flop idiom:
//
//	sample:
//	  %pre = prb %clk        ; (and any other same-block computation)
//	  wait resume, %clk      ; terminator
//	resume:
//	  %post = prb %clk       ; (edge expression built from %pre/%post, e.g. not/and)
//	  drv %q if %edge, %next, #delay
//	  br sample              ; terminator
//
// and rewrites every gated drive in the resume block into a `reg`
// (spec §4.8: "a conditional drive ... is recognized as a register whose
// clocking/reset is encoded in event_guard"): `drv q if g, v, delay`
// becomes `%r = reg v, g` followed by the now-unconditional `drv q, %r,
// delay`, preserving whatever expression g already was — the pass does
// not need to rediscover clock polarity or reset level itself, only to
// recognize the existing gated-drive shape and thread its guard into
// reg's strobe operand. When the two-block sample/resume shape or at
// least one gated drive isn't present, the process is left untouched,
// per spec §4.8's closing sentence.
type Deseq struct{}

func (*Deseq) Name() string { return "deseq" }
func (*Deseq) Properties() Properties {
	return Properties{InvalidatesDominance: true, WritesModuleTable: true}
}

func (*Deseq) Run(m *ir.Module) Result {
	recognized := 0
	for _, u := range m.Processes() {
		entity, err := deseqProcess(u)
		if err != nil {
			return internal(fmt.Errorf("deseq %s: %w", u.Name(), err))
		}
		if entity == nil {
			continue
		}
		if err := m.ReplaceUnit(u, entity); err != nil {
			return internal(err)
		}
		recognized++
	}
	if recognized == 0 {
		return declined("no process matched the event-driven register idiom")
	}
	return applied(recognized)
}

func deseqProcess(p *ir.Unit) (*ir.Unit, error) {
	if len(p.Blocks) != 2 {
		return nil, nil
	}
	sample, resume := p.Blocks[0], p.Blocks[1]

	wait, ok := sample.Terminator().(*ir.WaitInst)
	if !ok || wait.Target() != resume {
		return nil, nil
	}
	br, ok := resume.Terminator().(*ir.BrInst)
	if !ok || br.Cond() != nil || len(br.Targets()) != 1 || br.Targets()[0] != sample {
		return nil, nil
	}

	var gated []*ir.DrvInst
	for _, inst := range resume.Instructions() {
		if d, ok := inst.(*ir.DrvInst); ok && d.Gated {
			gated = append(gated, d)
		}
	}
	if len(gated) == 0 {
		return nil, nil
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

	isRecognized := func(inst ir.Instruction) *ir.DrvInst {
		for _, d := range gated {
			if d == inst {
				return d
			}
		}
		return nil
	}

	for _, block := range []*ir.Block{sample, resume} {
		term := block.Terminator()
		for _, inst := range block.Instructions() {
			if inst == term {
				continue // wait / br dropped: the loop structure collapses into straight-line entity code
			}
			if d := isRecognized(inst); d != nil {
				rm := func(v ir.Value) ir.Value {
					if mapped, ok := valueMap[v]; ok {
						return mapped
					}
					return v
				}
				reg, err := ir.NewReg(rm(d.Val()), rm(d.Gate()))
				if err != nil {
					return nil, err
				}
				if err := entity.AppendInstruction(reg); err != nil {
					return nil, err
				}
				drv, err := ir.NewDrv(rm(d.Signal()), reg, rm(d.Delay()))
				if err != nil {
					return nil, err
				}
				if err := entity.AppendInstruction(drv); err != nil {
					return nil, err
				}
				continue
			}
			cloned, err := cloneInstruction(inst, valueMap)
			if err != nil {
				return nil, err
			}
			if cloned == nil {
				return nil, nil
			}
			if err := entity.AppendInstruction(cloned); err != nil {
				return nil, err
			}
			valueMap[inst] = cloned
		}
	}

	return entity, nil
}
