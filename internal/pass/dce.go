package pass

import "llhd/internal/ir"

// DCE is the dead-code elimination pass named "dce" (spec §6's pass
// name list), built directly on ir.EraseIfUnused (spec §4.2, §4.6).
type DCE struct{}

func (*DCE) Name() string { return "dce" }
func (*DCE) Properties() Properties {
	return Properties{InvalidatesDominance: false}
}

func (*DCE) Run(m *ir.Module) Result {
	touched := 0
	for _, u := range m.Units() {
		if dceUnit(u) > 0 {
			touched++
		}
	}
	if touched == 0 {
		return declined("no dead instructions found")
	}
	return applied(touched)
}

// dceUnit repeatedly erases unused, side-effect-free instructions until a
// fixed point, since erasing one instruction can make its own operands
// unused in turn.
func dceUnit(u *ir.Unit) int {
	total := 0
	for {
		progress := false
		for _, inst := range u.AllInstructions() {
			if ir.EraseIfUnused(inst) {
				progress = true
				total++
			}
		}
		if !progress {
			return total
		}
	}
}
