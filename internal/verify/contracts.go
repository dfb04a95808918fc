package verify

import (
	"fmt"

	"llhd/internal/ir"
	"llhd/internal/types"
)

// checkOperandContracts re-validates invariant 1 against an instruction's
// *current* operands. Contracts are already enforced once at construction
// (internal/ir/build.go), but SetOperand deliberately does not re-check
// (spec §4.2 allows direct operand rewrites from passes), and a unit built
// by the textual reader never goes through the Go constructors at all —
// so the verifier re-derives the same checks independently here.
func checkOperandContracts(u *ir.Unit) []Diagnostic {
	var out []Diagnostic
	for _, inst := range u.AllInstructions() {
		if msg := contractViolation(inst); msg != "" {
			out = append(out, Diagnostic{
				Code: "V0001", UnitKind: u.UnitKind(), UnitName: u.Name(),
				Def: printRef(inst), Message: msg,
			})
		}
	}
	return out
}

var arithmeticOps = map[ir.Opcode]bool{
	ir.OpAdd: true, ir.OpSub: true, ir.OpMul: true, ir.OpUDiv: true,
	ir.OpSDiv: true, ir.OpURem: true, ir.OpSRem: true,
}
var bitwiseOps = map[ir.Opcode]bool{ir.OpAnd: true, ir.OpOr: true, ir.OpXor: true}
var shiftOps = map[ir.Opcode]bool{ir.OpShl: true, ir.OpLShr: true, ir.OpAShr: true}
var comparisonOps = map[ir.Opcode]bool{
	ir.OpEq: true, ir.OpNe: true, ir.OpUlt: true, ir.OpUgt: true, ir.OpUle: true, ir.OpUge: true,
	ir.OpSlt: true, ir.OpSgt: true, ir.OpSle: true, ir.OpSge: true,
}

func contractViolation(inst ir.Instruction) string {
	ops := inst.Operands()
	ty := func(i int) types.Type {
		if i < 0 || i >= len(ops) {
			return nil
		}
		return ops[i].Value().Type()
	}

	switch op := inst.Opcode(); {
	case arithmeticOps[op] || shiftOps[op]:
		a, okA := ty(0).(types.Int)
		_, okB := ty(1).(types.Int)
		if !okA || !okB {
			return fmt.Sprintf("%s requires Int operands", op)
		}
		if arithmeticOps[op] && a.Width != ty(1).(types.Int).Width {
			return fmt.Sprintf("%s requires equal-width operands, got %s and %s", op, ty(0), ty(1))
		}

	case bitwiseOps[op]:
		if ai, ok := ty(0).(types.Int); ok {
			bi, ok := ty(1).(types.Int)
			if !ok || bi.Width != ai.Width {
				return fmt.Sprintf("%s requires two equal-width Int operands, got %s and %s", op, ty(0), ty(1))
			}
		} else if al, ok := ty(0).(types.Logic); ok {
			bl, ok := ty(1).(types.Logic)
			if !ok || bl.Width != al.Width {
				return fmt.Sprintf("%s requires two equal-width Logic operands, got %s and %s", op, ty(0), ty(1))
			}
		} else {
			return fmt.Sprintf("%s requires Int or Logic operands, got %s", op, ty(0))
		}

	case comparisonOps[op]:
		a, okA := ty(0).(types.Int)
		b, okB := ty(1).(types.Int)
		if !okA || !okB || a.Width != b.Width {
			return fmt.Sprintf("%s requires equal-width Int operands, got %s and %s", op, ty(0), ty(1))
		}

	case op == ir.OpNot:
		switch ty(0).(type) {
		case types.Int, types.Logic:
		default:
			return fmt.Sprintf("not requires an Int or Logic operand, got %s", ty(0))
		}

	case op == ir.OpReg:
		if w, ok := ty(1).(types.Int); !ok || w.Width != 1 {
			return fmt.Sprintf("reg's strobe must be i1, got %s", ty(1))
		}

	case op == ir.OpPrb:
		if _, ok := ty(0).(types.Signal); !ok {
			return fmt.Sprintf("prb requires a Signal operand, got %s", ty(0))
		}

	case op == ir.OpDrv:
		s, ok := ty(0).(types.Signal)
		if !ok {
			return fmt.Sprintf("drv requires a Signal first operand, got %s", ty(0))
		}
		if !s.Elem.Equal(ty(1)) {
			return fmt.Sprintf("drv's value type %s does not match signal element type %s", ty(1), s.Elem)
		}
		if _, ok := ty(2).(types.Time); !ok {
			return fmt.Sprintf("drv's delay must be Time, got %s", ty(2))
		}
		if d, ok := inst.(*ir.DrvInst); ok && d.Gated {
			if w, ok := ty(3).(types.Int); !ok || w.Width != 1 {
				return fmt.Sprintf("drv's gate must be i1, got %s", ty(3))
			}
		}

	case op == ir.OpMux:
		sel, okSel := ty(0).(types.Int)
		arr, okArr := ty(1).(types.Array)
		if !okSel || !okArr {
			return fmt.Sprintf("mux requires an Int selector and an Array operand, got %s and %s", ty(0), ty(1))
		}
		if arr.Len > 0 && arr.Len&(arr.Len-1) == 0 {
			want := 0
			for n := arr.Len; n > 1; n >>= 1 {
				want++
			}
			if sel.Width != want {
				return fmt.Sprintf("mux selector width %d does not match array of %d elements", sel.Width, arr.Len)
			}
		}

	case op == ir.OpBr:
		if br, ok := inst.(*ir.BrInst); ok {
			if c := br.Cond(); c != nil {
				if w, ok := c.Type().(types.Int); !ok || w.Width != 1 {
					return fmt.Sprintf("br's condition must be i1, got %s", c.Type())
				}
			}
		}

	case op == ir.OpWait:
		if w, ok := inst.(*ir.WaitInst); ok {
			for _, s := range w.Signals() {
				if !types.IsSignal(s.Type()) {
					return fmt.Sprintf("wait's sensitivity operand must be a Signal, got %s", s.Type())
				}
			}
			if t := w.Timeout(); t != nil {
				if _, ok := t.Type().(types.Time); !ok {
					return fmt.Sprintf("wait's timeout must be Time, got %s", t.Type())
				}
			}
		}
	}
	return ""
}
