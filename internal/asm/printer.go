package asm

import (
	"fmt"
	"strconv"
	"strings"

	"llhd/internal/ir"
	"llhd/internal/types"
)

// Print renders a module back to the textual surface of spec §6. It is
// the dual of Build: Build(name, Parse(Print(m))) reproduces a
// structurally equal module (spec §8 property 6, round-trip), modulo
// anonymous-name choice. Grounded on internal/ir/printer.go's
// indent/line-buffer shape, generalized from EVM contract layout to the
// unit/block/instruction layout of this IR.
func Print(m *ir.Module) string {
	var b strings.Builder
	for i, u := range m.Units() {
		if i > 0 {
			b.WriteString("\n")
		}
		printUnit(&b, u)
	}
	return b.String()
}

func printUnit(b *strings.Builder, u *ir.Unit) {
	switch u.UnitKind() {
	case ir.UnitFunction:
		fmt.Fprintf(b, "func @%s (%s) %s {\n", u.Name(), printParams(u.Params), printReturn(u.Outputs))
		printBlocks(b, u)
		b.WriteString("}\n")
	case ir.UnitProcess:
		fmt.Fprintf(b, "proc @%s (%s) -> (%s) {\n", u.Name(), printParams(u.Params), printParams(u.Outputs))
		printBlocks(b, u)
		b.WriteString("}\n")
	case ir.UnitEntity:
		fmt.Fprintf(b, "entity @%s (%s) -> (%s) {\n", u.Name(), printParams(u.Params), printParams(u.Outputs))
		for _, inst := range u.Instructions() {
			b.WriteString("  ")
			b.WriteString(printAsmInstruction(inst))
			b.WriteString("\n")
		}
		b.WriteString("}\n")
	case ir.UnitDeclaration:
		fmt.Fprintf(b, "decl @%s (%s) -> (%s)\n", u.Name(), printTypes(u.Params), printTypes(u.Outputs))
	}
}

func printBlocks(b *strings.Builder, u *ir.Unit) {
	for _, blk := range u.Blocks {
		fmt.Fprintf(b, "%%%s:\n", blk.Name())
		for _, inst := range blk.Instructions() {
			b.WriteString("  ")
			b.WriteString(printAsmInstruction(inst))
			b.WriteString("\n")
		}
	}
}

func printParams(params []*ir.Param) string {
	parts := make([]string, len(params))
	for i, p := range params {
		parts[i] = fmt.Sprintf("%%%s: %s", p.Name(), printType(p.Type()))
	}
	return strings.Join(parts, ", ")
}

func printTypes(params []*ir.Param) string {
	parts := make([]string, len(params))
	for i, p := range params {
		parts[i] = printType(p.Type())
	}
	return strings.Join(parts, ", ")
}

func printReturn(outs []*ir.Param) string {
	if len(outs) == 0 {
		return "void"
	}
	return printType(outs[0].Type())
}

func printType(t types.Type) string {
	switch v := t.(type) {
	case types.Signal:
		return printType(v.Elem) + "$"
	case types.Pointer:
		return printType(v.Elem) + "*"
	case types.Array:
		return fmt.Sprintf("[%d x %s]", v.Len, printType(v.Elem))
	case types.Struct:
		parts := make([]string, len(v.Fields))
		for i, f := range v.Fields {
			parts[i] = printType(f)
		}
		return "{" + strings.Join(parts, ", ") + "}"
	default:
		return t.String()
	}
}

func ref(v ir.Value) string {
	if v == nil {
		return ""
	}
	return "%" + v.Name()
}

func printAsmInstruction(inst ir.Instruction) string {
	var lhs string
	if inst.Type().String() != "void" {
		lhs = "%" + inst.Name() + " = "
	}

	switch in := inst.(type) {
	case *ir.ConstInst:
		switch in.Opcode() {
		case ir.OpConstInt:
			width, _ := types.WidthOf(in.Type())
			return fmt.Sprintf("%sconst i%d %d", lhs, width, in.Payload.Int)
		case ir.OpConstLogic:
			return fmt.Sprintf("%sconst n%d %q", lhs, len(in.Payload.Logic), in.Payload.Logic)
		case ir.OpConstTime:
			return fmt.Sprintf("%sconst time %ds %dd", lhs, in.Payload.TimePS, in.Payload.TimeDlt)
		}
	case *ir.BinaryInst:
		return fmt.Sprintf("%s%s %s, %s", lhs, in.Opcode(), ref(in.LHS()), ref(in.RHS()))
	case *ir.NotInst:
		return fmt.Sprintf("%snot %s", lhs, ref(in.Operand()))
	case *ir.MuxInst:
		return fmt.Sprintf("%smux %s, %s", lhs, ref(in.Sel()), ref(in.Array()))
	case *ir.ExtractInst:
		return fmt.Sprintf("%sextract %s, %s", lhs, ref(in.Target()), printIndex(in.Index))
	case *ir.InsertInst:
		return fmt.Sprintf("%sinsert %s, %s, %s", lhs, ref(in.Target()), printIndex(in.Index), ref(in.Elem()))
	case *ir.RegInst:
		return fmt.Sprintf("%sreg %s, %s", lhs, ref(in.Data()), ref(in.Strobe()))
	case *ir.SigInst:
		elem, _ := types.ElemOf(in.Type())
		return fmt.Sprintf("%ssig %s", lhs, printType(elem))
	case *ir.PrbInst:
		return fmt.Sprintf("%sprb %s", lhs, ref(in.Signal()))
	case *ir.DrvInst:
		if in.Gated {
			return fmt.Sprintf("drv %s if %s, %s, %s", ref(in.Signal()), ref(in.Gate()), ref(in.Val()), ref(in.Delay()))
		}
		return fmt.Sprintf("drv %s, %s, %s", ref(in.Signal()), ref(in.Val()), ref(in.Delay()))
	case *ir.BrInst:
		if in.Cond() != nil {
			targets := in.Targets()
			return fmt.Sprintf("br %s, %s, %s", ref(in.Cond()), ref(targets[0]), ref(targets[1]))
		}
		return fmt.Sprintf("br %s", ref(in.Targets()[0]))
	case *ir.RetInst:
		if len(in.Values()) == 0 {
			return "ret"
		}
		parts := make([]string, len(in.Values()))
		for i, v := range in.Values() {
			parts[i] = ref(v)
		}
		return "ret " + strings.Join(parts, ", ")
	case *ir.WaitInst:
		parts := make([]string, len(in.Signals()))
		for i, s := range in.Signals() {
			parts[i] = ref(s)
		}
		out := fmt.Sprintf("wait %s", ref(in.Target()))
		if len(parts) > 0 {
			out += ", " + strings.Join(parts, ", ")
		}
		if t := in.Timeout(); t != nil {
			out += " for " + ref(t)
		}
		return out
	case *ir.HaltInst:
		return "halt"
	case *ir.CallInst:
		parts := make([]string, len(in.Args()))
		for i, a := range in.Args() {
			parts[i] = ref(a)
		}
		out := fmt.Sprintf("%scall @%s", lhs, in.Callee.Name())
		if len(parts) > 0 {
			out += ", " + strings.Join(parts, ", ")
		}
		return out
	case *ir.InstanceInst:
		parts := make([]string, 0, in.NumIns+in.NumOuts)
		for _, v := range in.Ins() {
			parts = append(parts, ref(v))
		}
		for _, v := range in.Outs() {
			parts = append(parts, ref(v))
		}
		out := fmt.Sprintf("inst @%s", in.Callee.Name())
		if len(parts) > 0 {
			out += ", " + strings.Join(parts, ", ")
		}
		return out
	}
	return inst.String()
}

func printIndex(ix ir.ExtractIndex) string {
	if ix.Const != nil {
		return strconv.FormatInt(*ix.Const, 10)
	}
	return ref(ix.Value)
}
