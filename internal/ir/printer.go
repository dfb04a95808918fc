package ir

import (
	"strconv"
	"strings"
)

// printInstruction renders a single instruction as `%name = op operands`,
// or `op operands` for void instructions. It is a small debug-oriented
// formatter used by Instruction.String(); the full textual assembly
// writer with module/unit framing lives in the asm package.
func printInstruction(inst Instruction) string {
	var sb strings.Builder

	hasResult := inst.Type().String() != "void"
	if hasResult {
		sb.WriteString(valueRef(inst))
		sb.WriteString(" = ")
	}

	if c, ok := inst.(*ConstInst); ok {
		sb.WriteString("const ")
		sb.WriteString(inst.Type().String())
		sb.WriteString(" ")
		sb.WriteString(constPayloadString(c))
		return sb.String()
	}

	sb.WriteString(inst.Opcode().String())

	if hasResult {
		sb.WriteString(" ")
		sb.WriteString(inst.Type().String())
	}

	operands := inst.Operands()
	if len(operands) > 0 {
		sb.WriteString(" ")
		for i, u := range operands {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(valueRef(u.Value()))
		}
	}

	return sb.String()
}

func constPayloadString(c *ConstInst) string {
	switch c.Opcode() {
	case OpConstInt:
		return strconv.FormatInt(c.Payload.Int, 10)
	case OpConstLogic:
		return c.Payload.Logic
	case OpConstTime:
		return strconv.FormatInt(c.Payload.TimePS, 10) + "ps " + strconv.FormatInt(c.Payload.TimeDlt, 10) + "d"
	default:
		return ""
	}
}

// valueRef names a Value for printing: its own name if set, or a
// positional fallback derived from its kind.
func valueRef(v Value) string {
	if v == nil {
		return "<nil>"
	}
	if v.Name() != "" {
		switch v.Kind() {
		case ValueBlock:
			return "^" + v.Name()
		default:
			return "%" + v.Name()
		}
	}
	switch v.Kind() {
	case ValueBlock:
		return "^<anon>"
	case ValueUnit:
		return "@<anon>"
	default:
		return "%<anon>"
	}
}
