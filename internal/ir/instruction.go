package ir

import (
	"fmt"

	"llhd/internal/types"
)

// Opcode names every instruction variant of spec §4.3.
type Opcode int

const (
	OpConstInt Opcode = iota
	OpConstLogic
	OpConstTime

	OpAdd
	OpSub
	OpMul
	OpUDiv
	OpSDiv
	OpURem
	OpSRem

	OpAnd
	OpOr
	OpXor

	OpShl
	OpLShr
	OpAShr

	OpNot

	OpEq
	OpNe
	OpUlt
	OpUgt
	OpUle
	OpUge
	OpSlt
	OpSgt
	OpSle
	OpSge

	OpMux
	OpExtract
	OpInsert

	OpReg

	OpSig
	OpPrb
	OpDrv

	OpBr
	OpRet
	OpWait
	OpHalt

	OpCall
	OpInstance
)

var opcodeNames = map[Opcode]string{
	OpConstInt: "const int", OpConstLogic: "const logic", OpConstTime: "const time",
	OpAdd: "add", OpSub: "sub", OpMul: "mul", OpUDiv: "udiv", OpSDiv: "sdiv", OpURem: "urem", OpSRem: "srem",
	OpAnd: "and", OpOr: "or", OpXor: "xor",
	OpShl: "shl", OpLShr: "lshr", OpAShr: "ashr",
	OpNot: "not",
	OpEq:  "eq", OpNe: "ne", OpUlt: "ult", OpUgt: "ugt", OpUle: "ule", OpUge: "uge",
	OpSlt: "slt", OpSgt: "sgt", OpSle: "sle", OpSge: "sge",
	OpMux: "mux", OpExtract: "extract", OpInsert: "insert",
	OpReg: "reg",
	OpSig: "sig", OpPrb: "prb", OpDrv: "drv",
	OpBr: "br", OpRet: "ret", OpWait: "wait", OpHalt: "halt",
	OpCall: "call", OpInstance: "inst",
}

func (op Opcode) String() string {
	if name, ok := opcodeNames[op]; ok {
		return name
	}
	return fmt.Sprintf("opcode(%d)", int(op))
}

// comparisonOps classifies the comparisons among the two-operand
// arithmetic/logic/compare instructions that share BinaryInst (spec §4.3:
// add/sub/mul/.../and/or/xor, the shifts, and the ten comparisons are given
// one variant struct, per the "common fields in a shared header" design
// note of spec §9). All but the shifts take two same-width operands.
var comparisonOps = map[Opcode]bool{
	OpEq: true, OpNe: true, OpUlt: true, OpUgt: true, OpUle: true, OpUge: true,
	OpSlt: true, OpSgt: true, OpSle: true, OpSge: true,
}

// ConstructionError reports an invalid instruction construction attempt
// (spec §4.3 "fails construction", spec §7 kind 1). It is returned
// synchronously; the IR is left unchanged.
type ConstructionError struct {
	Opcode  Opcode
	Message string
}

func (e *ConstructionError) Error() string {
	return fmt.Sprintf("%s: %s", e.Opcode, e.Message)
}

func constructionErrorf(op Opcode, format string, args ...interface{}) error {
	return &ConstructionError{Opcode: op, Message: fmt.Sprintf(format, args...)}
}

// Instruction is the sealed union of every instruction variant. Every
// instruction is also a Value: instructions that produce a result use
// their own identity as that result (classic "instruction is its own SSA
// value" representation); instructions with no result report types.Void{}
// and can never legally appear as another instruction's operand.
type Instruction interface {
	Value

	Opcode() Opcode

	// Operands returns the ordered list of incoming uses, i.e. this
	// instruction's operand list. The slice is a snapshot; operands are
	// rewritten only through ReplaceAllUsesWith or SetOperand.
	Operands() []*Use

	// SetOperand rewrites the operand at position i to v, maintaining
	// both use-lists. It does not re-check the operand contract; callers
	// performing arbitrary rewrites (as opposed to ReplaceAllUsesWith,
	// which checks once per replaced value) are responsible for type
	// soundness.
	SetOperand(i int, v Value)

	// Block returns the parent block for instructions inside a Function
	// or Process, or nil for an Entity instruction.
	Block() *Block

	// Entity returns the parent unit for an instruction appended directly
	// to an Entity's flat instruction list, or nil otherwise.
	Entity() *Unit

	IsTerminator() bool
	String() string

	setParentBlock(b *Block)
	setParentEntity(e *Unit)
}

// instBase is the shared header embedded by every concrete instruction
// variant: identity/type/name/uses (via valueBase), opcode, parent
// linkage, and the ordered operand list.
type instBase struct {
	valueBase
	opcode   Opcode
	block    *Block
	entity   *Unit
	operands []*Use
}

func newInstBase(op Opcode, result types.Type, operands []Value) instBase {
	b := instBase{opcode: op}
	b.typ = result
	b.operands = make([]*Use, len(operands))
	return b
}

// attachOperands must be called once, after the instruction struct itself
// (the `user` of each Use) has a stable address, since each Use stores a
// back-pointer to its user.
func (b *instBase) attachOperands(user Instruction, operands []Value) {
	for i, v := range operands {
		b.operands[i] = newUse(user, i, v)
	}
}

func (b *instBase) Kind() ValueKind        { return ValueInst }
func (b *instBase) Opcode() Opcode         { return b.opcode }
func (b *instBase) Block() *Block          { return b.block }
func (b *instBase) Entity() *Unit          { return b.entity }
func (b *instBase) setParentBlock(p *Block) { b.block = p }
func (b *instBase) setParentEntity(p *Unit) { b.entity = p }

func (b *instBase) Operands() []*Use {
	out := make([]*Use, len(b.operands))
	copy(out, b.operands)
	return out
}

func (b *instBase) SetOperand(i int, v Value) {
	setUseValue(b.operands[i], v)
}

func (b *instBase) operandValue(i int) Value {
	if i < 0 || i >= len(b.operands) {
		return nil
	}
	return b.operands[i].value
}

// ConstPayload carries the literal data of a const instruction (spec §4.3).
type ConstPayload struct {
	Int      int64  // valid when Opcode == OpConstInt (two's-complement, truncated to Width bits)
	Logic    string // valid when Opcode == OpConstLogic, length == Width
	TimePS   int64  // valid when Opcode == OpConstTime, picoseconds
	TimeDlt  int64  // valid when Opcode == OpConstTime, delta cycles
}

// ConstInst is `const int`, `const logic`, and `const time` (spec §4.3).
// Its Kind is ValueConst rather than the generic ValueInst, distinguishing
// a literal from a computed instruction result.
type ConstInst struct {
	instBase
	Payload ConstPayload
}

func (c *ConstInst) Kind() ValueKind     { return ValueConst }
func (c *ConstInst) IsTerminator() bool  { return false }
func (c *ConstInst) String() string      { return printInstruction(c) }

// BinaryInst covers every two-operand arithmetic, bitwise, shift, and
// comparison instruction (spec §4.3's add/sub/mul/.../shl/lshr/ashr and the
// ten eq/ne/.../sge comparisons).
type BinaryInst struct {
	instBase
}

func (b *BinaryInst) LHS() Value        { return b.operandValue(0) }
func (b *BinaryInst) RHS() Value        { return b.operandValue(1) }
func (b *BinaryInst) IsTerminator() bool { return false }
func (b *BinaryInst) String() string     { return printInstruction(b) }
func (b *BinaryInst) IsComparison() bool { return comparisonOps[b.opcode] }

// NotInst is the unary `not` (spec §4.3).
type NotInst struct {
	instBase
}

func (n *NotInst) Operand() Value     { return n.operandValue(0) }
func (n *NotInst) IsTerminator() bool { return false }
func (n *NotInst) String() string     { return printInstruction(n) }

// MuxInst selects one element of an Array operand by an Int selector
// (spec §4.3 `mux`).
type MuxInst struct {
	instBase
}

func (m *MuxInst) Sel() Value        { return m.operandValue(0) }
func (m *MuxInst) Array() Value      { return m.operandValue(1) }
func (m *MuxInst) IsTerminator() bool { return false }
func (m *MuxInst) String() string     { return printInstruction(m) }

// ExtractIndex is either a static constant index/field or a dynamic Value
// index, matching spec §4.3's "i constant or value".
type ExtractIndex struct {
	Const *int64
	Value Value
}

func (ix ExtractIndex) String() string {
	if ix.Const != nil {
		return fmt.Sprintf("%d", *ix.Const)
	}
	return ix.Value.Name()
}

// ExtractInst extracts a field/element/slice from a Struct, Array, Int, or
// Logic target (spec §4.3 `extract`).
type ExtractInst struct {
	instBase
	Index ExtractIndex
}

func (e *ExtractInst) Target() Value     { return e.operandValue(0) }
func (e *ExtractInst) IsTerminator() bool { return false }
func (e *ExtractInst) String() string     { return printInstruction(e) }

// InsertInst rewrites a field/element/slice of a target, producing a new
// value of the target's type (spec §4.3 `insert`).
type InsertInst struct {
	instBase
	Index ExtractIndex
}

func (i *InsertInst) Target() Value     { return i.operandValue(0) }
func (i *InsertInst) Elem() Value       { return i.operandValue(1) }
func (i *InsertInst) IsTerminator() bool { return false }
func (i *InsertInst) String() string     { return printInstruction(i) }

// RegInst is the latch/flip-flop primitive `reg` (spec §4.3, §4.8): it
// updates to Value whenever Strobe holds. Per the Open Question decision
// in SPEC_FULL.md, a RegInst carries exactly one strobe operand;
// composition of several conditions is the caller's job via `and`.
type RegInst struct {
	instBase
}

func (r *RegInst) Data() Value        { return r.operandValue(0) }
func (r *RegInst) Strobe() Value      { return r.operandValue(1) }
func (r *RegInst) IsTerminator() bool { return false }
func (r *RegInst) String() string     { return printInstruction(r) }

// SigInst declares a signal inside an entity (spec §4.3 `sig`).
type SigInst struct {
	instBase
}

func (s *SigInst) IsTerminator() bool { return false }
func (s *SigInst) String() string     { return printInstruction(s) }

// PrbInst samples the current value of a signal (spec §4.3 `prb`).
type PrbInst struct {
	instBase
}

func (p *PrbInst) Signal() Value     { return p.operandValue(0) }
func (p *PrbInst) IsTerminator() bool { return false }
func (p *PrbInst) String() string     { return printInstruction(p) }

// DrvInst schedules a driver update on a signal, optionally gated by a
// condition (spec §4.3 `drv` / `drv ... if g`).
type DrvInst struct {
	instBase
	Gated bool
}

func (d *DrvInst) Signal() Value { return d.operandValue(0) }
func (d *DrvInst) Val() Value    { return d.operandValue(1) }
func (d *DrvInst) Delay() Value  { return d.operandValue(2) }
func (d *DrvInst) Gate() Value {
	if !d.Gated {
		return nil
	}
	return d.operandValue(3)
}
func (d *DrvInst) IsTerminator() bool { return false }
func (d *DrvInst) String() string     { return printInstruction(d) }

// BrInst is both the unconditional and the conditional branch terminator
// (spec §4.3 `br target` / `br cond, t1, t0`); Cond is nil for the
// unconditional form.
type BrInst struct {
	instBase
	condOperand bool
}

func (b *BrInst) Cond() Value {
	if !b.condOperand {
		return nil
	}
	return b.operandValue(0)
}

func (b *BrInst) Targets() []*Block {
	if b.condOperand {
		t1, _ := b.operandValue(1).(*Block)
		t0, _ := b.operandValue(2).(*Block)
		return []*Block{t1, t0}
	}
	t, _ := b.operandValue(0).(*Block)
	return []*Block{t}
}

func (b *BrInst) IsTerminator() bool      { return true }
func (b *BrInst) GetSuccessors() []*Block { return b.Targets() }
func (b *BrInst) String() string          { return printInstruction(b) }

// RetInst is the function terminator `ret` / `ret v...` (spec §4.3).
type RetInst struct {
	instBase
}

func (r *RetInst) Values() []Value {
	out := make([]Value, len(r.operands))
	for i, u := range r.operands {
		out[i] = u.value
	}
	return out
}
func (r *RetInst) IsTerminator() bool      { return true }
func (r *RetInst) GetSuccessors() []*Block { return nil }
func (r *RetInst) String() string          { return printInstruction(r) }

// WaitInst suspends a process until a listed signal changes or an optional
// `for t: Time` elapses (spec §4.3 `wait`).
type WaitInst struct {
	instBase
	hasTimeout bool
}

func (w *WaitInst) Target() *Block {
	t, _ := w.operandValue(0).(*Block)
	return t
}

func (w *WaitInst) Signals() []Value {
	n := len(w.operands) - 1
	if w.hasTimeout {
		n--
	}
	out := make([]Value, n)
	for i := 0; i < n; i++ {
		out[i] = w.operandValue(i + 1)
	}
	return out
}

func (w *WaitInst) Timeout() Value {
	if !w.hasTimeout {
		return nil
	}
	return w.operandValue(len(w.operands) - 1)
}

func (w *WaitInst) IsTerminator() bool      { return true }
func (w *WaitInst) GetSuccessors() []*Block { return []*Block{w.Target()} }
func (w *WaitInst) String() string          { return printInstruction(w) }

// HaltInst is the terminator that never resumes (spec §4.3 `halt`).
type HaltInst struct {
	instBase
}

func (h *HaltInst) IsTerminator() bool      { return true }
func (h *HaltInst) GetSuccessors() []*Block { return nil }
func (h *HaltInst) String() string          { return printInstruction(h) }

// CallInst invokes a Function unit, functions only (spec §4.3 `call`).
type CallInst struct {
	instBase
	Callee *Unit
}

func (c *CallInst) Args() []Value {
	out := make([]Value, len(c.operands))
	for i, u := range c.operands {
		out[i] = u.value
	}
	return out
}
func (c *CallInst) IsTerminator() bool { return false }
func (c *CallInst) String() string     { return printInstruction(c) }

// InstanceInst structurally instantiates a unit inside an entity (spec
// §4.3 `inst`, textual mnemonic `inst`).
type InstanceInst struct {
	instBase
	Callee  *Unit
	NumIns  int
	NumOuts int
}

func (i *InstanceInst) Ins() []Value {
	out := make([]Value, i.NumIns)
	for k := 0; k < i.NumIns; k++ {
		out[k] = i.operandValue(k)
	}
	return out
}

func (i *InstanceInst) Outs() []Value {
	out := make([]Value, i.NumOuts)
	for k := 0; k < i.NumOuts; k++ {
		out[k] = i.operandValue(i.NumIns + k)
	}
	return out
}

func (i *InstanceInst) IsTerminator() bool { return false }
func (i *InstanceInst) String() string     { return printInstruction(i) }

// Terminator is implemented by the four instructions that may end a block
// (spec §3 "Block"): br, ret, wait, halt.
type Terminator interface {
	Instruction
	GetSuccessors() []*Block
}
