package ir

import (
	"llhd/internal/types"
)

// This file is the construction API of spec §4.3: one function per
// instruction, each validating the operand contract given in the table
// and returning a *ConstructionError (spec §7 kind 1) instead of mutating
// anything when the contract is violated. Contracts that depend on a
// referenced Unit's signature (call, inst) are checked here, since the
// Unit is already known to the caller; contracts that depend on the
// instruction's eventual position in a Function/Process (ret vs. the
// unit's return types, branch targets within the same unit) are left to
// the verifier (spec §4.5 invariants 1 and 4), since construction alone
// does not know the enclosing unit.

// WrapToWidth truncates k to a two's-complement value of width bits,
// exposed for const-folding passes that compute new literal values.
func WrapToWidth(width int, k int64) int64 { return wrapToWidth(width, k) }

func wrapToWidth(width int, k int64) int64 {
	if width >= 64 {
		return k
	}
	mask := int64(1)<<uint(width) - 1
	v := k & mask
	signBit := int64(1) << uint(width-1)
	if v&signBit != 0 {
		v -= mask + 1
	}
	return v
}

// NewConstInt builds `const int w, k` (spec §4.3).
func NewConstInt(width int, k int64) (*ConstInst, error) {
	if width < 1 {
		return nil, constructionErrorf(OpConstInt, "width must be >= 1, got %d", width)
	}
	c := &ConstInst{
		instBase: newInstBase(OpConstInt, types.Int{Width: width}, nil),
		Payload:  ConstPayload{Int: wrapToWidth(width, k)},
	}
	return c, nil
}

// NewConstLogic builds `const logic w, s` (spec §4.3).
func NewConstLogic(symbols string) (*ConstInst, error) {
	if len(symbols) == 0 {
		return nil, constructionErrorf(OpConstLogic, "width must be >= 1")
	}
	for _, r := range symbols {
		if !types.IsLogicSymbol(r) {
			return nil, constructionErrorf(OpConstLogic, "invalid nine-value symbol %q", r)
		}
	}
	c := &ConstInst{
		instBase: newInstBase(OpConstLogic, types.Logic{Width: len(symbols)}, nil),
		Payload:  ConstPayload{Logic: symbols},
	}
	return c, nil
}

// NewConstTime builds `const time ps, d` (spec §4.3).
func NewConstTime(ps, delta int64) (*ConstInst, error) {
	if ps < 0 {
		return nil, constructionErrorf(OpConstTime, "picosecond value must be >= 0, got %d", ps)
	}
	c := &ConstInst{
		instBase: newInstBase(OpConstTime, types.Time{}, nil),
		Payload:  ConstPayload{TimePS: ps, TimeDlt: delta},
	}
	return c, nil
}

var arithmeticOps = map[Opcode]bool{
	OpAdd: true, OpSub: true, OpMul: true, OpUDiv: true, OpSDiv: true, OpURem: true, OpSRem: true,
}
var bitwiseOps = map[Opcode]bool{OpAnd: true, OpOr: true, OpXor: true}
var shiftOps = map[Opcode]bool{OpShl: true, OpLShr: true, OpAShr: true}

// NewBinary builds any of add/sub/mul/udiv/sdiv/urem/srem, and/or/xor,
// shl/lshr/ashr, and the ten eq/ne/ult/.../sge comparisons (spec §4.3).
func NewBinary(op Opcode, a, b Value) (*BinaryInst, error) {
	switch {
	case arithmeticOps[op]:
		wa, okA := a.Type().(types.Int)
		wb, okB := b.Type().(types.Int)
		if !okA || !okB || wa.Width != wb.Width {
			return nil, constructionErrorf(op, "operands must be Int of equal width, got %s and %s", a.Type(), b.Type())
		}
		return newBinaryInst(op, a, b, wa), nil

	case bitwiseOps[op]:
		if ai, aok := a.Type().(types.Int); aok {
			bi, bok := b.Type().(types.Int)
			if !bok || bi.Width != ai.Width {
				return nil, constructionErrorf(op, "operands must both be Int of equal width, got %s and %s", a.Type(), b.Type())
			}
			return newBinaryInst(op, a, b, ai), nil
		}
		if al, aok := a.Type().(types.Logic); aok {
			bl, bok := b.Type().(types.Logic)
			if !bok || bl.Width != al.Width {
				return nil, constructionErrorf(op, "operands must both be Logic of equal width, got %s and %s", a.Type(), b.Type())
			}
			return newBinaryInst(op, a, b, al), nil
		}
		return nil, constructionErrorf(op, "operands must be Int or Logic, got %s", a.Type())

	case shiftOps[op]:
		wa, okA := a.Type().(types.Int)
		_, okB := b.Type().(types.Int)
		if !okA || !okB {
			return nil, constructionErrorf(op, "operands must be Int, got %s and %s", a.Type(), b.Type())
		}
		return newBinaryInst(op, a, b, wa), nil

	case comparisonOps[op]:
		wa, okA := a.Type().(types.Int)
		wb, okB := b.Type().(types.Int)
		if !okA || !okB || wa.Width != wb.Width {
			return nil, constructionErrorf(op, "operands must be Int of equal width, got %s and %s", a.Type(), b.Type())
		}
		return newBinaryInst(op, a, b, types.Int{Width: 1}), nil
	}
	return nil, constructionErrorf(op, "not a binary opcode")
}

func newBinaryInst(op Opcode, a, b Value, result types.Type) *BinaryInst {
	inst := &BinaryInst{instBase: newInstBase(op, result, []Value{a, b})}
	inst.attachOperands(inst, []Value{a, b})
	return inst
}

// NewNot builds the unary `not` (spec §4.3).
func NewNot(a Value) (*NotInst, error) {
	switch a.Type().(type) {
	case types.Int, types.Logic:
	default:
		return nil, constructionErrorf(OpNot, "operand must be Int or Logic, got %s", a.Type())
	}
	inst := &NotInst{instBase: newInstBase(OpNot, a.Type(), []Value{a})}
	inst.attachOperands(inst, []Value{a})
	return inst, nil
}

func isPowerOfTwo(n int) bool { return n > 0 && n&(n-1) == 0 }

func log2(n int) int {
	r := 0
	for n > 1 {
		n >>= 1
		r++
	}
	return r
}

// NewMux builds `mux` (spec §4.3). When the array length is a power of
// two, the selector width must match exactly; otherwise the selector is
// accepted at any width (the "arbitrary with saturation policy" case),
// consistent with the Open Question decision recorded in SPEC_FULL.md.
func NewMux(sel Value, arr Value) (*MuxInst, error) {
	selInt, ok := sel.Type().(types.Int)
	if !ok {
		return nil, constructionErrorf(OpMux, "selector must be Int, got %s", sel.Type())
	}
	arrTy, ok := arr.Type().(types.Array)
	if !ok {
		return nil, constructionErrorf(OpMux, "second operand must be Array, got %s", arr.Type())
	}
	if isPowerOfTwo(arrTy.Len) && selInt.Width != log2(arrTy.Len) {
		return nil, constructionErrorf(OpMux, "selector width %d does not match array of %d elements (want i%d)", selInt.Width, arrTy.Len, log2(arrTy.Len))
	}
	inst := &MuxInst{instBase: newInstBase(OpMux, arrTy.Elem, []Value{sel, arr})}
	inst.attachOperands(inst, []Value{sel, arr})
	return inst, nil
}

// NewExtract builds `extract target, i` (spec §4.3). For Struct, the
// index must be a static field index. For Array, Int, and Logic, the
// index may be static or a dynamic Value; Int/Logic extraction selects a
// single bit.
func NewExtract(target Value, index ExtractIndex) (*ExtractInst, error) {
	var result types.Type
	switch t := target.Type().(type) {
	case types.Struct:
		if index.Const == nil {
			return nil, constructionErrorf(OpExtract, "extracting from a Struct requires a static field index")
		}
		i := int(*index.Const)
		if i < 0 || i >= len(t.Fields) {
			return nil, constructionErrorf(OpExtract, "field index %d out of range for %s", i, t)
		}
		result = t.Fields[i]
	case types.Array:
		result = t.Elem
	case types.Int:
		result = types.Int{Width: 1}
	case types.Logic:
		result = types.Logic{Width: 1}
	default:
		return nil, constructionErrorf(OpExtract, "target must be Struct, Array, Int, or Logic, got %s", target.Type())
	}
	operands := []Value{target}
	if index.Value != nil {
		operands = append(operands, index.Value)
	}
	inst := &ExtractInst{instBase: newInstBase(OpExtract, result, operands), Index: index}
	inst.attachOperands(inst, operands)
	return inst, nil
}

// NewInsert builds `insert target, i, v` (spec §4.3): result has the same
// type as target.
func NewInsert(target Value, index ExtractIndex, elem Value) (*InsertInst, error) {
	var want types.Type
	switch t := target.Type().(type) {
	case types.Struct:
		if index.Const == nil {
			return nil, constructionErrorf(OpInsert, "inserting into a Struct requires a static field index")
		}
		i := int(*index.Const)
		if i < 0 || i >= len(t.Fields) {
			return nil, constructionErrorf(OpInsert, "field index %d out of range for %s", i, t)
		}
		want = t.Fields[i]
	case types.Array:
		want = t.Elem
	case types.Int:
		want = types.Int{Width: 1}
	case types.Logic:
		want = types.Logic{Width: 1}
	default:
		return nil, constructionErrorf(OpInsert, "target must be Struct, Array, Int, or Logic, got %s", target.Type())
	}
	if !want.Equal(elem.Type()) {
		return nil, constructionErrorf(OpInsert, "element type %s does not match expected %s", elem.Type(), want)
	}
	operands := []Value{target}
	if index.Value != nil {
		operands = append(operands, index.Value)
	}
	operands = append(operands, elem)
	inst := &InsertInst{instBase: newInstBase(OpInsert, target.Type(), operands), Index: index}
	inst.attachOperands(inst, operands)
	return inst, nil
}

// NewReg builds `reg value, strobe` (spec §4.3, §4.8).
func NewReg(value, strobe Value) (*RegInst, error) {
	if w, ok := strobe.Type().(types.Int); !ok || w.Width != 1 {
		return nil, constructionErrorf(OpReg, "strobe must be i1, got %s", strobe.Type())
	}
	inst := &RegInst{instBase: newInstBase(OpReg, value.Type(), []Value{value, strobe})}
	inst.attachOperands(inst, []Value{value, strobe})
	return inst, nil
}

// NewSig declares a signal inside an entity (spec §4.3 `sig T`).
func NewSig(elem types.Type) (*SigInst, error) {
	inst := &SigInst{instBase: newInstBase(OpSig, types.Signal{Elem: elem}, nil)}
	return inst, nil
}

// NewPrb samples a signal's current value (spec §4.3 `prb`).
func NewPrb(sig Value) (*PrbInst, error) {
	s, ok := sig.Type().(types.Signal)
	if !ok {
		return nil, constructionErrorf(OpPrb, "operand must be Signal(T), got %s", sig.Type())
	}
	inst := &PrbInst{instBase: newInstBase(OpPrb, s.Elem, []Value{sig})}
	inst.attachOperands(inst, []Value{sig})
	return inst, nil
}

// NewDrv builds the ungated `drv s, v, delay` (spec §4.3).
func NewDrv(sig, val, delay Value) (*DrvInst, error) {
	return newDrv(sig, val, delay, nil)
}

// NewDrvGated builds the gated `drv s if g, v, delay` (spec §4.3).
func NewDrvGated(sig, val, delay, gate Value) (*DrvInst, error) {
	if w, ok := gate.Type().(types.Int); !ok || w.Width != 1 {
		return nil, constructionErrorf(OpDrv, "gate must be i1, got %s", gate.Type())
	}
	return newDrv(sig, val, delay, gate)
}

func newDrv(sig, val, delay, gate Value) (*DrvInst, error) {
	s, ok := sig.Type().(types.Signal)
	if !ok {
		return nil, constructionErrorf(OpDrv, "first operand must be Signal(T), got %s", sig.Type())
	}
	if !s.Elem.Equal(val.Type()) {
		return nil, constructionErrorf(OpDrv, "value type %s does not match signal element type %s", val.Type(), s.Elem)
	}
	if _, ok := delay.Type().(types.Time); !ok {
		return nil, constructionErrorf(OpDrv, "delay must be Time, got %s", delay.Type())
	}
	operands := []Value{sig, val, delay}
	gated := gate != nil
	if gated {
		operands = append(operands, gate)
	}
	inst := &DrvInst{instBase: newInstBase(OpDrv, types.Void{}, operands), Gated: gated}
	inst.attachOperands(inst, operands)
	return inst, nil
}

// NewBr builds the unconditional `br target` (spec §4.3).
func NewBr(target *Block) (*BrInst, error) {
	if target == nil {
		return nil, constructionErrorf(OpBr, "target must not be nil")
	}
	inst := &BrInst{instBase: newInstBase(OpBr, types.Void{}, []Value{target})}
	inst.attachOperands(inst, []Value{target})
	return inst, nil
}

// NewCondBr builds the conditional `br cond, t1, t0` (spec §4.3).
func NewCondBr(cond Value, t1, t0 *Block) (*BrInst, error) {
	if w, ok := cond.Type().(types.Int); !ok || w.Width != 1 {
		return nil, constructionErrorf(OpBr, "condition must be i1, got %s", cond.Type())
	}
	if t1 == nil || t0 == nil {
		return nil, constructionErrorf(OpBr, "both branch targets must not be nil")
	}
	operands := []Value{cond, t1, t0}
	inst := &BrInst{instBase: newInstBase(OpBr, types.Void{}, operands), condOperand: true}
	inst.attachOperands(inst, operands)
	return inst, nil
}

// NewRet builds `ret` / `ret v...` (spec §4.3). Whether the values match
// the enclosing unit's return signature is checked by the verifier
// (invariant 1), since a bare Ret doesn't know its unit until appended.
func NewRet(values ...Value) (*RetInst, error) {
	operands := make([]Value, len(values))
	copy(operands, values)
	inst := &RetInst{instBase: newInstBase(OpRet, types.Void{}, operands)}
	inst.attachOperands(inst, operands)
	return inst, nil
}

// NewWait builds `wait target, s1...sn[, for t]` (spec §4.3). Every signal
// operand must be of Signal type; timeout, if present, must be Time.
func NewWait(target *Block, signals []Value, timeout Value) (*WaitInst, error) {
	if target == nil {
		return nil, constructionErrorf(OpWait, "resume target must not be nil")
	}
	for _, s := range signals {
		if !types.IsSignal(s.Type()) {
			return nil, constructionErrorf(OpWait, "sensitivity operand must be a Signal, got %s", s.Type())
		}
	}
	if timeout != nil {
		if _, ok := timeout.Type().(types.Time); !ok {
			return nil, constructionErrorf(OpWait, "timeout must be Time, got %s", timeout.Type())
		}
	}
	operands := make([]Value, 0, len(signals)+2)
	operands = append(operands, target)
	operands = append(operands, signals...)
	hasTimeout := timeout != nil
	if hasTimeout {
		operands = append(operands, timeout)
	}
	inst := &WaitInst{instBase: newInstBase(OpWait, types.Void{}, operands), hasTimeout: hasTimeout}
	inst.attachOperands(inst, operands)
	return inst, nil
}

// NewHalt builds the terminator that never resumes (spec §4.3 `halt`).
func NewHalt() (*HaltInst, error) {
	inst := &HaltInst{instBase: newInstBase(OpHalt, types.Void{}, nil)}
	return inst, nil
}

// NewCall builds `call f, args...`, functions only (spec §4.3). The
// argument list is checked eagerly against f's parameter signature since f
// is already known to the caller; the result is a Struct of f's outputs.
func NewCall(f *Unit, args []Value) (*CallInst, error) {
	if f.UnitKind() != UnitFunction {
		return nil, constructionErrorf(OpCall, "call target %s must be a function", f.Name())
	}
	if len(args) != len(f.Params) {
		return nil, constructionErrorf(OpCall, "%s expects %d arguments, got %d", f.Name(), len(f.Params), len(args))
	}
	for i, p := range f.Params {
		if !p.Type().Equal(args[i].Type()) {
			return nil, constructionErrorf(OpCall, "argument %d of %s has type %s, want %s", i, f.Name(), args[i].Type(), p.Type())
		}
	}
	outs := make([]types.Type, len(f.Outputs))
	for i, o := range f.Outputs {
		outs[i] = o.Type()
	}
	inst := &CallInst{instBase: newInstBase(OpCall, types.Struct{Fields: outs}, args), Callee: f}
	inst.attachOperands(inst, args)
	return inst, nil
}

// NewInstance builds `inst U, ins..., outs...`, entities only (spec §4.3).
func NewInstance(u *Unit, ins, outs []Value) (*InstanceInst, error) {
	if len(ins) != len(u.Params) {
		return nil, constructionErrorf(OpInstance, "%s expects %d inputs, got %d", u.Name(), len(u.Params), len(ins))
	}
	if len(outs) != len(u.Outputs) {
		return nil, constructionErrorf(OpInstance, "%s expects %d outputs, got %d", u.Name(), len(u.Outputs), len(outs))
	}
	for i, p := range u.Params {
		if !p.Type().Equal(ins[i].Type()) {
			return nil, constructionErrorf(OpInstance, "input %d of %s has type %s, want %s", i, u.Name(), ins[i].Type(), p.Type())
		}
	}
	for i, p := range u.Outputs {
		if !p.Type().Equal(outs[i].Type()) {
			return nil, constructionErrorf(OpInstance, "output %d of %s has type %s, want %s", i, u.Name(), outs[i].Type(), p.Type())
		}
	}
	operands := make([]Value, 0, len(ins)+len(outs))
	operands = append(operands, ins...)
	operands = append(operands, outs...)
	inst := &InstanceInst{
		instBase: newInstBase(OpInstance, types.Void{}, operands),
		Callee:   u, NumIns: len(ins), NumOuts: len(outs),
	}
	inst.attachOperands(inst, operands)
	return inst, nil
}
