package asm

import (
	"fmt"
	"strconv"
	"strings"

	"llhd/internal/ir"
	"llhd/internal/types"
)

// Build turns a parsed AssemblyFile into a *ir.Module, named moduleName
// (the textual surface of spec §6 has no module-name token of its own;
// the driver supplies one, typically the source file's base name).
// Grounded on internal/ir/builder.go's role of turning a parse tree into
// typed IR through exactly the core constructors, generalized away from
// EVM-contract specifics to this IR's four unit kinds.
//
// Building happens in two passes so forward references resolve: first
// every unit is declared under its name with its full signature (so
// `call`/`inst` can reference a unit appearing later in the file), then
// every body is filled in.
func Build(moduleName string, file *AssemblyFile) (*ir.Module, error) {
	m := ir.NewModule(moduleName)

	for _, un := range file.Units {
		unit, err := declareUnit(un)
		if err != nil {
			return nil, err
		}
		if err := m.AddUnit(unit); err != nil {
			return nil, err
		}
	}

	for _, un := range file.Units {
		if err := fillUnit(m, un); err != nil {
			return nil, err
		}
	}

	return m, nil
}

func declareUnit(un *UnitNode) (*ir.Unit, error) {
	switch {
	case un.Func != nil:
		params, err := buildParams(un.Func.Params)
		if err != nil {
			return nil, err
		}
		ret, err := buildType(un.Func.Ret)
		if err != nil {
			return nil, err
		}
		var outs []*ir.Param
		if _, isVoid := ret.(types.Void); !isVoid {
			outs = []*ir.Param{ir.NewParam("", ret)}
		}
		return ir.NewUnit(ir.UnitFunction, un.Func.Name[1:], params, outs), nil

	case un.Proc != nil:
		ins, err := buildParams(un.Proc.Ins)
		if err != nil {
			return nil, err
		}
		outs, err := buildParams(un.Proc.Outs)
		if err != nil {
			return nil, err
		}
		return ir.NewUnit(ir.UnitProcess, un.Proc.Name[1:], ins, outs), nil

	case un.Entity != nil:
		ins, err := buildParams(un.Entity.Ins)
		if err != nil {
			return nil, err
		}
		outs, err := buildParams(un.Entity.Outs)
		if err != nil {
			return nil, err
		}
		return ir.NewUnit(ir.UnitEntity, un.Entity.Name[1:], ins, outs), nil

	case un.Decl != nil:
		ins, err := buildAnonParams(un.Decl.Ins)
		if err != nil {
			return nil, err
		}
		outs, err := buildAnonParams(un.Decl.Outs)
		if err != nil {
			return nil, err
		}
		return ir.NewUnit(ir.UnitDeclaration, un.Decl.Name[1:], ins, outs), nil
	}
	return nil, fmt.Errorf("empty unit node")
}

func fillUnit(m *ir.Module, un *UnitNode) error {
	switch {
	case un.Func != nil:
		u, _ := m.Unit(un.Func.Name[1:])
		return fillBlockBody(m, u, un.Func.Body)
	case un.Proc != nil:
		u, _ := m.Unit(un.Proc.Name[1:])
		return fillBlockBody(m, u, un.Proc.Body)
	case un.Entity != nil:
		u, _ := m.Unit(un.Entity.Name[1:])
		return fillEntityBody(m, u, un.Entity.Insts)
	case un.Decl != nil:
		return nil
	}
	return nil
}

func buildParams(nodes []*ParamNode) ([]*ir.Param, error) {
	out := make([]*ir.Param, len(nodes))
	for i, n := range nodes {
		typ, err := buildType(n.Type)
		if err != nil {
			return nil, err
		}
		out[i] = ir.NewParam(n.Name[1:], typ)
	}
	return out, nil
}

func buildAnonParams(nodes []*TypeNode) ([]*ir.Param, error) {
	out := make([]*ir.Param, len(nodes))
	for i, n := range nodes {
		typ, err := buildType(n)
		if err != nil {
			return nil, err
		}
		out[i] = ir.NewParam("", typ)
	}
	return out, nil
}

func buildType(n *TypeNode) (types.Type, error) {
	var base types.Type
	switch {
	case n.Void:
		base = types.Void{}
	case n.Label:
		base = types.Label{}
	case n.Time:
		base = types.Time{}
	case n.Int != "":
		w, err := strconv.Atoi(n.Int[1:])
		if err != nil {
			return nil, fmt.Errorf("bad integer width %q: %w", n.Int, err)
		}
		base = types.Int{Width: w}
	case n.Logic != "":
		w, err := strconv.Atoi(n.Logic[1:])
		if err != nil {
			return nil, fmt.Errorf("bad logic width %q: %w", n.Logic, err)
		}
		base = types.Logic{Width: w}
	case n.Array != nil:
		elem, err := buildType(n.Array.Elem)
		if err != nil {
			return nil, err
		}
		base = types.Array{Len: int(n.Array.Len), Elem: elem}
	case n.Struct != nil:
		fields := make([]types.Type, len(n.Struct.Fields))
		for i, f := range n.Struct.Fields {
			elem, err := buildType(f)
			if err != nil {
				return nil, err
			}
			fields[i] = elem
		}
		base = types.Struct{Fields: fields}
	default:
		return nil, fmt.Errorf("empty type node")
	}
	for _, sigil := range n.Postfix {
		switch sigil {
		case "$":
			base = types.Signal{Elem: base}
		case "*":
			base = types.Pointer{Elem: base}
		default:
			return nil, fmt.Errorf("unknown type postfix %q", sigil)
		}
	}
	return base, nil
}

// scope maps a textual value reference (including its `%` sigil, e.g.
// "%entry" or "%3") to the ir.Value it resolves to, within one unit.
type scope struct {
	values map[string]ir.Value
	anon   int
}

func newScope() *scope { return &scope{values: map[string]ir.Value{}} }

func (s *scope) bind(name string, v ir.Value) string {
	if name == "" {
		name = "%" + strconv.Itoa(s.anon)
		s.anon++
	}
	s.values[name] = v
	v.SetName(strings.TrimPrefix(name, "%"))
	return name
}

func (s *scope) resolve(ref *ValueRef) (ir.Value, error) {
	key := ref.Named
	if key == "" {
		key = ref.Anon
	}
	v, ok := s.values[key]
	if !ok {
		return nil, fmt.Errorf("undefined value %q", key)
	}
	return v, nil
}

func (s *scope) resolveBlock(ref *ValueRef) (*ir.Block, error) {
	v, err := s.resolve(ref)
	if err != nil {
		return nil, err
	}
	b, ok := v.(*ir.Block)
	if !ok {
		return nil, fmt.Errorf("%s is not a block", v.Name())
	}
	return b, nil
}

func fillBlockBody(m *ir.Module, u *ir.Unit, body *BlockBody) error {
	sc := newScope()
	for i, p := range u.Params {
		sc.values["%"+p.Name()] = u.Params[i]
	}
	for i, p := range u.Outputs {
		if p.Name() != "" {
			sc.values["%"+p.Name()] = u.Outputs[i]
		}
	}

	blocks := make([]*ir.Block, len(body.Blocks))
	for i, bn := range body.Blocks {
		b, err := u.AppendBlock(strings.TrimPrefix(bn.Label, "%"))
		if err != nil {
			return err
		}
		blocks[i] = b
		sc.values[bn.Label] = b
	}

	for i, bn := range body.Blocks {
		for _, in := range bn.Insts {
			inst, err := buildInstruction(m, sc, in)
			if err != nil {
				return err
			}
			if err := blocks[i].Append(inst); err != nil {
				return err
			}
		}
	}
	return nil
}

func fillEntityBody(m *ir.Module, u *ir.Unit, insts []*InstructionNode) error {
	sc := newScope()
	for i, p := range u.Params {
		sc.values["%"+p.Name()] = u.Params[i]
	}
	for i, p := range u.Outputs {
		sc.values["%"+p.Name()] = u.Outputs[i]
	}

	for _, in := range insts {
		inst, err := buildInstruction(m, sc, in)
		if err != nil {
			return err
		}
		if err := u.AppendInstruction(inst); err != nil {
			return err
		}
	}
	return nil
}

func buildIndex(sc *scope, n *IndexNode) (ir.ExtractIndex, error) {
	if n.Const != nil {
		return ir.ExtractIndex{Const: n.Const}, nil
	}
	v, err := sc.resolve(n.Value)
	if err != nil {
		return ir.ExtractIndex{}, err
	}
	return ir.ExtractIndex{Value: v}, nil
}

func buildInstruction(m *ir.Module, sc *scope, n *InstructionNode) (ir.Instruction, error) {
	op := n.Op
	var inst ir.Instruction
	var err error

	switch {
	case op.ConstInt != nil:
		w, werr := strconv.Atoi(op.ConstInt.Width[1:])
		if werr != nil {
			return nil, werr
		}
		inst, err = ir.NewConstInt(w, op.ConstInt.K)

	case op.ConstLogic != nil:
		inst, err = ir.NewConstLogic(strings.Trim(op.ConstLogic.Symbols, `"`))

	case op.ConstTime != nil:
		inst, err = ir.NewConstTime(op.ConstTime.PS, op.ConstTime.Delta)

	case op.Binary != nil:
		var a, b ir.Value
		if a, err = sc.resolve(op.Binary.A); err == nil {
			if b, err = sc.resolve(op.Binary.B); err == nil {
				inst, err = ir.NewBinary(binaryOpcode(op.Binary.Opcode), a, b)
			}
		}

	case op.Not != nil:
		var a ir.Value
		if a, err = sc.resolve(op.Not.A); err == nil {
			inst, err = ir.NewNot(a)
		}

	case op.Mux != nil:
		var sel, arr ir.Value
		if sel, err = sc.resolve(op.Mux.Sel); err == nil {
			if arr, err = sc.resolve(op.Mux.Arr); err == nil {
				inst, err = ir.NewMux(sel, arr)
			}
		}

	case op.Extract != nil:
		var target ir.Value
		var idx ir.ExtractIndex
		if target, err = sc.resolve(op.Extract.Target); err == nil {
			if idx, err = buildIndex(sc, op.Extract.Index); err == nil {
				inst, err = ir.NewExtract(target, idx)
			}
		}

	case op.Insert != nil:
		var target, elem ir.Value
		var idx ir.ExtractIndex
		if target, err = sc.resolve(op.Insert.Target); err == nil {
			if idx, err = buildIndex(sc, op.Insert.Index); err == nil {
				if elem, err = sc.resolve(op.Insert.Elem); err == nil {
					inst, err = ir.NewInsert(target, idx, elem)
				}
			}
		}

	case op.Reg != nil:
		var v, strobe ir.Value
		if v, err = sc.resolve(op.Reg.Value); err == nil {
			if strobe, err = sc.resolve(op.Reg.Strobe); err == nil {
				inst, err = ir.NewReg(v, strobe)
			}
		}

	case op.Sig != nil:
		var elem types.Type
		if elem, err = buildType(op.Sig.Elem); err == nil {
			inst, err = ir.NewSig(elem)
		}

	case op.Prb != nil:
		var sig ir.Value
		if sig, err = sc.resolve(op.Prb.Signal); err == nil {
			inst, err = ir.NewPrb(sig)
		}

	case op.Drv != nil:
		var sig, val, delay, gate ir.Value
		if sig, err = sc.resolve(op.Drv.Signal); err == nil {
			if val, err = sc.resolve(op.Drv.Val); err == nil {
				if delay, err = sc.resolve(op.Drv.Delay); err == nil {
					if op.Drv.Gate != nil {
						if gate, err = sc.resolve(op.Drv.Gate); err == nil {
							inst, err = ir.NewDrvGated(sig, val, delay, gate)
						}
					} else {
						inst, err = ir.NewDrv(sig, val, delay)
					}
				}
			}
		}

	case op.CondBr != nil:
		var cond ir.Value
		var t1, t0 *ir.Block
		if cond, err = sc.resolve(op.CondBr.Cond); err == nil {
			if t1, err = sc.resolveBlock(op.CondBr.T1); err == nil {
				if t0, err = sc.resolveBlock(op.CondBr.T0); err == nil {
					inst, err = ir.NewCondBr(cond, t1, t0)
				}
			}
		}

	case op.Br != nil:
		var target *ir.Block
		if target, err = sc.resolveBlock(op.Br.Target); err == nil {
			inst, err = ir.NewBr(target)
		}

	case op.Ret != nil:
		values := make([]ir.Value, len(op.Ret.Values))
		for i, r := range op.Ret.Values {
			if values[i], err = sc.resolve(r); err != nil {
				break
			}
		}
		if err == nil {
			inst, err = ir.NewRet(values...)
		}

	case op.Wait != nil:
		var target *ir.Block
		if target, err = sc.resolveBlock(op.Wait.Target); err == nil {
			signals := make([]ir.Value, len(op.Wait.Signals))
			for i, r := range op.Wait.Signals {
				if signals[i], err = sc.resolve(r); err != nil {
					break
				}
			}
			if err == nil {
				var timeout ir.Value
				if op.Wait.Timeout != nil {
					timeout, err = sc.resolve(op.Wait.Timeout)
				}
				if err == nil {
					inst, err = ir.NewWait(target, signals, timeout)
				}
			}
		}

	case op.Halt != nil:
		inst, err = ir.NewHalt()

	case op.Call != nil:
		f, ok := m.Unit(op.Call.Callee[1:])
		if !ok {
			return nil, fmt.Errorf("call to undeclared unit %q", op.Call.Callee)
		}
		args := make([]ir.Value, len(op.Call.Args))
		for i, r := range op.Call.Args {
			if args[i], err = sc.resolve(r); err != nil {
				break
			}
		}
		if err == nil {
			inst, err = ir.NewCall(f, args)
		}

	case op.Inst != nil:
		u, ok := m.Unit(op.Inst.Callee[1:])
		if !ok {
			return nil, fmt.Errorf("inst of undeclared unit %q", op.Inst.Callee)
		}
		if len(op.Inst.Args) != len(u.Params)+len(u.Outputs) {
			return nil, fmt.Errorf("inst %s expects %d ports, got %d", op.Inst.Callee, len(u.Params)+len(u.Outputs), len(op.Inst.Args))
		}
		ports := make([]ir.Value, len(op.Inst.Args))
		for i, r := range op.Inst.Args {
			if ports[i], err = sc.resolve(r); err != nil {
				break
			}
		}
		if err == nil {
			inst, err = ir.NewInstance(u, ports[:len(u.Params)], ports[len(u.Params):])
		}

	default:
		return nil, fmt.Errorf("empty instruction node")
	}

	if err != nil {
		return nil, err
	}
	sc.bind(n.Result, inst)
	return inst, nil
}

var binaryOpcodeByName = map[string]ir.Opcode{
	"add": ir.OpAdd, "sub": ir.OpSub, "mul": ir.OpMul,
	"udiv": ir.OpUDiv, "sdiv": ir.OpSDiv, "urem": ir.OpURem, "srem": ir.OpSRem,
	"and": ir.OpAnd, "or": ir.OpOr, "xor": ir.OpXor,
	"shl": ir.OpShl, "lshr": ir.OpLShr, "ashr": ir.OpAShr,
	"eq": ir.OpEq, "ne": ir.OpNe, "ult": ir.OpUlt, "ugt": ir.OpUgt,
	"ule": ir.OpUle, "uge": ir.OpUge, "slt": ir.OpSlt, "sgt": ir.OpSgt,
	"sle": ir.OpSle, "sge": ir.OpSge,
}

func binaryOpcode(name string) ir.Opcode { return binaryOpcodeByName[name] }
