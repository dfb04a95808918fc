package ir

import "llhd/internal/types"

// UnitKind distinguishes the four container kinds of spec §4.4.
type UnitKind int

const (
	UnitFunction UnitKind = iota
	UnitProcess
	UnitEntity
	UnitDeclaration
)

func (k UnitKind) String() string {
	switch k {
	case UnitFunction:
		return "func"
	case UnitProcess:
		return "proc"
	case UnitEntity:
		return "entity"
	case UnitDeclaration:
		return "declare"
	default:
		return "unit"
	}
}

// Param is a named, typed formal: a unit's input parameter or output port
// (spec §4.4). It is a Value with no operands and no defining instruction;
// its identity is bound by position in Unit.Params / Unit.Outputs.
type Param struct {
	valueBase
}

func newParam(name string, typ types.Type) *Param {
	p := &Param{}
	p.typ = typ
	p.name = name
	return p
}

func (p *Param) Kind() ValueKind { return ValueParam }

// Unit is one of spec §4.4's four container kinds: Function and Process
// hold an ordered list of Blocks forming a CFG; Entity holds a flat,
// order-insensitive instruction list and no blocks; Declaration holds
// only a signature. All four share a name and an input/output signature,
// which is all a Declaration ever has.
type Unit struct {
	valueBase
	kind    UnitKind
	Params  []*Param // input parameters (Function, Process) or input ports (Entity)
	Outputs []*Param // return values (Function) or output ports (Process, Entity)

	Blocks []*Block // Function, Process only

	insts []Instruction // Entity only: flat, DAG-only instruction list
}

// NewUnit creates an empty unit of the given kind and signature. Blocks or
// the flat instruction list are populated afterward via AppendBlock /
// AppendInstruction as appropriate to kind.
func NewUnit(kind UnitKind, name string, params, outputs []*Param) *Unit {
	u := &Unit{kind: kind, Params: params, Outputs: outputs}
	u.typ = types.Label{}
	u.name = name
	return u
}

func (u *Unit) Kind() ValueKind  { return ValueUnit }
func (u *Unit) UnitKind() UnitKind { return u.kind }

// NewParam declares an input parameter, for use when assembling Params.
func NewParam(name string, typ types.Type) *Param { return newParam(name, typ) }

// AppendBlock creates and appends a new block to a Function or Process.
// Appending a block to an Entity or a Declaration is a construction error,
// matching spec §4.4: "Entity: ... no blocks".
func (u *Unit) AppendBlock(name string) (*Block, error) {
	if u.kind != UnitFunction && u.kind != UnitProcess {
		return nil, constructionErrorf(OpBr, "cannot append a block to a %s unit", u.kind)
	}
	b := newBlock(name)
	b.parent = u
	u.Blocks = append(u.Blocks, b)
	return b, nil
}

// EntryBlock returns the unit's first block, or nil if it has none yet.
func (u *Unit) EntryBlock() *Block {
	if len(u.Blocks) == 0 {
		return nil
	}
	return u.Blocks[0]
}

// AppendInstruction adds inst to an Entity's flat instruction list. The
// DAG-only invariant (spec §4.4 "Entity: ... DAG only, no cycles through
// the use graph except through reg") is checked by the verifier, not
// here, since it requires seeing the whole graph.
func (u *Unit) AppendInstruction(inst Instruction) error {
	if u.kind != UnitEntity {
		return constructionErrorf(inst.Opcode(), "cannot append a free instruction to a %s unit", u.kind)
	}
	if inst.Block() != nil || inst.Entity() != nil {
		return constructionErrorf(inst.Opcode(), "instruction already has a parent")
	}
	inst.setParentEntity(u)
	u.insts = append(u.insts, inst)
	return nil
}

// Instructions returns a snapshot of an Entity's flat instruction list.
func (u *Unit) Instructions() []Instruction {
	out := make([]Instruction, len(u.insts))
	copy(out, u.insts)
	return out
}

// RemoveInstruction unlinks inst from an Entity's instruction list.
func (u *Unit) RemoveInstruction(inst Instruction) {
	for i, existing := range u.insts {
		if existing == inst {
			u.insts = append(u.insts[:i], u.insts[i+1:]...)
			inst.setParentEntity(nil)
			return
		}
	}
}

// AllInstructions walks every instruction owned by the unit, in block
// order for Function/Process or list order for Entity. Declarations
// yield nothing.
func (u *Unit) AllInstructions() []Instruction {
	if u.kind == UnitEntity {
		return u.Instructions()
	}
	var out []Instruction
	for _, b := range u.Blocks {
		out = append(out, b.Instructions()...)
	}
	return out
}

// Signature renders the unit's parameter and output types, mirroring the
// "name, input/output signature" half of spec §4.4 that every kind has in
// common (used by the printer and by call/inst argument checking).
func (u *Unit) Signature() (params, outputs []types.Type) {
	params = make([]types.Type, len(u.Params))
	for i, p := range u.Params {
		params[i] = p.Type()
	}
	outputs = make([]types.Type, len(u.Outputs))
	for i, o := range u.Outputs {
		outputs[i] = o.Type()
	}
	return params, outputs
}
