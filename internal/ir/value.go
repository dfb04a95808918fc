// Package ir implements the typed value/use graph, the instruction set, and
// the container units (Function, Process, Entity, Declaration) described in
// spec §3 and §4. It is the core IR engine: front-ends, the textual
// assembly reader, and the passes all build and mutate Modules through the
// operations exposed here.
package ir

import "llhd/internal/types"

// ValueKind discriminates the concrete variant behind a Value, mirroring
// the "Concrete variants" enumerated in spec §3.
type ValueKind int

const (
	ValueParam ValueKind = iota
	ValueBlock
	ValueConst
	ValueInst
	ValueUnit
)

func (k ValueKind) String() string {
	switch k {
	case ValueParam:
		return "param"
	case ValueBlock:
		return "block"
	case ValueConst:
		return "const"
	case ValueInst:
		return "inst"
	case ValueUnit:
		return "unit"
	default:
		return "unknown"
	}
}

// Value is the abstract node every instruction operand refers to (spec §3).
// It is a sealed interface: Param, *Block, *Unit, and every Instruction
// variant implement it, and nothing outside this package can.
type Value interface {
	Type() types.Type
	Name() string
	SetName(name string)

	// Uses returns a snapshot of the incoming uses of this value. Mutating
	// the returned slice has no effect on the value's real use-list.
	Uses() []*Use

	Kind() ValueKind

	addUse(u *Use)
	removeUse(u *Use)
}

// Use is a directed edge from a user instruction to a used value, labeled
// with the operand position (spec §3 "Use").
type Use struct {
	user  Instruction
	value Value
	pos   int
}

// User returns the instruction that owns this operand slot.
func (u *Use) User() Instruction { return u.user }

// Value returns the value currently referenced by this operand slot.
func (u *Use) Value() Value { return u.value }

// Pos returns the operand position within the user's operand list.
func (u *Use) Pos() int { return u.pos }

// valueBase implements the bookkeeping shared by every Value variant: type,
// optional display name, and the back-reference use-list (spec §3, §4.2).
type valueBase struct {
	typ  types.Type
	name string
	uses []*Use
}

func (v *valueBase) Type() types.Type  { return v.typ }
func (v *valueBase) Name() string      { return v.name }
func (v *valueBase) SetName(n string)  { v.name = n }

func (v *valueBase) Uses() []*Use {
	out := make([]*Use, len(v.uses))
	copy(out, v.uses)
	return out
}

func (v *valueBase) addUse(u *Use) {
	v.uses = append(v.uses, u)
}

func (v *valueBase) removeUse(u *Use) {
	for i, existing := range v.uses {
		if existing == u {
			v.uses = append(v.uses[:i], v.uses[i+1:]...)
			return
		}
	}
}

// newUse links value as the operand at position pos of user, registering
// the edge on both the user's operand list (by the caller) and the value's
// use-list. This and setUseValue are the only primitives that ever touch a
// use-list directly (spec §4.2: "Direct mutation of operand fields without
// updating the used-side's use-list is forbidden").
func newUse(user Instruction, pos int, value Value) *Use {
	u := &Use{user: user, value: value, pos: pos}
	value.addUse(u)
	return u
}

// setUseValue repoints an existing use at a new value, maintaining both
// use-lists. It is the single point through which replace_all_uses_with
// operates.
func setUseValue(u *Use, newValue Value) {
	if u.value == newValue {
		return
	}
	u.value.removeUse(u)
	u.value = newValue
	newValue.addUse(u)
}
