package ir

import "fmt"

// ReplaceAllUsesWith repoints every current use of old to repl, leaving
// old with an empty use-list (spec §3 "Use", testable property 2). It
// refuses a replacement whose type differs from old's, returning an error
// before any use is rewritten instead of leaving a half-rewritten graph.
func ReplaceAllUsesWith(old, repl Value) error {
	if old == repl {
		return nil
	}
	if !old.Type().Equal(repl.Type()) {
		return fmt.Errorf("replace_all_uses_with: %s has type %s, replacement has type %s", old.Name(), old.Type(), repl.Type())
	}
	for _, u := range old.Uses() {
		setUseValue(u, repl)
	}
	return nil
}

// EraseIfUnused removes inst from its parent block or entity when it has
// no remaining uses and no observable side effect, matching the
// dead-code elimination criterion of spec §4.6 ("an instruction with no
// uses and no side effect may be removed"). It reports whether inst was
// erased.
func EraseIfUnused(inst Instruction) bool {
	if len(inst.Uses()) != 0 {
		return false
	}
	if hasSideEffect(inst) {
		return false
	}
	detachOperands(inst)
	if b := inst.Block(); b != nil {
		b.Remove(inst)
		return true
	}
	if e := inst.Entity(); e != nil {
		e.RemoveInstruction(inst)
		return true
	}
	return false
}

// detachOperands clears every operand edge inst owns, decrementing the
// use-count on each operand value so a transitive DCE fixed-point (spec
// §4.2, §4.6) can observe the operand becoming unused in turn. Must run
// before inst is spliced out of its block/entity, per spec §4.2:
// erase_if_unused "deletes the instruction after clearing its operand
// uses".
func detachOperands(inst Instruction) {
	for _, u := range inst.Operands() {
		u.Value().removeUse(u)
	}
}

// hasSideEffect reports whether an instruction must be kept even with no
// uses: terminators, driver/register updates, and signal declarations all
// have effects beyond their result value.
func hasSideEffect(inst Instruction) bool {
	switch inst.Opcode() {
	case OpDrv, OpReg, OpSig, OpCall, OpInstance:
		return true
	}
	return inst.IsTerminator()
}
