package ir

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestReplaceAllUsesWithRewritesEveryUse asserts testable property 2:
// after replace_all_uses_with(old, new), no instruction still references
// old, and new's use count grew by exactly the number moved.
func TestReplaceAllUsesWithRewritesEveryUse(t *testing.T) {
	a := mustConstInt(t, 32, 1)
	b := mustConstInt(t, 32, 2)
	add1, err := NewBinary(OpAdd, a, b)
	require.NoError(t, err)
	add2, err := NewBinary(OpAdd, a, a)
	require.NoError(t, err)

	require.Len(t, a.Uses(), 3)

	repl := mustConstInt(t, 32, 9)
	require.NoError(t, ReplaceAllUsesWith(a, repl))

	require.Empty(t, a.Uses())
	require.Len(t, repl.Uses(), 3)
	require.Same(t, Value(repl), add1.LHS())
	require.Same(t, Value(repl), add2.LHS())
	require.Same(t, Value(repl), add2.RHS())
}

func TestReplaceAllUsesWithRejectsTypeMismatch(t *testing.T) {
	a := mustConstInt(t, 32, 1)
	b := mustConstInt(t, 16, 1)
	err := ReplaceAllUsesWith(a, b)
	require.Error(t, err)
}

func TestEraseIfUnusedRemovesDeadValue(t *testing.T) {
	e := NewUnit(UnitEntity, "e", nil, nil)
	a := mustConstInt(t, 8, 1)
	require.NoError(t, e.AppendInstruction(a))

	require.True(t, EraseIfUnused(a))
	require.Empty(t, e.Instructions())
}

// TestEraseIfUnusedClearsOperandUses asserts spec §4.2's erase_if_unused
// ordering: erasing a dead instruction must clear its operand uses so a
// now-unused operand can itself be collected by a later DCE pass.
func TestEraseIfUnusedClearsOperandUses(t *testing.T) {
	e := NewUnit(UnitEntity, "e", nil, nil)
	k := mustConstInt(t, 8, 1)
	require.NoError(t, e.AppendInstruction(k))
	not, err := NewNot(k)
	require.NoError(t, err)
	require.NoError(t, e.AppendInstruction(not))

	require.Len(t, k.Uses(), 1)

	require.True(t, EraseIfUnused(not))
	require.Empty(t, k.Uses(), "erasing not must clear its operand's use-list so k becomes unused too")
	require.True(t, EraseIfUnused(k))
}

func TestEraseIfUnusedKeepsSideEffects(t *testing.T) {
	e := NewUnit(UnitEntity, "e", nil, nil)
	sig, err := NewSig(i8())
	require.NoError(t, err)
	require.NoError(t, e.AppendInstruction(sig))
	val := mustConstInt(t, 8, 1)
	require.NoError(t, e.AppendInstruction(val))
	delay, err := NewConstTime(0, 0)
	require.NoError(t, err)
	require.NoError(t, e.AppendInstruction(delay))
	drv, err := NewDrv(sig, val, delay)
	require.NoError(t, err)
	require.NoError(t, e.AppendInstruction(drv))

	require.False(t, EraseIfUnused(drv))
	require.Len(t, e.Instructions(), 4)
}
