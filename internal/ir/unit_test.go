package ir

import (
	"testing"

	"github.com/stretchr/testify/require"

	"llhd/internal/types"
)

func TestAppendBlockRejectsNonBlockKinds(t *testing.T) {
	e := NewUnit(UnitEntity, "e", nil, nil)
	_, err := e.AppendBlock("entry")
	require.Error(t, err)

	d := NewUnit(UnitDeclaration, "d", nil, nil)
	_, err = d.AppendBlock("entry")
	require.Error(t, err)

	f := NewUnit(UnitFunction, "f", nil, nil)
	b, err := f.AppendBlock("entry")
	require.NoError(t, err)
	require.Same(t, f, b.Parent())
}

func TestAppendInstructionRequiresEntity(t *testing.T) {
	f := NewUnit(UnitFunction, "f", nil, nil)
	c := mustConstInt(t, 8, 1)
	require.Error(t, f.AppendInstruction(c))

	e := NewUnit(UnitEntity, "e", nil, nil)
	require.NoError(t, e.AppendInstruction(c))
	require.Same(t, e, c.Entity())
	require.Len(t, e.Instructions(), 1)

	e.RemoveInstruction(c)
	require.Nil(t, c.Entity())
	require.Empty(t, e.Instructions())
}

func TestUnitSignature(t *testing.T) {
	u := NewUnit(UnitFunction, "add1",
		[]*Param{NewParam("a", i32())},
		[]*Param{NewParam("r", i32())},
	)
	params, outputs := u.Signature()
	require.Equal(t, []types.Type{i32()}, params)
	require.Equal(t, []types.Type{i32()}, outputs)
}
