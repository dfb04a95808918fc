package asm

import (
	"testing"

	"github.com/stretchr/testify/require"

	"llhd/internal/ir"
)

const combinationalEntity = `
entity @buf (%clk: i1$) -> (%q: i1$) {
  %pre = prb %clk
  %delay = const time 0s 0d
  drv %q, %pre, %delay
}
`

func TestParseAndBuildEntity(t *testing.T) {
	tree, err := ParseString("test", combinationalEntity)
	require.NoError(t, err)

	m, err := Build("test", tree)
	require.NoError(t, err)

	u, ok := m.Unit("buf")
	require.True(t, ok)
	require.Equal(t, ir.UnitEntity, u.UnitKind())
	require.Len(t, u.Instructions(), 3)
}

const dffProcess = `
proc @dff (%clk: i1$, %d: i1$) -> (%q: i1$) {
%sample:
  wait %resume, %clk
%resume:
  %edge = prb %clk
  %dval = prb %d
  %delay = const time 0s 0d
  drv %q if %edge, %dval, %delay
  br %sample
}
`

func TestParseAndBuildProcess(t *testing.T) {
	tree, err := ParseString("test", dffProcess)
	require.NoError(t, err)

	m, err := Build("test", tree)
	require.NoError(t, err)

	u, ok := m.Unit("dff")
	require.True(t, ok)
	require.Equal(t, ir.UnitProcess, u.UnitKind())
	require.Len(t, u.Blocks, 2)
}

func TestRoundTripEntityText(t *testing.T) {
	tree, err := ParseString("test", combinationalEntity)
	require.NoError(t, err)
	m, err := Build("test", tree)
	require.NoError(t, err)

	printed := Print(m)

	tree2, err := ParseString("test2", printed)
	require.NoError(t, err)
	m2, err := Build("test2", tree2)
	require.NoError(t, err)

	u1, _ := m.Unit("buf")
	u2, _ := m2.Unit("buf")
	require.Equal(t, len(u1.Instructions()), len(u2.Instructions()))
	for i, inst1 := range u1.Instructions() {
		inst2 := u2.Instructions()[i]
		require.Equal(t, inst1.Opcode(), inst2.Opcode())
		require.True(t, inst1.Type().Equal(inst2.Type()))
	}
}

func TestParseRejectsUndefinedValue(t *testing.T) {
	const bad = `
entity @e (%a: i1$) -> () {
  %x = prb %nonexistent
}
`
	tree, err := ParseString("test", bad)
	require.NoError(t, err)
	_, err = Build("test", tree)
	require.Error(t, err)
}
