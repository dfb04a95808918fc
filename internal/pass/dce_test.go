package pass

import (
	"testing"

	"github.com/stretchr/testify/require"

	"llhd/internal/ir"
	"llhd/internal/types"
)

func TestDCERemovesDeadConstants(t *testing.T) {
	m := ir.NewModule("m")
	e := ir.NewUnit(ir.UnitEntity, "e", nil, nil)
	require.NoError(t, m.AddUnit(e))

	dead, err := ir.NewConstInt(8, 1)
	require.NoError(t, err)
	require.NoError(t, e.AppendInstruction(dead))

	res := (&DCE{}).Run(m)
	require.Equal(t, Applied, res.Outcome)
	require.Empty(t, e.Instructions())
}

func TestDCERemovesTransitivelyDeadChain(t *testing.T) {
	m := ir.NewModule("m")
	e := ir.NewUnit(ir.UnitEntity, "e", nil, nil)
	require.NoError(t, m.AddUnit(e))

	k, err := ir.NewConstInt(1, 1)
	require.NoError(t, err)
	require.NoError(t, e.AppendInstruction(k))
	not, err := ir.NewNot(k)
	require.NoError(t, err)
	require.NoError(t, e.AppendInstruction(not))

	require.NotEmpty(t, k.Uses(), "const should have one use from not before DCE runs")

	res := (&DCE{}).Run(m)
	require.Equal(t, Applied, res.Outcome)
	require.Empty(t, e.Instructions(), "both the dead not and the const it made dead in turn must be erased")
}

func TestDCEDeclinesWhenNothingDead(t *testing.T) {
	m := ir.NewModule("m")
	e := ir.NewUnit(ir.UnitEntity, "e", []*ir.Param{ir.NewParam("a", types.Signal{Elem: types.Int{Width: 1}})}, nil)
	require.NoError(t, m.AddUnit(e))

	prb, err := ir.NewPrb(e.Params[0])
	require.NoError(t, err)
	require.NoError(t, e.AppendInstruction(prb))
	delay, err := ir.NewConstTime(0, 0)
	require.NoError(t, err)
	require.NoError(t, e.AppendInstruction(delay))
	sig, err := ir.NewSig(types.Int{Width: 1})
	require.NoError(t, err)
	require.NoError(t, e.AppendInstruction(sig))
	drv, err := ir.NewDrv(sig, prb, delay)
	require.NoError(t, err)
	require.NoError(t, e.AppendInstruction(drv))

	res := (&DCE{}).Run(m)
	require.Equal(t, Declined, res.Outcome)
}
