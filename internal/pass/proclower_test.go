package pass

import (
	"testing"

	"github.com/stretchr/testify/require"

	"llhd/internal/ir"
	"llhd/internal/types"
)

func TestProcLowerRewritesCombinationalAlwaysBlock(t *testing.T) {
	m := ir.NewModule("m")

	clkT := types.Signal{Elem: types.Int{Width: 1}}
	qT := types.Signal{Elem: types.Int{Width: 1}}
	p := ir.NewUnit(ir.UnitProcess, "buf",
		[]*ir.Param{ir.NewParam("clk", clkT)},
		[]*ir.Param{ir.NewParam("q", qT)})
	require.NoError(t, m.AddUnit(p))

	body, err := p.AppendBlock("body")
	require.NoError(t, err)

	pr, err := ir.NewPrb(p.Params[0])
	require.NoError(t, err)
	require.NoError(t, body.Append(pr))

	delay, err := ir.NewConstTime(0, 0)
	require.NoError(t, err)
	require.NoError(t, body.Append(delay))

	drv, err := ir.NewDrv(p.Outputs[0], pr, delay)
	require.NoError(t, err)
	require.NoError(t, body.Append(drv))

	wait, err := ir.NewWait(body, []ir.Value{p.Params[0]}, nil)
	require.NoError(t, err)
	require.NoError(t, body.Append(wait))

	res := (&ProcLower{}).Run(m)
	require.Equal(t, Applied, res.Outcome)

	lowered, ok := m.Unit("buf")
	require.True(t, ok)
	require.Equal(t, ir.UnitEntity, lowered.UnitKind())
	require.Len(t, lowered.Instructions(), 3)
}

// TestProcLowerClonesSigWithElementType guards against cloneInstruction
// passing a sig instruction's own (already Signal-wrapped) result type
// back into NewSig, which would double-wrap it as Signal(Signal(T))
// instead of preserving Signal(T).
func TestProcLowerClonesSigWithElementType(t *testing.T) {
	m := ir.NewModule("m")

	elemT := types.Int{Width: 1}
	p := ir.NewUnit(ir.UnitProcess, "latch", nil, []*ir.Param{ir.NewParam("q", types.Signal{Elem: elemT})})
	require.NoError(t, m.AddUnit(p))

	body, err := p.AppendBlock("body")
	require.NoError(t, err)

	sig, err := ir.NewSig(elemT)
	require.NoError(t, err)
	require.NoError(t, body.Append(sig))

	delay, err := ir.NewConstTime(0, 0)
	require.NoError(t, err)
	require.NoError(t, body.Append(delay))

	pr, err := ir.NewPrb(sig)
	require.NoError(t, err)
	require.NoError(t, body.Append(pr))

	drv, err := ir.NewDrv(p.Outputs[0], pr, delay)
	require.NoError(t, err)
	require.NoError(t, body.Append(drv))

	wait, err := ir.NewWait(body, []ir.Value{sig}, nil)
	require.NoError(t, err)
	require.NoError(t, body.Append(wait))

	res := (&ProcLower{}).Run(m)
	require.Equal(t, Applied, res.Outcome)

	lowered, ok := m.Unit("latch")
	require.True(t, ok)

	var clonedSig *ir.SigInst
	for _, inst := range lowered.Instructions() {
		if s, ok := inst.(*ir.SigInst); ok {
			clonedSig = s
		}
	}
	require.NotNil(t, clonedSig)
	require.Equal(t, types.Signal{Elem: elemT}, clonedSig.Type())
}

func TestProcLowerDeclinesMultiBlockProcess(t *testing.T) {
	m := ir.NewModule("m")

	p := ir.NewUnit(ir.UnitProcess, "p", nil, nil)
	require.NoError(t, m.AddUnit(p))

	b1, err := p.AppendBlock("b1")
	require.NoError(t, err)
	b2, err := p.AppendBlock("b2")
	require.NoError(t, err)

	br, err := ir.NewBr(b2)
	require.NoError(t, err)
	require.NoError(t, b1.Append(br))

	wait, err := ir.NewWait(b1, nil, nil)
	require.NoError(t, err)
	require.NoError(t, b2.Append(wait))

	res := (&ProcLower{}).Run(m)
	require.Equal(t, Declined, res.Outcome)

	still, ok := m.Unit("p")
	require.True(t, ok)
	require.Equal(t, ir.UnitProcess, still.UnitKind())
}

func TestProcLowerDeclinesWaitWithTimeout(t *testing.T) {
	m := ir.NewModule("m")

	p := ir.NewUnit(ir.UnitProcess, "p", nil, nil)
	require.NoError(t, m.AddUnit(p))

	body, err := p.AppendBlock("body")
	require.NoError(t, err)

	timeout, err := ir.NewConstTime(10, 0)
	require.NoError(t, err)
	require.NoError(t, body.Append(timeout))

	wait, err := ir.NewWait(body, nil, timeout)
	require.NoError(t, err)
	require.NoError(t, body.Append(wait))

	res := (&ProcLower{}).Run(m)
	require.Equal(t, Declined, res.Outcome)
}
