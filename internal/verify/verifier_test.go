package verify

import (
	"testing"

	"github.com/stretchr/testify/require"

	"llhd/internal/ir"
	"llhd/internal/types"
)

func mustConst(t *testing.T, width int, k int64) *ir.ConstInst {
	t.Helper()
	c, err := ir.NewConstInt(width, k)
	require.NoError(t, err)
	return c
}

func TestVerifyAcceptsWellFormedFunction(t *testing.T) {
	f := ir.NewUnit(ir.UnitFunction, "id", nil, []*ir.Param{ir.NewParam("r", types.Int{Width: 32})})
	entry, err := f.AppendBlock("entry")
	require.NoError(t, err)

	c := mustConst(t, 32, 7)
	require.NoError(t, entry.Append(c))
	ret, err := ir.NewRet(c)
	require.NoError(t, err)
	require.NoError(t, entry.Append(ret))

	diags := Unit(f)
	require.Empty(t, diags)
}

func TestVerifyFlagsMissingTerminator(t *testing.T) {
	f := ir.NewUnit(ir.UnitFunction, "f", nil, nil)
	entry, err := f.AppendBlock("entry")
	require.NoError(t, err)
	require.NoError(t, entry.Append(mustConst(t, 32, 1)))

	diags := Unit(f)
	require.NotEmpty(t, diags)
	require.Equal(t, "V0010", diags[0].Code)
}

func TestVerifyFlagsBranchToOtherUnit(t *testing.T) {
	f := ir.NewUnit(ir.UnitFunction, "f", nil, nil)
	entry, err := f.AppendBlock("entry")
	require.NoError(t, err)

	other := ir.NewUnit(ir.UnitFunction, "g", nil, nil)
	foreignBlock, err := other.AppendBlock("elsewhere")
	require.NoError(t, err)

	br, err := ir.NewBr(foreignBlock)
	require.NoError(t, err)
	require.NoError(t, entry.Append(br))

	diags := Unit(f)
	found := false
	for _, d := range diags {
		if d.Code == "V0040" {
			found = true
		}
	}
	require.True(t, found)
}

func TestVerifyFlagsNonDominatingUse(t *testing.T) {
	f := ir.NewUnit(ir.UnitFunction, "f", nil, nil)
	b1, err := f.AppendBlock("b1")
	require.NoError(t, err)
	b2, err := f.AppendBlock("b2")
	require.NoError(t, err)

	// b1 defines a value, used only in b2, but b1 does not branch to b2 --
	// the use is not dominated.
	c := mustConst(t, 32, 1)
	require.NoError(t, b1.Append(c))
	halt, err := ir.NewHalt()
	require.NoError(t, err)
	require.NoError(t, b1.Append(halt))

	add, err := ir.NewBinary(ir.OpAdd, c, c)
	require.NoError(t, err)
	require.NoError(t, b2.Append(add))
	ret, err := ir.NewRet()
	require.NoError(t, err)
	require.NoError(t, b2.Append(ret))

	diags := Unit(f)
	found := false
	for _, d := range diags {
		if d.Code == "V0020" || d.Code == "V0021" {
			found = true
		}
	}
	require.True(t, found)
}

// TestVerifyFlagsNonDominatingUseWithS1Wording reproduces spec scenario
// S1 verbatim: `%y` is defined in one branch and used after the merge
// where the other branch never defines it, and the verifier's stable
// line must read exactly
// "- func @unit1: %y = const i32 42: does not dominate use in `%z = not i32 %y`".
func TestVerifyFlagsNonDominatingUseWithS1Wording(t *testing.T) {
	f := ir.NewUnit(ir.UnitFunction, "unit1", nil, nil)
	entry, err := f.AppendBlock("entry")
	require.NoError(t, err)
	b1, err := f.AppendBlock("b1")
	require.NoError(t, err)
	b2, err := f.AppendBlock("b2")
	require.NoError(t, err)
	merge, err := f.AppendBlock("merge")
	require.NoError(t, err)

	cond := mustConst(t, 1, 1)
	require.NoError(t, entry.Append(cond))
	condBr, err := ir.NewCondBr(cond, b1, b2)
	require.NoError(t, err)
	require.NoError(t, entry.Append(condBr))

	y := mustConst(t, 32, 42)
	y.SetName("y")
	require.NoError(t, b1.Append(y))
	br1, err := ir.NewBr(merge)
	require.NoError(t, err)
	require.NoError(t, b1.Append(br1))

	br2, err := ir.NewBr(merge)
	require.NoError(t, err)
	require.NoError(t, b2.Append(br2))

	z, err := ir.NewNot(y)
	require.NoError(t, err)
	z.SetName("z")
	require.NoError(t, merge.Append(z))
	ret, err := ir.NewRet()
	require.NoError(t, err)
	require.NoError(t, merge.Append(ret))

	diags := Unit(f)
	var got *Diagnostic
	for i, d := range diags {
		if d.Code == "V0021" {
			got = &diags[i]
		}
	}
	require.NotNil(t, got)
	require.Equal(t, "- func @unit1: %y = const i32 42: does not dominate use in `%z = not i32 %y`", got.Line())
}

func TestVerifyEntityFlagsCombinationalCycle(t *testing.T) {
	e := ir.NewUnit(ir.UnitEntity, "e", nil, nil)

	x := mustConst(t, 8, 1)
	require.NoError(t, e.AppendInstruction(x))
	y := mustConst(t, 8, 2)
	require.NoError(t, e.AppendInstruction(y))

	add, err := ir.NewBinary(ir.OpAdd, x, y)
	require.NoError(t, err)
	require.NoError(t, e.AppendInstruction(add))

	not1, err := ir.NewNot(add)
	require.NoError(t, err)
	require.NoError(t, e.AppendInstruction(not1))

	// No reg/sig/inst is involved, so feeding not1 back as add's own
	// operand is a genuine combinational cycle.
	require.NoError(t, ir.ReplaceAllUsesWith(x, not1))

	diags := verifyEntity(e)
	found := false
	for _, d := range diags {
		if d.Code == "V0022" {
			found = true
		}
	}
	require.True(t, found)
}

func TestVerifyEntityAllowsRegClosedLoop(t *testing.T) {
	e := ir.NewUnit(ir.UnitEntity, "e", nil, nil)

	strobe, err := ir.NewConstInt(1, 1)
	require.NoError(t, err)
	require.NoError(t, e.AppendInstruction(strobe))

	reg, err := ir.NewReg(strobe, strobe)
	require.NoError(t, err)
	require.NoError(t, e.AppendInstruction(reg))

	not1, err := ir.NewNot(reg)
	require.NoError(t, err)
	require.NoError(t, e.AppendInstruction(not1))

	require.NoError(t, ir.ReplaceAllUsesWith(strobe, not1))
	// The point of this test is that reg itself never contributes an
	// outgoing edge in the cycle check, so a loop closed through reg
	// does not get flagged as combinational.
	diags := verifyEntity(e)
	require.Empty(t, diags)
}
