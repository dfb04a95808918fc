package ir

import (
	"testing"

	"github.com/stretchr/testify/require"

	"llhd/internal/types"
)

func i32() types.Type { return types.Int{Width: 32} }
func i1() types.Type  { return types.Int{Width: 1} }

func mustConstInt(t *testing.T, width int, k int64) *ConstInst {
	t.Helper()
	c, err := NewConstInt(width, k)
	require.NoError(t, err)
	return c
}

func TestNewBinaryArithmeticRequiresEqualWidth(t *testing.T) {
	a := mustConstInt(t, 32, 1)
	b := mustConstInt(t, 16, 1)
	_, err := NewBinary(OpAdd, a, b)
	require.Error(t, err)

	c := mustConstInt(t, 32, 2)
	add, err := NewBinary(OpAdd, a, c)
	require.NoError(t, err)
	require.True(t, add.Type().Equal(i32()))
	require.Same(t, Value(a), add.LHS())
	require.Same(t, Value(c), add.RHS())
}

func TestNewBinaryComparisonProducesI1(t *testing.T) {
	a := mustConstInt(t, 8, 3)
	b := mustConstInt(t, 8, 4)
	cmp, err := NewBinary(OpUlt, a, b)
	require.NoError(t, err)
	require.True(t, cmp.Type().Equal(i1()))
	require.True(t, cmp.IsComparison())
}

func TestNewBinaryBitwiseAcceptsLogic(t *testing.T) {
	a, err := NewConstLogic("0101")
	require.NoError(t, err)
	b, err := NewConstLogic("1111")
	require.NoError(t, err)
	and, err := NewBinary(OpAnd, a, b)
	require.NoError(t, err)
	require.True(t, and.Type().Equal(types.Logic{Width: 4}))
}

func TestNewMuxRequiresMatchingSelectorWidthForPowerOfTwo(t *testing.T) {
	selBad := mustConstInt(t, 1, 0)
	arrSig, err := NewSig(types.Array{Len: 4, Elem: i32()})
	require.NoError(t, err)
	arr, err := NewPrb(arrSig)
	require.NoError(t, err)
	_, err = NewMux(selBad, arr)
	require.Error(t, err)

	selGood := mustConstInt(t, 2, 0)
	m, err := NewMux(selGood, arr)
	require.NoError(t, err)
	require.True(t, m.Type().Equal(i32()))
}

func TestNewMuxAllowsArbitraryWidthForNonPowerOfTwoArray(t *testing.T) {
	sel := mustConstInt(t, 5, 0)
	arrSig, err := NewSig(types.Array{Len: 3, Elem: i1()})
	require.NoError(t, err)
	arr, err := NewPrb(arrSig)
	require.NoError(t, err)
	_, err = NewMux(sel, arr)
	require.NoError(t, err)
}

func TestNewExtractStructRequiresStaticIndex(t *testing.T) {
	targetSig, err := NewSig(types.Struct{Fields: []types.Type{i32(), i1()}})
	require.NoError(t, err)
	target, err := NewPrb(targetSig)
	require.NoError(t, err)
	_, err = NewExtract(target, ExtractIndex{})
	require.Error(t, err)

	idx := int64(1)
	ext, err := NewExtract(target, ExtractIndex{Const: &idx})
	require.NoError(t, err)
	require.True(t, ext.Type().Equal(i1()))
}

func TestNewRegRequiresI1Strobe(t *testing.T) {
	val := mustConstInt(t, 8, 0)
	badStrobe := mustConstInt(t, 8, 1)
	_, err := NewReg(val, badStrobe)
	require.Error(t, err)

	goodStrobe := mustConstInt(t, 1, 1)
	reg, err := NewReg(val, goodStrobe)
	require.NoError(t, err)
	require.True(t, reg.Type().Equal(i8()))
	require.Same(t, Value(val), reg.Data())
}

func i8() types.Type { return types.Int{Width: 8} }

func TestNewPrbRequiresSignal(t *testing.T) {
	notSignal := mustConstInt(t, 8, 0)
	_, err := NewPrb(notSignal)
	require.Error(t, err)

	sig, err := NewSig(i8())
	require.NoError(t, err)
	prb, err := NewPrb(sig)
	require.NoError(t, err)
	require.True(t, prb.Type().Equal(i8()))
}

func TestNewDrvRequiresMatchingElementAndTimeDelay(t *testing.T) {
	sig, err := NewSig(i8())
	require.NoError(t, err)
	val := mustConstInt(t, 8, 1)
	delay, err := NewConstTime(0, 0)
	require.NoError(t, err)

	_, err = NewDrv(sig, mustConstInt(t, 4, 1), delay)
	require.Error(t, err)

	_, err = NewDrv(sig, val, val)
	require.Error(t, err)

	drv, err := NewDrv(sig, val, delay)
	require.NoError(t, err)
	require.False(t, drv.Gated)
}

func TestNewDrvGatedRequiresI1Gate(t *testing.T) {
	sig, err := NewSig(i8())
	require.NoError(t, err)
	val := mustConstInt(t, 8, 1)
	delay, err := NewConstTime(0, 0)
	require.NoError(t, err)
	badGate := mustConstInt(t, 8, 1)
	_, err = NewDrvGated(sig, val, delay, badGate)
	require.Error(t, err)

	goodGate := mustConstInt(t, 1, 1)
	drv, err := NewDrvGated(sig, val, delay, goodGate)
	require.NoError(t, err)
	require.True(t, drv.Gated)
	require.NotNil(t, drv.Gate())
}

func TestNewCondBrRequiresI1Condition(t *testing.T) {
	f := NewUnit(UnitFunction, "f", nil, nil)
	b1, _ := f.AppendBlock("then")
	b0, _ := f.AppendBlock("else")

	bad := mustConstInt(t, 8, 1)
	_, err := NewCondBr(bad, b1, b0)
	require.Error(t, err)

	cond := mustConstInt(t, 1, 1)
	br, err := NewCondBr(cond, b1, b0)
	require.NoError(t, err)
	require.ElementsMatch(t, []*Block{b1, b0}, br.Targets())
}

func TestNewCallChecksArity(t *testing.T) {
	f := NewUnit(UnitFunction, "callee", []*Param{NewParam("a", i32())}, []*Param{NewParam("r", i32())})

	_, err := NewCall(f, nil)
	require.Error(t, err)

	arg := mustConstInt(t, 32, 1)
	call, err := NewCall(f, []Value{arg})
	require.NoError(t, err)
	require.True(t, call.Type().Equal(types.Struct{Fields: []types.Type{i32()}}))
}

func TestNewCallRejectsNonFunction(t *testing.T) {
	e := NewUnit(UnitEntity, "e", nil, nil)
	_, err := NewCall(e, nil)
	require.Error(t, err)
}

func TestNewInstanceChecksPortTypes(t *testing.T) {
	u := NewUnit(UnitEntity, "gate", []*Param{NewParam("a", types.Signal{Elem: i1()})}, []*Param{NewParam("q", types.Signal{Elem: i1()})})

	inSig, err := NewSig(i1())
	require.NoError(t, err)
	outSig, err := NewSig(i1())
	require.NoError(t, err)

	_, err = NewInstance(u, []Value{outSig}, []Value{inSig})
	require.NoError(t, err) // same Signal(i1) type on both sides is accepted positionally

	wrongSig, err := NewSig(i32())
	require.NoError(t, err)
	_, err = NewInstance(u, []Value{wrongSig}, []Value{outSig})
	require.Error(t, err)
}
