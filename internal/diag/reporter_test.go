package diag

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"llhd/internal/ir"
	"llhd/internal/pass"
	"llhd/internal/verify"
)

func TestDiagnosticAlwaysEmitsStableLine(t *testing.T) {
	d := verify.Diagnostic{
		Code: CodeMissingTerminator, UnitKind: ir.UnitFunction, UnitName: "f",
		Def: "block %entry", Message: "block has no terminator",
	}

	var buf bytes.Buffer
	r := NewReporter(&buf)
	r.Diagnostic(d)

	require.Equal(t, d.Line()+"\n", buf.String())
}

func TestDiagnosticVerboseAddsDecoratedForm(t *testing.T) {
	d := verify.Diagnostic{
		Code: CodeNonDominatingUse, UnitKind: ir.UnitProcess, UnitName: "dff",
		Def: "%edge", Message: "use does not post-dominate its definition",
	}

	var buf bytes.Buffer
	r := NewReporter(&buf)
	r.Verbose = true
	r.Diagnostic(d)

	out := buf.String()
	require.Contains(t, out, d.Line())
	require.Contains(t, out, CodeNonDominatingUse)
	require.Contains(t, out, Describe(CodeNonDominatingUse))
}

func TestPassResultReportsInternalErrorRegardlessOfVerbosity(t *testing.T) {
	var buf bytes.Buffer
	r := NewReporter(&buf)

	res := pass.Result{Outcome: pass.Internal, Err: errFixture}
	r.PassResult("deseq", res)

	require.Contains(t, buf.String(), "deseq")
	require.Contains(t, buf.String(), errFixture.Error())
}

func TestPassResultSilentWhenNotVerbose(t *testing.T) {
	var buf bytes.Buffer
	r := NewReporter(&buf)

	r.PassResult("dce", pass.Result{Outcome: pass.Applied, UnitsTouched: 2})
	require.Empty(t, buf.String())
}

func TestSummaryReportsZeroDiagnosticsCleanly(t *testing.T) {
	var buf bytes.Buffer
	r := NewReporter(&buf)
	r.Summary(0)
	require.Contains(t, buf.String(), "no diagnostics")
}

var errFixture = fixtureErr("lowering produced an unverifiable block")

type fixtureErr string

func (e fixtureErr) Error() string { return string(e) }
