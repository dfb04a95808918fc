package langserver

import (
	"errors"
	"testing"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/stretchr/testify/require"

	"llhd/internal/ir"
	"llhd/internal/verify"
)

func TestInitializeAdvertisesFullSyncOnly(t *testing.T) {
	h := NewHandler()
	res, err := h.Initialize(nil, &protocol.InitializeParams{})
	require.NoError(t, err)

	result, ok := res.(*protocol.InitializeResult)
	require.True(t, ok)
	require.NotNil(t, result.Capabilities.TextDocumentSync)
	require.Nil(t, result.Capabilities.CompletionProvider)
	require.Nil(t, result.Capabilities.SemanticTokensProvider)
}

func TestVerifyDiagnosticsConvertsEveryEntry(t *testing.T) {
	diags := []verify.Diagnostic{
		{Code: "V0010", UnitKind: ir.UnitFunction, UnitName: "f", Def: "%entry", Message: "missing terminator"},
		{Code: "V0022", UnitKind: ir.UnitEntity, UnitName: "e", Def: "cycle", Message: "combinational cycle"},
	}

	out := verifyDiagnostics(diags)
	require.Len(t, out, 2)
	for i, d := range out {
		require.Contains(t, *d.Source, "llhd-verify")
		require.Contains(t, d.Message, diags[i].Code)
	}
}

func TestParseErrorDiagnosticsCarriesMessage(t *testing.T) {
	out := parseErrorDiagnostics(errors.New("unexpected token"))
	require.Len(t, out, 1)
	require.Contains(t, out[0].Message, "unexpected token")
}

func TestUriToPathRoundTrips(t *testing.T) {
	path, err := uriToPath("file:///tmp/foo.lhd")
	require.NoError(t, err)
	require.Equal(t, "/tmp/foo.lhd", path)
}
