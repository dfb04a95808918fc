// Package langserver implements the minimal LSP driver of SPEC_FULL.md
// §4.13: on every open/change of an assembly document it reparses,
// verifies, and republishes verifier diagnostics. Grounded on
// internal/lsp/handler.go's KansoHandler shape (capability advertisement,
// content/AST cache guarded by a mutex, didOpen/didChange/didClose
// wiring), stripped of completion and semantic tokens, which are
// IR-editor UX outside this driver's scope.
package langserver

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"llhd/internal/asm"
	"llhd/internal/ir"
	"llhd/internal/verify"
)

// Handler implements the LSP text-document lifecycle for assembly files.
type Handler struct {
	mu      sync.RWMutex
	content map[string]string
	modules map[string]*ir.Module
}

// NewHandler creates an empty Handler.
func NewHandler() *Handler {
	return &Handler{
		content: make(map[string]string),
		modules: make(map[string]*ir.Module),
	}
}

// Initialize advertises this driver's (deliberately narrow) capabilities:
// full-document sync only, no completion, no semantic tokens.
func (h *Handler) Initialize(ctx *glsp.Context, params *protocol.InitializeParams) (any, error) {
	return &protocol.InitializeResult{
		Capabilities: protocol.ServerCapabilities{
			TextDocumentSync: &protocol.TextDocumentSyncOptions{
				OpenClose: ptrBool(true),
				Change:    ptrSyncKind(protocol.TextDocumentSyncKindFull),
			},
		},
	}, nil
}

func (h *Handler) Initialized(ctx *glsp.Context, params *protocol.InitializedParams) error {
	return nil
}

func (h *Handler) Shutdown(ctx *glsp.Context) error {
	return nil
}

func (h *Handler) TextDocumentDidOpen(ctx *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	return h.refresh(ctx, params.TextDocument.URI)
}

func (h *Handler) TextDocumentDidChange(ctx *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	return h.refresh(ctx, params.TextDocument.URI)
}

func (h *Handler) TextDocumentDidClose(ctx *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	path, err := uriToPath(params.TextDocument.URI)
	if err != nil {
		return fmt.Errorf("failed to convert URI %s: %w", params.TextDocument.URI, err)
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.content, path)
	delete(h.modules, path)
	return nil
}

// refresh reparses and reverifies the document at uri, then publishes
// whatever diagnostics resulted (an empty slice clears prior ones).
func (h *Handler) refresh(ctx *glsp.Context, uri protocol.DocumentUri) error {
	path, err := uriToPath(uri)
	if err != nil {
		return fmt.Errorf("failed to convert URI %s: %w", uri, err)
	}

	source, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read file %s: %w", path, err)
	}

	tree, err := asm.ParseString(path, string(source))
	if err != nil {
		sendDiagnostics(ctx, uri, parseErrorDiagnostics(err))
		return nil
	}

	m, err := asm.Build(path, tree)
	if err != nil {
		sendDiagnostics(ctx, uri, []protocol.Diagnostic{{
			Range:    protocol.Range{},
			Severity: ptrSeverity(protocol.DiagnosticSeverityError),
			Source:   ptrString("llhd"),
			Message:  err.Error(),
		}})
		return nil
	}

	h.mu.Lock()
	h.content[path] = string(source)
	h.modules[path] = m
	h.mu.Unlock()

	diags := verify.Module(m)
	sendDiagnostics(ctx, uri, verifyDiagnostics(diags))
	return nil
}

// verifyDiagnostics converts verify.Diagnostic values into LSP
// diagnostics. There is no source-span threading from the builder back
// to the parse tree yet (see internal/diag's Reporter doc comment for
// why), so every diagnostic is published with a file-level range; this
// still gives the editor the stable message and code, just not a
// precise squiggle.
func verifyDiagnostics(diags []verify.Diagnostic) []protocol.Diagnostic {
	out := make([]protocol.Diagnostic, 0, len(diags))
	for _, d := range diags {
		out = append(out, protocol.Diagnostic{
			Range:    protocol.Range{},
			Severity: ptrSeverity(protocol.DiagnosticSeverityError),
			Source:   ptrString("llhd-verify"),
			Message:  fmt.Sprintf("[%s] %s", d.Code, d.String()),
		})
	}
	return out
}

func parseErrorDiagnostics(err error) []protocol.Diagnostic {
	return []protocol.Diagnostic{{
		Range:    protocol.Range{},
		Severity: ptrSeverity(protocol.DiagnosticSeverityError),
		Source:   ptrString("llhd-parse"),
		Message:  err.Error(),
	}}
}

func sendDiagnostics(ctx *glsp.Context, uri protocol.DocumentUri, diagnostics []protocol.Diagnostic) {
	ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics, &protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: diagnostics,
	})
}

func uriToPath(rawURI string) (string, error) {
	u, err := url.Parse(rawURI)
	if err != nil {
		return "", fmt.Errorf("invalid URI %s: %w", rawURI, err)
	}

	path := u.Path
	if runtime.GOOS == "windows" && strings.HasPrefix(path, "/") && len(path) > 3 && path[2] == ':' {
		path = path[1:]
	}
	return filepath.FromSlash(path), nil
}

func ptrBool(b bool) *bool                                       { return &b }
func ptrSyncKind(k protocol.TextDocumentSyncKind) *protocol.TextDocumentSyncKind { return &k }
func ptrSeverity(s protocol.DiagnosticSeverity) *protocol.DiagnosticSeverity     { return &s }
func ptrString(s string) *string                                 { return &s }
