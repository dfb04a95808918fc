// Command llhd-lsp is the minimal language-server driver of
// SPEC_FULL.md §4.13. Grounded on cmd/kanso-lsp/main.go's
// handler-wiring/RunStdio shape.
package main

import (
	"flag"
	"log"
	"os"

	"github.com/tliron/commonlog"
	protocol "github.com/tliron/glsp/protocol_3_16"
	"github.com/tliron/glsp/server"

	"llhd/internal/langserver"
)

const lsName = "llhd"

func main() {
	logLevel := flag.Int("log-level", 1, "commonlog verbosity level")
	flag.Parse()

	commonlog.Configure(*logLevel, nil)

	h := langserver.NewHandler()
	handler := protocol.Handler{
		Initialize:            h.Initialize,
		Initialized:           h.Initialized,
		Shutdown:              h.Shutdown,
		TextDocumentDidOpen:   h.TextDocumentDidOpen,
		TextDocumentDidChange: h.TextDocumentDidChange,
		TextDocumentDidClose:  h.TextDocumentDidClose,
	}

	s := server.NewServer(&handler, lsName, false)

	log.Println("starting llhd language server")
	if err := s.RunStdio(); err != nil {
		log.Println("error starting llhd language server:", err)
		os.Exit(1)
	}
}
