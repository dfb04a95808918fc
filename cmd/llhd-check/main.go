// Command llhd-check parses a textual assembly file, runs the verifier,
// and reports diagnostics. Grounded on cmd/kanso-cli/main.go's
// read-file/parse/report-errors/exit shape, replacing parse-failure
// reporting of a contract language with reporting of construction errors
// and verifier diagnostics.
package main

import (
	"flag"
	"fmt"
	"os"

	"llhd/internal/asm"
	"llhd/internal/diag"
	"llhd/internal/verify"
)

func main() {
	verbose := flag.Bool("verbose", false, "print decorated diagnostics in addition to the stable one-line form")
	flag.Usage = func() {
		fmt.Fprintln(os.Stderr, "usage: llhd-check [-verbose] <file.lhd>")
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}
	path := flag.Arg(0)

	tree, err := asm.ParseFile(path)
	if err != nil {
		os.Exit(1)
	}

	m, err := asm.Build(path, tree)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", err)
		os.Exit(1)
	}

	diags := verify.Module(m)

	r := diag.NewReporter(os.Stdout)
	r.Verbose = *verbose
	r.Diagnostics(diags)
	r.Summary(len(diags))

	if len(diags) > 0 {
		os.Exit(1)
	}
}
