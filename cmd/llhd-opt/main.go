// Command llhd-opt parses a textual assembly file, runs a pass pipeline
// against it, and writes the resulting module back out. Grounded on
// cmd/kanso-cli/main.go's driver shape, generalized from a one-shot parse
// report to a read/transform/write pipeline around internal/pass's
// Manager.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"llhd/internal/asm"
	"llhd/internal/diag"
	"llhd/internal/pass"
)

func main() {
	passNames := flag.String("p", "", "comma-separated pass names to run, in order")
	debug := flag.Bool("debug", false, "re-verify after every pass")
	verbose := flag.Bool("verbose", false, "print decorated pass/diagnostic output")
	out := flag.String("o", "", "output file (default stdout)")
	flag.Usage = func() {
		fmt.Fprintln(os.Stderr, "usage: llhd-opt -p name[,name...] [-debug] [-o file] <file.lhd>")
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

	var names []string
	if *passNames != "" {
		names = strings.Split(*passNames, ",")
	}

	mgr := pass.NewManager()
	r := diag.NewReporter(os.Stderr)
	r.Verbose = *verbose

	steps, err := mgr.Run(m, names, *debug)
	for _, step := range steps {
		r.PassResult(step.PassName, step.Result)
		r.Diagnostics(step.Diagnostics)
	}
	if err != nil {
		// The pipeline stopped on an Internal outcome (spec §4.9): the
		// module up to that point is already reported above, the
		// original input file on disk is untouched.
		fmt.Fprintf(os.Stderr, "error: %s\n", err)
		os.Exit(1)
	}

	rendered := asm.Print(m)

	if *out == "" {
		fmt.Print(rendered)
		return
	}
	if err := os.WriteFile(*out, []byte(rendered), 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "error: failed to write %s: %s\n", *out, err)
		os.Exit(1)
	}
}
