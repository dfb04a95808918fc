package diag

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"llhd/internal/pass"
	"llhd/internal/verify"
)

// Reporter formats verifier diagnostics and pass outcomes for a CLI driver.
// Grounded on internal/errors/reporter.go's ErrorReporter: same two-tier
// idea (a plain stable line always, a decorated multi-line form on top),
// adapted to this IR's addressing scheme. Diagnostics here are addressed
// by unit/definition rather than file/line/column: unlike the teacher's
// parser-fed CompilerError, a verify.Diagnostic may describe a module
// built directly through the ir package with no textual source at all, so
// there is no source position to recover in the general case.
type Reporter struct {
	w       io.Writer
	Verbose bool
}

// NewReporter creates a Reporter writing to w.
func NewReporter(w io.Writer) *Reporter {
	return &Reporter{w: w}
}

// Diagnostic prints d. The stable one-line form (spec §5/§6) is always
// emitted first; when r.Verbose is set, a decorated form follows, styled
// with color.
func (r *Reporter) Diagnostic(d verify.Diagnostic) {
	fmt.Fprintln(r.w, d.Line())
	if !r.Verbose {
		return
	}

	bold := color.New(color.Bold).SprintFunc()
	dim := color.New(color.Faint).SprintFunc()
	errColor := color.New(color.FgRed, color.Bold).SprintFunc()

	fmt.Fprintf(r.w, "  %s %s\n", errColor(fmt.Sprintf("error[%s]:", d.Code)), bold(d.Message))
	fmt.Fprintf(r.w, "    %s in %s @%s, %s\n", dim("-->"), d.UnitKind, d.UnitName, d.Def)
	if desc := Describe(d.Code); desc != "" {
		fmt.Fprintf(r.w, "    %s %s\n", dim("note:"), desc)
	}
	fmt.Fprintln(r.w)
}

// Diagnostics prints every diagnostic in ds, in order.
func (r *Reporter) Diagnostics(ds []verify.Diagnostic) {
	for _, d := range ds {
		r.Diagnostic(d)
	}
}

// PassResult prints the outcome of a single named pass run, in the style
// of spec §7's three-tier outcome. Applied and Declined are informational;
// Internal is reported as an error.
func (r *Reporter) PassResult(name string, res pass.Result) {
	switch res.Outcome {
	case pass.Applied:
		if r.Verbose {
			fmt.Fprintf(r.w, "%s: applied, %d unit(s) touched\n", name, res.UnitsTouched)
		}
	case pass.Declined:
		if r.Verbose {
			fmt.Fprintf(r.w, "%s: declined (%s)\n", name, res.Reason)
		}
	case pass.Internal:
		errColor := color.New(color.FgRed, color.Bold).SprintFunc()
		fmt.Fprintf(r.w, "%s %s: %s\n", errColor("error:"), name, res.Err)
	}
}

// Summary prints a final count line, grounded on the teacher CLI's
// end-of-run summary style (cmd/kanso-cli).
func (r *Reporter) Summary(count int) {
	if count == 0 {
		fmt.Fprintln(r.w, color.GreenString("no diagnostics"))
		return
	}
	word := "diagnostic"
	if count != 1 {
		word = "diagnostics"
	}
	fmt.Fprintln(r.w, color.New(color.FgRed, color.Bold).Sprintf("%d %s", count, word))
}
