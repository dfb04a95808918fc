// Package pass implements the pass manager of spec §4.6: passes declare
// what analyses they use and invalidate, the manager runs a driver-given
// sequence of named passes, and re-verifies between them in debug mode.
package pass

import (
	"llhd/internal/ir"
	"llhd/internal/verify"
)

// Outcome is the three-way result spec §4.9/§7 assigns to a pass run:
// only Internal counts as a tool failure.
type Outcome int

const (
	Applied Outcome = iota
	Declined
	Internal
)

func (o Outcome) String() string {
	switch o {
	case Applied:
		return "applied"
	case Declined:
		return "declined"
	case Internal:
		return "internal"
	default:
		return "unknown"
	}
}

// Result reports what a single pass invocation did (spec §7 kind 3).
type Result struct {
	Outcome     Outcome
	Reason      string // set when Outcome == Declined
	Err         error  // set when Outcome == Internal
	UnitsTouched int
}

func applied(n int) Result   { return Result{Outcome: Applied, UnitsTouched: n} }
func declined(reason string) Result { return Result{Outcome: Declined, Reason: reason} }
func internal(err error) Result     { return Result{Outcome: Internal, Err: err} }

// Properties is a pass's declared read/write set (spec §4.6: "uses
// dominance? invalidates dominance? reads/writes the module table?").
// Manager.Run does not read it: in debug mode it re-verifies after every
// pass regardless of what the pass declares.
type Properties struct {
	UsesDominance        bool
	InvalidatesDominance bool
	WritesModuleTable    bool // adds, removes, or replaces units
}

// Pass is a transformation over a whole Module (spec §4.6: "over one unit
// or the whole module"); passes that only ever touch one unit at a time
// simply iterate m.Units() themselves, which every pass below does.
type Pass interface {
	Name() string
	Properties() Properties
	Run(m *ir.Module) Result
}

// VerifyPass wraps the verifier itself as a pipeline step named "verify",
// per spec.md §6's pass-name list. It never mutates the module and always
// returns Applied with zero touched units, whether or not diagnostics were
// found; Declined and Internal are never returned, since verification
// cannot fail structurally.
type VerifyPass struct {
	Diagnostics []verify.Diagnostic
}

func (p *VerifyPass) Name() string { return "verify" }
func (p *VerifyPass) Properties() Properties {
	return Properties{UsesDominance: true}
}
func (p *VerifyPass) Run(m *ir.Module) Result {
	p.Diagnostics = verify.Module(m)
	return applied(0)
}

// NewVerifyPass returns a fresh verify pass instance; its Diagnostics
// field is only meaningful after Run has been called, so callers needing
// the diagnostics should keep the concrete pointer rather than discarding
// it into the Pass interface.
func NewVerifyPass() *VerifyPass { return &VerifyPass{} }
