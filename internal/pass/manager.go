package pass

import (
	"fmt"

	"llhd/internal/ir"
	"llhd/internal/verify"
)

// Manager is the pass registry and driver spec §4.6 describes: passes
// communicate only through the IR, run in the order the driver gives,
// and the manager re-verifies between them in debug mode.
type Manager struct {
	byName map[string]func() Pass
}

// NewManager registers the built-in passes by their stable names (spec
// §6: "including at least proclower, deseq, dce, cf, verify").
func NewManager() *Manager {
	m := &Manager{byName: make(map[string]func() Pass)}
	m.Register("proclower", func() Pass { return &ProcLower{} })
	m.Register("deseq", func() Pass { return &Deseq{} })
	m.Register("dce", func() Pass { return &DCE{} })
	m.Register("cf", func() Pass { return &ConstFold{} })
	m.Register("verify", func() Pass { return NewVerifyPass() })
	return m
}

// Register adds or overrides a pass factory under name.
func (m *Manager) Register(name string, factory func() Pass) {
	m.byName[name] = factory
}

// Lookup returns a fresh instance of the named pass.
func (m *Manager) Lookup(name string) (Pass, bool) {
	factory, ok := m.byName[name]
	if !ok {
		return nil, false
	}
	return factory(), true
}

// StepResult records one pipeline step's outcome and, in debug mode, the
// diagnostics from the re-verification run immediately after it.
type StepResult struct {
	PassName    string
	Result      Result
	Diagnostics []verify.Diagnostic // set only when debug re-verification ran
}

// Run executes names in order against m's module, as `llhd-opt -p
// name[,name...]` does (spec §6). In debug mode, the verifier runs after
// every pass (spec §4.6); an Internal outcome aborts the remaining
// pipeline, per spec §4.9.
func (mgr *Manager) Run(module *ir.Module, names []string, debug bool) ([]StepResult, error) {
	var steps []StepResult
	for _, name := range names {
		p, ok := mgr.Lookup(name)
		if !ok {
			return steps, fmt.Errorf("unknown pass %q", name)
		}
		res := p.Run(module)
		step := StepResult{PassName: name, Result: res}

		if debug {
			step.Diagnostics = verify.Module(module)
		}
		steps = append(steps, step)

		if res.Outcome == Internal {
			return steps, fmt.Errorf("pass %q failed internally: %w", name, res.Err)
		}
	}
	return steps, nil
}
