package ir

import (
	"fmt"

	"llhd/internal/types"
)

// Module is the top-level container: a named collection of units plus the
// per-module type intern table (spec §3, §9 design note: interning is
// scoped per Module rather than held in a package-level singleton).
type Module struct {
	Name    string
	Types   *types.Interner
	units   []*Unit
	byName  map[string]*Unit
}

// NewModule creates an empty module.
func NewModule(name string) *Module {
	return &Module{
		Name:   name,
		Types:  types.NewInterner(),
		byName: make(map[string]*Unit),
	}
}

// AddUnit registers u under its name. Redeclaring a name already present
// in the module is a construction error.
func (m *Module) AddUnit(u *Unit) error {
	if _, exists := m.byName[u.Name()]; exists {
		return fmt.Errorf("unit %q already declared in module %q", u.Name(), m.Name)
	}
	m.units = append(m.units, u)
	m.byName[u.Name()] = u
	return nil
}

// ReplaceUnit swaps old for repl under old's name, as spec §4.7 requires
// of a successful process-lowering run ("replaces P in the module, with
// the same name and port signature"). repl's own name is overwritten to
// match old's.
func (m *Module) ReplaceUnit(old, repl *Unit) error {
	idx := -1
	for i, u := range m.units {
		if u == old {
			idx = i
			break
		}
	}
	if idx < 0 {
		return fmt.Errorf("unit %q is not a member of module %q", old.Name(), m.Name)
	}
	repl.SetName(old.Name())
	m.units[idx] = repl
	m.byName[old.Name()] = repl
	return nil
}

// Unit looks up a unit by name.
func (m *Module) Unit(name string) (*Unit, bool) {
	u, ok := m.byName[name]
	return u, ok
}

// Units returns every unit in declaration order.
func (m *Module) Units() []*Unit {
	out := make([]*Unit, len(m.units))
	copy(out, m.units)
	return out
}

// Functions, Processes, and Entities filter Units by kind, for callers
// that only care about one container kind (e.g. the verifier and the
// passes, which apply to different subsets).
func (m *Module) Functions() []*Unit  { return m.unitsOfKind(UnitFunction) }
func (m *Module) Processes() []*Unit  { return m.unitsOfKind(UnitProcess) }
func (m *Module) Entities() []*Unit   { return m.unitsOfKind(UnitEntity) }
func (m *Module) Declarations() []*Unit { return m.unitsOfKind(UnitDeclaration) }

func (m *Module) unitsOfKind(k UnitKind) []*Unit {
	var out []*Unit
	for _, u := range m.units {
		if u.UnitKind() == k {
			out = append(out, u)
		}
	}
	return out
}
