package types

// Interner canonicalizes Type values so that repeated construction of the
// same type returns the same instance within one Module. Equality never
// depends on interning (Type.Equal is always structural); the Interner is
// purely a memory-sharing optimization, scoped per-Module rather than held
// as a package-level singleton, per spec §9's "global type intern table"
// design note.
type Interner struct {
	table map[string]Type
}

// NewInterner creates an empty, per-module type intern table.
func NewInterner() *Interner {
	return &Interner{table: make(map[string]Type)}
}

// Intern returns a canonical instance equal to t, registering t itself the
// first time its structural key is seen.
func (in *Interner) Intern(t Type) Type {
	key := t.String()
	if existing, ok := in.table[key]; ok {
		return existing
	}
	in.table[key] = t
	return t
}

// Len reports how many distinct types have been interned so far.
func (in *Interner) Len() int {
	return len(in.table)
}
