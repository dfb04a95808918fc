// Package diag renders verifier diagnostics and pass outcomes for the CLI
// drivers. It wraps the stable one-line forms already produced by
// verify.Diagnostic and pass.Result with an optional decorated rendering,
// grounded on internal/errors/codes.go's code-range table and
// internal/errors/reporter.go's FormatError.
package diag

// Verifier diagnostic codes (spec §4.5, §7 kind 2), one range per check
// family in internal/verify. Grounded on internal/errors/codes.go's
// range-per-category table, narrowed to this IR's single "verifier"
// category since there is no parser/semantic split here: the textual
// reader either builds a module or reports a parse error directly.
const (
	// V0001: operand contract violated (wrong arity, wrong type family).
	CodeOperandContract = "V0001"

	// V0010: block missing a terminator instruction.
	CodeMissingTerminator = "V0010"

	// V0011: terminator is not the block's last instruction.
	CodeMisplacedTerminator = "V0011"

	// V0020: a block is not reachable from the entry block.
	CodeUnreachableBlock = "V0020"

	// V0021: a value is used before it is defined on every path reaching
	// the use (dominance violation at instruction granularity).
	CodeNonDominatingUse = "V0021"

	// V0022: an entity's instructions form a combinational cycle with no
	// intervening reg, sig, or inst to break it.
	CodeCombinationalCycle = "V0022"

	// V0040: a branch targets a block belonging to a different unit.
	CodeCrossUnitBranch = "V0040"

	// V0050: a signal value escapes into a context spec §3 restricts (a
	// Signal operand on an instruction other than prb, drv, sig, wait, or
	// inst).
	CodeSignalUseRestriction = "V0050"
)

var descriptions = map[string]string{
	CodeOperandContract:      "instruction operand does not satisfy its opcode's arity or type contract",
	CodeMissingTerminator:    "block does not end in a terminator instruction",
	CodeMisplacedTerminator:  "terminator instruction is not the last instruction in its block",
	CodeUnreachableBlock:     "block is not reachable from the unit's entry block",
	CodeNonDominatingUse:     "value is used on a path where its definition does not dominate the use",
	CodeCombinationalCycle:   "entity instructions form a cycle with no reg, sig, or inst to break it",
	CodeCrossUnitBranch:      "branch or wait instruction targets a block outside its own unit",
	CodeSignalUseRestriction: "signal-typed value used as an operand of an instruction that is not signal-aware",
}

// Describe returns a human-readable description of a diagnostic code, or
// the empty string if code is unrecognized.
func Describe(code string) string {
	return descriptions[code]
}
