// Package asm implements the textual assembly surface of spec §6: a
// participle grammar over the IR's type/value/instruction syntax, a
// builder that turns a parsed document into a *ir.Module, and a writer
// that is the builder's dual.
package asm

// AssemblyFile is the parse-tree root: an ordered sequence of units,
// exactly the textual form of spec §6 ("func/proc/entity/decl ...").
// Grounded on grammar/grammar.go's Program/SourceElement shape, stripped
// to the IR's own four unit headers rather than kanso's module/struct.
type AssemblyFile struct {
	Units []*UnitNode `@@*`
}

type UnitNode struct {
	Func   *FuncUnit   `  @@`
	Proc   *ProcUnit   `| @@`
	Entity *EntityUnit ` | @@`
	Decl   *DeclUnit   ` | @@`
}

// FuncUnit: `func @name (params) T { blocks }`.
type FuncUnit struct {
	Name   string       `"func" @UnitRef "("`
	Params []*ParamNode `[ @@ { "," @@ } ] ")"`
	Ret    *TypeNode    `@@`
	Body   *BlockBody   `@@`
}

// ProcUnit: `proc @name (ins) -> (outs) { blocks }`.
type ProcUnit struct {
	Name string       `"proc" @UnitRef "("`
	Ins  []*ParamNode `[ @@ { "," @@ } ] ")" "->" "("`
	Outs []*ParamNode `[ @@ { "," @@ } ] ")"`
	Body *BlockBody   `@@`
}

// EntityUnit: `entity @name (ins) -> (outs) { insts }`.
type EntityUnit struct {
	Name  string             `"entity" @UnitRef "("`
	Ins   []*ParamNode       `[ @@ { "," @@ } ] ")" "->" "("`
	Outs  []*ParamNode       `[ @@ { "," @@ } ] ")"`
	Insts []*InstructionNode `"{" @@* "}"`
}

// DeclUnit: `decl @name (…) -> (…)`, signature only.
type DeclUnit struct {
	Name string      `"decl" @UnitRef "("`
	Ins  []*TypeNode `[ @@ { "," @@ } ] ")" "->" "("`
	Outs []*TypeNode `[ @@ { "," @@ } ] ")"`
}

type ParamNode struct {
	Name string    `@NamedValue ":"`
	Type *TypeNode `@@`
}

// BlockBody is a Function/Process's curly-braced list of labeled blocks.
type BlockBody struct {
	Blocks []*BlockNode `"{" @@* "}"`
}

// BlockNode: block labels share the value namespace (`%label:`), since a
// Block is itself an ir.Value that instructions reference the same way
// they reference any other operand (spec §3, §6's own `wait %entry, …`
// fixture naming a target with the value sigil rather than a bare ident).
type BlockNode struct {
	Label string             `@NamedValue ":"`
	Insts []*InstructionNode `@@*`
}

// TypeNode covers every type of spec §4.1/§6: the three atoms, the two
// width-bearing families, and array/struct/signal/pointer built from them.
type TypeNode struct {
	Void   bool        `(  @"void"`
	Label  bool        ` | @"label"`
	Time   bool        ` | @"time"`
	Int    string      ` | @IntType`
	Logic  string      ` | @LogicType`
	Array  *ArrayType  ` | @@`
	Struct *StructType ` | @@ )`
	// Postfix sigils apply left-to-right: `iN$*` is a pointer to a signal of iN.
	Postfix []string `{ @("$" | "*") }`
}

type ArrayType struct {
	Len  int64     `"[" @Integer "x"`
	Elem *TypeNode `@@ "]"`
}

type StructType struct {
	Fields []*TypeNode `"{" @@ { "," @@ } "}"`
}

// ValueRef is an operand reference: `%name` or the anonymous `%N` form.
type ValueRef struct {
	Named string `  @NamedValue`
	Anon  string ` | @AnonValue`
}

type IndexNode struct {
	Const *int64    `  @Integer`
	Value *ValueRef ` | @@`
}

type InstructionNode struct {
	Result string  `[ ( @NamedValue | @AnonValue ) "=" ]`
	Op     *OpNode `@@`
}

type OpNode struct {
	ConstInt   *ConstIntOp   `  @@`
	ConstLogic *ConstLogicOp ` | @@`
	ConstTime  *ConstTimeOp  ` | @@`
	Not        *NotOp        ` | @@`
	Mux        *MuxOp        ` | @@`
	Extract    *ExtractOp    ` | @@`
	Insert     *InsertOp     ` | @@`
	Reg        *RegOp        ` | @@`
	Sig        *SigOp        ` | @@`
	Prb        *PrbOp        ` | @@`
	Drv        *DrvOp        ` | @@`
	CondBr     *CondBrOp     ` | @@`
	Br         *BrOp         ` | @@`
	Ret        *RetOp        ` | @@`
	Wait       *WaitOp       ` | @@`
	Halt       *HaltOp       ` | @@`
	Call       *CallOp       ` | @@`
	Inst       *InstOp       ` | @@`
	Binary     *BinaryOp     ` | @@`
}

type ConstIntOp struct {
	Width string `"const" @IntType`
	K     int64  `@Integer`
}

type ConstLogicOp struct {
	Width   string `"const" @LogicType`
	Symbols string `@String`
}

type ConstTimeOp struct {
	PS    int64 `"const" "time" @Integer "s"`
	Delta int64 `@Integer "d"`
}

type BinaryOp struct {
	Opcode string `@("add" | "sub" | "mul" | "udiv" | "sdiv" | "urem" | "srem" |
		"and" | "or" | "xor" | "shl" | "lshr" | "ashr" |
		"eq" | "ne" | "ult" | "ugt" | "ule" | "uge" | "slt" | "sgt" | "sle" | "sge")`
	A *ValueRef `@@ ","`
	B *ValueRef `@@`
}

type NotOp struct {
	A *ValueRef `"not" @@`
}

type MuxOp struct {
	Sel *ValueRef `"mux" @@ ","`
	Arr *ValueRef `@@`
}

type ExtractOp struct {
	Target *ValueRef  `"extract" @@ ","`
	Index  *IndexNode `@@`
}

type InsertOp struct {
	Target *ValueRef  `"insert" @@ ","`
	Index  *IndexNode `@@ ","`
	Elem   *ValueRef  `@@`
}

type RegOp struct {
	Value  *ValueRef `"reg" @@ ","`
	Strobe *ValueRef `@@`
}

type SigOp struct {
	Elem *TypeNode `"sig" @@`
}

type PrbOp struct {
	Signal *ValueRef `"prb" @@`
}

type DrvOp struct {
	Signal *ValueRef `"drv" @@`
	Gate   *ValueRef `[ "if" @@ ] ","`
	Val    *ValueRef `@@ ","`
	Delay  *ValueRef `@@`
}

// CondBrOp must be tried before BrOp in OpNode's alternation: both begin
// with "br" followed by a value, diverging only at the next token (a
// comma here, end of instruction there), which is within the package's
// parser lookahead window.
type CondBrOp struct {
	Cond *ValueRef `"br" @@ ","`
	T1   *ValueRef `@@ ","`
	T0   *ValueRef `@@`
}

type BrOp struct {
	Target *ValueRef `"br" @@`
}

type RetOp struct {
	Values []*ValueRef `"ret" [ @@ { "," @@ } ]`
}

type WaitOp struct {
	Target  *ValueRef   `"wait" @@ ","`
	Signals []*ValueRef `@@ { "," @@ }`
	Timeout *ValueRef   `[ "for" @@ ]`
}

type HaltOp struct {
	Present bool `@"halt"`
}

type CallOp struct {
	Callee string      `"call" @UnitRef`
	Args   []*ValueRef `{ "," @@ }`
}

type InstOp struct {
	Callee string      `"inst" @UnitRef`
	Args   []*ValueRef `{ "," @@ }`
}
