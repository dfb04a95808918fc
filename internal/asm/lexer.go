package asm

import (
	"github.com/alecthomas/participle/v2/lexer"
)

// Lexer tokenizes the textual assembly surface of spec §6. Grounded on
// grammar/lexer.go's stateful-lexer shape (doc comments ahead of plain
// comments, identifiers before keywords resolved by literal match in the
// grammar itself), extended with the IR's own sigils: `%name`/`%N` for
// values, `@name` for unit references, and the `iN`/`nN` width-bearing
// type keywords that a generic identifier rule would otherwise swallow.
var Lexer = lexer.MustStateful(lexer.Rules{
	"Root": {
		{"DocComment", `///[^\n]*`, nil},
		{"Comment", `//[^\n]*`, nil},

		{"String", `"[^"]*"`, nil},

		{"IntType", `i[0-9]+`, nil},
		{"LogicType", `n[0-9]+`, nil},

		{"NamedValue", `%[a-zA-Z_][a-zA-Z0-9_]*`, nil},
		{"AnonValue", `%[0-9]+`, nil},
		{"UnitRef", `@[a-zA-Z_][a-zA-Z0-9_]*`, nil},

		{"Ident", `[a-zA-Z_][a-zA-Z0-9_]*`, nil},
		{"Integer", `-?[0-9]+`, nil},

		{"Arrow", `->`, nil},
		{"Punctuation", `[{}\[\]():,;$*=]`, nil},

		{"Whitespace", `[ \t\r\n]+`, nil},
	},
})
