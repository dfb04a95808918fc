package asm

import (
	"fmt"
	"os"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/fatih/color"
)

var parser = participle.MustBuild[AssemblyFile](
	participle.Lexer(Lexer),
	participle.Elide("Whitespace", "Comment", "DocComment"),
	participle.UseLookahead(3),
)

// ParseString parses source text into a parse tree, named for diagnostics.
func ParseString(name, source string) (*AssemblyFile, error) {
	tree, err := parser.ParseString(name, source)
	if err != nil {
		reportParseError(source, err)
		return nil, err
	}
	return tree, nil
}

// ParseFile reads and parses path, grounded on grammar/parser.go's
// ParseFile entry point.
func ParseFile(path string) (*AssemblyFile, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return ParseString(path, string(source))
}

// reportParseError prints a caret-style parse error, grounded on
// grammar/parser.go's reportParseError.
func reportParseError(src string, err error) {
	pe, ok := err.(participle.Error)
	if !ok {
		color.Red("unexpected error: %s", err)
		return
	}

	pos := pe.Position()
	lines := strings.Split(src, "\n")
	if pos.Line <= 0 || pos.Line > len(lines) {
		color.Red("syntax error at unknown location: %s", err)
		return
	}

	line := lines[pos.Line-1]
	caret := strings.Repeat(" ", pos.Column-1) + "^"

	color.Red("syntax error in %s at line %d, column %d:", pos.Filename, pos.Line, pos.Column)
	fmt.Println(line)
	color.HiRed(caret)
	fmt.Printf("-> %s\n", pe.Message())
}
