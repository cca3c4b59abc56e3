// Package types defines the core type system for gostringed.
//
// This package contains type definitions for:
//   - Program: a parsed program together with its parse metadata
//   - ASTNode: Abstract Syntax Tree nodes
//   - Error types: structured errors with codes
package types

// Program is the result of parsing a source string.
//
// A Program can be evaluated any number of times against different inputs by
// passing it to [evaluator.Evaluator.Eval]. It is immutable and safe for
// concurrent use by multiple goroutines.
type Program struct {
	ast             *ASTNode
	source          string
	tokenCount      int
	referencesInput bool
}

// NewProgram creates a new Program from an AST and its parse metadata.
func NewProgram(ast *ASTNode, source string, tokenCount int, referencesInput bool) *Program {
	return &Program{
		ast:             ast,
		source:          source,
		tokenCount:      tokenCount,
		referencesInput: referencesInput,
	}
}

// AST returns the Abstract Syntax Tree of the program.
func (p *Program) AST() *ASTNode {
	return p.ast
}

// Source returns the original source code of the program.
func (p *Program) Source() string {
	return p.source
}

// TokenCount returns the number of tokens consumed by the top-level expression.
func (p *Program) TokenCount() int {
	return p.tokenCount
}

// ReferencesInput reports whether the input marker `_` appears anywhere in the
// parsed text, including slice bounds and concatenation operands.
//
// The flag is structural: the operand of `$` is only known at evaluation
// time, so a program such as $"_" reports false even though the program it
// computes reads the input.
func (p *Program) ReferencesInput() bool {
	return p.referencesInput
}

// String returns the original source of the program.
func (p *Program) String() string {
	return p.source
}
