// Package parser implements the gostringed tokenizer and parser.
//
// The parser is a hand-written recursive descent parser over a fully
// materialized token slice. It holds no mutable cursor: every parse function
// receives the index to start at and reports how many tokens it consumed, and
// the caller resumes right after them.
//
// # Grammar
//
//	expr         := postfixed ( "+" expr )?
//	postfixed    := primary ( slice_suffix )*
//	primary      := "_" | string | number | "$" expr | "(" expr ")"
//	slice_suffix := "[" expr? ":" expr? "]"
//
// Concatenation folds to the right (a+b+c is a+(b+c)), slice suffixes chain
// to the left, and `$` takes the whole following expression as its operand.
// A number is a run of ASCII digits and stands for the string of those
// digits. Any other byte outside a string literal is ignored.
//
// # Example
//
//	prog, err := parser.Parse(`_[0:3] + "..."`)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(prog.ReferencesInput()) // true
package parser

import (
	"fmt"

	"github.com/sandrolain/gostringed/pkg/types"
)

// Parse parses a program and returns its AST together with the parse metadata.
//
// If parsing fails the returned error is a *types.Error carrying the code,
// the byte position and, for syntax errors, what was expected.
//
// Example:
//
//	prog, err := parser.Parse(`$"_"`)
//	if err != nil {
//	    fmt.Printf("parse error: %v\n", err)
//	    return
//	}
func Parse(source string, opts ...CompileOption) (*types.Program, error) {
	p := NewParser(source, opts...)
	return p.Parse()
}

// Compile is an alias for Parse, provided for API consistency.
func Compile(source string, opts ...CompileOption) (*types.Program, error) {
	return Parse(source, opts...)
}

// MustParse is like Parse but panics if the source cannot be parsed.
// It simplifies safe initialization of global variables.
func MustParse(source string, opts ...CompileOption) *types.Program {
	prog, err := Parse(source, opts...)
	if err != nil {
		panic(fmt.Sprintf("parser: Parse(%q): %v", source, err))
	}
	return prog
}

// CompileOption configures parsing behavior.
type CompileOption func(*CompileOptions)

// CompileOptions holds parser configuration.
type CompileOptions struct {
	// MaxDepth limits syntactic nesting to prevent stack exhaustion on
	// pathological input such as thousands of nested parentheses.
	MaxDepth int
}

// DefaultMaxDepth is the nesting limit used when none is configured.
const DefaultMaxDepth = 10000

// ResolveOptions applies opts over the defaults and returns the result.
// Two option lists that resolve to equal values parse every source alike.
func ResolveOptions(opts ...CompileOption) CompileOptions {
	options := CompileOptions{
		MaxDepth: DefaultMaxDepth,
	}
	for _, opt := range opts {
		opt(&options)
	}
	return options
}

// WithMaxDepth sets the maximum parsing depth. Groups, slice bounds and
// self-evaluation operands each add a level; operands of a + chain share one.
func WithMaxDepth(depth int) CompileOption {
	return func(opts *CompileOptions) {
		opts.MaxDepth = depth
	}
}
