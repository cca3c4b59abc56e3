// Package gostringed provides a Go implementation of the stringed language, a
// tiny language for transforming a single input string.
//
// A program is built from string literals ("..."), the input marker (_),
// concatenation (+), byte slicing (e[lo:hi]), grouping ((e)) and runtime
// self-interpretation ($e), which evaluates e to program text and then runs
// that text against the same input.
//
// # Quick Start
//
//	// Simple evaluation
//	out, err := gostringed.Run(`_[0:3] + "..."`, "hello")
//
//	// Compile once, evaluate many times
//	prog, err := gostringed.Compile(`"<" + _ + ">"`)
//	ev := evaluator.New()
//	out1, _ := ev.Eval(ctx, prog, "a")
//	out2, _ := ev.Eval(ctx, prog, "b")
//
//	// With options
//	out, err := gostringed.Run(`$_`, src,
//	    gostringed.WithMaxDepth(500),
//	    gostringed.WithTimeout(time.Second),
//	)
//
// # More Information
//
//   - Parser: github.com/sandrolain/gostringed/pkg/parser
//   - Evaluator: github.com/sandrolain/gostringed/pkg/evaluator
//   - Types: github.com/sandrolain/gostringed/pkg/types
package gostringed

import (
	"context"
	"fmt"
	"time"

	"github.com/sandrolain/gostringed/pkg/evaluator"
	"github.com/sandrolain/gostringed/pkg/parser"
	"github.com/sandrolain/gostringed/pkg/types"
)

// Version returns the current version of gostringed.
func Version() string {
	return "v0.1.0-dev"
}

// Compile parses a program for repeated evaluation.
//
// The compiled program can be evaluated multiple times against different
// inputs. It is safe for concurrent use.
//
// Example:
//
//	prog, err := gostringed.Compile(`_[1:]`)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	out, _ := evaluator.New().Eval(ctx, prog, "hello")
func Compile(source string, opts ...parser.CompileOption) (*types.Program, error) {
	return parser.Compile(source, opts...)
}

// Run is a convenience function that compiles and evaluates a program in a
// single call.
//
// For repeated evaluations of the same program, use Compile instead.
//
// Example:
//
//	out, err := gostringed.Run(`$"_"`, "xyz") // "xyz"
func Run(source, input string, opts ...evaluator.EvalOption) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	return RunWithContext(ctx, source, input, opts...)
}

// RunWithContext evaluates a program with a custom context.
func RunWithContext(ctx context.Context, source, input string, opts ...evaluator.EvalOption) (string, error) {
	ev := evaluator.New(opts...)
	return ev.Run(ctx, source, input)
}

// MustCompile is like Compile but panics if the program cannot be compiled.
// It simplifies safe initialization of global variables.
func MustCompile(source string) *types.Program {
	prog, err := Compile(source)
	if err != nil {
		panic(fmt.Sprintf("gostringed: Compile(%q): %v", source, err))
	}
	return prog
}

// Evaluation options, re-exported from the evaluator package.
var (
	WithCaching     = evaluator.WithCaching
	WithCacheSize   = evaluator.WithCacheSize
	WithConcurrency = evaluator.WithConcurrency
	WithDebug       = evaluator.WithDebug
	WithLogger      = evaluator.WithLogger
	WithMaxDepth    = evaluator.WithMaxDepth
	WithTimeout     = evaluator.WithTimeout
)
