package evaluator

import (
	"fmt"
)

// EvalContext maintains the state of one evaluation.
type EvalContext struct {
	// input is the caller-supplied subject string (`_`). Programs started by
	// `$` see the same input as the program that started them.
	input string

	// source is the text of the program being evaluated when it was computed
	// at runtime by `$`; empty for the top-level program.
	source string

	// level counts how many `$` re-entries led to this context.
	level int

	// depth is the evaluation depth counter, shared with every child context.
	depth *int
}

// NewContext creates a new evaluation context for input.
func NewContext(input string) *EvalContext {
	d := 0
	return &EvalContext{
		input: input,
		depth: &d,
	}
}

// NewChildContext creates the context for a program computed at runtime.
// The child keeps the original input and shares the depth counter.
func (c *EvalContext) NewChildContext(source string) *EvalContext {
	return &EvalContext{
		input:  c.input,
		source: source,
		level:  c.level + 1,
		depth:  c.depth,
	}
}

// Input returns the input string.
func (c *EvalContext) Input() string {
	return c.input
}

// Source returns the text of a runtime-computed program, or "".
func (c *EvalContext) Source() string {
	return c.source
}

// Level returns the self-evaluation nesting level.
func (c *EvalContext) Level() int {
	return c.level
}

// Depth returns the current evaluation depth.
func (c *EvalContext) Depth() int {
	return *c.depth
}

func (c *EvalContext) enter() int {
	*c.depth++
	return *c.depth
}

func (c *EvalContext) leave() {
	*c.depth--
}

// String returns a string representation of the context.
func (c *EvalContext) String() string {
	return fmt.Sprintf("Context{depth=%d, level=%d}", *c.depth, c.level)
}
