package evaluator

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/sandrolain/gostringed/pkg/parser"
	"github.com/sandrolain/gostringed/pkg/types"
)

// evalNode evaluates an AST node in the given context.
func (e *Evaluator) evalNode(ctx context.Context, node *types.ASTNode, evalCtx *EvalContext) (string, error) {
	// Check context cancellation
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	default:
	}

	if depth := evalCtx.enter(); e.opts.MaxDepth > 0 && depth > e.opts.MaxDepth {
		evalCtx.leave()
		err := types.NewError(types.ErrCodeRecursionLimit, "maximum recursion depth exceeded", node.Position)
		return "", withSource(err, evalCtx)
	}
	defer evalCtx.leave()

	if e.opts.Debug {
		e.logger.Debug("evaluating node",
			"type", node.Type,
			"position", node.Position,
			"depth", evalCtx.Depth(),
			"level", evalCtx.Level())
	}

	switch node.Type {
	case types.NodeGroup:
		return e.evalNode(ctx, node.Operand, evalCtx)
	case types.NodeInput:
		return evalCtx.Input(), nil
	case types.NodeLiteral:
		return parser.Unescape(node.Text), nil
	case types.NodeConcat:
		return e.evalConcat(ctx, node, evalCtx)
	case types.NodeSlice:
		return e.evalSlice(ctx, node, evalCtx)
	case types.NodeSelfEval:
		return e.evalSelfEval(ctx, node, evalCtx)
	default:
		return "", fmt.Errorf("unsupported node type: %s", node.Type)
	}
}

// evalConcat evaluates the operands of a concatenation chain left to right.
// The chain is walked along its right spine, so each link costs no depth.
func (e *Evaluator) evalConcat(ctx context.Context, node *types.ASTNode, evalCtx *EvalContext) (string, error) {
	var b strings.Builder
	for node.Type == types.NodeConcat {
		left, err := e.evalNode(ctx, node.LHS, evalCtx)
		if err != nil {
			return "", err
		}
		b.WriteString(left)
		node = node.RHS
	}
	last, err := e.evalNode(ctx, node, evalCtx)
	if err != nil {
		return "", err
	}
	b.WriteString(last)
	return b.String(), nil
}

// evalSlice evaluates base[lower:upper]. Bounds are byte offsets; an omitted
// lower bound is 0 and an omitted upper bound is the length of the base.
func (e *Evaluator) evalSlice(ctx context.Context, node *types.ASTNode, evalCtx *EvalContext) (string, error) {
	s, err := e.evalNode(ctx, node.Operand, evalCtx)
	if err != nil {
		return "", err
	}

	lower := 0
	if node.Lower != nil {
		if lower, err = e.evalBound(ctx, node.Lower, evalCtx); err != nil {
			return "", err
		}
	}

	upper := len(s)
	if node.Upper != nil {
		if upper, err = e.evalBound(ctx, node.Upper, evalCtx); err != nil {
			return "", err
		}
	}

	if lower > upper || upper > len(s) {
		err := types.NewError(types.ErrCodeOutOfBounds,
			fmt.Sprintf("out of bound: [%d:%d] on length %d", lower, upper, len(s)), node.Position)
		return "", withSource(err, evalCtx)
	}

	if splitsRune(s, lower) || splitsRune(s, upper) {
		err := types.NewError(types.ErrCodeInvalidBoundary,
			fmt.Sprintf("slice [%d:%d] splits a multi-byte character", lower, upper), node.Position)
		return "", withSource(err, evalCtx)
	}

	return s[lower:upper], nil
}

// evalBound evaluates a slice bound and parses it as a non-negative integer.
func (e *Evaluator) evalBound(ctx context.Context, node *types.ASTNode, evalCtx *EvalContext) (int, error) {
	text, err := e.evalNode(ctx, node, evalCtx)
	if err != nil {
		return 0, err
	}

	n, err := parseBound(text)
	if err != nil {
		perr := types.NewError(types.ErrCodeInvalidNumber,
			fmt.Sprintf("invalid number %q", text), node.Position).
			WithText(text).
			WithCause(err)
		return 0, withSource(perr, evalCtx)
	}
	return n, nil
}

// evalSelfEval evaluates the operand to source text, then compiles and runs
// that text against the original input.
func (e *Evaluator) evalSelfEval(ctx context.Context, node *types.ASTNode, evalCtx *EvalContext) (string, error) {
	code, err := e.evalNode(ctx, node.Operand, evalCtx)
	if err != nil {
		return "", err
	}

	prog, err := e.Compile(code)
	if err != nil {
		var serr *types.Error
		if errors.As(err, &serr) {
			serr.WithSource(code)
		}
		return "", err
	}

	if e.opts.Debug {
		e.logger.Debug("self-evaluating", "source", code, "level", evalCtx.Level()+1)
	}

	return e.evalNode(ctx, prog.AST(), evalCtx.NewChildContext(code))
}

// parseBound parses a base-10 unsigned integer. A single leading '+' is
// accepted; values beyond the int range saturate, which always puts them out
// of bounds.
func parseBound(text string) (int, error) {
	n, err := strconv.ParseUint(strings.TrimPrefix(text, "+"), 10, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return 0, err
	}
	if err != nil || n > math.MaxInt {
		return math.MaxInt, nil
	}
	return int(n), nil
}

// splitsRune reports whether byte offset i falls inside a valid multi-byte
// UTF-8 sequence of s. Offsets inside invalid byte runs never split anything.
func splitsRune(s string, i int) bool {
	if i <= 0 || i >= len(s) || utf8.RuneStart(s[i]) {
		return false
	}
	j := i
	for j > 0 && i-j < utf8.UTFMax && !utf8.RuneStart(s[j]) {
		j--
	}
	r, size := utf8.DecodeRuneInString(s[j:])
	if r == utf8.RuneError && size == 1 {
		return false
	}
	return j+size > i
}

// withSource attaches the runtime-computed program text to err.
func withSource(err *types.Error, evalCtx *EvalContext) *types.Error {
	if src := evalCtx.Source(); src != "" {
		err.WithSource(src)
	}
	return err
}
