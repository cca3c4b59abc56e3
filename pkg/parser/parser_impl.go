package parser

import (
	"fmt"

	"github.com/sandrolain/gostringed/pkg/types"
)

// Parser turns a token sequence into an AST.
type Parser struct {
	source string
	tokens []Token
	lexErr error
	arena  *types.NodeArena
	opts   CompileOptions
}

// partial is the outcome of parsing one construct: the node, how many tokens
// it consumed and whether the input marker appears in it.
type partial struct {
	node     *types.ASTNode
	consumed int
	refInput bool
}

// NewParser creates a new parser for the given source.
func NewParser(source string, opts ...CompileOption) *Parser {
	options := ResolveOptions(opts...)
	tokens, err := Tokenize(source)
	return &Parser{
		source: source,
		tokens: tokens,
		lexErr: err,
		arena:  types.NewNodeArena(),
		opts:   options,
	}
}

// Tokens returns the token sequence the parser works on.
func (p *Parser) Tokens() []Token {
	return p.tokens
}

// Parse parses the whole token sequence as a single expression.
func (p *Parser) Parse() (*types.Program, error) {
	if p.lexErr != nil {
		return nil, p.lexErr
	}

	if len(p.tokens) == 0 {
		return nil, types.NewError(types.ErrCodeEmptySource, "invalid expression, it can't be empty", 0)
	}

	res, err := p.parseExpr(0, 0)
	if err != nil {
		return nil, err
	}

	if res.consumed != len(p.tokens) {
		t := p.tokens[res.consumed]
		err := types.NewError(types.ErrCodeTrailingTokens, fmt.Sprintf("unexpected %s", t.Describe()), t.Position)
		err.Got = t.Describe()
		return nil, err
	}

	return types.NewProgram(res.node, p.source, res.consumed, res.refInput), nil
}

// parseExpr parses `postfixed ( "+" postfixed )*` starting at token index
// pos and folds the operands to the right. Operands of one chain share the
// same depth, so long flat concatenations are not limited by MaxDepth.
func (p *Parser) parseExpr(pos, depth int) (partial, error) {
	if p.opts.MaxDepth > 0 && depth > p.opts.MaxDepth {
		return partial{}, types.NewError(types.ErrCodeRecursionLimit, "maximum nesting depth exceeded", p.positionAt(pos))
	}

	var operands []partial
	next := pos
	for {
		operand, err := p.parsePostfixed(next, depth)
		if err != nil {
			return partial{}, err
		}
		operands = append(operands, operand)
		next += operand.consumed
		if next >= len(p.tokens) || p.tokens[next].Type != TokenPlus {
			break
		}
		next++ // past `+`
	}

	res := operands[len(operands)-1]
	for i := len(operands) - 2; i >= 0; i-- {
		left := operands[i]
		node := p.arena.Alloc(types.NodeConcat, left.node.Position)
		node.LHS = left.node
		node.RHS = res.node
		res = partial{
			node:     node,
			consumed: left.consumed + 1 + res.consumed,
			refInput: left.refInput || res.refInput,
		}
	}
	return res, nil
}

// parsePostfixed parses a primary followed by any number of slice suffixes.
// Each suffix wraps the result so far.
func (p *Parser) parsePostfixed(pos, depth int) (partial, error) {
	res, err := p.parsePrimary(pos, depth)
	if err != nil {
		return partial{}, err
	}

	for {
		next := pos + res.consumed
		if next >= len(p.tokens) || p.tokens[next].Type != TokenBracketOpen {
			return res, nil
		}
		res, err = p.parseSlice(res, pos, depth)
		if err != nil {
			return partial{}, err
		}
	}
}

// parsePrimary parses `_`, a string or number, `$ expr` or `( expr )`.
func (p *Parser) parsePrimary(pos, depth int) (partial, error) {
	if pos >= len(p.tokens) {
		return partial{}, p.unexpectedEnd("expression")
	}

	t := p.tokens[pos]
	switch t.Type {
	case TokenInput:
		return partial{
			node:     p.arena.Alloc(types.NodeInput, t.Position),
			consumed: 1,
			refInput: true,
		}, nil
	case TokenString, TokenNumber:
		node := p.arena.Alloc(types.NodeLiteral, t.Position)
		node.Text = t.Value
		return partial{node: node, consumed: 1}, nil
	case TokenDollar:
		return p.parseSelfEval(pos, depth)
	case TokenParenOpen:
		return p.parseGroup(pos, depth)
	default:
		return partial{}, p.unexpectedToken("expression", t)
	}
}

// parseSelfEval parses `$ expr`. The operand runs to the end of the
// enclosing expression, so $a+b is $(a+b).
func (p *Parser) parseSelfEval(pos, depth int) (partial, error) {
	operand, err := p.parseExpr(pos+1, depth+1)
	if err != nil {
		return partial{}, err
	}

	node := p.arena.Alloc(types.NodeSelfEval, p.tokens[pos].Position)
	node.Operand = operand.node
	return partial{
		node:     node,
		consumed: operand.consumed + 1,
		refInput: operand.refInput,
	}, nil
}

// parseGroup parses `( expr )`.
func (p *Parser) parseGroup(pos, depth int) (partial, error) {
	inner, err := p.parseExpr(pos+1, depth+1)
	if err != nil {
		return partial{}, err
	}

	closing := pos + 1 + inner.consumed
	if closing >= len(p.tokens) {
		return partial{}, p.unexpectedEnd("`)`")
	}
	if t := p.tokens[closing]; t.Type != TokenParenClose {
		return partial{}, p.unexpectedToken("`)`", t)
	}

	node := p.arena.Alloc(types.NodeGroup, p.tokens[pos].Position)
	node.Operand = inner.node
	return partial{
		node:     node,
		consumed: inner.consumed + 2,
		refInput: inner.refInput,
	}, nil
}

// parseSlice parses `[ expr? : expr? ]` following base, which starts at
// token index start. The returned partial spans base and the suffix.
func (p *Parser) parseSlice(base partial, start, depth int) (partial, error) {
	refInput := base.refInput
	i := start + base.consumed + 1 // past `[`

	if i >= len(p.tokens) {
		return partial{}, p.unexpectedEnd("expression or :")
	}

	var lower *types.ASTNode
	if p.tokens[i].Type != TokenColon {
		res, err := p.parseExpr(i, depth+1)
		if err != nil {
			return partial{}, err
		}
		lower = res.node
		refInput = refInput || res.refInput
		i += res.consumed

		if i >= len(p.tokens) {
			return partial{}, p.unexpectedEnd(":")
		}
		if t := p.tokens[i]; t.Type != TokenColon {
			return partial{}, p.unexpectedToken(":", t)
		}
	}
	i++ // past `:`

	if i >= len(p.tokens) {
		return partial{}, p.unexpectedEnd("expression or `]`")
	}

	var upper *types.ASTNode
	if p.tokens[i].Type != TokenBracketClose {
		res, err := p.parseExpr(i, depth+1)
		if err != nil {
			return partial{}, err
		}
		upper = res.node
		refInput = refInput || res.refInput
		i += res.consumed

		if i >= len(p.tokens) {
			return partial{}, p.unexpectedEnd("`]`")
		}
		if t := p.tokens[i]; t.Type != TokenBracketClose {
			return partial{}, p.unexpectedToken("`]`", t)
		}
	}
	i++ // past `]`

	node := p.arena.Alloc(types.NodeSlice, base.node.Position)
	node.Operand = base.node
	node.Lower = lower
	node.Upper = upper
	return partial{
		node:     node,
		consumed: i - start,
		refInput: refInput,
	}, nil
}

func (p *Parser) unexpectedToken(expected string, got Token) error {
	return types.NewExpectError(types.ErrCodeUnexpectedToken, expected, got.Describe(), got.Position)
}

func (p *Parser) unexpectedEnd(expected string) error {
	return types.NewExpectError(types.ErrCodeUnexpectedEnd, expected, TokenEOF.String(), len(p.source))
}

// positionAt returns the byte offset of token i, or the end of the source.
func (p *Parser) positionAt(i int) int {
	if i < len(p.tokens) {
		return p.tokens[i].Position
	}
	return len(p.source)
}
