package types

import (
	"strings"
)

// NodeType identifies the type of an AST node.
type NodeType string

// AST node types.
const (
	NodeGroup    NodeType = "group"    // ( expr )
	NodeInput    NodeType = "input"    // _
	NodeLiteral  NodeType = "literal"  // "text"
	NodeConcat   NodeType = "concat"   // expr + expr
	NodeSlice    NodeType = "slice"    // expr[lower:upper]
	NodeSelfEval NodeType = "selfeval" // $expr
)

// ASTNode represents a node in the Abstract Syntax Tree.
//
// Which child fields are populated depends on Type:
//
//	NodeGroup     Operand
//	NodeInput     -
//	NodeLiteral   Text (raw, still escaped)
//	NodeConcat    LHS, RHS
//	NodeSlice     Operand (base), Lower, Upper (nil when omitted)
//	NodeSelfEval  Operand
type ASTNode struct {
	Type     NodeType `json:"type"`
	Text     string   `json:"text,omitempty"`
	Position int      `json:"position"`

	Operand *ASTNode `json:"operand,omitempty"`
	LHS     *ASTNode `json:"lhs,omitempty"`
	RHS     *ASTNode `json:"rhs,omitempty"`
	Lower   *ASTNode `json:"lower,omitempty"`
	Upper   *ASTNode `json:"upper,omitempty"`
}

// NewASTNode creates a new AST node of the specified type.
// Prefer NodeArena.Alloc when parsing to reduce per-node heap allocations.
func NewASTNode(nodeType NodeType, position int) *ASTNode {
	return &ASTNode{
		Type:     nodeType,
		Position: position,
	}
}

// arenaChunkSize is the number of ASTNode values pre-allocated per arena chunk.
// Programs in this language are short; one chunk covers the common case.
const arenaChunkSize = 32

// NodeArena is a bump-pointer allocator for ASTNode values.
//
// The arena pre-allocates fixed-size chunks of ASTNode structs and returns
// pointers into them, so a typical program costs a single allocation for its
// whole tree.
//
// # Lifetime
//
// Pointers returned by Alloc keep their chunk reachable, so the arena needs no
// explicit release: the GC reclaims it together with the last [Program] that
// references its nodes, including when the program is evicted from the cache.
//
// # Thread safety
//
// NodeArena is NOT thread-safe. Each parse owns its own arena.
type NodeArena struct {
	chunks [][]ASTNode
	pos    int
}

// NewNodeArena allocates an arena pre-warmed with one initial chunk.
func NewNodeArena() *NodeArena {
	return &NodeArena{
		chunks: [][]ASTNode{make([]ASTNode, arenaChunkSize)},
	}
}

// Alloc returns a pointer to a zero-valued ASTNode inside the arena with Type
// and Position set.
func (a *NodeArena) Alloc(nodeType NodeType, position int) *ASTNode {
	if a.pos >= arenaChunkSize {
		a.chunks = append(a.chunks, make([]ASTNode, arenaChunkSize))
		a.pos = 0
	}
	n := &a.chunks[len(a.chunks)-1][a.pos]
	a.pos++
	n.Type = nodeType
	n.Position = position
	return n
}

// String renders the node back to source text. For trees built by the
// parser, parsing the result yields an equal tree (positions aside); hand-built
// trees that the grammar cannot express without grouping must carry an
// explicit NodeGroup.
func (n *ASTNode) String() string {
	var sb strings.Builder
	n.write(&sb)
	return sb.String()
}

func (n *ASTNode) write(sb *strings.Builder) {
	if n == nil {
		return
	}
	switch n.Type {
	case NodeGroup:
		sb.WriteByte('(')
		n.Operand.write(sb)
		sb.WriteByte(')')
	case NodeInput:
		sb.WriteByte('_')
	case NodeLiteral:
		sb.WriteByte('"')
		sb.WriteString(n.Text)
		sb.WriteByte('"')
	case NodeConcat:
		n.LHS.write(sb)
		sb.WriteByte('+')
		n.RHS.write(sb)
	case NodeSlice:
		n.Operand.write(sb)
		sb.WriteByte('[')
		n.Lower.write(sb)
		sb.WriteByte(':')
		n.Upper.write(sb)
		sb.WriteByte(']')
	case NodeSelfEval:
		sb.WriteByte('$')
		n.Operand.write(sb)
	}
}

// Equal reports whether two trees have the same shape and literal text.
// Positions are ignored.
func (n *ASTNode) Equal(other *ASTNode) bool {
	if n == nil || other == nil {
		return n == other
	}
	if n.Type != other.Type || n.Text != other.Text {
		return false
	}
	return n.Operand.Equal(other.Operand) &&
		n.LHS.Equal(other.LHS) &&
		n.RHS.Equal(other.RHS) &&
		n.Lower.Equal(other.Lower) &&
		n.Upper.Equal(other.Upper)
}
