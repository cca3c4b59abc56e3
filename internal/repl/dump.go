package repl

import (
	"strings"

	"github.com/sandrolain/gostringed/pkg/parser"
	"github.com/sandrolain/gostringed/pkg/types"
)

// Dump renders node as an indented tree, one node per line.
func Dump(node *types.ASTNode) string {
	var sb strings.Builder
	dump(&sb, node, "", "")
	return sb.String()
}

func dump(sb *strings.Builder, node *types.ASTNode, indent, label string) {
	sb.WriteString(indent)
	sb.WriteString(label)
	if node == nil {
		sb.WriteString("<none>\n")
		return
	}

	sb.WriteString(string(node.Type))
	if node.Type == types.NodeLiteral {
		sb.WriteByte(' ')
		sb.WriteString(parser.Quote(parser.Unescape(node.Text)))
	}
	sb.WriteByte('\n')

	child := indent + "  "
	switch node.Type {
	case types.NodeGroup, types.NodeSelfEval:
		dump(sb, node.Operand, child, "")
	case types.NodeConcat:
		dump(sb, node.LHS, child, "")
		dump(sb, node.RHS, child, "")
	case types.NodeSlice:
		dump(sb, node.Operand, child, "")
		dump(sb, node.Lower, child, "lo: ")
		dump(sb, node.Upper, child, "hi: ")
	}
}
