package parser

// TokenType represents the type of a lexical token.
type TokenType uint8

const (
	// Special tokens
	TokenEOF TokenType = iota
	TokenError

	// Operands
	TokenInput  // _
	TokenString // "hello"
	TokenNumber // 42

	// Operators
	TokenDollar // $
	TokenPlus   // +
	TokenColon  // :

	// Grouping symbols
	TokenParenOpen    // (
	TokenParenClose   // )
	TokenBracketOpen  // [
	TokenBracketClose // ]
)

// String returns the human-readable description of the token type used in
// "expecting X, got Y" messages.
func (tt TokenType) String() string {
	switch tt {
	case TokenEOF:
		return "EOF"
	case TokenError:
		return "(error)"
	case TokenInput:
		return "_"
	case TokenString:
		return "string"
	case TokenNumber:
		return "number"
	case TokenDollar:
		return "$"
	case TokenPlus:
		return "+"
	case TokenColon:
		return ":"
	case TokenParenOpen:
		return "`(`"
	case TokenParenClose:
		return "`)`"
	case TokenBracketOpen:
		return "`[`"
	case TokenBracketClose:
		return "`]`"
	default:
		return "(unknown)"
	}
}

// Token represents a lexical token.
type Token struct {
	Type     TokenType // Type of the token
	Value    string    // Raw text; for strings the still-escaped content between the quotes
	Position int       // Byte offset of the token in the source
}

// Describe returns the human-readable description of the token.
func (t Token) Describe() string {
	return t.Type.String()
}

// symbols maps single-byte symbols to token types. Bytes that map to zero are
// not symbols and are skipped by the lexer.
var symbols = [...]TokenType{
	'_': TokenInput,
	'$': TokenDollar,
	'+': TokenPlus,
	':': TokenColon,
	'(': TokenParenOpen,
	')': TokenParenClose,
	'[': TokenBracketOpen,
	']': TokenBracketClose,
}

// lookupSymbol returns the token type for a symbol byte, or 0.
func lookupSymbol(b byte) TokenType {
	if int(b) >= len(symbols) {
		return 0
	}
	return symbols[b]
}
