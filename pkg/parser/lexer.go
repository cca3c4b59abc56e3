package parser

import (
	"github.com/sandrolain/gostringed/pkg/types"
)

// Lexer converts source text into a sequence of tokens.
//
// The lexer works on single bytes: the language only assigns meaning to ASCII
// symbols and digits, and string literal content is captured as a raw byte
// slice of the source.
type Lexer struct {
	input   string // Input string being scanned
	length  int    // Length of input string
	current int    // Current position in input
	err     error  // First error encountered
}

// NewLexer creates a new lexer from the provided input string.
// The input is tokenized by successive calls to the Next method.
func NewLexer(input string) *Lexer {
	return &Lexer{
		input:  input,
		length: len(input),
	}
}

// Next returns the next token from the input.
// When the end of the input is reached, Next returns TokenEOF for all
// subsequent calls. After an error it returns TokenError; see Err.
func (l *Lexer) Next() Token {
	if l.err != nil {
		return Token{Type: TokenError, Position: l.current}
	}

	for l.current < l.length {
		b := l.input[l.current]

		if b == '"' {
			return l.scanString()
		}

		if isDigit(b) {
			return l.scanNumber()
		}

		if tt := lookupSymbol(b); tt > 0 {
			t := Token{
				Type:     tt,
				Value:    l.input[l.current : l.current+1],
				Position: l.current,
			}
			l.current++
			return t
		}

		// Anything else outside a string literal carries no meaning.
		l.current++
	}

	return Token{Type: TokenEOF, Position: l.current}
}

// Err returns the first error encountered during lexing, if any.
func (l *Lexer) Err() error {
	return l.err
}

// scanString reads a string literal. The lexer is positioned on the opening
// quote. A backslash escapes the byte that follows it, whatever it is; the
// escape sequences are left in the token value and decoded at evaluation.
func (l *Lexer) scanString() Token {
	quote := l.current
	start := quote + 1
	escaping := false

	for i := start; i < l.length; i++ {
		switch {
		case escaping:
			escaping = false
		case l.input[i] == '\\':
			escaping = true
		case l.input[i] == '"':
			l.current = i + 1
			return Token{
				Type:     TokenString,
				Value:    l.input[start:i],
				Position: quote,
			}
		}
	}

	l.current = l.length
	l.err = types.NewError(types.ErrCodeUnterminatedString, "unterminated string", quote)
	return Token{Type: TokenError, Value: l.input[start:], Position: quote}
}

// scanNumber reads a run of ASCII digits. A number is shorthand for a string
// literal holding the same digits, so `_[0:3]` reads like `_["0":"3"]`.
func (l *Lexer) scanNumber() Token {
	start := l.current
	for l.current < l.length && isDigit(l.input[l.current]) {
		l.current++
	}
	return Token{
		Type:     TokenNumber,
		Value:    l.input[start:l.current],
		Position: start,
	}
}

func isDigit(b byte) bool {
	return '0' <= b && b <= '9'
}

// Tokenize converts source into its complete token sequence.
// The returned slice never contains TokenEOF or TokenError.
func Tokenize(source string) ([]Token, error) {
	l := NewLexer(source)
	var tokens []Token
	for {
		t := l.Next()
		switch t.Type {
		case TokenEOF:
			return tokens, nil
		case TokenError:
			return nil, l.Err()
		}
		tokens = append(tokens, t)
	}
}
