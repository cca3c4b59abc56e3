package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandrolain/gostringed/pkg/types"
)

func TestTokenize(t *testing.T) {
	tokens, err := Tokenize(`_ + "a\"b" $([12:])`)
	require.NoError(t, err)

	want := []Token{
		{Type: TokenInput, Value: "_", Position: 0},
		{Type: TokenPlus, Value: "+", Position: 2},
		{Type: TokenString, Value: `a\"b`, Position: 4},
		{Type: TokenDollar, Value: "$", Position: 11},
		{Type: TokenParenOpen, Value: "(", Position: 12},
		{Type: TokenBracketOpen, Value: "[", Position: 13},
		{Type: TokenNumber, Value: "12", Position: 14},
		{Type: TokenColon, Value: ":", Position: 16},
		{Type: TokenBracketClose, Value: "]", Position: 17},
		{Type: TokenParenClose, Value: ")", Position: 18},
	}
	assert.Equal(t, want, tokens)
}

func TestTokenizeSkipsUnknownBytes(t *testing.T) {
	tests := []struct {
		name   string
		source string
		types  []TokenType
	}{
		{"empty", "", nil},
		{"whitespace", " \t\n", nil},
		{"letters", "abc _ xyz", []TokenType{TokenInput}},
		{"non-ascii", "é_€", []TokenType{TokenInput}},
		{"punctuation", "_ - * / ,", []TokenType{TokenInput}},
		{"digits split by letters", "1a2", []TokenType{TokenNumber, TokenNumber}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens, err := Tokenize(tt.source)
			require.NoError(t, err)
			var got []TokenType
			for _, tok := range tokens {
				got = append(got, tok.Type)
			}
			assert.Equal(t, tt.types, got)
		})
	}
}

func TestTokenizeStrings(t *testing.T) {
	tests := []struct {
		source string
		value  string
	}{
		{`""`, ""},
		{`"hello"`, "hello"},
		{`"a\\"`, `a\\`},
		{`"\""`, `\"`},
		{`"_ $ + [ ] 12"`, "_ $ + [ ] 12"},
		{`"é"`, "é"},
	}
	for _, tt := range tests {
		t.Run(tt.source, func(t *testing.T) {
			tokens, err := Tokenize(tt.source)
			require.NoError(t, err)
			require.Len(t, tokens, 1)
			assert.Equal(t, TokenString, tokens[0].Type)
			assert.Equal(t, tt.value, tokens[0].Value)
		})
	}
}

func TestTokenizeUnterminatedString(t *testing.T) {
	tests := []struct {
		source   string
		position int
	}{
		{`"abc`, 0},
		{`_ + "abc`, 4},
		{`"a\"`, 0},
		{`"ok" "`, 5},
	}
	for _, tt := range tests {
		t.Run(tt.source, func(t *testing.T) {
			_, err := Tokenize(tt.source)
			require.Error(t, err)
			assert.ErrorIs(t, err, types.ErrUnterminatedString)

			var serr *types.Error
			require.ErrorAs(t, err, &serr)
			assert.Equal(t, tt.position, serr.Position)
		})
	}
}

func TestLexerNext(t *testing.T) {
	l := NewLexer("_")
	assert.Equal(t, TokenInput, l.Next().Type)
	assert.Equal(t, TokenEOF, l.Next().Type)
	assert.Equal(t, TokenEOF, l.Next().Type)
	assert.NoError(t, l.Err())

	l = NewLexer(`"x`)
	assert.Equal(t, TokenError, l.Next().Type)
	assert.Equal(t, TokenError, l.Next().Type)
	assert.Error(t, l.Err())
}

func TestTokenTypeString(t *testing.T) {
	assert.Equal(t, "EOF", TokenEOF.String())
	assert.Equal(t, "string", TokenString.String())
	assert.Equal(t, "number", TokenNumber.String())
	assert.Equal(t, "`)`", TokenParenClose.String())
	assert.Equal(t, "`]`", Token{Type: TokenBracketClose}.Describe())
}
