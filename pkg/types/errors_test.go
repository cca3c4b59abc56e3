package types

import (
	"errors"
	"fmt"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorString(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{
			name: "with position",
			err:  NewError(ErrCodeUnterminatedString, "unterminated string", 4),
			want: "S0101 at position 4: unterminated string",
		},
		{
			name: "without position",
			err:  &Error{Code: ErrCodeRecursionLimit, Message: "maximum recursion depth exceeded", Position: -1},
			want: "D0304: maximum recursion depth exceeded",
		},
		{
			name: "expect error",
			err:  NewExpectError(ErrCodeUnexpectedEnd, "`)`", "EOF", 3),
			want: "S0203 at position 3: expecting `)`, got EOF",
		},
		{
			name: "with source",
			err:  NewError(ErrCodeOutOfBounds, "out of bound", 0).WithSource(`_[9:]`),
			want: `D0301 at position 0: out of bound (in "_[9:]")`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestErrorIs(t *testing.T) {
	err := NewError(ErrCodeOutOfBounds, "out of bound: [5:3] on length 5", 0)
	wrapped := fmt.Errorf("evaluating: %w", err)

	assert.ErrorIs(t, err, ErrOutOfBounds)
	assert.ErrorIs(t, wrapped, ErrOutOfBounds)
	assert.NotErrorIs(t, wrapped, ErrInvalidNumber)
	assert.False(t, err.Is(errors.New("D0301")))
}

func TestErrorCause(t *testing.T) {
	_, cause := strconv.ParseUint("x", 10, 64)
	err := NewError(ErrCodeInvalidNumber, `invalid number "x"`, 2).WithText("x").WithCause(cause)

	assert.Equal(t, "x", err.Text)
	assert.ErrorIs(t, err, strconv.ErrSyntax)
	assert.ErrorIs(t, err, ErrInvalidNumber)
}

func TestWithSourceKeepsInnermost(t *testing.T) {
	err := NewError(ErrCodeOutOfBounds, "out of bound", 0)
	err.WithSource("inner").WithSource("outer")
	assert.Equal(t, "inner", err.Source)
}

func TestErrorKind(t *testing.T) {
	tests := []struct {
		code ErrorCode
		kind ErrorKind
	}{
		{ErrCodeUnterminatedString, KindLex},
		{ErrCodeEmptySource, KindParse},
		{ErrCodeUnexpectedToken, KindParse},
		{ErrCodeUnexpectedEnd, KindParse},
		{ErrCodeTrailingTokens, KindParse},
		{ErrCodeOutOfBounds, KindEval},
		{ErrCodeInvalidNumber, KindEval},
		{ErrCodeInvalidBoundary, KindEval},
		{ErrCodeRecursionLimit, KindEval},
	}
	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			assert.Equal(t, tt.kind, NewError(tt.code, "", 0).Kind())
		})
	}
}
