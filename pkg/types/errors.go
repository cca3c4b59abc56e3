package types

import "fmt"

// ErrorCode represents a gostringed error code.
type ErrorCode string

// Error codes. S0xxx codes are raised while tokenizing and parsing,
// D0xxx codes while evaluating.
const (
	// S01xx: lexical errors
	ErrCodeUnterminatedString ErrorCode = "S0101"

	// S02xx: syntax errors
	ErrCodeEmptySource     ErrorCode = "S0201"
	ErrCodeUnexpectedToken ErrorCode = "S0202"
	ErrCodeUnexpectedEnd   ErrorCode = "S0203"
	ErrCodeTrailingTokens  ErrorCode = "S0204"

	// D03xx: evaluation errors
	ErrCodeOutOfBounds     ErrorCode = "D0301"
	ErrCodeInvalidNumber   ErrorCode = "D0302"
	ErrCodeInvalidBoundary ErrorCode = "D0303"
	ErrCodeRecursionLimit  ErrorCode = "D0304"
)

// ErrorKind groups error codes by the pipeline stage that raises them.
type ErrorKind string

const (
	KindLex   ErrorKind = "lex"
	KindParse ErrorKind = "parse"
	KindEval  ErrorKind = "eval"
)

// Sentinel errors for use with errors.Is. Matching is by Code only.
var (
	ErrUnterminatedString = &Error{Code: ErrCodeUnterminatedString, Message: "unterminated string", Position: -1}
	ErrEmptySource        = &Error{Code: ErrCodeEmptySource, Message: "invalid expression, it can't be empty", Position: -1}
	ErrUnexpectedToken    = &Error{Code: ErrCodeUnexpectedToken, Message: "unexpected token", Position: -1}
	ErrUnexpectedEnd      = &Error{Code: ErrCodeUnexpectedEnd, Message: "unexpected end of input", Position: -1}
	ErrTrailingTokens     = &Error{Code: ErrCodeTrailingTokens, Message: "trailing tokens", Position: -1}
	ErrOutOfBounds        = &Error{Code: ErrCodeOutOfBounds, Message: "out of bound", Position: -1}
	ErrInvalidNumber      = &Error{Code: ErrCodeInvalidNumber, Message: "invalid number", Position: -1}
	ErrInvalidBoundary    = &Error{Code: ErrCodeInvalidBoundary, Message: "slice bound splits a multi-byte character", Position: -1}
	ErrRecursionLimit     = &Error{Code: ErrCodeRecursionLimit, Message: "maximum recursion depth exceeded", Position: -1}
)

// Error represents a structured gostringed error.
type Error struct {
	Code     ErrorCode
	Message  string
	Position int

	// Expected and Got describe syntax errors ("expecting X, got Y").
	Expected string
	Got      string

	// Text is the offending slice-bound text for ErrCodeInvalidNumber.
	Text string

	// Source is the program text the error was raised in, set when the
	// error comes from a program computed at runtime by `$`.
	Source string

	Err error
}

// NewError creates a new error.
func NewError(code ErrorCode, message string, position int) *Error {
	return &Error{
		Code:     code,
		Message:  message,
		Position: position,
	}
}

// NewExpectError creates an "expecting X, got Y" syntax error.
func NewExpectError(code ErrorCode, expected, got string, position int) *Error {
	return &Error{
		Code:     code,
		Message:  fmt.Sprintf("expecting %s, got %s", expected, got),
		Position: position,
		Expected: expected,
		Got:      got,
	}
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := e.Message
	if e.Source != "" {
		msg = fmt.Sprintf("%s (in %q)", msg, e.Source)
	}
	if e.Position >= 0 {
		return fmt.Sprintf("%s at position %d: %s", e.Code, e.Position, msg)
	}
	return fmt.Sprintf("%s: %s", e.Code, msg)
}

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *Error with the same code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// Kind returns the pipeline stage that produced the error.
func (e *Error) Kind() ErrorKind {
	switch e.Code {
	case ErrCodeUnterminatedString:
		return KindLex
	case ErrCodeEmptySource, ErrCodeUnexpectedToken, ErrCodeUnexpectedEnd, ErrCodeTrailingTokens:
		return KindParse
	default:
		return KindEval
	}
}

// WithSource records the program text the error was raised in.
// An already recorded source is kept, so the innermost program wins.
func (e *Error) WithSource(source string) *Error {
	if e.Source == "" {
		e.Source = source
	}
	return e
}

// WithText records the offending text.
func (e *Error) WithText(text string) *Error {
	e.Text = text
	return e
}

// WithCause wraps another error.
func (e *Error) WithCause(err error) *Error {
	e.Err = err
	return e
}
