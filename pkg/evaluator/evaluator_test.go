package evaluator

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandrolain/gostringed/pkg/cache"
	"github.com/sandrolain/gostringed/pkg/parser"
	"github.com/sandrolain/gostringed/pkg/types"
)

func TestRun(t *testing.T) {
	tests := []struct {
		name   string
		source string
		input  string
		want   string
	}{
		{"literal", `"hello"`, "", "hello"},
		{"input", "_", "world", "world"},
		{"slice", "_[0:3]", "hello", "hel"},
		{"quoted bounds", `_["0":"3"]`, "hello", "hel"},
		{"concat", `"a"+"b"+"c"`, "", "abc"},
		{"self eval", `$"_"`, "xyz", "xyz"},
		{"self eval of input", "$_", `"lit"`, "lit"},
		{"self eval keeps original input", `$"_+_"`, "ab", "abab"},
		{"self eval computed program", `$("_[" + _ + ":]")`, "1", ""},
		{"escaped literal", `"a\"b\\c"`, "", `a"b\c`},
		{"escaped program", `$"_[\"1\":]"`, "hey", "ey"},
		{"lower bound only", "_[1:]", "hello", "ello"},
		{"upper bound only", "_[:2]", "hello", "he"},
		{"full range", "_[:]", "hello", "hello"},
		{"empty range", "_[2:2]", "hello", ""},
		{"chained slices", "_[1:][1:]", "abc", "c"},
		{"plus sign bound", `_["+1":]`, "abc", "bc"},
		{"bound from input", "_[_:]", "1", ""},
		{"group", `("a"+_)[1:]`, "bc", "bc"},
		{"whole multi-byte rune", "_[0:2]", "é", "é"},
		{"after multi-byte rune", "_[2:]", "éa", "a"},
		{"invalid bytes never split", "_[:1]", "\xff\xfe", "\xff"},
		{"ignored bytes", "  the _ input  ", "x", "x"},
	}
	ev := New()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ev.Run(context.Background(), tt.source, tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRunErrors(t *testing.T) {
	tests := []struct {
		name     string
		source   string
		input    string
		target   error
		position int
		message  string
	}{
		{"unterminated", `"unterminated`, "", types.ErrUnterminatedString, 0, "unterminated string"},
		{"empty", "", "", types.ErrEmptySource, 0, ""},
		{"lower above upper", "_[5:3]", "hello", types.ErrOutOfBounds, 0, "out of bound: [5:3] on length 5"},
		{"upper past end", "_[:9]", "abc", types.ErrOutOfBounds, 0, "out of bound: [0:9] on length 3"},
		{"lower past end", `"ab"+_[3:]`, "ab", types.ErrOutOfBounds, 5, ""},
		{"huge bound", "_[9223372036854775808:]", "abc", types.ErrOutOfBounds, 0, ""},
		{"bound beyond uint64", "_[99999999999999999999999:]", "abc", types.ErrOutOfBounds, 0, ""},
		{"negative bound", `_["-1":]`, "abc", types.ErrInvalidNumber, 2, `invalid number "-1"`},
		{"empty bound", `_["":]`, "abc", types.ErrInvalidNumber, 2, ""},
		{"two plus signs", `_["++1":]`, "abc", types.ErrInvalidNumber, 2, ""},
		{"spaces in bound", `_[" 1":]`, "abc", types.ErrInvalidNumber, 2, ""},
		{"bound from input", "_[:_]", "x", types.ErrInvalidNumber, 3, ""},
		{"splits rune at upper", "_[:1]", "é", types.ErrInvalidBoundary, 0, ""},
		{"splits rune at lower", "_[2:]", "aé", types.ErrInvalidBoundary, 0, ""},
	}
	ev := New()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ev.Run(context.Background(), tt.source, tt.input)
			require.Error(t, err)
			assert.Empty(t, got)
			assert.ErrorIs(t, err, tt.target)

			var serr *types.Error
			require.ErrorAs(t, err, &serr)
			assert.Equal(t, tt.position, serr.Position)
			if tt.message != "" {
				assert.Equal(t, tt.message, serr.Message)
			}
		})
	}
}

func TestInvalidNumberText(t *testing.T) {
	_, err := New().Run(context.Background(), `_["x1":]`, "abc")

	var serr *types.Error
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, "x1", serr.Text)
	assert.NotNil(t, serr.Unwrap())
}

func TestSelfEvalErrorsCarrySource(t *testing.T) {
	tests := []struct {
		name   string
		source string
		input  string
		target error
		inner  string
	}{
		{"nested parse error", `$"\""`, "", types.ErrUnterminatedString, `"`},
		{"nested syntax error", `$"_+"`, "", types.ErrUnexpectedEnd, "_+"},
		{"nested eval error", `$"_[5:3]"`, "hello", types.ErrOutOfBounds, "_[5:3]"},
		{"innermost program wins", `$"$\"_[9:]\""`, "abc", types.ErrOutOfBounds, "_[9:]"},
		{"empty computed program", `$""`, "", types.ErrEmptySource, ""},
	}
	ev := New()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ev.Run(context.Background(), tt.source, tt.input)
			require.ErrorIs(t, err, tt.target)

			var serr *types.Error
			require.ErrorAs(t, err, &serr)
			assert.Equal(t, tt.inner, serr.Source)
		})
	}
}

func TestRecursionLimit(t *testing.T) {
	// `$_` against the input `$_` computes itself forever.
	_, err := New().Run(context.Background(), "$_", "$_")
	require.ErrorIs(t, err, types.ErrRecursionLimit)

	_, err = New(WithMaxDepth(5)).Run(context.Background(), "$_", "$_")
	require.ErrorIs(t, err, types.ErrRecursionLimit)

	// Depth is shared across self-evaluation levels, not reset per program.
	out, err := New(WithMaxDepth(3)).Run(context.Background(), `$"$\"_\""`, "ok")
	require.NoError(t, err)
	assert.Equal(t, "ok", out)

	_, err = New(WithMaxDepth(2)).Run(context.Background(), `$"$\"_\""`, "ok")
	assert.ErrorIs(t, err, types.ErrRecursionLimit)
}

func TestLongConcatChain(t *testing.T) {
	n := 2*DefaultMaxDepth + 2
	src := strings.TrimSuffix(strings.Repeat(`"a"+`, n), "+")

	out, err := New().Run(context.Background(), src, "")
	require.NoError(t, err)
	assert.Equal(t, strings.Repeat("a", n), out)

	out, err = New(WithMaxDepth(3)).Run(context.Background(), `"<"+_[1:]+"|"+_+">"`, "xyz")
	require.NoError(t, err)
	assert.Equal(t, "<yz|xyz>", out)
}

func TestCachedAndUncachedAgree(t *testing.T) {
	sources := []string{`"hello"`, "_[0:3]", `$"_"+_`, `$_`, `_[9:]`, `$"_[\"1\":]"`}
	inputs := []string{"hello", `"q"`, "é"}

	plain := New()
	cached := New(WithCaching(true), WithCacheSize(2))
	ctx := context.Background()

	for _, src := range sources {
		for _, in := range inputs {
			want, wantErr := plain.Run(ctx, src, in)
			got, gotErr := cached.Run(ctx, src, in)
			assert.Equal(t, want, got, "%s on %q", src, in)
			assert.Equal(t, wantErr, gotErr, "%s on %q", src, in)
		}
	}
	assert.LessOrEqual(t, cached.Cache().Len(), 2)
	assert.Nil(t, plain.Cache())
}

func TestSelfEvalUsesCache(t *testing.T) {
	c := cache.New(8)
	ev := New(WithCache(c))

	_, err := ev.Run(context.Background(), `$"_"`, "x")
	require.NoError(t, err)

	_, ok := c.Get(cache.KeyFor("_"))
	assert.True(t, ok, "programs computed at runtime are cached")
	_, ok = c.Get(cache.KeyFor(`$"_"`))
	assert.True(t, ok)

	before := c.Stats()
	_, err = ev.Run(context.Background(), `$"_"`, "y")
	require.NoError(t, err)
	after := c.Stats()
	assert.Equal(t, before.Hits+2, after.Hits, "both programs come from the cache")
	assert.Equal(t, before.Misses, after.Misses)
}

func TestCompileUsesParserOptions(t *testing.T) {
	c := cache.New(8)
	ev := New(WithCache(c), WithParserOptions(parser.WithMaxDepth(1)))

	_, err := ev.Compile("((_))")
	assert.ErrorIs(t, err, types.ErrRecursionLimit)

	prog, err := ev.Compile("(_)")
	require.NoError(t, err)
	cached, ok := c.Get(cache.KeyFor("(_)", parser.WithMaxDepth(1)))
	require.True(t, ok)
	assert.Same(t, prog, cached)

	_, ok = c.Get(cache.KeyFor("(_)"))
	assert.False(t, ok, "entries are keyed by the options they were parsed with")

	prog, err = New().Compile("((_))")
	require.NoError(t, err)
	assert.NotNil(t, prog)
}

func TestCancellation(t *testing.T) {
	prog := parser.MustParse(`_+"x"`)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New().Eval(ctx, prog, "a")
	assert.ErrorIs(t, err, context.Canceled)

	past, cancelPast := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
	defer cancelPast()
	_, err = New().Eval(past, prog, "a")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestNoTimeout(t *testing.T) {
	out, err := New(WithTimeout(0)).Run(context.Background(), "_", "a")
	require.NoError(t, err)
	assert.Equal(t, "a", out)
}

func TestInvalidProgram(t *testing.T) {
	ev := New()
	_, err := ev.Eval(context.Background(), nil, "")
	assert.Error(t, err)
	_, err = ev.EvalNode(context.Background(), nil, "")
	assert.Error(t, err)
}

func TestEvalNode(t *testing.T) {
	prog := parser.MustParse(`"<"+_+">"`)
	out, err := New().EvalNode(context.Background(), prog.AST(), "b")
	require.NoError(t, err)
	assert.Equal(t, "<b>", out)
}

func TestDebugLogging(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	_, err := New(WithDebug(true), WithLogger(logger)).Run(context.Background(), `$"_"`, "x")
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "evaluating node")
	assert.Contains(t, out, "self-evaluating")
	assert.True(t, strings.Contains(out, "source=_"))
}

func TestParserOptionsApplyToSelfEval(t *testing.T) {
	ev := New(WithParserOptions(parser.WithMaxDepth(1)))
	_, err := ev.Run(context.Background(), `$"((_))"`, "x")
	assert.ErrorIs(t, err, types.ErrRecursionLimit)
}

func TestEvalContext(t *testing.T) {
	c := NewContext("in")
	assert.Equal(t, "in", c.Input())
	assert.Equal(t, "", c.Source())
	assert.Equal(t, 0, c.Level())

	c.enter()
	child := c.NewChildContext("_")
	assert.Equal(t, "in", child.Input())
	assert.Equal(t, "_", child.Source())
	assert.Equal(t, 1, child.Level())
	assert.Equal(t, 1, child.Depth())

	child.enter()
	assert.Equal(t, 2, c.Depth(), "depth counter is shared")
	assert.Equal(t, "Context{depth=2, level=1}", child.String())
}
