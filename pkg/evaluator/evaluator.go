// Package evaluator implements the gostringed evaluation engine.
//
// The evaluator receives a parsed program from the parser and evaluates it
// against an input string. It supports:
//   - Concatenation, slicing and literal decoding
//   - Self-evaluation: `$expr` computes a program at runtime and runs it
//     against the same input
//   - A recursion ceiling shared across nested self-evaluation
//   - Timeout and cancellation via context.Context
//   - Optional caching of programs compiled at runtime
//
// # Example
//
//	ev := evaluator.New()
//	out, err := ev.Eval(ctx, prog, "hello")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// # Concurrency
//
// An Evaluator holds no per-call state and is safe for concurrent use.
// EvalMany evaluates one program against many inputs, fanning out to
// goroutines when concurrency is enabled.
package evaluator

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/sandrolain/gostringed/pkg/cache"
	"github.com/sandrolain/gostringed/pkg/parser"
	"github.com/sandrolain/gostringed/pkg/types"
)

// Evaluator evaluates programs against input strings.
type Evaluator struct {
	opts   EvalOptions
	logger *slog.Logger
	cache  *cache.Cache // non-nil when Caching is enabled
}

// EvalOptions configures evaluator behavior.
type EvalOptions struct {
	// Caching enables caching of programs compiled by Run and by `$`.
	// The default cache holds up to 256 entries with LRU eviction.
	Caching bool
	// CacheSize sets the maximum number of cached programs.
	// Only used when Caching is true and no explicit Cache is provided.
	CacheSize int
	// Cache is a custom program cache. If non-nil, Caching is implicitly enabled.
	Cache *cache.Cache
	// Concurrency enables concurrent evaluation in EvalMany.
	Concurrency bool
	// MaxDepth limits evaluation depth. The counter is shared by programs
	// started through `$`, so runaway self-evaluation fails with
	// types.ErrRecursionLimit instead of exhausting the stack.
	MaxDepth int
	// Timeout sets evaluation timeout.
	Timeout time.Duration
	// Debug enables debug logging.
	Debug bool
	// Logger for structured logging.
	Logger *slog.Logger
	// ParserOptions are applied when compiling programs at runtime.
	ParserOptions []parser.CompileOption
}

// defaultConcurrency controls the default value of EvalOptions.Concurrency for
// newly created Evaluators. It is true on all platforms except WebAssembly
// targets (js/wasm, wasip1), where it is set to false by init() in
// evaluator_wasm.go.
var defaultConcurrency = true

// DefaultMaxDepth is the evaluation depth limit used when none is configured.
const DefaultMaxDepth = 10000

// New creates a new Evaluator with default options.
func New(opts ...EvalOption) *Evaluator {
	options := EvalOptions{
		Caching:     false,
		Concurrency: defaultConcurrency,
		MaxDepth:    DefaultMaxDepth,
		Timeout:     30 * time.Second,
	}

	for _, opt := range opts {
		opt(&options)
	}

	if options.Logger == nil {
		options.Logger = slog.Default()
	}

	var c *cache.Cache
	if options.Cache != nil {
		c = options.Cache
	} else if options.Caching {
		c = cache.New(options.CacheSize)
	}

	return &Evaluator{
		opts:   options,
		logger: options.Logger,
		cache:  c,
	}
}

// Cache returns the program cache, or nil if caching is disabled.
func (e *Evaluator) Cache() *cache.Cache {
	return e.cache
}

// Eval evaluates a program against input.
func (e *Evaluator) Eval(ctx context.Context, prog *types.Program, input string) (string, error) {
	if prog == nil || prog.AST() == nil {
		return "", fmt.Errorf("invalid program")
	}
	return e.EvalNode(ctx, prog.AST(), input)
}

// EvalNode evaluates a single expression tree against input.
func (e *Evaluator) EvalNode(ctx context.Context, node *types.ASTNode, input string) (string, error) {
	if node == nil {
		return "", fmt.Errorf("invalid expression")
	}

	ctx, cancel := e.withTimeout(ctx)
	defer cancel()

	return e.evalNode(ctx, node, NewContext(input))
}

// Run compiles source and evaluates it against input.
func (e *Evaluator) Run(ctx context.Context, source, input string) (string, error) {
	prog, err := e.Compile(source)
	if err != nil {
		return "", err
	}
	return e.Eval(ctx, prog, input)
}

// Compile parses source with the evaluator's parser options, going through
// the cache when one is configured.
func (e *Evaluator) Compile(source string) (*types.Program, error) {
	if e.cache == nil {
		return parser.Compile(source, e.opts.ParserOptions...)
	}
	return e.cache.Compile(source, e.opts.ParserOptions...)
}

func (e *Evaluator) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if e.opts.Timeout > 0 {
		return context.WithTimeout(ctx, e.opts.Timeout)
	}
	return ctx, func() {}
}

// EvalOption configures evaluation behavior.
type EvalOption func(*EvalOptions)

// WithCaching enables or disables program caching.
// When enabled, a default LRU cache of 256 entries is created.
// To control the cache size use WithCacheSize; to supply your own cache use WithCache.
func WithCaching(enabled bool) EvalOption {
	return func(opts *EvalOptions) {
		opts.Caching = enabled
	}
}

// WithCacheSize sets the maximum number of cached programs.
// Only effective when combined with WithCaching(true).
func WithCacheSize(size int) EvalOption {
	return func(opts *EvalOptions) {
		opts.CacheSize = size
	}
}

// WithCache attaches an external program cache.
// The evaluator will use this cache regardless of the Caching flag.
func WithCache(c *cache.Cache) EvalOption {
	return func(opts *EvalOptions) {
		opts.Cache = c
	}
}

// WithConcurrency enables or disables concurrent evaluation.
func WithConcurrency(enabled bool) EvalOption {
	return func(opts *EvalOptions) {
		opts.Concurrency = enabled
	}
}

// WithTimeout sets the evaluation timeout.
func WithTimeout(timeout time.Duration) EvalOption {
	return func(opts *EvalOptions) {
		opts.Timeout = timeout
	}
}

// WithDebug enables or disables debug logging.
func WithDebug(enabled bool) EvalOption {
	return func(opts *EvalOptions) {
		opts.Debug = enabled
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) EvalOption {
	return func(opts *EvalOptions) {
		opts.Logger = logger
	}
}

// WithMaxDepth sets the maximum recursion depth. Grouping, slicing and
// self-evaluation each add a level; the links of a concatenation chain do not.
func WithMaxDepth(depth int) EvalOption {
	return func(opts *EvalOptions) {
		opts.MaxDepth = depth
	}
}

// WithParserOptions sets the options used to compile programs at runtime.
func WithParserOptions(opts ...parser.CompileOption) EvalOption {
	return func(o *EvalOptions) {
		o.ParserOptions = append(o.ParserOptions, opts...)
	}
}
