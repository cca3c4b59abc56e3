package evaluator

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/sandrolain/gostringed/pkg/types"
)

// StreamResult holds the output of a single streaming evaluation step.
type StreamResult struct {
	// Line is the 1-based position of Input in the stream, or 0 for a fatal
	// read error.
	Line int
	// Input is the input the program was evaluated against.
	Input string
	// Value is the evaluated result, or "" when Err is set.
	Value string
	// Err is non-nil when evaluation of a single input failed.
	// After a fatal I/O error the channel is closed; per-input evaluation
	// errors are sent individually and the stream continues.
	Err error
}

// maxLineSize bounds a single input line read by EvalStream.
const maxLineSize = 1 << 20

// EvalStream reads r line by line and evaluates prog against each line,
// sending results on the returned channel. Line terminators ("\n" or "\r\n")
// are not part of the input.
//
// The channel is closed when all input has been consumed or the context is
// cancelled. A fatal I/O error is sent as a StreamResult with Line 0 and a
// non-nil Err, and then the channel is closed. After a cancellation a final
// Line 0 result carrying ctx.Err() is sent if the channel has room for it.
//
// The caller must either drain the channel or cancel the context; a cancelled
// stream stops without waiting for the remaining results to be received.
func (e *Evaluator) EvalStream(ctx context.Context, prog *types.Program, r io.Reader) (<-chan StreamResult, error) {
	if prog == nil || prog.AST() == nil {
		return nil, fmt.Errorf("invalid program")
	}

	ch := make(chan StreamResult, 16)

	go func() {
		defer close(ch)

		send := func(res StreamResult) bool {
			select {
			case ch <- res:
				return true
			case <-ctx.Done():
				return false
			}
		}

		sc := bufio.NewScanner(r)
		sc.Buffer(make([]byte, 0, 4096), maxLineSize)
		for n := 1; sc.Scan(); n++ {
			if err := ctx.Err(); err != nil {
				select {
				case ch <- StreamResult{Err: err}:
				default:
				}
				return
			}

			line := strings.TrimSuffix(sc.Text(), "\r")
			out, err := e.Eval(ctx, prog, line)
			if !send(StreamResult{Line: n, Input: line, Value: out, Err: err}) {
				return
			}
		}
		if err := sc.Err(); err != nil {
			send(StreamResult{Err: err})
		}
	}()

	return ch, nil
}

// EvalMany evaluates prog against every input and returns the results in input
// order. With concurrency enabled the inputs are evaluated in parallel.
func (e *Evaluator) EvalMany(ctx context.Context, prog *types.Program, inputs []string) []StreamResult {
	results := make([]StreamResult, len(inputs))

	if !e.opts.Concurrency || len(inputs) < 2 {
		for i, in := range inputs {
			out, err := e.Eval(ctx, prog, in)
			results[i] = StreamResult{Line: i + 1, Input: in, Value: out, Err: err}
		}
		return results
	}

	var wg sync.WaitGroup
	for i, in := range inputs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			out, err := e.Eval(ctx, prog, in)
			results[i] = StreamResult{Line: i + 1, Input: in, Value: out, Err: err}
		}()
	}
	wg.Wait()
	return results
}
