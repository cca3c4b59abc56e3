package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sandrolain/gostringed/internal/wasihost"
	"github.com/sandrolain/gostringed/pkg/evaluator"
)

var (
	runInput     string
	runInputFile string
	runLines     bool
	runWasm      string
)

var runCmd = &cobra.Command{
	Use:   "run PROGRAM",
	Short: "Evaluate a program",
	Long: `Evaluate PROGRAM once against the input given by --input or
--input-file (default: the empty string), or once per line of stdin
with --lines.

With --wasm the program is evaluated by the WASI build of stringed
(GOOS=wasip1 GOARCH=wasm go build ./cmd/wasm/wasi) running in-process.`,
	Args: cobra.ExactArgs(1),
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().StringVarP(&runInput, "input", "i", "", "input string")
	runCmd.Flags().StringVarP(&runInputFile, "input-file", "f", "", "read the input from a file")
	runCmd.Flags().BoolVarP(&runLines, "lines", "l", false, "evaluate once per line of stdin")
	runCmd.Flags().StringVar(&runWasm, "wasm", "", "evaluate through a WASI module")
	runCmd.MarkFlagsMutuallyExclusive("input", "input-file", "lines")
}

func runRun(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	program := args[0]

	a, err := newApp(cmd.ErrOrStderr(), true)
	if err != nil {
		return err
	}
	defer a.close()

	record := func(input, output string, err error) {
		if a.history == nil {
			return
		}
		if rerr := a.history.Record(ctx, program, input, output, err); rerr != nil {
			a.logger.Warn("history record failed", "error", rerr)
		}
	}

	if runWasm != "" {
		runner, err := wasihost.Load(ctx, runWasm)
		if err != nil {
			return err
		}
		defer runner.Close(ctx)
		return runWith(ctx, cmd, program, runner.Run, record)
	}

	prog, err := a.ev.Compile(program)
	if err != nil {
		return err
	}

	if runLines {
		results, err := a.ev.EvalStream(ctx, prog, cmd.InOrStdin())
		if err != nil {
			return err
		}
		return printResults(ctx, cmd, results, record)
	}

	return runWith(ctx, cmd, program, func(ctx context.Context, _, input string) (string, error) {
		return a.ev.Eval(ctx, prog, input)
	}, record)
}

// runWith evaluates program once, or once per stdin line with --lines.
func runWith(ctx context.Context, cmd *cobra.Command, program string,
	eval func(ctx context.Context, program, input string) (string, error),
	record func(input, output string, err error)) error {
	if runLines {
		results := make(chan evaluator.StreamResult)
		go func() {
			defer close(results)
			sc := bufio.NewScanner(cmd.InOrStdin())
			for n := 1; sc.Scan(); n++ {
				line := strings.TrimSuffix(sc.Text(), "\r")
				out, err := eval(ctx, program, line)
				select {
				case results <- evaluator.StreamResult{Line: n, Input: line, Value: out, Err: err}:
				case <-ctx.Done():
					return
				}
			}
			if err := sc.Err(); err != nil {
				select {
				case results <- evaluator.StreamResult{Err: err}:
				case <-ctx.Done():
				}
			}
		}()
		return printResults(ctx, cmd, results, record)
	}

	input := runInput
	if runInputFile != "" {
		data, err := os.ReadFile(runInputFile)
		if err != nil {
			return fmt.Errorf("read input: %w", err)
		}
		input = string(data)
	}

	out, err := eval(ctx, program, input)
	record(input, out, err)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), out)
	return nil
}

// printResults prints one output line per result. Failing lines are reported
// on stderr and skipped; a read error or a cancelled ctx stops the run.
func printResults(ctx context.Context, cmd *cobra.Command, results <-chan evaluator.StreamResult, record func(input, output string, err error)) error {
	total, failed := 0, 0
	for res := range results {
		if res.Line == 0 {
			if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(res.Err, ctxErr) {
				return fmt.Errorf("interrupted after %d inputs: %w", total, res.Err)
			}
			return fmt.Errorf("read input: %w", res.Err)
		}
		total++
		record(res.Input, res.Value, res.Err)
		if res.Err != nil {
			failed++
			printError(cmd.ErrOrStderr(), fmt.Errorf("line %d: %w", res.Line, res.Err))
			continue
		}
		fmt.Fprintln(cmd.OutOrStdout(), res.Value)
	}

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("interrupted after %d inputs: %w", total, err)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d inputs failed", failed, total)
	}
	return nil
}
