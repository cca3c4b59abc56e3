// Package wasihost runs the WASI build of stringed (cmd/wasm/wasi) inside the
// current process with wazero.
//
// Each Run instantiates a fresh module instance, feeds it one JSON request on
// stdin and decodes the JSON response from stdout.
package wasihost

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/imports/wasi_snapshot_preview1"
	"github.com/tetratelabs/wazero/sys"

	"github.com/sandrolain/gostringed/pkg/types"
)

// Request is the JSON object read by the WASI module from stdin.
type Request struct {
	Program string `json:"program"`
	Input   string `json:"input"`
}

// Response is the JSON object written by the WASI module to stdout.
type Response struct {
	Output   string `json:"output,omitempty"`
	Error    string `json:"error,omitempty"`
	Code     string `json:"code,omitempty"`
	Position *int   `json:"position,omitempty"`
}

// ModuleError is a failure reported by the module.
type ModuleError struct {
	Code     types.ErrorCode
	Message  string
	ExitCode uint32
}

func (e *ModuleError) Error() string {
	return e.Message
}

// Is matches *types.Error sentinels by code, like types.Error does.
func (e *ModuleError) Is(target error) bool {
	t, ok := target.(*types.Error)
	return ok && e.Code != "" && t.Code == e.Code
}

// Runner evaluates programs through a compiled WASI module.
// It is safe for concurrent use.
type Runner struct {
	rt       wazero.Runtime
	compiled wazero.CompiledModule
}

// New compiles wasm, which must be a wasip1 build of cmd/wasm/wasi.
func New(ctx context.Context, wasm []byte) (*Runner, error) {
	rt := wazero.NewRuntime(ctx)
	if _, err := wasi_snapshot_preview1.Instantiate(ctx, rt); err != nil {
		_ = rt.Close(ctx)
		return nil, fmt.Errorf("instantiate WASI: %w", err)
	}

	compiled, err := rt.CompileModule(ctx, wasm)
	if err != nil {
		_ = rt.Close(ctx)
		return nil, fmt.Errorf("compile module: %w", err)
	}
	return &Runner{rt: rt, compiled: compiled}, nil
}

// Load reads and compiles the module at path.
func Load(ctx context.Context, path string) (*Runner, error) {
	wasm, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read module: %w", err)
	}
	return New(ctx, wasm)
}

// Run evaluates program against input inside a new module instance.
func (r *Runner) Run(ctx context.Context, program, input string) (string, error) {
	req, err := json.Marshal(Request{Program: program, Input: input})
	if err != nil {
		return "", err
	}

	var stdout, stderr bytes.Buffer
	cfg := wazero.NewModuleConfig().
		WithName("").
		WithArgs("stringed").
		WithStdin(bytes.NewReader(req)).
		WithStdout(&stdout).
		WithStderr(&stderr)

	mod, err := r.rt.InstantiateModule(ctx, r.compiled, cfg)
	if mod != nil {
		_ = mod.Close(ctx)
	}

	var exitCode uint32
	var exitErr *sys.ExitError
	switch {
	case errors.As(err, &exitErr):
		exitCode = exitErr.ExitCode()
	case err != nil:
		return "", fmt.Errorf("run module: %w", err)
	}

	var resp Response
	if err := json.Unmarshal(stdout.Bytes(), &resp); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = err.Error()
		}
		return "", fmt.Errorf("module exited with code %d: %s", exitCode, msg)
	}
	if resp.Error != "" || exitCode != 0 {
		return "", &ModuleError{
			Code:     types.ErrorCode(resp.Code),
			Message:  resp.Error,
			ExitCode: exitCode,
		}
	}
	return resp.Output, nil
}

// Close releases the runtime and the compiled module.
func (r *Runner) Close(ctx context.Context) error {
	return r.rt.Close(ctx)
}
