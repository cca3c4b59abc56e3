//go:build wasip1

// Command stringed-wasm-wasi is the WASI (wasip1) entrypoint for use from any
// language that supports the WebAssembly System Interface.
//
// Protocol: single JSON object on stdin → single JSON object on stdout.
//
//	stdin:  { "program": "<stringed>", "input": "<string>" }
//	stdout: { "output": "<string>" }                                   on success
//	        { "error": "<message>", "code": "<code>", "position": n } on failure (exit code 1)
//
// Build:
//
//	GOOS=wasip1 GOARCH=wasm go build -o stringed.wasm ./cmd/wasm/wasi/
//
// Usage with wasmtime CLI:
//
//	echo '{"program":"_ + \"!\"","input":"hi"}' | wasmtime stringed.wasm
//
// Usage from Go: see internal/wasihost, or `stringed run --wasm stringed.wasm`.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"os"

	"github.com/sandrolain/gostringed"
	"github.com/sandrolain/gostringed/pkg/types"
)

// request and response mirror wasihost.Request and wasihost.Response; the
// host package pulls in wazero, which has no place in the guest.
type request struct {
	Program string `json:"program"`
	Input   string `json:"input"`
}

type response struct {
	Output   string `json:"output,omitempty"`
	Error    string `json:"error,omitempty"`
	Code     string `json:"code,omitempty"`
	Position *int   `json:"position,omitempty"`
}

func writeResponse(r response, exitCode int) {
	_ = json.NewEncoder(os.Stdout).Encode(r)
	os.Exit(exitCode)
}

func main() {
	var req request
	if err := json.NewDecoder(os.Stdin).Decode(&req); err != nil {
		writeResponse(response{Error: "invalid request JSON: " + err.Error()}, 1)
	}

	out, err := gostringed.RunWithContext(context.Background(), req.Program, req.Input,
		gostringed.WithConcurrency(false),
	)
	if err != nil {
		resp := response{Error: err.Error()}
		var serr *types.Error
		if errors.As(err, &serr) {
			resp.Code = string(serr.Code)
			if serr.Position >= 0 {
				pos := serr.Position
				resp.Position = &pos
			}
		}
		writeResponse(resp, 1)
	}

	writeResponse(response{Output: out}, 0)
}
