//go:build js && wasm

// Command stringed-wasm-js is the WebAssembly entrypoint for browser and Node.js.
//
// It exposes a global `stringed` object with the following API:
//
//	stringed.version()               → string
//	stringed.run(program, input)     → string  (throws on error)
//	stringed.parse(program)          → { ast, referencesInput, tokenCount, eval(input) → string }  (throws on error)
//
// Build:
//
//	GOOS=js GOARCH=wasm go build -o stringed.wasm ./cmd/wasm/js/
//
// Usage in Node.js:
//
//	require('./wasm_exec.js')
//	const go = new Go()
//	const { instance } = await WebAssembly.instantiate(fs.readFileSync('stringed.wasm'), go.importObject)
//	go.run(instance)
//	console.log(stringed.run('_[0:3]', 'hello')) // 'hel'
package main

import (
	"context"
	"fmt"
	"syscall/js"

	"github.com/sandrolain/gostringed"
	"github.com/sandrolain/gostringed/pkg/evaluator"
)

// jsThrow panics with a JS Error so the caller receives a thrown exception.
func jsThrow(msg string) {
	panic(js.Global().Get("Error").New(msg))
}

// jsRun implements stringed.run(program, input) → string.
func jsRun(_ js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		jsThrow("stringed.run requires 1 or 2 arguments: program (string) and input (string)")
	}
	program := args[0].String()
	input := ""
	if len(args) > 1 && !args[1].IsUndefined() {
		input = args[1].String()
	}

	out, err := gostringed.RunWithContext(context.Background(), program, input,
		gostringed.WithConcurrency(false),
	)
	if err != nil {
		jsThrow(fmt.Sprintf("stringed.run: %v", err))
	}
	return out
}

// jsParse implements stringed.parse(program) → { ast, referencesInput, tokenCount, eval(input) }.
func jsParse(_ js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		jsThrow("stringed.parse requires 1 argument: program (string)")
	}
	program := args[0].String()

	prog, err := gostringed.Compile(program)
	if err != nil {
		jsThrow(fmt.Sprintf("stringed.parse: %v", err))
	}

	ev := evaluator.New(gostringed.WithConcurrency(false))

	evalFn := js.FuncOf(func(_ js.Value, innerArgs []js.Value) interface{} {
		input := ""
		if len(innerArgs) > 0 && !innerArgs[0].IsUndefined() {
			input = innerArgs[0].String()
		}
		out, e := ev.Eval(context.Background(), prog, input)
		if e != nil {
			jsThrow(fmt.Sprintf("compiled.eval: %v", e))
		}
		return out
	})

	return js.ValueOf(map[string]interface{}{
		"ast":             prog.AST().String(),
		"referencesInput": prog.ReferencesInput(),
		"tokenCount":      prog.TokenCount(),
		"eval":            evalFn,
	})
}

func main() {
	api := map[string]interface{}{
		"run":   js.FuncOf(jsRun),
		"parse": js.FuncOf(jsParse),
		"version": js.FuncOf(func(_ js.Value, _ []js.Value) interface{} {
			return gostringed.Version()
		}),
	}
	js.Global().Set("stringed", js.ValueOf(api))

	// Block forever: the JS event loop owns execution from here.
	select {}
}
