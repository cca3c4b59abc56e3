//go:build (js && wasm) || wasip1

package evaluator

// init sets WebAssembly-specific defaults for all Evaluators created in this
// process.
//
// On js/wasm the JavaScript runtime is single-threaded and goroutines are
// multiplexed on the event loop, so EvalMany must not fan out. wasip1 gets
// the same default: the Go runtime does not support WASI threads.
func init() {
	defaultConcurrency = false
}
