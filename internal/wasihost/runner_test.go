package wasihost

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandrolain/gostringed/pkg/types"
)

// modulePath is the guest module the Run tests load. STRINGED_WASI_MODULE
// points at a prebuilt one; otherwise TestMain builds ./cmd/wasm/wasi when a
// Go toolchain is on PATH.
var (
	modulePath string
	buildErr   error
)

func TestMain(m *testing.M) {
	flag.Parse()

	modulePath = os.Getenv("STRINGED_WASI_MODULE")
	var tmp string
	if modulePath == "" && !testing.Short() {
		tmp, modulePath, buildErr = buildGuest()
	}

	code := m.Run()

	if tmp != "" {
		_ = os.RemoveAll(tmp)
	}
	os.Exit(code)
}

// buildGuest compiles the WASI entrypoint into a temporary directory. An
// empty path with a nil error means no toolchain is available.
func buildGuest() (tmp, path string, err error) {
	goBin, err := exec.LookPath("go")
	if err != nil {
		return "", "", nil
	}

	tmp, err = os.MkdirTemp("", "stringed-wasi-")
	if err != nil {
		return "", "", fmt.Errorf("create build dir: %w", err)
	}
	path = filepath.Join(tmp, "stringed.wasm")

	cmd := exec.Command(goBin, "build", "-o", path, "./cmd/wasm/wasi")
	cmd.Dir = filepath.Join("..", "..")
	cmd.Env = append(os.Environ(), "GOOS=wasip1", "GOARCH=wasm")
	if out, err := cmd.CombinedOutput(); err != nil {
		return tmp, "", fmt.Errorf("build WASI module: %w\n%s", err, out)
	}
	return tmp, path, nil
}

func loadRunner(t *testing.T) *Runner {
	t.Helper()
	require.NoError(t, buildErr)
	if modulePath == "" {
		t.Skip("no WASI module: set STRINGED_WASI_MODULE or put go on PATH")
	}

	ctx := context.Background()
	r, err := Load(ctx, modulePath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = r.Close(ctx) })
	return r
}

func TestNewRejectsInvalidModule(t *testing.T) {
	_, err := New(context.Background(), []byte("not a wasm module"))
	assert.ErrorContains(t, err, "compile module")
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(context.Background(), "/nonexistent/stringed.wasm")
	assert.ErrorContains(t, err, "read module")
}

func TestModuleErrorIs(t *testing.T) {
	err := error(&ModuleError{Code: types.ErrCodeOutOfBounds, Message: "D0301 at position 0: out of bound"})
	assert.ErrorIs(t, err, types.ErrOutOfBounds)
	assert.NotErrorIs(t, err, types.ErrInvalidNumber)
	assert.NotErrorIs(t, &ModuleError{Message: "boom"}, types.ErrOutOfBounds)
	assert.Equal(t, "D0301 at position 0: out of bound", err.Error())
}

func TestRun(t *testing.T) {
	r := loadRunner(t)
	ctx := context.Background()

	out, err := r.Run(ctx, `_["0":"3"] + "..."`, "hello")
	require.NoError(t, err)
	assert.Equal(t, "hel...", out)

	out, err = r.Run(ctx, `$"_"`, "xyz")
	require.NoError(t, err)
	assert.Equal(t, "xyz", out)

	_, err = r.Run(ctx, `_["5":"3"]`, "hello")
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrOutOfBounds)

	var merr *ModuleError
	require.ErrorAs(t, err, &merr)
	assert.Equal(t, uint32(1), merr.ExitCode)
}
