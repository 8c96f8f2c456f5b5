package main

import (
	"context"
	"math"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	nativeexport "github.com/analogrelay/go-native-export"
	"github.com/analogrelay/go-native-export/internal/conformance"
	"github.com/analogrelay/go-native-export/internal/wasmhost"
)

// buildWasmReactor compiles ../wasmexport for wasip1 and returns the
// module path.
func buildWasmReactor(t *testing.T) string {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping wasip1 build in short mode")
	}
	goTool, err := exec.LookPath("go")
	if err != nil {
		t.Skip("go tool not found in PATH")
	}

	module := filepath.Join(t.TempDir(), "calculate.wasm")
	cmd := exec.Command(goTool, "build", "-buildmode=c-shared", "-o", module, "../wasmexport")
	cmd.Env = append(os.Environ(), "GOOS=wasip1", "GOARCH=wasm", "CGO_ENABLED=0")
	out, err := cmd.CombinedOutput()
	require.NoError(t, err, "build failed:\n%s", out)
	return module
}

func TestWasmReactorLoadsThroughHost(t *testing.T) {
	module := buildWasmReactor(t)
	ctx := context.Background()

	m, err := wasmhost.LoadFile(ctx, module)
	require.NoError(t, err)
	defer m.Close(ctx)

	assert.Equal(t, nativeexport.ExportSymbol, m.Symbol())

	got, err := m.CalculateContext(ctx, math.MaxInt32, 1)
	require.NoError(t, err)
	assert.Equal(t, int32(math.MinInt32), got)

	assert.NoError(t, conformance.Check(m).Err())
}

func TestWasmReactorExportNameIsCaseSensitive(t *testing.T) {
	module := buildWasmReactor(t)

	_, err := wasmhost.LoadFile(context.Background(), module, wasmhost.WithSymbol("calculate"))
	var missing *wasmhost.MissingExportError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "calculate", missing.Symbol)
}
