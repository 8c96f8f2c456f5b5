package wasmhost

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tetratelabs/wazero/api"

	"github.com/analogrelay/go-native-export/internal/testutil"
)

func TestLoadAndCall(t *testing.T) {
	ctx := context.Background()
	m, err := Load(ctx, testutil.CalculateWasm())
	require.NoError(t, err)
	defer m.Close(ctx)

	assert.Equal(t, "Calculate", m.Symbol())

	tests := []struct {
		a, b, want int32
	}{
		{1, 1, 2},
		{2, 3, 5},
		{math.MaxInt32, 1, math.MinInt32},
		{-5, -7, -12},
	}
	for _, tt := range tests {
		got, err := m.Calculate(tt.a, tt.b)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "Calculate(%d, %d)", tt.a, tt.b)
	}
}

func TestLoadFile(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "calculate.wasm")
	require.NoError(t, os.WriteFile(path, testutil.CalculateWasm(), 0o644))

	m, err := LoadFile(ctx, path)
	require.NoError(t, err)
	defer m.Close(ctx)

	got, err := m.CalculateContext(ctx, 20, 22)
	require.NoError(t, err)
	assert.Equal(t, int32(42), got)

	_, err = LoadFile(ctx, filepath.Join(t.TempDir(), "missing.wasm"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestMissingExportIsCaseSensitive(t *testing.T) {
	wasm := testutil.WasmModule("calculate", []byte{testutil.I32, testutil.I32}, []byte{testutil.I32}, testutil.AddI32Body)

	_, err := Load(context.Background(), wasm)
	var missing *MissingExportError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "Calculate", missing.Symbol)

	m, err := Load(context.Background(), wasm, WithSymbol("calculate"))
	require.NoError(t, err)
	defer m.Close(context.Background())
	got, err := m.Calculate(2, 3)
	require.NoError(t, err)
	assert.Equal(t, int32(5), got)
}

func TestSignatureMismatch(t *testing.T) {
	wasm := testutil.WasmModule("Calculate", []byte{testutil.I64, testutil.I64}, []byte{testutil.I64}, testutil.AddI64Body)

	_, err := Load(context.Background(), wasm)
	var sig *SignatureError
	require.ErrorAs(t, err, &sig)
	assert.Equal(t, []api.ValueType{api.ValueTypeI64, api.ValueTypeI64}, sig.Params)
	assert.EqualError(t, err, `wasm export "Calculate" has signature (i64, i64) -> (i64), want (i32, i32) -> (i32)`)
}

func TestTrapIsReturnedAsError(t *testing.T) {
	ctx := context.Background()
	wasm := testutil.WasmModule("Calculate", []byte{testutil.I32, testutil.I32}, []byte{testutil.I32}, testutil.UnreachableOp)

	m, err := Load(ctx, wasm)
	require.NoError(t, err)
	defer m.Close(ctx)

	_, err = m.Calculate(1, 1)
	assert.ErrorContains(t, err, "wasm call Calculate failed")
}

func TestInvalidModule(t *testing.T) {
	_, err := Load(context.Background(), []byte("not wasm"))
	assert.ErrorContains(t, err, "failed to compile module")
}

func TestCallAfterClose(t *testing.T) {
	ctx := context.Background()
	m, err := Load(ctx, testutil.CalculateWasm())
	require.NoError(t, err)
	require.NoError(t, m.Close(ctx))

	_, err = m.Calculate(1, 1)
	assert.ErrorContains(t, err, "closed")
}

func TestConcurrentCalls(t *testing.T) {
	ctx := context.Background()
	m, err := Load(ctx, testutil.CalculateWasm())
	require.NoError(t, err)
	defer m.Close(ctx)

	var wg sync.WaitGroup
	for w := 0; w < 4; w++ {
		wg.Add(1)
		go func(w int32) {
			defer wg.Done()
			for i := int32(0); i < 200; i++ {
				got, err := m.Calculate(w, i)
				if !assert.NoError(t, err) || !assert.Equal(t, w+i, got) {
					return
				}
			}
		}(int32(w))
	}
	wg.Wait()
}
