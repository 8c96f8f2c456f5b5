//go:build cgo && (linux || darwin || freebsd)

package native

import (
	"math"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	nativeexport "github.com/analogrelay/go-native-export"
	"github.com/analogrelay/go-native-export/internal/testutil"
)

func openCalculate(t *testing.T) (*Library, *Function) {
	t.Helper()
	lib, err := Open(testutil.BuildCLibrary(t, testutil.CalculateC))
	require.NoError(t, err)
	t.Cleanup(func() { _ = lib.Close() })

	fn, err := lib.Lookup(nativeexport.ExportSymbol)
	require.NoError(t, err)
	return lib, fn
}

func TestCallResolvedExport(t *testing.T) {
	_, fn := openCalculate(t)
	assert.Equal(t, nativeexport.ExportSymbol, fn.Symbol())

	tests := []struct {
		a, b, want int32
	}{
		{1, 1, 2},
		{2, 3, 5},
		{math.MaxInt32, 1, math.MinInt32},
		{-5, -7, -12},
	}
	for _, tt := range tests {
		got, err := fn.Calculate(tt.a, tt.b)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "Calculate(%d, %d)", tt.a, tt.b)
	}
}

func TestLookupIsCaseSensitive(t *testing.T) {
	lib, _ := openCalculate(t)

	_, err := lib.Lookup("calculate")
	var lerr *LoaderError
	require.ErrorAs(t, err, &lerr)
	assert.Equal(t, "lookup", lerr.Op)
	assert.Equal(t, "calculate", lerr.Symbol)
	assert.NotEmpty(t, lerr.Message)
}

func TestOpenMissingLibrary(t *testing.T) {
	path := filepath.Join(t.TempDir(), "libmissing.so")
	_, err := Open(path)

	var lerr *LoaderError
	require.ErrorAs(t, err, &lerr)
	assert.Equal(t, "open", lerr.Op)
	assert.Equal(t, path, lerr.Path)
}

func TestCallAfterClose(t *testing.T) {
	lib, fn := openCalculate(t)
	require.NoError(t, lib.Close())
	require.NoError(t, lib.Close())

	_, err := fn.Calculate(1, 1)
	assert.ErrorIs(t, err, ErrClosed)

	_, err = lib.Lookup(nativeexport.ExportSymbol)
	assert.ErrorIs(t, err, ErrClosed)
}

func TestConcurrentCalls(t *testing.T) {
	_, fn := openCalculate(t)

	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(w int32) {
			defer wg.Done()
			for i := int32(0); i < 1000; i++ {
				got, err := fn.Calculate(w, i)
				if !assert.NoError(t, err) || !assert.Equal(t, w+i, got) {
					return
				}
			}
		}(int32(w))
	}
	wg.Wait()
}
