// Package testutil builds small native and wasm artifacts for tests.
package testutil

import (
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"
)

// CalculateC is a C implementation of the entry point, used where a test
// needs a shared library that is not produced by the Go toolchain.
const CalculateC = `#include <stdint.h>

int32_t Calculate(int32_t a, int32_t b)
{
    return (int32_t)((uint32_t)a + (uint32_t)b);
}

int32_t calculate_lower(int32_t a, int32_t b)
{
    return a - b;
}
`

// BuildCLibrary compiles src into a shared library in a temporary
// directory and returns its path. The test is skipped when no C compiler
// is available.
func BuildCLibrary(t *testing.T, src string) string {
	t.Helper()
	if runtime.GOOS != "linux" && runtime.GOOS != "darwin" {
		t.Skipf("shared library tests not supported on %s", runtime.GOOS)
	}
	cc, err := exec.LookPath("cc")
	if err != nil {
		t.Skip("C compiler not found in PATH")
	}

	dir := t.TempDir()
	srcPath := filepath.Join(dir, "calculate.c")
	require.NoError(t, os.WriteFile(srcPath, []byte(src), 0o644))

	lib := filepath.Join(dir, "libcalculate.so")
	out, err := exec.Command(cc, "-shared", "-fPIC", "-o", lib, srcPath).CombinedOutput()
	require.NoError(t, err, "cc failed:\n%s", out)
	return lib
}

// Wasm value types.
const (
	I32 byte = 0x7f
	I64 byte = 0x7e
)

// Wasm function bodies for a two-parameter function.
var (
	AddI32Body    = []byte{0x20, 0x00, 0x20, 0x01, 0x6a}
	AddI64Body    = []byte{0x20, 0x00, 0x20, 0x01, 0x7c}
	UnreachableOp = []byte{0x00}
)

// WasmModule encodes a module with a single function exported as name.
// body is the instruction sequence without the trailing end opcode.
func WasmModule(name string, params, results, body []byte) []byte {
	var typ []byte
	typ = append(typ, 0x01, 0x60)
	typ = append(typ, uleb(uint32(len(params)))...)
	typ = append(typ, params...)
	typ = append(typ, uleb(uint32(len(results)))...)
	typ = append(typ, results...)

	var exp []byte
	exp = append(exp, 0x01)
	exp = append(exp, uleb(uint32(len(name)))...)
	exp = append(exp, name...)
	exp = append(exp, 0x00, 0x00)

	fn := append([]byte{0x00}, body...)
	fn = append(fn, 0x0b)
	code := append([]byte{0x01}, uleb(uint32(len(fn)))...)
	code = append(code, fn...)

	m := []byte{0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00}
	m = appendSection(m, 1, typ)
	m = appendSection(m, 3, []byte{0x01, 0x00})
	m = appendSection(m, 7, exp)
	m = appendSection(m, 10, code)
	return m
}

// CalculateWasm returns a module exporting a correct Calculate.
func CalculateWasm() []byte {
	return WasmModule("Calculate", []byte{I32, I32}, []byte{I32}, AddI32Body)
}

func appendSection(m []byte, id byte, payload []byte) []byte {
	m = append(m, id)
	m = append(m, uleb(uint32(len(payload)))...)
	return append(m, payload...)
}

func uleb(v uint32) []byte {
	var out []byte
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if v != 0 {
			out = append(out, b|0x80)
			continue
		}
		return append(out, b)
	}
}
