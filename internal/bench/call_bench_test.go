package bench

import (
	"context"
	"testing"

	nativeexport "github.com/analogrelay/go-native-export"
	"github.com/analogrelay/go-native-export/internal/cgoadd"
	"github.com/analogrelay/go-native-export/internal/testutil"
	"github.com/analogrelay/go-native-export/internal/wasmhost"
)

// Sink is a global to prevent compiler optimizations removing the work.
var Sink int32

func BenchmarkNativeCall(b *testing.B) {
	var acc int32
	a, c := int32(1), int32(2)

	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		acc += nativeexport.Calculate(a, c)
	}
	Sink = acc
}

func BenchmarkCgoCall(b *testing.B) {
	if !cgoadd.Available {
		b.Skip("cgo disabled")
	}
	var acc int32
	a, c := int32(1), int32(2)

	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		acc += cgoadd.Add(a, c)
	}
	Sink = acc
}

func BenchmarkChannelCall(b *testing.B) {
	calc := NewChannelCalculator()
	defer calc.Close()

	a, c := int32(1), int32(2)
	var acc int32

	// Warm up once
	_, _ = calc.Calculate(a, c)

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		v, _ := calc.Calculate(a, c)
		acc += v
	}

	b.StopTimer()
	Sink = acc
}

func BenchmarkWasmCall(b *testing.B) {
	ctx := context.Background()
	m, err := wasmhost.Load(ctx, testutil.CalculateWasm())
	if err != nil {
		b.Fatal(err)
	}
	defer m.Close(ctx)

	a, c := int32(1), int32(2)
	var acc int32

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		v, err := m.CalculateContext(ctx, a, c)
		if err != nil {
			b.Fatal(err)
		}
		acc += v
	}

	b.StopTimer()
	Sink = acc
}
