// Package nativeexport holds the arithmetic behind the exported Calculate
// entry point and the small abstraction every call strategy implements.
package nativeexport

// ExportSymbol is the name the entry point is exported under in every
// artifact. Native symbol lookup is case-sensitive, so callers must use
// exactly this name.
const ExportSymbol = "Calculate"

// Calculate returns a + b with two's-complement wraparound.
func Calculate(a, b int32) int32 {
	return a + b
}

// Calculator is anything that can compute the sum on behalf of a caller:
// the in-process function, a cgo call, a symbol resolved from a shared
// library, or a wasm export. The error reports binding failures only.
type Calculator interface {
	Calculate(a, b int32) (int32, error)
}

// Func adapts a plain function to the Calculator interface.
type Func func(a, b int32) int32

func (f Func) Calculate(a, b int32) (int32, error) {
	return f(a, b), nil
}

// Strategy names a way of reaching the entry point.
type Strategy string

const (
	StrategyGo      Strategy = "go"
	StrategyCgo     Strategy = "cgo"
	StrategyChannel Strategy = "channel"
	StrategyShared  Strategy = "shared"
	StrategyWasm    Strategy = "wasm"
)

// Strategies lists every known strategy in benchmark order.
var Strategies = []Strategy{StrategyGo, StrategyCgo, StrategyChannel, StrategyShared, StrategyWasm}

// ParseStrategy returns the Strategy named s.
func ParseStrategy(s string) (Strategy, bool) {
	for _, st := range Strategies {
		if string(st) == s {
			return st, true
		}
	}
	return "", false
}
