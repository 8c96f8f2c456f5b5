// Package wasmhost binds to the Calculate export of a WebAssembly module
// using wazero. The module plays the role of the shared library: the
// export is resolved by exact name and its signature is checked before
// the first call.
package wasmhost

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"github.com/tetratelabs/wazero/imports/wasi_snapshot_preview1"

	nativeexport "github.com/analogrelay/go-native-export"
)

// MissingExportError reports that the module has no function exported
// under Symbol.
type MissingExportError struct {
	Symbol string
}

func (e *MissingExportError) Error() string {
	return fmt.Sprintf("wasm module does not export function %q", e.Symbol)
}

// SignatureError reports an export whose type is not (i32, i32) -> i32.
type SignatureError struct {
	Symbol  string
	Params  []api.ValueType
	Results []api.ValueType
}

func (e *SignatureError) Error() string {
	return fmt.Sprintf("wasm export %q has signature (%s) -> (%s), want (i32, i32) -> (i32)",
		e.Symbol, typeNames(e.Params), typeNames(e.Results))
}

func typeNames(types []api.ValueType) string {
	s := ""
	for i, t := range types {
		if i > 0 {
			s += ", "
		}
		s += api.ValueTypeName(t)
	}
	return s
}

type options struct {
	symbol string
	logger *slog.Logger
}

// Option configures Load.
type Option func(*options)

// WithSymbol overrides the export name. The default is
// nativeexport.ExportSymbol.
func WithSymbol(symbol string) Option {
	return func(o *options) {
		o.symbol = symbol
	}
}

// WithLogger sets the logger used for module lifecycle messages.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// Module is an instantiated wasm artifact with its Calculate export
// resolved. Calls are serialized because a wazero module instance is not
// safe for concurrent use.
type Module struct {
	runtime wazero.Runtime
	module  api.Module
	symbol  string

	mu sync.Mutex
	fn api.Function
}

// LoadFile reads a wasm artifact from disk and loads it.
func LoadFile(ctx context.Context, path string, opts ...Option) (*Module, error) {
	wasm, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read wasm module: %w", err)
	}
	return Load(ctx, wasm, opts...)
}

// Load compiles and instantiates wasm and resolves the export.
func Load(ctx context.Context, wasm []byte, opts ...Option) (*Module, error) {
	o := options{symbol: nativeexport.ExportSymbol, logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}

	rt := wazero.NewRuntime(ctx)
	wasi_snapshot_preview1.MustInstantiate(ctx, rt)

	m, err := load(ctx, rt, wasm, o)
	if err != nil {
		_ = rt.Close(ctx)
		return nil, err
	}
	return m, nil
}

func load(ctx context.Context, rt wazero.Runtime, wasm []byte, o options) (*Module, error) {
	compiled, err := rt.CompileModule(ctx, wasm)
	if err != nil {
		return nil, fmt.Errorf("failed to compile module: %w", err)
	}

	def, ok := compiled.ExportedFunctions()[o.symbol]
	if !ok {
		return nil, &MissingExportError{Symbol: o.symbol}
	}
	if !isCalculateSignature(def) {
		return nil, &SignatureError{Symbol: o.symbol, Params: def.ParamTypes(), Results: def.ResultTypes()}
	}

	mod, err := rt.InstantiateModule(ctx, compiled, wazero.NewModuleConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to instantiate module: %w", err)
	}

	// Reactor modules built with -buildmode=c-shared start the Go runtime here.
	if init := mod.ExportedFunction("_initialize"); init != nil {
		o.logger.Debug("initializing wasm reactor")
		if _, err := init.Call(ctx); err != nil {
			return nil, fmt.Errorf("failed to call _initialize: %w", err)
		}
	}

	o.logger.Debug("resolved wasm export", "symbol", o.symbol)
	return &Module{
		runtime: rt,
		module:  mod,
		symbol:  o.symbol,
		fn:      mod.ExportedFunction(o.symbol),
	}, nil
}

func isCalculateSignature(def api.FunctionDefinition) bool {
	params, results := def.ParamTypes(), def.ResultTypes()
	return len(params) == 2 && params[0] == api.ValueTypeI32 && params[1] == api.ValueTypeI32 &&
		len(results) == 1 && results[0] == api.ValueTypeI32
}

// Symbol returns the export name the module was bound through.
func (m *Module) Symbol() string {
	return m.symbol
}

// CalculateContext calls the export. A trap in the module is returned as
// an error.
func (m *Module) CalculateContext(ctx context.Context, a, b int32) (int32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fn == nil {
		return 0, fmt.Errorf("wasm module is closed")
	}

	results, err := m.fn.Call(ctx, api.EncodeI32(a), api.EncodeI32(b))
	if err != nil {
		return 0, fmt.Errorf("wasm call %s failed: %w", m.symbol, err)
	}
	return api.DecodeI32(results[0]), nil
}

// Calculate implements nativeexport.Calculator.
func (m *Module) Calculate(a, b int32) (int32, error) {
	return m.CalculateContext(context.Background(), a, b)
}

// Close releases the module and its runtime.
func (m *Module) Close(ctx context.Context) error {
	m.mu.Lock()
	m.fn = nil
	m.mu.Unlock()
	return m.runtime.Close(ctx)
}
