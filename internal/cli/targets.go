package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	nativeexport "github.com/analogrelay/go-native-export"
	"github.com/analogrelay/go-native-export/internal/bench"
	"github.com/analogrelay/go-native-export/internal/cgoadd"
	"github.com/analogrelay/go-native-export/internal/config"
	"github.com/analogrelay/go-native-export/internal/native"
	"github.com/analogrelay/go-native-export/internal/symbols"
	"github.com/analogrelay/go-native-export/internal/wasmhost"
)

type target struct {
	strategy nativeexport.Strategy
	calc     nativeexport.Calculator
}

// openSharedLibrary checks that path exports symbol and binds to it.
func openSharedLibrary(path, symbol string) (*native.Library, *native.Function, error) {
	if err := symbols.Require(path, symbol); err != nil {
		return nil, nil, err
	}
	if symbols.IsGoArtifact(path) {
		return nil, nil, fmt.Errorf("%s was built by the Go toolchain and cannot be loaded into a Go process; use a C host such as export/testdata/host.c", path)
	}

	lib, err := native.Open(path)
	if err != nil {
		return nil, nil, err
	}
	fn, err := lib.Lookup(symbol)
	if err != nil {
		_ = lib.Close()
		return nil, nil, err
	}
	return lib, fn, nil
}

// openTargets binds a Calculator for every configured strategy. The
// returned function releases them all.
func openTargets(ctx context.Context, cfg config.Config, logger *slog.Logger) ([]target, func(), error) {
	var targets []target
	var closers []func()
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	for _, s := range cfg.Strategies {
		switch s {
		case nativeexport.StrategyGo:
			targets = append(targets, target{s, nativeexport.Func(nativeexport.Calculate)})

		case nativeexport.StrategyCgo:
			if !cgoadd.Available {
				logger.Warn("cgo disabled in this build, skipping strategy", "strategy", s)
				continue
			}
			targets = append(targets, target{s, nativeexport.Func(cgoadd.Add)})

		case nativeexport.StrategyChannel:
			c := bench.NewChannelCalculator()
			closers = append(closers, c.Close)
			targets = append(targets, target{s, c})

		case nativeexport.StrategyShared:
			lib, fn, err := openSharedLibrary(cfg.Library, cfg.Symbol)
			if err != nil {
				closeAll()
				return nil, nil, fmt.Errorf("strategy %s: %w", s, err)
			}
			logger.Debug("resolved shared library export", "path", lib.Path(), "symbol", fn.Symbol())
			closers = append(closers, func() {
				if err := lib.Close(); err != nil {
					logger.Warn("failed to close library", "error", err)
				}
			})
			targets = append(targets, target{s, fn})

		case nativeexport.StrategyWasm:
			m, err := wasmhost.LoadFile(ctx, cfg.Wasm, wasmhost.WithSymbol(cfg.Symbol), wasmhost.WithLogger(logger))
			if err != nil {
				closeAll()
				return nil, nil, fmt.Errorf("strategy %s: %w", s, err)
			}
			closers = append(closers, func() {
				if err := m.Close(context.Background()); err != nil {
					logger.Warn("failed to close wasm module", "error", err)
				}
			})
			targets = append(targets, target{s, m})

		default:
			closeAll()
			return nil, nil, fmt.Errorf("unknown strategy %q", s)
		}
	}

	if len(targets) == 0 {
		closeAll()
		return nil, nil, errors.New("no strategy could be bound")
	}
	return targets, closeAll, nil
}
