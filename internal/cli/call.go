package cli

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/analogrelay/go-native-export/internal/wasmhost"
)

// callCmd represents the call command
var callCmd = &cobra.Command{
	Use:   "call",
	Short: "Resolve the export in an artifact and call it once",
	Long: `Loads a shared library (--library) or wasm module (--wasm), resolves the
export symbol by its exact name and calls it with the given operands.
With --pattern, every shared library matching the glob is called in turn and
failures are reported per library.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		a, err := cmd.Flags().GetInt32("a")
		if err != nil {
			return fmt.Errorf("failed to get a: %w", err)
		}
		b, err := cmd.Flags().GetInt32("b")
		if err != nil {
			return fmt.Errorf("failed to get b: %w", err)
		}
		pattern, err := cmd.Flags().GetString("pattern")
		if err != nil {
			return fmt.Errorf("failed to get pattern: %w", err)
		}

		out := cmd.OutOrStdout()
		switch {
		case pattern != "":
			return callMatchingLibraries(out, pattern, cfg.Symbol, a, b)
		case cfg.Library != "":
			return callLibrary(out, cfg.Library, cfg.Symbol, a, b)
		case cfg.Wasm != "":
			m, err := wasmhost.LoadFile(cmd.Context(), cfg.Wasm, wasmhost.WithSymbol(cfg.Symbol), wasmhost.WithLogger(logger))
			if err != nil {
				return err
			}
			defer m.Close(cmd.Context())
			fmt.Fprintf(out, "Success LoadModule(%q)\n", cfg.Wasm)
			fmt.Fprintf(out, "Success GetProcAddress(%q)\n", cfg.Symbol)

			result, err := m.Calculate(a, b)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Calculation result is %d\n", result)
			return nil
		default:
			return fmt.Errorf("one of --library, --pattern or --wasm is required")
		}
	},
}

func callLibrary(out io.Writer, path, symbol string, a, b int32) error {
	lib, fn, err := openSharedLibrary(path, symbol)
	if err != nil {
		return err
	}
	defer lib.Close()
	fmt.Fprintf(out, "Success LoadLibrary(%q)\n", path)
	fmt.Fprintf(out, "Success GetProcAddress(%q)\n", symbol)

	result, err := fn.Calculate(a, b)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Calculation result is %d\n", result)
	return nil
}

// callMatchingLibraries calls every library matching pattern, continuing
// past libraries that fail to load or resolve.
func callMatchingLibraries(out io.Writer, pattern, symbol string, a, b int32) error {
	paths, err := filepath.Glob(pattern)
	if err != nil {
		return fmt.Errorf("invalid pattern %q: %w", pattern, err)
	}
	if len(paths) == 0 {
		return fmt.Errorf("no library matches %q", pattern)
	}

	var errs []error
	for _, path := range paths {
		if err := callLibrary(out, path, symbol, a, b); err != nil {
			fmt.Fprintf(out, "Failed %s: %v\n", path, err)
			errs = append(errs, fmt.Errorf("%s: %w", path, err))
		}
		fmt.Fprintln(out)
	}
	return errors.Join(errs...)
}

func init() {
	rootCmd.AddCommand(callCmd)

	callCmd.Flags().Int32P("a", "a", 1, "First operand")
	callCmd.Flags().Int32P("b", "b", 1, "Second operand")
	callCmd.Flags().String("pattern", "", "Glob of shared libraries to call in turn")
}
