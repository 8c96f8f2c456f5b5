package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/analogrelay/go-native-export/internal/symbols"
)

// symbolsCmd represents the symbols command
var symbolsCmd = &cobra.Command{
	Use:   "symbols",
	Short: "Check that a shared library exports the symbol",
	Long: `Reads the dynamic symbol table of the artifact given by --library without
loading it, and fails unless the export symbol is present under its exact,
case-sensitive name. Works for libraries built by any toolchain, including
this module's own -buildmode=c-shared output.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if cfg.Library == "" {
			return fmt.Errorf("--library is required")
		}
		list, err := cmd.Flags().GetBool("list")
		if err != nil {
			return fmt.Errorf("failed to get list: %w", err)
		}
		out := cmd.OutOrStdout()

		if list {
			names, err := symbols.Exports(cfg.Library)
			if err != nil {
				return err
			}
			for _, n := range names {
				fmt.Fprintln(out, n)
			}
		}

		if err := symbols.Require(cfg.Library, cfg.Symbol); err != nil {
			return err
		}
		fmt.Fprintf(out, "%s exports %s\n", cfg.Library, cfg.Symbol)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(symbolsCmd)

	symbolsCmd.Flags().Bool("list", false, "List every exported symbol")
}
