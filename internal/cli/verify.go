package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/analogrelay/go-native-export/internal/conformance"
)

// verifyCmd represents the verify command
var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Check every configured strategy against the Calculate contract",
	Long: `Calls the entry point through each configured strategy with fixed edge
cases (including 2147483647 + 1 wrapping to -2147483648) and random pairs
checked for wraparound and commutativity.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		samples, err := cmd.Flags().GetInt("samples")
		if err != nil {
			return fmt.Errorf("failed to get samples: %w", err)
		}

		targets, closeAll, err := openTargets(cmd.Context(), cfg, logger)
		if err != nil {
			return err
		}
		defer closeAll()

		out := cmd.OutOrStdout()
		checkOpts := conformance.DefaultOptions
		checkOpts.Samples = samples

		var errs []error
		for _, t := range targets {
			fmt.Fprintf(out, "=== %s ===\n", t.strategy)
			report := conformance.CheckWith(t.calc, checkOpts)
			if err := report.Write(out); err != nil {
				return err
			}
			if err := report.Err(); err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", t.strategy, err))
			}
		}
		return errors.Join(errs...)
	},
}

func init() {
	rootCmd.AddCommand(verifyCmd)

	verifyCmd.Flags().StringSlice("strategy", nil, "Strategies to verify (go, cgo, channel, shared, wasm)")
	verifyCmd.Flags().Int("samples", conformance.DefaultOptions.Samples, "Random operand pairs per strategy")
}
