package cli

import (
	"fmt"
	"runtime"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/analogrelay/go-native-export/internal/bench"
	"github.com/analogrelay/go-native-export/internal/config"
	"github.com/analogrelay/go-native-export/internal/results"
)

// benchCmd represents the bench command
var benchCmd = &cobra.Command{
	Use:   "bench",
	Short: "Benchmark call throughput for each strategy",
	Long: `Runs a timed benchmark for every configured strategy. Each worker calls the
entry point with random operands and checks the result. Reports throughput and
mean latency per call, followed by a markdown table of all strategies.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		publish, err := cmd.Flags().GetBool("publish")
		if err != nil {
			return fmt.Errorf("failed to get publish: %w", err)
		}

		targets, closeAll, err := openTargets(cmd.Context(), cfg, logger)
		if err != nil {
			return err
		}
		defer closeAll()

		out := cmd.OutOrStdout()
		runID := uuid.New()
		fmt.Fprintf(out, "Starting benchmark run %s...\n", runID)
		fmt.Fprintf(out, "Symbol: %s\n", cfg.Symbol)
		fmt.Fprintf(out, "Duration: %v\n", cfg.Duration)
		fmt.Fprintf(out, "Workers: %d\n", cfg.Workers)

		var all []*bench.Results
		for _, t := range targets {
			res, err := bench.Run(cmd.Context(), t.calc, bench.Options{
				Strategy:         t.strategy,
				Workers:          cfg.Workers,
				Duration:         cfg.Duration,
				ProgressInterval: 5 * time.Second,
				Progress:         out,
				Logger:           logger,
			})
			if err != nil {
				return fmt.Errorf("benchmark failed: %w", err)
			}
			bench.WriteSummary(out, res)
			all = append(all, res)
		}

		fmt.Fprintf(out, "\n=== Markdown Table ===\n")
		bench.WriteTable(out, all)

		if publish {
			if err := publishResults(cmd, cfg, runID, all); err != nil {
				return err
			}
			fmt.Fprintf(out, "\nPublished %d results to %s/%s\n", len(all), cfg.Cosmos.Database, cfg.Cosmos.Container)
		}
		return nil
	},
}

func publishResults(cmd *cobra.Command, cfg config.Config, runID uuid.UUID, all []*bench.Results) error {
	client, err := results.NewCosmosClient(cfg.Cosmos.Endpoint, cfg.Cosmos.Key)
	if err != nil {
		return fmt.Errorf("failed to create Cosmos client: %w", err)
	}
	publisher := results.NewCosmosPublisher(client, cfg.Cosmos.Database, cfg.Cosmos.Container)
	docs := results.NewDocuments(runID, cfg.Symbol, all, time.Now())
	if err := publisher.Publish(cmd.Context(), docs); err != nil {
		return fmt.Errorf("failed to publish results: %w", err)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(benchCmd)

	// Add benchmark-specific flags
	benchCmd.Flags().StringSlice("strategy", nil, "Strategies to benchmark (go, cgo, channel, shared, wasm)")
	benchCmd.Flags().IntP("workers", "w", runtime.NumCPU(), "Number of concurrent workers")
	benchCmd.Flags().DurationP("duration", "t", 10*time.Second, "Duration to run each strategy")
	benchCmd.Flags().Bool("publish", false, "Store results in Cosmos DB")
}
