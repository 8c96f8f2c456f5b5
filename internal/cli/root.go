// Package cli implements the calcbench command line.
package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	nativeexport "github.com/analogrelay/go-native-export"
	"github.com/analogrelay/go-native-export/internal/config"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "calcbench",
	Short: "Load, verify and benchmark the Calculate native entry point",
	Long: `Tools to bind to the exported Calculate(int32, int32) -> int32 entry point
the way native callers do, check it against the wraparound-addition contract,
and compare the cost of the different ways of calling it.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		verbose, err := cmd.Flags().GetBool("verbose")
		if err != nil {
			return err
		}
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}
		logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
		return nil
	},
}

// logger is replaced before every command runs.
var logger = slog.Default()

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "YAML configuration file")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringP("symbol", "s", nativeexport.ExportSymbol, "Export symbol name (case-sensitive)")
	rootCmd.PersistentFlags().StringP("library", "l", "", "Shared library exporting the symbol")
	rootCmd.PersistentFlags().String("wasm", "", "WebAssembly module exporting the symbol")
	rootCmd.PersistentFlags().StringP("endpoint", "e", "https://localhost:8081", "Cosmos DB endpoint URL")
	rootCmd.PersistentFlags().StringP("key", "k", config.EmulatorKey, "Cosmos DB primary key (if empty, uses Azure CLI credentials)")
	rootCmd.PersistentFlags().StringP("database", "d", "calcbench", "Results database name")
}

// loadConfig reads the config file and applies every flag the user set
// explicitly on top of it.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	flags := cmd.Flags()

	configPath, err := flags.GetString("config")
	if err != nil {
		return config.Config{}, err
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return cfg, err
	}

	overrides := []struct {
		flag   string
		target *string
	}{
		{"symbol", &cfg.Symbol},
		{"library", &cfg.Library},
		{"wasm", &cfg.Wasm},
		{"endpoint", &cfg.Cosmos.Endpoint},
		{"key", &cfg.Cosmos.Key},
		{"database", &cfg.Cosmos.Database},
	}
	for _, o := range overrides {
		if !flags.Changed(o.flag) {
			continue
		}
		if *o.target, err = flags.GetString(o.flag); err != nil {
			return cfg, err
		}
	}

	if flags.Lookup("strategy") != nil && flags.Changed("strategy") {
		names, err := flags.GetStringSlice("strategy")
		if err != nil {
			return cfg, err
		}
		cfg.Strategies = cfg.Strategies[:0:0]
		for _, n := range names {
			cfg.Strategies = append(cfg.Strategies, nativeexport.Strategy(n))
		}
	} else {
		// An artifact given without an explicit strategy list is benchmarked too.
		if cfg.Library != "" && !cfg.Has(nativeexport.StrategyShared) {
			cfg.Strategies = append(cfg.Strategies, nativeexport.StrategyShared)
		}
		if cfg.Wasm != "" && !cfg.Has(nativeexport.StrategyWasm) {
			cfg.Strategies = append(cfg.Strategies, nativeexport.StrategyWasm)
		}
	}

	if flags.Lookup("workers") != nil && flags.Changed("workers") {
		if cfg.Workers, err = flags.GetInt("workers"); err != nil {
			return cfg, err
		}
	}
	if flags.Lookup("duration") != nil && flags.Changed("duration") {
		if cfg.Duration, err = flags.GetDuration("duration"); err != nil {
			return cfg, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	logger.Debug("configuration loaded", "path", configPath, "symbol", cfg.Symbol, "strategies", fmt.Sprint(cfg.Strategies))
	return cfg, nil
}
