// Package config loads calcbench settings from a YAML file.
package config

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	nativeexport "github.com/analogrelay/go-native-export"
)

// Config holds everything the benchmark and verification commands need.
type Config struct {
	// Library is a shared library exporting Symbol, used by the shared
	// strategy.
	Library string `yaml:"library"`
	// Symbol is the export name. Matched case-sensitively.
	Symbol string `yaml:"symbol" validate:"required"`
	// Wasm is a wasm module exporting Symbol, used by the wasm strategy.
	Wasm       string                  `yaml:"wasm"`
	Strategies []nativeexport.Strategy `yaml:"strategies" validate:"required,min=1,dive,oneof=go cgo channel shared wasm"`
	Workers    int                     `yaml:"workers" validate:"gte=1"`
	Duration   time.Duration           `yaml:"duration" validate:"gt=0"`
	Cosmos     Cosmos                  `yaml:"cosmos"`
}

// Cosmos configures where benchmark results are published.
type Cosmos struct {
	Endpoint  string `yaml:"endpoint" validate:"omitempty,url"`
	Key       string `yaml:"key"`
	Database  string `yaml:"database" validate:"required"`
	Container string `yaml:"container" validate:"required"`
}

// Well-known Cosmos DB Emulator key, not a secret.
const EmulatorKey = "C2y6yDjf5/R+ob0N8A7Cgv30VRDJIWEHLM+4QDU5DE2nQ9nDuVTqobD4b8mGGyPMbIZnqyMsEcaGQy67XIw/Jw=="

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Symbol:     nativeexport.ExportSymbol,
		Strategies: []nativeexport.Strategy{nativeexport.StrategyGo, nativeexport.StrategyCgo, nativeexport.StrategyChannel},
		Workers:    runtime.NumCPU(),
		Duration:   10 * time.Second,
		Cosmos: Cosmos{
			Endpoint:  "https://localhost:8081",
			Key:       EmulatorKey,
			Database:  "calcbench",
			Container: "Results",
		},
	}
}

// Load reads path over the defaults. An empty path returns the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("cannot read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse error in %s: %w", path, err)
	}
	return cfg, nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks field constraints and that every selected strategy has
// the artifact it needs.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("invalid config: %w", err)
	}

	for _, s := range c.Strategies {
		switch {
		case s == nativeexport.StrategyShared && c.Library == "":
			return errors.New("invalid config: strategy shared requires library")
		case s == nativeexport.StrategyWasm && c.Wasm == "":
			return errors.New("invalid config: strategy wasm requires wasm")
		}
	}
	return nil
}

// Has reports whether s is one of the configured strategies.
func (c Config) Has(s nativeexport.Strategy) bool {
	for _, st := range c.Strategies {
		if st == s {
			return true
		}
	}
	return false
}
