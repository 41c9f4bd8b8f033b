package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "RAILSHOT_"

// maxEpochsCeiling is the largest epoch count the predictor accepts.
const maxEpochsCeiling = 100_000

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New(ctx))
//  2. file (YAML) if RAILSHOT_CONFIG is set
//  3. env (prefix RAILSHOT_)
func Load(ctx context.Context) (*Config, error) {
	return LoadFile(ctx, os.Getenv(EnvPrefix+"CONFIG"))
}

// LoadFile is Load with an explicit file path. An empty path skips the file
// layer.
func LoadFile(ctx context.Context, path string) (*Config, error) {
	base := New(ctx)

	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrLoadConfig, path, err)
		}
	}

	// RAILSHOT_QUEUE_SIZE -> queue_size, matching the flat koanf tags.
	envProvider := env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.TrimPrefix(strings.ToLower(s), strings.ToLower(EnvPrefix))
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects configurations the engine cannot run with.
func (c *Config) Validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.LogFormat != "text" && c.LogFormat != "json":
		return fmt.Errorf("%w: log_format must be text or json", ErrInvalidConfig)
	case c.NeuralLearningRate <= 0:
		return fmt.Errorf("%w: neural_learning_rate must be positive", ErrInvalidConfig)
	case c.HeuristicLearningRate <= 0:
		return fmt.Errorf("%w: heuristic_learning_rate must be positive", ErrInvalidConfig)
	case c.NeuralLearningRate == c.HeuristicLearningRate:
		return fmt.Errorf("%w: neural and heuristic learning rates must differ", ErrInvalidConfig)
	case c.TrainingEpochs <= 0:
		return fmt.Errorf("%w: training_epochs must be positive", ErrInvalidConfig)
	case c.MaxTrainingEpochs < c.TrainingEpochs || c.MaxTrainingEpochs > maxEpochsCeiling:
		return fmt.Errorf("%w: max_training_epochs must be between training_epochs and %d", ErrInvalidConfig, maxEpochsCeiling)
	case c.MemoryCapacity <= 0:
		return fmt.Errorf("%w: memory_capacity must be positive", ErrInvalidConfig)
	case c.ReplayWindow < 0:
		return fmt.Errorf("%w: replay_window must not be negative", ErrInvalidConfig)
	case c.DispatchTimeoutMS <= 0:
		return fmt.Errorf("%w: dispatch_timeout_ms must be positive", ErrInvalidConfig)
	}
	return nil
}
