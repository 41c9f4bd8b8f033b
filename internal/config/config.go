// Package config defines process configuration and its loader.
package config

import (
	"context"
	"runtime"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the record encoding: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// WorkerCount sets the number of dispatch workers.
	WorkerCount int `koanf:"worker_count"`

	// QueueSize bounds the dispatch queue.
	QueueSize int `koanf:"queue_size"`

	// MemoryCapacity bounds the pattern memory.
	MemoryCapacity int `koanf:"memory_capacity"`

	// NeuralLearningRate is the gradient descent step of the predictor.
	NeuralLearningRate float64 `koanf:"neural_learning_rate"`

	// HeuristicLearningRate is the heuristic scorer's own rate. It must
	// differ from NeuralLearningRate.
	HeuristicLearningRate float64 `koanf:"heuristic_learning_rate"`

	// TrainingEpochs is the default number of epochs per training call.
	TrainingEpochs int `koanf:"training_epochs"`

	// MaxTrainingEpochs bounds the epochs a single training request may ask
	// for.
	MaxTrainingEpochs int `koanf:"max_training_epochs"`

	// OnlineLearning appends every analysis to the pattern memory.
	OnlineLearning bool `koanf:"online_learning"`

	// Seed initializes the predictor weights.
	Seed int64 `koanf:"seed"`

	// KnowledgeBasePath points to a YAML knowledge base. Empty uses the
	// built-in tables.
	KnowledgeBasePath string `koanf:"knowledge_base_path"`

	// StoragePath is the SQLite file holding the model and the memory.
	// Empty keeps state in process memory only.
	StoragePath string `koanf:"storage_path"`

	// ReplayWindow is how many recent request ids the dispatcher remembers
	// to reject reuse. Zero only rejects ids still in flight.
	ReplayWindow int `koanf:"replay_window"`

	// DispatchTimeoutMS bounds how long POST /dispatch waits for a task.
	DispatchTimeoutMS int `koanf:"dispatch_timeout_ms"`
}

// New creates a Config with defaults.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:              "info",
		LogFormat:             "text",
		Addr:                  ":9080",
		WorkerCount:           runtime.NumCPU(),
		QueueSize:             256,
		MemoryCapacity:        1000,
		NeuralLearningRate:    0.001,
		HeuristicLearningRate: 0.1,
		TrainingEpochs:        50,
		MaxTrainingEpochs:     1000,
		OnlineLearning:        true,
		Seed:                  42,
		ReplayWindow:          4096,
		DispatchTimeoutMS:     5000,
	}
}
