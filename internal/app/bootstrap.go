package service

import (
	"context"
	"fmt"

	"github.com/okian/railshot/internal/adapters/repository"
	"github.com/okian/railshot/internal/config"
	"github.com/okian/railshot/internal/domain/knowledge"
	"github.com/okian/railshot/internal/domain/memory"
	"github.com/okian/railshot/internal/domain/neural"
)

// FromConfig builds an engine from process configuration. Extra options are
// applied after the configured ones.
func FromConfig(cfg *config.Config, opts ...Option) (*Engine, error) {
	base := []Option{
		WithModel(neural.New(
			neural.WithSeed(cfg.Seed),
			neural.WithLearningRate(cfg.NeuralLearningRate),
			neural.WithEpochs(cfg.TrainingEpochs),
		)),
		WithMemory(memory.New(memory.WithCapacity(cfg.MemoryCapacity))),
		WithHeuristicLearningRate(cfg.HeuristicLearningRate),
		WithOnlineLearning(cfg.OnlineLearning),
		WithEpochs(cfg.TrainingEpochs),
		WithMaxEpochs(cfg.MaxTrainingEpochs),
	}
	if cfg.KnowledgeBasePath != "" {
		kb, err := knowledge.LoadFile(cfg.KnowledgeBasePath)
		if err != nil {
			return nil, fmt.Errorf("load knowledge base: %w", err)
		}
		base = append(base, WithKnowledge(kb))
	}
	return New(append(base, opts...)...), nil
}

// OpenStore opens the configured state store: SQLite when a storage path is
// set, process memory otherwise.
func OpenStore(_ context.Context, cfg *config.Config) (repository.Store, error) {
	if cfg.StoragePath == "" {
		return repository.NewMemoryStore(), nil
	}
	store, err := repository.OpenSQLite(cfg.StoragePath)
	if err != nil {
		return nil, err
	}
	return store, nil
}
