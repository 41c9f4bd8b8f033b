package service

import (
	"time"

	"github.com/okian/railshot/internal/domain/geometry"
	"github.com/okian/railshot/internal/domain/knowledge"
	"github.com/okian/railshot/internal/domain/memory"
	"github.com/okian/railshot/internal/domain/neural"
	"github.com/okian/railshot/internal/domain/rules"
	"github.com/okian/railshot/internal/domain/scoring"
	"github.com/okian/railshot/pkg/logger"
)

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithKnowledge sets the knowledge base shared by every component.
func WithKnowledge(kb *knowledge.Base) Option {
	return func(e *Engine) {
		if kb != nil {
			e.kb = kb
		}
	}
}

// WithRules sets the rule engine used by the scorer.
func WithRules(r *rules.Engine) Option {
	return func(e *Engine) {
		if r != nil {
			e.rules = r
		}
	}
}

// WithHeuristicLearningRate sets the scorer's learning rate.
func WithHeuristicLearningRate(rate float64) Option {
	return func(e *Engine) {
		if rate > 0 {
			e.heuristicRate = rate
		}
	}
}

// WithModel sets the neural predictor.
func WithModel(m *neural.Model) Option {
	return func(e *Engine) {
		if m != nil {
			e.model = m
		}
	}
}

// WithGeometry sets the geometry engine.
func WithGeometry(g *geometry.Engine) Option {
	return func(e *Engine) {
		if g != nil {
			e.geometry = g
		}
	}
}

// WithMemory sets the pattern memory.
func WithMemory(m *memory.Memory) Option {
	return func(e *Engine) {
		if m != nil {
			e.memory = m
		}
	}
}

// WithOnlineLearning makes every analysis append to the pattern memory.
func WithOnlineLearning(enabled bool) Option {
	return func(e *Engine) {
		e.online = enabled
	}
}

// WithEpochs sets the default number of training epochs.
func WithEpochs(epochs int) Option {
	return func(e *Engine) {
		if epochs > 0 {
			e.epochs = epochs
		}
	}
}

// WithMaxEpochs bounds the epochs a single training call may request.
func WithMaxEpochs(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.maxEpochs = n
		}
	}
}

// WithLogger sets a custom logger for the engine.
func WithLogger(l logger.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithClock sets the time source stamped on analyses.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

func defaultScorer(e *Engine) *scoring.Scorer {
	return scoring.New(
		scoring.WithKnowledge(e.kb),
		scoring.WithRules(e.rules),
		scoring.WithLearningRate(e.heuristicRate),
	)
}
