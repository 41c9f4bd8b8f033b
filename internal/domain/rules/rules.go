// Package rules evaluates knowledge base conditions against a shot. Conditions
// are keys into a registry of predicates; keys are never parsed.
package rules

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/okian/railshot/internal/domain/knowledge"
	"github.com/okian/railshot/internal/domain/model"
	"github.com/okian/railshot/pkg/logger"
	"github.com/okian/railshot/pkg/metrics"
)

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithLogger sets the logger used for unknown key warnings.
func WithLogger(l logger.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}

// WithPredicate registers an extra predicate at construction.
func WithPredicate(key string, p Predicate) Option {
	return func(e *Engine) {
		if key != "" && p != nil {
			e.registry[key] = p
		}
	}
}

// Engine evaluates predicate keys over shots.
type Engine struct {
	mu       sync.RWMutex
	registry map[string]Predicate
	log      logger.Logger
}

// New creates an engine holding the built-in predicates.
func New(opts ...Option) *Engine {
	e := &Engine{
		registry: Builtin(),
		log:      logger.Get().Named("rules"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Register adds or replaces a predicate.
func (e *Engine) Register(key string, p Predicate) error {
	if key == "" {
		return ErrEmptyKey
	}
	if p == nil {
		return fmt.Errorf("%w: %s", ErrNilPredicate, key)
	}
	e.mu.Lock()
	e.registry[key] = p
	e.mu.Unlock()
	return nil
}

// Evaluate reports whether the predicate registered under key holds for s.
// Unknown keys evaluate to false and are reported, never interpreted.
func (e *Engine) Evaluate(ctx context.Context, key string, s model.Shot) bool {
	e.mu.RLock()
	p, ok := e.registry[key]
	e.mu.RUnlock()
	if !ok {
		e.log.Warn(ctx, "unknown predicate", logger.String("key", key))
		metrics.RecordUnknownPredicate()
		return false
	}
	return p.holds(s)
}

// Matching returns the rules whose predicates hold for s, in order.
func (e *Engine) Matching(ctx context.Context, rs []knowledge.Rule, s model.Shot) []knowledge.Rule {
	var out []knowledge.Rule
	for _, r := range rs {
		if e.Evaluate(ctx, r.Predicate, s) {
			out = append(out, r)
		}
	}
	return out
}

// Keys returns the registered keys, sorted.
func (e *Engine) Keys() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]string, 0, len(e.registry))
	for k := range e.registry {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}
