package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/okian/railshot/internal/adapters/repository"
	"github.com/okian/railshot/pkg/logger"
)

// Save writes the model and the memory to store.
func (e *Engine) Save(ctx context.Context, store repository.Store) error {
	blob, err := e.SerializeModel()
	if err != nil {
		return fmt.Errorf("serialize model: %w", err)
	}
	if err := store.Put(ctx, repository.KeyModel, blob); err != nil {
		return err
	}
	if blob, err = e.SerializeMemory(); err != nil {
		return fmt.Errorf("serialize memory: %w", err)
	}
	return store.Put(ctx, repository.KeyMemory, blob)
}

// Load restores the model and the memory from store. Missing keys leave the
// corresponding component as it is.
func (e *Engine) Load(ctx context.Context, store repository.Store) error {
	blob, err := store.Get(ctx, repository.KeyModel)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		e.logger.Info(ctx, "no stored model, keeping initial weights")
	case err != nil:
		return err
	default:
		if err := e.RestoreModel(blob); err != nil {
			return fmt.Errorf("restore model: %w", err)
		}
	}

	blob, err = store.Get(ctx, repository.KeyMemory)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return nil
	case err != nil:
		return err
	}
	if err := e.RestoreMemory(blob); err != nil {
		return fmt.Errorf("restore memory: %w", err)
	}
	e.logger.Info(ctx, "engine state loaded", logger.Int("memory", e.memory.Len()))
	return nil
}
