// Package repository persists engine state as opaque blobs under string keys.
package repository

import (
	"context"
	"strings"
	"sync"
)

// Well-known keys.
const (
	KeyModel  = "model"
	KeyMemory = "memory"
)

// Store provides read/write access to persisted blobs.
type Store interface {
	// Put stores value under key, replacing any previous value.
	Put(ctx context.Context, key string, value []byte) error
	// Get returns the value under key, or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)
	// Close releases the underlying medium.
	Close() error
}

// MemoryStore is a Store backed by a map.
type MemoryStore struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{blobs: make(map[string][]byte)}
}

// Put stores a copy of value.
func (s *MemoryStore) Put(ctx context.Context, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if strings.TrimSpace(key) == "" {
		return ErrInvalidKey
	}
	s.mu.Lock()
	s.blobs[key] = append([]byte(nil), value...)
	s.mu.Unlock()
	return nil
}

// Get returns a copy of the value under key.
func (s *MemoryStore) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	v, ok := s.blobs[key]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), v...), nil
}

// Close is a no-op.
func (s *MemoryStore) Close() error { return nil }
