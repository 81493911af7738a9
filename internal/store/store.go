package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"techstore-admin/internal/util"

	"go.uber.org/zap"
)

// Backend is the key-value blob store the collections live in.
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	// NextID returns the next value of the named sequence, never less than
	// floor+1.
	NextID(ctx context.Context, name string, floor int64) (int64, error)
	Close() error
}

type Store struct {
	backend Backend
	prefix  string
	logger  *zap.Logger
}

// NewStore creates a store writing keys as "<prefix>_<name>"
func NewStore(backend Backend, prefix string) *Store {
	return &Store{
		backend: backend,
		prefix:  prefix,
		logger:  util.GetLogger(),
	}
}

// Close closes the underlying backend
func (s *Store) Close() error {
	return s.backend.Close()
}

// Key returns the storage key of a collection or value
func (s *Store) Key(name string) string {
	if s.prefix == "" {
		return name
	}
	return s.prefix + "_" + name
}

// Read returns the whole collection. An absent key, a backend failure or a
// value that does not parse all yield an empty collection; failures are
// logged, never returned.
func Read[T any](ctx context.Context, s *Store, collection string) []T {
	key := s.Key(collection)
	util.StorageReadsTotal.WithLabelValues(collection).Inc()

	raw, ok, err := s.backend.Get(ctx, key)
	if err != nil {
		util.StorageReadFailuresTotal.WithLabelValues(collection).Inc()
		s.logger.Error("Failed to read collection", zap.String("key", key), zap.Error(err))
		return []T{}
	}
	if !ok || len(raw) == 0 {
		return []T{}
	}

	var records []T
	if err := json.Unmarshal(raw, &records); err != nil {
		util.StorageReadFailuresTotal.WithLabelValues(collection).Inc()
		s.logger.Error("Failed to parse collection", zap.String("key", key), zap.Error(err))
		return []T{}
	}
	if records == nil {
		return []T{}
	}
	return records
}

// Write serialises the whole collection and replaces the stored value in a
// single backend call.
func Write[T any](ctx context.Context, s *Store, collection string, records []T) error {
	if records == nil {
		records = []T{}
	}
	raw, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", collection, err)
	}

	if err := s.backend.Set(ctx, s.Key(collection), raw); err != nil {
		s.logger.Error("Failed to write collection", zap.String("collection", collection), zap.Error(err))
		return fmt.Errorf("failed to write %s: %w", collection, err)
	}

	util.StorageWritesTotal.WithLabelValues(collection).Inc()
	return nil
}

// ErrValueNotFound is returned by ReadValue for an absent key
var ErrValueNotFound = errors.New("value not found")

// ReadValue reads a single JSON value stored under name
func ReadValue[T any](ctx context.Context, s *Store, name string) (T, error) {
	var v T
	raw, ok, err := s.backend.Get(ctx, s.Key(name))
	if err != nil {
		return v, fmt.Errorf("failed to read %s: %w", name, err)
	}
	if !ok {
		return v, ErrValueNotFound
	}
	if err := json.Unmarshal(raw, &v); err != nil {
		return v, fmt.Errorf("failed to parse %s: %w", name, err)
	}
	return v, nil
}

// WriteValue stores a single JSON value under name
func WriteValue[T any](ctx context.Context, s *Store, name string, v T) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", name, err)
	}
	if err := s.backend.Set(ctx, s.Key(name), raw); err != nil {
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	return nil
}

// DeleteValue removes the value stored under name
func (s *Store) DeleteValue(ctx context.Context, name string) error {
	return s.backend.Delete(ctx, s.Key(name))
}

// NextID issues a new id for collection. The sequence is floored at the
// highest id currently present, so ids freed by deletions are not reissued.
func (s *Store) NextID(ctx context.Context, collection string, maxExisting int64) (int64, error) {
	id, err := s.backend.NextID(ctx, s.Key(collection+"_seq"), maxExisting)
	if err != nil {
		return 0, fmt.Errorf("failed to allocate %s id: %w", collection, err)
	}
	return id, nil
}
