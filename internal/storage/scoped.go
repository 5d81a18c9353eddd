package storage

import (
	"context"
	"strings"

	"homesurvey/internal/common/logger"
	"homesurvey/internal/common/metrics"
)

const scopeSeparator = "__"

// ScopedKey returns base__userID, or base alone when there is no user.
func ScopedKey(base, userID string) string {
	b := strings.TrimSpace(base)
	u := strings.TrimSpace(userID)
	if u == "" {
		return b
	}
	return b + scopeSeparator + u
}

// ScopedStore namespaces keys per user on top of a Storage and moves values
// written before scoping existed under the user's key on first read.
//
// It never returns storage errors. Failures are logged, counted and treated
// as a miss, so a broken backend degrades to "nothing persisted".
type ScopedStore struct {
	backend Storage
	log     logger.Logger
}

func NewScopedStore(backend Storage, log logger.Logger) *ScopedStore {
	return &ScopedStore{backend: backend, log: log}
}

// Backend exposes the underlying storage.
func (s *ScopedStore) Backend() Storage {
	return s.backend
}

// GetItem reads the scoped key, falling back to the legacy unscoped key.
// A legacy hit is copied to the scoped key and the legacy key removed.
func (s *ScopedStore) GetItem(ctx context.Context, base, userID string) (string, bool) {
	scoped := ScopedKey(base, userID)
	value, found, err := s.backend.Get(ctx, scoped)
	if err != nil {
		s.fail("get", scoped, err)
		return "", false
	}
	if found {
		return value, true
	}

	legacy := strings.TrimSpace(base)
	if legacy == scoped {
		return "", false
	}
	value, found, err = s.backend.Get(ctx, legacy)
	if err != nil {
		s.fail("get", legacy, err)
		return "", false
	}
	if !found {
		return "", false
	}
	s.migrate(ctx, legacy, scoped, value)
	return value, true
}

func (s *ScopedStore) migrate(ctx context.Context, legacy, scoped, value string) {
	if err := s.backend.Set(ctx, scoped, value); err != nil {
		s.fail("migrate", scoped, err)
		return
	}
	if err := s.backend.Remove(ctx, legacy); err != nil {
		s.fail("migrate", legacy, err)
		return
	}
	metrics.LegacyKeysMigrated.Inc()
	s.log.Debug("migrated legacy key", map[string]interface{}{
		"from": legacy,
		"to":   scoped,
	})
}

// SetItem writes the scoped key and drops the legacy key so it cannot be
// migrated over the new value later.
func (s *ScopedStore) SetItem(ctx context.Context, base, value, userID string) {
	scoped := ScopedKey(base, userID)
	if err := s.backend.Set(ctx, scoped, value); err != nil {
		s.fail("set", scoped, err)
		return
	}
	legacy := strings.TrimSpace(base)
	if legacy == scoped {
		return
	}
	if err := s.backend.Remove(ctx, legacy); err != nil {
		s.fail("remove", legacy, err)
	}
}

// RemoveItem deletes the scoped key only.
func (s *ScopedStore) RemoveItem(ctx context.Context, base, userID string) {
	scoped := ScopedKey(base, userID)
	if err := s.backend.Remove(ctx, scoped); err != nil {
		s.fail("remove", scoped, err)
	}
}

func (s *ScopedStore) fail(operation, key string, err error) {
	metrics.StorageFailures.WithLabelValues(operation).Inc()
	s.log.WithError(err).Warn("storage operation failed", map[string]interface{}{
		"operation": operation,
		"key":       key,
	})
}
