// Package envelope persists the latest scan per user and rebuilds the
// analysis view from it.
package envelope

import (
	"context"
	"encoding/json"
	"errors"

	"homesurvey/internal/common/logger"
	"homesurvey/internal/common/metrics"
	"homesurvey/internal/imageref"
	"homesurvey/internal/models"
	"homesurvey/internal/storage"
)

var ErrIncompleteScan = errors.New("INCOMPLETE_SCAN")

type Store struct {
	items    *storage.ScopedStore
	resolver *imageref.Resolver
	log      logger.Logger
}

func NewStore(items *storage.ScopedStore, resolver *imageref.Resolver, log logger.Logger) *Store {
	if resolver == nil {
		resolver = imageref.New("")
	}
	return &Store{items: items, resolver: resolver, log: log}
}

// Resolver returns the image resolver the store normalizes with.
func (s *Store) Resolver() *imageref.Resolver {
	return s.resolver
}

// Save stamps a copy of env with userID and persists it. The stamped copy
// is returned; env itself is left alone.
func (s *Store) Save(ctx context.Context, env *models.Envelope, userID string) *models.Envelope {
	if env == nil {
		return nil
	}
	stamped := *env
	stamped.UserID = userID
	s.setJSON(ctx, KeyLastEnvelope, &stamped, userID)
	return &stamped
}

// LoadStatus tells why Lookup did or did not return an envelope.
type LoadStatus int

const (
	LoadMissing LoadStatus = iota
	LoadFound
	// LoadDiscarded means the stored envelope was recorded for another user.
	LoadDiscarded
	LoadCorrupt
)

func (s LoadStatus) String() string {
	switch s {
	case LoadFound:
		return "found"
	case LoadDiscarded:
		return "discarded"
	case LoadCorrupt:
		return "corrupt"
	default:
		return "missing"
	}
}

// Load returns the stored envelope for userID. An envelope recorded for a
// different user is ignored and reported as not found.
func (s *Store) Load(ctx context.Context, userID string) (*models.Envelope, bool) {
	env, status := s.Lookup(ctx, userID)
	return env, status == LoadFound
}

// Lookup is Load with the reason for a miss.
func (s *Store) Lookup(ctx context.Context, userID string) (*models.Envelope, LoadStatus) {
	raw, ok := s.items.GetItem(ctx, KeyLastEnvelope, userID)
	if !ok || raw == "" {
		return nil, LoadMissing
	}
	var env models.Envelope
	if err := json.Unmarshal([]byte(raw), &env); err != nil {
		s.log.WithError(err).Warn("stored envelope is not valid json", map[string]interface{}{
			"user_id": userID,
		})
		return nil, LoadCorrupt
	}
	if belongsToOther(&env, userID) {
		metrics.EnvelopesDiscarded.Inc()
		s.log.Warn("discarding envelope of another user", map[string]interface{}{
			"envelope_user": env.UserID,
			"active_user":   userID,
			"scan_id":       env.ScanID,
		})
		return nil, LoadDiscarded
	}
	return &env, LoadFound
}

// belongsToOther is true only when both ids are known and differ.
// Envelopes written before user stamping carry no id and are kept.
func belongsToOther(env *models.Envelope, userID string) bool {
	return env.UserID != "" && userID != "" && env.UserID != userID
}

// Clear removes everything recorded about the last scan of userID.
func (s *Store) Clear(ctx context.Context, userID string) {
	for _, key := range lastScanKeys {
		s.items.RemoveItem(ctx, key, userID)
	}
}

// LastReport returns the classic report JSON last written for userID.
func (s *Store) LastReport(ctx context.Context, userID string) (string, bool) {
	return s.items.GetItem(ctx, KeyLastReportJSON, userID)
}

// LastImage returns the best stored image for userID: the cached preview
// data URL first, then the lead image reference.
func (s *Store) LastImage(ctx context.Context, userID string) string {
	if b64, ok := s.items.GetItem(ctx, KeyLastImageB64, userID); ok && b64 != "" {
		return b64
	}
	path, _ := s.items.GetItem(ctx, KeyLastImage, userID)
	return s.resolver.Preview(path)
}

// CachePreview remembers the preview image of one scan for the history list.
func (s *Store) CachePreview(ctx context.Context, scanID, preview, userID string) {
	if scanID == "" {
		return
	}
	if normalized := s.resolver.Preview(preview); normalized != "" {
		s.items.SetItem(ctx, PreviewKey(scanID), normalized, userID)
	}
}

// CachedPreview returns the normalized preview cached for scanID.
func (s *Store) CachedPreview(ctx context.Context, scanID, userID string) (string, bool) {
	if scanID == "" {
		return "", false
	}
	cached, ok := s.items.GetItem(ctx, PreviewKey(scanID), userID)
	if !ok {
		return "", false
	}
	normalized := s.resolver.Preview(cached)
	return normalized, normalized != ""
}

func (s *Store) setJSON(ctx context.Context, key string, v interface{}, userID string) {
	data, err := json.Marshal(v)
	if err != nil {
		s.log.WithError(err).Error("failed to encode stored value", map[string]interface{}{"key": key})
		return
	}
	s.items.SetItem(ctx, key, string(data), userID)
}
