package e2e

import (
	"context"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"homesurvey/internal/common/config"
	"homesurvey/internal/common/logger"
	"homesurvey/internal/envelope"
	"homesurvey/internal/imageref"
	"homesurvey/internal/models"
	"homesurvey/internal/storage"

	loadenvelope "homesurvey/internal/workers/survey/load-envelope"
	normalizescanresult "homesurvey/internal/workers/survey/normalize-scan-result"
	persistenvelope "homesurvey/internal/workers/survey/persist-envelope"
	sanitizereport "homesurvey/internal/workers/survey/sanitize-report"
)

const classicReply = "Survey complete.\n```json\n" + `{
  "title": "Semi-detached house",
  "address": "3 Oak Road",
  "imageUrl": "/uploads/oak.jpg",
  "verdict": {"condition": "Fair", "risk": "Amber", "stance": "Proceed with caution"},
  "highlights": ["Cracked render"],
  "level1": {"ratings": [{"element": "Walls", "rating": 2}], "advice": "Get quotes"},
  "level2": {"investigations": ["Structural survey"], "remediation": []},
  "level3": {"heavyCosts": [{"item": "Underpinning", "min": 8000, "max": 20000}]},
  "costs": [{"item": "Render", "min": 900, "max": 1500}],
  "checklist": ["Ask about insurance claims"]
}` + "\n```"

type pipeline struct {
	redis     *miniredis.Miniredis
	store     *envelope.Store
	normalize *normalizescanresult.Handler
	sanitize  *sanitizereport.Handler
	persist   *persistenvelope.Handler
	load      *loadenvelope.Handler
}

func newPipeline(t *testing.T) *pipeline {
	t.Helper()
	mr := miniredis.RunT(t)
	log := logger.NewTestLogger(t)

	backend, closeFn, err := storage.Open(context.Background(), config.StorageConfig{
		Backend:   config.StorageRedis,
		KeyPrefix: "e2e:",
		Redis:     config.RedisConfig{Address: mr.Addr()},
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = closeFn() })

	resolver := imageref.New("https://api.test")
	store := envelope.NewStore(storage.NewScopedStore(backend, log), resolver, log)

	return &pipeline{
		redis:     mr,
		store:     store,
		normalize: normalizescanresult.NewHandler(normalizescanresult.LoadConfig(), resolver, log),
		sanitize:  sanitizereport.NewHandler(sanitizereport.LoadConfig(), log),
		persist:   persistenvelope.NewHandler(persistenvelope.LoadConfig(), store, log),
		load:      loadenvelope.NewHandler(loadenvelope.LoadConfig(), store, log),
	}
}

func TestScanPipeline(t *testing.T) {
	p := newPipeline(t)
	ctx := context.Background()
	user := &models.User{Email: "Owner@Example.com"}

	normalized, err := p.normalize.Execute(ctx, &normalizescanresult.Input{RawText: classicReply})
	require.NoError(t, err)
	require.NotNil(t, normalized.Classic)
	assert.Equal(t, "Semi-detached house", normalized.Report.Title)
	assert.Equal(t, "https://api.test/uploads/oak.jpg", normalized.Report.ImageURL)
	assert.Equal(t, models.RiskModerate, normalized.Structured.RiskLevel)

	sanitized, err := p.sanitize.Execute(ctx, &sanitizereport.Input{Report: normalized.Report})
	require.NoError(t, err)
	assert.Equal(t, normalized.Report.Title, sanitized.Report.Title)
	assert.Equal(t, normalized.Report.Costs, sanitized.Report.Costs)

	persisted, err := p.persist.Execute(ctx, &persistenvelope.Input{
		Envelope: &models.Envelope{ScanID: "scan-1", Raws: []string{classicReply}},
		User:     user,
	})
	require.NoError(t, err)
	assert.True(t, persisted.Stored)
	assert.Equal(t, "owner@example.com", persisted.UserID)
	assert.Equal(t, "scan-1", persisted.ScanID)

	scoped := false
	for _, key := range p.redis.Keys() {
		assert.True(t, strings.HasPrefix(key, "e2e:"), key)
		if strings.HasSuffix(key, "__owner@example.com") {
			scoped = true
		}
	}
	assert.True(t, scoped, "expected keys scoped to the owner")

	loaded, err := p.load.Execute(ctx, &loadenvelope.Input{User: user})
	require.NoError(t, err)
	require.True(t, loaded.Found)
	require.NotNil(t, loaded.Report)
	assert.Equal(t, "scan-1", loaded.Envelope.ScanID)
	assert.Equal(t, normalized.Report.Title, loaded.Report.Title)
	assert.Equal(t, normalized.Report.Verdict, loaded.Report.Verdict)

	other, err := p.load.Execute(ctx, &loadenvelope.Input{User: &models.User{ID: "someone-else"}})
	require.NoError(t, err)
	assert.False(t, other.Found)
	assert.Nil(t, other.Report)
}

func TestScanPipeline_RedisOutage(t *testing.T) {
	p := newPipeline(t)
	ctx := context.Background()
	p.redis.Close()

	_, err := p.persist.Execute(ctx, &persistenvelope.Input{
		Envelope: &models.Envelope{ScanID: "scan-2", Raw: classicReply},
		UserID:   "u1",
	})
	require.Error(t, err)

	loaded, err := p.load.Execute(ctx, &loadenvelope.Input{UserID: "u1"})
	require.NoError(t, err)
	assert.False(t, loaded.Found)
}
