package session

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"homesurvey/internal/common/logger"
	"homesurvey/internal/envelope"
	"homesurvey/internal/imageref"
	"homesurvey/internal/models"
	"homesurvey/internal/storage"
)

const reply = "Observations: crack in wall. Recommend: call surveyor. Risk: high."

func newTestSession(t *testing.T) (*Session, *envelope.Store) {
	log := logger.NewTestLogger(t)
	store := envelope.NewStore(storage.NewScopedStore(storage.NewMemory(), log), imageref.New("https://api.test"), log)
	s := New(store, log)
	t.Cleanup(s.Close)
	return s, store
}

func TestSession_SetUserRehydratesAndNotifies(t *testing.T) {
	ctx := context.Background()
	s, store := newTestSession(t)
	store.Save(ctx, &models.Envelope{ScanID: "s1", Raws: []string{reply}}, "u1")

	changes, _ := s.UserChanged.Subscribe(4)

	a := s.SetUser(ctx, &models.User{ID: "u1"})
	require.NotNil(t, a)
	assert.Equal(t, "s1", a.ScanID)
	assert.Equal(t, models.RiskHigh, a.Structured.RiskLevel)
	assert.Equal(t, "u1", <-changes)

	// same user again: nothing changes, nobody is told
	assert.Same(t, a, s.SetUser(ctx, &models.User{ID: " u1 "}))
	assert.Empty(t, changes)

	assert.Nil(t, s.SetUser(ctx, &models.User{Email: "Other@Example.com"}))
	assert.Equal(t, "other@example.com", <-changes)
	assert.Nil(t, s.Analysis())
	assert.Equal(t, "other@example.com", s.UserID())
}

func TestSession_LastScanWins(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestSession(t)
	s.SetUser(ctx, &models.User{ID: "u1"})
	updates, _ := s.EnvelopeUpdated.Subscribe(4)

	older := s.BeginScan()
	newer := s.BeginScan()

	a, ok := s.CompleteScan(ctx, newer, &models.Envelope{ScanID: "new", Raws: []string{reply}})
	require.True(t, ok)
	assert.Equal(t, "new", a.ScanID)

	_, ok = s.CompleteScan(ctx, older, &models.Envelope{ScanID: "old", Raws: []string{reply}})
	assert.False(t, ok)
	assert.Equal(t, "new", s.Analysis().ScanID)

	env := <-updates
	assert.Equal(t, "new", env.ScanID)
	assert.Equal(t, "u1", env.UserID)
	assert.Empty(t, updates)
}

func TestSession_UserSwitchInvalidatesScan(t *testing.T) {
	ctx := context.Background()
	s, store := newTestSession(t)
	s.SetUser(ctx, &models.User{ID: "u1"})

	ticket := s.BeginScan()
	s.SetUser(ctx, &models.User{ID: "u2"})

	_, ok := s.CompleteScan(ctx, ticket, &models.Envelope{ScanID: "late", Raws: []string{reply}})
	assert.False(t, ok)
	_, found := store.Load(ctx, "u1")
	assert.False(t, found)
}

func TestSession_ApplyEnvelope(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestSession(t)
	s.SetUser(ctx, &models.User{ID: "u1"})

	_, ok := s.ApplyEnvelope(ctx, &models.Envelope{ScanID: "x", UserID: "u2"})
	assert.False(t, ok)

	a, ok := s.ApplyEnvelope(ctx, &models.Envelope{ScanID: "h1", UserID: "u1", Raws: []string{reply}})
	require.True(t, ok)
	assert.Equal(t, "h1", a.ScanID)
}

func TestSession_PreviewReads(t *testing.T) {
	s, _ := newTestSession(t)

	stale := s.BeginPreview()
	fresh := s.BeginPreview()
	assert.True(t, s.CompletePreview(fresh, "data:image/png;base64,BBBB"))
	assert.False(t, s.CompletePreview(stale, "data:image/png;base64,AAAA"))
	assert.Equal(t, "data:image/png;base64,BBBB", s.Preview())

	inFlight := s.BeginPreview()
	s.ClearPreview()
	assert.False(t, s.CompletePreview(inFlight, "data:image/png;base64,CCCC"))
	assert.Empty(t, s.Preview())
}

func TestSession_ScanUsesPreviewWhenResultsHaveNoImage(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestSession(t)
	s.SetUser(ctx, &models.User{ID: "u1"})
	s.CompletePreview(s.BeginPreview(), "data:image/png;base64,iVBORw0KGgo=")

	a, ok := s.CompleteScan(ctx, s.BeginScan(), &models.Envelope{ScanID: "s1", Raws: []string{reply}})
	require.True(t, ok)
	assert.Equal(t, []string{"data:image/png;base64,iVBORw0KGgo="}, a.Images)
}

func TestSession_ConcurrentScans(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestSession(t)
	s.SetUser(ctx, &models.User{ID: "u1"})

	var wg sync.WaitGroup
	applied := make(chan string, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ticket := s.BeginScan()
			if a, ok := s.CompleteScan(ctx, ticket, &models.Envelope{ScanID: "s", Raws: []string{reply}}); ok {
				applied <- a.ScanID
			}
		}()
	}
	wg.Wait()
	close(applied)

	assert.LessOrEqual(t, len(applied), 10)
	assert.NotNil(t, s.Analysis())
}
