package loadenvelope

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "homesurvey/internal/common/errors"
	"homesurvey/internal/common/logger"
	"homesurvey/internal/envelope"
	"homesurvey/internal/imageref"
	"homesurvey/internal/models"
	"homesurvey/internal/storage"
)

func createTestHandler(t *testing.T, config *Config) (*Handler, *storage.Memory, *envelope.Store) {
	if config == nil {
		config = LoadConfig()
	}
	mem := storage.NewMemory()
	log := logger.NewTestLogger(t)
	store := envelope.NewStore(storage.NewScopedStore(mem, log), imageref.New("https://api.test"), log)
	return NewHandler(config, store, log), mem, store
}

func TestHandler_Execute_Found(t *testing.T) {
	ctx := context.Background()
	h, mem, store := createTestHandler(t, nil)
	store.Save(ctx, &models.Envelope{
		ScanID:  "s1",
		Raws:    []string{"Damp in cellar. Risk is low."},
		Results: []models.ScanResult{{ImageURL: "/uploads/s1.jpg"}},
	}, "u1")
	keysBefore := mem.Keys()

	out, err := h.Execute(ctx, &Input{User: &models.User{ID: "u1"}})
	require.NoError(t, err)
	assert.True(t, out.Found)
	assert.False(t, out.Discarded)
	require.NotNil(t, out.Envelope)
	assert.Equal(t, "s1", out.Envelope.ScanID)
	require.NotNil(t, out.Report)
	assert.Equal(t, models.RiskLow, out.Report.Verdict.Risk)
	assert.Equal(t, []string{"https://api.test/uploads/s1.jpg"}, out.Images)

	assert.Equal(t, keysBefore, mem.Keys())
}

func TestHandler_Execute_DiscardsEnvelopeOfAnotherUser(t *testing.T) {
	ctx := context.Background()
	h, mem, _ := createTestHandler(t, nil)
	require.NoError(t, mem.Set(ctx, envelope.KeyLastEnvelope, `{"scan_id":"s9","user_id":"alice"}`))

	out, err := h.Execute(ctx, &Input{UserID: "bob"})
	require.NoError(t, err)
	assert.False(t, out.Found)
	assert.True(t, out.Discarded)
	assert.Nil(t, out.Envelope)
	assert.Nil(t, out.Report)
}

func TestHandler_Execute_Missing(t *testing.T) {
	h, _, _ := createTestHandler(t, nil)
	out, err := h.Execute(context.Background(), &Input{UserID: "nobody"})
	require.NoError(t, err)
	assert.False(t, out.Found)
	assert.False(t, out.Discarded)

	strict, _, _ := createTestHandler(t, &Config{RequireEnvelope: true})
	_, err = strict.Execute(context.Background(), &Input{UserID: "nobody"})
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeEnvelopeNotFound))
}

func TestInputSchema(t *testing.T) {
	res, err := inputSchema.Validate(map[string]interface{}{})
	require.NoError(t, err)
	assert.True(t, res.Valid)

	res, err = inputSchema.Validate(map[string]interface{}{"userId": 5})
	require.NoError(t, err)
	assert.False(t, res.Valid)
}
