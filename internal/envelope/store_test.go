package envelope

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"homesurvey/internal/common/logger"
	"homesurvey/internal/common/metrics"
	"homesurvey/internal/imageref"
	"homesurvey/internal/models"
	"homesurvey/internal/storage"
)

const testBaseURL = "https://api.test"

func newTestStore(t *testing.T) (*Store, *storage.Memory) {
	mem := storage.NewMemory()
	log := logger.NewTestLogger(t)
	return NewStore(storage.NewScopedStore(mem, log), imageref.New(testBaseURL+"/"), log), mem
}

func stored(t *testing.T, mem *storage.Memory, key string) string {
	t.Helper()
	v, ok, err := mem.Get(context.Background(), key)
	require.NoError(t, err)
	require.True(t, ok, "missing key %s", key)
	return v
}

func TestStore_SaveAndLoad(t *testing.T) {
	ctx := context.Background()
	store, mem := newTestStore(t)
	env := &models.Envelope{ScanID: "s1", Raws: []string{"reply"}}

	saved := store.Save(ctx, env, "u1")
	assert.Equal(t, "u1", saved.UserID)
	assert.Empty(t, env.UserID)
	assert.Equal(t, []string{"hs_last_envelope__u1"}, mem.Keys())

	loaded, ok := store.Load(ctx, "u1")
	require.True(t, ok)
	assert.Equal(t, "s1", loaded.ScanID)
	assert.Equal(t, "u1", loaded.UserID)
	assert.Equal(t, []string{"reply"}, loaded.Raws)

	_, ok = store.Load(ctx, "u2")
	assert.False(t, ok)
}

func TestStore_LoadDiscardsEnvelopeOfAnotherUser(t *testing.T) {
	ctx := context.Background()
	store, mem := newTestStore(t)
	require.NoError(t, mem.Set(ctx, KeyLastEnvelope, `{"scan_id":"s9","user_id":"alice"}`))
	before := testutil.ToFloat64(metrics.EnvelopesDiscarded)

	env, status := store.Lookup(ctx, "bob")
	assert.Equal(t, LoadDiscarded, status)
	assert.Nil(t, env)
	assert.Equal(t, before+1, testutil.ToFloat64(metrics.EnvelopesDiscarded))

	_, ok := store.Load(ctx, "bob")
	assert.False(t, ok)
}

func TestStore_LoadKeepsUnstampedAndAnonymous(t *testing.T) {
	ctx := context.Background()
	store, mem := newTestStore(t)

	require.NoError(t, mem.Set(ctx, KeyLastEnvelope, `{"scan_id":"old"}`))
	env, ok := store.Load(ctx, "bob")
	require.True(t, ok)
	assert.Equal(t, "old", env.ScanID)

	require.NoError(t, mem.Set(ctx, KeyLastEnvelope, `{"scan_id":"s2","user_id":"alice"}`))
	env, ok = store.Load(ctx, "")
	require.True(t, ok)
	assert.Equal(t, "s2", env.ScanID)
}

func TestStore_LoadIgnoresCorruptValue(t *testing.T) {
	ctx := context.Background()
	store, mem := newTestStore(t)
	require.NoError(t, mem.Set(ctx, "hs_last_envelope__u1", `{"scan_id":`))

	_, status := store.Lookup(ctx, "u1")
	assert.Equal(t, LoadCorrupt, status)

	_, status = store.Lookup(ctx, "nobody")
	assert.Equal(t, LoadMissing, status)
	assert.Equal(t, "missing", status.String())
}

func TestStore_Clear(t *testing.T) {
	ctx := context.Background()
	store, mem := newTestStore(t)
	for _, key := range lastScanKeys {
		require.NoError(t, mem.Set(ctx, key+"__u1", "x"))
	}
	require.NoError(t, mem.Set(ctx, "hs_last_raw__u2", "other"))
	require.NoError(t, mem.Set(ctx, PreviewKey("s1")+"__u1", "keep"))

	store.Clear(ctx, "u1")
	assert.Equal(t, []string{"hs_last_raw__u2", "hs_scan_preview_s1__u1"}, mem.Keys())
}

func TestStore_PreviewCache(t *testing.T) {
	ctx := context.Background()
	store, mem := newTestStore(t)

	store.CachePreview(ctx, "s1", "/previews/s1.jpg", "u1")
	assert.Equal(t, testBaseURL+"/previews/s1.jpg", stored(t, mem, "hs_scan_preview_s1__u1"))

	got, ok := store.CachedPreview(ctx, "s1", "u1")
	assert.True(t, ok)
	assert.Equal(t, testBaseURL+"/previews/s1.jpg", got)

	store.CachePreview(ctx, "s2", "https://example.com/placeholder.jpg", "u1")
	_, ok = store.CachedPreview(ctx, "s2", "u1")
	assert.False(t, ok)

	_, ok = store.CachedPreview(ctx, "", "u1")
	assert.False(t, ok)
}

func TestStore_LastImage(t *testing.T) {
	ctx := context.Background()
	store, mem := newTestStore(t)
	assert.Empty(t, store.LastImage(ctx, "u1"))

	require.NoError(t, mem.Set(ctx, "hs_last_image__u1", "uploads/a.jpg"))
	assert.Equal(t, testBaseURL+"/uploads/a.jpg", store.LastImage(ctx, "u1"))

	require.NoError(t, mem.Set(ctx, "hs_last_image_b64__u1", "data:image/png;base64,AAAA"))
	assert.Equal(t, "data:image/png;base64,AAAA", store.LastImage(ctx, "u1"))
}

func TestStore_Login(t *testing.T) {
	ctx := context.Background()
	store, mem := newTestStore(t)
	assert.Nil(t, store.CurrentUser(ctx))
	assert.Empty(t, store.CurrentUserID(ctx))

	store.SaveLogin(ctx, "tok-1", &models.User{Email: "Jane@Example.com", Name: "Jane"})
	assert.Equal(t, "tok-1", store.Token(ctx))
	assert.Equal(t, "jane@example.com", store.CurrentUserID(ctx))

	var u models.User
	require.NoError(t, json.Unmarshal([]byte(stored(t, mem, KeyUser)), &u))
	assert.Equal(t, "Jane", u.Name)

	store.Logout(ctx)
	assert.Empty(t, store.Token(ctx))
	assert.Nil(t, store.CurrentUser(ctx))
}
