package scanapi

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "homesurvey/internal/common/errors"
	httpclient "homesurvey/internal/common/http"
	"homesurvey/internal/common/logger"
	"homesurvey/internal/models"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	hc := httpclient.NewClient(5*time.Second, httpclient.WithToken("tok"))
	return NewWithHTTP(srv.URL+"/", hc, logger.NewTestLogger(t))
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func codeOf(t *testing.T, err error) apperrors.ErrorCode {
	t.Helper()
	require.Error(t, err)
	return apperrors.AsStandardError(err).Code
}

func TestScan_SendsMultipartForm(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/scan", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		assert.NotEmpty(t, r.Header.Get(httpclient.RequestIDHeader))

		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "q-7", r.FormValue("question_id"))
		assert.Equal(t, "openai", r.FormValue("provider"))
		assert.Equal(t, "1 High St", r.FormValue("property_address"))
		assert.Equal(t, "LS1 4AB", r.FormValue("property_postcode"))
		assert.Equal(t, "2", r.FormValue("survey_level"))
		assert.Empty(t, r.FormValue("model"))
		assert.Empty(t, r.FormValue("property_city"))

		files := r.MultipartForm.File["files"]
		require.Len(t, files, 2)
		assert.Equal(t, "front.jpg", files[0].Filename)
		assert.Equal(t, "image-2.jpg", files[1].Filename)
		f, err := files[0].Open()
		require.NoError(t, err)
		defer f.Close()
		data, err := io.ReadAll(f)
		require.NoError(t, err)
		assert.Equal(t, "jpeg-bytes", string(data))

		writeJSON(w, http.StatusOK, map[string]interface{}{
			"ok":      true,
			"scan_id": "s-1",
			"raws":    []string{"Damp found"},
			"results": []map[string]interface{}{{"image_url": "/uploads/a.jpg"}},
		})
	})

	resp, err := c.Scan(context.Background(), ScanRequest{
		Files: []Upload{
			{Filename: "front.jpg", ContentType: "image/jpeg", Data: []byte("jpeg-bytes")},
			{Data: []byte{0xff, 0xd8, 0xff}},
		},
		QuestionID:  "q-7",
		Provider:    "openai",
		Property:    &models.Property{Address: "1 High St", Postcode: "LS1 4AB"},
		SurveyLevel: 2,
	})
	require.NoError(t, err)
	assert.Equal(t, "s-1", resp.ScanID)
	assert.Equal(t, []string{"Damp found"}, resp.Raws)
	require.Len(t, resp.Results, 1)
}

func TestScan_RequiresFiles(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected")
	})
	_, err := c.Scan(context.Background(), ScanRequest{})
	assert.Equal(t, apperrors.ErrCodeInvalidInput, codeOf(t, err))
}

func TestScan_Failures(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       interface{}
		wantCode   apperrors.ErrorCode
		wantDetail string
	}{
		{"detail string", http.StatusBadRequest, map[string]interface{}{"detail": "Unsupported image"}, apperrors.ErrCodeScanFailed, "Unsupported image"},
		{"error field", http.StatusInternalServerError, map[string]interface{}{"error": "model offline"}, apperrors.ErrCodeScanFailed, "model offline"},
		{"ok false", http.StatusOK, map[string]interface{}{"ok": false}, apperrors.ErrCodeScanFailed, defaultFailure},
		{"validation list", http.StatusUnprocessableEntity, map[string]interface{}{"detail": []interface{}{map[string]interface{}{"msg": "field required"}}}, apperrors.ErrCodeScanFailed, `[{"msg":"field required"}]`},
		{"unauthorised", http.StatusUnauthorized, map[string]interface{}{"detail": "Invalid token"}, apperrors.ErrCodeUnauthorized, "Invalid token"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, tt.status, tt.body)
			})
			_, err := c.Scan(context.Background(), ScanRequest{Files: []Upload{{Data: []byte("x")}}})
			require.Error(t, err)
			stdErr := apperrors.AsStandardError(err)
			assert.Equal(t, tt.wantCode, stdErr.Code)
			assert.Equal(t, tt.wantDetail, stdErr.Details)
		})
	}
}

func TestScan_BackendUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := NewWithHTTP(url, httpclient.NewClient(time.Second), logger.NewNoOpLogger())
	_, err := c.Scan(context.Background(), ScanRequest{Files: []Upload{{Data: []byte("x")}}})
	assert.Equal(t, apperrors.ErrCodeBackendUnavailable, codeOf(t, err))
}

func TestScan_Timeout(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	})
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := c.Scan(ctx, ScanRequest{Files: []Upload{{Data: []byte("x")}}})
	assert.Equal(t, apperrors.ErrCodeBackendTimeout, codeOf(t, err))
}

func TestListScans(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/scans", r.URL.Path)
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"ok":    true,
			"items": []map[string]interface{}{{"id": "a", "model": "gpt"}, {"id": "b"}},
		})
	})
	items, err := c.ListScans(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []models.HistoryItem{{ID: "a", Model: "gpt"}, {ID: "b"}}, items)
}

func TestListScans_EmptyIsNotNil(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]interface{}{"ok": true})
	})
	items, err := c.ListScans(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, items)
	assert.Empty(t, items)
}

func TestGetScan(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/scans/abc%2F1" && r.URL.RawPath != "/api/scans/abc%2F1" {
			writeJSON(w, http.StatusNotFound, map[string]interface{}{"detail": "Scan not found"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"ok":   true,
			"scan": map[string]interface{}{"id": "abc/1", "raw_text": "Roof sagging"},
		})
	})
	scan, err := c.GetScan(context.Background(), " abc/1 ")
	require.NoError(t, err)
	assert.Equal(t, "abc/1", scan.ID)
	assert.Equal(t, "Roof sagging", scan.RawText)

	_, err = c.GetScan(context.Background(), "missing")
	assert.Equal(t, apperrors.ErrCodeScanFailed, codeOf(t, err))

	_, err = c.GetScan(context.Background(), "  ")
	assert.Equal(t, apperrors.ErrCodeInvalidInput, codeOf(t, err))
}

func TestMe(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/auth/me", r.URL.Path)
		if r.Header.Get("Authorization") != "Bearer fresh" {
			writeJSON(w, http.StatusUnauthorized, map[string]interface{}{"detail": "Not authenticated"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"ok":   true,
			"user": map[string]interface{}{"_id": "u-9", "email": "a@b.test"},
		})
	})

	_, err := c.Me(context.Background())
	assert.Equal(t, apperrors.ErrCodeUnauthorized, codeOf(t, err))

	c.SetToken("fresh")
	user, err := c.Me(context.Background())
	require.NoError(t, err)
	assert.Equal(t, &models.User{LegacyID: "u-9", Email: "a@b.test"}, user)
}

func TestFailureDetail(t *testing.T) {
	assert.Equal(t, "boom", failureDetail("boom", "ignored"))
	assert.Equal(t, "err", failureDetail("  ", "err"))
	assert.Equal(t, "fallback", failureDetail(nil, "", "fallback"))
	assert.Equal(t, defaultFailure, failureDetail(nil, ""))
}
