// Package scanapi is the client of the HomeSurvey backend: scan upload,
// scan history and the signed-in account.
package scanapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net"
	"net/http"
	"net/textproto"
	"net/url"
	"strconv"
	"strings"

	"homesurvey/internal/common/config"
	apperrors "homesurvey/internal/common/errors"
	httpclient "homesurvey/internal/common/http"
	"homesurvey/internal/common/logger"
	"homesurvey/internal/models"
)

const (
	scanPath  = "/api/scan"
	scansPath = "/api/scans"
	mePath    = "/api/auth/me"

	defaultFailure = "Scan failed"
)

// Upload is one image sent with a scan.
type Upload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ScanRequest carries the multipart form fields of POST /api/scan.
type ScanRequest struct {
	Files       []Upload
	QuestionID  string
	Provider    string
	Model       string
	Property    *models.Property
	SurveyLevel int
}

type Client struct {
	baseURL string
	http    *httpclient.Client
	log     logger.Logger
}

func New(cfg config.APIConfig, log logger.Logger) *Client {
	return NewWithHTTP(cfg.BaseURL, httpclient.NewClient(
		config.GetDuration(cfg.Timeout),
		httpclient.WithToken(cfg.Token),
		httpclient.WithRetries(cfg.MaxRetries, httpclient.DefaultBackoff),
		httpclient.WithLogger(log),
	), log)
}

func NewWithHTTP(baseURL string, hc *httpclient.Client, log logger.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    hc,
		log:     log,
	}
}

// SetToken replaces the bearer token for later calls.
func (c *Client) SetToken(token string) {
	c.http.SetToken(token)
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

func encodeScanForm(req ScanRequest) (body []byte, contentType string, err error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for i, f := range req.Files {
		name := f.Filename
		if name == "" {
			name = fmt.Sprintf("image-%d.jpg", i+1)
		}
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="files"; filename="%s"`, escapeQuotes(name)))
		ct := f.ContentType
		if ct == "" {
			ct = http.DetectContentType(f.Data)
		}
		h.Set("Content-Type", ct)
		part, err := w.CreatePart(h)
		if err != nil {
			return nil, "", err
		}
		if _, err := part.Write(f.Data); err != nil {
			return nil, "", err
		}
	}

	fields := [][2]string{
		{"question_id", req.QuestionID},
		{"provider", req.Provider},
		{"model", req.Model},
	}
	if p := req.Property; p != nil {
		fields = append(fields,
			[2]string{"property_address", p.Address},
			[2]string{"property_city", p.City},
			[2]string{"property_postcode", p.Postcode},
		)
	}
	if req.SurveyLevel > 0 {
		fields = append(fields, [2]string{"survey_level", strconv.Itoa(req.SurveyLevel)})
	}
	for _, f := range fields {
		if f[1] == "" {
			continue
		}
		if err := w.WriteField(f[0], f[1]); err != nil {
			return nil, "", err
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), w.FormDataContentType(), nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}

// Scan uploads the images and returns the raw backend reply.
func (c *Client) Scan(ctx context.Context, req ScanRequest) (*models.ScanResponse, error) {
	if len(req.Files) == 0 {
		return nil, apperrors.NewInvalidInputError("at least one image is required")
	}
	body, contentType, err := encodeScanForm(req)
	if err != nil {
		return nil, apperrors.NewInternalError(fmt.Errorf("encode scan form: %w", err))
	}

	var out models.ScanResponse
	status, err := c.send(ctx, http.MethodPost, scanPath, contentType, body, &out)
	if err != nil {
		return nil, err
	}
	if out.OK != nil && !*out.OK {
		return nil, apperrors.NewScanFailedError(status, failureDetail(out.Detail, out.Error))
	}
	c.log.Info("scan completed", map[string]interface{}{
		"scan_id":  out.ScanID,
		"model":    out.Model,
		"provider": out.Provider,
		"results":  len(out.Results),
	})
	return &out, nil
}

// ListScans returns the scan history of the signed-in user.
func (c *Client) ListScans(ctx context.Context) ([]models.HistoryItem, error) {
	var out struct {
		OK    *bool                `json:"ok"`
		Items []models.HistoryItem `json:"items"`
		Error string               `json:"error"`
	}
	status, err := c.send(ctx, http.MethodGet, scansPath, "", nil, &out)
	if err != nil {
		return nil, err
	}
	if out.OK != nil && !*out.OK {
		return nil, apperrors.NewScanFailedError(status, failureDetail(nil, out.Error))
	}
	if out.Items == nil {
		out.Items = []models.HistoryItem{}
	}
	return out.Items, nil
}

// GetScan fetches one stored scan.
func (c *Client) GetScan(ctx context.Context, id string) (*models.ScanDetail, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperrors.NewInvalidInputError("scan id is required")
	}
	var out struct {
		OK    *bool              `json:"ok"`
		Scan  *models.ScanDetail `json:"scan"`
		Error string             `json:"error"`
	}
	status, err := c.send(ctx, http.MethodGet, scansPath+"/"+url.PathEscape(id), "", nil, &out)
	if err != nil {
		return nil, err
	}
	if (out.OK != nil && !*out.OK) || out.Scan == nil {
		return nil, apperrors.NewScanFailedError(status, failureDetail(nil, out.Error, "Failed to open scan"))
	}
	return out.Scan, nil
}

// Me returns the account the token belongs to.
func (c *Client) Me(ctx context.Context) (*models.User, error) {
	var out struct {
		OK   *bool        `json:"ok"`
		User *models.User `json:"user"`
	}
	if _, err := c.send(ctx, http.MethodGet, mePath, "", nil, &out); err != nil {
		return nil, err
	}
	if (out.OK != nil && !*out.OK) || out.User == nil {
		return nil, apperrors.NewUnauthorizedError("no user for token")
	}
	return out.User, nil
}

// send performs one call and decodes a JSON body into out. Non-2xx replies
// become StandardErrors carrying the backend's detail.
func (c *Client) send(ctx context.Context, method, path, contentType string, body []byte, out interface{}) (int, error) {
	target := c.baseURL + path
	resp, err := c.http.Do(ctx, func(ctx context.Context) (*http.Request, error) {
		var r io.Reader
		if body != nil {
			r = bytes.NewReader(body)
		}
		req, err := http.NewRequestWithContext(ctx, method, target, r)
		if err != nil {
			return nil, err
		}
		if contentType != "" {
			req.Header.Set("Content-Type", contentType)
		}
		req.Header.Set("Accept", "application/json")
		return req, nil
	})
	if err != nil {
		return 0, transportError(err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, transportError(fmt.Errorf("read response body: %w", err))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var e struct {
			Detail interface{} `json:"detail"`
			Error  string      `json:"error"`
		}
		_ = json.Unmarshal(raw, &e)
		detail := failureDetail(e.Detail, e.Error)
		c.log.Warn("backend call failed", map[string]interface{}{
			"method": method,
			"path":   path,
			"status": resp.StatusCode,
			"detail": detail,
		})
		if resp.StatusCode == http.StatusUnauthorized {
			return resp.StatusCode, apperrors.NewUnauthorizedError(detail)
		}
		return resp.StatusCode, apperrors.NewScanFailedError(resp.StatusCode, detail)
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return resp.StatusCode, apperrors.NewScanFailedError(resp.StatusCode, fmt.Sprintf("invalid response body: %v", err))
	}
	return resp.StatusCode, nil
}

func transportError(err error) error {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return apperrors.NewBackendTimeoutError(err)
	}
	return apperrors.NewBackendUnavailableError(err)
}

// failureDetail renders the backend's detail (a string or a validation
// list) or error field, falling back to a generic message.
func failureDetail(detail interface{}, errMsg string, fallback ...string) string {
	switch d := detail.(type) {
	case string:
		if strings.TrimSpace(d) != "" {
			return d
		}
	case nil:
	default:
		if b, err := json.Marshal(d); err == nil {
			return string(b)
		}
	}
	if strings.TrimSpace(errMsg) != "" {
		return errMsg
	}
	if len(fallback) > 0 {
		return fallback[0]
	}
	return defaultFailure
}
