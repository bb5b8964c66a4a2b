package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"resume-review/internal/analyses"
)

const (
	defaultBaseURL = "http://localhost:8080"
	apiPrefix      = "/api/v1"
	clientIDHeader = "X-Client-Id"
)

// ErrHistoryUnavailable is returned when the server cannot read history.
var ErrHistoryUnavailable = errors.New("history unavailable")

// APIError is a non-success response from the API.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("api status %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("api status %d (%s): %s", e.Status, e.Code, e.Message)
}

// Client talks to the resume review API.
type Client struct {
	baseURL  string
	clientID string
	http     *http.Client
	logger   *zap.Logger
}

// New builds a Client. A nil httpClient gets a client with a timeout long
// enough for an analysis; a nil logger discards output.
func New(baseURL, clientID string, httpClient *http.Client, logger *zap.Logger) *Client {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 2 * time.Minute}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{baseURL: baseURL, clientID: strings.TrimSpace(clientID), http: httpClient, logger: logger}
}

// Upload posts one file and returns the stored record.
func (c *Client) Upload(ctx context.Context, fileName, contentType string, data []byte) (analyses.RecordView, error) {
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	h := textproto.MIMEHeader{}
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, escapeQuotes(fileName)))
	h.Set("Content-Type", contentType)
	part, err := w.CreatePart(h)
	if err != nil {
		return analyses.RecordView{}, err
	}
	if _, err := part.Write(data); err != nil {
		return analyses.RecordView{}, err
	}
	if err := w.Close(); err != nil {
		return analyses.RecordView{}, err
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/resumes", body)
	if err != nil {
		return analyses.RecordView{}, err
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	resp, err := c.do(req)
	if err != nil {
		return analyses.RecordView{}, err
	}
	defer resp.Body.Close()

	var out analyses.UploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return analyses.RecordView{}, &APIError{Status: resp.StatusCode, Message: "malformed response"}
	}
	if resp.StatusCode != http.StatusCreated || !out.Success || out.Data == nil {
		return analyses.RecordView{}, &APIError{Status: resp.StatusCode, Code: out.Code, Message: out.Message}
	}
	return *out.Data, nil
}

// History lists every record, newest first.
func (c *Client) History(ctx context.Context) ([]analyses.RecordView, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/resumes", nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusServiceUnavailable {
		return nil, fmt.Errorf("%w: %w", ErrHistoryUnavailable, decodeAPIError(resp))
	}
	if resp.StatusCode != http.StatusOK {
		return nil, decodeAPIError(resp)
	}
	var out []analyses.RecordView
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode history: %w", err)
	}
	return out, nil
}

// Get fetches one record.
func (c *Client) Get(ctx context.Context, id string) (analyses.RecordView, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/resumes/"+url.PathEscape(id), nil)
	if err != nil {
		return analyses.RecordView{}, err
	}
	resp, err := c.do(req)
	if err != nil {
		return analyses.RecordView{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return analyses.RecordView{}, decodeAPIError(resp)
	}
	var out analyses.RecordView
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return analyses.RecordView{}, fmt.Errorf("decode record: %w", err)
	}
	return out, nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+apiPrefix+path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if c.clientID != "" {
		req.Header.Set(clientIDHeader, c.clientID)
	}
	return req, nil
}

func (c *Client) do(req *http.Request) (*http.Response, error) {
	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Debug("api request failed", zap.String("method", req.Method), zap.String("url", req.URL.String()), zap.Error(err))
		return nil, err
	}
	c.logger.Debug("api request",
		zap.String("method", req.Method),
		zap.String("url", req.URL.String()),
		zap.Int("status", resp.StatusCode),
		zap.String("request_id", resp.Header.Get("X-Request-Id")),
		zap.Duration("duration", time.Since(start)),
	)
	return resp, nil
}

func decodeAPIError(resp *http.Response) error {
	var body struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	apiErr := &APIError{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
	if err := json.NewDecoder(resp.Body).Decode(&body); err == nil && body.Error.Code != "" {
		apiErr.Code = body.Error.Code
		apiErr.Message = body.Error.Message
	}
	return apiErr
}

func escapeQuotes(s string) string {
	return strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(s)
}
