package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
	"time"

	"github.com/pithecene-io/docqa/iox"
	"github.com/pithecene-io/docqa/types"
)

// DefaultBaseURL is the backend address used when none is configured.
const DefaultBaseURL = "http://localhost:8000"

// DefaultTimeout is the default per-request timeout.
// Indexing a large document on the backend can take minutes.
const DefaultTimeout = 5 * time.Minute

// maxErrorBody caps how much of a failure body is read for the detail.
const maxErrorBody = 64 << 10

// Config configures the HTTP gateway.
type Config struct {
	// BaseURL is the backend root, e.g. http://localhost:8000 (default DefaultBaseURL).
	BaseURL string
	// Headers are custom HTTP headers added to each request.
	Headers map[string]string
	// Timeout is the per-request timeout (default DefaultTimeout).
	Timeout time.Duration
}

// Client talks to the backend over its HTTP JSON API.
type Client struct {
	config Config
	base   *url.URL
	client *http.Client
}

// New creates an HTTP gateway from the given config.
// Returns an error if the base URL is not an absolute http(s) URL.
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("gateway: invalid base URL: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("gateway: base URL must be http or https, got %q", cfg.BaseURL)
	}
	if base.Host == "" {
		return nil, fmt.Errorf("gateway: base URL has no host: %q", cfg.BaseURL)
	}

	return &Client{
		config: cfg,
		base:   base,
		client: &http.Client{Timeout: cfg.Timeout},
	}, nil
}

// BaseURL returns the configured backend root.
func (c *Client) BaseURL() string {
	return c.base.String()
}

// Upload sends the file as multipart form field "file".
// The body is streamed; the request is not retried.
func (c *Client) Upload(ctx context.Context, req UploadRequest) (*UploadResult, error) {
	if req.Name == "" {
		return nil, errors.New("gateway: upload requires a file name")
	}
	if req.Content == nil {
		return nil, errors.New("gateway: upload requires content")
	}

	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)
	done := make(chan struct{})
	go func() {
		defer close(done)
		pw.CloseWithError(writeFilePart(mw, req))
	}()
	// The transport may never own pr, e.g. when the request cannot be built.
	// Closing it unblocks the writer, which must exit before Upload returns.
	defer func() {
		_ = pr.Close()
		<-done
	}()

	var out UploadResult
	if err := c.do(ctx, OpUpload, http.MethodPost, "/upload", pr, mw.FormDataContentType(), &out); err != nil {
		return nil, err
	}
	if out.Status != StatusSuccess {
		return nil, unsuccessful(OpUpload, out.Status)
	}
	return &out, nil
}

// Index asks the backend to index the most recently uploaded document.
func (c *Client) Index(ctx context.Context) (*IndexResult, error) {
	var out IndexResult
	if err := c.do(ctx, OpIndex, http.MethodPost, "/index", nil, "", &out); err != nil {
		return nil, err
	}
	if out.Status != StatusSuccess {
		return nil, unsuccessful(OpIndex, out.Status)
	}
	return &out, nil
}

// Ask sends the question as JSON {"question": ...}.
func (c *Client) Ask(ctx context.Context, question string) (*AskResult, error) {
	body, err := json.Marshal(map[string]string{"question": question})
	if err != nil {
		return nil, fmt.Errorf("gateway: marshal question: %w", err)
	}

	var out AskResult
	if err := c.do(ctx, OpAsk, http.MethodPost, "/ask", bytes.NewReader(body), "application/json", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Clear deletes every uploaded file and the index. Any 2xx is success;
// the response body is ignored.
func (c *Client) Clear(ctx context.Context) error {
	return c.do(ctx, OpClear, http.MethodDelete, "/delete", nil, "", nil)
}

// Health reports the backend's health payload.
func (c *Client) Health(ctx context.Context) (*HealthStatus, error) {
	var out HealthStatus
	if err := c.do(ctx, OpHealth, http.MethodGet, "/health", nil, "", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Close releases idle connections.
func (c *Client) Close() error {
	c.client.CloseIdleConnections()
	return nil
}

// do performs a single request. A nil out skips body decoding.
func (c *Client) do(ctx context.Context, op, method, path string, body io.Reader, contentType string, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.base.String()+path, body)
	if err != nil {
		return NewTransportError(op, fmt.Errorf("create request: %w", err))
	}

	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "docqa/"+types.Version)
	for k, v := range c.config.Headers {
		req.Header.Set(k, v)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return NewTransportError(op, err)
	}
	defer iox.DrainClose(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return serverError(op, resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return NewDecodeError(op, resp.StatusCode, err)
	}
	return nil
}

// errorBody is the failure payload. FastAPI sends detail as a string for
// HTTPException and as a list for validation errors.
type errorBody struct {
	Detail json.RawMessage `json:"detail"`
	Code   string          `json:"code"`
}

func serverError(op string, resp *http.Response) *Error {
	statusText := http.StatusText(resp.StatusCode)

	raw, err := iox.ReadCapped(resp.Body, maxErrorBody)
	if err != nil || len(raw) == 0 {
		return NewServerError(op, resp.StatusCode, statusText, "", "")
	}

	var eb errorBody
	if err := json.Unmarshal(raw, &eb); err != nil {
		return NewServerError(op, resp.StatusCode, statusText, "", "")
	}
	return NewServerError(op, resp.StatusCode, statusText, detailText(eb.Detail), eb.Code)
}

func detailText(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return string(raw)
	}
	return buf.String()
}

func unsuccessful(op, status string) *Error {
	return NewServerError(op, http.StatusOK, http.StatusText(http.StatusOK),
		fmt.Sprintf("%s returned status %q", op, status), "")
}

func writeFilePart(mw *multipart.Writer, req UploadRequest) error {
	contentType := req.MIMEType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", mime.FormatMediaType("form-data", map[string]string{
		"name":     "file",
		"filename": req.Name,
	}))
	h.Set("Content-Type", contentType)

	part, err := mw.CreatePart(h)
	if err != nil {
		return err
	}
	if _, err := io.Copy(part, req.Content); err != nil {
		return err
	}
	return mw.Close()
}

// Verify Client implements the gateway interfaces.
var (
	_ Gateway       = (*Client)(nil)
	_ HealthChecker = (*Client)(nil)
)
