package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptrace"
	"net/textproto"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nao1215/mediclaim/internal/config"
	"github.com/nao1215/mediclaim/internal/model"
)

// Endpoint paths relative to the base URL.
const (
	AnalyzePath = "/analyze"
	HealthPath  = "/health"
)

// ErrResponseTooLarge is the cause when a response body exceeds the
// configured max_response_size.
var ErrResponseTooLarge = errors.New("response body exceeds the maximum size")

// RequestIDHeader carries a per-request UUID for correlating client and
// service logs.
const RequestIDHeader = "X-Request-ID"

// Client talks to the analysis service. One Submit is one HTTP exchange:
// there are no retries and nothing is cached.
type Client struct {
	baseURL         string
	httpClient      *http.Client
	maxResponseSize int64
	logger          *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the HTTP client built from the configuration.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// New creates a Client for cfg's base URL, timeout, proxy and headers.
func New(cfg *config.Config, opts ...Option) (*Client, error) {
	transport, err := newTransport(cfg.ProxyAddress)
	if err != nil {
		return nil, err
	}

	maxSize := cfg.MaxResponseSize
	if maxSize <= 0 {
		maxSize = config.DefaultMaxResponseSize
	}

	c := &Client{
		baseURL: cfg.NormalizedAPIURL(),
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
			Transport: &headerInjectingTransport{
				base:      transport,
				userAgent: cfg.UserAgent,
				headers:   cfg.Headers,
			},
		},
		maxResponseSize: maxSize,
		logger:          slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the normalized base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Submit uploads doc to POST {baseURL}/analyze and decodes the result.
//
// onSent, if non-nil, is called once after the request has been fully
// written, from the transport's goroutine. Every failure is returned as an
// *model.AnalysisError.
func (c *Client) Submit(ctx context.Context, doc *model.Document, onSent func()) (*model.AnalysisResult, error) {
	body, contentType, err := encodeMultipart(doc)
	if err != nil {
		return nil, model.NewServiceRejectedUnknown(0, err)
	}

	var once sync.Once
	trace := &httptrace.ClientTrace{
		WroteRequest: func(info httptrace.WroteRequestInfo) {
			if info.Err == nil && onSent != nil {
				once.Do(onSent)
			}
		},
	}

	req, err := http.NewRequestWithContext(httptrace.WithClientTrace(ctx, trace), http.MethodPost, c.baseURL+AnalyzePath, body)
	if err != nil {
		return nil, model.NewServiceRejectedUnknown(0, err)
	}
	requestID := uuid.NewString()
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")
	req.Header.Set(RequestIDHeader, requestID)

	c.logger.Debug("submitting document",
		"request_id", requestID,
		"url", req.URL.String(),
		"document", doc.Name,
		"media_type", string(doc.MediaType),
		"size", doc.Size,
	)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug("analysis request failed", "request_id", requestID, "error", err)
		return nil, model.NewNetworkUnreachable(err)
	}
	defer resp.Body.Close()

	data, err := c.readBody(resp.Body)
	if err != nil {
		return nil, model.NewServiceRejectedUnknown(resp.StatusCode, err)
	}

	c.logger.Debug("analysis response received",
		"request_id", requestID,
		"status", resp.StatusCode,
		"bytes", len(data),
		"elapsed", time.Since(start),
	)

	if !isSuccess(resp.StatusCode) {
		detail := extractDetail(data)
		if detail == "" {
			if title := htmlErrorTitle(resp.Header.Get("Content-Type"), data); title != "" {
				c.logger.Warn("service answered with an HTML error page",
					"request_id", requestID,
					"status", resp.StatusCode,
					"title", title,
				)
			}
		}
		return nil, model.NewServiceRejected(resp.StatusCode, detail)
	}

	result, err := model.FromResponse(data)
	if err != nil {
		return nil, model.NewServiceRejectedUnknown(resp.StatusCode, err)
	}
	return result, nil
}

// HealthStatus is the body of GET /health.
type HealthStatus struct {
	Status  string `json:"status"`
	Service string `json:"service"`

	// Latency is the round-trip time measured by the client.
	Latency time.Duration `json:"-"`
}

// Healthy reports whether the service described itself as healthy.
func (h HealthStatus) Healthy() bool {
	return strings.EqualFold(h.Status, "healthy") || strings.EqualFold(h.Status, "ok")
}

// Health calls GET {baseURL}/health. Failures are classified like Submit's.
func (c *Client) Health(ctx context.Context) (HealthStatus, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+HealthPath, nil)
	if err != nil {
		return HealthStatus{}, model.NewServiceRejectedUnknown(0, err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return HealthStatus{}, model.NewNetworkUnreachable(err)
	}
	defer resp.Body.Close()

	data, err := c.readBody(resp.Body)
	if err != nil {
		return HealthStatus{}, model.NewServiceRejectedUnknown(resp.StatusCode, err)
	}
	if !isSuccess(resp.StatusCode) {
		return HealthStatus{}, model.NewServiceRejected(resp.StatusCode, extractDetail(data))
	}

	var status HealthStatus
	if err := json.Unmarshal(data, &status); err != nil {
		return HealthStatus{}, model.NewServiceRejectedUnknown(resp.StatusCode, fmt.Errorf("%w: %w", model.ErrMalformedResponse, err))
	}
	status.Latency = time.Since(start)
	return status, nil
}

// readBody reads at most maxResponseSize bytes and fails with
// ErrResponseTooLarge instead of truncating.
func (c *Client) readBody(body io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(body, c.maxResponseSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if int64(len(data)) > c.maxResponseSize {
		return nil, fmt.Errorf("%w (%d bytes)", ErrResponseTooLarge, c.maxResponseSize)
	}
	return data, nil
}

func isSuccess(code int) bool {
	return code >= 200 && code < 300
}

// extractDetail returns the "detail" string of a JSON error body, or "".
// FastAPI validation errors carry a list there; those yield "".
func extractDetail(data []byte) string {
	var body struct {
		Detail any `json:"detail"`
	}
	if err := json.Unmarshal(data, &body); err != nil {
		return ""
	}
	s, ok := body.Detail.(string)
	if !ok || strings.TrimSpace(s) == "" {
		return ""
	}
	return s
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// encodeMultipart writes doc as the single "file" part of a form body,
// labeled with the declared media type.
func encodeMultipart(doc *model.Document) (*bytes.Buffer, string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, quoteEscaper.Replace(doc.Name)))
	h.Set("Content-Type", string(doc.MediaType))

	part, err := mw.CreatePart(h)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create multipart part: %w", err)
	}
	if _, err := part.Write(doc.Content); err != nil {
		return nil, "", fmt.Errorf("failed to write multipart part: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to close multipart body: %w", err)
	}
	return &buf, mw.FormDataContentType(), nil
}
