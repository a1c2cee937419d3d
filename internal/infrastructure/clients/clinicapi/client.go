package clinicapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/zatekoja/clinicdesk/internal/infrastructure/observability"
	"github.com/zatekoja/clinicdesk/pkg/config"
	apperrors "github.com/zatekoja/clinicdesk/pkg/errors"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/time/rate"
)

// Client is the uniform request surface every resource adapter uses
type Client interface {
	Get(ctx context.Context, path string) (*Result, error)
	Post(ctx context.Context, path string, body interface{}) (*Result, error)
	Put(ctx context.Context, path string, body interface{}) (*Result, error)
	Patch(ctx context.Context, path string, body interface{}) (*Result, error)
	Delete(ctx context.Context, path string) (*Result, error)
}

// HTTPClient talks JSON to the clinic backend. It holds no state besides the
// session cookie jar.
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	metrics    *observability.Metrics
}

// Option customises an HTTPClient
type Option func(*HTTPClient)

// WithHTTPClient replaces the underlying *http.Client. A cookie jar is
// attached to a copy when the given client has none.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *HTTPClient) {
		if hc != nil {
			copied := *hc
			c.httpClient = &copied
		}
	}
}

// WithMetrics records request count and duration
func WithMetrics(m *observability.Metrics) Option {
	return func(c *HTTPClient) {
		c.metrics = m
	}
}

// WithRateLimit caps outgoing requests per second; rps <= 0 removes the cap.
func WithRateLimit(rps float64) Option {
	return func(c *HTTPClient) {
		if rps <= 0 {
			c.limiter = nil
			return
		}
		burst := int(rps)
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// NewClient creates a backend client. When cfg carries a session token it is
// seeded into the jar as the session cookie so every request is authenticated
// the same way.
func NewClient(cfg *config.APIConfig, opts ...Option) (*HTTPClient, error) {
	if cfg == nil || strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, apperrors.NewValidationError("clinic api base url is required")
	}
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil {
		return nil, apperrors.NewValidationError(fmt.Sprintf("invalid clinic api base url: %v", err))
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	c := &HTTPClient{
		baseURL:    base.String(),
		httpClient: &http.Client{Timeout: timeout},
	}
	WithRateLimit(cfg.RequestsPerSecond)(c)
	for _, opt := range opts {
		opt(c)
	}

	if c.httpClient.Jar == nil {
		jar, err := cookiejar.New(nil)
		if err != nil {
			return nil, apperrors.NewInternalError("create cookie jar", err)
		}
		c.httpClient.Jar = jar
	}
	if cfg.SessionToken != "" {
		name := cfg.SessionCookie
		if name == "" {
			name = "session"
		}
		c.httpClient.Jar.SetCookies(base, []*http.Cookie{{
			Name:  name,
			Value: cfg.SessionToken,
			Path:  "/",
		}})
	}

	return c, nil
}

// BaseURL returns the backend root every path is resolved against
func (c *HTTPClient) BaseURL() string {
	return c.baseURL
}

func (c *HTTPClient) Get(ctx context.Context, path string) (*Result, error) {
	return c.Do(ctx, http.MethodGet, path, nil)
}

func (c *HTTPClient) Post(ctx context.Context, path string, body interface{}) (*Result, error) {
	return c.Do(ctx, http.MethodPost, path, body)
}

func (c *HTTPClient) Put(ctx context.Context, path string, body interface{}) (*Result, error) {
	return c.Do(ctx, http.MethodPut, path, body)
}

func (c *HTTPClient) Patch(ctx context.Context, path string, body interface{}) (*Result, error) {
	return c.Do(ctx, http.MethodPatch, path, body)
}

func (c *HTTPClient) Delete(ctx context.Context, path string) (*Result, error) {
	return c.Do(ctx, http.MethodDelete, path, nil)
}

// Do sends one request. Failures are always *errors.AppError of type
// NETWORK, HTTP or PARSE.
func (c *HTTPClient) Do(ctx context.Context, method, path string, body interface{}) (*Result, error) {
	ctx, span := observability.StartSpan(ctx, "clinicapi."+method)
	defer span.End()
	span.SetAttributes(
		attribute.String("http.method", method),
		attribute.String("http.route", path),
	)

	logger := observability.LoggerFromContext(ctx)
	endpoint := c.baseURL + "/" + strings.TrimLeft(path, "/")

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, apperrors.NewInternalError(fmt.Sprintf("encode %s %s body", method, path), err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, apperrors.NewNetworkError(fmt.Sprintf("build %s %s", method, path), err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			observability.RecordError(span, err)
			return nil, apperrors.NewNetworkError(fmt.Sprintf("%s %s", method, path), err)
		}
	}

	started := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		observability.RecordError(span, err)
		logger.Debug().Err(err).Str("method", method).Str("path", path).Msg("clinic api request failed")
		return nil, apperrors.NewNetworkError(fmt.Sprintf("%s %s", method, path), err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	elapsed := time.Since(started)
	observability.RecordRequestMetric(ctx, c.metrics, method, path, resp.StatusCode, elapsed)
	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))
	if err != nil {
		observability.RecordError(span, err)
		return nil, apperrors.NewNetworkError(fmt.Sprintf("read %s %s response", method, path), err)
	}

	logger.Debug().
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("duration", elapsed).
		Msg("clinic api request")

	result := &Result{
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        raw,
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		appErr := apperrors.NewHTTPError(resp.StatusCode, errorMessage(result, resp.Status))
		observability.RecordError(span, appErr)
		return nil, appErr
	}

	if result.IsJSON() && len(bytes.TrimSpace(raw)) > 0 && !json.Valid(raw) {
		appErr := apperrors.NewParseError(fmt.Sprintf("%s %s returned malformed JSON", method, path), nil)
		observability.RecordError(span, appErr)
		return nil, appErr
	}

	return result, nil
}

// errorMessage prefers the server's JSON "message" (then "error") over the status text.
func errorMessage(result *Result, status string) string {
	if result.IsJSON() {
		var body struct {
			Message string `json:"message"`
			Error   string `json:"error"`
		}
		if err := json.Unmarshal(result.Body, &body); err == nil {
			if strings.TrimSpace(body.Message) != "" {
				return body.Message
			}
			if strings.TrimSpace(body.Error) != "" {
				return body.Error
			}
		}
	}
	if text := http.StatusText(result.StatusCode); text != "" {
		return text
	}
	return status
}

// Result is a successful (2xx) backend response
type Result struct {
	StatusCode  int
	ContentType string
	Body        []byte
}

// IsJSON reports whether the response declared a JSON content type
func (r *Result) IsJSON() bool {
	if r == nil || r.ContentType == "" {
		return false
	}
	mediaType, _, err := mime.ParseMediaType(r.ContentType)
	if err != nil {
		return false
	}
	return mediaType == "application/json" || strings.HasSuffix(mediaType, "+json")
}

// IsEmpty reports a response with no body, such as 204 No Content
func (r *Result) IsEmpty() bool {
	return r == nil || len(bytes.TrimSpace(r.Body)) == 0
}

// Text returns the raw response body
func (r *Result) Text() string {
	if r == nil {
		return ""
	}
	return string(r.Body)
}

// Value returns the parsed JSON body for JSON responses and the raw text otherwise.
func (r *Result) Value() (interface{}, error) {
	if !r.IsJSON() {
		return r.Text(), nil
	}
	if r.IsEmpty() {
		return nil, nil
	}
	var v interface{}
	if err := json.Unmarshal(r.Body, &v); err != nil {
		return nil, apperrors.NewParseError("decode response body", err)
	}
	return v, nil
}

// Decode unmarshals a JSON body into out. Empty bodies leave out untouched.
func (r *Result) Decode(out interface{}) error {
	if r.IsEmpty() {
		return nil
	}
	if !r.IsJSON() {
		return apperrors.NewParseError(fmt.Sprintf("expected JSON response, got %q", r.ContentType), nil)
	}
	if err := json.Unmarshal(r.Body, out); err != nil {
		return apperrors.NewParseError("decode response body", err)
	}
	return nil
}
