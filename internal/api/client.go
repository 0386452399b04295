package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"

	"github.com/noah-isme/codemission/internal/observability"
	"github.com/noah-isme/codemission/internal/session"
)

// DefaultTimeout applies to every request without its own timeout.
const DefaultTimeout = 60 * time.Second

const maxResponseBytes = 32 << 20

// Options configures a Client.
type Options struct {
	BaseURL   string
	Timeout   time.Duration
	Session   *session.Session
	HTTP      *http.Client
	Logger    zerolog.Logger
	Debug     bool
	RateLimit float64
	UserAgent string
	// OnUnauthorized runs after a 401 cleared the session.
	OnUnauthorized func()
}

// Client issues requests against the analysis backend and normalises every outcome into an Envelope.
type Client struct {
	baseURL        string
	timeout        time.Duration
	session        *session.Session
	http           *http.Client
	logger         zerolog.Logger
	debug          bool
	limiter        *rate.Limiter
	userAgent      string
	tracer         trace.Tracer
	onUnauthorized func()

	headersMu sync.RWMutex
	headers   map[string]string
}

// Request describes one call. Path is relative to the base URL; Route is the templated path used
// for metrics and defaults to Path.
type Request struct {
	Method  string
	Path    string
	Route   string
	Query   url.Values
	Body    any
	Header  http.Header
	Timeout time.Duration
	// Raw decodes the whole body as the payload even when it carries a success key.
	Raw bool

	body          io.Reader
	contentType   string
	contentLength int64
}

// NewClient validates opts and builds a Client.
func NewClient(opts Options) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	parsed, err := url.Parse(base)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("invalid api base url %q", opts.BaseURL)
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	httpClient := opts.HTTP
	if httpClient == nil {
		httpClient = &http.Client{}
	}

	sess := opts.Session
	if sess == nil {
		sess = session.New(session.NewMemoryStore(), 0)
	}

	var limiter *rate.Limiter
	if opts.RateLimit > 0 {
		burst := int(opts.RateLimit)
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), burst)
	}

	userAgent := opts.UserAgent
	if userAgent == "" {
		userAgent = "codemission-cli"
	}

	return &Client{
		baseURL:        base,
		timeout:        timeout,
		session:        sess,
		http:           httpClient,
		logger:         opts.Logger.With().Str("component", "api_client").Logger(),
		debug:          opts.Debug,
		limiter:        limiter,
		userAgent:      userAgent,
		tracer:         otel.Tracer("github.com/noah-isme/codemission/internal/api"),
		onUnauthorized: opts.OnUnauthorized,
		headers: map[string]string{
			"Content-Type": "application/json",
			"Accept":       "application/json",
		},
	}, nil
}

// BaseURL returns the configured backend root.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Session returns the session the client authenticates with.
func (c *Client) Session() *session.Session {
	return c.session
}

// GoogleAuthURL is where the browser is sent to start the Google OAuth flow.
func (c *Client) GoogleAuthURL() string {
	return c.baseURL + "/auth/google"
}

// SetDefaultHeader sets a header sent with every request.
func (c *Client) SetDefaultHeader(key, value string) {
	c.headersMu.Lock()
	defer c.headersMu.Unlock()
	c.headers[key] = value
}

// Send performs req and decodes the payload into T.
func Send[T any](ctx context.Context, c *Client, req Request) Envelope[T] {
	body, err := c.do(ctx, req)
	if err != nil {
		return Fail[T](err)
	}
	return decodeEnvelope[T](body, req.Raw)
}

// Get issues a GET request.
func Get[T any](ctx context.Context, c *Client, path string, query url.Values) Envelope[T] {
	return Send[T](ctx, c, Request{Method: http.MethodGet, Path: path, Query: query})
}

// Post issues a POST request with a JSON body.
func Post[T any](ctx context.Context, c *Client, path string, body any) Envelope[T] {
	return Send[T](ctx, c, Request{Method: http.MethodPost, Path: path, Body: body})
}

// Put issues a PUT request with a JSON body.
func Put[T any](ctx context.Context, c *Client, path string, body any) Envelope[T] {
	return Send[T](ctx, c, Request{Method: http.MethodPut, Path: path, Body: body})
}

// Patch issues a PATCH request with a JSON body.
func Patch[T any](ctx context.Context, c *Client, path string, body any) Envelope[T] {
	return Send[T](ctx, c, Request{Method: http.MethodPatch, Path: path, Body: body})
}

// Delete issues a DELETE request.
func Delete[T any](ctx context.Context, c *Client, path string) Envelope[T] {
	return Send[T](ctx, c, Request{Method: http.MethodDelete, Path: path})
}

func (c *Client) do(ctx context.Context, req Request) ([]byte, error) {
	if req.Method == "" {
		req.Method = http.MethodGet
	}
	route := req.Route
	if route == "" {
		route = req.Path
	}

	timeout := req.Timeout
	if timeout <= 0 {
		timeout = c.timeout
	}

	ctx, span := c.tracer.Start(ctx, "api."+strings.ToLower(req.Method))
	defer span.End()
	span.SetAttributes(
		attribute.String("http.method", req.Method),
		attribute.String("http.route", route),
	)

	fail := func(apiErr *Error) ([]byte, error) {
		apiErr.Route = route
		span.RecordError(apiErr)
		span.SetStatus(codes.Error, apiErr.Message)
		return nil, apiErr
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return fail(contextError(ctx, err, timeout))
		}
	}

	endpoint, err := c.buildURL(req.Path, req.Query)
	if err != nil {
		return fail(&Error{Kind: KindValidation, Message: "Invalid request path.", Err: err})
	}

	bodyReader := req.body
	contentType := req.contentType
	if bodyReader == nil && req.Body != nil {
		payload, err := json.Marshal(req.Body)
		if err != nil {
			return fail(&Error{Kind: KindValidation, Message: "Invalid request body.", Err: err})
		}
		bodyReader = bytes.NewReader(payload)
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, endpoint, bodyReader)
	if err != nil {
		return fail(&Error{Kind: KindValidation, Message: "Invalid request.", Err: err})
	}
	if req.contentLength > 0 {
		httpReq.ContentLength = req.contentLength
	}

	correlationID := correlationFor(ctx)
	c.applyHeaders(ctx, httpReq, req.Header, contentType, correlationID)

	start := time.Now()
	resp, err := c.http.Do(httpReq)
	latency := time.Since(start)
	if err != nil {
		observability.ClientRequests().WithLabelValues(req.Method, route, "none").Inc()
		c.logger.Warn().Err(err).Str("method", req.Method).Str("route", route).Str("correlation_id", correlationID).Msg("backend unreachable")
		return fail(contextError(ctx, err, timeout))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))

	status := resp.StatusCode
	observability.ClientRequests().WithLabelValues(req.Method, route, strconv.Itoa(status)).Inc()
	observability.ClientLatency().WithLabelValues(req.Method, route).Observe(latency.Seconds())
	span.SetAttributes(attribute.Int("http.status_code", status))

	if c.debug {
		c.logger.Debug().
			Str("method", req.Method).
			Str("url", endpoint).
			Int("status", status).
			Float64("latency_ms", float64(latency)/float64(time.Millisecond)).
			Int("response_bytes", len(body)).
			Str("correlation_id", correlationID).
			Msg("backend response")
	}

	if err != nil {
		return fail(contextError(ctx, err, timeout))
	}

	if status >= http.StatusBadRequest {
		apiErr := NewStatusError(status, backendMessage(body))
		if status == http.StatusUnauthorized {
			c.handleUnauthorized(ctx)
		}
		c.logger.Warn().Int("status", status).Str("route", route).Str("correlation_id", correlationID).Msg(apiErr.Message)
		return fail(apiErr)
	}

	return body, nil
}

func (c *Client) applyHeaders(ctx context.Context, httpReq *http.Request, extra http.Header, contentType, correlationID string) {
	c.headersMu.RLock()
	for key, value := range c.headers {
		httpReq.Header.Set(key, value)
	}
	c.headersMu.RUnlock()

	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}
	httpReq.Header.Set("User-Agent", c.userAgent)
	httpReq.Header.Set(CorrelationHeader, correlationID)

	if token, err := c.session.Token(ctx); err != nil {
		c.logger.Warn().Err(err).Msg("failed to read session token")
	} else if token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}

	for key, values := range extra {
		httpReq.Header.Del(key)
		for _, value := range values {
			httpReq.Header.Add(key, value)
		}
	}
}

func (c *Client) handleUnauthorized(ctx context.Context) {
	if err := c.session.Clear(context.WithoutCancel(ctx)); err != nil {
		c.logger.Warn().Err(err).Msg("failed to clear session after 401")
	}
	if c.onUnauthorized != nil {
		c.onUnauthorized()
	}
}

func (c *Client) buildURL(path string, query url.Values) (string, error) {
	path = strings.TrimSpace(path)
	if strings.Contains(path, "://") {
		return "", fmt.Errorf("path %q must be relative", path)
	}

	target, err := url.Parse(c.baseURL + "/" + strings.TrimLeft(path, "/"))
	if err != nil {
		return "", err
	}

	if len(query) > 0 {
		values := target.Query()
		for key, vals := range query {
			for _, value := range vals {
				values.Add(key, value)
			}
		}
		target.RawQuery = values.Encode()
	}

	return target.String(), nil
}

func contextError(ctx context.Context, err error, timeout time.Duration) *Error {
	switch {
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded):
		return timeoutError(timeout, err)
	case errors.Is(err, context.Canceled) || errors.Is(ctx.Err(), context.Canceled):
		return &Error{Kind: KindCanceled, Message: "Request canceled.", Err: err}
	default:
		return &Error{Kind: KindNetwork, Message: MessageConnectivity, Err: err}
	}
}

func timeoutError(timeout time.Duration, cause error) *Error {
	message := "Request timeout."
	if timeout > 0 {
		message = fmt.Sprintf("Request timeout after %dms", timeout.Milliseconds())
	}
	return &Error{Kind: KindTimeout, Message: message, Err: cause}
}
