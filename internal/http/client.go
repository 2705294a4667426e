package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/pushtolive/ptl/internal/auth"
	"github.com/pushtolive/ptl/internal/constants"
	"github.com/pushtolive/ptl/pkg/ptl"
)

// Logger is the logging surface used for debug output.
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}

// Client is a thin request/response wrapper over retryablehttp that attaches
// the PushToLive key headers to every request.
type Client struct {
	baseURL    *url.URL
	httpClient *retryablehttp.Client
	keys       auth.KeyManager
	logger     Logger
	debug      bool
	userAgent  string
}

// Option configures a Client.
type Option func(*Client)

// Request describes one API call. Path is resolved against the base URL.
type Request struct {
	Method  string
	Path    string
	Query   url.Values
	Body    interface{}
	Headers map[string]string
}

// Response is a fully read API response.
type Response struct {
	StatusCode int
	Body       []byte
	Headers    http.Header
}

type noRetryKey struct{}

// NewClient creates a client for baseURL. keys may be nil for
// unauthenticated requests. An unparsable baseURL surfaces on the first call.
func NewClient(baseURL string, keys auth.KeyManager, opts ...Option) *Client {
	retryClient := retryablehttp.NewClient()
	retryClient.Logger = nil
	retryClient.RetryMax = 0
	retryClient.RetryWaitMin = constants.DefaultRetryWaitMin
	retryClient.RetryWaitMax = constants.DefaultRetryWaitMax
	retryClient.CheckRetry = idempotentRetryPolicy
	retryClient.ErrorHandler = retryablehttp.PassthroughErrorHandler
	retryClient.HTTPClient.Timeout = constants.DefaultHTTPTimeout

	client := &Client{
		baseURL:    parseBaseURL(baseURL),
		httpClient: retryClient,
		keys:       keys,
		userAgent:  constants.DefaultUserAgent,
	}

	for _, opt := range opts {
		opt(client)
	}

	return client
}

// WithLogger sets the logger.
func WithLogger(logger Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithDebug enables request/response logging.
func WithDebug(debug bool) Option {
	return func(c *Client) {
		c.debug = debug
	}
}

// WithRetryConfig enables retries of idempotent requests.
func WithRetryConfig(retryMax int, waitMin, waitMax time.Duration) Option {
	return func(c *Client) {
		c.httpClient.RetryMax = retryMax
		c.httpClient.RetryWaitMin = waitMin
		c.httpClient.RetryWaitMax = waitMax
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(userAgent string) Option {
	return func(c *Client) {
		c.userAgent = userAgent
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.HTTPClient.Timeout = timeout
	}
}

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient.HTTPClient = httpClient
	}
}

// Do executes req. A non-2xx status returns both the response and a
// *ptl.APIError.
func (c *Client) Do(ctx context.Context, req *Request) (*Response, error) {
	if c.baseURL == nil {
		return nil, ptl.ErrEndpointRequired
	}

	ref, err := url.Parse(req.Path)
	if err != nil {
		return nil, fmt.Errorf("parsing request path %q: %w", req.Path, err)
	}

	ref.RawQuery = req.Query.Encode()
	target := c.baseURL.ResolveReference(ref)

	body, contentType, err := encodeBody(req.Body)
	if err != nil {
		return nil, err
	}

	if !isIdempotent(req.Method) {
		ctx = context.WithValue(ctx, noRetryKey{}, true)
	}

	var rawBody interface{}
	if len(body) > 0 {
		rawBody = body
	}

	httpReq, err := retryablehttp.NewRequestWithContext(ctx, req.Method, target.String(), rawBody)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	httpReq.Header.Set("Accept", constants.ContentTypeJSON)
	httpReq.Header.Set("User-Agent", c.userAgent)

	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}

	for key, value := range req.Headers {
		httpReq.Header.Set(key, value)
	}

	if c.keys != nil {
		keys, err := c.keys.Keys(ctx)
		if err != nil {
			return nil, fmt.Errorf("loading credentials: %w", err)
		}

		httpReq.Header.Set(constants.HeaderAccessKey, keys.AccessKey)
		httpReq.Header.Set(constants.HeaderSecretKey, keys.SecretKey)
	}

	if c.debug && c.logger != nil {
		c.logger.Debug("HTTP Request", map[string]interface{}{
			"method": req.Method,
			"url":    target.String(),
			"bytes":  len(body),
		})
	}

	start := time.Now()

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", req.Method, req.Path, err)
	}
	defer func() { _ = httpResp.Body.Close() }()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	resp := &Response{
		StatusCode: httpResp.StatusCode,
		Body:       respBody,
		Headers:    httpResp.Header,
	}

	if c.debug && c.logger != nil {
		c.logger.Debug("HTTP Response", map[string]interface{}{
			"status":   httpResp.StatusCode,
			"duration": time.Since(start).String(),
			"body":     truncate(string(respBody), 512),
		})
	}

	if httpResp.StatusCode >= http.StatusBadRequest {
		return resp, &ptl.APIError{
			StatusCode: httpResp.StatusCode,
			Method:     req.Method,
			Path:       req.Path,
			Body:       string(respBody),
		}
	}

	return resp, nil
}

// Get performs a GET request.
func (c *Client) Get(ctx context.Context, path string, query url.Values) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodGet, Path: path, Query: query})
}

// Post performs a POST request with a JSON body.
func (c *Client) Post(ctx context.Context, path string, body interface{}) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodPost, Path: path, Body: body})
}

// Put performs a PUT request with a JSON body.
func (c *Client) Put(ctx context.Context, path string, body interface{}) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodPut, Path: path, Body: body})
}

// PutRaw performs a PUT request with a pre-encoded body.
func (c *Client) PutRaw(ctx context.Context, path string, body []byte, contentType string) (*Response, error) {
	return c.Do(ctx, &Request{
		Method:  http.MethodPut,
		Path:    path,
		Body:    body,
		Headers: map[string]string{"Content-Type": contentType},
	})
}

// Delete performs a DELETE request.
func (c *Client) Delete(ctx context.Context, path string) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodDelete, Path: path})
}

func parseBaseURL(raw string) *url.URL {
	if raw == "" {
		return nil
	}

	if !strings.HasSuffix(raw, "/") {
		raw += "/"
	}

	parsed, err := url.Parse(raw)
	if err != nil || parsed.Host == "" {
		return nil
	}

	return parsed
}

func encodeBody(body interface{}) ([]byte, string, error) {
	switch value := body.(type) {
	case nil:
		return nil, "", nil
	case []byte:
		return value, "", nil
	case string:
		return []byte(value), "", nil
	default:
		var buf bytes.Buffer

		if err := json.NewEncoder(&buf).Encode(value); err != nil {
			return nil, "", fmt.Errorf("encoding request body: %w", err)
		}

		return buf.Bytes(), constants.ContentTypeJSON, nil
	}
}

func isIdempotent(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodDelete, http.MethodOptions:
		return true
	default:
		return false
	}
}

// idempotentRetryPolicy defers to the default policy, except that requests
// flagged non-idempotent are never retried.
func idempotentRetryPolicy(ctx context.Context, resp *http.Response, err error) (bool, error) {
	if noRetry, _ := ctx.Value(noRetryKey{}).(bool); noRetry {
		if ctx.Err() != nil {
			return false, ctx.Err()
		}

		return false, nil
	}

	return retryablehttp.DefaultRetryPolicy(ctx, resp, err)
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}

	return s[:limit] + "..."
}
