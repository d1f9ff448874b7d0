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

	"github.com/fivetwenty-io/netbox-client/internal/auth"
	"github.com/fivetwenty-io/netbox-client/internal/constants"
	"github.com/fivetwenty-io/netbox-client/pkg/netbox"
	"github.com/hashicorp/go-retryablehttp"
)

// DefaultUserAgent is sent unless WithUserAgent overrides it.
const DefaultUserAgent = "netbox-client-go"

// Client is the transport every NetBox call goes through.
type Client struct {
	baseURL      string
	httpClient   *retryablehttp.Client
	tokenManager auth.TokenManager
	logger       netbox.Logger
	debug        bool
	userAgent    string
	interceptors *netbox.InterceptorChain
}

// Request describes one HTTP call relative to the base URL.
type Request struct {
	Method  string
	Path    string
	Query   url.Values
	Body    interface{}
	Headers map[string]string
}

// Response is a fully read HTTP response.
type Response struct {
	StatusCode  int
	Status      string
	Method      string
	URL         string
	Headers     http.Header
	RequestBody []byte
	Body        []byte
}

// API converts the response into the public netbox.Response.
func (r *Response) API() *netbox.Response {
	if r == nil {
		return nil
	}

	return &netbox.Response{
		StatusCode:  r.StatusCode,
		Status:      r.Status,
		Method:      r.Method,
		URL:         r.URL,
		Headers:     r.Headers,
		RequestBody: r.RequestBody,
		Body:        r.Body,
	}
}

// NewClient creates a transport for baseURL. tokenManager may be nil, in
// which case no Authorization header is sent. Retries are disabled unless
// WithRetryConfig is given.
func NewClient(baseURL string, tokenManager auth.TokenManager, opts ...Option) *Client {
	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = 0
	retryClient.Logger = nil
	retryClient.ErrorHandler = retryablehttp.PassthroughErrorHandler
	retryClient.HTTPClient.CheckRedirect = stopRedirects

	client := &Client{
		baseURL:      strings.TrimRight(baseURL, "/"),
		httpClient:   retryClient,
		tokenManager: tokenManager,
		logger:       netbox.NopLogger{},
		userAgent:    DefaultUserAgent,
	}

	for _, opt := range opts {
		opt(client)
	}

	return client
}

// stopRedirects hands 3xx responses back to the classifier instead of
// following them.
func stopRedirects(*http.Request, []*http.Request) error {
	return http.ErrUseLastResponse
}

// BaseURL returns the root every path is resolved against.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Do sends req. Non-2xx responses come back together with the error the
// classifier produced for them.
func (c *Client) Do(ctx context.Context, req *Request) (*Response, error) {
	fullURL, err := c.buildURL(req.Path, req.Query)
	if err != nil {
		return nil, err
	}

	body, err := encodeBody(req.Body)
	if err != nil {
		return nil, err
	}

	intercepted := &netbox.HTTPRequest{
		Method:  req.Method,
		Path:    req.Path,
		Headers: c.headers(req),
		Body:    body,
	}

	err = c.applyToken(ctx, intercepted.Headers)
	if err != nil {
		return nil, err
	}

	if c.interceptors != nil {
		err = c.interceptors.ExecuteRequestInterceptors(ctx, intercepted)
		if err != nil {
			return nil, err
		}
	}

	var bodyArg interface{}
	if intercepted.Body != nil {
		bodyArg = intercepted.Body
	}

	httpReq, err := retryablehttp.NewRequestWithContext(ctx, req.Method, fullURL, bodyArg)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	for key, values := range intercepted.Headers {
		for _, value := range values {
			httpReq.Header.Add(key, value)
		}
	}

	if c.debug {
		c.logger.Debug("HTTP Request", map[string]interface{}{
			"method": req.Method,
			"url":    fullURL,
		})
	}

	start := time.Now()

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		transportErr := &netbox.TransportError{Method: req.Method, URL: fullURL, Err: err}
		c.runResponseInterceptors(ctx, intercepted, &netbox.HTTPResponse{Error: transportErr})

		return nil, transportErr
	}

	defer func() { _ = httpResp.Body.Close() }()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, &netbox.TransportError{Method: req.Method, URL: fullURL, Err: fmt.Errorf("failed to read response body: %w", err)}
	}

	resp := &Response{
		StatusCode:  httpResp.StatusCode,
		Status:      httpResp.Status,
		Method:      req.Method,
		URL:         fullURL,
		Headers:     httpResp.Header,
		RequestBody: body,
		Body:        respBody,
	}

	if c.debug {
		c.logger.Debug("HTTP Response", map[string]interface{}{
			"method":   req.Method,
			"url":      fullURL,
			"status":   resp.StatusCode,
			"duration": time.Since(start).String(),
		})
	}

	classified := Classify(resp)

	if c.interceptors != nil {
		err = c.interceptors.ExecuteResponseInterceptors(ctx, intercepted, &netbox.HTTPResponse{
			StatusCode: resp.StatusCode,
			Headers:    resp.Headers,
			Body:       resp.Body,
			Error:      classified,
		})
		if err != nil {
			return resp, err
		}
	}

	return resp, classified
}

func (c *Client) runResponseInterceptors(ctx context.Context, req *netbox.HTTPRequest, resp *netbox.HTTPResponse) {
	if c.interceptors == nil {
		return
	}

	err := c.interceptors.ExecuteResponseInterceptors(ctx, req, resp)
	if err != nil {
		c.logger.Warn("response interceptor failed", map[string]interface{}{"error": err.Error()})
	}
}

func (c *Client) headers(req *Request) http.Header {
	headers := make(http.Header)
	headers.Set("Accept", "application/json")
	headers.Set("User-Agent", c.userAgent)
	headers.Set("Content-Type", "application/json")

	for key, value := range req.Headers {
		headers.Set(key, value)
	}

	return headers
}

func (c *Client) applyToken(ctx context.Context, headers http.Header) error {
	if c.tokenManager == nil {
		return nil
	}

	token, err := c.tokenManager.GetToken(ctx)
	if err != nil {
		return fmt.Errorf("failed to get token: %w", err)
	}

	if token != "" {
		headers.Set("Authorization", constants.TokenScheme+" "+token)
	}

	return nil
}

func (c *Client) buildURL(path string, query url.Values) (string, error) {
	raw := path
	if !strings.HasPrefix(path, "http://") && !strings.HasPrefix(path, "https://") {
		raw = c.baseURL + path
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("invalid request URL %q: %w", raw, err)
	}

	if len(query) > 0 {
		merged := parsed.Query()
		for key, values := range query {
			for _, value := range values {
				merged.Add(key, value)
			}
		}

		parsed.RawQuery = merged.Encode()
	}

	return parsed.String(), nil
}

func encodeBody(body interface{}) ([]byte, error) {
	switch typed := body.(type) {
	case nil:
		return nil, nil
	case []byte:
		return typed, nil
	case io.Reader:
		var buf bytes.Buffer

		_, err := buf.ReadFrom(typed)
		if err != nil {
			return nil, fmt.Errorf("failed to read request body: %w", err)
		}

		return buf.Bytes(), nil
	default:
		data, err := json.Marshal(typed)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}

		return data, nil
	}
}

// Get performs a GET request.
func (c *Client) Get(ctx context.Context, path string, query url.Values) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodGet, Path: path, Query: query})
}

// Post performs a POST request.
func (c *Client) Post(ctx context.Context, path string, body interface{}) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodPost, Path: path, Body: body})
}

// Put performs a PUT request.
func (c *Client) Put(ctx context.Context, path string, body interface{}) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodPut, Path: path, Body: body})
}

// Patch performs a PATCH request.
func (c *Client) Patch(ctx context.Context, path string, body interface{}) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodPatch, Path: path, Body: body})
}

// Delete performs a DELETE request.
func (c *Client) Delete(ctx context.Context, path string) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodDelete, Path: path})
}

// Close releases idle connections.
func (c *Client) Close() {
	if c.httpClient.HTTPClient != nil {
		c.httpClient.HTTPClient.CloseIdleConnections()
	}
}
