package http

import (
	"net/http"
	"time"

	"github.com/fivetwenty-io/netbox-client/pkg/netbox"
	"github.com/hashicorp/go-retryablehttp"
)

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the logger used for debug output and warnings.
func WithLogger(logger netbox.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithDebug logs every request and response.
func WithDebug(debug bool) Option {
	return func(c *Client) {
		c.debug = debug
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(userAgent string) Option {
	return func(c *Client) {
		c.userAgent = userAgent
	}
}

// WithRetryConfig enables retries on connection errors, 429 and 5xx.
func WithRetryConfig(retryMax int, waitMin, waitMax time.Duration) Option {
	return func(c *Client) {
		c.httpClient.RetryMax = retryMax
		c.httpClient.RetryWaitMin = waitMin
		c.httpClient.RetryWaitMax = waitMax
		c.httpClient.CheckRetry = retryablehttp.DefaultRetryPolicy
	}
}

// WithTimeout sets the transport timeout. Zero leaves it unbounded.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if c.httpClient.HTTPClient != nil {
			c.httpClient.HTTPClient.Timeout = timeout
		}
	}
}

// WithHTTPClient replaces the underlying *http.Client. Redirects are never
// followed; a copy of httpClient is used so the caller's client is untouched.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			copied := *httpClient
			copied.CheckRedirect = stopRedirects
			c.httpClient.HTTPClient = &copied
		}
	}
}

// WithInterceptors runs chain around every call.
func WithInterceptors(chain *netbox.InterceptorChain) Option {
	return func(c *Client) {
		c.interceptors = chain
	}
}
