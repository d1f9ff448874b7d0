package client

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fivetwenty-io/netbox-client/internal/auth"
	"github.com/fivetwenty-io/netbox-client/internal/constants"
	"github.com/fivetwenty-io/netbox-client/internal/http"
	"github.com/fivetwenty-io/netbox-client/pkg/netbox"
)

// Static errors for err113 compliance.
var (
	ErrURLRequired = errors.New("NetBox URL is required")
)

type Client struct {
	httpClient   *http.Client
	tokenManager auth.TokenManager
	baseURL      string
	logger       netbox.Logger

	mutex      sync.RWMutex
	endpoints  map[string]*netbox.Endpoint
	document   netbox.Value
	discovered bool
	closed     atomic.Bool
}

// createHTTPClientOptions builds HTTP client options from config.
func createHTTPClientOptions(config *netbox.Config) ([]http.Option, error) {
	var httpOpts []http.Option

	if config.Logger != nil {
		httpOpts = append(httpOpts, http.WithLogger(config.Logger))
	}

	if config.Debug {
		httpOpts = append(httpOpts, http.WithDebug(true))
	}

	if config.UserAgent != "" {
		httpOpts = append(httpOpts, http.WithUserAgent(config.UserAgent))
	}

	if config.Timeout > 0 {
		httpOpts = append(httpOpts, http.WithTimeout(config.Timeout))
	}

	if config.RetryMax > 0 {
		retryWaitMin := constants.DefaultRetryWaitMin
		retryWaitMax := constants.DefaultRetryWaitMax

		if config.RetryWaitMin > 0 {
			retryWaitMin = config.RetryWaitMin
		}

		if config.RetryWaitMax > 0 {
			retryWaitMax = config.RetryWaitMax
		}

		httpOpts = append(httpOpts, http.WithRetryConfig(config.RetryMax, retryWaitMin, retryWaitMax))
	}

	chain := config.Interceptors
	if config.Registerer != nil {
		metrics, err := netbox.NewMetrics(config.Registerer)
		if err != nil {
			return nil, err
		}

		if chain == nil {
			chain = netbox.NewInterceptorChain()
		}

		metrics.Attach(chain)
	}

	if chain != nil {
		httpOpts = append(httpOpts, http.WithInterceptors(chain))
	}

	return httpOpts, nil
}

// New creates a client with a static token manager built from config.Token.
// It does not touch the network; call Discover to bind endpoints.
func New(ctx context.Context, config *netbox.Config) (*Client, error) {
	if config == nil {
		return nil, netbox.ErrConfigRequired
	}

	if config.URL == "" {
		return nil, ErrURLRequired
	}

	err := config.Validate()
	if err != nil {
		return nil, err
	}

	return NewWithTokenManager(config, auth.NewStaticTokenManager(config.Token, config.TokenExpiresAt))
}

// NewWithTokenManager creates a client with a custom token manager.
func NewWithTokenManager(config *netbox.Config, tokenManager auth.TokenManager) (*Client, error) {
	if config == nil {
		return nil, netbox.ErrConfigRequired
	}

	if config.URL == "" {
		return nil, ErrURLRequired
	}

	httpOpts, err := createHTTPClientOptions(config)
	if err != nil {
		return nil, err
	}

	baseURL := config.BaseURL()

	logger := config.Logger
	if logger == nil {
		logger = netbox.NopLogger{}
	}

	return &Client{
		httpClient:   http.NewClient(baseURL, tokenManager, httpOpts...),
		tokenManager: tokenManager,
		baseURL:      baseURL,
		logger:       logger,
		endpoints:    make(map[string]*netbox.Endpoint),
	}, nil
}

// Discover implements netbox.Client.Discover. Endpoints from an earlier
// discovery are replaced.
func (c *Client) Discover(ctx context.Context) error {
	if c.closed.Load() {
		return netbox.ErrClientClosed
	}

	doc, err := c.fetchDocument(ctx)
	if err != nil {
		return err
	}

	endpoints := make(map[string]*netbox.Endpoint, len(doc.paths))
	for _, path := range doc.paths {
		endpoint := netbox.NewEndpoint(path, doc.operations[path], c)
		endpoints[endpoint.Name()] = endpoint
	}

	c.mutex.Lock()
	c.endpoints = endpoints
	c.document = doc.raw
	c.discovered = true
	c.mutex.Unlock()

	c.logger.Debug("Discovered endpoints", map[string]interface{}{
		"paths":     len(doc.paths),
		"endpoints": len(endpoints),
	})

	return nil
}

// OpenAPI implements netbox.Client.OpenAPI.
func (c *Client) OpenAPI() netbox.Value {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	return c.document
}

// Endpoint implements netbox.Client.Endpoint.
func (c *Client) Endpoint(name string) (*netbox.Endpoint, error) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	if !c.discovered {
		return nil, netbox.ErrNotDiscovered
	}

	endpoint, ok := c.endpoints[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", netbox.ErrUnknownEndpoint, name)
	}

	return endpoint, nil
}

// Endpoints implements netbox.Client.Endpoints.
func (c *Client) Endpoints() []*netbox.Endpoint {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	endpoints := make([]*netbox.Endpoint, 0, len(c.endpoints))
	for _, endpoint := range c.endpoints {
		endpoints = append(endpoints, endpoint)
	}

	sort.Slice(endpoints, func(i, j int) bool {
		return endpoints[i].Name() < endpoints[j].Name()
	})

	return endpoints
}

// BaseURL implements netbox.Client.BaseURL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// SetToken implements netbox.Client.SetToken.
func (c *Client) SetToken(token string, expiresAt time.Time) {
	c.tokenManager.SetToken(token, expiresAt)
}

// Close implements netbox.Client.Close. It is safe to call more than once.
func (c *Client) Close() error {
	if c.closed.Swap(true) {
		return nil
	}

	c.httpClient.Close()

	return nil
}
