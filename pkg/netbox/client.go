package netbox

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Client is a NetBox API client whose endpoints are discovered at runtime
// from the server's OpenAPI document.
type Client interface {
	// Discover fetches the OpenAPI document and binds one Endpoint per path.
	Discover(ctx context.Context) error
	// OpenAPI returns the decoded discovery document.
	OpenAPI() Value
	// Endpoint looks an endpoint up by its normalized name, e.g. "dcim_devices".
	Endpoint(name string) (*Endpoint, error)
	// Endpoints returns every bound endpoint sorted by name.
	Endpoints() []*Endpoint
	// BaseURL returns the API root every path is resolved against.
	BaseURL() string
	// SetToken rotates the API token. A zero expiresAt never expires.
	SetToken(token string, expiresAt time.Time)
	// Close releases the transport. Calls made after Close fail.
	Close() error
}

// Dispatcher sends a single-verb request to a path template and shapes the
// response into a Result.
type Dispatcher interface {
	Dispatch(ctx context.Context, path string, req Request) (Result, error)
}

// DispatcherFunc adapts a function to the Dispatcher interface.
type DispatcherFunc func(ctx context.Context, path string, req Request) (Result, error)

// Dispatch calls f.
func (f DispatcherFunc) Dispatch(ctx context.Context, path string, req Request) (Result, error) {
	return f(ctx, path, req)
}

// Logger interface for logging.
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}

// Config represents client configuration for building a netbox.Client.
//
// URL is the NetBox root, e.g. "https://netbox.example.com". The client
// trims a trailing slash and appends "/api". Every request carries an
// "Authorization: Token <Token>" header.
//
// The client never retries unless RetryMax is set. Timeout is handed to the
// HTTP transport untouched; per-call deadlines belong on the context.
type Config struct {
	// URL: NetBox root URL.
	URL string `validate:"required,url"`
	// Token: API token sent with every request.
	Token string `validate:"required"`
	// TokenExpiresAt: when Token expires. Zero means never. Requests fail
	// before reaching the network once it is less than 30s away.
	TokenExpiresAt time.Time
	// Timeout: transport timeout. Zero means no timeout.
	Timeout time.Duration `validate:"gte=0"`
	// RetryMax: retries for connection errors, 429 and 5xx. Zero disables retries.
	RetryMax int `validate:"gte=0"`
	// RetryWaitMin: minimum backoff between retries.
	RetryWaitMin time.Duration `validate:"gte=0"`
	// RetryWaitMax: maximum backoff between retries.
	RetryWaitMax time.Duration `validate:"gte=0"`
	// Debug: logs every HTTP request and response when a Logger is set.
	Debug bool
	// Logger: optional structured logger used by the HTTP layer and discovery.
	Logger Logger
	// UserAgent: overrides the default User-Agent header.
	UserAgent string
	// Interceptors: run around every HTTP call.
	Interceptors *InterceptorChain
	// Registerer: when set, request metrics are registered on it.
	Registerer prometheus.Registerer
}
