package nbclient

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/fivetwenty-io/netbox-client/internal/client"
	"github.com/fivetwenty-io/netbox-client/pkg/netbox"
)

// New creates a NetBox API client. It does not contact the server; call
// Discover on the result, or use Open.
func New(ctx context.Context, config *netbox.Config) (netbox.Client, error) {
	if config == nil {
		return nil, netbox.ErrConfigRequired
	}

	normalized := *config

	url := strings.TrimSpace(normalized.URL)
	if url != "" && !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		url = "https://" + url
	}

	normalized.URL = url

	c, err := client.New(ctx, &normalized)
	if err != nil {
		return nil, fmt.Errorf("failed to create new client: %w", err)
	}

	return c, nil
}

// Open creates a client and discovers its endpoints.
func Open(ctx context.Context, config *netbox.Config) (netbox.Client, error) {
	c, err := New(ctx, config)
	if err != nil {
		return nil, err
	}

	err = c.Discover(ctx)
	if err != nil {
		_ = c.Close()

		return nil, fmt.Errorf("discovering endpoints: %w", err)
	}

	return c, nil
}

// With opens a client, runs fn and closes the client whatever fn returns.
func With(ctx context.Context, config *netbox.Config, fn func(netbox.Client) error) (err error) {
	c, err := Open(ctx, config)
	if err != nil {
		return err
	}

	defer func() {
		err = errors.Join(err, c.Close())
	}()

	return fn(c)
}

// NewWithToken creates a client from a URL and an API token.
func NewWithToken(ctx context.Context, url, token string) (netbox.Client, error) {
	return New(ctx, &netbox.Config{
		URL:   url,
		Token: token,
	})
}

// OpenWithToken creates a client from a URL and an API token and discovers
// its endpoints.
func OpenWithToken(ctx context.Context, url, token string) (netbox.Client, error) {
	return Open(ctx, &netbox.Config{
		URL:   url,
		Token: token,
	})
}
