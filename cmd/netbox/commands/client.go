package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/fivetwenty-io/netbox-client/internal/constants"
	"github.com/fivetwenty-io/netbox-client/pkg/nbclient"
	"github.com/fivetwenty-io/netbox-client/pkg/netbox"
	"github.com/spf13/viper"
)

// buildClientConfig turns the effective CLI configuration into a
// netbox.Config. Verbose mode logs every request to stderr.
func buildClientConfig() (*netbox.Config, error) {
	config := loadConfig()

	if config.URL == "" {
		return nil, constants.ErrNoURLConfigured
	}

	if config.Token == "" {
		return nil, constants.ErrNoTokenConfigured
	}

	timeout := constants.DefaultHTTPTimeout

	if config.Timeout != "" {
		parsed, err := time.ParseDuration(config.Timeout)
		if err != nil {
			return nil, fmt.Errorf("invalid timeout %q: %w", config.Timeout, err)
		}

		timeout = parsed
	}

	expiresAt, err := parseTokenExpiry(config.TokenExpires)
	if err != nil {
		return nil, err
	}

	clientConfig := &netbox.Config{
		URL:            config.URL,
		Token:          config.Token,
		TokenExpiresAt: expiresAt,
		Timeout:        timeout,
		RetryMax:       config.RetryMax,
		UserAgent:      "netbox-cli",
	}

	if viper.GetBool("verbose") {
		handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})
		logger := netbox.NewSlogLogger(slog.New(handler))

		chain := netbox.NewInterceptorChain()
		chain.AddRequestInterceptor(netbox.RequestIDInterceptor())

		clientConfig.Debug = true
		clientConfig.Logger = logger
		clientConfig.Interceptors = chain
	}

	return clientConfig, nil
}

// openClient creates a client and discovers its endpoints.
func openClient(ctx context.Context) (netbox.Client, error) {
	config, err := buildClientConfig()
	if err != nil {
		return nil, err
	}

	client, err := nbclient.Open(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NetBox: %w", err)
	}

	return client, nil
}
