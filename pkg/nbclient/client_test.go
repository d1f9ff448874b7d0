package nbclient_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/fivetwenty-io/netbox-client/internal/netboxtest"
	"github.com/fivetwenty-io/netbox-client/pkg/nbclient"
	"github.com/fivetwenty-io/netbox-client/pkg/netbox"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errStop = errors.New("stop")

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("requires config", func(t *testing.T) {
		t.Parallel()

		_, err := nbclient.New(context.Background(), nil)
		require.ErrorIs(t, err, netbox.ErrConfigRequired)
	})

	t.Run("adds a scheme", func(t *testing.T) {
		t.Parallel()

		config := &netbox.Config{URL: "netbox.example.com", Token: "abc"}

		client, err := nbclient.New(context.Background(), config)
		require.NoError(t, err)
		assert.Equal(t, "https://netbox.example.com/api", client.BaseURL())
		assert.Equal(t, "netbox.example.com", config.URL)
	})

	t.Run("requires token", func(t *testing.T) {
		t.Parallel()

		_, err := nbclient.New(context.Background(), &netbox.Config{URL: "https://netbox.example.com"})
		require.ErrorIs(t, err, netbox.ErrInvalidConfig)
	})
}

func TestNewWithToken(t *testing.T) {
	t.Parallel()

	client, err := nbclient.NewWithToken(context.Background(), "https://netbox.example.com", "abc")
	require.NoError(t, err)
	assert.NotNil(t, client)
	assert.Empty(t, client.Endpoints())
}

func TestOpen(t *testing.T) {
	t.Parallel()

	t.Run("discovers endpoints", func(t *testing.T) {
		t.Parallel()

		server := netboxtest.NewServer(netboxtest.WithCollections("/ipam/prefixes/"))
		defer server.Close()

		client, err := nbclient.OpenWithToken(context.Background(), server.URL, server.Token())
		require.NoError(t, err)

		defer func() { _ = client.Close() }()

		prefixes, err := client.Endpoint("ipam_prefixes")
		require.NoError(t, err)
		assert.Equal(t, "/ipam/prefixes/", prefixes.Path())
	})

	t.Run("reports discovery failure", func(t *testing.T) {
		t.Parallel()

		server := netboxtest.NewServer(netboxtest.WithDocument([]byte(`{}`)))
		defer server.Close()

		_, err := nbclient.OpenWithToken(context.Background(), server.URL, server.Token())
		require.ErrorIs(t, err, netbox.ErrNoPaths)
	})
}

func TestWith(t *testing.T) {
	t.Parallel()

	t.Run("closes the client", func(t *testing.T) {
		t.Parallel()

		server := netboxtest.NewServer(netboxtest.WithCollections("/tenancy/tenants/"))
		defer server.Close()

		server.Seed("/tenancy/tenants/", netboxtest.Record{"name": "Acme"})

		var tenants *netbox.Endpoint

		err := nbclient.With(context.Background(), &netbox.Config{URL: server.URL, Token: server.Token()},
			func(client netbox.Client) error {
				var err error

				tenants, err = client.Endpoint("tenancy_tenants")
				if err != nil {
					return err
				}

				result, err := tenants.Get(context.Background(), nil)
				if err != nil {
					return err
				}

				name, err := result.Resource().Field("name")
				if err != nil {
					return err
				}

				assert.Equal(t, "Acme", name.String())

				return nil
			})
		require.NoError(t, err)

		_, err = tenants.Get(context.Background(), nil)
		require.ErrorIs(t, err, netbox.ErrClientClosed)
	})

	t.Run("returns the callback error", func(t *testing.T) {
		t.Parallel()

		server := netboxtest.NewServer(netboxtest.WithCollections("/tenancy/tenants/"))
		defer server.Close()

		err := nbclient.With(context.Background(), &netbox.Config{URL: server.URL, Token: server.Token()},
			func(netbox.Client) error { return errStop })
		require.ErrorIs(t, err, errStop)
	})

	t.Run("does not call back when discovery fails", func(t *testing.T) {
		t.Parallel()

		called := false

		err := nbclient.With(context.Background(), &netbox.Config{URL: "http://127.0.0.1:1", Token: "abc"},
			func(netbox.Client) error {
				called = true

				return nil
			})
		require.Error(t, err)
		assert.False(t, called)
		assert.True(t, strings.HasPrefix(err.Error(), "discovering endpoints"))
	})
}
