package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/fivetwenty-io/netbox-client/internal/auth"
	"github.com/fivetwenty-io/netbox-client/internal/constants"
	"github.com/fivetwenty-io/netbox-client/pkg/netbox"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToken_Valid(t *testing.T) {
	t.Parallel()

	tests := getTokenValidityTestCases()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, tt.token.Valid())
		})
	}
}

func getTokenValidityTestCases() []struct {
	name     string
	token    *auth.Token
	expected bool
} {
	return []struct {
		name     string
		token    *auth.Token
		expected bool
	}{
		{
			name:     "nil token",
			token:    nil,
			expected: false,
		},
		{
			name: "empty access token",
			token: &auth.Token{
				Key: "",
			},
			expected: false,
		},
		{
			name: "valid token without expiry",
			token: &auth.Token{
				Key: "test-token",
			},
			expected: true,
		},
		{
			name: "valid token with future expiry",
			token: &auth.Token{
				Key:       "test-token",
				ExpiresAt: time.Now().Add(1 * time.Hour),
			},
			expected: true,
		},
		{
			name: "expired token",
			token: &auth.Token{
				Key:       "test-token",
				ExpiresAt: time.Now().Add(-1 * time.Hour),
			},
			expected: false,
		},
		{
			name: "token expiring within buffer",
			token: &auth.Token{
				Key:       "test-token",
				ExpiresAt: time.Now().Add(15 * time.Second),
			},
			expected: false, // Should be false due to 30 second buffer
		},
		{
			name: "token expiring just outside buffer",
			token: &auth.Token{
				Key:       "test-token",
				ExpiresAt: time.Now().Add(35 * time.Second),
			},
			expected: true,
		},
	}
}

func TestTokenStore(t *testing.T) {
	t.Parallel()
	t.Run("new store is empty", testNewStoreEmpty)
	t.Run("set and get token", testSetAndGetToken)
	t.Run("concurrent access", testConcurrentTokenAccess)
}

func testNewStoreEmpty(t *testing.T) {
	t.Parallel()

	store := auth.NewTokenStore()
	assert.Nil(t, store.Get())
}

func testSetAndGetToken(t *testing.T) {
	t.Parallel()

	store := auth.NewTokenStore()
	expiry := time.Now().Add(time.Hour)
	token := &auth.Token{
		Key:       "test-token",
		ExpiresAt: expiry,
	}

	store.Set(token)
	retrieved := store.Get()
	assert.NotNil(t, retrieved)
	assert.Equal(t, token.Key, retrieved.Key)
	assert.Equal(t, expiry, retrieved.ExpiresAt)
}

func testConcurrentTokenAccess(t *testing.T) {
	t.Parallel()

	store := auth.NewTokenStore()
	done := make(chan bool)

	// Start concurrent goroutines
	startTokenSetters(store, done)
	startTokenGetters(store, done)

	// Wait for all goroutines
	for range 4 {
		<-done
	}

	// Should not panic and should have a token
	finalToken := store.Get()
	assert.NotNil(t, finalToken)
	assert.True(t, finalToken.Key == "token-1" || finalToken.Key == "token-2")
}

func startTokenSetters(store *auth.TokenStore, done chan bool) {
	// Multiple goroutines setting tokens
	go func() {
		for range 100 {
			store.Set(&auth.Token{
				Key: "token-1",
			})
		}

		done <- true
	}()

	go func() {
		for range 100 {
			store.Set(&auth.Token{
				Key: "token-2",
			})
		}

		done <- true
	}()
}

func startTokenGetters(store *auth.TokenStore, done chan bool) {
	// Multiple goroutines getting tokens
	go func() {
		for range 100 {
			_ = store.Get()
		}

		done <- true
	}()

	go func() {
		for range 100 {
			_ = store.Get()
		}

		done <- true
	}()
}

func TestStaticTokenManager(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("returns configured key", func(t *testing.T) {
		t.Parallel()

		manager := auth.NewStaticTokenManager("0123456789abcdef", time.Time{})

		token, err := manager.GetToken(ctx)
		require.NoError(t, err)
		assert.Equal(t, "0123456789abcdef", token)
	})

	t.Run("empty key sends no credentials", func(t *testing.T) {
		t.Parallel()

		token, err := auth.NewStaticTokenManager("", time.Time{}).GetToken(ctx)
		require.NoError(t, err)
		assert.Empty(t, token)
	})

	t.Run("expired key fails", func(t *testing.T) {
		t.Parallel()

		manager := auth.NewStaticTokenManager("old", time.Now().Add(-time.Minute))

		_, err := manager.GetToken(ctx)
		require.ErrorIs(t, err, netbox.ErrTokenExpired)
	})

	t.Run("key inside the expiry buffer fails", func(t *testing.T) {
		t.Parallel()

		manager := auth.NewStaticTokenManager("soon", time.Now().Add(constants.TokenExpirationBuffer/2))

		_, err := manager.GetToken(ctx)
		require.ErrorIs(t, err, netbox.ErrTokenExpired)
	})

	t.Run("rotated key replaces an expired one", func(t *testing.T) {
		t.Parallel()

		manager := auth.NewStaticTokenManager("old", time.Now().Add(-time.Minute))
		manager.SetToken("new", time.Now().Add(time.Hour))

		token, err := manager.GetToken(ctx)
		require.NoError(t, err)
		assert.Equal(t, "new", token)
	})
}
