package auth

import (
	"context"
	"sync"
	"time"

	"github.com/fivetwenty-io/netbox-client/internal/constants"
	"github.com/fivetwenty-io/netbox-client/pkg/netbox"
)

// TokenManager supplies the API token sent with every request. SetToken
// swaps in a rotated token; a zero expiresAt never expires.
type TokenManager interface {
	GetToken(ctx context.Context) (string, error)
	SetToken(token string, expiresAt time.Time)
}

// Token is a NetBox API token. NetBox tokens may carry an expiry; a zero
// ExpiresAt never expires.
type Token struct {
	Key       string
	ExpiresAt time.Time
}

// Valid reports whether the token is set and not about to expire.
func (t *Token) Valid() bool {
	if t == nil || t.Key == "" {
		return false
	}

	if t.ExpiresAt.IsZero() {
		return true
	}

	return time.Now().Add(constants.TokenExpirationBuffer).Before(t.ExpiresAt)
}

// TokenStore holds a token behind a lock.
type TokenStore struct {
	mutex sync.RWMutex
	token *Token
}

// NewTokenStore returns an empty store.
func NewTokenStore() *TokenStore {
	return &TokenStore{}
}

// Get returns the stored token or nil.
func (s *TokenStore) Get() *Token {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	return s.token
}

// Set replaces the stored token.
func (s *TokenStore) Set(token *Token) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.token = token
}

// StaticTokenManager serves one configured token. NetBox tokens are issued
// out of band, so once the token expires every call fails with
// ErrTokenExpired until SetToken supplies a new one.
type StaticTokenManager struct {
	store *TokenStore
}

// NewStaticTokenManager wraps key. A zero expiresAt never expires.
func NewStaticTokenManager(key string, expiresAt time.Time) *StaticTokenManager {
	manager := &StaticTokenManager{store: NewTokenStore()}
	manager.SetToken(key, expiresAt)

	return manager
}

// GetToken returns the token, or ErrTokenExpired once it has expired.
func (m *StaticTokenManager) GetToken(ctx context.Context) (string, error) {
	token := m.store.Get()
	if token == nil || token.Key == "" {
		return "", nil
	}

	if !token.Valid() {
		return "", netbox.ErrTokenExpired
	}

	return token.Key, nil
}

// SetToken replaces the token.
func (m *StaticTokenManager) SetToken(token string, expiresAt time.Time) {
	m.store.Set(&Token{Key: token, ExpiresAt: expiresAt})
}
