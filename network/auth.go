package network

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"os"
	"sync"
)

// Authentication errors
var (
	ErrAuthRequired      = errors.New("authentication required")
	ErrAuthTokenMismatch = errors.New("auth token mismatch")
)

// AuthConfig holds authentication configuration.
type AuthConfig struct {
	// Enabled determines if authentication is required
	Enabled bool
	// Token is the secret token that clients must provide
	Token string
}

// Authenticator checks the per-request token the connectors receive.
type Authenticator struct {
	config AuthConfig
	mu     sync.RWMutex
}

// NewAuthenticator creates a new Authenticator with the given config.
func NewAuthenticator(config AuthConfig) *Authenticator {
	return &Authenticator{config: config}
}

// NewAuthenticatorFromEnv creates an Authenticator from environment
// variables ARROWMEX_AUTH_ENABLED and ARROWMEX_AUTH_TOKEN. If auth is
// enabled but no token is set, a random token is generated.
func NewAuthenticatorFromEnv() *Authenticator {
	enabled := os.Getenv("ARROWMEX_AUTH_ENABLED") == "true" || os.Getenv("ARROWMEX_AUTH_ENABLED") == "1"
	token := os.Getenv("ARROWMEX_AUTH_TOKEN")

	if enabled && token == "" {
		token = GenerateToken()
	}

	return NewAuthenticator(AuthConfig{
		Enabled: enabled,
		Token:   token,
	})
}

// GenerateToken returns a random 32-byte token in hex.
func GenerateToken() string {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand failure is unrecoverable
		panic(err)
	}
	return hex.EncodeToString(buf)
}

// Check validates a client-supplied token. It always returns nil when
// authentication is disabled.
func (a *Authenticator) Check(token string) error {
	a.mu.RLock()
	defer a.mu.RUnlock()

	if !a.config.Enabled {
		return nil
	}
	if token == "" {
		return ErrAuthRequired
	}
	if subtle.ConstantTimeCompare([]byte(token), []byte(a.config.Token)) != 1 {
		return ErrAuthTokenMismatch
	}
	return nil
}

// Enabled reports whether authentication is required.
func (a *Authenticator) Enabled() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.config.Enabled
}

// Token returns the configured token.
func (a *Authenticator) Token() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.config.Token
}
