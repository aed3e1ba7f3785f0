// ABOUTME: Persistent sign-in state: the signing secret and the current session token
// ABOUTME: Both live in the key-value store so the CLI stays signed in between runs

package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/2389/swavik-portal/internal/store"
)

// ErrNotSignedIn is returned when no valid session token is stored.
var ErrNotSignedIn = errors.New("not signed in")

// secretBytes is the length of a generated signing secret.
const secretBytes = 32

// SessionStore is the persistence sessions need.
type SessionStore interface {
	KeyValueStore
	Delete(ctx context.Context, key string) error
}

// LoadOrCreateSecret returns configured when set. Otherwise it returns the
// secret persisted under the session_secret key, generating and saving a
// random one on first use.
func LoadOrCreateSecret(ctx context.Context, kv KeyValueStore, configured string) ([]byte, error) {
	if configured != "" {
		return []byte(configured), nil
	}

	data, err := kv.Get(ctx, store.KeySessionSecret)
	if err == nil && len(data) > 0 {
		return data, nil
	}
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("reading session secret: %w", err)
	}

	raw := make([]byte, secretBytes)
	if _, err := rand.Read(raw); err != nil {
		return nil, fmt.Errorf("generating session secret: %w", err)
	}
	secret := []byte(hex.EncodeToString(raw))

	if err := kv.Put(ctx, store.KeySessionSecret, secret); err != nil {
		return nil, fmt.Errorf("saving session secret: %w", err)
	}
	return secret, nil
}

// Sessions tracks which user is signed in.
type Sessions struct {
	kv     SessionStore
	issuer *TokenIssuer
	ttl    time.Duration
	logger *slog.Logger
}

// NewSessions creates a Sessions that issues tokens valid for ttl.
func NewSessions(kv SessionStore, issuer *TokenIssuer, ttl time.Duration, logger *slog.Logger) *Sessions {
	if logger == nil {
		logger = slog.Default()
	}
	return &Sessions{
		kv:     kv,
		issuer: issuer,
		ttl:    ttl,
		logger: logger.With("component", "sessions"),
	}
}

// Start signs username in and stores the session token, which it returns.
func (s *Sessions) Start(ctx context.Context, username string) (string, error) {
	token, err := s.issuer.Generate(username, s.ttl)
	if err != nil {
		return "", fmt.Errorf("generating token: %w", err)
	}
	if err := s.kv.Put(ctx, store.KeySession, []byte(token)); err != nil {
		return "", fmt.Errorf("saving session: %w", err)
	}

	s.logger.Debug("session started", "username", username, "ttl", s.ttl)
	return token, nil
}

// Current returns the signed-in username and token. It returns
// ErrNotSignedIn when there is no session, and ErrExpiredToken or
// ErrInvalidToken when the stored token no longer verifies.
func (s *Sessions) Current(ctx context.Context) (username, token string, err error) {
	data, err := s.kv.Get(ctx, store.KeySession)
	if errors.Is(err, store.ErrNotFound) || (err == nil && len(data) == 0) {
		return "", "", ErrNotSignedIn
	}
	if err != nil {
		return "", "", fmt.Errorf("reading session: %w", err)
	}

	token = string(data)
	username, err = s.issuer.Verify(token)
	if err != nil {
		return "", "", err
	}
	return username, token, nil
}

// End signs the current user out. Ending without a session is not an error.
func (s *Sessions) End(ctx context.Context) error {
	if err := s.kv.Delete(ctx, store.KeySession); err != nil {
		return fmt.Errorf("clearing session: %w", err)
	}
	return nil
}
