// Package auth implements the demo login: a single configured
// credential pair, a synthesized token persisted through the cache store
// and the session state the CLI consults before showing the dashboard.
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/bix-dev/bixdash/internal/cache"
	"github.com/bix-dev/bixdash/internal/clock"
	"github.com/bix-dev/bixdash/internal/id"
	"github.com/bix-dev/bixdash/internal/model"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials. Use the correct credentials to access the system")
	ErrUnauthenticated    = errors.New("not authenticated")
)

const (
	DefaultEmail      = "admin@bix.tech"
	DefaultPassword   = "bix2025"
	DefaultLoginDelay = time.Second
	TokenLifetime     = 24 * time.Hour

	userID   = "1"
	userName = "Admin User"
)

// Credentials is the one accepted email/password pair.
type Credentials struct {
	Email    string
	Password string
}

// DefaultCredentials returns the demo pair.
func DefaultCredentials() Credentials {
	return Credentials{Email: DefaultEmail, Password: DefaultPassword}
}

// Gate checks credentials and owns the stored token.
type Gate struct {
	store *cache.Store
	clock clock.Clock
	creds Credentials
	delay time.Duration
	log   zerolog.Logger
}

// NewGate creates a Gate. delay is the simulated latency of Login.
func NewGate(store *cache.Store, clk clock.Clock, creds Credentials, delay time.Duration, log zerolog.Logger) *Gate {
	return &Gate{
		store: store,
		clock: clk,
		creds: creds,
		delay: delay,
		log:   log.With().Str("component", "auth").Logger(),
	}
}

// Login waits out the simulated latency, then checks email and password.
// On success a fresh token valid for TokenLifetime is stored and
// returned. On mismatch nothing is written.
func (g *Gate) Login(ctx context.Context, email, password string) (model.AuthToken, error) {
	if g.delay > 0 {
		select {
		case <-g.clock.After(g.delay):
		case <-ctx.Done():
			return model.AuthToken{}, ctx.Err()
		}
	}

	if email == "" || password == "" || email != g.creds.Email || password != g.creds.Password {
		return model.AuthToken{}, ErrInvalidCredentials
	}

	tok := model.AuthToken{
		Token:     id.FormatToken(uuid.NewString()),
		ExpiresAt: clock.Millis(g.clock.Now().Add(TokenLifetime)),
		User:      &model.User{ID: userID, Email: g.creds.Email, Name: userName},
	}

	if !g.store.Available() {
		g.log.Warn().Msg("storage unavailable, token not persisted")
		return tok, nil
	}
	data, err := json.Marshal(tok)
	if err != nil {
		return model.AuthToken{}, fmt.Errorf("encoding auth token: %w", err)
	}
	if err := g.store.WriteRaw(cache.AuthToken, string(data)); err != nil {
		return model.AuthToken{}, fmt.Errorf("storing auth token: %w", err)
	}
	return tok, nil
}

// Logout deletes the stored token, if any.
func (g *Gate) Logout() {
	g.store.Remove(cache.AuthToken)
}

// StoredToken returns the persisted token when it is well formed and not
// expired. Malformed, incomplete and expired tokens are deleted.
func (g *Gate) StoredToken() *model.AuthToken {
	if !g.store.Available() {
		return nil
	}
	raw, ok := g.store.ReadRaw(cache.AuthToken)
	if !ok {
		return nil
	}

	var tok model.AuthToken
	if err := json.Unmarshal([]byte(raw), &tok); err != nil {
		g.log.Warn().Err(err).Msg("error reading stored token")
		g.store.Remove(cache.AuthToken)
		return nil
	}
	if !tok.Complete() {
		g.store.Remove(cache.AuthToken)
		return nil
	}
	if tok.ExpiresAt < clock.Millis(g.clock.Now()) {
		g.store.Remove(cache.AuthToken)
		return nil
	}
	return &tok
}

// IsAuthenticated reports whether a valid token is stored.
func (g *Gate) IsAuthenticated() bool {
	return g.StoredToken() != nil
}

// Require returns the stored token or ErrUnauthenticated.
func (g *Gate) Require() (*model.AuthToken, error) {
	tok := g.StoredToken()
	if tok == nil {
		return nil, ErrUnauthenticated
	}
	return tok, nil
}
