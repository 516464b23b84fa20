package auth

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bix-dev/bixdash/internal/cache"
	"github.com/bix-dev/bixdash/internal/clock"
	"github.com/bix-dev/bixdash/internal/id"
	"github.com/bix-dev/bixdash/internal/kv"
	"github.com/bix-dev/bixdash/internal/model"
)

var testNow = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

func newGate(t *testing.T, delay time.Duration) (*Gate, *kv.Memory, *clock.FakeClock) {
	t.Helper()
	clk := clock.Fake(testNow)
	medium := kv.NewMemory()
	store := cache.NewStore(medium, clk, zerolog.Nop())
	return NewGate(store, clk, DefaultCredentials(), delay, zerolog.Nop()), medium, clk
}

func storeToken(t *testing.T, m *kv.Memory, tok model.AuthToken) {
	t.Helper()
	data, err := json.Marshal(tok)
	require.NoError(t, err)
	require.NoError(t, m.Set(cache.AuthToken.Key(), string(data)))
}

func TestLogin_Success(t *testing.T) {
	g, m, _ := newGate(t, 0)

	tok, err := g.Login(context.Background(), "admin@bix.tech", "bix2025")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(tok.Token, id.TokenPrefix))
	assert.Equal(t, clock.Millis(testNow)+86400000, tok.ExpiresAt)
	require.NotNil(t, tok.User)
	assert.Equal(t, model.User{ID: "1", Email: "admin@bix.tech", Name: "Admin User"}, *tok.User)

	// Stored unwrapped, without a cache envelope.
	raw, ok, err := m.Get("bix_auth_token")
	require.NoError(t, err)
	require.True(t, ok)
	var stored model.AuthToken
	require.NoError(t, json.Unmarshal([]byte(raw), &stored))
	assert.Equal(t, tok, stored)
	assert.NotContains(t, raw, `"data"`)
}

func TestLogin_TokensAreUnique(t *testing.T) {
	g, _, _ := newGate(t, 0)
	a, err := g.Login(context.Background(), DefaultEmail, DefaultPassword)
	require.NoError(t, err)
	b, err := g.Login(context.Background(), DefaultEmail, DefaultPassword)
	require.NoError(t, err)
	assert.NotEqual(t, a.Token, b.Token)
}

func TestLogin_InvalidCredentials(t *testing.T) {
	tests := []struct{ email, password string }{
		{"x", "y"},
		{"admin@bix.tech", "wrong"},
		{"wrong@bix.tech", "bix2025"},
		{"", ""},
		{"ADMIN@BIX.TECH", "bix2025"},
	}
	for _, tt := range tests {
		g, m, _ := newGate(t, 0)
		_, err := g.Login(context.Background(), tt.email, tt.password)
		assert.ErrorIs(t, err, ErrInvalidCredentials, "%q/%q", tt.email, tt.password)
		assert.Zero(t, m.Len(), "nothing written for %q/%q", tt.email, tt.password)
	}
}

func TestLogin_EmptyConfiguredCredentialsNeverMatch(t *testing.T) {
	clk := clock.Fake(testNow)
	store := cache.NewStore(kv.NewMemory(), clk, zerolog.Nop())
	g := NewGate(store, clk, Credentials{}, 0, zerolog.Nop())
	_, err := g.Login(context.Background(), "", "")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLogin_WaitsForDelay(t *testing.T) {
	g, _, clk := newGate(t, DefaultLoginDelay)

	type result struct {
		tok model.AuthToken
		err error
	}
	done := make(chan result, 1)
	go func() {
		tok, err := g.Login(context.Background(), DefaultEmail, DefaultPassword)
		done <- result{tok, err}
	}()

	clk.WaitForTimers(1)
	select {
	case <-done:
		t.Fatal("login returned before the delay elapsed")
	default:
	}

	clk.Advance(DefaultLoginDelay)
	r := <-done
	require.NoError(t, r.err)
	assert.Equal(t, clock.Millis(testNow.Add(DefaultLoginDelay+TokenLifetime)), r.tok.ExpiresAt)
}

func TestLogin_ContextCancelled(t *testing.T) {
	g, m, _ := newGate(t, DefaultLoginDelay)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := g.Login(ctx, DefaultEmail, DefaultPassword)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, m.Len())
}

func TestLogin_UnavailableStorage(t *testing.T) {
	clk := clock.Fake(testNow)
	store := cache.NewStore(kv.Unavailable(), clk, zerolog.Nop())
	g := NewGate(store, clk, DefaultCredentials(), 0, zerolog.Nop())

	tok, err := g.Login(context.Background(), DefaultEmail, DefaultPassword)
	require.NoError(t, err)
	assert.NotEmpty(t, tok.Token)
	assert.Nil(t, g.StoredToken())
	assert.False(t, g.IsAuthenticated())
}

func TestLogout(t *testing.T) {
	g, m, _ := newGate(t, 0)
	_, err := g.Login(context.Background(), DefaultEmail, DefaultPassword)
	require.NoError(t, err)
	require.True(t, g.IsAuthenticated())

	g.Logout()
	assert.False(t, g.IsAuthenticated())
	assert.Zero(t, m.Len())

	// Idempotent.
	g.Logout()
}

func TestStoredToken_Valid(t *testing.T) {
	g, m, _ := newGate(t, 0)
	want := model.AuthToken{Token: "t", ExpiresAt: clock.Millis(testNow) + 1000, User: &model.User{ID: "1"}}
	storeToken(t, m, want)

	got := g.StoredToken()
	require.NotNil(t, got)
	assert.Equal(t, want, *got)

	tok, err := g.Require()
	require.NoError(t, err)
	assert.Equal(t, want, *tok)
}

func TestStoredToken_ExpiredIsRemoved(t *testing.T) {
	g, m, _ := newGate(t, 0)
	storeToken(t, m, model.AuthToken{Token: "t", ExpiresAt: clock.Millis(testNow) - 1, User: &model.User{ID: "1"}})

	assert.Nil(t, g.StoredToken())
	_, ok, _ := m.Get(cache.AuthToken.Key())
	assert.False(t, ok)
}

func TestStoredToken_ExpiresAtNowIsValid(t *testing.T) {
	g, m, _ := newGate(t, 0)
	storeToken(t, m, model.AuthToken{Token: "t", ExpiresAt: clock.Millis(testNow), User: &model.User{ID: "1"}})
	assert.NotNil(t, g.StoredToken())
}

func TestStoredToken_Malformed(t *testing.T) {
	for _, raw := range []string{
		"invalid-json",
		"null",
		`{"token":"t","expiresAt":1}`,
		`{"expiresAt":99999999999999,"user":{"id":"1"}}`,
		`{"token":"t","user":{"id":"1"}}`,
	} {
		g, m, _ := newGate(t, 0)
		require.NoError(t, m.Set(cache.AuthToken.Key(), raw))

		assert.Nil(t, g.StoredToken(), raw)
		assert.Zero(t, m.Len(), "malformed token %s is removed", raw)
	}
}

func TestStoredToken_Absent(t *testing.T) {
	g, _, _ := newGate(t, 0)
	assert.Nil(t, g.StoredToken())
	_, err := g.Require()
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestStoredToken_ExpiresAfterLifetime(t *testing.T) {
	g, _, clk := newGate(t, 0)
	_, err := g.Login(context.Background(), DefaultEmail, DefaultPassword)
	require.NoError(t, err)

	clk.Advance(TokenLifetime)
	assert.True(t, g.IsAuthenticated())
	clk.Advance(time.Millisecond)
	assert.False(t, g.IsAuthenticated())
}
