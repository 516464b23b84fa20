package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bix-dev/bixdash/internal/clock"
	"github.com/bix-dev/bixdash/internal/model"
)

func TestSession_InitialCheckIsDeferred(t *testing.T) {
	g, m, clk := newGate(t, 0)
	want := model.AuthToken{Token: "test-token", ExpiresAt: clock.Millis(testNow) + 1000000, User: &model.User{ID: "1", Email: "test@test.com", Name: "Test User"}}
	storeToken(t, m, want)

	s := g.NewSession()
	assert.Equal(t, SessionState{IsLoading: true}, s.State())

	s.Start()
	clk.WaitForTimers(1)
	assert.True(t, s.State().IsLoading)

	clk.Advance(InitialCheckDelay)
	<-s.Ready()

	st := s.State()
	assert.False(t, st.IsLoading)
	assert.True(t, st.IsAuthenticated)
	require.NotNil(t, st.Token)
	assert.Equal(t, want, *st.Token)
}

func TestSession_NoToken(t *testing.T) {
	g, _, clk := newGate(t, 0)
	s := g.NewSession()
	s.Start()
	clk.WaitForTimers(1)
	clk.Advance(200 * time.Millisecond)
	<-s.Ready()

	assert.Equal(t, SessionState{}, s.State())
}

func TestSession_Refresh(t *testing.T) {
	g, _, clk := newGate(t, 0)
	s := g.NewSession()
	s.Start()
	clk.WaitForTimers(1)
	clk.Advance(InitialCheckDelay)
	<-s.Ready()
	require.False(t, s.State().IsAuthenticated)

	_, err := g.Login(context.Background(), DefaultEmail, DefaultPassword)
	require.NoError(t, err)

	st := s.Refresh()
	assert.True(t, st.IsAuthenticated)
	assert.NotNil(t, st.Token)
	assert.Equal(t, st, s.State())

	g.Logout()
	st = s.Refresh()
	assert.False(t, st.IsAuthenticated)
	assert.Nil(t, st.Token)
}

func TestSession_StopBeforeCheck(t *testing.T) {
	g, _, clk := newGate(t, 0)
	s := g.NewSession()
	s.Start()
	clk.WaitForTimers(1)

	s.Stop()
	clk.Advance(InitialCheckDelay)
	assert.True(t, s.State().IsLoading)

	// Waiters are released even though the check never ran.
	select {
	case <-s.Ready():
	default:
		t.Fatal("Ready still blocks after Stop")
	}
	assert.True(t, s.State().IsLoading)
	assert.False(t, s.State().IsAuthenticated)

	// Stop again is harmless.
	s.Stop()
}

func TestSession_StopReleasesBlockedWaiter(t *testing.T) {
	g, _, clk := newGate(t, 0)
	s := g.NewSession()
	s.Start()
	clk.WaitForTimers(1)

	released := make(chan struct{})
	go func() {
		<-s.Ready()
		close(released)
	}()

	s.Stop()
	select {
	case <-released:
	case <-time.After(time.Second):
		t.Fatal("waiter on Ready not released by Stop")
	}
}

func TestSession_StopWithoutStart(t *testing.T) {
	g, _, _ := newGate(t, 0)
	s := g.NewSession()
	s.Stop()
	assert.True(t, s.State().IsLoading)
	<-s.Ready()
}
