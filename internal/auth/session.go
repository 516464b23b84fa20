package auth

import (
	"sync"
	"time"

	"github.com/bix-dev/bixdash/internal/clock"
	"github.com/bix-dev/bixdash/internal/model"
)

// InitialCheckDelay defers a session's first token check.
const InitialCheckDelay = 50 * time.Millisecond

// SessionState is what views need to decide what to show.
type SessionState struct {
	IsAuthenticated bool
	IsLoading       bool
	Token           *model.AuthToken
}

// Session tracks authentication state for one consumer. It starts out
// loading; Start resolves it after InitialCheckDelay.
type Session struct {
	gate  *Gate
	clock clock.Clock
	delay time.Duration

	mu      sync.Mutex
	state   SessionState
	started bool

	startOnce sync.Once
	stopOnce  sync.Once
	readyOnce sync.Once
	stop      chan struct{}
	ready     chan struct{}
	done      chan struct{}
}

// NewSession returns a loading Session over g.
func (g *Gate) NewSession() *Session {
	return &Session{
		gate:  g,
		clock: g.clock,
		delay: InitialCheckDelay,
		state: SessionState{IsLoading: true},
		stop:  make(chan struct{}),
		ready: make(chan struct{}),
		done:  make(chan struct{}),
	}
}

// Start schedules the initial check. Calling it again has no effect.
func (s *Session) Start() {
	s.startOnce.Do(func() {
		s.mu.Lock()
		s.started = true
		s.mu.Unlock()
		go s.run()
	})
}

func (s *Session) run() {
	defer close(s.done)
	select {
	case <-s.clock.After(s.delay):
	case <-s.stop:
		return
	}

	s.Refresh()
	s.mu.Lock()
	s.state.IsLoading = false
	s.mu.Unlock()
	s.markReady()
}

func (s *Session) markReady() {
	s.readyOnce.Do(func() { close(s.ready) })
}

// Ready is closed once the initial check has resolved or the session
// has been stopped. A stopped session may still report IsLoading.
func (s *Session) Ready() <-chan struct{} {
	return s.ready
}

// Stop cancels a pending initial check and waits for it to exit. The
// session stays loading if the check had not run yet.
func (s *Session) Stop() {
	s.stopOnce.Do(func() { close(s.stop) })
	s.mu.Lock()
	started := s.started
	s.mu.Unlock()
	if started {
		<-s.done
	}
	s.markReady()
}

// Refresh re-reads the stored token synchronously and returns the new
// state.
func (s *Session) Refresh() SessionState {
	tok := s.gate.StoredToken()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Token = tok
	s.state.IsAuthenticated = tok != nil
	return s.state
}

// State returns the current state.
func (s *Session) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}
