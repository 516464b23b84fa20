package cache

import (
	"sync"
	"time"
)

// DefaultCleanupInterval is how often the janitor sweeps expired entries.
const DefaultCleanupInterval = 30 * time.Minute

// Janitor runs CleanExpired once on Start and then periodically until
// Stop. It does nothing when the store's medium is unavailable.
type Janitor struct {
	store    *Store
	interval time.Duration

	mu       sync.Mutex
	shutdown chan struct{}
	finished chan struct{}
}

// NewJanitor creates a stopped janitor. A non-positive interval selects
// DefaultCleanupInterval.
func NewJanitor(store *Store, interval time.Duration) *Janitor {
	if interval <= 0 {
		interval = DefaultCleanupInterval
	}
	return &Janitor{store: store, interval: interval}
}

// Start sweeps immediately and schedules further sweeps. Calling Start
// on a running janitor is a no-op.
func (j *Janitor) Start() {
	if !j.store.Available() {
		return
	}

	j.mu.Lock()
	defer j.mu.Unlock()
	if j.shutdown != nil {
		return
	}

	j.store.CleanExpired()

	j.shutdown = make(chan struct{})
	j.finished = make(chan struct{})
	ticker := j.store.clock.NewTicker(j.interval)
	go j.run(ticker.C, ticker.Stop, j.shutdown, j.finished)
}

func (j *Janitor) run(ticks <-chan time.Time, stopTicker func(), shutdown <-chan struct{}, finished chan<- struct{}) {
	defer close(finished)
	defer stopTicker()
	for {
		select {
		case <-ticks:
			j.store.CleanExpired()
		case <-shutdown:
			return
		}
	}
}

// Stop halts the periodic sweep and waits for the worker to exit.
func (j *Janitor) Stop() {
	j.mu.Lock()
	shutdown, finished := j.shutdown, j.finished
	j.shutdown, j.finished = nil, nil
	j.mu.Unlock()

	if shutdown == nil {
		return
	}
	close(shutdown)
	<-finished
}
