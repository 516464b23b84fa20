// Package transactions serves the transaction collection with
// stale-while-revalidate semantics: a valid cached copy is shown at
// once and checked against the origin in the background; without one
// the collection is fetched in the foreground.
package transactions

import (
	"context"
	"net/http"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/bix-dev/bixdash/internal/cache"
	"github.com/bix-dev/bixdash/internal/model"
	"github.com/bix-dev/bixdash/internal/source"
)

// State is the loader's position in its lifecycle.
type State int

const (
	Idle State = iota
	LoadingFromNetwork
	Ready
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "Idle"
	case LoadingFromNetwork:
		return "LoadingFromNetwork"
	case Ready:
		return "Ready"
	case Failed:
		return "Failed"
	default:
		return "*Unknown*"
	}
}

// Snapshot is a consistent view of the loader. Transactions must be
// treated as read-only.
//
// A mount served from cache reports Ready at once; Revalidating stays
// set until the background check against the origin has finished.
type Snapshot struct {
	State        State
	Transactions []model.Transaction
	Err          string
	Loading      bool
	Revalidating bool
}

// Servable reports whether the snapshot holds data that can be shown.
func (s Snapshot) Servable() bool {
	return s.State == Ready
}

// Loader owns the in-memory transaction collection.
type Loader struct {
	store   *cache.Store
	fetcher source.Fetcher
	log     zerolog.Logger

	foreground singleflight.Group
	background sync.WaitGroup

	mu         sync.Mutex
	state      State
	txns       []model.Transaction
	errMsg     string
	generation   uint64
	revalidating bool
	unmounted    bool
	listeners  map[int]func(Snapshot)
	nextID     int
}

// New returns an Idle loader.
func New(store *cache.Store, fetcher source.Fetcher, log zerolog.Logger) *Loader {
	return &Loader{
		store:     store,
		fetcher:   fetcher,
		log:       log.With().Str("component", "transactions").Logger(),
		txns:      []model.Transaction{},
		listeners: make(map[int]func(Snapshot)),
	}
}

// Snapshot returns the current view.
func (l *Loader) Snapshot() Snapshot {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.snapshotLocked()
}

func (l *Loader) snapshotLocked() Snapshot {
	return Snapshot{
		State:        l.state,
		Transactions: l.txns,
		Err:          l.errMsg,
		Loading:      l.state == LoadingFromNetwork,
		Revalidating: l.revalidating,
	}
}

// OnChange registers fn to be called after every state change. The
// returned function unregisters it.
func (l *Loader) OnChange(fn func(Snapshot)) func() {
	l.mu.Lock()
	defer l.mu.Unlock()
	id := l.nextID
	l.nextID++
	l.listeners[id] = fn
	return func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		delete(l.listeners, id)
	}
}

func (l *Loader) notify() {
	l.mu.Lock()
	snap := l.snapshotLocked()
	fns := make([]func(Snapshot), 0, len(l.listeners))
	for _, fn := range l.listeners {
		fns = append(fns, fn)
	}
	l.mu.Unlock()

	for _, fn := range fns {
		fn(snap)
	}
}

// Mount loads the collection. With a valid cache entry it returns at
// once with the cached data and revalidates in the background;
// otherwise it fetches in the foreground and returns the outcome.
func (l *Loader) Mount(ctx context.Context) Snapshot {
	entry, ok := cache.Load[[]model.Transaction](l.store, cache.Transactions)

	l.mu.Lock()
	l.generation++
	gen := l.generation
	l.unmounted = false
	if ok {
		l.txns = entry.Data
		l.errMsg = ""
		l.state = Ready
		l.revalidating = true
	}
	l.mu.Unlock()

	if !ok {
		return l.load(ctx, source.ModeDefault)
	}

	l.notify()
	l.background.Add(1)
	// Background revalidation is never cancelled.
	go l.revalidate(context.WithoutCancel(ctx), gen, entry)
	return l.Snapshot()
}

// Refresh drops the cached entry and reloads from the origin, bypassing
// HTTP caches. A background revalidation still in flight is superseded.
func (l *Loader) Refresh(ctx context.Context) Snapshot {
	// revalidate checks the generation under the same lock before saving.
	l.mu.Lock()
	l.generation++
	l.revalidating = false
	l.store.Remove(cache.Transactions)
	l.mu.Unlock()

	return l.load(ctx, source.ModeReload)
}

// Close marks the loader unmounted. In-flight revalidation still
// completes and is still applied.
func (l *Loader) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.unmounted = true
}

// Wait blocks until background revalidation has finished.
func (l *Loader) Wait() {
	l.background.Wait()
}

func (l *Loader) load(ctx context.Context, mode source.Mode) Snapshot {
	l.mu.Lock()
	l.state = LoadingFromNetwork
	l.mu.Unlock()
	l.notify()

	v, err, shared := l.foreground.Do("transactions", func() (any, error) {
		resp, err := l.fetcher.Fetch(ctx, source.Request{Mode: mode})
		if err == nil && resp.NotModified {
			// No precondition was sent, so there is nothing to keep.
			return nil, &source.FetchError{Status: http.StatusNotModified}
		}
		return resp, err
	})
	if shared {
		l.log.Debug().Str("mode", mode.String()).Msg("joined in-flight fetch")
	}

	l.mu.Lock()
	switch {
	case err != nil:
		l.txns = []model.Transaction{}
		l.errMsg = err.Error()
		l.state = Failed
	default:
		resp := v.(source.Response)
		l.txns = resp.Transactions
		cache.Save(l.store, cache.Transactions, cache.Entry[[]model.Transaction]{
			Data: resp.Transactions,
			ETag: resp.ETag,
		})
		l.errMsg = ""
		l.state = Ready
	}
	l.mu.Unlock()
	l.notify()

	if err != nil {
		l.log.Error().Err(err).Str("mode", mode.String()).Msg("loading transactions")
	}
	return l.Snapshot()
}

func (l *Loader) revalidate(ctx context.Context, gen uint64, cached cache.Entry[[]model.Transaction]) {
	defer l.background.Done()

	resp, err := l.fetcher.Fetch(ctx, source.Request{Mode: source.ModeRevalidate, ETag: cached.ETag})

	l.mu.Lock()
	if gen != l.generation {
		l.mu.Unlock()
		l.log.Debug().Msg("discarding superseded revalidation")
		return
	}
	if l.unmounted {
		l.log.Debug().Msg("applying revalidation after unmount")
	}

	switch {
	case err != nil:
		l.log.Warn().Err(err).Msg("error in background update")
	case resp.NotModified:
		// Unchanged upstream: renew the entry's lifetime only.
		cache.Save(l.store, cache.Transactions, cache.Entry[[]model.Transaction]{
			Data: cached.Data,
			ETag: cached.ETag,
		})
	default:
		l.txns = resp.Transactions
		cache.Save(l.store, cache.Transactions, cache.Entry[[]model.Transaction]{
			Data: resp.Transactions,
			ETag: resp.ETag,
		})
	}
	l.state = Ready
	l.revalidating = false
	l.mu.Unlock()
	l.notify()
}
