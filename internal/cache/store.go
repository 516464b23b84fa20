// Package cache stores expiry-aware entries in a kv.Medium.
//
// Three categories exist, each under a fixed key with its own lifetime:
//
//	Category      Key                      Duration
//	Transactions  bix_transactions_cache   5m
//	Filters       bix_filters              24h
//	AuthToken     bix_auth_token           24h
//
// Read and write failures never leave this package: an unreadable entry
// is removed and reported as absent, a failed write is logged.
package cache

import (
	"encoding/json"
	"time"

	"github.com/rs/zerolog"

	"github.com/bix-dev/bixdash/internal/clock"
	"github.com/bix-dev/bixdash/internal/kv"
)

// Category is a class of cached data.
type Category int

const (
	Transactions Category = iota
	Filters
	AuthToken
)

// Categories lists every category in key order.
var Categories = []Category{Transactions, Filters, AuthToken}

const (
	TransactionsDuration = 5 * time.Minute
	FiltersDuration      = 24 * time.Hour
	AuthTokenDuration    = 24 * time.Hour
)

// Key returns the medium key for c.
func (c Category) Key() string {
	switch c {
	case Transactions:
		return "bix_transactions_cache"
	case Filters:
		return "bix_filters"
	case AuthToken:
		return "bix_auth_token"
	default:
		return ""
	}
}

// Duration returns how long an entry of c stays valid.
func (c Category) Duration() time.Duration {
	switch c {
	case Transactions:
		return TransactionsDuration
	case Filters:
		return FiltersDuration
	case AuthToken:
		return AuthTokenDuration
	default:
		return 0
	}
}

func (c Category) String() string {
	switch c {
	case Transactions:
		return "transactions"
	case Filters:
		return "filters"
	case AuthToken:
		return "auth-token"
	default:
		return "*unknown*"
	}
}

// Entry is the envelope stored for the transactions and filters
// categories. Timestamp is Unix milliseconds at write time.
type Entry[T any] struct {
	Data      T      `json:"data"`
	Timestamp int64  `json:"timestamp"`
	ETag      string `json:"etag,omitempty"`
	Version   string `json:"version,omitempty"`
}

// IsValid reports whether e is younger than d at now. An entry exactly
// d old is expired.
func IsValid[T any](e Entry[T], now time.Time, d time.Duration) bool {
	return clock.Millis(now)-e.Timestamp < d.Milliseconds()
}

// Store is the only component that touches the medium.
type Store struct {
	medium kv.Medium
	clock  clock.Clock
	log    zerolog.Logger
}

// NewStore creates a Store over medium.
func NewStore(medium kv.Medium, clk clock.Clock, log zerolog.Logger) *Store {
	return &Store{medium: medium, clock: clk, log: log.With().Str("component", "cache").Logger()}
}

// Now returns the store's notion of the current time.
func (s *Store) Now() time.Time {
	return s.clock.Now()
}

// Available reports whether the underlying medium can be used.
func (s *Store) Available() bool {
	return kv.Available(s.medium)
}

// Load returns the valid entry of c. Expired or unreadable entries are
// removed and reported as absent.
func Load[T any](s *Store, c Category) (Entry[T], bool) {
	var entry Entry[T]
	if !s.Available() {
		return entry, false
	}

	raw, ok := s.ReadRaw(c)
	if !ok {
		return entry, false
	}
	if err := json.Unmarshal([]byte(raw), &entry); err != nil {
		s.log.Warn().Err(err).Str("key", c.Key()).Msg("error reading cache")
		s.Remove(c)
		return Entry[T]{}, false
	}
	if !IsValid(entry, s.Now(), c.Duration()) {
		s.Remove(c)
		return Entry[T]{}, false
	}
	return entry, true
}

// Save writes e under c. A zero Timestamp is stamped with the current
// time.
func Save[T any](s *Store, c Category, e Entry[T]) {
	if !s.Available() {
		return
	}
	if e.Timestamp == 0 {
		e.Timestamp = clock.Millis(s.Now())
	}
	data, err := json.Marshal(e)
	if err != nil {
		s.log.Warn().Err(err).Str("key", c.Key()).Msg("error saving cache")
		return
	}
	if err := s.WriteRaw(c, string(data)); err != nil {
		s.log.Warn().Err(err).Str("key", c.Key()).Msg("error saving cache")
	}
}

// ReadRaw returns the stored text of c without interpreting it. A read
// error is logged and treated as absent.
func (s *Store) ReadRaw(c Category) (string, bool) {
	raw, ok, err := s.medium.Get(c.Key())
	if err != nil {
		s.log.Warn().Err(err).Str("key", c.Key()).Msg("error reading cache")
		return "", false
	}
	return raw, ok && raw != ""
}

// WriteRaw stores text under c as is.
func (s *Store) WriteRaw(c Category, value string) error {
	return s.medium.Set(c.Key(), value)
}

// Remove deletes c. Failures are logged.
func (s *Store) Remove(c Category) {
	if err := s.medium.Remove(c.Key()); err != nil && s.Available() {
		s.log.Warn().Err(err).Str("key", c.Key()).Msg("error removing cache")
	}
}

// CleanExpired removes expired or unreadable entries. The auth token is
// skipped; its reader applies its own expiry.
func (s *Store) CleanExpired() {
	if !s.Available() {
		return
	}
	now := s.Now()
	for _, c := range Categories {
		if c == AuthToken {
			continue
		}
		raw, ok := s.ReadRaw(c)
		if !ok {
			continue
		}
		var entry Entry[json.RawMessage]
		if err := json.Unmarshal([]byte(raw), &entry); err != nil {
			s.log.Warn().Err(err).Str("key", c.Key()).Msg("error checking cache")
			s.Remove(c)
			continue
		}
		if !IsValid(entry, now, c.Duration()) {
			s.Remove(c)
		}
	}
}

// ClearAll removes every category, the auth token included.
func (s *Store) ClearAll() {
	if !s.Available() {
		return
	}
	for _, c := range Categories {
		s.Remove(c)
	}
}

// Size returns the total byte length of the stored values.
func (s *Store) Size() int {
	if !s.Available() {
		return 0
	}
	total := 0
	for _, c := range Categories {
		if raw, ok := s.ReadRaw(c); ok {
			total += len(raw)
		}
	}
	return total
}
