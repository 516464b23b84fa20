// Package kv provides the synchronous key-value media the cache store
// persists into. Values are JSON text; a medium never interprets them
// and never expires them.
package kv

import "errors"

// ErrUnavailable is returned by every operation of a medium that could
// not be opened.
var ErrUnavailable = errors.New("storage medium unavailable")

// Medium is a synchronous string key-value store.
type Medium interface {
	// Get returns the value for key. A missing key is ("", false, nil).
	Get(key string) (string, bool, error)
	Set(key, value string) error
	// Remove deletes key. Removing a missing key is not an error.
	Remove(key string) error
}

// Available reports whether m can be used at all. It is the single
// capability check the application boundary performs.
func Available(m Medium) bool {
	_, ok := m.(unavailable)
	return m != nil && !ok
}

// Unavailable returns a medium that fails every operation.
func Unavailable() Medium { return unavailable{} }

type unavailable struct{}

func (unavailable) Get(string) (string, bool, error) { return "", false, ErrUnavailable }
func (unavailable) Set(string, string) error         { return ErrUnavailable }
func (unavailable) Remove(string) error              { return ErrUnavailable }
