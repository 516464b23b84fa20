package kv

import (
	gocache "github.com/patrickmn/go-cache"
)

// Memory is an in-process medium. It lives as long as the process, the
// way browser storage lives as long as the tab.
type Memory struct {
	items *gocache.Cache
}

// NewMemory returns an empty in-memory medium.
func NewMemory() *Memory {
	// No default expiry and no janitor: expiry belongs to the cache store.
	return &Memory{items: gocache.New(gocache.NoExpiration, 0)}
}

func (m *Memory) Get(key string) (string, bool, error) {
	v, ok := m.items.Get(key)
	if !ok {
		return "", false, nil
	}
	s, _ := v.(string)
	return s, true, nil
}

func (m *Memory) Set(key, value string) error {
	m.items.Set(key, value, gocache.NoExpiration)
	return nil
}

func (m *Memory) Remove(key string) error {
	m.items.Delete(key)
	return nil
}

// Len returns the number of stored keys.
func (m *Memory) Len() int {
	return m.items.ItemCount()
}
