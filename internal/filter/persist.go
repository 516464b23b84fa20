package filter

import (
	"github.com/bix-dev/bixdash/internal/cache"
	"github.com/bix-dev/bixdash/internal/model"
)

// FiltersVersion tags persisted filter entries.
const FiltersVersion = "1.0"

// SaveFilters persists f for a day.
func SaveFilters(store *cache.Store, f model.TransactionFilters) {
	cache.Save(store, cache.Filters, cache.Entry[model.TransactionFilters]{
		Data:    f,
		Version: FiltersVersion,
	})
}

// LoadFilters returns the persisted filters, or nil when none are stored
// or the stored entry has expired or cannot be read.
func LoadFilters(store *cache.Store) *model.TransactionFilters {
	entry, ok := cache.Load[model.TransactionFilters](store, cache.Filters)
	if !ok {
		return nil
	}
	return &entry.Data
}

// ClearFilters drops the persisted filters.
func ClearFilters(store *cache.Store) {
	store.Remove(cache.Filters)
}
