package kv

import (
	"errors"
	"fmt"

	"github.com/syndtr/goleveldb/leveldb"
)

// LevelDB is an on-disk medium.
type LevelDB struct {
	db *leveldb.DB
}

// OpenLevelDB opens (creating if needed) the database at path.
func OpenLevelDB(path string) (*LevelDB, error) {
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, fmt.Errorf("opening leveldb %s: %w", path, err)
	}
	return &LevelDB{db: db}, nil
}

func (l *LevelDB) Get(key string) (string, bool, error) {
	v, err := l.db.Get([]byte(key), nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("reading %s: %w", key, err)
	}
	return string(v), true, nil
}

func (l *LevelDB) Set(key, value string) error {
	if err := l.db.Put([]byte(key), []byte(value), nil); err != nil {
		return fmt.Errorf("writing %s: %w", key, err)
	}
	return nil
}

func (l *LevelDB) Remove(key string) error {
	if err := l.db.Delete([]byte(key), nil); err != nil {
		return fmt.Errorf("deleting %s: %w", key, err)
	}
	return nil
}

// Close releases the database.
func (l *LevelDB) Close() error {
	return l.db.Close()
}
