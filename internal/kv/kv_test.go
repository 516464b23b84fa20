package kv

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// exercise runs the Medium contract against m.
func exercise(t *testing.T, m Medium) {
	t.Helper()

	_, ok, err := m.Get("bix_filters")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, m.Set("bix_filters", `{"data":{}}`))
	v, ok, err := m.Get("bix_filters")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `{"data":{}}`, v)

	require.NoError(t, m.Set("bix_filters", "second"))
	v, _, err = m.Get("bix_filters")
	require.NoError(t, err)
	assert.Equal(t, "second", v, "last write wins")

	require.NoError(t, m.Remove("bix_filters"))
	_, ok, err = m.Get("bix_filters")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, m.Remove("never-written"))
}

func TestMemory(t *testing.T) {
	m := NewMemory()
	exercise(t, m)
	assert.Equal(t, 0, m.Len())
}

func TestLevelDB(t *testing.T) {
	db, err := OpenLevelDB(filepath.Join(t.TempDir(), "store"))
	require.NoError(t, err)
	defer db.Close()
	exercise(t, db)
}

func TestLevelDB_Persists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store")

	db, err := OpenLevelDB(path)
	require.NoError(t, err)
	require.NoError(t, db.Set("bix_auth_token", "tok"))
	require.NoError(t, db.Close())

	db, err = OpenLevelDB(path)
	require.NoError(t, err)
	defer db.Close()
	v, ok, err := db.Get("bix_auth_token")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "tok", v)
}

type fakeMongoStore struct {
	docs map[string]string
	err  error
}

func (f *fakeMongoStore) Lookup(_ context.Context, key string) (string, bool, error) {
	if f.err != nil {
		return "", false, f.err
	}
	v, ok := f.docs[key]
	return v, ok, nil
}

func (f *fakeMongoStore) Upsert(_ context.Context, key, value string) error {
	if f.err != nil {
		return f.err
	}
	f.docs[key] = value
	return nil
}

func (f *fakeMongoStore) Delete(_ context.Context, key string) error {
	if f.err != nil {
		return f.err
	}
	delete(f.docs, key)
	return nil
}

func TestMongo(t *testing.T) {
	m := NewMongo(&fakeMongoStore{docs: map[string]string{}})
	exercise(t, m)
	require.NoError(t, m.Close(context.Background()))
}

func TestMongo_Error(t *testing.T) {
	boom := errors.New("connection reset")
	m := NewMongo(&fakeMongoStore{docs: map[string]string{}, err: boom})
	_, _, err := m.Get("k")
	assert.ErrorIs(t, err, boom)
	assert.ErrorIs(t, m.Set("k", "v"), boom)
}

func TestUnavailable(t *testing.T) {
	m := Unavailable()
	_, _, err := m.Get("k")
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.ErrorIs(t, m.Set("k", "v"), ErrUnavailable)
	assert.ErrorIs(t, m.Remove("k"), ErrUnavailable)

	assert.False(t, Available(m))
	assert.False(t, Available(nil))
	assert.True(t, Available(NewMemory()))
}

func TestOpen_Memory(t *testing.T) {
	m, closeFn, err := Open(context.Background(), Options{Backend: BackendMemory}, zerolog.Nop())
	require.NoError(t, err)
	defer closeFn()
	assert.IsType(t, &Memory{}, m)
}

func TestOpen_LevelDB(t *testing.T) {
	m, closeFn, err := Open(context.Background(), Options{Backend: BackendLevelDB, Path: filepath.Join(t.TempDir(), "db")}, zerolog.Nop())
	require.NoError(t, err)
	defer closeFn()
	assert.IsType(t, &LevelDB{}, m)
}

func TestOpen_UnknownBackend(t *testing.T) {
	_, _, err := Open(context.Background(), Options{Backend: "redis"}, zerolog.Nop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown storage backend")
}

func TestOpen_FallsBackWhenNotRequired(t *testing.T) {
	dir := t.TempDir()
	first, err := OpenLevelDB(dir)
	require.NoError(t, err)
	defer first.Close()

	// The directory is locked by the first handle.
	m, _, err := Open(context.Background(), Options{Backend: BackendLevelDB, Path: dir}, zerolog.Nop())
	require.NoError(t, err)
	assert.False(t, Available(m))

	_, _, err = Open(context.Background(), Options{Backend: BackendLevelDB, Path: dir, Required: true}, zerolog.Nop())
	require.Error(t, err)
}
