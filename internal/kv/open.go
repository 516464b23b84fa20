package kv

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
)

// Backend names accepted by Open.
const (
	BackendLevelDB = "leveldb"
	BackendMemory  = "memory"
	BackendMongo   = "mongo"
)

// Options selects and locates a medium.
type Options struct {
	Backend  string
	Path     string // leveldb directory
	MongoURI string
	MongoDB  string
	// Required makes an open failure fatal. Otherwise Open falls back to
	// Unavailable and the rest of the program runs without a cache.
	Required bool
}

// Open returns the configured medium and a function releasing it.
func Open(ctx context.Context, opts Options, log zerolog.Logger) (Medium, func() error, error) {
	noop := func() error { return nil }

	var (
		m       Medium
		closeFn = noop
		err     error
	)
	switch opts.Backend {
	case BackendMemory:
		m = NewMemory()
	case BackendLevelDB, "":
		var db *LevelDB
		db, err = OpenLevelDB(opts.Path)
		if err == nil {
			m, closeFn = db, db.Close
		}
	case BackendMongo:
		var mg *Mongo
		mg, err = ConnectMongo(ctx, opts.MongoURI, opts.MongoDB)
		if err == nil {
			m = mg
			closeFn = func() error { return mg.Close(context.Background()) }
		}
	default:
		return nil, noop, fmt.Errorf("unknown storage backend %q", opts.Backend)
	}

	if err != nil {
		if opts.Required {
			return nil, noop, err
		}
		log.Warn().Err(err).Str("backend", opts.Backend).Msg("storage unavailable, running without cache")
		return Unavailable(), noop, nil
	}
	return m, closeFn, nil
}
