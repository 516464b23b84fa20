// Package server publishes a transactions.json file over HTTP with
// strong entity tags, so clients can revalidate with If-None-Match.
package server

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/julienschmidt/httprouter"
	"github.com/rs/zerolog"
	"github.com/zeebo/blake3"

	"github.com/bix-dev/bixdash/internal/model"
	"github.com/bix-dev/bixdash/internal/source"
)

const shutdownTimeout = 5 * time.Second

// Server serves one JSON file. Its content and entity tag are reloaded
// when the file changes.
type Server struct {
	path string
	log  zerolog.Logger

	mu      sync.RWMutex
	body    []byte
	etag    string
	modTime time.Time
}

// New loads path and returns a Server for it. The file must hold a JSON
// array of transactions.
func New(path string, log zerolog.Logger) (*Server, error) {
	s := &Server{path: path, log: log.With().Str("component", "server").Logger()}
	if err := s.Reload(); err != nil {
		return nil, err
	}
	return s, nil
}

// ETag computes the entity tag of body.
func ETag(body []byte) string {
	sum := blake3.Sum256(body)
	return `"` + hex.EncodeToString(sum[:16]) + `"`
}

// Reload re-reads the file. On failure the previous content is kept.
func (s *Server) Reload() error {
	body, err := os.ReadFile(s.path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", s.path, err)
	}
	var txns []model.Transaction
	if err := json.Unmarshal(body, &txns); err != nil {
		return fmt.Errorf("parsing %s: %w", s.path, err)
	}

	info, err := os.Stat(s.path)
	if err != nil {
		return fmt.Errorf("stat %s: %w", s.path, err)
	}

	etag := ETag(body)
	s.mu.Lock()
	s.body, s.etag, s.modTime = body, etag, info.ModTime()
	s.mu.Unlock()

	s.log.Info().Str("etag", etag).Int("transactions", len(txns)).Msg("loaded transactions")
	return nil
}

// CurrentETag returns the tag of the content being served.
func (s *Server) CurrentETag() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.etag
}

// Handler returns the HTTP routes.
func (s *Server) Handler() http.Handler {
	router := httprouter.New()
	router.GET(source.DefaultPath, s.serveTransactions)
	router.HEAD(source.DefaultPath, s.serveTransactions)
	router.GET("/healthz", func(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok\n"))
	})
	return router
}

func (s *Server) serveTransactions(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	s.mu.RLock()
	body, etag, modTime := s.body, s.etag, s.modTime
	s.mu.RUnlock()

	// ServeContent answers If-None-Match against this header with 304.
	w.Header().Set("ETag", etag)
	w.Header().Set("Cache-Control", "public, max-age=0, must-revalidate")
	http.ServeContent(w, r, filepath.Base(s.path), modTime, bytes.NewReader(body))
}

// Watch reloads the file whenever it is written, created or renamed
// into place. It returns when ctx is done.
func (s *Server) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer watcher.Close()

	// Watch the directory: editors often replace the file instead of
	// writing it in place.
	if err := watcher.Add(filepath.Dir(s.path)); err != nil {
		return fmt.Errorf("watching %s: %w", filepath.Dir(s.path), err)
	}

	target := filepath.Clean(s.path)
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if err := s.Reload(); err != nil {
				s.log.Warn().Err(err).Msg("keeping previous transactions")
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			s.log.Warn().Err(err).Msg("watcher error")
		}
	}
}

// ListenAndServe serves on addr until ctx is done, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", addr).Msg("listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serving %s: %w", addr, err)
	case <-ctx.Done():
	}

	s.log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	return nil
}
