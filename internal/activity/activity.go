// Package activity keeps an append-only CSV trail of user-visible
// actions: logins, logouts, refreshes and cache maintenance.
package activity

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/rs/zerolog"

	"github.com/bix-dev/bixdash/internal/clock"
)

// Action names a recorded event.
type Action string

const (
	ActionLogin       Action = "login"
	ActionLoginFailed Action = "login_failed"
	ActionLogout      Action = "logout"
	ActionRefresh     Action = "refresh"
	ActionClean       Action = "clean"
	ActionClear       Action = "clear"
	ActionExport      Action = "export"
)

// Entry is one row in the activity log.
type Entry struct {
	Timestamp time.Time
	Actor     string
	Action    Action
	Details   string
}

// header is the first row of activity.csv.
var header = []string{"timestamp", "actor", "action", "details"}

// Path returns the log file location under dir.
func Path(dir string) string {
	return filepath.Join(dir, "logs", "activity.csv")
}

func (e Entry) row() []string {
	return []string{e.Timestamp.UTC().Format(time.RFC3339), e.Actor, string(e.Action), e.Details}
}

func parseRow(row []string) (Entry, error) {
	ts, err := time.Parse(time.RFC3339, row[0])
	if err != nil {
		return Entry{}, fmt.Errorf("parsing timestamp %q: %w", row[0], err)
	}
	return Entry{Timestamp: ts, Actor: row[1], Action: Action(row[2]), Details: row[3]}, nil
}

// Append adds e to <dir>/logs/activity.csv, creating the file with its
// header on first use.
func Append(dir string, e Entry) error {
	path := Path(dir)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating logs dir: %w", err)
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening activity log: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("checking activity log: %w", err)
	}

	cw := csv.NewWriter(f)
	if info.Size() == 0 {
		if err := cw.Write(header); err != nil {
			return fmt.Errorf("writing header: %w", err)
		}
	}
	if err := cw.Write(e.row()); err != nil {
		return fmt.Errorf("writing entry: %w", err)
	}
	cw.Flush()
	return cw.Error()
}

// Query selects entries from the trail. Zero fields match everything.
type Query struct {
	Actor  string
	Action Action
	// Limit keeps only the most recent matches.
	Limit int
}

func (q Query) matches(e Entry) bool {
	return (q.Actor == "" || e.Actor == q.Actor) && (q.Action == "" || e.Action == q.Action)
}

// Read returns the entries matching q, oldest first. A missing file
// yields no entries.
func Read(dir string, q Query) ([]Entry, error) {
	f, err := os.Open(Path(dir))
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening activity log: %w", err)
	}
	defer f.Close()

	return scan(f, q)
}

func scan(r io.Reader, q Query) ([]Entry, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(header)

	first, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading activity header: %w", err)
	}
	if !slices.Equal(first, header) {
		return nil, fmt.Errorf("unexpected activity header %q", first)
	}

	var entries []Entry
	for line := 2; ; line++ {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading activity CSV: %w", err)
		}
		e, err := parseRow(row)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", line, err)
		}
		if !q.matches(e) {
			continue
		}
		entries = append(entries, e)
		if q.Limit > 0 && len(entries) > q.Limit {
			entries = entries[1:]
		}
	}
	return entries, nil
}

// Recorder appends entries stamped with its clock. Failures are logged
// as warnings and never returned: the trail must not block the action it
// records. A Recorder with an empty dir records nothing.
type Recorder struct {
	dir   string
	clock clock.Clock
	log   zerolog.Logger
}

// NewRecorder returns a Recorder writing under dir.
func NewRecorder(dir string, clk clock.Clock, log zerolog.Logger) *Recorder {
	return &Recorder{dir: dir, clock: clk, log: log.With().Str("component", "activity").Logger()}
}

// Dir is where the trail is kept; empty when recording is disabled.
func (r *Recorder) Dir() string {
	if r == nil {
		return ""
	}
	return r.dir
}

// Record appends one entry.
func (r *Recorder) Record(actor string, action Action, details string) {
	if r == nil || r.dir == "" {
		return
	}
	e := Entry{Timestamp: r.clock.Now(), Actor: actor, Action: action, Details: details}
	if err := Append(r.dir, e); err != nil {
		r.log.Warn().Err(err).Str("action", string(action)).Msg("error recording activity")
	}
}
