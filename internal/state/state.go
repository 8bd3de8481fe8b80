// Package state persists resume positions and playback preferences.
package state

import (
	"database/sql"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/llehouerou/marquee/internal/debounce"
	"github.com/llehouerou/marquee/internal/errmsg"
)

const (
	dbFileName   = "marquee.db"
	saveDebounce = 500 * time.Millisecond
)

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the logger used for background save failures.
func WithLogger(log zerolog.Logger) Option {
	return func(m *Manager) { m.log = log }
}

// WithSaveOptions forwards options to the progress debouncer.
func WithSaveOptions(opts ...debounce.Option) Option {
	return func(m *Manager) { m.saveOpts = append(m.saveOpts, opts...) }
}

type Manager struct {
	db       *sql.DB
	log      zerolog.Logger
	saveOpts []debounce.Option
	progress *debounce.Updater[string, Progress]
}

// Open opens (creating if needed) the state database inside dir.
func Open(dir string, opts ...Option) (*Manager, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrap(err, "create state dir")
	}
	return OpenPath(filepath.Join(dir, dbFileName), opts...)
}

// OpenPath opens the state database at path. ":memory:" is accepted.
func OpenPath(path string, opts ...Option) (*Manager, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.Wrap(err, "open state db")
	}
	// A single connection keeps ":memory:" databases shared and serialises
	// writes from the debouncer with the caller's.
	db.SetMaxOpenConns(1)

	if err := initSchema(db); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "init state schema")
	}

	return newManager(db, opts...), nil
}

func newManager(db *sql.DB, opts ...Option) *Manager {
	m := &Manager{db: db, log: zerolog.Nop()}
	for _, opt := range opts {
		opt(m)
	}
	m.progress = debounce.New(saveDebounce, m.publishProgress, m.saveOpts...)
	return m
}

// Close flushes pending progress and closes the database.
func (m *Manager) Close() error {
	m.progress.Flush()
	m.progress.Stop()
	return m.db.Close()
}

func (m *Manager) DB() *sql.DB {
	return m.db
}

func (m *Manager) publishProgress(uri string, p Progress) {
	if err := saveProgress(m.db, uri, p, time.Now()); err != nil {
		m.log.Warn().Err(err).Str("uri", uri).Msg(string(errmsg.OpResumeSave))
	}
}
