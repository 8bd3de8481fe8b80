package state

import (
	"database/sql"
	"time"

	"github.com/llehouerou/marquee/internal/db"
)

const (
	// maxResumeEntries bounds the resume table; the least recently
	// updated rows are pruned past it.
	maxResumeEntries = 500

	// finishedRemaining is how close to the end a position may be before
	// the media counts as watched and its resume entry is dropped.
	finishedRemaining = 30 * time.Second
)

// Progress is a playback position within a media of known or unknown length.
type Progress struct {
	Position time.Duration
	Duration time.Duration // 0 when unknown
}

// Finished reports whether p is close enough to the end to not resume.
func (p Progress) Finished() bool {
	if p.Duration <= 0 {
		return false
	}
	return p.Duration-p.Position <= finishedRemaining
}

// Resume returns the saved position for uri. A position still waiting to be
// written wins over the stored one.
func (m *Manager) Resume(uri string) (time.Duration, bool, error) {
	if p, ok := m.progress.Pending(uri); ok {
		if p.Finished() {
			return 0, false, nil
		}
		return p.Position, true, nil
	}
	p, ok, err := getProgress(m.db, uri)
	if err != nil || !ok {
		return 0, false, err
	}
	return p.Position, true, nil
}

// SaveProgress records the current position for uri. Writes are debounced
// per uri so steady position updates cost one write per quiet period.
func (m *Manager) SaveProgress(uri string, p Progress) {
	if uri == "" {
		return
	}
	m.progress.Submit(uri, p)
}

// SaveSeek records a user seek immediately.
func (m *Manager) SaveSeek(uri string, p Progress) {
	if uri == "" {
		return
	}
	m.progress.PublishNow(uri, p)
}

// Forget drops any saved or pending position for uri.
func (m *Manager) Forget(uri string) error {
	m.progress.Cancel(uri)
	_, err := m.db.Exec(`DELETE FROM resume_positions WHERE uri = ?`, uri)
	return err
}

func getProgress(conn *sql.DB, uri string) (Progress, bool, error) {
	var posMS int64
	var durMS sql.NullInt64
	err := conn.QueryRow(`
		SELECT position_ms, duration_ms FROM resume_positions WHERE uri = ?
	`, uri).Scan(&posMS, &durMS)
	if err == sql.ErrNoRows {
		return Progress{}, false, nil
	}
	if err != nil {
		return Progress{}, false, err
	}
	return Progress{
		Position: time.Duration(posMS) * time.Millisecond,
		Duration: db.MillisValue(durMS),
	}, true, nil
}

func saveProgress(conn *sql.DB, uri string, p Progress, now time.Time) error {
	if p.Finished() || p.Position <= 0 {
		_, err := conn.Exec(`DELETE FROM resume_positions WHERE uri = ?`, uri)
		return err
	}

	return db.WithTx(conn, func(tx *sql.Tx) error {
		_, err := tx.Exec(`
			INSERT INTO resume_positions (uri, position_ms, duration_ms, updated_at)
			VALUES (?, ?, ?, ?)
			ON CONFLICT(uri) DO UPDATE SET
				position_ms = excluded.position_ms,
				duration_ms = excluded.duration_ms,
				updated_at = excluded.updated_at
		`, uri, p.Position.Milliseconds(), db.NullMillis(p.Duration), now.UnixNano())
		if err != nil {
			return err
		}

		_, err = tx.Exec(`
			DELETE FROM resume_positions WHERE uri NOT IN (
				SELECT uri FROM resume_positions ORDER BY updated_at DESC LIMIT ?
			)
		`, maxResumeEntries)
		return err
	})
}
