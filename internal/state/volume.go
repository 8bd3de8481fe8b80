package state

import "database/sql"

// Preferences holds the persisted playback preferences.
type Preferences struct {
	Volume        int // percent
	SubtitleScale float64
}

// DefaultPreferences is returned when nothing was saved yet.
var DefaultPreferences = Preferences{Volume: 100, SubtitleScale: 1.0}

// GetPreferences returns the saved playback preferences.
func (m *Manager) GetPreferences() (Preferences, error) {
	var p Preferences

	row := m.db.QueryRow(`SELECT volume, subtitle_scale FROM preferences WHERE id = 1`)
	err := row.Scan(&p.Volume, &p.SubtitleScale)
	if err == sql.ErrNoRows {
		return DefaultPreferences, nil
	}
	if err != nil {
		return Preferences{}, err
	}

	return p, nil
}

// SavePreferences persists the playback preferences.
func (m *Manager) SavePreferences(p Preferences) error {
	_, err := m.db.Exec(`
		INSERT INTO preferences (id, volume, subtitle_scale)
		VALUES (1, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			volume = excluded.volume,
			subtitle_scale = excluded.subtitle_scale
	`, p.Volume, p.SubtitleScale)
	return err
}
