package app

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/llehouerou/marquee/internal/debounce"
	"github.com/llehouerou/marquee/internal/playback"
	"github.com/llehouerou/marquee/internal/state"
	"github.com/llehouerou/marquee/internal/statebus"
)

// progressStore is the part of the resume store fed by TrackProgress.
type progressStore interface {
	SaveProgress(uri string, p state.Progress)
	SaveSeek(uri string, p state.Progress)
}

// progressUpdate is one resume store write derived from a snapshot.
type progressUpdate struct {
	uri      string
	progress state.Progress
	seek     bool
}

// seekJump is the position change between two snapshots of one session
// treated as a seek and written without debounce.
const seekJump = 2 * time.Second

// TrackProgress records the position of every active session in store.
// Writes are debounced by the store; seeks are written immediately. The
// listener runs on the engine goroutine, so store calls must not block.
func TrackProgress(bus *statebus.Bus[playback.Snapshot], store progressStore) (cancel func()) {
	var last playback.Snapshot

	project := func(s *playback.Snapshot) (progressUpdate, bool) {
		prev := last
		last = *s
		if !s.State.IsActive() || s.URI == "" {
			return progressUpdate{}, false
		}
		if prev.SessionID == s.SessionID && prev.Position == s.Position && prev.Duration == s.Duration {
			return progressUpdate{}, false
		}

		jump := s.Position - prev.Position
		return progressUpdate{
			uri:      s.URI,
			progress: state.Progress{Position: s.Position, Duration: s.Duration},
			seek:     prev.SessionID == s.SessionID && (jump > seekJump || jump < -seekJump),
		}, true
	}

	send := func(u progressUpdate) {
		if u.seek {
			store.SaveSeek(u.uri, u.progress)
			return
		}
		store.SaveProgress(u.uri, u.progress)
	}

	return statebus.Subscribe(bus, send, project)
}

// prefSlot names a debounced preference update.
type prefSlot int

const (
	// slotSubtitleScale applies the subtitle scale to the engine.
	slotSubtitleScale prefSlot = iota
	// slotPersist saves preferences to the store.
	slotPersist
)

// preferences debounces subtitle scale changes and preference writes while
// keys are held down.
type preferences struct {
	service playback.Service
	store   state.Interface
	log     zerolog.Logger
	updater *debounce.Updater[prefSlot, state.Preferences]
}

func newPreferences(service playback.Service, store state.Interface, log zerolog.Logger, delay time.Duration, opts ...debounce.Option) *preferences {
	p := &preferences{service: service, store: store, log: log}
	p.updater = debounce.New(delay, p.publish, opts...)
	return p
}

func (p *preferences) publish(slot prefSlot, prefs state.Preferences) {
	switch slot {
	case slotSubtitleScale:
		p.service.SetSubtitleScale(prefs.SubtitleScale)
	case slotPersist:
		if err := p.store.SavePreferences(prefs); err != nil {
			p.log.Warn().Err(err).
				Int("volume", prefs.Volume).
				Float64("subtitle_scale", prefs.SubtitleScale).
				Msg("save preferences")
		}
	}
}

// setScale schedules a subtitle scale change.
func (p *preferences) setScale(prefs state.Preferences) {
	p.updater.Submit(slotSubtitleScale, prefs)
	p.updater.Submit(slotPersist, prefs)
}

// setVolume applies the volume now and schedules its persistence.
func (p *preferences) setVolume(prefs state.Preferences) {
	p.service.SetVolume(prefs.Volume)
	p.updater.Submit(slotPersist, prefs)
}

// pendingScale returns the scale not yet applied to the engine.
func (p *preferences) pendingScale() (float64, bool) {
	prefs, ok := p.updater.Pending(slotSubtitleScale)
	return prefs.SubtitleScale, ok
}

// pending returns the latest preferences not yet saved.
func (p *preferences) pending() (state.Preferences, bool) {
	return p.updater.Pending(slotPersist)
}

// close publishes what is pending and stops the timers.
func (p *preferences) close() {
	p.updater.Flush()
	p.updater.Stop()
}
