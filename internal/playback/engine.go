package playback

import (
	"context"
	"math"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/llehouerou/marquee/internal/errmsg"
	"github.com/llehouerou/marquee/internal/lang"
	"github.com/llehouerou/marquee/internal/player"
	"github.com/llehouerou/marquee/internal/statebus"
)

const (
	// DefaultPollInterval is the position poll period for poll-telemetry
	// backends while playing.
	DefaultPollInterval = 500 * time.Millisecond

	commandBufferSize = 16
)

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the engine logger.
func WithLogger(log zerolog.Logger) Option {
	return func(e *Engine) { e.log = log }
}

// WithPollInterval overrides DefaultPollInterval.
func WithPollInterval(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.pollInterval = d
		}
	}
}

// WithLanguageLookup sets the track label resolver.
func WithLanguageLookup(l LanguageLookup) Option {
	return func(e *Engine) { e.lookup = l }
}

// WithBus publishes telemetry on b instead of a private bus.
func WithBus(b *statebus.Bus[Snapshot]) Option {
	return func(e *Engine) { e.bus = b }
}

// WithVolume sets the initial volume (0-100) applied to every session.
func WithVolume(percent int) Option {
	return func(e *Engine) { e.volume = clampPercent(percent) }
}

// WithSubtitleScale sets the initial subtitle scale applied to every session.
func WithSubtitleScale(factor float64) Option {
	return func(e *Engine) { e.scale = player.ClampSubtitleScale(factor) }
}

// WithSessionIDs overrides session id generation.
func WithSessionIDs(next func() string) Option {
	return func(e *Engine) { e.newSessionID = next }
}

// Engine runs one playback session at a time against backends from a
// factory.
//
// A single owner goroutine holds the backend. Command methods enqueue work
// for it and return immediately; only Load waits, so that initialization
// failures are returned to the caller. Telemetry is published on Bus and
// normalized events are queued for Drain.
type Engine struct {
	factory      player.Factory
	log          zerolog.Logger
	bus          *statebus.Bus[Snapshot]
	events       *eventQueue
	lookup       LanguageLookup
	pollInterval time.Duration
	newSessionID func() string

	cmds      chan func()
	closing   chan struct{}
	done      chan struct{}
	closeOnce sync.Once

	// Owned by the loop goroutine.
	backend      player.Backend
	telemetry    player.Telemetry
	signals      <-chan player.Signal
	ticker       *time.Ticker
	tick         <-chan time.Time
	snap         Snapshot
	volume       int
	scale        float64
	pendingStart time.Duration
}

// New creates an engine and starts its owner goroutine.
func New(factory player.Factory, opts ...Option) *Engine {
	e := &Engine{
		factory:      factory,
		log:          zerolog.Nop(),
		events:       newEventQueue(),
		lookup:       lang.English(),
		pollInterval: DefaultPollInterval,
		newSessionID: uuid.NewString,
		cmds:         make(chan func(), commandBufferSize),
		closing:      make(chan struct{}),
		done:         make(chan struct{}),
		volume:       100,
		scale:        1,
	}
	for _, opt := range opts {
		opt(e)
	}

	e.snap = e.idleSnapshot()
	if e.bus == nil {
		e.bus = statebus.New(e.snap)
	} else {
		e.publish()
	}

	go e.loop()
	return e
}

func (e *Engine) loop() {
	defer close(e.done)
	for {
		select {
		case fn := <-e.cmds:
			fn()
		case sig := <-e.signals:
			e.handleSignal(sig)
		case <-e.tick:
			e.poll()
		case <-e.closing:
			e.release()
			return
		}
	}
}

// do hands fn to the owner goroutine. It reports false once the engine is
// closing.
func (e *Engine) do(fn func()) bool {
	select {
	case <-e.closing:
		return false
	default:
	}
	select {
	case e.cmds <- fn:
		return true
	case <-e.closing:
		return false
	}
}

// Bus returns the telemetry bus.
func (e *Engine) Bus() *statebus.Bus[Snapshot] { return e.bus }

// Snapshot returns the latest published telemetry.
func (e *Engine) Snapshot() Snapshot { return e.bus.Read() }

// Drain returns the events queued since the last call.
func (e *Engine) Drain() []Event { return e.events.drain() }

// Pending is signaled when events become available for Drain.
func (e *Engine) Pending() <-chan struct{} { return e.events.notify }

// Load starts a session for uri, replacing the current one. start is
// applied once the media first reports ready. The returned error is a
// *BackendInitError when the backend could not be created or opened.
func (e *Engine) Load(ctx context.Context, uri string, start time.Duration) error {
	reply := make(chan error, 1)
	select {
	case e.cmds <- func() { reply <- e.load(uri, start) }:
	case <-e.closing:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case err := <-reply:
		return err
	case <-e.done:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Unload ends the current session. It is a no-op when idle.
func (e *Engine) Unload() {
	e.do(func() {
		if e.backend == nil && e.snap.State == StateIdle {
			return
		}
		e.release()
		e.snap = e.idleSnapshot()
		e.publish()
	})
}

func (e *Engine) Play() {
	e.do(func() { e.setPlaying(true) })
}

func (e *Engine) Pause() {
	e.do(func() { e.setPlaying(false) })
}

// Toggle flips between playing and paused. Ended media restarts.
func (e *Engine) Toggle() {
	e.do(func() {
		switch e.snap.State {
		case StatePlaying:
			e.setPlaying(false)
		case StatePaused, StateEnded:
			e.setPlaying(true)
		}
	})
}

// Seek moves to position, clamped to [0, duration]. Without a session it
// is a no-op; while loading it replaces the pending start offset.
func (e *Engine) Seek(position time.Duration) {
	e.do(func() { e.seek(position) })
}

// SeekBy moves relative to the current position.
func (e *Engine) SeekBy(delta time.Duration) {
	e.do(func() { e.seek(e.snap.Position + delta) })
}

// SetVolume sets the volume in percent, clamped to 0-100. The level also
// applies to later sessions.
func (e *Engine) SetVolume(percent int) {
	e.do(func() {
		e.volume = clampPercent(percent)
		if e.backend != nil {
			if err := e.backend.SetVolume(float64(e.volume) / 100); err != nil {
				e.log.Warn().Err(err).Int("volume", e.volume).Msg("set volume")
			}
		}
		if e.snap.Volume != e.volume {
			e.snap.Volume = e.volume
			e.publish()
		}
	})
}

// SelectTextTrack activates the subtitle track id, or disables subtitles
// with NoTrack.
func (e *Engine) SelectTextTrack(id int) {
	e.do(func() { e.selectTrack(player.KindText, id) })
}

// SelectAudioTrack activates the audio track id.
func (e *Engine) SelectAudioTrack(id int) {
	e.do(func() { e.selectTrack(player.KindAudio, id) })
}

// SetSubtitleScale sets the subtitle size factor, clamped to
// [player.MinSubtitleScale, player.MaxSubtitleScale].
func (e *Engine) SetSubtitleScale(factor float64) {
	e.do(func() {
		e.scale = player.ClampSubtitleScale(factor)
		if e.backend != nil {
			if err := e.backend.SetSubtitleScale(e.scale); err != nil {
				e.log.Warn().Err(err).Float64("scale", e.scale).Msg("set subtitle scale")
			}
		}
		if e.snap.SubtitleScale != e.scale {
			e.snap.SubtitleScale = e.scale
			e.publish()
		}
	})
}

// Close releases the backend and stops the owner goroutine. Queued events
// remain available to Drain.
func (e *Engine) Close() error {
	e.closeOnce.Do(func() { close(e.closing) })
	<-e.done
	return nil
}

// Owner goroutine below.

func (e *Engine) idleSnapshot() Snapshot {
	return Snapshot{
		State:         StateIdle,
		Volume:        e.volume,
		SubtitleScale: e.scale,
	}
}

func (e *Engine) publish() {
	next := e.snap
	e.bus.Write(func(Snapshot) Snapshot { return next })
}

func (e *Engine) load(uri string, start time.Duration) error {
	// The old handle is gone before a new one is created.
	e.release()

	log := e.log.With().Str("uri", uri).Logger()

	backend, err := e.factory.Create()
	if err != nil {
		log.Error().Err(err).Msg("create backend")
		e.snap = e.idleSnapshot()
		e.publish()
		return &BackendInitError{URI: uri, Err: err}
	}

	if err := backend.SetVolume(float64(e.volume) / 100); err != nil {
		log.Warn().Err(err).Msg("apply volume")
	}
	if err := backend.SetSubtitleScale(e.scale); err != nil {
		log.Warn().Err(err).Msg("apply subtitle scale")
	}

	if err := backend.Open(uri); err != nil {
		log.Error().Err(err).Msg(string(errmsg.OpPlaybackStart))
		if cerr := backend.Close(); cerr != nil {
			log.Warn().Err(cerr).Msg("close backend")
		}
		e.snap = e.idleSnapshot()
		e.publish()
		return &BackendInitError{URI: uri, Err: err}
	}

	e.backend = backend
	e.telemetry = backend.Telemetry()
	e.signals = backend.Signals()
	e.pendingStart = max(start, 0)
	e.snap = Snapshot{
		SessionID:     e.newSessionID(),
		URI:           uri,
		State:         StateLoading,
		Volume:        e.volume,
		SubtitleScale: e.scale,
	}
	log.Info().
		Str("session", e.snap.SessionID).
		Stringer("telemetry", e.telemetry).
		Dur("start", e.pendingStart).
		Msg("session started")
	e.publish()
	return nil
}

// release stops the poll ticker and detaches signals, then closes the
// backend.
func (e *Engine) release() {
	e.stopTicker()
	e.signals = nil
	e.pendingStart = 0

	if e.backend == nil {
		return
	}
	backend := e.backend
	e.backend = nil
	if err := backend.Close(); err != nil {
		e.log.Warn().Err(err).Str("session", e.snap.SessionID).Msg("close backend")
	}
	e.log.Debug().Str("session", e.snap.SessionID).Msg("session released")
}

func (e *Engine) setPlaying(playing bool) {
	if e.backend == nil {
		return
	}
	if e.snap.State == StateEnded && playing {
		// Play after the end restarts from the beginning.
		e.seek(0)
	}
	if !e.snap.State.IsActive() {
		return
	}
	var err error
	if playing {
		err = e.backend.Play()
	} else {
		err = e.backend.Pause()
	}
	if err != nil {
		e.log.Warn().Err(err).Bool("playing", playing).Msg("set playing")
		return
	}
	if e.setPaused(!playing) {
		e.publish()
	}
}

// setPaused updates the paused flag and the active state. It reports
// whether anything changed.
func (e *Engine) setPaused(paused bool) bool {
	changed := e.snap.Paused != paused
	e.snap.Paused = paused
	if e.snap.State.IsActive() {
		next := StatePlaying
		if paused {
			next = StatePaused
		}
		if e.snap.State != next {
			e.snap.State = next
			changed = true
		}
		if changed {
			e.events.push(PauseChanged{Paused: paused})
		}
	}
	e.updateTicker()
	return changed
}

func (e *Engine) seek(position time.Duration) {
	switch {
	case e.backend == nil:
		e.log.Debug().Dur("position", position).Msg("seek without session ignored")
		return
	case e.snap.State == StateLoading:
		e.pendingStart = max(position, 0)
		return
	case !e.snap.State.CanSeek():
		return
	}

	position = e.clampPosition(position)
	if err := e.backend.Seek(position); err != nil {
		e.log.Warn().Err(err).Dur("position", position).Msg(string(errmsg.OpPlaybackSeek))
		return
	}
	if e.snap.State == StateEnded {
		e.leaveEnded()
	}
	e.snap.Position = position.Truncate(time.Millisecond)
	e.events.push(PositionChanged{Position: e.snap.Position, Duration: e.snap.Duration})
	e.publish()
}

// leaveEnded re-enters Playing or Paused after a seek back into ended media.
// The backend is still held, so only the state and the ticker change.
func (e *Engine) leaveEnded() {
	paused := e.backend.Paused()
	e.snap.Paused = paused
	e.snap.State = StatePlaying
	if paused {
		e.snap.State = StatePaused
	}
	e.events.push(PauseChanged{Paused: paused})
	e.updateTicker()
	e.log.Debug().Str("session", e.snap.SessionID).Stringer("state", e.snap.State).Msg("resumed after end")
}

func (e *Engine) clampPosition(position time.Duration) time.Duration {
	if position < 0 {
		return 0
	}
	if e.snap.Duration > 0 && position > e.snap.Duration {
		return e.snap.Duration
	}
	return position
}

func (e *Engine) selectTrack(kind player.Kind, id int) {
	if e.backend == nil || !e.snap.State.IsActive() {
		return
	}
	tracks := e.snap.Tracks(kind)
	if id != NoTrack && !hasTrack(tracks, id) {
		err := &TrackSelectionError{Kind: kind, ID: id, Err: errUnknownTrack}
		e.log.Warn().Err(err).Msg(string(errmsg.OpTrackSelect))
		return
	}
	if err := e.backend.SelectStream(kind, id); err != nil {
		e.log.Warn().Err(&TrackSelectionError{Kind: kind, ID: id, Err: err}).Msg(string(errmsg.OpTrackSelect))
		return
	}
	if e.refreshTracks() {
		e.publish()
	}
}

func (e *Engine) handleSignal(sig player.Signal) {
	if e.backend == nil {
		return
	}
	e.log.Trace().Stringer("signal", sig.Kind).Msg("backend signal")

	changed := false
	switch sig.Kind {
	case player.SignalStateChanged:
		if e.snap.State == StateLoading {
			e.ready()
			changed = true
			break
		}
		if !e.snap.State.IsActive() {
			break
		}
		changed = e.setPaused(e.backend.Paused())
		changed = e.refreshDuration() || changed
		changed = e.refreshTracks() || changed

	case player.SignalBuffering:
		buffering := sig.Percent < 100
		if e.snap.Buffering != buffering {
			e.snap.Buffering = buffering
			e.events.push(BufferingChanged{Buffering: buffering})
			changed = true
		}

	case player.SignalPropertyChanged:
		if sig.Property == "volume" {
			volume := clampPercent(int(math.Round(e.backend.Volume() * 100)))
			if volume != e.snap.Volume {
				e.volume = volume
				e.snap.Volume = volume
				changed = true
			}
		}

	case player.SignalTracksChanged:
		changed = e.refreshTracks()

	case player.SignalPosition:
		changed = e.setPosition(sig.Position)

	case player.SignalDuration:
		if sig.Duration != e.snap.Duration {
			e.snap.Duration = sig.Duration.Truncate(time.Millisecond)
			e.events.push(PositionChanged{Position: e.snap.Position, Duration: e.snap.Duration})
			changed = true
		}

	case player.SignalPause:
		changed = e.setPaused(sig.Paused)

	case player.SignalEndOfStream:
		if e.snap.State == StateEnded {
			break
		}
		e.snap.State = StateEnded
		e.snap.Buffering = false
		e.stopTicker()
		e.events.push(Ended{})
		e.log.Info().Str("session", e.snap.SessionID).Msg("end of stream")
		changed = true

	case player.SignalError:
		err := &PlaybackError{Category: ClassifyError(sig.Err), Err: sig.Err}
		e.snap.State = StateErrored
		e.snap.Buffering = false
		e.stopTicker()
		e.events.push(Error{Err: err})
		e.log.Error().Err(err).Str("session", e.snap.SessionID).Stringer("category", err.Category).Msg("playback error")
		changed = true
	}

	if changed {
		e.publish()
	}
}

// ready runs on the first readiness signal of a session.
func (e *Engine) ready() {
	paused := e.backend.Paused()
	e.snap.Paused = paused
	e.snap.State = StatePlaying
	if paused {
		e.snap.State = StatePaused
	}
	e.refreshDuration()
	e.refreshTracks()
	e.events.push(PauseChanged{Paused: paused})

	if e.pendingStart > 0 {
		start := e.clampPosition(e.pendingStart)
		e.pendingStart = 0
		if err := e.backend.Seek(start); err != nil {
			e.log.Warn().Err(err).Dur("start", start).Msg("apply start offset")
		} else {
			e.snap.Position = start.Truncate(time.Millisecond)
		}
	}
	e.events.push(PositionChanged{Position: e.snap.Position, Duration: e.snap.Duration})
	e.updateTicker()

	e.log.Debug().
		Str("session", e.snap.SessionID).
		Stringer("state", e.snap.State).
		Dur("duration", e.snap.Duration).
		Int("text_tracks", len(e.snap.TextTracks)).
		Int("audio_tracks", len(e.snap.AudioTracks)).
		Msg("media ready")
}

func (e *Engine) refreshDuration() bool {
	d, ok := e.backend.Duration()
	if !ok {
		return false
	}
	d = d.Truncate(time.Millisecond)
	if d == e.snap.Duration {
		return false
	}
	e.snap.Duration = d
	return true
}

// refreshTracks re-derives both track lists and emits TracksChanged when
// either differs.
func (e *Engine) refreshTracks() bool {
	text := deriveTracks(player.KindText, e.backend, e.lookup)
	audio := deriveTracks(player.KindAudio, e.backend, e.lookup)
	if slices.Equal(text, e.snap.TextTracks) && slices.Equal(audio, e.snap.AudioTracks) {
		return false
	}
	e.snap.TextTracks = text
	e.snap.AudioTracks = audio
	e.events.push(TracksChanged{Text: text, Audio: audio})
	return true
}

func (e *Engine) setPosition(position time.Duration) bool {
	position = position.Truncate(time.Millisecond)
	if position == e.snap.Position {
		return false
	}
	e.snap.Position = position
	e.events.push(PositionChanged{Position: position, Duration: e.snap.Duration})
	return true
}

func (e *Engine) poll() {
	if e.backend == nil || e.snap.State != StatePlaying {
		return
	}
	changed := e.refreshDuration()
	if pos, ok := e.backend.Position(); ok {
		changed = e.setPosition(pos) || changed
	}
	if changed {
		e.publish()
	}
}

// updateTicker runs the poll ticker only while a poll backend is playing.
func (e *Engine) updateTicker() {
	want := e.backend != nil &&
		e.telemetry == player.TelemetryPoll &&
		e.snap.State == StatePlaying
	switch {
	case want && e.ticker == nil:
		e.ticker = time.NewTicker(e.pollInterval)
		e.tick = e.ticker.C
	case !want:
		e.stopTicker()
	}
}

func (e *Engine) stopTicker() {
	if e.ticker != nil {
		e.ticker.Stop()
		e.ticker = nil
		e.tick = nil
	}
}

func clampPercent(p int) int {
	return min(max(p, 0), 100)
}
