//go:build linux

// Package mpris exposes the playback engine on the session bus as an
// org.mpris.MediaPlayer2 player.
package mpris

import (
	"math"
	"net/url"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/godbus/dbus/v5"
	"github.com/quarckster/go-mpris-server/pkg/events"
	"github.com/quarckster/go-mpris-server/pkg/server"
	"github.com/quarckster/go-mpris-server/pkg/types"
	"github.com/rs/zerolog"

	"github.com/llehouerou/marquee/internal/playback"
	"github.com/llehouerou/marquee/internal/statebus"
)

const (
	trackIDPrefix = "/org/mpris/MediaPlayer2/Track/"
	noTrackID     = "/org/mpris/MediaPlayer2/TrackList/NoTrack"

	// seekJump is the position discontinuity reported as Seeked. It sits
	// well above the gap between two telemetry updates.
	seekJump = 2 * time.Second
)

// Adapter connects a playback.Service to MPRIS over D-Bus.
type Adapter struct {
	server *server.Server
	events *events.EventHandler
	player *playerAdapter
	log    zerolog.Logger

	cancel func()
	last   view // written only from bus listeners, which are serialized

	mu      sync.Mutex
	pending change
	wake    chan struct{}
	done    chan struct{}
	wg      sync.WaitGroup
}

// New creates and starts a new MPRIS adapter.
func New(service playback.Service, opts ...Option) (*Adapter, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	a := &Adapter{
		player: &playerAdapter{service: service},
		log:    o.log,
		wake:   make(chan struct{}, 1),
		done:   make(chan struct{}),
	}

	root := &rootAdapter{identity: o.identity, raise: o.raise}
	a.server = server.NewServer(o.name, root, a.player)
	a.events = events.NewEventHandler(a.server)

	// Start the server in background
	go func() {
		if err := a.server.Listen(); err != nil {
			a.log.Warn().Err(err).Msg("mpris server stopped")
		}
	}()

	a.last = viewOf(service.Snapshot())
	a.cancel = statebus.Subscribe(service.Bus(), a.queue, a.project)

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		a.run()
	}()

	return a, nil
}

// SetMedia overrides the title and artwork shown for uri.
func (a *Adapter) SetMedia(uri, title, artURL string) {
	a.player.setMedia(media{uri: uri, title: title, artURL: artURL})
	a.queue(change{metadata: true})
}

// Close stops the adapter and releases D-Bus resources.
func (a *Adapter) Close() error {
	a.cancel()
	close(a.done)
	a.wg.Wait()
	return a.server.Stop()
}

// view is the part of a snapshot MPRIS clients observe.
type view struct {
	session  string
	status   types.PlaybackStatus
	position time.Duration
	duration time.Duration
	volume   int
}

func viewOf(s playback.Snapshot) view {
	return view{
		session:  s.SessionID,
		status:   playbackStatus(s.State),
		position: s.Position,
		duration: s.Duration,
		volume:   s.Volume,
	}
}

type change struct {
	status   bool
	metadata bool
	volume   bool
	seeked   bool
	position time.Duration
}

func (c change) empty() bool {
	return !c.status && !c.metadata && !c.volume && !c.seeked
}

func (c change) merge(o change) change {
	c.status = c.status || o.status
	c.metadata = c.metadata || o.metadata
	c.volume = c.volume || o.volume
	if o.seeked {
		c.seeked = true
		c.position = o.position
	}
	return c
}

// diff returns what clients must be told when moving from prev to next.
func diff(prev, next view) change {
	var c change
	c.status = prev.status != next.status
	c.metadata = prev.session != next.session || prev.duration != next.duration
	c.volume = prev.volume != next.volume
	if prev.session == next.session && next.session != "" {
		jump := next.position - prev.position
		if jump < 0 {
			jump = -jump
		}
		if jump > seekJump {
			c.seeked = true
			c.position = next.position
		}
	}
	return c
}

// project runs on the bus writer goroutine.
func (a *Adapter) project(s *playback.Snapshot) (change, bool) {
	next := viewOf(*s)
	c := diff(a.last, next)
	a.last = next
	return c, !c.empty()
}

// queue merges c into the pending change and wakes the emitter. It never
// blocks so the engine is not held up by D-Bus.
func (a *Adapter) queue(c change) {
	a.mu.Lock()
	a.pending = a.pending.merge(c)
	a.mu.Unlock()

	select {
	case a.wake <- struct{}{}:
	default:
	}
}

func (a *Adapter) run() {
	for {
		select {
		case <-a.done:
			return
		case <-a.wake:
			a.mu.Lock()
			c := a.pending
			a.pending = change{}
			a.mu.Unlock()
			a.emit(c)
		}
	}
}

func (a *Adapter) emit(c change) {
	if c.metadata {
		a.check(a.events.Player.OnTitle(), "metadata")
	}
	if c.status {
		a.check(a.events.Player.OnPlayPause(), "playback status")
	}
	if c.volume {
		a.check(a.events.Player.OnVolume(), "volume")
	}
	if c.seeked {
		a.check(a.events.Player.OnSeek(types.Microseconds(c.position.Microseconds())), "seeked")
	}
}

func (a *Adapter) check(err error, what string) {
	if err != nil {
		a.log.Debug().Err(err).Str("property", what).Msg("mpris emit")
	}
}

func playbackStatus(s playback.State) types.PlaybackStatus {
	switch s {
	case playback.StatePlaying:
		return types.PlaybackStatusPlaying
	case playback.StatePaused, playback.StateLoading:
		return types.PlaybackStatusPaused
	case playback.StateIdle, playback.StateEnded, playback.StateErrored:
		return types.PlaybackStatusStopped
	}
	return types.PlaybackStatusStopped
}

func formatTrackID(sessionID string) dbus.ObjectPath {
	if sessionID == "" {
		return noTrackID
	}
	return dbus.ObjectPath(trackIDPrefix + strings.ReplaceAll(sessionID, "-", ""))
}

// titleFromURI derives a display title from the last path element of uri.
func titleFromURI(uri string) string {
	u, err := url.Parse(uri)
	if err != nil || u.Path == "" || u.Path == "/" {
		return uri
	}
	base := path.Base(u.Path)
	if ext := path.Ext(base); ext != "" && ext != base {
		base = strings.TrimSuffix(base, ext)
	}
	return base
}

// rootAdapter implements OrgMprisMediaPlayer2Adapter.
type rootAdapter struct {
	identity string
	raise    func()
}

func (r *rootAdapter) Raise() error {
	if r.raise != nil {
		r.raise()
	}
	return nil
}

func (r *rootAdapter) Quit() error {
	return nil // app manages its own lifecycle
}

func (r *rootAdapter) CanQuit() (bool, error) {
	return false, nil
}

func (r *rootAdapter) CanRaise() (bool, error) {
	return r.raise != nil, nil
}

func (r *rootAdapter) HasTrackList() (bool, error) {
	return false, nil
}

func (r *rootAdapter) Identity() (string, error) {
	return r.identity, nil
}

//nolint:revive // Method name required by interface.
func (r *rootAdapter) SupportedUriSchemes() ([]string, error) {
	return []string{"file", "http", "https"}, nil
}

func (r *rootAdapter) SupportedMimeTypes() ([]string, error) {
	return []string{"video/mp4", "video/x-matroska", "video/webm", "audio/mpeg"}, nil
}

type media struct {
	uri    string
	title  string
	artURL string
}

// playerAdapter implements OrgMprisMediaPlayer2PlayerAdapter.
type playerAdapter struct {
	service playback.Service

	mu    sync.Mutex
	media media
}

func (p *playerAdapter) setMedia(m media) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.media = m
}

func (p *playerAdapter) mediaFor(uri string) media {
	p.mu.Lock()
	m := p.media
	p.mu.Unlock()
	if m.uri != uri {
		m = media{uri: uri}
	}
	if m.title == "" {
		m.title = titleFromURI(uri)
	}
	if m.artURL == "" {
		m.artURL = FindArtwork(uri)
	}
	return m
}

func (p *playerAdapter) Next() error {
	return nil // single media session
}

func (p *playerAdapter) Previous() error {
	return nil // single media session
}

func (p *playerAdapter) Pause() error {
	p.service.Pause()
	return nil
}

func (p *playerAdapter) PlayPause() error {
	p.service.Toggle()
	return nil
}

func (p *playerAdapter) Stop() error {
	p.service.Unload()
	return nil
}

func (p *playerAdapter) Play() error {
	p.service.Play()
	return nil
}

func (p *playerAdapter) Seek(offset types.Microseconds) error {
	p.service.SeekBy(time.Duration(offset) * time.Microsecond)
	return nil
}

func (p *playerAdapter) SetPosition(trackID string, position types.Microseconds) error {
	// Stale requests for a previous session are ignored.
	if dbus.ObjectPath(trackID) != formatTrackID(p.service.Snapshot().SessionID) {
		return nil
	}
	p.service.Seek(time.Duration(position) * time.Microsecond)
	return nil
}

//nolint:revive // Method name required by interface.
func (p *playerAdapter) OpenUri(_ string) error {
	return nil // Not supported
}

func (p *playerAdapter) PlaybackStatus() (types.PlaybackStatus, error) {
	return playbackStatus(p.service.Snapshot().State), nil
}

func (p *playerAdapter) Rate() (float64, error) {
	return 1.0, nil
}

func (p *playerAdapter) SetRate(_ float64) error {
	return nil // Not supported
}

func (p *playerAdapter) Metadata() (types.Metadata, error) {
	snap := p.service.Snapshot()
	if snap.SessionID == "" {
		return types.Metadata{TrackId: noTrackID}, nil
	}

	m := p.mediaFor(snap.URI)
	return types.Metadata{
		TrackId: formatTrackID(snap.SessionID),
		Length:  types.Microseconds(snap.Duration.Microseconds()),
		Title:   m.title,
		ArtUrl:  m.artURL,
		Url:     snap.URI,
	}, nil
}

func (p *playerAdapter) Volume() (float64, error) {
	return float64(p.service.Snapshot().Volume) / 100, nil
}

func (p *playerAdapter) SetVolume(volume float64) error {
	p.service.SetVolume(int(math.Round(volume * 100)))
	return nil
}

func (p *playerAdapter) Position() (int64, error) {
	return p.service.Snapshot().Position.Microseconds(), nil
}

func (p *playerAdapter) MinimumRate() (float64, error) {
	return 1.0, nil
}

func (p *playerAdapter) MaximumRate() (float64, error) {
	return 1.0, nil
}

func (p *playerAdapter) CanGoNext() (bool, error) {
	return false, nil
}

func (p *playerAdapter) CanGoPrevious() (bool, error) {
	return false, nil
}

func (p *playerAdapter) CanPlay() (bool, error) {
	return p.service.Snapshot().State.HasSession(), nil
}

func (p *playerAdapter) CanPause() (bool, error) {
	return p.service.Snapshot().State.IsActive(), nil
}

func (p *playerAdapter) CanSeek() (bool, error) {
	return p.service.Snapshot().State.CanSeek(), nil
}

func (p *playerAdapter) CanControl() (bool, error) {
	return true, nil
}
