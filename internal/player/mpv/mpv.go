// Package mpv implements the playback backend on an mpv child process
// driven over its JSON IPC socket.
//
// mpv pushes telemetry (player.TelemetryPush): time-pos, duration, pause,
// volume and track-list are observed and cached, so queries never block on
// the socket. Events are forwarded to Signals by a dedicated goroutine so
// the socket reader never waits on the engine.
package mpv

import (
	"context"
	"encoding/json"
	"net"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/llehouerou/marquee/internal/player"
)

const (
	signalBufferSize      = 64
	defaultStartTimeout   = 5 * time.Second
	defaultCommandTimeout = 2 * time.Second
	dialRetryInterval     = 50 * time.Millisecond
	quitTimeout           = 500 * time.Millisecond
	exitTimeout           = 2 * time.Second
)

// Observed property ids.
const (
	obsTimePos = iota + 1
	obsDuration
	obsPause
	obsVolume
	obsTrackList
	obsPausedForCache
	obsEOFReached
)

var observed = map[int]string{
	obsTimePos:        "time-pos",
	obsDuration:       "duration",
	obsPause:          "pause",
	obsVolume:         "volume",
	obsTrackList:      "track-list",
	obsPausedForCache: "paused-for-cache",
	obsEOFReached:     "eof-reached",
}

// Config configures an mpv backend.
type Config struct {
	Binary         string
	SocketDir      string
	ExtraArgs      []string
	StartTimeout   time.Duration
	CommandTimeout time.Duration
	Logger         zerolog.Logger
}

// track is one entry of mpv's track-list property.
type track struct {
	ID       int    `json:"id"`
	Type     string `json:"type"` // "video", "audio", "sub"
	Lang     string `json:"lang"`
	Title    string `json:"title"`
	Selected bool   `json:"selected"`
}

// properties is the cached observed state.
type properties struct {
	position    time.Duration
	hasPosition bool
	duration    time.Duration
	hasDuration bool
	paused      bool
	volume      float64 // 0-100, mpv's scale
	tracks      []track
}

// Backend drives one mpv process.
type Backend struct {
	cfg    Config
	log    zerolog.Logger
	socket string
	cmd    *exec.Cmd
	exited chan struct{}
	ipc    *ipcClient

	ctx    context.Context
	cancel context.CancelFunc
	fwd    sync.WaitGroup

	signals chan player.Signal
	qmu     sync.Mutex
	queue   []player.Signal
	wake    chan struct{}

	mu    sync.Mutex
	props properties

	closed bool
}

// NewFactory returns a factory spawning mpv backends with cfg.
func NewFactory(cfg Config) player.Factory {
	return player.FactoryFunc(func() (player.Backend, error) {
		return New(cfg)
	})
}

func newBackend(cfg Config) *Backend {
	if cfg.Binary == "" {
		cfg.Binary = "mpv"
	}
	if cfg.SocketDir == "" {
		cfg.SocketDir = os.TempDir()
	}
	if cfg.StartTimeout <= 0 {
		cfg.StartTimeout = defaultStartTimeout
	}
	if cfg.CommandTimeout <= 0 {
		cfg.CommandTimeout = defaultCommandTimeout
	}

	ctx, cancel := context.WithCancel(context.Background())
	b := &Backend{
		cfg:     cfg,
		log:     cfg.Logger.With().Str("backend", "mpv").Logger(),
		socket:  filepath.Join(cfg.SocketDir, "marquee-mpv-"+uuid.NewString()+".sock"),
		exited:  make(chan struct{}),
		ctx:     ctx,
		cancel:  cancel,
		signals: make(chan player.Signal, signalBufferSize),
		wake:    make(chan struct{}, 1),
		props:   properties{paused: true, volume: 100},
	}
	b.fwd.Add(1)
	go func() {
		defer b.fwd.Done()
		b.forward()
	}()
	return b
}

// New spawns an idle mpv process and connects to its IPC socket.
func New(cfg Config) (*Backend, error) {
	b := newBackend(cfg)

	args := []string{
		"--idle=yes",
		"--input-ipc-server=" + b.socket,
		"--no-terminal",
		"--force-window=yes",
		"--keep-open=yes",
	}
	args = append(args, b.cfg.ExtraArgs...)

	b.cmd = exec.Command(b.cfg.Binary, args...)
	if err := b.cmd.Start(); err != nil {
		b.cancel()
		b.fwd.Wait()
		return nil, errors.Wrapf(err, "start %s", b.cfg.Binary)
	}
	go b.waitProcess()

	conn, err := b.dial()
	if err != nil {
		_ = b.Close()
		return nil, err
	}
	b.ipc = newIPCClient(conn, b.handleEvent)

	for id, name := range observed {
		if _, err := b.command("observe_property", id, name); err != nil {
			_ = b.Close()
			return nil, errors.Wrapf(err, "observe %s", name)
		}
	}

	b.log.Debug().Str("socket", b.socket).Int("pid", b.cmd.Process.Pid).Msg("mpv started")
	return b, nil
}

// dial waits for mpv to create its socket.
func (b *Backend) dial() (net.Conn, error) {
	deadline := time.Now().Add(b.cfg.StartTimeout)
	for {
		conn, err := net.Dial("unix", b.socket)
		if err == nil {
			return conn, nil
		}
		select {
		case <-b.exited:
			return nil, errors.New("mpv exited before opening its ipc socket")
		default:
		}
		if time.Now().After(deadline) {
			return nil, errors.Wrapf(err, "connect %s", b.socket)
		}
		time.Sleep(dialRetryInterval)
	}
}

func (b *Backend) waitProcess() {
	err := b.cmd.Wait()
	close(b.exited)

	if b.ctx.Err() != nil {
		return
	}
	b.log.Warn().Err(err).Msg("mpv exited unexpectedly")
	msg := "mpv exited"
	if err != nil {
		msg = err.Error()
	}
	b.emit(player.Signal{Kind: player.SignalError, Err: &player.StreamError{Message: msg}})
}

func (b *Backend) command(args ...any) (json.RawMessage, error) {
	if b.ipc == nil {
		return nil, errClosed
	}
	ctx, cancel := context.WithTimeout(b.ctx, b.cfg.CommandTimeout)
	defer cancel()
	return b.ipc.command(ctx, args...)
}

func (b *Backend) setProperty(name string, value any) error {
	_, err := b.command("set_property", name, value)
	return errors.Wrapf(err, "set %s", name)
}

// handleEvent runs on the ipc reader goroutine.
func (b *Backend) handleEvent(m message) {
	switch m.Event {
	case "property-change":
		b.handleProperty(m)
	case "file-loaded":
		b.emit(player.Signal{Kind: player.SignalStateChanged})
	case "end-file":
		switch m.Reason {
		case "eof":
			b.emit(player.Signal{Kind: player.SignalEndOfStream})
		case "error":
			msg := m.FileError
			if msg == "" {
				msg = "playback failed"
			}
			b.emit(player.Signal{Kind: player.SignalError, Err: &player.StreamError{Message: msg}})
		}
	}
}

func (b *Backend) handleProperty(m message) {
	null := len(m.Data) == 0 || string(m.Data) == "null"

	switch m.ID {
	case obsTimePos:
		var secs float64
		if !null && !b.decode(m, &secs) {
			return
		}
		pos := seconds(secs)
		b.mu.Lock()
		b.props.position, b.props.hasPosition = pos, !null
		b.mu.Unlock()
		if !null {
			b.emit(player.Signal{Kind: player.SignalPosition, Position: pos})
		}

	case obsDuration:
		var secs float64
		if !null && !b.decode(m, &secs) {
			return
		}
		dur := seconds(secs)
		b.mu.Lock()
		b.props.duration, b.props.hasDuration = dur, !null
		b.mu.Unlock()
		if !null {
			b.emit(player.Signal{Kind: player.SignalDuration, Duration: dur})
		}

	case obsPause:
		var paused bool
		if !b.decode(m, &paused) {
			return
		}
		b.mu.Lock()
		b.props.paused = paused
		b.mu.Unlock()
		b.emit(player.Signal{Kind: player.SignalPause, Paused: paused})

	case obsVolume:
		var volume float64
		if err := json.Unmarshal(m.Data, &volume); err != nil {
			return
		}
		b.mu.Lock()
		b.props.volume = volume
		b.mu.Unlock()
		b.emit(player.Signal{Kind: player.SignalPropertyChanged, Property: "volume"})

	case obsTrackList:
		var tracks []track
		if !null {
			if err := json.Unmarshal(m.Data, &tracks); err != nil {
				b.log.Debug().Err(err).Msg("decode track-list")
				return
			}
		}
		b.mu.Lock()
		b.props.tracks = tracks
		b.mu.Unlock()
		b.emit(player.Signal{Kind: player.SignalTracksChanged})

	case obsPausedForCache:
		var buffering bool
		if !b.decode(m, &buffering) {
			return
		}
		percent := 100
		if buffering {
			percent = 0
		}
		b.emit(player.Signal{Kind: player.SignalBuffering, Percent: percent})

	case obsEOFReached:
		// keep-open holds the last frame instead of ending the file, so the
		// end is reported here and a later seek can resume playback.
		var eof bool
		if !null && b.decode(m, &eof) && eof {
			b.emit(player.Signal{Kind: player.SignalEndOfStream})
		}
	}
}

// decode unmarshals a property value. Undecodable values are logged and
// dropped rather than reported as zero.
func (b *Backend) decode(m message, v any) bool {
	if err := json.Unmarshal(m.Data, v); err != nil {
		b.log.Debug().Err(err).Str("property", observed[m.ID]).Msg("decode property")
		return false
	}
	return true
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

// emit queues sig without blocking. Consecutive position signals collapse.
func (b *Backend) emit(sig player.Signal) {
	b.qmu.Lock()
	if n := len(b.queue); n > 0 && sig.Kind == player.SignalPosition && b.queue[n-1].Kind == player.SignalPosition {
		b.queue[n-1] = sig
	} else {
		b.queue = append(b.queue, sig)
	}
	b.qmu.Unlock()

	select {
	case b.wake <- struct{}{}:
	default:
	}
}

// forward moves queued signals to the signal channel until ctx is cancelled.
func (b *Backend) forward() {
	for {
		b.qmu.Lock()
		batch := b.queue
		b.queue = nil
		b.qmu.Unlock()

		if len(batch) == 0 {
			select {
			case <-b.wake:
				continue
			case <-b.ctx.Done():
				return
			}
		}

		for _, sig := range batch {
			select {
			case b.signals <- sig:
			case <-b.ctx.Done():
				return
			}
		}
	}
}

func (b *Backend) Open(uri string) error {
	if _, err := b.command("loadfile", uri, "replace"); err != nil {
		return errors.Wrap(err, "loadfile")
	}
	return b.setProperty("pause", false)
}

func (b *Backend) Play() error { return b.setProperty("pause", false) }

func (b *Backend) Pause() error { return b.setProperty("pause", true) }

func (b *Backend) Seek(position time.Duration) error {
	_, err := b.command("seek", position.Seconds(), "absolute")
	return errors.Wrap(err, "seek")
}

func (b *Backend) SetVolume(level float64) error {
	return b.setProperty("volume", level*100)
}

func (b *Backend) Volume() float64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.props.volume / 100
}

func (b *Backend) SelectStream(kind player.Kind, id int) error {
	property := "sid"
	if kind == player.KindAudio {
		property = "aid"
	}
	if id == player.NoTrack {
		return b.setProperty(property, "no")
	}
	return b.setProperty(property, id)
}

func (b *Backend) SetSubtitleScale(factor float64) error {
	return b.setProperty("sub-scale", factor)
}

func (b *Backend) Position() (time.Duration, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.props.position, b.props.hasPosition
}

func (b *Backend) Duration() (time.Duration, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.props.duration, b.props.hasDuration
}

func (b *Backend) Paused() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.props.paused
}

// Streams filters the cached track-list by kind.
func (b *Backend) Streams(kind player.Kind) ([]player.Stream, int) {
	want := "sub"
	if kind == player.KindAudio {
		want = "audio"
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	current := player.NoTrack
	var streams []player.Stream
	for _, t := range b.props.tracks {
		if t.Type != want {
			continue
		}
		streams = append(streams, player.Stream{ID: t.ID, Language: t.Lang, Title: t.Title})
		if t.Selected {
			current = t.ID
		}
	}
	return streams, current
}

func (b *Backend) Telemetry() player.Telemetry { return player.TelemetryPush }

func (b *Backend) Signals() <-chan player.Signal { return b.signals }

// Close detaches the signal forwarder, asks mpv to quit, closes the socket
// and reaps the process.
func (b *Backend) Close() error {
	if b.closed {
		return nil
	}
	b.closed = true

	b.cancel()
	b.fwd.Wait()

	if b.ipc != nil {
		ctx, cancel := context.WithTimeout(context.Background(), quitTimeout)
		_, _ = b.ipc.command(ctx, "quit")
		cancel()
		_ = b.ipc.close()
	}

	if b.cmd != nil && b.cmd.Process != nil {
		select {
		case <-b.exited:
		case <-time.After(exitTimeout):
			b.log.Warn().Msg("mpv did not quit, killing")
			_ = b.cmd.Process.Kill()
			<-b.exited
		}
	}

	if err := os.Remove(b.socket); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "remove ipc socket")
	}
	return nil
}
