// Package gst implements the playback backend on a GStreamer playbin.
//
// Position is polled by the engine (player.TelemetryPoll). Bus messages are
// read by a watch goroutine started in Open and stopped first in Close:
//
//	bus.TimedPop ──► EOS / Error / Buffering / StateChanged ──► Signals()
package gst

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/tinyzimmer/go-gst/gst"

	"github.com/llehouerou/marquee/internal/player"
)

const (
	signalBufferSize = 64
	defaultBusPoll   = 50 * time.Millisecond
)

// Config configures a playbin backend.
type Config struct {
	VideoSink    string // element factory name, empty = automatic
	AudioSink    string
	SubtitleFont string // Pango font family
	SubtitleSize int    // base size in points at scale 1.0
	BusPoll      time.Duration
	Logger       zerolog.Logger
}

// Backend drives a single playbin element.
type Backend struct {
	cfg     Config
	log     zerolog.Logger
	playbin *gst.Element
	signals chan player.Signal

	cancel context.CancelFunc
	wg     sync.WaitGroup
	closed bool
}

// NewFactory returns a factory creating playbin backends with cfg.
func NewFactory(cfg Config) player.Factory {
	return player.FactoryFunc(func() (player.Backend, error) {
		return New(cfg)
	})
}

// New creates a playbin and its configured sinks.
func New(cfg Config) (*Backend, error) {
	if cfg.BusPoll <= 0 {
		cfg.BusPoll = defaultBusPoll
	}
	if cfg.SubtitleFont == "" {
		cfg.SubtitleFont = "Sans"
	}
	if cfg.SubtitleSize <= 0 {
		cfg.SubtitleSize = 18
	}

	// Initialize GStreamer (safe to call multiple times)
	gst.Init(nil)

	playbin, err := gst.NewElement("playbin")
	if err != nil {
		return nil, errors.Wrap(err, "create playbin")
	}

	if cfg.VideoSink != "" {
		if err := setSink(playbin, "video-sink", cfg.VideoSink); err != nil {
			return nil, err
		}
	}
	if cfg.AudioSink != "" {
		if err := setSink(playbin, "audio-sink", cfg.AudioSink); err != nil {
			return nil, err
		}
	}

	b := &Backend{
		cfg:     cfg,
		log:     cfg.Logger.With().Str("backend", "gstreamer").Logger(),
		playbin: playbin,
		signals: make(chan player.Signal, signalBufferSize),
	}
	if err := b.SetSubtitleScale(1); err != nil {
		return nil, err
	}
	return b, nil
}

func setSink(playbin *gst.Element, property, factory string) error {
	sink, err := gst.NewElement(factory)
	if err != nil {
		return errors.Wrapf(err, "create %s %q", property, factory)
	}
	if err := playbin.SetProperty(property, sink); err != nil {
		return errors.Wrapf(err, "set %s", property)
	}
	return nil
}

// Open sets the URI, starts the bus watch and moves the pipeline to PLAYING.
func (b *Backend) Open(uri string) error {
	if b.closed {
		return errors.New("backend closed")
	}
	if err := b.playbin.SetProperty("uri", uri); err != nil {
		return errors.Wrap(err, "set uri")
	}

	ctx, cancel := context.WithCancel(context.Background())
	b.cancel = cancel
	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		b.watchBus(ctx)
	}()

	if err := b.playbin.SetState(gst.StatePlaying); err != nil {
		return errors.Wrap(err, "set state playing")
	}
	return nil
}

// watchBus polls the pipeline bus until ctx is cancelled.
func (b *Backend) watchBus(ctx context.Context) {
	bus := b.playbin.GetBus()

	for {
		select {
		case <-ctx.Done():
			b.log.Debug().Msg("bus watch stopped")
			return
		default:
		}

		// Poll with a short timeout for responsive shutdown
		msg := bus.TimedPop(b.cfg.BusPoll)
		if msg == nil {
			continue
		}

		switch msg.Type() {
		case gst.MessageEOS:
			b.emit(ctx, player.Signal{Kind: player.SignalEndOfStream})

		case gst.MessageError:
			gerr := msg.ParseError()
			b.log.Error().
				Str("error", gerr.Error()).
				Str("debug", gerr.DebugString()).
				Msg("pipeline error")
			b.emit(ctx, player.Signal{
				Kind: player.SignalError,
				Err:  &player.StreamError{Message: gerr.Error(), Debug: gerr.DebugString()},
			})

		case gst.MessageBuffering:
			b.emit(ctx, player.Signal{Kind: player.SignalBuffering, Percent: msg.ParseBuffering()})

		case gst.MessageStateChanged:
			if msg.Source() != b.playbin.GetName() {
				continue
			}
			old, current := msg.ParseStateChanged()
			b.log.Debug().Stringer("from", old).Stringer("to", current).Msg("pipeline state changed")
			if current == gst.StatePaused || current == gst.StatePlaying {
				b.emit(ctx, player.Signal{Kind: player.SignalStateChanged})
			}

		case gst.MessageDurationChanged:
			b.emit(ctx, player.Signal{Kind: player.SignalStateChanged})

		case gst.MessageStreamsSelected:
			b.emit(ctx, player.Signal{Kind: player.SignalTracksChanged})
		}
	}
}

func (b *Backend) emit(ctx context.Context, sig player.Signal) {
	select {
	case b.signals <- sig:
	case <-ctx.Done():
	}
}

func (b *Backend) Play() error {
	return errors.Wrap(b.playbin.SetState(gst.StatePlaying), "set state playing")
}

func (b *Backend) Pause() error {
	return errors.Wrap(b.playbin.SetState(gst.StatePaused), "set state paused")
}

func (b *Backend) Seek(position time.Duration) error {
	if !b.playbin.SeekSimple(position.Nanoseconds(), gst.FormatTime, gst.SeekFlagFlush|gst.SeekFlagKeyUnit) {
		return errors.Errorf("seek to %s rejected", position)
	}
	return nil
}

func (b *Backend) SetVolume(level float64) error {
	return errors.Wrap(b.playbin.SetProperty("volume", level), "set volume")
}

func (b *Backend) Volume() float64 {
	v, err := b.playbin.GetProperty("volume")
	if err != nil {
		return 0
	}
	level, _ := v.(float64)
	return level
}

func (b *Backend) SelectStream(kind player.Kind, id int) error {
	property := currentProperty(kind)
	if err := b.playbin.SetProperty(property, id); err != nil {
		return errors.Wrapf(err, "set %s", property)
	}
	return nil
}

// SetSubtitleScale maps factor onto the subtitle font size.
func (b *Backend) SetSubtitleScale(factor float64) error {
	size := int(math.Round(float64(b.cfg.SubtitleSize) * factor))
	if size < 1 {
		size = 1
	}
	desc := fmt.Sprintf("%s %d", b.cfg.SubtitleFont, size)
	return errors.Wrap(b.playbin.SetProperty("subtitle-font-desc", desc), "set subtitle-font-desc")
}

func (b *Backend) Position() (time.Duration, bool) {
	ok, pos := b.playbin.QueryPosition(gst.FormatTime)
	if !ok || pos < 0 {
		return 0, false
	}
	return time.Duration(pos), true
}

func (b *Backend) Duration() (time.Duration, bool) {
	ok, dur := b.playbin.QueryDuration(gst.FormatTime)
	if !ok || dur < 0 {
		return 0, false
	}
	return time.Duration(dur), true
}

func (b *Backend) Paused() bool {
	return b.playbin.GetCurrentState() != gst.StatePlaying
}

// Streams reads n-text/n-audio and the per-stream tag lists.
func (b *Backend) Streams(kind player.Kind) ([]player.Stream, int) {
	prefix := "text"
	if kind == player.KindAudio {
		prefix = "audio"
	}

	n := b.intProperty("n-" + prefix)
	current := b.intProperty(currentProperty(kind))
	if current < 0 || current >= n {
		current = player.NoTrack
	}

	streams := make([]player.Stream, 0, n)
	for i := range n {
		s := player.Stream{ID: i}
		ret, err := b.playbin.Emit("get-"+prefix+"-tags", i)
		if err != nil {
			b.log.Debug().Err(err).Int("stream", i).Msg("read stream tags")
		}
		if tags, ok := ret.(*gst.TagList); ok && tags != nil {
			if code, ok := tags.GetString(gst.TagLanguageCode); ok {
				s.Language = code
			}
			if title, ok := tags.GetString(gst.TagTitle); ok {
				s.Title = title
			}
		}
		streams = append(streams, s)
	}
	return streams, current
}

func (b *Backend) intProperty(name string) int {
	v, err := b.playbin.GetProperty(name)
	if err != nil {
		return 0
	}
	switch n := v.(type) {
	case int:
		return n
	case int32:
		return int(n)
	case int64:
		return int(n)
	case uint:
		return int(n)
	case uint32:
		return int(n)
	default:
		return 0
	}
}

func currentProperty(kind player.Kind) string {
	if kind == player.KindAudio {
		return "current-audio"
	}
	return "current-text"
}

func (b *Backend) Telemetry() player.Telemetry { return player.TelemetryPoll }

func (b *Backend) Signals() <-chan player.Signal { return b.signals }

// Close stops the bus watch, then sets the pipeline to NULL.
func (b *Backend) Close() error {
	if b.closed {
		return nil
	}
	b.closed = true

	if b.cancel != nil {
		b.cancel()
	}
	b.wg.Wait()

	return errors.Wrap(b.playbin.SetState(gst.StateNull), "set state null")
}
