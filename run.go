package main

import (
	"context"
	"io"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/llehouerou/marquee/internal/app"
	"github.com/llehouerou/marquee/internal/artwork"
	"github.com/llehouerou/marquee/internal/config"
	"github.com/llehouerou/marquee/internal/errmsg"
	"github.com/llehouerou/marquee/internal/icons"
	"github.com/llehouerou/marquee/internal/lang"
	"github.com/llehouerou/marquee/internal/logging"
	"github.com/llehouerou/marquee/internal/mpris"
	"github.com/llehouerou/marquee/internal/notify"
	"github.com/llehouerou/marquee/internal/playback"
	"github.com/llehouerou/marquee/internal/player"
	"github.com/llehouerou/marquee/internal/player/gst"
	"github.com/llehouerou/marquee/internal/player/mpv"
	"github.com/llehouerou/marquee/internal/state"
	"github.com/llehouerou/marquee/internal/stderr"
	"github.com/llehouerou/marquee/internal/ui/poster"
)

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFiles(path)
	}
	return config.Load()
}

// newFactory returns the backend factory selected by cfg.
func newFactory(cfg *config.Config, log zerolog.Logger) (player.Factory, error) {
	pb := cfg.GetPlaybackConfig()
	switch cfg.Backend {
	case config.BackendGStreamer:
		return gst.NewFactory(gst.Config{
			VideoSink:    cfg.GStreamer.VideoSink,
			AudioSink:    cfg.GStreamer.AudioSink,
			SubtitleFont: pb.SubtitleFont,
			SubtitleSize: pb.SubtitleSize,
			Logger:       log,
		}), nil
	case config.BackendMpv:
		m := cfg.GetMpvConfig()
		return mpv.NewFactory(mpv.Config{
			Binary:    m.Binary,
			SocketDir: m.SocketDir,
			ExtraArgs: m.ExtraArgs,
			Logger:    log,
		}), nil
	default:
		return nil, errors.Errorf("unknown backend %q (want %q or %q)", cfg.Backend, config.BackendGStreamer, config.BackendMpv)
	}
}

func closeQuietly(c io.Closer) {
	_ = c.Close()
}

func run(ctx context.Context, uri string, opts options, startSet bool) error {
	cfg, err := loadConfig(opts.config)
	if err != nil {
		return errors.New(errmsg.Format(errmsg.OpConfigLoad, err))
	}
	if opts.backend != "" {
		cfg.Backend = opts.backend
	}

	stateDir := config.StateDir()
	log, logFile, err := logging.New(logging.Config{Dir: stateDir, Level: cfg.LogLevel})
	if err != nil {
		return err
	}
	defer closeQuietly(logFile)

	// Capture native stderr before any backend library initializes.
	if err := stderr.Start(log); err != nil {
		log.Warn().Err(err).Msg("stderr capture disabled")
	}
	defer stderr.Stop()

	ui := cfg.GetUIConfig()
	icons.Init(ui.Icons)

	store, err := state.Open(stateDir, state.WithLogger(log))
	if err != nil {
		return errors.New(errmsg.FormatWith(errmsg.OpInitialize, stateDir, err))
	}
	defer closeQuietly(store)

	prefs, err := store.GetPreferences()
	if err != nil {
		log.Warn().Err(err).Msg("read preferences")
		prefs = state.DefaultPreferences
	}

	start := opts.start
	if !startSet {
		if pos, ok, err := store.Resume(uri); err != nil {
			log.Warn().Err(err).Msg(string(errmsg.OpResumeLoad))
		} else if ok {
			start = pos
			log.Info().Str("uri", uri).Dur("position", pos).Msg("resuming")
		}
	}

	factory, err := newFactory(cfg, log)
	if err != nil {
		return err
	}
	engine := playback.New(factory,
		playback.WithLogger(log),
		playback.WithPollInterval(cfg.GetPlaybackConfig().PollInterval()),
		playback.WithLanguageLookup(lang.English()),
		playback.WithVolume(prefs.Volume),
		playback.WithSubtitleScale(prefs.SubtitleScale),
	)
	defer closeQuietly(engine)

	deps := app.Deps{
		Service:  engine,
		Store:    store,
		Notifier: notify.Disabled(),
		Logger:   log,
	}

	if adapter, err := mpris.New(engine, mpris.WithLogger(log)); err != nil {
		log.Warn().Err(err).Msg("mpris disabled")
	} else {
		defer closeQuietly(adapter)
		deps.MPRIS = adapter
	}

	if ui.NotifyEnabled() {
		if n, err := notify.New(); err != nil {
			log.Warn().Err(err).Msg("notifications disabled")
		} else {
			deps.Notifier = n
		}
	}

	media := app.Media{URI: uri, Title: opts.title, Poster: opts.poster, Start: start}
	if media.Poster == "" {
		media.Poster = notify.ArtworkIcon(uri)
	}

	var art *artwork.Config
	if proto := poster.Detect(); proto != nil {
		deps.Poster = poster.New(proto)
		ac := cfg.GetArtworkConfig()
		art = &artwork.Config{
			CacheDir:          ac.CacheDir,
			MaxCacheBytes:     int64(ac.MaxCacheMB) << 20,
			MaxConcurrent:     ac.MaxConcurrent,
			RequestsPerSecond: ac.RequestsPerSecond,
			Logger:            log,
		}
	}

	log.Info().Str("uri", uri).Str("backend", cfg.Backend).Dur("start", start.Truncate(time.Second)).Msg("starting")
	return app.Run(ctx, deps, media, app.SettingsFrom(cfg), art)
}
