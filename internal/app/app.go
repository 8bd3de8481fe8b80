package app

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/llehouerou/marquee/internal/config"
	"github.com/llehouerou/marquee/internal/keymap"
	"github.com/llehouerou/marquee/internal/notify"
	"github.com/llehouerou/marquee/internal/playback"
	"github.com/llehouerou/marquee/internal/state"
	"github.com/llehouerou/marquee/internal/ui/poster"
	"github.com/llehouerou/marquee/internal/ui/trackmenu"
	"github.com/llehouerou/marquee/internal/viewport"
)

// Media is what the player opens.
type Media struct {
	URI    string
	Title  string
	Poster string        // artwork URL or path, optional
	Start  time.Duration // resume offset
}

// MediaPublisher announces the current media outside the TUI (MPRIS).
type MediaPublisher interface {
	SetMedia(uri, title, artURL string)
}

// Deps are the collaborators of the player view.
type Deps struct {
	Service  playback.Service
	Store    state.Interface
	Notifier notify.Notifier
	MPRIS    MediaPublisher          // optional
	Artwork  viewport.Loader[string] // optional, fed poster URLs
	Poster   *poster.Renderer        // optional
	Logger   zerolog.Logger
}

// Settings are the key steps and layout knobs of the player view.
type Settings struct {
	SeekStep    time.Duration
	VolumeStep  int
	Debounce    time.Duration
	ItemWidth   int
	ItemSpacing int
	ItemMargin  int
}

// SettingsFrom derives Settings from the configuration.
func SettingsFrom(cfg *config.Config) Settings {
	pb := cfg.GetPlaybackConfig()
	ui := cfg.GetUIConfig()
	return Settings{
		SeekStep:    pb.SeekStep(),
		VolumeStep:  pb.VolumeStep,
		Debounce:    ui.Debounce(),
		ItemWidth:   ui.ItemWidth,
		ItemSpacing: ui.ItemSpacing,
		ItemMargin:  ui.ItemMargin,
	}
}

// longSeekFactor multiplies the seek step for the long seek keys.
const longSeekFactor = 6

// posterRows is the poster height in cells; its width follows a 2:3 aspect
// on 1:2 cells.
const posterRows = 12

// Model is the player view.
type Model struct {
	ctx   context.Context
	deps  Deps
	media Media
	set   Settings
	log   zerolog.Logger

	prefs   *preferences
	volume  int
	posters *viewport.Tracker[string]

	playKeys *keymap.Resolver
	menuKeys *keymap.Resolver
	help     help.Model
	showHelp bool

	snap      playback.Snapshot
	textMenu  *trackmenu.Menu
	audioMenu *trackmenu.Menu
	menu      *trackmenu.Menu // open menu, nil when closed

	// pendingTransmit is written ahead of the next frames until the
	// following tick, so the terminal receives the poster once it is ready.
	pendingTransmit string

	loaded bool
	failed bool
	width  int
	height int
}

// New creates the player view for media.
func New(ctx context.Context, deps Deps, media Media, set Settings) Model {
	if deps.Notifier == nil {
		deps.Notifier = notify.Disabled()
	}
	if set.VolumeStep <= 0 {
		set.VolumeStep = 5
	}
	if set.SeekStep <= 0 {
		set.SeekStep = 10 * time.Second
	}

	layout := trackmenu.Layout{ItemWidth: set.ItemWidth, Spacing: set.ItemSpacing, Margin: set.ItemMargin}
	snap := deps.Service.Snapshot()
	m := Model{
		ctx:       ctx,
		deps:      deps,
		media:     media,
		set:       set,
		log:       deps.Logger.With().Str("component", "app").Logger(),
		prefs:     newPreferences(deps.Service, deps.Store, deps.Logger, set.Debounce),
		volume:    snap.Volume,
		playKeys:  keymap.ForContexts(keymap.ContextGlobal, keymap.ContextPlayback),
		menuKeys:  keymap.ForContexts(keymap.ContextGlobal, keymap.ContextMenu),
		help:      help.New(),
		snap:      snap,
		textMenu:  trackmenu.New(playback.KindText, layout),
		audioMenu: trackmenu.New(playback.KindAudio, layout),
	}
	if deps.Poster != nil {
		deps.Poster.SetSize(posterCols, posterRows)
	}
	if deps.Artwork != nil {
		m.posters = viewport.NewTracker(deps.Artwork, 0)
	}
	if m.media.Title == "" {
		m.media.Title = titleOf(media.URI)
	}
	if deps.MPRIS != nil {
		deps.MPRIS.SetMedia(media.URI, m.media.Title, media.Poster)
	}
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		LoadCmd(m.ctx, m.deps.Service, m.media.URI, m.media.Start),
		WaitEvents(m.deps.Service),
		TickCmd(),
	)
}

// Close flushes debounced preferences and releases the poster tracker.
// Call it once the program has exited.
func (m Model) Close() {
	m.prefs.close()
	if m.posters != nil {
		m.posters.Reset()
	}
}

// Failed reports whether the view quit because playback failed.
func (m Model) Failed() bool {
	return m.failed
}
