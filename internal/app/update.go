package app

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/pkg/errors"

	"github.com/llehouerou/marquee/internal/notify"
	"github.com/llehouerou/marquee/internal/playback"
	"github.com/llehouerou/marquee/internal/viewport"
)

// Update handles messages and returns updated model and commands.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		m.updatePoster()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case TickMsg:
		m.pendingTransmit = ""
		m.refresh()
		return m, TickCmd()

	case EventsMsg:
		return m.handleEvents()

	case LoadedMsg:
		return m.handleLoaded(msg)

	case ArtworkMsg:
		m.handleArtwork(msg)
		return m, nil
	}
	return m, nil
}

// refresh reads the latest snapshot. The local volume follows the engine
// unless a key change is still waiting to be saved.
func (m *Model) refresh() {
	m.snap = m.deps.Service.Snapshot()
	if _, pending := m.prefs.pending(); !pending {
		m.volume = m.snap.Volume
	}
}

func (m Model) handleEvents() (tea.Model, tea.Cmd) {
	events := m.deps.Service.Drain()
	m.refresh()

	for _, ev := range events {
		switch ev := ev.(type) {
		case playback.TracksChanged:
			m.textMenu.SetTracks(ev.Text)
			m.audioMenu.SetTracks(ev.Audio)
		case playback.Ended:
			return m.finish()
		case playback.Error:
			return m.fail(ev.Err)
		}
	}
	return m, WaitEvents(m.deps.Service)
}

func (m Model) handleLoaded(msg LoadedMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		if errors.Is(msg.Err, context.Canceled) || errors.Is(msg.Err, playback.ErrClosed) {
			return m, tea.Quit
		}
		return m.fail(msg.Err)
	}
	m.loaded = true
	m.refresh()
	return m, nil
}

// finish leaves the player at end of stream. A finished media has nothing
// left to resume.
func (m Model) finish() (tea.Model, tea.Cmd) {
	m.log.Info().Str("uri", m.media.URI).Msg("playback ended")
	if err := m.deps.Store.Forget(m.media.URI); err != nil {
		m.log.Warn().Err(err).Msg("forget resume position")
	}
	return m, tea.Quit
}

// fail leaves the player after a playback failure. The user sees a single
// generic notification; the details go to the log.
func (m Model) fail(err error) (tea.Model, tea.Cmd) {
	m.failed = true
	m.log.Error().Err(err).Str("uri", m.media.URI).Msg("playback failed")

	n := notify.PlaybackFailed(m.media.Title, notify.ArtworkIcon(m.media.URI))
	if _, nerr := m.deps.Notifier.Notify(n); nerr != nil {
		m.log.Warn().Err(nerr).Msg("send failure notification")
	}
	return m, tea.Quit
}

// updatePoster shows the poster to the artwork loader once its last row
// fits the terminal.
func (m *Model) updatePoster() {
	if m.posters == nil || m.media.Poster == "" {
		return
	}
	if !m.posterFits() {
		// Update skips passes with nothing visible, so release explicitly.
		m.posters.Reset()
		return
	}
	bottom := float64(posterTop + posterRows)
	m.posters.Update(
		[]string{m.media.Poster},
		[]viewport.Bounds{{Start: bottom - 1, End: bottom}},
		viewport.WindowAt(0, float64(m.height-bottomRows)),
	)
}

func (m *Model) handleArtwork(img ArtworkMsg) {
	if m.deps.Poster == nil || img.URL != m.media.Poster {
		return
	}
	cmd, err := m.deps.Poster.Set(img.URL, img.PNG)
	if err != nil {
		m.log.Warn().Err(err).Str("url", img.URL).Msg("prepare poster")
	}
	m.pendingTransmit = cmd
}
