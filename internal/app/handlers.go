package app

import (
	"math"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/llehouerou/marquee/internal/keymap"
	"github.com/llehouerou/marquee/internal/playback"
	"github.com/llehouerou/marquee/internal/player"
	"github.com/llehouerou/marquee/internal/state"
	"github.com/llehouerou/marquee/internal/ui/trackmenu"
)

// subtitleStep is the subtitle scale change per key press.
const subtitleStep = 0.1

// keyName maps a key message to the names used by the keymap.
func keyName(msg tea.KeyMsg) string {
	if k := msg.String(); k != " " {
		return k
	}
	return "space"
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	k := keyName(msg)
	if m.menu != nil {
		return m.handleMenuAction(m.menuKeys.Resolve(k))
	}
	return m.handleAction(m.playKeys.Resolve(k))
}

func (m Model) handleAction(action keymap.Action) (tea.Model, tea.Cmd) {
	svc := m.deps.Service

	switch action {
	case keymap.ActionQuit:
		return m, tea.Quit
	case keymap.ActionHelp:
		m.showHelp = !m.showHelp
	case keymap.ActionPlayPause:
		svc.Toggle()
	case keymap.ActionStop:
		svc.Unload()
		return m, tea.Quit
	case keymap.ActionSeekForward:
		svc.SeekBy(m.set.SeekStep)
	case keymap.ActionSeekBack:
		svc.SeekBy(-m.set.SeekStep)
	case keymap.ActionSeekForwardLong:
		svc.SeekBy(longSeekFactor * m.set.SeekStep)
	case keymap.ActionSeekBackLong:
		svc.SeekBy(-longSeekFactor * m.set.SeekStep)
	case keymap.ActionSeekStart:
		svc.Seek(0)
	case keymap.ActionVolumeUp:
		m.setVolume(m.volume + m.set.VolumeStep)
	case keymap.ActionVolumeDown:
		m.setVolume(m.volume - m.set.VolumeStep)
	case keymap.ActionSubtitleBigger:
		m.setScale(m.scale() + subtitleStep)
	case keymap.ActionSubtitleSmaller:
		m.setScale(m.scale() - subtitleStep)
	case keymap.ActionSubtitleReset:
		m.setScale(1)
	case keymap.ActionTextTracks:
		m.openMenu(m.textMenu)
	case keymap.ActionAudioTracks:
		m.openMenu(m.audioMenu)
	}
	return m, nil
}

func (m Model) handleMenuAction(action keymap.Action) (tea.Model, tea.Cmd) {
	switch action {
	case keymap.ActionQuit:
		return m, tea.Quit
	case keymap.ActionHelp:
		m.showHelp = !m.showHelp
	case keymap.ActionMenuPrev:
		m.menu.Prev()
	case keymap.ActionMenuNext:
		m.menu.Next()
	case keymap.ActionMenuSelect:
		if id, ok := m.menu.Selected(); ok {
			if m.menu.Kind() == playback.KindText {
				m.deps.Service.SelectTextTrack(id)
			} else {
				m.deps.Service.SelectAudioTrack(id)
			}
		}
		m.menu = nil
	case keymap.ActionMenuClose:
		m.menu = nil
	}
	return m, nil
}

func (m *Model) openMenu(menu *trackmenu.Menu) {
	menu.SetTracks(m.snap.Tracks(menu.Kind()))
	m.menu = menu
}

// scale returns the subtitle scale the user last asked for.
func (m Model) scale() float64 {
	if s, ok := m.prefs.pendingScale(); ok {
		return s
	}
	return m.snap.SubtitleScale
}

func (m *Model) setVolume(percent int) {
	m.volume = min(max(percent, 0), 100)
	m.prefs.setVolume(state.Preferences{Volume: m.volume, SubtitleScale: m.scale()})
}

func (m *Model) setScale(factor float64) {
	factor = player.ClampSubtitleScale(math.Round(factor*100) / 100)
	m.prefs.setScale(state.Preferences{Volume: m.volume, SubtitleScale: factor})
}
