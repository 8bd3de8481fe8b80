// Package playerbar renders the one-line playback status bar.
package playerbar

import (
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/llehouerou/marquee/internal/icons"
	"github.com/llehouerou/marquee/internal/playback"
	"github.com/llehouerou/marquee/internal/ui/render"
	"github.com/llehouerou/marquee/internal/ui/styles"
)

// Height is the rendered height including borders.
const Height = 3

// State holds everything needed to render the player bar.
type State struct {
	Title     string
	State     playback.State
	Paused    bool
	Buffering bool
	Position  time.Duration
	Duration  time.Duration
	Volume    int

	SubtitleScale float64
	// ScalePending marks a subtitle size still being debounced.
	ScalePending bool

	Text  *playback.Track
	Audio *playback.Track
}

// NewState builds a State from an engine snapshot.
func NewState(s playback.Snapshot, title string) State {
	st := State{
		Title:         title,
		State:         s.State,
		Paused:        s.Paused,
		Buffering:     s.Buffering,
		Position:      s.Position,
		Duration:      s.Duration,
		Volume:        s.Volume,
		SubtitleScale: s.SubtitleScale,
	}
	if t, ok := s.ActiveTrack(playback.KindText); ok {
		st.Text = &t
	}
	if t, ok := s.ActiveTrack(playback.KindAudio); ok {
		st.Audio = &t
	}
	return st
}

// Render returns the player bar string for the given width.
// Returns empty string when no media is loaded.
func Render(s State, width int) string {
	if s.State == playback.StateIdle || width < 10 {
		return ""
	}

	innerWidth := max(width-4, 0) // border + padding

	left := statusGlyph(s) + "  " + styles.T().S().Title.Render(s.Title)
	right := renderSettings(s)

	var middle string
	switch s.State {
	case playback.StateLoading:
		middle = styles.T().S().Muted.Render("Loading…")
	case playback.StateEnded:
		middle = styles.T().S().Muted.Render("Ended")
	case playback.StateErrored:
		middle = styles.T().S().Error.Render("Playback failed")
	default:
		middle = ""
	}

	fixed := lipgloss.Width(right) + 3
	if middle == "" {
		titleMax := max(innerWidth*2/5, 10)
		left = statusGlyph(s) + "  " + styles.T().S().Title.Render(render.Truncate(s.Title, titleMax))
		barWidth := innerWidth - lipgloss.Width(left) - fixed - 3
		middle = RenderProgressBar(s.Position, s.Duration, barWidth)
	} else {
		titleMax := max(innerWidth-fixed-lipgloss.Width(middle)-6, 5)
		left = statusGlyph(s) + "  " + styles.T().S().Title.Render(render.Truncate(s.Title, titleMax))
	}

	line := render.Row(left+"   "+middle, right, innerWidth)
	return styles.PanelStyle(false).Width(width - 2).Render(line)
}

func statusGlyph(s State) string {
	switch {
	case s.Buffering:
		return styles.T().S().Warning.Render(icons.Current().Buffering)
	case s.State == playback.StateEnded || s.State == playback.StateErrored:
		return icons.Current().Stop
	case s.State == playback.StateLoading:
		return icons.Current().Buffering
	}
	return icons.Status(s.Paused)
}

// renderSettings renders the right-hand indicators: volume, subtitle
// track and size, audio track.
func renderSettings(s State) string {
	parts := []string{RenderVolume(s.Volume)}

	if s.Text != nil {
		sub := icons.Current().Subtitles + " " + render.Truncate(s.Text.Name(), 16)
		if s.SubtitleScale != 1 || s.ScalePending {
			scale := "×" + strconv.FormatFloat(s.SubtitleScale, 'f', -1, 64)
			if s.ScalePending {
				scale = styles.T().S().Warning.Render(scale)
			}
			sub += " " + scale
		}
		parts = append(parts, sub)
	}
	if s.Audio != nil {
		parts = append(parts, icons.Current().Audio+" "+render.Truncate(s.Audio.Name(), 16))
	}

	return styles.T().S().Muted.Render(strings.Join(parts, "  "))
}
