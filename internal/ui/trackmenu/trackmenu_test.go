package trackmenu

import (
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/llehouerou/marquee/internal/icons"
	"github.com/llehouerou/marquee/internal/playback"
	"github.com/llehouerou/marquee/internal/viewport"
)

var layout = Layout{ItemWidth: 10, Spacing: 1, Margin: 2}

func textTracks(ids ...int) []playback.Track {
	out := make([]playback.Track, 0, len(ids))
	for _, id := range ids {
		out = append(out, playback.Track{ID: id, Kind: playback.KindText, Title: "t"})
	}
	return out
}

func TestSetTracks_TextMenuHasOff(t *testing.T) {
	m := New(playback.KindText, layout)
	m.SetTracks(textTracks(1, 2))

	require.Equal(t, 3, m.Len())
	id, ok := m.Selected()
	require.True(t, ok)
	assert.Equal(t, playback.NoTrack, id, "nothing active selects Off")
}

func TestSetTracks_AudioMenuStartsOnActive(t *testing.T) {
	m := New(playback.KindAudio, layout)
	m.SetTracks([]playback.Track{
		{ID: 1, Kind: playback.KindAudio, Language: "eng"},
		{ID: 2, Kind: playback.KindAudio, Language: "jpn", Active: true},
	})

	assert.Equal(t, 2, m.Len())
	id, _ := m.Selected()
	assert.Equal(t, 2, id)
}

func TestSetTracks_CursorFollowsTrack(t *testing.T) {
	m := New(playback.KindText, layout)
	m.SetTracks(textTracks(1, 2, 3, 4, 5))
	for range 3 {
		m.Next()
	}
	id, _ := m.Selected()
	require.Equal(t, 3, id)

	m.SetTracks(textTracks(2, 3, 4, 5))

	id, _ = m.Selected()
	assert.Equal(t, 3, id)
	assert.Equal(t, 2, m.Cursor())
}

func TestSetTracks_CursorFallsBackWhenTrackGone(t *testing.T) {
	m := New(playback.KindText, layout)
	m.SetTracks(textTracks(1, 2))
	m.Next()
	m.Next()

	tracks := textTracks(1)
	tracks[0].Active = true
	m.SetTracks(tracks)

	id, _ := m.Selected()
	assert.Equal(t, 1, id)
}

func TestSetTracks_ActiveRefreshedWithoutIdentityChange(t *testing.T) {
	m := New(playback.KindAudio, layout)
	tracks := []playback.Track{
		{ID: 1, Kind: playback.KindAudio, Active: true},
		{ID: 2, Kind: playback.KindAudio},
	}
	m.SetTracks(tracks)
	tracks[0].Active, tracks[1].Active = false, true
	m.SetTracks(tracks)

	assert.False(t, m.entries[0].active)
	assert.True(t, m.entries[1].active)
}

func TestNextPrev_Clamp(t *testing.T) {
	m := New(playback.KindText, layout)
	m.SetTracks(textTracks(1))

	m.Prev()
	assert.Equal(t, 0, m.Cursor())
	m.Next()
	m.Next()
	assert.Equal(t, 1, m.Cursor())
}

func TestSelected_Empty(t *testing.T) {
	m := New(playback.KindAudio, layout)
	m.SetTracks(nil)

	_, ok := m.Selected()
	assert.False(t, ok)
}

func TestPageCount(t *testing.T) {
	m := New(playback.KindText, layout)

	// 30 cells minus both arrows leaves 26: (26 - 2 + 1) / 11 = 2.
	assert.Equal(t, 2, m.PageCount(30))
	assert.Equal(t, 1, m.PageCount(0))
}

func TestVisibleEntries_Scroll(t *testing.T) {
	m := New(playback.KindText, layout)
	m.SetTracks(textTracks(1, 2, 3, 4, 5)) // six entries, 67 cells

	tests := []struct {
		name    string
		cursor  int
		visible []int
		edge    viewport.Edge
	}{
		{"start", 0, []int{0, 1}, viewport.EdgeStart},
		{"middle", 2, []int{1, 2}, viewport.EdgeMiddle},
		{"end", 5, []int{4, 5}, viewport.EdgeEnd},
		{"back to middle keeps offset", 4, []int{4, 5}, viewport.EdgeEnd},
		{"back to start", 0, []int{0, 1}, viewport.EdgeStart},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for m.Cursor() < tt.cursor {
				m.Next()
			}
			for m.Cursor() > tt.cursor {
				m.Prev()
			}
			assert.Equal(t, tt.visible, m.VisibleEntries(30))
			assert.Equal(t, tt.edge, m.Edge(26))
		})
	}
}

func TestVisibleEntries_AllFit(t *testing.T) {
	m := New(playback.KindAudio, layout)
	m.SetTracks([]playback.Track{{ID: 1}, {ID: 2}})

	assert.Equal(t, []int{0, 1}, m.VisibleEntries(80))
	assert.Equal(t, viewport.EdgeNone, m.Edge(76))
}

func TestRender(t *testing.T) {
	icons.Init("unicode")

	m := New(playback.KindText, layout)
	m.SetTracks(textTracks(1, 2, 3, 4, 5))

	out := m.Render(60, true)
	assert.Contains(t, out, "Off")
	assert.Contains(t, out, icons.Current().MoreAfter)
	assert.NotContains(t, out, icons.Current().MoreBefore)
}

func TestRender_NoTracks(t *testing.T) {
	m := New(playback.KindAudio, layout)
	assert.Contains(t, m.Render(40, false), "No tracks")
}

func TestReflow_ReplacesOnlyChangedSlots(t *testing.T) {
	m := New(playback.KindText, layout)
	m.SetTracks(textTracks(1, 2, 3, 4, 5))

	ch := m.reflow(0, 3)
	assert.Equal(t, []int{0, 1, 2}, ch.Added)

	m.SetTracks(textTracks(9, 2, 3, 4, 5))
	ch = m.reflow(0, 3)
	assert.Equal(t, []int{1}, ch.Replaced)
	assert.Empty(t, ch.Added)
	assert.Zero(t, ch.Removed)

	ch = m.reflow(0, 3)
	assert.True(t, ch.Empty(), "unchanged page is left alone")

	ch = m.reflow(0, 2)
	assert.Equal(t, 1, ch.Removed)
	assert.Empty(t, ch.Replaced)
	require.Len(t, m.shown, 2)
	assert.Equal(t, 9, m.shown[1].id)
}

func TestReflow_RefreshesActive(t *testing.T) {
	m := New(playback.KindAudio, layout)
	tracks := []playback.Track{{ID: 1, Active: true}, {ID: 2}}
	m.SetTracks(tracks)
	m.reflow(0, 2)

	tracks[0].Active, tracks[1].Active = false, true
	m.SetTracks(tracks)
	ch := m.reflow(0, 2)

	assert.True(t, ch.Empty())
	assert.False(t, m.shown[0].active)
	assert.True(t, m.shown[1].active)
}

func TestRender_ShowsOnePage(t *testing.T) {
	icons.Init("unicode")

	m := New(playback.KindText, layout)
	m.SetTracks(textTracks(1, 2, 3, 4, 5))
	inner := 60 - 4 - lipgloss.Width(icons.Current().Subtitles) - 2

	m.Render(60, true)
	require.Len(t, m.shown, m.PageCount(inner))
	assert.Equal(t, playback.NoTrack, m.shown[0].id)

	for range 5 {
		m.Next()
	}
	out := m.Render(60, true)
	require.Len(t, m.shown, m.PageCount(inner))
	assert.Equal(t, 5, m.shown[len(m.shown)-1].id, "last page ends on the last track")
	assert.Contains(t, out, icons.Current().MoreBefore)
	assert.NotContains(t, out, "Off")
}
