// Package trackmenu renders a horizontally scrolling row of text or audio
// tracks. The row shows a page of as many entries as fit the width, kept in
// step with the track list by reconciling only the slots that changed.
// Arrows mark the edges that can still scroll.
package trackmenu

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/llehouerou/marquee/internal/icons"
	"github.com/llehouerou/marquee/internal/playback"
	"github.com/llehouerou/marquee/internal/ui/render"
	"github.com/llehouerou/marquee/internal/ui/styles"
	"github.com/llehouerou/marquee/internal/viewport"
)

// Layout is the menu geometry in terminal cells.
type Layout struct {
	ItemWidth int
	Spacing   int
	Margin    int // total, split evenly on both sides
}

// arrowWidth reserves a cell plus a space for each scroll indicator.
const arrowWidth = 2

// Menu is the track menu state. The zero value is not usable; call New.
type Menu struct {
	kind   playback.Kind
	layout Layout

	entries []entry
	cursor  int
	first   int     // index of the first entry of the page
	shown   []entry // the page as last rendered
}

// entry is a menu row. The "Off" entry of the text menu uses NoTrack.
type entry struct {
	id     int
	name   string
	active bool
}

func entryKey(e entry) entry { return entry{id: e.id, name: e.name} }

// New creates a menu for tracks of kind.
func New(kind playback.Kind, layout Layout) *Menu {
	layout.ItemWidth = max(layout.ItemWidth, 4)
	layout.Spacing = max(layout.Spacing, 0)
	layout.Margin = max(layout.Margin, 0)
	return &Menu{kind: kind, layout: layout}
}

// Kind returns the kind of tracks listed.
func (m *Menu) Kind() playback.Kind { return m.kind }

// Len returns the number of entries, including "Off" for text menus.
func (m *Menu) Len() int { return len(m.entries) }

// Cursor returns the focused entry index.
func (m *Menu) Cursor() int { return m.cursor }

// SetTracks replaces the listed tracks. The cursor stays on the same track
// when it is still listed, and moves to the active one otherwise.
func (m *Menu) SetTracks(tracks []playback.Track) {
	candidates := make([]entry, 0, len(tracks)+1)
	if m.kind == playback.KindText {
		off := entry{id: playback.NoTrack, name: "Off", active: true}
		for _, t := range tracks {
			if t.Active {
				off.active = false
			}
		}
		candidates = append(candidates, off)
	}
	for _, t := range tracks {
		candidates = append(candidates, entry{id: t.ID, name: t.Name(), active: t.Active})
	}

	focused, hadFocus := m.selectedEntry()

	var changes viewport.Changes
	m.entries, changes = viewport.Reconcile(m.entries, candidates, len(candidates), entryKey)
	// Activity is not part of identity; refresh it everywhere.
	for i := range m.entries {
		m.entries[i].active = candidates[i].active
	}

	if hadFocus && !changes.Empty() {
		m.cursor = m.indexOf(focused.id)
	}
	if !hadFocus || m.cursor < 0 {
		m.cursor = m.activeIndex()
	}
	m.cursor = min(max(m.cursor, 0), max(len(m.entries)-1, 0))
}

func (m *Menu) selectedEntry() (entry, bool) {
	if m.cursor < 0 || m.cursor >= len(m.entries) {
		return entry{}, false
	}
	return m.entries[m.cursor], true
}

func (m *Menu) indexOf(id int) int {
	for i, e := range m.entries {
		if e.id == id {
			return i
		}
	}
	return -1
}

func (m *Menu) activeIndex() int {
	for i, e := range m.entries {
		if e.active {
			return i
		}
	}
	return 0
}

// Next moves the cursor forward, stopping at the last entry.
func (m *Menu) Next() {
	m.cursor = min(m.cursor+1, max(len(m.entries)-1, 0))
}

// Prev moves the cursor back, stopping at the first entry.
func (m *Menu) Prev() {
	m.cursor = max(m.cursor-1, 0)
}

// Selected returns the track id under the cursor.
func (m *Menu) Selected() (int, bool) {
	e, ok := m.selectedEntry()
	return e.id, ok
}

func (m *Menu) step() int {
	return m.layout.ItemWidth + m.layout.Spacing
}

// bounds returns every entry's extent along the row.
func (m *Menu) bounds() []viewport.Bounds {
	out := make([]viewport.Bounds, len(m.entries))
	start := m.layout.Margin / 2
	for i := range m.entries {
		s := float64(start + i*m.step())
		out[i] = viewport.Bounds{Start: s, End: s + float64(m.layout.ItemWidth)}
	}
	return out
}

// extent returns the total content width.
func (m *Menu) extent() int {
	n := len(m.entries)
	if n == 0 {
		return 0
	}
	return m.layout.Margin + n*m.layout.ItemWidth + (n-1)*m.layout.Spacing
}

// perPage returns how many entries fit in pageSize cells.
func (m *Menu) perPage(pageSize int) int {
	return viewport.VisibleCount(
		float64(m.layout.ItemWidth),
		float64(m.layout.Margin),
		float64(m.layout.Spacing),
		float64(pageSize),
	)
}

// scroll moves the page by whole entries so the cursor is on it, and keeps
// the page full at the end of the list.
func (m *Menu) scroll(pageSize int) {
	page := m.perPage(pageSize)
	if m.cursor < m.first {
		m.first = m.cursor
	}
	if m.cursor >= m.first+page {
		m.first = m.cursor - page + 1
	}
	m.first = min(max(m.first, 0), max(len(m.entries)-page, 0))
}

// offset returns the scroll offset in cells for a page of pageSize cells.
// It is clamped so the last page ends exactly at the content end.
func (m *Menu) offset(pageSize int) int {
	extent := m.extent()
	if extent <= pageSize {
		return 0
	}
	return min(m.first*m.step(), extent-pageSize)
}

// Edge classifies the current scroll position for a page of pageSize cells.
func (m *Menu) Edge(pageSize int) viewport.Edge {
	extent := m.extent()
	page := min(pageSize, extent)
	return viewport.Classify(float64(m.offset(pageSize)), float64(page), float64(extent))
}

// PageCount returns how many entries fit in width cells.
func (m *Menu) PageCount(width int) int {
	return m.perPage(max(width-2*arrowWidth, 0))
}

// VisibleEntries returns the indices fully inside the page for width cells.
func (m *Menu) VisibleEntries(width int) []int {
	pageSize := max(width-2*arrowWidth, 0)
	m.scroll(pageSize)

	w := viewport.WindowAt(float64(m.offset(pageSize)), float64(pageSize))
	all := m.bounds()
	var full []int
	for _, i := range viewport.Visible(all, w) {
		if all[i].Start >= w.Min && all[i].End <= w.Max {
			full = append(full, i)
		}
	}
	return full
}

// Render draws the menu on a single line of width cells.
func (m *Menu) Render(width int, focused bool) string {
	s := styles.T().S()

	label := icons.Current().Subtitles
	if m.kind == playback.KindAudio {
		label = icons.Current().Audio
	}
	if len(m.entries) == 0 {
		return styles.PanelStyle(focused).Width(max(width-2, 0)).
			Render(label + "  " + s.Muted.Render("No tracks"))
	}

	inner := max(width-4-lipgloss.Width(label)-2, 0) // border, padding and label
	first := 0
	if visible := m.VisibleEntries(inner); len(visible) > 0 {
		first = visible[0]
	}
	m.reflow(first, m.PageCount(inner))
	edge := m.Edge(max(inner-2*arrowWidth, 0))

	var b strings.Builder
	b.WriteString(label + "  ")
	if edge.CanScrollBack() {
		b.WriteString(s.Indicator.Render(icons.Current().MoreBefore) + " ")
	} else {
		b.WriteString(strings.Repeat(" ", arrowWidth))
	}
	b.WriteString(strings.Repeat(" ", m.layout.Margin/2))

	for n, e := range m.shown {
		if n > 0 {
			b.WriteString(strings.Repeat(" ", m.layout.Spacing))
		}
		b.WriteString(m.renderEntry(e, focused && first+n == m.cursor))
	}

	if edge.CanScrollForward() {
		b.WriteString(" " + s.Indicator.Render(icons.Current().MoreAfter))
	}

	return styles.PanelStyle(focused).Width(max(width-2, 0)).Render(b.String())
}

// reflow brings the rendered page to count entries starting at first. Slots
// whose track is unchanged are kept; only changed slots are replaced.
func (m *Menu) reflow(first, count int) viewport.Changes {
	first = min(max(first, 0), len(m.entries))
	var changes viewport.Changes
	m.shown, changes = viewport.Reconcile(m.shown, m.entries[first:], count, entryKey)
	for n := range m.shown {
		m.shown[n].active = m.entries[first+n].active
	}
	return changes
}

func (m *Menu) renderEntry(e entry, cursor bool) string {
	s := styles.T().S()

	marker := " "
	if e.active {
		marker = icons.Current().Selected
	}
	text := render.TruncateAndPad(marker+" "+e.name, m.layout.ItemWidth)

	switch {
	case cursor:
		return s.Cursor.Render(text)
	case e.active:
		return s.Active.Render(text)
	}
	return s.Base.Render(text)
}
