package app

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"

	"github.com/llehouerou/marquee/internal/keymap"
	"github.com/llehouerou/marquee/internal/ui/playerbar"
	"github.com/llehouerou/marquee/internal/ui/render"
	"github.com/llehouerou/marquee/internal/ui/styles"
)

const (
	// posterTop is the 0-based line where the poster starts, under the title.
	posterTop = 1
	// posterCols is the poster width in cells.
	posterCols = posterRows * 4 / 3
	// menuRows is the height of an open track menu.
	menuRows = 3
	// bottomRows is everything stacked under the poster area.
	bottomRows = menuRows + 1 + playerbar.Height
)

// View renders the player view.
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	s := styles.T().S()

	var bottom []string
	if m.menu != nil {
		bottom = append(bottom, m.menu.Render(m.width, true))
	}
	if m.showHelp {
		bottom = append(bottom, m.help.FullHelpView(m.helpKeys().FullHelp()))
	} else {
		bottom = append(bottom, m.help.ShortHelpView(m.helpKeys().ShortHelp()))
	}
	if !m.loaded {
		bottom = append(bottom, " "+s.Muted.Render("Loading…"))
	}
	bar := playerbar.NewState(m.snap, m.media.Title)
	bar.Volume = m.volume
	if scale, ok := m.prefs.pendingScale(); ok {
		bar.SubtitleScale = scale
		bar.ScalePending = true
	}
	bottom = append(bottom, playerbar.Render(bar, m.width))
	below := strings.Join(bottom, "\n")

	t := styles.T()
	top := []string{" " + styles.ApplyGradient(render.Truncate(m.media.Title, m.width-2), t.Primary, t.Secondary)}
	showPoster := m.posterFits() && posterTop+posterRows+lineCount(below) <= m.height
	if showPoster {
		for _, line := range strings.Split(m.deps.Poster.View(), "\n") {
			top = append(top, " "+line)
		}
	}

	view := strings.Join(top, "\n")
	gap := m.height - lineCount(view) - lineCount(below)
	view += strings.Repeat("\n", max(gap, 0)+1) + below
	view = enforceHeight(view, m.height)

	if m.pendingTransmit != "" {
		view = m.pendingTransmit + view
	}
	if showPoster {
		// 1-based: one title line above, one margin column before.
		view += m.deps.Poster.Place(posterTop+1, 2)
	}
	return view
}

// posterFits reports whether the poster area has room in the terminal.
func (m Model) posterFits() bool {
	return m.deps.Poster != nil && m.media.Poster != "" &&
		m.height >= posterTop+posterRows+bottomRows && m.width >= posterCols+2
}

func lineCount(s string) int {
	if s == "" {
		return 0
	}
	return strings.Count(s, "\n") + 1
}

// enforceHeight pads or truncates view to exactly height lines.
func enforceHeight(view string, height int) string {
	lines := strings.Split(view, "\n")
	switch {
	case len(lines) < height:
		for len(lines) < height {
			lines = append(lines, "")
		}
	case len(lines) > height:
		lines = lines[len(lines)-height:]
	}
	return strings.Join(lines, "\n")
}

// helpKeys adapts the keymap to bubbles/help for the current context.
type helpKeys struct {
	context string
}

func (m Model) helpKeys() helpKeys {
	if m.menu != nil {
		return helpKeys{context: keymap.ContextMenu}
	}
	return helpKeys{context: keymap.ContextPlayback}
}

// ShortHelp lists the first few bindings of the context plus help itself.
func (h helpKeys) ShortHelp() []key.Binding {
	bindings := keymap.Help(h.context)
	bindings = bindings[:min(len(bindings), 4)]
	return append(bindings, keymap.Help(keymap.ContextGlobal)...)
}

// FullHelp lists every binding of the context, then the global ones.
func (h helpKeys) FullHelp() [][]key.Binding {
	bindings := keymap.Help(h.context)
	var cols [][]key.Binding
	for len(bindings) > 0 {
		n := min(len(bindings), 5)
		cols = append(cols, bindings[:n])
		bindings = bindings[n:]
	}
	return append(cols, keymap.Help(keymap.ContextGlobal))
}
