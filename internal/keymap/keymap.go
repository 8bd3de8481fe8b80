package keymap

import "github.com/charmbracelet/bubbles/key"

// Contexts a binding can belong to.
const (
	ContextGlobal   = "global"
	ContextPlayback = "playback"
	ContextMenu     = "menu"
)

// Binding describes a single key binding.
type Binding struct {
	Keys        []string
	Action      Action
	Description string
	Context     string
}

// All contains all key bindings.
var All = []Binding{
	// Global
	{[]string{"q", "ctrl+c"}, ActionQuit, "Quit", ContextGlobal},
	{[]string{"?"}, ActionHelp, "Toggle help", ContextGlobal},

	// Playback
	{[]string{"space", "p"}, ActionPlayPause, "Play/pause", ContextPlayback},
	{[]string{"s"}, ActionStop, "Stop", ContextPlayback},
	{[]string{"right", "l"}, ActionSeekForward, "Seek forward", ContextPlayback},
	{[]string{"left", "h"}, ActionSeekBack, "Seek back", ContextPlayback},
	{[]string{"shift+right", "L"}, ActionSeekForwardLong, "Seek forward x6", ContextPlayback},
	{[]string{"shift+left", "H"}, ActionSeekBackLong, "Seek back x6", ContextPlayback},
	{[]string{"home", "0"}, ActionSeekStart, "Restart", ContextPlayback},
	{[]string{"up", "k", "+"}, ActionVolumeUp, "Volume up", ContextPlayback},
	{[]string{"down", "j", "-"}, ActionVolumeDown, "Volume down", ContextPlayback},
	{[]string{"]"}, ActionSubtitleBigger, "Bigger subtitles", ContextPlayback},
	{[]string{"["}, ActionSubtitleSmaller, "Smaller subtitles", ContextPlayback},
	{[]string{"="}, ActionSubtitleReset, "Reset subtitle size", ContextPlayback},
	{[]string{"t"}, ActionTextTracks, "Subtitle tracks", ContextPlayback},
	{[]string{"a"}, ActionAudioTracks, "Audio tracks", ContextPlayback},

	// Track menu
	{[]string{"left", "h", "up", "k"}, ActionMenuPrev, "Previous track", ContextMenu},
	{[]string{"right", "l", "down", "j", "tab"}, ActionMenuNext, "Next track", ContextMenu},
	{[]string{"enter", "space"}, ActionMenuSelect, "Select track", ContextMenu},
	{[]string{"esc", "t", "a"}, ActionMenuClose, "Close menu", ContextMenu},
}

// ByContext returns key bindings filtered by context.
func ByContext(context string) []Binding {
	var result []Binding
	for _, kb := range All {
		if kb.Context == context {
			result = append(result, kb)
		}
	}
	return result
}

// Help returns the bindings of context as bubbles key bindings, ready for a
// help.Model.
func Help(context string) []key.Binding {
	bindings := ByContext(context)
	out := make([]key.Binding, 0, len(bindings))
	for _, b := range bindings {
		out = append(out, key.NewBinding(
			key.WithKeys(b.Keys...),
			key.WithHelp(helpKey(b.Keys[0]), b.Description),
		))
	}
	return out
}

func helpKey(k string) string {
	switch k {
	case "space":
		return "␣"
	case "left":
		return "←"
	case "right":
		return "→"
	case "up":
		return "↑"
	case "down":
		return "↓"
	case "shift+left":
		return "⇧←"
	case "shift+right":
		return "⇧→"
	}
	return k
}
