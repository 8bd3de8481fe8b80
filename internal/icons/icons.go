// Package icons selects the glyph set used by the player bar and menus.
package icons

// Style represents the icon style to use.
type Style string

const (
	StyleNerd    Style = "nerd"
	StyleUnicode Style = "unicode"
	StyleNone    Style = "none"
)

// Icons holds the icon characters for the current style.
type Icons struct {
	Play       string
	Pause      string
	Stop       string
	Buffering  string
	Volume     string
	VolumeMute string
	Subtitles  string
	Audio      string
	Selected   string
	MoreBefore string
	MoreAfter  string
}

var (
	nerdIcons = Icons{
		Play:       "\uf04b",     // nf-fa-play
		Pause:      "\uf04c",     // nf-fa-pause
		Stop:       "\uf04d",     // nf-fa-stop
		Buffering:  "\U000f0996", // nf-md-progress_clock
		Volume:     "\U000f057e", // nf-md-volume_high
		VolumeMute: "\U000f075f", // nf-md-volume_mute
		Subtitles:  "\U000f0a16", // nf-md-subtitles
		Audio:      "\U000f05c5", // nf-md-waveform
		Selected:   "\uf00c",     // nf-fa-check
		MoreBefore: "\uf104",     // nf-fa-angle_left
		MoreAfter:  "\uf105",     // nf-fa-angle_right
	}

	unicodeIcons = Icons{
		Play:       "▶",
		Pause:      "⏸",
		Stop:       "■",
		Buffering:  "⧗",
		Volume:     "🔊",
		VolumeMute: "🔇",
		Subtitles:  "💬",
		Audio:      "🎧",
		Selected:   "✓",
		MoreBefore: "‹",
		MoreAfter:  "›",
	}

	noneIcons = Icons{
		Play:       ">",
		Pause:      "||",
		Stop:       "[]",
		Buffering:  "...",
		Volume:     "vol",
		VolumeMute: "mute",
		Subtitles:  "sub",
		Audio:      "aud",
		Selected:   "*",
		MoreBefore: "<",
		MoreAfter:  ">",
	}

	// current holds the active icon set
	current = unicodeIcons
)

// Init initializes the icons based on the style.
// Call this once at startup with the config value.
func Init(style string) {
	switch Style(style) {
	case StyleNerd:
		current = nerdIcons
	case StyleNone:
		current = noneIcons
	case StyleUnicode:
		current = unicodeIcons
	default:
		current = unicodeIcons
	}
}

// Current returns the active icon set.
func Current() Icons {
	return current
}

// Status returns the play/pause glyph for the given paused flag.
func Status(paused bool) string {
	if paused {
		return current.Pause
	}
	return current.Play
}

// Volume returns the volume glyph, muted at 0%.
func Volume(percent int) string {
	if percent <= 0 {
		return current.VolumeMute
	}
	return current.Volume
}
