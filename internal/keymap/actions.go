// Package keymap defines key bindings and action dispatch for the application.
package keymap

// Action represents a user-triggerable action.
type Action string

const (
	// Global actions
	ActionQuit Action = "quit"
	ActionHelp Action = "help"

	// Playback actions
	ActionPlayPause       Action = "play_pause"
	ActionStop            Action = "stop"
	ActionSeekForward     Action = "seek_forward"
	ActionSeekBack        Action = "seek_back"
	ActionSeekForwardLong Action = "seek_forward_long"
	ActionSeekBackLong    Action = "seek_back_long"
	ActionSeekStart       Action = "seek_start"
	ActionVolumeUp        Action = "volume_up"
	ActionVolumeDown      Action = "volume_down"

	// Subtitle size (debounced, see ui.debounce_ms)
	ActionSubtitleBigger  Action = "subtitle_bigger"
	ActionSubtitleSmaller Action = "subtitle_smaller"
	ActionSubtitleReset   Action = "subtitle_reset"

	// Track menus
	ActionTextTracks  Action = "text_tracks"
	ActionAudioTracks Action = "audio_tracks"

	// Menu navigation
	ActionMenuPrev   Action = "menu_prev"
	ActionMenuNext   Action = "menu_next"
	ActionMenuSelect Action = "menu_select"
	ActionMenuClose  Action = "menu_close"
)
