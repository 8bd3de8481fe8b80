package keymap

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolver_Resolve(t *testing.T) {
	r := ForContexts(ContextGlobal, ContextPlayback)

	tests := []struct {
		key  string
		want Action
	}{
		{"q", ActionQuit},
		{"ctrl+c", ActionQuit},
		{"space", ActionPlayPause},
		{"right", ActionSeekForward},
		{"shift+left", ActionSeekBackLong},
		{"]", ActionSubtitleBigger},
		{"t", ActionTextTracks},
		{"enter", ""},
		{"unbound", ""},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			assert.Equal(t, tt.want, r.Resolve(tt.key))
		})
	}
}

func TestResolver_MenuShadowsPlayback(t *testing.T) {
	r := ForContexts(ContextGlobal, ContextMenu)

	assert.Equal(t, ActionMenuNext, r.Resolve("right"))
	assert.Equal(t, ActionMenuSelect, r.Resolve("enter"))
	assert.Equal(t, ActionMenuClose, r.Resolve("esc"))
	assert.Equal(t, ActionQuit, r.Resolve("q"))
}

func TestResolver_LaterBindingWins(t *testing.T) {
	r := NewResolver([]Binding{
		{Keys: []string{"x"}, Action: ActionStop},
		{Keys: []string{"x"}, Action: ActionQuit},
	})
	assert.Equal(t, ActionQuit, r.Resolve("x"))
}

func TestResolver_KeysFor(t *testing.T) {
	r := NewResolver([]Binding{
		{Keys: []string{"a", "b"}, Action: ActionStop},
		{Keys: []string{"b", "c"}, Action: ActionStop},
	})
	assert.Equal(t, []string{"a", "b", "c"}, r.KeysFor(ActionStop))
	assert.Nil(t, r.KeysFor(ActionQuit))
}
