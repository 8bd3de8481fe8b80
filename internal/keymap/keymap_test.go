//nolint:goconst // test cases intentionally repeat strings for readability
package keymap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestByContext(t *testing.T) {
	tests := []struct {
		name            string
		context         string
		expectMinLength int
	}{
		{"global context", ContextGlobal, 2},
		{"playback context", ContextPlayback, 10},
		{"menu context", ContextMenu, 4},
		{"unknown context returns empty", "unknown", 0},
		{"empty context returns empty", "", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ByContext(tt.context)
			assert.GreaterOrEqual(t, len(result), tt.expectMinLength)
			if tt.expectMinLength == 0 {
				assert.Empty(t, result)
			}
			for _, binding := range result {
				assert.Equal(t, tt.context, binding.Context)
			}
		})
	}
}

func TestAllBindingsComplete(t *testing.T) {
	for _, b := range All {
		assert.NotEmpty(t, b.Keys, "binding %q has no keys", b.Action)
		assert.NotEmpty(t, b.Action)
		assert.NotEmpty(t, b.Description, "binding %q has no description", b.Action)
	}
}

func TestNoDuplicateKeysWithinContext(t *testing.T) {
	for _, context := range []string{ContextGlobal, ContextPlayback, ContextMenu} {
		seen := map[string]Action{}
		for _, b := range ByContext(context) {
			for _, k := range b.Keys {
				prev, dup := seen[k]
				assert.False(t, dup, "%s: key %q bound to %q and %q", context, k, prev, b.Action)
				seen[k] = b.Action
			}
		}
	}
}

func TestHelp(t *testing.T) {
	help := Help(ContextPlayback)
	require.Len(t, help, len(ByContext(ContextPlayback)))

	first := help[0]
	assert.Equal(t, []string{"space", "p"}, first.Keys())
	assert.Equal(t, "␣", first.Help().Key)
	assert.Equal(t, "Play/pause", first.Help().Desc)
}
