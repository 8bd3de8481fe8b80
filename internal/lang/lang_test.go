package lang

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLookup_Label(t *testing.T) {
	l := English()

	tests := []struct {
		code   string
		want   string
		wantOK bool
	}{
		{"en", "English", true},
		{"eng", "English", true},
		{"ENG", "English", true},
		{"de", "German", true},
		{"es", "Spanish", true},
		{"und", "", false},
		{"", "", false},
		{"  ", "", false},
		{"not a code", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			got, ok := l.Label(tt.code)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLookup_MemoizesResults(t *testing.T) {
	l := English()

	first, _ := l.Label("fr")
	second, _ := l.Label("fr")

	assert.Equal(t, "French", first)
	assert.Equal(t, first, second)
	assert.Len(t, l.cache, 1)
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "und", Normalize(""))
	assert.Equal(t, "pt-br", Normalize(" pt_BR "))
	assert.Equal(t, "en", Normalize("EN"))
}
