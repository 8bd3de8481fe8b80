package playback

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/llehouerou/marquee/internal/lang"
	"github.com/llehouerou/marquee/internal/player"
)

func TestDeriveTracks_SortedByLabelThenLanguageThenID(t *testing.T) {
	m := player.NewMock()
	m.SetStreams(player.KindAudio, []player.Stream{
		{ID: 0, Language: "deu"},
		{ID: 1, Language: "eng", Title: "Commentary"},
		{ID: 2, Language: ""},
		{ID: 3, Language: "eng"},
	}, 3)

	tracks := deriveTracks(player.KindAudio, m, lang.English())

	require.Len(t, tracks, 4)
	assert.Equal(t, []int{2, 1, 3, 0}, []int{tracks[0].ID, tracks[1].ID, tracks[2].ID, tracks[3].ID})
	assert.Equal(t, "und", tracks[0].Language)
	assert.Empty(t, tracks[0].Label)
	assert.Equal(t, "English", tracks[1].Label)
	assert.Equal(t, "German", tracks[3].Label)
	for _, tr := range tracks {
		assert.Equal(t, player.KindAudio, tr.Kind)
	}
}

func TestDeriveTracks_ExactlyOneActive(t *testing.T) {
	m := player.NewMock()
	m.SetStreams(player.KindText, []player.Stream{
		{ID: 5, Language: "fra"},
		{ID: 6, Language: "ita"},
	}, 6)

	active := 0
	for _, tr := range deriveTracks(player.KindText, m, lang.English()) {
		if tr.Active {
			active++
			assert.Equal(t, 6, tr.ID)
		}
	}
	assert.Equal(t, 1, active)
}

func TestDeriveTracks_NoneActive(t *testing.T) {
	m := player.NewMock()
	m.SetStreams(player.KindText, []player.Stream{{ID: 1, Language: "eng"}}, player.NoTrack)

	tracks := deriveTracks(player.KindText, m, lang.English())
	require.Len(t, tracks, 1)
	assert.False(t, tracks[0].Active)
}

func TestDeriveTracks_Idempotent(t *testing.T) {
	m := player.NewMock()
	m.SetStreams(player.KindAudio, []player.Stream{
		{ID: 1, Language: "jpn"},
		{ID: 2, Language: "eng"},
		{ID: 3, Language: "xx-invalid"},
	}, 1)

	first := deriveTracks(player.KindAudio, m, lang.English())
	second := deriveTracks(player.KindAudio, m, lang.English())

	assert.Equal(t, first, second)
}

func TestDeriveTracks_Empty(t *testing.T) {
	assert.Nil(t, deriveTracks(player.KindText, player.NewMock(), nil))
}

func TestDeriveTracks_NilLookupLeavesLabelsEmpty(t *testing.T) {
	m := player.NewMock()
	m.SetStreams(player.KindAudio, []player.Stream{{ID: 1, Language: "eng"}}, 1)

	tracks := deriveTracks(player.KindAudio, m, nil)
	require.Len(t, tracks, 1)
	assert.Empty(t, tracks[0].Label)
	assert.Equal(t, "eng", tracks[0].Language)
}

func TestTrack_Name(t *testing.T) {
	tests := []struct {
		name  string
		track Track
		want  string
	}{
		{"label and title", Track{Label: "English", Title: "SDH"}, "English (SDH)"},
		{"label only", Track{Label: "English"}, "English"},
		{"title only", Track{Title: "Director", Language: "und"}, "Director"},
		{"code only", Track{Language: "xx"}, "xx"},
		{"nothing", Track{ID: 3, Language: "und"}, "Track 3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.track.Name())
		})
	}
}

func TestSnapshot_Progress(t *testing.T) {
	assert.InDelta(t, 0.0, Snapshot{}.Progress(), 1e-9)
	assert.InDelta(t, 0.5, Snapshot{Position: 30, Duration: 60}.Progress(), 1e-9)
	assert.InDelta(t, 1.0, Snapshot{Position: 90, Duration: 60}.Progress(), 1e-9)
}
