package playback

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/llehouerou/marquee/internal/lang"
	"github.com/llehouerou/marquee/internal/player"
)

// NoTrack deselects every track of a kind.
const NoTrack = player.NoTrack

// Kind is a track kind, re-exported for consumers that never touch a backend.
type Kind = player.Kind

// Track kinds, re-exported for consumers that never touch a backend.
const (
	KindText  = player.KindText
	KindAudio = player.KindAudio
)

// Track is a selectable text or audio stream of the current session.
type Track struct {
	ID       int // stable for the session
	Kind     player.Kind
	Language string // normalized ISO 639 code, "und" when unknown
	Label    string // language name, empty when unknown
	Title    string // stream title from the container, may be empty
	Active   bool
}

// Name returns the best human-readable name for the track.
func (t Track) Name() string {
	switch {
	case t.Label != "" && t.Title != "":
		return fmt.Sprintf("%s (%s)", t.Label, t.Title)
	case t.Label != "":
		return t.Label
	case t.Title != "":
		return t.Title
	case t.Language != lang.Undetermined:
		return t.Language
	default:
		return fmt.Sprintf("Track %d", t.ID)
	}
}

// LanguageLookup resolves language codes to display labels.
type LanguageLookup interface {
	Label(code string) (label string, ok bool)
}

// deriveTracks lists the streams of kind as tracks sorted by label, then
// language, then ID. The result depends only on backend state.
func deriveTracks(kind player.Kind, backend player.Backend, lookup LanguageLookup) []Track {
	streams, current := backend.Streams(kind)
	if len(streams) == 0 {
		return nil
	}

	tracks := make([]Track, 0, len(streams))
	for _, s := range streams {
		t := Track{
			ID:       s.ID,
			Kind:     kind,
			Language: lang.Normalize(s.Language),
			Title:    s.Title,
			Active:   s.ID == current,
		}
		if lookup != nil {
			if label, ok := lookup.Label(t.Language); ok {
				t.Label = label
			}
		}
		tracks = append(tracks, t)
	}

	slices.SortStableFunc(tracks, func(a, b Track) int {
		return cmp.Or(
			cmp.Compare(a.Label, b.Label),
			cmp.Compare(a.Language, b.Language),
			cmp.Compare(a.ID, b.ID),
		)
	})
	return tracks
}

func hasTrack(tracks []Track, id int) bool {
	return slices.ContainsFunc(tracks, func(t Track) bool { return t.ID == id })
}
