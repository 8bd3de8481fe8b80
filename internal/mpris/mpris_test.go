//go:build linux

package mpris

import (
	"testing"
	"time"

	"github.com/quarckster/go-mpris-server/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/llehouerou/marquee/internal/playback"
)

// fakeService records the calls the player adapter makes.
type fakeService struct {
	playback.Service
	snap   playback.Snapshot
	calls  []string
	seek   time.Duration
	seekBy time.Duration
	volume int
}

func (f *fakeService) Snapshot() playback.Snapshot { return f.snap }
func (f *fakeService) Play()                       { f.calls = append(f.calls, "play") }
func (f *fakeService) Pause()                      { f.calls = append(f.calls, "pause") }
func (f *fakeService) Toggle()                     { f.calls = append(f.calls, "toggle") }
func (f *fakeService) Unload()                     { f.calls = append(f.calls, "unload") }
func (f *fakeService) Seek(d time.Duration)        { f.seek = d }
func (f *fakeService) SeekBy(d time.Duration)      { f.seekBy = d }
func (f *fakeService) SetVolume(v int)             { f.volume = v }

const sessionID = "6f1c2a9e-3b7d-4c1e-9a52-0d8e4f7b1c23"

func playingSnapshot() playback.Snapshot {
	return playback.Snapshot{
		SessionID: sessionID,
		URI:       "https://example.com/media/Big%20Buck%20Bunny.mp4",
		State:     playback.StatePlaying,
		Position:  90 * time.Second,
		Duration:  10 * time.Minute,
		Volume:    80,
	}
}

func TestPlaybackStatus(t *testing.T) {
	tests := []struct {
		state playback.State
		want  types.PlaybackStatus
	}{
		{playback.StateIdle, types.PlaybackStatusStopped},
		{playback.StateLoading, types.PlaybackStatusPaused},
		{playback.StatePlaying, types.PlaybackStatusPlaying},
		{playback.StatePaused, types.PlaybackStatusPaused},
		{playback.StateEnded, types.PlaybackStatusStopped},
		{playback.StateErrored, types.PlaybackStatusStopped},
	}
	for _, tt := range tests {
		t.Run(tt.state.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, playbackStatus(tt.state))
		})
	}
}

func TestFormatTrackID(t *testing.T) {
	assert.Equal(t, "/org/mpris/MediaPlayer2/Track/6f1c2a9e3b7d4c1e9a520d8e4f7b1c23", string(formatTrackID(sessionID)))
	assert.Equal(t, noTrackID, string(formatTrackID("")))
}

func TestTitleFromURI(t *testing.T) {
	assert.Equal(t, "Big Buck Bunny", titleFromURI("https://example.com/media/Big%20Buck%20Bunny.mp4"))
	assert.Equal(t, "movie", titleFromURI("file:///home/me/movie.mkv"))
	assert.Equal(t, "https://example.com/", titleFromURI("https://example.com/"))
}

func TestDiff(t *testing.T) {
	base := viewOf(playingSnapshot())

	t.Run("no change", func(t *testing.T) {
		assert.True(t, diff(base, base).empty())
	})

	t.Run("regular progress is not a seek", func(t *testing.T) {
		next := base
		next.position += 500 * time.Millisecond
		assert.True(t, diff(base, next).empty())
	})

	t.Run("jump is a seek", func(t *testing.T) {
		next := base
		next.position = 5 * time.Minute
		c := diff(base, next)
		assert.True(t, c.seeked)
		assert.Equal(t, 5*time.Minute, c.position)
	})

	t.Run("backward jump is a seek", func(t *testing.T) {
		next := base
		next.position = 0
		assert.True(t, diff(base, next).seeked)
	})

	t.Run("new session changes metadata without seek", func(t *testing.T) {
		next := base
		next.session = "other"
		next.position = 0
		c := diff(base, next)
		assert.True(t, c.metadata)
		assert.False(t, c.seeked)
	})

	t.Run("pause changes status", func(t *testing.T) {
		next := base
		next.status = types.PlaybackStatusPaused
		c := diff(base, next)
		assert.True(t, c.status)
		assert.False(t, c.metadata)
	})

	t.Run("volume", func(t *testing.T) {
		next := base
		next.volume = 50
		assert.True(t, diff(base, next).volume)
	})
}

func TestChangeMerge(t *testing.T) {
	c := change{status: true}.
		merge(change{seeked: true, position: time.Second}).
		merge(change{seeked: true, position: 2 * time.Second}).
		merge(change{})
	assert.Equal(t, change{status: true, seeked: true, position: 2 * time.Second}, c)
}

func TestPlayerAdapter_Controls(t *testing.T) {
	svc := &fakeService{snap: playingSnapshot()}
	p := &playerAdapter{service: svc}

	require.NoError(t, p.Play())
	require.NoError(t, p.Pause())
	require.NoError(t, p.PlayPause())
	require.NoError(t, p.Stop())
	assert.Equal(t, []string{"play", "pause", "toggle", "unload"}, svc.calls)

	require.NoError(t, p.Seek(types.Microseconds(-10_000_000)))
	assert.Equal(t, -10*time.Second, svc.seekBy)

	require.NoError(t, p.SetVolume(0.456))
	assert.Equal(t, 46, svc.volume)
}

func TestPlayerAdapter_SetPositionChecksTrack(t *testing.T) {
	svc := &fakeService{snap: playingSnapshot()}
	p := &playerAdapter{service: svc}

	require.NoError(t, p.SetPosition("/org/mpris/MediaPlayer2/Track/stale", 1_000_000))
	assert.Zero(t, svc.seek)

	require.NoError(t, p.SetPosition(string(formatTrackID(sessionID)), 3_000_000))
	assert.Equal(t, 3*time.Second, svc.seek)
}

func TestPlayerAdapter_Metadata(t *testing.T) {
	svc := &fakeService{snap: playingSnapshot()}
	p := &playerAdapter{service: svc}

	meta, err := p.Metadata()
	require.NoError(t, err)
	assert.Equal(t, formatTrackID(sessionID), meta.TrackId)
	assert.Equal(t, "Big Buck Bunny", meta.Title)
	assert.Equal(t, types.Microseconds(600_000_000), meta.Length)

	p.setMedia(media{uri: svc.snap.URI, title: "Bunny", artURL: "https://example.com/poster.jpg"})
	meta, err = p.Metadata()
	require.NoError(t, err)
	assert.Equal(t, "Bunny", meta.Title)
	assert.Equal(t, "https://example.com/poster.jpg", meta.ArtUrl)

	// Media overrides for another uri are not applied.
	svc.snap.URI = "https://example.com/other.mp4"
	meta, err = p.Metadata()
	require.NoError(t, err)
	assert.Equal(t, "other", meta.Title)
	assert.Empty(t, meta.ArtUrl)
}

func TestPlayerAdapter_Idle(t *testing.T) {
	p := &playerAdapter{service: &fakeService{}}

	meta, err := p.Metadata()
	require.NoError(t, err)
	assert.Equal(t, noTrackID, string(meta.TrackId))

	canPlay, _ := p.CanPlay()
	assert.False(t, canPlay)
	canSeek, _ := p.CanSeek()
	assert.False(t, canSeek)
}

func TestPlayerAdapter_VolumeAndPosition(t *testing.T) {
	p := &playerAdapter{service: &fakeService{snap: playingSnapshot()}}

	vol, err := p.Volume()
	require.NoError(t, err)
	assert.InDelta(t, 0.8, vol, 1e-9)

	pos, err := p.Position()
	require.NoError(t, err)
	assert.Equal(t, int64(90_000_000), pos)
}
