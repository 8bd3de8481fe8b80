package app

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/pkg/errors"

	"github.com/llehouerou/marquee/internal/artwork"
)

// ErrPlaybackFailed is returned by Run when the player left on a playback
// failure. The user was already notified.
var ErrPlaybackFailed = errors.New("playback failed")

// Run shows the player for media until it ends, fails or the user quits.
// art configures the poster loader; nil disables it.
func Run(ctx context.Context, deps Deps, media Media, set Settings, art *artwork.Config) error {
	stopProgress := TrackProgress(deps.Service.Bus(), deps.Store)
	defer stopProgress()

	var program *tea.Program
	if art != nil && media.Poster != "" && deps.Poster != nil && deps.Poster.Enabled() {
		loader, err := artwork.New(*art, func(img artwork.Image) {
			program.Send(ArtworkMsg(img))
		})
		if err != nil {
			deps.Logger.Warn().Err(err).Msg("artwork disabled")
		} else {
			defer func() { _ = loader.Close() }()
			deps.Artwork = loader
		}
	}

	model := New(ctx, deps, media, set)
	program = tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	final, err := program.Run()
	model.Close()

	if err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return errors.Wrap(err, "run player")
	}
	if fm, ok := final.(Model); ok && fm.Failed() {
		return ErrPlaybackFailed
	}
	return nil
}
