//go:build !linux

package mpris

import "github.com/llehouerou/marquee/internal/playback"

// Adapter is a no-op on non-Linux platforms.
type Adapter struct{}

// New returns a no-op adapter on non-Linux platforms.
func New(_ playback.Service, _ ...Option) (*Adapter, error) {
	return &Adapter{}, nil
}

// SetMedia is a no-op on non-Linux platforms.
func (a *Adapter) SetMedia(_, _, _ string) {}

// Close is a no-op on non-Linux platforms.
func (a *Adapter) Close() error {
	return nil
}
