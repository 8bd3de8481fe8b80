package state

import (
	"time"
)

// Interface defines the state manager contract for dependency injection and testing.
type Interface interface {
	Resume(uri string) (time.Duration, bool, error)
	SaveProgress(uri string, p Progress)
	SaveSeek(uri string, p Progress)
	Forget(uri string) error
	GetPreferences() (Preferences, error)
	SavePreferences(p Preferences) error
	Close() error
}

// Verify Manager implements Interface at compile time.
var _ Interface = (*Manager)(nil)
