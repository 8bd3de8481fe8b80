package player

import "math"

// Subtitle scale bounds, as a factor of the default subtitle size.
const (
	MinSubtitleScale = 0.25
	MaxSubtitleScale = 1.75
)

// ClampVolume clamps level to the valid range (0.0 to 1.0). NaN maps to 0.
func ClampVolume(level float64) float64 {
	if math.IsNaN(level) || level < 0 {
		return 0
	}
	if level > 1 {
		return 1
	}
	return level
}

// ClampSubtitleScale clamps factor to [MinSubtitleScale, MaxSubtitleScale].
// NaN maps to 1 (default size).
func ClampSubtitleScale(factor float64) float64 {
	if math.IsNaN(factor) {
		return 1
	}
	return math.Min(math.Max(factor, MinSubtitleScale), MaxSubtitleScale)
}
