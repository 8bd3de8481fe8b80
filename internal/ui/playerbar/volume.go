package playerbar

import (
	"fmt"

	"github.com/llehouerou/marquee/internal/icons"
)

// RenderVolume renders the volume indicator.
// Format: "🔊 100%", or the mute glyph at 0%.
func RenderVolume(percent int) string {
	return fmt.Sprintf("%s %3d%%", icons.Volume(percent), percent)
}
