package playerbar

import (
	"strings"
	"time"

	"github.com/llehouerou/marquee/internal/ui/render"
	"github.com/llehouerou/marquee/internal/ui/styles"
)

const (
	filledBlock = "━"
	emptyBlock  = "─"
)

var barGradient = styles.NewGradient(styles.T().Primary, styles.T().Secondary)

// RenderProgressBar renders a gradient progress bar with times.
// Format: 1:23 ━━━━━────── 4:56
// An unknown duration (live streams) renders the position only.
func RenderProgressBar(position, duration time.Duration, width int) string {
	posStr := render.Duration(position)
	if duration <= 0 {
		return posStr
	}
	durStr := render.Duration(duration)

	barWidth := width - len(posStr) - len(durStr) - 2
	if barWidth < 3 {
		// Too narrow for bar, just show times
		return posStr + " / " + durStr
	}

	filled := Filled(position, duration, barWidth)
	bar := barGradient.Render(filledBlock, filled, barWidth) +
		styles.T().S().BarEmpty.Render(strings.Repeat(emptyBlock, barWidth-filled))

	return posStr + " " + bar + " " + durStr
}

// Filled returns how many of width cells represent position.
func Filled(position, duration time.Duration, width int) int {
	if duration <= 0 || width <= 0 {
		return 0
	}
	ratio := float64(position) / float64(duration)
	return min(max(int(float64(width)*ratio), 0), width)
}
