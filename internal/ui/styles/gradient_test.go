package styles

import (
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
)

func TestBlendColors(t *testing.T) {
	colors := blendColors(3, "#000000", "#ffffff")
	assert.Len(t, colors, 3)
	assert.NotEqual(t, colorToHex(colors[0]), colorToHex(colors[2]))

	assert.Len(t, blendColors(1, "#a78bfa", "#f1a208"), 1)
}

func TestLipglossToColor_ANSIFallsBackToGray(t *testing.T) {
	assert.Equal(t, "#808080", colorToHex(lipglossToColor("240")))
}

func TestGradient_RenderWidth(t *testing.T) {
	g := NewGradient(T().Primary, T().Secondary)

	assert.Empty(t, g.Render("━", 0, 10))
	assert.Equal(t, 4, lipgloss.Width(g.Render("━", 4, 10)))
	assert.Equal(t, 10, lipgloss.Width(g.Render("━", 25, 10)), "filled is capped at width")
	assert.Equal(t, 3, lipgloss.Width(g.Render("━", 3, 5)), "cache rebuilt for a new width")
}

func TestApplyGradient(t *testing.T) {
	assert.Empty(t, ApplyGradient("", "#000000", "#ffffff"))
	assert.Equal(t, 7, lipgloss.Width(ApplyGradient("Marquee", "#000000", "#ffffff")))
}
