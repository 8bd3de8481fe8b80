package styles

import (
	"image/color"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/rivo/uniseg"
)

// Gradient colors cells by their position across a fixed width, so a
// partially filled bar shows the part of the gradient it has reached.
type Gradient struct {
	from, to lipgloss.Color
	width    int
	styles   []lipgloss.Style
}

// NewGradient creates a gradient from one color to another.
func NewGradient(from, to lipgloss.Color) *Gradient {
	return &Gradient{from: from, to: to}
}

// Render paints the first filled cells of a width-cell bar with glyph.
// Blended styles are cached per width.
func (g *Gradient) Render(glyph string, filled, width int) string {
	filled = min(max(filled, 0), width)
	if filled == 0 {
		return ""
	}
	if g.width != width {
		g.width = width
		g.styles = make([]lipgloss.Style, width)
		for i, c := range blendColors(width, g.from, g.to) {
			g.styles[i] = lipgloss.NewStyle().Foreground(lipgloss.Color(colorToHex(c)))
		}
	}

	var b strings.Builder
	for i := range filled {
		b.WriteString(g.styles[i].Render(glyph))
	}
	return b.String()
}

// ApplyGradient renders text with a horizontal color gradient.
func ApplyGradient(text string, from, to lipgloss.Color) string {
	// Split into grapheme clusters for proper unicode handling
	var clusters []string
	gr := uniseg.NewGraphemes(text)
	for gr.Next() {
		clusters = append(clusters, gr.Str())
	}

	switch len(clusters) {
	case 0:
		return ""
	case 1:
		return lipgloss.NewStyle().Foreground(from).Render(text)
	}

	colors := blendColors(len(clusters), from, to)

	var b strings.Builder
	for i, cluster := range clusters {
		style := lipgloss.NewStyle().Foreground(lipgloss.Color(colorToHex(colors[i])))
		b.WriteString(style.Render(cluster))
	}
	return b.String()
}

// blendColors returns a slice of colors blended between from and to.
// Blending is done in HCL color space for perceptually uniform transitions.
func blendColors(size int, from, to lipgloss.Color) []color.Color {
	if size < 2 {
		return []color.Color{lipglossToColor(from)}
	}

	c1, _ := colorful.MakeColor(lipglossToColor(from))
	c2, _ := colorful.MakeColor(lipglossToColor(to))

	colors := make([]color.Color, size)
	for i := range size {
		t := float64(i) / float64(size-1)
		colors[i] = c1.BlendHcl(c2, t).Clamped()
	}

	return colors
}

// lipglossToColor converts a hex lipgloss.Color to a color.Color. ANSI
// palette indexes fall back to a neutral gray.
func lipglossToColor(c lipgloss.Color) color.Color {
	if col, err := colorful.Hex(string(c)); err == nil {
		return col
	}
	return color.RGBA{R: 128, G: 128, B: 128, A: 255}
}

// colorToHex converts a color.Color to a hex string.
func colorToHex(c color.Color) string {
	if cf, ok := c.(colorful.Color); ok {
		return cf.Hex()
	}
	cf, _ := colorful.MakeColor(c)
	return cf.Hex()
}
