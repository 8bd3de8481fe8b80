package poster

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestKitty_PrepareSmall(t *testing.T) {
	cmd, err := Kitty{}.Prepare(testPNG(t, 10, 10), 7)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(cmd, escStart))
	assert.True(t, strings.HasSuffix(cmd, escEnd))
	assert.Contains(t, cmd, "a=t,f=100,i=7,q=2,m=0;")
	assert.Equal(t, 1, strings.Count(cmd, escStart))
}

func TestKitty_PrepareChunked(t *testing.T) {
	data := make([]byte, 4000)
	for i := range data {
		data[i] = byte(i)
	}

	cmd, err := Kitty{}.Prepare(data, 42)
	require.NoError(t, err)

	assert.Equal(t, 2, strings.Count(cmd, escStart))
	first, rest, ok := strings.Cut(cmd, escEnd)
	require.True(t, ok)
	assert.Contains(t, first, "i=42")
	assert.Contains(t, first, "m=1;")
	assert.NotContains(t, rest, "i=42")
	assert.Contains(t, rest, "m=0;")

	// Payloads reassemble to the input.
	var payload strings.Builder
	for _, chunk := range strings.Split(cmd, escEnd) {
		if _, p, ok := strings.Cut(chunk, ";"); ok {
			payload.WriteString(p)
		}
	}
	decoded, err := base64.StdEncoding.DecodeString(payload.String())
	require.NoError(t, err)
	assert.Equal(t, data, decoded)
}

func TestKitty_PrepareEmpty(t *testing.T) {
	_, err := Kitty{}.Prepare(nil, 1)
	assert.Error(t, err)
}

func TestKitty_PlaceAndDelete(t *testing.T) {
	place := Kitty{}.Place(3, 2, 5, 10, 6)
	assert.Equal(t, "\x1b[s\x1b[2;5H\x1b_Ga=p,i=3,p=1,c=10,r=6,C=1,q=2;\x1b\\\x1b[u", place)
	assert.Equal(t, "\x1b_Ga=d,d=i,i=3,q=2;\x1b\\", Kitty{}.Delete(3))
}

func TestSixel_PlaceUnique(t *testing.T) {
	s := &Sixel{images: map[uint32]string{}, cellW: 8, cellH: 16}
	_, err := s.Prepare(testPNG(t, 4, 4), 1)
	require.NoError(t, err)

	a := s.Place(1, 1, 1, 0, 0)
	b := s.Place(1, 1, 1, 0, 0)
	assert.NotEmpty(t, a)
	assert.NotEqual(t, a, b)

	s.Delete(1)
	assert.Empty(t, s.Place(1, 1, 1, 0, 0))
}

func TestSixel_TargetPixelSizeKeepsMargin(t *testing.T) {
	s := &Sixel{images: map[uint32]string{}, cellW: 10, cellH: 20}
	w, h := s.TargetPixelSize(4, 3)
	assert.Equal(t, 40, w)
	assert.Equal(t, 40, h)
}

func TestDetect_Override(t *testing.T) {
	t.Setenv(EnvProtocol, "none")
	assert.Nil(t, Detect())

	t.Setenv(EnvProtocol, "kitty")
	assert.IsType(t, Kitty{}, Detect())

	t.Setenv(EnvProtocol, "sixel")
	assert.IsType(t, &Sixel{}, Detect())
}

func TestIsKittySupported(t *testing.T) {
	for _, env := range []string{"CONTOUR_PROFILE", "KITTY_WINDOW_ID", "TERM_PROGRAM", "GHOSTTY_RESOURCES_DIR", "KONSOLE_VERSION", "TERM"} {
		t.Setenv(env, "")
	}
	assert.False(t, IsKittySupported())

	t.Setenv("KONSOLE_VERSION", "220401")
	assert.True(t, IsKittySupported())

	t.Setenv("CONTOUR_PROFILE", "default")
	assert.False(t, IsKittySupported())
}

func TestRenderer_SetAndPlace(t *testing.T) {
	r := New(Kitty{})
	r.SetSize(10, 6)

	cmd, err := r.Set("poster-a", testPNG(t, 40, 60))
	require.NoError(t, err)
	assert.Contains(t, cmd, "a=t")
	assert.True(t, r.HasImage())
	assert.Equal(t, "poster-a", r.Key())
	assert.Contains(t, r.Place(1, 1), "c=10,r=6")

	again, err := r.Set("poster-a", testPNG(t, 40, 60))
	require.NoError(t, err)
	assert.Empty(t, again, "same key is not re-sent")
}

func TestRenderer_SetReplacesPrevious(t *testing.T) {
	r := New(Kitty{})
	r.SetSize(4, 4)

	_, err := r.Set("a", testPNG(t, 8, 8))
	require.NoError(t, err)
	cmd, err := r.Set("b", testPNG(t, 8, 8))
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(cmd, escStart+"a=d"))
	assert.Contains(t, cmd, "a=t")
}

func TestRenderer_ResizeInvalidates(t *testing.T) {
	r := New(Kitty{})
	r.SetSize(4, 4)
	_, err := r.Set("a", testPNG(t, 8, 8))
	require.NoError(t, err)

	r.SetSize(6, 6)
	cmd, err := r.Set("a", testPNG(t, 8, 8))
	require.NoError(t, err)
	assert.Contains(t, cmd, "a=t")
}

func TestRenderer_SetInvalidData(t *testing.T) {
	r := New(Kitty{})
	r.SetSize(4, 4)

	_, err := r.Set("a", []byte("not an image"))
	assert.Error(t, err)
	assert.False(t, r.HasImage())

	_, err = r.Set("b", nil)
	assert.Error(t, err)
}

func TestRenderer_Clear(t *testing.T) {
	r := New(Kitty{})
	r.SetSize(4, 4)
	_, err := r.Set("a", testPNG(t, 8, 8))
	require.NoError(t, err)

	assert.Contains(t, r.Clear(), "a=d")
	assert.False(t, r.HasImage())
	assert.Empty(t, r.Place(1, 1))
	assert.Empty(t, r.Clear())
}

func TestRenderer_Disabled(t *testing.T) {
	r := New(nil)
	r.SetSize(6, 4)

	assert.False(t, r.Enabled())
	cmd, err := r.Set("a", testPNG(t, 8, 8))
	require.NoError(t, err)
	assert.Empty(t, cmd)
	assert.Equal(t, Placeholder(6, 4), r.View())
}

func TestRenderer_ViewBlankUnderImage(t *testing.T) {
	r := New(Kitty{})
	r.SetSize(5, 3)
	_, err := r.Set("a", testPNG(t, 8, 8))
	require.NoError(t, err)

	assert.Equal(t, "     \n     \n     ", r.View())
}

func TestPlaceholder(t *testing.T) {
	assert.Equal(t, "┌───┐\n│ ▶ │\n└───┘", Placeholder(5, 3))
	assert.Equal(t, "   \n   ", Placeholder(3, 2))
	assert.Empty(t, Placeholder(0, 0))
}
