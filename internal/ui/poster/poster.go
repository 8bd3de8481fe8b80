// Package poster draws a media poster in the terminal with the Kitty or
// Sixel graphics protocol, and a framed placeholder when there is none.
package poster

import (
	"bytes"
	"image"
	_ "image/jpeg" // decoders for Set
	"image/png"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/nfnt/resize"
	"github.com/pkg/errors"
)

var errEmpty = errors.New("empty image")

var nextImageID atomic.Uint32

// Renderer tracks the poster currently held by the terminal. It is safe
// for concurrent use.
type Renderer struct {
	proto Protocol

	mu     sync.RWMutex
	key    string
	id     uint32
	width  int
	height int
}

// New creates a renderer. A nil protocol renders only placeholders.
func New(proto Protocol) *Renderer {
	return &Renderer{proto: proto}
}

// Enabled reports whether images can be drawn at all.
func (r *Renderer) Enabled() bool {
	return r.proto != nil
}

// SetSize sets the poster size in cells. A change invalidates the current
// image so the next Set re-encodes it.
func (r *Renderer) SetSize(width, height int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.width != width || r.height != height {
		r.width, r.height = width, height
		r.key = ""
	}
}

// Set prepares the image for key and returns the terminal commands to write
// once: deletion of the previous image, then transmission of the new one.
// It returns "" when key is already prepared.
func (r *Renderer) Set(key string, data []byte) (string, error) {
	if r.proto == nil {
		return "", nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if key != "" && key == r.key && r.id != 0 {
		return "", nil
	}

	cmd := r.deleteLocked()
	r.key = key
	if len(data) == 0 {
		return cmd, errEmpty
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return cmd, errors.Wrap(err, "decode poster")
	}
	pw, ph := r.proto.TargetPixelSize(max(r.width, 1), max(r.height, 1))
	//nolint:gosec // sizes are a few hundred pixels
	thumb := resize.Thumbnail(uint(pw), uint(ph), img, resize.Lanczos3)

	var buf bytes.Buffer
	if err := png.Encode(&buf, thumb); err != nil {
		return cmd, errors.Wrap(err, "encode poster")
	}

	id := nextImageID.Add(1)
	transmit, err := r.proto.Prepare(buf.Bytes(), id)
	if err != nil {
		return cmd, err
	}
	r.id = id
	return cmd + transmit, nil
}

// Place returns the command drawing the poster at (row, col), 1-based, or
// "" when there is no image.
func (r *Renderer) Place(row, col int) string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.proto == nil || r.id == 0 {
		return ""
	}
	return r.proto.Place(r.id, row, col, r.width, r.height)
}

// HasImage reports whether an image is prepared.
func (r *Renderer) HasImage() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.id != 0
}

// Key returns the key of the prepared image.
func (r *Renderer) Key() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.key
}

// Clear forgets the image and returns the command removing it.
func (r *Renderer) Clear() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.key = ""
	return r.deleteLocked()
}

func (r *Renderer) deleteLocked() string {
	if r.id == 0 {
		return ""
	}
	cmd := r.proto.Delete(r.id)
	r.id = 0
	return cmd
}

// View returns the text occupying the poster area: blank cells under an
// image, so layout never measures escape sequences, or a framed placeholder.
func (r *Renderer) View() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.id != 0 {
		return Blank(r.width, r.height)
	}
	return Placeholder(r.width, r.height)
}

// Blank returns height lines of width spaces.
func Blank(width, height int) string {
	if width <= 0 || height <= 0 {
		return ""
	}
	lines := make([]string, height)
	for i := range lines {
		lines[i] = strings.Repeat(" ", width)
	}
	return strings.Join(lines, "\n")
}

// Placeholder returns a frame with a film glyph in the middle.
func Placeholder(width, height int) string {
	if width < 4 || height < 2 {
		return Blank(width, height)
	}

	lines := make([]string, 0, height)
	lines = append(lines, "┌"+strings.Repeat("─", width-2)+"┐")
	for i := 1; i < height-1; i++ {
		if i == height/2 && width >= 5 {
			pad := (width - 3) / 2
			lines = append(lines, "│"+strings.Repeat(" ", pad)+"▶"+strings.Repeat(" ", width-3-pad)+"│")
			continue
		}
		lines = append(lines, "│"+strings.Repeat(" ", width-2)+"│")
	}
	lines = append(lines, "└"+strings.Repeat("─", width-2)+"┘")
	return strings.Join(lines, "\n")
}
