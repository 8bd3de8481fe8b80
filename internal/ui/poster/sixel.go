package poster

import (
	"bytes"
	"fmt"
	"image/png"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/mattn/go-sixel"
	"github.com/pkg/errors"
)

// placeCounter makes every Sixel placement unique so the renderer's line
// diff never skips re-emitting the image when only nearby text changed.
var placeCounter atomic.Uint64

// Sixel implements Protocol with Sixel graphics. Sixel has no terminal
// side storage, so encoded images are kept here and re-emitted on Place.
type Sixel struct {
	mu     sync.RWMutex
	images map[uint32]string
	cellW  int
	cellH  int
}

// NewSixel creates a Sixel protocol sized to the terminal's cells.
func NewSixel() *Sixel {
	w, h := cellSize()
	return &Sixel{images: make(map[uint32]string), cellW: w, cellH: h}
}

func (s *Sixel) Prepare(pngData []byte, id uint32) (string, error) {
	img, err := png.Decode(bytes.NewReader(pngData))
	if err != nil {
		return "", errors.Wrap(err, "decode png")
	}

	var buf bytes.Buffer
	enc := sixel.NewEncoder(&buf)
	enc.Dither = true
	if err := enc.Encode(img); err != nil {
		return "", errors.Wrap(err, "encode sixel")
	}

	s.mu.Lock()
	s.images[id] = buf.String()
	s.mu.Unlock()
	return "", nil
}

func (s *Sixel) Place(id uint32, row, col, _, _ int) string {
	s.mu.RLock()
	data, ok := s.images[id]
	s.mu.RUnlock()
	if !ok {
		return ""
	}

	seq := placeCounter.Add(1)
	var sb strings.Builder
	fmt.Fprintf(&sb, "\x1b[s\x1b[%d;%dH", row, col)
	sb.WriteString(data)
	fmt.Fprintf(&sb, "\x1b[u\x1b[%dm\x1b[0m", seq%255+1)
	return sb.String()
}

func (s *Sixel) Delete(id uint32) string {
	s.mu.Lock()
	delete(s.images, id)
	s.mu.Unlock()
	return ""
}

// TargetPixelSize leaves one row of margin so an image near the bottom
// never scrolls the terminal.
func (s *Sixel) TargetPixelSize(widthCells, heightCells int) (int, int) {
	return widthCells * s.cellW, max(heightCells-1, 1) * s.cellH
}
