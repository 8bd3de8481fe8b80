package poster

import (
	"encoding/base64"
	"fmt"
	"strings"
)

const (
	escStart = "\x1b_G"
	escEnd   = "\x1b\\"

	// chunkSize is the largest base64 payload per escape sequence.
	chunkSize = 4096
)

// Kitty implements Protocol with the Kitty graphics protocol. Images are
// transmitted once and placed by id.
type Kitty struct{}

// Prepare transmits pngData without displaying it (a=t).
func (Kitty) Prepare(pngData []byte, id uint32) (string, error) {
	if len(pngData) == 0 {
		return "", errEmpty
	}
	encoded := base64.StdEncoding.EncodeToString(pngData)

	var sb strings.Builder
	for i := 0; i < len(encoded); i += chunkSize {
		end := min(i+chunkSize, len(encoded))
		more := 0
		if end < len(encoded) {
			more = 1
		}

		sb.WriteString(escStart)
		if i == 0 {
			fmt.Fprintf(&sb, "a=t,f=100,i=%d,q=2,m=%d;", id, more)
		} else {
			fmt.Fprintf(&sb, "m=%d;", more)
		}
		sb.WriteString(encoded[i:end])
		sb.WriteString(escEnd)
	}
	return sb.String(), nil
}

// Place draws image id at (row, col). The fixed placement id p=1 makes a
// new placement replace the previous one.
func (Kitty) Place(id uint32, row, col, width, height int) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "\x1b[s\x1b[%d;%dH", row, col)
	fmt.Fprintf(&sb, "%sa=p,i=%d,p=1,c=%d,r=%d,C=1,q=2;%s", escStart, id, width, height, escEnd)
	sb.WriteString("\x1b[u")
	return sb.String()
}

// Delete removes image id and all its placements.
func (Kitty) Delete(id uint32) string {
	return fmt.Sprintf("%sa=d,d=i,i=%d,q=2;%s", escStart, id, escEnd)
}

// TargetPixelSize assumes 8x16 pixel cells.
func (Kitty) TargetPixelSize(widthCells, heightCells int) (int, int) {
	return widthCells * 8, heightCells * 16
}
