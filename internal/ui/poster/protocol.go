package poster

// Protocol abstracts the terminal image protocol (Kitty or Sixel).
type Protocol interface {
	// Prepare encodes PNG data under id and returns any one-time terminal
	// command. Kitty transmits the image to terminal memory; Sixel encodes
	// and caches it, returning "".
	Prepare(pngData []byte, id uint32) (string, error)

	// Place returns the escape sequence that draws image id with its top
	// left corner at (row, col), 1-based.
	Place(id uint32, row, col, width, height int) string

	// Delete returns the escape sequence that removes image id.
	Delete(id uint32) string

	// TargetPixelSize returns the pixel size to resize to for display in
	// the given number of cells.
	TargetPixelSize(widthCells, heightCells int) (pixelWidth, pixelHeight int)
}
