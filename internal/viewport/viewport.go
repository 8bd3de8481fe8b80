// Package viewport decides which items of a scrollable collection intersect
// the visible window, how many uniform items fit a container, and where a
// scroll position sits relative to the content edges.
//
// Everything here is pure geometry. Malformed geometry (zero or negative
// extents) never fails: it degrades to "nothing visible".
package viewport

import "math"

// Bounds is an item's extent along the scroll axis.
type Bounds struct {
	Start float64
	End   float64
}

// Valid reports whether the bounds have a positive extent.
func (b Bounds) Valid() bool {
	return b.End > b.Start
}

// Window is the visible interval [Min, Max] along the scroll axis.
type Window struct {
	Min float64
	Max float64
}

// WindowAt returns the window for a scroll offset and page size.
func WindowAt(offset, pageSize float64) Window {
	return Window{Min: offset, Max: offset + pageSize}
}

// Valid reports whether the window has a positive extent.
func (w Window) Valid() bool {
	return w.Max > w.Min
}

// Expand grows the window by extent on both sides, so items just outside
// the visible area are treated as visible and preloaded.
func (w Window) Expand(extent float64) Window {
	if extent <= 0 {
		return w
	}
	return Window{Min: w.Min - extent, Max: w.Max + extent}
}

// Intersects reports whether b overlaps w (closed intervals).
func (w Window) Intersects(b Bounds) bool {
	return b.Start <= w.Max && b.End >= w.Min
}

// Visible returns the indices of items whose bounds intersect w, in order.
func Visible(items []Bounds, w Window) []int {
	if !w.Valid() {
		return nil
	}
	var out []int
	for i, b := range items {
		if b.Valid() && w.Intersects(b) {
			out = append(out, i)
		}
	}
	return out
}

// VisibleCount returns how many items of width itemWidth fit in available,
// given the container's total margin and the spacing between items.
// At least one item is always shown.
func VisibleCount(itemWidth, margin, spacing, available float64) int {
	step := itemWidth + spacing
	if step <= 0 {
		return 1
	}
	n := int(math.Floor((available - margin + spacing) / step))
	return max(1, n)
}
