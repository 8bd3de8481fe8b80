package viewport

// Edge classifies a scroll position relative to the content edges.
type Edge int

const (
	// EdgeNone is the degenerate case: the content fits entirely, or the
	// container has no extent.
	EdgeNone Edge = iota
	EdgeStart
	EdgeMiddle
	EdgeEnd
)

// String returns the edge name.
func (e Edge) String() string {
	switch e {
	case EdgeNone:
		return "None"
	case EdgeStart:
		return "Start"
	case EdgeMiddle:
		return "Middle"
	case EdgeEnd:
		return "End"
	default:
		return "Unknown"
	}
}

// CanScrollBack reports whether a "scroll back" affordance should show.
func (e Edge) CanScrollBack() bool {
	return e == EdgeMiddle || e == EdgeEnd
}

// CanScrollForward reports whether a "scroll forward" affordance should show.
func (e Edge) CanScrollForward() bool {
	return e == EdgeStart || e == EdgeMiddle
}

// Classify places scroll offset v with page size p inside content of total
// extent u.
func Classify(v, p, u float64) Edge {
	atStart := v == 0
	atEnd := v+p == u
	switch {
	case atStart && !atEnd:
		return EdgeStart
	case !atStart && atEnd:
		return EdgeEnd
	case !atStart && !atEnd:
		return EdgeMiddle
	default:
		return EdgeNone
	}
}

// AtBottom reports whether the page touches the end of the content.
func AtBottom(v, p, u float64) bool {
	return v+p == u
}
