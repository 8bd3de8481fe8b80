package viewport

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVisible(t *testing.T) {
	tests := []struct {
		name   string
		items  []Bounds
		window Window
		want   []int
	}{
		{
			name:   "partial overlap on both sides",
			items:  []Bounds{{0, 100}, {150, 300}, {400, 500}},
			window: Window{Min: 90, Max: 250},
			want:   []int{0, 1},
		},
		{
			name:   "touching edges count as visible",
			items:  []Bounds{{0, 90}, {250, 300}},
			window: Window{Min: 90, Max: 250},
			want:   []int{0, 1},
		},
		{
			name:   "nothing in window",
			items:  []Bounds{{0, 10}, {20, 30}},
			window: Window{Min: 100, Max: 200},
			want:   nil,
		},
		{
			name:   "zero extent window",
			items:  []Bounds{{0, 100}},
			window: Window{Min: 50, Max: 50},
			want:   nil,
		},
		{
			name:   "negative extent window",
			items:  []Bounds{{0, 100}},
			window: Window{Min: 80, Max: 20},
			want:   nil,
		},
		{
			name:   "unrealized items are skipped",
			items:  []Bounds{{0, 0}, {10, 40}, {60, 50}},
			window: Window{Min: 0, Max: 100},
			want:   []int{1},
		},
		{
			name:   "empty collection",
			items:  nil,
			window: Window{Min: 0, Max: 100},
			want:   nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Visible(tt.items, tt.window))
		})
	}
}

func TestWindowAt(t *testing.T) {
	assert.Equal(t, Window{Min: 120, Max: 620}, WindowAt(120, 500))
}

func TestWindow_Expand(t *testing.T) {
	w := Window{Min: 100, Max: 200}

	assert.Equal(t, Window{Min: 50, Max: 250}, w.Expand(50))
	assert.Equal(t, w, w.Expand(0))
	assert.Equal(t, w, w.Expand(-10))
}

func TestVisibleCount(t *testing.T) {
	tests := []struct {
		name                              string
		width, margin, spacing, available float64
		want                              int
	}{
		{"catalog row", 225, 32, 16, 1000, 4},
		{"exact fit", 100, 0, 0, 300, 3},
		{"spacing only between items", 100, 0, 10, 320, 3},
		{"narrower than one item", 225, 32, 16, 100, 1},
		{"zero available", 225, 32, 16, 0, 1},
		{"degenerate step", 0, 0, 0, 500, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := VisibleCount(tt.width, tt.margin, tt.spacing, tt.available)
			if got != tt.want {
				t.Errorf("VisibleCount(%v, %v, %v, %v) = %d, want %d",
					tt.width, tt.margin, tt.spacing, tt.available, got, tt.want)
			}
		})
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		v, p, u float64
		want    Edge
	}{
		{0, 50, 200, EdgeStart},
		{150, 50, 200, EdgeEnd},
		{75, 50, 200, EdgeMiddle},
		{0, 200, 200, EdgeNone},
		{0, 0, 0, EdgeNone},
	}

	for _, tt := range tests {
		t.Run(tt.want.String(), func(t *testing.T) {
			if got := Classify(tt.v, tt.p, tt.u); got != tt.want {
				t.Errorf("Classify(%v, %v, %v) = %v, want %v", tt.v, tt.p, tt.u, got, tt.want)
			}
		})
	}
}

func TestEdge_Affordances(t *testing.T) {
	tests := []struct {
		edge          Edge
		back, forward bool
	}{
		{EdgeNone, false, false},
		{EdgeStart, false, true},
		{EdgeMiddle, true, true},
		{EdgeEnd, true, false},
	}

	for _, tt := range tests {
		t.Run(tt.edge.String(), func(t *testing.T) {
			assert.Equal(t, tt.back, tt.edge.CanScrollBack())
			assert.Equal(t, tt.forward, tt.edge.CanScrollForward())
		})
	}
}

func TestEdge_StringUnknown(t *testing.T) {
	assert.Equal(t, "Unknown", Edge(42).String())
}

func TestAtBottom(t *testing.T) {
	assert.True(t, AtBottom(150, 50, 200))
	assert.False(t, AtBottom(100, 50, 200))
}
