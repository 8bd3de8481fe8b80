package viewport

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type entry struct {
	id      string
	version int // distinguishes kept entries from replacements
}

func entryKey(e entry) string { return e.id }

func entries(version int, ids ...string) []entry {
	out := make([]entry, len(ids))
	for i, id := range ids {
		out[i] = entry{id: id, version: version}
	}
	return out
}

func TestReconcile_KeepsUnchangedEntries(t *testing.T) {
	current := entries(1, "a", "b", "c")
	candidates := entries(2, "a", "x", "c", "d")

	got, ch := Reconcile(current, candidates, 3, entryKey)

	assert.Equal(t, []entry{{"a", 1}, {"x", 2}, {"c", 1}}, got)
	assert.Equal(t, []int{1}, ch.Replaced)
	assert.Empty(t, ch.Added)
	assert.Zero(t, ch.Removed)
}

func TestReconcile_ExtendsTail(t *testing.T) {
	current := entries(1, "a", "b")
	candidates := entries(2, "a", "b", "c", "d", "e")

	got, ch := Reconcile(current, candidates, 4, entryKey)

	assert.Equal(t, []entry{{"a", 1}, {"b", 1}, {"c", 2}, {"d", 2}}, got)
	assert.Equal(t, []int{2, 3}, ch.Added)
	assert.Empty(t, ch.Replaced)
}

func TestReconcile_TruncatesTail(t *testing.T) {
	current := entries(1, "a", "b", "c", "d")
	candidates := entries(2, "a", "b", "c", "d")

	got, ch := Reconcile(current, candidates, 2, entryKey)

	assert.Equal(t, []entry{{"a", 1}, {"b", 1}}, got)
	assert.Equal(t, 2, ch.Removed)
}

func TestReconcile_CountCappedAtCandidates(t *testing.T) {
	got, ch := Reconcile(nil, entries(1, "a", "b"), 10, entryKey)

	assert.Len(t, got, 2)
	assert.Equal(t, []int{0, 1}, ch.Added)
}

func TestReconcile_NoChange(t *testing.T) {
	current := entries(1, "a", "b")

	got, ch := Reconcile(current, entries(2, "a", "b"), 2, entryKey)

	assert.Equal(t, entries(1, "a", "b"), got)
	assert.True(t, ch.Empty())
}

func TestReconcile_NegativeCountClears(t *testing.T) {
	got, ch := Reconcile(entries(1, "a"), entries(1, "a"), -1, entryKey)

	assert.Empty(t, got)
	assert.Equal(t, 1, ch.Removed)
}

func TestReconcile_WithVisibleCount(t *testing.T) {
	// A row resized from 4 to 3 columns keeps the first three posters.
	current := entries(1, "p1", "p2", "p3", "p4")
	count := VisibleCount(225, 32, 16, 800)

	got, ch := Reconcile(current, entries(2, "p1", "p2", "p3", "p4", "p5"), count, entryKey)

	assert.Equal(t, 3, count)
	assert.Equal(t, entries(1, "p1", "p2", "p3"), got)
	assert.Equal(t, 1, ch.Removed)
}
