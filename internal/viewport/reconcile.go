package viewport

// Changes describes what Reconcile did to the backing list.
type Changes struct {
	Replaced []int // indices whose entry was swapped for a different identity
	Added    []int // indices appended at the tail
	Removed  int   // entries truncated from the tail
}

// Empty reports whether the reconcile was a no-op.
func (c Changes) Empty() bool {
	return len(c.Replaced) == 0 && len(c.Added) == 0 && c.Removed == 0
}

// Reconcile brings current to exactly count entries drawn from candidates,
// mutating as little as possible: an entry whose identity key is unchanged
// at its index is kept as is; a differing one is replaced in place; the tail
// is truncated or extended to match. count is capped at len(candidates).
//
// current is modified in place when it has enough capacity; use the
// returned slice.
func Reconcile[E any, K comparable](current, candidates []E, count int, key func(E) K) ([]E, Changes) {
	var ch Changes
	count = max(0, min(count, len(candidates)))

	if len(current) > count {
		ch.Removed = len(current) - count
		clear(current[count:])
		current = current[:count]
	}

	for i := range current {
		if key(current[i]) != key(candidates[i]) {
			current[i] = candidates[i]
			ch.Replaced = append(ch.Replaced, i)
		}
	}

	for i := len(current); i < count; i++ {
		current = append(current, candidates[i])
		ch.Added = append(ch.Added, i)
	}

	return current, ch
}
