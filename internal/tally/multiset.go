// Package tally provides the counting set used for field-name and comment
// frequencies.
package tally

import (
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// Multiset records how many times each distinct key was added.
// The zero value is not usable; call New.
type Multiset struct {
	counts map[string]int
}

// New returns an empty Multiset.
func New() *Multiset {
	return &Multiset{counts: make(map[string]int)}
}

// Add increments the count for key and returns the new count.
func (m *Multiset) Add(key string) int {
	m.counts[key]++
	return m.counts[key]
}

// Decrement lowers the count for key by one, removing the key when the count
// drops below one. It returns the count after decrementing, 0 if the key was
// absent or removed.
func (m *Multiset) Decrement(key string) int {
	n, ok := m.counts[key]
	if !ok {
		return 0
	}
	n--
	if n < 1 {
		delete(m.counts, key)
		return 0
	}
	m.counts[key] = n
	return n
}

// Count returns the number of times key was added, or 0.
func (m *Multiset) Count(key string) int {
	return m.counts[key]
}

// Contains reports whether key has a positive count.
func (m *Multiset) Contains(key string) bool {
	_, ok := m.counts[key]
	return ok
}

// Len returns the number of distinct keys.
func (m *Multiset) Len() int {
	return len(m.counts)
}

// Keys returns the distinct keys in ascending order.
func (m *Multiset) Keys() []string {
	keys := maps.Keys(m.counts)
	slices.Sort(keys)
	return keys
}

// Each calls fn for every key in ascending order with its count. Iteration
// stops early if fn returns false.
func (m *Multiset) Each(fn func(key string, count int) bool) {
	for _, k := range m.Keys() {
		if !fn(k, m.counts[k]) {
			return
		}
	}
}

// Clone returns an independent copy.
func (m *Multiset) Clone() *Multiset {
	return &Multiset{counts: maps.Clone(m.counts)}
}
