package aggregator

import "slices"

// Entry is one grouping key and its count.
type Entry struct {
	Key   string `json:"key"`
	Count uint64 `json:"count"`
}

// Groups counts occurrences per grouping key and remembers the order in
// which keys were first seen.
type Groups struct {
	counts map[string]uint64
	order  []string
}

// NewGroups creates an empty counter sized for roughly hint keys.
func NewGroups(hint int) *Groups {
	if hint < 0 {
		hint = 0
	}
	return &Groups{counts: make(map[string]uint64, hint)}
}

// Add increments the count of key.
func (g *Groups) Add(key string) {
	if _, ok := g.counts[key]; !ok {
		g.order = append(g.order, key)
	}
	g.counts[key]++
}

// Count returns the count of key.
func (g *Groups) Count(key string) uint64 {
	return g.counts[key]
}

// Len returns the number of distinct keys.
func (g *Groups) Len() int {
	return len(g.counts)
}

// Sorted returns all entries by descending count. Ties keep first-seen order.
func (g *Groups) Sorted() []Entry {
	entries := make([]Entry, 0, len(g.order))
	for _, key := range g.order {
		entries = append(entries, Entry{Key: key, Count: g.counts[key]})
	}
	slices.SortStableFunc(entries, func(a, b Entry) int {
		switch {
		case a.Count > b.Count:
			return -1
		case a.Count < b.Count:
			return 1
		default:
			return 0
		}
	})
	return entries
}
