// Package stopwords holds the immutable stop-word set that the decomposition
// engine strips from queries before splitting them. A Set is built once (from
// the built-in corpus or a YAML file) and passed into the engine explicitly.
package stopwords

import (
	"sort"
	"strings"
)

// Set is an ordered, immutable collection of lower-case stop-word entries.
// Entries may be multi-word phrases. Iteration order is longest entry first,
// so multi-word phrases are removed before their constituent words.
// A nil *Set behaves as an empty set.
type Set struct {
	entries []string
	index   map[string]struct{}
}

// New builds a Set from raw entries. Entries are lower-cased, inner whitespace
// is collapsed, and empty or repeated entries are dropped.
func New(entries ...string) *Set {
	s := &Set{
		entries: make([]string, 0, len(entries)),
		index:   make(map[string]struct{}, len(entries)),
	}
	for _, raw := range entries {
		entry := canonical(raw)
		if entry == "" {
			continue
		}
		if _, seen := s.index[entry]; seen {
			continue
		}
		s.index[entry] = struct{}{}
		s.entries = append(s.entries, entry)
	}

	sort.SliceStable(s.entries, func(i, j int) bool {
		if len(s.entries[i]) != len(s.entries[j]) {
			return len(s.entries[i]) > len(s.entries[j])
		}
		return s.entries[i] < s.entries[j]
	})
	return s
}

// Compose merges several word lists into a single Set.
func Compose(lists ...[]string) *Set {
	total := 0
	for _, l := range lists {
		total += len(l)
	}
	all := make([]string, 0, total)
	for _, l := range lists {
		all = append(all, l...)
	}
	return New(all...)
}

// Entries returns a copy of the entries, longest first.
func (s *Set) Entries() []string {
	if s == nil {
		return []string{}
	}
	cp := make([]string, len(s.entries))
	copy(cp, s.entries)
	return cp
}

// Len returns the number of entries.
func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.entries)
}

// Contains reports whether phrase is an entry of the set (case-insensitive).
func (s *Set) Contains(phrase string) bool {
	if s == nil {
		return false
	}
	_, ok := s.index[canonical(phrase)]
	return ok
}

// Tokenized returns every entry split into words, longest entry first.
func (s *Set) Tokenized() [][]string {
	if s == nil {
		return nil
	}
	out := make([][]string, len(s.entries))
	for i, e := range s.entries {
		out[i] = strings.Fields(e)
	}
	return out
}

func canonical(raw string) string {
	return strings.Join(strings.Fields(strings.ToLower(raw)), " ")
}
