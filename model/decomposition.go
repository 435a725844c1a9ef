package model

import (
	"encoding/json"
	"strings"
)

// PhraseGroup is one candidate decomposition of a query: an ordered list of
// sub-phrases, each of which is matched to a statistical variable on its own.
// A PhraseGroup is immutable; accessors return copies.
type PhraseGroup struct {
	phrases []string
}

// NewPhraseGroup builds a PhraseGroup from the given phrases. The input slice is copied.
func NewPhraseGroup(phrases ...string) PhraseGroup {
	cp := make([]string, len(phrases))
	copy(cp, phrases)
	return PhraseGroup{phrases: cp}
}

// Phrases returns a copy of the phrases in order.
func (g PhraseGroup) Phrases() []string {
	cp := make([]string, len(g.phrases))
	copy(cp, g.phrases)
	return cp
}

// Len returns the number of phrases in the group.
func (g PhraseGroup) Len() int {
	return len(g.phrases)
}

// At returns the i-th phrase.
func (g PhraseGroup) At(i int) string {
	return g.phrases[i]
}

func (g PhraseGroup) String() string {
	return strings.Join(g.phrases, " | ")
}

// MarshalJSON renders the group as a plain JSON array of phrases.
func (g PhraseGroup) MarshalJSON() ([]byte, error) {
	return json.Marshal(g.Phrases())
}

// UnmarshalJSON reads a JSON array of phrases.
func (g *PhraseGroup) UnmarshalJSON(data []byte) error {
	var phrases []string
	if err := json.Unmarshal(data, &phrases); err != nil {
		return err
	}
	g.phrases = phrases
	return nil
}

// SplitGroup holds every PhraseGroup sharing the same split count.
// DelimiterDerived is true when the group came from explicit separators
// (quotes, commas, "vs", "and", ...) rather than combinatorial enumeration.
type SplitGroup struct {
	SplitCount       int           `json:"split_count"`
	DelimiterDerived bool          `json:"delimiter_derived"`
	PhraseGroups     []PhraseGroup `json:"phrase_groups"`
}

// DecompositionResult is the ordered output of a decomposition: the
// delimiter-derived SplitGroup first (if any), then combinatorial
// SplitGroups by increasing split count.
type DecompositionResult struct {
	SplitGroups []SplitGroup `json:"split_groups"`
}

// IsEmpty reports whether no decomposition is available for the query.
func (r DecompositionResult) IsEmpty() bool {
	return len(r.SplitGroups) == 0
}

// DelimiterGroup returns the delimiter-derived SplitGroup, if present.
func (r DecompositionResult) DelimiterGroup() (SplitGroup, bool) {
	if len(r.SplitGroups) > 0 && r.SplitGroups[0].DelimiterDerived {
		return r.SplitGroups[0], true
	}
	return SplitGroup{}, false
}

// Group returns the first SplitGroup with the given split count.
func (r DecompositionResult) Group(splitCount int) (SplitGroup, bool) {
	for _, g := range r.SplitGroups {
		if g.SplitCount == splitCount {
			return g, true
		}
	}
	return SplitGroup{}, false
}

// Clone returns a copy that shares no slices with r. PhraseGroups are
// immutable and are shared.
func (r DecompositionResult) Clone() DecompositionResult {
	groups := make([]SplitGroup, len(r.SplitGroups))
	for i, g := range r.SplitGroups {
		groups[i] = g
		groups[i].PhraseGroups = append([]PhraseGroup(nil), g.PhraseGroups...)
	}
	return DecompositionResult{SplitGroups: groups}
}

// TotalPhraseGroups counts the PhraseGroups across all SplitGroups.
func (r DecompositionResult) TotalPhraseGroups() int {
	total := 0
	for _, g := range r.SplitGroups {
		total += len(g.PhraseGroups)
	}
	return total
}
