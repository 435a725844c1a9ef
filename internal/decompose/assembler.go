// Package decompose proposes the ways a multi-variable analytics query can be
// split into sub-phrases, each of which is matched to a statistical variable
// independently downstream.
//
// The engine functions (SplitByDelimiters, EnumeratePartitions, Decompose) are
// pure and safe for concurrent use. Service wraps them with caching,
// validation, metrics and analytics.
package decompose

import (
	"github.com/gcbaptista/go-query-decomposer/internal/stopwords"
	"github.com/gcbaptista/go-query-decomposer/internal/tokenizer"
	"github.com/gcbaptista/go-query-decomposer/model"
)

const (
	// MinSplitCount is the smallest combinatorial split count.
	MinSplitCount = 2
	// MaxSplitCount caps the number of phrases per split; the number of
	// partitions grows as C(n-1, k-1).
	MaxSplitCount = 4
)

// Decompose returns every candidate split of query, with at most
// MaxSplitCount phrases per split.
func Decompose(query string, stopWords *stopwords.Set) model.DecompositionResult {
	return DecomposeWithLimit(query, stopWords, MaxSplitCount)
}

// DecomposeWithLimit is Decompose with a lower phrase cap. maxSplitCount is
// clamped into [MinSplitCount, MaxSplitCount] and bounds the delimiter group too.
func DecomposeWithLimit(query string, stopWords *stopwords.Set, maxSplitCount int) model.DecompositionResult {
	tokens := tokenizer.Tokenize(tokenizer.Normalize(query, stopWords))
	return assemble(query, tokens, stopWords, maxSplitCount)
}

// assemble builds the result from the raw query and its normalized tokens.
func assemble(query string, tokens []string, stopWords *stopwords.Set, maxSplitCount int) model.DecompositionResult {
	if maxSplitCount > MaxSplitCount {
		maxSplitCount = MaxSplitCount
	}
	if maxSplitCount < MinSplitCount {
		maxSplitCount = MinSplitCount
	}

	result := model.DecompositionResult{SplitGroups: make([]model.SplitGroup, 0)}

	// A delimiter group with more parts than the cap is dropped and shadows no k.
	delimiterCount := 0
	if group, ok := delimiterSplitGroup(query, stopWords); ok && group.SplitCount <= maxSplitCount {
		result.SplitGroups = append(result.SplitGroups, group)
		delimiterCount = group.SplitCount
	}

	maxK := min(maxSplitCount, len(tokens))
	for k := MinSplitCount; k <= maxK; k++ {
		if k == delimiterCount {
			continue
		}
		groups := EnumeratePartitions(tokens, k)
		if len(groups) == 0 {
			continue
		}
		result.SplitGroups = append(result.SplitGroups, model.SplitGroup{
			SplitCount:       k,
			DelimiterDerived: false,
			PhraseGroups:     groups,
		})
	}
	return result
}

// delimiterSplitGroup cleans every delimiter segment and, if any survive,
// returns them as a single delimiter-derived SplitGroup. Repeated segments
// are kept.
func delimiterSplitGroup(query string, stopWords *stopwords.Set) (model.SplitGroup, bool) {
	segments := SplitByDelimiters(query)
	if len(segments) == 0 {
		return model.SplitGroup{}, false
	}

	cleaned := make([]string, 0, len(segments))
	for _, segment := range segments {
		if c := tokenizer.Normalize(segment, stopWords); c != "" {
			cleaned = append(cleaned, c)
		}
	}
	if len(cleaned) == 0 {
		return model.SplitGroup{}, false
	}

	return model.SplitGroup{
		SplitCount:       len(cleaned),
		DelimiterDerived: true,
		PhraseGroups:     []model.PhraseGroup{model.NewPhraseGroup(cleaned...)},
	}, true
}
