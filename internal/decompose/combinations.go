package decompose

import (
	"strings"

	"github.com/gcbaptista/go-query-decomposer/model"
)

// EnumeratePartitions returns every way to cut tokens into k contiguous,
// non-empty groups in their original order. Each group is rendered as its
// tokens joined by single spaces. Partitions in which two groups render to
// the same string are dropped.
//
// Output order follows the first cut point, smallest first, recursively. The
// result is empty (never nil) when k < 1, k > len(tokens) or tokens is empty.
func EnumeratePartitions(tokens []string, k int) []model.PhraseGroup {
	parts := partitions(tokens, k)
	groups := make([]model.PhraseGroup, 0, len(parts))
	for _, p := range parts {
		groups = append(groups, model.NewPhraseGroup(p...))
	}
	return groups
}

// partitions is the recursive core of EnumeratePartitions. Every returned
// partition has exactly k pairwise-distinct parts.
func partitions(tokens []string, k int) [][]string {
	n := len(tokens)
	if k < 1 || n == 0 || k > n {
		return nil
	}
	if k == 1 {
		return [][]string{{strings.Join(tokens, " ")}}
	}

	var out [][]string
	// end stops at n-(k-1) so each of the remaining k-1 groups gets a token.
	for end := 1; end <= n-(k-1); end++ {
		first := strings.Join(tokens[:end], " ")
		for _, rest := range partitions(tokens[end:], k-1) {
			if contains(rest, first) {
				continue
			}
			p := make([]string, 0, k)
			p = append(p, first)
			p = append(p, rest...)
			out = append(out, p)
		}
	}
	return out
}

func contains(parts []string, s string) bool {
	for _, p := range parts {
		if p == s {
			return true
		}
	}
	return false
}

// CountPartitions returns C(n-1, k-1), the number of ways to cut n tokens into
// k non-empty contiguous groups before duplicate groups are filtered out.
func CountPartitions(n, k int) int {
	if k < 1 || n < 1 || k > n {
		return 0
	}
	return binomial(n-1, k-1)
}

func binomial(n, r int) int {
	if r > n-r {
		r = n - r
	}
	result := 1
	for i := 1; i <= r; i++ {
		result = result * (n - r + i) / i
	}
	return result
}
