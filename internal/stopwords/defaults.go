package stopwords

import "strings"

// GeneralStopWords are filler words that never identify a statistical variable.
var GeneralStopWords = []string{
	"a", "about", "across", "all", "among", "an", "and", "any", "are", "as", "at",
	"be", "been", "between", "by", "can", "could", "data", "did", "do", "does",
	"each", "for", "from", "get", "give", "has", "have", "how", "i", "in", "into",
	"is", "it", "its", "list", "me", "many", "much", "my", "number of", "of", "on",
	"or", "our", "please", "show", "show me", "some", "stats", "statistics", "tell",
	"tell me", "than", "that", "the", "their", "there", "these", "this", "those",
	"to", "us", "versus", "vs", "was", "we", "were", "what", "what is", "what are",
	"when", "where", "which", "who", "why", "will", "with", "within", "would", "you",
}

// ClassificationTriggers are words that select a chart or answer type
// (comparison, correlation, ranking, ...) rather than a variable.
var ClassificationTriggers = []string{
	"best", "biggest", "bottom", "breakdown", "chart", "compare", "compared",
	"comparison", "correlate", "correlated", "correlation", "highest", "least",
	"lowest", "map", "most", "over time", "plot", "rank", "ranked", "ranking",
	"relationship", "smallest", "timeline", "top", "trend", "trends", "worst",
}

// PlaceTypes are place-type names. Their plurals are added by Default.
var PlaceTypes = []string{
	"borough", "census tract", "city", "continent", "country", "county",
	"district", "metro area", "municipality", "neighborhood", "place",
	"postal code", "province", "region", "school district", "state", "town",
	"village", "zip code",
}

// Default returns the built-in corpus: general stop words, classification
// triggers, and place types with their plurals.
func Default() *Set {
	return Compose(GeneralStopWords, ClassificationTriggers, WithPlurals(PlaceTypes))
}

// WithPlurals returns the given words followed by their plurals.
func WithPlurals(words []string) []string {
	out := make([]string, 0, 2*len(words))
	out = append(out, words...)
	for _, w := range words {
		out = append(out, Pluralize(w))
	}
	return out
}

// Pluralize returns the English plural of a word or phrase by inflecting its
// last word ("zip code" -> "zip codes", "county" -> "counties").
func Pluralize(phrase string) string {
	words := strings.Fields(phrase)
	if len(words) == 0 {
		return phrase
	}
	last := words[len(words)-1]
	words[len(words)-1] = pluralizeWord(last)
	return strings.Join(words, " ")
}

func pluralizeWord(w string) string {
	switch {
	case strings.HasSuffix(w, "s"), strings.HasSuffix(w, "x"), strings.HasSuffix(w, "z"),
		strings.HasSuffix(w, "ch"), strings.HasSuffix(w, "sh"):
		return w + "es"
	case strings.HasSuffix(w, "y") && len(w) > 1 && !isVowel(w[len(w)-2]):
		return w[:len(w)-1] + "ies"
	default:
		return w + "s"
	}
}

func isVowel(b byte) bool {
	switch b {
	case 'a', 'e', 'i', 'o', 'u':
		return true
	}
	return false
}
