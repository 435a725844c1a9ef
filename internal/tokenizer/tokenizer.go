// Package tokenizer cleans free-text queries before they are decomposed:
// punctuation stripping, stop-word removal and whitespace tokenization.
package tokenizer

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/gcbaptista/go-query-decomposer/internal/stopwords"
)

// possessiveRegex matches a possessive suffix like "country's" -> "country".
var possessiveRegex = regexp.MustCompile(`(?i)['’]s\b`)

// abbreviations whose trailing period is kept, e.g. "St. Louis".
var abbreviations = map[string]struct{}{
	"st": {}, "mt": {}, "ft": {}, "dr": {}, "mr": {}, "mrs": {}, "ms": {}, "jr": {}, "sr": {},
}

// StripPunctuation replaces punctuation with spaces and collapses whitespace.
// Periods inside decimal numbers ("3.5") and after known abbreviations ("St.")
// are kept. Case is preserved.
func StripPunctuation(text string) string {
	text = possessiveRegex.ReplaceAllString(text, "")
	runes := []rune(text)

	var b strings.Builder
	b.Grow(len(text))
	for i, r := range runes {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		case r == '.' && (isDecimalPoint(runes, i) || endsAbbreviation(runes, i)):
			b.WriteRune(r)
		default:
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

func isDecimalPoint(runes []rune, i int) bool {
	return i > 0 && i+1 < len(runes) && unicode.IsDigit(runes[i-1]) && unicode.IsDigit(runes[i+1])
}

// endsAbbreviation reports whether the period at i closes a whole word found
// in abbreviations.
func endsAbbreviation(runes []rune, i int) bool {
	start := i
	for start > 0 && unicode.IsLetter(runes[start-1]) {
		start--
	}
	if start == i {
		return false
	}
	if start > 0 && unicode.IsDigit(runes[start-1]) {
		return false
	}
	_, ok := abbreviations[strings.ToLower(string(runes[start:i]))]
	return ok
}

// RemoveStopWords lower-cases text and removes every whole-word occurrence of
// each stop-word entry, longest entries first. Passes repeat until nothing
// more can be removed, so applying it twice gives the same result.
//
// Any matching entry is removed, including place-type names that may have
// been meant as part of a variable name.
func RemoveStopWords(text string, stopWords *stopwords.Set) string {
	tokens := strings.Fields(strings.ToLower(text))
	phrases := stopWords.Tokenized()

	for changed := true; changed && len(tokens) > 0; {
		changed = false
		for _, phrase := range phrases {
			var removed bool
			tokens, removed = removePhrase(tokens, phrase)
			changed = changed || removed
		}
	}
	return strings.Join(tokens, " ")
}

// removePhrase drops non-overlapping occurrences of phrase from tokens, scanning left to right.
func removePhrase(tokens, phrase []string) ([]string, bool) {
	if len(phrase) == 0 || len(phrase) > len(tokens) {
		return tokens, false
	}

	out := make([]string, 0, len(tokens))
	removed := false
	for i := 0; i < len(tokens); {
		if hasPhraseAt(tokens, phrase, i) {
			i += len(phrase)
			removed = true
			continue
		}
		out = append(out, tokens[i])
		i++
	}
	return out, removed
}

func hasPhraseAt(tokens, phrase []string, i int) bool {
	if i+len(phrase) > len(tokens) {
		return false
	}
	for j, w := range phrase {
		if tokens[i+j] != w {
			return false
		}
	}
	return true
}

// Normalize strips punctuation and then removes stop words.
func Normalize(text string, stopWords *stopwords.Set) string {
	return RemoveStopWords(StripPunctuation(text), stopWords)
}

// Tokenize splits already-normalized text on whitespace.
func Tokenize(text string) []string {
	tokens := strings.Fields(text)
	if tokens == nil {
		return make([]string, 0) // Return empty slice instead of nil
	}
	return tokens
}
