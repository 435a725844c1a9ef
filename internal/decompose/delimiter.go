package decompose

import (
	"regexp"
	"strings"
)

// quotedRegex matches a double-quoted substring.
var quotedRegex = regexp.MustCompile(`"([^"]*)"`)

// delimiterRegex matches the explicit separators a user may put between
// variables: punctuation delimiters anywhere, "vs" (or "vs.") and "and" as
// whole words.
var delimiterRegex = regexp.MustCompile(`(?i)\s*(?:[,;&]|\bvs\b\.?|\band\b)\s*`)

var quoteReplacer = strings.NewReplacer("“", `"`, "”", `"`)

// SplitByDelimiters returns the parts of query explicitly separated by the
// user. Quoted substrings take precedence over everything else in the query;
// otherwise the query is split on ",", ";", "&", "vs" and "and". It returns
// nil when the query has no delimiter structure (fewer than two parts).
// Segments are trimmed but not otherwise cleaned.
func SplitByDelimiters(query string) []string {
	query = quoteReplacer.Replace(query)

	if quoted := quotedParts(query); len(quoted) > 0 {
		return quoted
	}

	parts := make([]string, 0)
	for _, segment := range delimiterRegex.Split(query, -1) {
		if segment = strings.TrimSpace(segment); segment != "" {
			parts = append(parts, segment)
		}
	}
	if len(parts) < 2 {
		return nil
	}
	return parts
}

func quotedParts(query string) []string {
	var parts []string
	for _, m := range quotedRegex.FindAllStringSubmatch(query, -1) {
		if part := strings.TrimSpace(m[1]); part != "" {
			parts = append(parts, part)
		}
	}
	return parts
}
