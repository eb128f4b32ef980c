package search

import (
	"strings"
	"unicode"
)

// Words too common to signal a verbatim match.
var stopWords = func() map[string]struct{} {
	const list = "the a an be is are was to of and in that have it for " +
		"not on with as you do at this but by from what how about"
	set := make(map[string]struct{})
	for _, w := range strings.Fields(list) {
		set[w] = struct{}{}
	}
	return set
}()

// tokens lowercases text, splits on anything that is not a letter or
// digit, and drops stop words.
func tokens(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})

	kept := fields[:0]
	for _, w := range fields {
		if _, stop := stopWords[w]; !stop {
			kept = append(kept, w)
		}
	}
	return kept
}

// containsAllQueryWords reports whether every query token appears in the
// document. A query made entirely of stop words never counts as a
// verbatim match.
func containsAllQueryWords(document, query string) bool {
	queryTokens := tokens(query)
	if len(queryTokens) == 0 {
		return false
	}

	seen := make(map[string]struct{})
	for _, w := range tokens(document) {
		seen[w] = struct{}{}
	}
	for _, w := range queryTokens {
		if _, ok := seen[w]; !ok {
			return false
		}
	}
	return true
}
