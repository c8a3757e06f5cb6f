package engine

import (
	"regexp"
	"strings"
)

// nonAlnumRe splits text on non-alphanumeric boundaries.
var nonAlnumRe = regexp.MustCompile(`[^a-zA-Z0-9]+`)

// camelRe splits a single token into camel-case sub-words.
var camelRe = regexp.MustCompile(`[A-Z][a-z0-9]*|[a-z0-9]+|[A-Z]+`)

// Keywords derives the query keyword list from text: lower-cased, de-duplicated
// tokens split on non-alphanumeric boundaries, with camel-case tokens further
// split into sub-words. Both the joined lower-cased token and its sub-words
// are emitted, so a keyword matches an identifier and its constituent words.
// Order of first appearance is preserved.
func Keywords(text string) []string {
	seen := make(map[string]bool)
	var keywords []string

	add := func(w string) {
		if w == "" || seen[w] {
			return
		}
		seen[w] = true
		keywords = append(keywords, w)
	}

	for _, token := range nonAlnumRe.Split(text, -1) {
		if token == "" {
			continue
		}
		add(strings.ToLower(token))
		subs := camelRe.FindAllString(token, -1)
		if len(subs) > 1 {
			for _, sub := range subs {
				add(strings.ToLower(sub))
			}
		}
	}
	return keywords
}

// keywordSet converts a keyword list to a membership set.
func keywordSet(keywords []string) map[string]bool {
	set := make(map[string]bool, len(keywords))
	for _, k := range keywords {
		set[k] = true
	}
	return set
}

// nameTokens tokenizes an identifier (snake_case or camelCase) the same way
// Keywords tokenizes queries, so identifier and query tokens compare equal.
func nameTokens(name string) []string {
	if name == "" {
		return nil
	}
	return Keywords(name)
}

// nameMatches reports whether any query keyword equals the identifier or one
// of its sub-words.
func nameMatches(kwSet map[string]bool, name string) bool {
	for _, tok := range nameTokens(name) {
		if kwSet[tok] {
			return true
		}
	}
	return false
}

// nameContains reports whether any query keyword occurs as a substring of
// the lower-cased identifier. Looser than nameMatches; used where a partial
// identifier mention should still count.
func nameContains(kwSet map[string]bool, name string) bool {
	if name == "" {
		return false
	}
	lower := strings.ToLower(name)
	for kw := range kwSet {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// tokensContain reports whether any of the identifier's tokens equals one of
// the given words.
func tokensContain(name string, words ...string) bool {
	toks := keywordSet(nameTokens(name))
	for _, w := range words {
		if toks[w] {
			return true
		}
	}
	return false
}
