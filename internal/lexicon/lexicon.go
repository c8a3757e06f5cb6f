// Package lexicon provides the static synonym table used for query
// expansion. The table maps a phrase of 1-4 whitespace-delimited words to a
// set of synonymous phrases and is made bidirectional at load time: if A
// maps to B, a lookup for B also yields A.
//
// The lexicon is loaded once and immutable thereafter, so a single instance
// is safe for concurrent use across grounding requests.
package lexicon

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
)

// maxPhraseWords is the longest phrase the table may key on.
const maxPhraseWords = 4

// Lexicon is an immutable bidirectional synonym table.
type Lexicon struct {
	synonyms map[string][]string
}

// New builds a Lexicon from a one-directional synonym table, computing the
// bidirectional closure. Phrases are lower-cased; entries keyed by phrases
// longer than four words are dropped.
func New(table map[string][]string) *Lexicon {
	closed := make(map[string]map[string]bool)

	add := func(key, value string) {
		key = strings.ToLower(strings.TrimSpace(key))
		value = strings.ToLower(strings.TrimSpace(value))
		if key == "" || value == "" || key == value {
			return
		}
		if len(strings.Fields(key)) > maxPhraseWords {
			return
		}
		if closed[key] == nil {
			closed[key] = make(map[string]bool)
		}
		closed[key][value] = true
	}

	for key, values := range table {
		for _, value := range values {
			add(key, value)
			add(value, key) // reverse direction
		}
	}

	synonyms := make(map[string][]string, len(closed))
	for key, set := range closed {
		list := make([]string, 0, len(set))
		for v := range set {
			list = append(list, v)
		}
		// Deterministic synonym order regardless of map iteration.
		sort.Strings(list)
		synonyms[key] = list
	}

	return &Lexicon{synonyms: synonyms}
}

// Load reads a synonym table from a JSON file ({"phrase": ["syn", ...]}).
func Load(path string) (*Lexicon, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("lexicon: read %s: %w", path, err)
	}

	var table map[string][]string
	if err := json.Unmarshal(data, &table); err != nil {
		return nil, fmt.Errorf("lexicon: parse %s: %w", path, err)
	}

	return New(table), nil
}

// Lookup returns the synonyms for a phrase (lower-cased), or nil.
func (l *Lexicon) Lookup(phrase string) []string {
	if l == nil {
		return nil
	}
	return l.synonyms[strings.ToLower(phrase)]
}

// Len returns the number of phrases in the table.
func (l *Lexicon) Len() int {
	if l == nil {
		return 0
	}
	return len(l.synonyms)
}

// Expand rewrites a question into an expanded query string. It scans the
// lower-cased question left to right, matching the longest table phrase
// first (greedy, non-overlapping). Matched words are kept and their synonyms
// appended; terms already present are not appended again, so expansion is a
// fixed point after one pass over a bidirectionally closed table.
//
// A nil Lexicon expands to the question unchanged.
func (l *Lexicon) Expand(question string) string {
	if l == nil || len(l.synonyms) == 0 {
		return question
	}

	words := strings.Fields(strings.ToLower(question))
	if len(words) == 0 {
		return question
	}

	seen := make(map[string]bool, len(words))
	expanded := make([]string, 0, len(words))

	appendTerm := func(term string) {
		for _, w := range strings.Fields(term) {
			if !seen[w] {
				seen[w] = true
				expanded = append(expanded, w)
			}
		}
	}

	i := 0
	for i < len(words) {
		matched := false

		// Longest phrase first.
		maxLen := maxPhraseWords
		if rest := len(words) - i; rest < maxLen {
			maxLen = rest
		}
		for n := maxLen; n >= 2; n-- {
			phrase := strings.Join(words[i:i+n], " ")
			if syns, ok := l.synonyms[phrase]; ok {
				appendTerm(phrase)
				for _, s := range syns {
					appendTerm(s)
				}
				i += n
				matched = true
				break
			}
		}
		if matched {
			continue
		}

		word := words[i]
		appendTerm(word)
		for _, s := range l.synonyms[word] {
			appendTerm(s)
		}
		i++
	}

	return strings.Join(expanded, " ")
}
