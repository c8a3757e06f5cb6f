package engine

import (
	"slices"
	"strings"

	"github.com/scrypster/schemaground/pkg/types"
)

// sortByScore orders candidates descending by final score. The sort is
// stable so equal scores keep the retriever's original order, which makes
// the output reproducible given identical retriever ordering.
func sortByScore(scored []types.ScoredCandidate) {
	slices.SortStableFunc(scored, func(a, b types.ScoredCandidate) int {
		switch {
		case a.FinalScore > b.FinalScore:
			return -1
		case a.FinalScore < b.FinalScore:
			return 1
		}
		return 0
	})
}

// Assemble transforms a fully scored, sorted candidate list into the
// externally visible grounding parts. Truncation to topK happens here, after
// scoring, so a low-vector-score but high-boost document can still surface.
//
// The caller fills the request-level fields (grounding ID, question,
// expanded query, entities) on the returned result.
func Assemble(scored []types.ScoredCandidate, topK int, ents types.Entities, queryKeywords []string) types.GroundingResult {
	if topK > 0 && len(scored) > topK {
		scored = scored[:topK]
	}

	result := types.GroundingResult{
		Entities: ents,
		Docs:     scored,
	}

	seenRefs := make(map[types.SchemaRef]bool)
	addRef := func(meta *types.Metadata) {
		if meta.Model == "" || meta.Column == "" {
			return
		}
		ref := types.SchemaRef{Model: meta.Model, Table: meta.Table, Column: meta.Column}
		if !seenRefs[ref] {
			seenRefs[ref] = true
			result.SchemaRefs = append(result.SchemaRefs, ref)
		}
	}

	seenHints := make(map[string]bool)

	for _, cand := range scored {
		meta := &cand.Document.Metadata

		switch cand.Document.Kind {
		case types.KindColumn:
			addRef(meta)

		case types.KindRecipe:
			result.Recipes = append(result.Recipes, cand)
			for _, hint := range meta.JoinHints {
				if !seenHints[hint] {
					seenHints[hint] = true
					result.JoinHints = append(result.JoinHints, hint)
				}
			}
			// Recipes that target a concrete cell contribute a schema ref too.
			addRef(meta)
		}
	}

	result.Ambiguities = collectAmbiguities(scored, ents, queryKeywords)
	return result
}

// collectAmbiguities surfaces recipe semantics notes only when the question
// or the matched documents actually imply the condition the note warns
// about: some keyword of the note's recipe must appear among the query
// keywords, the extracted entities, or the identifiers of the surfaced
// documents.
func collectAmbiguities(scored []types.ScoredCandidate, ents types.Entities, queryKeywords []string) []string {
	condition := keywordSet(queryKeywords)
	if ents.ProgramName != "" {
		for _, w := range Keywords(ents.ProgramName) {
			condition[w] = true
		}
	}
	if ents.TemporalType != "" {
		condition[string(ents.TemporalType)] = true
	}
	for _, cand := range scored {
		for _, tok := range nameTokens(cand.Document.Metadata.Column) {
			condition[tok] = true
		}
		for _, tok := range nameTokens(cand.Document.Metadata.Model) {
			condition[tok] = true
		}
	}

	seen := make(map[string]bool)
	var notes []string
	for _, cand := range scored {
		meta := &cand.Document.Metadata
		if cand.Document.Kind != types.KindRecipe || len(meta.SemanticsNotes) == 0 {
			continue
		}

		relevant := false
		for _, kw := range meta.Keywords {
			if condition[strings.ToLower(kw)] {
				relevant = true
				break
			}
		}
		if !relevant {
			continue
		}

		for _, note := range meta.SemanticsNotes {
			if !seen[note] {
				seen[note] = true
				notes = append(notes, note)
			}
		}
	}
	return notes
}
