// Package engine implements the hybrid grounding core: the multi-component
// re-ranking of vector-search candidates and the assembly of the structured
// grounding result.
//
// Scoring is deterministic and free of I/O. Each boost is computed by its
// own function over (document, query keywords, entities) and recorded as a
// named component on the candidate, so every contribution is independently
// observable in tests and logs.
package engine

import (
	"strings"

	"github.com/scrypster/schemaground/internal/config"
	"github.com/scrypster/schemaground/pkg/types"
)

// Candidate is one retrieved document paired with its base similarity score,
// in the retriever's original order.
type Candidate struct {
	Document    *types.Document
	VectorScore float64
}

// Scorer computes final scores for retrieved candidates. All magnitudes and
// vocabularies come from the scoring configuration; a zero-value Scorer is
// not usable, construct with NewScorer.
type Scorer struct {
	cfg config.Scoring
}

// NewScorer creates a scorer with the given configuration.
func NewScorer(cfg config.Scoring) *Scorer {
	return &Scorer{cfg: cfg}
}

// Score re-ranks candidates for one question. Query keywords are derived
// from the expanded query; the raw question is used for phrase-level recipe
// pattern cues. The returned list is sorted descending by final score with
// ties preserving the retriever's order.
func (s *Scorer) Score(question, expandedQuery string, ents types.Entities, candidates []Candidate) []types.ScoredCandidate {
	kwSet := keywordSet(Keywords(expandedQuery))
	questionLower := strings.ToLower(question)

	scored := make([]types.ScoredCandidate, len(candidates))
	for i, c := range candidates {
		boosts := types.BoostComponents{
			Lexical:    s.lexicalBoost(c.Document, kwSet),
			ExactMatch: s.exactMatchBoost(c.Document, kwSet),
			Recipe:     s.recipeBoost(c.Document, questionLower, kwSet, ents),
			Entity:     s.entityBoost(c.Document, ents),
		}
		boosts.Penalty = s.penalty(c.Document, kwSet, c.VectorScore, boosts.Lexical)

		scored[i] = types.ScoredCandidate{
			Document:      c.Document,
			VectorScore:   c.VectorScore,
			Boosts:        boosts,
			FinalScore:    c.VectorScore + boosts.Sum(),
			RetrievalRank: i,
		}
	}

	sortByScore(scored)
	return scored
}

// lexicalBoost rewards keyword and identifier overlap between the query and
// the document. Components, each independent:
//   - per query keyword present in the document's keyword set
//   - column, model, and table identifier matches (fire once each)
//   - the status-column special case with its value-specific extra
//   - per query keyword appearing in the document text
func (s *Scorer) lexicalBoost(doc *types.Document, kwSet map[string]bool) float64 {
	boost := 0.0
	meta := &doc.Metadata

	for _, kw := range meta.Keywords {
		if kwSet[strings.ToLower(kw)] {
			boost += s.cfg.KeywordBoost
		}
	}

	if nameMatches(kwSet, meta.Column) {
		boost += s.cfg.ColumnNameBoost
	}
	if nameMatches(kwSet, meta.Model) {
		boost += s.cfg.ModelNameBoost
	}
	if nameMatches(kwSet, meta.Table) {
		boost += s.cfg.TableNameBoost
	}

	if s.isStatusColumn(doc) && s.queryHasStatusTerm(kwSet) {
		boost += s.cfg.StatusColumnBoost
		// Extra when the concrete status value from the question is among
		// the column's known value keywords.
		for _, value := range s.cfg.StatusValues {
			if kwSet[value] && meta.HasKeyword(value) {
				boost += s.cfg.StatusValueBoost
				break
			}
		}
	}

	textLower := strings.ToLower(doc.Text)
	for kw := range kwSet {
		if strings.Contains(textLower, kw) {
			boost += s.cfg.TextMatchBoost
		}
	}

	return boost
}

// exactMatchBoost fires when, independently, some query keyword occurs in
// the document's model identifier AND some query keyword occurs in its
// column identifier. Matching is substring containment rather than token
// equality, so "program" credits a ProgramVariant column. Column documents
// only; this is the strongest single signal.
func (s *Scorer) exactMatchBoost(doc *types.Document, kwSet map[string]bool) float64 {
	if doc.Kind != types.KindColumn {
		return 0
	}
	if nameContains(kwSet, doc.Metadata.Model) && nameContains(kwSet, doc.Metadata.Column) {
		return s.cfg.ExactMatchBoost
	}
	return 0
}

// recipeBoost applies to recipe documents only: a flat boost for curated
// recipes, plus a pattern boost when the recipe's type matches a pattern
// detected in the question. A recipe has exactly one type, so at most one
// pattern match is credited.
func (s *Scorer) recipeBoost(doc *types.Document, questionLower string, kwSet map[string]bool, ents types.Entities) float64 {
	if doc.Kind != types.KindRecipe {
		return 0
	}

	boost := 0.0
	if doc.Metadata.Curated {
		boost += s.cfg.CuratedRecipeBoost
	}

	matched := false
	switch doc.Metadata.RecipeType {
	case types.RecipeAggregation:
		matched = strings.Contains(questionLower, "how many") ||
			kwSet["count"] || kwSet["total"] || kwSet["sum"] ||
			kwSet["average"] || kwSet["avg"]
	case types.RecipeTemporal:
		matched = ents.HasDates() || ents.TemporalType != ""
	case types.RecipeStatus:
		matched = s.queryHasStatusTerm(kwSet)
	case types.RecipeRelationship:
		matched = strings.Contains(questionLower, "belongs to") ||
			strings.Contains(questionLower, "linked to") ||
			strings.Contains(questionLower, "associated with") ||
			strings.Contains(questionLower, "for a ") ||
			strings.Contains(questionLower, "for each ") ||
			kwSet["related"] || kwSet["connection"]
	}
	if matched {
		boost += s.cfg.RecipePatternBoost
	}

	return boost
}

// entityBoost rewards documents that the extracted entities point at: the
// program name appearing in the text or keywords, timestamp columns when the
// question carries dates (with an extra for the matching timestamp role),
// and numeric columns when the question carries numeric filters.
func (s *Scorer) entityBoost(doc *types.Document, ents types.Entities) float64 {
	boost := 0.0

	if ents.ProgramName != "" {
		name := strings.ToLower(ents.ProgramName)
		if strings.Contains(strings.ToLower(doc.Text), name) || doc.Metadata.HasKeyword(name) {
			boost += s.cfg.ProgramNameBoost
		}
	}

	if doc.Kind == types.KindColumn && isTimestampColumn(doc) {
		if ents.HasDates() {
			boost += s.cfg.TimestampBoost
		}
		if ents.TemporalType != "" && timestampRole(doc) == ents.TemporalType {
			boost += s.cfg.TemporalTypeBoost
		}
	}

	if doc.Kind == types.KindColumn && len(ents.NumericFilters) > 0 &&
		isNumericType(doc.Metadata.DataType) {
		boost += s.cfg.NumericColumnBoost
	}

	return boost
}

// penalty applies at most one negative adjustment, the more specific and
// larger first:
//   - no keyword overlap at all (lexical boost zero) with a low vector score
//   - the document's model/table domain disjoint from every domain category
//     the question's keywords imply, with a similarly low vector score
//
// The returned value is <= 0.
func (s *Scorer) penalty(doc *types.Document, kwSet map[string]bool, vectorScore, lexical float64) float64 {
	if lexical == 0 && vectorScore < s.cfg.LowScoreThreshold {
		return -s.cfg.NoOverlapPenalty
	}

	if vectorScore >= s.cfg.DomainScoreThreshold {
		return 0
	}

	implied := false
	docInAnyImplied := false
	for _, domainKeywords := range s.cfg.DomainCategories {
		queryHas := false
		for _, kw := range domainKeywords {
			if kwSet[kw] {
				queryHas = true
				break
			}
		}
		if !queryHas {
			continue
		}
		implied = true
		for _, kw := range domainKeywords {
			if tokensContain(doc.Metadata.Model, kw) || tokensContain(doc.Metadata.Table, kw) {
				docInAnyImplied = true
				break
			}
		}
		if docInAnyImplied {
			break
		}
	}
	if implied && !docInAnyImplied {
		return -s.cfg.DomainMismatchPenalty
	}
	return 0
}

// isStatusColumn reports whether the document looks like a lifecycle status
// column: the column name or keyword set mentions "status" or "state".
func (s *Scorer) isStatusColumn(doc *types.Document) bool {
	if doc.Kind != types.KindColumn {
		return false
	}
	if tokensContain(doc.Metadata.Column, "status", "state") {
		return true
	}
	return doc.Metadata.HasKeyword("status") || doc.Metadata.HasKeyword("state")
}

// queryHasStatusTerm reports whether any query keyword is in the status
// vocabulary.
func (s *Scorer) queryHasStatusTerm(kwSet map[string]bool) bool {
	for _, term := range s.cfg.StatusVocabulary {
		if kwSet[term] {
			return true
		}
	}
	return false
}

// timestampTypes are column data types that carry a point in time.
var timestampTypes = map[string]bool{
	"date": true, "datetime": true, "datetime2": true, "smalldatetime": true,
	"timestamp": true, "timestamptz": true, "time": true,
}

// numericTypes are column data types the numeric-filter boost applies to.
var numericTypes = map[string]bool{
	"int": true, "integer": true, "bigint": true, "smallint": true,
	"tinyint": true, "float": true, "double": true, "real": true,
	"decimal": true, "numeric": true, "money": true,
}

// isTimestampColumn reports whether the column carries a timestamp, by
// declared type or by naming convention (created_at, updated_at, ...).
func isTimestampColumn(doc *types.Document) bool {
	if timestampTypes[strings.ToLower(doc.Metadata.DataType)] {
		return true
	}
	return tokensContain(doc.Metadata.Column,
		"date", "time", "at", "created", "updated", "modified", "executed")
}

// timestampRole classifies a timestamp column's semantics so the
// temporal-type boost lands on the column the question is about.
func timestampRole(doc *types.Document) types.TemporalType {
	col := doc.Metadata.Column
	switch {
	case tokensContain(col, "created", "creation"):
		return types.TemporalCreated
	case tokensContain(col, "updated", "modified") ||
		(tokensContain(col, "last") && tokensContain(col, "used")):
		return types.TemporalUpdated
	case tokensContain(col, "executed", "ran", "run"):
		return types.TemporalExecuted
	}
	return ""
}

// isNumericType reports whether the declared column type is numeric.
func isNumericType(dataType string) bool {
	return numericTypes[strings.ToLower(dataType)]
}
