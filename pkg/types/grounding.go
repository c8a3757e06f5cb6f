package types

// BoostComponents breaks a candidate's score adjustment into the independent
// components that produced it. Each component is computed by its own function
// and recorded separately so tests and logs can observe every contribution.
type BoostComponents struct {
	// Lexical is the keyword/name-match boost (>= 0).
	Lexical float64 `json:"lexical"`

	// ExactMatch is the model+column exact-match boost (>= 0).
	ExactMatch float64 `json:"exact_match"`

	// Recipe is the curated/pattern recipe boost (>= 0).
	Recipe float64 `json:"recipe"`

	// Entity is the extracted-entity boost (>= 0).
	Entity float64 `json:"entity"`

	// Penalty is the low-confidence mismatch penalty (<= 0).
	Penalty float64 `json:"penalty"`
}

// Sum returns the total score adjustment, penalty included.
func (b BoostComponents) Sum() float64 {
	return b.Lexical + b.ExactMatch + b.Recipe + b.Entity + b.Penalty
}

// ScoredCandidate is one retrieved document with its hybrid score for a
// single query. It holds a reference to the indexed document, never a copy
// the engine would mutate.
type ScoredCandidate struct {
	// Document is the indexed document this candidate refers to.
	Document *Document `json:"document"`

	// VectorScore is the base similarity from the retriever. The engine
	// assumes only that higher is better, not a fixed range.
	VectorScore float64 `json:"vector_score"`

	// Boosts are the named score components added to VectorScore.
	Boosts BoostComponents `json:"boosts"`

	// FinalScore = VectorScore + sum of boosts + penalty.
	FinalScore float64 `json:"final_score"`

	// RetrievalRank is the candidate's position in the retriever's original
	// ordering; it is the stable tie-break key for equal final scores.
	RetrievalRank int `json:"retrieval_rank"`
}

// SchemaRef is a normalized reference to a concrete schema element.
type SchemaRef struct {
	Model  string `json:"model"`
	Table  string `json:"table"`
	Column string `json:"column"`
}

// GroundingResult is the structured output of grounding one question.
type GroundingResult struct {
	// GroundingID is the unique ID assigned to this grounding request,
	// carried through logs and activity events.
	GroundingID string `json:"grounding_id"`

	// Question is the original question as received.
	Question string `json:"question"`

	// ExpandedQuery is the synonym-expanded query sent to the retriever.
	ExpandedQuery string `json:"expanded_query"`

	// Entities are the structured entities extracted from the question.
	Entities Entities `json:"entities"`

	// Docs are the surfaced candidates sorted descending by final score,
	// ties broken by original retrieval rank.
	Docs []ScoredCandidate `json:"docs"`

	// SchemaRefs are deduplicated column references in first-seen order.
	SchemaRefs []SchemaRef `json:"schema_refs"`

	// JoinHints are deduplicated join-path strings in first-seen order.
	JoinHints []string `json:"join_hints"`

	// Recipes are the surfaced recipe documents in rank order.
	Recipes []ScoredCandidate `json:"recipes"`

	// Ambiguities are semantics notes whose warning condition the question
	// or matched documents actually imply.
	Ambiguities []string `json:"ambiguities"`
}
