package types

import "time"

// DateRelation tags how a date expression relates to the question's filter.
type DateRelation string

const (
	RelationBefore DateRelation = "before"
	RelationAfter  DateRelation = "after"
	RelationDuring DateRelation = "during"
	RelationSince  DateRelation = "since"
)

// Comparator tags a numeric filter extracted from the question.
type Comparator string

const (
	CompareGT  Comparator = "gt"
	CompareLT  Comparator = "lt"
	CompareGTE Comparator = "gte"
	CompareLTE Comparator = "lte"
	CompareEQ  Comparator = "eq"
)

// TemporalType distinguishes which timestamp semantics a question asks about,
// used to disambiguate timestamp columns (created_at vs updated_at vs
// executed_at).
type TemporalType string

const (
	TemporalCreated  TemporalType = "created"
	TemporalUpdated  TemporalType = "updated"
	TemporalExecuted TemporalType = "executed"
)

// DateFilter is a single date expression found in a question.
type DateFilter struct {
	// Raw is the matched text as it appeared (lower-cased).
	Raw string `json:"raw"`

	// Relation tags the filter direction (before, after, during, since).
	Relation DateRelation `json:"relation"`

	// Resolved is the parsed date when the expression was absolute
	// (a year or an ISO date); nil for relative cues like "recently".
	Resolved *time.Time `json:"resolved,omitempty"`
}

// NumericFilter is a single numeric comparison found in a question.
type NumericFilter struct {
	Comparator Comparator `json:"comparator"`
	Value      float64    `json:"value"`

	// UnitHint is the word following the number, when it looks like a unit
	// or a counted noun ("more than 10 simulations" -> "simulations").
	UnitHint string `json:"unit_hint,omitempty"`
}

// Entities holds the structured entities extracted from a single question.
// They are constructed fresh per query and discarded after grounding.
type Entities struct {
	// ProgramName is the extracted proper-noun phrase, empty when none found.
	ProgramName string `json:"program_name,omitempty"`

	// Dates lists date expressions in question order.
	Dates []DateFilter `json:"dates,omitempty"`

	// NumericFilters lists numeric comparisons in question order.
	NumericFilters []NumericFilter `json:"numeric_filters,omitempty"`

	// TemporalType is set when the question carries a creation/update/execution
	// cue; at most one tag, first cue in scan order wins.
	TemporalType TemporalType `json:"temporal_type,omitempty"`
}

// HasDates reports whether any date expression was extracted.
func (e *Entities) HasDates() bool { return len(e.Dates) > 0 }

// IsZero reports whether no entity of any type was extracted.
func (e *Entities) IsZero() bool {
	return e.ProgramName == "" && len(e.Dates) == 0 &&
		len(e.NumericFilters) == 0 && e.TemporalType == ""
}
