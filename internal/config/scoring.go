package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Scoring holds every boost magnitude, penalty threshold, and vocabulary the
// scoring engine uses. The defaults reproduce the observed ranking behavior;
// operators can override any value through a YAML file.
//
// Boost fields are additive and non-negative. Penalty fields are magnitudes;
// the engine subtracts them.
type Scoring struct {
	// Lexical boost components (column/model/table name matching).
	ColumnNameBoost float64 `yaml:"column_name_boost"`
	ModelNameBoost  float64 `yaml:"model_name_boost"`
	TableNameBoost  float64 `yaml:"table_name_boost"`
	KeywordBoost    float64 `yaml:"keyword_boost"`
	TextMatchBoost  float64 `yaml:"text_match_boost"`

	// Status-column special case.
	StatusColumnBoost float64 `yaml:"status_column_boost"`
	StatusValueBoost  float64 `yaml:"status_value_boost"`

	// Exact model+column match.
	ExactMatchBoost float64 `yaml:"exact_match_boost"`

	// Recipe boosts.
	CuratedRecipeBoost float64 `yaml:"curated_recipe_boost"`
	RecipePatternBoost float64 `yaml:"recipe_pattern_boost"`

	// Entity boosts.
	ProgramNameBoost   float64 `yaml:"program_name_boost"`
	TimestampBoost     float64 `yaml:"timestamp_boost"`
	TemporalTypeBoost  float64 `yaml:"temporal_type_boost"`
	NumericColumnBoost float64 `yaml:"numeric_column_boost"`

	// Penalties (magnitudes, subtracted) and their vector-score gates.
	NoOverlapPenalty      float64 `yaml:"no_overlap_penalty"`
	DomainMismatchPenalty float64 `yaml:"domain_mismatch_penalty"`
	LowScoreThreshold     float64 `yaml:"low_score_threshold"`
	DomainScoreThreshold  float64 `yaml:"domain_score_threshold"`

	// StatusVocabulary are terms that indicate the question asks about a
	// lifecycle status at all.
	StatusVocabulary []string `yaml:"status_vocabulary"`

	// StatusValues are concrete status values that earn the additional
	// boost when present among a column's known value keywords.
	StatusValues []string `yaml:"status_values"`

	// DomainCategories maps a domain tag to the keywords that imply it,
	// used by the domain-mismatch penalty. Category boundaries are data,
	// not code.
	DomainCategories map[string][]string `yaml:"domain_categories"`
}

// DefaultScoring returns the compiled-in scoring configuration.
func DefaultScoring() Scoring {
	return Scoring{
		ColumnNameBoost: 3.0,
		ModelNameBoost:  2.0,
		TableNameBoost:  1.5,
		KeywordBoost:    2.0,
		TextMatchBoost:  0.5,

		StatusColumnBoost: 4.0,
		StatusValueBoost:  2.0,

		ExactMatchBoost: 6.0,

		CuratedRecipeBoost: 4.0,
		RecipePatternBoost: 2.0,

		ProgramNameBoost:   3.0,
		TimestampBoost:     2.0,
		TemporalTypeBoost:  2.0,
		NumericColumnBoost: 1.0,

		NoOverlapPenalty:      3.0,
		DomainMismatchPenalty: 2.0,
		LowScoreThreshold:     0.3,
		DomainScoreThreshold:  0.4,

		StatusVocabulary: []string{
			"status", "state", "running", "completed", "active",
			"inactive", "finished", "done",
		},
		StatusValues: []string{
			"running", "completed", "active", "inactive", "finished", "done",
		},
		DomainCategories: map[string][]string{
			"program":    {"program", "programs"},
			"simulation": {"simulation", "simulations"},
			"experiment": {"experiment", "experiments"},
			"research":   {"research"},
		},
	}
}

// LoadScoring reads a scoring configuration from a YAML file. Values absent
// from the file keep their defaults. When the file cannot be read or parsed,
// the defaults are returned alongside the error so callers can degrade with
// a warning instead of failing.
func LoadScoring(path string) (Scoring, error) {
	cfg := DefaultScoring()

	data, err := os.ReadFile(path)
	if err != nil {
		return DefaultScoring(), fmt.Errorf("config: read scoring file: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return DefaultScoring(), fmt.Errorf("config: parse scoring file: %w", err)
	}

	return cfg, nil
}
