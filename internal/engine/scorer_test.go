package engine_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scrypster/schemaground/internal/config"
	"github.com/scrypster/schemaground/internal/engine"
	"github.com/scrypster/schemaground/pkg/types"
)

func newScorer() *engine.Scorer {
	return engine.NewScorer(config.DefaultScoring())
}

func columnDoc(id, model, table, column, dataType, text string, keywords ...string) *types.Document {
	return &types.Document{
		ID:   id,
		Kind: types.KindColumn,
		Text: text,
		Metadata: types.Metadata{
			Model:    model,
			Table:    table,
			Column:   column,
			DataType: dataType,
			Keywords: keywords,
		},
	}
}

func TestScore_LexicalComponents(t *testing.T) {
	doc := columnDoc("col:success_count", "Simulation", "simulation_runs",
		"success_count", "int", "Number of successful runs")

	scored := newScorer().Score(
		"success count of simulations", "success count of simulations",
		types.Entities{},
		[]engine.Candidate{{Document: doc, VectorScore: 0.8}},
	)

	require.Len(t, scored, 1)
	// column name +3.0, text contains "success" and "of" at +0.5 each
	assert.InDelta(t, 4.0, scored[0].Boosts.Lexical, 1e-9)
	assert.InDelta(t, 0.0, scored[0].Boosts.ExactMatch, 1e-9)
	assert.InDelta(t, 0.0, scored[0].Boosts.Penalty, 1e-9)
	assert.InDelta(t, 4.8, scored[0].FinalScore, 1e-9)
}

func TestScore_ExactMatchRequiresModelAndColumn(t *testing.T) {
	column := columnDoc("col:sc", "Simulation", "", "success_count", "int", "")
	model := &types.Document{
		ID:   "model:simulation",
		Kind: types.KindModel,
		Text: "",
		Metadata: types.Metadata{
			Model:  "Simulation",
			Column: "success_count",
		},
	}

	scored := newScorer().Score(
		"simulation success_count", "simulation success_count",
		types.Entities{},
		[]engine.Candidate{
			{Document: column, VectorScore: 0.5},
			{Document: model, VectorScore: 0.5},
		},
	)

	require.Len(t, scored, 2)
	byID := map[string]types.ScoredCandidate{}
	for _, s := range scored {
		byID[s.Document.ID] = s
	}
	assert.InDelta(t, 6.0, byID["col:sc"].Boosts.ExactMatch, 1e-9)
	assert.InDelta(t, 0.0, byID["model:simulation"].Boosts.ExactMatch, 1e-9,
		"exact-match boost applies to column documents only")
}

func TestScore_ExactMatchFiresOnContainment(t *testing.T) {
	column := columnDoc("col:variant_name", "ProgramVariant", "program_variants",
		"name", "varchar", "Program variant name", "program", "variant")
	recipe := recipeDoc("recipe:program_variants", true, types.RecipeRelationship)

	scored := newScorer().Score(
		"Program variants for a specific program",
		"program variants for a specific program",
		types.Entities{},
		[]engine.Candidate{
			{Document: recipe, VectorScore: 0.9},
			{Document: column, VectorScore: 0.5},
		},
	)

	require.Len(t, scored, 2)
	byID := map[string]types.ScoredCandidate{}
	for _, s := range scored {
		byID[s.Document.ID] = s
	}
	assert.InDelta(t, 6.0, byID["col:variant_name"].Boosts.ExactMatch, 1e-9,
		"containment fires even though no query token equals the column name")
	assert.InDelta(t, 6.5, byID["col:variant_name"].Boosts.Lexical, 1e-9)
	assert.Equal(t, "col:variant_name", scored[0].Document.ID,
		"the matched column outranks the recipe despite its higher vector score")
}

func TestScore_StatusColumn(t *testing.T) {
	doc := columnDoc("col:status", "Simulation", "simulations", "status",
		"varchar", "Lifecycle state", "status", "running", "completed")

	scored := newScorer().Score(
		"How many simulations are running", "how many simulations are running",
		types.Entities{},
		[]engine.Candidate{{Document: doc, VectorScore: 0.5}},
	)

	require.Len(t, scored, 1)
	// keyword "running" +2.0, status column +4.0, matched status value +2.0,
	// table "simulations" +1.5
	assert.InDelta(t, 9.5, scored[0].Boosts.Lexical, 1e-9)
}

func TestScore_PenaltyNoOverlap(t *testing.T) {
	doc := columnDoc("col:humidity", "WeatherStation", "weather_stations",
		"humidity", "float", "Relative humidity reading")

	scored := newScorer().Score(
		"simulation success count", "simulation success count",
		types.Entities{},
		[]engine.Candidate{{Document: doc, VectorScore: 0.2}},
	)

	require.Len(t, scored, 1)
	assert.InDelta(t, 0.0, scored[0].Boosts.Lexical, 1e-9)
	assert.InDelta(t, -3.0, scored[0].Boosts.Penalty, 1e-9)
	assert.InDelta(t, -2.8, scored[0].FinalScore, 1e-9)
}

func TestScore_PenaltyDomainMismatch(t *testing.T) {
	mismatch := columnDoc("col:run_id", "Experiment", "experiments",
		"run_id", "int", "Primary identifier")
	match := columnDoc("col:sim_id", "Simulation", "simulations",
		"sim_id", "int", "Primary identifier")

	scored := newScorer().Score(
		"how many simulations", "how many simulations",
		types.Entities{},
		[]engine.Candidate{
			{Document: mismatch, VectorScore: 0.35},
			{Document: match, VectorScore: 0.35},
		},
	)

	byID := map[string]types.ScoredCandidate{}
	for _, s := range scored {
		byID[s.Document.ID] = s
	}
	assert.InDelta(t, -2.0, byID["col:run_id"].Boosts.Penalty, 1e-9)
	assert.InDelta(t, 0.0, byID["col:sim_id"].Boosts.Penalty, 1e-9)
}

func TestScore_PenaltiesAreMutuallyExclusive(t *testing.T) {
	// No overlap AND foreign domain with a very low vector score: only the
	// larger no-overlap penalty applies.
	doc := columnDoc("col:run_id", "Experiment", "experiments",
		"run_id", "int", "Primary identifier")

	scored := newScorer().Score(
		"how many simulations", "how many simulations",
		types.Entities{},
		[]engine.Candidate{{Document: doc, VectorScore: 0.1}},
	)

	require.Len(t, scored, 1)
	assert.InDelta(t, -3.0, scored[0].Boosts.Penalty, 1e-9)
}

func recipeDoc(id string, curated bool, rt types.RecipeType) *types.Document {
	return &types.Document{
		ID:   id,
		Kind: types.KindRecipe,
		Text: "",
		Metadata: types.Metadata{
			Curated:    curated,
			RecipeType: rt,
		},
	}
}

func TestScore_RecipeBoosts(t *testing.T) {
	scorer := newScorer()

	cases := []struct {
		name     string
		doc      *types.Document
		question string
		ents     types.Entities
		want     float64
	}{
		{
			name:     "curated aggregation matching how many",
			doc:      recipeDoc("r1", true, types.RecipeAggregation),
			question: "How many simulations completed?",
			want:     6.0,
		},
		{
			name:     "temporal pattern from temporal entity",
			doc:      recipeDoc("r2", false, types.RecipeTemporal),
			question: "runs created recently",
			ents:     types.Entities{TemporalType: types.TemporalCreated},
			want:     2.0,
		},
		{
			name:     "status pattern",
			doc:      recipeDoc("r3", false, types.RecipeStatus),
			question: "show running simulations",
			want:     2.0,
		},
		{
			name:     "relationship pattern",
			doc:      recipeDoc("r4", false, types.RecipeRelationship),
			question: "simulations for a program",
			want:     2.0,
		},
		{
			name:     "unclassified recipe gets nothing",
			doc:      recipeDoc("r5", false, types.RecipeNone),
			question: "How many simulations completed?",
			want:     0.0,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			scored := scorer.Score(tc.question, tc.question, tc.ents,
				[]engine.Candidate{{Document: tc.doc, VectorScore: 0.5}})
			require.Len(t, scored, 1)
			assert.InDelta(t, tc.want, scored[0].Boosts.Recipe, 1e-9)
		})
	}
}

func TestScore_EntityBoosts(t *testing.T) {
	scorer := newScorer()
	after := types.DateFilter{Raw: "after 2023", Relation: types.RelationAfter}

	t.Run("timestamp column with matching role", func(t *testing.T) {
		doc := columnDoc("col:created_at", "Simulation", "simulations",
			"created_at", "datetime", "")
		scored := scorer.Score(
			"simulations created after 2023", "simulations created after 2023",
			types.Entities{Dates: []types.DateFilter{after}, TemporalType: types.TemporalCreated},
			[]engine.Candidate{{Document: doc, VectorScore: 0.5}})
		require.Len(t, scored, 1)
		// dates present +2.0, role matches temporal type +2.0
		assert.InDelta(t, 4.0, scored[0].Boosts.Entity, 1e-9)
	})

	t.Run("timestamp column with different role", func(t *testing.T) {
		doc := columnDoc("col:updated_at", "Simulation", "simulations",
			"updated_at", "datetime", "")
		scored := scorer.Score(
			"simulations created after 2023", "simulations created after 2023",
			types.Entities{Dates: []types.DateFilter{after}, TemporalType: types.TemporalCreated},
			[]engine.Candidate{{Document: doc, VectorScore: 0.5}})
		require.Len(t, scored, 1)
		assert.InDelta(t, 2.0, scored[0].Boosts.Entity, 1e-9)
	})

	t.Run("numeric column with numeric filter", func(t *testing.T) {
		doc := columnDoc("col:iteration_count", "Simulation", "simulations",
			"iteration_count", "int", "")
		scored := scorer.Score(
			"runs with more than 100 iterations", "runs with more than 100 iterations",
			types.Entities{NumericFilters: []types.NumericFilter{
				{Comparator: types.CompareGT, Value: 100},
			}},
			[]engine.Candidate{{Document: doc, VectorScore: 0.5}})
		require.Len(t, scored, 1)
		assert.InDelta(t, 1.0, scored[0].Boosts.Entity, 1e-9)
	})

	t.Run("program name in document text", func(t *testing.T) {
		doc := &types.Document{
			ID:   "model:run",
			Kind: types.KindModel,
			Text: "Runs for the Forest Fire program",
			Metadata: types.Metadata{Model: "Run"},
		}
		scored := scorer.Score(
			`runs for "Forest Fire"`, `runs for "forest fire"`,
			types.Entities{ProgramName: "forest fire"},
			[]engine.Candidate{{Document: doc, VectorScore: 0.5}})
		require.Len(t, scored, 1)
		assert.InDelta(t, 3.0, scored[0].Boosts.Entity, 1e-9)
	})
}

func TestScore_BoostedCandidateOvertakesHigherVectorScore(t *testing.T) {
	plain := &types.Document{
		ID:       "model:weather",
		Kind:     types.KindModel,
		Text:     "Weather observation data",
		Metadata: types.Metadata{Model: "Weather"},
	}
	boosted := columnDoc("col:sc", "Simulation", "", "success_count", "int", "")

	scored := newScorer().Score(
		"simulation success count", "simulation success count",
		types.Entities{},
		[]engine.Candidate{
			{Document: plain, VectorScore: 0.9},
			{Document: boosted, VectorScore: 0.5},
		},
	)

	require.Len(t, scored, 2)
	assert.Equal(t, "col:sc", scored[0].Document.ID)
	assert.Equal(t, 1, scored[0].RetrievalRank,
		"retrieval rank records the original position")
	assert.Greater(t, scored[0].FinalScore, scored[1].FinalScore)
}

func TestScore_TiesPreserveRetrievalOrder(t *testing.T) {
	a := &types.Document{ID: "a", Kind: types.KindModel, Text: "alpha data"}
	b := &types.Document{ID: "b", Kind: types.KindModel, Text: "alpha data"}

	scored := newScorer().Score(
		"unrelated text", "unrelated text",
		types.Entities{},
		[]engine.Candidate{
			{Document: a, VectorScore: 0.4},
			{Document: b, VectorScore: 0.4},
		},
	)

	require.Len(t, scored, 2)
	assert.Equal(t, "a", scored[0].Document.ID)
	assert.Equal(t, "b", scored[1].Document.ID)
}

func TestScore_Deterministic(t *testing.T) {
	docs := []engine.Candidate{
		{Document: columnDoc("c1", "Simulation", "simulations", "status", "varchar", "Lifecycle state", "status"), VectorScore: 0.6},
		{Document: recipeDoc("r1", true, types.RecipeAggregation), VectorScore: 0.4},
		{Document: columnDoc("c2", "Program", "programs", "name", "varchar", "Program name"), VectorScore: 0.5},
	}
	scorer := newScorer()
	ents := types.Entities{TemporalType: types.TemporalCreated}

	first := scorer.Score("how many running simulations", "how many running simulations", ents, docs)
	second := scorer.Score("how many running simulations", "how many running simulations", ents, docs)
	assert.Equal(t, first, second)
}
