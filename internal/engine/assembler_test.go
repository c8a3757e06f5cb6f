package engine_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scrypster/schemaground/internal/engine"
	"github.com/scrypster/schemaground/pkg/types"
)

func scoredColumn(id, model, table, column string, score float64) types.ScoredCandidate {
	return types.ScoredCandidate{
		Document: &types.Document{
			ID:   id,
			Kind: types.KindColumn,
			Text: id,
			Metadata: types.Metadata{
				Model:  model,
				Table:  table,
				Column: column,
			},
		},
		FinalScore: score,
	}
}

func scoredRecipe(id string, score float64, meta types.Metadata) types.ScoredCandidate {
	return types.ScoredCandidate{
		Document: &types.Document{
			ID:       id,
			Kind:     types.KindRecipe,
			Text:     id,
			Metadata: meta,
		},
		FinalScore: score,
	}
}

func TestAssemble_TruncatesToTopK(t *testing.T) {
	scored := []types.ScoredCandidate{
		scoredColumn("c1", "Simulation", "simulations", "status", 9.0),
		scoredColumn("c2", "Simulation", "simulations", "created_at", 5.0),
		scoredColumn("c3", "Program", "programs", "name", 1.0),
	}

	result := engine.Assemble(scored, 2, types.Entities{}, nil)

	require.Len(t, result.Docs, 2)
	assert.Equal(t, "c1", result.Docs[0].Document.ID)
	assert.Equal(t, "c2", result.Docs[1].Document.ID)
	assert.Len(t, result.SchemaRefs, 2, "refs come from surfaced documents only")
}

func TestAssemble_ZeroTopKKeepsAll(t *testing.T) {
	scored := []types.ScoredCandidate{
		scoredColumn("c1", "Simulation", "simulations", "status", 9.0),
		scoredColumn("c2", "Program", "programs", "name", 5.0),
	}

	result := engine.Assemble(scored, 0, types.Entities{}, nil)
	assert.Len(t, result.Docs, 2)
}

func TestAssemble_SchemaRefsDeduplicated(t *testing.T) {
	scored := []types.ScoredCandidate{
		scoredColumn("c1", "Simulation", "simulations", "status", 9.0),
		scoredColumn("c2", "Simulation", "simulations", "status", 8.0),
		scoredRecipe("r1", 7.0, types.Metadata{
			Model:  "Simulation",
			Table:  "simulations",
			Column: "success_count",
		}),
	}

	result := engine.Assemble(scored, 5, types.Entities{}, nil)

	require.Len(t, result.SchemaRefs, 2)
	assert.Equal(t, types.SchemaRef{Model: "Simulation", Table: "simulations", Column: "status"},
		result.SchemaRefs[0])
	assert.Equal(t, types.SchemaRef{Model: "Simulation", Table: "simulations", Column: "success_count"},
		result.SchemaRefs[1])
}

func TestAssemble_JoinHintsDeduplicatedAcrossRecipes(t *testing.T) {
	hint := "simulations.program_id = programs.id"
	scored := []types.ScoredCandidate{
		scoredRecipe("r1", 9.0, types.Metadata{JoinHints: []string{hint}}),
		scoredRecipe("r2", 8.0, types.Metadata{JoinHints: []string{hint, "runs.simulation_id = simulations.id"}}),
	}

	result := engine.Assemble(scored, 5, types.Entities{}, nil)

	assert.Equal(t, []string{hint, "runs.simulation_id = simulations.id"}, result.JoinHints)
	require.Len(t, result.Recipes, 2)
	assert.Equal(t, "r1", result.Recipes[0].Document.ID)
}

func TestAssemble_AmbiguityNoteRequiresRelevance(t *testing.T) {
	note := "success means exit code zero, not business success"
	recipe := scoredRecipe("r1", 9.0, types.Metadata{
		Keywords:       []string{"success"},
		SemanticsNotes: []string{note},
	})

	relevant := engine.Assemble([]types.ScoredCandidate{recipe}, 5,
		types.Entities{}, []string{"success", "count"})
	assert.Equal(t, []string{note}, relevant.Ambiguities)

	irrelevant := engine.Assemble([]types.ScoredCandidate{recipe}, 5,
		types.Entities{}, []string{"weather"})
	assert.Empty(t, irrelevant.Ambiguities)
}

func TestAssemble_AmbiguityTriggeredBySurfacedColumn(t *testing.T) {
	note := "status reflects the latest run only"
	scored := []types.ScoredCandidate{
		scoredColumn("c1", "Simulation", "simulations", "status", 9.0),
		scoredRecipe("r1", 5.0, types.Metadata{
			Keywords:       []string{"status"},
			SemanticsNotes: []string{note},
		}),
	}

	result := engine.Assemble(scored, 5, types.Entities{}, []string{"latest", "runs"})
	assert.Equal(t, []string{note}, result.Ambiguities,
		"a surfaced column's tokens can make a note relevant")
}
