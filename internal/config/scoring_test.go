package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scrypster/schemaground/internal/config"
)

func TestDefaultScoring_Magnitudes(t *testing.T) {
	cfg := config.DefaultScoring()

	assert.Equal(t, 3.0, cfg.ColumnNameBoost)
	assert.Equal(t, 2.0, cfg.ModelNameBoost)
	assert.Equal(t, 1.5, cfg.TableNameBoost)
	assert.Equal(t, 6.0, cfg.ExactMatchBoost)
	assert.Equal(t, 4.0, cfg.StatusColumnBoost)
	assert.Equal(t, 4.0, cfg.CuratedRecipeBoost)
	assert.Equal(t, 2.0, cfg.RecipePatternBoost)
	assert.Equal(t, 3.0, cfg.NoOverlapPenalty)
	assert.Equal(t, 2.0, cfg.DomainMismatchPenalty)
	assert.Equal(t, 0.3, cfg.LowScoreThreshold)
	assert.Equal(t, 0.4, cfg.DomainScoreThreshold)
	assert.Contains(t, cfg.StatusVocabulary, "running")
	assert.Contains(t, cfg.DomainCategories, "simulation")
}

func TestLoadScoring_OverridesSubset(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scoring.yaml")
	require.NoError(t, os.WriteFile(path, []byte(
		"column_name_boost: 5.0\nstatus_vocabulary: [status, queued]\n"), 0o644))

	cfg, err := config.LoadScoring(path)
	require.NoError(t, err)

	assert.Equal(t, 5.0, cfg.ColumnNameBoost)
	assert.Equal(t, []string{"status", "queued"}, cfg.StatusVocabulary)
	assert.Equal(t, 2.0, cfg.ModelNameBoost, "untouched values keep their defaults")
}

func TestLoadScoring_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := config.LoadScoring(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
	assert.Equal(t, config.DefaultScoring(), cfg)
}

func TestLoadScoring_MalformedYAMLReturnsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scoring.yaml")
	require.NoError(t, os.WriteFile(path, []byte(":\n\t bad"), 0o644))

	cfg, err := config.LoadScoring(path)
	assert.Error(t, err)
	assert.Equal(t, config.DefaultScoring(), cfg)
}
