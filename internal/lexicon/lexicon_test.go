package lexicon_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scrypster/schemaground/internal/lexicon"
)

func TestNew_BidirectionalClosure(t *testing.T) {
	lex := lexicon.New(map[string][]string{
		"program": {"initiative"},
	})

	assert.Equal(t, []string{"initiative"}, lex.Lookup("program"))
	assert.Equal(t, []string{"program"}, lex.Lookup("initiative"),
		"reverse direction must be derivable from the forward entry")
}

func TestNew_NormalizesCase(t *testing.T) {
	lex := lexicon.New(map[string][]string{
		"Program": {"Initiative"},
	})

	assert.Equal(t, []string{"initiative"}, lex.Lookup("PROGRAM"))
}

func TestNew_DropsOverlongPhrases(t *testing.T) {
	lex := lexicon.New(map[string][]string{
		"one two three four five": {"short"},
		"ok phrase":               {"fine"},
	})

	assert.Nil(t, lex.Lookup("one two three four five"))
	assert.Equal(t, []string{"fine"}, lex.Lookup("ok phrase"))
}

func TestExpand_AppendsSynonyms(t *testing.T) {
	lex := lexicon.New(map[string][]string{
		"simulations": {"sims"},
	})

	expanded := lex.Expand("How Many simulations")
	assert.Equal(t, "how many simulations sims", expanded)
}

func TestExpand_LongestPhraseFirst(t *testing.T) {
	lex := lexicon.New(map[string][]string{
		"success count": {"succeeded"},
		"count":         {"total"},
	})

	expanded := lex.Expand("show success count")
	assert.Equal(t, "show success count succeeded", expanded,
		"the two-word phrase must win over its single-word suffix")
}

func TestExpand_Idempotent(t *testing.T) {
	lex := lexicon.New(map[string][]string{
		"how many":    {"count", "total"},
		"simulations": {"sims"},
	})

	once := lex.Expand("how many simulations")
	twice := lex.Expand(once)
	assert.Equal(t, once, twice)
}

func TestExpand_NilLexiconIsIdentity(t *testing.T) {
	var lex *lexicon.Lexicon
	assert.Equal(t, "How many runs?", lex.Expand("How many runs?"))
}

func TestExpand_EmptyQuestion(t *testing.T) {
	lex := lexicon.New(map[string][]string{"a b": {"c"}})
	assert.Equal(t, "", lex.Expand(""))
}

func TestLoad_MissingFile(t *testing.T) {
	lex, err := lexicon.Load(filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
	assert.Nil(t, lex)
}

func TestLoad_MalformedJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lexicon.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	lex, err := lexicon.Load(path)
	assert.Error(t, err)
	assert.Nil(t, lex)
}

func TestLoad_Roundtrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lexicon.json")
	require.NoError(t, os.WriteFile(path,
		[]byte(`{"how many": ["count"], "runs": ["executions"]}`), 0o644))

	lex, err := lexicon.Load(path)
	require.NoError(t, err)
	assert.Equal(t, 4, lex.Len(), "forward and reverse entries")
	assert.Equal(t, []string{"count"}, lex.Lookup("how many"))
	assert.Equal(t, []string{"runs"}, lex.Lookup("executions"))
}
