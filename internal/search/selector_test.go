package search

import (
	"testing"

	"medrag/internal/models"

	"github.com/stretchr/testify/require"
)

func scoredItem(id string, score int) models.ScoredItem {
	return models.ScoredItem{
		Item:         models.CorpusItem{ChunkID: id, Title: "Item " + id, Content: "text"},
		Score:        score,
		MatchedTerms: []string{"title:" + id},
	}
}

func TestSelectSortsStableAndTruncates(t *testing.T) {
	analysis := models.QueryAnalysis{PrimaryTerms: []string{"one", "two"}}
	in := []models.ScoredItem{
		scoredItem("a", 60), scoredItem("b", 90), scoredItem("c", 60), scoredItem("d", 49), scoredItem("e", 120),
	}
	out := Select(in, analysis, 3)
	require.Len(t, out, 3)
	ids := []string{out[0].ChunkID, out[1].ChunkID, out[2].ChunkID}
	require.Equal(t, []string{"e", "b", "a"}, ids)
	for i := 1; i < len(out); i++ {
		require.GreaterOrEqual(t, out[i-1].Score, out[i].Score)
	}
}

func TestSelectThreshold(t *testing.T) {
	in := []models.ScoredItem{scoredItem("a", 45), scoredItem("b", 30), scoredItem("c", 29)}

	multi := Select(in, models.QueryAnalysis{PrimaryTerms: []string{"x", "y"}}, CandidateTopK)
	require.Empty(t, multi)

	single := Select(in, models.QueryAnalysis{PrimaryTerms: []string{"x"}}, CandidateTopK)
	require.Len(t, single, 2)
	require.Equal(t, "a", single[0].ChunkID)
	require.Equal(t, "b", single[1].ChunkID)
}

func TestSelectDefaultsTopK(t *testing.T) {
	in := make([]models.ScoredItem, 0, 12)
	for i := 0; i < 12; i++ {
		in = append(in, scoredItem(string(rune('a'+i)), 100))
	}
	require.Len(t, Select(in, models.QueryAnalysis{}, 0), CandidateTopK)
}

func TestSelectCleansContent(t *testing.T) {
	s := scoredItem("a", 100)
	s.Item.Content = "  rest   and fluids  "
	out := Select([]models.ScoredItem{s}, models.QueryAnalysis{}, 5)
	require.Equal(t, "rest and fluids", out[0].Content)
}

func TestRelevanceType(t *testing.T) {
	item := models.CorpusItem{Title: "Migraine"}
	cases := []struct {
		analysis models.QueryAnalysis
		want     string
	}{
		{models.QueryAnalysis{PrimaryTerms: []string{"migraine"}, Intent: models.IntentTreatment}, "exact_treatment_match"},
		{models.QueryAnalysis{PrimaryTerms: []string{"migraine"}, Intent: models.IntentGeneral}, "exact_match"},
		{models.QueryAnalysis{PrimaryTerms: []string{"aura"}, Intent: models.IntentSymptoms}, "content_relevance"},
	}
	for _, c := range cases {
		require.Equal(t, c.want, RelevanceType(item, c.analysis))
	}
}
