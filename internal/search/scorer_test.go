package search

import (
	"strings"
	"testing"

	"medrag/internal/models"
	"medrag/internal/util"

	"github.com/stretchr/testify/require"
)

func TestScoreMigraineTreatmentExample(t *testing.T) {
	item := models.CorpusItem{
		ChunkID: "c1",
		Title:   "Migraine",
		Section: "treatment",
		Content: "Common treatment options include rest and hydration.",
	}
	analysis := Analyze("migraine treatment")
	require.Equal(t, models.IntentTreatment, analysis.Intent)

	scored := Score([]models.CorpusItem{item}, analysis)
	require.Len(t, scored, 1)
	// migraine: title 200 + intent section 300; treatment: section 60 + intent section 150 + content 15;
	// intent bonus 120 because the title names a high-value condition.
	require.Equal(t, 845, scored[0].Score)
	require.Equal(t, 120, scored[0].IntentBonus)
	require.Equal(t, []string{"title:migraine", "section:treatment"}, scored[0].MatchedTerms)
	require.Greater(t, scored[0].Score, MinScore(analysis))
}

func TestHighValueConditionsWeighEveryUse(t *testing.T) {
	for _, term := range []string{"headache", "stroke"} {
		item := models.CorpusItem{Title: util.TitleCase(term), Section: "treatment"}
		analysis := models.QueryAnalysis{PrimaryTerms: []string{term}, Intent: models.IntentTreatment}

		scored := Score([]models.CorpusItem{item}, analysis)
		require.Len(t, scored, 1)
		// title 200 + intent section 300 + intent bonus 120.
		if scored[0].Score != 620 || scored[0].IntentBonus != 120 {
			t.Fatalf("%s: score %d bonus %d, want 620 and 120", term, scored[0].Score, scored[0].IntentBonus)
		}
	}
}

func TestScoreContentFrequencyCapped(t *testing.T) {
	item := models.CorpusItem{Title: "Overview", Section: "general", Content: strings.Repeat("insulin ", 9)}
	analysis := Analyze("insulin")

	scored := Score([]models.CorpusItem{item}, analysis)
	require.Len(t, scored, 1)
	require.Equal(t, 75, scored[0].Score)
	require.Equal(t, []string{"content:insulin(9x)"}, scored[0].MatchedTerms)
}

func TestScoreDropsLengthOnlyItems(t *testing.T) {
	item := models.CorpusItem{Title: "Eczema", Section: "overview", Content: strings.Repeat("skin care ", 30)}
	scored := Score([]models.CorpusItem{item}, Analyze("asthma inhaler"))
	require.Empty(t, scored)
}

func TestScoreSingleContentHitNeedsIntent(t *testing.T) {
	item := models.CorpusItem{Title: "Sleep", Section: "overview", Content: "Insomnia is common."}
	require.Empty(t, Score([]models.CorpusItem{item}, Analyze("insomnia")))

	withIntent := models.CorpusItem{Title: "Sleep", Section: "overview", Content: "Insomnia treatment varies."}
	scored := Score([]models.CorpusItem{withIntent}, Analyze("insomnia treatment"))
	require.Len(t, scored, 1)
	require.Equal(t, 30, scored[0].IntentBonus)
}

func TestScoreTitleWeights(t *testing.T) {
	analysis := models.QueryAnalysis{PrimaryTerms: []string{"asthma"}, Intent: models.IntentGeneral}
	high := Score([]models.CorpusItem{{Title: "Asthma", Section: "overview"}}, analysis)
	require.Len(t, high, 1)
	require.Equal(t, 200, high[0].Score)

	analysis.PrimaryTerms = []string{"eczema"}
	plain := Score([]models.CorpusItem{{Title: "Eczema", Section: "overview"}}, analysis)
	require.Len(t, plain, 1)
	require.Equal(t, 100, plain[0].Score)
}

func TestLengthBonus(t *testing.T) {
	cases := map[int]int{10: 0, 100: 25, 2000: 25, 2001: 15}
	for n, want := range cases {
		if got := lengthBonus(strings.Repeat("a", n)); got != want {
			t.Fatalf("length %d: got %d want %d", n, got, want)
		}
	}
}
