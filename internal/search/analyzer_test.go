package search

import (
	"testing"

	"medrag/internal/models"

	"github.com/stretchr/testify/require"
)

func TestAnalyzeIntent(t *testing.T) {
	cases := map[string]models.Intent{
		"what causes migraines":           models.IntentCauses,
		"how to treat migraines":          models.IntentTreatment,
		"signs of a stroke":               models.IntentSymptoms,
		"how to prevent diabetes":         models.IntentPrevention,
		"blood test to diagnose diabetes": models.IntentDiagnosis,
		"migraine":                        models.IntentGeneral,
		"":                                models.IntentGeneral,
	}
	for q, want := range cases {
		if got := Analyze(q).Intent; got != want {
			t.Fatalf("intent for %q: got %s want %s", q, got, want)
		}
	}
}

func TestAnalyzeIntentTieGoesToFirstDeclared(t *testing.T) {
	// "treat" hits treatment once; "why" hits causes once.
	a := Analyze("why treat")
	require.Equal(t, models.IntentTreatment, a.Intent)
	require.Equal(t, 1, a.IntentConfidence)
}

func TestAnalyzeTerms(t *testing.T) {
	a := Analyze("what are the best flu shot options for kids")
	require.Equal(t, []string{"best", "shot", "options", "kids"}, a.PrimaryTerms)
	require.Equal(t, []string{"flu"}, a.SecondaryTerms)
	require.Equal(t, "what are the best flu shot options for kids", a.OriginalQuery)
}

func TestAnalyzeDegenerateQuery(t *testing.T) {
	a := Analyze("is it an ok")
	require.Empty(t, a.PrimaryTerms)
	require.Empty(t, a.SecondaryTerms)
	require.Equal(t, models.IntentGeneral, a.Intent)
	require.Zero(t, a.IntentConfidence)
}
