package cli

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"medrag/internal/ingest"
	"medrag/internal/models"

	"github.com/fatih/color"
	"github.com/stretchr/testify/require"
)

func init() {
	color.NoColor = true
}

func TestRootRegistersCommands(t *testing.T) {
	want := map[string]bool{"ask": false, "ingest": false, "cache": false, "migrate": false}
	for _, c := range rootCmd.Commands() {
		if _, ok := want[c.Name()]; ok {
			want[c.Name()] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Fatalf("command %q not registered", name)
		}
	}

	sub := map[string]bool{}
	for _, c := range cacheCmd.Commands() {
		sub[c.Name()] = true
	}
	require.True(t, sub["show"])
	require.True(t, sub["purge"])
	require.NotNil(t, cachePurgeCmd.Flags().Lookup("expired"))
}

func TestAskRequiresQuestion(t *testing.T) {
	require.Error(t, askCmd.Args(askCmd, nil))
	require.NoError(t, askCmd.Args(askCmd, []string{"migraine", "treatment"}))
	require.Error(t, ingestCmd.Args(ingestCmd, []string{"a", "b"}))
}

func TestRenderAnswer(t *testing.T) {
	var buf bytes.Buffer
	renderAnswer(&buf, models.AnswerEnvelope{
		Query:             "Migraine treatment",
		GeneratedResponse: "Rest in a dark room.",
		Strategy:          models.StrategyStructured,
		LLMEnhancement:    models.EnhancementStructured,
		Sources: []models.RankedResult{
			{Score: 412, Title: "Migraine", Section: "Treatment", URL: "https://medlineplus.gov/migraine.html"},
		},
		DebugInfo: models.DebugInfo{TotalItemsProcessed: 120, RelevantResultsFound: 1, SearchTime: 0.42, CacheStatus: "success"},
	})
	out := buf.String()
	for _, part := range []string{
		"Question: Migraine treatment",
		"strategy structured_medical_fallback",
		"Rest in a dark room.",
		"[1] Migraine - Treatment (412)",
		"https://medlineplus.gov/migraine.html",
		"120 items scanned, 1 relevant, 0.42s, cache success",
	} {
		if !strings.Contains(out, part) {
			t.Fatalf("output missing %q:\n%s", part, out)
		}
	}
}

func TestRenderCacheEntry(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	var buf bytes.Buffer
	renderCacheEntry(&buf, models.CacheEntry{
		QueryHash: "abc",
		Query:     "asthma",
		Timestamp: now.Unix() - 600,
		ExpiresAt: now.Unix() + 1200,
		Response:  models.AnswerEnvelope{Strategy: models.StrategyLLM},
	}, now)
	require.Contains(t, buf.String(), "expires in 20m0s")
	require.Contains(t, buf.String(), "strategy   groq_natural_language")
}

func TestRenderSummary(t *testing.T) {
	var buf bytes.Buffer
	renderSummary(&buf, ingest.Summary{
		RunID:       "r1",
		InputDir:    "/in",
		Total:       2,
		Processed:   1,
		Failed:      1,
		Chunks:      7,
		PerDocument: map[string]string{"b.pdf": "failed", "a.md": "processed"},
	})
	out := buf.String()
	require.Less(t, strings.Index(out, "a.md"), strings.Index(out, "b.pdf"))
	require.Contains(t, out, "2 files, 1 processed, 1 failed, 7 chunks")
}
