package metrics

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"medrag/internal/models"
)

type recordingSink struct {
	batches [][]Datum
	fail    map[int]bool
	calls   int
}

func (s *recordingSink) PutMetricData(ctx context.Context, namespace string, data []Datum) error {
	s.calls++
	if s.fail[s.calls] {
		return errors.New("throttled")
	}
	s.batches = append(s.batches, data)
	return nil
}

func names(data []Datum) []string {
	out := make([]string, 0, len(data))
	for _, d := range data {
		out = append(out, d.Name)
	}
	return out
}

func TestBuildContentFound(t *testing.T) {
	env := models.AnswerEnvelope{
		Sources:        []models.RankedResult{{Score: 845}, {Score: 155}},
		ResponseType:   models.ResponseContentFound,
		LLMEnhancement: models.EnhancementLLM,
		DebugInfo:      models.DebugInfo{SearchTime: 0.42, Intent: "treatment", TotalItemsProcessed: 5000},
	}
	at := time.Unix(1700000000, 0)
	data := Build(env, at)

	require.Equal(t, []string{"SearchLatency", "ResultsFound", "AverageRelevanceScore", "QueryByIntent", "SuccessfulQueries", "LLMEnhancement", "ItemsProcessed"}, names(data))
	require.InDelta(t, 0.42, data[0].Value, 1e-9)
	require.Equal(t, UnitSeconds, data[0].Unit)
	require.InDelta(t, 500, data[2].Value, 1e-9)
	require.Equal(t, UnitNone, data[2].Unit)
	require.Equal(t, []Dimension{{Name: "Intent", Value: "Treatment"}}, data[3].Dimensions)
	require.Equal(t, []Dimension{{Name: "EnhancementType", Value: "groq_comprehensive"}}, data[5].Dimensions)
	require.InDelta(t, 5000, data[6].Value, 1e-9)
	for _, d := range data {
		require.Equal(t, at, d.Timestamp)
	}
}

func TestBuildNoResults(t *testing.T) {
	env := models.AnswerEnvelope{
		ResponseType:   models.ResponseGuidance,
		LLMEnhancement: models.EnhancementNone,
		DebugInfo:      models.DebugInfo{Intent: "general", TotalItemsProcessed: 12},
	}
	require.Equal(t, []string{"SearchLatency", "ResultsFound", "QueryByIntent", "LLMEnhancement", "ItemsProcessed"}, names(Build(env, time.Now())))

	bare := models.AnswerEnvelope{ResponseType: models.ResponseError}
	require.Equal(t, []string{"SearchLatency", "ResultsFound"}, names(Build(bare, time.Now())))
}

func TestEmitBatchesOfTwenty(t *testing.T) {
	sink := &recordingSink{}
	data := make([]Datum, 45)
	sent := NewEmitter(sink, "").Emit(context.Background(), data)

	require.Equal(t, 45, sent)
	require.Len(t, sink.batches, 3)
	require.Len(t, sink.batches[0], 20)
	require.Len(t, sink.batches[1], 20)
	require.Len(t, sink.batches[2], 5)
}

func TestEmitSwallowsFailures(t *testing.T) {
	sink := &recordingSink{fail: map[int]bool{1: true}}
	sent := NewEmitter(sink, "ns").Emit(context.Background(), make([]Datum, 25))
	require.Equal(t, 5, sent)
	require.Equal(t, 2, sink.calls)

	var nilEmitter *Emitter
	require.Equal(t, 0, nilEmitter.Emit(context.Background(), make([]Datum, 3)))
	require.Equal(t, 0, NewEmitter(nil, "").Emit(context.Background(), make([]Datum, 3)))
}

func TestLogSink(t *testing.T) {
	var buf bytes.Buffer
	sink := LogSink{Logger: slog.New(slog.NewTextHandler(&buf, nil))}
	require.NoError(t, sink.PutMetricData(context.Background(), DefaultNamespace, []Datum{{Name: "ResultsFound", Value: 3}}))
	require.Contains(t, buf.String(), "namespace=MedicalRAG/System")
	require.Contains(t, buf.String(), "ResultsFound=3")
}
