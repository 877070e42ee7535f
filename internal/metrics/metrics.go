package metrics

import (
	"context"
	"log/slog"
	"time"

	"medrag/internal/models"
	"medrag/internal/util"
)

const (
	DefaultNamespace = "MedicalRAG/System"
	MaxBatch         = 20

	UnitSeconds = "Seconds"
	UnitCount   = "Count"
	UnitNone    = "None"
)

type Dimension struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type Datum struct {
	Name       string      `json:"metric_name"`
	Value      float64     `json:"value"`
	Unit       string      `json:"unit"`
	Timestamp  time.Time   `json:"timestamp"`
	Dimensions []Dimension `json:"dimensions,omitempty"`
}

// Sink receives at most MaxBatch data points per call.
type Sink interface {
	PutMetricData(ctx context.Context, namespace string, data []Datum) error
}

// Build derives the per-request data points from a freshly computed envelope.
func Build(env models.AnswerEnvelope, at time.Time) []Datum {
	out := []Datum{
		{Name: "SearchLatency", Value: env.DebugInfo.SearchTime, Unit: UnitSeconds, Timestamp: at},
		{Name: "ResultsFound", Value: float64(len(env.Sources)), Unit: UnitCount, Timestamp: at},
	}
	if len(env.Sources) > 0 {
		total := 0
		for _, s := range env.Sources {
			total += s.Score
		}
		out = append(out, Datum{Name: "AverageRelevanceScore", Value: float64(total) / float64(len(env.Sources)), Unit: UnitNone, Timestamp: at})
	}
	if env.DebugInfo.Intent != "" {
		out = append(out, Datum{
			Name: "QueryByIntent", Value: 1, Unit: UnitCount, Timestamp: at,
			Dimensions: []Dimension{{Name: "Intent", Value: util.TitleCase(env.DebugInfo.Intent)}},
		})
	}
	if env.ResponseType == models.ResponseContentFound {
		out = append(out, Datum{Name: "SuccessfulQueries", Value: 1, Unit: UnitCount, Timestamp: at})
	}
	if env.LLMEnhancement != "" {
		out = append(out, Datum{
			Name: "LLMEnhancement", Value: 1, Unit: UnitCount, Timestamp: at,
			Dimensions: []Dimension{{Name: "EnhancementType", Value: env.LLMEnhancement}},
		})
	}
	if env.DebugInfo.Intent != "" {
		out = append(out, Datum{Name: "ItemsProcessed", Value: float64(env.DebugInfo.TotalItemsProcessed), Unit: UnitCount, Timestamp: at})
	}
	return out
}

type Emitter struct {
	sink      Sink
	namespace string
}

// NewEmitter accepts a nil sink, which discards everything.
func NewEmitter(sink Sink, namespace string) *Emitter {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	return &Emitter{sink: sink, namespace: namespace}
}

// Emit sends data in batches of MaxBatch. Failures are logged and never
// returned; a failed batch does not stop later ones.
func (e *Emitter) Emit(ctx context.Context, data []Datum) int {
	if e == nil || e.sink == nil || len(data) == 0 {
		return 0
	}
	sent := 0
	for start := 0; start < len(data); start += MaxBatch {
		end := min(start+MaxBatch, len(data))
		batch := data[start:end]
		if err := e.sink.PutMetricData(ctx, e.namespace, batch); err != nil {
			slog.WarnContext(ctx, "failed to send metrics", "namespace", e.namespace, "count", len(batch), "error", err)
			continue
		}
		sent += len(batch)
	}
	return sent
}

// LogSink writes each batch as one structured log line.
type LogSink struct {
	Logger *slog.Logger
}

func (s LogSink) PutMetricData(ctx context.Context, namespace string, data []Datum) error {
	logger := s.Logger
	if logger == nil {
		logger = slog.Default()
	}
	attrs := make([]any, 0, len(data)+2)
	attrs = append(attrs, "namespace", namespace, "count", len(data))
	for _, d := range data {
		attrs = append(attrs, d.Name, d.Value)
	}
	logger.InfoContext(ctx, "metrics", attrs...)
	return nil
}
