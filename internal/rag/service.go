package rag

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"medrag/internal/cache"
	"medrag/internal/logging"
	"medrag/internal/metrics"
	"medrag/internal/models"
	"medrag/internal/search"
	"medrag/internal/synth"
	"medrag/internal/util"
)

const (
	DefaultPageSize = 1000
	DefaultMaxItems = 6000
	DefaultTopK     = 5
)

// CorpusReader pages through the corpus store. An empty next token ends the scan.
type CorpusReader interface {
	ScanPage(ctx context.Context, token string, limit int) (items []models.CorpusItem, next string, err error)
}

type AnswerCache interface {
	Lookup(ctx context.Context, hash string) (models.AnswerEnvelope, bool)
	Store(ctx context.Context, hash, query string, env models.AnswerEnvelope) bool
}

type Synthesizer interface {
	Synthesize(ctx context.Context, query string, results []models.RankedResult, analysis models.QueryAnalysis) synth.Answer
}

type MetricsEmitter interface {
	Emit(ctx context.Context, data []metrics.Datum) int
}

type Options struct {
	PageSize int
	MaxItems int
	TopK     int
}

// Service runs one query end to end: cache, scan, score, select, synthesize,
// store. Requests share no mutable state beyond the external stores.
type Service struct {
	corpus  CorpusReader
	answers AnswerCache
	synth   Synthesizer
	emitter MetricsEmitter
	opts    Options
	now     func() time.Time
}

func NewService(corpus CorpusReader, answers AnswerCache, synth Synthesizer, emitter MetricsEmitter, opts Options) *Service {
	if opts.PageSize <= 0 {
		opts.PageSize = DefaultPageSize
	}
	if opts.MaxItems <= 0 {
		opts.MaxItems = DefaultMaxItems
	}
	if opts.TopK <= 0 {
		opts.TopK = DefaultTopK
	}
	return &Service{
		corpus:  corpus,
		answers: answers,
		synth:   synth,
		emitter: emitter,
		opts:    opts,
		now:     time.Now,
	}
}

// Answer returns the envelope for query, served from cache when possible.
// Pipeline failures come back as an error envelope; only a blank query or a
// failure outside the pipeline is returned as an error.
func (s *Service) Answer(ctx context.Context, query string) (env models.AnswerEnvelope, err error) {
	q := strings.TrimSpace(query)
	if q == "" {
		return models.AnswerEnvelope{}, util.ErrEmptyQuery
	}
	hash := cache.QueryHash(q)
	ctx = logging.WithLogFields(ctx, logging.LogFields{QueryHash: hash, Component: "rag.orchestrator"})

	sc := logging.StartSpan(ctx, "rag.answer")
	defer sc.End()
	ctx = sc.Context()

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("answer query: %v", r)
			sc.RecordError(err)
			slog.ErrorContext(ctx, "answer panicked", "panic", r)
		}
	}()

	if s.answers != nil {
		if cached, ok := s.answers.Lookup(ctx, hash); ok {
			slog.InfoContext(ctx, "returning cached answer")
			sc.SetAttributes(attribute.Bool("medrag.cached", true))
			cached.Cached = true
			return cached, nil
		}
	}

	env = s.Search(ctx, q, s.opts.TopK)
	sc.SetAttributes(
		attribute.Bool("medrag.cached", false),
		attribute.String("medrag.strategy", env.Strategy),
		attribute.Int("medrag.results", env.TotalResults),
	)

	if s.emitter != nil {
		s.emitter.Emit(ctx, metrics.Build(env, s.now()))
	}

	switch {
	case !cacheable(env):
		env.DebugInfo.CacheStatus = "skipped"
	case s.answers != nil && s.answers.Store(ctx, hash, q, env):
		env.DebugInfo.CacheStatus = "success"
	default:
		env.DebugInfo.CacheStatus = "failed"
	}
	return env, nil
}

// Search runs the uncached pipeline. It never fails: load errors and panics
// become the error envelope.
func (s *Service) Search(ctx context.Context, query string, topK int) (env models.AnswerEnvelope) {
	start := s.now()
	defer func() {
		if r := recover(); r != nil {
			slog.ErrorContext(ctx, "search pipeline panicked", "panic", r)
			env = s.errorEnvelope(query, fmt.Sprint(r))
		}
	}()

	items, err := s.LoadCorpus(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "corpus load failed", "error", err)
		return s.errorEnvelope(query, err.Error())
	}
	if len(items) == 0 {
		return s.noDatabaseEnvelope(query)
	}

	analysis := search.Analyze(strings.ToLower(query))
	scored := search.Score(items, analysis)
	results := search.Select(scored, analysis, topK)
	slog.DebugContext(ctx, "search ranked",
		"items", len(items),
		"scored", len(scored),
		"selected", len(results),
		"intent", analysis.Intent,
		"primary_terms", analysis.PrimaryTerms)

	ans := s.synth.Synthesize(ctx, query, results, analysis)

	return models.AnswerEnvelope{
		Query:             query,
		GeneratedResponse: ans.Text,
		Sources:           results,
		TotalResults:      len(results),
		Method:            models.MethodEnhancedRAG,
		Strategy:          ans.Strategy,
		ResponseType:      ans.ResponseType,
		LLMEnhancement:    ans.LLMEnhancement,
		DebugInfo: models.DebugInfo{
			TotalItemsProcessed:  len(items),
			RelevantResultsFound: len(results),
			SearchTime:           round2(s.now().Sub(start).Seconds()),
			PrimaryTerms:         analysis.PrimaryTerms,
			Intent:               string(analysis.Intent),
			LLMAttempted:         ans.LLMAttempted,
			LLMAvailable:         ans.LLMAvailable,
			LLMProvider:          ans.LLMProvider,
			LLMOutcome:           ans.LLMOutcome,
		},
		Timestamp: s.now().Unix(),
	}
}

// LoadCorpus scans the store page by page, stopping at MaxItems.
func (s *Service) LoadCorpus(ctx context.Context) ([]models.CorpusItem, error) {
	out := make([]models.CorpusItem, 0, s.opts.PageSize)
	token := ""
	for {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("load corpus: %w", err)
		}
		page, next, err := s.corpus.ScanPage(ctx, token, s.opts.PageSize)
		if err != nil {
			return nil, fmt.Errorf("load corpus: %w", err)
		}
		out = append(out, page...)
		if len(out) >= s.opts.MaxItems {
			return out[:s.opts.MaxItems], nil
		}
		if next == "" {
			return out, nil
		}
		token = next
	}
}

func (s *Service) errorEnvelope(query, msg string) models.AnswerEnvelope {
	return models.AnswerEnvelope{
		Query:             query,
		GeneratedResponse: synth.Failure(query),
		Sources:           []models.RankedResult{},
		Method:            models.MethodEnhancedRAG,
		Strategy:          models.StrategyError,
		ResponseType:      models.ResponseError,
		LLMEnhancement:    models.EnhancementNone,
		DebugInfo:         models.DebugInfo{Error: msg},
		Timestamp:         s.now().Unix(),
	}
}

func (s *Service) noDatabaseEnvelope(query string) models.AnswerEnvelope {
	return models.AnswerEnvelope{
		Query:             query,
		GeneratedResponse: synth.NoDatabaseContent(query),
		Sources:           []models.RankedResult{},
		Method:            models.MethodEnhancedRAG,
		Strategy:          models.StrategyNoDatabase,
		ResponseType:      models.ResponseSystemError,
		LLMEnhancement:    models.EnhancementNone,
		DebugInfo:         models.DebugInfo{DatabaseLoadFailed: true},
		Timestamp:         s.now().Unix(),
	}
}

// Error and empty-store envelopes describe the system, not the query, so they
// are not cached.
func cacheable(env models.AnswerEnvelope) bool {
	return env.Strategy != models.StrategyError && env.Strategy != models.StrategyNoDatabase
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
