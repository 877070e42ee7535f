package synth

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"medrag/internal/logging"
	"medrag/internal/models"
	"medrag/internal/providers"
	"medrag/internal/util"
)

// MinAnswerLen is the shortest LLM answer, in characters, accepted as a success.
const MinAnswerLen = 300

const systemPrompt = `You are a knowledgeable medical information assistant. Create a CONCISE, focused response (2-3 paragraphs maximum) about medical topics using the provided sources.

INSTRUCTIONS:
1. Write a brief, clear explanation of the medical topic
2. Include the most important information from the sources
3. Keep it under 3 paragraphs
4. Focus on key facts rather than comprehensive details

IMPORTANT: Base everything on the provided medical sources but present it as a natural, flowing explanation.`

// Auditor receives one record per completion attempt.
type Auditor interface {
	Insert(ctx context.Context, rec models.LLMCall) error
}

// Answer is what the synthesizer hands back to the orchestrator.
type Answer struct {
	Text           string
	Strategy       string
	ResponseType   string
	LLMEnhancement string
	LLMAttempted   bool
	LLMAvailable   bool
	LLMProvider    string
	LLMOutcome     string
}

type Synthesizer struct {
	llm     providers.LLMProvider
	auditor Auditor
}

type Option func(*Synthesizer)

func WithAuditor(a Auditor) Option {
	return func(s *Synthesizer) { s.auditor = a }
}

// New accepts a nil provider; synthesis then always takes the structured path.
func New(llm providers.LLMProvider, opts ...Option) *Synthesizer {
	s := &Synthesizer{llm: llm}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Synthesizer) available() bool {
	if s.llm == nil {
		return false
	}
	if c, ok := s.llm.(providers.Configured); ok {
		return c.Configured()
	}
	return true
}

// Synthesize picks exactly one of: guidance (no results), LLM answer, or the
// structured fallback. The returned text is already cleaned for display.
func (s *Synthesizer) Synthesize(ctx context.Context, query string, results []models.RankedResult, analysis models.QueryAnalysis) Answer {
	if len(results) == 0 {
		return Answer{
			Text:           util.CleanResponseForFrontend(NoResults(query)),
			Strategy:       models.StrategyNoContent,
			ResponseType:   models.ResponseGuidance,
			LLMEnhancement: models.EnhancementNone,
			LLMAvailable:   s.available(),
		}
	}

	ans := Answer{
		ResponseType: models.ResponseContentFound,
		LLMAvailable: s.available(),
	}

	out := SoftFailure("not_configured")
	if ans.LLMAvailable {
		ans.LLMAttempted = true
		out = s.Enhance(ctx, query, results)
		ans.LLMProvider = out.Provider.Name
	}
	ans.LLMOutcome = out.Label()

	if out.OK {
		ans.Text = util.CleanResponseForFrontend(withReferences(out.Text, results))
		ans.Strategy = models.StrategyLLM
		ans.LLMEnhancement = models.EnhancementLLM
		return ans
	}

	slog.InfoContext(ctx, "llm enhancement unavailable, using structured answer", "reason", out.Reason)
	ans.Text = util.CleanResponseForFrontend(Structured(query, results, analysis.Intent))
	ans.Strategy = models.StrategyStructured
	ans.LLMEnhancement = models.EnhancementStructured
	return ans
}

// Enhance issues a single completion over the top results. Every failure mode
// is reported as a SoftFailure.
func (s *Synthesizer) Enhance(ctx context.Context, query string, results []models.RankedResult) Outcome {
	if !s.available() {
		return SoftFailure("not_configured")
	}
	req := providers.GenerateRequest{
		Operation:   "medical_answer",
		System:      systemPrompt,
		Prompt:      userPrompt(query, BuildContext(results)),
		Temperature: 0.2,
		MaxTokens:   800,
		TopP:        0.8,
	}

	start := time.Now()
	resp, info, err := s.llm.Generate(ctx, req)
	latency := time.Since(start)

	var out Outcome
	switch {
	case err != nil:
		class := providers.ClassifyError(err)
		slog.WarnContext(ctx, "llm completion failed", "provider", info.Name, "error_type", class, "error", err)
		out = SoftFailure(fmt.Sprintf("error_%s", class))
		out.ErrorClass = class
	case util.RuneLen(strings.TrimSpace(resp.Text)) <= MinAnswerLen:
		slog.InfoContext(ctx, "llm answer too short", "provider", info.Name, "chars", util.RuneLen(strings.TrimSpace(resp.Text)))
		out = SoftFailure("too_short")
	default:
		out = Success(strings.TrimSpace(resp.Text), info)
	}
	out.Provider = info
	out.StatusCode = resp.StatusCode
	s.audit(ctx, req.Operation, out, latency)
	return out
}

func (s *Synthesizer) audit(ctx context.Context, op string, out Outcome, latency time.Duration) {
	if s.auditor == nil {
		return
	}
	fields := logging.GetLogFields(ctx)
	rec := models.LLMCall{
		CallID:       uuid.NewString(),
		Operation:    op,
		RequestID:    fields.RequestID,
		QueryHash:    fields.QueryHash,
		ProviderName: out.Provider.Name,
		Model:        out.Provider.Model,
		Status:       out.Label(),
		StatusCode:   out.StatusCode,
		ErrorType:    string(out.ErrorClass),
		LatencyMS:    latency.Milliseconds(),
	}
	if err := s.auditor.Insert(ctx, rec); err != nil {
		slog.WarnContext(ctx, "llm audit insert failed", "error", err)
	}
}

func userPrompt(query, medicalContext string) string {
	return fmt.Sprintf(`Medical Query: "%s"

Available Medical Information:
%s

Please provide a comprehensive, natural response about "%s" using the medical information above. Make it conversational and well-organized, explaining the medical concepts clearly while including specific details from the sources. Focus on being helpful and educational.`, query, medicalContext, query)
}
