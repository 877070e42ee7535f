package models

import "time"

// CorpusItem is one retrievable passage as projected from the corpus store.
type CorpusItem struct {
	ChunkID   string `json:"chunk_id"`
	Title     string `json:"title"`
	Section   string `json:"section"`
	Content   string `json:"content"`
	SourceURL string `json:"url"`
}

type Intent string

const (
	IntentTreatment  Intent = "treatment"
	IntentSymptoms   Intent = "symptoms"
	IntentCauses     Intent = "causes"
	IntentPrevention Intent = "prevention"
	IntentDiagnosis  Intent = "diagnosis"
	IntentGeneral    Intent = "general"
)

type QueryAnalysis struct {
	PrimaryTerms     []string `json:"primary_terms"`
	SecondaryTerms   []string `json:"secondary_terms"`
	Intent           Intent   `json:"intent"`
	IntentConfidence int      `json:"intent_confidence"`
	OriginalQuery    string   `json:"original_query"`
}

type ScoredItem struct {
	Item         CorpusItem
	Score        int
	MatchedTerms []string
	IntentBonus  int
}

// RankedResult is the public projection of a ScoredItem.
type RankedResult struct {
	Score         int      `json:"score"`
	Title         string   `json:"title"`
	Section       string   `json:"section"`
	Content       string   `json:"content"`
	URL           string   `json:"url"`
	ChunkID       string   `json:"chunk_id"`
	MatchedTerms  []string `json:"matched_terms"`
	RelevanceType string   `json:"relevance_type"`
}

const (
	StrategyLLM        = "groq_natural_language"
	StrategyStructured = "structured_medical_fallback"
	StrategyNoContent  = "no_relevant_medical_content"
	StrategyNoDatabase = "no_database_content"
	StrategyError      = "error"

	ResponseContentFound = "medical_content_found"
	ResponseGuidance     = "helpful_guidance"
	ResponseSystemError  = "system_error"
	ResponseError        = "error"

	EnhancementLLM        = "groq_comprehensive"
	EnhancementStructured = "rag_structured"
	EnhancementNone       = "none"

	MethodEnhancedRAG = "enhanced_groq_rag"
)

type DebugInfo struct {
	TotalItemsProcessed  int      `json:"total_items_processed"`
	RelevantResultsFound int      `json:"relevant_results_found"`
	SearchTime           float64  `json:"search_time"`
	PrimaryTerms         []string `json:"primary_terms,omitempty"`
	Intent               string   `json:"intent,omitempty"`
	LLMAttempted         bool     `json:"llm_attempted"`
	LLMAvailable         bool     `json:"llm_available"`
	LLMProvider          string   `json:"llm_provider,omitempty"`
	LLMOutcome           string   `json:"llm_outcome,omitempty"`
	DatabaseLoadFailed   bool     `json:"database_load_failed,omitempty"`
	Error                string   `json:"error,omitempty"`
	CacheStatus          string   `json:"cache_status,omitempty"`
}

// AnswerEnvelope is the unit returned to callers and persisted in the cache.
type AnswerEnvelope struct {
	Query             string         `json:"query"`
	GeneratedResponse string         `json:"generated_response"`
	Sources           []RankedResult `json:"sources"`
	TotalResults      int            `json:"total_results"`
	Method            string         `json:"method"`
	Strategy          string         `json:"search_strategy"`
	ResponseType      string         `json:"response_type"`
	LLMEnhancement    string         `json:"llm_enhancement"`
	DebugInfo         DebugInfo      `json:"debug_info"`
	Cached            bool           `json:"cached"`
	Timestamp         int64          `json:"timestamp"`
}

// CacheEntry is written once per fresh answer and never mutated; a later write
// for the same hash replaces it.
type CacheEntry struct {
	QueryHash string         `json:"query_hash"`
	Query     string         `json:"query"`
	Response  AnswerEnvelope `json:"response"`
	Timestamp int64          `json:"timestamp"`
	ExpiresAt int64          `json:"ttl"`
}

func (e CacheEntry) Expired(now time.Time) bool {
	return e.ExpiresAt <= now.Unix()
}

// Document tracks a source file fed through ingestion.
type Document struct {
	DocID      string    `json:"doc_id"`
	Filename   string    `json:"filename"`
	Title      string    `json:"title,omitempty"`
	SourceURL  string    `json:"url,omitempty"`
	Status     string    `json:"status"`
	ChunkCount int       `json:"chunk_count"`
	FailReason string    `json:"fail_reason,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// LLMCall is one audited completion attempt.
type LLMCall struct {
	CallID       string `json:"call_id"`
	Operation    string `json:"operation"`
	RequestID    string `json:"request_id,omitempty"`
	QueryHash    string `json:"query_hash,omitempty"`
	ProviderName string `json:"provider_name"`
	Model        string `json:"model"`
	Status       string `json:"status"`
	StatusCode   int    `json:"status_code,omitempty"`
	ErrorType    string `json:"error_type,omitempty"`
	LatencyMS    int64  `json:"latency_ms"`
}
