package search

import (
	"strings"

	"medrag/internal/models"
)

type intentPatterns struct {
	intent   models.Intent
	triggers []string
}

// Declaration order decides ties between intents with equal trigger counts.
var intentTable = []intentPatterns{
	{models.IntentTreatment, []string{"treatment", "treat", "therapy", "medicine", "medication", "manage", "cure", "help", "remedy", "options", "drugs"}},
	{models.IntentSymptoms, []string{"symptom", "symptoms", "signs", "what are", "how does", "feel like", "experience", "manifestation"}},
	{models.IntentCauses, []string{"cause", "causes", "why", "reason", "from", "due to", "triggers", "etiology"}},
	{models.IntentPrevention, []string{"prevent", "prevention", "avoid", "reduce risk", "stop", "protect", "lifestyle"}},
	{models.IntentDiagnosis, []string{"diagnose", "diagnosis", "test", "detect", "identify", "check", "screen", "examination"}},
}

var stopWords = map[string]struct{}{
	"what": {}, "how": {}, "why": {}, "when": {}, "where": {}, "who": {}, "which": {}, "that": {},
	"this": {}, "these": {}, "those": {}, "and": {}, "or": {}, "but": {}, "with": {}, "for": {},
	"from": {}, "about": {}, "into": {}, "through": {}, "during": {}, "are": {}, "is": {},
	"was": {}, "were": {}, "be": {}, "been": {}, "being": {}, "have": {}, "has": {}, "had": {},
	"the": {}, "a": {}, "an": {}, "some": {}, "any": {}, "all": {}, "most": {}, "many": {}, "few": {},
}

// Analyze extracts search terms and the dominant intent from a query that the
// caller has already trimmed and lower-cased.
func Analyze(query string) models.QueryAnalysis {
	intent, confidence := detectIntent(query)
	primary, secondary := extractTerms(query)
	return models.QueryAnalysis{
		PrimaryTerms:     primary,
		SecondaryTerms:   secondary,
		Intent:           intent,
		IntentConfidence: confidence,
		OriginalQuery:    query,
	}
}

func detectIntent(query string) (models.Intent, int) {
	best := models.IntentGeneral
	bestCount := 0
	for _, p := range intentTable {
		n := 0
		for _, trigger := range p.triggers {
			if strings.Contains(query, trigger) {
				n++
			}
		}
		if n > bestCount {
			best = p.intent
			bestCount = n
		}
	}
	return best, bestCount
}

func extractTerms(query string) (primary, secondary []string) {
	primary = make([]string, 0, 4)
	secondary = make([]string, 0, 2)
	for _, word := range strings.Fields(query) {
		n := len([]rune(word))
		if n <= 2 {
			continue
		}
		if _, stop := stopWords[word]; stop {
			continue
		}
		if n >= 4 {
			primary = append(primary, word)
		} else {
			secondary = append(secondary, word)
		}
	}
	return primary, secondary
}
