package synth

import (
	"fmt"
	"strings"

	"medrag/internal/models"
	"medrag/internal/util"
)

const (
	contextSources    = 4
	contextSourceLen  = 800
	structuredSources = 5
	structuredBodyLen = 1000
)

const disclaimer = "**Medical Disclaimer:** This information is based on verified medical database sources and is for educational purposes only. Always consult healthcare professionals for personalized medical advice, diagnosis, and treatment decisions."

const structuredDisclaimer = "This information is from verified medical database sources for educational purposes. Always consult healthcare professionals for personalized medical advice, diagnosis, and treatment recommendations."

var structuredHeaders = map[models.Intent]string{
	models.IntentTreatment:  "Medical Treatment Information",
	models.IntentSymptoms:   "Medical Symptoms Information",
	models.IntentCauses:     "Medical Causes Information",
	models.IntentPrevention: "Medical Prevention Information",
	models.IntentDiagnosis:  "Medical Diagnostic Information",
	models.IntentGeneral:    "Medical Information",
}

// BuildContext renders the top results into the grounding block sent to the LLM.
func BuildContext(results []models.RankedResult) string {
	b := strings.Builder{}
	for i, r := range head(results, contextSources) {
		fmt.Fprintf(&b, "\n--- Source %d: %s (%s) ---\n", i+1, r.Title, r.Section)
		b.WriteString(util.TruncateRunes(r.Content, contextSourceLen))
		b.WriteString("\n")
	}
	return b.String()
}

// withReferences appends the source list and disclaimer to an LLM answer.
func withReferences(answer string, results []models.RankedResult) string {
	b := strings.Builder{}
	b.WriteString(answer)
	b.WriteString("\n\n**Medical Sources Referenced:**\n")
	for _, r := range head(results, contextSources) {
		fmt.Fprintf(&b, "• %s - %s (Relevance Score: %d)\n", r.Title, r.Section, r.Score)
	}
	b.WriteString("\n")
	b.WriteString(disclaimer)
	return b.String()
}

// Structured renders the deterministic fallback document. Output depends only
// on its inputs.
func Structured(query string, results []models.RankedResult, intent models.Intent) string {
	if len(results) == 0 {
		return fmt.Sprintf("No specific medical information found for '%s'.", query)
	}
	header, ok := structuredHeaders[intent]
	if !ok {
		header = structuredHeaders[models.IntentGeneral]
	}

	b := strings.Builder{}
	fmt.Fprintf(&b, "**%s: %s**", header, util.TitleCase(query))
	fmt.Fprintf(&b, "\n\n**Based on Medical Database (%d relevant sources found):**\n", len(results))

	shown := head(results, structuredSources)
	for i, r := range shown {
		fmt.Fprintf(&b, "\n**%d. %s - %s**", i+1, r.Title, util.TitleCase(r.Section))
		fmt.Fprintf(&b, "*(Relevance Score: %d)*", r.Score)
		content := r.Content
		if util.RuneLen(content) > structuredBodyLen {
			content = util.TruncateRunes(content, structuredBodyLen) + "..."
		}
		b.WriteString("\n")
		b.WriteString(content)
		if i < len(shown)-1 {
			b.WriteString("\n")
			b.WriteString(strings.Repeat("─", 60))
		}
	}

	b.WriteString("\n\n**Important Medical Information:**")
	b.WriteString(structuredDisclaimer)
	return b.String()
}

// NoResults is the guidance shown when nothing cleared the relevance threshold.
func NoResults(query string) string {
	return fmt.Sprintf(`**Medical Information Request: %s**

I searched my medical database but couldn't find specific information matching "%s".

**For Accurate Medical Information:**
• Consult healthcare professionals for personalized advice
• Visit trusted medical resources like MedlinePlus.gov
• Speak with your doctor about specific medical concerns
• Consider consulting medical specialists for specialized conditions

**Database Search:** Processed medical articles but found no relevant matches for your specific query.`, util.TitleCase(query), query)
}

// NoDatabaseContent is returned when the corpus scan yields nothing at all.
func NoDatabaseContent(query string) string {
	return fmt.Sprintf("Unable to load medical database content for '%s'. Please check database connectivity.", query)
}

// Failure is the user-facing text of the uniform error envelope.
func Failure(query string) string {
	return fmt.Sprintf("I encountered an error while searching for medical information about '%s'. Please try again or consult healthcare professionals.", query)
}

func head(results []models.RankedResult, n int) []models.RankedResult {
	if len(results) > n {
		return results[:n]
	}
	return results
}
