package search

import (
	"fmt"
	"strings"

	"medrag/internal/models"
	"medrag/internal/util"
)

const (
	titleHighValueScore   = 200
	titleScore            = 100
	sectionScore          = 60
	intentSectionHighBase = 300
	intentSectionBase     = 150
	contentPerHit         = 15
	contentMax            = 75

	intentSectionConditionBonus = 120
	intentSectionBonus          = 80
	intentContentBonus          = 30

	lengthSweetSpotBonus = 25
	lengthLongBonus      = 15
	lengthSweetSpotMin   = 100
	lengthSweetSpotMax   = 2000
)

// High-search-volume conditions that get extra weight when named in a title.
var highValueConditions = map[string]struct{}{
	"migraine": {}, "headache": {}, "diabetes": {}, "cancer": {}, "heart": {}, "asthma": {}, "stroke": {},
}

var intentSections = map[models.Intent]string{
	models.IntentTreatment:  "treatment",
	models.IntentSymptoms:   "symptoms",
	models.IntentCauses:     "causes",
	models.IntentPrevention: "prevention",
	models.IntentDiagnosis:  "diagnosis",
}

// Only the first keyword that hits (section before content) counts.
var intentKeywords = map[models.Intent][]string{
	models.IntentTreatment:  {"treatment", "therapy", "management", "medication", "drug"},
	models.IntentSymptoms:   {"symptom", "sign", "manifestation", "presentation"},
	models.IntentCauses:     {"cause", "etiology", "factor", "trigger"},
	models.IntentPrevention: {"prevention", "prevent", "avoid", "lifestyle"},
	models.IntentDiagnosis:  {"diagnosis", "test", "examination", "screening"},
}

func IsHighValueCondition(term string) bool {
	_, ok := highValueConditions[term]
	return ok
}

// Score rates every corpus item against the analysis and keeps the ones with
// real term or intent relevance. Output preserves scan order.
func Score(items []models.CorpusItem, analysis models.QueryAnalysis) []models.ScoredItem {
	out := make([]models.ScoredItem, 0, len(items)/4)
	for _, item := range items {
		if scored, ok := scoreItem(item, analysis); ok {
			out = append(out, scored)
		}
	}
	return out
}

func scoreItem(item models.CorpusItem, analysis models.QueryAnalysis) (models.ScoredItem, bool) {
	title := strings.ToLower(item.Title)
	section := strings.ToLower(item.Section)
	content := strings.ToLower(item.Content)

	score := 0
	matched := make([]string, 0, 4)
	for _, term := range analysis.PrimaryTerms {
		termScore := 0
		if strings.Contains(title, term) {
			if IsHighValueCondition(term) {
				termScore += titleHighValueScore
			} else {
				termScore += titleScore
			}
			matched = append(matched, "title:"+term)
		}
		if strings.Contains(section, term) {
			termScore += sectionScore
			matched = append(matched, "section:"+term)
		}
		if sectionMatchesIntent(section, analysis.Intent) {
			if IsHighValueCondition(term) {
				termScore += intentSectionHighBase
			} else {
				termScore += intentSectionBase
			}
		}
		if n := strings.Count(content, term); n > 0 {
			termScore += min(n*contentPerHit, contentMax)
			if n >= 2 {
				matched = append(matched, fmt.Sprintf("content:%s(%dx)", term, n))
			}
		}
		score += termScore
	}

	bonus := intentBonus(title, section, content, analysis)
	score += bonus
	score += lengthBonus(item.Content)

	if score <= 0 || (len(matched) == 0 && bonus == 0) {
		return models.ScoredItem{}, false
	}
	return models.ScoredItem{
		Item:         item,
		Score:        score,
		MatchedTerms: matched,
		IntentBonus:  bonus,
	}, true
}

func sectionMatchesIntent(section string, intent models.Intent) bool {
	name, ok := intentSections[intent]
	return ok && strings.Contains(section, name)
}

func intentBonus(title, section, content string, analysis models.QueryAnalysis) int {
	if analysis.Intent == models.IntentGeneral {
		return 0
	}
	for _, keyword := range intentKeywords[analysis.Intent] {
		if strings.Contains(section, keyword) {
			if titleNamesCondition(title, analysis.PrimaryTerms) {
				return intentSectionConditionBonus
			}
			return intentSectionBonus
		}
		if strings.Contains(content, keyword) {
			return intentContentBonus
		}
	}
	return 0
}

func titleNamesCondition(title string, terms []string) bool {
	for _, term := range terms {
		if IsHighValueCondition(term) && strings.Contains(title, term) {
			return true
		}
	}
	return false
}

func lengthBonus(content string) int {
	n := util.RuneLen(util.CleanMedicalText(content))
	switch {
	case n >= lengthSweetSpotMin && n <= lengthSweetSpotMax:
		return lengthSweetSpotBonus
	case n > lengthSweetSpotMax:
		return lengthLongBonus
	default:
		return 0
	}
}
