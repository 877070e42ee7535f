package search

import (
	"sort"
	"strings"

	"medrag/internal/models"
	"medrag/internal/util"
)

const (
	// CandidateTopK is the internal candidate pass size; callers at the API
	// boundary ask for fewer.
	CandidateTopK = 8

	multiTermMinScore  = 50
	singleTermMinScore = 30
)

// MinScore is the retention threshold for an analysis.
func MinScore(analysis models.QueryAnalysis) int {
	if len(analysis.PrimaryTerms) > 1 {
		return multiTermMinScore
	}
	return singleTermMinScore
}

// Select orders scored items by descending score (stable on scan order),
// drops those under the threshold and projects the top K.
func Select(scored []models.ScoredItem, analysis models.QueryAnalysis, topK int) []models.RankedResult {
	if topK <= 0 {
		topK = CandidateTopK
	}
	ordered := make([]models.ScoredItem, len(scored))
	copy(ordered, scored)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Score > ordered[j].Score
	})

	threshold := MinScore(analysis)
	out := make([]models.RankedResult, 0, min(topK, len(ordered)))
	for _, s := range ordered {
		if len(out) == topK {
			break
		}
		if s.Score < threshold {
			// Sorted, so nothing after this can qualify.
			break
		}
		out = append(out, project(s, analysis))
	}
	return out
}

func project(s models.ScoredItem, analysis models.QueryAnalysis) models.RankedResult {
	matched := s.MatchedTerms
	if matched == nil {
		matched = []string{}
	}
	return models.RankedResult{
		Score:         s.Score,
		Title:         s.Item.Title,
		Section:       s.Item.Section,
		Content:       util.CleanMedicalText(s.Item.Content),
		URL:           s.Item.SourceURL,
		ChunkID:       s.Item.ChunkID,
		MatchedTerms:  matched,
		RelevanceType: RelevanceType(s.Item, analysis),
	}
}

// RelevanceType labels how a result relates to the query.
func RelevanceType(item models.CorpusItem, analysis models.QueryAnalysis) string {
	title := strings.ToLower(item.Title)
	for _, term := range analysis.PrimaryTerms {
		if strings.Contains(title, term) {
			if analysis.Intent == models.IntentGeneral {
				return "exact_match"
			}
			return "exact_" + string(analysis.Intent) + "_match"
		}
	}
	return "content_relevance"
}
