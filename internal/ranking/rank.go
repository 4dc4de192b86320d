package ranking

import (
	"sort"

	"pdf-analyzer/internal/models"
)

// ScoreSections sets ImportanceScore on every section in place.
func ScoreSections(sections []models.Section, scorer *Scorer, keywords models.KeywordSet) {
	for i := range sections {
		sections[i].ImportanceScore = scorer.Score(sections[i].Content, keywords)
	}
}

// RankPage orders one page's sections by descending score, keeping source
// order on ties, and assigns page-local ranks 1..K. The input is not modified.
func RankPage(sections []models.Section) []models.Section {
	ranked := sortByScore(sections)
	assignRanks(ranked)
	return ranked
}

// RankGlobal pools sections from every page, keeps the top max by score and
// assigns fresh ranks 1..N. Page-local ranks are discarded.
func RankGlobal(sections []models.Section, max int) []models.Section {
	ranked := sortByScore(sections)
	if max >= 0 && len(ranked) > max {
		ranked = ranked[:max]
	}
	assignRanks(ranked)
	return ranked
}

// SelectCandidates returns the first max page-ranked sections.
func SelectCandidates(pageRanked []models.Section, max int) []models.Section {
	if max < 0 || len(pageRanked) <= max {
		return pageRanked
	}
	return pageRanked[:max]
}

func sortByScore(sections []models.Section) []models.Section {
	out := make([]models.Section, len(sections))
	copy(out, sections)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].ImportanceScore > out[j].ImportanceScore
	})
	return out
}

func assignRanks(sections []models.Section) {
	for i := range sections {
		sections[i].ImportanceRank = i + 1
	}
}

// ToExtracted converts globally ranked sections to their output summaries.
func ToExtracted(ranked []models.Section) []models.ExtractedSection {
	out := make([]models.ExtractedSection, 0, len(ranked))
	for _, s := range ranked {
		out = append(out, models.ExtractedSection{
			Document:       s.Document,
			SectionTitle:   s.Title,
			ImportanceRank: s.ImportanceRank,
			PageNumber:     s.PageNumber,
		})
	}
	return out
}
