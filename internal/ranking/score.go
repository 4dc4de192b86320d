package ranking

import (
	"math"
	"regexp"
	"strings"

	"pdf-analyzer/internal/models"
)

var nonAlphanumericRe = regexp.MustCompile(models.NonAlphanumericRegex)

// Scorer computes a keyword density score with a capped length bonus.
type Scorer struct {
	lengthBonusMax     float64
	lengthBonusDivisor float64
}

func NewScorer(lengthBonusMax, lengthBonusDivisor float64) *Scorer {
	if lengthBonusDivisor <= 0 {
		lengthBonusDivisor = 100
	}
	return &Scorer{lengthBonusMax: lengthBonusMax, lengthBonusDivisor: lengthBonusDivisor}
}

// Score returns match_count/word_count + min(word_count/divisor, max).
// A keyword matches a word when either is a substring of the other.
func (s *Scorer) Score(content string, keywords models.KeywordSet) float64 {
	if content == "" || len(keywords) == 0 {
		return 0
	}
	words := Words(content)
	if len(words) == 0 {
		return 0
	}
	matches := CountMatches(words, keywords)
	tf := float64(matches) / float64(len(words))
	bonus := math.Min(float64(len(words))/s.lengthBonusDivisor, s.lengthBonusMax)
	return tf + bonus
}

// Words lowercases text, replaces non-alphanumerics with spaces and splits
// on whitespace.
func Words(text string) []string {
	cleaned := nonAlphanumericRe.ReplaceAllString(strings.ToLower(text), " ")
	return strings.Fields(cleaned)
}

// CountMatches counts (keyword, word) pairs in bidirectional substring containment.
func CountMatches(words []string, keywords models.KeywordSet) int {
	matches := 0
	for keyword := range keywords {
		for _, word := range words {
			if strings.Contains(word, keyword) || strings.Contains(keyword, word) {
				matches++
			}
		}
	}
	return matches
}
