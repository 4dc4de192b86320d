// Package ranking scores page sections against a task description and
// selects the top sections and excerpts for a collection.
package ranking

import (
	"strings"

	"pdf-analyzer/internal/config"
	"pdf-analyzer/internal/models"
)

// KeywordExtractor expands a task description into topic keywords using
// fixed category word lists.
type KeywordExtractor struct {
	categories []config.KeywordCategory
	general    []string
}

func NewKeywordExtractor(categories []config.KeywordCategory, general []string) *KeywordExtractor {
	return &KeywordExtractor{categories: categories, general: general}
}

// Extract returns every category list whose words appear as a substring of
// the lowercased task, plus the general list.
func (k *KeywordExtractor) Extract(task string) models.KeywordSet {
	taskLower := strings.ToLower(task)
	keywords := models.NewKeywordSet()
	for _, category := range k.categories {
		if mentionsAny(taskLower, category.Words) {
			keywords.Add(category.Words...)
		}
	}
	keywords.Add(k.general...)
	return keywords
}

// MatchedCategories names the categories a task triggers, in config order.
func (k *KeywordExtractor) MatchedCategories(task string) []string {
	taskLower := strings.ToLower(task)
	var names []string
	for _, category := range k.categories {
		if mentionsAny(taskLower, category.Words) {
			names = append(names, category.Name)
		}
	}
	return names
}

func mentionsAny(text string, words []string) bool {
	for _, w := range words {
		if w != "" && strings.Contains(text, strings.ToLower(w)) {
			return true
		}
	}
	return false
}
