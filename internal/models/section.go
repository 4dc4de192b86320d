package models

import "sort"

// PageTexts maps a 1-based page number to its trimmed, non-empty text.
type PageTexts map[int]string

// Pages returns the page numbers in ascending order.
func (p PageTexts) Pages() []int {
	pages := make([]int, 0, len(p))
	for n := range p {
		pages = append(pages, n)
	}
	sort.Ints(pages)
	return pages
}

// Section is a header-introduced span of page text.
type Section struct {
	Title           string  `json:"title"`
	Content         string  `json:"content"`
	Document        string  `json:"document,omitempty"`
	PageNumber      int     `json:"page_number,omitempty"`
	ImportanceScore float64 `json:"importance_score"`
	ImportanceRank  int     `json:"importance_rank,omitempty"`
}

// KeywordSet is a set of lowercase topic keywords.
type KeywordSet map[string]struct{}

// NewKeywordSet builds a set from words, lowercasing each.
func NewKeywordSet(words ...string) KeywordSet {
	ks := make(KeywordSet, len(words))
	ks.Add(words...)
	return ks
}

func (ks KeywordSet) Add(words ...string) {
	for _, w := range words {
		ks[lower(w)] = struct{}{}
	}
}

func (ks KeywordSet) Contains(word string) bool {
	_, ok := ks[word]
	return ok
}

// Sorted returns the keywords in lexical order.
func (ks KeywordSet) Sorted() []string {
	out := make([]string, 0, len(ks))
	for k := range ks {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// SubsectionAnalysis is a length-capped excerpt of a top section.
type SubsectionAnalysis struct {
	Document    string `json:"document"`
	RefinedText string `json:"refined_text"`
	PageNumber  int    `json:"page_number"`
}

// ExtractedSection is the persisted summary of a globally ranked section.
type ExtractedSection struct {
	Document       string `json:"document"`
	SectionTitle   string `json:"section_title"`
	ImportanceRank int    `json:"importance_rank"`
	PageNumber     int    `json:"page_number"`
}

type Metadata struct {
	InputDocuments      []string `json:"input_documents"`
	Persona             string   `json:"persona"`
	JobToBeDone         string   `json:"job_to_be_done"`
	ProcessingTimestamp string   `json:"processing_timestamp"`
}

// AnalysisOutput is the terminal artifact written per collection.
type AnalysisOutput struct {
	Metadata           Metadata             `json:"metadata"`
	ExtractedSections  []ExtractedSection   `json:"extracted_sections"`
	SubsectionAnalysis []SubsectionAnalysis `json:"subsection_analysis"`
}
