package models

// SectionHit is a section index search result
type SectionHit struct {
	Collection string  `json:"collection"`
	Document   string  `json:"document"`
	PageNumber int     `json:"page_number"`
	Title      string  `json:"section_title"`
	Content    string  `json:"content"`
	Similarity float32 `json:"similarity"`
}
