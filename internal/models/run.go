package models

import "time"

// Run records one completed collection analysis.
type Run struct {
	ID           string          `json:"id"`
	Collection   string          `json:"collection"`
	OutputPath   string          `json:"output_path"`
	Keywords     []string        `json:"keywords"`
	SectionCount int             `json:"section_count"`
	Output       *AnalysisOutput `json:"output"`
	CreatedAt    time.Time       `json:"created_at"`
}
