package report

import (
	"strings"
	"testing"

	"pdf-analyzer/internal/models"
)

func sampleOutput() *models.AnalysisOutput {
	return &models.AnalysisOutput{
		Metadata: models.Metadata{
			InputDocuments:      []string{"cities.pdf"},
			Persona:             "Travel Planner",
			JobToBeDone:         "Plan a trip",
			ProcessingTimestamp: "2025-07-10T15:31:22.632389",
		},
		ExtractedSections: []models.ExtractedSection{
			{Document: "cities.pdf", SectionTitle: "Coastal Adventures", ImportanceRank: 1, PageNumber: 2},
		},
		SubsectionAnalysis: []models.SubsectionAnalysis{
			{Document: "cities.pdf", RefinedText: "Visit the <script>alert(1)</script> old port", PageNumber: 2},
		},
	}
}

func TestHTML(t *testing.T) {
	html, err := HTML("Collection 1", sampleOutput())
	if err != nil {
		t.Fatal(err)
	}
	s := string(html)
	for _, want := range []string{"<table>", "Coastal Adventures", "Travel Planner", "<title>Collection 1</title>"} {
		if !strings.Contains(s, want) {
			t.Errorf("expected %q in report:\n%s", want, s)
		}
	}
	if strings.Contains(s, "<script>") {
		t.Fatalf("report contains unsanitised script:\n%s", s)
	}
}

func TestMarkdown_Empty(t *testing.T) {
	out := &models.AnalysisOutput{}
	md := Markdown("Collection 9", out)
	if !strings.Contains(md, "No sections found.") || !strings.Contains(md, "No excerpts.") {
		t.Fatalf("unexpected markdown:\n%s", md)
	}
}
