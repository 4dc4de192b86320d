package ranking

import (
	"testing"

	"pdf-analyzer/internal/models"
)

func sec(title string, score float64) models.Section {
	return models.Section{Title: title, Content: title + " content", ImportanceScore: score}
}

func titles(sections []models.Section) []string {
	out := make([]string, 0, len(sections))
	for _, s := range sections {
		out = append(out, s.Title)
	}
	return out
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestRankPage_StableDescending(t *testing.T) {
	in := []models.Section{sec("A", 0.2), sec("B", 0.9), sec("C", 0.2), sec("D", 0.5)}
	ranked := RankPage(in)

	if want := []string{"B", "D", "A", "C"}; !equal(titles(ranked), want) {
		t.Fatalf("order = %v, want %v", titles(ranked), want)
	}
	for i, s := range ranked {
		if s.ImportanceRank != i+1 {
			t.Fatalf("rank at %d = %d", i, s.ImportanceRank)
		}
	}
	if in[0].Title != "A" || in[0].ImportanceRank != 0 {
		t.Fatal("input was modified")
	}
}

func TestRankGlobal_TruncatesAndReranks(t *testing.T) {
	var all []models.Section
	for i := 0; i < 15; i++ {
		s := sec(string(rune('a'+i)), float64(i%4))
		s.ImportanceRank = 99
		all = append(all, s)
	}
	ranked := RankGlobal(all, 10)
	if len(ranked) != 10 {
		t.Fatalf("len = %d", len(ranked))
	}
	for i, s := range ranked {
		if s.ImportanceRank != i+1 {
			t.Fatalf("rank at %d = %d", i, s.ImportanceRank)
		}
		if i > 0 && ranked[i-1].ImportanceScore < s.ImportanceScore {
			t.Fatalf("not descending at %d", i)
		}
	}
	// score 3 sections in input order: d, h, l
	if want := []string{"d", "h", "l"}; !equal(titles(ranked[:3]), want) {
		t.Fatalf("ties not stable: %v", titles(ranked[:3]))
	}

	if got := RankGlobal(nil, 10); len(got) != 0 {
		t.Fatalf("expected empty ranking, got %v", got)
	}
}

func TestSelectCandidates(t *testing.T) {
	ranked := RankPage([]models.Section{sec("A", 1), sec("B", 2), sec("C", 3), sec("D", 4)})
	got := SelectCandidates(ranked, 3)
	if want := []string{"D", "C", "B"}; !equal(titles(got), want) {
		t.Fatalf("candidates = %v, want %v", titles(got), want)
	}
	if got := SelectCandidates(ranked[:2], 3); len(got) != 2 {
		t.Fatalf("short page should keep all sections, got %d", len(got))
	}
}

func TestToExtracted(t *testing.T) {
	s := sec("Coastal Adventures", 1)
	s.Document = "things.pdf"
	s.PageNumber = 2
	s.ImportanceRank = 1
	got := ToExtracted([]models.Section{s})
	want := models.ExtractedSection{Document: "things.pdf", SectionTitle: "Coastal Adventures", ImportanceRank: 1, PageNumber: 2}
	if len(got) != 1 || got[0] != want {
		t.Fatalf("ToExtracted = %+v", got)
	}
	if empty := ToExtracted(nil); empty == nil {
		t.Fatal("expected non-nil empty slice")
	}
}
