package parser

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"pdf-analyzer/internal/models"
	"pdf-analyzer/internal/pdfgen"
)

func staticExtractor(name string, pages models.PageTexts, err error) ExtractorFunc {
	return ExtractorFunc{Label: name, Fn: func(context.Context, string) (models.PageTexts, error) {
		return pages, err
	}}
}

func TestChain_FallsThrough(t *testing.T) {
	var calls []string
	record := func(name string, pages models.PageTexts, err error) Extractor {
		return ExtractorFunc{Label: name, Fn: func(context.Context, string) (models.PageTexts, error) {
			calls = append(calls, name)
			return pages, err
		}}
	}

	chain := NewChain(zerolog.Nop(),
		record("broken", nil, errors.New("bad xref")),
		record("empty", models.PageTexts{}, nil),
		record("good", models.PageTexts{1: "HEADER\nbody"}, nil),
		record("unused", models.PageTexts{1: "other"}, nil),
	)
	pages, err := chain.ExtractPages(context.Background(), "doc.pdf")
	if err != nil {
		t.Fatal(err)
	}
	if pages[1] != "HEADER\nbody" {
		t.Fatalf("unexpected pages %v", pages)
	}
	if strings.Join(calls, ",") != "broken,empty,good" {
		t.Fatalf("unexpected call order %v", calls)
	}
	if chain.Name() != "broken>empty>good>unused" {
		t.Fatalf("Name = %q", chain.Name())
	}
}

func TestChain_AllFail(t *testing.T) {
	sentinel := errors.New("bad xref")
	chain := NewChain(zerolog.Nop(),
		staticExtractor("a", nil, sentinel),
		staticExtractor("b", nil, nil),
	)
	_, err := chain.ExtractPages(context.Background(), "doc.pdf")
	if !errors.Is(err, sentinel) || !errors.Is(err, ErrNoText) {
		t.Fatalf("expected joined errors, got %v", err)
	}
}

func TestExtractWithTimeout(t *testing.T) {
	slow := ExtractorFunc{Label: "slow", Fn: func(ctx context.Context, _ string) (models.PageTexts, error) {
		select {
		case <-time.After(5 * time.Second):
			return models.PageTexts{1: "late"}, nil
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}}
	_, err := ExtractWithTimeout(context.Background(), slow, "slow.pdf", 20*time.Millisecond)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline error, got %v", err)
	}

	fast := staticExtractor("fast", models.PageTexts{1: "ok"}, nil)
	pages, err := ExtractWithTimeout(context.Background(), fast, "fast.pdf", time.Second)
	if err != nil || pages[1] != "ok" {
		t.Fatalf("unexpected result %v %v", pages, err)
	}
}

func TestParser_TextPages(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "doc.txt")
	content := "PAGE ONE\r\nﬁrst line\f\n  \f\nPAGE THREE\nthird"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	p := New(zerolog.Nop())
	pages, err := p.ExtractPages(context.Background(), path)
	if err != nil {
		t.Fatal(err)
	}
	if len(pages) != 2 {
		t.Fatalf("expected blank page to be omitted, got %v", pages)
	}
	if pages[1] != "PAGE ONE\nfirst line" {
		t.Fatalf("page 1 = %q", pages[1])
	}
	if pages[3] != "PAGE THREE\nthird" {
		t.Fatalf("page 3 = %q", pages[3])
	}
}

func TestParser_Unsupported(t *testing.T) {
	p := New(zerolog.Nop())
	if p.Supports("a.odt") || !p.Supports("A.PDF") {
		t.Fatal("unexpected Supports result")
	}
	if _, err := p.ExtractPages(context.Background(), "a.odt"); !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestContentStreamText(t *testing.T) {
	stream := []byte(`BT /F1 11 Tf 31 794 Td (COASTAL ADVENTURES) Tj ET
BT 31 780 Td [(Rent a b) -20 (oat\051 today)] TJ ET
BT 31 760 Td <48656C6C6F> Tj ET
/GS1 gs << /MCID 0 >> BDC EMC
% comment (ignored) Tj
BT (first) Tj T* (second) Tj ET`)
	got := ContentStreamText(stream)
	want := "COASTAL ADVENTURES\nRent a boat) today\nHello\nfirst\nsecond\n"
	if got != want {
		t.Fatalf("ContentStreamText =\n%q\nwant\n%q", got, want)
	}
}

func writeSamplePDF(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "guide.pdf")
	text := "COASTAL ADVENTURES\nExplore the beach and the coast.\f" +
		"NIGHTLIFE\nBars stay open late in the old city."
	if err := pdfgen.WriteText(text, path, pdfgen.Options{}); err != nil {
		t.Fatal(err)
	}
	return path
}

func assertSamplePages(t *testing.T, pages models.PageTexts) {
	t.Helper()
	if len(pages) != 2 {
		t.Fatalf("expected 2 pages, got %d: %v", len(pages), pages)
	}
	want := map[int][2]string{
		1: {"COASTAL ADVENTURES", "Explore the beach and the coast."},
		2: {"NIGHTLIFE", "Bars stay open late in the old city."},
	}
	sp := NewSectionParser(DefaultHeaderPatterns())
	for page, w := range want {
		lines := strings.Split(strings.TrimSpace(pages[page]), "\n")
		if len(lines) < 2 || strings.TrimSpace(lines[0]) != w[0] {
			t.Fatalf("page %d lines = %q", page, lines)
		}
		sections := sp.Parse(pages[page])
		if len(sections) != 1 {
			t.Fatalf("page %d: expected 1 section, got %+v", page, sections)
		}
		if sections[0].Title != w[0] || !strings.Contains(sections[0].Content, w[1]) {
			t.Fatalf("page %d section = %+v", page, sections[0])
		}
	}
}

func TestPDFExtractors(t *testing.T) {
	path := writeSamplePDF(t)

	t.Run("pdfcpu", func(t *testing.T) {
		pages, err := PdfcpuExtractor{}.ExtractPages(context.Background(), path)
		if err != nil {
			t.Fatal(err)
		}
		assertSamplePages(t, pages)
	})

	// The row reader may collapse a generated page onto one row; it must
	// then fail rather than hand back text without header lines.
	t.Run("ledongthuc", func(t *testing.T) {
		pages, err := LedongthucExtractor{}.ExtractPages(context.Background(), path)
		if err != nil {
			if !errors.Is(err, ErrFlatText) {
				t.Fatalf("unexpected error: %v", err)
			}
			return
		}
		assertSamplePages(t, pages)
	})

	t.Run("default chain", func(t *testing.T) {
		pages, err := New(zerolog.Nop()).ExtractPages(context.Background(), path)
		if err != nil {
			t.Fatal(err)
		}
		assertSamplePages(t, pages)
	})
}

func TestLineCount(t *testing.T) {
	cases := map[string]int{
		"":                                       0,
		"COASTAL ADVENTURESExplore the beach.\n": 1,
		"A\n\n  \nB\n":                           2,
	}
	for text, want := range cases {
		if got := lineCount(text); got != want {
			t.Errorf("lineCount(%q) = %d, want %d", text, got, want)
		}
	}
}

func TestLedongthucExtractor_InvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.pdf")
	if err := os.WriteFile(path, []byte("not a pdf"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := (LedongthucExtractor{}).ExtractPages(context.Background(), path); err == nil {
		t.Fatal("expected error for invalid pdf")
	}
	if _, err := New(zerolog.Nop()).ExtractPages(context.Background(), path); err == nil {
		t.Fatal("expected chain to fail for invalid pdf")
	}
}
