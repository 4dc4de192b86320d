package collection

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"pdf-analyzer/internal/models"
)

func testInput() *models.ChallengeInput {
	return &models.ChallengeInput{
		ChallengeInfo: models.ChallengeInfo{ChallengeID: "round_1b_002", TestCaseName: "travel_planner"},
		Documents:     []models.InputDocument{{Filename: "a.pdf", Title: "A"}},
		Persona:       models.Persona{Role: "Travel Planner"},
		JobToBeDone:   models.JobToBeDone{Task: "Plan a trip"},
	}
}

func TestCreateAndValidate(t *testing.T) {
	base := t.TempDir()
	l := DefaultLayout()

	path, err := l.Create(base, "Collection 1", testInput())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := l.Create(base, "Collection 1", testInput()); !errors.Is(err, ErrCollectionExists) {
		t.Fatalf("expected ErrCollectionExists, got %v", err)
	}

	if _, err := l.Validate(path); !errors.Is(err, ErrNoPDFs) {
		t.Fatalf("expected ErrNoPDFs for empty collection, got %v", err)
	}

	if _, err := l.SavePDF(path, "b.pdf", strings.NewReader("%PDF-1.4")); err != nil {
		t.Fatal(err)
	}
	n, err := l.Validate(path)
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Fatalf("expected 1 pdf, got %d", n)
	}

	input, err := l.LoadInput(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(input.Documents) != 2 || input.Documents[1].Filename != "b.pdf" || input.Documents[1].Title != "b" {
		t.Fatalf("uploaded pdf not added to documents: %+v", input.Documents)
	}
}

func TestValidate_MissingParts(t *testing.T) {
	base := t.TempDir()
	l := DefaultLayout()

	if _, err := l.Validate(filepath.Join(base, "nope")); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	dir := filepath.Join(base, "Collection 9")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if _, err := l.Validate(dir); !errors.Is(err, ErrInputNotFound) {
		t.Fatalf("expected ErrInputNotFound, got %v", err)
	}

	if err := os.WriteFile(l.InputPath(dir), []byte("{}"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := l.Validate(dir); !errors.Is(err, ErrPDFDirNotFound) {
		t.Fatalf("expected ErrPDFDirNotFound, got %v", err)
	}
}

func TestList(t *testing.T) {
	base := t.TempDir()
	l := DefaultLayout()

	if _, err := l.Create(base, "Collection 2", testInput()); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(filepath.Join(base, "Collection 1"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(filepath.Join(base, "other"), 0o755); err != nil {
		t.Fatal(err)
	}

	list, err := l.List(base)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 collections, got %+v", list)
	}
	if list[0].Name != "Collection 1" || list[0].HasInput {
		t.Fatalf("unexpected first entry %+v", list[0])
	}
	if !list[1].HasInput || !list[1].HasPDFs || list[1].Persona != "Travel Planner" {
		t.Fatalf("unexpected second entry %+v", list[1])
	}

	ready, err := l.Ready(base)
	if err != nil {
		t.Fatal(err)
	}
	if len(ready) != 1 || filepath.Base(ready[0]) != "Collection 2" {
		t.Fatalf("unexpected ready list %v", ready)
	}

	empty, err := l.List(filepath.Join(base, "missing"))
	if err != nil || len(empty) != 0 {
		t.Fatalf("missing base path should list nothing, got %v %v", empty, err)
	}
}

func TestInfo(t *testing.T) {
	base := t.TempDir()
	l := DefaultLayout()
	if _, err := l.Create(base, "Collection 1", testInput()); err != nil {
		t.Fatal(err)
	}

	d, err := l.Info(base, "Collection 1")
	if err != nil {
		t.Fatal(err)
	}
	if d.InputData == nil || d.InputData.Persona.Role != "Travel Planner" || d.HasOutput || d.PDFCount != 0 {
		t.Fatalf("unexpected details %+v", d)
	}

	if _, err := l.Info(base, "Collection 7"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := l.Info(base, "../etc"); !errors.Is(err, ErrInvalidName) {
		t.Fatalf("expected ErrInvalidName, got %v", err)
	}
}

func TestLoadInput_Invalid(t *testing.T) {
	dir := t.TempDir()
	const (
		info = `"challenge_info":{"challenge_id":"round_1b_002","test_case_name":"travel_planner"}`
		rest = `"persona":{"role":"r"},"job_to_be_done":{"task":"t"}`
		docs = `"documents":[{"filename":"a.pdf","title":"A"}]`
	)
	tests := []struct {
		name    string
		content string
		wantErr error
		wantMsg string
	}{
		{"malformed", "{not json", ErrInvalidInput, ""},
		{"no challenge info", `{"documents":[{"filename":"a.pdf"}],` + rest + `}`, ErrInvalidInput, "challenge_id"},
		{"no test case name", `{"challenge_info":{"challenge_id":"x"},` + docs + `,` + rest + `}`, ErrInvalidInput, "test_case_name"},
		{"no title", `{` + info + `,"documents":[{"filename":"a.pdf"}],` + rest + `}`, ErrInvalidInput, "title"},
		{"no documents", `{` + info + `,` + rest + `}`, ErrInvalidInput, "documents"},
		{"no task", `{` + info + `,` + docs + `,"persona":{"role":"r"},"job_to_be_done":{}}`, ErrInvalidInput, "task"},
		{"no persona", `{` + info + `,` + docs + `,"job_to_be_done":{"task":"t"}}`, ErrInvalidInput, "persona"},
		{"valid", `{` + info + `,` + docs + `,` + rest + `}`, nil, ""},
		{"valid without documents", `{` + info + `,"documents":[],` + rest + `}`, nil, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, tt.name+".json")
			if err := os.WriteFile(path, []byte(tt.content), 0o644); err != nil {
				t.Fatal(err)
			}
			_, err := LoadInput(path)
			if tt.wantErr == nil && err != nil {
				t.Fatalf("unexpected error %v", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
			if tt.wantMsg != "" && !strings.Contains(err.Error(), tt.wantMsg) {
				t.Fatalf("error %q does not name %q", err, tt.wantMsg)
			}
		})
	}

	if _, err := LoadInput(filepath.Join(dir, "missing.json")); !errors.Is(err, ErrInputNotFound) {
		t.Fatalf("expected ErrInputNotFound, got %v", err)
	}
}

func TestSavePDF_RejectsNonPDF(t *testing.T) {
	base := t.TempDir()
	l := DefaultLayout()
	path, err := l.Create(base, "Collection 1", testInput())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := l.SavePDF(path, "notes.txt", strings.NewReader("x")); !errors.Is(err, ErrInvalidName) {
		t.Fatalf("expected ErrInvalidName, got %v", err)
	}
}

func TestSanitizeFilename(t *testing.T) {
	tests := map[string]string{
		"report.pdf":                 "report.pdf",
		"../../etc/passwd.pdf":       "passwd.pdf",
		`C:\Users\me\guide.pdf`:      "guide.pdf",
		"South of France - Nice.pdf": "South of France - Nice.pdf",
		"we*ird?.pdf":                "we_ird_.pdf",
		".hidden.pdf":                "hidden.pdf",
	}
	for in, want := range tests {
		if got := SanitizeFilename(in); got != want {
			t.Errorf("SanitizeFilename(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestWriteSamples(t *testing.T) {
	base := t.TempDir()
	l := DefaultLayout()

	created, err := l.WriteSamples(base)
	if err != nil {
		t.Fatal(err)
	}
	if len(created) != 3 {
		t.Fatalf("expected 3 sample collections, got %v", created)
	}
	for _, path := range created {
		if _, err := l.Validate(path); err != nil {
			t.Fatalf("sample %s invalid: %v", path, err)
		}
	}

	again, err := l.WriteSamples(base)
	if err != nil {
		t.Fatal(err)
	}
	if len(again) != 0 {
		t.Fatalf("existing samples should be kept, got %v", again)
	}
}

func TestNewInput(t *testing.T) {
	input, err := NewInput("Collection 4", models.ChallengeInfo{}, "Travel Planner", "Plan a trip")
	if err != nil {
		t.Fatal(err)
	}
	if input.ChallengeInfo.ChallengeID == "" || input.ChallengeInfo.TestCaseName != "Collection 4" {
		t.Fatalf("challenge info not filled in: %+v", input.ChallengeInfo)
	}
	if err := ValidateInput(input); err != nil {
		t.Fatal(err)
	}

	input, err = NewInput("Collection 4", models.ChallengeInfo{ChallengeID: "round_1b_004", TestCaseName: "custom"}, "r", "t")
	if err != nil {
		t.Fatal(err)
	}
	if input.ChallengeInfo.ChallengeID != "round_1b_004" || input.ChallengeInfo.TestCaseName != "custom" {
		t.Fatalf("explicit challenge info overwritten: %+v", input.ChallengeInfo)
	}
}
