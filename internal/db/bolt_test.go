package db

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"pdf-analyzer/internal/models"
)

func TestBoltStore_ListRunsNewestFirst(t *testing.T) {
	store, err := NewBoltStore(filepath.Join(t.TempDir(), "runs.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	ctx := context.Background()
	base := time.Date(2025, 7, 10, 12, 0, 0, 0, time.UTC)
	runs := []models.Run{
		{ID: "a", Collection: "Collection 1", CreatedAt: base},
		{ID: "b", Collection: "Collection 1", CreatedAt: base.Add(time.Hour)},
		{ID: "c", Collection: "Collection 10", CreatedAt: base.Add(2 * time.Hour)},
		{ID: "d", Collection: "Collection 1", CreatedAt: base.Add(30 * time.Minute),
			Output: &models.AnalysisOutput{Metadata: models.Metadata{Persona: "Travel Planner"}}},
	}
	for _, r := range runs {
		if err := store.SaveRun(ctx, r); err != nil {
			t.Fatal(err)
		}
	}

	got, err := store.ListRuns(ctx, "Collection 1", 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 runs for Collection 1, got %d", len(got))
	}
	want := []string{"b", "d", "a"}
	for i, id := range want {
		if got[i].ID != id {
			t.Fatalf("run %d: got %q want %q", i, got[i].ID, id)
		}
	}
	if got[1].Output == nil || got[1].Output.Metadata.Persona != "Travel Planner" {
		t.Fatalf("output not persisted: %+v", got[1].Output)
	}

	limited, err := store.ListRuns(ctx, "Collection 1", 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(limited) != 1 || limited[0].ID != "b" {
		t.Fatalf("limit not applied: %+v", limited)
	}
}

func TestRunRecordConversion(t *testing.T) {
	run := models.Run{ID: "x", Collection: "Collection 2", Keywords: []string{"menu"}, SectionCount: 4}
	back := newRunRecord(run).toRun()
	if back.ID != run.ID || back.Collection != run.Collection || back.SectionCount != 4 || back.Keywords[0] != "menu" {
		t.Fatalf("conversion lost fields: %+v", back)
	}
}

func TestBoltStore_Reset(t *testing.T) {
	store, err := NewBoltStore(filepath.Join(t.TempDir(), "runs.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	ctx := context.Background()
	run := models.Run{ID: "a", Collection: "Collection 1", CreatedAt: time.Date(2025, 7, 10, 12, 0, 0, 0, time.UTC)}
	if err := store.SaveRun(ctx, run); err != nil {
		t.Fatal(err)
	}
	if err := store.Reset(ctx); err != nil {
		t.Fatal(err)
	}
	got, err := store.ListRuns(ctx, "Collection 1", 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Fatalf("expected no runs after reset, got %d", len(got))
	}

	// the store stays usable
	if err := store.SaveRun(ctx, run); err != nil {
		t.Fatal(err)
	}
	if got, _ := store.ListRuns(ctx, "Collection 1", 0); len(got) != 1 {
		t.Fatalf("expected 1 run after saving again, got %d", len(got))
	}
}
