package state

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDocumentStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "portfolio.json")
	store := NewDocumentStore(path)

	rem := 4.5
	doc := Document{
		GeneratedAt: time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC),
		Milestones: []Milestone{
			{ID: "ms_1", Title: "Release", TargetDate: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
				Status: MilestonePending, WorkItemIDs: []string{"wi_1"}},
		},
		WorkItems: []WorkItem{
			{ID: "wi_1", Title: "API", Status: WorkItemInProgress, EstimatedDays: 8, RemainingDays: &rem},
		},
		Risks: []Risk{
			{ID: "r_1", Title: "Vendor", Status: RiskOpen, Probability: 0.3,
				Impact: RiskImpact{ImpactDays: 5}, MilestoneID: "ms_1"},
		},
	}

	if err := store.Save(doc); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	snap, err := store.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if len(snap.Milestones) != 1 || len(snap.WorkItems) != 1 || len(snap.Risks) != 1 {
		t.Fatalf("Unexpected snapshot shape: %d/%d/%d",
			len(snap.Milestones), len(snap.WorkItems), len(snap.Risks))
	}
	w := snap.WorkItems["wi_1"]
	if w.RemainingDays == nil || *w.RemainingDays != 4.5 {
		t.Errorf("Remaining days lost in round trip: %v", w.RemainingDays)
	}
	if w.MilestoneID != "ms_1" {
		t.Errorf("Expected back-filled milestone id, got %q", w.MilestoneID)
	}
}

func TestDocumentStoreMissingFileYieldsEmptySnapshot(t *testing.T) {
	store := NewDocumentStore(filepath.Join(t.TempDir(), "absent.json"))
	snap, err := store.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(snap.Milestones) != 0 || len(snap.WorkItems) != 0 {
		t.Errorf("Expected empty snapshot, got %d/%d", len(snap.Milestones), len(snap.WorkItems))
	}
}

func TestDocumentStoreCorruptFileFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatalf("setup failed: %v", err)
	}
	if _, err := NewDocumentStore(path).Load(); err == nil {
		t.Errorf("Expected parse error for corrupt document")
	}
}
