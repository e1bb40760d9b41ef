package analytics

import (
	"testing"

	"github.com/Capstone-E1/pumpmatic_backend/internal/models"
)

func TestSummarize_Empty(t *testing.T) {
	summary := Summarize(nil)

	if summary.TotalEvents != 0 {
		t.Errorf("Expected 0 total events, got %d", summary.TotalEvents)
	}
	if len(summary.PerPump) != 3 {
		t.Errorf("Expected one activity row per pump, got %d", len(summary.PerPump))
	}
	if summary.BusiestPump != "" {
		t.Errorf("Expected no busiest pump with no events, got %q", summary.BusiestPump)
	}
}

func TestSummarize_CountsPerPump(t *testing.T) {
	events := []models.PumpLogEntry{
		{PumpID: models.PumpP1, Action: models.ActionStart},
		{PumpID: models.PumpP1, Action: models.ActionStop},
		{PumpID: models.PumpP1, Action: models.ActionStart},
		{PumpID: models.PumpP2, Action: models.ActionManualStart},
		{PumpID: models.PumpP2, Action: models.ActionManualStop},
		{PumpID: models.PumpP3, Action: models.ActionError, Reason: "Zero pressure detected"},
		{PumpID: models.PumpP3, Action: models.ActionError, Reason: "Zero pressure detected"},
	}

	summary := Summarize(events)

	if summary.TotalEvents != 7 {
		t.Errorf("Expected 7 total events, got %d", summary.TotalEvents)
	}
	if summary.ActionCounts[models.ActionStart] != 2 {
		t.Errorf("Expected 2 START events, got %d", summary.ActionCounts[models.ActionStart])
	}

	byID := make(map[string]PumpActivity)
	for _, activity := range summary.PerPump {
		byID[activity.PumpID] = activity
	}

	if byID[models.PumpP1].Starts != 2 || byID[models.PumpP1].Stops != 1 {
		t.Errorf("Unexpected P1 activity: %+v", byID[models.PumpP1])
	}
	if byID[models.PumpP2].ManualStarts != 1 || byID[models.PumpP2].ManualStops != 1 {
		t.Errorf("Unexpected P2 activity: %+v", byID[models.PumpP2])
	}
	if byID[models.PumpP3].Errors != 2 {
		t.Errorf("Expected 2 errors for P3, got %d", byID[models.PumpP3].Errors)
	}
	// Repeated identical reasons collapse to one
	if len(byID[models.PumpP3].ErrorReasons) != 1 {
		t.Errorf("Expected 1 unique error reason, got %v", byID[models.PumpP3].ErrorReasons)
	}

	if summary.BusiestPump != models.PumpP1 {
		t.Errorf("Expected P1 busiest, got %q", summary.BusiestPump)
	}
}

func TestSummarize_IgnoresUnknownPump(t *testing.T) {
	events := []models.PumpLogEntry{
		{PumpID: "P9", Action: models.ActionStart},
	}

	summary := Summarize(events)

	// Unknown pumps still count toward totals but get no activity row
	if summary.TotalEvents != 1 {
		t.Errorf("Expected 1 total event, got %d", summary.TotalEvents)
	}
	for _, activity := range summary.PerPump {
		if activity.PumpID == "P9" {
			t.Error("Expected no activity row for unknown pump")
		}
	}
}
