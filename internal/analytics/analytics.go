package analytics

import (
	"github.com/Capstone-E1/pumpmatic_backend/internal/models"
)

// PumpActivity aggregates log activity for one pump
type PumpActivity struct {
	PumpID       string   `json:"pump_id"`
	Starts       int      `json:"starts"`
	Stops        int      `json:"stops"`
	Errors       int      `json:"errors"`
	ManualStarts int      `json:"manual_starts"`
	ManualStops  int      `json:"manual_stops"`
	ErrorReasons []string `json:"error_reasons,omitempty"`
}

// Summary is the log-derived statistics view backing /api/v1/logs/stats
type Summary struct {
	TotalEvents  int                       `json:"total_events"`
	ActionCounts map[models.PumpAction]int `json:"action_counts"`
	PerPump      []PumpActivity            `json:"per_pump"`
	BusiestPump  string                    `json:"busiest_pump,omitempty"`
}

// Summarize computes per-pump activity statistics from a batch of log
// entries. It is a pure function of its input; callers decide how large a
// window to analyze.
func Summarize(events []models.PumpLogEntry) Summary {
	summary := Summary{
		TotalEvents:  len(events),
		ActionCounts: make(map[models.PumpAction]int),
	}

	byPump := make(map[string]*PumpActivity)
	for _, id := range models.PumpIDs {
		byPump[id] = &PumpActivity{PumpID: id}
	}

	for _, event := range events {
		summary.ActionCounts[event.Action]++

		activity, ok := byPump[event.PumpID]
		if !ok {
			continue
		}
		switch event.Action {
		case models.ActionStart:
			activity.Starts++
		case models.ActionStop:
			activity.Stops++
		case models.ActionError:
			activity.Errors++
			activity.ErrorReasons = appendUnique(activity.ErrorReasons, event.Reason)
		case models.ActionManualStart:
			activity.ManualStarts++
		case models.ActionManualStop:
			activity.ManualStops++
		}
	}

	busiest := ""
	busiestTotal := 0
	for _, id := range models.PumpIDs {
		activity := byPump[id]
		summary.PerPump = append(summary.PerPump, *activity)

		total := activity.Starts + activity.ManualStarts
		if total > busiestTotal {
			busiestTotal = total
			busiest = id
		}
	}
	summary.BusiestPump = busiest

	return summary
}

func appendUnique(list []string, value string) []string {
	if value == "" {
		return list
	}
	for _, v := range list {
		if v == value {
			return list
		}
	}
	return append(list, value)
}
