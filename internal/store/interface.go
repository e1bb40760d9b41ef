package store

import (
	"time"

	"github.com/Capstone-E1/pumpmatic_backend/internal/models"
)

// EventStore defines the interface for pump event log storage
type EventStore interface {
	// Health check
	Ping() error

	RecordPumpEvent(models.PumpLogEntry)
	GetRecentEvents(limit int) []models.PumpLogEntry
	GetEventsByPump(pumpID string, limit int) []models.PumpLogEntry
	GetEventsInRange(start, end time.Time) []models.PumpLogEntry
	GetEventCount() int
	GetActionCounts() map[models.PumpAction]int
}
