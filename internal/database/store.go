package database

import (
	"database/sql"
	"log"
	"time"

	"github.com/Capstone-E1/pumpmatic_backend/internal/models"
)

// DatabaseStore implements persistent event storage using PostgreSQL
type DatabaseStore struct {
	db *sql.DB
}

// NewDatabaseStore creates a new database store
func NewDatabaseStore(db *sql.DB) *DatabaseStore {
	return &DatabaseStore{db: db}
}

// Ping checks the database connection
func (s *DatabaseStore) Ping() error {
	return s.db.Ping()
}

// RecordPumpEvent stores a pump event in the database. Failures are logged,
// never surfaced — persistence problems are not the controller's concern.
func (s *DatabaseStore) RecordPumpEvent(entry models.PumpLogEntry) {
	query := `
		INSERT INTO pump_logs (
			timestamp, pump_id, action, reason,
			main_line_level_pct, underground_level_pct, overhead_level_pct,
			active_meter, details
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	ts := entry.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}

	_, err := s.db.Exec(query, ts, entry.PumpID, string(entry.Action), entry.Reason,
		entry.MainLinePct, entry.UndergroundPct, entry.OverheadPct,
		string(entry.ActiveMeter), nullIfEmpty(entry.Details))
	if err != nil {
		log.Printf("❌ Error storing pump event: %v", err)
	}
}

// GetRecentEvents returns the most recent N events, newest first
func (s *DatabaseStore) GetRecentEvents(limit int) []models.PumpLogEntry {
	query := `
		SELECT id, timestamp, pump_id, action, reason,
			main_line_level_pct, underground_level_pct, overhead_level_pct,
			active_meter, details
		FROM pump_logs
		ORDER BY timestamp DESC
		LIMIT $1`

	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.Query(query, limit)
	if err != nil {
		log.Printf("❌ Error getting recent events: %v", err)
		return nil
	}
	defer rows.Close()

	return scanEvents(rows)
}

// GetEventsByPump returns the most recent N events for one pump, newest first
func (s *DatabaseStore) GetEventsByPump(pumpID string, limit int) []models.PumpLogEntry {
	query := `
		SELECT id, timestamp, pump_id, action, reason,
			main_line_level_pct, underground_level_pct, overhead_level_pct,
			active_meter, details
		FROM pump_logs
		WHERE pump_id = $1
		ORDER BY timestamp DESC
		LIMIT $2`

	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.Query(query, pumpID, limit)
	if err != nil {
		log.Printf("❌ Error getting events by pump: %v", err)
		return nil
	}
	defer rows.Close()

	return scanEvents(rows)
}

// GetEventsInRange returns events within a time range, oldest first
func (s *DatabaseStore) GetEventsInRange(start, end time.Time) []models.PumpLogEntry {
	query := `
		SELECT id, timestamp, pump_id, action, reason,
			main_line_level_pct, underground_level_pct, overhead_level_pct,
			active_meter, details
		FROM pump_logs
		WHERE timestamp > $1 AND timestamp < $2
		ORDER BY timestamp ASC`

	rows, err := s.db.Query(query, start, end)
	if err != nil {
		log.Printf("❌ Error getting events in range: %v", err)
		return nil
	}
	defer rows.Close()

	return scanEvents(rows)
}

// GetEventCount returns the total number of stored events
func (s *DatabaseStore) GetEventCount() int {
	var count int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM pump_logs").Scan(&count); err != nil {
		log.Printf("❌ Error counting events: %v", err)
		return 0
	}
	return count
}

// GetActionCounts returns how many events were recorded per action type
func (s *DatabaseStore) GetActionCounts() map[models.PumpAction]int {
	rows, err := s.db.Query("SELECT action, COUNT(*) FROM pump_logs GROUP BY action")
	if err != nil {
		log.Printf("❌ Error counting events by action: %v", err)
		return nil
	}
	defer rows.Close()

	counts := make(map[models.PumpAction]int)
	for rows.Next() {
		var action string
		var count int
		if err := rows.Scan(&action, &count); err != nil {
			log.Printf("❌ Error scanning action count: %v", err)
			continue
		}
		counts[models.PumpAction(action)] = count
	}
	return counts
}

// scanEvents reads pump log rows into entries
func scanEvents(rows *sql.Rows) []models.PumpLogEntry {
	var events []models.PumpLogEntry
	for rows.Next() {
		var entry models.PumpLogEntry
		var reason, meter, details sql.NullString
		if err := rows.Scan(&entry.ID, &entry.Timestamp, &entry.PumpID, &entry.Action, &reason,
			&entry.MainLinePct, &entry.UndergroundPct, &entry.OverheadPct,
			&meter, &details); err != nil {
			log.Printf("❌ Error scanning pump event: %v", err)
			continue
		}
		entry.Reason = reason.String
		entry.ActiveMeter = models.ActiveMeter(meter.String)
		entry.Details = details.String
		events = append(events, entry)
	}
	return events
}

func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
