package store

import (
	"sort"
	"sync"
	"time"

	"github.com/Capstone-E1/pumpmatic_backend/internal/models"
)

// Store is the in-memory event log, used when no database is reachable.
// It keeps a bounded window of the most recent entries.
type Store struct {
	mu        sync.RWMutex
	events    []models.PumpLogEntry
	nextID    int
	maxEvents int
}

// NewStore creates a new in-memory store
func NewStore(maxEvents int) *Store {
	if maxEvents <= 0 {
		maxEvents = 1000 // Default to the last 1000 events
	}

	return &Store{
		events:    make([]models.PumpLogEntry, 0, maxEvents),
		nextID:    1,
		maxEvents: maxEvents,
	}
}

// Ping always succeeds for the in-memory store
func (s *Store) Ping() error {
	return nil
}

// RecordPumpEvent appends an event, evicting the oldest entry once the
// window is full
func (s *Store) RecordPumpEvent(entry models.PumpLogEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry.ID = s.nextID
	s.nextID++
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}

	s.events = append(s.events, entry)
	if len(s.events) > s.maxEvents {
		s.events = s.events[1:]
	}
}

// GetRecentEvents returns the most recent N events, newest first
func (s *Store) GetRecentEvents(limit int) []models.PumpLogEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	events := make([]models.PumpLogEntry, len(s.events))
	copy(events, s.events)

	sort.Slice(events, func(i, j int) bool {
		return events[i].Timestamp.After(events[j].Timestamp)
	})

	if limit > 0 && len(events) > limit {
		events = events[:limit]
	}

	return events
}

// GetEventsByPump returns the most recent N events for one pump, newest first
func (s *Store) GetEventsByPump(pumpID string, limit int) []models.PumpLogEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var events []models.PumpLogEntry
	for _, event := range s.events {
		if event.PumpID == pumpID {
			events = append(events, event)
		}
	}

	sort.Slice(events, func(i, j int) bool {
		return events[i].Timestamp.After(events[j].Timestamp)
	})

	if limit > 0 && len(events) > limit {
		events = events[:limit]
	}

	return events
}

// GetEventsInRange returns events within a time range, oldest first
func (s *Store) GetEventsInRange(start, end time.Time) []models.PumpLogEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []models.PumpLogEntry
	for _, event := range s.events {
		if event.Timestamp.After(start) && event.Timestamp.Before(end) {
			result = append(result, event)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Timestamp.Before(result[j].Timestamp)
	})

	return result
}

// GetEventCount returns the number of stored events
func (s *Store) GetEventCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.events)
}

// GetActionCounts returns how many events were recorded per action type
func (s *Store) GetActionCounts() map[models.PumpAction]int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := make(map[models.PumpAction]int)
	for _, event := range s.events {
		counts[event.Action]++
	}
	return counts
}

// ClearEvents removes all stored events (useful for testing)
func (s *Store) ClearEvents() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.events = make([]models.PumpLogEntry, 0, s.maxEvents)
}
