package store

import (
	"fmt"
	"testing"
	"time"

	"github.com/Capstone-E1/pumpmatic_backend/internal/models"
)

func entryAt(pumpID string, action models.PumpAction, ts time.Time) models.PumpLogEntry {
	return models.PumpLogEntry{
		Timestamp: ts,
		PumpID:    pumpID,
		Action:    action,
		Reason:    "test",
	}
}

func TestStore_RecordAndCount(t *testing.T) {
	store := NewStore(100)

	if store.GetEventCount() != 0 {
		t.Errorf("Expected empty store, got %d events", store.GetEventCount())
	}

	now := time.Now()
	store.RecordPumpEvent(entryAt(models.PumpP1, models.ActionStart, now))
	store.RecordPumpEvent(entryAt(models.PumpP1, models.ActionStop, now.Add(time.Second)))

	if store.GetEventCount() != 2 {
		t.Errorf("Expected 2 events, got %d", store.GetEventCount())
	}
}

func TestStore_AssignsSequentialIDs(t *testing.T) {
	store := NewStore(100)

	now := time.Now()
	store.RecordPumpEvent(entryAt(models.PumpP1, models.ActionStart, now))
	store.RecordPumpEvent(entryAt(models.PumpP2, models.ActionStart, now.Add(time.Second)))

	events := store.GetRecentEvents(10)
	if len(events) != 2 {
		t.Fatalf("Expected 2 events, got %d", len(events))
	}
	// Newest first
	if events[0].ID != 2 || events[1].ID != 1 {
		t.Errorf("Expected IDs [2, 1], got [%d, %d]", events[0].ID, events[1].ID)
	}
}

func TestStore_GetRecentEvents_NewestFirst(t *testing.T) {
	store := NewStore(100)

	base := time.Now()
	for i := 0; i < 5; i++ {
		store.RecordPumpEvent(entryAt(models.PumpP1, models.ActionInfo, base.Add(time.Duration(i)*time.Second)))
	}

	events := store.GetRecentEvents(3)
	if len(events) != 3 {
		t.Fatalf("Expected 3 events with limit, got %d", len(events))
	}
	for i := 1; i < len(events); i++ {
		if events[i].Timestamp.After(events[i-1].Timestamp) {
			t.Error("Expected events ordered newest first")
		}
	}
}

func TestStore_GetEventsByPump(t *testing.T) {
	store := NewStore(100)

	base := time.Now()
	store.RecordPumpEvent(entryAt(models.PumpP1, models.ActionStart, base))
	store.RecordPumpEvent(entryAt(models.PumpP2, models.ActionStart, base.Add(time.Second)))
	store.RecordPumpEvent(entryAt(models.PumpP1, models.ActionStop, base.Add(2*time.Second)))

	events := store.GetEventsByPump(models.PumpP1, 10)
	if len(events) != 2 {
		t.Fatalf("Expected 2 events for P1, got %d", len(events))
	}
	for _, event := range events {
		if event.PumpID != models.PumpP1 {
			t.Errorf("Expected only P1 events, got %s", event.PumpID)
		}
	}
}

func TestStore_GetEventsInRange(t *testing.T) {
	store := NewStore(100)

	base := time.Date(2026, 8, 10, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 10; i++ {
		store.RecordPumpEvent(entryAt(models.PumpP3, models.ActionInfo, base.Add(time.Duration(i)*time.Minute)))
	}

	events := store.GetEventsInRange(base.Add(2*time.Minute), base.Add(6*time.Minute))
	// Range bounds are exclusive: minutes 3, 4, 5
	if len(events) != 3 {
		t.Fatalf("Expected 3 events in range, got %d", len(events))
	}
	for i := 1; i < len(events); i++ {
		if events[i].Timestamp.Before(events[i-1].Timestamp) {
			t.Error("Expected range results ordered oldest first")
		}
	}
}

func TestStore_BoundedWindowEviction(t *testing.T) {
	store := NewStore(5)

	base := time.Now()
	for i := 0; i < 8; i++ {
		store.RecordPumpEvent(entryAt(models.PumpP1, models.ActionInfo, base.Add(time.Duration(i)*time.Second)))
	}

	if store.GetEventCount() != 5 {
		t.Errorf("Expected window capped at 5 events, got %d", store.GetEventCount())
	}

	// Oldest entries evicted: lowest surviving ID is 4
	events := store.GetRecentEvents(0)
	for _, event := range events {
		if event.ID < 4 {
			t.Errorf("Expected events 1-3 evicted, found ID %d", event.ID)
		}
	}
}

func TestStore_GetActionCounts(t *testing.T) {
	store := NewStore(100)

	now := time.Now()
	store.RecordPumpEvent(entryAt(models.PumpP1, models.ActionStart, now))
	store.RecordPumpEvent(entryAt(models.PumpP1, models.ActionStop, now))
	store.RecordPumpEvent(entryAt(models.PumpP2, models.ActionStart, now))
	store.RecordPumpEvent(entryAt(models.PumpP3, models.ActionError, now))

	counts := store.GetActionCounts()
	if counts[models.ActionStart] != 2 {
		t.Errorf("Expected 2 START events, got %d", counts[models.ActionStart])
	}
	if counts[models.ActionStop] != 1 {
		t.Errorf("Expected 1 STOP event, got %d", counts[models.ActionStop])
	}
	if counts[models.ActionError] != 1 {
		t.Errorf("Expected 1 ERROR event, got %d", counts[models.ActionError])
	}
}

func TestStore_ClearEvents(t *testing.T) {
	store := NewStore(100)

	store.RecordPumpEvent(entryAt(models.PumpP1, models.ActionStart, time.Now()))
	store.ClearEvents()

	if store.GetEventCount() != 0 {
		t.Errorf("Expected empty store after clear, got %d events", store.GetEventCount())
	}
}

func TestStore_FillsZeroTimestamp(t *testing.T) {
	store := NewStore(100)

	store.RecordPumpEvent(models.PumpLogEntry{PumpID: models.PumpP1, Action: models.ActionInfo})

	events := store.GetRecentEvents(1)
	if len(events) != 1 {
		t.Fatal("Expected 1 event")
	}
	if events[0].Timestamp.IsZero() {
		t.Error("Expected store to assign a timestamp to zero-time entries")
	}
}

func TestAsyncRecorder_DeliversToStore(t *testing.T) {
	store := NewStore(100)
	recorder := NewAsyncRecorder(store, 16)

	base := time.Now()
	for i := 0; i < 10; i++ {
		recorder.RecordPumpEvent(entryAt(models.PumpP1, models.ActionInfo, base.Add(time.Duration(i)*time.Millisecond)))
	}

	// Stop drains everything already queued
	recorder.Stop()

	if store.GetEventCount() != 10 {
		t.Errorf("Expected 10 events delivered, got %d", store.GetEventCount())
	}
}

func TestAsyncRecorder_NeverBlocksCaller(t *testing.T) {
	// A store that blocks forever must not stall the producer
	blocked := make(chan struct{})
	slow := &blockingStore{unblock: blocked}
	recorder := NewAsyncRecorder(slow, 2)

	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			recorder.RecordPumpEvent(models.PumpLogEntry{
				PumpID: models.PumpP1,
				Action: models.ActionInfo,
				Reason: fmt.Sprintf("event %d", i),
			})
		}
		close(done)
	}()

	select {
	case <-done:
		// Producer finished despite the blocked store; excess events dropped
	case <-time.After(2 * time.Second):
		t.Fatal("RecordPumpEvent blocked the caller")
	}

	close(blocked)
}

// blockingStore stalls writes until unblocked
type blockingStore struct {
	unblock chan struct{}
}

func (s *blockingStore) Ping() error { return nil }

func (s *blockingStore) RecordPumpEvent(models.PumpLogEntry) {
	<-s.unblock
}

func (s *blockingStore) GetRecentEvents(int) []models.PumpLogEntry            { return nil }
func (s *blockingStore) GetEventsByPump(string, int) []models.PumpLogEntry    { return nil }
func (s *blockingStore) GetEventsInRange(_, _ time.Time) []models.PumpLogEntry { return nil }
func (s *blockingStore) GetEventCount() int                                   { return 0 }
func (s *blockingStore) GetActionCounts() map[models.PumpAction]int           { return nil }
