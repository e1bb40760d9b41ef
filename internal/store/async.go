package store

import (
	"log"

	"github.com/Capstone-E1/pumpmatic_backend/internal/models"
)

// AsyncRecorder decouples the control cycle from event persistence: records
// go into a buffered channel and a single worker drains them into the
// underlying store. When the buffer is full the entry is dropped with a log
// line — a stalled database must never block the next cycle's decisions.
type AsyncRecorder struct {
	store  EventStore
	queue  chan models.PumpLogEntry
	done   chan struct{}
	closed chan struct{}
}

// NewAsyncRecorder starts the recorder worker with the given buffer size
func NewAsyncRecorder(store EventStore, bufferSize int) *AsyncRecorder {
	if bufferSize <= 0 {
		bufferSize = 256
	}
	r := &AsyncRecorder{
		store:  store,
		queue:  make(chan models.PumpLogEntry, bufferSize),
		done:   make(chan struct{}),
		closed: make(chan struct{}),
	}
	go r.run()
	return r
}

// RecordPumpEvent queues the entry without blocking
func (r *AsyncRecorder) RecordPumpEvent(entry models.PumpLogEntry) {
	select {
	case r.queue <- entry:
	default:
		log.Printf("⚠️  Event queue full, dropping %s event for %s", entry.Action, entry.PumpID)
	}
}

// Stop drains the queue and stops the worker
func (r *AsyncRecorder) Stop() {
	close(r.done)
	<-r.closed
}

func (r *AsyncRecorder) run() {
	defer close(r.closed)
	for {
		select {
		case entry := <-r.queue:
			r.store.RecordPumpEvent(entry)
		case <-r.done:
			// Drain what is already queued before exiting
			for {
				select {
				case entry := <-r.queue:
					r.store.RecordPumpEvent(entry)
				default:
					return
				}
			}
		}
	}
}
