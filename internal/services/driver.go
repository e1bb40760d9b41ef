package services

import (
	"log"
	"sync"
	"time"

	"github.com/Capstone-E1/pumpmatic_backend/internal/engine"
	"github.com/Capstone-E1/pumpmatic_backend/internal/models"
)

// SnapshotPublisher receives the system snapshot produced after each cycle
type SnapshotPublisher interface {
	PublishSnapshot(models.SystemSnapshot)
}

// CycleDriver runs the automation control loop on a fixed period. It is the
// only caller of RunControlCycle, which gives the controller its guarantee
// of at most one cycle executing at a time.
type CycleDriver struct {
	controller *engine.Controller
	publishers []SnapshotPublisher
	interval   time.Duration

	ticker    *time.Ticker
	stopChan  chan bool
	mu        sync.RWMutex
	isRunning bool
	isPaused  bool
}

// NewCycleDriver creates a new driver for the given controller
func NewCycleDriver(controller *engine.Controller, interval time.Duration, publishers ...SnapshotPublisher) *CycleDriver {
	if interval <= 0 {
		interval = time.Second
	}
	return &CycleDriver{
		controller: controller,
		publishers: publishers,
		interval:   interval,
		stopChan:   make(chan bool),
	}
}

// Start begins the control loop background process
func (d *CycleDriver) Start() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.isRunning {
		log.Println("⚠️  Cycle driver: Already running")
		return
	}

	d.ticker = time.NewTicker(d.interval)
	d.isRunning = true

	log.Printf("🕐 Cycle driver: Started - running control cycle every %s", d.interval)

	go d.run()
}

// Stop halts the control loop
func (d *CycleDriver) Stop() {
	d.mu.Lock()
	if !d.isRunning {
		d.mu.Unlock()
		return
	}
	d.ticker.Stop()
	d.isRunning = false
	d.mu.Unlock()

	// Signal outside the lock: the loop may be mid-step and needs the lock
	// to finish before it can receive
	d.stopChan <- true

	log.Println("🛑 Cycle driver: Stopped")
}

// Pause suspends control cycles. Tank and pump states freeze; the time
// context (peak hours, active meter) keeps updating.
func (d *CycleDriver) Pause() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.isPaused {
		d.isPaused = true
		log.Println("⏸️  Cycle driver: Paused")
	}
}

// Resume restarts control cycles after a pause
func (d *CycleDriver) Resume() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.isPaused {
		d.isPaused = false
		log.Println("▶️  Cycle driver: Resumed")
	}
}

// IsPaused reports whether the driver is currently paused
func (d *CycleDriver) IsPaused() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.isPaused
}

// IsRunning reports whether the loop is active
func (d *CycleDriver) IsRunning() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.isRunning
}

// run is the main control loop
func (d *CycleDriver) run() {
	// Run one cycle immediately on start
	d.step(time.Now())

	for {
		select {
		case <-d.ticker.C:
			d.step(time.Now())
		case <-d.stopChan:
			return
		}
	}
}

// Step executes one driver step at the given time: a full control cycle, or
// only a time-context refresh while paused. Exposed for tests.
func (d *CycleDriver) Step(now time.Time) {
	d.step(now)
}

func (d *CycleDriver) step(now time.Time) {
	if d.IsPaused() {
		d.controller.RefreshTimeContext(now)
	} else {
		d.controller.RunControlCycle(now)
	}

	snapshot := d.controller.Snapshot()
	snapshot.Paused = d.IsPaused()
	for _, p := range d.publishers {
		p.PublishSnapshot(snapshot)
	}
}
