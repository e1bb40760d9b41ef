package engine

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/Capstone-E1/pumpmatic_backend/config"
	"github.com/Capstone-E1/pumpmatic_backend/internal/models"
	"github.com/Capstone-E1/pumpmatic_backend/internal/sim"
)

// EventSink receives one record per state-changing pump action or
// informational event. Implementations must not block the control cycle;
// persistence failures are the sink's concern, never the controller's.
type EventSink interface {
	RecordPumpEvent(models.PumpLogEntry)
}

// SinkFunc adapts a plain function to an EventSink
type SinkFunc func(models.PumpLogEntry)

// RecordPumpEvent calls the function
func (f SinkFunc) RecordPumpEvent(entry models.PumpLogEntry) {
	f(entry)
}

// MultiSink fans one event out to several sinks in order
type MultiSink []EventSink

// RecordPumpEvent forwards the entry to every sink
func (m MultiSink) RecordPumpEvent(entry models.PumpLogEntry) {
	for _, s := range m {
		s.RecordPumpEvent(entry)
	}
}

// Controller orchestrates the periodic control cycle: it reads tank levels,
// advances the simulator, applies safety stops, manual overrides and the
// automatic pump rules in fixed priority order (P3, P1, P2).
//
// One mutex guards the whole cycle and the driver-facing API, so an external
// reader always sees either the pre-cycle or the fully-post-cycle state.
type Controller struct {
	mu       sync.Mutex
	cfg      config.AutomationConfig
	sim      *sim.Simulator
	pressure sim.PressureChecker
	sink     EventSink

	pumps          map[string]*Pump
	lastLevels     map[string]float64
	activeMeter    models.ActiveMeter
	isPeakHours    bool
	warnings       []string
	systemMessage  string
	manualOverride map[string]bool
}

// NewController creates the automation controller with fresh pumps
func NewController(cfg config.AutomationConfig, simulator *sim.Simulator, pressure sim.PressureChecker, sink EventSink) *Controller {
	c := &Controller{
		cfg:      cfg,
		sim:      simulator,
		pressure: pressure,
		sink:     sink,
		pumps: map[string]*Pump{
			models.PumpP1: NewPump(models.PumpP1),
			models.PumpP2: NewPump(models.PumpP2),
			models.PumpP3: NewPump(models.PumpP3),
		},
		lastLevels:     simulator.Levels(),
		activeMeter:    models.MeterGround,
		manualOverride: map[string]bool{models.PumpP1: false, models.PumpP2: false},
	}
	log.Println("🎛️  Automation controller initialized")
	return c
}

// RunControlCycle executes one cycle of the automation logic
func (c *Controller) RunControlCycle(now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.warnings = nil
	c.systemMessage = ""

	c.checkTimeConstraints(now)

	// Water moved during the interval since the last decision, driven by
	// last cycle's pump states; this cycle decides on the advanced levels
	c.sim.Tick(c.runningMap(), now.Hour())
	c.lastLevels = c.sim.Levels()

	mlLevel := c.lastLevels[sim.TankMainLine]
	ugLevel := c.lastLevels[sim.TankUnderground]
	ohLevel := c.lastLevels[sim.TankOverhead]

	c.safetySweep()
	c.applyManualOverrides(mlLevel)

	if !c.isPeakHours {
		c.runP3Rules(ugLevel, ohLevel)
		c.runP1Rules(mlLevel, ugLevel)
		c.runP2Rules(mlLevel, ugLevel, ohLevel)
	}
}

// checkTimeConstraints updates the peak-hour flag, the active meter and the
// cycle's base system message
func (c *Controller) checkTimeConstraints(now time.Time) {
	minutes := now.Hour()*60 + now.Minute()
	c.isPeakHours = minutes >= c.cfg.PeakStartMinute && minutes <= c.cfg.PeakEndMinute

	day := now.Day()
	if day >= c.cfg.GroundMeterFirstDay && day <= c.cfg.GroundMeterLastDay {
		c.activeMeter = models.MeterGround
	} else {
		c.activeMeter = models.MeterFirstFloor
	}

	if c.isPeakHours {
		c.systemMessage = fmt.Sprintf("Peak hours active (%s). Automatic pumping paused.", c.cfg.PeakWindowLabel())
	} else {
		c.systemMessage = fmt.Sprintf("Active Meter: %s", c.activeMeter)
	}
}

// safetySweep stops automatic pumps when peak hours start and faults any
// running pump that lost pressure
func (c *Controller) safetySweep() {
	for _, id := range models.PumpIDs {
		pump := c.pumps[id]
		if !pump.IsRunning() {
			continue
		}
		if c.isPeakHours && pump.State() != models.PumpStateManualOn {
			c.stopPump(id, "Peak hours started", models.ActionStop)
		} else if !c.pressure.Check(id) {
			reason := "Zero pressure detected during operation"
			pump.SetState(models.PumpStateError, reason)
			c.logAction(id, models.ActionError, reason, "")
		}
	}
}

// applyManualOverrides handles the user-forced run flags for P1 and P2.
// P1 carries a main-line level precondition; P2 has none.
func (c *Controller) applyManualOverrides(mlLevel float64) {
	p1 := c.pumps[models.PumpP1]
	if c.manualOverride[models.PumpP1] {
		switch {
		case c.isPeakHours:
			c.warnings = append(c.warnings, "P1 Manual Start ignored during peak hours.")
		case mlLevel < c.cfg.P1ManualBypassMinMainLine:
			c.warnings = append(c.warnings,
				fmt.Sprintf("P1 Manual Start failed: Main Line Tank < %.1f%%", c.cfg.P1ManualBypassMinMainLine))
			c.stopPump(models.PumpP1,
				fmt.Sprintf("Manual start condition not met (Main Line < %.1f%%)", c.cfg.P1ManualBypassMinMainLine),
				models.ActionStop)
		case !p1.IsRunning():
			c.startPump(models.PumpP1, "Manual Override Activated", true)
		}
	} else if p1.State() == models.PumpStateManualOn {
		// Keep a manual run going; only a pressure fault ends it here
		if !c.pressure.Check(models.PumpP1) {
			reason := "Zero pressure detected during manual operation"
			p1.SetState(models.PumpStateError, reason)
			c.logAction(models.PumpP1, models.ActionError, reason, "")
		}
	}

	p2 := c.pumps[models.PumpP2]
	if c.manualOverride[models.PumpP2] {
		switch {
		case c.isPeakHours:
			c.warnings = append(c.warnings, "P2 Manual Start ignored during peak hours.")
		case !p2.IsRunning():
			c.startPump(models.PumpP2, "Manual Override Activated", true)
		}
	} else if p2.State() == models.PumpStateManualOn {
		if !c.pressure.Check(models.PumpP2) {
			reason := "Zero pressure detected during manual operation"
			p2.SetState(models.PumpStateError, reason)
			c.logAction(models.PumpP2, models.ActionError, reason, "")
		}
	}
}

// runP3Rules applies the underground -> overhead rules. P3 has the highest
// priority since it feeds the household supply directly.
func (c *Controller) runP3Rules(ugLevel, ohLevel float64) {
	pump := c.pumps[models.PumpP3]
	if pump.State() == models.PumpStateError {
		return
	}

	switch {
	case pump.IsRunning() && ohLevel >= c.cfg.P3StartThresholdOverhead+c.cfg.HysteresisBuffer:
		c.stopPump(models.PumpP3, fmt.Sprintf("Overhead Tank reached %.1f%%", ohLevel), models.ActionStop)

	case pump.IsRunning() && ugLevel < c.cfg.P3StopThresholdUnderground:
		c.stopPump(models.PumpP3,
			fmt.Sprintf("Underground Tank fell below %.1f%%", c.cfg.P3StopThresholdUnderground),
			models.ActionStop)
		c.systemMessage = fmt.Sprintf("P3 stopped. Underground low (%.1f%%). Requesting fill.", ugLevel)
		// P1/P2 rules re-derive this request from the levels below

	case !pump.IsRunning() && ohLevel < c.cfg.P3StartThresholdOverhead:
		if ugLevel >= c.cfg.P3ReqUndergroundLevel {
			c.startPump(models.PumpP3,
				fmt.Sprintf("Overhead Tank < %.1f%%", c.cfg.P3StartThresholdOverhead), false)
		} else {
			c.systemMessage = fmt.Sprintf(
				"P3 needs to start (Overhead < %.1f%%) but Underground level (%.1f%%) is below required %.1f%%.",
				c.cfg.P3StartThresholdOverhead, ugLevel, c.cfg.P3ReqUndergroundLevel)
		}
	}

	if pump.IsRunning() {
		if ohLevel < c.cfg.P3WarnThresholdOverhead {
			c.warnings = append(c.warnings,
				fmt.Sprintf("Warning: P3 running with Overhead Tank level low (%.1f%% < %.1f%%)",
					ohLevel, c.cfg.P3WarnThresholdOverhead))
		}
		if ugLevel >= c.cfg.P3WarnThresholdUndergroundLow && ugLevel < c.cfg.P3WarnThresholdUndergroundHigh {
			c.warnings = append(c.warnings,
				fmt.Sprintf("Warning: P3 running with Underground Tank level low (%.1f%%)", ugLevel))
		}
	}
}

// runP1Rules applies the main line -> underground rules
func (c *Controller) runP1Rules(mlLevel, ugLevel float64) {
	pump := c.pumps[models.PumpP1]
	if pump.State() == models.PumpStateError || pump.State() == models.PumpStateManualOn {
		return
	}

	if pump.IsRunning() {
		if mlLevel < c.cfg.P1StopThresholdMainLine {
			c.stopPump(models.PumpP1,
				fmt.Sprintf("Main Line Tank < %.1f%%", c.cfg.P1StopThresholdMainLine), models.ActionStop)
		} else if ugLevel >= c.cfg.P3SignalTargetUnderground+c.cfg.HysteresisBuffer {
			c.stopPump(models.PumpP1,
				fmt.Sprintf("Underground Tank reached target level (%.1f%%)", ugLevel), models.ActionStop)
		}
		return
	}

	// Start if the underground tank is low on its own account or P3 needs
	// more water than it has
	needsFill := ugLevel < c.cfg.P1StartThresholdUnderground || ugLevel < c.cfg.P3ReqUndergroundLevel
	if needsFill && mlLevel >= c.cfg.P1ReqMainLineLevel {
		threshold := c.cfg.P1StartThresholdUnderground
		if c.cfg.P3ReqUndergroundLevel > threshold {
			threshold = c.cfg.P3ReqUndergroundLevel
		}
		c.startPump(models.PumpP1, fmt.Sprintf("Underground Tank < %.1f%%", threshold), false)
	} else if needsFill {
		c.systemMessage = fmt.Sprintf(
			"P1 cannot start: Underground needs fill (%.1f%%) but Main Line level (%.1f%%) is below required %.1f%%.",
			ugLevel, mlLevel, c.cfg.P1ReqMainLineLevel)
	}
}

// runP2Rules applies the boring well -> underground backup rules
func (c *Controller) runP2Rules(mlLevel, ugLevel, ohLevel float64) {
	pump := c.pumps[models.PumpP2]
	if pump.State() == models.PumpStateError || pump.State() == models.PumpStateManualOn {
		return
	}

	if pump.IsRunning() {
		if ugLevel >= c.cfg.P2StopThresholdUnderground {
			c.stopPump(models.PumpP2,
				fmt.Sprintf("Underground Tank reached %.1f%%", c.cfg.P2StopThresholdUnderground), models.ActionStop)
		}
		return
	}

	criticalLevels := mlLevel < c.cfg.P2StartThresholdMainLine &&
		ugLevel < c.cfg.P2StartThresholdUnderground &&
		ohLevel < c.cfg.P2StartThresholdOverhead
	// P3 needs water and P1 structurally cannot help
	p3NeedsWaterP1Cant := ugLevel < c.cfg.P3ReqUndergroundLevel && mlLevel < c.cfg.P1ReqMainLineLevel

	if criticalLevels {
		c.startPump(models.PumpP2, "Critical low levels detected in all tanks", false)
	} else if p3NeedsWaterP1Cant {
		c.startPump(models.PumpP2,
			fmt.Sprintf("Backup needed: P3 requires water and P1 cannot run (Main Line %.1f%%)", mlLevel), false)
	}
}

// startPump attempts to start a pump after a pressure check. Returns true if
// the pump ends up running, false if the check faulted it.
func (c *Controller) startPump(pumpID, reason string, manual bool) bool {
	pump := c.pumps[pumpID]
	if pump.IsRunning() {
		return true
	}

	if c.pressure.Check(pumpID) {
		newState := models.PumpStateOn
		action := models.ActionStart
		if manual {
			newState = models.PumpStateManualOn
			action = models.ActionManualStart
		}
		pump.SetState(newState, reason)
		c.logAction(pumpID, action, reason, "")
		return true
	}

	errorReason := "Zero pressure detected"
	pump.SetState(models.PumpStateError, errorReason)
	c.logAction(pumpID, models.ActionError, errorReason, "")
	return false
}

// stopPump stops a running pump and records the action; a no-op for pumps
// that are not running
func (c *Controller) stopPump(pumpID, reason string, action models.PumpAction) {
	pump := c.pumps[pumpID]
	if pump.IsRunning() {
		pump.SetState(models.PumpStateOff, reason)
		c.logAction(pumpID, action, reason, "")
	}
}

// RequestManualOverride enables or disables the manual-run intent for a
// pump. Enabling a faulted pump is rejected with a warning; disabling a
// manually running pump stops it immediately. The actual manual start
// happens on the next control cycle.
func (c *Controller) RequestManualOverride(pumpID string, enable bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.manualOverride[pumpID]; !ok {
		return
	}

	if enable && c.pumps[pumpID].State() == models.PumpStateError {
		log.Printf("⚠️  Cannot enable manual override for %s, pump is in ERROR state", pumpID)
		c.warnings = append(c.warnings,
			fmt.Sprintf("Cannot manually start %s while in ERROR state.", pumpID))
		return
	}

	c.manualOverride[pumpID] = enable
	log.Printf("Manual override for %s set to %t", pumpID, enable)

	if !enable {
		pump := c.pumps[pumpID]
		if pump.State() == models.PumpStateManualOn {
			pump.SetState(models.PumpStateOff, "Manual override disabled")
			c.logAction(pumpID, models.ActionManualStop, "Manual override disabled", "")
		}
	}
}

// ResetPumpError clears the ERROR state of a pump back to OFF. Any other
// state is a logged no-op.
func (c *Controller) ResetPumpError(pumpID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	pump, ok := c.pumps[pumpID]
	if !ok {
		return
	}

	if pump.State() == models.PumpStateError {
		pump.SetState(models.PumpStateOff, "Error reset by user")
		c.logAction(pumpID, models.ActionInfo, "Error reset by user", "")
		log.Printf("Error state for pump %s reset", pumpID)
	} else {
		log.Printf("⚠️  Attempted to reset error on pump %s, but it was not in error state", pumpID)
	}
}

// ResetSimulation replaces the tanks at the given (or default) starting
// percentages and re-creates all pumps and per-cycle context
func (c *Controller) ResetSimulation(initialPct map[string]float64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.sim.Reset(initialPct)
	c.pumps = map[string]*Pump{
		models.PumpP1: NewPump(models.PumpP1),
		models.PumpP2: NewPump(models.PumpP2),
		models.PumpP3: NewPump(models.PumpP3),
	}
	c.manualOverride = map[string]bool{models.PumpP1: false, models.PumpP2: false}
	c.warnings = nil
	c.systemMessage = ""
	c.lastLevels = c.sim.Levels()
	log.Println("🔄 Simulation state reset")
}

// RefreshTimeContext recomputes the peak-hour flag and active meter without
// running a cycle. The driver calls this while paused so the dashboard keeps
// showing the right schedule state.
func (c *Controller) RefreshTimeContext(now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.checkTimeConstraints(now)
}

// Snapshot returns a consistent read-only view of pumps, tanks and cycle
// context
func (c *Controller) Snapshot() models.SystemSnapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	pumps := make([]models.PumpStatus, 0, len(models.PumpIDs))
	for _, id := range models.PumpIDs {
		pumps = append(pumps, c.pumps[id].Status())
	}

	levels := make(map[string]float64, len(c.lastLevels))
	for name, pct := range c.lastLevels {
		levels[name] = pct
	}

	warnings := make([]string, len(c.warnings))
	copy(warnings, c.warnings)

	overrides := make(map[string]bool, len(c.manualOverride))
	for id, enabled := range c.manualOverride {
		overrides[id] = enabled
	}

	return models.SystemSnapshot{
		Timestamp:      time.Now(),
		Pumps:          pumps,
		TankLevels:     levels,
		Warnings:       warnings,
		SystemMessage:  c.systemMessage,
		ManualOverride: overrides,
		ActiveMeter:    c.activeMeter,
		IsPeakHours:    c.isPeakHours,
	}
}

// PumpState returns the current state of one pump
func (c *Controller) PumpState(pumpID string) (models.PumpState, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	pump, ok := c.pumps[pumpID]
	if !ok {
		return "", false
	}
	return pump.State(), true
}

// runningMap reports which pumps are currently moving water. Callers must
// hold the controller lock.
func (c *Controller) runningMap() map[string]bool {
	running := make(map[string]bool, len(c.pumps))
	for id, pump := range c.pumps {
		running[id] = pump.IsRunning()
	}
	return running
}

// logAction records an event with the levels and meter observed this cycle
func (c *Controller) logAction(pumpID string, action models.PumpAction, reason, details string) {
	if c.sink == nil {
		return
	}
	c.sink.RecordPumpEvent(models.PumpLogEntry{
		Timestamp:      time.Now(),
		PumpID:         pumpID,
		Action:         action,
		Reason:         reason,
		MainLinePct:    c.lastLevels[sim.TankMainLine],
		UndergroundPct: c.lastLevels[sim.TankUnderground],
		OverheadPct:    c.lastLevels[sim.TankOverhead],
		ActiveMeter:    c.activeMeter,
		Details:        details,
	})
}
