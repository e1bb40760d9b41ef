package engine

import (
	"log"

	"github.com/Capstone-E1/pumpmatic_backend/internal/models"
)

// Pump is a dumb state holder for one physical pump. It accepts any
// transition; every eligibility rule (peak hours, levels, manual flags)
// lives in the Controller.
type Pump struct {
	id         string
	state      models.PumpState
	lastReason string
}

// NewPump creates a pump in the OFF state
func NewPump(id string) *Pump {
	p := &Pump{id: id, state: models.PumpStateOff}
	log.Printf("Pump %s initialized in state %s", id, p.state)
	return p
}

// ID returns the pump identifier
func (p *Pump) ID() string {
	return p.id
}

// State returns the current state
func (p *Pump) State() models.PumpState {
	return p.state
}

// LastReason returns the human-readable cause of the most recent transition
func (p *Pump) LastReason() string {
	return p.lastReason
}

// IsRunning reports whether the pump is moving water (ON or MANUAL_ON)
func (p *Pump) IsRunning() bool {
	return p.state.IsRunning()
}

// SetState applies a transition. Setting the current state again is a no-op,
// with one exception: re-asserting ERROR with a different reason refreshes
// the stored reason so repeated faults update the displayed cause.
func (p *Pump) SetState(newState models.PumpState, reason string) {
	if p.state == newState {
		if newState == models.PumpStateError && p.lastReason != reason {
			p.lastReason = reason
			log.Printf("⚠️  Pump %s updated error reason: %s", p.id, reason)
		}
		return
	}

	oldState := p.state
	p.state = newState
	p.lastReason = reason
	log.Printf("Pump %s state changed from %s to %s. Reason: %s", p.id, oldState, newState, reason)
}

// Status returns the display view of the pump
func (p *Pump) Status() models.PumpStatus {
	label, color := models.StatusDisplay(p.state, p.lastReason)
	return models.PumpStatus{
		ID:           p.id,
		State:        p.state,
		DisplayLabel: label,
		DisplayColor: color,
		LastReason:   p.lastReason,
	}
}
