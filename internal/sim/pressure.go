package sim

import (
	"log"
)

// PressureChecker answers whether a pump currently has usable pressure.
// A false return simulates a zero-pressure fault. Implementations must be
// side-effect free so the controller can call them at any point in a cycle.
type PressureChecker interface {
	Check(pumpID string) bool
}

// RandomPressure injects a low-probability zero-pressure fault per check
type RandomPressure struct {
	rand        Rand
	probability float64
}

// NewRandomPressure creates the default fault injector
func NewRandomPressure(rnd Rand, probability float64) *RandomPressure {
	return &RandomPressure{rand: rnd, probability: probability}
}

// Check returns false with the configured fault probability
func (p *RandomPressure) Check(pumpID string) bool {
	if p.rand.Float64() < p.probability {
		log.Printf("⚠️  Simulated zero pressure for %s", pumpID)
		return false
	}
	return true
}

// StaticPressure always answers the same for every pump. Used by tests and
// the simulation reset path to force deterministic behavior.
type StaticPressure struct {
	OK bool
}

// Check returns the fixed answer
func (p StaticPressure) Check(string) bool {
	return p.OK
}
