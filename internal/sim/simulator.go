package sim

import (
	"log"

	"github.com/Capstone-E1/pumpmatic_backend/config"
	"github.com/Capstone-E1/pumpmatic_backend/internal/models"
)

// Tank names used throughout the system
const (
	TankMainLine    = "main_line"
	TankUnderground = "underground"
	TankOverhead    = "overhead"
)

// Default starting levels used when a reset gives none
const (
	DefaultMainLinePct    = 20.0
	DefaultUndergroundPct = 30.0
	DefaultOverheadPct    = 50.0
)

// Rand is the injectable randomness source for flow variance and pressure
// faults. *rand.Rand satisfies it; tests substitute a fixed sequence.
type Rand interface {
	Float64() float64
}

// Simulator owns the three tanks and is the sole mutator of water state.
// Everything else reads levels through Levels().
type Simulator struct {
	cfg   config.AutomationConfig
	rand  Rand
	tanks map[string]*Tank
}

// NewSimulator creates a simulator with tanks at the default starting levels
func NewSimulator(cfg config.AutomationConfig, rnd Rand) *Simulator {
	s := &Simulator{cfg: cfg, rand: rnd}
	s.Reset(nil)
	return s
}

// Reset replaces all three tanks with fresh instances at the given starting
// percentages, falling back to the defaults for any tank not specified.
// Prior volumes are fully discarded.
func (s *Simulator) Reset(initialPct map[string]float64) {
	levels := map[string]float64{
		TankMainLine:    DefaultMainLinePct,
		TankUnderground: DefaultUndergroundPct,
		TankOverhead:    DefaultOverheadPct,
	}
	for name, pct := range initialPct {
		if _, ok := levels[name]; ok {
			levels[name] = pct
		}
	}

	s.tanks = map[string]*Tank{
		TankMainLine:    NewTank("Main Line Tank", s.cfg.MainLineTankCapacity, levels[TankMainLine]),
		TankUnderground: NewTank("Underground Tank", s.cfg.UndergroundTankCapacity, levels[TankUnderground]),
		TankOverhead:    NewTank("Overhead Tank", s.cfg.OverheadTankCapacity, levels[TankOverhead]),
	}
	log.Println("💧 Simulation tanks reset")
}

// Tick advances all tanks by one simulation step. The order is fixed:
// city supply, P1, P2, P3, household draw — later steps see the volumes the
// earlier steps just changed.
func (s *Simulator) Tick(pumpRunning map[string]bool, wallClockHour int) {
	dt := s.cfg.SimulationStep.Seconds()

	// City supply into the main line during the supply window, with
	// +/-20% variance to model a real feed
	if wallClockHour >= s.cfg.CitySupplyStartHour && wallClockHour < s.cfg.CitySupplyEndHour {
		variation := 0.8 + 0.4*s.rand.Float64()
		s.tanks[TankMainLine].AddWater(s.cfg.CitySupplyFlowRate * variation * dt)
	}

	// P1 moves main line water underground; only what was actually drawn
	// is transferred
	if pumpRunning[models.PumpP1] {
		drawn := s.tanks[TankMainLine].RemoveWater(s.cfg.P1FlowRate * dt)
		s.tanks[TankUnderground].AddWater(drawn)
	}

	// P2 draws from the boring well, which has no upstream limit
	if pumpRunning[models.PumpP2] {
		s.tanks[TankUnderground].AddWater(s.cfg.P2FlowRate * dt)
	}

	// P3 lifts underground water to the overhead tank
	if pumpRunning[models.PumpP3] {
		drawn := s.tanks[TankUnderground].RemoveWater(s.cfg.P3FlowRate * dt)
		s.tanks[TankOverhead].AddWater(drawn)
	}

	// Household consumption runs whether or not any pump does
	s.tanks[TankOverhead].RemoveWater(s.cfg.HouseholdConsumption * dt)
}

// Levels returns the current fill percentage per tank
func (s *Simulator) Levels() map[string]float64 {
	levels := make(map[string]float64, len(s.tanks))
	for name, tank := range s.tanks {
		levels[name] = tank.LevelPercentage()
	}
	return levels
}

// Tank returns the named tank, or nil if unknown. Exposed for tests and
// inspection; mutation stays inside the simulator.
func (s *Simulator) Tank(name string) *Tank {
	return s.tanks[name]
}
