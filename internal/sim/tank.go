package sim

// Tank models a single water tank. Volume is clamped to [0, capacity];
// callers learn about overflow or shortfall through the return values of
// AddWater and RemoveWater rather than by observing an out-of-range volume.
type Tank struct {
	Name     string
	Capacity float64
	volume   float64
}

// NewTank creates a tank filled to the given starting percentage
func NewTank(name string, capacity, initialLevelPct float64) *Tank {
	return &Tank{
		Name:     name,
		Capacity: capacity,
		volume:   (initialLevelPct / 100.0) * capacity,
	}
}

// Volume returns the current water volume in liters
func (t *Tank) Volume() float64 {
	return t.volume
}

// LevelPercentage returns the current fill level, clamped to [0, 100]
func (t *Tank) LevelPercentage() float64 {
	pct := (t.volume / t.Capacity) * 100.0
	if pct < 0 {
		return 0
	}
	if pct > 100 {
		return 100
	}
	return pct
}

// AddWater adds volume to the tank, capped at capacity, and returns the
// overflow that could not be absorbed
func (t *Tank) AddWater(volume float64) float64 {
	potential := t.volume + volume
	overflow := potential - t.Capacity
	if overflow < 0 {
		overflow = 0
	}
	if potential > t.Capacity {
		potential = t.Capacity
	}
	t.volume = potential
	return overflow
}

// RemoveWater removes up to volume from the tank and returns the amount
// actually removed. You can't draw more water than exists.
func (t *Tank) RemoveWater(volume float64) float64 {
	removed := volume
	if removed > t.volume {
		removed = t.volume
	}
	t.volume -= removed
	return removed
}
