package models

// PumpState represents the operating state of a water pump
type PumpState string

const (
	PumpStateOff      PumpState = "OFF"
	PumpStateOn       PumpState = "ON"
	PumpStateManualOn PumpState = "MANUAL_ON"
	PumpStateError    PumpState = "ERROR"
)

// Pump identifiers for the three pumps in the system
const (
	PumpP1 = "P1" // Main line -> underground
	PumpP2 = "P2" // Boring well -> underground
	PumpP3 = "P3" // Underground -> overhead
)

// PumpIDs lists all pump identifiers in evaluation order
var PumpIDs = []string{PumpP1, PumpP2, PumpP3}

// IsValidPumpID checks whether the given ID names a known pump
func IsValidPumpID(id string) bool {
	return id == PumpP1 || id == PumpP2 || id == PumpP3
}

// IsRunning reports whether a pump in this state is moving water
func (s PumpState) IsRunning() bool {
	return s == PumpStateOn || s == PumpStateManualOn
}

// PumpStatus is the read-only display view of a single pump
type PumpStatus struct {
	ID           string    `json:"id"`
	State        PumpState `json:"state"`
	DisplayLabel string    `json:"display_label"`
	DisplayColor string    `json:"display_color"`
	LastReason   string    `json:"last_reason,omitempty"`
}

// StatusDisplay returns the dashboard label and color for a pump state.
// The reason is folded into the label only for faulted pumps.
func StatusDisplay(state PumpState, reason string) (string, string) {
	switch state {
	case PumpStateOn:
		return "ON (Auto)", "green"
	case PumpStateManualOn:
		return "ON (Manual)", "orange"
	case PumpStateOff:
		return "OFF", "grey"
	case PumpStateError:
		if reason != "" {
			return "ERROR (" + reason + ")", "red"
		}
		return "ERROR", "red"
	}
	return "Unknown", "black"
}
