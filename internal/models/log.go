package models

import (
	"time"
)

// PumpAction classifies a logged pump event
type PumpAction string

const (
	ActionStart       PumpAction = "START"
	ActionStop        PumpAction = "STOP"
	ActionError       PumpAction = "ERROR"
	ActionInfo        PumpAction = "INFO"
	ActionManualStart PumpAction = "MANUAL_START"
	ActionManualStop  PumpAction = "MANUAL_STOP"
)

// ValidActions lists every accepted pump action value
var ValidActions = []PumpAction{
	ActionStart, ActionStop, ActionError, ActionInfo, ActionManualStart, ActionManualStop,
}

// IsValid checks whether the action is one of the known values
func (a PumpAction) IsValid() bool {
	for _, v := range ValidActions {
		if a == v {
			return true
		}
	}
	return false
}

// PumpLogEntry is one durable record of a state-changing action or event.
// Tank levels are captured as the percentages observed when the event fired.
type PumpLogEntry struct {
	ID             int         `json:"id,omitempty"`
	Timestamp      time.Time   `json:"timestamp"`
	PumpID         string      `json:"pump_id"`
	Action         PumpAction  `json:"action"`
	Reason         string      `json:"reason"`
	MainLinePct    float64     `json:"main_line_level_pct"`
	UndergroundPct float64     `json:"underground_level_pct"`
	OverheadPct    float64     `json:"overhead_level_pct"`
	ActiveMeter    ActiveMeter `json:"active_meter"`
	Details        string      `json:"details,omitempty"`
}

// ActiveMeter identifies which electricity meter is billed for the current period
type ActiveMeter string

const (
	MeterGround     ActiveMeter = "Ground"
	MeterFirstFloor ActiveMeter = "First Floor"
)
