package models

import (
	"time"
)

// SystemSnapshot is the read-only view of the whole system handed to the
// dashboard, the WebSocket hub and the MQTT state topic. It is built under
// the controller's lock so a reader never observes a half-applied cycle.
type SystemSnapshot struct {
	Timestamp      time.Time          `json:"timestamp"`
	Pumps          []PumpStatus       `json:"pumps"`
	TankLevels     map[string]float64 `json:"tank_levels"`
	Warnings       []string           `json:"warnings"`
	SystemMessage  string             `json:"system_message,omitempty"`
	ManualOverride map[string]bool    `json:"manual_override"`
	ActiveMeter    ActiveMeter        `json:"active_meter"`
	IsPeakHours    bool               `json:"is_peak_hours"`
	Paused         bool               `json:"paused,omitempty"`
}
