package services

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Capstone-E1/pumpmatic_backend/internal/models"
)

// PumpCommand is a manual-override request arriving over MQTT or HTTP
type PumpCommand struct {
	PumpID string `json:"pump_id"`
	Enable bool   `json:"enable"`
}

// CommandParser handles parsing of pump commands from various sources
type CommandParser struct{}

// NewCommandParser creates a new instance of CommandParser
func NewCommandParser() *CommandParser {
	return &CommandParser{}
}

// ParseCommandJSON parses a JSON command payload, the preferred format:
// {"pump_id":"P1","enable":true}
func (cp *CommandParser) ParseCommandJSON(payload []byte) (*PumpCommand, error) {
	var cmd PumpCommand

	if err := json.Unmarshal(payload, &cmd); err != nil {
		return nil, fmt.Errorf("failed to parse command JSON: %w", err)
	}

	if !models.IsValidPumpID(cmd.PumpID) {
		return nil, fmt.Errorf("invalid pump id in command: %q", cmd.PumpID)
	}

	return &cmd, nil
}

// ParseCommandString parses the comma-separated fallback format:
// "P1,on" or "P2,off"
func (cp *CommandParser) ParseCommandString(payload string) (*PumpCommand, error) {
	parts := strings.Split(strings.TrimSpace(payload), ",")
	if len(parts) != 2 {
		return nil, fmt.Errorf("failed to parse command string: expected 2 values (pump_id,on|off), got %d", len(parts))
	}

	pumpID := strings.ToUpper(strings.TrimSpace(parts[0]))
	if !models.IsValidPumpID(pumpID) {
		return nil, fmt.Errorf("invalid pump id in command: %q", pumpID)
	}

	var enable bool
	switch strings.ToLower(strings.TrimSpace(parts[1])) {
	case "on", "true", "1":
		enable = true
	case "off", "false", "0":
		enable = false
	default:
		return nil, fmt.Errorf("invalid command value %q: expected on or off", parts[1])
	}

	return &PumpCommand{PumpID: pumpID, Enable: enable}, nil
}

// FormatCommand formats a pump command for logging or debugging
func (cp *CommandParser) FormatCommand(cmd *PumpCommand) string {
	state := "off"
	if cmd.Enable {
		state = "on"
	}
	return fmt.Sprintf("Pump: %s, Override: %s", cmd.PumpID, state)
}
