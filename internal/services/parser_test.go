package services

import (
	"testing"
)

func TestParseCommandJSON_Valid(t *testing.T) {
	parser := NewCommandParser()

	cmd, err := parser.ParseCommandJSON([]byte(`{"pump_id":"P1","enable":true}`))
	if err != nil {
		t.Fatalf("Expected valid command, got error: %v", err)
	}
	if cmd.PumpID != "P1" {
		t.Errorf("Expected pump P1, got %s", cmd.PumpID)
	}
	if !cmd.Enable {
		t.Error("Expected enable true")
	}
}

func TestParseCommandJSON_Disable(t *testing.T) {
	parser := NewCommandParser()

	cmd, err := parser.ParseCommandJSON([]byte(`{"pump_id":"P2","enable":false}`))
	if err != nil {
		t.Fatalf("Expected valid command, got error: %v", err)
	}
	if cmd.Enable {
		t.Error("Expected enable false")
	}
}

func TestParseCommandJSON_InvalidPump(t *testing.T) {
	parser := NewCommandParser()

	_, err := parser.ParseCommandJSON([]byte(`{"pump_id":"P9","enable":true}`))
	if err == nil {
		t.Error("Expected error for unknown pump ID")
	}
}

func TestParseCommandJSON_Malformed(t *testing.T) {
	parser := NewCommandParser()

	_, err := parser.ParseCommandJSON([]byte(`{not json`))
	if err == nil {
		t.Error("Expected error for malformed JSON")
	}
}

func TestParseCommandString_Valid(t *testing.T) {
	parser := NewCommandParser()

	tests := []struct {
		payload    string
		wantPump   string
		wantEnable bool
	}{
		{"P1,on", "P1", true},
		{"P2,off", "P2", false},
		{"p1,ON", "P1", true},
		{" P3 , off ", "P3", false},
		{"P1,true", "P1", true},
		{"P2,0", "P2", false},
	}

	for _, tt := range tests {
		cmd, err := parser.ParseCommandString(tt.payload)
		if err != nil {
			t.Errorf("Payload %q: unexpected error: %v", tt.payload, err)
			continue
		}
		if cmd.PumpID != tt.wantPump {
			t.Errorf("Payload %q: expected pump %s, got %s", tt.payload, tt.wantPump, cmd.PumpID)
		}
		if cmd.Enable != tt.wantEnable {
			t.Errorf("Payload %q: expected enable %v, got %v", tt.payload, tt.wantEnable, cmd.Enable)
		}
	}
}

func TestParseCommandString_Invalid(t *testing.T) {
	parser := NewCommandParser()

	invalid := []string{
		"",
		"P1",
		"P1,on,extra",
		"P9,on",
		"P1,maybe",
	}

	for _, payload := range invalid {
		if _, err := parser.ParseCommandString(payload); err == nil {
			t.Errorf("Payload %q: expected error", payload)
		}
	}
}

func TestFormatCommand(t *testing.T) {
	parser := NewCommandParser()

	got := parser.FormatCommand(&PumpCommand{PumpID: "P1", Enable: true})
	if got != "Pump: P1, Override: on" {
		t.Errorf("Unexpected format: %q", got)
	}

	got = parser.FormatCommand(&PumpCommand{PumpID: "P2", Enable: false})
	if got != "Pump: P2, Override: off" {
		t.Errorf("Unexpected format: %q", got)
	}
}
