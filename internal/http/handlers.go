package http

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/Capstone-E1/pumpmatic_backend/internal/analytics"
	"github.com/Capstone-E1/pumpmatic_backend/internal/engine"
	"github.com/Capstone-E1/pumpmatic_backend/internal/export"
	"github.com/Capstone-E1/pumpmatic_backend/internal/models"
	"github.com/Capstone-E1/pumpmatic_backend/internal/services"
	"github.com/Capstone-E1/pumpmatic_backend/internal/store"
	"github.com/go-chi/chi/v5"
)

// Handlers contains all HTTP request handlers
type Handlers struct {
	controller    *engine.Controller
	driver        *services.CycleDriver
	store         store.EventStore
	exportService *export.ExportService
}

// NewHandlers creates a new handlers instance
func NewHandlers(controller *engine.Controller, driver *services.CycleDriver, eventStore store.EventStore) *Handlers {
	return &Handlers{
		controller:    controller,
		driver:        driver,
		store:         eventStore,
		exportService: export.NewExportService(),
	}
}

// APIResponse represents a standard API response
type APIResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// GetSystemStatus returns the full system snapshot: pumps, tanks, warnings
// and the current schedule context
func (h *Handlers) GetSystemStatus(w http.ResponseWriter, r *http.Request) {
	snapshot := h.controller.Snapshot()
	snapshot.Paused = h.driver.IsPaused()

	response := APIResponse{
		Success: true,
		Data:    snapshot,
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

// GetTankLevels returns the current tank fill percentages
func (h *Handlers) GetTankLevels(w http.ResponseWriter, r *http.Request) {
	snapshot := h.controller.Snapshot()

	response := APIResponse{
		Success: true,
		Data:    snapshot.TankLevels,
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

// GetPumpStatuses returns the current state of all pumps
func (h *Handlers) GetPumpStatuses(w http.ResponseWriter, r *http.Request) {
	snapshot := h.controller.Snapshot()

	response := APIResponse{
		Success: true,
		Data:    snapshot.Pumps,
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

// SetManualOverride handles POST requests to enable or disable a pump's
// manual override flag. Only P1 and P2 accept overrides; P3 is always
// automatic.
func (h *Handlers) SetManualOverride(w http.ResponseWriter, r *http.Request) {
	pumpID := chi.URLParam(r, "pumpID")

	if !models.IsValidPumpID(pumpID) {
		h.sendErrorResponse(w, "Invalid pump ID. Use 'P1', 'P2' or 'P3'", http.StatusBadRequest)
		return
	}
	if pumpID == models.PumpP3 {
		h.sendErrorResponse(w, "P3 does not accept manual overrides; it is automatic only", http.StatusBadRequest)
		return
	}

	var request struct {
		Enable bool `json:"enable"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		h.sendErrorResponse(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	// Faulted pumps reject the override inside the controller; the refusal
	// shows up as a warning in the next snapshot
	if request.Enable {
		if state, ok := h.controller.PumpState(pumpID); ok && state == models.PumpStateError {
			h.sendErrorResponse(w,
				fmt.Sprintf("Cannot manually start %s while in ERROR state. Reset the error first.", pumpID),
				http.StatusConflict)
			return
		}
	}

	h.controller.RequestManualOverride(pumpID, request.Enable)

	action := "disabled"
	if request.Enable {
		action = "enabled"
	}
	log.Printf("🎛️  Manual override %s for pump %s via API", action, pumpID)

	response := APIResponse{
		Success: true,
		Message: fmt.Sprintf("Manual override %s for %s", action, pumpID),
		Data: map[string]interface{}{
			"pump_id":   pumpID,
			"enabled":   request.Enable,
			"timestamp": time.Now(),
		},
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

// ResetPumpError handles POST requests to clear a pump's ERROR state
func (h *Handlers) ResetPumpError(w http.ResponseWriter, r *http.Request) {
	pumpID := chi.URLParam(r, "pumpID")

	if !models.IsValidPumpID(pumpID) {
		h.sendErrorResponse(w, "Invalid pump ID. Use 'P1', 'P2' or 'P3'", http.StatusBadRequest)
		return
	}

	state, ok := h.controller.PumpState(pumpID)
	if !ok {
		h.sendErrorResponse(w, "Unknown pump: "+pumpID, http.StatusNotFound)
		return
	}
	if state != models.PumpStateError {
		h.sendErrorResponse(w,
			fmt.Sprintf("Pump %s is not in ERROR state (current: %s)", pumpID, state),
			http.StatusConflict)
		return
	}

	h.controller.ResetPumpError(pumpID)

	response := APIResponse{
		Success: true,
		Message: fmt.Sprintf("Error state cleared for %s", pumpID),
		Data: map[string]interface{}{
			"pump_id":   pumpID,
			"timestamp": time.Now(),
		},
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

// ResetSimulation handles POST requests to reset tanks and pumps to a known
// starting state. Initial levels are optional; omitted tanks get defaults.
func (h *Handlers) ResetSimulation(w http.ResponseWriter, r *http.Request) {
	var request struct {
		InitialLevels map[string]float64 `json:"initial_levels,omitempty"`
	}

	// An empty body is a plain reset to defaults
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
			h.sendErrorResponse(w, "Invalid request body", http.StatusBadRequest)
			return
		}
	}

	for tank, pct := range request.InitialLevels {
		if pct < 0 || pct > 100 {
			h.sendErrorResponse(w,
				fmt.Sprintf("Invalid initial level for %s: %.1f (must be 0-100)", tank, pct),
				http.StatusBadRequest)
			return
		}
	}

	h.controller.ResetSimulation(request.InitialLevels)
	log.Println("🔄 Simulation reset via API")

	snapshot := h.controller.Snapshot()
	snapshot.Paused = h.driver.IsPaused()

	response := APIResponse{
		Success: true,
		Message: "Simulation reset",
		Data:    snapshot,
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

// PauseSimulation suspends control cycles; tank levels and pump states
// freeze until resumed
func (h *Handlers) PauseSimulation(w http.ResponseWriter, r *http.Request) {
	h.driver.Pause()

	response := APIResponse{
		Success: true,
		Message: "Simulation paused",
		Data:    map[string]bool{"paused": true},
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

// ResumeSimulation restarts control cycles after a pause
func (h *Handlers) ResumeSimulation(w http.ResponseWriter, r *http.Request) {
	h.driver.Resume()

	response := APIResponse{
		Success: true,
		Message: "Simulation resumed",
		Data:    map[string]bool{"paused": false},
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

// GetPumpLogs returns pump event history. Supports limit, pump and
// start/end time range filters.
func (h *Handlers) GetPumpLogs(w http.ResponseWriter, r *http.Request) {
	limitStr := r.URL.Query().Get("limit")
	pumpID := r.URL.Query().Get("pump")
	startStr := r.URL.Query().Get("start")
	endStr := r.URL.Query().Get("end")

	limit := 50 // Default limit
	if limitStr != "" {
		if parsedLimit, err := strconv.Atoi(limitStr); err == nil && parsedLimit > 0 && parsedLimit <= 1000 {
			limit = parsedLimit
		}
	}

	var events []models.PumpLogEntry

	switch {
	case startStr != "" || endStr != "":
		if startStr == "" || endStr == "" {
			h.sendErrorResponse(w, "Both start and end time parameters are required", http.StatusBadRequest)
			return
		}
		start, err := time.Parse(time.RFC3339, startStr)
		if err != nil {
			h.sendErrorResponse(w, "Invalid start time format. Use RFC3339 format", http.StatusBadRequest)
			return
		}
		end, err := time.Parse(time.RFC3339, endStr)
		if err != nil {
			h.sendErrorResponse(w, "Invalid end time format. Use RFC3339 format", http.StatusBadRequest)
			return
		}
		if end.Before(start) {
			h.sendErrorResponse(w, "End time must be after start time", http.StatusBadRequest)
			return
		}
		events = h.store.GetEventsInRange(start, end)

	case pumpID != "":
		if !models.IsValidPumpID(pumpID) {
			h.sendErrorResponse(w, "Invalid pump ID. Use 'P1', 'P2' or 'P3'", http.StatusBadRequest)
			return
		}
		events = h.store.GetEventsByPump(pumpID, limit)

	default:
		events = h.store.GetRecentEvents(limit)
	}

	response := APIResponse{
		Success: true,
		Data:    events,
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

// GetLogStats returns per-pump activity statistics derived from recent logs
func (h *Handlers) GetLogStats(w http.ResponseWriter, r *http.Request) {
	limitStr := r.URL.Query().Get("limit")

	limit := 1000
	if limitStr != "" {
		if parsedLimit, err := strconv.Atoi(limitStr); err == nil && parsedLimit > 0 {
			limit = parsedLimit
		}
	}

	events := h.store.GetRecentEvents(limit)
	summary := analytics.Summarize(events)

	response := APIResponse{
		Success: true,
		Data:    summary,
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

// GetSystemStats returns system statistics
func (h *Handlers) GetSystemStats(w http.ResponseWriter, r *http.Request) {
	stats := map[string]interface{}{
		"total_events":   h.store.GetEventCount(),
		"action_counts":  h.store.GetActionCounts(),
		"driver_running": h.driver.IsRunning(),
		"driver_paused":  h.driver.IsPaused(),
		"server_time":    time.Now(),
	}

	response := APIResponse{
		Success: true,
		Data:    stats,
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

// ExportLogsExcel handles GET requests to export the pump operation log as
// an Excel workbook
func (h *Handlers) ExportLogsExcel(w http.ResponseWriter, r *http.Request) {
	start, end, events, ok := h.collectExportEvents(w, r)
	if !ok {
		return
	}

	exportData := export.ExportData{
		Events:       events,
		ActionCounts: countActions(events),
		ExportMetadata: export.ExportMetadata{
			GeneratedAt: time.Now(),
			DateRange:   fmt.Sprintf("%s to %s", start.Format("2006-01-02"), end.Format("2006-01-02")),
			TotalEvents: len(events),
		},
	}

	excelFile, err := h.exportService.GenerateExcel(exportData)
	if err != nil {
		h.sendErrorResponse(w, "Failed to generate Excel file", http.StatusInternalServerError)
		return
	}

	filename := fmt.Sprintf("pumpmatic_logs_%s_to_%s.xlsx",
		start.Format("2006-01-02"), end.Format("2006-01-02"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", filename))

	if err := excelFile.Write(w); err != nil {
		h.sendErrorResponse(w, "Failed to write Excel file", http.StatusInternalServerError)
		return
	}
}

// ExportLogsCSV handles GET requests to export the pump operation log as CSV
func (h *Handlers) ExportLogsCSV(w http.ResponseWriter, r *http.Request) {
	start, end, events, ok := h.collectExportEvents(w, r)
	if !ok {
		return
	}

	csvData, err := h.exportService.GenerateCSV(events)
	if err != nil {
		h.sendErrorResponse(w, "Failed to generate CSV data", http.StatusInternalServerError)
		return
	}

	filename := fmt.Sprintf("pumpmatic_logs_%s_to_%s.csv",
		start.Format("2006-01-02"), end.Format("2006-01-02"))
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", filename))

	csvWriter := csv.NewWriter(w)
	if err := h.exportService.WriteCSV(csvWriter, csvData); err != nil {
		h.sendErrorResponse(w, "Failed to write CSV data", http.StatusInternalServerError)
		return
	}
}

// collectExportEvents parses the optional start/end query range (default
// last 30 days) and loads the matching events. Returns ok=false after
// writing an error response.
func (h *Handlers) collectExportEvents(w http.ResponseWriter, r *http.Request) (time.Time, time.Time, []models.PumpLogEntry, bool) {
	startStr := r.URL.Query().Get("start")
	endStr := r.URL.Query().Get("end")
	pumpID := r.URL.Query().Get("pump")

	var start, end time.Time
	var err error

	if startStr == "" {
		start = time.Now().AddDate(0, 0, -30)
	} else {
		start, err = time.Parse(time.RFC3339, startStr)
		if err != nil {
			h.sendErrorResponse(w, "Invalid start date format. Use RFC3339 format", http.StatusBadRequest)
			return start, end, nil, false
		}
	}

	if endStr == "" {
		end = time.Now()
	} else {
		end, err = time.Parse(time.RFC3339, endStr)
		if err != nil {
			h.sendErrorResponse(w, "Invalid end date format. Use RFC3339 format", http.StatusBadRequest)
			return start, end, nil, false
		}
	}

	events := h.store.GetEventsInRange(start, end)

	if pumpID != "" {
		if !models.IsValidPumpID(pumpID) {
			h.sendErrorResponse(w, "Invalid pump ID. Use 'P1', 'P2' or 'P3'", http.StatusBadRequest)
			return start, end, nil, false
		}
		filtered := events[:0]
		for _, event := range events {
			if event.PumpID == pumpID {
				filtered = append(filtered, event)
			}
		}
		events = filtered
	}

	return start, end, events, true
}

// countActions tallies actions over one batch of events
func countActions(events []models.PumpLogEntry) map[models.PumpAction]int {
	counts := make(map[models.PumpAction]int)
	for _, event := range events {
		counts[event.Action]++
	}
	return counts
}

// sendErrorResponse sends a standardized error response
func (h *Handlers) sendErrorResponse(w http.ResponseWriter, message string, statusCode int) {
	response := APIResponse{
		Success: false,
		Error:   message,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(response)
}
