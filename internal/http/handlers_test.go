package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Capstone-E1/pumpmatic_backend/config"
	"github.com/Capstone-E1/pumpmatic_backend/internal/engine"
	"github.com/Capstone-E1/pumpmatic_backend/internal/models"
	"github.com/Capstone-E1/pumpmatic_backend/internal/services"
	"github.com/Capstone-E1/pumpmatic_backend/internal/sim"
	"github.com/Capstone-E1/pumpmatic_backend/internal/store"
	"github.com/Capstone-E1/pumpmatic_backend/internal/ws"
	"github.com/go-chi/chi/v5"
)

type fixedRand struct{}

func (fixedRand) Float64() float64 { return 0.5 }

// newTestAPI wires a full router over an in-memory store and a deterministic
// simulation
func newTestAPI() (*chi.Mux, *engine.Controller, *store.Store) {
	cfg := config.DefaultAutomation()
	cfg.SimulationStep = time.Second

	eventStore := store.NewStore(100)
	simulator := sim.NewSimulator(cfg, fixedRand{})
	controller := engine.NewController(cfg, simulator, sim.StaticPressure{OK: true}, eventStore)
	driver := services.NewCycleDriver(controller, time.Second)
	router := SetupRoutes(controller, driver, eventStore, ws.NewHub())

	return router, controller, eventStore
}

func doRequest(t *testing.T, router *chi.Mux, method, path, body string) (*httptest.ResponseRecorder, APIResponse) {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var response APIResponse
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
			t.Fatalf("Failed to decode response body %q: %v", rec.Body.String(), err)
		}
	}
	return rec, response
}

func TestGetSystemStatus(t *testing.T) {
	router, controller, _ := newTestAPI()
	controller.RunControlCycle(time.Date(2026, 8, 10, 9, 0, 0, 0, time.UTC))

	rec, response := doRequest(t, router, http.MethodGet, "/api/v1/status", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	if !response.Success {
		t.Fatalf("Expected success response, got error %q", response.Error)
	}

	data, ok := response.Data.(map[string]interface{})
	if !ok {
		t.Fatalf("Expected object data, got %T", response.Data)
	}
	pumps, ok := data["pumps"].([]interface{})
	if !ok || len(pumps) != 3 {
		t.Errorf("Expected 3 pumps in snapshot, got %v", data["pumps"])
	}
	if _, ok := data["tank_levels"]; !ok {
		t.Error("Expected tank_levels in snapshot")
	}
}

func TestGetTankLevels(t *testing.T) {
	router, _, _ := newTestAPI()

	rec, response := doRequest(t, router, http.MethodGet, "/api/v1/tanks", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	levels, ok := response.Data.(map[string]interface{})
	if !ok {
		t.Fatalf("Expected tank map, got %T", response.Data)
	}
	for _, name := range []string{sim.TankMainLine, sim.TankUnderground, sim.TankOverhead} {
		if _, ok := levels[name]; !ok {
			t.Errorf("Expected tank %s in response", name)
		}
	}
}

func TestGetPumpStatuses(t *testing.T) {
	router, _, _ := newTestAPI()

	rec, response := doRequest(t, router, http.MethodGet, "/api/v1/pumps/", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	pumps, ok := response.Data.([]interface{})
	if !ok || len(pumps) != 3 {
		t.Errorf("Expected 3 pump statuses, got %v", response.Data)
	}
}

func TestSetManualOverride(t *testing.T) {
	router, controller, _ := newTestAPI()

	rec, response := doRequest(t, router, http.MethodPost, "/api/v1/pumps/P1/override", `{"enable":true}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if !response.Success {
		t.Fatalf("Expected success, got %q", response.Error)
	}

	snapshot := controller.Snapshot()
	if !snapshot.ManualOverride[models.PumpP1] {
		t.Error("Expected override flag set after request")
	}
}

func TestSetManualOverride_InvalidPump(t *testing.T) {
	router, _, _ := newTestAPI()

	rec, _ := doRequest(t, router, http.MethodPost, "/api/v1/pumps/P9/override", `{"enable":true}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for unknown pump, got %d", rec.Code)
	}
}

func TestSetManualOverride_P3Rejected(t *testing.T) {
	router, _, _ := newTestAPI()

	rec, response := doRequest(t, router, http.MethodPost, "/api/v1/pumps/P3/override", `{"enable":true}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for P3 override, got %d", rec.Code)
	}
	if !strings.Contains(response.Error, "automatic only") {
		t.Errorf("Expected automatic-only error, got %q", response.Error)
	}
}

func TestResetPumpError_NotInError(t *testing.T) {
	router, _, _ := newTestAPI()

	rec, _ := doRequest(t, router, http.MethodPost, "/api/v1/pumps/P1/reset", "")
	if rec.Code != http.StatusConflict {
		t.Errorf("Expected 409 for healthy pump reset, got %d", rec.Code)
	}
}

func TestSimulationPauseResume(t *testing.T) {
	router, _, _ := newTestAPI()

	rec, response := doRequest(t, router, http.MethodPost, "/api/v1/simulation/pause", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	data := response.Data.(map[string]interface{})
	if data["paused"] != true {
		t.Error("Expected paused true")
	}

	rec, response = doRequest(t, router, http.MethodPost, "/api/v1/simulation/resume", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	data = response.Data.(map[string]interface{})
	if data["paused"] != false {
		t.Error("Expected paused false after resume")
	}
}

func TestResetSimulation(t *testing.T) {
	router, controller, _ := newTestAPI()
	controller.RunControlCycle(time.Date(2026, 8, 10, 9, 0, 0, 0, time.UTC))

	rec, response := doRequest(t, router, http.MethodPost, "/api/v1/simulation/reset",
		`{"initial_levels":{"underground":60}}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if !response.Success {
		t.Fatalf("Expected success, got %q", response.Error)
	}

	snapshot := controller.Snapshot()
	if snapshot.TankLevels[sim.TankUnderground] != 60 {
		t.Errorf("Expected underground reset to 60%%, got %v", snapshot.TankLevels[sim.TankUnderground])
	}
}

func TestResetSimulation_InvalidLevel(t *testing.T) {
	router, _, _ := newTestAPI()

	rec, _ := doRequest(t, router, http.MethodPost, "/api/v1/simulation/reset",
		`{"initial_levels":{"underground":140}}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for out-of-range level, got %d", rec.Code)
	}
}

func TestGetPumpLogs(t *testing.T) {
	router, _, eventStore := newTestAPI()

	now := time.Now()
	eventStore.RecordPumpEvent(models.PumpLogEntry{
		Timestamp: now, PumpID: models.PumpP1, Action: models.ActionStart, Reason: "Underground Tank < 10.0%",
	})
	eventStore.RecordPumpEvent(models.PumpLogEntry{
		Timestamp: now.Add(time.Second), PumpID: models.PumpP2, Action: models.ActionStart, Reason: "Critical low levels detected in all tanks",
	})

	rec, response := doRequest(t, router, http.MethodGet, "/api/v1/logs/", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	events, ok := response.Data.([]interface{})
	if !ok || len(events) != 2 {
		t.Errorf("Expected 2 log entries, got %v", response.Data)
	}

	// Pump filter
	rec, response = doRequest(t, router, http.MethodGet, "/api/v1/logs/?pump=P1", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	events, _ = response.Data.([]interface{})
	if len(events) != 1 {
		t.Errorf("Expected 1 entry for P1, got %d", len(events))
	}
}

func TestGetPumpLogs_BadRange(t *testing.T) {
	router, _, _ := newTestAPI()

	rec, _ := doRequest(t, router, http.MethodGet, "/api/v1/logs/?start=2026-08-10T00:00:00Z", "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for half-open range, got %d", rec.Code)
	}
}

func TestGetLogStats(t *testing.T) {
	router, _, eventStore := newTestAPI()

	eventStore.RecordPumpEvent(models.PumpLogEntry{
		Timestamp: time.Now(), PumpID: models.PumpP1, Action: models.ActionStart,
	})

	rec, response := doRequest(t, router, http.MethodGet, "/api/v1/logs/stats", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}

	data, ok := response.Data.(map[string]interface{})
	if !ok {
		t.Fatalf("Expected stats object, got %T", response.Data)
	}
	if data["total_events"] != float64(1) {
		t.Errorf("Expected 1 total event, got %v", data["total_events"])
	}
}

func TestGetSystemStats(t *testing.T) {
	router, _, _ := newTestAPI()

	rec, response := doRequest(t, router, http.MethodGet, "/api/v1/stats", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	data := response.Data.(map[string]interface{})
	if _, ok := data["total_events"]; !ok {
		t.Error("Expected total_events in stats")
	}
	if _, ok := data["driver_running"]; !ok {
		t.Error("Expected driver_running in stats")
	}
}

func TestExportLogsCSV(t *testing.T) {
	router, _, eventStore := newTestAPI()

	eventStore.RecordPumpEvent(models.PumpLogEntry{
		Timestamp: time.Now(), PumpID: models.PumpP1, Action: models.ActionStart, Reason: "Underground Tank < 10.0%",
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/export/logs.csv", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/csv" {
		t.Errorf("Expected text/csv content type, got %q", ct)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "Timestamp,Pump,Action") {
		t.Errorf("Expected CSV header row, got %q", body)
	}
	if !strings.Contains(body, "P1,START") {
		t.Errorf("Expected event row in CSV, got %q", body)
	}
}

func TestExportLogsExcel(t *testing.T) {
	router, _, _ := newTestAPI()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/export/logs.xlsx", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.Contains(ct, "spreadsheetml") {
		t.Errorf("Expected spreadsheet content type, got %q", ct)
	}
	if rec.Body.Len() == 0 {
		t.Error("Expected non-empty workbook body")
	}
}
