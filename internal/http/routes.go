package http

import (
	"github.com/Capstone-E1/pumpmatic_backend/internal/engine"
	"github.com/Capstone-E1/pumpmatic_backend/internal/services"
	"github.com/Capstone-E1/pumpmatic_backend/internal/store"
	"github.com/Capstone-E1/pumpmatic_backend/internal/ws"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// SetupRoutes configures all HTTP routes for the pump automation API
func SetupRoutes(controller *engine.Controller, driver *services.CycleDriver, eventStore store.EventStore, wsHub *ws.Hub) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)

	// CORS configuration
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"}, // In production, specify allowed origins
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	handlers := NewHandlers(controller, driver, eventStore)

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		// Full system snapshot
		r.Get("/status", handlers.GetSystemStatus)

		// System stats
		r.Get("/stats", handlers.GetSystemStats)

		// Tank levels
		r.Get("/tanks", handlers.GetTankLevels)

		// Pump states and control
		r.Route("/pumps", func(r chi.Router) {
			r.Get("/", handlers.GetPumpStatuses)
			r.Post("/{pumpID}/override", handlers.SetManualOverride) // Enable/disable manual run
			r.Post("/{pumpID}/reset", handlers.ResetPumpError)       // Clear ERROR state
		})

		// Simulation lifecycle
		r.Route("/simulation", func(r chi.Router) {
			r.Post("/reset", handlers.ResetSimulation)
			r.Post("/pause", handlers.PauseSimulation)
			r.Post("/resume", handlers.ResumeSimulation)
		})

		// Pump operation history
		r.Route("/logs", func(r chi.Router) {
			r.Get("/", handlers.GetPumpLogs)
			r.Get("/stats", handlers.GetLogStats)
		})

		// Export routes for operation history
		r.Route("/export", func(r chi.Router) {
			r.Get("/logs.xlsx", handlers.ExportLogsExcel)
			r.Get("/logs.csv", handlers.ExportLogsCSV)
		})
	})

	// WebSocket route for real-time updates
	r.HandleFunc("/ws", wsHub.HandleWebSocket)

	return r
}
