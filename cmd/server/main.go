package main

import (
	"context"
	"log"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Capstone-E1/pumpmatic_backend/config"
	"github.com/Capstone-E1/pumpmatic_backend/internal/database"
	"github.com/Capstone-E1/pumpmatic_backend/internal/engine"
	httphandlers "github.com/Capstone-E1/pumpmatic_backend/internal/http"
	"github.com/Capstone-E1/pumpmatic_backend/internal/models"
	"github.com/Capstone-E1/pumpmatic_backend/internal/mqtt"
	"github.com/Capstone-E1/pumpmatic_backend/internal/services"
	"github.com/Capstone-E1/pumpmatic_backend/internal/sim"
	"github.com/Capstone-E1/pumpmatic_backend/internal/store"
	"github.com/Capstone-E1/pumpmatic_backend/internal/ws"
	"github.com/joho/godotenv"
)

func main() {
	log.Println("🌊 Starting PumpMatic Water Pump Automation Backend...")

	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("⚠️  Warning: No .env file found: %v", err)
	} else {
		log.Println("✅ Loaded .env file")
	}

	// Load configuration
	cfg := config.Load()
	log.Printf("📋 Loaded configuration: Server port=%s, DB host=%s",
		cfg.Server.Port, cfg.Database.Host)

	// Initialize event store with PostgreSQL or fallback to in-memory
	var eventStore store.EventStore

	db, err := database.Connect(cfg.Database)
	if err != nil {
		log.Printf("⚠️  Warning: Failed to connect to database: %v", err)
		log.Println("📱 Falling back to in-memory storage")
		eventStore = store.NewStore(1000)
		log.Println("💾 Initialized in-memory event store")
	} else {
		log.Println("✅ Connected to PostgreSQL database")

		if err := database.CreateTables(db.DB); err != nil {
			log.Fatalf("❌ Failed to create tables: %v", err)
		}

		eventStore = database.NewDatabaseStore(db.DB)
		defer db.Close()
		log.Println("💾 Initialized PostgreSQL event store")
	}

	// Initialize WebSocket hub
	wsHub := ws.NewHub()
	go wsHub.Run()
	log.Println("🔌 Started WebSocket hub")

	// Initialize MQTT client (skip if no broker URL configured)
	var mqttClient *mqtt.Client
	if cfg.MQTT.BrokerURL != "" {
		log.Println("📡 Attempting to connect to MQTT broker...")
		client := mqtt.NewClient(cfg.MQTT)
		if err := client.Connect(); err != nil {
			log.Printf("⚠️  Warning: Failed to connect to MQTT broker: %v", err)
			log.Println("📡 Continuing without MQTT support")
		} else {
			log.Printf("📡 MQTT client connected - Broker: %s", cfg.MQTT.BrokerURL)
			mqttClient = client
			defer mqttClient.Disconnect()
		}
	} else {
		log.Println("📡 MQTT broker not configured, skipping MQTT initialization")
	}

	// Event recording never blocks the control cycle: the store sits behind
	// an async recorder, and the live surfaces get each event as it happens
	recorder := store.NewAsyncRecorder(eventStore, 256)
	defer recorder.Stop()

	sinks := engine.MultiSink{
		recorder,
		engine.SinkFunc(wsHub.BroadcastPumpEvent),
	}
	if mqttClient != nil {
		sinks = append(sinks, engine.SinkFunc(mqttClient.PublishPumpEvent))
	}

	// Assemble the simulation and control engine
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	simulator := sim.NewSimulator(cfg.Automation, rng)
	pressure := sim.NewRandomPressure(rng, cfg.Automation.PressureFaultProbability)
	controller := engine.NewController(cfg.Automation, simulator, pressure, sinks)

	// The cycle driver publishes a snapshot to every live surface after each
	// control cycle
	publishers := []services.SnapshotPublisher{wsHub}
	if mqttClient != nil {
		publishers = append(publishers, mqttClient)
	}
	driver := services.NewCycleDriver(controller, cfg.Automation.SimulationStep, publishers...)
	driver.Start()
	log.Println("🕐 Started automation cycle driver")

	// Manual overrides can arrive over MQTT as well as HTTP
	if mqttClient != nil {
		mqttClient.SetCommandHandler(func(cmd *services.PumpCommand) {
			if cmd.PumpID == models.PumpP3 {
				log.Printf("⚠️  Ignoring MQTT override for %s: P3 is automatic only", cmd.PumpID)
				return
			}
			controller.RequestManualOverride(cmd.PumpID, cmd.Enable)
		})
		mqttClient.SetErrorHandler(func(err error) {
			wsHub.BroadcastError(err.Error())
		})
		if err := mqttClient.SubscribeToPumpCommands(); err != nil {
			log.Printf("⚠️  Warning: MQTT command subscription failed: %v", err)
		}
	}

	// Setup HTTP routes
	router := httphandlers.SetupRoutes(controller, driver, eventStore, wsHub)

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start HTTP server in a goroutine
	go func() {
		log.Printf("🚀 Starting HTTP server on port %s", cfg.Server.Port)
		log.Println("📡 API endpoints available:")
		log.Println("  GET /api/v1/status - Full system snapshot")
		log.Println("  GET /api/v1/stats - System statistics")
		log.Println("  GET /api/v1/tanks - Tank levels")
		log.Println("  GET /api/v1/pumps - Pump states")
		log.Println("  POST /api/v1/pumps/{id}/override - Enable/disable manual override")
		log.Println("  POST /api/v1/pumps/{id}/reset - Clear pump ERROR state")
		log.Println("  POST /api/v1/simulation/reset - Reset tanks and pumps")
		log.Println("  POST /api/v1/simulation/pause - Pause control cycles")
		log.Println("  POST /api/v1/simulation/resume - Resume control cycles")
		log.Println("  GET /api/v1/logs - Pump operation history")
		log.Println("  GET /api/v1/logs/stats - Per-pump activity statistics")
		log.Println("  GET /api/v1/export/logs.xlsx - Export operation log to Excel")
		log.Println("  GET /api/v1/export/logs.csv - Export operation log to CSV")
		log.Println("  WS /ws - WebSocket for real-time updates")
		log.Printf("🌐 Server running at http://localhost:%s", cfg.Server.Port)

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("❌ HTTP server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("🛑 Shutting down server...")

	// Stop the control loop before the sinks behind it
	driver.Stop()

	// Shutdown HTTP server
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Printf("❌ Server forced to shutdown: %v", err)
	}

	log.Println("✅ Server shutdown complete")
}
