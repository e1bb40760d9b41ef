package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/Capstone-E1/pumpmatic_backend/config"
	"github.com/Capstone-E1/pumpmatic_backend/internal/database"
	"github.com/joho/godotenv"
)

func main() {
	var (
		pump  = flag.String("pump", "", "Filter by pump ID (P1, P2, P3)")
		limit = flag.Int("limit", 20, "Number of records to show")
	)
	flag.Parse()

	log.Println("🔍 PumpMatic Operation Log Viewer")
	log.Println("=================================")

	if err := godotenv.Load(); err != nil {
		log.Printf("⚠️  Warning: .env file not found")
	}

	// Load configuration
	cfg := config.Load()

	// Connect to database
	db, err := database.Connect(cfg.Database)
	if err != nil {
		log.Fatalf("❌ Failed to connect to database: %v", err)
	}
	defer db.Close()

	log.Printf("✅ Connected to database: %s@%s:%s/%s",
		cfg.Database.User, cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)

	viewPumpLogs(db, *pump, *limit)
}

func viewPumpLogs(db *database.DB, pumpID string, limit int) {
	query := `
		SELECT id, timestamp, pump_id, action, COALESCE(reason, ''),
		       main_line_pct, underground_pct, overhead_pct, COALESCE(active_meter, '')
		FROM pump_logs`
	args := []interface{}{limit}

	if pumpID != "" {
		query += `
		WHERE pump_id = $2`
		args = append(args, pumpID)
	}
	query += `
		ORDER BY timestamp DESC
		LIMIT $1`

	rows, err := db.Query(query, args...)
	if err != nil {
		log.Fatalf("❌ Query failed: %v", err)
	}
	defer rows.Close()

	fmt.Printf("\n📊 Latest %d Pump Events:\n", limit)
	fmt.Println("==========================")
	fmt.Printf("%-5s %-20s %-5s %-13s %-45s %-7s %-7s %-7s %-12s\n",
		"ID", "Timestamp", "Pump", "Action", "Reason", "ML%", "UG%", "OH%", "Meter")
	fmt.Println("--------------------------------------------------------------------------------------------------------------------")

	count := 0
	for rows.Next() {
		var id int
		var timestamp, pid, action, reason, meter string
		var mlPct, ugPct, ohPct float64

		err := rows.Scan(&id, &timestamp, &pid, &action, &reason, &mlPct, &ugPct, &ohPct, &meter)
		if err != nil {
			log.Printf("❌ Error scanning row: %v", err)
			continue
		}

		if len(reason) > 45 {
			reason = reason[:42] + "..."
		}

		fmt.Printf("%-5d %-20s %-5s %-13s %-45s %-7.1f %-7.1f %-7.1f %-12s\n",
			id, timestamp[:19], pid, action, reason, mlPct, ugPct, ohPct, meter)
		count++
	}

	if count == 0 {
		fmt.Println("No pump events found.")
	} else {
		fmt.Printf("\nTotal: %d events\n", count)
	}
}
