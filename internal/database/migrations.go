package database

import (
	"database/sql"
	"fmt"
	"log"
)

// CreateTables creates all necessary tables for the pump automation system
func CreateTables(db *sql.DB) error {
	log.Println("Creating database tables...")

	// pump_logs stores one row per state-changing pump action or event
	pumpLogsTable := `
	CREATE TABLE IF NOT EXISTS pump_logs (
		id SERIAL PRIMARY KEY,
		timestamp TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
		pump_id VARCHAR(10) NOT NULL,
		action VARCHAR(20) NOT NULL CHECK (action IN ('START', 'STOP', 'ERROR', 'INFO', 'MANUAL_START', 'MANUAL_STOP')),
		reason TEXT,
		main_line_level_pct DECIMAL(5,2),
		underground_level_pct DECIMAL(5,2),
		overhead_level_pct DECIMAL(5,2),
		active_meter VARCHAR(20),
		details TEXT,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	);`

	if _, err := db.Exec(pumpLogsTable); err != nil {
		return fmt.Errorf("failed to create pump_logs table: %w", err)
	}

	// Create indexes for better performance
	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_pump_logs_timestamp ON pump_logs(timestamp DESC);",
		"CREATE INDEX IF NOT EXISTS idx_pump_logs_pump_id ON pump_logs(pump_id);",
		"CREATE INDEX IF NOT EXISTS idx_pump_logs_action ON pump_logs(action);",
	}

	for _, indexSQL := range indexes {
		if _, err := db.Exec(indexSQL); err != nil {
			log.Printf("Warning: Failed to create index: %v", err)
		}
	}

	log.Println("✅ Database tables created successfully")
	return nil
}

// DropTables drops all tables (useful for testing)
func DropTables(db *sql.DB) error {
	log.Println("Dropping database tables...")

	if _, err := db.Exec("DROP TABLE IF EXISTS pump_logs CASCADE;"); err != nil {
		return fmt.Errorf("failed to drop table pump_logs: %w", err)
	}

	log.Println("✅ Database tables dropped successfully")
	return nil
}

// CheckTablesExist checks if all required tables exist
func CheckTablesExist(db *sql.DB) error {
	var exists bool
	query := `SELECT EXISTS (
		SELECT FROM information_schema.tables
		WHERE table_name = 'pump_logs'
	);`

	if err := db.QueryRow(query).Scan(&exists); err != nil {
		return fmt.Errorf("failed to check table pump_logs: %w", err)
	}

	if !exists {
		return fmt.Errorf("table pump_logs does not exist")
	}

	log.Println("✅ All required tables exist")
	return nil
}
