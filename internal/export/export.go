package export

import (
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"github.com/Capstone-E1/pumpmatic_backend/internal/models"
	"github.com/xuri/excelize/v2"
)

// ExportService handles operation-log export functionality
type ExportService struct{}

// NewExportService creates a new export service instance
func NewExportService() *ExportService {
	return &ExportService{}
}

// ExportData represents data to be exported
type ExportData struct {
	Events         []models.PumpLogEntry
	ActionCounts   map[models.PumpAction]int
	ExportMetadata ExportMetadata
}

// ExportMetadata contains information about the export
type ExportMetadata struct {
	GeneratedAt time.Time `json:"generated_at"`
	DateRange   string    `json:"date_range"`
	TotalEvents int       `json:"total_events"`
}

// GenerateExcel creates an Excel file with the pump operation history
func (es *ExportService) GenerateExcel(data ExportData) (*excelize.File, error) {
	f := excelize.NewFile()

	// Set document properties
	f.SetDocProps(&excelize.DocProperties{
		Category:       "PumpMatic Water Pump Automation",
		Created:        data.ExportMetadata.GeneratedAt.Format(time.RFC3339),
		Creator:        "PumpMatic System",
		Description:    "Pump operation log export",
		LastModifiedBy: "PumpMatic Backend",
		Modified:       data.ExportMetadata.GeneratedAt.Format(time.RFC3339),
		Subject:        "Pump Operation History",
		Title:          "PumpMatic Operation Report",
		Version:        "1.0",
	})

	es.createSummarySheet(f, data)
	es.createOperationLogSheet(f, data.Events)

	// Set active sheet to Summary
	f.SetActiveSheet(0)

	return f, nil
}

// createSummarySheet creates the summary overview sheet
func (es *ExportService) createSummarySheet(f *excelize.File, data ExportData) error {
	sheetName := "Summary"
	f.SetSheetName("Sheet1", sheetName)

	// Header styling
	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 14, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
		},
	})

	// Title
	f.SetCellValue(sheetName, "A1", "PumpMatic Pump Operation Report")
	f.MergeCell(sheetName, "A1", "D1")
	f.SetCellStyle(sheetName, "A1", "D1", headerStyle)
	f.SetRowHeight(sheetName, 1, 25)

	// Export metadata
	f.SetCellValue(sheetName, "A3", "Generated At:")
	f.SetCellValue(sheetName, "B3", data.ExportMetadata.GeneratedAt.Format("2006-01-02 15:04:05"))
	f.SetCellValue(sheetName, "A4", "Date Range:")
	f.SetCellValue(sheetName, "B4", data.ExportMetadata.DateRange)
	f.SetCellValue(sheetName, "A5", "Total Events:")
	f.SetCellValue(sheetName, "B5", data.ExportMetadata.TotalEvents)

	// Per-action statistics
	f.SetCellValue(sheetName, "A7", "Events by Action")
	f.SetCellStyle(sheetName, "A7", "A7", headerStyle)

	row := 8
	for _, action := range models.ValidActions {
		if count, ok := data.ActionCounts[action]; ok {
			f.SetCellValue(sheetName, fmt.Sprintf("A%d", row), string(action)+":")
			f.SetCellValue(sheetName, fmt.Sprintf("B%d", row), count)
			row++
		}
	}

	// Column widths
	f.SetColWidth(sheetName, "A", "A", 20)
	f.SetColWidth(sheetName, "B", "D", 15)

	return nil
}

// createOperationLogSheet creates the pump event log sheet
func (es *ExportService) createOperationLogSheet(f *excelize.File, events []models.PumpLogEntry) error {
	sheetName := "Operation Log"
	f.NewSheet(sheetName)

	// Headers
	headers := []string{"Timestamp", "Pump", "Action", "Reason", "Main Line (%)", "Underground (%)", "Overhead (%)", "Active Meter", "Details"}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheetName, cell, header)
	}

	// Header styling
	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"70AD47"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
		},
	})
	f.SetCellStyle(sheetName, "A1", "I1", headerStyle)

	// Data rows
	for i, event := range events {
		row := i + 2
		f.SetCellValue(sheetName, fmt.Sprintf("A%d", row), event.Timestamp.Format("2006-01-02 15:04:05"))
		f.SetCellValue(sheetName, fmt.Sprintf("B%d", row), event.PumpID)
		f.SetCellValue(sheetName, fmt.Sprintf("C%d", row), string(event.Action))
		f.SetCellValue(sheetName, fmt.Sprintf("D%d", row), event.Reason)
		f.SetCellValue(sheetName, fmt.Sprintf("E%d", row), fmt.Sprintf("%.1f", event.MainLinePct))
		f.SetCellValue(sheetName, fmt.Sprintf("F%d", row), fmt.Sprintf("%.1f", event.UndergroundPct))
		f.SetCellValue(sheetName, fmt.Sprintf("G%d", row), fmt.Sprintf("%.1f", event.OverheadPct))
		f.SetCellValue(sheetName, fmt.Sprintf("H%d", row), string(event.ActiveMeter))
		f.SetCellValue(sheetName, fmt.Sprintf("I%d", row), event.Details)
	}

	// Format columns
	f.SetColWidth(sheetName, "A", "A", 20)
	f.SetColWidth(sheetName, "B", "C", 12)
	f.SetColWidth(sheetName, "D", "D", 45)
	f.SetColWidth(sheetName, "E", "I", 14)

	return nil
}

// GenerateCSV creates CSV records for the pump event log
func (es *ExportService) GenerateCSV(events []models.PumpLogEntry) ([][]string, error) {
	// CSV headers
	records := [][]string{
		{"Timestamp", "Pump", "Action", "Reason", "Main Line (%)", "Underground (%)", "Overhead (%)", "Active Meter", "Details"},
	}

	// Add data rows
	for _, event := range events {
		record := []string{
			event.Timestamp.Format("2006-01-02 15:04:05"),
			event.PumpID,
			string(event.Action),
			event.Reason,
			strconv.FormatFloat(event.MainLinePct, 'f', 1, 64),
			strconv.FormatFloat(event.UndergroundPct, 'f', 1, 64),
			strconv.FormatFloat(event.OverheadPct, 'f', 1, 64),
			string(event.ActiveMeter),
			event.Details,
		}
		records = append(records, record)
	}

	return records, nil
}

// WriteCSV writes CSV data to a writer
func (es *ExportService) WriteCSV(w *csv.Writer, records [][]string) error {
	return w.WriteAll(records)
}
