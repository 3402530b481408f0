package excel

import (
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/nurpe/wasteops-collections/internal/model"
)

const (
	summarySheet     = "Summary"
	collectionsSheet = "Collections"
)

type Generator struct{}

func NewGenerator() *Generator {
	return &Generator{}
}

func (g *Generator) Generate(report model.StatsReport) ([]byte, error) {
	file := excelize.NewFile()
	defer file.Close()

	if err := file.SetSheetName("Sheet1", summarySheet); err != nil {
		return nil, err
	}
	g.writeSummary(file, report)

	if _, err := file.NewSheet(collectionsSheet); err != nil {
		return nil, err
	}
	g.writeCollections(file, report.Collections)

	file.SetActiveSheet(0)
	buf, err := file.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (g *Generator) writeSummary(file *excelize.File, report model.StatsReport) {
	set := func(cell string, value interface{}) {
		_ = file.SetCellValue(summarySheet, cell, value)
	}
	s := report.Stats

	set("A1", "Prepared for")
	set("B1", report.User)
	set("A2", "Generated at")
	set("B2", formatDateTime(report.GeneratedAt))
	set("A3", "Date range")
	set("B3", string(report.Window))
	set("A4", "Waste type")
	set("B4", string(report.WasteType))
	set("A5", "Total collections")
	set("B5", s.TotalCollections)
	set("A6", "Completed collections")
	set("B6", s.CompletedCollections)
	set("A7", "Completion rate, %")
	set("B7", s.CompletionRate)
	set("A8", "Collected, kg")
	set("B8", s.TotalQuantityKg)
	set("A9", "Average per collection, kg")
	set("B9", s.AverageQuantityKg)

	row := 11
	row = writeGrouping(set, row, "Waste type", "Quantity, kg", s.ByType)
	row = writeGrouping(set, row, "Month", "Quantity, kg", s.ByMonth)
	row = writeGrouping(set, row, "Location", "Quantity, kg", s.ByLocation)
	writeGrouping(set, row, "Status", "Collections", s.ByStatus)

	_ = file.SetColWidth(summarySheet, "A", "A", 32)
	_ = file.SetColWidth(summarySheet, "B", "B", 24)
}

// writeGrouping writes a two-column table starting at row and returns the row after it plus a gap.
func writeGrouping(set func(string, interface{}), row int, keyLabel, valueLabel string, buckets []model.Bucket) int {
	set(fmt.Sprintf("A%d", row), keyLabel)
	set(fmt.Sprintf("B%d", row), valueLabel)
	for i, bucket := range buckets {
		set(fmt.Sprintf("A%d", row+1+i), bucket.Key)
		set(fmt.Sprintf("B%d", row+1+i), bucket.Value)
	}
	return row + len(buckets) + 2
}

func (g *Generator) writeCollections(file *excelize.File, collections []model.Collection) {
	set := func(cell string, value interface{}) {
		_ = file.SetCellValue(collectionsSheet, cell, value)
	}

	headers := []string{
		"ID",
		"Client",
		"Company",
		"Waste type",
		"Scheduled date",
		"Scheduled time",
		"Address",
		"Quantity, kg",
		"Status",
		"Completed at",
		"Notes",
	}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		set(cell, header)
	}

	for i, c := range collections {
		row := i + 2
		values := []interface{}{
			c.ID,
			c.ClientID,
			c.CompanyID,
			string(c.WasteType),
			formatDate(c.ScheduledDate),
			c.ScheduledTime,
			c.Address,
			c.QuantityKg,
			string(c.Status),
			formatTimePtr(c.CompletedAt),
			c.Notes,
		}
		for col, value := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			set(cell, value)
		}
	}

	_ = file.SetColWidth(collectionsSheet, "A", "C", 38)
	_ = file.SetColWidth(collectionsSheet, "D", "F", 16)
	_ = file.SetColWidth(collectionsSheet, "G", "G", 40)
	_ = file.SetColWidth(collectionsSheet, "H", "J", 16)
	_ = file.SetColWidth(collectionsSheet, "K", "K", 40)
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02")
}

func formatDateTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02 15:04:05")
}

func formatTimePtr(t *time.Time) string {
	if t == nil {
		return ""
	}
	return formatDateTime(*t)
}
