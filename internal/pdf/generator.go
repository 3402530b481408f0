package pdf

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/nurpe/wasteops-collections/internal/model"
)

const fontName = "Helvetica"

type Generator struct{}

func NewGenerator() *Generator {
	return &Generator{}
}

func (g *Generator) Generate(report model.StatsReport) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFont(fontName, "B", 14)
	pdf.CellFormat(0, 10, "Waste collection report", "", 1, "C", false, 0, "")

	pdf.SetFont(fontName, "", 10)
	pdf.CellFormat(0, 6, tr(fmt.Sprintf("Prepared for %s on %s", safeValue(report.User), formatDateTime(report.GeneratedAt))), "", 1, "C", false, 0, "")
	pdf.CellFormat(0, 6, fmt.Sprintf("Date range: %s, waste type: %s", report.Window, report.WasteType), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	s := report.Stats
	section(pdf, "Totals")
	drawTableRow(pdf, []string{"Collections", "Completed", "Completion rate", "Collected, kg", "Average, kg"}, []float64{36, 36, 36, 36, 36}, true)
	drawTableRow(pdf, []string{
		fmt.Sprint(s.TotalCollections),
		fmt.Sprint(s.CompletedCollections),
		fmt.Sprintf("%d%%", s.CompletionRate),
		fmt.Sprint(s.TotalQuantityKg),
		fmt.Sprint(s.AverageQuantityKg),
	}, []float64{36, 36, 36, 36, 36}, false)
	pdf.Ln(4)

	groupingTable(pdf, tr, "By waste type", "Quantity, kg", s.ByType)
	groupingTable(pdf, tr, "By month", "Quantity, kg", s.ByMonth)
	groupingTable(pdf, tr, "Top locations", "Quantity, kg", s.ByLocation)
	groupingTable(pdf, tr, "By status", "Collections", s.ByStatus)

	section(pdf, "Collections")
	widths := []float64{24, 24, 62, 20, 26, 24}
	drawTableRow(pdf, []string{"Date", "Type", "Address", "Kg", "Status", "Completed"}, widths, true)
	for _, c := range report.Collections {
		drawTableRow(pdf, []string{
			formatDate(c.ScheduledDate),
			string(c.WasteType),
			tr(truncate(c.Address, 40)),
			fmt.Sprint(c.QuantityKg),
			string(c.Status),
			formatTimePtr(c.CompletedAt),
		}, widths, false)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func section(pdf *gofpdf.Fpdf, title string) {
	pdf.SetFont(fontName, "B", 12)
	pdf.CellFormat(0, 8, title, "", 1, "L", false, 0, "")
}

func groupingTable(pdf *gofpdf.Fpdf, tr func(string) string, title, valueLabel string, buckets []model.Bucket) {
	if len(buckets) == 0 {
		return
	}
	section(pdf, title)
	widths := []float64{120, 60}
	drawTableRow(pdf, []string{"", valueLabel}, widths, true)
	for _, bucket := range buckets {
		drawTableRow(pdf, []string{tr(safeValue(bucket.Key)), fmt.Sprint(bucket.Value)}, widths, false)
	}
	pdf.Ln(4)
}

func drawTableRow(pdf *gofpdf.Fpdf, cols []string, widths []float64, header bool) {
	style := ""
	if header {
		style = "B"
	}
	pdf.SetFont(fontName, style, 9)
	for i, col := range cols {
		align := "L"
		if i > 0 && !header {
			align = "R"
		}
		pdf.CellFormat(widths[i], 7, col, "1", 0, align, false, 0, "")
	}
	pdf.Ln(-1)
}

func truncate(value string, max int) string {
	runes := []rune(value)
	if len(runes) <= max {
		return value
	}
	return string(runes[:max-3]) + "..."
}

func safeValue(value string) string {
	if strings.TrimSpace(value) == "" {
		return "-"
	}
	return value
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format("02.01.2006")
}

func formatDateTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format("02.01.2006 15:04")
}

func formatTimePtr(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return formatDate(*t)
}
