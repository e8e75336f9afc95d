// Package reporting renders a patient's reading window into a downloadable
// XLSX workbook: a Readings sheet with per-reading status, a Statistics
// sheet with the per-metric summary, and a Predictions sheet with any
// condition risks flagged for the window.
package reporting

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"github.com/vitalwatch/vitalwatch/internal/domain/analysis"
	"github.com/vitalwatch/vitalwatch/internal/domain/readings"
	"github.com/vitalwatch/vitalwatch/internal/domain/vitals"
)

// DefaultReportDays is the window used when the request does not name one.
const DefaultReportDays = 30

const (
	sheetReadings    = "Readings"
	sheetStatistics  = "Statistics"
	sheetPredictions = "Predictions"

	timestampLayout = "2006-01-02 15:04:05"
)

// ReadingSource is the subset of the readings service the generator needs.
type ReadingSource interface {
	ListLastDays(ctx context.Context, patientID uuid.UUID, days int) ([]*readings.Reading, error)
}

// AnalysisSource is the subset of the analysis service the generator needs.
type AnalysisSource interface {
	Stats(ctx context.Context, patientID uuid.UUID, days int) (*analysis.StatsResult, error)
	Predict(ctx context.Context, patientID uuid.UUID, days int) (*analysis.PredictionResult, error)
}

// Generator assembles the workbook from stored readings and the analysis
// results for the same window.
type Generator struct {
	readings ReadingSource
	analysis AnalysisSource
	analyzer *vitals.Analyzer
}

func NewGenerator(readings ReadingSource, analysis AnalysisSource, analyzer *vitals.Analyzer) *Generator {
	return &Generator{readings: readings, analysis: analysis, analyzer: analyzer}
}

// Generate builds the report workbook for the patient's last N days and
// returns the encoded XLSX bytes.
func (g *Generator) Generate(ctx context.Context, patientID uuid.UUID, days int) ([]byte, error) {
	rs, err := g.readings.ListLastDays(ctx, patientID, days)
	if err != nil {
		return nil, fmt.Errorf("report window: %w", err)
	}
	stats, err := g.analysis.Stats(ctx, patientID, days)
	if err != nil {
		return nil, fmt.Errorf("report stats: %w", err)
	}
	predictions, err := g.analysis.Predict(ctx, patientID, days)
	if err != nil {
		return nil, fmt.Errorf("report predictions: %w", err)
	}

	f := excelize.NewFile()
	// WriteTo needs the file open, so Close only runs on the error paths
	// until the buffer is written.

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#E6F3FF"},
			Pattern: 1,
		},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	readingsIndex, err := g.writeReadingsSheet(f, headerStyle, rs)
	if err != nil {
		f.Close()
		return nil, err
	}
	if err := g.writeStatisticsSheet(f, headerStyle, stats); err != nil {
		f.Close()
		return nil, err
	}
	if err := g.writePredictionsSheet(f, headerStyle, predictions); err != nil {
		f.Close()
		return nil, err
	}

	f.DeleteSheet("Sheet1")
	f.SetActiveSheet(readingsIndex)

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to encode workbook: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("failed to close workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func (g *Generator) writeReadingsSheet(f *excelize.File, headerStyle int, rs []*readings.Reading) (int, error) {
	index, err := f.NewSheet(sheetReadings)
	if err != nil {
		return 0, fmt.Errorf("failed to create sheet %s: %w", sheetReadings, err)
	}

	headers := []string{
		"Recorded At",
		"Heart Rate (BPM)",
		"Systolic (mmHg)",
		"Diastolic (mmHg)",
		"Oxygen (%)",
		"Temperature (°C)",
		"Status",
		"Details",
	}
	if err := writeHeaderRow(f, sheetReadings, headerStyle, headers); err != nil {
		return 0, err
	}

	widths := []float64{20, 17, 16, 17, 12, 17, 12, 60}
	if err := setColumnWidths(f, sheetReadings, widths); err != nil {
		return 0, err
	}

	for i, r := range rs {
		sample := r.Sample()
		overall := g.analyzer.OverallStatus(&sample)
		row := i + 2
		values := []interface{}{
			r.RecordedAt.UTC().Format(timestampLayout),
			r.HeartRate,
			r.BPSystolic,
			r.BPDiastolic,
			r.OxygenPct,
			r.TemperatureC,
			overall.Severity.String(),
			overall.Message,
		}
		if err := writeRow(f, sheetReadings, row, values); err != nil {
			return 0, err
		}
	}

	if err := freezeHeader(f, sheetReadings); err != nil {
		return 0, err
	}
	return index, nil
}

func (g *Generator) writeStatisticsSheet(f *excelize.File, headerStyle int, stats *analysis.StatsResult) error {
	if _, err := f.NewSheet(sheetStatistics); err != nil {
		return fmt.Errorf("failed to create sheet %s: %w", sheetStatistics, err)
	}

	meta := [][]interface{}{
		{"Patient ID", stats.PatientID.String()},
		{"Window (days)", stats.Days},
		{"Reading Count", stats.ReadingCount},
	}
	for i, pair := range meta {
		if err := writeRow(f, sheetStatistics, i+1, pair); err != nil {
			return err
		}
	}

	const tableRow = 5
	headers := []string{"Metric", "Min", "Max", "Mean", "Std Dev"}
	if err := writeRow(f, sheetStatistics, tableRow, toValues(headers)); err != nil {
		return err
	}
	first, err := excelize.CoordinatesToCellName(1, tableRow)
	if err != nil {
		return fmt.Errorf("failed to convert coordinates: %w", err)
	}
	last, err := excelize.CoordinatesToCellName(len(headers), tableRow)
	if err != nil {
		return fmt.Errorf("failed to convert coordinates: %w", err)
	}
	if err := f.SetCellStyle(sheetStatistics, first, last, headerStyle); err != nil {
		return fmt.Errorf("failed to style header: %w", err)
	}

	rows := [][]interface{}{
		statsRow("Heart Rate (BPM)", stats.HeartRate),
		statsRow("Systolic BP (mmHg)", stats.BPSystolic),
		statsRow("Diastolic BP (mmHg)", stats.BPDiastolic),
		statsRow("Oxygen Saturation (%)", stats.OxygenPct),
		statsRow("Temperature (°C)", stats.TemperatureC),
	}
	for i, values := range rows {
		if err := writeRow(f, sheetStatistics, tableRow+1+i, values); err != nil {
			return err
		}
	}

	widths := []float64{24, 12, 12, 12, 12}
	return setColumnWidths(f, sheetStatistics, widths)
}

func (g *Generator) writePredictionsSheet(f *excelize.File, headerStyle int, result *analysis.PredictionResult) error {
	if _, err := f.NewSheet(sheetPredictions); err != nil {
		return fmt.Errorf("failed to create sheet %s: %w", sheetPredictions, err)
	}

	headers := []string{"Condition", "Confidence", "Description"}
	if err := writeHeaderRow(f, sheetPredictions, headerStyle, headers); err != nil {
		return err
	}
	widths := []float64{26, 14, 70}
	if err := setColumnWidths(f, sheetPredictions, widths); err != nil {
		return err
	}

	if len(result.Predictions) == 0 {
		return writeRow(f, sheetPredictions, 2, []interface{}{
			fmt.Sprintf("No condition risks identified across %d readings.", result.SampleCount),
		})
	}
	for i, p := range result.Predictions {
		values := []interface{}{p.Condition, p.Confidence, p.Description}
		if err := writeRow(f, sheetPredictions, i+2, values); err != nil {
			return err
		}
	}
	return nil
}

func statsRow(label string, m analysis.MetricStats) []interface{} {
	return []interface{}{label, m.Min, m.Max, m.Mean, m.StdDev}
}

func toValues(ss []string) []interface{} {
	values := make([]interface{}, len(ss))
	for i, s := range ss {
		values[i] = s
	}
	return values
}

func writeHeaderRow(f *excelize.File, sheet string, style int, headers []string) error {
	for col, header := range headers {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return fmt.Errorf("failed to convert coordinates: %w", err)
		}
		if err := f.SetCellValue(sheet, cell, header); err != nil {
			return fmt.Errorf("failed to set header cell %s: %w", cell, err)
		}
		if err := f.SetCellStyle(sheet, cell, cell, style); err != nil {
			return fmt.Errorf("failed to style header cell %s: %w", cell, err)
		}
	}
	return nil
}

func writeRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	for col, value := range values {
		cell, err := excelize.CoordinatesToCellName(col+1, row)
		if err != nil {
			return fmt.Errorf("failed to convert coordinates: %w", err)
		}
		if err := f.SetCellValue(sheet, cell, value); err != nil {
			return fmt.Errorf("failed to set cell %s: %w", cell, err)
		}
	}
	return nil
}

func setColumnWidths(f *excelize.File, sheet string, widths []float64) error {
	for i, width := range widths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return fmt.Errorf("failed to convert column number: %w", err)
		}
		if err := f.SetColWidth(sheet, col, col, width); err != nil {
			return fmt.Errorf("failed to set column width: %w", err)
		}
	}
	return nil
}

func freezeHeader(f *excelize.File, sheet string) error {
	if err := f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return fmt.Errorf("failed to freeze header: %w", err)
	}
	return nil
}

// Filename names the download after the patient and the generation date.
func Filename(patientID uuid.UUID, now time.Time) string {
	return fmt.Sprintf("vitalwatch-report-%s-%s.xlsx", patientID, now.UTC().Format("2006-01-02"))
}
