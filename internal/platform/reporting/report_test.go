package reporting

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/xuri/excelize/v2"

	"github.com/vitalwatch/vitalwatch/internal/domain/analysis"
	"github.com/vitalwatch/vitalwatch/internal/domain/readings"
	"github.com/vitalwatch/vitalwatch/internal/domain/vitals"
)

type fakeReadings struct {
	items   []*readings.Reading
	err     error
	gotDays int
}

func (f *fakeReadings) ListLastDays(_ context.Context, _ uuid.UUID, days int) ([]*readings.Reading, error) {
	f.gotDays = days
	if f.err != nil {
		return nil, f.err
	}
	return f.items, nil
}

type fakeAnalysis struct {
	stats      *analysis.StatsResult
	predict    *analysis.PredictionResult
	statsErr   error
	predictErr error
}

func (f *fakeAnalysis) Stats(_ context.Context, _ uuid.UUID, _ int) (*analysis.StatsResult, error) {
	return f.stats, f.statsErr
}

func (f *fakeAnalysis) Predict(_ context.Context, _ uuid.UUID, _ int) (*analysis.PredictionResult, error) {
	return f.predict, f.predictErr
}

func reading(patientID uuid.UUID, at time.Time, hr, sys, dia int, ox, temp float64) *readings.Reading {
	return &readings.Reading{
		ID:           uuid.New(),
		PatientID:    patientID,
		RecordedAt:   at,
		HeartRate:    hr,
		BPSystolic:   sys,
		BPDiastolic:  dia,
		OxygenPct:    ox,
		TemperatureC: temp,
	}
}

func testFixtures(patientID uuid.UUID) (*fakeReadings, *fakeAnalysis) {
	base := time.Date(2026, 8, 20, 8, 0, 0, 0, time.UTC)
	rs := &fakeReadings{items: []*readings.Reading{
		reading(patientID, base, 75, 118, 76, 98.0, 36.7),
		reading(patientID, base.Add(time.Hour), 130, 118, 76, 98.0, 36.7),
	}}
	an := &fakeAnalysis{
		stats: &analysis.StatsResult{
			PatientID:    patientID,
			Days:         30,
			ReadingCount: 2,
			HeartRate:    analysis.MetricStats{Min: 75, Max: 130, Mean: 102.5, StdDev: 38.89},
			BPSystolic:   analysis.MetricStats{Min: 118, Max: 118, Mean: 118},
			BPDiastolic:  analysis.MetricStats{Min: 76, Max: 76, Mean: 76},
			OxygenPct:    analysis.MetricStats{Min: 98, Max: 98, Mean: 98},
			TemperatureC: analysis.MetricStats{Min: 36.7, Max: 36.7, Mean: 36.7},
		},
		predict: &analysis.PredictionResult{
			PatientID:   patientID,
			Days:        30,
			SampleCount: 2,
			Predictions: []vitals.Prediction{{
				Condition:   "Tachycardia Tendency",
				Confidence:  "50.0%",
				Description: "Frequent elevated heart rate may indicate stress or cardiac issues.",
			}},
		},
	}
	return rs, an
}

func newTestGenerator(rs *fakeReadings, an *fakeAnalysis) *Generator {
	return NewGenerator(rs, an, vitals.NewAnalyzer(vitals.DefaultThresholds()))
}

func openWorkbook(t *testing.T, data []byte) *excelize.File {
	t.Helper()
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("failed to open generated workbook: %v", err)
	}
	t.Cleanup(func() { f.Close() })
	return f
}

func cell(t *testing.T, f *excelize.File, sheet, ref string) string {
	t.Helper()
	v, err := f.GetCellValue(sheet, ref)
	if err != nil {
		t.Fatalf("failed to read %s!%s: %v", sheet, ref, err)
	}
	return v
}

func TestGenerate_WorkbookSheets(t *testing.T) {
	patientID := uuid.New()
	rs, an := testFixtures(patientID)
	gen := newTestGenerator(rs, an)

	data, err := gen.Generate(context.Background(), patientID, 30)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	f := openWorkbook(t, data)
	sheets := f.GetSheetList()
	if len(sheets) != 3 {
		t.Fatalf("expected 3 sheets, got %v", sheets)
	}
	for _, want := range []string{sheetReadings, sheetStatistics, sheetPredictions} {
		found := false
		for _, s := range sheets {
			if s == want {
				found = true
			}
		}
		if !found {
			t.Errorf("missing sheet %s in %v", want, sheets)
		}
	}
}

func TestGenerate_ReadingsSheet(t *testing.T) {
	patientID := uuid.New()
	rs, an := testFixtures(patientID)
	gen := newTestGenerator(rs, an)

	data, err := gen.Generate(context.Background(), patientID, 30)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	f := openWorkbook(t, data)

	if got := cell(t, f, sheetReadings, "A1"); got != "Recorded At" {
		t.Errorf("expected header Recorded At, got %q", got)
	}
	if got := cell(t, f, sheetReadings, "A2"); got != "2026-08-20 08:00:00" {
		t.Errorf("unexpected timestamp %q", got)
	}
	if got := cell(t, f, sheetReadings, "B2"); got != "75" {
		t.Errorf("expected heart rate 75, got %q", got)
	}
	if got := cell(t, f, sheetReadings, "G2"); got != "Normal" {
		t.Errorf("expected Normal status, got %q", got)
	}
	if got := cell(t, f, sheetReadings, "G3"); got != "Danger" {
		t.Errorf("expected Danger status, got %q", got)
	}
	if got := cell(t, f, sheetReadings, "H3"); !strings.Contains(got, "Heart rate is very high") {
		t.Errorf("expected tachycardia detail, got %q", got)
	}
}

func TestGenerate_StatisticsSheet(t *testing.T) {
	patientID := uuid.New()
	rs, an := testFixtures(patientID)
	gen := newTestGenerator(rs, an)

	data, err := gen.Generate(context.Background(), patientID, 30)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	f := openWorkbook(t, data)

	if got := cell(t, f, sheetStatistics, "B1"); got != patientID.String() {
		t.Errorf("expected patient id %s, got %q", patientID, got)
	}
	if got := cell(t, f, sheetStatistics, "B3"); got != "2" {
		t.Errorf("expected reading count 2, got %q", got)
	}
	if got := cell(t, f, sheetStatistics, "A5"); got != "Metric" {
		t.Errorf("expected Metric header, got %q", got)
	}
	if got := cell(t, f, sheetStatistics, "A6"); got != "Heart Rate (BPM)" {
		t.Errorf("expected heart rate row, got %q", got)
	}
	if got := cell(t, f, sheetStatistics, "C6"); got != "130" {
		t.Errorf("expected heart rate max 130, got %q", got)
	}
}

func TestGenerate_PredictionsSheet(t *testing.T) {
	patientID := uuid.New()
	rs, an := testFixtures(patientID)
	gen := newTestGenerator(rs, an)

	data, err := gen.Generate(context.Background(), patientID, 30)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	f := openWorkbook(t, data)

	if got := cell(t, f, sheetPredictions, "A2"); got != "Tachycardia Tendency" {
		t.Errorf("expected condition row, got %q", got)
	}
	if got := cell(t, f, sheetPredictions, "B2"); got != "50.0%" {
		t.Errorf("expected confidence 50.0%%, got %q", got)
	}
}

func TestGenerate_NoPredictions(t *testing.T) {
	patientID := uuid.New()
	rs, an := testFixtures(patientID)
	an.predict.Predictions = nil
	gen := newTestGenerator(rs, an)

	data, err := gen.Generate(context.Background(), patientID, 30)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	f := openWorkbook(t, data)

	if got := cell(t, f, sheetPredictions, "A2"); !strings.Contains(got, "No condition risks") {
		t.Errorf("expected placeholder row, got %q", got)
	}
}

func TestGenerate_StatsError(t *testing.T) {
	patientID := uuid.New()
	rs, an := testFixtures(patientID)
	an.statsErr = errors.New("days must be between 1 and 365")
	gen := newTestGenerator(rs, an)

	if _, err := gen.Generate(context.Background(), patientID, 500); err == nil {
		t.Fatal("expected error from stats source")
	}
}

func TestFilename(t *testing.T) {
	patientID := uuid.MustParse("6f1b3a1e-95c4-4f7e-9c19-6a1d2d1b8a11")
	now := time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC)

	got := Filename(patientID, now)
	want := "vitalwatch-report-6f1b3a1e-95c4-4f7e-9c19-6a1d2d1b8a11-2026-08-25.xlsx"
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestHandler_Download(t *testing.T) {
	patientID := uuid.New()
	rs, an := testFixtures(patientID)
	h := NewHandler(newTestGenerator(rs, an))
	e := echo.New()

	req := httptest.NewRequest(http.MethodGet, "/?days=14", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(patientID.String())

	if err := h.Download(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get(echo.HeaderContentType); ct != xlsxContentType {
		t.Errorf("expected xlsx content type, got %q", ct)
	}
	if cd := rec.Header().Get(echo.HeaderContentDisposition); !strings.HasPrefix(cd, `attachment; filename="vitalwatch-report-`) {
		t.Errorf("unexpected content disposition %q", cd)
	}
	if rs.gotDays != 14 {
		t.Errorf("expected days=14 passed through, got %d", rs.gotDays)
	}

	f := openWorkbook(t, rec.Body.Bytes())
	if len(f.GetSheetList()) != 3 {
		t.Errorf("expected 3 sheets in download, got %v", f.GetSheetList())
	}
}

func TestHandler_Download_DefaultDays(t *testing.T) {
	patientID := uuid.New()
	rs, an := testFixtures(patientID)
	h := NewHandler(newTestGenerator(rs, an))
	e := echo.New()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(patientID.String())

	if err := h.Download(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rs.gotDays != DefaultReportDays {
		t.Errorf("expected default %d days, got %d", DefaultReportDays, rs.gotDays)
	}
}

func TestHandler_Download_InvalidID(t *testing.T) {
	patientID := uuid.New()
	rs, an := testFixtures(patientID)
	h := NewHandler(newTestGenerator(rs, an))
	e := echo.New()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("not-a-uuid")

	if err := h.Download(c); err == nil {
		t.Error("expected error for invalid id")
	}
}

func TestHandler_Download_InvalidDays(t *testing.T) {
	patientID := uuid.New()
	rs, an := testFixtures(patientID)
	h := NewHandler(newTestGenerator(rs, an))
	e := echo.New()

	req := httptest.NewRequest(http.MethodGet, "/?days=soon", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(patientID.String())

	if err := h.Download(c); err == nil {
		t.Error("expected error for non-numeric days")
	}
}
