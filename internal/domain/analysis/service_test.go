package analysis

import (
	"context"
	"fmt"
	"math"
	"sort"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/vitalwatch/vitalwatch/internal/domain/readings"
	"github.com/vitalwatch/vitalwatch/internal/domain/vitals"
)

// -- Mock reading store --

type mockReadings struct {
	items []*readings.Reading
}

func (m *mockReadings) Create(_ context.Context, r *readings.Reading) error {
	r.ID = uuid.New()
	m.items = append(m.items, r)
	return nil
}

func (m *mockReadings) GetByID(_ context.Context, id uuid.UUID) (*readings.Reading, error) {
	for _, r := range m.items {
		if r.ID == id {
			return r, nil
		}
	}
	return nil, fmt.Errorf("not found")
}

func (m *mockReadings) Latest(_ context.Context, patientID uuid.UUID) (*readings.Reading, error) {
	var latest *readings.Reading
	for _, r := range m.items {
		if r.PatientID != patientID {
			continue
		}
		if latest == nil || r.RecordedAt.After(latest.RecordedAt) {
			latest = r
		}
	}
	if latest == nil {
		return nil, readings.ErrNoReadings
	}
	return latest, nil
}

func (m *mockReadings) ListRange(_ context.Context, patientID uuid.UUID, from, to time.Time, limit, offset int) ([]*readings.Reading, int, error) {
	var result []*readings.Reading
	for _, r := range m.items {
		if r.PatientID == patientID && !r.RecordedAt.Before(from) && !r.RecordedAt.After(to) {
			result = append(result, r)
		}
	}
	return result, len(result), nil
}

func (m *mockReadings) ListSince(_ context.Context, patientID uuid.UUID, since time.Time) ([]*readings.Reading, error) {
	var result []*readings.Reading
	for _, r := range m.items {
		if r.PatientID == patientID && !r.RecordedAt.Before(since) {
			result = append(result, r)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].RecordedAt.Before(result[j].RecordedAt)
	})
	return result, nil
}

func (m *mockReadings) LatestPerPatient(_ context.Context) ([]*readings.Reading, error) {
	byPatient := make(map[uuid.UUID]*readings.Reading)
	for _, r := range m.items {
		prev, ok := byPatient[r.PatientID]
		if !ok || r.RecordedAt.After(prev.RecordedAt) {
			byPatient[r.PatientID] = r
		}
	}
	var result []*readings.Reading
	for _, r := range byPatient {
		result = append(result, r)
	}
	return result, nil
}

// -- Fixtures --

func newTestService(rs ...*readings.Reading) *Service {
	repo := &mockReadings{}
	for _, r := range rs {
		repo.Create(context.Background(), r)
	}
	return NewService(repo, vitals.NewAnalyzer(vitals.DefaultThresholds()))
}

func reading(patientID uuid.UUID, age time.Duration, hr, sys, dia int, ox, temp float64) *readings.Reading {
	return &readings.Reading{
		PatientID:    patientID,
		RecordedAt:   time.Now().UTC().Add(-age),
		HeartRate:    hr,
		BPSystolic:   sys,
		BPDiastolic:  dia,
		OxygenPct:    ox,
		TemperatureC: temp,
	}
}

func normalReading(patientID uuid.UUID, age time.Duration) *readings.Reading {
	return reading(patientID, age, 75, 118, 76, 98.0, 36.7)
}

// -- Status --

func TestStatus_NoReadings(t *testing.T) {
	svc := newTestService()

	result, err := svc.Status(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Status.Severity != vitals.SeverityUnknown {
		t.Errorf("expected Unknown, got %v", result.Status.Severity)
	}
	if result.Status.Message != vitals.NoDataMessage {
		t.Errorf("expected no-data message, got %q", result.Status.Message)
	}
	if result.RecordedAt != nil {
		t.Error("expected nil RecordedAt without readings")
	}
}

func TestStatus_UsesLatestReading(t *testing.T) {
	patientID := uuid.New()
	svc := newTestService(
		normalReading(patientID, 2*time.Hour),
		reading(patientID, 10*time.Minute, 130, 118, 76, 98.0, 36.7),
	)

	result, err := svc.Status(context.Background(), patientID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Status.Severity != vitals.SeverityDanger {
		t.Errorf("expected Danger from latest reading, got %v", result.Status.Severity)
	}
	if result.RecordedAt == nil {
		t.Fatal("expected RecordedAt to be set")
	}
}

// -- Predict --

func TestPredict_HypertensionRisk(t *testing.T) {
	patientID := uuid.New()
	var rs []*readings.Reading
	for i := 0; i < 6; i++ {
		rs = append(rs, reading(patientID, time.Duration(i)*time.Hour, 75, 145, 76, 98.0, 36.7))
	}
	for i := 6; i < 10; i++ {
		rs = append(rs, normalReading(patientID, time.Duration(i)*time.Hour))
	}
	svc := newTestService(rs...)

	result, err := svc.Predict(context.Background(), patientID, 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.SampleCount != 10 {
		t.Fatalf("expected 10 samples, got %d", result.SampleCount)
	}
	if len(result.Predictions) != 1 {
		t.Fatalf("expected 1 prediction, got %d", len(result.Predictions))
	}
	if result.Predictions[0].Condition != "Hypertension Risk" {
		t.Errorf("expected Hypertension Risk, got %s", result.Predictions[0].Condition)
	}
	if result.Predictions[0].Confidence != "60.0%" {
		t.Errorf("expected confidence 60.0%%, got %s", result.Predictions[0].Confidence)
	}
}

func TestPredict_NoReadings(t *testing.T) {
	svc := newTestService()

	result, err := svc.Predict(context.Background(), uuid.New(), 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.SampleCount != 0 {
		t.Errorf("expected 0 samples, got %d", result.SampleCount)
	}
	if result.Predictions == nil || len(result.Predictions) != 0 {
		t.Errorf("expected empty prediction list, got %v", result.Predictions)
	}
}

func TestPredict_DaysBounds(t *testing.T) {
	svc := newTestService()

	if _, err := svc.Predict(context.Background(), uuid.New(), 0); err == nil {
		t.Error("expected error for days=0")
	}
	if _, err := svc.Predict(context.Background(), uuid.New(), 366); err == nil {
		t.Error("expected error for days=366")
	}
}

// -- Stats --

func TestStats(t *testing.T) {
	patientID := uuid.New()
	svc := newTestService(
		reading(patientID, 3*time.Hour, 70, 110, 70, 97.0, 36.5),
		reading(patientID, 2*time.Hour, 80, 120, 80, 98.0, 36.7),
		reading(patientID, 1*time.Hour, 90, 130, 90, 99.0, 36.9),
	)

	result, err := svc.Stats(context.Background(), patientID, 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.ReadingCount != 3 {
		t.Fatalf("expected 3 readings, got %d", result.ReadingCount)
	}

	hr := result.HeartRate
	if hr.Min != 70 || hr.Max != 90 {
		t.Errorf("expected heart rate range 70-90, got %v-%v", hr.Min, hr.Max)
	}
	if math.Abs(hr.Mean-80) > 1e-9 {
		t.Errorf("expected heart rate mean 80, got %v", hr.Mean)
	}
	if math.Abs(hr.StdDev-10) > 1e-9 {
		t.Errorf("expected heart rate stddev 10, got %v", hr.StdDev)
	}
}

func TestStats_NoReadings(t *testing.T) {
	svc := newTestService()

	result, err := svc.Stats(context.Background(), uuid.New(), 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.ReadingCount != 0 {
		t.Errorf("expected 0 readings, got %d", result.ReadingCount)
	}
	if result.HeartRate.Mean != 0 {
		t.Errorf("expected zero stats without readings, got mean %v", result.HeartRate.Mean)
	}
}

func TestStats_SingleReading(t *testing.T) {
	patientID := uuid.New()
	svc := newTestService(normalReading(patientID, time.Hour))

	result, err := svc.Stats(context.Background(), patientID, 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.HeartRate.StdDev != 0 {
		t.Errorf("expected zero stddev for a single reading, got %v", result.HeartRate.StdDev)
	}
	if result.HeartRate.Mean != 75 {
		t.Errorf("expected mean 75, got %v", result.HeartRate.Mean)
	}
}

// -- Trends --

func TestTrends_RisingSystolic(t *testing.T) {
	patientID := uuid.New()
	svc := newTestService(
		reading(patientID, 48*time.Hour, 75, 120, 76, 98.0, 36.7),
		reading(patientID, 24*time.Hour, 75, 130, 76, 98.0, 36.7),
		reading(patientID, 0, 75, 140, 76, 98.0, 36.7),
	)

	result, err := svc.Trends(context.Background(), patientID, 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.BPSystolic.Direction != TrendRising {
		t.Errorf("expected rising systolic, got %s", result.BPSystolic.Direction)
	}
	if math.Abs(result.BPSystolic.SlopePerDay-10) > 1e-6 {
		t.Errorf("expected slope 10/day, got %v", result.BPSystolic.SlopePerDay)
	}
	if result.OxygenPct.Direction != TrendStable {
		t.Errorf("expected stable oxygen, got %s", result.OxygenPct.Direction)
	}
}

func TestTrends_FallingOxygen(t *testing.T) {
	patientID := uuid.New()
	svc := newTestService(
		reading(patientID, 48*time.Hour, 75, 118, 76, 98.0, 36.7),
		reading(patientID, 24*time.Hour, 75, 118, 76, 96.0, 36.7),
		reading(patientID, 0, 75, 118, 76, 94.0, 36.7),
	)

	result, err := svc.Trends(context.Background(), patientID, 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.OxygenPct.Direction != TrendFalling {
		t.Errorf("expected falling oxygen, got %s", result.OxygenPct.Direction)
	}
}

func TestTrends_TooFewReadings(t *testing.T) {
	patientID := uuid.New()
	svc := newTestService(normalReading(patientID, time.Hour))

	result, err := svc.Trends(context.Background(), patientID, 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.ReadingCount != 1 {
		t.Fatalf("expected 1 reading, got %d", result.ReadingCount)
	}
	if result.HeartRate.Direction != TrendStable || result.HeartRate.SlopePerDay != 0 {
		t.Errorf("expected stable zero-slope trend, got %+v", result.HeartRate)
	}
}
