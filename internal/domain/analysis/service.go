package analysis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/vitalwatch/vitalwatch/internal/domain/readings"
	"github.com/vitalwatch/vitalwatch/internal/domain/vitals"
)

// Window defaults and bounds, in days.
const (
	DefaultPredictionDays = 7
	DefaultStatsDays      = 7
	DefaultTrendDays      = 30
	MaxWindowDays         = 365
)

// Service answers status, prediction, and statistics questions by reading
// stored observations and running them through the analyzer. It owns no
// table of its own.
type Service struct {
	readings readings.Repository
	analyzer *vitals.Analyzer
}

func NewService(readings readings.Repository, analyzer *vitals.Analyzer) *Service {
	return &Service{readings: readings, analyzer: analyzer}
}

func validDays(days int) error {
	if days < 1 || days > MaxWindowDays {
		return fmt.Errorf("days must be between 1 and %d", MaxWindowDays)
	}
	return nil
}

// Status classifies the patient's latest reading. A patient without
// readings gets the Unknown verdict, not an error.
func (s *Service) Status(ctx context.Context, patientID uuid.UUID) (*StatusResult, error) {
	r, err := s.readings.Latest(ctx, patientID)
	if errors.Is(err, readings.ErrNoReadings) {
		return &StatusResult{
			PatientID: patientID,
			Status:    s.analyzer.OverallStatus(nil),
		}, nil
	}
	if err != nil {
		return nil, err
	}
	sample := r.Sample()
	return &StatusResult{
		PatientID:  patientID,
		Status:     s.analyzer.OverallStatus(&sample),
		RecordedAt: &r.RecordedAt,
	}, nil
}

// Predict runs the condition rules over the last N days of readings.
func (s *Service) Predict(ctx context.Context, patientID uuid.UUID, days int) (*PredictionResult, error) {
	if err := validDays(days); err != nil {
		return nil, err
	}
	rs, err := s.window(ctx, patientID, days)
	if err != nil {
		return nil, err
	}
	samples := readings.Samples(rs)
	predictions := s.analyzer.PredictConditions(samples)
	if predictions == nil {
		predictions = []vitals.Prediction{}
	}
	return &PredictionResult{
		PatientID:   patientID,
		Days:        days,
		SampleCount: len(samples),
		Predictions: predictions,
	}, nil
}

// Stats summarizes each metric over the last N days of readings.
func (s *Service) Stats(ctx context.Context, patientID uuid.UUID, days int) (*StatsResult, error) {
	if err := validDays(days); err != nil {
		return nil, err
	}
	rs, err := s.window(ctx, patientID, days)
	if err != nil {
		return nil, err
	}

	result := &StatsResult{PatientID: patientID, Days: days, ReadingCount: len(rs)}
	if len(rs) == 0 {
		return result, nil
	}

	set := newSeries(rs)
	result.HeartRate = summarize(set.heartRate)
	result.BPSystolic = summarize(set.systolic)
	result.BPDiastolic = summarize(set.diastolic)
	result.OxygenPct = summarize(set.oxygen)
	result.TemperatureC = summarize(set.temperature)
	return result, nil
}

// Trends fits a least-squares line per metric over the last N days of
// readings. Below two readings every trend reads stable with zero slope.
func (s *Service) Trends(ctx context.Context, patientID uuid.UUID, days int) (*TrendsResult, error) {
	if err := validDays(days); err != nil {
		return nil, err
	}
	rs, err := s.window(ctx, patientID, days)
	if err != nil {
		return nil, err
	}

	result := &TrendsResult{PatientID: patientID, Days: days, ReadingCount: len(rs)}
	set := newSeries(rs)
	result.HeartRate = trendOf(set.elapsedDays, set.heartRate, heartRateDeadband)
	result.BPSystolic = trendOf(set.elapsedDays, set.systolic, bloodPressureDeadband)
	result.BPDiastolic = trendOf(set.elapsedDays, set.diastolic, bloodPressureDeadband)
	result.OxygenPct = trendOf(set.elapsedDays, set.oxygen, oxygenDeadband)
	result.TemperatureC = trendOf(set.elapsedDays, set.temperature, temperatureDeadband)
	return result, nil
}

func (s *Service) window(ctx context.Context, patientID uuid.UUID, days int) ([]*readings.Reading, error) {
	since := time.Now().UTC().AddDate(0, 0, -days)
	return s.readings.ListSince(ctx, patientID, since)
}
