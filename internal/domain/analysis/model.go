package analysis

import (
	"time"

	"github.com/google/uuid"

	"github.com/vitalwatch/vitalwatch/internal/domain/vitals"
)

// StatusResult wraps the overall verdict for a patient's latest reading.
// RecordedAt is nil when the patient has no readings yet.
type StatusResult struct {
	PatientID  uuid.UUID      `json:"patient_id"`
	Status     vitals.Overall `json:"status"`
	RecordedAt *time.Time     `json:"recorded_at,omitempty"`
}

// PredictionResult reports the condition risks found in a reading window.
type PredictionResult struct {
	PatientID   uuid.UUID           `json:"patient_id"`
	Days        int                 `json:"days"`
	SampleCount int                 `json:"sample_count"`
	Predictions []vitals.Prediction `json:"predictions"`
}

// MetricStats summarizes one metric over a reading window. StdDev is the
// sample standard deviation and reads zero below two readings.
type MetricStats struct {
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"stddev"`
}

// StatsResult carries per-metric summaries for a window. With zero
// readings every metric stays at its zero value; check ReadingCount.
type StatsResult struct {
	PatientID    uuid.UUID   `json:"patient_id"`
	Days         int         `json:"days"`
	ReadingCount int         `json:"reading_count"`
	HeartRate    MetricStats `json:"heart_rate"`
	BPSystolic   MetricStats `json:"bp_systolic"`
	BPDiastolic  MetricStats `json:"bp_diastolic"`
	OxygenPct    MetricStats `json:"oxygen_pct"`
	TemperatureC MetricStats `json:"temperature_c"`
}

// Trend directions.
const (
	TrendRising  = "rising"
	TrendFalling = "falling"
	TrendStable  = "stable"
)

// MetricTrend is the least-squares slope of one metric in units per day.
// Slopes inside the metric's deadband read as stable.
type MetricTrend struct {
	SlopePerDay float64 `json:"slope_per_day"`
	Direction   string  `json:"direction"`
}

// TrendsResult carries per-metric trend lines for a window.
type TrendsResult struct {
	PatientID    uuid.UUID   `json:"patient_id"`
	Days         int         `json:"days"`
	ReadingCount int         `json:"reading_count"`
	HeartRate    MetricTrend `json:"heart_rate"`
	BPSystolic   MetricTrend `json:"bp_systolic"`
	BPDiastolic  MetricTrend `json:"bp_diastolic"`
	OxygenPct    MetricTrend `json:"oxygen_pct"`
	TemperatureC MetricTrend `json:"temperature_c"`
}
