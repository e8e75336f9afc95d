package analysis

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/vitalwatch/vitalwatch/internal/domain/readings"
)

// Slope deadbands in metric units per day. A fitted slope inside the band
// is reported as stable.
const (
	heartRateDeadband     = 0.5  // BPM/day
	bloodPressureDeadband = 0.5  // mmHg/day
	oxygenDeadband        = 0.1  // %/day
	temperatureDeadband   = 0.05 // °C/day
)

// series holds one reading window as parallel float columns. elapsedDays
// measures each reading's offset from the first, the regression x-axis.
type series struct {
	elapsedDays []float64
	heartRate   []float64
	systolic    []float64
	diastolic   []float64
	oxygen      []float64
	temperature []float64
}

func newSeries(rs []*readings.Reading) series {
	n := len(rs)
	set := series{
		elapsedDays: make([]float64, n),
		heartRate:   make([]float64, n),
		systolic:    make([]float64, n),
		diastolic:   make([]float64, n),
		oxygen:      make([]float64, n),
		temperature: make([]float64, n),
	}
	if n == 0 {
		return set
	}
	start := rs[0].RecordedAt
	for i, r := range rs {
		set.elapsedDays[i] = r.RecordedAt.Sub(start).Hours() / 24
		set.heartRate[i] = float64(r.HeartRate)
		set.systolic[i] = float64(r.BPSystolic)
		set.diastolic[i] = float64(r.BPDiastolic)
		set.oxygen[i] = r.OxygenPct
		set.temperature[i] = r.TemperatureC
	}
	return set
}

func summarize(xs []float64) MetricStats {
	ms := MetricStats{
		Min:  floats.Min(xs),
		Max:  floats.Max(xs),
		Mean: stat.Mean(xs, nil),
	}
	if len(xs) > 1 {
		ms.StdDev = stat.StdDev(xs, nil)
	}
	return ms
}

func trendOf(x, y []float64, deadband float64) MetricTrend {
	if len(x) < 2 {
		return MetricTrend{Direction: TrendStable}
	}
	_, slope := stat.LinearRegression(x, y, nil, false)
	if math.IsNaN(slope) || math.IsInf(slope, 0) {
		// All readings at the same instant leave the fit undefined.
		return MetricTrend{Direction: TrendStable}
	}
	trend := MetricTrend{SlopePerDay: slope}
	switch {
	case slope > deadband:
		trend.Direction = TrendRising
	case slope < -deadband:
		trend.Direction = TrendFalling
	default:
		trend.Direction = TrendStable
	}
	return trend
}
