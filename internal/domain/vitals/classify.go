package vitals

import "fmt"

// Metric names attached to verdicts.
const (
	MetricHeartRate     = "heart_rate"
	MetricBloodPressure = "blood_pressure"
	MetricSystolic      = "bp_systolic"
	MetricDiastolic     = "bp_diastolic"
	MetricOxygen        = "oxygen"
	MetricTemperature   = "temperature"
)

// Verdict is the classification of a single metric value.
type Verdict struct {
	Metric   string   `json:"metric"`
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
}

// BloodPressureVerdict carries the combined blood-pressure verdict plus the
// independent systolic and diastolic sub-verdicts, which are always
// produced regardless of the combined outcome.
type BloodPressureVerdict struct {
	Verdict
	Systolic  Verdict `json:"systolic"`
	Diastolic Verdict `json:"diastolic"`
}

// Classifier maps raw metric values onto the severity ladder using a fixed
// Thresholds table. It never validates its input: implausible values run
// through the same comparisons as plausible ones and classification always
// completes.
type Classifier struct {
	t Thresholds
}

func NewClassifier(t Thresholds) *Classifier {
	return &Classifier{t: t}
}

// HeartRate classifies a pulse in beats per minute. The Danger band starts
// strictly above the very-high cut-point, so a reading exactly on it is
// still Warning; readings exactly on the low or high cut-points are Normal.
func (c *Classifier) HeartRate(bpm int) Verdict {
	v := Verdict{Metric: MetricHeartRate}
	switch {
	case bpm > c.t.HeartRateVeryHigh:
		v.Severity = SeverityDanger
		v.Message = fmt.Sprintf("Heart rate is very high (%d BPM) - Tachycardia", bpm)
	case bpm < c.t.HeartRateLow:
		v.Severity = SeverityWarning
		v.Message = fmt.Sprintf("Heart rate is low (%d BPM) - Bradycardia", bpm)
	case bpm > c.t.HeartRateHigh:
		v.Severity = SeverityWarning
		v.Message = fmt.Sprintf("Heart rate is elevated (%d BPM) - Tachycardia", bpm)
	default:
		v.Severity = SeverityNormal
		v.Message = fmt.Sprintf("Heart rate is normal (%d BPM)", bpm)
	}
	return v
}

// BloodPressure classifies systolic and diastolic pressure independently,
// each against its own ladder (inclusive lower bounds), and combines them
// by taking the worse severity.
func (c *Classifier) BloodPressure(systolic, diastolic int) BloodPressureVerdict {
	sys := Verdict{Metric: MetricSystolic}
	switch {
	case systolic >= c.t.SystolicVeryHigh:
		sys.Severity = SeverityDanger
		sys.Message = fmt.Sprintf("Systolic pressure is very high (%d mmHg)", systolic)
	case systolic >= c.t.SystolicHigh:
		sys.Severity = SeverityWarning
		sys.Message = fmt.Sprintf("Systolic pressure is high (%d mmHg)", systolic)
	case systolic >= c.t.SystolicElevated:
		sys.Severity = SeverityCaution
		sys.Message = fmt.Sprintf("Systolic pressure is elevated (%d mmHg)", systolic)
	default:
		sys.Severity = SeverityNormal
		sys.Message = fmt.Sprintf("Systolic pressure is normal (%d mmHg)", systolic)
	}

	dia := Verdict{Metric: MetricDiastolic}
	switch {
	case diastolic >= c.t.DiastolicVeryHigh:
		dia.Severity = SeverityDanger
		dia.Message = fmt.Sprintf("Diastolic pressure is very high (%d mmHg)", diastolic)
	case diastolic >= c.t.DiastolicHigh:
		dia.Severity = SeverityWarning
		dia.Message = fmt.Sprintf("Diastolic pressure is high (%d mmHg)", diastolic)
	default:
		dia.Severity = SeverityNormal
		dia.Message = fmt.Sprintf("Diastolic pressure is normal (%d mmHg)", diastolic)
	}

	return BloodPressureVerdict{
		Verdict: Verdict{
			Metric:   MetricBloodPressure,
			Severity: MaxSeverity(sys.Severity, dia.Severity),
			Message:  fmt.Sprintf("BP: %d/%d mmHg", systolic, diastolic),
		},
		Systolic:  sys,
		Diastolic: dia,
	}
}

// Oxygen classifies blood oxygen saturation in percent.
func (c *Classifier) Oxygen(pct float64) Verdict {
	v := Verdict{Metric: MetricOxygen}
	switch {
	case pct < c.t.OxygenCritical:
		v.Severity = SeverityDanger
		v.Message = fmt.Sprintf("Oxygen level is critically low (%.1f%%)", pct)
	case pct < c.t.OxygenConcerning:
		v.Severity = SeverityWarning
		v.Message = fmt.Sprintf("Oxygen level is concerning (%.1f%%)", pct)
	case pct < c.t.OxygenBorderline:
		v.Severity = SeverityCaution
		v.Message = fmt.Sprintf("Oxygen level is slightly below normal (%.1f%%)", pct)
	default:
		v.Severity = SeverityNormal
		v.Message = fmt.Sprintf("Oxygen level is normal (%.1f%%)", pct)
	}
	return v
}

// Temperature classifies body temperature in degrees Celsius. The elevated
// ladders are checked before the low bound, so the bands between the
// cut-points stay disjoint.
func (c *Classifier) Temperature(celsius float64) Verdict {
	v := Verdict{Metric: MetricTemperature}
	switch {
	case celsius > c.t.TempHighFever:
		v.Severity = SeverityDanger
		v.Message = fmt.Sprintf("High fever detected (%.1f°C)", celsius)
	case celsius > c.t.TempElevated:
		v.Severity = SeverityWarning
		v.Message = fmt.Sprintf("Elevated temperature (%.1f°C)", celsius)
	case celsius > c.t.TempSlightlyElevated:
		v.Severity = SeverityCaution
		v.Message = fmt.Sprintf("Slightly elevated temperature (%.1f°C)", celsius)
	case celsius < c.t.TempLow:
		v.Severity = SeverityWarning
		v.Message = fmt.Sprintf("Temperature is below normal (%.1f°C)", celsius)
	default:
		v.Severity = SeverityNormal
		v.Message = fmt.Sprintf("Temperature is normal (%.1f°C)", celsius)
	}
	return v
}
