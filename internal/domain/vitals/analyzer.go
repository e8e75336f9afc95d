package vitals

import "strings"

// Sample is one observation of the four tracked metrics. Plain value type:
// the engine never mutates it and keeps no reference after a call returns.
type Sample struct {
	HeartRate    int     `json:"heart_rate"`
	Systolic     int     `json:"bp_systolic"`
	Diastolic    int     `json:"bp_diastolic"`
	OxygenPct    float64 `json:"oxygen_pct"`
	TemperatureC float64 `json:"temperature_c"`
}

// Overall is the aggregated verdict for one sample: the four per-metric
// verdicts, the worst severity among them, and a summary message listing
// every non-Normal concern.
type Overall struct {
	Severity      Severity             `json:"severity"`
	Message       string               `json:"message"`
	HeartRate     Verdict              `json:"heart_rate"`
	BloodPressure BloodPressureVerdict `json:"blood_pressure"`
	Oxygen        Verdict              `json:"oxygen"`
	Temperature   Verdict              `json:"temperature"`
	Concerns      []string             `json:"concerns,omitempty"`
}

// Canonical summary strings.
const (
	NoDataMessage    = "No health data available"
	AllNormalMessage = "All health metrics are within normal ranges"

	concernPrefix    = "Health concerns: "
	concernSeparator = "; "
)

// Analyzer aggregates per-metric verdicts for single samples and scans
// sample windows for recurring breach patterns. One Analyzer is built per
// process and shared freely.
type Analyzer struct {
	classifier *Classifier
	rules      []PredictionRule
}

func NewAnalyzer(t Thresholds) *Analyzer {
	return &Analyzer{classifier: NewClassifier(t), rules: defaultRules(t)}
}

// Classifier exposes the underlying single-metric classifier.
func (a *Analyzer) Classifier() *Classifier {
	return a.classifier
}

// OverallStatus classifies every metric of one sample and reduces the four
// severities to the worst one. Concerns collect the messages of non-Normal
// metrics in fixed order: heart rate, blood pressure (combined message),
// oxygen, temperature. A nil sample yields the Unknown sentinel verdict.
func (a *Analyzer) OverallStatus(s *Sample) Overall {
	if s == nil {
		return Overall{Severity: SeverityUnknown, Message: NoDataMessage}
	}

	hr := a.classifier.HeartRate(s.HeartRate)
	bp := a.classifier.BloodPressure(s.Systolic, s.Diastolic)
	ox := a.classifier.Oxygen(s.OxygenPct)
	temp := a.classifier.Temperature(s.TemperatureC)

	var concerns []string
	for _, v := range []Verdict{hr, bp.Verdict, ox, temp} {
		if v.Severity != SeverityNormal {
			concerns = append(concerns, v.Message)
		}
	}

	overall := Overall{
		Severity:      MaxSeverity(hr.Severity, bp.Severity, ox.Severity, temp.Severity),
		HeartRate:     hr,
		BloodPressure: bp,
		Oxygen:        ox,
		Temperature:   temp,
		Concerns:      concerns,
	}
	if len(concerns) > 0 {
		overall.Message = concernPrefix + strings.Join(concerns, concernSeparator)
	} else {
		overall.Message = AllNormalMessage
	}
	return overall
}
