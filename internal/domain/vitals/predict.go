package vitals

import "fmt"

// Prediction flags a breach pattern that recurs often enough in a window to
// warrant attention. It is a heuristic signal, not a diagnosis. Confidence
// is the breach percentage rendered with one decimal, e.g. "60.0%".
type Prediction struct {
	Condition   string `json:"condition"`
	Confidence  string `json:"confidence"`
	Description string `json:"description"`
}

// PredictionRule counts samples breaching a condition-specific cut-point
// and fires when the breach percentage reaches the activation percentage.
type PredictionRule struct {
	Condition   string
	Description string
	Activation  float64 // minimum breach percentage, 0 to 100
	Breach      func(Sample) bool
}

// defaultRules derives the canonical rule set from a thresholds table, so
// an alternative table moves the breach cut-points with it. Output order is
// fixed: hypertension, tachycardia, respiratory, fever.
func defaultRules(t Thresholds) []PredictionRule {
	return []PredictionRule{
		{
			Condition:   "Hypertension Risk",
			Description: "Consistently elevated blood pressure readings suggest hypertension risk.",
			Activation:  50,
			Breach: func(s Sample) bool {
				return s.Systolic >= t.SystolicHigh || s.Diastolic >= t.DiastolicHigh
			},
		},
		{
			Condition:   "Tachycardia Tendency",
			Description: "Frequent elevated heart rate may indicate stress or cardiac issues.",
			Activation:  40,
			Breach: func(s Sample) bool {
				return s.HeartRate > t.HeartRateHigh
			},
		},
		{
			Condition:   "Respiratory Concern",
			Description: "Recurring low oxygen levels may indicate respiratory issues.",
			Activation:  30,
			Breach: func(s Sample) bool {
				return s.OxygenPct < t.OxygenConcerning
			},
		},
		{
			Condition:   "Recurring Fever",
			Description: "Multiple elevated temperature readings suggest infection or inflammation.",
			Activation:  20,
			Breach: func(s Sample) bool {
				return s.TemperatureC > t.TempElevated
			},
		},
	}
}

// PredictConditions scans a window of samples and reports every rule whose
// breach percentage meets its activation threshold, in rule order. Rules
// are independent: zero, some, or all four may fire for the same window.
// An empty window yields no predictions and no error.
func (a *Analyzer) PredictConditions(samples []Sample) []Prediction {
	if len(samples) == 0 {
		return nil
	}

	total := float64(len(samples))
	var predictions []Prediction
	for _, rule := range a.rules {
		breached := 0
		for _, s := range samples {
			if rule.Breach(s) {
				breached++
			}
		}
		pct := float64(breached) / total * 100
		if pct >= rule.Activation {
			predictions = append(predictions, Prediction{
				Condition:   rule.Condition,
				Confidence:  fmt.Sprintf("%.1f%%", pct),
				Description: rule.Description,
			})
		}
	}
	return predictions
}
