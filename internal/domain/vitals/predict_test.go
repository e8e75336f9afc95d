package vitals

import "testing"

func normalSample() Sample {
	return Sample{HeartRate: 75, Systolic: 118, Diastolic: 76, OxygenPct: 98, TemperatureC: 36.7}
}

func findPrediction(preds []Prediction, condition string) *Prediction {
	for i := range preds {
		if preds[i].Condition == condition {
			return &preds[i]
		}
	}
	return nil
}

func TestPredictConditionsEmptyWindow(t *testing.T) {
	a := newTestAnalyzer()

	if got := a.PredictConditions(nil); len(got) != 0 {
		t.Errorf("PredictConditions(nil) = %v, want empty", got)
	}
	if got := a.PredictConditions([]Sample{}); len(got) != 0 {
		t.Errorf("PredictConditions(empty) = %v, want empty", got)
	}
}

func TestPredictConditionsHypertensionThreshold(t *testing.T) {
	a := newTestAnalyzer()

	window := func(breaching int) []Sample {
		samples := make([]Sample, 0, 10)
		for i := 0; i < breaching; i++ {
			s := normalSample()
			s.Systolic = 150
			samples = append(samples, s)
		}
		for len(samples) < 10 {
			samples = append(samples, normalSample())
		}
		return samples
	}

	// 6 of 10 readings at or above the systolic warning cut-point.
	preds := a.PredictConditions(window(6))
	p := findPrediction(preds, "Hypertension Risk")
	if p == nil {
		t.Fatalf("expected Hypertension Risk in %v", preds)
	}
	if p.Confidence != "60.0%" {
		t.Errorf("confidence = %q, want %q", p.Confidence, "60.0%")
	}
	if p.Description != "Consistently elevated blood pressure readings suggest hypertension risk." {
		t.Errorf("description = %q", p.Description)
	}

	// 4 of 10 stays below the 50% activation threshold.
	if p := findPrediction(a.PredictConditions(window(4)), "Hypertension Risk"); p != nil {
		t.Errorf("4/10 window should not predict hypertension, got %+v", p)
	}

	// Exactly 50% activates.
	p = findPrediction(a.PredictConditions(window(5)), "Hypertension Risk")
	if p == nil {
		t.Fatal("5/10 window should predict hypertension")
	}
	if p.Confidence != "50.0%" {
		t.Errorf("confidence = %q, want %q", p.Confidence, "50.0%")
	}
}

func TestPredictConditionsDiastolicAloneBreaches(t *testing.T) {
	a := newTestAnalyzer()

	samples := make([]Sample, 4)
	for i := range samples {
		samples[i] = normalSample()
		samples[i].Diastolic = 92
	}

	p := findPrediction(a.PredictConditions(samples), "Hypertension Risk")
	if p == nil {
		t.Fatal("diastolic breaches alone should predict hypertension")
	}
	if p.Confidence != "100.0%" {
		t.Errorf("confidence = %q, want %q", p.Confidence, "100.0%")
	}
}

func TestPredictConditionsTachycardiaThreshold(t *testing.T) {
	a := newTestAnalyzer()

	samples := make([]Sample, 10)
	for i := range samples {
		samples[i] = normalSample()
		if i < 4 {
			samples[i].HeartRate = 105
		}
	}

	// 40% meets the activation threshold exactly.
	p := findPrediction(a.PredictConditions(samples), "Tachycardia Tendency")
	if p == nil {
		t.Fatal("4/10 elevated heart rates should predict tachycardia tendency")
	}
	if p.Confidence != "40.0%" {
		t.Errorf("confidence = %q, want %q", p.Confidence, "40.0%")
	}
	if p.Description != "Frequent elevated heart rate may indicate stress or cardiac issues." {
		t.Errorf("description = %q", p.Description)
	}

	// A heart rate exactly on the high cut-point does not breach.
	for i := range samples {
		samples[i].HeartRate = 100
	}
	if p := findPrediction(a.PredictConditions(samples), "Tachycardia Tendency"); p != nil {
		t.Errorf("heart rate at the cut-point should not breach, got %+v", p)
	}
}

func TestPredictConditionsRespiratoryAllBreaching(t *testing.T) {
	a := newTestAnalyzer()

	samples := make([]Sample, 5)
	for i := range samples {
		samples[i] = normalSample()
		samples[i].OxygenPct = 90
	}

	p := findPrediction(a.PredictConditions(samples), "Respiratory Concern")
	if p == nil {
		t.Fatal("all-low oxygen window should predict respiratory concern")
	}
	if p.Confidence != "100.0%" {
		t.Errorf("confidence = %q, want %q", p.Confidence, "100.0%")
	}
	if p.Description != "Recurring low oxygen levels may indicate respiratory issues." {
		t.Errorf("description = %q", p.Description)
	}
}

func TestPredictConditionsFeverThreshold(t *testing.T) {
	a := newTestAnalyzer()

	samples := make([]Sample, 5)
	for i := range samples {
		samples[i] = normalSample()
	}
	samples[0].TemperatureC = 38.5

	// 1 of 5 is 20%, exactly the activation threshold.
	p := findPrediction(a.PredictConditions(samples), "Recurring Fever")
	if p == nil {
		t.Fatal("1/5 fevers should predict recurring fever")
	}
	if p.Confidence != "20.0%" {
		t.Errorf("confidence = %q, want %q", p.Confidence, "20.0%")
	}
	if p.Description != "Multiple elevated temperature readings suggest infection or inflammation." {
		t.Errorf("description = %q", p.Description)
	}

	// Temperature exactly at the elevated cut-point does not breach.
	samples[0].TemperatureC = 38.0
	if p := findPrediction(a.PredictConditions(samples), "Recurring Fever"); p != nil {
		t.Errorf("temperature at the cut-point should not breach, got %+v", p)
	}
}

func TestPredictConditionsRuleOrderAndIndependence(t *testing.T) {
	a := newTestAnalyzer()

	// Every sample breaches every rule.
	samples := make([]Sample, 4)
	for i := range samples {
		samples[i] = Sample{
			HeartRate:    110,
			Systolic:     150,
			Diastolic:    95,
			OxygenPct:    90,
			TemperatureC: 38.6,
		}
	}

	preds := a.PredictConditions(samples)
	wantOrder := []string{
		"Hypertension Risk",
		"Tachycardia Tendency",
		"Respiratory Concern",
		"Recurring Fever",
	}
	if len(preds) != len(wantOrder) {
		t.Fatalf("got %d predictions, want %d: %v", len(preds), len(wantOrder), preds)
	}
	for i, want := range wantOrder {
		if preds[i].Condition != want {
			t.Errorf("prediction[%d] = %q, want %q", i, preds[i].Condition, want)
		}
		if preds[i].Confidence != "100.0%" {
			t.Errorf("prediction[%d] confidence = %q, want 100.0%%", i, preds[i].Confidence)
		}
	}
}

func TestPredictConditionsFractionalConfidence(t *testing.T) {
	a := newTestAnalyzer()

	// 2 of 3 readings breach: 66.666... renders as 66.7%.
	samples := []Sample{normalSample(), normalSample(), normalSample()}
	samples[0].Systolic = 160
	samples[1].Systolic = 141

	p := findPrediction(a.PredictConditions(samples), "Hypertension Risk")
	if p == nil {
		t.Fatal("2/3 window should predict hypertension")
	}
	if p.Confidence != "66.7%" {
		t.Errorf("confidence = %q, want %q", p.Confidence, "66.7%")
	}
}
