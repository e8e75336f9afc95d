package vitals

// Thresholds holds the clinical cut-points the classifier compares against.
// A Thresholds value is immutable once constructed: build it at process
// start and share it. Alternative tables exist only so tests can exercise
// the ladder; runtime threshold editing is out of scope.
type Thresholds struct {
	HeartRateLow      int // below: Warning (bradycardia)
	HeartRateHigh     int // above: Warning (tachycardia)
	HeartRateVeryHigh int // above: Danger

	SystolicElevated int // at or above: Caution
	SystolicHigh     int // at or above: Warning
	SystolicVeryHigh int // at or above: Danger

	DiastolicHigh     int // at or above: Warning
	DiastolicVeryHigh int // at or above: Danger

	OxygenBorderline float64 // below: Caution
	OxygenConcerning float64 // below: Warning
	OxygenCritical   float64 // below: Danger

	TempLow              float64 // below: Warning
	TempSlightlyElevated float64 // above: Caution
	TempElevated         float64 // above: Warning
	TempHighFever        float64 // above: Danger
}

// DefaultThresholds returns the canonical cut-point table.
func DefaultThresholds() Thresholds {
	return Thresholds{
		HeartRateLow:      60,
		HeartRateHigh:     100,
		HeartRateVeryHigh: 120,

		SystolicElevated: 130,
		SystolicHigh:     140,
		SystolicVeryHigh: 180,

		DiastolicHigh:     90,
		DiastolicVeryHigh: 120,

		OxygenBorderline: 95,
		OxygenConcerning: 92,
		OxygenCritical:   90,

		TempLow:              36.1,
		TempSlightlyElevated: 37.5,
		TempElevated:         38.0,
		TempHighFever:        39.0,
	}
}
