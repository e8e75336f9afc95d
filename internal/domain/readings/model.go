package readings

import (
	"time"

	"github.com/google/uuid"

	"github.com/vitalwatch/vitalwatch/internal/domain/vitals"
)

// Reading maps to the readings table. Rows are immutable once recorded.
type Reading struct {
	ID           uuid.UUID `db:"id" json:"id"`
	PatientID    uuid.UUID `db:"patient_id" json:"patient_id"`
	RecordedAt   time.Time `db:"recorded_at" json:"recorded_at"`
	HeartRate    int       `db:"heart_rate" json:"heart_rate"`
	BPSystolic   int       `db:"bp_systolic" json:"bp_systolic"`
	BPDiastolic  int       `db:"bp_diastolic" json:"bp_diastolic"`
	OxygenPct    float64   `db:"oxygen_pct" json:"oxygen_pct"`
	TemperatureC float64   `db:"temperature_c" json:"temperature_c"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// Sample converts the reading into the classifier's input form.
func (r *Reading) Sample() vitals.Sample {
	return vitals.Sample{
		HeartRate:    r.HeartRate,
		Systolic:     r.BPSystolic,
		Diastolic:    r.BPDiastolic,
		OxygenPct:    r.OxygenPct,
		TemperatureC: r.TemperatureC,
	}
}

// Samples converts a reading window, preserving order.
func Samples(rs []*Reading) []vitals.Sample {
	samples := make([]vitals.Sample, len(rs))
	for i, r := range rs {
		samples[i] = r.Sample()
	}
	return samples
}
