package medications

import (
	"time"

	"github.com/google/uuid"
)

// Medication maps to the medications table.
type Medication struct {
	ID                uuid.UUID  `db:"id" json:"id"`
	PatientID         uuid.UUID  `db:"patient_id" json:"patient_id"`
	Name              string     `db:"name" json:"name"`
	Dosage            string     `db:"dosage" json:"dosage"`
	Frequency         string     `db:"frequency" json:"frequency"`
	StartDate         *time.Time `db:"start_date" json:"start_date,omitempty"`
	EndDate           *time.Time `db:"end_date" json:"end_date,omitempty"`
	Purpose           *string    `db:"purpose" json:"purpose,omitempty"`
	PrescribingDoctor *string    `db:"prescribing_doctor" json:"prescribing_doctor,omitempty"`
	SideEffects       *string    `db:"side_effects" json:"side_effects,omitempty"`
	CreatedAt         time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time  `db:"updated_at" json:"updated_at"`
}
