package conditions

import (
	"time"

	"github.com/google/uuid"
)

// Condition maps to the medical_conditions table.
type Condition struct {
	ID            uuid.UUID  `db:"id" json:"id"`
	PatientID     uuid.UUID  `db:"patient_id" json:"patient_id"`
	Name          string     `db:"name" json:"name"`
	DiagnosisDate *time.Time `db:"diagnosis_date" json:"diagnosis_date,omitempty"`
	Severity      *string    `db:"severity" json:"severity,omitempty"`
	TreatmentPlan *string    `db:"treatment_plan" json:"treatment_plan,omitempty"`
	Notes         *string    `db:"notes" json:"notes,omitempty"`
	Status        string     `db:"status" json:"status"`
	CreatedAt     time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time  `db:"updated_at" json:"updated_at"`
}
