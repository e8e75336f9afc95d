package patients

import (
	"time"

	"github.com/google/uuid"
)

// Patient maps to the patients table.
type Patient struct {
	ID               uuid.UUID `db:"id" json:"id"`
	Name             string    `db:"name" json:"name"`
	Age              *int      `db:"age" json:"age,omitempty"`
	Gender           *string   `db:"gender" json:"gender,omitempty"`
	HeightCm         *float64  `db:"height_cm" json:"height_cm,omitempty"`
	WeightKg         *float64  `db:"weight_kg" json:"weight_kg,omitempty"`
	BloodType        *string   `db:"blood_type" json:"blood_type,omitempty"`
	EmergencyContact *string   `db:"emergency_contact" json:"emergency_contact,omitempty"`
	Doctor           *string   `db:"doctor" json:"doctor,omitempty"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time `db:"updated_at" json:"updated_at"`
}
